package main

// Scheduler implements the round-robin search of spec.md §4.G in isolation
// from the goroutine-based concurrency the rest of the kernel actually runs
// on. A host process already gets preemptive multitasking for free from the
// Go runtime; rather than discard spec.md's explicit scheduling algorithm,
// this type keeps it as the single source of truth for "whose turn is it",
// and kernel.go's IRQRTC handler calls Tick on every RTC base tick purely
// for fairness bookkeeping and for the invariants spec.md §8 tests against.
// Nothing here swaps a page directory or a TSS; AddressSpace and PCB already
// stand in for those (see address_space.go, pcb.go).
type Scheduler struct {
	currPid ProcessID
}

func NewScheduler() *Scheduler {
	return &Scheduler{currPid: noProcess}
}

func (s *Scheduler) CurrPid() ProcessID { return s.currPid }

// Tick scans forward from currPid+1, wrapping modulo MaxProcesses, for the
// first runnable PCB, and returns it without changing s.currPid if none
// other than the current one is runnable (spec.md §4.G steps 1-2). The
// caller is responsible for actually resuming that process.
func (s *Scheduler) Tick(pool *Pool) *PCB {
	for i := 1; i <= MaxProcesses; i++ {
		idx := (int(s.currPid) + i) % MaxProcesses
		p := pool.Get(ProcessID(idx))
		if p.runnable {
			s.currPid = p.pid
			return p
		}
	}
	return nil
}

// SetCurrent is called by execute and halt, the only other two places
// spec.md §4.G allows curr_pid to change outside the scheduler itself.
func (s *Scheduler) SetCurrent(pid ProcessID) {
	s.currPid = pid
}
