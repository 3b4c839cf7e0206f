package main

// ProcessID is a small integer in [0, MaxProcesses). The pool is fixed size;
// identifiers never move (spec.md §3).
type ProcessID int

const noProcess ProcessID = -1

// PCB is the kernel's per-process record (spec.md §3). In the real kernel a
// PCB is co-located with its kernel stack at a fixed physical offset derived
// from its pid; here that addressing trick has no host-process analogue, so
// the pool simply indexes PCBs by pid directly (see DESIGN.md).
type PCB struct {
	pid      ProcessID
	active   bool
	runnable bool
	terminal int
	parent   ProcessID

	addrSpace *AddressSpace
	cpu       *UserCPU
	descs     DescriptorTable

	args         [ArgsBufSize]byte
	argsLen      int
	userEntry    uint32
	childStatus  uint32
	execPending  bool // this PCB is blocked inside execute(), waiting on a child
	rtcWaiting   bool // blocked in a busy-wait read on the RTC device
	kbWaiting    bool // blocked in a busy-wait read on the keyboard

	haltRequested bool  // set by the halt syscall or an OpHalt instruction
	haltStatus    int32 // value passed to halt, 0-255, or 256 on exception
	videoMapped   bool  // vidmap has been called at least once
}

func (p *PCB) reset(pid ProcessID) {
	*p = PCB{pid: pid, parent: noProcess}
}

// Pool is the fixed-size array of PCBs (component F). Allocation is a linear
// scan for !active starting just past a given pid, matching the "next free"
// search in the execute path (spec.md §4.F).
type Pool struct {
	procs [MaxProcesses]PCB
}

func NewPool() *Pool {
	p := &Pool{}
	for i := range p.procs {
		p.procs[i].reset(ProcessID(i))
	}
	return p
}

func (p *Pool) Get(pid ProcessID) *PCB {
	if pid < 0 || int(pid) >= MaxProcesses {
		return nil
	}
	return &p.procs[pid]
}

// AllocateAfter scans forward from startAfter+1, wrapping, for a free slot.
// Returns nil if the pool is exhausted.
func (p *Pool) AllocateAfter(startAfter ProcessID) *PCB {
	for i := 0; i < MaxProcesses; i++ {
		idx := (int(startAfter) + 1 + i) % MaxProcesses
		if !p.procs[idx].active {
			return &p.procs[idx]
		}
	}
	return nil
}

// ActiveCount returns the number of live processes, used to check invariant
// 1 of spec.md §8 in tests.
func (p *Pool) ActiveCount() int {
	n := 0
	for i := range p.procs {
		if p.procs[i].active {
			n++
		}
	}
	return n
}
