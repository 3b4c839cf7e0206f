package main

import (
	"sync"

	"golang.org/x/sync/semaphore"
)

// Kernel is the root context object wiring every subsystem together. Every
// subsystem method that needs shared state takes *Kernel explicitly; there
// are no package-level globals, mirroring the teacher's MachineBus wiring
// pattern where every device holds an explicit *MachineBus rather than
// reaching for ambient state.
type Kernel struct {
	mu sync.Mutex

	pool       *Pool
	scheduler  *Scheduler
	terminals  *TerminalManager
	fs         *fsimageHandle
	rtc        *RTCDevice
	interrupts *InterruptController

	// procSem bounds concurrently active processes at MaxProcesses, the
	// semaphore-based analogue of the pool simply running out of PCBs
	// (spec.md §4.F); acquiring it is how execute enforces the bound.
	// execute still treats a nil from Pool.AllocateAfter as exhaustion too.
	procSem *semaphore.Weighted

	beeper       *Beeper
	shellProgram string
}

// NewKernel wires a fresh kernel around an already-parsed filesystem image
// and a video backend (GUI or headless stand-in) that shows whichever
// terminal is visible.
func NewKernel(fsReader *fsimageHandle, backend VideoBackend) *Kernel {
	k := &Kernel{
		pool:         NewPool(),
		scheduler:    NewScheduler(),
		fs:           fsReader,
		rtc:          NewRTCDevice(),
		interrupts:   NewInterruptController(),
		procSem:      semaphore.NewWeighted(MaxProcesses),
		shellProgram: "shell",
	}
	k.terminals = NewTerminalManager(backend)

	// The RTC base ticker is IRQRTC's real interrupt source (spec.md §4.E):
	// every base tick fires the line, and the registered handler drives the
	// scheduler's round-robin bookkeeping (spec.md §4.G) under the kernel
	// lock, the production call site scheduler.go's Tick otherwise lacks.
	k.rtc.onTick = func() { k.interrupts.Fire(IRQRTC) }
	k.interrupts.Register(IRQRTC, func() {
		k.mu.Lock()
		k.scheduler.Tick(k.pool)
		k.mu.Unlock()
	})

	if beeper, err := NewBeeper(); err != nil {
		logf("beeper unavailable: %v", err)
	} else {
		k.beeper = beeper
		for i := 0; i < MaxTerminals; i++ {
			beeper.Watch(k.terminals.Terminal(i))
		}
	}
	return k
}

// BootShell starts the topmost shell on terminal 0 only, mirroring the
// teacher's per-device Run loops (audio_chip.go, video_chip.go) launched in
// their own goroutine from main. Terminals 1 and 2 get their shell lazily,
// the first time a switch lands on them with no shell ever started there
// (spec.md §4.D step 6, TerminalManager.SwitchVisible's needsShell signal);
// starting all three eagerly here would race that lazy path the first time
// a caller switches to an unvisited terminal.
func (k *Kernel) BootShell() {
	go k.runShellLoop(0)
}

// runShellLoop re-executes the shell program on term forever, the boot
// shell's auto-respawn behavior (spec.md §4.I), until execute itself fails
// (e.g. the shell program is missing).
func (k *Kernel) runShellLoop(term int) {
	for {
		_, err := execute(k, noProcess, k.shellProgram, term)
		if err != nil {
			logf("terminal %d: shell exited: %v", term, err)
			return
		}
	}
}

// RunRTC starts the RTC device's periodic tick loop; call once at startup.
func (k *Kernel) RunRTC() {
	go k.rtc.Run()
}

func (k *Kernel) Close() {
	k.rtc.Stop()
	if k.beeper != nil {
		k.beeper.Close()
	}
}
