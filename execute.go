package main

import (
	"encoding/binary"
	"runtime"
	"strings"

	"github.com/kflint/vtkernel/fsimage"
)

// stepsPerQuantum bounds how many bytecode instructions a process runs
// before voluntarily yielding to the Go scheduler, the host-process
// analogue of the timer interrupt driving context switches (spec.md §4.G).
// A real preemptive switch can land mid-instruction; this cooperative yield
// point cannot, which is the one place this simulation's fairness is
// coarser-grained than the hardware it stands in for.
const stepsPerQuantum = 4096

// execute implements spec.md §4.H. callerPid is noProcess for the topmost
// shell on a terminal. forcedTerminal is only consulted when callerPid is
// noProcess (there is no caller PCB to inherit a terminal from); otherwise
// the child inherits the caller's terminal.
func execute(k *Kernel, callerPid ProcessID, cmdline string, forcedTerminal int) (int32, error) {
	name, args, err := parseCommand(cmdline)
	if err != nil {
		return -1, err
	}

	if !k.procSem.TryAcquire(1) {
		return -1, newKernelError(ClassExhausted, "Already at maximum number of processes")
	}

	k.mu.Lock()
	child := k.pool.AllocateAfter(callerPid)
	if child == nil {
		k.mu.Unlock()
		k.procSem.Release(1)
		return -1, newKernelError(ClassExhausted, "no free PCB")
	}
	pid := child.pid
	child.reset(pid)
	k.mu.Unlock()

	entry, ok := k.fs.Lookup(name)
	if !ok || entry.Type != fsimage.Regular {
		k.releasePCB(pid)
		return -1, newKernelError(ClassNotFound, "no such program %q", name)
	}

	var magic [4]byte
	if _, err := k.fs.ReadInode(entry.Inode, 0, magic[:]); err != nil {
		k.releasePCB(pid)
		return -1, err
	}
	if magic != execMagic {
		k.releasePCB(pid)
		return -1, newKernelError(ClassBadArgument, "%q is not executable", name)
	}

	var entryBuf [4]byte
	if _, err := k.fs.ReadInode(entry.Inode, execEntryPointOffset, entryBuf[:]); err != nil {
		k.releasePCB(pid)
		return -1, err
	}
	entryPoint := binary.LittleEndian.Uint32(entryBuf[:])

	image := make([]byte, ProcessImageSize)
	n, err := readWholeFile(k, entry.Inode, image)
	if err != nil {
		k.releasePCB(pid)
		return -1, err
	}
	image = image[:n]

	as := NewAddressSpace(pid)
	if err := as.LoadProgram(image); err != nil {
		k.releasePCB(pid)
		return -1, err
	}
	as.SwitchTo()

	k.mu.Lock()
	child.addrSpace = as
	child.cpu = NewUserCPU(entryPoint)
	child.parent = callerPid
	if callerPid != noProcess {
		caller := k.pool.Get(callerPid)
		child.terminal = caller.terminal
		caller.runnable = false
	} else {
		child.terminal = forcedTerminal
	}
	copy(child.args[:], args)
	child.argsLen = len(args)
	child.descs.Install(stdinFD, NewKeyboardVector(k.terminals))
	child.descs.Install(stdoutFD, NewTerminalVector(k.terminals, func() int { return child.terminal }))
	child.active = true
	child.runnable = true
	k.scheduler.SetCurrent(pid)
	k.mu.Unlock()

	status := runProcess(k, child)

	k.mu.Lock()
	if callerPid != noProcess {
		caller := k.pool.Get(callerPid)
		caller.runnable = true
		caller.childStatus = uint32(uint8(status))
		k.scheduler.SetCurrent(callerPid)
	}
	k.mu.Unlock()

	return status, nil
}

// runProcess drives the child's bytecode until it halts, servicing
// SYSCALL traps as they occur. It returns the exit status (spec.md §4.I).
func runProcess(k *Kernel, p *PCB) int32 {
	steps := 0
	for {
		k.mu.Lock()
		trapped, haltedByOp, err := p.cpu.Step(p.addrSpace.program)
		k.mu.Unlock()

		if err != nil {
			logf("process %d terminated by exception: %v", p.pid, err)
			return haltProcess(k, p, 256)
		}
		if haltedByOp {
			return haltProcess(k, p, 0)
		}
		if trapped {
			k.mu.Lock()
			result := dispatchSyscall(k, p)
			k.mu.Unlock()
			if p.haltRequested {
				return haltProcess(k, p, p.haltStatus)
			}
			p.cpu.SetReturn(result)
		}

		steps++
		if steps%stepsPerQuantum == 0 {
			runtime.Gosched()
		}
	}
}

func readWholeFile(k *Kernel, inode uint32, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := k.fs.ReadInode(inode, uint32(total), buf[total:])
		if err != nil {
			return 0, err
		}
		if n == 0 {
			break
		}
		total += n
	}
	return total, nil
}

func (k *Kernel) releasePCB(pid ProcessID) {
	k.mu.Lock()
	k.pool.Get(pid).active = false
	k.mu.Unlock()
	k.procSem.Release(1)
}

// parseCommand splits a command line into a program name (<=32 bytes) and
// the raw argument tail, per spec.md §4.H step 1. Anything from the first
// newline on is ignored, so a line as read from stdin can be passed as is.
func parseCommand(cmdline string) (string, string, error) {
	if nl := strings.IndexByte(cmdline, '\n'); nl >= 0 {
		cmdline = cmdline[:nl]
	}
	s := strings.TrimLeft(cmdline, " ")
	if s == "" {
		return "", "", newKernelError(ClassBadArgument, "empty command")
	}
	sp := strings.IndexByte(s, ' ')
	var name, rest string
	if sp == -1 {
		name, rest = s, ""
	} else {
		name, rest = s[:sp], strings.TrimLeft(s[sp+1:], " ")
	}
	if len(name) > FileNameLength {
		return "", "", newKernelError(ClassBadArgument, "program name %q exceeds %d bytes", name, FileNameLength)
	}
	return name, rest, nil
}
