package main

import "github.com/kflint/vtkernel/fsimage"

// Syscall numbers, spec.md §6. The call number arrives in register 0, the
// next three registers hold arguments, mirroring the accumulator/next-three
// convention of the real ABI this simulation's UserCPU copies.
const (
	sysHalt       = 1
	sysExecute    = 2
	sysRead       = 3
	sysWrite      = 4
	sysOpen       = 5
	sysClose      = 6
	sysGetargs    = 7
	sysVidmap     = 8
	sysSetHandler = 9
	sysSigreturn  = 10
)

// dispatchSyscall services one SYSCALL trap for p, reading arguments out of
// its register file and address space and returning the value to deliver
// back in register 0. Called with k.mu held.
func dispatchSyscall(k *Kernel, p *PCB) int32 {
	num := p.cpu.trapNum
	a0, a1, a2 := p.cpu.trapArgs[0], p.cpu.trapArgs[1], p.cpu.trapArgs[2]

	switch num {
	case sysHalt:
		p.haltRequested = true
		p.haltStatus = a0 & 0xFF
		return 0

	case sysExecute:
		cmd, err := readCString(p.addrSpace, uint32(a0))
		if err != nil {
			return -1
		}
		k.mu.Unlock()
		status, err := execute(k, p.pid, cmd, p.terminal)
		k.mu.Lock()
		return asSyscallResult(status, err)

	case sysRead:
		return asSyscallResult(doRead(k, p, int(a0), uint32(a1), uint32(a2)))

	case sysWrite:
		return asSyscallResult(doWrite(p, int(a0), uint32(a1), uint32(a2)))

	case sysOpen:
		return asSyscallResult(doOpen(k, p, uint32(a0)))

	case sysClose:
		err := p.descs.Close(int(a0))
		return asSyscallResult(0, err)

	case sysGetargs:
		return asSyscallResult(doGetargs(p, uint32(a0), uint32(a1)))

	case sysVidmap:
		return asSyscallResult(doVidmap(p, uint32(a0)))

	case sysSetHandler, sysSigreturn, 0:
		logf("process %d: unimplemented syscall %d", p.pid, num)
		return -1

	default:
		logf("process %d: invalid syscall number %d", p.pid, num)
		return -1
	}
}

func readCString(as *AddressSpace, va uint32) (string, error) {
	var buf []byte
	var b [1]byte
	for i := 0; i < ArgsBufSize*4; i++ {
		if err := as.ReadAt(va+uint32(i), b[:]); err != nil {
			return "", err
		}
		if b[0] == 0 {
			break
		}
		buf = append(buf, b[0])
	}
	return string(buf), nil
}

func doRead(k *Kernel, p *PCB, fd int, bufVA, n uint32) (int32, error) {
	if fd == stdinFD {
		return readStdin(k, p, bufVA, n)
	}
	if _, ok := p.descs.VectorAt(fd).(*RTCVector); ok {
		waitForRTC(k, p, fd)
	}
	tmp := make([]byte, n)
	cnt, err := p.descs.Read(fd, tmp)
	if err != nil {
		return 0, err
	}
	if err := p.addrSpace.WriteAt(bufVA, tmp[:cnt]); err != nil {
		return 0, err
	}
	return int32(cnt), nil
}

// waitForRTC blocks p until the next tick due at its configured rate, the
// busy-wait suspension point spec.md §5 documents for the RTC device. The
// lock is released during the wait, mirroring readStdin below,
// so RTCDevice's own ticker goroutine can make progress; p.rtcWaiting is set
// for the duration so other kernel-facing observers (tests, a future "ps")
// can tell a process is parked here rather than runnable. The device only
// ever delivers at its base rate, so a process that asked for a faster rate
// than the base simply gets woken every base tick instead.
func waitForRTC(k *Kernel, p *PCB, fd int) {
	rate := p.descs.Inode(fd)
	if rate == 0 {
		rate = rtcDefaultRateHz
	}
	ticks := uint32(rtcBaseRateHz) / rate
	if ticks < 1 {
		ticks = 1
	}

	ch := k.rtc.Wait(p.pid)
	p.rtcWaiting = true
	k.mu.Unlock()
	for i := uint32(0); i < ticks; i++ {
		<-ch
	}
	k.mu.Lock()
	p.rtcWaiting = false
	k.rtc.CancelWait(p.pid)
}

// readStdin blocks the calling process on the terminal's line buffer, the simulation's analogue of spec.md §5's keyboard busy-wait
// suspension point. The lock is released during the wait so interrupts
// (here: other goroutines delivering bytes) can make progress.
func readStdin(k *Kernel, p *PCB, bufVA, n uint32) (int32, error) {
	term := k.terminals.Terminal(p.terminal)
	p.kbWaiting = true
	k.mu.Unlock()
	line := term.ReadLine()
	k.mu.Lock()
	p.kbWaiting = false

	if uint32(len(line)) > n {
		line = line[:n]
	}
	if err := p.addrSpace.WriteAt(bufVA, line); err != nil {
		return 0, err
	}
	return int32(len(line)), nil
}

func doWrite(p *PCB, fd int, bufVA, n uint32) (int32, error) {
	tmp := make([]byte, n)
	if err := p.addrSpace.ReadAt(bufVA, tmp); err != nil {
		return 0, err
	}
	cnt, err := p.descs.Write(fd, tmp)
	return int32(cnt), err
}

func doOpen(k *Kernel, p *PCB, nameVA uint32) (int32, error) {
	name, err := readCString(p.addrSpace, nameVA)
	if err != nil {
		return 0, err
	}
	switch name {
	case "rtc":
		fd, err := p.descs.Open(name, NewRTCVector(k.rtc), 0)
		return int32(fd), err
	}
	entryType, ok := k.fs.EntryType(name)
	if !ok {
		return 0, newKernelError(ClassNotFound, "no such file %q", name)
	}
	entry, _ := k.fs.Lookup(name)
	var vec OperationVector
	switch entryType {
	case fsimage.Directory:
		vec = NewDirectoryVector(k.fs)
	default:
		vec = NewFileVector(k.fs)
	}
	fd, err := p.descs.Open(name, vec, entry.Inode)
	return int32(fd), err
}

func doGetargs(p *PCB, bufVA, n uint32) (int32, error) {
	need := p.argsLen + 1
	if need > int(n) {
		return 0, newKernelError(ClassBadArgument, "getargs buffer too small")
	}
	payload := make([]byte, need)
	copy(payload, p.args[:p.argsLen])
	if err := p.addrSpace.WriteAt(bufVA, payload); err != nil {
		return 0, err
	}
	return 0, nil
}

func doVidmap(p *PCB, outVA uint32) (int32, error) {
	if !p.addrSpace.IsUserAddr(outVA) {
		return 0, newKernelError(ClassBadArgument, "vidmap: out pointer not user-accessible")
	}
	va := p.addrSpace.MapVideo()
	p.videoMapped = true
	var buf [4]byte
	buf[0] = byte(va)
	buf[1] = byte(va >> 8)
	buf[2] = byte(va >> 16)
	buf[3] = byte(va >> 24)
	if err := p.addrSpace.WriteAt(outVA, buf[:]); err != nil {
		return 0, err
	}
	return int32(va), nil
}
