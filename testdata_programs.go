package main

import "github.com/kflint/vtkernel/fsimage"

// programAssembler is a tiny linear bytecode writer for UserCPU programs
// (usercpu.go), used to build the demo executables shipped in the default
// filesystem image. It exists purely so the fixtures below read as a
// sequence of instructions instead of raw byte literals, the same role the
// teacher's assembler package plays for its coprocessor CPUs.
type programAssembler struct {
	buf    []byte
	relocs []int32 // offsets in buf of jump-target immediates, rebased by link
}

func newProgramAssembler() *programAssembler { return &programAssembler{} }

func (a *programAssembler) emitImm32(v int32) {
	u := uint32(v)
	a.buf = append(a.buf, byte(u), byte(u>>8), byte(u>>16), byte(u>>24))
}

func (a *programAssembler) movImm(reg int, v int32) *programAssembler {
	a.buf = append(a.buf, byte(OpMovImm), byte(reg))
	a.emitImm32(v)
	return a
}

func (a *programAssembler) movReg(dst, src int) *programAssembler {
	a.buf = append(a.buf, byte(OpMovReg), byte(dst), byte(src))
	return a
}

func (a *programAssembler) addImm(reg int, v int32) *programAssembler {
	a.buf = append(a.buf, byte(OpAddImm), byte(reg))
	a.emitImm32(v)
	return a
}

func (a *programAssembler) subImm(reg int, v int32) *programAssembler {
	a.buf = append(a.buf, byte(OpSubImm), byte(reg))
	a.emitImm32(v)
	return a
}

func (a *programAssembler) cmp(dst, src int) *programAssembler {
	a.buf = append(a.buf, byte(OpCmp), byte(dst), byte(src))
	return a
}

func (a *programAssembler) jmp(target int32) *programAssembler {
	a.buf = append(a.buf, byte(OpJmp))
	a.relocs = append(a.relocs, a.here())
	a.emitImm32(target)
	return a
}

func (a *programAssembler) jz(target int32) *programAssembler {
	a.buf = append(a.buf, byte(OpJz))
	a.relocs = append(a.relocs, a.here())
	a.emitImm32(target)
	return a
}

func (a *programAssembler) jnz(target int32) *programAssembler {
	a.buf = append(a.buf, byte(OpJnz))
	a.relocs = append(a.relocs, a.here())
	a.emitImm32(target)
	return a
}

func (a *programAssembler) storeByte(reg int, va int32) *programAssembler {
	a.buf = append(a.buf, byte(OpStoreByte), byte(reg))
	a.emitImm32(va)
	return a
}

func (a *programAssembler) loadByte(reg int, va int32) *programAssembler {
	a.buf = append(a.buf, byte(OpLoadByte), byte(reg))
	a.emitImm32(va)
	return a
}

func (a *programAssembler) syscall() *programAssembler {
	a.buf = append(a.buf, byte(OpSyscall))
	return a
}

func (a *programAssembler) halt() *programAssembler {
	a.buf = append(a.buf, byte(OpHalt))
	return a
}

func (a *programAssembler) here() int32 { return int32(len(a.buf)) }

// link wraps the assembled body in the magic header and entry-point field
// expected by execute (spec.md §6), placing the body right after the fixed
// 28-byte header so entry == 28 for every fixture below. Jump targets are
// assembled relative to the body, so link adds the header length to each.
func (a *programAssembler) link() []byte {
	const headerLen = 28
	out := make([]byte, headerLen+len(a.buf))
	copy(out[0:4], execMagic[:])
	entry := uint32(headerLen)
	out[24] = byte(entry)
	out[25] = byte(entry >> 8)
	out[26] = byte(entry >> 16)
	out[27] = byte(entry >> 24)
	copy(out[headerLen:], a.buf)
	for _, at := range a.relocs {
		p := headerLen + at
		v := uint32(out[p]) | uint32(out[p+1])<<8 | uint32(out[p+2])<<16 | uint32(out[p+3])<<24
		patchImm32(out, p, int32(v)+headerLen)
	}
	return out
}

// buildCounterProgram opens "rtc" and, each iteration, sleeps for one RTC
// tick before writing the next digit and a trailing newline to stdout, then
// halts after counterLimit digits (spec.md §8 scenario E5: "counter, which
// sleeps on RTC"). All four registers double as syscall argument registers,
// so there is no register left to hold the loop count or the rtc fd across a
// syscall; both instead live in one-byte memory cells (counterCountVA,
// counterRtcFdVA) reloaded at the top of every iteration, the same way a
// register-starved real ISA spills values to the stack around a call.
func buildCounterProgram() []byte {
	a := newProgramAssembler()

	a.movImm(3, 'r')
	a.storeByte(3, counterRtcNameVA)
	a.movImm(3, 't')
	a.storeByte(3, counterRtcNameVA+1)
	a.movImm(3, 'c')
	a.storeByte(3, counterRtcNameVA+2)
	a.movImm(3, 0)
	a.storeByte(3, counterRtcNameVA+3)

	a.movImm(0, sysOpen)
	a.movImm(1, counterRtcNameVA)
	a.syscall()
	a.storeByte(0, counterRtcFdVA)

	loopStart := a.here()
	a.loadByte(1, counterCountVA)
	a.movImm(2, counterLimit)
	a.cmp(1, 2)
	jzSite := a.here()
	a.jz(0)

	a.loadByte(1, counterRtcFdVA)
	a.movImm(0, sysRead)
	a.movImm(2, counterRtcBufVA)
	a.movImm(3, 4)
	a.syscall()

	a.loadByte(3, counterCountVA)
	a.addImm(3, '0')
	a.storeByte(3, counterDigitVA)
	a.movImm(0, sysWrite)
	a.movImm(1, stdoutFD)
	a.movImm(2, counterDigitVA)
	a.movImm(3, 1)
	a.syscall()

	a.movImm(3, '\n')
	a.storeByte(3, counterNewlineVA)
	a.movImm(0, sysWrite)
	a.movImm(1, stdoutFD)
	a.movImm(2, counterNewlineVA)
	a.movImm(3, 1)
	a.syscall()

	a.loadByte(1, counterCountVA)
	a.addImm(1, 1)
	a.storeByte(1, counterCountVA)
	jmpSite := a.here()
	a.jmp(0)
	end := a.here()
	a.halt()

	patchImm32(a.buf, jzSite+1, end)
	patchImm32(a.buf, jmpSite+1, loopStart)
	return a.link()
}

// counterLimit bounds the demo to a handful of digits; real RTC ticks pace
// every iteration, so a ten-digit run would needlessly slow every test and
// manual invocation that exercises "counter".
const counterLimit = 3

const (
	counterCountVA   = ProgramVA + 4096
	counterDigitVA   = ProgramVA + 4097
	counterNewlineVA = ProgramVA + 4098
	counterRtcNameVA = ProgramVA + 4100
	counterRtcFdVA   = ProgramVA + 4110
	counterRtcBufVA  = ProgramVA + 4120
)

func patchImm32(buf []byte, at int32, v int32) {
	u := uint32(v)
	buf[at] = byte(u)
	buf[at+1] = byte(u >> 8)
	buf[at+2] = byte(u >> 16)
	buf[at+3] = byte(u >> 24)
}

// buildLsProgram opens the current directory and writes back each entry
// name followed by a newline until read returns 0. Since every register
// doubles as a syscall argument slot, the open fd and each read's byte
// count are spilled to one-byte memory cells (lsFdVA, lsCountVA) rather
// than kept live in a register across a syscall, the same convention
// buildCounterProgram uses for its loop induction variable.
func buildLsProgram() []byte {
	a := newProgramAssembler()

	a.movImm(3, '.')
	a.storeByte(3, dotNameVA)
	a.movImm(3, 0)
	a.storeByte(3, dotNameVA+1)
	a.movImm(3, '\n')
	a.storeByte(3, lsNewlineVA)

	a.movImm(0, sysOpen)
	a.movImm(1, dotNameVA)
	a.syscall()
	a.storeByte(0, lsFdVA)

	loopTop := a.here()
	a.loadByte(1, lsFdVA)
	a.movImm(0, sysRead)
	a.movImm(2, lsScratchVA)
	a.movImm(3, FileNameLength)
	a.syscall()
	a.storeByte(0, lsCountVA)

	a.loadByte(1, lsCountVA)
	a.movImm(2, 0)
	a.cmp(1, 2)
	jzSite := a.here()
	a.jz(0)

	a.loadByte(3, lsCountVA)
	a.movImm(0, sysWrite)
	a.movImm(1, stdoutFD)
	a.movImm(2, lsScratchVA)
	a.syscall()

	a.movImm(0, sysWrite)
	a.movImm(1, stdoutFD)
	a.movImm(2, lsNewlineVA)
	a.movImm(3, 1)
	a.syscall()

	a.jmp(loopTop)
	end := a.here()
	a.halt()
	patchImm32(a.buf, jzSite+1, end)
	return a.link()
}

const (
	dotNameVA   = ProgramVA + 8192
	lsFdVA      = ProgramVA + 8192 + 2
	lsCountVA   = ProgramVA + 8192 + 3
	lsNewlineVA = ProgramVA + 8192 + 4
	lsScratchVA = ProgramVA + 8192 + 64
)

// buildCatProgram reads its own argument tail (the file name) via getargs,
// opens it, and writes its contents to stdout in chunks until read returns
// 0, then halts. The open fd and each chunk's byte count are spilled to
// memory cells across syscalls for the same reason buildLsProgram's are.
func buildCatProgram() []byte {
	a := newProgramAssembler()
	a.movImm(0, sysGetargs)
	a.movImm(1, catArgsVA)
	a.movImm(2, ArgsBufSize)
	a.syscall()

	a.movImm(0, sysOpen)
	a.movImm(1, catArgsVA)
	a.syscall()
	a.storeByte(0, catFdVA)

	loopTop := a.here()
	a.loadByte(1, catFdVA)
	a.movImm(0, sysRead)
	a.movImm(2, catBufVA)
	a.movImm(3, catBufLen)
	a.syscall()
	a.storeByte(0, catCountVA)

	a.loadByte(1, catCountVA)
	a.movImm(2, 0)
	a.cmp(1, 2)
	jzSite := a.here()
	a.jz(0)

	a.loadByte(3, catCountVA)
	a.movImm(0, sysWrite)
	a.movImm(1, stdoutFD)
	a.movImm(2, catBufVA)
	a.syscall()
	a.jmp(loopTop)
	end := a.here()
	a.halt()
	patchImm32(a.buf, jzSite+1, end)
	return a.link()
}

const (
	catArgsVA  = ProgramVA + 4096
	catFdVA    = ProgramVA + 4096 + 136
	catCountVA = ProgramVA + 4096 + 137
	catBufVA   = ProgramVA + 4096 + 160
	catBufLen  = 200 // kept under 256 so a byte-sized spilled count can't overflow
)

// buildShellProgram prints a prompt, reads a command line via stdin, and
// executes it, looping forever until halt (which a real shell never calls
// voluntarily; spec.md §4.I's topmost-shell respawn covers its exit).
func buildShellProgram() []byte {
	a := newProgramAssembler()
	a.movImm(3, '>')
	a.storeByte(3, shellPromptVA)
	a.movImm(3, ' ')
	a.storeByte(3, shellPromptVA+1)

	top := a.here()
	a.movImm(0, sysWrite)
	a.movImm(1, stdoutFD)
	a.movImm(2, shellPromptVA)
	a.movImm(3, 2)
	a.syscall()

	a.movImm(0, sysRead)
	a.movImm(1, stdinFD)
	a.movImm(2, shellLineVA)
	a.movImm(3, ArgsBufSize)
	a.syscall()

	a.movImm(0, sysExecute)
	a.movImm(1, shellLineVA)
	a.syscall()
	a.jmp(top)
	return a.link()
}

const (
	shellPromptVA = ProgramVA + 4096
	shellLineVA   = ProgramVA + 4096 + 16
)

// demoFile bundles a name with its linked executable image, for insertion
// into the default filesystem image by fsimage.Builder.
type demoFile struct {
	name string
	data []byte
}

func demoPrograms() []demoFile {
	return []demoFile{
		{"shell", buildShellProgram()},
		{"counter", buildCounterProgram()},
		{"ls", buildLsProgram()},
		{"cat", buildCatProgram()},
	}
}

// buildDefaultFilesystemImage assembles a ready-to-boot fsimage containing
// the demo programs and an rtc device entry, for main.go's --fsimage-less
// quickstart path and for tests that want a real kernel without a
// prebuilt image on disk.
func buildDefaultFilesystemImage() ([]byte, error) {
	b := fsimage.NewBuilder().AddDirectory(".").AddRTCDevice("rtc")
	for _, f := range demoPrograms() {
		b.AddFile(f.name, f.data)
	}
	return b.Build()
}
