package main

// UserCPU is the Go-native substitute for "switch to ring 3 and run user
// instructions" (spec.md §4.H, §9). A real kernel sets up an IRET frame and
// lets the processor execute the user's native machine code; a host process
// cannot do that safely or at all. Instead, loaded programs are a tiny
// bytecode for a register machine, and the only way out to the kernel is
// the SYSCALL instruction, which is the literal analogue of an int 0x80
// gate. Everything upstream of this file (execute, the magic-number check,
// the entry-point offset) still treats the loaded bytes as an executable
// image; only what happens after control is transferred to user code is
// reimagined here.
type Opcode byte

const (
	OpHalt Opcode = iota
	OpMovImm
	OpMovReg
	OpAddImm
	OpAddReg
	OpSubImm
	OpJmp
	OpJz
	OpJnz
	OpSyscall
	OpCmp
	OpStoreByte
	OpLoadByte
)

const numRegs = 4

// UserCPU holds the register file and program counter for one process's
// bytecode program, plus the syscall trap state the kernel inspects after
// Step returns true.
type UserCPU struct {
	regs [numRegs]int32
	pc   uint32
	zero bool

	// Set by OpSyscall, read by the kernel's execute loop.
	trapped     bool
	trapNum     int32
	trapArgs    [3]int32
	trapResult  int32
}

func NewUserCPU(entry uint32) *UserCPU {
	return &UserCPU{pc: entry}
}

// SetReturn delivers a syscall's result back into the register the ABI uses
// for return values (register 0, mirroring eax) and resumes past the trap.
func (c *UserCPU) SetReturn(v int32) {
	c.regs[0] = v
	c.trapped = false
}

// Step decodes and executes one instruction out of mem starting at c.pc. It
// returns true when the instruction was SYSCALL (the kernel must service
// the trap before calling Step again) and false when the program continues
// or halts. Halting is reported via the halted return value.
func (c *UserCPU) Step(mem []byte) (trapped bool, halted bool, err error) {
	if c.pc >= uint32(len(mem)) {
		return false, false, newKernelError(ClassFatal, "pc 0x%x out of bounds", c.pc)
	}
	op := Opcode(mem[c.pc])
	switch op {
	case OpHalt:
		return false, true, nil

	case OpMovImm:
		r, imm, err := c.fetchRegImm(mem)
		if err != nil {
			return false, false, err
		}
		c.regs[r] = imm

	case OpMovReg:
		dst, src, err := c.fetchRegReg(mem)
		if err != nil {
			return false, false, err
		}
		c.regs[dst] = c.regs[src]

	case OpAddImm:
		r, imm, err := c.fetchRegImm(mem)
		if err != nil {
			return false, false, err
		}
		c.regs[r] += imm

	case OpAddReg:
		dst, src, err := c.fetchRegReg(mem)
		if err != nil {
			return false, false, err
		}
		c.regs[dst] += c.regs[src]

	case OpSubImm:
		r, imm, err := c.fetchRegImm(mem)
		if err != nil {
			return false, false, err
		}
		c.regs[r] -= imm

	case OpCmp:
		dst, src, err := c.fetchRegReg(mem)
		if err != nil {
			return false, false, err
		}
		c.zero = c.regs[dst] == c.regs[src]

	case OpStoreByte:
		reg, va, err := c.fetchRegImm(mem)
		if err != nil {
			return false, false, err
		}
		off := uint32(va) - ProgramVA
		if off >= uint32(len(mem)) {
			return false, false, newKernelError(ClassFatal, "store out of bounds at va 0x%x", va)
		}
		mem[off] = byte(c.regs[reg])

	case OpLoadByte:
		reg, va, err := c.fetchRegImm(mem)
		if err != nil {
			return false, false, err
		}
		off := uint32(va) - ProgramVA
		if off >= uint32(len(mem)) {
			return false, false, newKernelError(ClassFatal, "load out of bounds at va 0x%x", va)
		}
		c.regs[reg] = int32(mem[off])

	case OpJmp:
		target, err := c.fetchImm32(mem, c.pc+1)
		if err != nil {
			return false, false, err
		}
		c.pc = uint32(target)
		return false, false, nil

	case OpJz, OpJnz:
		target, err := c.fetchImm32(mem, c.pc+1)
		if err != nil {
			return false, false, err
		}
		take := (op == OpJz && c.zero) || (op == OpJnz && !c.zero)
		c.pc += 5
		if take {
			c.pc = uint32(target)
		}
		return false, false, nil

	case OpSyscall:
		c.trapNum = c.regs[0]
		c.trapArgs = [3]int32{c.regs[1], c.regs[2], c.regs[3]}
		c.trapped = true
		c.pc++
		return true, false, nil

	default:
		return false, false, newKernelError(ClassFatal, "illegal opcode 0x%x at pc 0x%x", op, c.pc)
	}
	return false, false, nil
}

func (c *UserCPU) fetchRegImm(mem []byte) (reg int, imm int32, err error) {
	if c.pc+6 > uint32(len(mem)) {
		return 0, 0, newKernelError(ClassFatal, "truncated instruction at pc 0x%x", c.pc)
	}
	reg = int(mem[c.pc+1])
	if reg < 0 || reg >= numRegs {
		return 0, 0, newKernelError(ClassFatal, "bad register %d at pc 0x%x", reg, c.pc)
	}
	imm, err = c.fetchImm32(mem, c.pc+2)
	c.pc += 6
	return reg, imm, err
}

func (c *UserCPU) fetchRegReg(mem []byte) (dst, src int, err error) {
	if c.pc+3 > uint32(len(mem)) {
		return 0, 0, newKernelError(ClassFatal, "truncated instruction at pc 0x%x", c.pc)
	}
	dst = int(mem[c.pc+1])
	src = int(mem[c.pc+2])
	if dst < 0 || dst >= numRegs || src < 0 || src >= numRegs {
		return 0, 0, newKernelError(ClassFatal, "bad register pair (%d,%d) at pc 0x%x", dst, src, c.pc)
	}
	c.pc += 3
	return dst, src, nil
}

func (c *UserCPU) fetchImm32(mem []byte, at uint32) (int32, error) {
	if at+4 > uint32(len(mem)) {
		return 0, newKernelError(ClassFatal, "truncated immediate at pc 0x%x", at)
	}
	v := uint32(mem[at]) | uint32(mem[at+1])<<8 | uint32(mem[at+2])<<16 | uint32(mem[at+3])<<24
	return int32(v), nil
}
