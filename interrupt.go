package main

import "sync"

// InterruptLine identifies one of the kernel's interrupt sources. Unlike the
// real PIC's 15 lines, only the ones this simulation actually drives are
// named; everything else in spec.md's inexpressible hardware detail (timer
// chip reprogramming, the PIC's own MMIO) is out of scope (spec.md §9).
type InterruptLine int

const (
	IRQKeyboard InterruptLine = iota
	IRQRTC
	irqLineCount
)

// InterruptHandler services one line. Fire calls it synchronously on
// whatever goroutine raised the interrupt, the way a real ISR runs on
// whatever context the CPU happened to be in; Fire holds no Kernel lock of
// its own, so a handler that touches pool/scheduler state must take
// Kernel.mu itself (see kernel.go's IRQRTC handler), matching the original
// source's expectation that interrupt handlers run with interrupts off.
type InterruptHandler func()

// InterruptController is a generic per-line dispatch table with independent
// masking, the Go-native analogue of the PIC the original source
// programs directly (spec.md §4, component E). It mirrors the teacher's
// MMIO dispatch-table pattern (coprocessor_manager.go's readReg/writeReg
// switch) applied to interrupt lines instead of registers.
type InterruptController struct {
	mu       sync.Mutex
	handlers [irqLineCount]InterruptHandler
	masked   [irqLineCount]bool
}

func NewInterruptController() *InterruptController {
	return &InterruptController{}
}

// Register installs the handler for a line, replacing any previous one.
func (c *InterruptController) Register(line InterruptLine, h InterruptHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[line] = h
}

// Mask and Unmask correspond to setting/clearing the line's bit in the PIC's
// mask register; a masked line's Fire is a no-op.
func (c *InterruptController) Mask(line InterruptLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.masked[line] = true
}

func (c *InterruptController) Unmask(line InterruptLine) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.masked[line] = false
}

// Fire invokes the line's handler if one is registered and the line is not
// masked.
func (c *InterruptController) Fire(line InterruptLine) {
	c.mu.Lock()
	h := c.handlers[line]
	masked := c.masked[line]
	c.mu.Unlock()
	if masked || h == nil {
		return
	}
	h()
}
