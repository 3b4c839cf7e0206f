package main

import "sync"

// KeyboardDriver is the per-line interrupt handler spec.md §4.E wires to
// IRQKeyboard: HandleKey is the "device" half (it latches the raw byte the
// way a real keyboard controller latches a scancode into its data port) and
// only fires the interrupt; service, registered with the kernel's
// InterruptController as the IRQKeyboard handler, is the ISR half that
// intercepts Ctrl-L before a keystroke ever reaches a process's stdin, then
// forwards everything else to the visible terminal's line buffer (spec.md §6
// "key chords handled by the keyboard driver before the application sees
// them"). Alt-Fn chords can't survive a raw tty byte stream, so service does
// not recognise any byte as a switch; the GUI backend delivers them as key
// events (video_backend_ebiten.go) that main.go routes to SwitchTerminal.
type KeyboardDriver struct {
	terminals *TerminalManager
	interrupts *InterruptController
	onSwitch  func(newTerminal int)

	mu          sync.Mutex
	pendingByte byte
}

func NewKeyboardDriver(tm *TerminalManager, interrupts *InterruptController, onSwitch func(int)) *KeyboardDriver {
	kd := &KeyboardDriver{terminals: tm, interrupts: interrupts, onSwitch: onSwitch}
	interrupts.Register(IRQKeyboard, kd.service)
	return kd
}

// HandleKey latches one raw byte from the host terminal and raises
// IRQKeyboard; the actual handling happens in service.
func (kd *KeyboardDriver) HandleKey(b byte) {
	kd.mu.Lock()
	kd.pendingByte = b
	kd.mu.Unlock()
	kd.interrupts.Fire(IRQKeyboard)
}

// service is the registered IRQKeyboard handler: it reads back the latched
// byte and applies it, either as a kernel-owned chord or as ordinary input
// to the visible terminal.
func (kd *KeyboardDriver) service() {
	kd.mu.Lock()
	b := kd.pendingByte
	kd.mu.Unlock()

	if b == asciiFF {
		v := kd.terminals.Visible()
		kd.terminals.Terminal(v).Clear()
		kd.terminals.Render()
		return
	}

	v := kd.terminals.Visible()
	kd.terminals.Terminal(v).FeedKey(b)
	kd.terminals.Render()
}

// SwitchTerminal is invoked by Alt-F1/F2/F3, whichever path delivers it
// (GUI key event or a future escape-sequence parser over raw bytes).
func (kd *KeyboardDriver) SwitchTerminal(n int) {
	if kd.terminals.SwitchVisible(n) && kd.onSwitch != nil {
		kd.onSwitch(n)
	}
	kd.terminals.Render()
}
