package main

import "sync"

// textCell packs a glyph and an attribute byte, mirroring the teacher's
// video_terminal.go cell model (glyph + attribute written to a flat buffer).
type textCell struct {
	glyph byte
	attr  byte
}

// Terminal is one logical terminal's surface. Unlike the real hardware —
// where only one physical text page exists and a non-visible terminal's
// writes must be redirected into a separate shadow page — a host process has
// independent memory per terminal, so a single buffer serves as both "the
// physical surface" (while visible) and "the shadow" (while not): writes
// always land here regardless of which terminal is currently on screen, and
// TerminalManager only ever presents the visible one to the backend. This
// keeps spec.md §8 invariant 6 (switching never disturbs a background
// terminal's last-written state) true by construction instead of by copying.
type Terminal struct {
	mu sync.Mutex

	surface             [videoCells]textCell
	rowFresh            [videoRows]bool // row began as a fresh newline; bounds how far a backspace may walk upward (spec.md §4.D)
	row, col            int
	backspaceInProgress bool
	wrapPending         bool

	bellCh chan struct{} // non-blocking notification for the beep driver

	inputLine []byte
	lines     chan []byte // completed lines, pushed on Enter
}

func NewTerminal() *Terminal {
	t := &Terminal{
		bellCh: make(chan struct{}, 1),
		lines:  make(chan []byte, 8),
	}
	t.rowFresh[0] = true
	return t
}

// FeedKey implements the keyboard driver's echo-and-buffer half of the
// read path (spec.md §5's keyboard busy-wait, §4.D echo). A line is only
// released to a blocked reader once Enter completes it; backspace edits the
// in-flight line and its on-screen echo together.
func (t *Terminal) FeedKey(b byte) {
	switch b {
	case '\n', '\r':
		t.WriteByte('\n')
		line := append(t.inputLine, '\n')
		t.inputLine = nil
		select {
		case t.lines <- line:
		default: // 8 completed lines already queued unread; drop rather than block the echo path
		}
	case '\b', 0x7F:
		if len(t.inputLine) > 0 {
			t.inputLine = t.inputLine[:len(t.inputLine)-1]
			t.WriteByte('\b')
		}
	default:
		if len(t.inputLine) < ArgsBufSize-1 {
			t.inputLine = append(t.inputLine, b)
			t.WriteByte(b)
		}
	}
}

// ReadLine blocks until a line (terminated by '\n') is available, the
// simulation's stand-in for the kernel's busy-wait keyboard read.
func (t *Terminal) ReadLine() []byte {
	return <-t.lines
}

// WriteByte implements the per-character write algorithm of spec.md §4.D.
// It is the stdout operation vector's underlying primitive.
func (t *Terminal) WriteByte(b byte) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch b {
	case '\n', '\r':
		t.advanceRow()
	case '\b':
		t.backspace()
	case asciiBEL:
		select {
		case t.bellCh <- struct{}{}:
		default:
		}
	case asciiFF: // Ctrl-L: handled at the keyboard driver for "clear this terminal"
		t.clearLocked()
	default:
		t.putChar(b)
	}
}

func (t *Terminal) putChar(b byte) {
	idx := t.row*videoCols + t.col
	t.surface[idx] = textCell{glyph: b, attr: 0x07}
	t.col++
	if t.col >= videoCols {
		t.advanceRow()
		t.rowFresh[t.row] = false // a wrapped row did not start with a newline
	}
}

func (t *Terminal) advanceRow() {
	t.col = 0
	t.row++
	if t.row >= videoRows {
		t.scroll()
		t.row = videoRows - 1
	}
	t.rowFresh[t.row] = true
}

func (t *Terminal) scroll() {
	copy(t.surface[0:], t.surface[videoCols:])
	for i := (videoRows - 1) * videoCols; i < videoCells; i++ {
		t.surface[i] = textCell{}
	}
	copy(t.rowFresh[0:], t.rowFresh[1:])
}

// backspace implements spec.md §4.D's documented edge case: crossing column
// 0 into a row not marked fresh moves up a row to the rightmost column;
// crossing into a fresh row clamps at column 0.
func (t *Terminal) backspace() {
	if t.col > 0 {
		t.col--
		t.surface[t.row*videoCols+t.col] = textCell{}
		return
	}
	if t.row == 0 {
		return
	}
	if t.rowFresh[t.row] {
		return // clamp at column 0
	}
	t.row--
	t.col = videoCols - 1
	t.surface[t.row*videoCols+t.col] = textCell{}
}

func (t *Terminal) clearLocked() {
	for i := range t.surface {
		t.surface[i] = textCell{}
	}
	for i := range t.rowFresh {
		t.rowFresh[i] = false
	}
	t.rowFresh[0] = true
	t.row, t.col = 0, 0
}

// Clear is Ctrl-L's effect: clear only this terminal and flush its pending
// (not yet entered) input line, never touching any other terminal's surface.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clearLocked()
	t.inputLine = nil
}

// snapshot copies the visible surface out under lock, for rendering.
func (t *Terminal) snapshot() [videoCells]textCell {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.surface
}

// TerminalManager owns the MaxTerminals logical terminals and tracks which
// one is visible (component D). It does not touch any process's vidmap page:
// those are private per-process buffers (AddressSpace.MapVideo) that are not
// backed by a terminal's surface and are not re-aimed on a switch.
type TerminalManager struct {
	mu      sync.Mutex
	term    [MaxTerminals]*Terminal
	visible int
	started [MaxTerminals]bool // has a shell ever been launched on this terminal
	backend VideoBackend
}

func NewTerminalManager(backend VideoBackend) *TerminalManager {
	tm := &TerminalManager{backend: backend}
	for i := range tm.term {
		tm.term[i] = NewTerminal()
	}
	tm.started[0] = true
	return tm
}

func (tm *TerminalManager) Terminal(i int) *Terminal {
	if i < 0 || i >= MaxTerminals {
		return nil
	}
	return tm.term[i]
}

func (tm *TerminalManager) Visible() int {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return tm.visible
}

// SwitchVisible implements spec.md §4.D's switch_visible algorithm: present
// the incoming terminal's surface to the backend, make it the visible one,
// and — if no shell has ever run there — arrange for one to be started. No
// copy to or from a shadow is needed since every Terminal keeps its own
// surface, and no vidmap page is re-aimed. Starting the shell is done by the
// caller (kernel.go) via the returned needsShell flag, keeping this type free
// of a dependency on the execute path.
func (tm *TerminalManager) SwitchVisible(newTerminal int) (needsShell bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	if newTerminal == tm.visible || newTerminal < 0 || newTerminal >= MaxTerminals {
		return false
	}

	incoming := tm.term[newTerminal]
	tm.backend.Present(incoming.snapshot())

	tm.visible = newTerminal
	if !tm.started[newTerminal] {
		tm.started[newTerminal] = true
		return true
	}
	return false
}

// Render pushes the visible terminal's surface to the backend. Called after
// any write to the visible terminal.
func (tm *TerminalManager) Render() {
	tm.mu.Lock()
	v := tm.visible
	tm.mu.Unlock()
	tm.backend.Present(tm.term[v].snapshot())
}
