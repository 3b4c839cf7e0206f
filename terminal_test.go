package main

import "testing"

func TestTerminalWriteByteAdvancesCursorAndWraps(t *testing.T) {
	term := NewTerminal()
	for i := 0; i < videoCols+2; i++ {
		term.WriteByte('x')
	}
	snap := term.snapshot()
	if snap[0].glyph != 'x' {
		t.Fatalf("first cell = %q, want 'x'", snap[0].glyph)
	}
	// The wrapped two characters should now be on row 1.
	if snap[videoCols].glyph != 'x' || snap[videoCols+1].glyph != 'x' {
		t.Errorf("expected wrap onto row 1")
	}
}

func TestTerminalNewlineAdvancesRowAndResetsColumn(t *testing.T) {
	term := NewTerminal()
	term.WriteByte('a')
	term.WriteByte('\n')
	term.WriteByte('b')
	snap := term.snapshot()
	if snap[0].glyph != 'a' {
		t.Errorf("row 0 col 0 = %q, want 'a'", snap[0].glyph)
	}
	if snap[videoCols].glyph != 'b' {
		t.Errorf("row 1 col 0 = %q, want 'b'", snap[videoCols].glyph)
	}
}

func TestTerminalBackspaceClampsAtFreshRow(t *testing.T) {
	term := NewTerminal()
	term.WriteByte('\n') // row 1 begins fresh
	term.WriteByte('\b') // backspacing at column 0 of a fresh row must clamp
	if term.row != 1 || term.col != 0 {
		t.Errorf("row/col = %d/%d, want 1/0 (clamped)", term.row, term.col)
	}
}

func TestTerminalBackspaceCrossesIntoNonFreshRow(t *testing.T) {
	term := NewTerminal()
	for i := 0; i < videoCols; i++ {
		term.WriteByte('x') // fills row 0 and wraps onto row 1, which is not "fresh"
	}
	if term.row != 1 || term.col != 0 {
		t.Fatalf("setup: row/col = %d/%d, want 1/0", term.row, term.col)
	}
	term.WriteByte('\b')
	if term.row != 0 || term.col != videoCols-1 {
		t.Errorf("row/col = %d/%d, want 0/%d after crossing into a filled row", term.row, term.col, videoCols-1)
	}
}

func TestTerminalScrollOnLastRow(t *testing.T) {
	term := NewTerminal()
	for i := 0; i < videoRows; i++ {
		term.WriteByte('\n')
	}
	term.WriteByte('z')
	snap := term.snapshot()
	if term.row != videoRows-1 {
		t.Fatalf("row = %d, want clamped at %d", term.row, videoRows-1)
	}
	if snap[(videoRows-1)*videoCols].glyph != 'z' {
		t.Errorf("expected 'z' on the bottom row after scrolling")
	}
}

func TestTerminalClearResetsSurfaceAndCursor(t *testing.T) {
	term := NewTerminal()
	term.WriteByte('a')
	term.WriteByte('\n')
	term.Clear()
	snap := term.snapshot()
	if term.row != 0 || term.col != 0 {
		t.Errorf("row/col after Clear = %d/%d, want 0/0", term.row, term.col)
	}
	for i, c := range snap {
		if c.glyph != 0 {
			t.Fatalf("cell %d not cleared: %+v", i, c)
		}
	}
}

func TestTerminalFeedKeyBuffersLineUntilEnter(t *testing.T) {
	term := NewTerminal()
	for _, b := range []byte("ls") {
		term.FeedKey(b)
	}
	select {
	case <-term.lines:
		t.Fatal("line should not be released before Enter")
	default:
	}

	term.FeedKey('\n')
	line := term.ReadLine()
	if string(line) != "ls\n" {
		t.Errorf("line = %q, want %q", line, "ls\n")
	}
}

func TestTerminalFeedKeyBackspaceEditsPendingLine(t *testing.T) {
	term := NewTerminal()
	term.FeedKey('l')
	term.FeedKey('s')
	term.FeedKey('x')
	term.FeedKey(0x7F) // DEL acts as backspace
	term.FeedKey('\n')

	line := term.ReadLine()
	if string(line) != "ls\n" {
		t.Errorf("line = %q, want %q", line, "ls\n")
	}
}

func TestTerminalManagerSwitchVisibleStartsShellOnlyOnce(t *testing.T) {
	backend := NewHeadlessBackend()
	tm := NewTerminalManager(backend)

	if needsShell := tm.SwitchVisible(1); !needsShell {
		t.Error("first switch to terminal 1 should request a shell")
	}
	if needsShell := tm.SwitchVisible(0); needsShell {
		t.Error("terminal 0 already started at boot, should not request a shell")
	}
	if needsShell := tm.SwitchVisible(1); needsShell {
		t.Error("terminal 1 already started, second switch should not request a shell")
	}
}

func TestTerminalManagerSwitchVisibleLeavesBackgroundSurfaceUntouched(t *testing.T) {
	backend := NewHeadlessBackend()
	tm := NewTerminalManager(backend)

	tm.Terminal(1).WriteByte('Q')
	tm.SwitchVisible(1)
	tm.SwitchVisible(0)
	tm.SwitchVisible(1)

	snap := tm.Terminal(1).snapshot()
	if snap[0].glyph != 'Q' {
		t.Errorf("background terminal state was disturbed by switching: %q", snap[0].glyph)
	}
}
