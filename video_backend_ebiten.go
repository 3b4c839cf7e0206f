//go:build !headless

package main

import (
	"fmt"
	"image/color"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"golang.design/x/clipboard"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

const (
	glyphW = 7
	glyphH = 13
)

// EbitenBackend renders the visible terminal's 80x25 text surface into a
// window, mirroring the teacher's video_backend_ebiten.go glyph blitting and
// clipboard-paste handling over a flat framebuffer.
type EbitenBackend struct {
	mu       sync.RWMutex
	cells    [videoCells]textCell
	face     font.Face
	img      *ebiten.Image
	onByte   func(byte)
	onSwitch func(int)

	clipboardOnce sync.Once
	clipboardOK   bool
}

func NewEbitenBackend(onByte func(byte), onSwitch func(int)) *EbitenBackend {
	return &EbitenBackend{
		face:     basicfont.Face7x13,
		img:      ebiten.NewImage(videoCols*glyphW, videoRows*glyphH),
		onByte:   onByte,
		onSwitch: onSwitch,
	}
}

func (eb *EbitenBackend) Present(cells [videoCells]textCell) {
	eb.mu.Lock()
	eb.cells = cells
	eb.mu.Unlock()
}

func (eb *EbitenBackend) Close() {}

func (eb *EbitenBackend) Run() error {
	ebiten.SetWindowSize(videoCols*glyphW, videoRows*glyphH)
	ebiten.SetWindowTitle("vtkernel")
	return ebiten.RunGame(eb)
}

func (eb *EbitenBackend) Update() error {
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		switch k {
		case ebiten.KeyF1:
			if ebiten.IsKeyPressed(ebiten.KeyAlt) {
				eb.onSwitch(0)
			}
		case ebiten.KeyF2:
			if ebiten.IsKeyPressed(ebiten.KeyAlt) {
				eb.onSwitch(1)
			}
		case ebiten.KeyF3:
			if ebiten.IsKeyPressed(ebiten.KeyAlt) {
				eb.onSwitch(2)
			}
		case ebiten.KeyV:
			if ebiten.IsKeyPressed(ebiten.KeyControl) {
				eb.handleClipboardPaste()
			}
		}
	}
	return nil
}

func (eb *EbitenBackend) handleClipboardPaste() {
	eb.clipboardOnce.Do(func() {
		eb.clipboardOK = clipboard.Init() == nil
	})
	if !eb.clipboardOK {
		return
	}
	data := clipboard.Read(clipboard.FmtText)
	for _, b := range data {
		eb.onByte(b)
	}
}

func (eb *EbitenBackend) Draw(screen *ebiten.Image) {
	eb.mu.RLock()
	cells := eb.cells
	eb.mu.RUnlock()

	eb.img.Fill(color.Black)
	for row := 0; row < videoRows; row++ {
		for col := 0; col < videoCols; col++ {
			c := cells[row*videoCols+col]
			if c.glyph == 0 || c.glyph == ' ' {
				continue
			}
			text := string(rune(c.glyph))
			x := col * glyphW
			y := row*glyphH + glyphH - 3
			ebitenutil.DebugPrintAt(eb.img, text, x, y)
		}
	}
	screen.DrawImage(eb.img, nil)
}

func (eb *EbitenBackend) Layout(outsideWidth, outsideHeight int) (int, int) {
	return videoCols * glyphW, videoRows * glyphH
}

// NewDefaultBackend returns the interactive GUI backend.
func NewDefaultBackend(onByte func(byte), onSwitch func(int)) (VideoBackend, error) {
	b := NewEbitenBackend(onByte, onSwitch)
	return b, nil
}

func describeBackend() string {
	return fmt.Sprintf("ebiten (%dx%d window)", videoCols*glyphW, videoRows*glyphH)
}
