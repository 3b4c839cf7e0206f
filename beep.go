//go:build !headless

package main

import (
	"math"
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

const (
	beepSampleRate = 44100
	beepFreqHz     = 880.0
	beepDurationMs = 120
)

// Beeper turns a Terminal's bellCh signals into a short sine-wave tone,
// grounded on the oto.Context/oto.Player Reader-based playback model the
// teacher uses for chip audio output. It is the host-process analogue of
// toggling the PC speaker's gate bit.
type Beeper struct {
	ctx     *oto.Context
	player  *oto.Player
	playing atomic.Bool
	mu      sync.Mutex
	pos     int
	total   int
}

func NewBeeper() (*Beeper, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   beepSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	})
	if err != nil {
		return nil, err
	}
	<-ready

	b := &Beeper{ctx: ctx, total: beepSampleRate * beepDurationMs / 1000}
	b.player = ctx.NewPlayer(b)
	return b, nil
}

// Read implements io.Reader for oto.Player: it emits a decaying sine wave
// for beepDurationMs after Trigger, then silence.
func (b *Beeper) Read(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := len(p) / 4
	for i := 0; i < n; i++ {
		var sample float32
		if b.playing.Load() && b.pos < b.total {
			t := float64(b.pos) / beepSampleRate
			decay := 1.0 - float64(b.pos)/float64(b.total)
			sample = float32(math.Sin(2*math.Pi*beepFreqHz*t) * decay * 0.3)
			b.pos++
		} else {
			b.playing.Store(false)
			b.pos = 0
		}
		bits := math.Float32bits(sample)
		p[i*4+0] = byte(bits)
		p[i*4+1] = byte(bits >> 8)
		p[i*4+2] = byte(bits >> 16)
		p[i*4+3] = byte(bits >> 24)
	}
	return n * 4, nil
}

// Trigger starts (or restarts) the tone and ensures the player is running.
func (b *Beeper) Trigger() {
	b.mu.Lock()
	b.pos = 0
	b.playing.Store(true)
	b.mu.Unlock()
	if !b.player.IsPlaying() {
		b.player.Play()
	}
}

// Watch drains a terminal's bell channel for the lifetime of the process,
// triggering a tone on every BEL byte written to it.
func (b *Beeper) Watch(t *Terminal) {
	go func() {
		for range t.bellCh {
			b.Trigger()
		}
	}()
}

func (b *Beeper) Close() {
	b.player.Close()
	b.ctx.Suspend()
}
