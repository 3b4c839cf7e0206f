//go:build headless

package main

// Beeper is a no-op in headless builds: there is no audio device to drive
// and tests assert on terminal state, not sound.
type Beeper struct{}

func NewBeeper() (*Beeper, error) { return &Beeper{}, nil }

func (b *Beeper) Watch(t *Terminal) {}

func (b *Beeper) Close() {}
