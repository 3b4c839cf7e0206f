package main

import (
	"testing"
	"time"
)

// TestDoReadRTCBlocksUntilTickAndTogglesWaitingFlag exercises the busy-wait
// suspension point spec.md §5 documents for the RTC device end to end
// through doRead, the path "counter" (testdata_programs.go) now relies on
// for scenario E5's pacing.
func TestDoReadRTCBlocksUntilTickAndTogglesWaitingFlag(t *testing.T) {
	rtc := NewRTCDevice()
	go rtc.Run()
	defer rtc.Stop()

	k := &Kernel{pool: NewPool(), scheduler: NewScheduler(), rtc: rtc}
	p := k.pool.Get(0)
	p.addrSpace = NewAddressSpace(0)

	fd, err := p.descs.Open("rtc", NewRTCVector(k.rtc), 0)
	if err != nil {
		t.Fatalf("open rtc: %v", err)
	}

	done := make(chan int32, 1)
	go func() {
		k.mu.Lock()
		n, err := doRead(k, p, fd, ProgramVA, 4)
		k.mu.Unlock()
		if err != nil {
			t.Errorf("doRead: %v", err)
		}
		done <- n
	}()

	deadline := time.Now().Add(2 * time.Second)
	for {
		k.mu.Lock()
		waiting := p.rtcWaiting
		k.mu.Unlock()
		if waiting {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("p.rtcWaiting never became true; doRead isn't blocking on the rtc device")
		}
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("doRead on rtc never returned after a tick")
	}

	if p.rtcWaiting {
		t.Error("p.rtcWaiting should be cleared once doRead returns")
	}
}

// TestDoReadRTCCapsAtBaseRate checks that a process requesting a rate faster
// than the device's base rate (base/rate rounds down to zero ticks, clamped
// to one) still gets its read back within the deadline.
func TestDoReadRTCCapsAtBaseRate(t *testing.T) {
	rtc := NewRTCDevice()
	go rtc.Run()
	defer rtc.Stop()

	k := &Kernel{pool: NewPool(), scheduler: NewScheduler(), rtc: rtc}
	p := k.pool.Get(0)
	p.addrSpace = NewAddressSpace(0)

	vec := NewRTCVector(k.rtc)
	fd, err := p.descs.Open("rtc", vec, 0)
	if err != nil {
		t.Fatalf("open rtc: %v", err)
	}
	if _, err := p.descs.Write(fd, []byte{64, 0, 0, 0}); err != nil { // 64 Hz, far above rtcBaseRateHz
		t.Fatalf("write rate: %v", err)
	}

	done := make(chan struct{})
	go func() {
		k.mu.Lock()
		doRead(k, p, fd, ProgramVA, 4)
		k.mu.Unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("doRead never returned for a rate above the device's base rate")
	}
}
