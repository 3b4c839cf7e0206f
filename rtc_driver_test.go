package main

import (
	"testing"
	"time"
)

func TestRTCDeviceWaitWakesOnTick(t *testing.T) {
	r := NewRTCDevice()
	go r.Run()
	defer r.Stop()

	ch := r.Wait(0)
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for an rtc tick")
	}
}

func TestRTCDeviceCancelWaitStopsDelivery(t *testing.T) {
	r := NewRTCDevice()
	ch := r.Wait(1)
	r.CancelWait(1)
	r.wakeDue()

	select {
	case <-ch:
		t.Fatal("cancelled waiter should not receive a tick")
	default:
	}
}

func TestIsPowerOfTwo(t *testing.T) {
	tests := []struct {
		n    int32
		want bool
	}{
		{0, false},
		{1, true},
		{2, true},
		{3, false},
		{4, true},
		{rtcMaxRateHz, true},
		{-2, false},
	}
	for _, tt := range tests {
		if got := isPowerOfTwo(tt.n); got != tt.want {
			t.Errorf("isPowerOfTwo(%d) = %v, want %v", tt.n, got, tt.want)
		}
	}
}

func TestRTCVectorWriteValidatesRate(t *testing.T) {
	v := NewRTCVector(NewRTCDevice())
	var d Descriptor

	rateBuf := func(n int32) []byte {
		return []byte{byte(n), byte(n >> 8), byte(n >> 16), byte(n >> 24)}
	}

	if _, err := v.Write(&d, 0, 0, rateBuf(4)); err != nil {
		t.Errorf("rate 4 should be accepted: %v", err)
	}
	if _, err := v.Write(&d, 0, 0, rateBuf(3)); err == nil {
		t.Error("rate 3 is not a power of two, expected rejection")
	}
	if _, err := v.Write(&d, 0, 0, rateBuf(rtcMaxRateHz*2)); err == nil {
		t.Error("rate above the device maximum should be rejected")
	}
	if _, err := v.Write(&d, 0, 0, []byte{1, 2}); err == nil {
		t.Error("a short buffer should be rejected")
	}
}
