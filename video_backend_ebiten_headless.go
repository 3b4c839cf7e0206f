//go:build headless

package main

// NewDefaultBackend returns the headless backend when built with -tags
// headless, mirroring the teacher's build-tag split between
// video_backend_ebiten.go and video_backend_headless.go.
func NewDefaultBackend(onByte func(byte), onSwitch func(int)) (VideoBackend, error) {
	return NewHeadlessBackend(), nil
}

func describeBackend() string {
	return "headless"
}
