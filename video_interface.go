package main

// VideoBackend renders the visible terminal's text-mode surface, mirroring
// the teacher's video_interface.go abstraction over GUI/headless backends.
type VideoBackend interface {
	Present(cells [videoCells]textCell)
	Close()
}
