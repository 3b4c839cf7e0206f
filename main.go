package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/kflint/vtkernel/fsimage"
)

// runnable backends (EbitenBackend) drive their own blocking event loop;
// the headless backend has none and main waits on a signal instead.
type runnable interface {
	Run() error
}

func main() {
	fsPath := flag.String("fsimage", "", "path to a prebuilt filesystem image; if empty, the built-in demo image is used")
	shellName := flag.String("shell", "shell", "name of the executable to launch as the topmost shell on each terminal")
	flag.Parse()

	raw, err := loadFilesystemImage(*fsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vtkernel: %v\n", err)
		os.Exit(1)
	}

	reader, err := fsimage.NewReader(raw)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vtkernel: invalid filesystem image: %v\n", err)
		os.Exit(1)
	}

	// driver is wired to the backend's key callbacks before it exists, since
	// the backend must be constructed before NewKernel builds the
	// TerminalManager the driver needs; both closures resolve it lazily.
	var driver *KeyboardDriver
	backend, err := NewDefaultBackend(
		func(b byte) { driver.HandleKey(b) },
		func(n int) { driver.SwitchTerminal(n) },
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "vtkernel: video backend: %v\n", err)
		os.Exit(1)
	}

	k := NewKernel(newFsimageHandle(reader), backend)
	k.shellProgram = *shellName
	defer k.Close()

	// onSwitch only fires when TerminalManager.SwitchVisible reports a
	// terminal that has never had a shell started on it (spec.md §4.D step
	// 6); BootShell only starts terminal 0 eagerly, so this is the lazy
	// start path for terminals 1 and 2.
	driver = NewKeyboardDriver(k.terminals, k.interrupts, func(n int) {
		go k.runShellLoop(n)
	})

	k.RunRTC()
	k.BootShell()

	host := NewTerminalHost(driver)
	host.Start()
	defer host.Stop()

	logf("vtkernel booted: backend=%s shell=%q", describeBackend(), *shellName)

	if r, ok := backend.(runnable); ok {
		if err := r.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "vtkernel: %v\n", err)
			os.Exit(1)
		}
		return
	}

	waitForSignal()
}

func loadFilesystemImage(path string) ([]byte, error) {
	if path == "" {
		return buildDefaultFilesystemImage()
	}
	return os.ReadFile(path)
}

func waitForSignal() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
