package main

// The five OperationVector implementations below are the kernel's device
// drivers (spec.md §4.C). Each wraps a concrete device and exposes it
// through the same Open/Read/Write/Close shape, mirroring the way the
// teacher's MMIO devices (file_io.go, terminal_io.go) all expose
// HandleRead/HandleWrite behind one interface regardless of what sits
// underneath.

// --- RTC vector -------------------------------------------------------

// RTCVector backs fd slots opened against "rtc". Read blocks (from the
// caller's perspective, via proc.rtcWaiting) until the next tick at the
// process's configured rate; Write changes that rate (spec.md §5, RTC).
type RTCVector struct {
	clock *RTCDevice
}

func NewRTCVector(clock *RTCDevice) *RTCVector { return &RTCVector{clock: clock} }

func (v *RTCVector) Name() string { return "rtc" }

func (v *RTCVector) Open(d *Descriptor, name string) error {
	d.inode = uint32(rtcDefaultRateHz)
	return nil
}

// Read is a marker call: by the time it runs, doRead's waitForRTC has
// already blocked the caller until its tick was due and cleared
// proc.rtcWaiting, so there is nothing left to do here but report success
// with zero bytes transferred, matching the real rtc_read whose only job is
// to synchronize, not move data.
func (v *RTCVector) Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return 0, nil
}

// Write sets the interrupt rate in Hz. The rate must be a power of two in
// [2, rtcMaxRateHz]; any other value is rejected, not rounded (spec.md §5).
func (v *RTCVector) Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	if len(buf) < 4 {
		return -1, newKernelError(ClassBadArgument, "rtc write needs a 4-byte rate")
	}
	rate := int32(buf[0]) | int32(buf[1])<<8 | int32(buf[2])<<16 | int32(buf[3])<<24
	if !isPowerOfTwo(rate) || rate < 2 || rate > rtcMaxRateHz {
		return -1, newKernelError(ClassBadArgument, "rtc rate %d must be a power of two in [2,%d]", rate, rtcMaxRateHz)
	}
	d.inode = uint32(rate)
	return 4, nil
}

func (v *RTCVector) Close(d *Descriptor, fd int) error { return nil }

func isPowerOfTwo(n int32) bool { return n > 0 && n&(n-1) == 0 }

// --- Directory vector ---------------------------------------------------

// DirectoryVector backs the single "." directory entry. A directory fd
// reads back one directory-entry name per Read call, in fsimage dentry
// order, and returns 0 on every Read after the last entry (spec.md §4.D "ls").
type DirectoryVector struct {
	fs *fsimageHandle
}

func NewDirectoryVector(fs *fsimageHandle) *DirectoryVector { return &DirectoryVector{fs: fs} }

func (v *DirectoryVector) Name() string { return "directory" }

func (v *DirectoryVector) Open(d *Descriptor, name string) error { return nil }

func (v *DirectoryVector) Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	idx := int(d.inode)
	name, ok := v.fs.DirEntryName(idx)
	if !ok {
		return 0, nil
	}
	d.inode = uint32(idx + 1)
	n := copy(buf, name)
	return n, nil
}

func (v *DirectoryVector) Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return -1, newKernelError(ClassNotSupported, "directory is not writable")
}

func (v *DirectoryVector) Close(d *Descriptor, fd int) error { return nil }

// --- Regular file vector -------------------------------------------------

// FileVector backs ordinary file descriptors, wrapping the read-only
// fsimage.Reader (spec.md §4.D "cat").
type FileVector struct {
	fs *fsimageHandle
}

func NewFileVector(fs *fsimageHandle) *FileVector { return &FileVector{fs: fs} }

func (v *FileVector) Name() string { return "file" }

func (v *FileVector) Open(d *Descriptor, name string) error {
	entry, ok := v.fs.Lookup(name)
	if !ok {
		return newKernelError(ClassNotFound, "no such file %q", name)
	}
	d.inode = entry.Inode
	return nil
}

func (v *FileVector) Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return v.fs.ReadInode(d.inode, offset, buf)
}

func (v *FileVector) Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return -1, newKernelError(ClassNotSupported, "fsimage is read-only")
}

func (v *FileVector) Close(d *Descriptor, fd int) error { return nil }

// --- Keyboard / terminal stdio vectors -----------------------------------

// KeyboardVector backs stdin (fd 0). Its Read always fails: stdin reads are
// served by syscall.go's readStdin, which blocks on the owning process's
// terminal line queue (spec.md §4.D terminal read).
type KeyboardVector struct {
	terminals *TerminalManager
}

func NewKeyboardVector(tm *TerminalManager) *KeyboardVector { return &KeyboardVector{terminals: tm} }

func (v *KeyboardVector) Name() string { return "stdin" }

func (v *KeyboardVector) Open(d *Descriptor, name string) error { return nil }

func (v *KeyboardVector) Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return 0, newKernelError(ClassNotSupported, "stdin read must go through the blocking terminal path")
}

func (v *KeyboardVector) Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return -1, newKernelError(ClassNotSupported, "stdin is not writable")
}

func (v *KeyboardVector) Close(d *Descriptor, fd int) error { return nil }

// TerminalVector backs stdout (fd 1): every Write is echoed to the owning
// process's terminal (spec.md §4.D terminal write).
type TerminalVector struct {
	terminals *TerminalManager
	termIndex func() int
}

func NewTerminalVector(tm *TerminalManager, termIndex func() int) *TerminalVector {
	return &TerminalVector{terminals: tm, termIndex: termIndex}
}

func (v *TerminalVector) Name() string { return "stdout" }

func (v *TerminalVector) Open(d *Descriptor, name string) error { return nil }

func (v *TerminalVector) Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	return -1, newKernelError(ClassNotSupported, "stdout is not readable")
}

func (v *TerminalVector) Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	t := v.terminals.Terminal(v.termIndex())
	for _, b := range buf {
		t.WriteByte(b)
	}
	v.terminals.Render()
	return len(buf), nil
}

func (v *TerminalVector) Close(d *Descriptor, fd int) error { return nil }
