package main

// OperationVector is the four-function capability bundle that makes
// read/write/open/close polymorphic across device kinds (spec.md §4.C,
// "Polymorphic descriptors" in §9). New device types are added by writing a
// new OperationVector, never by adding a case to the dispatcher.
type OperationVector interface {
	// Name identifies the vector for diagnostics and for the file-type to
	// vector mapping performed by open().
	Name() string
	Open(d *Descriptor, name string) error
	// Read/Write ignore id/offset when the underlying object is not
	// seekable (keyboard, terminal, RTC); this uniformity keeps the
	// dispatcher free of per-type conditionals.
	Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error)
	Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error)
	Close(d *Descriptor, fd int) error
}

// Descriptor is one slot in a process's file table (spec.md §3). Slot 0 is
// stdin, slot 1 is stdout; 2..MaxFilesPerProcess-1 are user-opened.
type Descriptor struct {
	vector OperationVector
	inode  uint32
	offset uint32
	inUse  bool
}

// DescriptorTable is the fixed 8-slot per-process file table (component C).
type DescriptorTable struct {
	slots [MaxFilesPerProcess]Descriptor
}

// Whence values for Seek.
const (
	SeekAbsolute = 0
	SeekRelative = 1
)

// Install populates a reserved stdio slot directly, bypassing name lookup.
// Used by the execute path to wire stdin/stdout at process start.
func (t *DescriptorTable) Install(fd int, vec OperationVector) {
	t.slots[fd] = Descriptor{vector: vec, inUse: true}
}

// Open finds the lowest free slot >= 2, installs vec with the given inode
// reference, and invokes the vector's Open side effect. It returns the new
// fd, or an error if the table is full or the vector's Open fails.
func (t *DescriptorTable) Open(name string, vec OperationVector, inode uint32) (int, error) {
	fd := -1
	for i := 2; i < MaxFilesPerProcess; i++ {
		if !t.slots[i].inUse {
			fd = i
			break
		}
	}
	if fd == -1 {
		return -1, newKernelError(ClassExhausted, "too many open files")
	}

	d := &t.slots[fd]
	d.vector = vec
	d.inode = inode
	d.offset = 0
	d.inUse = true
	if err := vec.Open(d, name); err != nil {
		d.inUse = false
		d.vector = nil
		return -1, err
	}
	return fd, nil
}

func (t *DescriptorTable) validFD(fd int) bool {
	return fd >= 0 && fd < MaxFilesPerProcess
}

// Read dispatches through the slot's vector, advancing the offset by the
// returned byte count on success and leaving it unchanged on failure
// (spec.md §4.C).
func (t *DescriptorTable) Read(fd int, buf []byte) (int, error) {
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return -1, newKernelError(ClassBadArgument, "read: bad fd %d", fd)
	}
	d := &t.slots[fd]
	n, err := d.vector.Read(d, fd, d.offset, buf)
	if err != nil {
		return -1, err
	}
	d.offset += uint32(n)
	return n, nil
}

// Write dispatches through the slot's vector, advancing the offset by the
// returned byte count on success.
func (t *DescriptorTable) Write(fd int, buf []byte) (int, error) {
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return -1, newKernelError(ClassBadArgument, "write: bad fd %d", fd)
	}
	d := &t.slots[fd]
	n, err := d.vector.Write(d, fd, d.offset, buf)
	if err != nil {
		return -1, err
	}
	d.offset += uint32(n)
	return n, nil
}

// Close rejects stdio slots and out-of-range/unused fds, otherwise invokes
// the vector's Close and clears the slot (spec.md §4.C, and the "zero the
// whole Descriptor, not sizeof(pointer)" fix from §9's anomaly list).
func (t *DescriptorTable) Close(fd int) error {
	if fd == stdinFD || fd == stdoutFD {
		return newKernelError(ClassBadArgument, "close: fd %d is reserved", fd)
	}
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return newKernelError(ClassBadArgument, "close: bad fd %d", fd)
	}
	d := &t.slots[fd]
	if err := d.vector.Close(d, fd); err != nil {
		return err
	}
	t.slots[fd] = Descriptor{}
	return nil
}

// CloseAllUser closes every in-use non-stdio descriptor, used by the halt
// path (spec.md §4.I step 4).
func (t *DescriptorTable) CloseAllUser() {
	for fd := 2; fd < MaxFilesPerProcess; fd++ {
		if t.slots[fd].inUse {
			_ = t.Close(fd)
		}
	}
}

// Seek repositions a descriptor's offset. SeekAbsolute sets it directly;
// SeekRelative adds to the current offset. The original source's seek()
// routes SeekRelative into the default branch and reports failure; this
// implementation follows the specification's stated intent rather than that
// bug (spec.md §4.C, §9).
func (t *DescriptorTable) Seek(fd int, offset int32, whence int) (uint32, error) {
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return 0, newKernelError(ClassBadArgument, "seek: bad fd %d", fd)
	}
	d := &t.slots[fd]
	switch whence {
	case SeekAbsolute:
		d.offset = uint32(offset)
	case SeekRelative:
		d.offset = uint32(int64(d.offset) + int64(offset))
	default:
		return 0, newKernelError(ClassBadArgument, "seek: bad whence %d", whence)
	}
	return d.offset, nil
}

func (t *DescriptorTable) InUse(fd int) bool {
	return t.validFD(fd) && t.slots[fd].inUse
}

func (t *DescriptorTable) VectorName(fd int) string {
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return ""
	}
	return t.slots[fd].vector.Name()
}

// VectorAt exposes the raw vector behind fd, for call sites that need to type
// switch on the concrete device (the RTC busy-wait path in syscall.go is the
// only one so far). Returns nil for an invalid or unused fd.
func (t *DescriptorTable) VectorAt(fd int) OperationVector {
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return nil
	}
	return t.slots[fd].vector
}

// Inode returns the raw inode field of fd's slot. Device vectors that have no
// real inode (rtc, keyboard, terminal) repurpose this field for their own
// state (RTCVector stores the configured rate here); 0 if fd is invalid.
func (t *DescriptorTable) Inode(fd int) uint32 {
	if !t.validFD(fd) || !t.slots[fd].inUse {
		return 0
	}
	return t.slots[fd].inode
}
