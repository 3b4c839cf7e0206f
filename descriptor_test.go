package main

import "testing"

// stubVector is a minimal OperationVector for exercising DescriptorTable in
// isolation from any real device.
type stubVector struct {
	name       string
	openErr    error
	readBytes  []byte
	writeCount int
	closed     bool
}

func (v *stubVector) Name() string { return v.name }

func (v *stubVector) Open(d *Descriptor, name string) error { return v.openErr }

func (v *stubVector) Read(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	n := copy(buf, v.readBytes)
	return n, nil
}

func (v *stubVector) Write(d *Descriptor, id int, offset uint32, buf []byte) (int, error) {
	v.writeCount += len(buf)
	return len(buf), nil
}

func (v *stubVector) Close(d *Descriptor, fd int) error {
	v.closed = true
	return nil
}

func TestDescriptorTableOpenAssignsLowestFreeSlotAboveStdio(t *testing.T) {
	var tbl DescriptorTable
	v := &stubVector{name: "stub"}

	fd, err := tbl.Open("a", v, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if fd != 2 {
		t.Errorf("fd = %d, want 2 (slots 0/1 reserved for stdio)", fd)
	}
}

func TestDescriptorTableOpenFailsWhenVectorRejects(t *testing.T) {
	var tbl DescriptorTable
	v := &stubVector{name: "stub", openErr: newKernelError(ClassNotFound, "nope")}

	if _, err := tbl.Open("a", v, 0); err == nil {
		t.Fatal("expected Open to fail when the vector's Open does")
	}
	if tbl.InUse(2) {
		t.Error("slot should be released after a failed Open")
	}
}

func TestDescriptorTableOpenExhaustion(t *testing.T) {
	var tbl DescriptorTable
	for i := 2; i < MaxFilesPerProcess; i++ {
		if _, err := tbl.Open("a", &stubVector{name: "stub"}, 0); err != nil {
			t.Fatalf("Open %d: %v", i, err)
		}
	}
	if _, err := tbl.Open("overflow", &stubVector{name: "stub"}, 0); err == nil {
		t.Fatal("expected exhaustion error once every slot is in use")
	}
}

func TestDescriptorTableReadAdvancesOffset(t *testing.T) {
	var tbl DescriptorTable
	v := &stubVector{name: "stub", readBytes: []byte{1, 2, 3}}
	fd, err := tbl.Open("a", v, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	buf := make([]byte, 3)
	n, err := tbl.Read(fd, buf)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if n != 3 {
		t.Errorf("n = %d, want 3", n)
	}
	if tbl.slots[fd].offset != 3 {
		t.Errorf("offset = %d, want 3", tbl.slots[fd].offset)
	}
}

func TestDescriptorTableCloseRejectsStdio(t *testing.T) {
	var tbl DescriptorTable
	tbl.Install(stdinFD, &stubVector{name: "stdin"})
	tbl.Install(stdoutFD, &stubVector{name: "stdout"})

	if err := tbl.Close(stdinFD); err == nil {
		t.Error("expected Close(stdin) to be rejected")
	}
	if err := tbl.Close(stdoutFD); err == nil {
		t.Error("expected Close(stdout) to be rejected")
	}
}

func TestDescriptorTableCloseAllUserLeavesStdioAlone(t *testing.T) {
	var tbl DescriptorTable
	tbl.Install(stdinFD, &stubVector{name: "stdin"})
	tbl.Install(stdoutFD, &stubVector{name: "stdout"})
	v := &stubVector{name: "stub"}
	fd, err := tbl.Open("a", v, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	tbl.CloseAllUser()

	if !v.closed {
		t.Error("user descriptor should have been closed")
	}
	if tbl.InUse(fd) {
		t.Error("user descriptor slot should be free after CloseAllUser")
	}
	if !tbl.InUse(stdinFD) || !tbl.InUse(stdoutFD) {
		t.Error("CloseAllUser must not touch stdio slots")
	}
}

func TestDescriptorTableSeek(t *testing.T) {
	var tbl DescriptorTable
	fd, err := tbl.Open("a", &stubVector{name: "stub"}, 0)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if _, err := tbl.Seek(fd, 10, SeekAbsolute); err != nil {
		t.Fatalf("Seek absolute: %v", err)
	}
	off, err := tbl.Seek(fd, 5, SeekRelative)
	if err != nil {
		t.Fatalf("Seek relative: %v", err)
	}
	if off != 15 {
		t.Errorf("offset = %d, want 15 after relative seek", off)
	}

	if _, err := tbl.Seek(fd, 0, 99); err == nil {
		t.Error("expected error for unknown whence value")
	}
}
