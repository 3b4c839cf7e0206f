package fsimage

import (
	"bytes"
	"testing"
)

func buildSample(t *testing.T) *Reader {
	t.Helper()
	b := NewBuilder().
		AddDirectory(".").
		AddRTCDevice("rtc").
		AddFile("frame0.txt", []byte("hello, frame zero\n")).
		AddFile("big", bytes.Repeat([]byte{0x42}, BlockSize+37))
	raw, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	r, err := NewReader(raw)
	if err != nil {
		t.Fatalf("NewReader: %v", err)
	}
	return r
}

func TestLookupByName(t *testing.T) {
	r := buildSample(t)

	d, err := r.LookupByName("frame0.txt")
	if err != nil {
		t.Fatalf("LookupByName: %v", err)
	}
	if d.Type != Regular {
		t.Fatalf("expected Regular, got %v", d.Type)
	}

	if _, err := r.LookupByName("nonexistent"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLookupByIndexOrder(t *testing.T) {
	r := buildSample(t)
	d0, err := r.LookupByIndex(0)
	if err != nil {
		t.Fatalf("LookupByIndex(0): %v", err)
	}
	if d0.NameString() != "." {
		t.Fatalf("entry 0 = %q, want \".\"", d0.NameString())
	}
	if _, err := r.LookupByIndex(r.NumDirEntries()); err != ErrOutOfRange {
		t.Fatalf("expected ErrOutOfRange past end, got %v", err)
	}
}

func TestReadFileExactBytes(t *testing.T) {
	r := buildSample(t)
	d, err := r.LookupByName("frame0.txt")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	buf := make([]byte, 64)
	n, err := r.ReadFile(d.Inode, 0, buf)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "hello, frame zero\n"
	if string(buf[:n]) != want {
		t.Fatalf("got %q, want %q", buf[:n], want)
	}
}

func TestReadFileClippedAndEOF(t *testing.T) {
	r := buildSample(t)
	d, err := r.LookupByName("big")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	total := BlockSize + 37

	buf := make([]byte, 10)
	n, err := r.ReadFile(d.Inode, uint32(total-5), buf)
	if err != nil {
		t.Fatalf("ReadFile near EOF: %v", err)
	}
	if n != 5 {
		t.Fatalf("want min(n, length-offset)=5, got %d", n)
	}

	n, err = r.ReadFile(d.Inode, uint32(total), buf)
	if err != nil {
		t.Fatalf("ReadFile at EOF: %v", err)
	}
	if n != 0 {
		t.Fatalf("want 0 at EOF, got %d", n)
	}

	n, err = r.ReadFile(d.Inode, uint32(total+100), buf)
	if err != nil || n != 0 {
		t.Fatalf("want (0, nil) past EOF, got (%d, %v)", n, err)
	}
}

func TestReadFileSpansBlocks(t *testing.T) {
	r := buildSample(t)
	d, err := r.LookupByName("big")
	if err != nil {
		t.Fatalf("lookup: %v", err)
	}
	buf := make([]byte, BlockSize+37)
	n, err := r.ReadFile(d.Inode, 0, buf)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("got %d bytes, want %d", n, len(buf))
	}
	for i, b := range buf {
		if b != 0x42 {
			t.Fatalf("byte %d = %#x, want 0x42", i, b)
		}
	}
}

func TestReadFileBadInode(t *testing.T) {
	r := buildSample(t)
	buf := make([]byte, 8)
	if _, err := r.ReadFile(r.NumInodes()+5, 0, buf); err != ErrBadInode {
		t.Fatalf("expected ErrBadInode, got %v", err)
	}
}

func TestReadDirectoryConcatenatesNames(t *testing.T) {
	r := buildSample(t)
	buf := make([]byte, FileNameLength*int(r.NumDirEntries()))
	n, err := r.ReadDirectory(0, buf)
	if err != nil {
		t.Fatalf("ReadDirectory: %v", err)
	}
	if n != len(buf) {
		t.Fatalf("got %d bytes, want %d", n, len(buf))
	}
	first := string(bytes.TrimRight(buf[:FileNameLength], "\x00"))
	if first != "." {
		t.Fatalf("first directory name = %q, want \".\"", first)
	}
}

func TestBuilderRejectsTooManyEntries(t *testing.T) {
	b := NewBuilder()
	for i := 0; i < MaxDirEntries+1; i++ {
		b.AddDirectory(".")
	}
	if _, err := b.Build(); err == nil {
		t.Fatal("expected error for too many entries")
	}
}
