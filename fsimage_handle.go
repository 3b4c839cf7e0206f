package main

import "github.com/kflint/vtkernel/fsimage"

// fsimageHandle adapts fsimage.Reader to the narrow surface the open/read
// vectors need, keeping the fsimage package free of any kernel-specific
// type (PCB, Descriptor, etc).
type fsimageHandle struct {
	reader *fsimage.Reader
}

func newFsimageHandle(r *fsimage.Reader) *fsimageHandle {
	return &fsimageHandle{reader: r}
}

// Lookup resolves a file name to its directory entry. The caller uses
// entry.Type to pick the right OperationVector (spec.md §4.C "open" table).
func (h *fsimageHandle) Lookup(name string) (fsimage.DirEntry, bool) {
	e, err := h.reader.LookupByName(name)
	if err != nil {
		return fsimage.DirEntry{}, false
	}
	return e, true
}

func (h *fsimageHandle) DirEntryName(index int) (string, bool) {
	e, err := h.reader.LookupByIndex(uint32(index))
	if err != nil {
		return "", false
	}
	return e.NameString(), true
}

func (h *fsimageHandle) ReadInode(inode uint32, offset uint32, buf []byte) (int, error) {
	return h.reader.ReadFile(inode, offset, buf)
}

func (h *fsimageHandle) EntryType(name string) (fsimage.FileType, bool) {
	e, ok := h.Lookup(name)
	if !ok {
		return 0, false
	}
	return e.Type, true
}
