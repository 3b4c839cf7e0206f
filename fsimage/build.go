package fsimage

import (
	"encoding/binary"
	"fmt"
)

// Builder assembles a filesystem image blob in memory, used by cmd/mkfs and
// by tests that need a valid image without a host directory.
type Builder struct {
	entries []builderEntry
}

type builderEntry struct {
	name     string
	fileType FileType
	data     []byte // nil for RTCDevice and Directory
}

// NewBuilder returns an empty Builder. Callers should add a "." directory
// entry themselves if they want ls-style listings to include it, matching
// the real format's convention that entry 0 is the directory itself.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddFile registers a regular file with the given contents.
func (b *Builder) AddFile(name string, data []byte) *Builder {
	b.entries = append(b.entries, builderEntry{name: name, fileType: Regular, data: data})
	return b
}

// AddDirectory registers the self-referential "." directory entry.
func (b *Builder) AddDirectory(name string) *Builder {
	b.entries = append(b.entries, builderEntry{name: name, fileType: Directory})
	return b
}

// AddRTCDevice registers a named RTC device entry (e.g. "rtc").
func (b *Builder) AddRTCDevice(name string) *Builder {
	b.entries = append(b.entries, builderEntry{name: name, fileType: RTCDevice})
	return b
}

// Build lays out the boot block, inode table and data blocks and returns the
// resulting image. It returns an error if there are more than MaxDirEntries
// entries or if any file name exceeds FileNameLength bytes.
func (b *Builder) Build() ([]byte, error) {
	if len(b.entries) > MaxDirEntries {
		return nil, fmt.Errorf("fsimage: %d entries exceeds max of %d", len(b.entries), MaxDirEntries)
	}

	var blocks [][]byte // data blocks, in allocation order
	type inodeRec struct {
		length     uint32
		blockNums  []uint32
		hasInode   bool
	}
	inodes := make([]inodeRec, 0, len(b.entries))
	inodeIndexFor := make([]uint32, len(b.entries))

	for i, e := range b.entries {
		if len(e.name) > FileNameLength {
			return nil, fmt.Errorf("fsimage: name %q exceeds %d bytes", e.name, FileNameLength)
		}
		if e.fileType != Regular {
			inodeIndexFor[i] = 0 // unused, directories/RTC carry no inode
			continue
		}
		var blockNums []uint32
		for off := 0; off < len(e.data); off += BlockSize {
			end := off + BlockSize
			if end > len(e.data) {
				end = len(e.data)
			}
			blk := make([]byte, BlockSize)
			copy(blk, e.data[off:end])
			blockNums = append(blockNums, uint32(len(blocks)))
			blocks = append(blocks, blk)
		}
		inodeIndexFor[i] = uint32(len(inodes))
		inodes = append(inodes, inodeRec{length: uint32(len(e.data)), blockNums: blockNums, hasInode: true})
	}

	bootBlock := make([]byte, BootBlockSize)
	binary.LittleEndian.PutUint32(bootBlock[0:4], uint32(len(b.entries)))
	binary.LittleEndian.PutUint32(bootBlock[4:8], uint32(len(inodes)))
	binary.LittleEndian.PutUint32(bootBlock[8:12], uint32(len(blocks)))

	dentryBase := 64
	for i, e := range b.entries {
		off := dentryBase + i*DirEntrySize
		copy(bootBlock[off:off+FileNameLength], e.name)
		binary.LittleEndian.PutUint32(bootBlock[off+FileNameLength:off+FileNameLength+4], uint32(e.fileType))
		binary.LittleEndian.PutUint32(bootBlock[off+FileNameLength+4:off+FileNameLength+8], inodeIndexFor[i])
	}

	inodeArea := make([]byte, len(inodes)*BlockSize)
	for i, inode := range inodes {
		base := i * BlockSize
		binary.LittleEndian.PutUint32(inodeArea[base:base+4], inode.length)
		for j, bn := range inode.blockNums {
			binary.LittleEndian.PutUint32(inodeArea[base+4+j*4:base+4+j*4+4], bn)
		}
	}

	dataArea := make([]byte, 0, len(blocks)*BlockSize)
	for _, blk := range blocks {
		dataArea = append(dataArea, blk...)
	}

	img := make([]byte, 0, len(bootBlock)+len(inodeArea)+len(dataArea))
	img = append(img, bootBlock...)
	img = append(img, inodeArea...)
	img = append(img, dataArea...)
	return img, nil
}
