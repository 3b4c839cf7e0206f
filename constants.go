package main

// Pool and descriptor table sizing, taken directly from spec.md §3/§6.
const (
	MaxProcesses        = 8
	MaxTerminals        = 3
	MaxFilesPerProcess  = 8
	ArgsBufSize         = 129 // 128-byte command tail + NUL terminator
	FileNameLength      = 32
	KernelStackSize     = 8 * 1024
	KernelRegionEnd     = 8 * 1024 * 1024
	ProgramVA           = 128 * 1024 * 1024
	videoCols           = 80
	videoRows           = 25
	videoCells          = videoCols * videoRows
)

// ProcessImageSize stands in for the 4 MiB program page of spec.md §3/§6: a
// host process has no page tables to back a literal 4 MiB region with a
// single frame, so the simulated address space allocates exactly this many
// bytes per process image instead. See DESIGN.md for the rationale.
const ProcessImageSize = 64 * 1024

// Executable format (spec.md §6).
var execMagic = [4]byte{0x7F, 'E', 'L', 'F'}

const execEntryPointOffset = 24

// Reserved descriptor slots (spec.md §3 "Descriptor").
const (
	stdinFD  = 0
	stdoutFD = 1
)

// ASCII control bytes given special handling by the terminal and keyboard driver.
const asciiBEL = 0x07
const asciiFF = 0x0C // Ctrl-L
