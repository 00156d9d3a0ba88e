// Package fat32emu provides a FAT32 filesystem emulator backed by a single
// fixed-size disk image file. The on-disk engine lives in the fat32
// subpackage; this package holds the error model and statistics types shared
// across layers.
package fat32emu

// FSStat reports point-in-time information about a mounted file system.
// Counts are computed on demand by scanning the allocation table; nothing in
// this structure is persisted to the image.
type FSStat struct {
	// BlockSize gives the size of the file system's allocation unit, in bytes.
	BlockSize uint
	// TotalBlocks is the total number of allocation units in the data region.
	TotalBlocks uint64
	// BlocksFree is the number of unallocated units.
	BlocksFree uint64
	// BlocksAvailable is the number of units available to new files. There are
	// no reserved-for-root quotas here, so this always equals BlocksFree.
	BlocksAvailable uint64
	// Files is the number of live entries in the current directory.
	Files uint64
	// FilesFree is the number of directory slots still open in the current
	// directory.
	FilesFree     uint64
	MaxNameLength uint
}
