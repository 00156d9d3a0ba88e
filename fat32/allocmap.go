// In-memory cluster allocation bitmap

package fat32

import (
	"github.com/boljen/go-bitmap"
	fat32emu "github.com/dverbeek/fat32emu"
)

// AllocationMap is a point-in-time bitmap of cluster usage, built by scanning
// the FAT. Bit i covers cluster i; the two reserved entries are always
// marked. Nothing here is persisted — the FAT itself is the only durable
// record of allocation.
type AllocationMap struct {
	bits          bitmap.Bitmap
	TotalClusters uint32
}

// BuildAllocationMap scans every FAT entry in the first copy and records
// which clusters are in use.
func (fs *Filesystem) BuildAllocationMap() (AllocationMap, error) {
	alloc := AllocationMap{
		bits:          bitmap.New(int(fs.geometry.TotalClusters)),
		TotalClusters: fs.geometry.TotalClusters,
	}

	alloc.bits.Set(0, true)
	alloc.bits.Set(1, true)

	for cluster := RootCluster; cluster < fs.geometry.TotalClusters; cluster++ {
		entry, err := fs.ReadFATEntry(cluster)
		if err != nil {
			return AllocationMap{}, err
		}
		if entry != FATEntryFree {
			alloc.bits.Set(int(cluster), true)
		}
	}
	return alloc, nil
}

// IsAllocated reports whether the cluster was in use at scan time.
func (alloc *AllocationMap) IsAllocated(cluster ClusterID) bool {
	if cluster >= alloc.TotalClusters {
		return false
	}
	return alloc.bits.Get(int(cluster))
}

// FreeCount returns the number of unallocated clusters.
func (alloc *AllocationMap) FreeCount() uint64 {
	var free uint64
	for cluster := RootCluster; cluster < alloc.TotalClusters; cluster++ {
		if !alloc.bits.Get(int(cluster)) {
			free++
		}
	}
	return free
}

// FSStat reports usage statistics for the volume and the current directory.
// The cluster counts come from a fresh FAT scan; the file counts from the
// current directory's live entries.
func (fs *Filesystem) FSStat() (fat32emu.FSStat, error) {
	if err := fs.IsValid(); err != nil {
		return fat32emu.FSStat{}, err
	}

	alloc, err := fs.BuildAllocationMap()
	if err != nil {
		return fat32emu.FSStat{}, err
	}

	dir, err := fs.readDirectory(fs.currentCluster)
	if err != nil {
		return fat32emu.FSStat{}, err
	}
	live := uint64(dir.countLive())

	free := alloc.FreeCount()
	return fat32emu.FSStat{
		BlockSize:       ClusterSize,
		TotalBlocks:     uint64(fs.geometry.TotalClusters),
		BlocksFree:      free,
		BlocksAvailable: free,
		Files:           live,
		FilesFree:       uint64(DirentsPerCluster) - live,
		// Eight base characters, the separator, and a three-character
		// extension.
		MaxNameLength: 12,
	}, nil
}
