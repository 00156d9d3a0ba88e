// Package fat32 implements the on-disk FAT32 engine: the packed boot sector,
// the mirrored allocation table, the cluster-addressed data region, and the
// 8.3-name directory entries that organize files and subdirectories.
//
// The engine deliberately covers a narrow subset of FAT32: a single
// fixed-size volume, single-cluster directories, zero-length files, and
// root-relative single-component paths. Long filenames and timestamps are
// out of scope.
package fat32

type SectorID = uint32
type ClusterID = uint32

const (
	// SectorSize is the only sector size this engine reads or writes.
	SectorSize = 512
	// ClusterSize is the size of one allocation unit: 8 sectors.
	ClusterSize = 4096

	// RootCluster is the cluster holding the root directory. Clusters 0 and 1
	// are never allocatable, so the data region effectively begins here.
	RootCluster ClusterID = 2

	// DirentSize is the size of a single raw directory entry, in bytes.
	DirentSize = 32

	// DirentsPerCluster is the capacity of a directory. Directories occupy
	// exactly one cluster and are never extended into chains.
	DirentsPerCluster = ClusterSize / DirentSize
)

// FAT entry sentinels. Only the low 28 bits of an entry are the cluster
// pointer; the top 4 bits are reserved and must be preserved on write.
const (
	FATEntryFree       uint32 = 0x00000000
	FATMediaDescriptor uint32 = 0x0FFFFFF8
	FATEndOfChain      uint32 = 0x0FFFFFFF
	fatEntryMask       uint32 = 0x0FFFFFFF
)

const (
	// AttrReadOnly is an attribute flag marking a directory entry as
	// read-only.
	AttrReadOnly = 0x01

	// AttrHidden is an attribute flag marking a directory entry as "hidden",
	// meaning it wouldn't show up in normal directory listings.
	AttrHidden = 0x02

	// AttrSystem is an attribute flag marking a directory entry as essential
	// to the operating system.
	AttrSystem = 0x04

	// AttrVolumeLabel is an attribute flag that marks an entry as containing
	// the volume label of the file system. It must reside in the root
	// directory, and there must be only one.
	AttrVolumeLabel = 0x08

	// AttrDirectory is an attribute flag marking a directory entry as being a
	// directory.
	AttrDirectory = 0x10

	// AttrArchive is an attribute flag used by some systems to mark a
	// directory entry as "dirty"; it's set whenever the entry is created or
	// modified.
	AttrArchive = 0x20

	// AttrLongName is the attribute combination that marks an entry as one
	// piece of a long filename. This engine doesn't implement long filenames;
	// directory scans give such entries no special treatment.
	AttrLongName = AttrReadOnly | AttrHidden | AttrSystem | AttrVolumeLabel
)

// Params holds the layout parameters used to create and format an image.
// DefaultParams gives the canonical 20 MiB volume; other layouts come from
// the disks profile registry.
type Params struct {
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	FATCount          uint8
	FATSize           uint32
	TotalSectors      uint32
	RootCluster       ClusterID
	VolumeLabel       string
	OEMName           string
}

// DefaultParams returns the layout of the canonical volume: 40,960 sectors of
// 512 bytes (20 MiB), 8 sectors per cluster, 32 reserved sectors, and two
// 256-sector FAT copies.
func DefaultParams() Params {
	return Params{
		BytesPerSector:    SectorSize,
		SectorsPerCluster: ClusterSize / SectorSize,
		ReservedSectors:   32,
		FATCount:          2,
		FATSize:           256,
		TotalSectors:      40960,
		RootCluster:       RootCluster,
		VolumeLabel:       "NO NAME    ",
		OEMName:           "MSWIN4.1",
	}
}

// TotalSizeBytes gives the exact size of an image with this layout.
func (p Params) TotalSizeBytes() int64 {
	return int64(p.TotalSectors) * int64(p.BytesPerSector)
}

// Geometry is the per-session cache of values derived from the boot sector.
// It is recomputed whenever the image is validated or formatted, so a validly
// formatted image dictates its own layout.
type Geometry struct {
	BytesPerSector    uint
	SectorsPerCluster uint
	FATCount          uint
	// FATSize is the length of one FAT copy, in sectors.
	FATSize uint32
	// FATStart is the absolute sector where the first FAT copy begins.
	FATStart SectorID
	// DataStart is the absolute sector where the data region begins.
	DataStart SectorID
	// TotalClusters is the number of cluster-sized units in the data region.
	// Cluster IDs below 2 are reserved, so valid IDs are [2, TotalClusters).
	TotalClusters uint32
	TotalSectors  uint32
	RootCluster   ClusterID
}

// ClusterToSector maps cluster c (>= 2) to the absolute sector of its first
// sector.
func (g *Geometry) ClusterToSector(c ClusterID) SectorID {
	return g.DataStart + SectorID(c-2)*SectorID(g.SectorsPerCluster)
}
