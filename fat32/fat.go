package fat32

import (
	"bytes"
	"encoding/binary"
	"fmt"

	fat32emu "github.com/dverbeek/fat32emu"
	"github.com/dverbeek/fat32emu/blockdev"
	log "github.com/sirupsen/logrus"
)

// fatEntryLocation gives the absolute sector and intra-sector byte offset of
// the entry for `cluster` within FAT copy `copyIndex`.
func (fs *Filesystem) fatEntryLocation(cluster ClusterID, copyIndex uint) (SectorID, uint) {
	sector := fs.geometry.FATStart +
		SectorID(copyIndex)*fs.geometry.FATSize +
		(cluster*4)/SectorID(fs.geometry.BytesPerSector)
	offset := uint(cluster*4) % fs.geometry.BytesPerSector
	return sector, offset
}

// ReadFATEntry returns the 28-bit cluster pointer stored for `cluster` in the
// first FAT copy. Out-of-range clusters read as end-of-chain, which lets
// chain walks terminate without a separate bounds check.
func (fs *Filesystem) ReadFATEntry(cluster ClusterID) (uint32, error) {
	if cluster >= fs.geometry.TotalClusters {
		return FATEndOfChain, nil
	}

	sector, offset := fs.fatEntryLocation(cluster, 0)
	data, err := fs.device.ReadSector(blockdev.SectorID(sector))
	if err != nil {
		return 0, err
	}

	return binary.LittleEndian.Uint32(data[offset:offset+4]) & fatEntryMask, nil
}

// WriteFATEntry stores a 28-bit cluster pointer for `cluster`, preserving the
// reserved top 4 bits of the slot. The write lands in every FAT copy;
// mirroring is a requirement of the format, not an optimization.
func (fs *Filesystem) WriteFATEntry(cluster ClusterID, value uint32) error {
	if cluster >= fs.geometry.TotalClusters {
		return fat32emu.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"cluster %d not in range [0, %d)", cluster, fs.geometry.TotalClusters))
	}

	value &= fatEntryMask

	for copyIndex := uint(0); copyIndex < fs.geometry.FATCount; copyIndex++ {
		sector, offset := fs.fatEntryLocation(cluster, copyIndex)
		data, err := fs.device.ReadSector(blockdev.SectorID(sector))
		if err != nil {
			return err
		}

		slot := binary.LittleEndian.Uint32(data[offset : offset+4])
		binary.LittleEndian.PutUint32(data[offset:offset+4], (slot&^fatEntryMask)|value)

		if err := fs.device.WriteSector(blockdev.SectorID(sector), data); err != nil {
			return err
		}
	}
	return nil
}

// FindFreeCluster scans the FAT linearly from cluster 2 and returns the first
// free entry, or 0 when the volume is full. The cluster count is small enough
// that a linear scan beats maintaining a persisted free-list hint.
func (fs *Filesystem) FindFreeCluster() (ClusterID, error) {
	for cluster := RootCluster; cluster < fs.geometry.TotalClusters; cluster++ {
		entry, err := fs.ReadFATEntry(cluster)
		if err != nil {
			return 0, err
		}
		log.Debugf("cluster %d FAT entry: %#010x", cluster, entry)
		if entry == FATEntryFree {
			log.Debugf("found free cluster: %d", cluster)
			return cluster, nil
		}
	}
	log.Debug("no free clusters found")
	return 0, nil
}

// VerifyFATMirrors reads every FAT copy in full and checks they are
// byte-identical. A mismatch is likely disk corruption, or a crash between
// the per-copy writes of WriteFATEntry.
func (fs *Filesystem) VerifyFATMirrors() error {
	firstCopy, err := fs.readFATCopy(0)
	if err != nil {
		return err
	}

	for copyIndex := uint(1); copyIndex < fs.geometry.FATCount; copyIndex++ {
		other, err := fs.readFATCopy(copyIndex)
		if err != nil {
			return err
		}
		if !bytes.Equal(firstCopy, other) {
			return fat32emu.ErrFileSystemCorrupted.WithMessage(
				fmt.Sprintf("FAT copy 0 differs from FAT copy %d", copyIndex))
		}
	}
	return nil
}

func (fs *Filesystem) readFATCopy(copyIndex uint) ([]byte, error) {
	start := fs.geometry.FATStart + SectorID(copyIndex)*fs.geometry.FATSize
	return fs.device.Read(blockdev.SectorID(start), uint(fs.geometry.FATSize))
}
