package fat32

import (
	"encoding/binary"

	"github.com/dverbeek/fat32emu/blockdev"
	"github.com/noxer/bytewriter"
)

// Format unconditionally rewrites the image as an empty volume with the
// session's layout parameters: a fresh boot sector, both FAT copies holding
// only the two reserved entries and the root cluster's end-of-chain mark, and
// a root directory containing "." and "..". Whatever the image held before is gone. Format is the one operation
// that doesn't require a valid volume — it's what creates validity.
func (fs *Filesystem) Format() error {
	bs := NewRawBootSector(fs.params)
	bootData, err := bs.Bytes()
	if err != nil {
		return err
	}
	if err := fs.device.WriteSector(0, bootData); err != nil {
		return err
	}

	// The freshly written boot sector dictates the layout from here on.
	fs.geometry = bs.DeriveGeometry()

	// First FAT sector of each copy: entry 0 carries the media descriptor,
	// entry 1 the end-of-chain sentinel, and the rest start out free.
	firstSector := make([]byte, fs.geometry.BytesPerSector)
	writer := bytewriter.New(firstSector)
	binary.Write(writer, binary.LittleEndian, FATMediaDescriptor)
	binary.Write(writer, binary.LittleEndian, FATEndOfChain)

	for copyIndex := uint(0); copyIndex < fs.geometry.FATCount; copyIndex++ {
		copyStart := fs.geometry.FATStart + SectorID(copyIndex)*fs.geometry.FATSize
		if err := fs.device.WriteSector(blockdev.SectorID(copyStart), firstSector); err != nil {
			return err
		}
	}

	// Zero the remaining FAT sectors of both copies.
	zeroSector := make([]byte, fs.geometry.BytesPerSector)
	for copyIndex := uint(0); copyIndex < fs.geometry.FATCount; copyIndex++ {
		copyStart := fs.geometry.FATStart + SectorID(copyIndex)*fs.geometry.FATSize
		for sector := SectorID(1); sector < fs.geometry.FATSize; sector++ {
			err := fs.device.WriteSector(blockdev.SectorID(copyStart+sector), zeroSector)
			if err != nil {
				return err
			}
		}
	}

	// The root directory points at itself through "." and records cluster 0
	// as its parent.
	root := newDirectoryCluster(fs.geometry.RootCluster, 0)
	if err := fs.writeDirectory(root); err != nil {
		return err
	}
	if err := fs.WriteFATEntry(fs.geometry.RootCluster, FATEndOfChain); err != nil {
		return err
	}

	return nil
}
