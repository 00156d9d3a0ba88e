package fat32

import (
	"fmt"

	fat32emu "github.com/dverbeek/fat32emu"
	"github.com/dverbeek/fat32emu/blockdev"
)

// checkCluster rejects cluster numbers below the first data cluster. IDs 0
// and 1 are reserved by the FAT and never address data.
func (fs *Filesystem) checkCluster(cluster ClusterID) error {
	if cluster < 2 {
		return fat32emu.ErrInvalidArgument.WithMessage(
			fmt.Sprintf("bad cluster number %d: clusters 0 and 1 are reserved", cluster))
	}
	return nil
}

// ReadCluster reads a whole cluster from the data region as 8 sequential
// sector transfers.
func (fs *Filesystem) ReadCluster(cluster ClusterID) ([]byte, error) {
	if err := fs.checkCluster(cluster); err != nil {
		return nil, err
	}

	firstSector := fs.geometry.ClusterToSector(cluster)
	buffer := make([]byte, 0, ClusterSize)
	for i := uint(0); i < fs.geometry.SectorsPerCluster; i++ {
		sector, err := fs.device.ReadSector(blockdev.SectorID(firstSector + SectorID(i)))
		if err != nil {
			return nil, err
		}
		buffer = append(buffer, sector...)
	}
	return buffer, nil
}

// WriteCluster writes a whole cluster to the data region. `data` must be
// exactly one cluster long; there are no partial-cluster writes.
func (fs *Filesystem) WriteCluster(cluster ClusterID, data []byte) error {
	if err := fs.checkCluster(cluster); err != nil {
		return err
	}
	if len(data) != ClusterSize {
		return fat32emu.ErrInvalidArgument.WithMessage(
			fmt.Sprintf(
				"cluster data must be exactly %d bytes, got %d", ClusterSize, len(data)))
	}

	firstSector := fs.geometry.ClusterToSector(cluster)
	sectorSize := fs.geometry.BytesPerSector
	for i := uint(0); i < fs.geometry.SectorsPerCluster; i++ {
		chunk := data[i*sectorSize : (i+1)*sectorSize]
		err := fs.device.WriteSector(blockdev.SectorID(firstSector+SectorID(i)), chunk)
		if err != nil {
			return err
		}
	}
	return nil
}

// ClearCluster zero-fills a cluster.
func (fs *Filesystem) ClearCluster(cluster ClusterID) error {
	return fs.WriteCluster(cluster, make([]byte, ClusterSize))
}
