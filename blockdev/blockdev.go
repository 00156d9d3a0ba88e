// Package blockdev provides sector-granular access to a disk image stream.
package blockdev

import (
	"fmt"
	"io"

	fat32emu "github.com/dverbeek/fat32emu"
)

type SectorID uint32

// Syncer is implemented by streams whose writes must be flushed to stable
// storage, such as *os.File and afero.File. Streams without it (in-memory
// buffers) are flushed implicitly.
type Syncer interface {
	Sync() error
}

// SectorStream is an abstraction layer around a seekable stream to make it
// look like a block device: a file that can only be read from or written to
// in whole sectors.
//
// The exposed fields are for informational purposes only and should never be
// changed.
type SectorStream struct {
	// BytesPerSector gives the size of a sector on this device, in bytes. All
	// reads and writes must be done in integer multiples of this size.
	BytesPerSector uint
	// TotalSectors is the total number of sectors in this stream.
	TotalSectors uint
	// StartOffset is an offset from the beginning of the stream, in bytes,
	// that will be considered the beginning of sector 0 for the device. This
	// is useful for skipping over MBRs or other volumes stored on the same
	// image.
	StartOffset int64
	stream      io.ReadWriteSeeker
}

func NewWithGeometry(
	stream io.ReadWriteSeeker, totalSectors uint, sectorSize uint, startOffset int64,
) SectorStream {
	return SectorStream{
		StartOffset:    startOffset,
		BytesPerSector: sectorSize,
		TotalSectors:   totalSectors,
		stream:         stream,
	}
}

// New creates a SectorStream with 512-byte sectors starting at offset 0.
func New(stream io.ReadWriteSeeker, totalSectors uint) SectorStream {
	return NewWithGeometry(stream, totalSectors, 512, 0)
}

// DetermineSectorCount gives the total number of sectors in a stream, rounded
// down to the nearest sector.
func DetermineSectorCount(stream io.Seeker, sectorSize uint) (uint, error) {
	offset, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	return uint(offset / int64(sectorSize)), nil
}

// SectorToFileOffset converts a sector ID into a byte offset into the backing
// I/O stream.
func (device *SectorStream) SectorToFileOffset(id SectorID) (int64, error) {
	if uint(id) >= device.TotalSectors {
		return -1,
			fmt.Errorf(
				"invalid sector ID %d: not in range [0, %d)",
				id,
				device.TotalSectors)
	}
	return device.StartOffset + (int64(id) * int64(device.BytesPerSector)), nil
}

// CheckIOBounds checks to see if `dataLength` bytes can be read from or
// written to the stream starting at sector `id`. If the bounds check fails,
// it returns an error indicating exactly what went wrong.
func (device *SectorStream) CheckIOBounds(id SectorID, dataLength uint) error {
	if uint(id) >= device.TotalSectors {
		return fmt.Errorf(
			"invalid sector ID %d: not in range [0, %d)",
			id,
			device.TotalSectors)
	}

	if dataLength%device.BytesPerSector != 0 {
		return fmt.Errorf(
			"data must be a multiple of the sector size (%d B), got %d (remainder %d)",
			device.BytesPerSector,
			dataLength,
			dataLength%device.BytesPerSector)
	}

	dataSizeInSectors := dataLength / device.BytesPerSector
	if uint(id)+dataSizeInSectors > device.TotalSectors {
		return fmt.Errorf(
			"sector %d plus %d sectors of data extends past end of image",
			id,
			dataSizeInSectors)
	}

	return nil
}

// seekToSector positions the stream pointer at the byte offset where the
// given sector starts.
func (device *SectorStream) seekToSector(id SectorID) error {
	offset, err := device.SectorToFileOffset(id)
	if err != nil {
		return err
	}
	_, err = device.stream.Seek(offset, io.SeekStart)
	return err
}

// Read reads `count` whole sectors starting from `id`. A short read is an
// error.
func (device *SectorStream) Read(id SectorID, count uint) ([]byte, error) {
	err := device.CheckIOBounds(id, count*device.BytesPerSector)
	if err != nil {
		return nil, fat32emu.ErrIOFailed.Wrap(err)
	}

	err = device.seekToSector(id)
	if err != nil {
		return nil, fat32emu.ErrIOFailed.Wrap(err)
	}

	buffer := make([]byte, device.BytesPerSector*count)
	_, err = io.ReadFull(device.stream, buffer)
	if err != nil {
		return nil, fat32emu.ErrIOFailed.Wrap(err)
	}
	return buffer, nil
}

// Write writes data to the stream starting at sector `id`. `data` must be a
// multiple of the sector size. The stream is flushed after every write so the
// underlying file's state stays observable; this does not imply atomicity.
func (device *SectorStream) Write(id SectorID, data []byte) error {
	err := device.CheckIOBounds(id, uint(len(data)))
	if err != nil {
		return fat32emu.ErrIOFailed.Wrap(err)
	}

	err = device.seekToSector(id)
	if err != nil {
		return fat32emu.ErrIOFailed.Wrap(err)
	}

	written, err := device.stream.Write(data)
	if err != nil {
		return fat32emu.ErrIOFailed.Wrap(err)
	}
	if written < len(data) {
		return fat32emu.ErrIOFailed.WithMessage(
			fmt.Sprintf("short write: %d of %d bytes", written, len(data)))
	}

	if syncer, ok := device.stream.(Syncer); ok {
		if err := syncer.Sync(); err != nil {
			return fat32emu.ErrIOFailed.Wrap(err)
		}
	}
	return nil
}

// ReadSector reads a single sector.
func (device *SectorStream) ReadSector(id SectorID) ([]byte, error) {
	return device.Read(id, 1)
}

// WriteSector writes a single sector. `data` must be exactly one sector long.
func (device *SectorStream) WriteSector(id SectorID, data []byte) error {
	if uint(len(data)) != device.BytesPerSector {
		return fat32emu.ErrIOFailed.WithMessage(
			fmt.Sprintf(
				"sector data must be exactly %d bytes, got %d",
				device.BytesPerSector,
				len(data)))
	}
	return device.Write(id, data)
}
