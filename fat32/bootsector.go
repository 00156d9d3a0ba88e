package fat32

import (
	"bytes"
	"encoding/binary"
	"fmt"

	fat32emu "github.com/dverbeek/fat32emu"
)

// RawBootSector is the on-disk representation of sector 0, all 512 bytes of
// it, packed little-endian. Fields are laid out exactly as the BPB and FAT32
// extension define them; serialization goes through encoding/binary so host
// endianness never matters.
type RawBootSector struct {
	JmpBoot           [3]byte
	OEMName           [8]byte
	BytesPerSector    uint16
	SectorsPerCluster uint8
	ReservedSectors   uint16
	NumFATs           uint8
	RootEntryCount    uint16
	TotalSectors16    uint16
	Media             uint8
	FATSize16         uint16
	SectorsPerTrack   uint16
	NumHeads          uint16
	HiddenSectors     uint32
	TotalSectors32    uint32
	FATSize32         uint32
	ExtFlags          uint16
	FSVersion         uint16
	RootCluster       uint32
	FSInfo            uint16
	BackupBootSector  uint16
	Reserved          [12]byte
	DriveNumber       uint8
	Reserved1         uint8
	BootSignature     uint8
	VolumeID          uint32
	VolumeLabel       [11]byte
	FSType            [8]byte
	BootCode          [420]byte
	Signature         uint16
}

// BootSectorSignature is the value of the trailing two-byte signature at
// offset 510.
const BootSectorSignature = 0xAA55

// fsTypeFAT32 is the prefix the FSType field must carry for the volume to be
// recognized.
var fsTypeFAT32 = []byte("FAT32")

// NewRawBootSector builds the boot sector for a fresh volume with the given
// layout.
func NewRawBootSector(p Params) RawBootSector {
	bs := RawBootSector{
		JmpBoot:           [3]byte{0xEB, 0x58, 0x90},
		BytesPerSector:    p.BytesPerSector,
		SectorsPerCluster: p.SectorsPerCluster,
		ReservedSectors:   p.ReservedSectors,
		NumFATs:           p.FATCount,
		// RootEntryCount and FATSize16 stay zero: FAT32 keeps the root
		// directory in the data region and the FAT size in FATSize32.
		Media:            0xF8,
		SectorsPerTrack:  32,
		NumHeads:         64,
		TotalSectors32:   p.TotalSectors,
		FATSize32:        p.FATSize,
		RootCluster:      p.RootCluster,
		FSInfo:           1,
		BackupBootSector: 6,
		DriveNumber:      0x80,
		BootSignature:    0x29,
		VolumeID:         0x12345678,
		Signature:        BootSectorSignature,
	}
	copy(bs.OEMName[:], padRight(p.OEMName, len(bs.OEMName)))
	copy(bs.VolumeLabel[:], padRight(p.VolumeLabel, len(bs.VolumeLabel)))
	copy(bs.FSType[:], padRight("FAT32", len(bs.FSType)))
	return bs
}

func padRight(s string, width int) []byte {
	padded := make([]byte, width)
	for i := range padded {
		padded[i] = ' '
	}
	copy(padded, s)
	return padded
}

// ReadRawBootSector deserializes a 512-byte buffer into a RawBootSector.
func ReadRawBootSector(data []byte) (RawBootSector, error) {
	var bs RawBootSector
	if len(data) != SectorSize {
		return bs, fat32emu.ErrIOFailed.WithMessage(
			fmt.Sprintf("boot sector must be %d bytes, got %d", SectorSize, len(data)))
	}

	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &bs)
	if err != nil {
		return bs, fat32emu.ErrIOFailed.Wrap(err)
	}
	return bs, nil
}

// Bytes serializes the boot sector into a 512-byte buffer.
func (bs *RawBootSector) Bytes() ([]byte, error) {
	buffer := bytes.NewBuffer(make([]byte, 0, SectorSize))
	err := binary.Write(buffer, binary.LittleEndian, bs)
	if err != nil {
		return nil, fat32emu.ErrIOFailed.Wrap(err)
	}
	return buffer.Bytes(), nil
}

// Validate checks the two fields that mark a volume as ours: the 0xAA55
// trailing signature and the "FAT32" prefix of the FSType field.
func (bs *RawBootSector) Validate() error {
	if bs.Signature != BootSectorSignature {
		return fat32emu.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf(
				"bad boot sector signature: expected %#06x, got %#06x",
				BootSectorSignature,
				bs.Signature))
	}
	if !bytes.HasPrefix(bs.FSType[:], fsTypeFAT32) {
		return fat32emu.ErrInvalidFileSystem.WithMessage(
			fmt.Sprintf("file system type is %q, not FAT32", string(bs.FSType[:])))
	}
	return nil
}

// DeriveGeometry computes the session geometry from the boot sector's own
// fields. The FAT region starts right after the reserved sectors, the data
// region right after the last FAT copy, and everything past that is clusters.
func (bs *RawBootSector) DeriveGeometry() Geometry {
	fatStart := SectorID(bs.ReservedSectors)
	dataStart := SectorID(bs.ReservedSectors) + SectorID(bs.NumFATs)*bs.FATSize32
	totalClusters := (bs.TotalSectors32 - dataStart) / uint32(bs.SectorsPerCluster)

	return Geometry{
		BytesPerSector:    uint(bs.BytesPerSector),
		SectorsPerCluster: uint(bs.SectorsPerCluster),
		FATCount:          uint(bs.NumFATs),
		FATSize:           bs.FATSize32,
		FATStart:          fatStart,
		DataStart:         dataStart,
		TotalClusters:     totalClusters,
		TotalSectors:      bs.TotalSectors32,
		RootCluster:       bs.RootCluster,
	}
}
