package fat32

import (
	"bytes"
	"encoding/binary"
	"strings"
)

// Directory entry name[0] sentinels.
const (
	// direntNameEndOfDirectory terminates a directory scan; no live entries
	// follow it.
	direntNameEndOfDirectory = 0x00
	// direntNameDeleted marks a tombstone. Scans skip it; allocation reuses it.
	direntNameDeleted = 0xE5
)

// RawDirent is the on-disk representation of a 32-byte directory entry,
// broken down into its constituent fields. The reserved and timestamp fields
// are carried so entries round-trip byte-exactly, but this engine always
// writes them as zero.
type RawDirent struct {
	Name              [11]byte
	AttributeFlags    uint8
	NTReserved        uint8
	CreatedTimeMillis uint8
	CreatedTime       uint16
	CreatedDate       uint16
	LastAccessedDate  uint16
	FirstClusterHigh  uint16
	LastModifiedTime  uint16
	LastModifiedDate  uint16
	FirstClusterLow   uint16
	FileSize          uint32
}

// NewRawDirentFromBytes deserializes 32 bytes into a RawDirent struct for
// further processing.
func NewRawDirentFromBytes(data []byte) RawDirent {
	dirent := RawDirent{
		AttributeFlags:    data[11],
		NTReserved:        data[12],
		CreatedTimeMillis: data[13],
		CreatedTime:       binary.LittleEndian.Uint16(data[14:16]),
		CreatedDate:       binary.LittleEndian.Uint16(data[16:18]),
		LastAccessedDate:  binary.LittleEndian.Uint16(data[18:20]),
		FirstClusterHigh:  binary.LittleEndian.Uint16(data[20:22]),
		LastModifiedTime:  binary.LittleEndian.Uint16(data[22:24]),
		LastModifiedDate:  binary.LittleEndian.Uint16(data[24:26]),
		FirstClusterLow:   binary.LittleEndian.Uint16(data[26:28]),
		FileSize:          binary.LittleEndian.Uint32(data[28:32]),
	}
	copy(dirent.Name[:], data[:11])
	return dirent
}

// Bytes serializes the directory entry into its 32-byte on-disk form.
func (d *RawDirent) Bytes() []byte {
	data := make([]byte, DirentSize)
	copy(data[:11], d.Name[:])
	data[11] = d.AttributeFlags
	data[12] = d.NTReserved
	data[13] = d.CreatedTimeMillis
	binary.LittleEndian.PutUint16(data[14:16], d.CreatedTime)
	binary.LittleEndian.PutUint16(data[16:18], d.CreatedDate)
	binary.LittleEndian.PutUint16(data[18:20], d.LastAccessedDate)
	binary.LittleEndian.PutUint16(data[20:22], d.FirstClusterHigh)
	binary.LittleEndian.PutUint16(data[22:24], d.LastModifiedTime)
	binary.LittleEndian.PutUint16(data[24:26], d.LastModifiedDate)
	binary.LittleEndian.PutUint16(data[26:28], d.FirstClusterLow)
	binary.LittleEndian.PutUint32(data[28:32], d.FileSize)
	return data
}

// FirstCluster assembles the entry's cluster pointer from its high and low
// halves. Zero means no cluster is assigned, which is how zero-length files
// are stored.
func (d *RawDirent) FirstCluster() ClusterID {
	return (ClusterID(d.FirstClusterHigh) << 16) | ClusterID(d.FirstClusterLow)
}

// SetFirstCluster splits a cluster pointer across the entry's high and low
// halves.
func (d *RawDirent) SetFirstCluster(cluster ClusterID) {
	d.FirstClusterHigh = uint16((cluster >> 16) & 0xFFFF)
	d.FirstClusterLow = uint16(cluster & 0xFFFF)
}

// IsEndOfDirectory reports whether this entry terminates the directory scan.
func (d *RawDirent) IsEndOfDirectory() bool {
	return d.Name[0] == direntNameEndOfDirectory
}

// IsDeleted reports whether this entry is a tombstone.
func (d *RawDirent) IsDeleted() bool {
	return d.Name[0] == direntNameDeleted
}

// IsDirectory reports whether the entry's attribute byte has the directory
// bit set.
func (d *RawDirent) IsDirectory() bool {
	return d.AttributeFlags&AttrDirectory != 0
}

// FormatName converts a filename string into its 11-byte space-padded 8.3
// on-disk representation. The base name truncates to 8 characters before the
// first period and the extension to 3 after it; a name without a period may
// occupy all 11 positions. "." and ".." get their conventional forms.
//
// Case is preserved, not folded to uppercase. Standard FAT32 uppercases short
// names; this engine departs from that for bit-compatibility with images
// written by its predecessor, at the cost of partial interoperability with
// conformant readers.
func FormatName(name string) [11]byte {
	var formatted [11]byte
	for i := range formatted {
		formatted[i] = ' '
	}

	if name == "." {
		formatted[0] = '.'
		return formatted
	}
	if name == ".." {
		formatted[0] = '.'
		formatted[1] = '.'
		return formatted
	}

	base, extension, hasExtension := strings.Cut(name, ".")
	if hasExtension {
		if len(base) > 8 {
			base = base[:8]
		}
		if len(extension) > 3 {
			extension = extension[:3]
		}
		copy(formatted[0:8], base)
		copy(formatted[8:11], extension)
	} else {
		if len(base) > 11 {
			base = base[:11]
		}
		copy(formatted[:], base)
	}
	return formatted
}

// DisplayName renders an 11-byte on-disk name in user-facing form: the base
// with trailing spaces stripped, plus "." and the extension when the
// extension field is populated. Directories get no suffix marker.
func DisplayName(raw [11]byte) string {
	base := string(bytes.TrimRight(raw[:8], " "))
	if raw[8] == ' ' {
		return base
	}
	extension := string(bytes.TrimRight(raw[8:11], " "))
	return base + "." + extension
}
