// Package disks holds the registry of disk image profiles: the layout
// parameters an image is created and formatted with, keyed by slug.
package disks

import (
	_ "embed"
	"fmt"

	"github.com/dverbeek/fat32emu/fat32"
	"github.com/gocarina/gocsv"
)

// DefaultProfileSlug names the canonical 20 MiB volume every session uses
// unless told otherwise.
const DefaultProfileSlug = "fat32-20mb"

// Profile describes one image layout.
type Profile struct {
	Slug              string `csv:"slug"`
	Name              string `csv:"name"`
	BytesPerSector    uint16 `csv:"bytes_per_sector"`
	SectorsPerCluster uint8  `csv:"sectors_per_cluster"`
	ReservedSectors   uint16 `csv:"reserved_sectors"`
	FATCount          uint8  `csv:"fat_count"`
	FATSize           uint32 `csv:"fat_size_32"`
	TotalSectors      uint32 `csv:"total_sectors_32"`
	RootCluster       uint32 `csv:"root_cluster"`
	VolumeLabel       string `csv:"volume_label"`
}

// TotalSizeBytes gives the exact size of an image file with this layout.
func (p *Profile) TotalSizeBytes() int64 {
	return int64(p.TotalSectors) * int64(p.BytesPerSector)
}

// FilesystemParams converts the profile into the engine's layout parameters.
func (p *Profile) FilesystemParams() fat32.Params {
	return fat32.Params{
		BytesPerSector:    p.BytesPerSector,
		SectorsPerCluster: p.SectorsPerCluster,
		ReservedSectors:   p.ReservedSectors,
		FATCount:          p.FATCount,
		FATSize:           p.FATSize,
		TotalSectors:      p.TotalSectors,
		RootCluster:       fat32.ClusterID(p.RootCluster),
		VolumeLabel:       p.VolumeLabel,
		OEMName:           "MSWIN4.1",
	}
}

//go:embed image-profiles.csv
var imageProfilesRawCSV string
var imageProfiles map[string]Profile

// GetProfile looks up a profile by slug.
func GetProfile(slug string) (Profile, error) {
	profile, ok := imageProfiles[slug]
	if ok {
		return profile, nil
	}

	err := fmt.Errorf("no predefined image profile exists with slug %q", slug)
	return Profile{}, err
}

func init() {
	var rows []Profile
	if err := gocsv.UnmarshalString(imageProfilesRawCSV, &rows); err != nil {
		panic(fmt.Errorf("failed to decode image profiles: %w", err))
	}

	imageProfiles = make(map[string]Profile, len(rows))
	for i, row := range rows {
		if _, exists := imageProfiles[row.Slug]; exists {
			panic(fmt.Errorf(
				"duplicate definition for profile %q found on row %d", row.Slug, i+1))
		}
		imageProfiles[row.Slug] = row
	}
}
