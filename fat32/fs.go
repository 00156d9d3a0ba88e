package fat32

import (
	"io"
	"os"

	fat32emu "github.com/dverbeek/fat32emu"
	"github.com/dverbeek/fat32emu/blockdev"
	"github.com/spf13/afero"
)

// Filesystem is a single-session handle on one disk image. It owns the image
// file for its lifetime and carries the session cursor: the current
// directory's absolute path string and cluster number. It is not safe for
// concurrent use; nothing here shares, so nothing here locks.
type Filesystem struct {
	backing   afero.Fs
	image     afero.File
	imagePath string
	device    blockdev.SectorStream
	geometry  Geometry
	params    Params

	currentPath    string
	currentCluster ClusterID
}

// Open opens the image at `path` on the backing filesystem, creating it when
// necessary. An existing image that passes validation is used as-is; anything
// else — missing, truncated, or unrecognized — is recreated as a zero-filled
// file of exactly params.TotalSizeBytes(). A freshly created image is not a
// valid volume until Format is called.
func Open(backing afero.Fs, path string, params Params) (*Filesystem, error) {
	fs := &Filesystem{
		backing:        backing,
		imagePath:      path,
		params:         params,
		currentPath:    "/",
		currentCluster: params.RootCluster,
	}

	image, err := backing.OpenFile(path, os.O_RDWR, 0o644)
	if err == nil {
		fs.image = image
		fs.device = blockdev.New(image, uint(params.TotalSectors))
		if fs.IsValid() == nil {
			return fs, nil
		}
		image.Close()
		fs.image = nil
	}

	if err := fs.createBlankImage(); err != nil {
		return nil, err
	}
	return fs, nil
}

// NewSession wraps an already-sized image stream, typically an in-memory
// buffer. The stream must be exactly params.TotalSizeBytes() long.
func NewSession(stream io.ReadWriteSeeker, params Params) *Filesystem {
	fs := &Filesystem{
		params:         params,
		device:         blockdev.New(stream, uint(params.TotalSectors)),
		currentPath:    "/",
		currentCluster: params.RootCluster,
	}
	// Cache the geometry when the stream already holds a valid volume. An
	// unformatted stream stays invalid until Format.
	_ = fs.IsValid()
	return fs
}

// createBlankImage writes a fresh all-zeros image file, one sector at a time.
func (fs *Filesystem) createBlankImage() error {
	image, err := fs.backing.Create(fs.imagePath)
	if err != nil {
		return fat32emu.ErrIOFailed.Wrap(err)
	}

	zeroSector := make([]byte, fs.params.BytesPerSector)
	for i := uint32(0); i < fs.params.TotalSectors; i++ {
		if _, err := image.Write(zeroSector); err != nil {
			image.Close()
			return fat32emu.ErrIOFailed.Wrap(err)
		}
	}
	if err := image.Sync(); err != nil {
		image.Close()
		return fat32emu.ErrIOFailed.Wrap(err)
	}

	fs.image = image
	fs.device = blockdev.New(image, uint(fs.params.TotalSectors))
	return nil
}

// IsValid reads the boot sector and reports whether the image holds a
// recognizable FAT32 volume. On success the session geometry is recomputed
// from the boot sector's own fields, so the image dictates its own layout.
func (fs *Filesystem) IsValid() error {
	data, err := fs.device.ReadSector(0)
	if err != nil {
		return err
	}

	bs, err := ReadRawBootSector(data)
	if err != nil {
		return err
	}
	if err := bs.Validate(); err != nil {
		return err
	}

	fs.geometry = bs.DeriveGeometry()
	return nil
}

// Close releases the image file. It does not sync; every sector write was
// already synced when it was made. The session must not be used afterwards.
func (fs *Filesystem) Close() error {
	if fs.image == nil {
		return nil
	}
	err := fs.image.Close()
	fs.image = nil
	if err != nil {
		return fat32emu.ErrIOFailed.Wrap(err)
	}
	return nil
}

// CurrentPath returns the absolute path of the current working directory.
func (fs *Filesystem) CurrentPath() string {
	return fs.currentPath
}

// CurrentCluster returns the cluster number of the current working directory.
func (fs *Filesystem) CurrentCluster() ClusterID {
	return fs.currentCluster
}

// Geometry returns the cached layout derived at the last successful
// validation or format.
func (fs *Filesystem) Geometry() Geometry {
	return fs.geometry
}
