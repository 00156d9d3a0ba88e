// Package imgtest provides disk image fixtures for tests: fixed-size
// in-memory streams and ready-formatted sessions.
package imgtest

import (
	"io"
	"testing"

	"github.com/dverbeek/fat32emu/fat32"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// NewBlankImageStream returns an all-zeros in-memory image stream.
//
//   - The stream's size is fixed to `sectorSize * totalSectors`; writing past
//     the end triggers an error rather than growing the buffer.
//   - The backing buffer is returned alongside so tests can inspect raw bytes
//     without going through the engine under test.
func NewBlankImageStream(
	t *testing.T, sectorSize, totalSectors uint,
) (io.ReadWriteSeeker, []byte) {
	t.Helper()
	require.Greater(t, totalSectors, uint(0), "image must have at least one sector")

	backing := make([]byte, sectorSize*totalSectors)
	return bytesextra.NewReadWriteSeeker(backing), backing
}

// NewSession returns a session over a blank in-memory image with the default
// 20 MiB layout. The image is unformatted.
func NewSession(t *testing.T) (*fat32.Filesystem, []byte) {
	t.Helper()

	params := fat32.DefaultParams()
	stream, backing := NewBlankImageStream(
		t, uint(params.BytesPerSector), uint(params.TotalSectors))
	return fat32.NewSession(stream, params), backing
}

// NewFormattedSession returns a session over a freshly formatted in-memory
// image.
func NewFormattedSession(t *testing.T) (*fat32.Filesystem, []byte) {
	t.Helper()

	fs, backing := NewSession(t)
	require.NoError(t, fs.Format(), "formatting the image failed")
	return fs, backing
}
