package blockdev_test

import (
	"testing"

	fat32emu "github.com/dverbeek/fat32emu"
	"github.com/dverbeek/fat32emu/blockdev"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

func newStream(t *testing.T, totalSectors uint) blockdev.SectorStream {
	t.Helper()
	backing := make([]byte, totalSectors*512)
	return blockdev.New(bytesextra.NewReadWriteSeeker(backing), totalSectors)
}

func TestSectorToFileOffset(t *testing.T) {
	device := newStream(t, 16)

	offset, err := device.SectorToFileOffset(0)
	require.NoError(t, err)
	assert.EqualValues(t, 0, offset)

	offset, err = device.SectorToFileOffset(5)
	require.NoError(t, err)
	assert.EqualValues(t, 5*512, offset)

	_, err = device.SectorToFileOffset(16)
	assert.Error(t, err, "offset past end of image must fail")
}

func TestReadWriteRoundTrip(t *testing.T) {
	device := newStream(t, 16)

	data := make([]byte, 512)
	for i := range data {
		data[i] = byte(i % 251)
	}

	require.NoError(t, device.WriteSector(7, data))

	readBack, err := device.ReadSector(7)
	require.NoError(t, err)
	assert.Equal(t, data, readBack)
}

func TestMultiSectorRoundTrip(t *testing.T) {
	device := newStream(t, 16)

	data := make([]byte, 3*512)
	for i := range data {
		data[i] = byte(i)
	}

	require.NoError(t, device.Write(2, data))

	readBack, err := device.Read(2, 3)
	require.NoError(t, err)
	assert.Equal(t, data, readBack)
}

func TestWriteRejectsPartialSector(t *testing.T) {
	device := newStream(t, 16)

	err := device.WriteSector(0, make([]byte, 100))
	require.Error(t, err)
	assert.ErrorIs(t, err, fat32emu.ErrIOFailed)
}

func TestIOBeyondImageFails(t *testing.T) {
	device := newStream(t, 16)

	_, err := device.ReadSector(16)
	assert.ErrorIs(t, err, fat32emu.ErrIOFailed)

	err = device.WriteSector(16, make([]byte, 512))
	assert.ErrorIs(t, err, fat32emu.ErrIOFailed)

	// A multi-sector span that starts in bounds but runs off the end must
	// also be rejected.
	err = device.Write(15, make([]byte, 2*512))
	assert.ErrorIs(t, err, fat32emu.ErrIOFailed)
}

func TestDetermineSectorCount(t *testing.T) {
	stream := bytesextra.NewReadWriteSeeker(make([]byte, 20*512+100))
	count, err := blockdev.DetermineSectorCount(stream, 512)
	require.NoError(t, err)
	assert.EqualValues(t, 20, count, "sector count must round down")
}
