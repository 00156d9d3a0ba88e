package fat32_test

import (
	"encoding/binary"
	"testing"

	fat32emu "github.com/dverbeek/fat32emu"
	"github.com/dverbeek/fat32emu/fat32"
	"github.com/dverbeek/fat32emu/imgtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fatEntryOffsets gives the byte offsets of cluster c's entry in the backing
// image, one per FAT copy, for the default layout.
func fatEntryOffsets(c uint32) []int {
	fatStart := 32 * 512
	copySize := 256 * 512
	return []int{
		fatStart + int(c)*4,
		fatStart + copySize + int(c)*4,
	}
}

func TestFormatInitializesReservedEntries(t *testing.T) {
	fs, _ := imgtest.NewFormattedSession(t)

	entry, err := fs.ReadFATEntry(0)
	require.NoError(t, err)
	assert.Equal(t, fat32.FATMediaDescriptor, entry)

	entry, err = fs.ReadFATEntry(1)
	require.NoError(t, err)
	assert.Equal(t, fat32.FATEndOfChain, entry)

	entry, err = fs.ReadFATEntry(fat32.RootCluster)
	require.NoError(t, err)
	assert.Equal(t, fat32.FATEndOfChain, entry, "root cluster must be marked end-of-chain")
}

func TestFATEntryRoundTrip(t *testing.T) {
	fs, _ := imgtest.NewFormattedSession(t)

	require.NoError(t, fs.WriteFATEntry(5, 0x00012345))
	entry, err := fs.ReadFATEntry(5)
	require.NoError(t, err)
	assert.EqualValues(t, 0x00012345, entry)
}

func TestWriteFATEntryMasksTo28Bits(t *testing.T) {
	fs, backing := imgtest.NewFormattedSession(t)

	require.NoError(t, fs.WriteFATEntry(7, 0xF2345678))

	entry, err := fs.ReadFATEntry(7)
	require.NoError(t, err)
	assert.EqualValues(t, 0x02345678, entry, "top 4 bits must not reach the pointer")

	// The reserved top nibble in the slot itself must survive a rewrite.
	for _, offset := range fatEntryOffsets(7) {
		slot := binary.LittleEndian.Uint32(backing[offset : offset+4])
		binary.LittleEndian.PutUint32(backing[offset:offset+4], slot|0xA0000000)
	}
	require.NoError(t, fs.WriteFATEntry(7, 0x00000abc))
	for _, offset := range fatEntryOffsets(7) {
		slot := binary.LittleEndian.Uint32(backing[offset : offset+4])
		assert.EqualValues(t, 0xA0000abc, slot, "reserved bits were clobbered")
	}
}

func TestWriteFATEntryMirrorsAllCopies(t *testing.T) {
	fs, backing := imgtest.NewFormattedSession(t)

	require.NoError(t, fs.WriteFATEntry(9, 0x00000777))

	offsets := fatEntryOffsets(9)
	first := backing[offsets[0] : offsets[0]+4]
	second := backing[offsets[1] : offsets[1]+4]
	assert.Equal(t, first, second, "FAT copies disagree after a write")
	assert.EqualValues(t, 0x777, binary.LittleEndian.Uint32(first))
}

func TestVerifyFATMirrors(t *testing.T) {
	fs, backing := imgtest.NewFormattedSession(t)
	require.NoError(t, fs.VerifyFATMirrors())

	// Corrupt one byte of the second copy.
	offsets := fatEntryOffsets(20)
	backing[offsets[1]] ^= 0xFF
	assert.ErrorIs(t, fs.VerifyFATMirrors(), fat32emu.ErrFileSystemCorrupted)
}

func TestReadFATEntryOutOfRangeReadsAsEndOfChain(t *testing.T) {
	fs, _ := imgtest.NewFormattedSession(t)

	entry, err := fs.ReadFATEntry(fs.Geometry().TotalClusters)
	require.NoError(t, err)
	assert.Equal(t, fat32.FATEndOfChain, entry)
}

func TestWriteFATEntryOutOfRangeFails(t *testing.T) {
	fs, _ := imgtest.NewFormattedSession(t)

	err := fs.WriteFATEntry(fs.Geometry().TotalClusters, fat32.FATEndOfChain)
	assert.ErrorIs(t, err, fat32emu.ErrInvalidArgument)
}

func TestFindFreeCluster(t *testing.T) {
	fs, _ := imgtest.NewFormattedSession(t)

	// Cluster 2 holds the root directory, so 3 is the first free one.
	free, err := fs.FindFreeCluster()
	require.NoError(t, err)
	assert.EqualValues(t, 3, free)

	require.NoError(t, fs.WriteFATEntry(3, fat32.FATEndOfChain))
	free, err = fs.FindFreeCluster()
	require.NoError(t, err)
	assert.EqualValues(t, 4, free)
}
