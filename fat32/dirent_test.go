package fat32_test

import (
	"testing"

	"github.com/dverbeek/fat32emu/fat32"
	"github.com/stretchr/testify/assert"
)

type formatNameTest struct {
	Filename   string
	BinaryForm string
}

var formatNameTests = [...]formatNameTest{
	{Filename: ".", BinaryForm: ".          "},
	{Filename: "..", BinaryForm: "..         "},
	{Filename: "ttt", BinaryForm: "ttt        "},
	{Filename: "file1.txt", BinaryForm: "file1   txt"},
	{Filename: "noextension", BinaryForm: "noextension"},
	{Filename: "directoryname", BinaryForm: "directoryna"},
	{Filename: "verylongname.text", BinaryForm: "verylongtex"},
	{Filename: "MiXeD.TxT", BinaryForm: "MiXeD   TxT"},
	{Filename: "a.b.c", BinaryForm: "a       b.c"},
	{Filename: "trailing.", BinaryForm: "trailing   "},
}

func TestFormatName(t *testing.T) {
	for _, test := range formatNameTests {
		formatted := fat32.FormatName(test.Filename)
		assert.Equal(
			t,
			test.BinaryForm,
			string(formatted[:]),
			"wrong on-disk name for %q",
			test.Filename,
		)
	}
}

// Case is preserved verbatim, unlike conventional FAT32 short names.
func TestFormatNamePreservesCase(t *testing.T) {
	formatted := fat32.FormatName("File1.TXT")
	assert.Equal(t, "File1   TXT", string(formatted[:]))
}

// Rendering a formatted name and formatting it again must not change it.
func TestFormatNameIdempotent(t *testing.T) {
	for _, name := range []string{"ttt", "file1.txt", "MiXeD.TxT", "noextension", "a.b"} {
		first := fat32.FormatName(name)
		second := fat32.FormatName(fat32.DisplayName(first))
		assert.Equal(t, first, second, "normalization of %q is not idempotent", name)
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		".          ": ".",
		"..         ": "..",
		"ttt        ": "ttt",
		"file1   txt": "file1.txt",
		// An 11-character base with no extension field renders with an
		// implicit period, same as the on-disk layout implies.
		"noextension": "noextens.ion",
		"a       bc ": "a.bc",
	}
	for raw, rendered := range tests {
		var name [11]byte
		copy(name[:], raw)
		assert.Equal(t, rendered, fat32.DisplayName(name))
	}
}

func TestRawDirentRoundTrip(t *testing.T) {
	entry := fat32.RawDirent{
		AttributeFlags: fat32.AttrDirectory,
		FileSize:       0xDEADBEEF,
	}
	entry.Name = fat32.FormatName("subdir")
	entry.SetFirstCluster(0x00045678)

	data := entry.Bytes()
	assert.Len(t, data, fat32.DirentSize)

	parsed := fat32.NewRawDirentFromBytes(data)
	assert.Equal(t, entry, parsed)
}

func TestFirstClusterAssembly(t *testing.T) {
	var entry fat32.RawDirent
	entry.SetFirstCluster(0x0004ABCD)

	assert.EqualValues(t, 0x0004, entry.FirstClusterHigh)
	assert.EqualValues(t, 0xABCD, entry.FirstClusterLow)
	assert.EqualValues(t, 0x0004ABCD, entry.FirstCluster())

	// Pointer 0 means no cluster assigned, which is how empty files look.
	entry.SetFirstCluster(0)
	assert.EqualValues(t, 0, entry.FirstCluster())
}

func TestDirentSentinels(t *testing.T) {
	var entry fat32.RawDirent
	assert.True(t, entry.IsEndOfDirectory(), "zeroed entry must read as end of directory")

	entry.Name = fat32.FormatName("gone.txt")
	entry.Name[0] = 0xE5
	assert.True(t, entry.IsDeleted())
	assert.False(t, entry.IsEndOfDirectory())
}
