package fat32

// directory is an in-memory copy of one directory cluster, decoded into its
// 128 fixed slots. Mutations happen on the copy and are committed back with
// writeDirectory in a single cluster write.
type directory struct {
	cluster ClusterID
	entries [DirentsPerCluster]RawDirent
}

// readDirectory loads and decodes the directory stored in `cluster`.
func (fs *Filesystem) readDirectory(cluster ClusterID) (*directory, error) {
	data, err := fs.ReadCluster(cluster)
	if err != nil {
		return nil, err
	}

	dir := directory{cluster: cluster}
	for i := 0; i < DirentsPerCluster; i++ {
		dir.entries[i] = NewRawDirentFromBytes(data[i*DirentSize : (i+1)*DirentSize])
	}
	return &dir, nil
}

// writeDirectory serializes the directory and commits it back to its cluster.
func (fs *Filesystem) writeDirectory(dir *directory) error {
	data := make([]byte, 0, ClusterSize)
	for i := range dir.entries {
		data = append(data, dir.entries[i].Bytes()...)
	}
	return fs.WriteCluster(dir.cluster, data)
}

// forEachLive yields each live entry in slot order. The 0x00 end-of-directory
// marker terminates the walk; tombstones are skipped. Returning false from
// the callback stops early.
func (dir *directory) forEachLive(visit func(index int, entry *RawDirent) bool) {
	for i := range dir.entries {
		entry := &dir.entries[i]
		if entry.IsEndOfDirectory() {
			return
		}
		if entry.IsDeleted() {
			continue
		}
		if !visit(i, entry) {
			return
		}
	}
}

// findByName returns the slot index of the live entry whose normalized name
// matches byte-for-byte, or -1.
func (dir *directory) findByName(formatted [11]byte) int {
	found := -1
	dir.forEachLive(func(index int, entry *RawDirent) bool {
		if entry.Name == formatted {
			found = index
			return false
		}
		return true
	})
	return found
}

// findFreeSlot returns the index of the first slot available for a new entry
// — either the end-of-directory marker or a tombstone — or -1 when all 128
// slots hold live entries.
func (dir *directory) findFreeSlot() int {
	for i := range dir.entries {
		if dir.entries[i].IsEndOfDirectory() || dir.entries[i].IsDeleted() {
			return i
		}
	}
	return -1
}

// countLive returns the number of live entries, "." and ".." included.
func (dir *directory) countLive() int {
	count := 0
	dir.forEachLive(func(int, *RawDirent) bool {
		count++
		return true
	})
	return count
}

// newDirectoryCluster composes the initial contents of a fresh directory:
// "." pointing at the directory itself and ".." at its parent, everything
// else zeroed. The parent of the root is recorded as cluster 0 by convention.
func newDirectoryCluster(self, parent ClusterID) *directory {
	dir := directory{cluster: self}

	dir.entries[0].Name = FormatName(".")
	dir.entries[0].AttributeFlags = AttrDirectory
	dir.entries[0].SetFirstCluster(self)

	dir.entries[1].Name = FormatName("..")
	dir.entries[1].AttributeFlags = AttrDirectory
	dir.entries[1].SetFirstCluster(parent)

	return &dir
}
