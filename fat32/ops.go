package fat32

import (
	"strings"

	fat32emu "github.com/dverbeek/fat32emu"
	log "github.com/sirupsen/logrus"
)

// Mkdir creates a subdirectory of the current directory. The child cluster is
// fully committed — contents written, FAT entry marked end-of-chain — before
// the parent slot referencing it appears, so a crash in between leaves at
// worst an orphan cluster, never a dangling directory entry.
func (fs *Filesystem) Mkdir(name string) error {
	if name == "" {
		return fat32emu.ErrInvalidArgument.WithMessage("directory name is empty")
	}
	if err := fs.IsValid(); err != nil {
		return err
	}

	dir, err := fs.readDirectory(fs.currentCluster)
	if err != nil {
		return err
	}

	formatted := FormatName(name)
	if dir.findByName(formatted) >= 0 {
		return fat32emu.ErrExists.WithMessage(name)
	}

	slot := dir.findFreeSlot()
	if slot < 0 {
		return fat32emu.ErrNoSpaceOnDevice.WithMessage("directory is full")
	}

	newCluster, err := fs.FindFreeCluster()
	if err != nil {
		return err
	}
	if newCluster == 0 {
		return fat32emu.ErrNoSpaceOnDevice.WithMessage("no free clusters")
	}

	child := newDirectoryCluster(newCluster, fs.currentCluster)
	if err := fs.writeDirectory(child); err != nil {
		return err
	}
	if err := fs.WriteFATEntry(newCluster, FATEndOfChain); err != nil {
		return err
	}

	entry := RawDirent{AttributeFlags: AttrDirectory}
	entry.Name = formatted
	entry.SetFirstCluster(newCluster)
	dir.entries[slot] = entry
	return fs.writeDirectory(dir)
}

// Touch creates a zero-length file in the current directory. Empty files own
// no cluster: the entry's cluster pointer stays 0 and nothing in the FAT
// changes.
func (fs *Filesystem) Touch(name string) error {
	if name == "" {
		return fat32emu.ErrInvalidArgument.WithMessage("file name is empty")
	}
	if err := fs.IsValid(); err != nil {
		return err
	}

	log.Debugf("touch called with name %q", name)

	dir, err := fs.readDirectory(fs.currentCluster)
	if err != nil {
		return err
	}

	formatted := FormatName(name)
	log.Debugf("formatted name: %q", string(formatted[:]))

	collision := false
	dir.forEachLive(func(index int, entry *RawDirent) bool {
		log.Debugf("existing entry %d: %q", index, string(entry.Name[:]))
		if entry.Name == formatted {
			collision = true
			return false
		}
		return true
	})
	if collision {
		return fat32emu.ErrExists.WithMessage(name)
	}

	slot := dir.findFreeSlot()
	if slot < 0 {
		return fat32emu.ErrNoSpaceOnDevice.WithMessage("directory is full")
	}
	log.Debugf("found free entry at slot %d", slot)

	entry := RawDirent{AttributeFlags: AttrArchive, FileSize: 0}
	entry.Name = formatted
	entry.SetFirstCluster(0)
	dir.entries[slot] = entry
	return fs.writeDirectory(dir)
}

// Cd moves the session cursor. Only absolute paths are accepted, and only a
// single component deep: "/", "/.", "/..", or "/<name>" where <name> is a
// subdirectory of the current directory. Deeper paths are rejected as
// unsupported.
//
// On a successful "/<name>" move the path string is replaced with "/<name>"
// rather than appended to; combined with the single-component restriction,
// navigation is effectively one level deep.
func (fs *Filesystem) Cd(path string) error {
	if err := fs.IsValid(); err != nil {
		return err
	}
	if !strings.HasPrefix(path, "/") {
		return fat32emu.ErrInvalidArgument.WithMessage("path must be absolute")
	}

	if path == "/" {
		fs.currentCluster = fs.geometry.RootCluster
		fs.currentPath = "/"
		return nil
	}

	name := path[1:]

	if name == "." {
		return nil
	}

	if name == ".." {
		if fs.currentCluster == fs.geometry.RootCluster {
			return nil
		}
		return fs.cdToParent()
	}

	if strings.Contains(name, "/") {
		return fat32emu.ErrNotSupported.WithMessage("multi-level paths are not supported")
	}

	dir, err := fs.readDirectory(fs.currentCluster)
	if err != nil {
		return err
	}

	formatted := FormatName(name)
	var target *RawDirent
	dir.forEachLive(func(_ int, entry *RawDirent) bool {
		if entry.IsDirectory() && entry.Name == formatted {
			target = entry
			return false
		}
		return true
	})
	if target == nil {
		return fat32emu.ErrNotFound.WithMessage(name)
	}

	fs.currentCluster = target.FirstCluster()
	fs.currentPath = "/" + name
	return nil
}

// cdToParent follows the current directory's ".." entry and pops the last
// component off the path string.
func (fs *Filesystem) cdToParent() error {
	dir, err := fs.readDirectory(fs.currentCluster)
	if err != nil {
		return err
	}

	dotdot := FormatName("..")
	var parent *RawDirent
	dir.forEachLive(func(_ int, entry *RawDirent) bool {
		if entry.Name == dotdot {
			parent = entry
			return false
		}
		return true
	})
	if parent == nil {
		return fat32emu.ErrNotFound.WithMessage("no parent entry")
	}

	fs.currentCluster = parent.FirstCluster()

	if idx := strings.LastIndex(fs.currentPath, "/"); idx > 0 {
		fs.currentPath = fs.currentPath[:idx]
	} else {
		fs.currentPath = "/"
	}
	return nil
}

// Ls lists a directory, one rendered name per element, "." and ".."
// included. An empty path lists the current directory and "/" lists the
// root. A single-component absolute path is resolved against the root; when
// resolution fails the current directory is silently listed instead, which
// is the behavior this engine inherited and keeps.
func (fs *Filesystem) Ls(path string) ([]string, error) {
	if err := fs.IsValid(); err != nil {
		return nil, err
	}

	target := fs.currentCluster
	switch {
	case path == "":
	case path == "/":
		target = fs.geometry.RootCluster
	case strings.HasPrefix(path, "/"):
		if cluster, ok := fs.resolveUnderRoot(path[1:]); ok {
			target = cluster
		}
	}

	dir, err := fs.readDirectory(target)
	if err != nil {
		return nil, err
	}

	var names []string
	dir.forEachLive(func(_ int, entry *RawDirent) bool {
		names = append(names, DisplayName(entry.Name))
		return true
	})
	return names, nil
}

// resolveUnderRoot finds a directory entry named `name` in the root
// directory and returns its cluster.
func (fs *Filesystem) resolveUnderRoot(name string) (ClusterID, bool) {
	dir, err := fs.readDirectory(fs.geometry.RootCluster)
	if err != nil {
		return 0, false
	}

	formatted := FormatName(name)
	var cluster ClusterID
	found := false
	dir.forEachLive(func(_ int, entry *RawDirent) bool {
		if entry.IsDirectory() && entry.Name == formatted {
			cluster = entry.FirstCluster()
			found = true
			return false
		}
		return true
	})
	return cluster, found
}
