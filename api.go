package rmxfs

import (
	"io/fs"
	"time"
)

// ReadingDriver is the interface for drivers supporting read operations. Paths
// follow [io/fs] conventions: slash-separated, unrooted, "." for the root.
type ReadingDriver interface {
	fs.FS
	fs.ReadDirFS
	fs.ReadFileFS
	fs.StatFS
}

// FileStat is the POSIX-flavored metadata of a file system object.
//
// If a file system doesn't support a particular feature, drivers should use a
// reasonable default value. For most of these 0 is fine.
type FileStat struct {
	InodeNumber  uint64
	Nlinks       uint64
	ModeFlags    uint32
	Uid          uint32
	Size         int64
	BlockSize    int64
	NumBlocks    int64
	CreatedAt    time.Time
	LastAccessed time.Time
	LastModified time.Time
}

// IsDir returns true if the stat describes a directory.
func (stat FileStat) IsDir() bool {
	return stat.ModeFlags&S_IFMT == S_IFDIR
}

// FileMode converts the POSIX mode flags to an [fs.FileMode].
func (stat FileStat) FileMode() fs.FileMode {
	mode := fs.FileMode(stat.ModeFlags & 0o777)
	if stat.IsDir() {
		mode |= fs.ModeDir
	}
	return mode
}

// DirectoryEntry represents a file, directory, or other entity encountered on
// the file system. It implements both [fs.DirEntry] and [fs.FileInfo].
type DirectoryEntry struct {
	name string
	Stat FileStat
}

// NewDirectoryEntry creates a [DirectoryEntry] for an object named `name`.
func NewDirectoryEntry(name string, stat FileStat) *DirectoryEntry {
	return &DirectoryEntry{name: name, Stat: stat}
}

// Name returns the base name of the directory entry on the file system.
func (d *DirectoryEntry) Name() string {
	return d.name
}

func (d *DirectoryEntry) Size() int64 {
	return d.Stat.Size
}

// ModTime returns the last modified timestamp of the DirectoryEntry.
func (d *DirectoryEntry) ModTime() time.Time {
	return d.Stat.LastModified
}

// Mode returns the file system mode of the directory as an fs.FileMode. If you
// need more detailed information, see DirectoryEntry.Stat.
func (d *DirectoryEntry) Mode() fs.FileMode {
	return d.Stat.FileMode()
}

// IsDir returns true if it's a directory.
func (d *DirectoryEntry) IsDir() bool {
	return d.Stat.IsDir()
}

// Sys returns a copy of the FileStat backing this directory entry.
func (d *DirectoryEntry) Sys() any {
	return d.Stat
}

// Type returns the type bits of the entry's mode.
func (d *DirectoryEntry) Type() fs.FileMode {
	return d.Mode().Type()
}

// Info returns the entry itself, since it already implements [fs.FileInfo].
func (d *DirectoryEntry) Info() (fs.FileInfo, error) {
	return d, nil
}
