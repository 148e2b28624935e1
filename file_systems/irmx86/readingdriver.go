// This file implements the ReadingDriver interface for iRMX-86 volumes.

package irmx86

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"path"
	"sort"

	"github.com/dargueta/rmxfs"
)

var _ rmxfs.ReadingDriver = (*Volume)(nil)

func (volume *Volume) resolvePath(op, name string) (FNode, error) {
	if !fs.ValidPath(name) {
		return FNode{}, &fs.PathError{
			Op:   op,
			Path: name,
			Err:  rmxfs.ErrInvalidArgument.WithMessage("invalid path"),
		}
	}

	fnode, err := volume.Lookup(name)
	if err != nil {
		return FNode{}, &fs.PathError{Op: op, Path: name, Err: err}
	}
	return fnode, nil
}

func (volume *Volume) direntFor(name string, fnode FNode) *rmxfs.DirectoryEntry {
	return rmxfs.NewDirectoryEntry(path.Base(name), fnode.Stat(volume.info.BlockSize))
}

// listDirectory returns the entries of `dir` sorted by name.
func (volume *Volume) listDirectory(dir FNode) ([]fs.DirEntry, error) {
	listing, err := volume.ReadDirectory(dir)
	if err != nil {
		return nil, err
	}

	entries := make([]fs.DirEntry, 0, listing.Len())
	for _, entry := range listing.Entries() {
		entries = append(entries, volume.direntFor(entry.Name, entry.FNode))
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// Open opens the file or directory at `name`, a slash-separated path.
func (volume *Volume) Open(name string) (fs.File, error) {
	fnode, err := volume.resolvePath("open", name)
	if err != nil {
		return nil, err
	}

	info := volume.direntFor(name, fnode)
	if fnode.IsDir() {
		return &openDirectory{volume: volume, fnode: fnode, info: info}, nil
	}

	data, err := volume.ReadFileData(fnode)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &openFile{Reader: bytes.NewReader(data), info: info}, nil
}

// ReadDir lists a directory sorted by name.
func (volume *Volume) ReadDir(name string) ([]fs.DirEntry, error) {
	fnode, err := volume.resolvePath("readdir", name)
	if err != nil {
		return nil, err
	}

	if !fnode.IsDir() {
		return nil, &fs.PathError{
			Op:   "readdir",
			Path: name,
			Err: rmxfs.ErrNotADirectory.WithMessage(
				fmt.Sprintf("`%s` is not a directory", name)),
		}
	}

	entries, err := volume.listDirectory(fnode)
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return entries, nil
}

// ReadFile returns the contents of a file, trimmed to the size recorded in its
// fnode.
func (volume *Volume) ReadFile(name string) ([]byte, error) {
	fnode, err := volume.resolvePath("readfile", name)
	if err != nil {
		return nil, err
	}

	if fnode.IsDir() {
		return nil, &fs.PathError{
			Op:   "readfile",
			Path: name,
			Err: rmxfs.ErrIsADirectory.WithMessage(
				fmt.Sprintf("`%s` is a directory", name)),
		}
	}

	data, err := volume.ReadFileData(fnode)
	if err != nil {
		return nil, &fs.PathError{Op: "readfile", Path: name, Err: err}
	}
	return data, nil
}

// Stat returns information about the object at `name`.
func (volume *Volume) Stat(name string) (fs.FileInfo, error) {
	fnode, err := volume.resolvePath("stat", name)
	if err != nil {
		return nil, err
	}
	return volume.direntFor(name, fnode), nil
}

////////////////////////////////////////////////////////////////////////////////

type openFile struct {
	*bytes.Reader
	info *rmxfs.DirectoryEntry
}

func (file *openFile) Stat() (fs.FileInfo, error) {
	return file.info, nil
}

func (file *openFile) Close() error {
	return nil
}

type openDirectory struct {
	volume  *Volume
	fnode   FNode
	info    *rmxfs.DirectoryEntry
	entries []fs.DirEntry
	loaded  bool
	offset  int
}

func (dir *openDirectory) Stat() (fs.FileInfo, error) {
	return dir.info, nil
}

func (dir *openDirectory) Read([]byte) (int, error) {
	return 0, &fs.PathError{
		Op:   "read",
		Path: dir.info.Name(),
		Err:  rmxfs.ErrIsADirectory,
	}
}

func (dir *openDirectory) Close() error {
	return nil
}

// ReadDir follows the [fs.ReadDirFile] contract: with n > 0 it returns at most
// n entries and io.EOF once the directory is exhausted, otherwise it returns
// everything left.
func (dir *openDirectory) ReadDir(n int) ([]fs.DirEntry, error) {
	if !dir.loaded {
		entries, err := dir.volume.listDirectory(dir.fnode)
		if err != nil {
			return nil, err
		}
		dir.entries = entries
		dir.loaded = true
	}

	remaining := dir.entries[dir.offset:]
	if n <= 0 {
		dir.offset = len(dir.entries)
		return remaining, nil
	}
	if len(remaining) == 0 {
		return nil, io.EOF
	}
	if n > len(remaining) {
		n = len(remaining)
	}
	dir.offset += n
	return remaining[:n], nil
}
