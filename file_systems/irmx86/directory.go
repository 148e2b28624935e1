package irmx86

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

// DirentSize is the size of one directory record: a 2-byte fnode index followed
// by a 14-byte name.
const DirentSize = 16

// MaxNameLength is the longest name a directory record can hold.
const MaxNameLength = DirentSize - 2

// DirectoryEntry is one record of a directory's content.
type DirectoryEntry struct {
	FNodeIndex uint16
	Name       string
}

// ParseDirectoryEntries splits directory content into records. Trailing bytes
// that don't form a whole record are ignored. Every record is returned,
// including unused ones with an fnode index of 0.
func ParseDirectoryEntries(content []byte) []DirectoryEntry {
	numRecords := len(content) / DirentSize
	entries := make([]DirectoryEntry, numRecords)

	for i := range entries {
		record := content[i*DirentSize : (i+1)*DirentSize]
		entries[i] = DirectoryEntry{
			FNodeIndex: binary.LittleEndian.Uint16(record[:2]),
			Name:       string(bytes.TrimRight(record[2:], "\x00")),
		}
	}
	return entries
}

// ListingEntry is a name in a directory and the fnode it refers to.
type ListingEntry struct {
	Name  string
	FNode FNode
}

// Listing is the name->fnode mapping of one directory. Names keep the position
// they first appeared at; if a name appears more than once, the last record
// wins.
type Listing struct {
	entries   []ListingEntry
	positions map[string]int
}

func newListing() *Listing {
	return &Listing{positions: map[string]int{}}
}

func (listing *Listing) set(name string, fnode FNode) {
	position, exists := listing.positions[name]
	if exists {
		listing.entries[position].FNode = fnode
		return
	}
	listing.positions[name] = len(listing.entries)
	listing.entries = append(listing.entries, ListingEntry{Name: name, FNode: fnode})
}

// Len returns the number of distinct names in the directory.
func (listing *Listing) Len() int {
	return len(listing.entries)
}

// Get returns the fnode named `name`. The match is exact.
func (listing *Listing) Get(name string) (FNode, bool) {
	position, ok := listing.positions[name]
	if !ok {
		return FNode{}, false
	}
	return listing.entries[position].FNode, true
}

// Names returns the names in the directory in order.
func (listing *Listing) Names() []string {
	names := make([]string, len(listing.entries))
	for i, entry := range listing.entries {
		names[i] = entry.Name
	}
	return names
}

// Entries returns a copy of the listing's entries in order.
func (listing *Listing) Entries() []ListingEntry {
	result := make([]ListingEntry, len(listing.entries))
	copy(result, listing.entries)
	return result
}

// WalkDirectory reads directory `dir` and maps the names in it to fnodes from
// `table`. Only directory and data fnodes are included. Records with an fnode
// index of 0 are unused and skipped, as are records referring to unallocated
// slots.
func WalkDirectory(
	dir FNode,
	table *Table,
	blockSize uint16,
	image imageio.Accessor,
) (*Listing, error) {
	if !dir.IsDir() {
		return nil, rmxfs.ErrNotADirectory.WithMessage(
			fmt.Sprintf("fnode %d is a %s", dir.Index, dir.Type))
	}

	content, err := ReadContent(dir.Pointers, blockSize, image)
	if err != nil {
		return nil, err
	}

	listing := newListing()
	for _, entry := range ParseDirectoryEntries(content) {
		if entry.FNodeIndex == 0 {
			continue
		}

		fnode, err := table.Get(entry.FNodeIndex)
		if errors.Is(err, rmxfs.ErrNotFound) {
			continue
		} else if err != nil {
			return nil, rmxfs.CastToDriverError(err).WithMessage(
				fmt.Sprintf("entry %q in directory fnode %d", entry.Name, dir.Index))
		}

		if fnode.Type == FileTypeDirectory || fnode.Type == FileTypeData {
			listing.set(entry.Name, fnode)
		}
	}
	return listing, nil
}
