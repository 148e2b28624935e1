package irmx86

import (
	"errors"
	"fmt"

	"github.com/boljen/go-bitmap"
	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
	"github.com/hashicorp/go-multierror"
)

// Options controls how a volume is decoded.
type Options struct {
	// SkipUnknownFileTypes turns fnodes with an undefined type code into
	// placeholders instead of failing the whole table. The errors are still
	// available from [Table.SkippedErrors].
	SkipUnknownFileTypes bool
}

// Table is the decoded fnode table. Every on-disk slot is kept, so slot indices
// stay valid; slots that are unallocated or were skipped are placeholders and
// can't be retrieved.
type Table struct {
	slots        []FNode
	allocated    bitmap.Bitmap
	numAllocated int
	skipped      *multierror.Error
}

// DecodeTable reads and decodes the entire fnode table described by `info`.
func DecodeTable(
	info VolumeInformation,
	image imageio.Accessor,
	options Options,
) (*Table, error) {
	tableData, err := image.ReadAt(uint64(info.FNodeStart), info.FNodeTableSize())
	if err != nil {
		return nil, rmxfs.CastToDriverError(err).WithMessage(
			fmt.Sprintf(
				"can't read %d fnodes of %d bytes at offset %d",
				info.NumFNodes,
				info.FNodeSize,
				info.FNodeStart,
			),
		)
	}

	table := &Table{
		slots:     make([]FNode, info.NumFNodes),
		allocated: bitmap.New(int(info.NumFNodes)),
	}
	recordSize := int(info.FNodeSize)

	for i := 0; i < int(info.NumFNodes); i++ {
		index := uint16(i)
		raw, err := DecodeRawFNode(tableData[i*recordSize : (i+1)*recordSize])
		if err != nil {
			return nil, err
		}

		flags := DecodeFlags(raw.Flags)
		table.slots[i] = FNode{Index: index, Flags: flags}
		if !flags.Allocated {
			continue
		}

		fnode, err := raw.Resolve(index, image)
		if err != nil {
			if options.SkipUnknownFileTypes && errors.Is(err, rmxfs.ErrUnknownFileType) {
				table.skipped = multierror.Append(table.skipped, err)
				continue
			}
			return nil, err
		}

		table.slots[i] = fnode
		table.allocated.Set(i, true)
		table.numAllocated++
	}
	return table, nil
}

// Len returns the number of slots in the table, including placeholders.
func (table *Table) Len() int {
	return len(table.slots)
}

// NumAllocated returns the number of fnodes that can be retrieved.
func (table *Table) NumAllocated() int {
	return table.numAllocated
}

// IsAllocated returns true if slot `index` holds a usable fnode.
func (table *Table) IsAllocated(index uint16) bool {
	if int(index) >= len(table.slots) {
		return false
	}
	return table.allocated.Get(int(index))
}

// Get returns the fnode in slot `index`. An index outside the table fails with
// [rmxfs.ErrInvalidFNodeIndex], and a placeholder slot with [rmxfs.ErrNotFound].
func (table *Table) Get(index uint16) (FNode, error) {
	if int(index) >= len(table.slots) {
		return FNode{}, rmxfs.ErrInvalidFNodeIndex.WithMessage(
			fmt.Sprintf("fnode %d not in [0, %d)", index, len(table.slots)))
	}
	if !table.allocated.Get(int(index)) {
		return FNode{}, rmxfs.ErrNotFound.WithMessage(
			fmt.Sprintf("fnode %d isn't allocated", index))
	}
	return table.slots[index], nil
}

// Slot returns whatever is in slot `index`, placeholder or not. Placeholders
// only have their Index and Flags set. The second return value is false if the
// index is out of range.
func (table *Table) Slot(index uint16) (FNode, bool) {
	if int(index) >= len(table.slots) {
		return FNode{}, false
	}
	return table.slots[index], true
}

// Allocated returns all usable fnodes in slot order.
func (table *Table) Allocated() []FNode {
	result := make([]FNode, 0, table.numAllocated)
	for i, fnode := range table.slots {
		if table.allocated.Get(i) {
			result = append(result, fnode)
		}
	}
	return result
}

// SkippedErrors returns the errors for every fnode that was skipped because of
// [Options.SkipUnknownFileTypes], or nil if none were.
func (table *Table) SkippedErrors() error {
	return table.skipped.ErrorOrNil()
}
