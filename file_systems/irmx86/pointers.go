package irmx86

import (
	"fmt"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

// NumPointerSlots is the number of block pointers stored in an fnode.
const NumPointerSlots = 8

// IndirectDescriptorSize is the size of one descriptor in an indirect block:
// a 1-byte block count and a 24-bit block address.
const IndirectDescriptorSize = 4

// RawPointerSlot is one entry of an fnode's on-disk pointer table.
type RawPointerSlot struct {
	Count   uint16
	Address [3]byte
}

// BlockPointer is a run of BlockCount contiguous blocks starting at FirstBlock.
// Block pointers with a count of 0 are never created.
type BlockPointer struct {
	BlockCount uint16
	FirstBlock uint32
}

// Uint24 decodes a 3-byte little-endian unsigned integer from the beginning of
// `data`.
func Uint24(data []byte) uint32 {
	_ = data[2]
	return uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16
}

// FirstBlock returns the slot's address zero-extended to 32 bits.
func (slot RawPointerSlot) FirstBlock() uint32 {
	return Uint24(slot.Address[:])
}

// ExpandPointers resolves an fnode's pointer table into the final list of data
// block pointers. Unused (zero-count) slots are skipped.
//
// If `longFile` is false, the slots are the data pointers. Otherwise each slot
// addresses a table of `Count` indirect descriptors located at the raw byte
// offset given by its address. That offset is *not* scaled by the block size.
// The result is all the descriptors in slot order.
func ExpandPointers(
	slots []RawPointerSlot,
	longFile bool,
	image imageio.Accessor,
) ([]BlockPointer, error) {
	pointers := make([]BlockPointer, 0, len(slots))

	for slotIndex, slot := range slots {
		if slot.Count == 0 {
			continue
		}

		if !longFile {
			pointers = append(
				pointers,
				BlockPointer{BlockCount: slot.Count, FirstBlock: slot.FirstBlock()},
			)
			continue
		}

		tableOffset := uint64(slot.FirstBlock())
		tableSize := uint32(slot.Count) * IndirectDescriptorSize
		table, err := image.ReadAt(tableOffset, tableSize)
		if err != nil {
			return nil, rmxfs.CastToDriverError(err).WithMessage(
				fmt.Sprintf(
					"can't read indirect block for pointer %d at offset %d",
					slotIndex,
					tableOffset,
				),
			)
		}

		for i := 0; i < int(slot.Count); i++ {
			descriptor := table[i*IndirectDescriptorSize : (i+1)*IndirectDescriptorSize]
			if descriptor[0] == 0 {
				continue
			}
			pointers = append(
				pointers,
				BlockPointer{
					BlockCount: uint16(descriptor[0]),
					FirstBlock: Uint24(descriptor[1:]),
				},
			)
		}
	}
	return pointers, nil
}

// TotalBlocks returns the number of blocks covered by `pointers`.
func TotalBlocks(pointers []BlockPointer) uint64 {
	total := uint64(0)
	for _, pointer := range pointers {
		total += uint64(pointer.BlockCount)
	}
	return total
}
