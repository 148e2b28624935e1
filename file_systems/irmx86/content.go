package irmx86

import (
	"fmt"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

// ReadContent concatenates the blocks referenced by `pointers`, in order. Each
// pointer covers BlockCount*blockSize bytes starting at byte offset
// FirstBlock*blockSize.
//
// The result is always a whole number of blocks; it isn't trimmed to the size
// recorded in the fnode.
func ReadContent(
	pointers []BlockPointer,
	blockSize uint16,
	image imageio.Accessor,
) ([]byte, error) {
	for i, pointer := range pointers {
		offset, length := pointerExtent(pointer, blockSize)
		if err := imageio.CheckBounds(offset, length, image.Size()); err != nil {
			return nil, pointerError(err, i, pointer)
		}
	}

	// Every pointer is in range now, but a damaged pointer list can still
	// repeat the same blocks many times over.
	reserve := TotalBlocks(pointers) * uint64(blockSize)
	if reserve > image.Size() {
		reserve = image.Size()
	}
	content := make([]byte, 0, reserve)

	for i, pointer := range pointers {
		data, err := image.ReadAt(pointerExtent(pointer, blockSize))
		if err != nil {
			return nil, pointerError(err, i, pointer)
		}
		content = append(content, data...)
	}
	return content, nil
}

func pointerExtent(pointer BlockPointer, blockSize uint16) (uint64, uint32) {
	return uint64(pointer.FirstBlock) * uint64(blockSize),
		uint32(pointer.BlockCount) * uint32(blockSize)
}

func pointerError(err error, index int, pointer BlockPointer) error {
	return rmxfs.CastToDriverError(err).WithMessage(
		fmt.Sprintf(
			"pointer %d: %d blocks at block %d",
			index,
			pointer.BlockCount,
			pointer.FirstBlock,
		),
	)
}
