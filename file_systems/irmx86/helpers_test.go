package irmx86_test

import (
	"bytes"
	"testing"

	"github.com/dargueta/rmxfs/file_systems/common/imageio"
	"github.com/dargueta/rmxfs/file_systems/irmx86"
	rmxtest "github.com/dargueta/rmxfs/testing"
	"github.com/stretchr/testify/require"
)

const (
	flagAllocated = 0x0001
	flagLongFile  = 0x0002
)

// blockPattern returns a block filled with a byte derived from its number, so
// content tests can tell blocks apart.
func blockPattern(block int, blockSize int) []byte {
	return bytes.Repeat([]byte{byte(block*7 + 1)}, blockSize)
}

// buildMinimalVolume builds a volume with block size 128, two 32-byte fnodes at
// offset 512, a root directory (fnode 0) in block 8 holding two records that
// both name fnode 1, and fnode 1 a data file of one block at block 10.
func buildMinimalVolume(t *testing.T) []byte {
	builder := rmxtest.NewImageBuilder(t, 2048).
		PutLabel(rmxtest.DefaultLabel).
		PutVolumeInfo(rmxtest.VolumeInfoSpec{
			Name:       "MINIMAL",
			BlockSize:  128,
			VolumeSize: 16,
			NumFNodes:  2,
			FNodeStart: 512,
			FNodeSize:  32,
			RootFNode:  0,
		}).
		PutFNode(0, rmxtest.FNodeSpec{
			Flags:    flagAllocated,
			Type:     uint8(irmx86.FileTypeDirectory),
			Pointers: []rmxtest.PointerSpec{{Count: 1, Address: 8}},
		}).
		PutFNode(1, rmxtest.FNodeSpec{
			Flags:    flagAllocated,
			Type:     uint8(irmx86.FileTypeData),
			Pointers: []rmxtest.PointerSpec{{Count: 1, Address: 10}},
		}).
		PutDirectory(
			8*128,
			rmxtest.DirentSpec{FNode: 1, Name: "FILE1"},
			rmxtest.DirentSpec{FNode: 1, Name: "FILE1"},
		).
		Fill(10*128, blockPattern(10, 128))
	return builder.Bytes()
}

// Layout of the tree volume built by buildTreeVolume.
const (
	treeBlockSize      = 128
	treeRootFNode      = 1
	treeSubFNode       = 2
	treeFile1FNode     = 3
	treeMapFNode       = 4
	treeFreeFNode      = 5
	treeLongFNode      = 6
	treeNoteFNode      = 7
	treeIndirectOffset = 3500
)

// buildTreeVolume builds a volume with this tree:
//
//	/FILE1       data, 200 bytes in blocks 18-19
//	/SUB/NOTE    data, 5 bytes in block 23
//	/Long        long file, 384 bytes: block 22 then blocks 20-21
//
// The root also has records for a free space map and an unallocated slot,
// neither of which should be listed. Fnode records are 96 bytes with the
// padding filled with 0xff.
func buildTreeVolume(t *testing.T) []byte {
	builder := rmxtest.NewImageBuilder(t, 32*treeBlockSize).
		PutLabel(rmxtest.DefaultLabel).
		PutVolumeInfo(rmxtest.VolumeInfoSpec{
			Name:       "TREE",
			FileDriver: 4,
			BlockSize:  treeBlockSize,
			VolumeSize: 32,
			NumFNodes:  8,
			FNodeStart: 1024,
			FNodeSize:  96,
			RootFNode:  treeRootFNode,
		})

	for i := 0; i < 8; i++ {
		builder.Fill(1024+i*96+rmxtest.FNodePrefixSize, bytes.Repeat([]byte{0xff}, 96-87))
	}

	builder.
		PutFNode(0, rmxtest.FNodeSpec{
			Flags:    flagAllocated,
			Type:     uint8(irmx86.FileTypeFNodeFile),
			Pointers: []rmxtest.PointerSpec{{Count: 6, Address: 8}},
		}).
		PutFNode(treeRootFNode, rmxtest.FNodeSpec{
			Flags:     flagAllocated,
			Type:      uint8(irmx86.FileTypeDirectory),
			TotalSize: 80,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 16}},
		}).
		PutFNode(treeSubFNode, rmxtest.FNodeSpec{
			Flags:     flagAllocated,
			Type:      uint8(irmx86.FileTypeDirectory),
			TotalSize: 16,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 17}},
			Parent:    treeRootFNode,
		}).
		PutFNode(treeFile1FNode, rmxtest.FNodeSpec{
			Flags:            flagAllocated,
			Type:             uint8(irmx86.FileTypeData),
			Owner:            0x1234,
			CreationTime:     86400,
			ModificationTime: 3600,
			TotalSize:        200,
			TotalBlocks:      2,
			Pointers:         []rmxtest.PointerSpec{{Count: 2, Address: 18}},
			Parent:           treeRootFNode,
		}).
		PutFNode(treeMapFNode, rmxtest.FNodeSpec{
			Flags:    flagAllocated,
			Type:     uint8(irmx86.FileTypeFreeSpaceMap),
			Pointers: []rmxtest.PointerSpec{{Count: 1, Address: 24}},
		}).
		PutFNode(treeFreeFNode, rmxtest.FNodeSpec{
			Type: uint8(irmx86.FileTypeData),
		}).
		PutFNode(treeLongFNode, rmxtest.FNodeSpec{
			Flags:     flagAllocated | flagLongFile,
			Type:      uint8(irmx86.FileTypeData),
			TotalSize: 384,
			Pointers:  []rmxtest.PointerSpec{{Count: 2, Address: treeIndirectOffset}},
			Parent:    treeRootFNode,
		}).
		PutFNode(treeNoteFNode, rmxtest.FNodeSpec{
			Flags:     flagAllocated,
			Type:      uint8(irmx86.FileTypeData),
			TotalSize: 5,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 23}},
			Parent:    treeSubFNode,
		}).
		PutDirectory(
			16*treeBlockSize,
			rmxtest.DirentSpec{FNode: treeFile1FNode, Name: "FILE1"},
			rmxtest.DirentSpec{FNode: treeSubFNode, Name: "SUB"},
			rmxtest.DirentSpec{FNode: treeMapFNode, Name: "MAP"},
			rmxtest.DirentSpec{FNode: treeFreeFNode, Name: "GONE"},
			rmxtest.DirentSpec{FNode: treeLongFNode, Name: "Long"},
		).
		PutDirectory(
			17*treeBlockSize,
			rmxtest.DirentSpec{FNode: treeNoteFNode, Name: "NOTE"},
		).
		PutIndirectBlock(
			treeIndirectOffset,
			rmxtest.IndirectSpec{Count: 1, Address: 22},
			rmxtest.IndirectSpec{Count: 2, Address: 20},
		)

	for block := 18; block <= 24; block++ {
		builder.Fill(block*treeBlockSize, blockPattern(block, treeBlockSize))
	}
	return builder.Bytes()
}

// blocks concatenates the patterns of the given blocks.
func blocks(blockSize int, blockNumbers ...int) []byte {
	result := []byte{}
	for _, block := range blockNumbers {
		result = append(result, blockPattern(block, blockSize)...)
	}
	return result
}

func openVolume(t *testing.T, image []byte) *irmx86.Volume {
	volume, err := irmx86.Open(imageio.FromBytes(image), irmx86.Options{})
	require.NoError(t, err, "failed to open volume")
	return volume
}
