package irmx86

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unicode/utf8"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

const VolumeInfoOffset = 384
const VolumeInfoSize = 128

// RawVolumeInfo is the on-disk layout of the iRMX volume information record.
type RawVolumeInfo struct {
	Name       [10]byte
	_          [1]byte
	FileDriver uint8
	BlockSize  uint16
	VolumeSize uint32
	NumFNodes  uint16
	FNodeStart uint32
	FNodeSize  uint16
	RootFNode  uint16
	_          [100]byte
}

// VolumeInformation holds the geometry every other structure is located with.
type VolumeInformation struct {
	Name       string
	FileDriver uint8
	// BlockSize is the size of one volume block, in bytes.
	BlockSize uint16
	// VolumeSize is the size of the volume, in blocks.
	VolumeSize uint32
	NumFNodes  uint16
	// FNodeStart is the byte offset of the fnode table in the image.
	FNodeStart uint32
	// FNodeSize is the size of one fnode record, in bytes.
	FNodeSize uint16
	// RootFNode is the index of the root directory's fnode.
	RootFNode uint16
}

// DecodeVolumeInformation decodes the 128-byte volume information record.
func DecodeVolumeInformation(data []byte) (VolumeInformation, error) {
	if len(data) != VolumeInfoSize {
		return VolumeInformation{}, rmxfs.ErrMalformedVolumeInfo.WithMessage(
			fmt.Sprintf("expected %d bytes, got %d", VolumeInfoSize, len(data)))
	}

	var raw RawVolumeInfo
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw)
	if err != nil {
		return VolumeInformation{}, rmxfs.ErrMalformedVolumeInfo.Wrap(err)
	}

	name := bytes.TrimRight(raw.Name[:], "\x00")
	if !utf8.Valid(name) {
		return VolumeInformation{}, rmxfs.ErrMalformedVolumeInfo.WithMessage(
			fmt.Sprintf("volume name isn't valid text: %q", raw.Name))
	}
	if raw.BlockSize == 0 {
		return VolumeInformation{}, rmxfs.ErrMalformedVolumeInfo.WithMessage(
			"block size is 0")
	}
	if raw.FNodeSize == 0 && raw.NumFNodes != 0 {
		return VolumeInformation{}, rmxfs.ErrMalformedVolumeInfo.WithMessage(
			fmt.Sprintf("%d fnodes declared but fnode size is 0", raw.NumFNodes))
	}

	return VolumeInformation{
		Name:       string(name),
		FileDriver: raw.FileDriver,
		BlockSize:  raw.BlockSize,
		VolumeSize: raw.VolumeSize,
		NumFNodes:  raw.NumFNodes,
		FNodeStart: raw.FNodeStart,
		FNodeSize:  raw.FNodeSize,
		RootFNode:  raw.RootFNode,
	}, nil
}

// ReadVolumeInformation reads and decodes the volume information from an image.
func ReadVolumeInformation(image imageio.Accessor) (VolumeInformation, error) {
	data, err := image.ReadAt(VolumeInfoOffset, VolumeInfoSize)
	if err != nil {
		return VolumeInformation{}, err
	}
	return DecodeVolumeInformation(data)
}

// FNodeTableSize returns the size of the fnode table, in bytes.
func (info VolumeInformation) FNodeTableSize() uint32 {
	return uint32(info.NumFNodes) * uint32(info.FNodeSize)
}

// TotalBytes returns the size of the volume in bytes, as recorded on disk.
func (info VolumeInformation) TotalBytes() uint64 {
	return uint64(info.VolumeSize) * uint64(info.BlockSize)
}
