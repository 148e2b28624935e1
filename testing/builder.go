package testing

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/noxer/bytewriter"
	"github.com/stretchr/testify/require"
)

// Fixed offsets of the iRMX-86 volume structures. These are duplicated from the
// driver so that the driver's own tests can use this package.
const (
	VolumeInfoOffset  = 384
	VolumeLabelOffset = 768
	FNodePrefixSize   = 87
)

// LabelSpec describes the ISO volume label. Every field is copied verbatim into
// its fixed-width slot and padded with spaces, so tests can plant bad digits.
type LabelSpec struct {
	Label         string
	Name          string
	Structure     string
	RecordingSide string
	Interleave    string
	Version       string
}

// DefaultLabel is a well-formed label for a single-sided volume.
var DefaultLabel = LabelSpec{
	Label:         "VOL",
	Name:          "RMXVOL",
	Structure:     "N",
	RecordingSide: "1",
	Interleave:    "05",
	Version:       "4",
}

// VolumeInfoSpec describes the iRMX volume information record.
type VolumeInfoSpec struct {
	Name       string
	FileDriver uint8
	BlockSize  uint16
	VolumeSize uint32
	NumFNodes  uint16
	FNodeStart uint32
	FNodeSize  uint16
	RootFNode  uint16
}

// PointerSpec is one slot of an fnode's block pointer table.
type PointerSpec struct {
	Count   uint16
	Address uint32
}

// IndirectSpec is one 4-byte descriptor in an indirect block.
type IndirectSpec struct {
	Count   uint8
	Address uint32
}

// FNodeSpec describes the structured prefix of an fnode record.
type FNodeSpec struct {
	Flags            uint16
	Type             uint8
	Granularity      uint8
	Owner            uint16
	CreationTime     uint32
	AccessTime       uint32
	ModificationTime uint32
	TotalSize        uint32
	TotalBlocks      uint32
	Pointers         []PointerSpec
	Size             uint32
	IDCount          uint16
	AccessRights     [9]byte
	Parent           uint16
}

// DirentSpec is a 16-byte directory record.
type DirentSpec struct {
	FNode uint16
	Name  string
}

// ImageBuilder assembles a synthetic volume image in memory.
type ImageBuilder struct {
	t          *testing.T
	data       []byte
	fnodeStart uint32
	fnodeSize  uint16
}

// NewImageBuilder creates a zero-filled image of `size` bytes.
func NewImageBuilder(t *testing.T, size int) *ImageBuilder {
	return &ImageBuilder{t: t, data: make([]byte, size)}
}

// PutUint24 stores the low 24 bits of `value` in `buffer`, little-endian.
func PutUint24(buffer []byte, value uint32) {
	buffer[0] = byte(value)
	buffer[1] = byte(value >> 8)
	buffer[2] = byte(value >> 16)
}

// fixed returns `text` as exactly `width` bytes, truncated or padded with spaces.
func fixed(text string, width int) []byte {
	field := bytes.Repeat([]byte{' '}, width)
	copy(field, text)
	return field
}

// Write serializes `values` in little-endian order starting at `offset`. It
// fails the test if they don't fit in the image.
func (b *ImageBuilder) Write(offset int, values ...any) *ImageBuilder {
	require.LessOrEqualf(
		b.t, offset, len(b.data), "offset %d is past the end of the image", offset)

	writer := bytewriter.New(b.data[offset:])
	for _, value := range values {
		err := binary.Write(writer, binary.LittleEndian, value)
		require.NoErrorf(b.t, err, "failed to write %T at offset %d", value, offset)
	}
	return b
}

// PutLabel writes the ISO volume label at its fixed offset.
func (b *ImageBuilder) PutLabel(label LabelSpec) *ImageBuilder {
	return b.Write(
		VolumeLabelOffset,
		fixed(label.Label, 3),
		[1]byte{},
		fixed(label.Name, 6),
		fixed(label.Structure, 1),
		[60]byte{},
		fixed(label.RecordingSide, 1),
		[4]byte{},
		fixed(label.Interleave, 2),
		[1]byte{},
		fixed(label.Version, 1),
		[48]byte{},
	)
}

// PutVolumeInfo writes the volume information record and remembers the fnode
// table geometry for later calls to PutFNode.
func (b *ImageBuilder) PutVolumeInfo(info VolumeInfoSpec) *ImageBuilder {
	var name [10]byte
	copy(name[:], info.Name)

	b.fnodeStart = info.FNodeStart
	b.fnodeSize = info.FNodeSize
	return b.Write(
		VolumeInfoOffset,
		name,
		uint8(0),
		info.FileDriver,
		info.BlockSize,
		info.VolumeSize,
		info.NumFNodes,
		info.FNodeStart,
		info.FNodeSize,
		info.RootFNode,
		[100]byte{},
	)
}

// EncodeFNode serializes the structured prefix of an fnode. At most eight
// pointers are encoded; missing ones are left as zeroed slots.
func EncodeFNode(t *testing.T, fnode FNodeSpec) []byte {
	require.LessOrEqual(t, len(fnode.Pointers), 8, "an fnode has only 8 pointer slots")

	var pointerTable [40]byte
	for i, pointer := range fnode.Pointers {
		binary.LittleEndian.PutUint16(pointerTable[i*5:], pointer.Count)
		PutUint24(pointerTable[i*5+2:], pointer.Address)
	}

	record := make([]byte, FNodePrefixSize)
	writer := bytewriter.New(record)
	values := []any{
		fnode.Flags,
		fnode.Type,
		fnode.Granularity,
		fnode.Owner,
		fnode.CreationTime,
		fnode.AccessTime,
		fnode.ModificationTime,
		fnode.TotalSize,
		fnode.TotalBlocks,
		pointerTable,
		fnode.Size,
		[4]byte{},
		fnode.IDCount,
		fnode.AccessRights,
		fnode.Parent,
	}
	for _, value := range values {
		require.NoError(t, binary.Write(writer, binary.LittleEndian, value))
	}
	return record
}

// PutFNode writes an fnode into slot `index` of the table described by the last
// call to PutVolumeInfo. If the volume's record size is smaller than the
// structured prefix, the prefix is cut off at the record boundary.
func (b *ImageBuilder) PutFNode(index int, fnode FNodeSpec) *ImageBuilder {
	require.NotZero(b.t, b.fnodeSize, "PutVolumeInfo must be called before PutFNode")

	record := EncodeFNode(b.t, fnode)
	if len(record) > int(b.fnodeSize) {
		record = record[:b.fnodeSize]
	}
	offset := int(b.fnodeStart) + index*int(b.fnodeSize)
	return b.Fill(offset, record)
}

// PutDirectory writes consecutive 16-byte directory records at `offset`.
func (b *ImageBuilder) PutDirectory(offset int, entries ...DirentSpec) *ImageBuilder {
	for i, entry := range entries {
		var name [14]byte
		copy(name[:], entry.Name)
		b.Write(offset+i*16, entry.FNode, name)
	}
	return b
}

// PutIndirectBlock writes consecutive 4-byte indirect descriptors at `offset`.
func (b *ImageBuilder) PutIndirectBlock(offset int, descriptors ...IndirectSpec) *ImageBuilder {
	for i, descriptor := range descriptors {
		var raw [4]byte
		raw[0] = descriptor.Count
		PutUint24(raw[1:], descriptor.Address)
		b.Fill(offset+i*4, raw[:])
	}
	return b
}

// Fill copies `data` into the image at `offset`.
func (b *ImageBuilder) Fill(offset int, data []byte) *ImageBuilder {
	require.LessOrEqualf(
		b.t,
		offset+len(data),
		len(b.data),
		"%d bytes at offset %d don't fit in a %d-byte image",
		len(data),
		offset,
		len(b.data),
	)
	copy(b.data[offset:], data)
	return b
}

// Bytes returns the image built so far.
func (b *ImageBuilder) Bytes() []byte {
	return b.data
}
