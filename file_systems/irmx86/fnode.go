package irmx86

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strings"
	"time"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

// FNodePrefixSize is the size of the structured part of an fnode record. Volumes
// may use larger records; the remainder is ignored.
const FNodePrefixSize = 87

const (
	flagAllocated = 1 << 0
	flagLongFile  = 1 << 1
	flagModified  = 1 << 5
	flagDeleted   = 1 << 6
)

// rmxEpoch is 1978-01-01 00:00:00 UTC. Timestamps are seconds since then.
var rmxEpoch = time.Date(1978, 1, 1, 0, 0, 0, 0, time.UTC)

// Flags are the status bits of an fnode.
type Flags struct {
	Allocated bool
	// LongFile is set when the pointer table addresses indirect blocks.
	LongFile bool
	Modified bool
	Deleted  bool
}

// DecodeFlags extracts the flags from an fnode's raw flag word. Reserved bits
// are ignored.
func DecodeFlags(raw uint16) Flags {
	return Flags{
		Allocated: raw&flagAllocated != 0,
		LongFile:  raw&flagLongFile != 0,
		Modified:  raw&flagModified != 0,
		Deleted:   raw&flagDeleted != 0,
	}
}

// String gives the flags as a fixed-width string such as "AL--", in the order
// allocated, long, modified, deleted.
func (f Flags) String() string {
	letters := []struct {
		set    bool
		letter byte
	}{
		{f.Allocated, 'A'},
		{f.LongFile, 'L'},
		{f.Modified, 'M'},
		{f.Deleted, 'D'},
	}

	result := make([]byte, len(letters))
	for i, entry := range letters {
		if entry.set {
			result[i] = entry.letter
		} else {
			result[i] = '-'
		}
	}
	return string(result)
}

// FileType is the type code stored in an fnode.
type FileType uint8

const (
	FileTypeFNodeFile           = FileType(0)
	FileTypeFreeSpaceMap        = FileType(1)
	FileTypeFreeFNodesMap       = FileType(2)
	FileTypeSpaceAccountingFile = FileType(3)
	FileTypeBadDeviceBlocksFile = FileType(4)
	FileTypeDirectory           = FileType(6)
	FileTypeData                = FileType(8)
	FileTypeUnknown             = FileType(9)
)

var fileTypeNames = map[FileType]string{
	FileTypeFNodeFile:           "fnode_file",
	FileTypeFreeSpaceMap:        "free_space_map",
	FileTypeFreeFNodesMap:       "free_fnodes_map",
	FileTypeSpaceAccountingFile: "space_accounting_file",
	FileTypeBadDeviceBlocksFile: "bad_device_blocks_file",
	FileTypeDirectory:           "directory",
	FileTypeData:                "data",
	FileTypeUnknown:             "unknown",
}

// ParseFileType converts an on-disk type code to a [FileType]. Codes outside
// the table fail with [rmxfs.ErrUnknownFileType].
func ParseFileType(code uint8) (FileType, error) {
	fileType := FileType(code)
	if _, ok := fileTypeNames[fileType]; !ok {
		return 0, rmxfs.ErrUnknownFileType.WithMessage(
			fmt.Sprintf("type code %d isn't defined", code))
	}
	return fileType, nil
}

func (t FileType) String() string {
	name, ok := fileTypeNames[t]
	if !ok {
		return fmt.Sprintf("FileType(%d)", uint8(t))
	}
	return name
}

// Rights is a bit set of the operations an accessor may perform on a file.
type Rights uint8

const (
	RightDelete = Rights(1)
	RightRead   = Rights(2)
	RightAppend = Rights(4)
	RightUpdate = Rights(8)
)

// String lists the rights in the order delete, read, append, update, with a
// dash for each right not granted, e.g. "-RA-".
func (r Rights) String() string {
	var builder strings.Builder
	for i, letter := range "DRAU" {
		if r&(1<<i) != 0 {
			builder.WriteRune(letter)
		} else {
			builder.WriteByte('-')
		}
	}
	return builder.String()
}

// Accessor is one user ID and the rights it has been granted on a file.
type Accessor struct {
	Rights Rights
	ID     uint16
}

// MaxAccessors is the number of accessor entries an fnode has room for.
const MaxAccessors = 3

// RawFNode is the on-disk layout of the structured part of an fnode record.
type RawFNode struct {
	Flags            uint16
	Type             uint8
	Granularity      uint8
	Owner            uint16
	CreationTime     uint32
	AccessTime       uint32
	ModificationTime uint32
	TotalSize        uint32
	TotalBlocks      uint32
	Pointers         [NumPointerSlots]RawPointerSlot
	Size             uint32
	_                [4]byte
	IDCount          uint16
	AccessRights     [9]byte
	Parent           uint16
}

// FNode is a decoded fnode. Its identity is its slot index in the fnode table.
type FNode struct {
	Index            uint16
	Flags            Flags
	Type             FileType
	Granularity      uint8
	Owner            uint16
	CreationTime     uint32
	AccessTime       uint32
	ModificationTime uint32
	// TotalSize is the size of the file's data, in bytes.
	TotalSize   uint32
	TotalBlocks uint32
	// Pointers is the fully resolved list of data block pointers. Indirect
	// blocks have already been expanded.
	Pointers     []BlockPointer
	Size         uint32
	IDCount      uint16
	AccessRights [9]byte
	// Parent is the index of the directory containing this fnode.
	Parent uint16
}

// DecodeRawFNode decodes one fnode record. Records shorter than the structured
// prefix are treated as if they were padded with zeros; bytes beyond the prefix
// are ignored.
func DecodeRawFNode(record []byte) (RawFNode, error) {
	if len(record) < FNodePrefixSize {
		padded := make([]byte, FNodePrefixSize)
		copy(padded, record)
		record = padded
	}

	var raw RawFNode
	err := binary.Read(
		bytes.NewReader(record[:FNodePrefixSize]), binary.LittleEndian, &raw)
	if err != nil {
		return RawFNode{}, rmxfs.ErrIOFailed.Wrap(err)
	}
	return raw, nil
}

// Resolve converts a raw record into an [FNode], checking its type and
// resolving its block pointers. Indirect blocks are read from `image`.
func (raw RawFNode) Resolve(index uint16, image imageio.Accessor) (FNode, error) {
	fileType, err := ParseFileType(raw.Type)
	if err != nil {
		return FNode{}, rmxfs.CastToDriverError(err).WithMessage(
			fmt.Sprintf("fnode %d", index))
	}

	flags := DecodeFlags(raw.Flags)
	pointers, err := ExpandPointers(raw.Pointers[:], flags.LongFile, image)
	if err != nil {
		return FNode{}, rmxfs.CastToDriverError(err).WithMessage(
			fmt.Sprintf("fnode %d", index))
	}

	return FNode{
		Index:            index,
		Flags:            flags,
		Type:             fileType,
		Granularity:      raw.Granularity,
		Owner:            raw.Owner,
		CreationTime:     raw.CreationTime,
		AccessTime:       raw.AccessTime,
		ModificationTime: raw.ModificationTime,
		TotalSize:        raw.TotalSize,
		TotalBlocks:      raw.TotalBlocks,
		Pointers:         pointers,
		Size:             raw.Size,
		IDCount:          raw.IDCount,
		AccessRights:     raw.AccessRights,
		Parent:           raw.Parent,
	}, nil
}

// DeserializeTimestamp converts an on-disk timestamp to a [time.Time].
func DeserializeTimestamp(timestamp uint32) time.Time {
	return rmxEpoch.Add(time.Duration(timestamp) * time.Second)
}

// IsDir reports whether the fnode is a directory.
func (fnode FNode) IsDir() bool {
	return fnode.Type == FileTypeDirectory
}

// CreatedAt returns the creation time.
func (fnode FNode) CreatedAt() time.Time {
	return DeserializeTimestamp(fnode.CreationTime)
}

// AccessedAt returns the last access time.
func (fnode FNode) AccessedAt() time.Time {
	return DeserializeTimestamp(fnode.AccessTime)
}

// ModifiedAt returns the last modification time.
func (fnode FNode) ModifiedAt() time.Time {
	return DeserializeTimestamp(fnode.ModificationTime)
}

// Accessors decodes the access rights field. It returns at most [MaxAccessors]
// entries, even if IDCount claims more.
func (fnode FNode) Accessors() []Accessor {
	count := int(fnode.IDCount)
	if count > MaxAccessors {
		count = MaxAccessors
	}

	accessors := make([]Accessor, count)
	for i := range accessors {
		entry := fnode.AccessRights[i*3 : (i+1)*3]
		accessors[i] = Accessor{
			Rights: Rights(entry[0]),
			ID:     binary.LittleEndian.Uint16(entry[1:]),
		}
	}
	return accessors
}

// Stat converts the fnode's metadata to an [rmxfs.FileStat]. Everything is
// reported read-only.
func (fnode FNode) Stat(blockSize uint16) rmxfs.FileStat {
	mode := uint32(rmxfs.S_IFREG | rmxfs.S_IRALL)
	if fnode.IsDir() {
		mode = rmxfs.S_IFDIR | rmxfs.S_IRALL | rmxfs.S_IXUSR | rmxfs.S_IXGRP |
			rmxfs.S_IXOTH
	}

	return rmxfs.FileStat{
		InodeNumber:  uint64(fnode.Index),
		Nlinks:       1,
		ModeFlags:    mode,
		Uid:          uint32(fnode.Owner),
		Size:         int64(fnode.TotalSize),
		BlockSize:    int64(blockSize),
		NumBlocks:    int64(fnode.TotalBlocks),
		CreatedAt:    fnode.CreatedAt(),
		LastAccessed: fnode.AccessedAt(),
		LastModified: fnode.ModifiedAt(),
	}
}
