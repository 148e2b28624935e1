// Package imageio provides positional, cursor-free reads over a volume image.
//
// Every read names its own absolute offset, so reads of unrelated regions of
// the image can be interleaved freely, including from multiple goroutines.

package imageio

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dargueta/rmxfs"
)

// Accessor is random-access, read-only storage for a volume image.
type Accessor interface {
	// ReadAt returns exactly `length` bytes starting at `offset`. If any part of
	// the range lies outside the image, it fails with [rmxfs.ErrTruncatedImage]
	// and returns no data.
	ReadAt(offset uint64, length uint32) ([]byte, error)
	// Size returns the size of the image, in bytes.
	Size() uint64
}

// CheckBounds verifies that `length` bytes starting at `offset` lie within an
// image of `size` bytes. It returns nil if they do.
func CheckBounds(offset uint64, length uint32, size uint64) error {
	// Written this way around so that a huge offset can't overflow.
	if offset > size || uint64(length) > size-offset {
		return rmxfs.ErrTruncatedImage.WithMessage(
			fmt.Sprintf(
				"can't read %d bytes at offset %d; image is %d bytes",
				length,
				offset,
				size,
			),
		)
	}
	return nil
}

////////////////////////////////////////////////////////////////////////////////

type byteAccessor struct {
	data []byte
}

// FromBytes creates an [Accessor] over an in-memory image. The slice must not be
// modified while the accessor is in use.
func FromBytes(data []byte) Accessor {
	return byteAccessor{data: data}
}

func (a byteAccessor) ReadAt(offset uint64, length uint32) ([]byte, error) {
	err := CheckBounds(offset, length, a.Size())
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, length)
	copy(buffer, a.data[offset:offset+uint64(length)])
	return buffer, nil
}

func (a byteAccessor) Size() uint64 {
	return uint64(len(a.data))
}

////////////////////////////////////////////////////////////////////////////////

type readerAtAccessor struct {
	reader io.ReaderAt
	size   uint64
}

// FromReaderAt creates an [Accessor] over any [io.ReaderAt] of known size, such
// as an [os.File]. Concurrent reads are safe if the reader's ReadAt is, which
// is the case for files.
func FromReaderAt(reader io.ReaderAt, size int64) Accessor {
	if size < 0 {
		size = 0
	}
	return readerAtAccessor{reader: reader, size: uint64(size)}
}

func (a readerAtAccessor) ReadAt(offset uint64, length uint32) ([]byte, error) {
	err := CheckBounds(offset, length, a.size)
	if err != nil {
		return nil, err
	}

	buffer := make([]byte, length)
	nRead, err := a.reader.ReadAt(buffer, int64(offset))
	if nRead == len(buffer) {
		// io.ReaderAt may return io.EOF alongside a full read at the end of the
		// stream; the data is still complete.
		return buffer, nil
	}
	if err == nil || err == io.EOF {
		return nil, rmxfs.ErrTruncatedImage.WithMessage(
			fmt.Sprintf(
				"short read at offset %d: expected %dB, got %d",
				offset,
				length,
				nRead,
			),
		)
	}
	return nil, rmxfs.ErrIOFailed.Wrap(err)
}

func (a readerAtAccessor) Size() uint64 {
	return a.size
}

////////////////////////////////////////////////////////////////////////////////

type streamAccessor struct {
	lock   sync.Mutex
	stream io.ReadSeeker
	size   uint64
}

// FromStream adapts a cursor-based stream to the [Accessor] contract. The
// stream's position is owned by the accessor from here on; each read seeks to
// its own offset while holding a lock, so callers never observe the cursor.
func FromStream(stream io.ReadSeeker) (Accessor, error) {
	end, err := stream.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, rmxfs.ErrIOFailed.Wrap(err)
	}
	return &streamAccessor{stream: stream, size: uint64(end)}, nil
}

func (a *streamAccessor) ReadAt(offset uint64, length uint32) ([]byte, error) {
	err := CheckBounds(offset, length, a.size)
	if err != nil {
		return nil, err
	}

	a.lock.Lock()
	defer a.lock.Unlock()

	_, err = a.stream.Seek(int64(offset), io.SeekStart)
	if err != nil {
		return nil, rmxfs.ErrIOFailed.Wrap(err)
	}

	buffer := make([]byte, length)
	_, err = io.ReadFull(a.stream, buffer)
	if err == io.ErrUnexpectedEOF || err == io.EOF {
		return nil, rmxfs.ErrTruncatedImage.WithMessage(
			fmt.Sprintf("stream ended before offset %d", offset+uint64(length)))
	} else if err != nil {
		return nil, rmxfs.ErrIOFailed.Wrap(err)
	}
	return buffer, nil
}

func (a *streamAccessor) Size() uint64 {
	return a.size
}

////////////////////////////////////////////////////////////////////////////////

// File is an [Accessor] backed by an open image file.
type File struct {
	Accessor
	file *os.File
}

// OpenFile opens the image file at `path` for reading.
func OpenFile(path string) (*File, error) {
	handle, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	info, err := handle.Stat()
	if err != nil {
		handle.Close()
		return nil, err
	}

	return &File{
		Accessor: FromReaderAt(handle, info.Size()),
		file:     handle,
	}, nil
}

// Name returns the path the image was opened with.
func (f *File) Name() string {
	return f.file.Name()
}

// Close closes the underlying file. The accessor must not be used afterwards.
func (f *File) Close() error {
	return f.file.Close()
}
