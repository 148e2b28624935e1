package compression

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// maxRunPerGroup is the longest run one RLE8 group can represent: the two
// literal bytes plus 255 repetitions.
const maxRunPerGroup = 257

// CompressRLE8 reads `input` until EOF and writes its RLE8 encoding to `output`.
// The return value is the number of bytes written, only valid if no error
// occurred.
func CompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	grouper := NewRunLengthGrouper(input)
	written := int64(0)

	emit := func(chunk []byte) error {
		n, err := output.Write(chunk)
		written += int64(n)
		return err
	}

	for {
		run, err := grouper.GetNextRun()
		if errors.Is(err, io.EOF) {
			return written, nil
		} else if err != nil {
			return written, err
		}

		for run.RunLength >= 2 {
			groupLength := run.RunLength
			if groupLength > maxRunPerGroup {
				groupLength = maxRunPerGroup
			}

			err = emit([]byte{run.Byte, run.Byte, byte(groupLength - 2)})
			if err != nil {
				return written, err
			}
			run.RunLength -= groupLength
		}

		if run.RunLength == 1 {
			if err = emit([]byte{run.Byte}); err != nil {
				return written, err
			}
		}
	}
}

// DecompressRLE8 reads RLE8-encoded data from `input` until EOF and writes the
// decoded bytes to `output`. The return value is the number of bytes written,
// only valid if no error occurred.
//
// A stream that ends between a doubled byte and its repeat count fails with an
// error wrapping [io.ErrUnexpectedEOF].
func DecompressRLE8(input io.Reader, output io.Writer) (int64, error) {
	source := bufio.NewReader(input)
	previousByte := -1
	written := int64(0)

	for {
		currentByte, err := source.ReadByte()
		if errors.Is(err, io.EOF) {
			return written, nil
		} else if err != nil {
			return written, fmt.Errorf("error reading input: %w", err)
		}

		var chunk []byte
		if int(currentByte) == previousByte {
			repeatCount, err := source.ReadByte()
			if errors.Is(err, io.EOF) {
				return written, fmt.Errorf(
					"%w: missing repeat count after two %02x bytes",
					io.ErrUnexpectedEOF,
					currentByte,
				)
			} else if err != nil {
				return written, fmt.Errorf("error reading input: %w", err)
			}

			// The first of the pair was already written on the previous pass.
			chunk = bytes.Repeat([]byte{currentByte}, int(repeatCount)+1)

			// A group is complete; the next byte starts fresh even if it's
			// the same value, otherwise runs over 257 would decode wrong.
			previousByte = -1
		} else {
			previousByte = int(currentByte)
			chunk = []byte{currentByte}
		}

		n, err := output.Write(chunk)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("failed to write to output: %w", err)
		}
	}
}
