package compression

import (
	"bufio"
	"errors"
	"io"
)

// ByteRun is a single run of one byte value.
type ByteRun struct {
	// Byte is the value repeated in this run.
	Byte byte
	// RunLength is the total number of times the byte occurs in the run. A
	// valid run always has a length of at least 1.
	RunLength int
}

// InvalidRLERun is returned by [RunLengthGrouper.GetNextRun] when no run could
// be read, either because of EOF or an I/O error.
var InvalidRLERun = ByteRun{Byte: 0, RunLength: 0}

// RunLengthGrouper splits a byte stream into consecutive runs of equal bytes.
type RunLengthGrouper struct {
	rd *bufio.Reader
}

// NewRunLengthGrouper creates a grouper that reads runs from `rd`.
func NewRunLengthGrouper(rd io.Reader) RunLengthGrouper {
	return RunLengthGrouper{rd: bufio.NewReader(rd)}
}

// GetNextRun returns the next run in the stream. At the end of the stream it
// returns [InvalidRLERun] and [io.EOF].
func (grouper RunLengthGrouper) GetNextRun() (ByteRun, error) {
	firstByte, err := grouper.rd.ReadByte()
	if err != nil {
		return InvalidRLERun, err
	}

	runLength := 1
	for {
		currentByte, err := grouper.rd.ReadByte()
		if errors.Is(err, io.EOF) {
			break
		} else if err != nil {
			return InvalidRLERun, err
		}

		if currentByte != firstByte {
			grouper.rd.UnreadByte()
			break
		}
		runLength++
	}
	return ByteRun{Byte: firstByte, RunLength: runLength}, nil
}
