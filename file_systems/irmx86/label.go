package irmx86

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"strconv"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

const VolumeLabelOffset = 768
const VolumeLabelSize = 128

// RawVolumeLabel is the on-disk layout of the ISO volume label.
type RawVolumeLabel struct {
	Label         [3]byte
	_             [1]byte
	Name          [6]byte
	Structure     [1]byte
	_             [60]byte
	RecordingSide [1]byte
	_             [4]byte
	Interleave    [2]byte
	_             [1]byte
	Version       [1]byte
	_             [48]byte
}

// VolumeLabel describes the physical medium the volume was written to.
type VolumeLabel struct {
	// Label is the label type, usually "VOL".
	Label string
	// Name is the volume name recorded on the medium.
	Name string
	// Structure is the structure code, "N" for named volumes.
	Structure        string
	RecordingSide    int
	InterleaveFactor int
	Version          int
}

// trimText removes trailing spaces and NULs from a fixed-width text field. The
// second return value is false if the field contains non-ASCII bytes.
func trimText(field []byte) (string, bool) {
	trimmed := bytes.TrimRight(field, " \x00")
	for _, char := range trimmed {
		if char > 0x7f {
			return "", false
		}
	}
	return string(trimmed), true
}

// parseDigitField parses a fixed-width field of ASCII decimal digits. Trailing
// spaces and NULs are ignored, but the field can't be empty.
func parseDigitField(fieldName string, field []byte) (int, error) {
	trimmed := bytes.Trim(field, " \x00")
	if len(trimmed) == 0 {
		return 0, rmxfs.ErrMalformedLabel.WithMessage(
			fmt.Sprintf("%s is blank", fieldName))
	}

	for _, char := range trimmed {
		if char < '0' || char > '9' {
			return 0, rmxfs.ErrMalformedLabel.WithMessage(
				fmt.Sprintf("%s must be a decimal number, got %q", fieldName, field))
		}
	}

	value, err := strconv.Atoi(string(trimmed))
	if err != nil {
		return 0, rmxfs.ErrMalformedLabel.Wrap(err)
	}
	return value, nil
}

// DecodeVolumeLabel decodes the 128-byte ISO volume label.
func DecodeVolumeLabel(data []byte) (VolumeLabel, error) {
	if len(data) != VolumeLabelSize {
		return VolumeLabel{}, rmxfs.ErrMalformedLabel.WithMessage(
			fmt.Sprintf("expected %d bytes, got %d", VolumeLabelSize, len(data)))
	}

	var raw RawVolumeLabel
	err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &raw)
	if err != nil {
		return VolumeLabel{}, rmxfs.ErrMalformedLabel.Wrap(err)
	}

	label := VolumeLabel{}
	textFields := []struct {
		name   string
		raw    []byte
		target *string
	}{
		{"label", raw.Label[:], &label.Label},
		{"volume name", raw.Name[:], &label.Name},
		{"structure code", raw.Structure[:], &label.Structure},
	}
	for _, field := range textFields {
		text, ok := trimText(field.raw)
		if !ok {
			return VolumeLabel{}, rmxfs.ErrMalformedLabel.WithMessage(
				fmt.Sprintf("%s contains non-ASCII bytes: %q", field.name, field.raw))
		}
		*field.target = text
	}

	label.RecordingSide, err = parseDigitField("recording side", raw.RecordingSide[:])
	if err != nil {
		return VolumeLabel{}, err
	}
	label.InterleaveFactor, err = parseDigitField("interleave factor", raw.Interleave[:])
	if err != nil {
		return VolumeLabel{}, err
	}
	label.Version, err = parseDigitField("version", raw.Version[:])
	if err != nil {
		return VolumeLabel{}, err
	}
	return label, nil
}

// ReadVolumeLabel reads and decodes the volume label from an image.
func ReadVolumeLabel(image imageio.Accessor) (VolumeLabel, error) {
	data, err := image.ReadAt(VolumeLabelOffset, VolumeLabelSize)
	if err != nil {
		return VolumeLabel{}, err
	}
	return DecodeVolumeLabel(data)
}
