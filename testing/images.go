package testing

import (
	"bytes"
	"crypto/rand"
	"io"
	"testing"

	"github.com/dargueta/rmxfs/utilities/compression"
	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/bytesextra"
)

// CreateRandomImage creates an image of `size` random bytes. It is guaranteed
// to either return a valid slice or fail the test and abort.
func CreateRandomImage(size uint, t *testing.T) []byte {
	backingData := make([]byte, size)

	_, err := rand.Read(backingData)
	require.NoErrorf(t, err, "failed to initialize %d bytes with random data", size)
	return backingData
}

// CompressImage compresses raw image bytes with RLE8 and gzip, the same way the
// fixtures checked into the repository are stored.
func CompressImage(t *testing.T, imageBytes []byte) []byte {
	var output bytes.Buffer
	_, err := compression.CompressImage(bytes.NewReader(imageBytes), &output)
	require.NoError(t, err, "failed to compress image")
	return output.Bytes()
}

// LoadDiskImage takes a compressed disk image and returns the uncompressed data,
// failing the test if it isn't exactly `expectedSize` bytes.
func LoadDiskImage(t *testing.T, compressedImageBytes []byte, expectedSize uint) []byte {
	require.Greater(t, len(compressedImageBytes), 0, "compressed image is empty")

	imageBytes, err := compression.DecompressImageToBytes(
		bytes.NewReader(compressedImageBytes))
	require.NoError(t, err)

	require.Equal(
		t,
		expectedSize,
		uint(len(imageBytes)),
		"uncompressed image is wrong size",
	)
	return imageBytes
}

// NewStream returns a seekable stream over a copy of `imageBytes`. Writes to
// the stream do not affect the original slice.
func NewStream(imageBytes []byte) io.ReadWriteSeeker {
	copyOfImage := make([]byte, len(imageBytes))
	copy(copyOfImage, imageBytes)
	return bytesextra.NewReadWriteSeeker(copyOfImage)
}
