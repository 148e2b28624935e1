package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"strings"
)

// ImageExtension is the file name suffix of RLE8+gzip compressed images.
const ImageExtension = ".rle.gz"

// IsCompressedImageName returns true if `path` names a compressed image.
func IsCompressedImageName(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ImageExtension)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

// CompressImage compresses a volume image using RLE8 followed by gzip.
//
// The returned int64 is the number of compressed bytes written to `output`. It
// is only meaningful if no error occurred.
func CompressImage(input io.Reader, output io.Writer) (int64, error) {
	counter := &countingWriter{w: output}

	gzWriter, err := gzip.NewWriterLevel(counter, gzip.BestCompression)
	if err != nil {
		return 0, err
	}

	_, err = CompressRLE8(input, gzWriter)
	if err != nil {
		gzWriter.Close()
		return counter.n, err
	}

	// The gzip footer is only written on close.
	err = gzWriter.Close()
	return counter.n, err
}

// DecompressImage takes a gzipped, RLE8-encoded image and writes the original
// raw bytes to `output`.
//
// The returned int64 is the decompressed size of the image. It is only
// meaningful if no error occurred.
func DecompressImage(input io.Reader, output io.Writer) (int64, error) {
	gzReader, err := gzip.NewReader(input)
	if err != nil {
		return 0, err
	}
	defer gzReader.Close()
	return DecompressRLE8(gzReader, output)
}

// DecompressImageToBytes is like [DecompressImage] but returns the raw image in
// a new byte slice.
func DecompressImageToBytes(input io.Reader) ([]byte, error) {
	var buffer bytes.Buffer
	_, err := DecompressImage(input, &buffer)
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
