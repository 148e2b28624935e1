// Package compression stores volume images compactly.
//
// Floppy and hard disk images of iRMX volumes are mostly empty blocks, so the
// fixtures and sample images we keep around are run-length encoded and then
// gzipped. Files stored this way use the ".rle.gz" extension.
//
// The run-length encoding is RLE8: a byte B that occurs N >= 2 times in a row is
// written twice, followed by one unsigned byte giving the number of additional
// repetitions (N - 2). For example:
//
//	WXXXXXXXXXXXXXXXYZZ
//	W XX 13 Y ZZ 0
//
// A single run can therefore cover at most 257 bytes; longer runs are split.
// Since a byte doubles as its own escape, a byte occurring exactly twice costs
// three bytes of output.
package compression
