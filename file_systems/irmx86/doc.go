/*
Package irmx86 reads volumes formatted with the iRMX-86 named file system.

Only reading is supported. A volume is opened with [Open], which decodes the
ISO volume label, the iRMX volume information record, and the whole fnode table
up front. Directories and file contents are decoded on demand and never cached.

Layout summary:

  - Bytes 384-511 hold the volume information: block size, volume size, and the
    location and geometry of the fnode table.
  - Bytes 768-895 hold the ISO volume label.
  - The fnode table lives at the byte offset given in the volume information.
    Each fnode describes one file and holds eight block pointers. For "long"
    files the pointers address indirect blocks of further pointers instead of
    the data itself.

Indirect blocks are located by their raw byte offset, while data blocks are
addressed in units of the volume block size. Volumes in the wild depend on this,
so don't "fix" it.

Fnodes are identified by their slot in the table. Unallocated slots are kept as
placeholders so that indices stored in directories and in the parent field of
other fnodes stay valid.

References:

  - iRMX 86 Disk Verification Utility Reference Manual, Appendix A (on-disk
    structures): http://www.bitsavers.org/pdf/intel/iRMX/iRMX_86/
  - rmxtool, which reads and writes these volumes:
    https://github.com/sbelectronics/rmxtool
*/

package irmx86
