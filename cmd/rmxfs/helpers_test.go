package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/dargueta/rmxfs/file_systems/irmx86"
	rmxtest "github.com/dargueta/rmxfs/testing"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const testBlockSize = 128

// buildTestImage builds a volume with this tree:
//
//	/HELLO        "hello world" in block 14
//	/SUB/INNER    "inner" in block 15
//
// If `withUnknown` is set, fnode 4 is allocated with an undefined type.
func buildTestImage(t *testing.T, withUnknown bool) []byte {
	builder := rmxtest.NewImageBuilder(t, 16*testBlockSize).
		PutLabel(rmxtest.DefaultLabel).
		PutVolumeInfo(rmxtest.VolumeInfoSpec{
			Name:       "CLITEST",
			BlockSize:  testBlockSize,
			VolumeSize: 16,
			NumFNodes:  5,
			FNodeStart: 1024,
			FNodeSize:  rmxtest.FNodePrefixSize,
			RootFNode:  0,
		}).
		PutFNode(0, rmxtest.FNodeSpec{
			Flags:     0x0001,
			Type:      uint8(irmx86.FileTypeDirectory),
			TotalSize: 32,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 12}},
		}).
		PutFNode(1, rmxtest.FNodeSpec{
			Flags:       0x0001,
			Type:        uint8(irmx86.FileTypeData),
			TotalSize:   11,
			TotalBlocks: 1,
			Pointers:    []rmxtest.PointerSpec{{Count: 1, Address: 14}},
		}).
		PutFNode(2, rmxtest.FNodeSpec{
			Flags:     0x0001,
			Type:      uint8(irmx86.FileTypeDirectory),
			TotalSize: 16,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 13}},
		}).
		PutFNode(3, rmxtest.FNodeSpec{
			Flags:       0x0001,
			Type:        uint8(irmx86.FileTypeData),
			TotalSize:   5,
			TotalBlocks: 1,
			Pointers:    []rmxtest.PointerSpec{{Count: 1, Address: 15}},
			Parent:      2,
		}).
		PutDirectory(
			12*testBlockSize,
			rmxtest.DirentSpec{FNode: 1, Name: "HELLO"},
			rmxtest.DirentSpec{FNode: 2, Name: "SUB"},
		).
		PutDirectory(13*testBlockSize, rmxtest.DirentSpec{FNode: 3, Name: "INNER"}).
		Fill(14*testBlockSize, []byte("hello world")).
		Fill(15*testBlockSize, []byte("inner"))

	if withUnknown {
		builder.PutFNode(4, rmxtest.FNodeSpec{Flags: 0x0001, Type: 5})
	}
	return builder.Bytes()
}

// writeTestImage writes `image` to a file named `name` in a temporary
// directory and returns its path.
func writeTestImage(t *testing.T, name string, image []byte) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, image, 0o644))
	return path
}

// runApp runs the command line with `args` and returns what it wrote to
// standard output and standard error.
func runApp(t *testing.T, config Config, args ...string) (string, string, error) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	app := newApp(config, stdout, stderr)
	app.ExitErrHandler = func(*cli.Context, error) {}

	err := app.Run(append([]string{"rmxfs"}, args...))
	return stdout.String(), stderr.String(), err
}
