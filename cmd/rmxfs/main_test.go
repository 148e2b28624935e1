package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/errors"
	"github.com/dargueta/rmxfs/file_systems/irmx86"
	rmxtest "github.com/dargueta/rmxfs/testing"
	"github.com/dargueta/rmxfs/utilities/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestHostFileName(t *testing.T) {
	assert.Equal(t, "FILE1", hostFileName("FILE1", false))
	assert.Equal(t, "A_B_C_D", hostFileName("A B/C\\D", false))
	assert.Equal(t, "_", hostFileName("", false))
	assert.Equal(t, "_.", hostFileName(".", false))
	assert.Equal(t, "_..", hostFileName("..", false))
}

func TestHostFileName__Slugify(t *testing.T) {
	assert.Equal(t, "read-me-txt", hostFileName("READ ME.TXT", true))
	assert.Equal(t, "_", hostFileName("", true), "empty slug should fall back")
}

func TestUniqueHostName(t *testing.T) {
	taken := map[string]bool{}
	assert.Equal(t, "A_B", uniqueHostName("A_B", taken))
	assert.Equal(t, "A_B_1", uniqueHostName("A_B", taken))
	assert.Equal(t, "A_B_2", uniqueHostName("A_B", taken))
	assert.Equal(t, "C", uniqueHostName("C", taken))
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, "disk", defaultOutputDir("disk.img"))
	assert.Equal(t, "a/b/disk", defaultOutputDir("a/b/disk.rle.gz"))
	assert.Equal(t, "disk_files", defaultOutputDir("disk"))
	assert.Equal(t, "a/_files", defaultOutputDir("a/.img"))
}

func TestExitError(t *testing.T) {
	assert.NoError(t, exitError(nil))

	err := exitError(rmxfs.ErrNotFound.WithMessage("no `X` in `/`"))
	var exitCoder cli.ExitCoder
	require.ErrorAs(t, err, &exitCoder)
	assert.Equal(t, errors.ENOENT.ExitCode(), exitCoder.ExitCode())
	assert.Contains(t, err.Error(), "no `X` in `/`")

	err = exitError(os.ErrClosed)
	require.ErrorAs(t, err, &exitCoder)
	assert.Equal(t, 1, exitCoder.ExitCode())
}

func TestLoadConfig__Defaults(t *testing.T) {
	config, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, Config{}, config)
}

func TestLoadConfig__FromEnvironment(t *testing.T) {
	t.Setenv("RMXFS_TRIM", "true")
	t.Setenv("RMXFS_CACHE_BLOCK_SIZE", "512")
	t.Setenv("RMXFS_SKIP_UNKNOWN_TYPES", "1")

	config, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, config.Trim)
	assert.True(t, config.SkipUnknownTypes)
	assert.EqualValues(t, 512, config.CacheBlockSize)
	assert.False(t, config.Verbose)
}

func TestLoadConfig__Invalid(t *testing.T) {
	t.Setenv("RMXFS_CACHE_BLOCK_SIZE", "lots")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestCat(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))

	stdout, _, err := runApp(t, Config{}, "cat", imagePath, "/SUB/INNER")
	require.NoError(t, err)
	assert.Equal(t, "inner", stdout)

	stdout, _, err = runApp(t, Config{}, "cat", imagePath, "hello")
	require.NoError(t, err, "lookup should be case-insensitive")
	assert.Equal(t, "hello world", stdout)
}

func TestCat__Errors(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))
	var exitCoder cli.ExitCoder

	_, _, err := runApp(t, Config{}, "cat", imagePath, "/SUB")
	require.ErrorAs(t, err, &exitCoder)
	assert.Equal(t, errors.EISDIR.ExitCode(), exitCoder.ExitCode())

	_, _, err = runApp(t, Config{}, "cat", imagePath, "/NOPE")
	require.ErrorAs(t, err, &exitCoder)
	assert.Equal(t, errors.ENOENT.ExitCode(), exitCoder.ExitCode())

	_, _, err = runApp(t, Config{}, "cat", imagePath)
	require.ErrorAs(t, err, &exitCoder)
	assert.Equal(t, errors.EINVAL.ExitCode(), exitCoder.ExitCode())
}

func TestList(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))

	stdout, _, err := runApp(t, Config{}, "ls", imagePath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "HELLO "), lines[0])
	assert.Contains(t, lines[0], irmx86.FileTypeData.String())
	assert.True(t, strings.HasPrefix(lines[1], "SUB "), lines[1])
	assert.Contains(t, lines[1], irmx86.FileTypeDirectory.String())

	stdout, _, err = runApp(t, Config{}, "ls", imagePath, "SUB")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "INNER "), stdout)
}

func TestInfo(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))

	stdout, _, err := runApp(t, Config{}, "info", imagePath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "name: RMXVOL")
	assert.Contains(t, stdout, "name: CLITEST")
	assert.Contains(t, stdout, "blockSize: 128")
	assert.Contains(t, stdout, "allocated: 4")
	assert.NotContains(t, stdout, "skipped")
}

func TestInfo__UnknownFileType(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, true))

	_, _, err := runApp(t, Config{}, "info", imagePath)
	var exitCoder cli.ExitCoder
	require.ErrorAs(t, err, &exitCoder)
	assert.Equal(t, errors.EMEDIUMTYPE.ExitCode(), exitCoder.ExitCode())
	assert.Contains(t, err.Error(), string(irmx86.StageFNodeTable))

	stdout, stderr, err := runApp(t, Config{}, "info", "--skip-unknown-types", "-v", imagePath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "skipped:")
	assert.Contains(t, stderr, "skipped")

	_, _, err = runApp(t, Config{SkipUnknownTypes: true}, "info", imagePath)
	assert.NoError(t, err, "config should set the flag's default")
}

func TestFNodes(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))

	stdout, _, err := runApp(t, Config{}, "fnodes", imagePath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(stdout, "\n"), "\n")
	require.Len(t, lines, 6, "header plus one row per slot")
	assert.Equal(
		t,
		"index,allocated,flags,type,owner,total_size,total_blocks,pointers,parent,modified",
		lines[0],
	)
	assert.True(t, strings.HasPrefix(lines[2], "1,true,"), lines[2])
	assert.True(t, strings.HasPrefix(lines[5], "4,false,"), lines[5])
}

func TestExtract(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))
	outputDir := filepath.Join(t.TempDir(), "out")

	_, _, err := runApp(t, Config{}, "extract", "-o", outputDir, "-r", "--trim", imagePath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "HELLO"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(data))

	data, err = os.ReadFile(filepath.Join(outputDir, "SUB", "INNER"))
	require.NoError(t, err)
	assert.Equal(t, "inner", string(data))

	_, _, err = runApp(t, Config{}, "extract", "-o", outputDir, imagePath)
	assert.Error(t, err, "output directory already exists")
}

func TestExtract__WholeBlocksNonRecursive(t *testing.T) {
	imagePath := writeTestImage(t, "vol.img", buildTestImage(t, false))

	_, stderr, err := runApp(t, Config{Verbose: true}, "extract", imagePath)
	require.NoError(t, err)

	outputDir := strings.TrimSuffix(imagePath, ".img")
	data, err := os.ReadFile(filepath.Join(outputDir, "HELLO"))
	require.NoError(t, err)
	assert.Len(t, data, testBlockSize)
	assert.True(t, bytes.HasPrefix(data, []byte("hello world")))

	assert.NoDirExists(t, filepath.Join(outputDir, "SUB"))
	assert.Contains(t, stderr, "skipped directory SUB")
}

func TestCompressedImage(t *testing.T) {
	compressed := rmxtest.CompressImage(t, buildTestImage(t, false))
	imagePath := writeTestImage(t, "vol"+compression.ImageExtension, compressed)

	stdout, _, err := runApp(t, Config{}, "cat", "--cache-block-size", "64", imagePath, "HELLO")
	require.NoError(t, err)
	assert.Equal(t, "hello world", stdout)
}

func TestDecompress(t *testing.T) {
	image := buildTestImage(t, false)
	inputPath := writeTestImage(t, "vol.rle.gz", rmxtest.CompressImage(t, image))
	outputPath := filepath.Join(t.TempDir(), "vol.img")

	stdout, _, err := runApp(t, Config{}, "decompress", inputPath, outputPath)
	require.NoError(t, err)
	assert.Contains(t, stdout, "2048 bytes")

	data, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.Equal(t, image, data)

	_, _, err = runApp(t, Config{}, "decompress", inputPath)
	assert.Error(t, err)
}

func TestExtract__CollidingHostNames(t *testing.T) {
	image := rmxtest.NewImageBuilder(t, 16*testBlockSize).
		PutLabel(rmxtest.DefaultLabel).
		PutVolumeInfo(rmxtest.VolumeInfoSpec{
			Name:       "CLASH",
			BlockSize:  testBlockSize,
			VolumeSize: 16,
			NumFNodes:  3,
			FNodeStart: 1024,
			FNodeSize:  rmxtest.FNodePrefixSize,
		}).
		PutFNode(0, rmxtest.FNodeSpec{
			Flags:    0x0001,
			Type:     uint8(irmx86.FileTypeDirectory),
			Pointers: []rmxtest.PointerSpec{{Count: 1, Address: 12}},
		}).
		PutFNode(1, rmxtest.FNodeSpec{
			Flags:     0x0001,
			Type:      uint8(irmx86.FileTypeData),
			TotalSize: 5,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 14}},
		}).
		PutFNode(2, rmxtest.FNodeSpec{
			Flags:     0x0001,
			Type:      uint8(irmx86.FileTypeData),
			TotalSize: 6,
			Pointers:  []rmxtest.PointerSpec{{Count: 1, Address: 15}},
		}).
		PutDirectory(
			12*testBlockSize,
			rmxtest.DirentSpec{FNode: 1, Name: "A B"},
			rmxtest.DirentSpec{FNode: 2, Name: "A_B"},
		).
		Fill(14*testBlockSize, []byte("first")).
		Fill(15*testBlockSize, []byte("second")).
		Bytes()

	imagePath := writeTestImage(t, "clash.img", image)
	outputDir := filepath.Join(t.TempDir(), "out")

	_, stderr, err := runApp(t, Config{}, "extract", "-v", "--trim", "-o", outputDir, imagePath)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outputDir, "A_B"))
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))

	data, err = os.ReadFile(filepath.Join(outputDir, "A_B_1"))
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	assert.Contains(t, stderr, "warning: A_B already used")
}
