package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/blockcache"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
	"github.com/dargueta/rmxfs/file_systems/irmx86"
	"github.com/dargueta/rmxfs/utilities/compression"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
)

// openedImage is a decoded volume and whatever needs closing when done with it.
type openedImage struct {
	*irmx86.Volume
	file *imageio.File
}

func (image *openedImage) Close() error {
	if image.file == nil {
		return nil
	}
	return image.file.Close()
}

func newLogger(context *cli.Context) *log.Logger {
	if !context.Bool("verbose") {
		return log.New(io.Discard, "", 0)
	}
	return log.New(context.App.ErrWriter, "rmxfs: ", 0)
}

// loadAccessor opens the image at `path`. Compressed images are expanded into
// memory first.
func loadAccessor(path string) (imageio.Accessor, *imageio.File, error) {
	if !compression.IsCompressedImageName(path) {
		file, err := imageio.OpenFile(path)
		if err != nil {
			return nil, nil, err
		}
		return file, file, nil
	}

	compressed, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer compressed.Close()

	data, err := compression.DecompressImageToBytes(compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("decompressing `%s`: %w", path, err)
	}
	return imageio.FromBytes(data), nil, nil
}

// openImage opens and decodes the image named by the first argument.
func openImage(context *cli.Context, logger *log.Logger) (*openedImage, error) {
	path := context.Args().First()
	if path == "" {
		return nil, rmxfs.ErrInvalidArgument.WithMessage("no image given")
	}

	accessor, file, err := loadAccessor(path)
	if err != nil {
		return nil, err
	}

	if blockSize := context.Uint("cache-block-size"); blockSize > 0 {
		accessor = blockcache.New(accessor, blockSize)
		logger.Printf("caching image in %d-byte blocks", blockSize)
	}

	volume, err := irmx86.Open(
		accessor,
		irmx86.Options{SkipUnknownFileTypes: context.Bool("skip-unknown-types")},
	)
	if err != nil {
		if file != nil {
			file.Close()
		}
		return nil, err
	}

	var skipped *multierror.Error
	if errors.As(volume.Table().SkippedErrors(), &skipped) {
		for _, skipErr := range skipped.Errors {
			logger.Printf("skipped %s", skipErr)
		}
	}
	return &openedImage{Volume: volume, file: file}, nil
}

// exitError converts `err` into a [cli.ExitCoder] whose exit code is the errno
// of the driver error inside it, or 1 if there isn't one.
func exitError(err error) error {
	if err == nil {
		return nil
	}

	code := 1
	var driverErr rmxfs.DriverError
	if errors.As(err, &driverErr) {
		code = driverErr.Errno().ExitCode()
	}
	return cli.Exit(fmt.Sprintf("error: %s", err.Error()), code)
}
