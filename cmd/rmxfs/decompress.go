package main

import (
	"fmt"
	"os"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/utilities/compression"
	"github.com/urfave/cli/v2"
)

func decompressImage(context *cli.Context) error {
	if context.NArg() != 2 {
		return exitError(rmxfs.ErrInvalidArgument.WithMessage(
			"expected an input file and an output file"))
	}

	sourceFilePath := context.Args().Get(0)
	outputFilePath := context.Args().Get(1)

	sourceFile, err := os.Open(sourceFilePath)
	if err != nil {
		return exitError(fmt.Errorf("failed to open file for reading: %w", err))
	}
	defer sourceFile.Close()

	outFile, err := os.Create(outputFilePath)
	if err != nil {
		return exitError(fmt.Errorf("failed to open file for writing: %w", err))
	}
	defer outFile.Close()

	nWritten, err := compression.DecompressImage(sourceFile, outFile)
	if err != nil {
		return exitError(fmt.Errorf("error expanding file: %w", err))
	}

	fmt.Fprintf(context.App.Writer, "Expanded image to %d bytes.\n", nWritten)
	return nil
}
