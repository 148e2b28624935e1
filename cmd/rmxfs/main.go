package main

import (
	"io"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	config, err := LoadConfig()
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}

	app := newApp(config, os.Stdout, os.Stderr)
	err = app.Run(os.Args)
	if err != nil {
		log.Fatalf("fatal error: %s", err.Error())
	}
}

func newApp(config Config, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "rmxfs",
		Usage:     "Read files from iRMX-86 volume images",
		Writer:    stdout,
		ErrWriter: stderr,
		Commands: []*cli.Command{
			{
				Name:      "extract",
				Usage:     "Copy the files in an image to a directory",
				ArgsUsage: "IMAGE",
				Flags:     append(volumeFlags(config), extractFlags(config)...),
				Action:    extractImage,
			},
			{
				Name:      "info",
				Usage:     "Show the volume label and volume information as YAML",
				ArgsUsage: "IMAGE",
				Flags:     volumeFlags(config),
				Action:    showInfo,
			},
			{
				Name:      "ls",
				Usage:     "List a directory",
				ArgsUsage: "IMAGE [PATH]",
				Flags:     volumeFlags(config),
				Action:    listDirectory,
			},
			{
				Name:      "cat",
				Usage:     "Write a file's contents to standard output",
				ArgsUsage: "IMAGE PATH",
				Flags:     volumeFlags(config),
				Action:    catFile,
			},
			{
				Name:      "fnodes",
				Usage:     "Dump the fnode table as CSV",
				ArgsUsage: "IMAGE",
				Flags:     volumeFlags(config),
				Action:    dumpFNodes,
			},
			{
				Name:      "decompress",
				Usage:     "Expand an RLE8+gzip compressed image",
				ArgsUsage: "INPUT OUTPUT",
				Action:    decompressImage,
			},
		},
	}
}

func volumeFlags(config Config) []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "skip-unknown-types",
			Usage: "ignore fnodes with an undefined type instead of failing",
			Value: config.SkipUnknownTypes,
		},
		&cli.UintFlag{
			Name:  "cache-block-size",
			Usage: "cache the image in blocks of this many bytes (0 disables caching)",
			Value: config.CacheBlockSize,
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "log progress to standard error",
			Value:   config.Verbose,
		},
	}
}
