package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/dargueta/rmxfs/file_systems/irmx86"
	"github.com/dargueta/rmxfs/utilities/compression"
	"github.com/gosimple/slug"
	"github.com/urfave/cli/v2"
)

func extractFlags(config Config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "directory to create (default: the image path minus its extension)",
		},
		&cli.BoolFlag{
			Name:    "recursive",
			Aliases: []string{"r"},
			Usage:   "extract subdirectories too",
		},
		&cli.BoolFlag{
			Name:  "trim",
			Usage: "cut files to the size in their fnode instead of whole blocks",
			Value: config.Trim,
		},
		&cli.BoolFlag{
			Name:  "slugify",
			Usage: "convert file names to lowercase ASCII slugs",
			Value: config.Slugify,
		},
	}
}

type extractOptions struct {
	recursive bool
	trim      bool
	slugify   bool
	logger    *log.Logger
}

var hostNameReplacer = strings.NewReplacer(" ", "_", "/", "_", "\\", "_")

// hostFileName converts an iRMX file name to one that's safe to create on the
// host.
func hostFileName(name string, slugify bool) string {
	if slugify {
		if slugged := slug.Make(name); slugged != "" {
			return slugged
		}
	}

	hostName := hostNameReplacer.Replace(name)
	if hostName == "" || hostName == "." || hostName == ".." {
		hostName = "_" + hostName
	}
	return hostName
}

// uniqueHostName returns `hostName`, or `hostName` with a numeric suffix if
// another entry in the same directory already claimed it.
func uniqueHostName(hostName string, taken map[string]bool) string {
	candidate := hostName
	for i := 1; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s_%d", hostName, i)
	}
	taken[candidate] = true
	return candidate
}

// defaultOutputDir gives the directory to extract `imagePath` to if none was
// specified: the image's path without its extension.
func defaultOutputDir(imagePath string) string {
	var extension string
	if compression.IsCompressedImageName(imagePath) {
		extension = imagePath[len(imagePath)-len(compression.ImageExtension):]
	} else {
		extension = filepath.Ext(imagePath)
	}

	outputDir := strings.TrimSuffix(imagePath, extension)
	if extension == "" || outputDir == "" || os.IsPathSeparator(outputDir[len(outputDir)-1]) {
		outputDir += "_files"
	}
	return outputDir
}

func extractImage(context *cli.Context) error {
	logger := newLogger(context)
	image, err := openImage(context, logger)
	if err != nil {
		return exitError(err)
	}
	defer image.Close()

	root, err := image.Root()
	if err != nil {
		return exitError(err)
	}

	outputDir := context.String("output")
	if outputDir == "" {
		outputDir = defaultOutputDir(context.Args().First())
	}
	if err = os.Mkdir(outputDir, 0o755); err != nil {
		return exitError(fmt.Errorf("creating output directory: %w", err))
	}

	options := extractOptions{
		recursive: context.Bool("recursive"),
		trim:      context.Bool("trim"),
		slugify:   context.Bool("slugify"),
		logger:    logger,
	}
	visited := map[uint16]bool{root.Index: true}
	return exitError(extractDirectory(image.Volume, root, outputDir, options, visited))
}

func extractDirectory(
	volume *irmx86.Volume,
	dir irmx86.FNode,
	outputDir string,
	options extractOptions,
	visited map[uint16]bool,
) error {
	listing, err := volume.ReadDirectory(dir)
	if err != nil {
		return err
	}

	taken := make(map[string]bool, listing.Len())
	for _, entry := range listing.Entries() {
		hostName := hostFileName(entry.Name, options.slugify)
		uniqueName := uniqueHostName(hostName, taken)
		if uniqueName != hostName {
			options.logger.Printf(
				"warning: %s already used in %s, writing %s as %s",
				hostName,
				outputDir,
				entry.Name,
				uniqueName,
			)
		}
		target := filepath.Join(outputDir, uniqueName)

		if entry.FNode.IsDir() {
			if !options.recursive {
				options.logger.Printf("skipped directory %s", entry.Name)
				continue
			}
			if visited[entry.FNode.Index] {
				options.logger.Printf(
					"skipped %s: directory fnode %d already extracted",
					entry.Name,
					entry.FNode.Index,
				)
				continue
			}
			visited[entry.FNode.Index] = true

			if err = os.Mkdir(target, 0o755); err != nil {
				return err
			}
			err = extractDirectory(volume, entry.FNode, target, options, visited)
			if err != nil {
				return err
			}
			continue
		}

		var data []byte
		if options.trim {
			data, err = volume.ReadFileData(entry.FNode)
		} else {
			data, err = volume.ReadContent(entry.FNode)
		}
		if err != nil {
			return err
		}

		if err = os.WriteFile(target, data, 0o644); err != nil {
			return err
		}
		options.logger.Printf("wrote %s (%d bytes)", target, len(data))
	}
	return nil
}
