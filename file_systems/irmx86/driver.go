package irmx86

import (
	"fmt"
	"strings"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/common/imageio"
)

// Volume is an opened iRMX-86 volume. It's immutable once opened and safe for
// concurrent use if the underlying image is.
type Volume struct {
	image imageio.Accessor
	label VolumeLabel
	info  VolumeInformation
	table *Table
}

// Open decodes the label, volume information, and fnode table of `image`, in
// that order. Errors are returned as a [*StageError] naming the structure that
// failed to decode.
func Open(image imageio.Accessor, options Options) (*Volume, error) {
	label, err := ReadVolumeLabel(image)
	if err != nil {
		return nil, atStage(StageLabel, err)
	}

	info, err := ReadVolumeInformation(image)
	if err != nil {
		return nil, atStage(StageVolumeInfo, err)
	}

	table, err := DecodeTable(info, image, options)
	if err != nil {
		return nil, atStage(StageFNodeTable, err)
	}

	return &Volume{
		image: image,
		label: label,
		info:  info,
		table: table,
	}, nil
}

// Label returns the decoded volume label.
func (volume *Volume) Label() VolumeLabel {
	return volume.label
}

// Info returns the decoded volume information.
func (volume *Volume) Info() VolumeInformation {
	return volume.info
}

// Table returns the fnode table, tombstones included.
func (volume *Volume) Table() *Table {
	return volume.table
}

// Root returns the fnode of the root directory.
func (volume *Volume) Root() (FNode, error) {
	root, err := volume.table.Get(volume.info.RootFNode)
	if err != nil {
		return FNode{}, atStage(
			StageDirectory,
			rmxfs.CastToDriverError(err).WithMessage("root directory"),
		)
	}
	if !root.IsDir() {
		return FNode{}, atStage(
			StageDirectory,
			rmxfs.ErrNotADirectory.WithMessage(
				fmt.Sprintf("root fnode %d is a %s", root.Index, root.Type)),
		)
	}
	return root, nil
}

// ReadDirectory lists the directory and data fnodes in directory `dir`.
func (volume *Volume) ReadDirectory(dir FNode) (*Listing, error) {
	listing, err := WalkDirectory(dir, volume.table, volume.info.BlockSize, volume.image)
	if err != nil {
		return nil, atStage(StageDirectory, err)
	}
	return listing, nil
}

// ReadContent returns every block referenced by `fnode`. The content is not
// trimmed to the fnode's TotalSize.
func (volume *Volume) ReadContent(fnode FNode) ([]byte, error) {
	content, err := ReadContent(fnode.Pointers, volume.info.BlockSize, volume.image)
	if err != nil {
		return nil, atStage(StageContent, err)
	}
	return content, nil
}

// ReadFileData is like [Volume.ReadContent], but drops any bytes past the
// fnode's TotalSize.
func (volume *Volume) ReadFileData(fnode FNode) ([]byte, error) {
	content, err := volume.ReadContent(fnode)
	if err != nil {
		return nil, err
	}
	if uint64(fnode.TotalSize) < uint64(len(content)) {
		content = content[:fnode.TotalSize]
	}
	return content, nil
}

// SplitPath breaks a slash-separated path into its components. Leading,
// trailing, and repeated slashes are ignored, as are "." components. An empty
// result refers to the root directory.
func SplitPath(path string) []string {
	components := []string{}
	for _, part := range strings.Split(path, "/") {
		if part != "" && part != "." {
			components = append(components, part)
		}
	}
	return components
}

// findInListing looks up `name` in a directory. An exact match takes priority;
// otherwise names are compared ignoring case, as iRMX does.
func findInListing(listing *Listing, name string) (FNode, bool) {
	if fnode, ok := listing.Get(name); ok {
		return fnode, true
	}
	for _, entry := range listing.entries {
		if strings.EqualFold(entry.Name, name) {
			return entry.FNode, true
		}
	}
	return FNode{}, false
}

// Lookup resolves a slash-separated path from the root directory.
func (volume *Volume) Lookup(path string) (FNode, error) {
	current, err := volume.Root()
	if err != nil {
		return FNode{}, err
	}

	walked := ""
	for _, component := range SplitPath(path) {
		if !current.IsDir() {
			return FNode{}, rmxfs.ErrNotADirectory.WithMessage(
				fmt.Sprintf("`%s` is not a directory", walked))
		}

		listing, err := volume.ReadDirectory(current)
		if err != nil {
			return FNode{}, err
		}

		next, found := findInListing(listing, component)
		if !found {
			return FNode{}, rmxfs.ErrNotFound.WithMessage(
				fmt.Sprintf("no `%s` in `/%s`", component, walked))
		}

		current = next
		if walked == "" {
			walked = component
		} else {
			walked += "/" + component
		}
	}
	return current, nil
}
