package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/dargueta/rmxfs"
	"github.com/dargueta/rmxfs/file_systems/irmx86"
	"github.com/gocarina/gocsv"
	"github.com/hashicorp/go-multierror"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v2"
)

const listingTimeFormat = "2006-01-02 15:04:05"

type labelReport struct {
	Label            string `yaml:"label"`
	Name             string `yaml:"name"`
	Structure        string `yaml:"structure"`
	RecordingSide    int    `yaml:"recordingSide"`
	InterleaveFactor int    `yaml:"interleaveFactor"`
	Version          int    `yaml:"version"`
}

type volumeReport struct {
	Name       string `yaml:"name"`
	FileDriver uint8  `yaml:"fileDriver"`
	BlockSize  uint16 `yaml:"blockSize"`
	VolumeSize uint32 `yaml:"volumeSize"`
	TotalBytes uint64 `yaml:"totalBytes"`
	NumFNodes  uint16 `yaml:"numFNodes"`
	FNodeStart uint32 `yaml:"fnodeStart"`
	FNodeSize  uint16 `yaml:"fnodeSize"`
	RootFNode  uint16 `yaml:"rootFNode"`
}

type tableReport struct {
	Slots     int      `yaml:"slots"`
	Allocated int      `yaml:"allocated"`
	Skipped   []string `yaml:"skipped,omitempty"`
}

type infoReport struct {
	Label  labelReport  `yaml:"label"`
	Volume volumeReport `yaml:"volume"`
	FNodes tableReport  `yaml:"fnodes"`
}

func buildInfoReport(volume *irmx86.Volume) infoReport {
	label := volume.Label()
	info := volume.Info()
	table := volume.Table()

	report := infoReport{
		Label: labelReport{
			Label:            label.Label,
			Name:             label.Name,
			Structure:        label.Structure,
			RecordingSide:    label.RecordingSide,
			InterleaveFactor: label.InterleaveFactor,
			Version:          label.Version,
		},
		Volume: volumeReport{
			Name:       info.Name,
			FileDriver: info.FileDriver,
			BlockSize:  info.BlockSize,
			VolumeSize: info.VolumeSize,
			TotalBytes: info.TotalBytes(),
			NumFNodes:  info.NumFNodes,
			FNodeStart: info.FNodeStart,
			FNodeSize:  info.FNodeSize,
			RootFNode:  info.RootFNode,
		},
		FNodes: tableReport{
			Slots:     table.Len(),
			Allocated: table.NumAllocated(),
		},
	}

	var skipped *multierror.Error
	if errors.As(table.SkippedErrors(), &skipped) {
		for _, err := range skipped.Errors {
			report.FNodes.Skipped = append(report.FNodes.Skipped, err.Error())
		}
	}
	return report
}

func showInfo(context *cli.Context) error {
	image, err := openImage(context, newLogger(context))
	if err != nil {
		return exitError(err)
	}
	defer image.Close()

	output, err := yaml.Marshal(buildInfoReport(image.Volume))
	if err != nil {
		return exitError(err)
	}
	_, err = context.App.Writer.Write(output)
	return exitError(err)
}

func listDirectory(context *cli.Context) error {
	image, err := openImage(context, newLogger(context))
	if err != nil {
		return exitError(err)
	}
	defer image.Close()

	dir, err := image.Lookup(context.Args().Get(1))
	if err != nil {
		return exitError(err)
	}

	listing, err := image.ReadDirectory(dir)
	if err != nil {
		return exitError(err)
	}

	for _, entry := range listing.Entries() {
		fmt.Fprintf(
			context.App.Writer,
			"%-14s %6d %10d %-9s %s %s\n",
			entry.Name,
			entry.FNode.Index,
			entry.FNode.TotalSize,
			entry.FNode.Type,
			entry.FNode.Flags,
			entry.FNode.ModifiedAt().Format(listingTimeFormat),
		)
	}
	return nil
}

func catFile(context *cli.Context) error {
	path := context.Args().Get(1)
	if path == "" {
		return exitError(rmxfs.ErrInvalidArgument.WithMessage("no file path given"))
	}

	image, err := openImage(context, newLogger(context))
	if err != nil {
		return exitError(err)
	}
	defer image.Close()

	fnode, err := image.Lookup(path)
	if err != nil {
		return exitError(err)
	}
	if fnode.IsDir() {
		return exitError(
			rmxfs.ErrIsADirectory.WithMessage(fmt.Sprintf("`%s` is a directory", path)))
	}

	data, err := image.ReadFileData(fnode)
	if err != nil {
		return exitError(err)
	}
	_, err = context.App.Writer.Write(data)
	return exitError(err)
}

type fnodeRow struct {
	Index       uint16 `csv:"index"`
	Allocated   bool   `csv:"allocated"`
	Flags       string `csv:"flags"`
	Type        string `csv:"type"`
	Owner       uint16 `csv:"owner"`
	TotalSize   uint32 `csv:"total_size"`
	TotalBlocks uint32 `csv:"total_blocks"`
	Pointers    int    `csv:"pointers"`
	Parent      uint16 `csv:"parent"`
	Modified    string `csv:"modified"`
}

func buildFNodeRows(table *irmx86.Table) []fnodeRow {
	rows := make([]fnodeRow, 0, table.Len())
	for index := 0; index < table.Len(); index++ {
		slot, _ := table.Slot(uint16(index))
		row := fnodeRow{
			Index:     slot.Index,
			Allocated: table.IsAllocated(slot.Index),
			Flags:     slot.Flags.String(),
		}
		if row.Allocated {
			row.Type = slot.Type.String()
			row.Owner = slot.Owner
			row.TotalSize = slot.TotalSize
			row.TotalBlocks = slot.TotalBlocks
			row.Pointers = len(slot.Pointers)
			row.Parent = slot.Parent
			row.Modified = slot.ModifiedAt().Format(time.RFC3339)
		}
		rows = append(rows, row)
	}
	return rows
}

func dumpFNodes(context *cli.Context) error {
	image, err := openImage(context, newLogger(context))
	if err != nil {
		return exitError(err)
	}
	defer image.Close()

	return exitError(gocsv.Marshal(buildFNodeRows(image.Table()), context.App.Writer))
}
