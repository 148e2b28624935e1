package irmx86

import "fmt"

// Stage names the part of decoding a volume that failed.
type Stage string

const (
	StageLabel      = Stage("label")
	StageVolumeInfo = Stage("volume-info")
	StageFNodeTable = Stage("fnode-table")
	StageDirectory  = Stage("directory")
	StageContent    = Stage("content")
)

// StageError tags an error with the decoding stage it came from.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s", e.Stage, e.Err.Error())
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// atStage wraps `err` in a [StageError] unless it's nil or already has a stage.
func atStage(stage Stage, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*StageError); ok {
		return err
	}
	return &StageError{Stage: stage, Err: err}
}
