package errors_test

import (
	"testing"

	"github.com/dargueta/rmxfs/errors"
	"github.com/stretchr/testify/assert"
)

func TestStrError__Known(t *testing.T) {
	assert.Equal(t, "Structure needs cleaning", errors.StrError(errors.EUCLEAN))
	assert.Equal(t, "Not a directory", errors.StrError(errors.ENOTDIR))
}

func TestStrError__Unknown(t *testing.T) {
	assert.Equal(t, "error 9999 not recognized.", errors.StrError(errors.Errno(9999)))
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 5, errors.EIO.ExitCode())
	assert.Equal(t, 117, errors.EUCLEAN.ExitCode())
	assert.Equal(t, 1, errors.EOK.ExitCode(), "success must not be an exit code for a failure")
	assert.Equal(t, 1, errors.Errno(300).ExitCode())
}
