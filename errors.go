package rmxfs

import (
	stderrors "errors"
	"fmt"
	"io/fs"

	"github.com/dargueta/rmxfs/errors"
	"github.com/hashicorp/go-multierror"
)

// DriverError is an error carrying an errno code, with a customizable message.
type DriverError interface {
	error
	Errno() errors.Errno
	WithMessage(message string) DriverError
	Wrap(err error) DriverError
}

type baseRmxError errors.Errno

var ErrIOFailed = baseRmxError(errors.EIO).WithMessage("Input/output error")
var ErrTruncatedImage = baseRmxError(errors.EIO).WithMessage("Truncated image")
var ErrMalformedLabel = baseRmxError(errors.EUCLEAN).WithMessage("Malformed volume label")
var ErrMalformedVolumeInfo = baseRmxError(errors.EUCLEAN).WithMessage(
	"Malformed volume information")
var ErrUnknownFileType = baseRmxError(errors.EMEDIUMTYPE).WithMessage("Unknown file type")
var ErrInvalidFNodeIndex = baseRmxError(errors.ERANGE).WithMessage("Invalid fnode index")
var ErrNotADirectory = baseRmxError(errors.ENOTDIR).WithMessage("Not a directory")
var ErrIsADirectory = baseRmxError(errors.EISDIR).WithMessage("Is a directory")
var ErrNotFound = baseRmxError(errors.ENOENT).WithMessage("No such file or directory")
var ErrInvalidArgument = baseRmxError(errors.EINVAL).WithMessage("Invalid argument")
var ErrReadOnlyFileSystem = baseRmxError(errors.EROFS).WithMessage("Read-only file system")

func (e baseRmxError) Error() string {
	return errors.StrError(errors.Errno(e))
}

func (e baseRmxError) Errno() errors.Errno {
	return errors.Errno(e)
}

// Is lets driver errors match the generic [io/fs] sentinels, so callers of the
// io/fs interfaces can test for them without knowing about this package.
func (e baseRmxError) Is(target error) bool {
	switch errors.Errno(e) {
	case errors.ENOENT:
		return target == fs.ErrNotExist
	case errors.EINVAL:
		return target == fs.ErrInvalid
	case errors.EROFS:
		return target == fs.ErrPermission
	}
	return false
}

func (e baseRmxError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       message,
		errno:         errors.Errno(e),
		originalError: e,
	}
}

func (e baseRmxError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		errno:         errors.Errno(e),
		originalError: multierror.Append(e, err),
	}
}

// -----------------------------------------------------------------------------

type customDriverError struct {
	message       string
	errno         errors.Errno
	originalError error
}

// Error implements the `error` object interface. When called, it returns a string
// describing the error.
func (e customDriverError) Error() string {
	return e.message
}

func (e customDriverError) Errno() errors.Errno {
	return e.errno
}

func (e customDriverError) WithMessage(message string) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.message, message),
		errno:         e.errno,
		originalError: e,
	}
}

func (e customDriverError) Wrap(err error) DriverError {
	return customDriverError{
		message:       fmt.Sprintf("%s: %s", e.Error(), err.Error()),
		errno:         e.errno,
		originalError: multierror.Append(e, err),
	}
}

func (e customDriverError) Unwrap() error {
	return e.originalError
}

// CastToDriverError returns the first [DriverError] in err's chain. Errors that
// don't carry one are wrapped in [ErrIOFailed]. A nil error stays nil.
func CastToDriverError(err error) DriverError {
	if err == nil {
		return nil
	}

	var driverErr DriverError
	if stderrors.As(err, &driverErr) {
		return driverErr
	}
	return ErrIOFailed.Wrap(err)
}
