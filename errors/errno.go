// Package errors is a compatibility shim for the POSIX errno codes this
// project reports. The syscall package doesn't define all the values we need
// on all systems, particularly things like EUCLEAN and EMEDIUMTYPE.
//
// The numeric values match Linux so that they can double as process exit
// codes for the command-line tools.
package errors

import (
	"fmt"
)

// Errno is a POSIX-style error number.
type Errno int

const (
	EOK         Errno = 0
	ENOENT      Errno = 2
	EIO         Errno = 5
	ENOTDIR     Errno = 20
	EISDIR      Errno = 21
	EINVAL      Errno = 22
	EROFS       Errno = 30
	ERANGE      Errno = 34
	ENOTSUP     Errno = 95
	EUCLEAN     Errno = 117
	EMEDIUMTYPE Errno = 124
)

var errorMessagesByCode = map[Errno]string{
	EOK:         "Success",
	ENOENT:      "No such file or directory",
	EIO:         "Input/output error",
	ENOTDIR:     "Not a directory",
	EISDIR:      "Is a directory",
	EINVAL:      "Invalid argument",
	EROFS:       "Read-only file system",
	ERANGE:      "Numerical result out of range",
	ENOTSUP:     "Operation not supported",
	EUCLEAN:     "Structure needs cleaning",
	EMEDIUMTYPE: "Wrong medium type",
}

// StrError returns the standard message for an errno code.
func StrError(code Errno) string {
	message, ok := errorMessagesByCode[code]
	if ok {
		return message
	}
	return fmt.Sprintf("error %d not recognized.", int(code))
}

// ExitCode converts the errno to a process exit status. EOK and codes that
// don't fit in an exit status map to 1 so that failures are never reported
// as success.
func (code Errno) ExitCode() int {
	if code <= EOK || code > 125 {
		return 1
	}
	return int(code)
}
