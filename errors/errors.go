// Package errors defines all exported error sentinels for the munin library.
//
// Both the top-level munin package and its commands import from here,
// so errors.Is checks work across package boundaries.
package errors

import "errors"

// Window errors
var (
	ErrInvalidStep       = errors.New("munin: window step must be positive")
	ErrInvalidWindowSize = errors.New("munin: invalid window size")
)

// Mapping errors
var (
	ErrIndexOutOfRange   = errors.New("munin: session index out of range")
	ErrInvalidMaskLength = errors.New("munin: session mask length is negative")
)

// KeySpace errors
var (
	ErrEmptyKeySpace = errors.New("munin: cannot build key space with zero keys")
	ErrTooManyKeys   = errors.New("munin: key count exceeds maximum")
	ErrDuplicateKey  = errors.New("munin: duplicate key detected")
	ErrUnknownKey    = errors.New("munin: key not in key space")
	ErrUnknownHasher = errors.New("munin: unknown hasher")
)

// File errors
var (
	ErrInvalidMagic   = errors.New("munin: invalid magic number")
	ErrInvalidVersion = errors.New("munin: unsupported version")
	ErrChecksumFailed = errors.New("munin: file checksum verification failed")
	ErrTruncatedFile  = errors.New("munin: key space file is truncated")
	ErrCorruptedFile  = errors.New("munin: key space file is corrupted")
)
