// Package scanerr declares the sentinel errors named in the spec's error
// taxonomy. Call sites wrap these with fmt.Errorf("...: %w", ...) so
// errors.Is still matches through the wrapping.
package scanerr

import "errors"

// Lifecycle errors.
var (
	ErrNotAttached     = errors.New("not attached to a target")
	ErrAlreadyAttached = errors.New("already attached to a target")
	ErrNoPriorResults  = errors.New("no prior scan results")
	ErrTypeMismatch    = errors.New("next-scan type does not match current results")
)

// OS errors.
var (
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("process not found")
	ErrUnreadable       = errors.New("memory unreadable")
	ErrUnwritable       = errors.New("memory unwritable")
	ErrSizeMismatch     = errors.New("short read or write")
)

// User-input errors.
var (
	ErrUnknownType      = errors.New("unknown value type")
	ErrUnknownOp        = errors.New("unknown comparison op")
	ErrMalformedLiteral = errors.New("malformed literal")
	ErrOutOfRange       = errors.New("value out of range")
	ErrMissingArgument  = errors.New("missing argument")
	ErrUnsupportedOp    = errors.New("op not supported for type")
)

// Capacity: informational, not fatal.
var ErrResultSetTruncated = errors.New("result set truncated at capacity")
