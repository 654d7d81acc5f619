package calculation

import "errors"

var (
	// ErrInvalidParameter is returned for out-of-range or missing calculation inputs.
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrMalformedInput is returned by strict date parsing for unparseable date strings.
	ErrMalformedInput   = errors.New("malformed input")
	// ErrUnknownMethod marks an unrecognized replacement depreciation election.
	// The scenario engine records it as a warning instead of failing.
	ErrUnknownMethod    = errors.New("unknown method")
)
