package domain

import "errors"

// Structural errors. Any of them aborts the whole document because the
// positional alignment between layouts and values can no longer be trusted.
var (
	ErrMalformedDocument  = errors.New("malformed dwml document")
	ErrMalformedLayoutKey = errors.New("malformed layout key")
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	ErrUnknownLayout      = errors.New("unknown time layout")
	ErrIndexOutOfRange    = errors.New("index out of range")
)

// ErrorKind returns a stable label for err, suitable for metrics and API responses.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrMalformedDocument):
		return "malformed_document"
	case errors.Is(err, ErrMalformedLayoutKey):
		return "malformed_layout_key"
	case errors.Is(err, ErrMalformedTimestamp):
		return "malformed_timestamp"
	case errors.Is(err, ErrUnknownLayout):
		return "unknown_layout"
	case errors.Is(err, ErrIndexOutOfRange):
		return "index_out_of_range"
	default:
		return "internal"
	}
}

// IsStructural reports whether err was caused by the document itself rather
// than by the environment.
func IsStructural(err error) bool {
	k := ErrorKind(err)
	return k != "" && k != "internal"
}
