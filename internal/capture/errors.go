package capture

import "errors"

// Kind classifies pipeline failures for transport mapping. Failures that can
// be isolated to a single roster entry never surface as one of these; they
// are absorbed into that entry's match result.
type Kind int

const (
	KindInternal Kind = iota
	KindInvalidArgument
	KindNotFound
	KindResolutionFailed
	KindDecodeFailed
	KindUploadFailed
	KindRemoteFetch
)

func (k Kind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid_argument"
	case KindNotFound:
		return "not_found"
	case KindResolutionFailed:
		return "resolution_failed"
	case KindDecodeFailed:
		return "decode_failed"
	case KindUploadFailed:
		return "upload_failed"
	case KindRemoteFetch:
		return "remote_fetch"
	default:
		return "internal"
	}
}

// Error is a pipeline failure carrying its classification.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func wrapError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the classification from an error chain; anything that is
// not a pipeline error is internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
