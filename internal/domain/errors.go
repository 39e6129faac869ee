package domain

import "errors"

var (
	ErrLoadFailed      = errors.New("page load failed")
	ErrSelectorTimeout = errors.New("content did not appear")
	ErrPersist         = errors.New("persist draw")
	ErrMalformedDraw   = errors.New("malformed draw")
	ErrUnexpected      = errors.New("unexpected error")
)

// Kind maps an error onto its failure class for logs and metrics.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrLoadFailed):
		return "load_failed"
	case errors.Is(err, ErrSelectorTimeout):
		return "selector_timeout"
	case errors.Is(err, ErrPersist):
		return "persist_error"
	default:
		return "unexpected"
	}
}

// Expected reports whether err is one of the upstream or storage failures
// a cycle is allowed to end with.
func Expected(err error) bool {
	return errors.Is(err, ErrLoadFailed) ||
		errors.Is(err, ErrSelectorTimeout) ||
		errors.Is(err, ErrPersist)
}
