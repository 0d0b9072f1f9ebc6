package placement

import "fmt"

// The placement core maps every failure mode onto one of four caller-facing
// error kinds. The transport layer translates them to status codes; nothing
// else is ever surfaced.

// ValidationError covers caller mistakes: bad media type, oversize upload,
// empty furniture selection. Never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// NotFoundError covers lookup misses that no tolerant fallback absorbs.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// UpstreamError means the external model call itself failed. The wrapped
// cause is logged server-side; callers see a sanitized message.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("generation request failed: %v", e.Err) }

func (e *UpstreamError) Unwrap() error { return e.Err }

// GenerationError means the model answered but produced no usable image, a
// content problem rather than a transport one.
type GenerationError struct {
	Reason string
}

func (e *GenerationError) Error() string { return e.Reason }

func validationf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}
