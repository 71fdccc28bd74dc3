// Package shareerr holds the error taxonomy shared by the share pipeline.
//
// Per-attachment errors (unsupported type, type mismatch, copy, thumbnail)
// stop at the batch pipeline. Handoff errors (host identity, serialization,
// publish) end the handoff. Callers wrap these sentinels with %w and test
// with errors.Is.
package shareerr

import (
	"context"
	"errors"
)

var (
	ErrUnsupportedType     = errors.New("unsupported type")
	ErrTypeMismatch        = errors.New("type mismatch")
	ErrCopyFailed          = errors.New("copy failed")
	ErrThumbnailFailed     = errors.New("thumbnail failed")
	ErrMissingHostIdentity = errors.New("missing host identity")
	ErrSerializationFailed = errors.New("serialization failed")
	ErrPublishFailed       = errors.New("publish failed")
)

// Code returns a short stable code for err, suitable as a log field.
func Code(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	case errors.Is(err, ErrUnsupportedType):
		return "unsupported_type"
	case errors.Is(err, ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, ErrCopyFailed):
		return "copy_failed"
	case errors.Is(err, ErrThumbnailFailed):
		return "thumbnail_failed"
	case errors.Is(err, ErrMissingHostIdentity):
		return "missing_host_identity"
	case errors.Is(err, ErrSerializationFailed):
		return "serialization_failed"
	case errors.Is(err, ErrPublishFailed):
		return "publish_failed"
	default:
		return "unknown"
	}
}

// PerAttachment reports whether err only concerns a single attachment.
func PerAttachment(err error) bool {
	return errors.Is(err, ErrUnsupportedType) ||
		errors.Is(err, ErrTypeMismatch) ||
		errors.Is(err, ErrCopyFailed) ||
		errors.Is(err, ErrThumbnailFailed)
}
