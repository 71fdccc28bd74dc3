package shareerr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("classify: %w", ErrUnsupportedType), "unsupported_type"},
		{fmt.Errorf("normalize: %w", ErrTypeMismatch), "type_mismatch"},
		{fmt.Errorf("copy a.png: %w", ErrCopyFailed), "copy_failed"},
		{ErrThumbnailFailed, "thumbnail_failed"},
		{ErrMissingHostIdentity, "missing_host_identity"},
		{ErrSerializationFailed, "serialization_failed"},
		{fmt.Errorf("store: %w", ErrPublishFailed), "publish_failed"},
		{fmt.Errorf("load: %w", context.Canceled), "canceled"},
		{errors.New("boom"), "unknown"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Code(tc.err), "err=%v", tc.err)
	}
}

func TestPerAttachment(t *testing.T) {
	t.Run("Should treat attachment errors as local", func(t *testing.T) {
		assert.True(t, PerAttachment(fmt.Errorf("x: %w", ErrCopyFailed)))
		assert.True(t, PerAttachment(ErrUnsupportedType))
	})
	t.Run("Should treat handoff errors as terminal", func(t *testing.T) {
		assert.False(t, PerAttachment(ErrPublishFailed))
		assert.False(t, PerAttachment(ErrMissingHostIdentity))
		assert.False(t, PerAttachment(errors.New("other")))
	})
}
