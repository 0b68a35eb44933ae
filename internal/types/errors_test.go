package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SyncError
		want string
	}{
		{
			name: "without cause",
			err:  NewError(CONFIG_VALIDATION_FAILED, "schema Widget: missing key property"),
			want: "[CONFIG_VALIDATION_FAILED] schema Widget: missing key property",
		},
		{
			name: "with cause",
			err:  WrapError(STORE_WRITE_FAILED, "load failed for Widget", errors.New("connection reset")),
			want: "[STORE_WRITE_FAILED] load failed for Widget: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestSyncError_Unwrap(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapError(STORE_QUERY_FAILED, "query failed", cause)

	require.ErrorIs(t, err, cause)
	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestSyncError_Is_MatchesByCode(t *testing.T) {
	a := NewError(CONFIG_MISSING_KWARG, "kwarg ACCOUNT_ID not supplied")
	b := NewError(CONFIG_MISSING_KWARG, "different message")
	c := NewError(STORE_WRITE_FAILED, "write failed")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, c))
}

func TestSyncError_Is_ThroughWrapping(t *testing.T) {
	inner := NewError(CONFIG_VALIDATION_FAILED, "bad schema")
	outer := fmt.Errorf("while loading module aws: %w", inner)

	assert.True(t, errors.Is(outer, NewError(CONFIG_VALIDATION_FAILED, "")))
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(NewError(CONFIG_VALIDATION_FAILED, "bad schema")))
	assert.True(t, IsRetryable(NewRetryableError(STORE_WRITE_FAILED, "timeout")))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w",
		WrapRetryableError(STORE_CLEANUP_FAILED, "cleanup failed", errors.New("io")))))
	assert.False(t, IsRetryable(errors.New("plain error")))
}
