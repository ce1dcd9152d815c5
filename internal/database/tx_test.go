package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func fastPolicy(attempts int) RetryPolicy {
	return RetryPolicy{MaxAttempts: attempts, InitialInterval: time.Millisecond, MaxInterval: 2 * time.Millisecond}
}

func TestIsRetryableError(t *testing.T) {
	assert.False(t, IsRetryableError(nil))
	assert.True(t, IsRetryableError(ErrTxConflict))
	assert.True(t, IsRetryableError(fmt.Errorf("commit: %w", ErrTxConflict)))
	assert.True(t, IsRetryableError(&pq.Error{Code: "40001"}))
	assert.True(t, IsRetryableError(fmt.Errorf("wrapped: %w", &pq.Error{Code: "40P01"})))
	assert.False(t, IsRetryableError(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryableError(errors.New("boom")))
}

func TestRunWithRetrySucceedsAfterConflicts(t *testing.T) {
	calls := 0
	err := RunWithRetry(context.Background(), fastPolicy(5), zap.NewNop(), "test", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return ErrTxConflict
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRunWithRetryStopsOnPermanentError(t *testing.T) {
	sentinel := errors.New("validation failed")
	calls := 0
	err := RunWithRetry(context.Background(), fastPolicy(5), zap.NewNop(), "test", func(ctx context.Context) error {
		calls++
		return sentinel
	})

	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestRunWithRetryExhausts(t *testing.T) {
	calls := 0
	err := RunWithRetry(context.Background(), fastPolicy(4), zap.NewNop(), "test", func(ctx context.Context) error {
		calls++
		return ErrTxConflict
	})

	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.ErrorIs(t, err, ErrTxConflict)
	assert.Equal(t, 4, calls)
}

func TestRunWithRetryHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := RunWithRetry(ctx, fastPolicy(10), zap.NewNop(), "test", func(ctx context.Context) error {
		return ErrTxConflict
	})

	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
}
