package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinehub/internal/config"
	"cinehub/internal/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

var (
	// ErrTxConflict marks an attempt that lost a race with a concurrent writer.
	// Attempts failing with it are retried.
	ErrTxConflict = errors.New("transaction conflict")
	// ErrRetriesExhausted is returned when every attempt conflicted.
	ErrRetriesExhausted = errors.New("transaction retries exhausted")
)

// RetryPolicy bounds how a conflicting transaction is retried
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy suits short read-modify-write transactions
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     8,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
	}
}

// RetryPolicyFromConfig reads the retry settings of cfg
func RetryPolicyFromConfig(cfg *config.DatabaseConfig) RetryPolicy {
	policy := DefaultRetryPolicy()
	if cfg.MaxRetryAttempts > 0 {
		policy.MaxAttempts = cfg.MaxRetryAttempts
	}
	if cfg.RetryBackoff > 0 {
		policy.InitialInterval = cfg.RetryBackoff
	}
	if cfg.MaxRetryBackoff > 0 {
		policy.MaxInterval = cfg.MaxRetryBackoff
	}
	return policy
}

// IsRetryableError reports whether err is a write conflict worth another attempt
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTxConflict) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", // serialization_failure
			"40P01": // deadlock_detected
			return true
		}
	}
	return false
}

// RunWithRetry runs fn until it succeeds, fails with a non-retryable error,
// or exhausts the policy. fn must not leave side effects behind a failed attempt.
func RunWithRetry(ctx context.Context, policy RetryPolicy, logger *zap.Logger, store string, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(policy.InitialInterval),
		backoff.WithMaxInterval(policy.MaxInterval),
		backoff.WithMaxElapsedTime(0),
	), uint64(policy.MaxAttempts-1))

	var lastErr error
	attempts := 0

	err := backoff.RetryNotify(func() error {
		attempts++
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryableError(err) {
			return backoff.Permanent(err)
		}
		lastErr = err
		return err
	}, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		metrics.TxRetries.WithLabelValues(store).Inc()
		logger.Debug("Transaction conflict, retrying",
			zap.String("store", store),
			zap.Int("attempt", attempts),
			zap.Duration("backoff", d),
			zap.Error(err))
	})

	if err == nil {
		return nil
	}

	if lastErr != nil && errors.Is(err, lastErr) {
		metrics.TxFailures.WithLabelValues(store, "conflict").Inc()
		logger.Warn("Transaction gave up after conflicts",
			zap.String("store", store),
			zap.Int("attempts", attempts),
			zap.Error(lastErr))
		return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, attempts, lastErr)
	}

	metrics.TxFailures.WithLabelValues(store, "error").Inc()
	return err
}

// RunSerializable executes fn in a SERIALIZABLE transaction, retrying the
// whole closure when Postgres reports a serialization failure or deadlock
func (m *Manager) RunSerializable(ctx context.Context, fn func(ctx context.Context, tx *sql.Tx) error) error {
	policy := RetryPolicyFromConfig(m.config)

	return RunWithRetry(ctx, policy, m.logger, "postgres", func(ctx context.Context) error {
		tx, err := m.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}

		defer func() {
			if p := recover(); p != nil {
				_ = tx.Rollback()
				panic(p)
			}
		}()

		if err := fn(ctx, tx); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				m.logger.Error("Rollback failed", zap.Error(rbErr))
			}
			return err
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("failed to commit transaction: %w", err)
		}
		return nil
	})
}
