// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backoff

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	// Use a tiny base delay so tests finish quickly.
	BaseDelay = 1 * time.Millisecond
}

func TestRetry_ImmediateSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetry_RetriesThenSucceeds(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 5, func() error {
		calls++
		if calls <= 2 {
			return errors.New("not yet")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_ExhaustsRetries(t *testing.T) {
	errBoom := errors.New("boom")
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return errBoom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, errBoom)
	assert.Contains(t, err.Error(), "4 attempts")
	// 1 initial + 3 retries = 4 total calls.
	assert.Equal(t, 4, calls)
}

func TestRetry_ContextCancelled(t *testing.T) {
	// Use a longer base delay so the context cancels during the wait.
	old := BaseDelay
	BaseDelay = 500 * time.Millisecond
	defer func() { BaseDelay = old }()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Retry(ctx, 5, func() error { return errors.New("still failing") })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRetry_DefaultMaxRetries(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 0, func() error {
		calls++
		return errors.New("always")
	})
	require.Error(t, err)
	// 1 initial + 5 default retries = 6 total calls.
	assert.Equal(t, 6, calls)
}
