// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package backoff retries flaky operations with exponential delay.
package backoff

import (
	"context"
	"fmt"
	"math"
	"time"
)

// BaseDelay controls the base duration for exponential backoff between
// attempts. Tests override this to avoid real sleeps.
var BaseDelay = 1 * time.Second

const defaultMaxRetries = 5

// Retry executes fn and retries on error with exponential backoff. The
// delay starts at BaseDelay (1 s) and doubles each attempt: 1 s, 2 s, 4 s,
// 8 s, 16 s.
//
// When maxRetries is 0 the default (5) is used. If the context is
// cancelled during a backoff wait the function returns ctx.Err(). After
// exhausting retries the last error is returned wrapped with the total
// attempt count.
func Retry(ctx context.Context, maxRetries int, fn func() error) error {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		// Exhausted retries — surface the last error.
		if attempt >= maxRetries {
			return fmt.Errorf("giving up after %d attempts: %w", attempt+1, err)
		}

		delay := time.Duration(math.Pow(2, float64(attempt))) * BaseDelay

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}
