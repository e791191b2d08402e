// Affinity - Batch Item Recommendation Engine
// Copyright 2026 The Affinity Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/commercekit/affinity

package sink

import (
	"context"
	"fmt"
	"time"
)

// retryWithBackoff executes a function with exponential backoff on failure.
// The context is used for cancellation during backoff waits.
// If the context is canceled during a wait, the function returns immediately with the context error.
func (s *Sink) retryWithBackoff(ctx context.Context, fn func() error) error {
	var err error
	delay := s.cfg.RetryDelay
	if delay <= 0 {
		delay = 2 * time.Second
	}

	attempts := s.cfg.RetryAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 0; attempt < attempts; attempt++ {
		// Check context before attempting operation
		if ctx.Err() != nil {
			return ctx.Err()
		}

		err = fn()
		if err == nil {
			return nil
		}

		if attempt < attempts-1 {
			s.logger.Warn().Err(err).Int("attempt", attempt+1).Int("max_attempts", attempts).Dur("delay", delay).Msg("Retry attempt")
			// Use cancellable wait instead of time.Sleep
			select {
			case <-time.After(delay):
				// Continue to next attempt
			case <-ctx.Done():
				return ctx.Err()
			}
			delay *= 2
		}
	}

	return fmt.Errorf("max retry attempts reached: %w", err)
}
