/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"fmt"
	"time"
)

// Retry invokes op up to attempts times, sleeping initial, 2*initial,
// 4*initial, ... between failures. It stops early when ctx is done and
// returns the last error observed.
func Retry(ctx context.Context, attempts int, initial time.Duration,
	op func() error) error {

	if attempts < 1 {
		attempts = 1
	}

	var err error
	delay := initial
	for ii := 0; ii < attempts; ii++ {
		if ii > 0 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("unable to retry: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}

		err = op()
		if err == nil {
			return nil
		}
	}

	return err
}
