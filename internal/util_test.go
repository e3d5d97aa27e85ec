/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestScoreToString(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0.0, "0"},
		{0.5, "½"},
		{1.0, "1"},
		{2.5, "2½"},
		{3.0, "3"},
		{10.5, "10½"},
	}

	for _, c := range cases {
		got := ScoreToString(c.in)
		if got != c.want {
			t.Errorf("ScoreToString(%v) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Magnus  Carlsen", "Magnus Carlsen"},
		{"  Fabiano\tCaruana ", "Fabiano Caruana"},
		{"Ding Liren", "Ding Liren"},
		{"", ""},
	}

	for _, c := range cases {
		got := NormalizeName(c.in)
		if got != c.want {
			t.Errorf("NormalizeName(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := Retry(ctx, 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	if err != nil {
		t.Errorf("Retry returned %v; want nil", err)
	}
	if attempts != 3 {
		t.Errorf("op invoked %v times; want 3", attempts)
	}

	attempts = 0
	wantErr := errors.New("permanent")
	err = Retry(ctx, 2, time.Millisecond, func() error {
		attempts++
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Errorf("Retry returned %v; want %v", err, wantErr)
	}
	if attempts != 2 {
		t.Errorf("op invoked %v times; want 2", attempts)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	attempts = 0
	err = Retry(cancelled, 3, time.Millisecond, func() error {
		attempts++
		return errors.New("transient")
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry returned %v; want context.Canceled", err)
	}
	if attempts != 1 {
		t.Errorf("op invoked %v times after cancel; want 1", attempts)
	}
}
