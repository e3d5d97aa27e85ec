/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ParseDateOrZero returns a parsed time or zero if input is empty or "null".
func ParseDateOrZero(s string) (time.Time, error) {
	if s == "" || s == "null" {
		return time.Time{}, nil
	}
	return dateparse.ParseAny(s)
}

// ScoreToString renders a game or match score in the half-point notation
// used on wallcharts, e.g. 0 -> "0", 0.5 -> "½", 3 -> "3", 3.5 -> "3½".
func ScoreToString(score float64) string {
	whole := int(score)
	half := score - float64(whole)

	if half >= 0.25 && half < 0.75 {
		if whole == 0 {
			return "½"
		}
		return fmt.Sprintf("%d½", whole)
	}
	if half >= 0.75 {
		whole++
	}
	return fmt.Sprintf("%d", whole)
}

// NormalizeName collapses runs of whitespace and trims the result so that
// names entered by hand or scraped from rosters compare consistently.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(name), " ")
}
