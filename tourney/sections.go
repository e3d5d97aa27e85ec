/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"sort"
	"strconv"
	"strings"
)

// DefaultSection is assigned to players registered without a section.
const DefaultSection = "Open"

// QuadSectionPrefix prefixes the generated sections of quad tournaments,
// e.g. "quad-1".
const QuadSectionPrefix = "quad-"

// SectionSorter implements sort.Interface for display ordering of sections.
// Order: "Open" and "Championship" first, then U<Number> sections descending
// by number, then quad-<n> ascending by number, then others
// lexicographically.
type SectionSorter []string

func (s SectionSorter) Len() int { return len(s) }

func (s SectionSorter) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

func (s SectionSorter) Less(i, j int) bool {
	a, b := s[i], s[j]
	if a == "Open" && b != "Open" {
		return true
	}
	if b == "Open" && a != "Open" {
		return false
	}
	if a == "Championship" && b != "Championship" {
		return true
	}
	if b == "Championship" && a != "Championship" {
		return false
	}
	ua, ub := strings.HasPrefix(a, "U"), strings.HasPrefix(b, "U")
	// Both U-sections: compare numeric suffix descending
	if ua && ub {
		ai, errA := strconv.Atoi(strings.TrimPrefix(a, "U"))
		bi, errB := strconv.Atoi(strings.TrimPrefix(b, "U"))
		if errA == nil && errB == nil {
			return ai > bi
		}
	}
	// U-sections before non-U (after Championship)
	if ua != ub {
		return ua
	}
	qa := strings.HasPrefix(a, QuadSectionPrefix)
	qb := strings.HasPrefix(b, QuadSectionPrefix)
	// Both quads: compare numeric suffix ascending so quad-2 sorts before
	// quad-10
	if qa && qb {
		ai, errA := strconv.Atoi(strings.TrimPrefix(a, QuadSectionPrefix))
		bi, errB := strconv.Atoi(strings.TrimPrefix(b, QuadSectionPrefix))
		if errA == nil && errB == nil {
			return ai < bi
		}
	}
	// Fallback lexicographical
	return a < b
}

// SortSections orders section names in place for display and returns them.
func SortSections(sections []string) []string {
	sort.Sort(SectionSorter(sections))
	return sections
}

// sectionsFromPlayers returns the distinct sections present on a roster,
// in display order.
func sectionsFromPlayers(players []Player) []string {
	seen := make(map[string]bool)
	var sections []string
	for _, p := range players {
		if seen[p.Section] {
			continue
		}
		seen[p.Section] = true
		sections = append(sections, p.Section)
	}
	return SortSections(sections)
}
