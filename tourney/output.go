/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/mikeb26/tourneyd/internal"
)

// BuildPairingsOutput formats one round's boards into grouped, aligned
// string output. scores carries each player's running total for the name
// decoration; ScoreTotals builds it from result rows.
func BuildPairingsOutput(round int, players []Player, pairings []Pairing,
	scores map[uuid.UUID]float64) string {

	if len(pairings) == 0 {
		return "No pairings generated yet\n"
	}

	byID := make(map[uuid.UUID]*Player, len(players))
	for idx := range players {
		byID[players[idx].ID] = &players[idx]
	}
	decorate := func(id uuid.UUID) string {
		p := byID[id]
		if p == nil {
			return "unknown"
		}
		return fmt.Sprintf("%s(%d %v)", p.DisplayName, p.Rating,
			internal.ScoreToString(scores[id]))
	}

	sections := make(map[string][]Pairing)
	for _, p := range pairings {
		sections[p.Section] = append(sections[p.Section], p)
	}
	var sectionNames []string
	for sec := range sections {
		sectionNames = append(sectionNames, sec)
	}
	sort.Sort(SectionSorter(sectionNames))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Round %v Pairings:\n\n", round))

	for _, sec := range sectionNames {
		list := sections[sec]
		sort.Slice(list, func(i, j int) bool {
			return list[i].BoardNumber < list[j].BoardNumber
		})

		type row struct{ board, white, black string }
		var rows []row
		for _, p := range list {
			var b, bl string
			if p.IsByePairing() {
				b = "n/a"
				if p.ByeType == ByeTypeUnpaired {
					bl = "BYE(1)"
				} else {
					bl = "BYE(½)"
				}
			} else {
				b = fmt.Sprintf("%d.", p.BoardNumber)
				bl = decorate(*p.BlackID)
			}
			rows = append(rows, row{board: b, white: decorate(p.WhiteID),
				black: bl})
		}

		maxB, maxW, maxBl := len("Board"), len("White"), len("Black")
		for _, r := range rows {
			if l := len(r.board); l > maxB {
				maxB = l
			}
			if l := len(r.white); l > maxW {
				maxW = l
			}
			if l := len(r.black); l > maxBl {
				maxBl = l
			}
		}

		if len(sectionNames) > 1 {
			if sec == "" {
				sec = "UNNAMED"
			}
			sb.WriteString(fmt.Sprintf("%s Section\n", sec))
		}
		sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, "Board", maxW,
			"White", maxBl, "Black"))
		for _, r := range rows {
			sb.WriteString(fmt.Sprintf("%-*s  %-*s  %-*s\n", maxB, r.board,
				maxW, r.white, maxBl, r.black))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// BuildStandingsOutput formats standings into grouped, aligned string
// output with one column per configured tiebreak.
func BuildStandingsOutput(t *Tournament,
	standings []SectionStandings) string {

	if t.CurrentRound == 0 {
		return "No rounds have been played yet\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Standings after Round %v:\n\n",
		t.CurrentRound))

	for _, sec := range standings {
		headers := []string{"Place", "Name", "Score", "W-L-D"}
		if len(sec.Rows) > 0 {
			for _, tb := range sec.Rows[0].Tiebreaks {
				headers = append(headers, tiebreakShortNames[tb.Kind])
			}
		}

		var rows [][]string
		priorRank := -1
		for _, r := range sec.Rows {
			rank := ""
			if r.Rank != priorRank {
				rank = fmt.Sprintf("%v.", r.Rank)
				priorRank = r.Rank
			}
			name := r.Player.DisplayName
			if r.Player.Status == PlayerWithdrawn {
				name += " (wd)"
			}
			row := []string{
				rank,
				name,
				fmt.Sprintf("%.1f", r.Points),
				fmt.Sprintf("%d-%d-%d", r.Wins, r.Losses, r.Draws),
			}
			for _, tb := range r.Tiebreaks {
				row = append(row, trimFloat(tb.Value))
			}
			rows = append(rows, row)
		}

		if len(standings) > 1 {
			sec := sec.Section
			if sec == "" {
				sec = "UNNAMED"
			}
			sb.WriteString(fmt.Sprintf("%s Section\n", sec))
		}
		writeAligned(&sb, headers, rows)
		sb.WriteString("\n")
	}

	return sb.String()
}

var tiebreakShortNames = map[Tiebreak]string{
	TiebreakBuchholz:        "Buch",
	TiebreakMedianBuchholz:  "M-Buch",
	TiebreakSonnebornBerger: "S-B",
	TiebreakCumulative:      "Cum",
	TiebreakSolkoff:         "Solk",
	TiebreakDirect:          "H2H",
}

// trimFloat renders a tiebreak value compactly: 7, 6.5, 2.25.
func trimFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeAligned writes one header row plus data rows with every column
// padded to its widest cell.
func writeAligned(sb *strings.Builder, headers []string, rows [][]string) {
	colWidths := make([]int, len(headers))
	for i, h := range headers {
		colWidths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if len(cell) > colWidths[i] {
				colWidths[i] = len(cell)
			}
		}
	}

	var fmtStrBuilder strings.Builder
	for _, w := range colWidths {
		fmtStrBuilder.WriteString(fmt.Sprintf("%%-%ds  ", w))
	}
	fmtStr := strings.TrimRight(fmtStrBuilder.String(), " ") + "\n"

	sb.WriteString(fmt.Sprintf(fmtStr, toAnySlice(headers)...))
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf(fmtStr, toAnySlice(row)...))
	}
}

// toAnySlice converts a slice of any type to a slice of any (interface{}).
func toAnySlice[T any](slice []T) []any {
	result := make([]any, len(slice))
	for i, v := range slice {
		result[i] = v
	}
	return result
}

// ScoreTotals sums result rows per player.
func ScoreTotals(results []Result) map[uuid.UUID]float64 {
	totals := make(map[uuid.UUID]float64)
	for _, r := range results {
		totals[r.PlayerID] += r.Points
	}
	return totals
}
