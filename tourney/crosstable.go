/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/mikeb26/tourneyd/internal"
)

// CrossCell is one round's entry on a wallchart row. A cell with an
// opponent is a game board; a cell with a bye type is a bye board; an
// empty cell means the player was not paired that round.
type CrossCell struct {
	Round    int     `json:"round"`
	Opponent int     `json:"opponent,omitempty"`
	Color    Color   `json:"color"`
	Points   float64 `json:"points"`
	Played   bool    `json:"played"`
	Forfeit  bool    `json:"forfeit,omitempty"`
	Bye      ByeType `json:"byeType,omitempty"`
}

// CrossTableRow is one player's wallchart line.
type CrossTableRow struct {
	PairNum int         `json:"pairNum"`
	Player  Player      `json:"player"`
	Points  float64     `json:"points"`
	Cells   []CrossCell `json:"cells"`
}

// CrossTable is a full wallchart for one section.
type CrossTable struct {
	Section string          `json:"section"`
	Rounds  int             `json:"rounds"`
	Rows    []CrossTableRow `json:"rows"`
}

// BuildCrossTables assembles one wallchart per section from the roster
// and every board generated so far. Rows are ordered by current score,
// then rating, then name; pair numbers follow that ordering and opponent
// references point at them.
func BuildCrossTables(t *Tournament, players []Player, pairings []Pairing,
	results []Result) []CrossTable {

	rounds := t.CurrentRound
	totals := ScoreTotals(results)

	sectionOf := func(p *Player) string {
		return p.Section
	}
	if t.Format == FormatQuad {
		homes := quadHomes(pairings)
		sectionOf = func(p *Player) string {
			if home, ok := homes[p.ID]; ok {
				return home
			}
			return p.Section
		}
	}

	rosters := make(map[string][]*Player)
	for idx := range players {
		p := &players[idx]
		sec := sectionOf(p)
		rosters[sec] = append(rosters[sec], p)
	}
	var sectionNames []string
	for sec := range rosters {
		sectionNames = append(sectionNames, sec)
	}
	sort.Sort(SectionSorter(sectionNames))

	var tables []CrossTable
	for _, sec := range sectionNames {
		roster := rosters[sec]
		sort.Slice(roster, func(i, j int) bool {
			if totals[roster[i].ID] != totals[roster[j].ID] {
				return totals[roster[i].ID] > totals[roster[j].ID]
			}
			if roster[i].Rating != roster[j].Rating {
				return roster[i].Rating > roster[j].Rating
			}
			return roster[i].DisplayName < roster[j].DisplayName
		})

		pairNums := make(map[uuid.UUID]int, len(roster))
		for idx, p := range roster {
			pairNums[p.ID] = idx + 1
		}

		xt := CrossTable{Section: sec, Rounds: rounds}
		for _, p := range roster {
			row := CrossTableRow{
				PairNum: pairNums[p.ID],
				Player:  *p,
				Points:  totals[p.ID],
				Cells:   make([]CrossCell, rounds),
			}
			for r := 0; r < rounds; r++ {
				row.Cells[r].Round = r + 1
			}
			xt.Rows = append(xt.Rows, row)
		}
		rowIdx := make(map[uuid.UUID]int, len(xt.Rows))
		for idx := range xt.Rows {
			rowIdx[xt.Rows[idx].Player.ID] = idx
		}

		for idx := range pairings {
			pg := &pairings[idx]
			if pg.RoundNumber < 1 || pg.RoundNumber > rounds {
				continue
			}
			fillCell(&xt, rowIdx, pairNums, pg, pg.WhiteID)
			if !pg.IsByePairing() {
				fillCell(&xt, rowIdx, pairNums, pg, *pg.BlackID)
			}
		}

		tables = append(tables, xt)
	}

	return tables
}

func fillCell(xt *CrossTable, rowIdx map[uuid.UUID]int,
	pairNums map[uuid.UUID]int, pg *Pairing, id uuid.UUID) {

	idx, ok := rowIdx[id]
	if !ok {
		return
	}
	cell := &xt.Rows[idx].Cells[pg.RoundNumber-1]
	if pg.IsByePairing() {
		cell.Bye = pg.ByeType
		cell.Points = pg.ByeType.Points()
		cell.Played = pg.HasResult()
		return
	}
	cell.Opponent = pairNums[pg.Opponent(id)]
	cell.Color = pg.ColorOf(id)
	if !pg.HasResult() {
		return
	}
	cell.Played = true
	cell.Forfeit = pg.Result.IsForfeit()
	wp, bp := pg.Result.Points()
	if cell.Color == ColorWhite {
		cell.Points = wp
	} else {
		cell.Points = bp
	}
}

// BuildCrossTableOutput formats one section's wallchart into aligned
// string output.
func BuildCrossTableOutput(xt *CrossTable,
	includeSectionHeader bool) string {

	var sb strings.Builder

	if includeSectionHeader {
		sec := xt.Section
		if sec == "" {
			sec = "UNNAMED"
		}
		sb.WriteString(fmt.Sprintf("%s Section\n", sec))
	}

	headers := []string{"No", "Name", "Rating", "Pts"}
	for i := 1; i <= xt.Rounds; i++ {
		headers = append(headers, fmt.Sprintf("R%d", i))
	}

	forfeitFound := false
	var rows [][]string
	for _, e := range xt.Rows {
		row := []string{
			fmt.Sprintf("%d.", e.PairNum),
			e.Player.DisplayName,
			fmt.Sprintf("%v", e.Player.Rating),
			fmt.Sprintf("%v", internal.ScoreToString(e.Points)),
		}
		for _, cell := range e.Cells {
			if cell.Forfeit {
				forfeitFound = true
			}
			row = append(row, renderCell(&cell))
		}
		rows = append(rows, row)
	}

	writeAligned(&sb, headers, rows)
	if forfeitFound {
		sb.WriteString("* indicates game was decided by forfeit\n")
	}
	sb.WriteString("\n")

	return sb.String()
}

func renderCell(cell *CrossCell) string {
	switch cell.Bye {
	case ByeTypeBye:
		return "BYE(½)"
	case ByeTypeUnpaired:
		return "BYE(1)"
	}
	if cell.Opponent == 0 {
		return "BYE(0)"
	}
	if !cell.Played {
		return "?"
	}

	var outcome string
	switch cell.Points {
	case 1.0:
		outcome = "W"
	case 0.5:
		outcome = "D"
	default:
		outcome = "L"
	}
	if cell.Forfeit {
		return outcome + "*"
	}
	return fmt.Sprintf("%s%d(%c)", outcome, cell.Opponent,
		cell.Color.String()[0])
}

// BuildCrossTablesOutput formats every section's wallchart; section
// headers appear only when more than one section exists.
func BuildCrossTablesOutput(tables []CrossTable) string {
	if len(tables) == 0 {
		return "No pairings generated yet\n"
	}
	var sb strings.Builder
	for _, xt := range tables {
		sb.WriteString(BuildCrossTableOutput(&xt, len(tables) > 1))
	}
	return sb.String()
}
