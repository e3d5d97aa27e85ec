/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// TiebreakScore is one computed tiebreak value on a standings row, in the
// tournament's configured order.
type TiebreakScore struct {
	Kind  Tiebreak `json:"kind"`
	Value float64  `json:"value"`
}

// StandingRow is one player's line in a section's standings.
type StandingRow struct {
	Rank      int             `json:"rank"`
	Player    Player          `json:"player"`
	Points    float64         `json:"points"`
	Games     int             `json:"gamesPlayed"`
	Wins      int             `json:"wins"`
	Losses    int             `json:"losses"`
	Draws     int             `json:"draws"`
	Tiebreaks []TiebreakScore `json:"tiebreaks"`
}

// SectionStandings is one section's ranked rows.
type SectionStandings struct {
	Section string        `json:"section"`
	Rows    []StandingRow `json:"rows"`
}

// Calculator aggregates recorded results into ranked standings. Rows are
// ordered by points, then the tournament's tiebreaks, then rating and
// name; rows equal on points and every tiebreak share a rank.
type Calculator struct {
	store Store
}

func NewCalculator(st Store) *Calculator {
	return &Calculator{store: st}
}

// Standings computes every section's standings. Safe to call mid round;
// pending boards simply have not contributed points yet.
func (ca *Calculator) Standings(ctx context.Context,
	tournamentID uuid.UUID) ([]SectionStandings, error) {

	t, err := ca.store.Tournaments().Get(ctx, tournamentID)
	if err != nil {
		return nil, WrapErr(ErrNotFound, err, "no such tournament %v",
			tournamentID)
	}

	var players []Player
	var pairings []Pairing
	var results []Result

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		players, err = ca.store.Players().ListForTournament(gctx, t.ID)
		if err != nil {
			return WrapErr(ErrIntegration, err, "unable to list players")
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		pairings, err = ca.store.Pairings().ListHistoricalInSection(gctx,
			t.ID, "", t.CurrentRound+1)
		if err != nil {
			return WrapErr(ErrIntegration, err, "unable to list pairings")
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		results, err = ca.store.Results().ListForTournament(gctx, t.ID)
		if err != nil {
			return WrapErr(ErrIntegration, err, "unable to list results")
		}
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	sb := &scoreboard{
		hist:   newHistoryIndex(pairings, results),
		rounds: t.CurrentRound,
		order:  t.TiebreakOrder(),
	}

	bySection := make(map[string][]Player)
	homes := quadHomes(pairings)
	for _, p := range players {
		sec := p.Section
		if t.Format == FormatQuad {
			if home, ok := homes[p.ID]; ok {
				sec = home
			}
		}
		bySection[sec] = append(bySection[sec], p)
	}

	names := make([]string, 0, len(bySection))
	for sec := range bySection {
		names = append(names, sec)
	}
	SortSections(names)

	out := make([]SectionStandings, 0, len(names))
	for _, sec := range names {
		out = append(out, SectionStandings{
			Section: sec,
			Rows:    sb.rank(bySection[sec]),
		})
	}
	return out, nil
}

// scoreboard holds the aggregates one standings computation works from.
type scoreboard struct {
	hist   *historyIndex
	rounds int
	order  []Tiebreak
}

// rank builds and orders one section's rows.
func (sb *scoreboard) rank(players []Player) []StandingRow {
	cohorts := make(map[float64][]uuid.UUID)
	for _, p := range players {
		pts := sb.hist.total[p.ID]
		cohorts[pts] = append(cohorts[pts], p.ID)
	}

	rows := make([]StandingRow, 0, len(players))
	for _, p := range players {
		rows = append(rows, sb.row(p, cohorts))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return sb.less(&rows[i], &rows[j])
	})
	for idx := range rows {
		if idx > 0 && sb.tied(&rows[idx-1], &rows[idx]) {
			rows[idx].Rank = rows[idx-1].Rank
		} else {
			rows[idx].Rank = idx + 1
		}
	}
	return rows
}

func (sb *scoreboard) row(p Player, cohorts map[float64][]uuid.UUID) StandingRow {
	row := StandingRow{
		Player: p,
		Points: sb.hist.total[p.ID],
	}

	for _, g := range sb.hist.games[p.ID] {
		if !g.HasResult() {
			continue
		}
		row.Games++
		switch sb.earnedInGame(p.ID, &g) {
		case 1.0:
			row.Wins++
		case 0.5:
			row.Draws++
		default:
			row.Losses++
		}
	}

	row.Tiebreaks = make([]TiebreakScore, 0, len(sb.order))
	for _, tb := range sb.order {
		row.Tiebreaks = append(row.Tiebreaks, TiebreakScore{
			Kind:  tb,
			Value: sb.tiebreakValue(p.ID, tb, cohorts),
		})
	}
	return row
}

func (sb *scoreboard) earnedInGame(id uuid.UUID, g *Pairing) float64 {
	wp, bp := g.Result.Points()
	if g.ColorOf(id) == ColorWhite {
		return wp
	}
	return bp
}

func (sb *scoreboard) tiebreakValue(id uuid.UUID, tb Tiebreak,
	cohorts map[float64][]uuid.UUID) float64 {

	switch tb {
	case TiebreakBuchholz, TiebreakSolkoff:
		return sb.buchholz(id)
	case TiebreakMedianBuchholz:
		return sb.medianBuchholz(id)
	case TiebreakSonnebornBerger:
		return sb.sonnebornBerger(id)
	case TiebreakCumulative:
		return sb.cumulative(id)
	case TiebreakDirect:
		return sb.directEncounter(id, cohorts)
	}
	return 0
}

// buchholz sums the total scores of every game opponent. Byes contribute
// nothing.
func (sb *scoreboard) buchholz(id uuid.UUID) float64 {
	var sum float64
	for _, g := range sb.hist.games[id] {
		sum += sb.hist.total[g.Opponent(id)]
	}
	return sum
}

// medianBuchholz is buchholz with the single best and worst opponent
// scores discarded.
func (sb *scoreboard) medianBuchholz(id uuid.UUID) float64 {
	games := sb.hist.games[id]
	if len(games) < 2 {
		return 0
	}

	var sum, low, high float64
	for idx, g := range games {
		s := sb.hist.total[g.Opponent(id)]
		sum += s
		if idx == 0 || s < low {
			low = s
		}
		if idx == 0 || s > high {
			high = s
		}
	}
	return sum - low - high
}

// sonnebornBerger credits each opponent's total score weighted by the
// points scored against them.
func (sb *scoreboard) sonnebornBerger(id uuid.UUID) float64 {
	var sum float64
	for _, g := range sb.hist.games[id] {
		if !g.HasResult() {
			continue
		}
		sum += sb.earnedInGame(id, &g) * sb.hist.total[g.Opponent(id)]
	}
	return sum
}

// cumulative sums the player's running total after each round. Early wins
// outweigh late ones, rewarding players who faced leaders longer.
func (sb *scoreboard) cumulative(id uuid.UUID) float64 {
	var running, sum float64
	for r := 1; r <= sb.rounds; r++ {
		running += sb.hist.earned[id][r]
		sum += running
	}
	return sum
}

// directEncounter is the points scored in games against the players tied
// on total points.
func (sb *scoreboard) directEncounter(id uuid.UUID,
	cohorts map[float64][]uuid.UUID) float64 {

	cohort := make(map[uuid.UUID]bool)
	for _, pid := range cohorts[sb.hist.total[id]] {
		if pid != id {
			cohort[pid] = true
		}
	}
	if len(cohort) == 0 {
		return 0
	}

	var sum float64
	for _, g := range sb.hist.games[id] {
		if !g.HasResult() || !cohort[g.Opponent(id)] {
			continue
		}
		sum += sb.earnedInGame(id, &g)
	}
	return sum
}

func (sb *scoreboard) less(a, b *StandingRow) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	for idx := range a.Tiebreaks {
		if a.Tiebreaks[idx].Value != b.Tiebreaks[idx].Value {
			return a.Tiebreaks[idx].Value > b.Tiebreaks[idx].Value
		}
	}
	if a.Player.Rating != b.Player.Rating {
		return a.Player.Rating > b.Player.Rating
	}
	return a.Player.DisplayName < b.Player.DisplayName
}

// tied reports whether two adjacent rows share points and every tiebreak,
// and therefore a rank.
func (sb *scoreboard) tied(a, b *StandingRow) bool {
	if a.Points != b.Points {
		return false
	}
	for idx := range a.Tiebreaks {
		if a.Tiebreaks[idx].Value != b.Tiebreaks[idx].Value {
			return false
		}
	}
	return true
}
