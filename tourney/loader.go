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

// BuildSectionInput assembles the engine's view of one section for the
// given round: pairable seeds carrying score, color, opponent, bye and
// float history, plus team lineups for team events. Quad events pass an
// empty section and pool the whole roster, since their generated sections
// only exist inside earlier pairings.
func (rg *Registry) BuildSectionInput(ctx context.Context, t *Tournament,
	section string, round int) (*SectionInput, error) {

	histSection := section
	if t.Format == FormatQuad {
		histSection = ""
	}

	var pairable, sitting []Player
	var history []Pairing
	var results []Result
	var teams []Team

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		var err error
		pairable, sitting, err = rg.PairableForRound(gctx, t.ID, section,
			round)
		return err
	})
	grp.Go(func() error {
		var err error
		history, err = rg.store.Pairings().ListHistoricalInSection(gctx,
			t.ID, histSection, round)
		if err != nil {
			return WrapErr(ErrIntegration, err, "unable to list pairings")
		}
		return nil
	})
	grp.Go(func() error {
		var err error
		results, err = rg.store.Results().ListForTournament(gctx, t.ID)
		if err != nil {
			return WrapErr(ErrIntegration, err, "unable to list results")
		}
		return nil
	})
	if t.Format == FormatTeamSwiss {
		grp.Go(func() error {
			var err error
			teams, err = rg.store.Teams().ListForTournament(gctx, t.ID)
			if err != nil {
				return WrapErr(ErrIntegration, err, "unable to list teams")
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	hist := newHistoryIndex(history, results)

	in := &SectionInput{
		TournamentID: t.ID,
		Format:       t.Format,
		Section:      section,
		Round:        round,
		TotalRounds:  t.TotalRounds,
		PrevPairings: history,
	}
	for idx := range pairable {
		in.Players = append(in.Players, hist.seed(&pairable[idx]))
	}
	for idx := range sitting {
		in.RegisteredByes = append(in.RegisteredByes, hist.seed(&sitting[idx]))
	}

	if t.Format == FormatTeamSwiss {
		var err error
		in.Teams, err = buildTeamSeeds(section, teams, pairable, hist)
		if err != nil {
			return nil, err
		}
	}

	return in, nil
}

// historyIndex precomputes the per player views the engine seeds need
// from one section's prior pairings and the tournament's result rows.
type historyIndex struct {
	games    map[uuid.UUID][]Pairing
	byes     map[uuid.UUID][]int
	earned   map[uuid.UUID]map[int]float64
	total    map[uuid.UUID]float64
	maxRound int
}

func newHistoryIndex(history []Pairing, results []Result) *historyIndex {
	h := &historyIndex{
		games:  make(map[uuid.UUID][]Pairing),
		byes:   make(map[uuid.UUID][]int),
		earned: make(map[uuid.UUID]map[int]float64),
		total:  make(map[uuid.UUID]float64),
	}

	byPairing := make(map[uuid.UUID]*Pairing, len(history))
	for idx := range history {
		p := &history[idx]
		byPairing[p.ID] = p
		if p.RoundNumber > h.maxRound {
			h.maxRound = p.RoundNumber
		}
		if p.IsByePairing() {
			if p.ByeType == ByeTypeBye {
				h.byes[p.WhiteID] = append(h.byes[p.WhiteID], p.RoundNumber)
			}
			continue
		}
		h.games[p.WhiteID] = append(h.games[p.WhiteID], *p)
		h.games[*p.BlackID] = append(h.games[*p.BlackID], *p)
	}
	for id := range h.games {
		games := h.games[id]
		sort.Slice(games, func(i, j int) bool {
			return games[i].RoundNumber < games[j].RoundNumber
		})
	}

	for _, r := range results {
		h.total[r.PlayerID] += r.Points
		p, ok := byPairing[r.PairingID]
		if !ok {
			continue
		}
		rounds := h.earned[r.PlayerID]
		if rounds == nil {
			rounds = make(map[int]float64)
			h.earned[r.PlayerID] = rounds
		}
		rounds[p.RoundNumber] += r.Points
	}

	return h
}

// scoreBefore returns the points a player held entering the given round.
func (h *historyIndex) scoreBefore(id uuid.UUID, round int) float64 {
	var sum float64
	for r, pts := range h.earned[id] {
		if r < round {
			sum += pts
		}
	}
	return sum
}

// seed builds the engine's view of one roster entry. A downfloat is
// recorded for every prior game the player entered with more points than
// their opponent.
func (h *historyIndex) seed(p *Player) Seed {
	s := Seed{
		ID:            p.ID,
		Name:          p.DisplayName,
		Rating:        p.Rating,
		Score:         h.total[p.ID],
		AutoByeRounds: h.byes[p.ID],
		TeamID:        p.TeamID,
	}

	games := h.games[p.ID]
	if len(games) > 0 {
		s.Colors = make([]Color, 0, len(games))
		s.Opponents = make(map[uuid.UUID]int, len(games))
	}
	for idx := range games {
		g := &games[idx]
		s.Colors = append(s.Colors, g.ColorOf(p.ID))

		opp := g.Opponent(p.ID)
		if g.RoundNumber > s.Opponents[opp] {
			s.Opponents[opp] = g.RoundNumber
		}
		if h.scoreBefore(p.ID, g.RoundNumber) >
			h.scoreBefore(opp, g.RoundNumber) {
			s.FloatRounds = append(s.FloatRounds, g.RoundNumber)
		}
	}

	return s
}

// buildTeamSeeds assembles the meta field for a team section: each team's
// current lineup in board order plus a meta seed scored in match points.
func buildTeamSeeds(section string, teams []Team, pairable []Player,
	hist *historyIndex) ([]TeamSeed, error) {

	byPlayer := make(map[uuid.UUID]*Player, len(pairable))
	teamOf := make(map[uuid.UUID]uuid.UUID, len(pairable))
	for idx := range pairable {
		p := &pairable[idx]
		byPlayer[p.ID] = p
		teamOf[p.ID] = p.TeamID
	}

	points, opponents := teamMatchHistory(hist, teamOf)

	var seeds []TeamSeed
	for _, team := range teams {
		if section != "" && team.Section != section {
			continue
		}

		ts := TeamSeed{Team: team}
		ratingSum := 0
		for _, pid := range team.BoardOrder {
			p, ok := byPlayer[pid]
			if !ok {
				// withdrawn or sitting out; the lineup shifts up
				continue
			}
			ts.Boards = append(ts.Boards, p)
			ratingSum += p.Rating
		}

		ts.Seed = Seed{
			ID:        team.ID,
			Name:      team.Name,
			Score:     points[team.ID],
			Opponents: opponents[team.ID],
		}
		if len(ts.Boards) > 0 {
			ts.Seed.Rating = ratingSum / len(ts.Boards)
		}
		seeds = append(seeds, ts)
	}
	sort.Slice(seeds, func(i, j int) bool {
		return seeds[i].Team.Name < seeds[j].Team.Name
	})

	for idx := range pairable {
		if pairable[idx].TeamID == uuid.Nil {
			return nil, Errorf(ErrValidation,
				"%v is not assigned to a team", pairable[idx].DisplayName)
		}
	}

	return seeds, nil
}

// teamMatchHistory derives team match points and team opponent history
// from prior boards: each round, teams whose players met compare summed
// game points for the match outcome, and a team whose lineup all held
// automatic byes scores a bye match point.
func teamMatchHistory(hist *historyIndex,
	teamOf map[uuid.UUID]uuid.UUID) (map[uuid.UUID]float64,
	map[uuid.UUID]map[uuid.UUID]int) {

	points := make(map[uuid.UUID]float64)
	opponents := make(map[uuid.UUID]map[uuid.UUID]int)

	for round := 1; round <= hist.maxRound; round++ {
		met := make(map[uuid.UUID]uuid.UUID)
		gamePts := make(map[uuid.UUID]float64)
		hadBye := make(map[uuid.UUID]bool)

		for pid, games := range hist.games {
			ta := teamOf[pid]
			if ta == uuid.Nil {
				continue
			}
			for idx := range games {
				g := &games[idx]
				if g.RoundNumber != round {
					continue
				}
				tb := teamOf[g.Opponent(pid)]
				if tb != uuid.Nil && tb != ta {
					met[ta] = tb
				}
				wp, bp := g.Result.Points()
				if g.ColorOf(pid) == ColorWhite {
					gamePts[ta] += wp
				} else {
					gamePts[ta] += bp
				}
			}
		}
		for pid, rounds := range hist.byes {
			ta := teamOf[pid]
			if ta == uuid.Nil {
				continue
			}
			for _, r := range rounds {
				if r == round {
					hadBye[ta] = true
				}
			}
		}

		done := make(map[uuid.UUID]bool)
		for ta, tb := range met {
			if done[ta] || done[tb] {
				continue
			}
			done[ta], done[tb] = true, true

			recordMeeting(opponents, ta, tb, round)
			switch {
			case gamePts[ta] > gamePts[tb]:
				points[ta] += 1.0
			case gamePts[ta] < gamePts[tb]:
				points[tb] += 1.0
			default:
				points[ta] += 0.5
				points[tb] += 0.5
			}
		}
		for ta := range hadBye {
			if _, played := met[ta]; !played {
				points[ta] += 1.0
			}
		}
	}

	return points, opponents
}

func recordMeeting(opponents map[uuid.UUID]map[uuid.UUID]int, a, b uuid.UUID,
	round int) {

	for _, pair := range [2][2]uuid.UUID{{a, b}, {b, a}} {
		m := opponents[pair[0]]
		if m == nil {
			m = make(map[uuid.UUID]int)
			opponents[pair[0]] = m
		}
		if round > m[pair[1]] {
			m[pair[1]] = round
		}
	}
}
