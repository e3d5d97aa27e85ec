/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// generateTeamSwiss pairs teams as meta players with the Swiss matcher,
// then materializes each team match board by board. Board colors follow
// the alternation rule: board one of the lower seeded team takes black in
// odd rounds and white in even rounds, with each following board flipped.
func (e *Engine) generateTeamSwiss(ctx context.Context,
	in *SectionInput) (*Output, error) {

	metas := make([]Seed, 0, len(in.Teams))
	byID := make(map[uuid.UUID]*TeamSeed, len(in.Teams))
	for idx := range in.Teams {
		ts := &in.Teams[idx]
		if len(ts.Boards) == 0 {
			// the whole lineup sits out; members materialize below as
			// registered byes
			continue
		}
		byID[ts.Team.ID] = ts
		metas = append(metas, ts.Seed)
	}

	out := &Output{}
	if len(metas) == 0 {
		out.Pairings = appendRegisteredByes(in, nil, 1)
		return out, nil
	}

	metaIn := &SectionInput{
		TournamentID: in.TournamentID,
		Format:       FormatTeamSwiss,
		Section:      in.Section,
		Round:        in.Round,
		TotalRounds:  in.TotalRounds,
		Players:      metas,
	}
	sp := &swissPairer{engine: e, in: metaIn, phase: phaseLoaded}
	matches, byeTeam, err := sp.matchField(ctx, metaIn.Players)
	if err != nil {
		return nil, err
	}

	board := 1
	for _, m := range matches {
		if m[0].hasMet(m[1]) {
			out.Warnings = append(out.Warnings, Warning{
				Kind:    WarningRepeatPairing,
				Section: in.Section,
				Detail: fmt.Sprintf("%v and %v previously met in round %v",
					m[0].Name, m[1].Name, m[0].Opponents[m[1].ID]),
			})
		}
		board = appendTeamMatch(in, out, byID[m[0].ID], byID[m[1].ID], board)
	}

	if byeTeam != nil {
		for _, p := range byID[byeTeam.ID].Boards {
			out.Pairings = append(out.Pairings,
				byePairing(in, board, playerSeed(p)))
			board++
		}
	}
	out.Pairings = appendRegisteredByes(in, out.Pairings, board)

	return out, nil
}

// appendTeamMatch lays out one team match. Lineups pair board for board;
// when one lineup runs short the leftover boards win by forfeit.
func appendTeamMatch(in *SectionInput, out *Output, a, b *TeamSeed,
	board int) int {

	low, high := a, b
	if higherRanked(&a.Seed, &b.Seed) {
		low, high = b, a
	}

	n := len(low.Boards)
	if len(high.Boards) > n {
		n = len(high.Boards)
	}
	for ii := 0; ii < n; ii++ {
		lp, hp := teamBoard(low, ii), teamBoard(high, ii)
		switch {
		case lp != nil && hp != nil:
			white, black := playerSeed(lp), playerSeed(hp)
			if lowTakesBlack(in.Round, ii) {
				white, black = black, white
			}
			out.Pairings = append(out.Pairings,
				gamePairing(in, board, white, black))
		case lp != nil:
			out.Pairings = append(out.Pairings,
				unpairedPairing(in, board, lp.ID))
		case hp != nil:
			out.Pairings = append(out.Pairings,
				unpairedPairing(in, board, hp.ID))
		default:
			continue
		}
		board++
	}

	return board
}

// lowTakesBlack reports the color of the lower seeded team on the 0-based
// board index for the given round.
func lowTakesBlack(round, boardIdx int) bool {
	return (round%2 == 1) == (boardIdx%2 == 0)
}

func teamBoard(ts *TeamSeed, idx int) *Player {
	if idx >= len(ts.Boards) {
		return nil
	}
	return ts.Boards[idx]
}

// playerSeed wraps a roster entry for the shared pairing builders.
func playerSeed(p *Player) *Seed {
	return &Seed{ID: p.ID, Name: p.DisplayName, Rating: p.Rating}
}
