/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"math/bits"
	"sort"

	"github.com/google/uuid"
)

// generateKnockout builds single elimination rounds. Round one seeds the
// field by rating into the smallest power of two bracket, handing the top
// seeds byes for the unfilled slots; later rounds pair the winners of
// adjacent boards in bracket order.
func (e *Engine) generateKnockout(in *SectionInput) (*Output, error) {
	if len(in.RegisteredByes) > 0 {
		byes := seedPtrs(in.RegisteredByes)
		sortSeeds(byes)
		return nil, Errorf(ErrValidation,
			"elimination play admits no registered byes; withdraw %v instead",
			byes[0].Name)
	}

	if in.Round == 1 {
		return e.knockoutFirstRound(in)
	}
	return e.knockoutLaterRound(in)
}

func (e *Engine) knockoutFirstRound(in *SectionInput) (*Output, error) {
	seeds := seedPtrs(in.Players)
	sortSeeds(seeds)
	if len(seeds) < 2 {
		return nil, Errorf(ErrValidation,
			"section %v needs at least 2 players for a bracket; have %v",
			in.Section, len(seeds))
	}

	size := bracketSize(len(seeds))
	rounds := bits.Len(uint(size)) - 1
	if in.TotalRounds != rounds {
		return nil, Errorf(ErrValidation,
			"a %v player bracket runs %v rounds; tournament is configured for %v",
			len(seeds), rounds, in.TotalRounds)
	}

	out := &Output{}
	board := 1
	slots := bracketSlots(size)
	for ii := 0; ii < size; ii += 2 {
		// the top side of every first round board is occupied because the
		// bracket is the smallest power of two holding the field
		a := seeds[slots[ii]-1]
		b := bracketSeed(seeds, slots[ii+1])
		if b == nil {
			out.Pairings = append(out.Pairings, byePairing(in, board, a))
		} else {
			white, black, _ := assignColors(a, b)
			out.Pairings = append(out.Pairings,
				gamePairing(in, board, white, black))
		}
		board++
	}

	return out, nil
}

func (e *Engine) knockoutLaterRound(in *SectionInput) (*Output, error) {
	prevBoards := knockoutRoundBoards(in.PrevPairings, in.Round-1)
	if len(prevBoards) == 0 {
		return nil, Errorf(ErrState,
			"section %v has no round %v bracket to advance",
			in.Section, in.Round-1)
	}
	if len(prevBoards) == 1 {
		return nil, Errorf(ErrState, "section %v bracket is complete",
			in.Section)
	}
	if len(prevBoards)%2 != 0 {
		return nil, Errorf(ErrState,
			"section %v round %v holds %v boards; brackets halve each round",
			in.Section, in.Round-1, len(prevBoards))
	}

	roster := make(map[uuid.UUID]*Seed, len(in.Players))
	for _, s := range seedPtrs(in.Players) {
		roster[s.ID] = s
	}

	advancing := make([]*Seed, 0, len(prevBoards))
	for idx := range prevBoards {
		id, err := knockoutWinner(&prevBoards[idx], roster)
		if err != nil {
			return nil, err
		}
		// withdrawn winners leave their slot empty and the opposing
		// winner advances on a bye
		advancing = append(advancing, roster[id])
	}

	out := &Output{}
	board := 1
	for ii := 0; ii < len(advancing); ii += 2 {
		a, b := advancing[ii], advancing[ii+1]
		switch {
		case a != nil && b != nil:
			white, black, _ := assignColors(a, b)
			out.Pairings = append(out.Pairings,
				gamePairing(in, board, white, black))
		case a != nil:
			out.Pairings = append(out.Pairings, byePairing(in, board, a))
		case b != nil:
			out.Pairings = append(out.Pairings, byePairing(in, board, b))
		default:
			continue
		}
		board++
	}

	return out, nil
}

// knockoutWinner resolves who advances from a completed board. Byes
// advance their recipient; drawn or double forfeit boards advance the
// higher seed, since a bracket slot cannot be shared.
func knockoutWinner(p *Pairing,
	roster map[uuid.UUID]*Seed) (uuid.UUID, error) {

	if p.IsByePairing() {
		return p.WhiteID, nil
	}
	if !p.HasResult() {
		return uuid.Nil, Errorf(ErrState,
			"board %v of round %v has no result yet", p.BoardNumber,
			p.RoundNumber)
	}

	switch p.Result {
	case ResultWhiteWin, ResultWhiteWinF:
		return p.WhiteID, nil
	case ResultBlackWin, ResultBlackWinF:
		return *p.BlackID, nil
	}

	white, black := roster[p.WhiteID], roster[*p.BlackID]
	switch {
	case white == nil && black == nil:
		return uuid.Nil, nil
	case white == nil:
		return black.ID, nil
	case black == nil:
		return white.ID, nil
	case higherRanked(black, white):
		return black.ID, nil
	}
	return white.ID, nil
}

// knockoutRoundBoards returns one round's boards in bracket order.
func knockoutRoundBoards(prev []Pairing, round int) []Pairing {
	var boards []Pairing
	for _, p := range prev {
		if p.RoundNumber == round {
			boards = append(boards, p)
		}
	}
	sort.Slice(boards, func(i, j int) bool {
		return boards[i].BoardNumber < boards[j].BoardNumber
	})
	return boards
}

// bracketSize returns the smallest power of two holding n players.
func bracketSize(n int) int {
	return 1 << bits.Len(uint(n-1))
}

// bracketSeed returns the nth seed, or nil when the slot is unfilled.
func bracketSeed(seeds []*Seed, n int) *Seed {
	if n > len(seeds) {
		return nil
	}
	return seeds[n-1]
}

// bracketSlots lays out seed numbers in slot order for a bracket of the
// given power of two size, so adjacent slots meet in round one and the
// top two seeds can only meet in the final: 1, 8, 4, 5, 2, 7, 3, 6 for
// eight slots.
func bracketSlots(size int) []int {
	slots := []int{1}
	for len(slots) < size {
		comp := len(slots)*2 + 1
		next := make([]int, 0, len(slots)*2)
		for _, s := range slots {
			next = append(next, s, comp-s)
		}
		slots = next
	}
	return slots
}
