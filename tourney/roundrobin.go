/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"github.com/google/uuid"
)

// generateRoundRobin schedules one round by the circle method: seat the
// field in rating order, fix the first seat, and rotate the rest one step
// per round. Odd fields get a phantom seat whose scheduled opponent takes
// an automatic bye. Rounds beyond one full cycle wrap around, which yields
// a double round robin with colors reversed at each second meeting.
func (e *Engine) generateRoundRobin(in *SectionInput) (*Output, error) {
	seats, absent := scheduleSeats(in)

	games, byeSeeds := circleRound(seats, absent, in.Round)

	out := &Output{}
	board := 1
	for _, g := range games {
		white, black := e.roundRobinColors(in, g[0], g[1])
		out.Pairings = append(out.Pairings, gamePairing(in, board, white, black))
		board++
	}
	for _, s := range byeSeeds {
		out.Pairings = append(out.Pairings, byePairing(in, board, s))
		board++
	}
	out.Pairings = appendRegisteredByes(in, out.Pairings, board)

	return out, nil
}

// roundRobinColors seats a scheduled game. Repeat meetings in a wrapped
// cycle reverse the colors of the previous encounter; first meetings
// follow the standard color rules.
func (e *Engine) roundRobinColors(in *SectionInput, a, b *Seed) (white, black *Seed) {
	if prev := latestMeeting(in.PrevPairings, a.ID, b.ID); prev != nil {
		if prev.WhiteID == a.ID {
			return b, a
		}
		return a, b
	}

	white, black, _ = assignColors(a, b)
	return white, black
}

// latestMeeting returns the most recent played board between two players,
// or nil if they have not met.
func latestMeeting(prev []Pairing, a, b uuid.UUID) *Pairing {
	var found *Pairing
	for idx := range prev {
		p := &prev[idx]
		if p.IsByePairing() {
			continue
		}
		if !p.Involves(a) || !p.Involves(b) {
			continue
		}
		if found == nil || p.RoundNumber > found.RoundNumber {
			found = p
		}
	}
	return found
}

// scheduleSeats builds the stable seat order for cyclic schedules: every
// active player in canonical order, registered byes included so their
// absence does not reshuffle future rounds. absent marks the seats sitting
// out this round.
func scheduleSeats(in *SectionInput) (seats []*Seed, absent map[uuid.UUID]bool) {
	seats = seedPtrs(in.Players)
	absent = make(map[uuid.UUID]bool, len(in.RegisteredByes))
	for _, s := range seedPtrs(in.RegisteredByes) {
		absent[s.ID] = true
		seats = append(seats, s)
	}
	sortSeeds(seats)
	return seats, absent
}

// circleRound applies the circle method to the seats for the given round.
// A nil seat is the phantom added to odd fields. Returns the scheduled
// games plus the seeds receiving automatic byes because their scheduled
// opponent is the phantom or sits out this round. Absent seeds themselves
// are materialized by the caller.
func circleRound(seats []*Seed, absent map[uuid.UUID]bool,
	round int) (games [][2]*Seed, byeSeeds []*Seed) {

	field := seats
	if len(field)%2 == 1 {
		field = append(append([]*Seed{}, field...), nil)
	}

	for _, idx := range circlePairs(len(field), round) {
		a, b := field[idx[0]], field[idx[1]]
		presentA := a != nil && !absent[a.ID]
		presentB := b != nil && !absent[b.ID]

		switch {
		case presentA && presentB:
			games = append(games, [2]*Seed{a, b})
		case presentA:
			byeSeeds = append(byeSeeds, a)
		case presentB:
			byeSeeds = append(byeSeeds, b)
		}
	}

	return games, byeSeeds
}

// circlePairs returns the seat index pairs of the circle method for a
// 1-based round over n seats, n even: seat 0 is fixed and the remaining
// seats rotate one step per round.
func circlePairs(n, round int) [][2]int {
	if n < 2 {
		return nil
	}
	cycle := n - 1
	k := (round - 1) % cycle

	arr := make([]int, n)
	arr[0] = 0
	for ii := 1; ii < n; ii++ {
		arr[ii] = 1 + ((ii - 1 + k) % cycle)
	}

	pairs := make([][2]int, 0, n/2)
	for ii := 0; ii < n/2; ii++ {
		pairs = append(pairs, [2]int{arr[ii], arr[n-1-ii]})
	}
	return pairs
}
