/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"strconv"

	"github.com/google/uuid"
)

const (
	// QuadRounds is the fixed length of a quad event: three rounds give
	// every member of a four player group one game against each other.
	QuadRounds = 3
	QuadSize   = 4
)

// quadGroup is one four seat group playing its own internal round robin.
// Short groups and groups with withdrawn members keep phantom (nil) seats
// so scheduled opponents of an empty seat receive automatic byes.
type quadGroup struct {
	section string
	seats   []*Seed
	absent  map[uuid.UUID]bool
}

// generateQuads carves the field into rating groups of four on round one
// and replays the same groups for rounds two and three. Each group lives
// in its own generated section with boards numbered from one.
func (e *Engine) generateQuads(in *SectionInput) (*Output, error) {
	if in.Round > QuadRounds {
		return nil, Errorf(ErrValidation, "quads play exactly %v rounds",
			QuadRounds)
	}

	groups, err := quadGroups(in)
	if err != nil {
		return nil, err
	}

	out := &Output{}
	for _, q := range groups {
		games, byeSeeds := q.roundPairs(in.Round, in.PrevPairings)

		board := 1
		for _, g := range games {
			white, black := e.roundRobinColors(in, g[0], g[1])
			p := gamePairing(in, board, white, black)
			p.Section = q.section
			out.Pairings = append(out.Pairings, p)
			board++
		}
		for _, s := range byeSeeds {
			p := byePairing(in, board, s)
			p.Section = q.section
			out.Pairings = append(out.Pairings, p)
			board++
		}
		for _, s := range q.sittingOut() {
			p := unpairedPairing(in, board, s.ID)
			p.Section = q.section
			out.Pairings = append(out.Pairings, p)
			board++
		}
	}

	return out, nil
}

// quadGroups derives the groups for the round. Round one splits the field
// by rating; later rounds recover each player's group from the section
// labels of earlier boards, so membership never shifts once play begins.
func quadGroups(in *SectionInput) ([]quadGroup, error) {
	seats, absent := scheduleSeats(in)

	if in.Round == 1 {
		var groups []quadGroup
		for ii := 0; ii < len(seats); ii += QuadSize {
			end := ii + QuadSize
			if end > len(seats) {
				end = len(seats)
			}
			groups = append(groups, newQuadGroup(
				QuadSectionPrefix+strconv.Itoa(ii/QuadSize+1),
				seats[ii:end], absent))
		}
		return groups, nil
	}

	homes := quadHomes(in.PrevPairings)
	bySection := make(map[string][]*Seed)
	for _, s := range seats {
		sec, ok := homes[s.ID]
		if !ok {
			return nil, Errorf(ErrValidation,
				"%v joined after the quads were formed; quads admit no late entries",
				s.Name)
		}
		bySection[sec] = append(bySection[sec], s)
	}

	names := make([]string, 0, len(bySection))
	for sec := range bySection {
		names = append(names, sec)
	}
	SortSections(names)

	groups := make([]quadGroup, 0, len(names))
	for _, sec := range names {
		members := bySection[sec]
		if len(members) > QuadSize {
			return nil, Errorf(ErrPairing,
				"section %v holds %v players; quads seat at most %v",
				sec, len(members), QuadSize)
		}
		groups = append(groups, newQuadGroup(sec, members, absent))
	}
	return groups, nil
}

func newQuadGroup(section string, members []*Seed,
	absent map[uuid.UUID]bool) quadGroup {

	seats := make([]*Seed, QuadSize)
	copy(seats, members)
	return quadGroup{section: section, seats: seats, absent: absent}
}

// quadHomes maps each previously seen player to their generated section.
func quadHomes(prev []Pairing) map[uuid.UUID]string {
	homes := make(map[uuid.UUID]string)
	for _, p := range prev {
		homes[p.WhiteID] = p.Section
		if p.BlackID != nil {
			homes[*p.BlackID] = p.Section
		}
	}
	return homes
}

// roundPairs schedules one group round. Candidate matchings are the circle
// schedule for this round plus the two alternatives; the cheapest one by
// (fewest repeats, most played boards) wins, so a withdrawal or absence in
// a four player group never forces a rematch while a fresh opponent
// remains.
func (q *quadGroup) roundPairs(round int,
	prev []Pairing) (games [][2]*Seed, byeSeeds []*Seed) {

	candidates := [][][2]int{
		circlePairs(QuadSize, round),
		{{0, 1}, {2, 3}},
		{{0, 2}, {1, 3}},
		{{0, 3}, {1, 2}},
	}

	best, bestScore := -1, 0
	for idx, cand := range candidates {
		repeats, played := 0, 0
		for _, pr := range cand {
			a, b := q.seats[pr[0]], q.seats[pr[1]]
			if !q.present(a) || !q.present(b) {
				continue
			}
			played++
			if latestMeeting(prev, a.ID, b.ID) != nil {
				repeats++
			}
		}
		score := repeats*QuadSize - played
		if best == -1 || score < bestScore {
			best, bestScore = idx, score
		}
	}

	for _, pr := range candidates[best] {
		a, b := q.seats[pr[0]], q.seats[pr[1]]
		switch {
		case q.present(a) && q.present(b):
			games = append(games, [2]*Seed{a, b})
		case q.present(a):
			byeSeeds = append(byeSeeds, a)
		case q.present(b):
			byeSeeds = append(byeSeeds, b)
		}
	}
	sortSeeds(byeSeeds)

	return games, byeSeeds
}

func (q *quadGroup) present(s *Seed) bool {
	return s != nil && !q.absent[s.ID]
}

// sittingOut returns the group members on a registered bye this round, in
// canonical order.
func (q *quadGroup) sittingOut() []*Seed {
	var out []*Seed
	for _, s := range q.seats {
		if s != nil && q.absent[s.ID] {
			out = append(out, s)
		}
	}
	sortSeeds(out)
	return out
}
