/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"sort"

	"github.com/google/uuid"
)

// Seed is one pairable player as the engine sees them: identity, rating,
// and the history that drives matching, floats, byes, and colors.
type Seed struct {
	ID     uuid.UUID
	Name   string
	Rating int
	Score  float64

	// Colors holds played-game colors in round order; byes are absent.
	Colors []Color
	// Opponents maps every prior opponent to the latest round they met.
	Opponents map[uuid.UUID]int
	// AutoByeRounds lists rounds in which the player received an automatic
	// (half point) bye.
	AutoByeRounds []int
	// FloatRounds lists rounds in which the player was paired below their
	// score group.
	FloatRounds []int

	TeamID uuid.UUID
}

// hasAutoBye reports whether the seed ever received an automatic bye.
func (s *Seed) hasAutoBye() bool {
	return len(s.AutoByeRounds) > 0
}

// floatedRecently reports whether the seed floated down within the last
// two completed rounds before the given round.
func (s *Seed) floatedRecently(round int) bool {
	for _, r := range s.FloatRounds {
		if r >= round-2 {
			return true
		}
	}
	return false
}

// colorImbalance returns whites minus blacks over the seed's played games.
func (s *Seed) colorImbalance() int {
	d := 0
	for _, c := range s.Colors {
		if c == ColorWhite {
			d++
		} else {
			d--
		}
	}
	return d
}

// absolutePreference returns the color the seed must receive to avoid a
// third consecutive game on one color, and whether such a constraint
// exists.
func (s *Seed) absolutePreference() (Color, bool) {
	n := len(s.Colors)
	if n < 2 {
		return ColorWhite, false
	}
	if s.Colors[n-1] == s.Colors[n-2] {
		return s.Colors[n-1].Other(), true
	}
	return ColorWhite, false
}

// strongPreference returns the color that reduces a one game imbalance,
// and whether the seed has exactly that imbalance.
func (s *Seed) strongPreference() (Color, bool) {
	switch s.colorImbalance() {
	case 1:
		return ColorBlack, true
	case -1:
		return ColorWhite, true
	}
	return ColorWhite, false
}

// lastColor returns the color of the seed's most recent played game.
func (s *Seed) lastColor() (Color, bool) {
	if len(s.Colors) == 0 {
		return ColorWhite, false
	}
	return s.Colors[len(s.Colors)-1], true
}

// hasMet reports whether the two seeds already played each other.
func (s *Seed) hasMet(other *Seed) bool {
	_, met := s.Opponents[other.ID]
	return met
}

// TeamSeed is one team viewed as a meta-player for team swiss matching.
type TeamSeed struct {
	Team Team
	// Boards lists the members in board order; withdrawn members are
	// dropped, registered byes for the round are nil.
	Boards []*Player
	Seed   Seed
}

// SectionInput is everything the engine needs to pair one section of one
// round. Inputs are never mutated.
type SectionInput struct {
	TournamentID uuid.UUID
	Format       Format
	Section      string
	Round        int
	TotalRounds  int

	// Players are the pairable seeds; RegisteredByes sit out this round
	// and are materialized as unpaired pairings at the end of the board
	// list.
	Players        []Seed
	RegisteredByes []Seed

	// Teams is populated for team formats instead of Players.
	Teams []TeamSeed

	// PrevPairings holds the section's boards from all earlier rounds;
	// round robin color alternation and knockout brackets derive from it.
	PrevPairings []Pairing
}

// WarningKind classifies constraint relaxations the engine had to apply.
type WarningKind int

const (
	WarningRepeatPairing WarningKind = iota
	WarningColorViolation
)

var warningKindNames = map[WarningKind]string{
	WarningRepeatPairing:  "repeat_pairing",
	WarningColorViolation: "color_violation",
}

func (k WarningKind) String() string {
	return warningKindNames[k]
}

func (k WarningKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// Warning reports one relaxation applied while pairing.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Section string      `json:"section"`
	Detail  string      `json:"detail"`
}

// Output is the engine's product for one section and round.
type Output struct {
	Pairings []Pairing `json:"pairings"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Engine generates pairings. It is a pure function of its input: equal
// inputs yield identical outputs.
type Engine struct {
	// TransposeCap bounds the matching attempts per score group. Zero
	// selects the default bound of twice the group size factorial.
	TransposeCap int
}

func NewEngine() *Engine {
	return &Engine{}
}

// Generate dispatches to the format specific algorithm. ctx carries the
// pairing budget; exceeding it aborts with a timeout error.
func (e *Engine) Generate(ctx context.Context, in *SectionInput) (*Output, error) {
	if in.Round < 1 {
		return nil, Errorf(ErrValidation, "round %v out of range", in.Round)
	}

	switch in.Format {
	case FormatSwiss, FormatOnlineRated:
		return e.generateSwiss(ctx, in)
	case FormatRoundRobin:
		return e.generateRoundRobin(in)
	case FormatQuad:
		return e.generateQuads(in)
	case FormatSingleElim:
		return e.generateKnockout(in)
	case FormatTeamSwiss:
		return e.generateTeamSwiss(ctx, in)
	}

	return nil, Errorf(ErrValidation, "unsupported tournament format %q",
		in.Format)
}

// sortSeeds orders seeds by rating descending, name ascending. This is the
// canonical within-group order for every format.
func sortSeeds(seeds []*Seed) {
	sort.SliceStable(seeds, func(i, j int) bool {
		if seeds[i].Rating != seeds[j].Rating {
			return seeds[i].Rating > seeds[j].Rating
		}
		return seeds[i].Name < seeds[j].Name
	})
}

// seedPtrs copies the input seeds into a freely reorderable slice.
func seedPtrs(seeds []Seed) []*Seed {
	out := make([]*Seed, len(seeds))
	for idx := range seeds {
		cp := seeds[idx]
		out[idx] = &cp
	}
	return out
}

// higherRanked reports whether a outranks b by rating then name.
func higherRanked(a, b *Seed) bool {
	if a.Rating != b.Rating {
		return a.Rating > b.Rating
	}
	return a.Name < b.Name
}

// assignColors seats a and b per the color rules:
//  1. an absolute preference (two consecutive games on one color) is always
//     honored when only one side has it, and both when compatible;
//  2. a single strong preference (one game imbalance) is honored next;
//  3. otherwise the higher ranked player takes the opposite of their
//     previous color, defaulting to white in their first game.
//
// The returned white/black order is the seating. violated reports that
// both sides held the same absolute preference and one was broken.
func assignColors(a, b *Seed) (white, black *Seed, violated bool) {
	prefA, absA := a.absolutePreference()
	prefB, absB := b.absolutePreference()

	switch {
	case absA && absB:
		if prefA != prefB {
			return seatByColor(a, prefA, b)
		}
		// irreconcilable; the higher ranked player keeps their due color
		violated = true
		if higherRanked(a, b) {
			white, black, _ = seatByColor(a, prefA, b)
		} else {
			white, black, _ = seatByColor(b, prefB, a)
		}
		return white, black, true
	case absA:
		return seatByColor(a, prefA, b)
	case absB:
		return seatByColor(b, prefB, a)
	}

	strongA, hasStrongA := a.strongPreference()
	strongB, hasStrongB := b.strongPreference()
	switch {
	case hasStrongA && hasStrongB && strongA != strongB:
		return seatByColor(a, strongA, b)
	case hasStrongA && !hasStrongB:
		return seatByColor(a, strongA, b)
	case hasStrongB && !hasStrongA:
		return seatByColor(b, strongB, a)
	}

	ranked, other := a, b
	if higherRanked(b, a) {
		ranked, other = b, a
	}
	last, played := ranked.lastColor()
	if !played {
		return ranked, other, false
	}
	return seatByColor(ranked, last.Other(), other)
}

func seatByColor(p *Seed, c Color, opp *Seed) (white, black *Seed, violated bool) {
	if c == ColorWhite {
		return p, opp, false
	}
	return opp, p, false
}

// appendRegisteredByes materializes unpaired pairings for players sitting
// out on a registered bye, after all game boards. Board numbers continue
// the section's dense sequence.
func appendRegisteredByes(in *SectionInput, pairings []Pairing,
	nextBoard int) []Pairing {

	byes := seedPtrs(in.RegisteredByes)
	sortSeeds(byes)

	for _, s := range byes {
		pairings = append(pairings, unpairedPairing(in, nextBoard, s.ID))
		nextBoard++
	}

	return pairings
}

// unpairedPairing builds a full point bye board for a player sitting out.
func unpairedPairing(in *SectionInput, board int, id uuid.UUID) Pairing {
	return Pairing{
		ID:           uuid.New(),
		TournamentID: in.TournamentID,
		RoundNumber:  in.Round,
		Section:      in.Section,
		BoardNumber:  board,
		WhiteID:      id,
		ByeType:      ByeTypeUnpaired,
	}
}

// gamePairing builds a played-board pairing for the section and round.
func gamePairing(in *SectionInput, board int, white, black *Seed) Pairing {
	blackID := black.ID
	return Pairing{
		ID:           uuid.New(),
		TournamentID: in.TournamentID,
		RoundNumber:  in.Round,
		Section:      in.Section,
		BoardNumber:  board,
		WhiteID:      white.ID,
		BlackID:      &blackID,
	}
}

// byePairing builds an automatic-bye board for the section and round.
func byePairing(in *SectionInput, board int, s *Seed) Pairing {
	return Pairing{
		ID:           uuid.New(),
		TournamentID: in.TournamentID,
		RoundNumber:  in.Round,
		Section:      in.Section,
		BoardNumber:  board,
		WhiteID:      s.ID,
		ByeType:      ByeTypeBye,
	}
}
