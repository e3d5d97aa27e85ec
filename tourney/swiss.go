/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"fmt"
	"math"
	"sort"
)

// swissPhase tracks a section pairing run for diagnostics and timeout
// reporting.
type swissPhase int

const (
	phaseLoaded swissPhase = iota
	phaseGrouped
	phaseMatching
	phaseTransposing
	phaseMatched
	phaseColored
	phaseFinalized
	phaseError
)

var swissPhaseNames = map[swissPhase]string{
	phaseLoaded:      "Loaded",
	phaseGrouped:     "Grouped",
	phaseMatching:    "Matching",
	phaseTransposing: "Transposing",
	phaseMatched:     "Matched",
	phaseColored:     "Colored",
	phaseFinalized:   "Finalized",
	phaseError:       "Error",
}

func (p swissPhase) String() string {
	return swissPhaseNames[p]
}

// matchLevel is the constraint relaxation ladder. Matching starts strict
// and climbs one rung at a time only when the rung below cannot produce a
// legal matching.
type matchLevel int

const (
	// levelDutch pairs the top half against the bottom half with no
	// repeats and feasible colors.
	levelDutch matchLevel = iota
	// levelExchange drops the half split but keeps the hard constraints.
	levelExchange
	// levelRepeats admits repeat pairings, preferring the least recently
	// met opponents.
	levelRepeats
	// levelColors additionally admits absolute color preference clashes.
	levelColors
)

// Cost weights order the matcher's preferences: color clashes are worse
// than any number of repeats, one repeat is worse than any recency or
// rating spread, and recency outweighs rating differences.
const (
	colorClashCost    = 1e14
	repeatMatchCost   = 1e12
	repeatRecencyCost = 1e9

	maxTransposeCap  = 1 << 20
	ctxCheckInterval = 256
)

// defaultTransposeCap bounds matching attempts at twice the factorial of
// the group size, clamped so pathological groups stay bounded.
func defaultTransposeCap(groupSize int) int {
	attempts := 2
	for ii := 2; ii <= groupSize; ii++ {
		attempts *= ii
		if attempts > maxTransposeCap {
			return maxTransposeCap
		}
	}
	return attempts
}

type swissPairer struct {
	engine   *Engine
	in       *SectionInput
	phase    swissPhase
	warnings []Warning
}

func (e *Engine) generateSwiss(ctx context.Context, in *SectionInput) (*Output, error) {
	sp := &swissPairer{engine: e, in: in, phase: phaseLoaded}
	return sp.run(ctx)
}

func (sp *swissPairer) run(ctx context.Context) (*Output, error) {
	boards, autoBye, err := sp.matchField(ctx, sp.in.Players)
	if err != nil {
		return nil, err
	}

	sp.phase = phaseColored
	out := &Output{}
	board := 1
	for _, pr := range boards {
		a, b := pr[0], pr[1]
		if a.hasMet(b) {
			sp.warn(WarningRepeatPairing, "%v and %v previously met in round %v",
				a.Name, b.Name, a.Opponents[b.ID])
		}
		white, black, violated := assignColors(a, b)
		if violated {
			// the higher ranked player keeps their due color
			loser := a
			if higherRanked(a, b) {
				loser = b
			}
			sp.warn(WarningColorViolation,
				"%v and %v both require the same color; %v was overridden",
				a.Name, b.Name, loser.Name)
		}
		out.Pairings = append(out.Pairings, gamePairing(sp.in, board, white, black))
		board++
	}
	if autoBye != nil {
		out.Pairings = append(out.Pairings, byePairing(sp.in, board, autoBye))
		board++
	}
	out.Pairings = appendRegisteredByes(sp.in, out.Pairings, board)

	sp.phase = phaseFinalized
	out.Warnings = sp.warnings
	return out, nil
}

// matchField pairs a field score group by score group, pulling the
// automatic bye recipient out first when the field is odd. Returned boards
// run strongest group first. Team events call this directly with their
// meta field; colors and materialization stay with the caller.
func (sp *swissPairer) matchField(ctx context.Context,
	field []Seed) (boards [][2]*Seed, autoBye *Seed, err error) {

	players := seedPtrs(field)

	if len(players)%2 == 1 {
		idx := chooseAutoByeIdx(players)
		autoBye = players[idx]
		players = append(players[:idx], players[idx+1:]...)
	}

	groups := groupByScore(players)
	sp.phase = phaseGrouped

	var carry []*Seed
	for _, group := range groups {
		work := make([]*Seed, 0, len(carry)+len(group))
		work = append(work, carry...)
		work = append(work, group...)
		sortGroupCanonical(work)
		carry = nil

		if len(work)%2 == 1 {
			fi := chooseFloaterIdx(work, sp.in.Round)
			floater := work[fi]
			work = append(work[:fi], work[fi+1:]...)
			carry = append(carry, floater)
		}
		if len(work) == 0 {
			continue
		}

		sp.phase = phaseMatching
		pairs, err := sp.matchGroup(ctx, work)
		if err != nil {
			sp.phase = phaseError
			return nil, nil, err
		}
		boards = append(boards, pairs...)
		sp.phase = phaseMatched
	}
	if len(carry) > 0 {
		sp.phase = phaseError
		return nil, nil, Errorf(ErrPairing,
			"section %v: no group below remains for floater %v",
			sp.in.Section, carry[0].Name)
	}

	return boards, autoBye, nil
}

func (sp *swissPairer) warn(kind WarningKind, format string, args ...any) {
	sp.warnings = append(sp.warnings, Warning{
		Kind:    kind,
		Section: sp.in.Section,
		Detail:  fmt.Sprintf(format, args...),
	})
}

// matchGroup pairs one even-sized working group, climbing the relaxation
// ladder until a matching exists.
func (sp *swissPairer) matchGroup(ctx context.Context,
	work []*Seed) ([][2]*Seed, error) {

	capAttempts := sp.engine.TransposeCap
	if capAttempts <= 0 {
		capAttempts = defaultTransposeCap(len(work))
	}
	half := len(work) / 2

	// Standard candidate: S1[i] vs S2[i]. When it is fully legal no
	// transposition search is needed.
	if pairs, legal := identityMatching(work, half); legal {
		return pairs, nil
	}

	sp.phase = phaseTransposing
	for _, level := range []matchLevel{levelDutch, levelExchange,
		levelRepeats, levelColors} {

		ms := &matchSearch{level: level, cap: capAttempts}
		if level == levelDutch {
			ms.dutch(ctx, work[:half], work[half:],
				make([]bool, half), nil, 0)
		} else {
			ms.free(ctx, work, make([]bool, len(work)), nil, 0)
		}
		if ms.ctxErr != nil {
			return nil, WrapErr(ErrTimeout, ms.ctxErr,
				"section %v: pairing budget exhausted in phase %v",
				sp.in.Section, sp.phase)
		}
		if ms.found {
			return ms.best, nil
		}
	}

	return nil, Errorf(ErrPairing,
		"section %v: no legal matching for score group of %v even after relaxing repeat and color constraints",
		sp.in.Section, len(work))
}

// identityMatching pairs S1[i] with S2[i] and reports whether every board
// satisfies the hard constraints.
func identityMatching(work []*Seed, half int) ([][2]*Seed, bool) {
	pairs := make([][2]*Seed, 0, half)
	for ii := 0; ii < half; ii++ {
		a, b := work[ii], work[half+ii]
		if _, allowed := pairCost(a, b, levelDutch); !allowed {
			return nil, false
		}
		pairs = append(pairs, [2]*Seed{a, b})
	}
	return pairs, true
}

// pairCost scores a candidate board under the given relaxation level. A
// false return means the board is forbidden at this level.
func pairCost(a, b *Seed, level matchLevel) (float64, bool) {
	cost := math.Abs(float64(a.Rating - b.Rating))

	if lastMet, met := a.Opponents[b.ID]; met {
		if level < levelRepeats {
			return 0, false
		}
		cost += repeatMatchCost + float64(lastMet)*repeatRecencyCost
	}

	prefA, absA := a.absolutePreference()
	prefB, absB := b.absolutePreference()
	if absA && absB && prefA == prefB {
		if level < levelColors {
			return 0, false
		}
		cost += colorClashCost
	}

	return cost, true
}

// matchSearch enumerates matchings of one group, tracking the cheapest
// complete matching found within the attempt budget.
type matchSearch struct {
	level    matchLevel
	cap      int
	attempts int

	found    bool
	bestCost float64
	best     [][2]*Seed

	ctxErr error
}

func (ms *matchSearch) spent(ctx context.Context) bool {
	ms.attempts++
	if ms.attempts%ctxCheckInterval == 0 {
		if err := ctx.Err(); err != nil {
			ms.ctxErr = err
			return true
		}
	}
	return ms.attempts > ms.cap
}

func (ms *matchSearch) record(acc [][2]*Seed, cost float64) {
	if ms.found && cost >= ms.bestCost {
		return
	}
	ms.found = true
	ms.bestCost = cost
	ms.best = make([][2]*Seed, len(acc))
	copy(ms.best, acc)
}

// dutch assigns each S1 seed a distinct S2 seed, exploring transpositions
// in lexicographic order.
func (ms *matchSearch) dutch(ctx context.Context, s1, s2 []*Seed,
	used []bool, acc [][2]*Seed, cost float64) {

	if ms.ctxErr != nil {
		return
	}
	ii := len(acc)
	if ii == len(s1) {
		ms.record(acc, cost)
		return
	}

	for jj := range s2 {
		if used[jj] {
			continue
		}
		if ms.spent(ctx) {
			return
		}
		c, allowed := pairCost(s1[ii], s2[jj], ms.level)
		if !allowed {
			continue
		}
		if ms.found && cost+c >= ms.bestCost {
			continue
		}
		used[jj] = true
		ms.dutch(ctx, s1, s2, used, append(acc, [2]*Seed{s1[ii], s2[jj]}),
			cost+c)
		used[jj] = false
	}
}

// free matches the first unmatched seed against every later candidate;
// with the half split abandoned this explores exchanges between the
// original halves.
func (ms *matchSearch) free(ctx context.Context, pool []*Seed,
	used []bool, acc [][2]*Seed, cost float64) {

	if ms.ctxErr != nil {
		return
	}

	first := -1
	for ii := range pool {
		if !used[ii] {
			first = ii
			break
		}
	}
	if first == -1 {
		ms.record(acc, cost)
		return
	}

	used[first] = true
	for jj := first + 1; jj < len(pool); jj++ {
		if used[jj] {
			continue
		}
		if ms.spent(ctx) {
			break
		}
		c, allowed := pairCost(pool[first], pool[jj], ms.level)
		if !allowed {
			continue
		}
		if ms.found && cost+c >= ms.bestCost {
			continue
		}
		used[jj] = true
		ms.free(ctx, pool, used, append(acc, [2]*Seed{pool[first], pool[jj]}),
			cost+c)
		used[jj] = false
	}
	used[first] = false
}

// chooseAutoByeIdx selects the automatic bye recipient: the lowest score,
// then lowest rated player who has not yet had one. Players with a prior
// automatic bye are only eligible when no one else remains.
func chooseAutoByeIdx(players []*Seed) int {
	better := func(a, b *Seed) bool {
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		if a.Rating != b.Rating {
			return a.Rating < b.Rating
		}
		return a.Name > b.Name
	}

	best := -1
	for _, tier := range []bool{false, true} {
		for ii, s := range players {
			if !tier && s.hasAutoBye() {
				continue
			}
			if best == -1 || better(s, players[best]) {
				best = ii
			}
		}
		if best != -1 {
			break
		}
	}
	return best
}

// chooseFloaterIdx selects the player to move down from an odd group:
// the lowest rated player without an absolute color preference who has
// not floated within the last two rounds, with tiers relaxed in that
// order when no candidate qualifies.
func chooseFloaterIdx(work []*Seed, round int) int {
	for tier := 0; tier < 3; tier++ {
		for ii := len(work) - 1; ii >= 0; ii-- {
			s := work[ii]
			_, abs := s.absolutePreference()
			switch tier {
			case 0:
				if !abs && !s.floatedRecently(round) {
					return ii
				}
			case 1:
				if !s.floatedRecently(round) {
					return ii
				}
			default:
				return ii
			}
		}
	}
	return len(work) - 1
}

// groupByScore partitions seeds into score groups, highest score first,
// each group in canonical order.
func groupByScore(players []*Seed) [][]*Seed {
	sorted := make([]*Seed, len(players))
	copy(sorted, players)
	sortGroupCanonical(sorted)

	var groups [][]*Seed
	for _, s := range sorted {
		last := len(groups) - 1
		if last < 0 || groups[last][0].Score != s.Score {
			groups = append(groups, []*Seed{s})
		} else {
			groups[last] = append(groups[last], s)
		}
	}
	return groups
}

// sortGroupCanonical orders a working group by score descending, then
// rating descending, then name ascending.
func sortGroupCanonical(work []*Seed) {
	sort.SliceStable(work, func(i, j int) bool {
		if work[i].Score != work[j].Score {
			return work[i].Score > work[j].Score
		}
		if work[i].Rating != work[j].Rating {
			return work[i].Rating > work[j].Rating
		}
		return work[i].Name < work[j].Name
	})
}
