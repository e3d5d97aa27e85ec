/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"testing"

	"github.com/google/uuid"
)

func playedBoard(tid uuid.UUID, round int, section string, board int,
	white, black uuid.UUID) Pairing {

	b := black
	return Pairing{
		ID:           uuid.New(),
		TournamentID: tid,
		RoundNumber:  round,
		Section:      section,
		BoardNumber:  board,
		WhiteID:      white,
		BlackID:      &b,
		Result:       ResultWhiteWin,
	}
}

// TestQuadRoundOneGroups verifies the field splits into rating groups of
// four, each playing in its own section with boards numbered from one.
func TestQuadRoundOneGroups(t *testing.T) {
	seeds := ratedSeeds(8, 2000, 100)
	names := seedNames(seeds)

	in := &SectionInput{
		TournamentID: uuid.New(),
		Format:       FormatQuad,
		Round:        1,
		TotalRounds:  QuadRounds,
		Players:      seeds,
	}
	out, err := NewEngine().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := "p1-p4 p2-p3 p5-p8 p6-p7"
	if got := boardLabels(out.Pairings, names); got != want {
		t.Errorf("boards = %q; want %q", got, want)
	}

	wantSections := []string{"quad-1", "quad-1", "quad-2", "quad-2"}
	wantBoards := []int{1, 2, 1, 2}
	for idx := range out.Pairings {
		p := &out.Pairings[idx]
		if p.Section != wantSections[idx] {
			t.Errorf("board %d section = %v; want %v", idx, p.Section,
				wantSections[idx])
		}
		if p.BoardNumber != wantBoards[idx] {
			t.Errorf("board %d numbered %d; want %d", idx, p.BoardNumber,
				wantBoards[idx])
		}
	}
}

// TestQuadShortGroupPlaysInside verifies the leftover group of a field not
// divisible by four pairs internally instead of handing out byes.
func TestQuadShortGroupPlaysInside(t *testing.T) {
	seeds := ratedSeeds(6, 2000, 100)
	names := seedNames(seeds)

	in := &SectionInput{
		TournamentID: uuid.New(),
		Format:       FormatQuad,
		Round:        1,
		TotalRounds:  QuadRounds,
		Players:      seeds,
	}
	out, err := NewEngine().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := "p1-p4 p2-p3 p5-p6"
	if got := boardLabels(out.Pairings, names); got != want {
		t.Errorf("boards = %q; want %q", got, want)
	}
	last := &out.Pairings[len(out.Pairings)-1]
	if last.Section != "quad-2" || last.BoardNumber != 1 {
		t.Errorf("short group board in %v #%d; want quad-2 #1", last.Section,
			last.BoardNumber)
	}
}

// TestQuadMembershipPersists verifies rounds after the first recover group
// membership from the earlier boards rather than re-splitting by rating.
func TestQuadMembershipPersists(t *testing.T) {
	seeds := ratedSeeds(8, 2000, 100)
	names := seedNames(seeds)
	tid := uuid.New()

	// rating changes between rounds must not reshuffle the groups
	seeds[4].Rating = 2500

	prev := []Pairing{
		playedBoard(tid, 1, "quad-1", 1, seeds[0].ID, seeds[3].ID),
		playedBoard(tid, 1, "quad-1", 2, seeds[1].ID, seeds[2].ID),
		playedBoard(tid, 1, "quad-2", 1, seeds[4].ID, seeds[7].ID),
		playedBoard(tid, 1, "quad-2", 2, seeds[5].ID, seeds[6].ID),
	}

	in := &SectionInput{
		TournamentID: tid,
		Format:       FormatQuad,
		Round:        2,
		TotalRounds:  QuadRounds,
		Players:      seeds,
		PrevPairings: prev,
	}
	out, err := NewEngine().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := "p1-p2 p3-p4 p5-p6 p7-p8"
	if got := boardLabels(out.Pairings, names); got != want {
		t.Errorf("boards = %q; want %q", got, want)
	}
	for idx := range out.Pairings {
		wantSection := "quad-1"
		if idx >= 2 {
			wantSection = "quad-2"
		}
		if out.Pairings[idx].Section != wantSection {
			t.Errorf("board %d section = %v; want %v", idx,
				out.Pairings[idx].Section, wantSection)
		}
	}
}

// TestQuadRejectsLateEntry verifies a player absent from round one cannot
// join a quad mid event.
func TestQuadRejectsLateEntry(t *testing.T) {
	seeds := ratedSeeds(5, 2000, 100)
	tid := uuid.New()

	prev := []Pairing{
		playedBoard(tid, 1, "quad-1", 1, seeds[0].ID, seeds[3].ID),
		playedBoard(tid, 1, "quad-1", 2, seeds[1].ID, seeds[2].ID),
	}

	in := &SectionInput{
		TournamentID: tid,
		Format:       FormatQuad,
		Round:        2,
		TotalRounds:  QuadRounds,
		Players:      seeds,
		PrevPairings: prev,
	}
	_, err := NewEngine().Generate(context.Background(), in)
	if !IsKind(err, ErrValidation) {
		t.Errorf("Generate(late entry) = %v; want validation error", err)
	}
}

// TestQuadRoundLimit verifies quads refuse a fourth round.
func TestQuadRoundLimit(t *testing.T) {
	in := &SectionInput{
		TournamentID: uuid.New(),
		Format:       FormatQuad,
		Round:        4,
		TotalRounds:  QuadRounds,
		Players:      ratedSeeds(4, 2000, 100),
	}
	_, err := NewEngine().Generate(context.Background(), in)
	if !IsKind(err, ErrValidation) {
		t.Errorf("Generate(round 4) = %v; want validation error", err)
	}
}
