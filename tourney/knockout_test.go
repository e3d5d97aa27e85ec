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

// TestKnockoutFirstRoundSeeding verifies a full bracket seats seeds so the
// top two can only meet in the final.
func TestKnockoutFirstRoundSeeding(t *testing.T) {
	seeds := ratedSeeds(8, 2200, 100)
	names := seedNames(seeds)

	in := &SectionInput{
		TournamentID: uuid.New(),
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        1,
		TotalRounds:  3,
		Players:      seeds,
	}
	out, err := NewEngine().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := "p1-p8 p4-p5 p2-p7 p3-p6"
	if got := boardLabels(out.Pairings, names); got != want {
		t.Errorf("boards = %q; want %q", got, want)
	}
}

// TestKnockoutPartialBracket verifies an unfilled bracket hands byes to the
// top seeds.
func TestKnockoutPartialBracket(t *testing.T) {
	seeds := ratedSeeds(6, 2200, 100)
	names := seedNames(seeds)

	in := &SectionInput{
		TournamentID: uuid.New(),
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        1,
		TotalRounds:  3,
		Players:      seeds,
	}
	out, err := NewEngine().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := "p1:bye p4-p5 p2:bye p3-p6"
	if got := boardLabels(out.Pairings, names); got != want {
		t.Errorf("boards = %q; want %q", got, want)
	}
}

// TestKnockoutRoundCountMismatch verifies the bracket depth must match the
// configured rounds.
func TestKnockoutRoundCountMismatch(t *testing.T) {
	in := &SectionInput{
		TournamentID: uuid.New(),
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        1,
		TotalRounds:  2,
		Players:      ratedSeeds(8, 2200, 100),
	}
	_, err := NewEngine().Generate(context.Background(), in)
	if !IsKind(err, ErrValidation) {
		t.Errorf("Generate(8 players, 2 rounds) = %v; want validation error",
			err)
	}
}

// TestKnockoutRejectsRegisteredByes verifies elimination play refuses
// scheduled absences.
func TestKnockoutRejectsRegisteredByes(t *testing.T) {
	seeds := ratedSeeds(4, 2200, 100)
	in := &SectionInput{
		TournamentID:   uuid.New(),
		Format:         FormatSingleElim,
		Section:        "Open",
		Round:          1,
		TotalRounds:    2,
		Players:        seeds[:3],
		RegisteredByes: seeds[3:],
	}
	_, err := NewEngine().Generate(context.Background(), in)
	if !IsKind(err, ErrValidation) {
		t.Errorf("Generate(registered bye) = %v; want validation error", err)
	}
}

// TestKnockoutAdvancesWinners verifies later rounds pair the winners of
// adjacent boards, with draws advancing the higher seed.
func TestKnockoutAdvancesWinners(t *testing.T) {
	seeds := ratedSeeds(4, 2200, 100)
	names := seedNames(seeds)
	tid := uuid.New()

	cases := []struct {
		name    string
		result1 ResultCode
		result2 ResultCode
		want    string
	}{
		{
			name:    "decisive boards",
			result1: ResultWhiteWin,
			result2: ResultBlackWin,
			want:    "p1-p3",
		},
		{
			name:    "draw advances higher seed",
			result1: ResultDraw,
			result2: ResultBlackWinF,
			want:    "p1-p3",
		},
		{
			name:    "upsets advance",
			result1: ResultBlackWin,
			result2: ResultWhiteWin,
			want:    "p2-p4",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			prev := []Pairing{
				playedBoard(tid, 1, "Open", 1, seeds[0].ID, seeds[3].ID),
				playedBoard(tid, 1, "Open", 2, seeds[1].ID, seeds[2].ID),
			}
			prev[0].Result = c.result1
			prev[1].Result = c.result2

			in := &SectionInput{
				TournamentID: tid,
				Format:       FormatSingleElim,
				Section:      "Open",
				Round:        2,
				TotalRounds:  2,
				Players:      seeds,
				PrevPairings: prev,
			}
			out, err := NewEngine().Generate(context.Background(), in)
			if err != nil {
				t.Fatalf("%s: Generate returned error: %v", c.name, err)
			}
			if got := boardLabels(out.Pairings, names); got != c.want {
				t.Errorf("%s: boards = %q; want %q", c.name, got, c.want)
			}
		})
	}
}

// TestKnockoutWithdrawnWinner verifies a winner who withdraws before the
// next round forfeits the slot, advancing the opposing winner on a bye.
func TestKnockoutWithdrawnWinner(t *testing.T) {
	seeds := ratedSeeds(4, 2200, 100)
	names := seedNames(seeds)
	tid := uuid.New()

	prev := []Pairing{
		playedBoard(tid, 1, "Open", 1, seeds[0].ID, seeds[3].ID),
		playedBoard(tid, 1, "Open", 2, seeds[1].ID, seeds[2].ID),
	}
	prev[1].Result = ResultBlackWin

	in := &SectionInput{
		TournamentID: tid,
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        2,
		TotalRounds:  2,
		Players:      seeds[1:],
		PrevPairings: prev,
	}
	out, err := NewEngine().Generate(context.Background(), in)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	want := "p3:bye"
	if got := boardLabels(out.Pairings, names); got != want {
		t.Errorf("boards = %q; want %q", got, want)
	}
}

// TestKnockoutLaterRoundStates verifies the state errors for unfinished and
// finished brackets.
func TestKnockoutLaterRoundStates(t *testing.T) {
	seeds := ratedSeeds(4, 2200, 100)
	tid := uuid.New()

	unfinished := []Pairing{
		playedBoard(tid, 1, "Open", 1, seeds[0].ID, seeds[3].ID),
		playedBoard(tid, 1, "Open", 2, seeds[1].ID, seeds[2].ID),
	}
	unfinished[1].Result = ResultNone

	in := &SectionInput{
		TournamentID: tid,
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        2,
		TotalRounds:  2,
		Players:      seeds,
		PrevPairings: unfinished,
	}
	if _, err := NewEngine().Generate(context.Background(), in); !IsKind(err, ErrState) {
		t.Errorf("Generate(unrecorded board) = %v; want state error", err)
	}

	final := []Pairing{
		playedBoard(tid, 2, "Open", 1, seeds[0].ID, seeds[1].ID),
	}
	in = &SectionInput{
		TournamentID: tid,
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        3,
		TotalRounds:  2,
		Players:      seeds,
		PrevPairings: final,
	}
	if _, err := NewEngine().Generate(context.Background(), in); !IsKind(err, ErrState) {
		t.Errorf("Generate(complete bracket) = %v; want state error", err)
	}

	in = &SectionInput{
		TournamentID: tid,
		Format:       FormatSingleElim,
		Section:      "Open",
		Round:        1,
		TotalRounds:  1,
		Players:      seeds[:1],
	}
	if _, err := NewEngine().Generate(context.Background(), in); !IsKind(err, ErrValidation) {
		t.Errorf("Generate(1 player) = %v; want validation error", err)
	}
}
