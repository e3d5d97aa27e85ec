/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/mikeb26/tourneyd/tourney"
)

// TestStandingsRoundRobin plays a full four player round robin and checks
// the final ranking, per row stats, and every default tiebreak value.
func TestStandingsRoundRobin(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatRoundRobin, 3)
	h.register(t, tourn.ID, "Ann", 1800)
	h.register(t, tourn.ID, "Ben", 1700)
	h.register(t, tourn.ID, "Cal", 1600)
	h.register(t, tourn.ID, "Dan", 1500)

	rounds := []struct {
		boards  string
		results []tourney.ResultCode
	}{
		{"Ann-Dan Ben-Cal",
			[]tourney.ResultCode{tourney.ResultWhiteWin, tourney.ResultBlackWin}},
		{"Ben-Ann Cal-Dan",
			[]tourney.ResultCode{tourney.ResultDraw, tourney.ResultWhiteWin}},
		{"Ann-Cal Dan-Ben",
			[]tourney.ResultCode{tourney.ResultWhiteWin, tourney.ResultBlackWin}},
	}

	for ii, r := range rounds {
		var sum *tourney.RoundSummary
		var err error
		if ii == 0 {
			sum, err = h.controller.GeneratePairings(ctx, tourn.ID)
		} else {
			sum, err = h.controller.AdvanceRound(ctx, tourn.ID)
		}
		if err != nil {
			t.Fatalf("round %v: %v", ii+1, err)
		}
		if got := h.labels(sum.Pairings); got != r.boards {
			t.Fatalf("round %v boards = %q; want %q", ii+1, got, r.boards)
		}
		for jj, code := range r.results {
			h.record(t, sum.Pairings[jj].ID, code)
		}
	}
	if _, err := h.controller.AdvanceRound(ctx, tourn.ID); err != nil {
		t.Fatalf("final AdvanceRound failed: %v", err)
	}

	sections, err := h.calc.Standings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	if len(sections) != 1 || sections[0].Section != "Open" {
		t.Fatalf("sections = %+v; want just Open", sections)
	}
	rows := sections[0].Rows

	want := []struct {
		name      string
		rank      int
		points    float64
		wins      int
		draws     int
		losses    int
		tiebreaks []float64 // buchholz, median, sonneborn-berger, cumulative
	}{
		{"Ann", 1, 2.5, 2, 1, 0, []float64{3.5, 1.5, 2.75, 5.0}},
		{"Cal", 2, 2.0, 2, 0, 1, []float64{4.0, 1.5, 1.5, 5.0}},
		{"Ben", 3, 1.5, 1, 1, 1, []float64{4.5, 2.0, 1.25, 2.0}},
		{"Dan", 4, 0.0, 0, 0, 3, []float64{6.0, 2.0, 0.0, 0.0}},
	}
	if len(rows) != len(want) {
		t.Fatalf("standings rows = %v; want %v", len(rows), len(want))
	}
	for ii, w := range want {
		row := rows[ii]
		if row.Player.DisplayName != w.name {
			t.Errorf("row %v player = %v; want %v", ii, row.Player.DisplayName,
				w.name)
			continue
		}
		if row.Rank != w.rank || row.Points != w.points {
			t.Errorf("%v: rank %v points %v; want rank %v points %v",
				w.name, row.Rank, row.Points, w.rank, w.points)
		}
		if row.Games != 3 || row.Wins != w.wins || row.Draws != w.draws ||
			row.Losses != w.losses {
			t.Errorf("%v: record %v/%v/%v in %v games; want %v/%v/%v in 3",
				w.name, row.Wins, row.Losses, row.Draws, row.Games,
				w.wins, w.losses, w.draws)
		}
		if len(row.Tiebreaks) != len(w.tiebreaks) {
			t.Errorf("%v: tiebreak count = %v; want %v", w.name,
				len(row.Tiebreaks), len(w.tiebreaks))
			continue
		}
		for jj, tb := range row.Tiebreaks {
			if tb.Value != w.tiebreaks[jj] {
				t.Errorf("%v: tiebreak %v = %v; want %v", w.name, tb.Kind,
					tb.Value, w.tiebreaks[jj])
			}
		}
	}

	order := tourney.DefaultTiebreaks()
	for ii, tb := range rows[0].Tiebreaks {
		if tb.Kind != order[ii] {
			t.Errorf("tiebreak order[%v] = %v; want %v", ii, tb.Kind, order[ii])
		}
	}
}

// TestStandingsSharedRank verifies rows equal on points and every tiebreak
// share a rank.
func TestStandingsSharedRank(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 1)
	h.register(t, tourn.ID, "Ann", 1800)
	h.register(t, tourn.ID, "Ben", 1700)

	sum, err := h.controller.GeneratePairings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("GeneratePairings failed: %v", err)
	}
	h.record(t, sum.Pairings[0].ID, tourney.ResultDraw)
	if _, err := h.controller.AdvanceRound(ctx, tourn.ID); err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}

	sections, err := h.calc.Standings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	rows := sections[0].Rows
	if len(rows) != 2 {
		t.Fatalf("rows = %v; want 2", len(rows))
	}
	if rows[0].Rank != 1 || rows[1].Rank != 1 {
		t.Errorf("ranks = %v, %v; want shared rank 1", rows[0].Rank,
			rows[1].Rank)
	}
	// rating breaks the display order without splitting the rank
	if rows[0].Player.DisplayName != "Ann" {
		t.Errorf("first row = %v; want Ann", rows[0].Player.DisplayName)
	}
}

// TestStandingsMidRound verifies standings may be computed with boards
// outstanding; unplayed games contribute nothing.
func TestStandingsMidRound(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 2)
	h.register(t, tourn.ID, "Ann", 1800)
	h.register(t, tourn.ID, "Ben", 1700)
	h.register(t, tourn.ID, "Cal", 1600)
	h.register(t, tourn.ID, "Dan", 1500)

	sum, err := h.controller.GeneratePairings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("GeneratePairings failed: %v", err)
	}
	h.record(t, sum.Pairings[0].ID, tourney.ResultWhiteWin)

	sections, err := h.calc.Standings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("Standings failed: %v", err)
	}
	rows := sections[0].Rows
	if len(rows) != 4 {
		t.Fatalf("rows = %v; want 4", len(rows))
	}
	if rows[0].Player.DisplayName != "Ann" || rows[0].Points != 1.0 {
		t.Errorf("leader = %v on %v; want Ann on 1", rows[0].Player.DisplayName,
			rows[0].Points)
	}
	var pending int
	for _, row := range rows {
		if row.Games == 0 {
			pending++
		}
	}
	if pending != 2 {
		t.Errorf("players without a recorded game = %v; want 2", pending)
	}

	if _, err := h.calc.Standings(ctx, uuid.New()); !tourney.IsKind(err, tourney.ErrNotFound) {
		t.Errorf("Standings(unknown) = %v; want not found", err)
	}
}
