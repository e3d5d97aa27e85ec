/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

// TestRenderCell verifies every wallchart cell form.
func TestRenderCell(t *testing.T) {
	cases := []struct {
		name string
		cell CrossCell
		want string
	}{
		{
			name: "half point bye",
			cell: CrossCell{Bye: ByeTypeBye},
			want: "BYE(½)",
		},
		{
			name: "full point bye",
			cell: CrossCell{Bye: ByeTypeUnpaired},
			want: "BYE(1)",
		},
		{
			name: "never paired",
			cell: CrossCell{},
			want: "BYE(0)",
		},
		{
			name: "unplayed board",
			cell: CrossCell{Opponent: 3},
			want: "?",
		},
		{
			name: "win with white",
			cell: CrossCell{Opponent: 3, Color: ColorWhite, Points: 1.0,
				Played: true},
			want: "W3(w)",
		},
		{
			name: "draw with black",
			cell: CrossCell{Opponent: 2, Color: ColorBlack, Points: 0.5,
				Played: true},
			want: "D2(b)",
		},
		{
			name: "loss with white",
			cell: CrossCell{Opponent: 1, Color: ColorWhite, Points: 0.0,
				Played: true},
			want: "L1(w)",
		},
		{
			name: "forfeit win",
			cell: CrossCell{Opponent: 4, Color: ColorBlack, Points: 1.0,
				Played: true, Forfeit: true},
			want: "W*",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := renderCell(&c.cell); got != c.want {
				t.Errorf("%s: renderCell = %q; want %q", c.name, got, c.want)
			}
		})
	}
}

// TestBuildCrossTables verifies rows order by score with pair numbers
// following, and cells reference opponents by pair number.
func TestBuildCrossTables(t *testing.T) {
	tourn := &Tournament{ID: uuid.New(), Format: FormatSwiss, CurrentRound: 1}
	players := []Player{
		{ID: uuid.New(), DisplayName: "Alice", Rating: 1400, Section: "Open"},
		{ID: uuid.New(), DisplayName: "Bob", Rating: 1500, Section: "Open"},
	}
	aliceID, bobID := players[0].ID, players[1].ID

	pairings := []Pairing{{
		ID: uuid.New(), TournamentID: tourn.ID, RoundNumber: 1,
		Section: "Open", BoardNumber: 1, WhiteID: aliceID, BlackID: &bobID,
		Result: ResultWhiteWin,
	}}
	results := []Result{
		{PlayerID: aliceID, PairingID: pairings[0].ID, Points: 1.0,
			Code: ResultWhiteWin},
		{PlayerID: bobID, PairingID: pairings[0].ID, Points: 0.0,
			Code: ResultWhiteWin},
	}

	tables := BuildCrossTables(tourn, players, pairings, results)
	if len(tables) != 1 {
		t.Fatalf("tables = %d; want 1", len(tables))
	}
	xt := tables[0]
	if xt.Section != "Open" || xt.Rounds != 1 || len(xt.Rows) != 2 {
		t.Fatalf("table = %+v; want Open with 1 round and 2 rows", xt)
	}

	// Alice won, so despite the lower rating she holds pair number one.
	if xt.Rows[0].Player.DisplayName != "Alice" || xt.Rows[0].PairNum != 1 {
		t.Errorf("row 0 = %v #%d; want Alice #1",
			xt.Rows[0].Player.DisplayName, xt.Rows[0].PairNum)
	}

	alice := xt.Rows[0].Cells[0]
	if alice.Opponent != 2 || alice.Color != ColorWhite || alice.Points != 1.0 ||
		!alice.Played {
		t.Errorf("alice cell = %+v; want win as white over #2", alice)
	}
	bob := xt.Rows[1].Cells[0]
	if bob.Opponent != 1 || bob.Color != ColorBlack || bob.Points != 0.0 {
		t.Errorf("bob cell = %+v; want loss as black to #1", bob)
	}

	out := BuildCrossTableOutput(&xt, false)
	for _, want := range []string{"No", "Name", "R1", "W2(w)", "L1(b)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

// TestBuildCrossTablesQuadSections verifies quad wallcharts group players
// by their generated section homes rather than the roster section.
func TestBuildCrossTablesQuadSections(t *testing.T) {
	tourn := &Tournament{ID: uuid.New(), Format: FormatQuad, CurrentRound: 1}
	players := []Player{
		{ID: uuid.New(), DisplayName: "Alice", Rating: 1900},
		{ID: uuid.New(), DisplayName: "Bob", Rating: 1800},
	}
	bobID := players[1].ID

	pairings := []Pairing{{
		ID: uuid.New(), TournamentID: tourn.ID, RoundNumber: 1,
		Section: "quad-1", BoardNumber: 1, WhiteID: players[0].ID,
		BlackID: &bobID, Result: ResultDraw,
	}}

	tables := BuildCrossTables(tourn, players, pairings, nil)
	if len(tables) != 1 || tables[0].Section != "quad-1" {
		t.Fatalf("tables = %+v; want one quad-1 table", tables)
	}
}

// TestBuildCrossTablesOutputEmpty verifies the placeholder before any
// pairings exist.
func TestBuildCrossTablesOutputEmpty(t *testing.T) {
	if got := BuildCrossTablesOutput(nil); got != "No pairings generated yet\n" {
		t.Errorf("empty output = %q", got)
	}
}

// TestBuildCrossTableOutputForfeitFootnote verifies the forfeit footnote
// appears only when a forfeit cell rendered.
func TestBuildCrossTableOutputForfeitFootnote(t *testing.T) {
	xt := &CrossTable{
		Section: "Open",
		Rounds:  1,
		Rows: []CrossTableRow{{
			PairNum: 1,
			Player:  Player{DisplayName: "Alice", Rating: 1500},
			Points:  1.0,
			Cells: []CrossCell{{Round: 1, Opponent: 2, Points: 1.0,
				Played: true, Forfeit: true}},
		}},
	}

	out := BuildCrossTableOutput(xt, false)
	if !strings.Contains(out, "decided by forfeit") {
		t.Errorf("output missing forfeit footnote:\n%s", out)
	}

	xt.Rows[0].Cells[0].Forfeit = false
	out = BuildCrossTableOutput(xt, false)
	if strings.Contains(out, "decided by forfeit") {
		t.Errorf("footnote printed without forfeits:\n%s", out)
	}
}
