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

// TestCreateTournamentValidation verifies draft tournaments are rejected or
// normalized before they reach the store.
func TestCreateTournamentValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	cases := []struct {
		name    string
		tourn   tourney.Tournament
		wantErr bool
	}{
		{"empty name", tourney.Tournament{Name: "   ",
			Format: tourney.FormatSwiss, TotalRounds: 4}, true},
		{"zero rounds", tourney.Tournament{Name: "Club Open",
			Format: tourney.FormatSwiss, TotalRounds: 0}, true},
		{"quad round count", tourney.Tournament{Name: "Club Quads",
			Format: tourney.FormatQuad, TotalRounds: 4}, true},
		{"valid quad", tourney.Tournament{Name: "Club Quads",
			Format: tourney.FormatQuad, TotalRounds: 3}, false},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			tourn := c.tourn
			err := h.registry.CreateTournament(ctx, &tourn)
			if c.wantErr {
				if !tourney.IsKind(err, tourney.ErrValidation) {
					t.Errorf("CreateTournament = %v; want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTournament failed: %v", err)
			}
			if tourn.Status != tourney.StatusDraft || tourn.CurrentRound != 0 {
				t.Errorf("new tournament status = %v round %v; want draft round 0",
					tourn.Status, tourn.CurrentRound)
			}
		})
	}

	// interior whitespace collapses so duplicate detection can be textual
	tourn := tourney.Tournament{Name: "  Winter   Open\t2026 ",
		Format: tourney.FormatSwiss, TotalRounds: 4}
	if err := h.registry.CreateTournament(ctx, &tourn); err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	if tourn.Name != "Winter Open 2026" {
		t.Errorf("normalized name = %q; want %q", tourn.Name, "Winter Open 2026")
	}
}

// TestRegisterPlayerValidation verifies roster entries are checked against
// the tournament and the existing roster.
func TestRegisterPlayerValidation(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 4)

	first := &tourney.Player{TournamentID: tourn.ID, DisplayName: "Ann",
		Rating: 2000, UscfID: 12345678}
	if err := h.registry.RegisterPlayer(ctx, first); err != nil {
		t.Fatalf("RegisterPlayer failed: %v", err)
	}
	if first.Section != tourney.DefaultSection {
		t.Errorf("default section = %q; want %q", first.Section,
			tourney.DefaultSection)
	}
	if first.ID == uuid.Nil || first.Status != tourney.PlayerActive {
		t.Errorf("registered player = %+v; want active with assigned id", first)
	}

	cases := []struct {
		name   string
		player tourney.Player
		kind   tourney.ErrKind
	}{
		{"empty name", tourney.Player{TournamentID: tourn.ID,
			DisplayName: " ", Rating: 1500}, tourney.ErrValidation},
		{"rating too high", tourney.Player{TournamentID: tourn.ID,
			DisplayName: "Ben", Rating: 3500}, tourney.ErrValidation},
		{"bye round zero", tourney.Player{TournamentID: tourn.ID,
			DisplayName: "Ben", Rating: 1500,
			ByeRounds: []int{0}}, tourney.ErrValidation},
		{"bye round beyond schedule", tourney.Player{TournamentID: tourn.ID,
			DisplayName: "Ben", Rating: 1500,
			ByeRounds: []int{5}}, tourney.ErrValidation},
		{"duplicate name", tourney.Player{TournamentID: tourn.ID,
			DisplayName: "Ann", Rating: 1500}, tourney.ErrConflict},
		{"duplicate uscf id", tourney.Player{TournamentID: tourn.ID,
			DisplayName: "Ben", Rating: 1500,
			UscfID: 12345678}, tourney.ErrConflict},
		{"unknown tournament", tourney.Player{TournamentID: uuid.New(),
			DisplayName: "Ben", Rating: 1500}, tourney.ErrNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p := c.player
			err := h.registry.RegisterPlayer(ctx, &p)
			if !tourney.IsKind(err, c.kind) {
				t.Errorf("RegisterPlayer = %v; want %v", err, c.kind)
			}
		})
	}

	// players without a federation id never collide on it
	second := &tourney.Player{TournamentID: tourn.ID, DisplayName: "Ben",
		Rating: 1500}
	if err := h.registry.RegisterPlayer(ctx, second); err != nil {
		t.Errorf("RegisterPlayer without uscf id = %v; want nil", err)
	}

	err := h.store.Tournaments().UpdateStatus(ctx, tourn.ID,
		tourney.StatusCompleted, 4)
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	late := &tourney.Player{TournamentID: tourn.ID, DisplayName: "Cal",
		Rating: 1500}
	if err := h.registry.RegisterPlayer(ctx, late); !tourney.IsKind(err, tourney.ErrState) {
		t.Errorf("RegisterPlayer after completion = %v; want state error", err)
	}
}

// TestWithdrawPlayer verifies withdrawal is idempotent and removes the
// player from the pairable pool without touching recorded results.
func TestWithdrawPlayer(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 3)
	ann := h.register(t, tourn.ID, "Ann", 2000)
	h.register(t, tourn.ID, "Ben", 1800)
	cal := h.register(t, tourn.ID, "Cal", 1600, 2)

	if err := h.registry.WithdrawPlayer(ctx, ann.ID); err != nil {
		t.Fatalf("WithdrawPlayer failed: %v", err)
	}
	if err := h.registry.WithdrawPlayer(ctx, ann.ID); err != nil {
		t.Errorf("repeat withdrawal = %v; want nil", err)
	}
	if err := h.registry.WithdrawPlayer(ctx, uuid.New()); !tourney.IsKind(err, tourney.ErrNotFound) {
		t.Errorf("WithdrawPlayer(unknown) = %v; want not found", err)
	}

	active, err := h.registry.ListActive(ctx, tourn.ID, "")
	if err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("active roster size = %v; want 2", len(active))
	}
	for _, p := range active {
		if p.ID == ann.ID {
			t.Errorf("withdrawn player still listed active")
		}
	}

	// round two: Cal sits out on a registered bye
	pairable, byes, err := h.registry.PairableForRound(ctx, tourn.ID, "", 2)
	if err != nil {
		t.Fatalf("PairableForRound failed: %v", err)
	}
	if len(pairable) != 1 || pairable[0].DisplayName != "Ben" {
		t.Errorf("pairable = %+v; want just Ben", pairable)
	}
	if len(byes) != 1 || byes[0].ID != cal.ID {
		t.Errorf("registered byes = %+v; want just Cal", byes)
	}
}

// TestRegisterTeam verifies team creation stamps its members and rejects
// rosters that cannot form a valid lineup.
func TestRegisterTeam(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatTeamSwiss, 4)
	a1 := h.register(t, tourn.ID, "Ann", 2000)
	a2 := h.register(t, tourn.ID, "Ben", 1800)
	b1 := h.register(t, tourn.ID, "Cal", 1700)

	other := h.createTournament(t, tourney.FormatSwiss, 4)
	outsider := h.register(t, other.ID, "Deb", 1500)

	cases := []struct {
		name string
		team tourney.Team
		kind tourney.ErrKind
	}{
		{"no boards", tourney.Team{TournamentID: tourn.ID,
			Name: "Alpha"}, tourney.ErrValidation},
		{"empty name", tourney.Team{TournamentID: tourn.ID, Name: " ",
			BoardOrder: []uuid.UUID{a1.ID}}, tourney.ErrValidation},
		{"unknown member", tourney.Team{TournamentID: tourn.ID, Name: "Alpha",
			BoardOrder: []uuid.UUID{uuid.New()}}, tourney.ErrNotFound},
		{"member from another event", tourney.Team{TournamentID: tourn.ID,
			Name: "Alpha", BoardOrder: []uuid.UUID{outsider.ID}},
			tourney.ErrValidation},
		{"non team tournament", tourney.Team{TournamentID: other.ID,
			Name: "Alpha", BoardOrder: []uuid.UUID{outsider.ID}},
			tourney.ErrValidation},
		{"unknown tournament", tourney.Team{TournamentID: uuid.New(),
			Name: "Alpha", BoardOrder: []uuid.UUID{a1.ID}}, tourney.ErrNotFound},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			team := c.team
			err := h.registry.RegisterTeam(ctx, &team)
			if !tourney.IsKind(err, c.kind) {
				t.Errorf("RegisterTeam = %v; want %v", err, c.kind)
			}
		})
	}

	alpha := &tourney.Team{TournamentID: tourn.ID, Name: "Alpha",
		BoardOrder: []uuid.UUID{a1.ID, a2.ID}}
	if err := h.registry.RegisterTeam(ctx, alpha); err != nil {
		t.Fatalf("RegisterTeam failed: %v", err)
	}
	for _, pid := range []uuid.UUID{a1.ID, a2.ID} {
		p, err := h.store.Players().Get(ctx, pid)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if p.TeamID != alpha.ID {
			t.Errorf("member %v team = %v; want %v", p.DisplayName, p.TeamID,
				alpha.ID)
		}
	}

	// a player belongs to at most one team
	beta := &tourney.Team{TournamentID: tourn.ID, Name: "Beta",
		BoardOrder: []uuid.UUID{b1.ID, a2.ID}}
	if err := h.registry.RegisterTeam(ctx, beta); !tourney.IsKind(err, tourney.ErrConflict) {
		t.Errorf("RegisterTeam(shared member) = %v; want conflict", err)
	}
}

// TestUpdateRating verifies rating corrections persist and respect the
// supported range.
func TestUpdateRating(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 3)
	ann := h.register(t, tourn.ID, "Ann", 2000)

	if err := h.registry.UpdateRating(ctx, ann.ID, 3200); !tourney.IsKind(err, tourney.ErrValidation) {
		t.Errorf("UpdateRating(3200) = %v; want validation error", err)
	}
	if err := h.registry.UpdateRating(ctx, uuid.New(), 1500); !tourney.IsKind(err, tourney.ErrNotFound) {
		t.Errorf("UpdateRating(unknown) = %v; want not found", err)
	}
	if err := h.registry.UpdateRating(ctx, ann.ID, 2000); err != nil {
		t.Errorf("UpdateRating(unchanged) = %v; want nil", err)
	}

	if err := h.registry.UpdateRating(ctx, ann.ID, 2050); err != nil {
		t.Fatalf("UpdateRating failed: %v", err)
	}
	p, err := h.store.Players().Get(ctx, ann.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if p.Rating != 2050 {
		t.Errorf("rating = %v; want 2050", p.Rating)
	}
}

// TestPlayerHistoryViews verifies color history, opponent history, and the
// recorded games view over a small two round event.
func TestPlayerHistoryViews(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 2)
	ann := h.register(t, tourn.ID, "Ann", 2000)
	ben := h.register(t, tourn.ID, "Ben", 1800)
	eli := h.register(t, tourn.ID, "Eli", 1200)

	sum, err := h.controller.GeneratePairings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("GeneratePairings failed: %v", err)
	}
	if got := h.labels(sum.Pairings); got != "Ann-Ben Eli:bye" {
		t.Fatalf("round 1 boards = %q", got)
	}
	h.record(t, sum.Pairings[0].ID, tourney.ResultWhiteWin)
	if err := h.recorder.RecordByeResult(ctx, sum.Pairings[1].ID, tourney.ByeTypeBye); err != nil {
		t.Fatalf("RecordByeResult failed: %v", err)
	}

	sum, err = h.controller.AdvanceRound(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}
	if got := h.labels(sum.Pairings); got != "Eli-Ann Ben:bye" {
		t.Fatalf("round 2 boards = %q", got)
	}
	h.record(t, sum.Pairings[0].ID, tourney.ResultBlackWin)

	colors, err := h.registry.ColorHistory(ctx, ann.ID)
	if err != nil {
		t.Fatalf("ColorHistory failed: %v", err)
	}
	want := []tourney.ColorGame{
		{Round: 1, Color: tourney.ColorWhite},
		{Round: 2, Color: tourney.ColorBlack},
	}
	if len(colors) != len(want) {
		t.Fatalf("color history = %+v; want %+v", colors, want)
	}
	for ii, cg := range colors {
		if cg != want[ii] {
			t.Errorf("color history[%v] = %+v; want %+v", ii, cg, want[ii])
		}
	}

	opponents, err := h.registry.OpponentsOf(ctx, ann.ID)
	if err != nil {
		t.Fatalf("OpponentsOf failed: %v", err)
	}
	if len(opponents) != 2 || opponents[ben.ID] != 1 || opponents[eli.ID] != 2 {
		t.Errorf("opponents = %v; want Ben in round 1 and Eli in round 2",
			opponents)
	}

	// byes never count as recorded games
	p, games, earned, err := h.registry.RecordedGames(ctx, eli.ID)
	if err != nil {
		t.Fatalf("RecordedGames failed: %v", err)
	}
	if p.ID != eli.ID || len(games) != 1 || earned != 0.0 {
		t.Errorf("recorded games = %v boards, %v points; want 1 board, 0 points",
			len(games), earned)
	}
	_, games, earned, err = h.registry.RecordedGames(ctx, ann.ID)
	if err != nil {
		t.Fatalf("RecordedGames failed: %v", err)
	}
	if len(games) != 2 || earned != 2.0 {
		t.Errorf("recorded games = %v boards, %v points; want 2 boards, 2 points",
			len(games), earned)
	}
}
