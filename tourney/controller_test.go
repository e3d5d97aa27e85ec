/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mikeb26/tourneyd/store"
	"github.com/mikeb26/tourneyd/tourney"
)

// eventLog collects controller events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []tourney.Event
}

func (l *eventLog) Publish(ev tourney.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, ev)
}

func (l *eventLog) kinds() []tourney.EventKind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]tourney.EventKind, 0, len(l.events))
	for _, ev := range l.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

// harness wires the service layer onto the in-memory store the way
// cmd/tourneyd does.
type harness struct {
	store      *store.Memory
	registry   *tourney.Registry
	controller *tourney.Controller
	recorder   *tourney.Recorder
	calc       *tourney.Calculator
	events     *eventLog
	names      map[uuid.UUID]string
}

func newHarness() *harness {
	st := store.NewMemory()
	rg := tourney.NewRegistry(st)
	events := &eventLog{}
	return &harness{
		store:      st,
		registry:   rg,
		controller: tourney.NewController(st, rg, tourney.NewEngine(), events),
		recorder:   tourney.NewRecorder(st),
		calc:       tourney.NewCalculator(st),
		events:     events,
		names:      make(map[uuid.UUID]string),
	}
}

func (h *harness) createTournament(t *testing.T, format tourney.Format,
	rounds int) *tourney.Tournament {

	t.Helper()
	tourn := &tourney.Tournament{
		Name:        "Test Event",
		Format:      format,
		TotalRounds: rounds,
	}
	if err := h.registry.CreateTournament(context.Background(), tourn); err != nil {
		t.Fatalf("CreateTournament failed: %v", err)
	}
	return tourn
}

func (h *harness) register(t *testing.T, tid uuid.UUID, name string,
	rating int, byes ...int) *tourney.Player {

	t.Helper()
	return h.registerIn(t, tid, name, rating, "", byes...)
}

func (h *harness) registerIn(t *testing.T, tid uuid.UUID, name string,
	rating int, section string, byes ...int) *tourney.Player {

	t.Helper()
	p := &tourney.Player{
		TournamentID: tid,
		DisplayName:  name,
		Rating:       rating,
		Section:      section,
		ByeRounds:    byes,
	}
	if err := h.registry.RegisterPlayer(context.Background(), p); err != nil {
		t.Fatalf("RegisterPlayer(%v) failed: %v", name, err)
	}
	h.names[p.ID] = name
	return p
}

// label renders a board as "white-black", "name:bye", or "name:unpaired".
func (h *harness) label(p *tourney.Pairing) string {
	switch p.ByeType {
	case tourney.ByeTypeBye:
		return h.names[p.WhiteID] + ":bye"
	case tourney.ByeTypeUnpaired:
		return h.names[p.WhiteID] + ":unpaired"
	}
	return h.names[p.WhiteID] + "-" + h.names[*p.BlackID]
}

func (h *harness) labels(pairings []tourney.Pairing) string {
	out := make([]string, 0, len(pairings))
	for idx := range pairings {
		out = append(out, h.label(&pairings[idx]))
	}
	return strings.Join(out, " ")
}

func (h *harness) record(t *testing.T, pairingID uuid.UUID,
	code tourney.ResultCode) {

	t.Helper()
	if err := h.recorder.RecordGameResult(context.Background(), pairingID,
		code); err != nil {
		t.Fatalf("RecordGameResult failed: %v", err)
	}
}

// recordAll records a white win on every game board and the matching bye
// result on every bye board.
func (h *harness) recordAll(t *testing.T, pairings []tourney.Pairing) {
	t.Helper()
	for idx := range pairings {
		p := &pairings[idx]
		if p.IsByePairing() {
			err := h.recorder.RecordByeResult(context.Background(), p.ID,
				p.ByeType)
			if err != nil {
				t.Fatalf("RecordByeResult failed: %v", err)
			}
			continue
		}
		h.record(t, p.ID, tourney.ResultWhiteWin)
	}
}

// TestRoundLifecycle walks a four player Swiss from draft to completion:
// generation, the incomplete-round gate with its missing board detail,
// advancement, and the completion event.
func TestRoundLifecycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 2)
	h.register(t, tourn.ID, "Alice", 1800)
	h.register(t, tourn.ID, "Bob", 1700)
	h.register(t, tourn.ID, "Cara", 1600)
	h.register(t, tourn.ID, "Dan", 1500)

	sum, err := h.controller.GeneratePairings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("GeneratePairings failed: %v", err)
	}
	if sum.Round != 1 || sum.Status != tourney.StatusActive {
		t.Fatalf("round 1 summary = %+v", sum)
	}
	if got := h.labels(sum.Pairings); got != "Alice-Cara Bob-Dan" {
		t.Fatalf("round 1 boards = %q; want %q", got, "Alice-Cara Bob-Dan")
	}

	progress, err := h.controller.Progress(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress.Complete || len(progress.Sections) != 1 {
		t.Fatalf("progress = %+v; want one incomplete section", progress)
	}
	sp := progress.Sections[0]
	if sp.Section != "Open" || sp.Boards != 2 || sp.Recorded != 0 ||
		len(sp.MissingBoards) != 2 {
		t.Errorf("section progress = %+v", sp)
	}

	if _, err := h.controller.AdvanceRound(ctx, tourn.ID); !tourney.IsKind(err, tourney.ErrState) {
		t.Fatalf("AdvanceRound(incomplete) = %v; want state error", err)
	}

	h.record(t, sum.Pairings[0].ID, tourney.ResultWhiteWin)
	_, err = h.controller.AdvanceRound(ctx, tourn.ID)
	if !tourney.IsKind(err, tourney.ErrState) {
		t.Fatalf("AdvanceRound(one board left) = %v; want state error", err)
	}
	if detail := tourney.DetailOf(err); !strings.Contains(detail, "missing boards [2]") {
		t.Errorf("state detail = %q; want the unrecorded board listed", detail)
	}

	h.record(t, sum.Pairings[1].ID, tourney.ResultWhiteWin)
	sum2, err := h.controller.AdvanceRound(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}
	if sum2.Round != 2 {
		t.Fatalf("advanced to round %v; want 2", sum2.Round)
	}
	if got := h.labels(sum2.Pairings); got != "Bob-Alice Cara-Dan" {
		t.Errorf("round 2 boards = %q; want %q", got, "Bob-Alice Cara-Dan")
	}

	h.record(t, sum2.Pairings[0].ID, tourney.ResultDraw)
	h.record(t, sum2.Pairings[1].ID, tourney.ResultBlackWin)

	final, err := h.controller.AdvanceRound(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("AdvanceRound(final) failed: %v", err)
	}
	if final.Status != tourney.StatusCompleted || final.Round != 2 {
		t.Fatalf("final summary = %+v; want completed at round 2", final)
	}

	stored, err := h.store.Tournaments().Get(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if stored.Status != tourney.StatusCompleted || stored.CurrentRound != 2 {
		t.Errorf("stored tournament = status %v round %v", stored.Status,
			stored.CurrentRound)
	}

	if _, err := h.controller.GeneratePairings(ctx, tourn.ID); !tourney.IsKind(err, tourney.ErrState) {
		t.Errorf("GeneratePairings(completed) = %v; want state error", err)
	}

	wantKinds := []tourney.EventKind{
		tourney.EventRoundStarted,
		tourney.EventRoundStarted,
		tourney.EventTournamentComplete,
	}
	kinds := h.events.kinds()
	if len(kinds) != len(wantKinds) {
		t.Fatalf("events = %v; want %v", kinds, wantKinds)
	}
	for ii := range wantKinds {
		if kinds[ii] != wantKinds[ii] {
			t.Errorf("event %d = %v; want %v", ii, kinds[ii], wantKinds[ii])
		}
	}
}

// TestRegenerateRound verifies re-pairing is deterministic, blocked before
// any round exists, and blocked once a result is recorded.
func TestRegenerateRound(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 3)
	h.register(t, tourn.ID, "Alice", 1800)
	h.register(t, tourn.ID, "Bob", 1700)
	h.register(t, tourn.ID, "Cara", 1600)
	h.register(t, tourn.ID, "Dan", 1500)

	if _, err := h.controller.RegenerateRound(ctx, tourn.ID); !tourney.IsKind(err, tourney.ErrState) {
		t.Fatalf("RegenerateRound(no rounds) = %v; want state error", err)
	}

	sum, err := h.controller.GeneratePairings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("GeneratePairings failed: %v", err)
	}

	again, err := h.controller.RegenerateRound(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("RegenerateRound failed: %v", err)
	}
	if again.Round != 1 {
		t.Errorf("regenerated round = %v; want 1", again.Round)
	}
	if h.labels(again.Pairings) != h.labels(sum.Pairings) {
		t.Errorf("regeneration changed the boards: %q vs %q",
			h.labels(again.Pairings), h.labels(sum.Pairings))
	}

	h.record(t, again.Pairings[0].ID, tourney.ResultWhiteWin)
	_, err = h.controller.RegenerateRound(ctx, tourn.ID)
	if !tourney.IsKind(err, tourney.ErrState) {
		t.Fatalf("RegenerateRound(results exist) = %v; want state error", err)
	}
	if detail := tourney.DetailOf(err); !strings.Contains(detail, "correct results") {
		t.Errorf("state detail = %q", detail)
	}

	// GeneratePairings routes to the same guard once a round exists
	if _, err := h.controller.GeneratePairings(ctx, tourn.ID); !tourney.IsKind(err, tourney.ErrState) {
		t.Errorf("GeneratePairings(results exist) = %v; want state error", err)
	}
}

// TestPairSection verifies incremental section pairing: one section paired
// from scratch, progress gating on the unpaired remainder, then the second
// section joining the same round.
func TestPairSection(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatSwiss, 2)
	h.register(t, tourn.ID, "Alice", 1800)
	h.register(t, tourn.ID, "Bob", 1700)

	h.registerIn(t, tourn.ID, "Cara", 1300, "U1400")
	h.registerIn(t, tourn.ID, "Dan", 1200, "U1400")

	sum, err := h.controller.PairSection(ctx, tourn.ID, "Open")
	if err != nil {
		t.Fatalf("PairSection failed: %v", err)
	}
	if sum.Round != 1 || len(sum.Pairings) != 1 {
		t.Fatalf("section summary = %+v; want one Open board", sum)
	}

	progress, err := h.controller.Progress(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("Progress failed: %v", err)
	}
	if progress.Complete {
		t.Errorf("progress complete with an unpaired section")
	}

	if _, err := h.controller.AdvanceRound(ctx, tourn.ID); !tourney.IsKind(err, tourney.ErrState) {
		t.Fatalf("AdvanceRound(unpaired section) = %v; want state error", err)
	}
}

// TestPairSectionQuad verifies quads cannot be paired one generated section
// at a time.
func TestPairSectionQuad(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatQuad, tourney.QuadRounds)
	for ii, name := range []string{"a", "b", "c", "d"} {
		h.register(t, tourn.ID, name, 1800-ii*100)
	}

	_, err := h.controller.PairSection(ctx, tourn.ID, "quad-1")
	if !tourney.IsKind(err, tourney.ErrValidation) {
		t.Errorf("PairSection(quad) = %v; want validation error", err)
	}
}

// TestQuadLifecycle verifies a quad event pairs its generated sections
// together and keeps them across rounds.
func TestQuadLifecycle(t *testing.T) {
	h := newHarness()
	ctx := context.Background()
	tourn := h.createTournament(t, tourney.FormatQuad, tourney.QuadRounds)
	names := []string{"Ann", "Ben", "Cal", "Deb", "Eli", "Fay", "Gus", "Hal"}
	for ii, name := range names {
		h.register(t, tourn.ID, name, 2000-ii*100)
	}

	sum, err := h.controller.GeneratePairings(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("GeneratePairings failed: %v", err)
	}
	if len(sum.Pairings) != 4 {
		t.Fatalf("round 1 boards = %d; want 4", len(sum.Pairings))
	}
	want := "Ann-Deb Ben-Cal Eli-Hal Fay-Gus"
	if got := h.labels(sum.Pairings); got != want {
		t.Errorf("round 1 boards = %q; want %q", got, want)
	}

	h.recordAll(t, sum.Pairings)
	sum2, err := h.controller.AdvanceRound(ctx, tourn.ID)
	if err != nil {
		t.Fatalf("AdvanceRound failed: %v", err)
	}
	for idx := range sum2.Pairings {
		sec := sum2.Pairings[idx].Section
		if sec != "quad-1" && sec != "quad-2" {
			t.Errorf("round 2 board %d in section %q", idx, sec)
		}
	}
}

// TestControllerUnknownTournament verifies lookups surface not-found errors.
func TestControllerUnknownTournament(t *testing.T) {
	h := newHarness()
	ctx := context.Background()

	if _, err := h.controller.GeneratePairings(ctx, uuid.New()); !tourney.IsKind(err, tourney.ErrNotFound) {
		t.Errorf("GeneratePairings(unknown) = %v; want not found", err)
	}
	if _, err := h.controller.Progress(ctx, uuid.New()); !tourney.IsKind(err, tourney.ErrNotFound) {
		t.Errorf("Progress(unknown) = %v; want not found", err)
	}
	if _, err := h.controller.AdvanceRound(ctx, uuid.New()); !tourney.IsKind(err, tourney.ErrNotFound) {
		t.Errorf("AdvanceRound(unknown) = %v; want not found", err)
	}
}
