/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultSectionBudget bounds how long the engine may search for one
// section's pairings before the round attempt is abandoned.
const DefaultSectionBudget = 30 * time.Second

// EventKind labels controller lifecycle events for notification sinks.
type EventKind string

const (
	EventRoundStarted       EventKind = "round_started"
	EventRoundRegenerated   EventKind = "round_regenerated"
	EventTournamentComplete EventKind = "tournament_completed"
)

// Event describes one committed controller action.
type Event struct {
	Kind         EventKind `json:"kind"`
	TournamentID uuid.UUID `json:"tournamentId"`
	Name         string    `json:"name"`
	Round        int       `json:"round"`
	Detail       string    `json:"detail,omitempty"`
}

// Notifier receives events after their transaction commits. Delivery is
// best effort and must not block the caller.
type Notifier interface {
	Publish(ev Event)
}

// Controller owns round progression: it validates the round state machine,
// fans pairing out across sections, persists each round atomically, and
// completes the tournament after the final round. Actions on the same
// tournament are serialized; different tournaments proceed in parallel.
type Controller struct {
	store    Store
	registry *Registry
	engine   *Engine
	notifier Notifier

	// SectionBudget overrides DefaultSectionBudget when positive.
	SectionBudget time.Duration

	locks sync.Map
}

func NewController(st Store, rg *Registry, eng *Engine,
	notifier Notifier) *Controller {

	return &Controller{
		store:    st,
		registry: rg,
		engine:   eng,
		notifier: notifier,
	}
}

// RoundSummary reports one committed controller action.
type RoundSummary struct {
	TournamentID uuid.UUID `json:"tournamentId"`
	Round        int       `json:"round"`
	Status       Status    `json:"status"`
	Pairings     []Pairing `json:"pairings,omitempty"`
	Warnings     []Warning `json:"warnings,omitempty"`
}

// SectionProgress reports result entry for one section of the round in
// progress.
type SectionProgress struct {
	Section       string `json:"section"`
	Boards        int    `json:"boards"`
	Recorded      int    `json:"recorded"`
	MissingBoards []int  `json:"missingBoards,omitempty"`
}

// RoundProgress reports how far the current round is from completion.
type RoundProgress struct {
	Round    int               `json:"round"`
	Complete bool              `json:"complete"`
	Sections []SectionProgress `json:"sections"`
}

// GeneratePairings starts round one when nothing has been paired yet, or
// re-pairs the round in progress when no results have been recorded.
func (c *Controller) GeneratePairings(ctx context.Context,
	tournamentID uuid.UUID) (*RoundSummary, error) {

	defer c.lock(tournamentID)()

	t, err := c.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.CurrentRound == 0 {
		return c.startRound(ctx, t, 1)
	}
	return c.regenerate(ctx, t, "")
}

// RegenerateRound discards and re-pairs the round in progress. Valid only
// while no results have been recorded for it.
func (c *Controller) RegenerateRound(ctx context.Context,
	tournamentID uuid.UUID) (*RoundSummary, error) {

	defer c.lock(tournamentID)()

	t, err := c.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.CurrentRound == 0 {
		return nil, Errorf(ErrState, "%v has no round to regenerate", t.Name)
	}
	return c.regenerate(ctx, t, "")
}

// PairSection re-pairs a single section of the round in progress, leaving
// the other sections' boards alone. Starting from scratch it pairs round
// one for just that section.
func (c *Controller) PairSection(ctx context.Context,
	tournamentID uuid.UUID, section string) (*RoundSummary, error) {

	defer c.lock(tournamentID)()

	t, err := c.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.Format == FormatQuad {
		return nil, Errorf(ErrValidation,
			"quad events pair every generated section together")
	}
	if t.CurrentRound == 0 {
		return c.startRoundSections(ctx, t, 1, []string{section}, "")
	}
	return c.regenerate(ctx, t, section)
}

// AdvanceRound moves the tournament forward: round one from a standing
// start, the next round once every board of the current round has a
// result, and completion after the final round.
func (c *Controller) AdvanceRound(ctx context.Context,
	tournamentID uuid.UUID) (*RoundSummary, error) {

	defer c.lock(tournamentID)()

	t, err := c.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.CurrentRound == 0 {
		return c.startRound(ctx, t, 1)
	}

	progress, err := c.progress(ctx, t)
	if err != nil {
		return nil, err
	}
	if !progress.Complete {
		return nil, Errorf(ErrState, "round %v incomplete: %v",
			t.CurrentRound, progress.missingDetail())
	}

	if t.CurrentRound >= t.TotalRounds {
		err = c.store.Tournaments().UpdateStatus(ctx, t.ID, StatusCompleted,
			t.CurrentRound)
		if err != nil {
			return nil, WrapErr(ErrIntegration, err,
				"unable to complete %v", t.Name)
		}
		c.publish(Event{
			Kind:         EventTournamentComplete,
			TournamentID: t.ID,
			Name:         t.Name,
			Round:        t.CurrentRound,
		})
		return &RoundSummary{
			TournamentID: t.ID,
			Round:        t.CurrentRound,
			Status:       StatusCompleted,
		}, nil
	}

	return c.startRound(ctx, t, t.CurrentRound+1)
}

// Progress reports result entry for the round in progress.
func (c *Controller) Progress(ctx context.Context,
	tournamentID uuid.UUID) (*RoundProgress, error) {

	t, err := c.tournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if t.CurrentRound == 0 {
		return &RoundProgress{}, nil
	}
	return c.progress(ctx, t)
}

func (c *Controller) tournament(ctx context.Context,
	id uuid.UUID) (*Tournament, error) {

	t, err := c.store.Tournaments().Get(ctx, id)
	if err != nil {
		return nil, WrapErr(ErrNotFound, err, "no such tournament %v", id)
	}
	if t.Status == StatusCompleted {
		return nil, Errorf(ErrState, "%v has completed", t.Name)
	}
	return t, nil
}

func (c *Controller) lock(id uuid.UUID) func() {
	mu, _ := c.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (c *Controller) publish(ev Event) {
	if c.notifier == nil {
		return
	}
	c.notifier.Publish(ev)
}

func (c *Controller) budget() time.Duration {
	if c.SectionBudget > 0 {
		return c.SectionBudget
	}
	return DefaultSectionBudget
}

// sectionsFor returns the partitions the engine runs over. Quad events
// run a single pass over the pooled roster; the engine carves the quads.
func (c *Controller) sectionsFor(ctx context.Context,
	t *Tournament) ([]string, error) {

	if t.Format == FormatQuad {
		return []string{""}, nil
	}

	sections, err := c.store.Tournaments().ListSections(ctx, t.ID)
	if err != nil {
		return nil, WrapErr(ErrIntegration, err, "unable to list sections")
	}
	return sections, nil
}

func (c *Controller) startRound(ctx context.Context, t *Tournament,
	round int) (*RoundSummary, error) {

	sections, err := c.sectionsFor(ctx, t)
	if err != nil {
		return nil, err
	}
	return c.startRoundSections(ctx, t, round, sections, "")
}

// startRoundSections pairs the given sections for round, persists the
// boards, and advances the round counter, in one transaction. deleteSec
// names a section whose stale boards are dropped first when re-pairing.
func (c *Controller) startRoundSections(ctx context.Context, t *Tournament,
	round int, sections []string, deleteSec string) (*RoundSummary, error) {

	if round > t.TotalRounds {
		return nil, Errorf(ErrState, "%v has played all %v rounds", t.Name,
			t.TotalRounds)
	}

	pairings, warnings, err := c.pairSections(ctx, t, round, sections)
	if err != nil {
		return nil, err
	}

	err = c.store.Transact(ctx, func(st Store) error {
		if deleteSec != "" {
			err := st.Pairings().DeleteRound(ctx, t.ID, round, deleteSec)
			if err != nil {
				return WrapErr(ErrIntegration, err,
					"unable to clear round %v of %v", round, deleteSec)
			}
		}
		if err := st.Pairings().InsertBatch(ctx, pairings); err != nil {
			return WrapErr(ErrIntegration, err,
				"unable to persist round %v", round)
		}
		err := st.Tournaments().UpdateStatus(ctx, t.ID, StatusActive, round)
		if err != nil {
			return WrapErr(ErrIntegration, err,
				"unable to advance %v to round %v", t.Name, round)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(Event{
		Kind:         EventRoundStarted,
		TournamentID: t.ID,
		Name:         t.Name,
		Round:        round,
		Detail:       fmt.Sprintf("%v boards", len(pairings)),
	})

	return &RoundSummary{
		TournamentID: t.ID,
		Round:        round,
		Status:       StatusActive,
		Pairings:     pairings,
		Warnings:     warnings,
	}, nil
}

// regenerate re-pairs the round in progress, all sections or just one.
func (c *Controller) regenerate(ctx context.Context, t *Tournament,
	section string) (*RoundSummary, error) {

	round := t.CurrentRound
	existing, err := c.store.Pairings().ListByTournamentRoundSection(ctx,
		t.ID, round, section)
	if err != nil {
		return nil, WrapErr(ErrIntegration, err, "unable to list round %v",
			round)
	}
	for idx := range existing {
		if existing[idx].HasResult() {
			return nil, Errorf(ErrState,
				"round %v already has results recorded; correct results instead of re-pairing",
				round)
		}
	}

	sections := []string{section}
	if section == "" {
		sections, err = c.sectionsFor(ctx, t)
		if err != nil {
			return nil, err
		}
	}

	pairings, warnings, err := c.pairSections(ctx, t, round, sections)
	if err != nil {
		return nil, err
	}

	err = c.store.Transact(ctx, func(st Store) error {
		err := st.Pairings().DeleteRound(ctx, t.ID, round, section)
		if err != nil {
			return WrapErr(ErrIntegration, err, "unable to clear round %v",
				round)
		}
		if err := st.Pairings().InsertBatch(ctx, pairings); err != nil {
			return WrapErr(ErrIntegration, err,
				"unable to persist round %v", round)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.publish(Event{
		Kind:         EventRoundRegenerated,
		TournamentID: t.ID,
		Name:         t.Name,
		Round:        round,
		Detail:       fmt.Sprintf("%v boards", len(pairings)),
	})

	return &RoundSummary{
		TournamentID: t.ID,
		Round:        round,
		Status:       t.Status,
		Pairings:     pairings,
		Warnings:     warnings,
	}, nil
}

// pairSections runs the engine over each section concurrently, each under
// its own slice of the pairing budget. Any section failing fails the
// round; nothing is persisted.
func (c *Controller) pairSections(ctx context.Context, t *Tournament,
	round int, sections []string) ([]Pairing, []Warning, error) {

	outs := make([]*Output, len(sections))
	grp, gctx := errgroup.WithContext(ctx)
	for idx, section := range sections {
		grp.Go(func() error {
			sctx, cancel := context.WithTimeout(gctx, c.budget())
			defer cancel()

			in, err := c.registry.BuildSectionInput(sctx, t, section, round)
			if err != nil {
				return err
			}
			out, err := c.engine.Generate(sctx, in)
			if err != nil {
				return err
			}
			outs[idx] = out
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, nil, err
	}

	var pairings []Pairing
	var warnings []Warning
	for _, out := range outs {
		pairings = append(pairings, out.Pairings...)
		warnings = append(warnings, out.Warnings...)
	}
	return pairings, warnings, nil
}

// progress inspects the round in progress: every roster section with
// active players must hold boards, and every board must have a result.
func (c *Controller) progress(ctx context.Context,
	t *Tournament) (*RoundProgress, error) {

	pairings, err := c.store.Pairings().ListByTournamentRoundSection(ctx,
		t.ID, t.CurrentRound, "")
	if err != nil {
		return nil, WrapErr(ErrIntegration, err, "unable to list round %v",
			t.CurrentRound)
	}

	bySection := make(map[string]*SectionProgress)
	for idx := range pairings {
		p := &pairings[idx]
		sp := bySection[p.Section]
		if sp == nil {
			sp = &SectionProgress{Section: p.Section}
			bySection[p.Section] = sp
		}
		sp.Boards++
		if p.HasResult() {
			sp.Recorded++
		} else {
			sp.MissingBoards = append(sp.MissingBoards, p.BoardNumber)
		}
	}

	// sections paired incrementally may not exist yet; count a section
	// with active players and no boards as unpaired
	if t.Format != FormatQuad {
		players, err := c.store.Players().ListForTournament(ctx, t.ID)
		if err != nil {
			return nil, WrapErr(ErrIntegration, err, "unable to list players")
		}
		for idx := range players {
			p := &players[idx]
			if p.Status != PlayerActive {
				continue
			}
			if bySection[p.Section] == nil {
				bySection[p.Section] = &SectionProgress{Section: p.Section}
			}
		}
	}

	progress := &RoundProgress{Round: t.CurrentRound, Complete: true}
	names := make([]string, 0, len(bySection))
	for sec := range bySection {
		names = append(names, sec)
	}
	SortSections(names)
	for _, sec := range names {
		sp := bySection[sec]
		sort.Ints(sp.MissingBoards)
		if sp.Boards == 0 || len(sp.MissingBoards) > 0 {
			progress.Complete = false
		}
		progress.Sections = append(progress.Sections, *sp)
	}

	return progress, nil
}

// missingDetail renders the unfinished sections for state errors.
func (p *RoundProgress) missingDetail() string {
	var parts []string
	for _, sp := range p.Sections {
		switch {
		case sp.Boards == 0:
			parts = append(parts, fmt.Sprintf("%v not yet paired", sp.Section))
		case len(sp.MissingBoards) > 0:
			parts = append(parts, fmt.Sprintf("%v missing boards %v",
				sp.Section, sp.MissingBoards))
		}
	}
	if len(parts) == 0 {
		return "all boards recorded"
	}
	return strings.Join(parts, "; ")
}
