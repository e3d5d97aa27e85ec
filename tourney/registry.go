/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/mikeb26/tourneyd/internal"
)

const (
	MinRating = 0
	MaxRating = 3000
)

// Registry owns roster state: tournament creation, player and team
// registration, withdrawals, and the pairing relevant views of a roster
// (pairable players, color history, opponent history).
type Registry struct {
	store Store
}

func NewRegistry(st Store) *Registry {
	return &Registry{store: st}
}

// CreateTournament validates and persists a new tournament in draft state.
func (rg *Registry) CreateTournament(ctx context.Context, t *Tournament) error {
	t.Name = internal.NormalizeName(t.Name)
	if t.Name == "" {
		return Errorf(ErrValidation, "tournament name is required")
	}
	if t.TotalRounds < 1 {
		return Errorf(ErrValidation, "total rounds must be at least 1")
	}
	if t.Format == FormatQuad && t.TotalRounds != QuadRounds {
		return Errorf(ErrValidation,
			"quad tournaments always run %v rounds", QuadRounds)
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.Status = StatusDraft
	t.CurrentRound = 0
	for idx, sec := range t.Sections {
		t.Sections[idx] = internal.NormalizeName(sec)
	}

	err := rg.store.Tournaments().Create(ctx, t)
	if err != nil {
		return WrapErr(ErrIntegration, err, "unable to create tournament")
	}

	return nil
}

// RegisterPlayer validates and persists a roster entry. Late entries are
// allowed while a tournament is in progress; they are paired from the next
// generated round onward.
func (rg *Registry) RegisterPlayer(ctx context.Context, p *Player) error {
	t, err := rg.store.Tournaments().Get(ctx, p.TournamentID)
	if err != nil {
		return WrapErr(ErrNotFound, err, "no such tournament %v", p.TournamentID)
	}
	if t.Status == StatusCompleted {
		return Errorf(ErrState, "tournament %v has completed", t.Name)
	}

	p.DisplayName = internal.NormalizeName(p.DisplayName)
	if p.DisplayName == "" {
		return Errorf(ErrValidation, "player name is required")
	}
	if p.Rating < MinRating || p.Rating > MaxRating {
		return Errorf(ErrValidation, "rating %v out of range [%v, %v]",
			p.Rating, MinRating, MaxRating)
	}
	for _, r := range p.ByeRounds {
		if r < 1 || r > t.TotalRounds {
			return Errorf(ErrValidation,
				"intentional bye round %v outside rounds 1-%v", r, t.TotalRounds)
		}
	}
	if p.Section == "" {
		p.Section = DefaultSection
	}

	existing, err := rg.store.Players().ListForTournament(ctx, t.ID)
	if err != nil {
		return WrapErr(ErrIntegration, err, "unable to list players")
	}
	for _, other := range existing {
		if other.DisplayName == p.DisplayName {
			return Errorf(ErrConflict, "%v is already registered", p.DisplayName)
		}
		if p.UscfID != 0 && other.UscfID == p.UscfID {
			return Errorf(ErrConflict, "USCF id %v is already registered",
				p.UscfID)
		}
	}

	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	p.Status = PlayerActive

	err = rg.store.Players().Create(ctx, p)
	if err != nil {
		return WrapErr(ErrIntegration, err, "unable to register player")
	}

	return nil
}

// RegisterTeam persists a team and stamps its members with the team id.
// Board order follows the given member order, board one first.
func (rg *Registry) RegisterTeam(ctx context.Context, team *Team) error {
	t, err := rg.store.Tournaments().Get(ctx, team.TournamentID)
	if err != nil {
		return WrapErr(ErrNotFound, err, "no such tournament %v",
			team.TournamentID)
	}
	if t.Format != FormatTeamSwiss {
		return Errorf(ErrValidation, "%v is not a team tournament", t.Name)
	}
	if t.Status == StatusCompleted {
		return Errorf(ErrState, "tournament %v has completed", t.Name)
	}

	team.Name = internal.NormalizeName(team.Name)
	if team.Name == "" {
		return Errorf(ErrValidation, "team name is required")
	}
	if len(team.BoardOrder) == 0 {
		return Errorf(ErrValidation, "team %v has no boards", team.Name)
	}
	if team.Section == "" {
		team.Section = DefaultSection
	}

	members := make([]*Player, 0, len(team.BoardOrder))
	for _, pid := range team.BoardOrder {
		p, err := rg.store.Players().Get(ctx, pid)
		if err != nil {
			return WrapErr(ErrNotFound, err, "no such player %v", pid)
		}
		if p.TournamentID != t.ID {
			return Errorf(ErrValidation, "%v is not registered in %v",
				p.DisplayName, t.Name)
		}
		if p.TeamID != uuid.Nil {
			return Errorf(ErrConflict, "%v is already on a team", p.DisplayName)
		}
		members = append(members, p)
	}

	if team.ID == uuid.Nil {
		team.ID = uuid.New()
	}

	return rg.store.Transact(ctx, func(st Store) error {
		if err := st.Teams().Create(ctx, team); err != nil {
			return WrapErr(ErrIntegration, err, "unable to create team")
		}
		for _, p := range members {
			if err := st.Players().UpdateTeam(ctx, p.ID, team.ID); err != nil {
				return WrapErr(ErrIntegration, err, "unable to assign %v to %v",
					p.DisplayName, team.Name)
			}
		}
		return nil
	})
}

// WithdrawPlayer marks a player withdrawn. Recorded results stand; the
// player is excluded from all future pairing.
func (rg *Registry) WithdrawPlayer(ctx context.Context, playerID uuid.UUID) error {
	p, err := rg.store.Players().Get(ctx, playerID)
	if err != nil {
		return WrapErr(ErrNotFound, err, "no such player %v", playerID)
	}
	if p.Status == PlayerWithdrawn {
		return nil
	}

	err = rg.store.Players().UpdateStatus(ctx, playerID, PlayerWithdrawn)
	if err != nil {
		return WrapErr(ErrIntegration, err, "unable to withdraw %v",
			p.DisplayName)
	}

	return nil
}

// UpdateRating records a corrected rating for a roster entry, e.g. after a
// federation sync. Already-generated pairings keep their original seeding.
func (rg *Registry) UpdateRating(ctx context.Context, playerID uuid.UUID,
	rating int) error {

	if rating < MinRating || rating > MaxRating {
		return Errorf(ErrValidation, "rating %v out of range [%v, %v]",
			rating, MinRating, MaxRating)
	}
	p, err := rg.store.Players().Get(ctx, playerID)
	if err != nil {
		return WrapErr(ErrNotFound, err, "no such player %v", playerID)
	}
	if p.Rating == rating {
		return nil
	}

	err = rg.store.Players().UpdateRating(ctx, playerID, rating)
	if err != nil {
		return WrapErr(ErrIntegration, err, "unable to update rating for %v",
			p.DisplayName)
	}

	return nil
}

// RecordedGames returns a player's completed game boards and the points
// earned in them. Byes and pending boards are excluded, which matches
// what post-event rating estimation wants.
func (rg *Registry) RecordedGames(ctx context.Context,
	playerID uuid.UUID) (*Player, []Pairing, float64, error) {

	p, pairings, err := rg.playerGames(ctx, playerID)
	if err != nil {
		return nil, nil, 0, err
	}

	var games []Pairing
	var earned float64
	for _, pr := range pairings {
		if pr.IsByePairing() || !pr.HasResult() {
			continue
		}
		wp, bp := pr.Result.Points()
		if pr.ColorOf(p.ID) == ColorWhite {
			earned += wp
		} else {
			earned += bp
		}
		games = append(games, pr)
	}

	return p, games, earned, nil
}

// ListActive returns the active players of a section, or of the whole
// tournament when section is empty.
func (rg *Registry) ListActive(ctx context.Context, tournamentID uuid.UUID,
	section string) ([]Player, error) {

	players, err := rg.store.Players().ListActiveInSection(ctx, tournamentID,
		section)
	if err != nil {
		return nil, WrapErr(ErrIntegration, err, "unable to list players")
	}

	return players, nil
}

// PairableForRound splits a section's active players into those to be
// matched this round and those sitting out on a registered bye.
func (rg *Registry) PairableForRound(ctx context.Context,
	tournamentID uuid.UUID, section string, round int) (pairable []Player,
	registeredByes []Player, err error) {

	players, err := rg.ListActive(ctx, tournamentID, section)
	if err != nil {
		return nil, nil, err
	}

	for _, p := range players {
		if p.HasByeInRound(round) {
			registeredByes = append(registeredByes, p)
		} else {
			pairable = append(pairable, p)
		}
	}

	return pairable, registeredByes, nil
}

// ColorGame is one entry of a player's color history.
type ColorGame struct {
	Round int   `json:"round"`
	Color Color `json:"color"`
}

// ColorHistory returns the colors a player has held in played games, in
// round order. Byes carry no color and are omitted.
func (rg *Registry) ColorHistory(ctx context.Context,
	playerID uuid.UUID) ([]ColorGame, error) {

	p, pairings, err := rg.playerGames(ctx, playerID)
	if err != nil {
		return nil, err
	}

	var history []ColorGame
	for _, pr := range pairings {
		if pr.IsByePairing() {
			continue
		}
		history = append(history, ColorGame{
			Round: pr.RoundNumber,
			Color: pr.ColorOf(p.ID),
		})
	}

	return history, nil
}

// OpponentsOf returns every opponent the player has faced, mapped to the
// most recent round of their meeting.
func (rg *Registry) OpponentsOf(ctx context.Context,
	playerID uuid.UUID) (map[uuid.UUID]int, error) {

	p, pairings, err := rg.playerGames(ctx, playerID)
	if err != nil {
		return nil, err
	}

	opponents := make(map[uuid.UUID]int)
	for _, pr := range pairings {
		opp := pr.Opponent(p.ID)
		if opp == uuid.Nil {
			continue
		}
		if pr.RoundNumber > opponents[opp] {
			opponents[opp] = pr.RoundNumber
		}
	}

	return opponents, nil
}

// playerGames returns the player plus every historical pairing involving
// them, ordered by round.
func (rg *Registry) playerGames(ctx context.Context,
	playerID uuid.UUID) (*Player, []Pairing, error) {

	p, err := rg.store.Players().Get(ctx, playerID)
	if err != nil {
		return nil, nil, WrapErr(ErrNotFound, err, "no such player %v", playerID)
	}
	t, err := rg.store.Tournaments().Get(ctx, p.TournamentID)
	if err != nil {
		return nil, nil, WrapErr(ErrNotFound, err, "no such tournament %v",
			p.TournamentID)
	}

	// section left empty: quad pairings live in generated sections that
	// differ from the player's registered one
	all, err := rg.store.Pairings().ListHistoricalInSection(ctx, t.ID, "",
		t.CurrentRound+1)
	if err != nil {
		return nil, nil, WrapErr(ErrIntegration, err, "unable to list pairings")
	}

	var mine []Pairing
	for _, pr := range all {
		if pr.Involves(p.ID) {
			mine = append(mine, pr)
		}
	}
	sort.Slice(mine, func(i, j int) bool {
		return mine[i].RoundNumber < mine[j].RoundNumber
	})

	return p, mine, nil
}
