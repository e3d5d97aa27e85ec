/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"

	"github.com/google/uuid"
)

// TournamentRepo persists tournaments.
type TournamentRepo interface {
	Create(ctx context.Context, t *Tournament) error
	Get(ctx context.Context, id uuid.UUID) (*Tournament, error)
	List(ctx context.Context) ([]Tournament, error)
	// UpdateStatus advances the lifecycle fields in one write.
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status,
		currentRound int) error
	// ListSections returns the union of declared sections and sections
	// actually present on the roster, in display order.
	ListSections(ctx context.Context, id uuid.UUID) ([]string, error)
}

// PlayerRepo persists tournament rosters.
type PlayerRepo interface {
	Create(ctx context.Context, p *Player) error
	Get(ctx context.Context, id uuid.UUID) (*Player, error)
	ListForTournament(ctx context.Context, tournamentID uuid.UUID) ([]Player, error)
	ListActiveInSection(ctx context.Context, tournamentID uuid.UUID,
		section string) ([]Player, error)
	GetIntentionalByes(ctx context.Context, playerID uuid.UUID) ([]int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status PlayerStatus) error
	UpdateRating(ctx context.Context, id uuid.UUID, rating int) error
	UpdateTeam(ctx context.Context, id uuid.UUID, teamID uuid.UUID) error
}

// TeamRepo persists team rosters for team formats.
type TeamRepo interface {
	Create(ctx context.Context, t *Team) error
	ListForTournament(ctx context.Context, tournamentID uuid.UUID) ([]Team, error)
}

// PairingRepo persists round pairings.
type PairingRepo interface {
	Get(ctx context.Context, id uuid.UUID) (*Pairing, error)
	// ListByTournamentRoundSection returns one round's boards. An empty
	// section matches all sections.
	ListByTournamentRoundSection(ctx context.Context, tournamentID uuid.UUID,
		round int, section string) ([]Pairing, error)
	// ListHistoricalInSection returns all boards of rounds strictly before
	// the given round, for opponent and color history.
	ListHistoricalInSection(ctx context.Context, tournamentID uuid.UUID,
		section string, beforeRound int) ([]Pairing, error)
	InsertBatch(ctx context.Context, pairings []Pairing) error
	// DeleteRound discards one round's boards ahead of re-pairing. An
	// empty section matches all sections.
	DeleteRound(ctx context.Context, tournamentID uuid.UUID, round int,
		section string) error
	UpdateResult(ctx context.Context, id uuid.UUID, code ResultCode) error
}

// ResultRepo persists per-player results.
type ResultRepo interface {
	InsertForPairing(ctx context.Context, pairingID uuid.UUID,
		rows []Result) error
	ListForPlayer(ctx context.Context, tournamentID,
		playerID uuid.UUID) ([]Result, error)
	ListForTournament(ctx context.Context, tournamentID uuid.UUID) ([]Result, error)
	// DeleteForPairing backs result corrections; the replacement rows are
	// written in the same transaction.
	DeleteForPairing(ctx context.Context, pairingID uuid.UUID) error
}

// Store bundles the repositories over one backing database. Transact runs
// fn against a store whose writes commit or roll back together.
type Store interface {
	Tournaments() TournamentRepo
	Players() PlayerRepo
	Teams() TeamRepo
	Pairings() PairingRepo
	Results() ResultRepo
	Transact(ctx context.Context, fn func(Store) error) error
}
