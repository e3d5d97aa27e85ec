/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mikeb26/tourneyd/tourney"
)

// DB is the database backed Store. Sqlite serves single host deployments;
// a postgres style dsn selects the postgres driver instead.
type DB struct {
	db *gorm.DB
}

// Open connects to dsn, migrates the schema, and returns the store.
func Open(dsn string) (*DB, error) {
	var dial gorm.Dialector
	if strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=") {
		dial = postgres.Open(dsn)
	} else {
		dial = sqlite.Open(dsn)
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to open database")
	}
	err = db.AutoMigrate(&tourney.Tournament{}, &tourney.Player{},
		&tourney.Team{}, &tourney.Pairing{}, &tourney.Result{})
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to migrate database schema")
	}

	return &DB{db: db}, nil
}

func (g *DB) Tournaments() tourney.TournamentRepo {
	return dbTournaments{db: g.db}
}
func (g *DB) Players() tourney.PlayerRepo   { return dbPlayers{db: g.db} }
func (g *DB) Teams() tourney.TeamRepo       { return dbTeams{db: g.db} }
func (g *DB) Pairings() tourney.PairingRepo { return dbPairings{db: g.db} }
func (g *DB) Results() tourney.ResultRepo   { return dbResults{db: g.db} }

func (g *DB) Transact(ctx context.Context,
	fn func(tourney.Store) error) error {

	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DB{db: tx})
	})
}

// getErr maps record-not-found onto the not found error kind; everything
// else is an integration failure.
func getErr(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return tourney.WrapErr(tourney.ErrNotFound, err, format, args...)
	}
	return tourney.WrapErr(tourney.ErrIntegration, err, format, args...)
}

type dbTournaments struct {
	db *gorm.DB
}

func (r dbTournaments) Create(ctx context.Context,
	t *tourney.Tournament) error {

	err := r.db.WithContext(ctx).Create(t).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to create tournament %v", t.Name)
	}

	return nil
}

func (r dbTournaments) Get(ctx context.Context,
	id uuid.UUID) (*tourney.Tournament, error) {

	var t tourney.Tournament
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	if err != nil {
		return nil, getErr(err, "no such tournament %v", id)
	}

	return &t, nil
}

func (r dbTournaments) List(ctx context.Context) ([]tourney.Tournament,
	error) {

	var out []tourney.Tournament
	err := r.db.WithContext(ctx).Order("created_at, name").Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list tournaments")
	}

	return out, nil
}

func (r dbTournaments) UpdateStatus(ctx context.Context, id uuid.UUID,
	status tourney.Status, currentRound int) error {

	res := r.db.WithContext(ctx).Model(&tourney.Tournament{}).
		Where("id = ?", id).Updates(map[string]any{
		"status":        status,
		"current_round": currentRound,
	})
	if res.Error != nil {
		return tourney.WrapErr(tourney.ErrIntegration, res.Error,
			"unable to update tournament %v", id)
	}
	if res.RowsAffected == 0 {
		return tourney.Errorf(tourney.ErrNotFound, "no such tournament %v",
			id)
	}

	return nil
}

func (r dbTournaments) ListSections(ctx context.Context,
	id uuid.UUID) ([]string, error) {

	t, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var rosterSections []string
	err = r.db.WithContext(ctx).Model(&tourney.Player{}).
		Where("tournament_id = ?", id).Distinct().
		Pluck("section", &rosterSections).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list sections for %v", t.Name)
	}

	seen := make(map[string]bool)
	for _, sec := range t.Sections {
		seen[sec] = true
	}
	for _, sec := range rosterSections {
		seen[sec] = true
	}
	sections := make([]string, 0, len(seen))
	for sec := range seen {
		sections = append(sections, sec)
	}

	return tourney.SortSections(sections), nil
}

type dbPlayers struct {
	db *gorm.DB
}

func (r dbPlayers) Create(ctx context.Context, p *tourney.Player) error {
	err := r.db.WithContext(ctx).Create(p).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to create player %v", p.DisplayName)
	}

	return nil
}

func (r dbPlayers) Get(ctx context.Context,
	id uuid.UUID) (*tourney.Player, error) {

	var p tourney.Player
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, getErr(err, "no such player %v", id)
	}

	return &p, nil
}

func (r dbPlayers) ListForTournament(ctx context.Context,
	tournamentID uuid.UUID) ([]tourney.Player, error) {

	var out []tourney.Player
	err := r.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).
		Order("rating desc, display_name").Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list players")
	}

	return out, nil
}

func (r dbPlayers) ListActiveInSection(ctx context.Context,
	tournamentID uuid.UUID, section string) ([]tourney.Player, error) {

	q := r.db.WithContext(ctx).Where("tournament_id = ? AND status = ?",
		tournamentID, tourney.PlayerActive)
	if section != "" {
		q = q.Where("section = ?", section)
	}

	var out []tourney.Player
	err := q.Order("rating desc, display_name").Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list players")
	}

	return out, nil
}

func (r dbPlayers) GetIntentionalByes(ctx context.Context,
	playerID uuid.UUID) ([]int, error) {

	p, err := r.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	return p.ByeRounds, nil
}

func (r dbPlayers) UpdateStatus(ctx context.Context, id uuid.UUID,
	status tourney.PlayerStatus) error {

	return r.update(ctx, id, map[string]any{"status": status})
}

func (r dbPlayers) UpdateRating(ctx context.Context, id uuid.UUID,
	rating int) error {

	return r.update(ctx, id, map[string]any{"rating": rating})
}

func (r dbPlayers) UpdateTeam(ctx context.Context, id uuid.UUID,
	teamID uuid.UUID) error {

	return r.update(ctx, id, map[string]any{"team_id": teamID})
}

func (r dbPlayers) update(ctx context.Context, id uuid.UUID,
	fields map[string]any) error {

	res := r.db.WithContext(ctx).Model(&tourney.Player{}).
		Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return tourney.WrapErr(tourney.ErrIntegration, res.Error,
			"unable to update player %v", id)
	}
	if res.RowsAffected == 0 {
		return tourney.Errorf(tourney.ErrNotFound, "no such player %v", id)
	}

	return nil
}

type dbTeams struct {
	db *gorm.DB
}

func (r dbTeams) Create(ctx context.Context, t *tourney.Team) error {
	err := r.db.WithContext(ctx).Create(t).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to create team %v", t.Name)
	}

	return nil
}

func (r dbTeams) ListForTournament(ctx context.Context,
	tournamentID uuid.UUID) ([]tourney.Team, error) {

	var out []tourney.Team
	err := r.db.WithContext(ctx).Where("tournament_id = ?", tournamentID).
		Order("name").Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list teams")
	}

	return out, nil
}

type dbPairings struct {
	db *gorm.DB
}

func (r dbPairings) Get(ctx context.Context,
	id uuid.UUID) (*tourney.Pairing, error) {

	var p tourney.Pairing
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		return nil, getErr(err, "no such pairing %v", id)
	}

	return &p, nil
}

func (r dbPairings) ListByTournamentRoundSection(ctx context.Context,
	tournamentID uuid.UUID, round int,
	section string) ([]tourney.Pairing, error) {

	q := r.db.WithContext(ctx).Where(
		"tournament_id = ? AND round_number = ?", tournamentID, round)
	if section != "" {
		q = q.Where("section = ?", section)
	}

	var out []tourney.Pairing
	err := q.Order("section, board_number").Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list pairings")
	}

	return out, nil
}

func (r dbPairings) ListHistoricalInSection(ctx context.Context,
	tournamentID uuid.UUID, section string,
	beforeRound int) ([]tourney.Pairing, error) {

	q := r.db.WithContext(ctx).Where(
		"tournament_id = ? AND round_number < ?", tournamentID, beforeRound)
	if section != "" {
		q = q.Where("section = ?", section)
	}

	var out []tourney.Pairing
	err := q.Order("round_number, section, board_number").Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list pairing history")
	}

	return out, nil
}

func (r dbPairings) InsertBatch(ctx context.Context,
	pairings []tourney.Pairing) error {

	if len(pairings) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&pairings).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to insert pairings")
	}

	return nil
}

func (r dbPairings) DeleteRound(ctx context.Context,
	tournamentID uuid.UUID, round int, section string) error {

	q := r.db.WithContext(ctx).Where(
		"tournament_id = ? AND round_number = ?", tournamentID, round)
	if section != "" {
		q = q.Where("section = ?", section)
	}

	err := q.Delete(&tourney.Pairing{}).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to delete round %v pairings", round)
	}

	return nil
}

func (r dbPairings) UpdateResult(ctx context.Context, id uuid.UUID,
	code tourney.ResultCode) error {

	res := r.db.WithContext(ctx).Model(&tourney.Pairing{}).
		Where("id = ?", id).Update("result", code)
	if res.Error != nil {
		return tourney.WrapErr(tourney.ErrIntegration, res.Error,
			"unable to update pairing %v", id)
	}
	if res.RowsAffected == 0 {
		return tourney.Errorf(tourney.ErrNotFound, "no such pairing %v", id)
	}

	return nil
}

type dbResults struct {
	db *gorm.DB
}

func (r dbResults) InsertForPairing(ctx context.Context,
	pairingID uuid.UUID, rows []tourney.Result) error {

	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Create(&rows).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to insert results for pairing %v", pairingID)
	}

	return nil
}

func (r dbResults) ListForPlayer(ctx context.Context, tournamentID,
	playerID uuid.UUID) ([]tourney.Result, error) {

	var out []tourney.Result
	err := r.db.WithContext(ctx).Where(
		"tournament_id = ? AND player_id = ?", tournamentID,
		playerID).Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list results")
	}

	return out, nil
}

func (r dbResults) ListForTournament(ctx context.Context,
	tournamentID uuid.UUID) ([]tourney.Result, error) {

	var out []tourney.Result
	err := r.db.WithContext(ctx).Where("tournament_id = ?",
		tournamentID).Find(&out).Error
	if err != nil {
		return nil, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to list results")
	}

	return out, nil
}

func (r dbResults) DeleteForPairing(ctx context.Context,
	pairingID uuid.UUID) error {

	err := r.db.WithContext(ctx).Where("pairing_id = ?",
		pairingID).Delete(&tourney.Result{}).Error
	if err != nil {
		return tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to delete results for pairing %v", pairingID)
	}

	return nil
}
