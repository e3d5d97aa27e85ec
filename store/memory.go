/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mikeb26/tourneyd/tourney"
)

// Memory is a map backed Store for tests and ephemeral events. A
// transaction clones the maps, runs against the clone, and swaps it in on
// success; one mutex serializes everything.
type Memory struct {
	mu sync.Mutex
	db *memDB
}

func NewMemory() *Memory {
	return &Memory{db: newMemDB()}
}

func (m *Memory) Tournaments() tourney.TournamentRepo {
	return memTournaments{m.locked}
}
func (m *Memory) Players() tourney.PlayerRepo   { return memPlayers{m.locked} }
func (m *Memory) Teams() tourney.TeamRepo       { return memTeams{m.locked} }
func (m *Memory) Pairings() tourney.PairingRepo { return memPairings{m.locked} }
func (m *Memory) Results() tourney.ResultRepo   { return memResults{m.locked} }

func (m *Memory) locked(fn func(*memDB) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	return fn(m.db)
}

func (m *Memory) Transact(ctx context.Context,
	fn func(tourney.Store) error) error {

	m.mu.Lock()
	defer m.mu.Unlock()

	clone := m.db.clone()
	if err := fn(txStore{db: clone}); err != nil {
		return err
	}
	m.db = clone

	return nil
}

// txStore exposes one transaction's clone; the caller already holds the
// store mutex. A nested Transact joins the enclosing transaction.
type txStore struct {
	db *memDB
}

func (s txStore) Tournaments() tourney.TournamentRepo {
	return memTournaments{s.direct}
}
func (s txStore) Players() tourney.PlayerRepo   { return memPlayers{s.direct} }
func (s txStore) Teams() tourney.TeamRepo       { return memTeams{s.direct} }
func (s txStore) Pairings() tourney.PairingRepo { return memPairings{s.direct} }
func (s txStore) Results() tourney.ResultRepo   { return memResults{s.direct} }

func (s txStore) direct(fn func(*memDB) error) error {
	return fn(s.db)
}

func (s txStore) Transact(ctx context.Context,
	fn func(tourney.Store) error) error {

	return fn(s)
}

type runner func(func(*memDB) error) error

// memDB holds the maps; callers synchronize access.
type memDB struct {
	tournaments map[uuid.UUID]tourney.Tournament
	players     map[uuid.UUID]tourney.Player
	teams       map[uuid.UUID]tourney.Team
	pairings    map[uuid.UUID]tourney.Pairing
	results     []tourney.Result
}

func newMemDB() *memDB {
	return &memDB{
		tournaments: make(map[uuid.UUID]tourney.Tournament),
		players:     make(map[uuid.UUID]tourney.Player),
		teams:       make(map[uuid.UUID]tourney.Team),
		pairings:    make(map[uuid.UUID]tourney.Pairing),
	}
}

func (db *memDB) clone() *memDB {
	c := &memDB{
		tournaments: make(map[uuid.UUID]tourney.Tournament,
			len(db.tournaments)),
		players:  make(map[uuid.UUID]tourney.Player, len(db.players)),
		teams:    make(map[uuid.UUID]tourney.Team, len(db.teams)),
		pairings: make(map[uuid.UUID]tourney.Pairing, len(db.pairings)),
		results:  make([]tourney.Result, len(db.results)),
	}
	for k, v := range db.tournaments {
		c.tournaments[k] = v
	}
	for k, v := range db.players {
		c.players[k] = v
	}
	for k, v := range db.teams {
		c.teams[k] = v
	}
	for k, v := range db.pairings {
		c.pairings[k] = v
	}
	copy(c.results, db.results)

	return c
}

type memTournaments struct {
	run runner
}

func (r memTournaments) Create(ctx context.Context,
	t *tourney.Tournament) error {

	return r.run(func(db *memDB) error {
		if _, ok := db.tournaments[t.ID]; ok {
			return tourney.Errorf(tourney.ErrConflict,
				"tournament %v already exists", t.ID)
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = time.Now()
		}
		t.UpdatedAt = t.CreatedAt
		db.tournaments[t.ID] = *t
		return nil
	})
}

func (r memTournaments) Get(ctx context.Context,
	id uuid.UUID) (*tourney.Tournament, error) {

	var out tourney.Tournament
	err := r.run(func(db *memDB) error {
		t, ok := db.tournaments[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound,
				"no such tournament %v", id)
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r memTournaments) List(ctx context.Context) ([]tourney.Tournament,
	error) {

	var out []tourney.Tournament
	err := r.run(func(db *memDB) error {
		for _, t := range db.tournaments {
			out = append(out, t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Name < out[j].Name
	})

	return out, nil
}

func (r memTournaments) UpdateStatus(ctx context.Context, id uuid.UUID,
	status tourney.Status, currentRound int) error {

	return r.run(func(db *memDB) error {
		t, ok := db.tournaments[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound,
				"no such tournament %v", id)
		}
		t.Status = status
		t.CurrentRound = currentRound
		t.UpdatedAt = time.Now()
		db.tournaments[id] = t
		return nil
	})
}

func (r memTournaments) ListSections(ctx context.Context,
	id uuid.UUID) ([]string, error) {

	seen := make(map[string]bool)
	err := r.run(func(db *memDB) error {
		t, ok := db.tournaments[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound,
				"no such tournament %v", id)
		}
		for _, sec := range t.Sections {
			seen[sec] = true
		}
		for _, p := range db.players {
			if p.TournamentID == id {
				seen[p.Section] = true
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sections := make([]string, 0, len(seen))
	for sec := range seen {
		sections = append(sections, sec)
	}

	return tourney.SortSections(sections), nil
}

type memPlayers struct {
	run runner
}

func (r memPlayers) Create(ctx context.Context, p *tourney.Player) error {
	return r.run(func(db *memDB) error {
		if _, ok := db.players[p.ID]; ok {
			return tourney.Errorf(tourney.ErrConflict,
				"player %v already exists", p.ID)
		}
		db.players[p.ID] = *p
		return nil
	})
}

func (r memPlayers) Get(ctx context.Context,
	id uuid.UUID) (*tourney.Player, error) {

	var out tourney.Player
	err := r.run(func(db *memDB) error {
		p, ok := db.players[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound, "no such player %v",
				id)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r memPlayers) ListForTournament(ctx context.Context,
	tournamentID uuid.UUID) ([]tourney.Player, error) {

	return r.list(func(p *tourney.Player) bool {
		return p.TournamentID == tournamentID
	})
}

func (r memPlayers) ListActiveInSection(ctx context.Context,
	tournamentID uuid.UUID, section string) ([]tourney.Player, error) {

	return r.list(func(p *tourney.Player) bool {
		if p.TournamentID != tournamentID ||
			p.Status != tourney.PlayerActive {
			return false
		}
		return section == "" || p.Section == section
	})
}

func (r memPlayers) list(match func(*tourney.Player) bool) ([]tourney.Player,
	error) {

	var out []tourney.Player
	err := r.run(func(db *memDB) error {
		for _, p := range db.players {
			if match(&p) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].DisplayName < out[j].DisplayName
	})

	return out, nil
}

func (r memPlayers) GetIntentionalByes(ctx context.Context,
	playerID uuid.UUID) ([]int, error) {

	var out []int
	err := r.run(func(db *memDB) error {
		p, ok := db.players[playerID]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound, "no such player %v",
				playerID)
		}
		out = append(out, p.ByeRounds...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r memPlayers) UpdateStatus(ctx context.Context, id uuid.UUID,
	status tourney.PlayerStatus) error {

	return r.update(id, func(p *tourney.Player) {
		p.Status = status
	})
}

func (r memPlayers) UpdateRating(ctx context.Context, id uuid.UUID,
	rating int) error {

	return r.update(id, func(p *tourney.Player) {
		p.Rating = rating
	})
}

func (r memPlayers) UpdateTeam(ctx context.Context, id uuid.UUID,
	teamID uuid.UUID) error {

	return r.update(id, func(p *tourney.Player) {
		p.TeamID = teamID
	})
}

func (r memPlayers) update(id uuid.UUID,
	apply func(*tourney.Player)) error {

	return r.run(func(db *memDB) error {
		p, ok := db.players[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound, "no such player %v",
				id)
		}
		apply(&p)
		db.players[id] = p
		return nil
	})
}

type memTeams struct {
	run runner
}

func (r memTeams) Create(ctx context.Context, t *tourney.Team) error {
	return r.run(func(db *memDB) error {
		if _, ok := db.teams[t.ID]; ok {
			return tourney.Errorf(tourney.ErrConflict,
				"team %v already exists", t.ID)
		}
		db.teams[t.ID] = *t
		return nil
	})
}

func (r memTeams) ListForTournament(ctx context.Context,
	tournamentID uuid.UUID) ([]tourney.Team, error) {

	var out []tourney.Team
	err := r.run(func(db *memDB) error {
		for _, t := range db.teams {
			if t.TournamentID == tournamentID {
				out = append(out, t)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})

	return out, nil
}

type memPairings struct {
	run runner
}

func (r memPairings) Get(ctx context.Context,
	id uuid.UUID) (*tourney.Pairing, error) {

	var out tourney.Pairing
	err := r.run(func(db *memDB) error {
		p, ok := db.pairings[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound, "no such pairing %v",
				id)
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (r memPairings) ListByTournamentRoundSection(ctx context.Context,
	tournamentID uuid.UUID, round int,
	section string) ([]tourney.Pairing, error) {

	return r.list(func(p *tourney.Pairing) bool {
		if p.TournamentID != tournamentID || p.RoundNumber != round {
			return false
		}
		return section == "" || p.Section == section
	})
}

func (r memPairings) ListHistoricalInSection(ctx context.Context,
	tournamentID uuid.UUID, section string,
	beforeRound int) ([]tourney.Pairing, error) {

	return r.list(func(p *tourney.Pairing) bool {
		if p.TournamentID != tournamentID || p.RoundNumber >= beforeRound {
			return false
		}
		return section == "" || p.Section == section
	})
}

func (r memPairings) list(match func(*tourney.Pairing) bool) ([]tourney.Pairing,
	error) {

	var out []tourney.Pairing
	err := r.run(func(db *memDB) error {
		for _, p := range db.pairings {
			if match(&p) {
				out = append(out, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].RoundNumber != out[j].RoundNumber {
			return out[i].RoundNumber < out[j].RoundNumber
		}
		if out[i].Section != out[j].Section {
			return out[i].Section < out[j].Section
		}
		return out[i].BoardNumber < out[j].BoardNumber
	})

	return out, nil
}

func (r memPairings) InsertBatch(ctx context.Context,
	pairings []tourney.Pairing) error {

	return r.run(func(db *memDB) error {
		for _, p := range pairings {
			if _, ok := db.pairings[p.ID]; ok {
				return tourney.Errorf(tourney.ErrConflict,
					"pairing %v already exists", p.ID)
			}
		}
		for _, p := range pairings {
			db.pairings[p.ID] = p
		}
		return nil
	})
}

func (r memPairings) DeleteRound(ctx context.Context,
	tournamentID uuid.UUID, round int, section string) error {

	return r.run(func(db *memDB) error {
		for id, p := range db.pairings {
			if p.TournamentID != tournamentID || p.RoundNumber != round {
				continue
			}
			if section != "" && p.Section != section {
				continue
			}
			delete(db.pairings, id)
		}
		return nil
	})
}

func (r memPairings) UpdateResult(ctx context.Context, id uuid.UUID,
	code tourney.ResultCode) error {

	return r.run(func(db *memDB) error {
		p, ok := db.pairings[id]
		if !ok {
			return tourney.Errorf(tourney.ErrNotFound, "no such pairing %v",
				id)
		}
		p.Result = code
		db.pairings[id] = p
		return nil
	})
}

type memResults struct {
	run runner
}

func (r memResults) InsertForPairing(ctx context.Context,
	pairingID uuid.UUID, rows []tourney.Result) error {

	return r.run(func(db *memDB) error {
		db.results = append(db.results, rows...)
		return nil
	})
}

func (r memResults) ListForPlayer(ctx context.Context, tournamentID,
	playerID uuid.UUID) ([]tourney.Result, error) {

	return r.list(func(res *tourney.Result) bool {
		return res.TournamentID == tournamentID && res.PlayerID == playerID
	})
}

func (r memResults) ListForTournament(ctx context.Context,
	tournamentID uuid.UUID) ([]tourney.Result, error) {

	return r.list(func(res *tourney.Result) bool {
		return res.TournamentID == tournamentID
	})
}

func (r memResults) list(match func(*tourney.Result) bool) ([]tourney.Result,
	error) {

	var out []tourney.Result
	err := r.run(func(db *memDB) error {
		for _, res := range db.results {
			if match(&res) {
				out = append(out, res)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (r memResults) DeleteForPairing(ctx context.Context,
	pairingID uuid.UUID) error {

	return r.run(func(db *memDB) error {
		kept := db.results[:0]
		for _, res := range db.results {
			if res.PairingID != pairingID {
				kept = append(kept, res)
			}
		}
		db.results = kept
		return nil
	})
}
