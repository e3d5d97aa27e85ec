/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package tourney implements the pairing and scoring engine used by club
// tournament directors: rosters, round pairings for the supported formats,
// result recording, tiebreaks, and the round lifecycle.
package tourney

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mikeb26/tourneyd/internal"
)

// Format identifies the pairing system a tournament uses.
type Format int

const (
	FormatSwiss Format = iota
	FormatRoundRobin
	FormatQuad
	FormatSingleElim
	FormatTeamSwiss
	FormatOnlineRated
)

var formatNames = map[Format]string{
	FormatSwiss:       "swiss",
	FormatRoundRobin:  "round_robin",
	FormatQuad:        "quad",
	FormatSingleElim:  "single_elimination",
	FormatTeamSwiss:   "team_swiss",
	FormatOnlineRated: "online_rated",
}

func (f Format) String() string {
	return formatNames[f]
}

// ParseFormat converts the wire form of a format back to its enum value.
func ParseFormat(s string) (Format, error) {
	for f, name := range formatNames {
		if s == name {
			return f, nil
		}
	}
	return FormatSwiss, fmt.Errorf("unknown tournament format %q", s)
}

// Status tracks a tournament through its lifecycle.
type Status int

const (
	StatusDraft Status = iota
	StatusActive
	StatusCompleted
)

var statusNames = map[Status]string{
	StatusDraft:     "draft",
	StatusActive:    "active",
	StatusCompleted: "completed",
}

func (s Status) String() string {
	return statusNames[s]
}

func ParseStatus(v string) (Status, error) {
	for s, name := range statusNames {
		if v == name {
			return s, nil
		}
	}
	return StatusDraft, fmt.Errorf("unknown tournament status %q", v)
}

// PlayerStatus distinguishes active entrants from withdrawals. Withdrawn
// players keep their recorded results but are never paired again.
type PlayerStatus int

const (
	PlayerActive PlayerStatus = iota
	PlayerWithdrawn
)

var playerStatusNames = map[PlayerStatus]string{
	PlayerActive:    "active",
	PlayerWithdrawn: "withdrawn",
}

func (s PlayerStatus) String() string {
	return playerStatusNames[s]
}

func ParsePlayerStatus(v string) (PlayerStatus, error) {
	for s, name := range playerStatusNames {
		if v == name {
			return s, nil
		}
	}
	return PlayerActive, fmt.Errorf("unknown player status %q", v)
}

// ByeType tags pairings with no opponent. An automatic bye awards a half
// point; an unpaired bye (registered absence or no-show) awards a full
// point.
type ByeType int

const (
	ByeTypeNone ByeType = iota
	ByeTypeBye
	ByeTypeUnpaired
)

var byeTypeNames = map[ByeType]string{
	ByeTypeNone:     "",
	ByeTypeBye:      "bye",
	ByeTypeUnpaired: "unpaired",
}

func (b ByeType) String() string {
	return byeTypeNames[b]
}

func ParseByeType(v string) (ByeType, error) {
	for b, name := range byeTypeNames {
		if v == name {
			return b, nil
		}
	}
	return ByeTypeNone, fmt.Errorf("unknown bye type %q", v)
}

// Points returns the game points the bye awards its recipient.
func (b ByeType) Points() float64 {
	switch b {
	case ByeTypeBye:
		return 0.5
	case ByeTypeUnpaired:
		return 1.0
	}
	return 0.0
}

// ResultCode is the closed set of recordable outcomes for a pairing.
type ResultCode int

const (
	ResultNone ResultCode = iota
	ResultWhiteWin
	ResultBlackWin
	ResultDraw
	ResultWhiteWinF
	ResultBlackWinF
	ResultDrawF
	ResultByeHalf
	ResultByeFull
)

var resultCodeNames = map[ResultCode]string{
	ResultNone:      "",
	ResultWhiteWin:  "1-0",
	ResultBlackWin:  "0-1",
	ResultDraw:      "1/2-1/2",
	ResultWhiteWinF: "1-0F",
	ResultBlackWinF: "0-1F",
	ResultDrawF:     "1/2-1/2F",
	ResultByeHalf:   "bye_bye",
	ResultByeFull:   "bye_unpaired",
}

func (rc ResultCode) String() string {
	return resultCodeNames[rc]
}

func ParseResultCode(v string) (ResultCode, error) {
	for rc, name := range resultCodeNames {
		if v == name {
			return rc, nil
		}
	}
	return ResultNone, fmt.Errorf("unknown result code %q", v)
}

// IsGame reports whether rc records an over the board (or forfeited) game
// between two players.
func (rc ResultCode) IsGame() bool {
	switch rc {
	case ResultWhiteWin, ResultBlackWin, ResultDraw,
		ResultWhiteWinF, ResultBlackWinF, ResultDrawF:
		return true
	}
	return false
}

// IsBye reports whether rc records a bye outcome.
func (rc ResultCode) IsBye() bool {
	return rc == ResultByeHalf || rc == ResultByeFull
}

// IsForfeit reports whether the game was decided without play. Forfeited
// games award the same points as played ones but are excluded from
// Sonneborn-Berger style opponent-strength reasoning by callers that care.
func (rc ResultCode) IsForfeit() bool {
	switch rc {
	case ResultWhiteWinF, ResultBlackWinF, ResultDrawF:
		return true
	}
	return false
}

// Points returns the white and black game points rc awards. Bye codes
// award their points to the white seat, where bye recipients always sit.
func (rc ResultCode) Points() (white float64, black float64) {
	switch rc {
	case ResultWhiteWin, ResultWhiteWinF:
		return 1.0, 0.0
	case ResultBlackWin, ResultBlackWinF:
		return 0.0, 1.0
	case ResultDraw, ResultDrawF:
		return 0.5, 0.5
	case ResultByeHalf:
		return 0.5, 0.0
	case ResultByeFull:
		return 1.0, 0.0
	}
	return 0.0, 0.0
}

// Color is a board color.
type Color int

const (
	ColorWhite Color = iota
	ColorBlack
)

func (c Color) String() string {
	if c == ColorBlack {
		return "black"
	}
	return "white"
}

// Other returns the opposing color.
func (c Color) Other() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

func (c Color) MarshalJSON() ([]byte, error) { return json.Marshal(c.String()) }
func (c *Color) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v == "black" {
		*c = ColorBlack
	} else {
		*c = ColorWhite
	}
	return nil
}

// Tiebreak identifies one tiebreak system. Standings order applies the
// tournament's configured tiebreaks in sequence after raw points.
type Tiebreak int

const (
	TiebreakBuchholz Tiebreak = iota
	TiebreakMedianBuchholz
	TiebreakSonnebornBerger
	TiebreakCumulative
	TiebreakSolkoff
	TiebreakDirect
)

var tiebreakNames = map[Tiebreak]string{
	TiebreakBuchholz:        "buchholz",
	TiebreakMedianBuchholz:  "median_buchholz",
	TiebreakSonnebornBerger: "sonneborn_berger",
	TiebreakCumulative:      "cumulative",
	TiebreakSolkoff:         "solkoff",
	TiebreakDirect:          "direct_encounter",
}

func (tb Tiebreak) String() string {
	return tiebreakNames[tb]
}

func ParseTiebreak(v string) (Tiebreak, error) {
	for tb, name := range tiebreakNames {
		if v == name {
			return tb, nil
		}
	}
	return TiebreakBuchholz, fmt.Errorf("unknown tiebreak %q", v)
}

// DefaultTiebreaks returns the tiebreak order applied when a tournament
// does not configure its own.
func DefaultTiebreaks() []Tiebreak {
	return []Tiebreak{
		TiebreakBuchholz,
		TiebreakMedianBuchholz,
		TiebreakSonnebornBerger,
		TiebreakCumulative,
	}
}

// Tournament is the root aggregate: one event with a roster, a format, and
// a round counter that the controller advances.
type Tournament struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Name         string     `json:"name"`
	Format       Format     `json:"format" gorm:"type:text"`
	TotalRounds  int        `json:"totalRounds"`
	CurrentRound int        `json:"currentRound"`
	Sections     []string   `json:"sections" gorm:"serializer:json"`
	TimeControl  string     `json:"timeControl"`
	Status       Status     `json:"status" gorm:"type:text"`
	StartDate    time.Time  `json:"startDate"`
	Tiebreaks    []Tiebreak `json:"tiebreaks" gorm:"serializer:json"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// TiebreakOrder returns the configured tiebreaks, or the defaults when the
// tournament has none.
func (t *Tournament) TiebreakOrder() []Tiebreak {
	if len(t.Tiebreaks) > 0 {
		return t.Tiebreaks
	}
	return DefaultTiebreaks()
}

// Custom unmarshaller to handle non-RFC3339 timestamps, "null", and empty
// strings in create requests.
func (t *Tournament) UnmarshalJSON(data []byte) error {
	type Alias Tournament
	aux := &struct {
		StartDate string `json:"startDate"`
		CreatedAt string `json:"createdAt"`
		UpdatedAt string `json:"updatedAt"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("Tournament unmarshal: %w", err)
	}
	var err error
	t.StartDate, err = internal.ParseDateOrZero(aux.StartDate)
	if err != nil {
		return fmt.Errorf("parsing Tournament.StartDate: %w", err)
	}
	t.CreatedAt, err = internal.ParseDateOrZero(aux.CreatedAt)
	if err != nil {
		return fmt.Errorf("parsing Tournament.CreatedAt: %w", err)
	}
	t.UpdatedAt, err = internal.ParseDateOrZero(aux.UpdatedAt)
	if err != nil {
		return fmt.Errorf("parsing Tournament.UpdatedAt: %w", err)
	}
	return nil
}

// Player is one entrant in one tournament. A rating of 0 means unrated.
type Player struct {
	ID           uuid.UUID    `json:"id" gorm:"type:uuid;primaryKey"`
	TournamentID uuid.UUID    `json:"tournamentId" gorm:"type:uuid;index:idx_players_tourney_status"`
	DisplayName  string       `json:"displayName"`
	Rating       int          `json:"rating"`
	UscfID       int          `json:"uscfId,omitempty"`
	FideID       int          `json:"fideId,omitempty"`
	Section      string       `json:"section"`
	Status       PlayerStatus `json:"status" gorm:"type:text;index:idx_players_tourney_status"`
	ByeRounds    []int        `json:"intentionalByeRounds" gorm:"serializer:json"`
	TeamID       uuid.UUID    `json:"teamId,omitempty" gorm:"type:uuid"`
}

// HasByeInRound reports whether the player registered an intentional bye
// for the given round.
func (p *Player) HasByeInRound(round int) bool {
	for _, r := range p.ByeRounds {
		if r == round {
			return true
		}
	}
	return false
}

// Team groups players for team formats. BoardOrder lists member player ids
// from board one downward.
type Team struct {
	ID           uuid.UUID   `json:"id" gorm:"type:uuid;primaryKey"`
	TournamentID uuid.UUID   `json:"tournamentId" gorm:"type:uuid;index"`
	Name         string      `json:"name"`
	Section      string      `json:"section"`
	BoardOrder   []uuid.UUID `json:"boardOrder" gorm:"serializer:json"`
}

// Pairing is one board of one round. Bye pairings seat their recipient as
// white and carry a nil black id.
type Pairing struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TournamentID uuid.UUID  `json:"tournamentId" gorm:"type:uuid;index:idx_pairings_tourney_round"`
	RoundNumber  int        `json:"roundNumber" gorm:"index:idx_pairings_tourney_round"`
	Section      string     `json:"section" gorm:"index:idx_pairings_tourney_round"`
	BoardNumber  int        `json:"boardNumber"`
	WhiteID      uuid.UUID  `json:"whiteId" gorm:"type:uuid"`
	BlackID      *uuid.UUID `json:"blackId" gorm:"type:uuid"`
	ByeType      ByeType    `json:"byeType,omitempty" gorm:"type:text"`
	Result       ResultCode `json:"resultCode,omitempty" gorm:"type:text"`
}

// IsByePairing reports whether the pairing has no opponent seat.
func (p *Pairing) IsByePairing() bool {
	return p.ByeType != ByeTypeNone
}

// HasResult reports whether a result has been recorded for the pairing.
func (p *Pairing) HasResult() bool {
	return p.Result != ResultNone
}

// Involves reports whether the given player sits on this board.
func (p *Pairing) Involves(id uuid.UUID) bool {
	if p.WhiteID == id {
		return true
	}
	return p.BlackID != nil && *p.BlackID == id
}

// Opponent returns the other player on the board, or uuid.Nil for byes or
// when id is not seated here.
func (p *Pairing) Opponent(id uuid.UUID) uuid.UUID {
	if p.BlackID == nil {
		return uuid.Nil
	}
	switch id {
	case p.WhiteID:
		return *p.BlackID
	case *p.BlackID:
		return p.WhiteID
	}
	return uuid.Nil
}

// ColorOf returns the color id holds on this board. Bye recipients report
// white, matching their stored seat.
func (p *Pairing) ColorOf(id uuid.UUID) Color {
	if p.BlackID != nil && *p.BlackID == id {
		return ColorBlack
	}
	return ColorWhite
}

// Result is one player's outcome for one pairing, in game points.
type Result struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	TournamentID uuid.UUID  `json:"tournamentId" gorm:"type:uuid;index:idx_results_tourney_player"`
	PairingID    uuid.UUID  `json:"pairingId" gorm:"type:uuid;index"`
	PlayerID     uuid.UUID  `json:"playerId" gorm:"type:uuid;index:idx_results_tourney_player"`
	Points       float64    `json:"points"`
	Code         ResultCode `json:"code" gorm:"type:text"`
}

// enum persistence and wire forms

func scanEnum(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	}
	return "", fmt.Errorf("unsupported enum column type %T", value)
}

func (f Format) Value() (driver.Value, error) { return f.String(), nil }
func (f *Format) Scan(value any) error {
	s, err := scanEnum(value)
	if err != nil {
		return err
	}
	*f, err = ParseFormat(s)
	return err
}
func (f Format) MarshalJSON() ([]byte, error) { return json.Marshal(f.String()) }
func (f *Format) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseFormat(s)
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}

func (s Status) Value() (driver.Value, error) { return s.String(), nil }
func (s *Status) Scan(value any) error {
	v, err := scanEnum(value)
	if err != nil {
		return err
	}
	*s, err = ParseStatus(v)
	return err
}
func (s Status) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }
func (s *Status) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s PlayerStatus) Value() (driver.Value, error) { return s.String(), nil }
func (s *PlayerStatus) Scan(value any) error {
	v, err := scanEnum(value)
	if err != nil {
		return err
	}
	*s, err = ParsePlayerStatus(v)
	return err
}
func (s PlayerStatus) MarshalJSON() ([]byte, error) { return json.Marshal(s.String()) }
func (s *PlayerStatus) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParsePlayerStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (b ByeType) Value() (driver.Value, error) { return b.String(), nil }
func (b *ByeType) Scan(value any) error {
	v, err := scanEnum(value)
	if err != nil {
		return err
	}
	*b, err = ParseByeType(v)
	return err
}
func (b ByeType) MarshalJSON() ([]byte, error) { return json.Marshal(b.String()) }
func (b *ByeType) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseByeType(v)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

func (rc ResultCode) Value() (driver.Value, error) { return rc.String(), nil }
func (rc *ResultCode) Scan(value any) error {
	v, err := scanEnum(value)
	if err != nil {
		return err
	}
	*rc, err = ParseResultCode(v)
	return err
}
func (rc ResultCode) MarshalJSON() ([]byte, error) { return json.Marshal(rc.String()) }
func (rc *ResultCode) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseResultCode(v)
	if err != nil {
		return err
	}
	*rc = parsed
	return nil
}

func (tb Tiebreak) MarshalJSON() ([]byte, error) { return json.Marshal(tb.String()) }
func (tb *Tiebreak) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	parsed, err := ParseTiebreak(v)
	if err != nil {
		return err
	}
	*tb = parsed
	return nil
}
