/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import (
	"context"

	"github.com/google/uuid"
)

// Recorder writes game outcomes and bye points. Result rows and the
// pairing's result code always commit together, resubmitting an identical
// outcome is a no-op, and a divergent outcome is rejected; changing a
// recorded outcome goes through CorrectGameResult.
type Recorder struct {
	store Store
}

func NewRecorder(st Store) *Recorder {
	return &Recorder{store: st}
}

// RecordGameResult enters the outcome of a played board: one result row
// per player plus the pairing's result code, in one transaction.
func (rc *Recorder) RecordGameResult(ctx context.Context,
	pairingID uuid.UUID, code ResultCode) error {

	if !code.IsGame() {
		return Errorf(ErrValidation, "%v is not a game result", code)
	}

	p, err := rc.currentRoundPairing(ctx, pairingID)
	if err != nil {
		return err
	}
	if p.IsByePairing() {
		return Errorf(ErrValidation,
			"board %v of round %v is a bye; record a bye result instead",
			p.BoardNumber, p.RoundNumber)
	}
	if p.HasResult() {
		if p.Result == code {
			return nil
		}
		return Errorf(ErrConflict,
			"board %v of round %v already has result %v recorded",
			p.BoardNumber, p.RoundNumber, p.Result)
	}

	return rc.store.Transact(ctx, func(st Store) error {
		return writeRows(ctx, st, p, code, gameRows(p, code))
	})
}

// RecordByeResult enters the single result row of a bye board. The
// requested bye type must match the board; a half point bye cannot be
// upgraded by result entry.
func (rc *Recorder) RecordByeResult(ctx context.Context,
	pairingID uuid.UUID, byeType ByeType) error {

	var code ResultCode
	switch byeType {
	case ByeTypeBye:
		code = ResultByeHalf
	case ByeTypeUnpaired:
		code = ResultByeFull
	default:
		return Errorf(ErrValidation, "invalid bye type")
	}

	p, err := rc.currentRoundPairing(ctx, pairingID)
	if err != nil {
		return err
	}
	if !p.IsByePairing() {
		return Errorf(ErrValidation,
			"board %v of round %v seats two players; record a game result",
			p.BoardNumber, p.RoundNumber)
	}
	if p.ByeType != byeType {
		return Errorf(ErrValidation,
			"board %v of round %v is a %v bye", p.BoardNumber, p.RoundNumber,
			p.ByeType)
	}
	if p.HasResult() {
		if p.Result == code {
			return nil
		}
		return Errorf(ErrConflict,
			"board %v of round %v already has result %v recorded",
			p.BoardNumber, p.RoundNumber, p.Result)
	}

	rows := []Result{{
		ID:           uuid.New(),
		TournamentID: p.TournamentID,
		PairingID:    p.ID,
		PlayerID:     p.WhiteID,
		Points:       byeType.Points(),
		Code:         code,
	}}
	return rc.store.Transact(ctx, func(st Store) error {
		return writeRows(ctx, st, p, code, rows)
	})
}

// CorrectGameResult replaces a recorded outcome: the old rows are deleted
// and the new ones written in the same transaction. Valid only while the
// board's round is still current.
func (rc *Recorder) CorrectGameResult(ctx context.Context,
	pairingID uuid.UUID, code ResultCode) error {

	if !code.IsGame() {
		return Errorf(ErrValidation, "%v is not a game result", code)
	}

	p, err := rc.currentRoundPairing(ctx, pairingID)
	if err != nil {
		return err
	}
	if p.IsByePairing() {
		return Errorf(ErrValidation,
			"board %v of round %v is a bye and cannot be corrected to a game",
			p.BoardNumber, p.RoundNumber)
	}
	if !p.HasResult() {
		return Errorf(ErrState,
			"board %v of round %v has no result to correct",
			p.BoardNumber, p.RoundNumber)
	}
	if p.Result == code {
		return nil
	}

	return rc.store.Transact(ctx, func(st Store) error {
		err := st.Results().DeleteForPairing(ctx, p.ID)
		if err != nil {
			return WrapErr(ErrIntegration, err,
				"unable to delete results for board %v", p.BoardNumber)
		}
		return writeRows(ctx, st, p, code, gameRows(p, code))
	})
}

// currentRoundPairing loads a pairing and verifies it belongs to its
// tournament's round in progress.
func (rc *Recorder) currentRoundPairing(ctx context.Context,
	pairingID uuid.UUID) (*Pairing, error) {

	p, err := rc.store.Pairings().Get(ctx, pairingID)
	if err != nil {
		return nil, WrapErr(ErrNotFound, err, "no such pairing %v", pairingID)
	}
	t, err := rc.store.Tournaments().Get(ctx, p.TournamentID)
	if err != nil {
		return nil, WrapErr(ErrNotFound, err, "no such tournament %v",
			p.TournamentID)
	}
	if p.RoundNumber != t.CurrentRound {
		return nil, Errorf(ErrState,
			"board %v belongs to round %v; %v is in round %v",
			p.BoardNumber, p.RoundNumber, t.Name, t.CurrentRound)
	}

	return p, nil
}

func writeRows(ctx context.Context, st Store, p *Pairing, code ResultCode,
	rows []Result) error {

	err := st.Pairings().UpdateResult(ctx, p.ID, code)
	if err != nil {
		return WrapErr(ErrIntegration, err,
			"unable to update board %v", p.BoardNumber)
	}
	err = st.Results().InsertForPairing(ctx, p.ID, rows)
	if err != nil {
		return WrapErr(ErrIntegration, err,
			"unable to insert results for board %v", p.BoardNumber)
	}
	return nil
}

// gameRows builds the two per-player result rows of a game outcome.
func gameRows(p *Pairing, code ResultCode) []Result {
	wp, bp := code.Points()
	return []Result{
		{
			ID:           uuid.New(),
			TournamentID: p.TournamentID,
			PairingID:    p.ID,
			PlayerID:     p.WhiteID,
			Points:       wp,
			Code:         code,
		},
		{
			ID:           uuid.New(),
			TournamentID: p.TournamentID,
			PairingID:    p.ID,
			PlayerID:     *p.BlackID,
			Points:       bp,
			Code:         code,
		},
	}
}
