/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mikeb26/tourneyd/tourney"
	"github.com/mikeb26/tourneyd/uschess"
)

type server struct {
	router     *gin.Engine
	store      tourney.Store
	registry   *tourney.Registry
	controller *tourney.Controller
	recorder   *tourney.Recorder
	calc       *tourney.Calculator
	uscf       *uschess.Client
}

func newServer(ctx context.Context, st tourney.Store,
	notifier tourney.Notifier) *server {

	rg := tourney.NewRegistry(st)
	srv := &server{
		router:     gin.Default(),
		store:      st,
		registry:   rg,
		controller: tourney.NewController(st, rg, tourney.NewEngine(), notifier),
		recorder:   tourney.NewRecorder(st),
		calc:       tourney.NewCalculator(st),
		uscf:       uschess.NewClient(ctx),
	}
	srv.routes()

	return srv
}

func (s *server) routes() {
	r := s.router

	r.POST("/tournaments", s.createTournament)
	r.GET("/tournaments", s.listTournaments)
	r.GET("/tournaments/:id", s.getTournament)
	r.POST("/tournaments/:id/players", s.registerPlayer)
	r.DELETE("/players/:id", s.withdrawPlayer)
	r.POST("/tournaments/:id/teams", s.registerTeam)

	r.POST("/pairings/generate", s.generatePairings)
	r.POST("/pairings/generate/section", s.generateSection)
	r.GET("/pairings", s.listPairings)
	r.PUT("/pairings/:id/result", s.recordResult)
	r.POST("/pairings/:id/bye-result", s.recordByeResult)

	r.GET("/tournaments/:id/standings", s.standings)
	r.GET("/tournaments/:id/crosstable", s.crosstable)
	r.GET("/tournaments/:id/progress", s.progress)
	r.POST("/tournaments/:id/continue", s.advanceRound)

	r.POST("/tournaments/:id/players/:pid/sync-rating", s.syncRating)
	r.GET("/tournaments/:id/players/:pid/rating-estimate", s.ratingEstimate)
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondErr(c *gin.Context, err error) {
	kind := tourney.KindOf(err)
	status := statusFor(kind)
	if status == http.StatusInternalServerError {
		log.Printf("tourneyd: %v", err)
	}
	c.JSON(status, gin.H{
		"success": false,
		"error":   kind.String(),
		"detail":  tourney.DetailOf(err),
	})
}

func statusFor(kind tourney.ErrKind) int {
	switch kind {
	case tourney.ErrValidation:
		return http.StatusBadRequest
	case tourney.ErrNotFound:
		return http.StatusNotFound
	case tourney.ErrState, tourney.ErrConflict:
		return http.StatusConflict
	case tourney.ErrPairing:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func parseID(c *gin.Context, name, val string) (uuid.UUID, bool) {
	id, err := uuid.Parse(val)
	if err != nil {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"invalid %v %q", name, val))
		return uuid.Nil, false
	}
	return id, true
}

func (s *server) createTournament(c *gin.Context) {
	var t tourney.Tournament
	if err := c.ShouldBindJSON(&t); err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrValidation, err,
			"invalid tournament body"))
		return
	}

	if err := s.registry.CreateTournament(c.Request.Context(), &t); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, t)
}

func (s *server) listTournaments(c *gin.Context) {
	list, err := s.store.Tournaments().List(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, list)
}

func (s *server) getTournament(c *gin.Context) {
	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	t, err := s.store.Tournaments().Get(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, t)
}

func (s *server) registerPlayer(c *gin.Context) {
	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	var p tourney.Player
	if err := c.ShouldBindJSON(&p); err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrValidation, err,
			"invalid player body"))
		return
	}
	p.TournamentID = id

	if err := s.registry.RegisterPlayer(c.Request.Context(), &p); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, p)
}

func (s *server) withdrawPlayer(c *gin.Context) {
	id, ok := parseID(c, "player id", c.Param("id"))
	if !ok {
		return
	}

	if err := s.registry.WithdrawPlayer(c.Request.Context(), id); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"withdrawn": id})
}

func (s *server) registerTeam(c *gin.Context) {
	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	var team tourney.Team
	if err := c.ShouldBindJSON(&team); err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrValidation, err,
			"invalid team body"))
		return
	}
	team.TournamentID = id

	if err := s.registry.RegisterTeam(c.Request.Context(), &team); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, team)
}

type generateRequest struct {
	Tournament uuid.UUID `json:"tournament"`
	Section    string    `json:"section"`
}

func (s *server) generatePairings(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tournament == uuid.Nil {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"tournament id is required"))
		return
	}

	sum, err := s.controller.GeneratePairings(c.Request.Context(),
		req.Tournament)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, sum)
}

func (s *server) generateSection(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Tournament == uuid.Nil {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"tournament id is required"))
		return
	}
	if req.Section == "" {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"section is required"))
		return
	}

	sum, err := s.controller.PairSection(c.Request.Context(), req.Tournament,
		req.Section)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, sum)
}

func (s *server) listPairings(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c, "tournament id", c.Query("tournament"))
	if !ok {
		return
	}
	round, err := strconv.Atoi(c.Query("round"))
	if err != nil || round < 1 {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"invalid round %q", c.Query("round")))
		return
	}

	pairings, err := s.store.Pairings().ListByTournamentRoundSection(ctx, id,
		round, c.Query("section"))
	if err != nil {
		respondErr(c, err)
		return
	}

	if c.Query("format") != "text" {
		respondOK(c, pairings)
		return
	}

	players, err := s.store.Players().ListForTournament(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	results, err := s.store.Results().ListForTournament(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.String(http.StatusOK, tourney.BuildPairingsOutput(round, players,
		pairings, tourney.ScoreTotals(results)))
}

type resultRequest struct {
	Code    tourney.ResultCode `json:"code"`
	Correct bool               `json:"correct"`
}

func (s *server) recordResult(c *gin.Context) {
	id, ok := parseID(c, "pairing id", c.Param("id"))
	if !ok {
		return
	}

	var req resultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrValidation, err,
			"invalid result body"))
		return
	}

	var err error
	if req.Correct {
		err = s.recorder.CorrectGameResult(c.Request.Context(), id, req.Code)
	} else {
		err = s.recorder.RecordGameResult(c.Request.Context(), id, req.Code)
	}
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"pairing": id, "code": req.Code})
}

type byeResultRequest struct {
	ByeType tourney.ByeType `json:"byeType"`
}

func (s *server) recordByeResult(c *gin.Context) {
	id, ok := parseID(c, "pairing id", c.Param("id"))
	if !ok {
		return
	}

	var req byeResultRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrValidation, err,
			"invalid bye result body"))
		return
	}

	err := s.recorder.RecordByeResult(c.Request.Context(), id, req.ByeType)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"pairing": id, "byeType": req.ByeType})
}

func (s *server) standings(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	standings, err := s.calc.Standings(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}

	if c.Query("format") != "text" {
		respondOK(c, standings)
		return
	}

	t, err := s.store.Tournaments().Get(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.String(http.StatusOK, tourney.BuildStandingsOutput(t, standings))
}

func (s *server) crosstable(c *gin.Context) {
	ctx := c.Request.Context()

	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	t, err := s.store.Tournaments().Get(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	players, err := s.store.Players().ListForTournament(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}
	pairings, err := s.store.Pairings().ListHistoricalInSection(ctx, id, "",
		t.CurrentRound+1)
	if err != nil {
		respondErr(c, err)
		return
	}
	results, err := s.store.Results().ListForTournament(ctx, id)
	if err != nil {
		respondErr(c, err)
		return
	}

	tables := tourney.BuildCrossTables(t, players, pairings, results)
	if c.Query("format") != "text" {
		respondOK(c, tables)
		return
	}
	c.String(http.StatusOK, tourney.BuildCrossTablesOutput(tables))
}

func (s *server) progress(c *gin.Context) {
	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	prog, err := s.controller.Progress(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, prog)
}

func (s *server) advanceRound(c *gin.Context) {
	id, ok := parseID(c, "tournament id", c.Param("id"))
	if !ok {
		return
	}

	sum, err := s.controller.AdvanceRound(c.Request.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, sum)
}

func (s *server) syncRating(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := parseID(c, "tournament id", c.Param("id")); !ok {
		return
	}
	pid, ok := parseID(c, "player id", c.Param("pid"))
	if !ok {
		return
	}

	p, err := s.store.Players().Get(ctx, pid)
	if err != nil {
		respondErr(c, err)
		return
	}
	if p.UscfID == 0 {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"%v has no USCF id on file", p.DisplayName))
		return
	}

	member, err := s.uscf.FetchPlayer(ctx, uschess.MemID(p.UscfID))
	if err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to look up USCF member %v", p.UscfID))
		return
	}
	rating, err := member.RegRatingInt()
	if err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrValidation, err,
			"USCF member %v has no usable regular rating", p.UscfID))
		return
	}

	if err := s.registry.UpdateRating(ctx, pid, rating); err != nil {
		respondErr(c, err)
		return
	}
	respondOK(c, gin.H{"player": pid, "rating": rating})
}

func (s *server) ratingEstimate(c *gin.Context) {
	ctx := c.Request.Context()

	if _, ok := parseID(c, "tournament id", c.Param("id")); !ok {
		return
	}
	pid, ok := parseID(c, "player id", c.Param("pid"))
	if !ok {
		return
	}

	p, games, earned, err := s.registry.RecordedGames(ctx, pid)
	if err != nil {
		respondErr(c, err)
		return
	}
	if p.UscfID == 0 {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"%v has no USCF id on file", p.DisplayName))
		return
	}
	if len(games) == 0 {
		respondErr(c, tourney.Errorf(tourney.ErrValidation,
			"%v has no recorded games to estimate from", p.DisplayName))
		return
	}

	opponents := make([]uschess.MemID, 0, len(games))
	for _, g := range games {
		opp, err := s.store.Players().Get(ctx, g.Opponent(p.ID))
		if err != nil {
			respondErr(c, err)
			return
		}
		if opp.UscfID == 0 {
			respondErr(c, tourney.Errorf(tourney.ErrValidation,
				"opponent %v has no USCF id on file", opp.DisplayName))
			return
		}
		opponents = append(opponents, uschess.MemID(opp.UscfID))
	}

	estimate, err := s.uscf.GetRatingEstimate(ctx, uschess.MemID(p.UscfID),
		opponents, earned)
	if err != nil {
		respondErr(c, tourney.WrapErr(tourney.ErrIntegration, err,
			"unable to estimate rating for %v", p.DisplayName))
		return
	}
	respondOK(c, gin.H{
		"player":   pid,
		"games":    len(games),
		"score":    earned,
		"estimate": estimate,
	})
}
