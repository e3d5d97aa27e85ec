/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/olekukonko/tablewriter"

	"github.com/mikeb26/tourneyd/internal"
	"github.com/mikeb26/tourneyd/store"
	"github.com/mikeb26/tourneyd/tourney"
	"github.com/mikeb26/tourneyd/uschess"
)

//go:embed help.txt
var helpText string

// cmdHandler defines the signature for command handler functions.
type cmdHandler func(ctx context.Context, args []string)

// commands maps command names to their respective handler functions.
var commands = map[string]cmdHandler{
	"help":       handleHelp,
	"create":     handleCreate,
	"register":   handleRegister,
	"team":       handleTeam,
	"withdraw":   handleWithdraw,
	"list":       handleList,
	"roster":     handleRoster,
	"pair":       handlePair,
	"regen":      handleRegen,
	"result":     handleResult,
	"bye":        handleBye,
	"continue":   handleContinue,
	"pairings":   handlePairings,
	"standings":  handleStandings,
	"crosstable": handleCrossTable,
	"ratingest":  handleRatingEst,
}

func main() {
	ctx := context.Background()

	// .env is optional; environment variables win
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}
	cmd := os.Args[1]
	if handler, ok := commands[cmd]; ok {
		handler(ctx, os.Args[2:])
	} else {
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Printf("%v", helpText)
}

func handleHelp(ctx context.Context, args []string) {
	usage()
}

// dbFlag registers the shared --db flag on a subcommand flag set.
func dbFlag(fs *flag.FlagSet) *string {
	return fs.String("db", "", "Database path or DSN (default $TOURNEYD_DB)")
}

func openStore(dbPath string) tourney.Store {
	if dbPath == "" {
		dbPath = os.Getenv(internal.DBEnvVar)
	}
	if dbPath == "" {
		dbPath = internal.DefaultDB
	}
	st, err := store.Open(dbPath)
	if err != nil {
		log.Fatalf("td: unable to open store %v: %v", dbPath, err)
	}
	return st
}

func mustParseID(kind, val string) uuid.UUID {
	id, err := uuid.Parse(val)
	if err != nil {
		log.Fatalf("td: invalid %v %q", kind, val)
	}
	return id
}

func parseIntList(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, f := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func splitList(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func handleCreate(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("create", flag.ExitOnError)
	db := dbFlag(fs)
	name := fs.String("name", "", "Tournament name (required)")
	format := fs.String("format", "swiss",
		"Format: swiss|round_robin|quad|single_elimination|team_swiss|online_rated")
	rounds := fs.Int("rounds", 0, "Total rounds (required; quads are always 3)")
	sections := fs.String("sections", "", "Comma separated section names")
	timeControl := fs.String("timecontrol", "", "Time control, e.g. G/60;d5")
	date := fs.String("date", "", "Start date (parsed leniently)")
	tiebreaks := fs.String("tiebreaks", "",
		"Comma separated tiebreak order, e.g. buchholz,sonneborn_berger")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *name == "" {
		fmt.Fprintln(os.Stderr, "Please provide --name.")
		fs.Usage()
		os.Exit(1)
	}

	f, err := tourney.ParseFormat(*format)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	startDate, err := internal.ParseDateOrZero(*date)
	if err != nil {
		log.Fatalf("td: invalid --date %q: %v", *date, err)
	}
	var tbs []tourney.Tiebreak
	for _, tb := range splitList(*tiebreaks) {
		parsed, err := tourney.ParseTiebreak(tb)
		if err != nil {
			log.Fatalf("td: %v", err)
		}
		tbs = append(tbs, parsed)
	}

	t := &tourney.Tournament{
		Name:        *name,
		Format:      f,
		TotalRounds: *rounds,
		Sections:    splitList(*sections),
		TimeControl: *timeControl,
		StartDate:   startDate,
		Tiebreaks:   tbs,
	}
	rg := tourney.NewRegistry(openStore(*db))
	if err := rg.CreateTournament(ctx, t); err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("Created %v (%v)\n", t.Name, t.ID)
}

func handleRegister(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	name := fs.String("name", "", "Player name (required)")
	rating := fs.Int("rating", 0, "Player rating (0 = unrated)")
	uscfID := fs.Int("uscf", 0, "USCF member ID")
	fideID := fs.Int("fide", 0, "FIDE ID")
	section := fs.String("section", "", "Section name")
	byes := fs.String("byes", "", "Comma separated intentional bye rounds")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" || *name == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament and --name.")
		fs.Usage()
		os.Exit(1)
	}

	byeRounds, err := parseIntList(*byes)
	if err != nil {
		log.Fatalf("td: invalid --byes %q: %v", *byes, err)
	}

	p := &tourney.Player{
		TournamentID: mustParseID("tournament id", *tid),
		DisplayName:  *name,
		Rating:       *rating,
		UscfID:       *uscfID,
		FideID:       *fideID,
		Section:      *section,
		ByeRounds:    byeRounds,
	}
	rg := tourney.NewRegistry(openStore(*db))
	if err := rg.RegisterPlayer(ctx, p); err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("Registered %v (%v)\n", p.DisplayName, p.ID)
}

func handleTeam(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("team", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	name := fs.String("name", "", "Team name (required)")
	section := fs.String("section", "", "Section name")
	players := fs.String("players", "",
		"Comma separated player IDs, board one first (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" || *name == "" || *players == "" {
		fmt.Fprintln(os.Stderr,
			"Please provide --tournament, --name, and --players.")
		fs.Usage()
		os.Exit(1)
	}

	var boardOrder []uuid.UUID
	for _, pid := range splitList(*players) {
		boardOrder = append(boardOrder, mustParseID("player id", pid))
	}

	team := &tourney.Team{
		TournamentID: mustParseID("tournament id", *tid),
		Name:         *name,
		Section:      *section,
		BoardOrder:   boardOrder,
	}
	rg := tourney.NewRegistry(openStore(*db))
	if err := rg.RegisterTeam(ctx, team); err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("Registered team %v (%v) with %v boards\n", team.Name, team.ID,
		len(team.BoardOrder))
}

func handleWithdraw(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("withdraw", flag.ExitOnError)
	db := dbFlag(fs)
	pid := fs.String("player", "", "Player ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *pid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --player.")
		fs.Usage()
		os.Exit(1)
	}

	rg := tourney.NewRegistry(openStore(*db))
	if err := rg.WithdrawPlayer(ctx, mustParseID("player id", *pid)); err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("Withdrew %v\n", *pid)
}

func handleList(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	db := dbFlag(fs)
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}

	st := openStore(*db)
	list, err := st.Tournaments().List(ctx)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	if len(list) == 0 {
		fmt.Println("No tournaments found.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Format", "Status", "Round"})
	for _, t := range list {
		table.Append([]string{
			t.ID.String(),
			t.Name,
			t.Format.String(),
			t.Status.String(),
			fmt.Sprintf("%d/%d", t.CurrentRound, t.TotalRounds),
		})
	}
	table.Render()
}

func handleRoster(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("roster", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	players, err := st.Players().ListForTournament(ctx,
		mustParseID("tournament id", *tid))
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	if len(players) == 0 {
		fmt.Println("No players registered.")
		return
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Rating", "Section", "Status",
		"USCF", "Byes"})
	for _, p := range players {
		uscfStr := ""
		if p.UscfID != 0 {
			uscfStr = strconv.Itoa(p.UscfID)
		}
		var byeStrs []string
		for _, r := range p.ByeRounds {
			byeStrs = append(byeStrs, strconv.Itoa(r))
		}
		table.Append([]string{
			p.ID.String(),
			p.DisplayName,
			strconv.Itoa(p.Rating),
			p.Section,
			p.Status.String(),
			uscfStr,
			strings.Join(byeStrs, ","),
		})
	}
	table.Render()
}

// printSummary renders a controller round summary the way the wallcharts
// read: pairings first, then any warnings.
func printSummary(ctx context.Context, st tourney.Store,
	sum *tourney.RoundSummary) {

	if sum.Status == tourney.StatusCompleted {
		fmt.Printf("Tournament complete after round %v\n", sum.Round)
		return
	}

	players, err := st.Players().ListForTournament(ctx, sum.TournamentID)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	results, err := st.Results().ListForTournament(ctx, sum.TournamentID)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Print(tourney.BuildPairingsOutput(sum.Round, players, sum.Pairings,
		tourney.ScoreTotals(results)))
	for _, w := range sum.Warnings {
		fmt.Printf("warning [%v]: %v\n", w.Section, w.Detail)
	}
}

func handlePair(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("pair", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	section := fs.String("section", "", "Pair only this section")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	ctl := tourney.NewController(st, tourney.NewRegistry(st),
		tourney.NewEngine(), nil)

	var sum *tourney.RoundSummary
	var err error
	id := mustParseID("tournament id", *tid)
	if *section != "" {
		sum, err = ctl.PairSection(ctx, id, *section)
	} else {
		sum, err = ctl.GeneratePairings(ctx, id)
	}
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	printSummary(ctx, st, sum)
}

func handleRegen(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("regen", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	ctl := tourney.NewController(st, tourney.NewRegistry(st),
		tourney.NewEngine(), nil)
	sum, err := ctl.RegenerateRound(ctx, mustParseID("tournament id", *tid))
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	printSummary(ctx, st, sum)
}

func handleResult(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("result", flag.ExitOnError)
	db := dbFlag(fs)
	pid := fs.String("pairing", "", "Pairing ID (required)")
	code := fs.String("code", "",
		"Result code: 1-0|0-1|1/2-1/2|1-0F|0-1F|1/2-1/2F (required)")
	correct := fs.Bool("correct", false,
		"Replace an already recorded result")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *pid == "" || *code == "" {
		fmt.Fprintln(os.Stderr, "Please provide --pairing and --code.")
		fs.Usage()
		os.Exit(1)
	}

	rc, err := tourney.ParseResultCode(*code)
	if err != nil {
		log.Fatalf("td: %v", err)
	}

	rec := tourney.NewRecorder(openStore(*db))
	id := mustParseID("pairing id", *pid)
	if *correct {
		err = rec.CorrectGameResult(ctx, id, rc)
	} else {
		err = rec.RecordGameResult(ctx, id, rc)
	}
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("Recorded %v on %v\n", rc, id)
}

func handleBye(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("bye", flag.ExitOnError)
	db := dbFlag(fs)
	pid := fs.String("pairing", "", "Pairing ID (required)")
	byeType := fs.String("type", "", "Bye type: bye|unpaired (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *pid == "" || *byeType == "" {
		fmt.Fprintln(os.Stderr, "Please provide --pairing and --type.")
		fs.Usage()
		os.Exit(1)
	}

	bt, err := tourney.ParseByeType(*byeType)
	if err != nil {
		log.Fatalf("td: %v", err)
	}

	rec := tourney.NewRecorder(openStore(*db))
	id := mustParseID("pairing id", *pid)
	if err := rec.RecordByeResult(ctx, id, bt); err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("Recorded %v bye on %v\n", bt, id)
}

func handleContinue(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("continue", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	ctl := tourney.NewController(st, tourney.NewRegistry(st),
		tourney.NewEngine(), nil)
	sum, err := ctl.AdvanceRound(ctx, mustParseID("tournament id", *tid))
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	printSummary(ctx, st, sum)
}

func handlePairings(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("pairings", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	round := fs.Int("round", 0, "Round number (default: current round)")
	section := fs.String("section", "", "Only this section")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	id := mustParseID("tournament id", *tid)
	t, err := st.Tournaments().Get(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	r := *round
	if r == 0 {
		r = t.CurrentRound
	}
	if r == 0 {
		fmt.Println("No pairings generated yet")
		return
	}

	pairings, err := st.Pairings().ListByTournamentRoundSection(ctx, id, r,
		*section)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	players, err := st.Players().ListForTournament(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	results, err := st.Results().ListForTournament(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Print(tourney.BuildPairingsOutput(r, players, pairings,
		tourney.ScoreTotals(results)))
}

func handleStandings(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("standings", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	id := mustParseID("tournament id", *tid)
	t, err := st.Tournaments().Get(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	standings, err := tourney.NewCalculator(st).Standings(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Print(tourney.BuildStandingsOutput(t, standings))
}

func handleCrossTable(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("crosstable", flag.ExitOnError)
	db := dbFlag(fs)
	tid := fs.String("tournament", "", "Tournament ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *tid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --tournament.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	id := mustParseID("tournament id", *tid)
	t, err := st.Tournaments().Get(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	players, err := st.Players().ListForTournament(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	pairings, err := st.Pairings().ListHistoricalInSection(ctx, id, "",
		t.CurrentRound+1)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	results, err := st.Results().ListForTournament(ctx, id)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	tables := tourney.BuildCrossTables(t, players, pairings, results)
	fmt.Print(tourney.BuildCrossTablesOutput(tables))
}

func handleRatingEst(ctx context.Context, args []string) {
	fs := flag.NewFlagSet("ratingest", flag.ExitOnError)
	db := dbFlag(fs)
	pid := fs.String("player", "", "Player ID (required)")
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if *pid == "" {
		fmt.Fprintln(os.Stderr, "Please provide --player.")
		fs.Usage()
		os.Exit(1)
	}

	st := openStore(*db)
	rg := tourney.NewRegistry(st)
	p, games, earned, err := rg.RecordedGames(ctx,
		mustParseID("player id", *pid))
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	if p.UscfID == 0 {
		log.Fatalf("td: %v has no USCF id on file", p.DisplayName)
	}
	if len(games) == 0 {
		log.Fatalf("td: %v has no recorded games to estimate from",
			p.DisplayName)
	}

	opponents := make([]uschess.MemID, 0, len(games))
	for _, g := range games {
		opp, err := st.Players().Get(ctx, g.Opponent(p.ID))
		if err != nil {
			log.Fatalf("td: %v", err)
		}
		if opp.UscfID == 0 {
			log.Fatalf("td: opponent %v has no USCF id on file",
				opp.DisplayName)
		}
		opponents = append(opponents, uschess.MemID(opp.UscfID))
	}

	client := uschess.NewClient(ctx)
	estimate, err := client.GetRatingEstimate(ctx, uschess.MemID(p.UscfID),
		opponents, earned)
	if err != nil {
		log.Fatalf("td: %v", err)
	}
	fmt.Printf("%v scored %v over %v rated games; estimated post-event rating: %.0f\n",
		p.DisplayName, internal.ScoreToString(earned), len(games), estimate)
}
