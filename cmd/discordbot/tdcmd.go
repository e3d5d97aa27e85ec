/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	_ "embed"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type TdSubCommand string

const (
	TdAboutCmd      TdSubCommand = "about"
	TdHelpCmd       TdSubCommand = "help"
	TdListCmd       TdSubCommand = "list"
	TdPairingsCmd   TdSubCommand = "pairings"
	TdStandingsCmd  TdSubCommand = "standings"
	TdCrosstableCmd TdSubCommand = "crosstable"
	TdProgressCmd   TdSubCommand = "progress"
)

var tdSubCmdHdlrs = map[TdSubCommand]CmdHandler{
	TdAboutCmd:      tdAboutCmdHandler,
	TdHelpCmd:       tdHelpCmdHandler,
	TdListCmd:       tdListCmdHandler,
	TdPairingsCmd:   tdPairingsCmdHandler,
	TdStandingsCmd:  tdStandingsCmdHandler,
	TdCrosstableCmd: tdCrosstableCmdHandler,
	TdProgressCmd:   tdProgressCmdHandler,
}

func tdCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	data := inter.ApplicationCommandData()
	hdlr := tdHelpCmdHandler
	if len(data.Options) > 0 {
		if subName := data.Options[0].Name; subName != "" {
			h, ok := tdSubCmdHdlrs[TdSubCommand(subName)]
			if ok {
				hdlr = h
			}
		}
	}
	return hdlr(ctx, inter)
}

//go:embed about.txt
var aboutText string

func tdAboutCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	resp.Data.Content = truncateContent(aboutText)

	return resp
}

//go:embed help.md
var helpText string

func tdHelpCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	resp.Data.Content = truncateContent(helpText)
	return resp
}

// tournamentOpts extracts the common tournament/broadcast option pair shared
// by the view subcommands.
func tournamentOpts(inter *discordgo.Interaction) (tournamentID string,
	broadcast bool) {

	data := inter.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", false
	}
	for _, opt := range data.Options[0].Options {
		if opt.Name == "tournament" {
			tournamentID = opt.StringValue()
		} else if opt.Name == "broadcast" {
			broadcast = opt.BoolValue()
		}
	}

	return tournamentID, broadcast
}

func tdListCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	data := inter.ApplicationCommandData()
	broadcast := false // default
	if len(data.Options) > 0 {
		for _, opt := range data.Options[0].Options {
			if opt.Name == "broadcast" {
				broadcast = opt.BoolValue()
			}
		}
	}

	list, err := api.listTournaments(ctx)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching tournaments: %v", err)
		log.Printf("discordbot.list: %v", resp.Data.Content)
		return resp
	}
	if len(list) == 0 {
		resp.Data.Content = "No tournaments found."
		log.Printf("discordbot.list: %v", resp.Data.Content)
		return resp
	}

	var sb strings.Builder
	for _, t := range list {
		sb.WriteString(fmt.Sprintf("**%v** (%v, %v, round %v/%v)\n  ID: %v\n",
			t.Name, t.Format, t.Status, t.CurrentRound, t.TotalRounds, t.ID))
	}
	sb.WriteString("\nRun /td pairings tournament:<ID> to see current pairings\n")
	resp.Data.Content = truncateContent(sb.String())

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdPairingsCmdHandler handles the /td pairings command to display pairings
// for a round (current round when not given).
func tdPairingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	tournamentID, broadcast := tournamentOpts(inter)
	if tournamentID == "" {
		resp.Data.Content = "Please provide a tournament ID."
		log.Printf("discordbot.pairings: %v", resp.Data.Content)
		return resp
	}
	round := int64(0)
	data := inter.ApplicationCommandData()
	if len(data.Options) > 0 {
		for _, opt := range data.Options[0].Options {
			if opt.Name == "round" {
				round = opt.IntValue()
			}
		}
	}

	if round == 0 {
		t, err := api.getTournament(ctx, tournamentID)
		if err != nil {
			resp.Data.Content = fmt.Sprintf("Error fetching tournament %v: %v",
				tournamentID, err)
			log.Printf("discordbot.pairings: %v", resp.Data.Content)
			return resp
		}
		if t.CurrentRound == 0 {
			resp.Data.Content = fmt.Sprintf("No pairings yet for %v.", t.Name)
			log.Printf("discordbot.pairings: %v", resp.Data.Content)
			return resp
		}
		round = int64(t.CurrentRound)
	}

	out, err := api.pairingsText(ctx, tournamentID, int(round))
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching pairings for %v: %v",
			tournamentID, err)
		log.Printf("discordbot.pairings: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(out))

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdStandingsCmdHandler handles the /td standings command to display current
// standings with tiebreaks
func tdStandingsCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	tournamentID, broadcast := tournamentOpts(inter)
	if tournamentID == "" {
		resp.Data.Content = "Please provide a tournament ID."
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	out, err := api.standingsText(ctx, tournamentID)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching standings for %v: %v",
			tournamentID, err)
		log.Printf("discordbot.standings: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(out))

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdCrosstableCmdHandler handles the /td crosstable command to display the
// tournament crosstable
func tdCrosstableCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	tournamentID, broadcast := tournamentOpts(inter)
	if tournamentID == "" {
		resp.Data.Content = "Please provide a tournament ID."
		log.Printf("discordbot.crosstable: %v", resp.Data.Content)
		return resp
	}

	out, err := api.crosstableText(ctx, tournamentID)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching crosstable for %v: %v",
			tournamentID, err)
		log.Printf("discordbot.crosstable: %v", resp.Data.Content)
		return resp
	}

	// Wrap output in code block for monospace formatting in Discord
	resp.Data.Content = fmt.Sprintf("```\n%s```", truncateContent(out))

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// tdProgressCmdHandler handles the /td progress command to show how much of
// the current round has been recorded
func tdProgressCmdHandler(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse {

	resp := &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Flags: discordgo.MessageFlagsEphemeral,
		},
	}

	tournamentID, broadcast := tournamentOpts(inter)
	if tournamentID == "" {
		resp.Data.Content = "Please provide a tournament ID."
		log.Printf("discordbot.progress: %v", resp.Data.Content)
		return resp
	}

	prog, err := api.getProgress(ctx, tournamentID)
	if err != nil {
		resp.Data.Content = fmt.Sprintf("Error fetching progress for %v: %v",
			tournamentID, err)
		log.Printf("discordbot.progress: %v", resp.Data.Content)
		return resp
	}

	var sb strings.Builder
	if prog.Complete {
		sb.WriteString(fmt.Sprintf("**Round %v**: all results are in\n",
			prog.Round))
	} else {
		sb.WriteString(fmt.Sprintf("**Round %v**: results outstanding\n",
			prog.Round))
	}
	for _, sec := range prog.Sections {
		name := sec.Section
		if name == "" {
			name = "Open"
		}
		sb.WriteString(fmt.Sprintf("- %v: %v/%v boards recorded", name,
			sec.Recorded, sec.Boards))
		if len(sec.MissingBoards) > 0 {
			var boards []string
			for _, b := range sec.MissingBoards {
				boards = append(boards, fmt.Sprintf("%v", b))
			}
			sb.WriteString(fmt.Sprintf(" (waiting on %v)",
				strings.Join(boards, ", ")))
		}
		sb.WriteString("\n")
	}
	resp.Data.Content = truncateContent(sb.String())

	if broadcast {
		resp.Data.Flags = 0
	}

	return resp
}

// https://discord.com/developers/docs/resources/channel#start-thread-in-forum-or-media-channel-forum-and-media-thread-message-params-object
// limits messages to 2k characters
func truncateContent(s string) string {
	const MsgLimit = 1988 // keep space for newlines and markdown
	runes := []rune(s)
	if len(runes) > MsgLimit {
		s = fmt.Sprintf("%v...", string(runes[:MsgLimit]))
	}
	return s
}
