/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
)

const testTournamentID = "11111111-1111-1111-1111-111111111111"

// newTestAPI points the package level api client at a local test server
// vending canned tourneyd responses.
func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/tournaments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"success":true,"data":[{"id":"%v","name":"Summer Swiss","format":"swiss","totalRounds":4,"currentRound":2,"status":"active"}]}`,
			testTournamentID)
	})
	mux.HandleFunc("/tournaments/"+testTournamentID,
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprintf(w, `{"success":true,"data":{"id":"%v","name":"Summer Swiss","format":"swiss","totalRounds":4,"currentRound":2,"status":"active"}}`,
				testTournamentID)
		})
	mux.HandleFunc("/pairings", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("format") != "text" {
			http.Error(w, `{"success":false,"error":"validation","detail":"expected format=text"}`,
				http.StatusBadRequest)
			return
		}
		fmt.Fprintf(w, "Round %v Pairings:\n\nBoard  White  Black\n",
			r.URL.Query().Get("round"))
	})
	mux.HandleFunc("/tournaments/"+testTournamentID+"/progress",
		func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"success":true,"data":{"round":2,"complete":false,"sections":[{"section":"","boards":4,"recorded":3,"missingBoards":[2]}]}}`)
		})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	api = &apiClient{baseURL: srv.URL, client: srv.Client()}

	return srv
}

func subCommandInteraction(sub string,
	opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {

	return &discordgo.Interaction{
		Type: discordgo.InteractionApplicationCommand,
		Data: discordgo.ApplicationCommandInteractionData{
			Options: []*discordgo.ApplicationCommandInteractionDataOption{
				{
					Name:    sub,
					Type:    discordgo.ApplicationCommandOptionSubCommand,
					Options: opts,
				},
			},
		},
	}
}

func TestTdListCmdHandler(t *testing.T) {
	newTestAPI(t)
	ctx := context.Background()

	resp := tdListCmdHandler(ctx, subCommandInteraction("list"))
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response with Data")
	}
	if resp.Type != discordgo.InteractionResponseChannelMessageWithSource {
		t.Errorf("Expected response type %v, got %v",
			discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	}
	if !strings.Contains(resp.Data.Content, "Summer Swiss") {
		t.Errorf("Expected content to contain 'Summer Swiss', got %q",
			resp.Data.Content)
	}
	if !strings.Contains(resp.Data.Content, testTournamentID) {
		t.Errorf("Expected content to contain the tournament id, got %q",
			resp.Data.Content)
	}
	if resp.Data.Flags != discordgo.MessageFlagsEphemeral {
		t.Error("Expected ephemeral response without broadcast option")
	}
}

func TestTdPairingsCmdHandler(t *testing.T) {
	newTestAPI(t)
	ctx := context.Background()

	// No round given: the handler should resolve the current round first.
	inter := subCommandInteraction("pairings",
		&discordgo.ApplicationCommandInteractionDataOption{
			Name:  "tournament",
			Type:  discordgo.ApplicationCommandOptionString,
			Value: testTournamentID,
		})

	resp := tdPairingsCmdHandler(ctx, inter)
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response with Data")
	}
	if !strings.HasPrefix(resp.Data.Content, "```") {
		t.Errorf("Expected content wrapped in a code block, got %q",
			resp.Data.Content)
	}
	if !strings.Contains(resp.Data.Content, "Round 2 Pairings:") {
		t.Errorf("Expected round 2 pairings, got %q", resp.Data.Content)
	}
}

func TestTdPairingsCmdHandlerMissingTournament(t *testing.T) {
	newTestAPI(t)
	ctx := context.Background()

	resp := tdPairingsCmdHandler(ctx, subCommandInteraction("pairings"))
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response with Data")
	}
	if !strings.Contains(resp.Data.Content, "Please provide a tournament ID") {
		t.Errorf("Expected a missing-tournament message, got %q",
			resp.Data.Content)
	}
}

func TestTdProgressCmdHandler(t *testing.T) {
	newTestAPI(t)
	ctx := context.Background()

	inter := subCommandInteraction("progress",
		&discordgo.ApplicationCommandInteractionDataOption{
			Name:  "tournament",
			Type:  discordgo.ApplicationCommandOptionString,
			Value: testTournamentID,
		},
		&discordgo.ApplicationCommandInteractionDataOption{
			Name:  "broadcast",
			Type:  discordgo.ApplicationCommandOptionBoolean,
			Value: true,
		})

	resp := tdProgressCmdHandler(ctx, inter)
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response with Data")
	}
	if !strings.Contains(resp.Data.Content, "3/4 boards recorded") {
		t.Errorf("Expected progress counts in content, got %q",
			resp.Data.Content)
	}
	if !strings.Contains(resp.Data.Content, "waiting on 2") {
		t.Errorf("Expected missing board list in content, got %q",
			resp.Data.Content)
	}
	if resp.Data.Flags != 0 {
		t.Error("Expected broadcast response to clear the ephemeral flag")
	}
}

func TestTdCmdHandlerRoutesUnknownToHelp(t *testing.T) {
	ctx := context.Background()

	resp := tdCmdHandler(ctx, subCommandInteraction("bogus"))
	if resp == nil || resp.Data == nil {
		t.Fatal("Expected non-nil response with Data")
	}
	if !strings.Contains(resp.Data.Content, "/td") {
		t.Errorf("Expected help text, got %q", resp.Data.Content)
	}
}

func TestTruncateContent(t *testing.T) {
	short := "hello"
	if got := truncateContent(short); got != short {
		t.Errorf("Expected short content unchanged, got %q", got)
	}

	long := strings.Repeat("x", 4000)
	got := truncateContent(long)
	if len([]rune(got)) != 1988+3 {
		t.Errorf("Expected truncation to 1991 runes, got %v", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Expected truncated content to end with ellipsis, got %q",
			got[len(got)-10:])
	}
}
