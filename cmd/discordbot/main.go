/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
)

// Credentials and command registration state come from the environment (or a
// .env file) rather than being baked into the binary.
const (
	TokenEnvVar   = "DISCORD_BOT_TOKEN"
	PubKeyEnvVar  = "DISCORD_PUBLIC_KEY"
	AppIdEnvVar   = "DISCORD_APP_ID"
	CmdIdEnvVar   = "DISCORD_CMD_ID"
	CmdHashEnvVar = "DISCORD_CMD_HASH"
	AddrEnvVar    = "DISCORD_ADDR"
)

var botPubKey ed25519.PublicKey
var botAppId string
var tdCmdId string
var lastCmdUpdateHash string

var client *discordgo.Session

type TopLevelCommand string

const (
	TdCmd TopLevelCommand = "td"
)

type CmdHandler func(ctx context.Context,
	inter *discordgo.Interaction) *discordgo.InteractionResponse

var topLevelCmdHdlrs = map[TopLevelCommand]CmdHandler{
	TdCmd: tdCmdHandler,
}

// api is the tourneyd client shared by the command handlers; tests swap in
// one pointed at a local test server.
var api *apiClient

func logHeaders(r *http.Request) {
	for name, values := range r.Header {
		for _, value := range values {
			log.Printf("  %v: %v\n", name, value)
		}
	}
}

func interactionHandler(w http.ResponseWriter, r *http.Request) {
	// log.Printf("discordbot.int: processing new request HEADERS:")
	// logHeaders(r)

	if !discordgo.VerifyInteraction(r, botPubKey) {
		log.Printf("discordbot.int: failed to verify")
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Printf("discordbot.int: failed to read request body: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	var inter discordgo.Interaction
	if err := inter.UnmarshalJSON(body); err != nil {
		log.Printf("discordbot.int: failed to unmarshal interaction: err:%v body:%v",
			err, body)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	resp := &discordgo.InteractionResponse{}
	if inter.Type == discordgo.InteractionPing {
		resp.Type = discordgo.InteractionResponsePong
	} else if inter.Type == discordgo.InteractionApplicationCommand {
		hdlr, ok :=
			topLevelCmdHdlrs[TopLevelCommand(inter.ApplicationCommandData().Name)]
		if !ok {
			resp.Type = discordgo.InteractionResponseChannelMessageWithSource
			resp.Data = &discordgo.InteractionResponseData{
				Content: fmt.Sprintf("unknown command '%v'",
					inter.ApplicationCommandData().Name),
				Flags: discordgo.MessageFlagsEphemeral,
			}
		} else {
			resp = hdlr(r.Context(), &inter)
		}
	} else {
		log.Printf("discordbot.int: unimplemented interation type %v: inter:%v",
			inter.Type, inter)
		w.WriteHeader(http.StatusNotImplemented)
		return
	}

	rawResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("discordbot.int: failed to marshal resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	_, err = w.Write(rawResp)
	if err != nil {
		log.Printf("discordbot.int: failed to write resp: err:%v", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	return
}

func initDiscord() error {
	pubKeyText := os.Getenv(PubKeyEnvVar)
	if pubKeyText == "" {
		return fmt.Errorf("%v is not set", PubKeyEnvVar)
	}
	pubKeyBytes, err := hex.DecodeString(pubKeyText)
	if err != nil {
		return fmt.Errorf("unable to parse public key: %w", err)
	}
	botPubKey = ed25519.PublicKey(pubKeyBytes)

	botPrivToken := os.Getenv(TokenEnvVar)
	if botPrivToken == "" {
		return fmt.Errorf("%v is not set", TokenEnvVar)
	}
	client, err = discordgo.New("Bot " + botPrivToken)
	if err != nil {
		return fmt.Errorf("unable to initialize discord client: %w", err)
	}

	botAppId = os.Getenv(AppIdEnvVar)
	if botAppId == "" {
		return fmt.Errorf("%v is not set", AppIdEnvVar)
	}
	tdCmdId = os.Getenv(CmdIdEnvVar)
	lastCmdUpdateHash = os.Getenv(CmdHashEnvVar)

	return nil
}

func shouldUpdateCmdRegistration(cmd *discordgo.ApplicationCommand) bool {
	cmdJson, err := json.Marshal(cmd)
	if err != nil {
		log.Fatalf("discordbot.reg: failed to marshal cmd: %v", err)
		return false
	}
	hasher := sha256.New()
	hasher.Write(cmdJson)
	hash := hasher.Sum(nil)
	hexString := hex.EncodeToString(hash)

	shouldUpdate := (hexString != lastCmdUpdateHash)

	if shouldUpdate {
		log.Printf("discordbot.reg: updating cmd reg; please update %v to %v",
			CmdHashEnvVar, hexString)
	}

	return shouldUpdate
}

func registerSlashCommands() {
	broadcastOpt := func() *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionBoolean,
			Name:        "broadcast",
			Description: "Share with the rest of the channel instead of only to you (default is false)",
			Required:    false,
		}
	}
	tournamentOpt := func() *discordgo.ApplicationCommandOption {
		return &discordgo.ApplicationCommandOption{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "tournament",
			Description: "Tournament id (as returned by list)",
			Required:    true,
		}
	}

	tdCmd := &discordgo.ApplicationCommand{
		Name:        string(TdCmd),
		Description: "Tournament director commands; try /td help to start",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdHelpCmd),
				Description: "Show usage for td",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdAboutCmd),
				Description: "Show information about tourneyd-discordbot",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdListCmd),
				Description: "List tournaments",
				Options: []*discordgo.ApplicationCommandOption{
					broadcastOpt(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdPairingsCmd),
				Description: "Get pairings for a tournament round",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOpt(),
					{
						Type:        discordgo.ApplicationCommandOptionInteger,
						Name:        "round",
						Description: "Round number (default is the current round)",
						Required:    false,
					},
					broadcastOpt(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdStandingsCmd),
				Description: "Get current standings for a tournament",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOpt(),
					broadcastOpt(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdCrosstableCmd),
				Description: "Get the crosstable for a tournament",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOpt(),
					broadcastOpt(),
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        string(TdProgressCmd),
				Description: "Show result entry progress for the current round",
				Options: []*discordgo.ApplicationCommandOption{
					tournamentOpt(),
					broadcastOpt(),
				},
			},
		},
	}

	if tdCmdId == "" {
		cmd, err := client.ApplicationCommandCreate(botAppId, "", tdCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to register %v: %v", tdCmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: registered %v(cmdID:%v); please set %v",
			cmd.Name, cmd.ID, CmdIdEnvVar)
	} else if shouldUpdateCmdRegistration(tdCmd) {
		cmd, err := client.ApplicationCommandEdit(botAppId, "", tdCmdId, tdCmd)
		if err != nil {
			log.Printf("discordbot.reg: failed to update %v: %v", tdCmd.Name,
				err)
			return
		}

		log.Printf("discordbot.reg: updated %v(cmdID:%v)", cmd.Name, cmd.ID)
	}
}

func main() {
	log.SetFlags(log.Flags() &^ (log.Ldate | log.Ltime))

	// .env is optional; environment variables win
	_ = godotenv.Load()

	if err := initDiscord(); err != nil {
		log.Fatalf("discordbot.main: %v", err)
	}
	api = newAPIClient()

	go registerSlashCommands()

	addr := os.Getenv(AddrEnvVar)
	if addr == "" {
		addr = ":8080"
	}
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	log.Printf("discordbot.main: starting server on %v%v", hostname, addr)

	http.HandleFunc("/DiscordBot/Interaction", interactionHandler)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("discordbot.main: Serve failed: %v", err)
	}

	log.Printf("discordbot.main: exiting")
}
