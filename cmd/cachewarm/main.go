/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mikeb26/tourneyd/internal"
	"github.com/mikeb26/tourneyd/store"
	"github.com/mikeb26/tourneyd/uschess"
)

// this program exists just to warm the http cache for registered players

func main() {
	ctx := context.Background()

	// .env is optional; environment variables win
	_ = godotenv.Load()

	dbPath := flag.String("db", "", "Database path or DSN (default $TOURNEYD_DB)")
	flag.Parse()
	dsn := *dbPath
	if dsn == "" {
		dsn = os.Getenv(internal.DBEnvVar)
	}
	if dsn == "" {
		dsn = internal.DefaultDB
	}

	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("cachewarm: unable to open store %v: %v", dsn, err)
	}

	tournaments, err := st.Tournaments().List(ctx)
	if err != nil {
		log.Fatalf("cachewarm: unable to list tournaments: %v", err)
	}

	client := uschess.NewClient(ctx)
	warmed := make(map[int]bool)
	for _, t := range tournaments {
		players, err := st.Players().ListForTournament(ctx, t.ID)
		if err != nil {
			// best effort
			continue
		}
		for _, p := range players {
			if p.UscfID == 0 || warmed[p.UscfID] {
				continue
			}
			warmed[p.UscfID] = true

			member, err := client.FetchPlayer(ctx, uschess.MemID(p.UscfID))
			time.Sleep(2 * time.Second) // avoid pegging uschess.org
			if err != nil {
				// best effort
				continue
			}

			fmt.Printf("warmed %v player data\n", member.Name)
		}
	}
}
