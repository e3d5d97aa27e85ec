/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/mikeb26/tourneyd/internal"
	"github.com/mikeb26/tourneyd/notify"
	"github.com/mikeb26/tourneyd/store"
	"github.com/mikeb26/tourneyd/tourney"
)

func main() {
	ctx := context.Background()

	// .env is optional; environment variables win
	_ = godotenv.Load()

	dsn := os.Getenv(internal.DBEnvVar)
	if dsn == "" {
		dsn = internal.DefaultDB
	}
	st, err := store.Open(dsn)
	if err != nil {
		log.Fatalf("tourneyd: unable to open store %v: %v", dsn, err)
	}

	var notifier tourney.Notifier
	if url := os.Getenv(internal.WebhookEnvVar); url != "" {
		q := notify.NewQueue(url)
		defer q.Close()
		notifier = q
	}

	srv := newServer(ctx, st, notifier)

	addr := os.Getenv(internal.AddrEnvVar)
	if addr == "" {
		addr = internal.DefaultAddr
	}
	log.Printf("tourneyd: listening on %v", addr)
	if err := srv.router.Run(addr); err != nil {
		log.Fatalf("tourneyd: serve failed: %v", err)
	}
}
