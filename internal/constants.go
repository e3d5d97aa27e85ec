/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

import "time"

const (
	UserAgent = "tourneyd/0.1.0 (+https://github.com/mikeb26/tourneyd)"

	// Environment variables honored by the server and bot binaries.
	AddrEnvVar        = "TOURNEYD_ADDR"
	DBEnvVar          = "TOURNEYD_DB"
	CacheBucketEnvVar = "TOURNEYD_CACHE_BUCKET"
	WebhookEnvVar     = "TOURNEYD_WEBHOOK_URL"
	APIBaseEnvVar     = "TOURNEYD_API_BASE"

	DefaultAddr = ":8080"
	DefaultDB   = "tourneyd.db"

	// Rating lookups are read-mostly; cap the process wide cache.
	LookupCacheMaxEntries = 10000
	LookupCacheTTL        = 30 * time.Minute

	// External federation calls get a short leash and bounded retries.
	LookupTimeout       = 10 * time.Second
	LookupRetryAttempts = 3
	LookupRetryInitial  = 1 * time.Second
)
