/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package httpcache builds http.Clients whose responses are cached for a
// fixed TTL. Federation rating lookups are slow and rate-limited upstream,
// so every fetch in this repository goes through one of these clients.
package httpcache

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	gjcache "github.com/gregjones/httpcache"

	"github.com/mikeb26/tourneyd/internal"
	"github.com/mikeb26/tourneyd/lrucache"
	"github.com/mikeb26/tourneyd/s3cache"
)

// NewCachedHttpClient returns an http.Client that caches responses for
// maxAge. The backing store is a bounded in-process LRU by default, or S3
// when TOURNEYD_CACHE_BUCKET is set so that multiple processes can share
// one cache. Origin cache headers are rewritten to enforce the client-side
// TTL.
func NewCachedHttpClient(ctx context.Context, maxAge time.Duration) *http.Client {
	var backend gjcache.Cache

	bucket := os.Getenv(internal.CacheBucketEnvVar)
	if bucket != "" {
		s3c := s3cache.New(ctx, bucket, false, true)
		err := s3c.Init()
		if err != nil {
			log.Printf("httpcache: warning failed to init S3 cache: %v; falling back to local cache", err)
		} else {
			backend = s3c
		}
	}
	if backend == nil {
		// in-process entries are bounded independently of the response
		// max-age; the shared S3 cache has no expiry of its own so it
		// honors the full max-age
		ttl := maxAge
		if ttl > internal.LookupCacheTTL {
			ttl = internal.LookupCacheTTL
		}
		backend = lrucache.New(internal.LookupCacheMaxEntries, ttl)
	}

	hc := gjcache.NewTransport(backend)
	// we have to inject our own header overrides here in order to override
	// server responses that might indicate caching shouldn't be done
	hc.Transport = &HeaderOverrideTransport{
		wrappedRT: http.DefaultTransport,
		Request: func(req *http.Request) {
			if req.Header.Get("User-Agent") == "" {
				req.Header.Set("User-Agent", internal.UserAgent)
			}
		},
		Response: func(resp *http.Response) error {
			// Strip any cache-busting headers from origin
			resp.Header.Del("Pragma")
			resp.Header.Del("Expires")
			resp.Header.Del("Cache-Control")
			// Enforce the provided TTL
			resp.Header.Set("Cache-Control",
				fmt.Sprintf("public, max-age=%d", int(maxAge/time.Second)))
			return nil
		},
	}

	return &http.Client{Transport: hc}
}

type HeaderOverrideTransport struct {
	Request  func(req *http.Request)
	Response func(resp *http.Response) error

	// Underlying RoundTripper (e.g. default transport or another decorator)
	wrappedRT http.RoundTripper
}

// RoundTrip applies Request and Response hooks around the underlying transport.
func (t *HeaderOverrideTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// clone so we don’t stomp on the caller’s original
	req2 := req.Clone(req.Context())
	if t.Request != nil {
		t.Request(req2)
	}

	resp, err := t.wrappedRT.RoundTrip(req2)
	if err != nil {
		return nil, err
	}

	if t.Response != nil {
		if err := t.Response(resp); err != nil {
			return nil, err
		}
	}
	return resp, nil
}
