/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mikeb26/tourneyd/internal"
	"github.com/mikeb26/tourneyd/tourney"
)

// apiClient talks to a running tourneyd instance. The bot keeps no database
// of its own; everything it shows is vended by the REST surface.
type apiClient struct {
	baseURL string
	client  *http.Client
}

func newAPIClient() *apiClient {
	base := os.Getenv(internal.APIBaseEnvVar)
	if base == "" {
		base = "http://localhost" + internal.DefaultAddr
	}

	return &apiClient{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// apiEnvelope matches tourneyd's JSON response wrapper.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Detail  string          `json:"detail,omitempty"`
}

func (a *apiClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		a.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %v (new): %w", path, err)
	}
	req.Header.Set("User-Agent", internal.UserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("unable to fetch %v (do): %w", path, err)
	}

	return resp, nil
}

// getJSON fetches an envelope wrapped payload and unmarshals its data field
// into out.
func (a *apiClient) getJSON(ctx context.Context, path string, out any) error {
	resp, err := a.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var env apiEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("unable to parse %v response: %w", path, err)
	}
	if !env.Success {
		return fmt.Errorf("tourneyd %v: %v", env.Error, env.Detail)
	}
	if out != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("unable to parse %v response: %w", path, err)
		}
	}

	return nil
}

// getText fetches a format=text rendering. Errors still arrive as JSON
// envelopes regardless of the requested format.
func (a *apiClient) getText(ctx context.Context, path string) (string, error) {
	resp, err := a.get(ctx, path)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env apiEnvelope
		if err := json.NewDecoder(resp.Body).Decode(&env); err == nil &&
			env.Error != "" {
			return "", fmt.Errorf("tourneyd %v: %v", env.Error, env.Detail)
		}
		return "", fmt.Errorf("unable to fetch %v (http): %v", path,
			resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("unable to read %v response: %w", path, err)
	}

	return string(body), nil
}

func (a *apiClient) listTournaments(
	ctx context.Context) ([]tourney.Tournament, error) {

	var list []tourney.Tournament
	if err := a.getJSON(ctx, "/tournaments", &list); err != nil {
		return nil, err
	}

	return list, nil
}

func (a *apiClient) getTournament(ctx context.Context,
	id string) (*tourney.Tournament, error) {

	var t tourney.Tournament
	path := "/tournaments/" + url.PathEscape(id)
	if err := a.getJSON(ctx, path, &t); err != nil {
		return nil, err
	}

	return &t, nil
}

func (a *apiClient) pairingsText(ctx context.Context, id string,
	round int) (string, error) {

	q := url.Values{}
	q.Set("tournament", id)
	q.Set("round", strconv.Itoa(round))
	q.Set("format", "text")

	return a.getText(ctx, "/pairings?"+q.Encode())
}

func (a *apiClient) standingsText(ctx context.Context, id string) (string, error) {
	path := fmt.Sprintf("/tournaments/%v/standings?format=text",
		url.PathEscape(id))

	return a.getText(ctx, path)
}

func (a *apiClient) crosstableText(ctx context.Context, id string) (string, error) {
	path := fmt.Sprintf("/tournaments/%v/crosstable?format=text",
		url.PathEscape(id))

	return a.getText(ctx, path)
}

func (a *apiClient) getProgress(ctx context.Context,
	id string) (*tourney.RoundProgress, error) {

	var prog tourney.RoundProgress
	path := fmt.Sprintf("/tournaments/%v/progress", url.PathEscape(id))
	if err := a.getJSON(ctx, path, &prog); err != nil {
		return nil, err
	}

	return &prog, nil
}
