/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */

// Package notify delivers round lifecycle events to a configured webhook.
// Delivery is best effort: events queue in memory, post in the background,
// and drop with a log line when the queue is full or the endpoint stays
// unreachable.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/mikeb26/tourneyd/internal"
	"github.com/mikeb26/tourneyd/tourney"
)

const (
	QueueDepth     = 64
	PublishTimeout = 10 * time.Second
	RetryAttempts  = 3
	RetryInitial   = 1 * time.Second
)

// Queue posts tournament events to a webhook URL from a background
// worker. It satisfies the round controller's notifier contract.
type Queue struct {
	url    string
	client *http.Client
	events chan tourney.Event
	done   chan struct{}
}

// NewQueue starts the delivery worker. The worker runs until Close.
func NewQueue(url string) *Queue {
	q := &Queue{
		url:    url,
		client: &http.Client{Timeout: PublishTimeout},
		events: make(chan tourney.Event, QueueDepth),
		done:   make(chan struct{}),
	}
	go q.run()

	return q
}

// Publish enqueues ev without blocking. A full queue drops the event.
func (q *Queue) Publish(ev tourney.Event) {
	select {
	case q.events <- ev:
	default:
		log.Printf("notify: queue full; dropping %v event for %v", ev.Kind,
			ev.Name)
	}
}

// Close drains the queue and stops the worker.
func (q *Queue) Close() {
	close(q.events)
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)

	for ev := range q.events {
		if err := q.post(ev); err != nil {
			log.Printf("notify: unable to deliver %v event for %v: %v",
				ev.Kind, ev.Name, err)
		}
	}
}

func (q *Queue) post(ev tourney.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("unable to encode event: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(RetryAttempts)*(PublishTimeout+2*RetryInitial))
	defer cancel()

	return internal.Retry(ctx, RetryAttempts, RetryInitial, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, q.url,
			bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("unable to build webhook request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("User-Agent", internal.UserAgent)

		resp, err := q.client.Do(req)
		if err != nil {
			return fmt.Errorf("unable to post webhook: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusMultipleChoices {
			return fmt.Errorf("webhook returned %v", resp.Status)
		}
		return nil
	})
}
