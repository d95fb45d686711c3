// Package worker consumes transaction events off the queue and keeps an
// audit trail of mutations, independent of the web process.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"finboard/internal/amqp"
	"finboard/internal/core"
	"finboard/internal/storage"
)

// AuditWorker handles transaction events published by the web process.
// Created and updated events are enriched with the stored record; delete
// events are checked against the store so a failed delete shows up in
// the logs.
type AuditWorker struct {
	store storage.TransactionStore

	mu    sync.Mutex
	stats Stats
}

// Stats counts processed events by action.
type Stats struct {
	Created int64
	Updated int64
	Deleted int64
	Unknown int64
}

func NewAuditWorker(store storage.TransactionStore) *AuditWorker {
	return &AuditWorker{store: store}
}

// HandleEvent processes one transaction event. Returning an error nacks
// the message for redelivery.
func (w *AuditWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	switch event.Action {
	case amqp.ActionCreated, amqp.ActionUpdated:
		return w.auditMutation(ctx, event)
	case amqp.ActionDeleted:
		return w.auditDeletion(ctx, event)
	default:
		slog.WarnContext(ctx, "Unknown event action", "action", event.Action, "ids", event.IDs)
		w.count(event.Action)
		return nil
	}
}

func (w *AuditWorker) auditMutation(ctx context.Context, event *amqp.TransactionEvent) error {
	for _, id := range event.IDs {
		t, err := w.store.GetTransaction(ctx, id)
		if errors.Is(err, core.ErrNotFound) {
			// The record was deleted between publish and consume.
			slog.WarnContext(ctx, "Audited transaction no longer exists",
				"action", event.Action, "id", id, "timestamp", event.Timestamp)
			continue
		}
		if err != nil {
			return fmt.Errorf("load transaction %d: %w", id, err)
		}
		slog.InfoContext(ctx, "Transaction audit",
			"action", event.Action,
			"id", t.ID,
			"title", t.Title,
			"amount_cents", t.Amount.Cents,
			"status", string(t.Status),
			"date", t.Date.ISO(),
			"timestamp", event.Timestamp)
	}
	w.count(event.Action)
	return nil
}

func (w *AuditWorker) auditDeletion(ctx context.Context, event *amqp.TransactionEvent) error {
	var lingering []int64
	for _, id := range event.IDs {
		_, err := w.store.GetTransaction(ctx, id)
		if err == nil {
			lingering = append(lingering, id)
			continue
		}
		if !errors.Is(err, core.ErrNotFound) {
			return fmt.Errorf("check transaction %d: %w", id, err)
		}
	}
	if len(lingering) > 0 {
		slog.WarnContext(ctx, "Deleted transactions still present",
			"ids", lingering, "timestamp", event.Timestamp)
	}
	slog.InfoContext(ctx, "Transaction audit",
		"action", event.Action,
		"count", len(event.IDs),
		"timestamp", event.Timestamp)
	w.count(event.Action)
	return nil
}

func (w *AuditWorker) count(action string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	switch action {
	case amqp.ActionCreated:
		w.stats.Created++
	case amqp.ActionUpdated:
		w.stats.Updated++
	case amqp.ActionDeleted:
		w.stats.Deleted++
	default:
		w.stats.Unknown++
	}
}

// Stats returns a snapshot of the processed-event counters.
func (w *AuditWorker) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}
