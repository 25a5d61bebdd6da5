// Package handoff models each cross-page record as a typed channel with one
// producer page and one consumer page.
package handoff

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentorexpress/mentorexpress-web/internal/session"
	apperrors "github.com/mentorexpress/mentorexpress-web/pkg/errors"
	"github.com/mentorexpress/mentorexpress-web/pkg/logger"
	"github.com/mentorexpress/mentorexpress-web/pkg/metrics"
	"go.uber.org/zap"
)

// Handoff is a write-once, read-once record stored under a fixed key
type Handoff[T any] struct {
	key   string
	scope string
	ttl   time.Duration
	store session.Store
}

// New creates a hand-off channel for key in the given storage scope
func New[T any](store session.Store, key, scope string, ttl time.Duration) *Handoff[T] {
	return &Handoff[T]{key: key, scope: scope, ttl: ttl, store: store}
}

func (h *Handoff[T]) storageKey(ids session.IDs) string {
	return h.scope + ":" + ids.For(h.scope) + ":" + h.key
}

// Put stores value, replacing any previous record
func (h *Handoff[T]) Put(ctx context.Context, ids session.IDs, value *T) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", h.key, err)
	}
	if err := h.store.Set(ctx, h.storageKey(ids), data, h.ttl); err != nil {
		return err
	}
	metrics.HandoffOperations.WithLabelValues(h.key, "put").Inc()
	return nil
}

// Get reads the record without consuming it. A missing record is reported
// as (nil, false, nil).
func (h *Handoff[T]) Get(ctx context.Context, ids session.IDs) (*T, bool, error) {
	data, err := h.store.Get(ctx, h.storageKey(ids))
	if apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		// A record we cannot decode is treated as absent
		logger.Warn("Discarding undecodable hand-off record", zap.String("key", h.key), zap.Error(err))
		_ = h.store.Delete(ctx, h.storageKey(ids)) //nolint:errcheck // best effort cleanup
		return nil, false, nil
	}
	metrics.HandoffOperations.WithLabelValues(h.key, "get").Inc()
	return &value, true, nil
}

// TakeOnce reads the record and clears it
func (h *Handoff[T]) TakeOnce(ctx context.Context, ids session.IDs) (*T, bool, error) {
	value, ok, err := h.Get(ctx, ids)
	if err != nil || !ok {
		return value, ok, err
	}
	if err := h.Clear(ctx, ids); err != nil {
		return nil, false, err
	}
	metrics.HandoffOperations.WithLabelValues(h.key, "take").Inc()
	return value, true, nil
}

// Clear removes the record if present
func (h *Handoff[T]) Clear(ctx context.Context, ids session.IDs) error {
	if err := h.store.Delete(ctx, h.storageKey(ids)); err != nil {
		return err
	}
	metrics.HandoffOperations.WithLabelValues(h.key, "clear").Inc()
	return nil
}
