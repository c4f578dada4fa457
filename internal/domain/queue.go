/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Action tags a work item on the event queue.
type Action string

const (
	// ActionPost requests fan-out of a freshly dispatched event.
	ActionPost Action = "post"
	// ActionDelete requests cascading deletion of a stored event.
	ActionDelete Action = "delete"
)

// WorkItem is the unit of hand-off between the dispatcher and the processor
// pool. The payload is the serialized event for a post and a DeletePayload
// for a delete.
type WorkItem struct {
	Action  Action          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// DeletePayload identifies the event a delete work item targets.
type DeletePayload struct {
	NewsfeedID string `json:"newsfeed_id"`
	EventID    string `json:"event_id"`
}

// ParsedEventID returns the parsed event id of the payload.
func (p DeletePayload) ParsedEventID() (uuid.UUID, error) {
	id, err := uuid.Parse(p.EventID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("delete payload contains a malformed event id: %w", err)
	}
	return id, nil
}

// EventQueue is the bounded FIFO connecting the dispatcher to the processor
// pool. It is the only cross-worker hand-off in the pipeline.
type EventQueue interface {
	// Put enqueues the item without blocking. A full queue fails with a
	// QueueFullError.
	Put(ctx context.Context, item WorkItem) error

	// Get blocks until an item is available or the context is canceled.
	// Delivery order is FIFO across all producers.
	Get(ctx context.Context) (WorkItem, error)

	// IsEmpty reports whether the queue currently holds no items. Used by
	// tests to observe drain.
	IsEmpty() bool
}
