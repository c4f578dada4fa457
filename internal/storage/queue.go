/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"fmt"

	"github.com/feedlane/newsfeed/internal/domain"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// InMemoryEventQueue is a bounded FIFO of work items backed by a buffered
// channel. The channel provides both the capacity bound and the FIFO
// ordering across producers; no further locking is needed.
type InMemoryEventQueue struct {
	items chan domain.WorkItem
}

func NewInMemoryEventQueue(maxSize int) *InMemoryEventQueue {
	return &InMemoryEventQueue{
		items: make(chan domain.WorkItem, maxSize),
	}
}

// Put enqueues the item without blocking. A full queue fails fast with a
// QueueFullError instead of applying backpressure.
func (q *InMemoryEventQueue) Put(ctx context.Context, item domain.WorkItem) error {
	select {
	case q.items <- item:
		return nil
	default:
		return typederrors.NewQueueFullError(
			nil,
			"Newsfeed event queue can not accept message because queue size limit exceeds maximum %d",
			cap(q.items),
		)
	}
}

// Get blocks until an item arrives or the context is canceled.
func (q *InMemoryEventQueue) Get(ctx context.Context) (domain.WorkItem, error) {
	select {
	case item := <-q.items:
		return item, nil
	case <-ctx.Done():
		return domain.WorkItem{}, fmt.Errorf("event queue receive interrupted: %w", ctx.Err())
	}
}

// IsEmpty reports whether the queue holds no items right now.
func (q *InMemoryEventQueue) IsEmpty() bool {
	return len(q.items) == 0
}
