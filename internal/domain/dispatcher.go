/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"context"
	"encoding/json"
	"fmt"
)

// EventDispatcher accepts posts and deletions from callers and turns them
// into ordered work items on the event queue. It validates input and builds
// the initial event record; it never writes to a store.
type EventDispatcher struct {
	specification *EventSpecification
	queue         EventQueue
}

func NewEventDispatcher(specification *EventSpecification, queue EventQueue) *EventDispatcher {
	return &EventDispatcher{
		specification: specification,
		queue:         queue,
	}
}

// DispatchPost validates newsfeedID, builds a fresh event and enqueues it for
// fan-out. The returned event has no publishing time yet; a processor stamps
// it when the fan-out lands in the store.
func (d *EventDispatcher) DispatchPost(ctx context.Context, newsfeedID string, data map[string]any) (Event, error) {
	event := NewEvent(newsfeedID, data)
	if err := d.specification.Check(event); err != nil {
		return Event{}, err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return Event{}, fmt.Errorf("failed to serialize event %q: %w", event.ID, err)
	}
	if err := d.queue.Put(ctx, WorkItem{Action: ActionPost, Payload: payload}); err != nil {
		return Event{}, err
	}
	return event, nil
}

// DispatchDelete enqueues cascading deletion of (newsfeedID, eventID). The
// target is not checked against the store: the processor is authoritative and
// drops deletions of absent events.
func (d *EventDispatcher) DispatchDelete(ctx context.Context, newsfeedID, eventID string) error {
	payload, err := json.Marshal(DeletePayload{NewsfeedID: newsfeedID, EventID: eventID})
	if err != nil {
		return fmt.Errorf("failed to serialize delete payload: %w", err)
	}
	return d.queue.Put(ctx, WorkItem{Action: ActionDelete, Payload: payload})
}
