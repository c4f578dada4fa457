/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// EventProcessor is the pool of workers that drains the event queue. Each
// worker pulls one work item at a time and executes either fan-out of a
// posted event to its subscribers or cascading deletion of a stored event.
//
// Handler failures are logged and swallowed at the work-item boundary; they
// never terminate a worker. Stop cancels every worker at its next
// queue-receive point; an item pulled but not fully processed is lost.
type EventProcessor struct {
	queue               EventQueue
	eventStorage        EventStorage
	subscriptionStorage SubscriptionStorage
	concurrency         int

	cancel context.CancelFunc
	group  *errgroup.Group
}

func NewEventProcessor(queue EventQueue, eventStorage EventStorage,
	subscriptionStorage SubscriptionStorage, concurrency int) *EventProcessor {
	return &EventProcessor{
		queue:               queue,
		eventStorage:        eventStorage,
		subscriptionStorage: subscriptionStorage,
		concurrency:         concurrency,
	}
}

// Start launches the worker pool. The workers run until Stop is called or
// the parent context is canceled.
func (p *EventProcessor) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	group, groupCtx := errgroup.WithContext(workerCtx)
	p.group = group
	for i := 0; i < p.concurrency; i++ {
		worker := i
		group.Go(func() error {
			p.workerLoop(groupCtx, worker)
			return nil
		})
	}
	slog.Info("Event processor started", "concurrency", p.concurrency)
}

// Stop cancels all workers and waits for them to finish their current item.
// The queue is not drained.
func (p *EventProcessor) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	_ = p.group.Wait()
	slog.Info("Event processor stopped")
}

func (p *EventProcessor) workerLoop(ctx context.Context, worker int) {
	for {
		item, err := p.queue.Get(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				slog.Debug("Event processor worker canceled", "worker", worker)
				return
			}
			slog.Error("Failed to receive work item", "worker", worker, "err", err)
			return
		}
		if err := p.handle(ctx, item); err != nil {
			slog.Error("Failed to process work item",
				"worker", worker, "action", item.Action, "err", err)
		}
	}
}

func (p *EventProcessor) handle(ctx context.Context, item WorkItem) error {
	switch item.Action {
	case ActionPost:
		return p.handlePost(ctx, item.Payload)
	case ActionDelete:
		return p.handleDelete(ctx, item.Payload)
	default:
		return fmt.Errorf("unknown work item action %q", item.Action)
	}
}

// handlePost replicates the posted event to every current subscriber of its
// newsfeed. The originator is stored first, then the replicas in the order
// the subscription store returned them, which is also the order recorded in
// the originator's child list. Writes are best-effort: a failed add is
// logged and the remaining events are still attempted, so a capacity wall on
// one feed does not block fan-out to the others.
func (p *EventProcessor) handlePost(ctx context.Context, payload json.RawMessage) error {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("failed to deserialize posted event: %w", err)
	}

	subscriptions, err := p.subscriptionStorage.GetByToNewsfeedID(ctx, event.NewsfeedID)
	if err != nil {
		return fmt.Errorf("failed to load subscribers of newsfeed %q: %w", event.NewsfeedID, err)
	}

	children := make([]Event, 0, len(subscriptions))
	for _, subscription := range subscriptions {
		child := NewEvent(subscription.NewsfeedID, event.Data)
		parent := event.FQID()
		child.ParentFQID = &parent
		children = append(children, child)
		event.TrackChildFQIDs(child.FQID())
	}

	now := time.Now().UTC()
	for _, toStore := range append([]Event{event}, children...) {
		toStore.MarkPublished(now)
		if err := p.eventStorage.Add(ctx, toStore); err != nil {
			slog.Error("Failed to store event during fan-out",
				"newsfeed_id", toStore.NewsfeedID, "event_id", toStore.ID, "err", err)
		}
	}
	return nil
}

// handleDelete removes the event and every replica listed on it. A deletion
// aimed at an absent event is dropped silently; replicas already gone (for
// example evicted by capacity) are skipped the same way.
func (p *EventProcessor) handleDelete(ctx context.Context, payload json.RawMessage) error {
	var target DeletePayload
	if err := json.Unmarshal(payload, &target); err != nil {
		return fmt.Errorf("failed to deserialize delete payload: %w", err)
	}
	eventID, err := target.ParsedEventID()
	if err != nil {
		return err
	}

	event, err := p.eventStorage.GetByFQID(ctx, target.NewsfeedID, eventID)
	if err != nil {
		if typederrors.IsEventNotFoundError(err) {
			slog.Debug("Dropping deletion of absent event",
				"newsfeed_id", target.NewsfeedID, "event_id", target.EventID)
			return nil
		}
		return fmt.Errorf("failed to load event for deletion: %w", err)
	}

	for _, child := range event.ChildFQIDs {
		if err := p.eventStorage.DeleteByFQID(ctx, child.NewsfeedID, child.EventID); err != nil {
			slog.Error("Failed to delete child event",
				"newsfeed_id", child.NewsfeedID, "event_id", child.EventID, "err", err)
		}
	}
	return p.eventStorage.DeleteByFQID(ctx, event.NewsfeedID, event.ID)
}
