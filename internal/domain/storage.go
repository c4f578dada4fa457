/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"context"

	"github.com/google/uuid"
)

// EventStorage holds the events of every newsfeed, most recent first. The
// in-memory implementation never suspends; implementations backed by a remote
// store honour the caller's context.
type EventStorage interface {
	// GetByNewsfeedID returns a point-in-time copy of the events of
	// newsfeedID, most recent first.
	GetByNewsfeedID(ctx context.Context, newsfeedID string) ([]Event, error)

	// GetByFQID returns the event identified by (newsfeedID, eventID) or an
	// EventNotFoundError.
	GetByFQID(ctx context.Context, newsfeedID string, eventID uuid.UUID) (Event, error)

	// Add inserts the event at the head of its feed. A feed at capacity
	// silently evicts its oldest entry; a new feed beyond the newsfeed limit
	// fails with a NewsfeedLimitError.
	Add(ctx context.Context, event Event) error

	// DeleteByFQID removes the matching event if present. An absent event is
	// not an error.
	DeleteByFQID(ctx context.Context, newsfeedID string, eventID uuid.UUID) error
}

// SubscriptionStorage holds subscriptions under two indexes: outgoing
// (keyed by the subscriber) and incoming (keyed by the publisher). Every
// record appears in both, most recent first.
type SubscriptionStorage interface {
	// GetByNewsfeedID returns the outgoing subscriptions of newsfeedID.
	GetByNewsfeedID(ctx context.Context, newsfeedID string) ([]Subscription, error)

	// GetByToNewsfeedID returns the incoming subscriptions of newsfeedID.
	GetByToNewsfeedID(ctx context.Context, newsfeedID string) ([]Subscription, error)

	// GetByFQID returns the subscription identified by (newsfeedID,
	// subscriptionID) or a SubscriptionNotFoundError.
	GetByFQID(ctx context.Context, newsfeedID string, subscriptionID uuid.UUID) (Subscription, error)

	// GetBetween returns the subscription of newsfeedID to toNewsfeedID or a
	// SubscriptionBetweenNotFoundError.
	GetBetween(ctx context.Context, newsfeedID, toNewsfeedID string) (Subscription, error)

	// Add inserts the subscription at the head of both indexes. Capacity is a
	// hard wall here: a full feed fails with a SubscriptionLimitError and a
	// new feed beyond the newsfeed limit with a NewsfeedLimitError.
	// Subscriptions are never evicted.
	Add(ctx context.Context, subscription Subscription) error

	// DeleteByFQID removes the subscription from both indexes or fails with a
	// SubscriptionNotFoundError.
	DeleteByFQID(ctx context.Context, newsfeedID string, subscriptionID uuid.UUID) error
}
