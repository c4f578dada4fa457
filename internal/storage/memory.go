/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/feedlane/newsfeed/internal/domain"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// InMemoryEventStorage keeps per-newsfeed event lists in process memory,
// most recent first. A single mutex serialises all access so that the LIFO
// view stays consistent and eviction decisions are race-free.
type InMemoryEventStorage struct {
	mutex            sync.Mutex
	feeds            map[string][]domain.Event
	maxNewsfeeds     int
	maxEventsPerFeed int
}

func NewInMemoryEventStorage(maxNewsfeeds, maxEventsPerNewsfeed int) *InMemoryEventStorage {
	return &InMemoryEventStorage{
		feeds:            map[string][]domain.Event{},
		maxNewsfeeds:     maxNewsfeeds,
		maxEventsPerFeed: maxEventsPerNewsfeed,
	}
}

// GetByNewsfeedID returns a snapshot of the feed, most recent first. Reading
// an unknown feed returns an empty list and does not create the feed.
func (s *InMemoryEventStorage) GetByNewsfeedID(ctx context.Context, newsfeedID string) ([]domain.Event, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.feeds[newsfeedID]), nil
}

// GetByFQID returns the event identified by (newsfeedID, eventID).
func (s *InMemoryEventStorage) GetByFQID(ctx context.Context, newsfeedID string, eventID uuid.UUID) (domain.Event, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, event := range s.feeds[newsfeedID] {
		if event.ID == eventID {
			return event, nil
		}
	}
	return domain.Event{}, typederrors.NewEventNotFoundError(
		nil, `Event "%s" could not be found in newsfeed "%s"`, eventID, newsfeedID,
	)
}

// Add inserts the event at the head of its feed. A feed at capacity evicts
// its oldest entry silently; a new feed beyond the newsfeed limit fails.
func (s *InMemoryEventStorage) Add(ctx context.Context, event domain.Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	feed, known := s.feeds[event.NewsfeedID]
	if !known && len(s.feeds) >= s.maxNewsfeeds {
		return typederrors.NewNewsfeedLimitError(
			nil,
			`Newsfeed "%s" could not be added to the storage because limit of newsfeeds number exceeds maximum %d`,
			event.NewsfeedID, s.maxNewsfeeds,
		)
	}
	if len(feed) >= s.maxEventsPerFeed {
		feed = feed[:len(feed)-1]
	}
	s.feeds[event.NewsfeedID] = append([]domain.Event{event}, feed...)
	return nil
}

// DeleteByFQID removes the matching event if present. Absence is a no-op so
// repeated deletions stay idempotent at this layer.
func (s *InMemoryEventStorage) DeleteByFQID(ctx context.Context, newsfeedID string, eventID uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	feed := s.feeds[newsfeedID]
	for index, event := range feed {
		if event.ID == eventID {
			s.feeds[newsfeedID] = slices.Delete(feed, index, index+1)
			return nil
		}
	}
	return nil
}

// InMemorySubscriptionStorage keeps every subscription under two indexes:
// outgoing, keyed by the subscriber, and incoming, keyed by the publisher.
// Both hold the same records, most recent first, and every mutation updates
// both under one lock so the indexes never diverge. Subscriptions are never
// evicted: a full feed is a hard failure.
type InMemorySubscriptionStorage struct {
	mutex          sync.Mutex
	subscriptions  map[string][]domain.Subscription
	subscribers    map[string][]domain.Subscription
	maxNewsfeeds   int
	maxSubsPerFeed int
}

func NewInMemorySubscriptionStorage(maxNewsfeeds, maxSubscriptionsPerNewsfeed int) *InMemorySubscriptionStorage {
	return &InMemorySubscriptionStorage{
		subscriptions:  map[string][]domain.Subscription{},
		subscribers:    map[string][]domain.Subscription{},
		maxNewsfeeds:   maxNewsfeeds,
		maxSubsPerFeed: maxSubscriptionsPerNewsfeed,
	}
}

// GetByNewsfeedID returns a snapshot of the outgoing subscriptions of
// newsfeedID, most recent first.
func (s *InMemorySubscriptionStorage) GetByNewsfeedID(ctx context.Context, newsfeedID string) ([]domain.Subscription, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.subscriptions[newsfeedID]), nil
}

// GetByToNewsfeedID returns a snapshot of the incoming subscriptions of
// newsfeedID, most recent first.
func (s *InMemorySubscriptionStorage) GetByToNewsfeedID(ctx context.Context, newsfeedID string) ([]domain.Subscription, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return slices.Clone(s.subscribers[newsfeedID]), nil
}

// GetByFQID returns the subscription identified by (newsfeedID,
// subscriptionID) via the outgoing index.
func (s *InMemorySubscriptionStorage) GetByFQID(ctx context.Context, newsfeedID string, subscriptionID uuid.UUID) (domain.Subscription, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, subscription := range s.subscriptions[newsfeedID] {
		if subscription.ID == subscriptionID {
			return subscription, nil
		}
	}
	return domain.Subscription{}, typederrors.NewSubscriptionNotFoundError(
		nil, `Subscription "%s" could not be found in newsfeed "%s"`, subscriptionID, newsfeedID,
	)
}

// GetBetween returns the subscription of newsfeedID to toNewsfeedID.
func (s *InMemorySubscriptionStorage) GetBetween(ctx context.Context, newsfeedID, toNewsfeedID string) (domain.Subscription, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	for _, subscription := range s.subscriptions[newsfeedID] {
		if subscription.ToNewsfeedID == toNewsfeedID {
			return subscription, nil
		}
	}
	return domain.Subscription{}, typederrors.NewSubscriptionBetweenNotFoundError(
		nil, `Subscription from newsfeed "%s" to "%s" could not be found`, newsfeedID, toNewsfeedID,
	)
}

// Add inserts the subscription at the head of both indexes atomically.
func (s *InMemorySubscriptionStorage) Add(ctx context.Context, subscription domain.Subscription) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	outgoing, known := s.subscriptions[subscription.NewsfeedID]
	if !known && len(s.subscriptions) >= s.maxNewsfeeds {
		return typederrors.NewNewsfeedLimitError(
			nil,
			`Newsfeed "%s" could not be added to the storage because limit of newsfeeds number exceeds maximum %d`,
			subscription.NewsfeedID, s.maxNewsfeeds,
		)
	}
	if len(outgoing) >= s.maxSubsPerFeed {
		return typederrors.NewSubscriptionLimitError(
			nil,
			`Subscriptions "%s" from newsfeed %s to %s could not be added to the storage because limit of subscriptions per newsfeed exceeds maximum %d`,
			subscription.ID, subscription.NewsfeedID, subscription.ToNewsfeedID, s.maxSubsPerFeed,
		)
	}

	s.subscriptions[subscription.NewsfeedID] = append([]domain.Subscription{subscription}, outgoing...)
	s.subscribers[subscription.ToNewsfeedID] = append(
		[]domain.Subscription{subscription}, s.subscribers[subscription.ToNewsfeedID]...,
	)
	return nil
}

// DeleteByFQID locates the subscription via the outgoing index and removes
// the same record from both indexes.
func (s *InMemorySubscriptionStorage) DeleteByFQID(ctx context.Context, newsfeedID string, subscriptionID uuid.UUID) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	outgoing := s.subscriptions[newsfeedID]
	index := slices.IndexFunc(outgoing, func(subscription domain.Subscription) bool {
		return subscription.ID == subscriptionID
	})
	if index < 0 {
		return typederrors.NewSubscriptionNotFoundError(
			nil, `Subscription "%s" could not be found in newsfeed "%s"`, subscriptionID, newsfeedID,
		)
	}

	subscription := outgoing[index]
	s.subscriptions[newsfeedID] = slices.Delete(outgoing, index, index+1)

	incoming := s.subscribers[subscription.ToNewsfeedID]
	incomingIndex := slices.IndexFunc(incoming, func(candidate domain.Subscription) bool {
		return candidate.ID == subscription.ID
	})
	if incomingIndex >= 0 {
		s.subscribers[subscription.ToNewsfeedID] = slices.Delete(incoming, incomingIndex, incomingIndex+1)
	}
	return nil
}
