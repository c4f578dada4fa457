/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// Subscription is the directed relation "NewsfeedID follows ToNewsfeedID".
// Events posted on ToNewsfeedID are replicated onto NewsfeedID while the
// subscription exists.
type Subscription struct {
	ID           uuid.UUID
	NewsfeedID   string
	ToNewsfeedID string
	SubscribedAt time.Time
}

// NewSubscription builds a fresh subscription of newsfeedID to toNewsfeedID.
func NewSubscription(newsfeedID, toNewsfeedID string) Subscription {
	return Subscription{
		ID:           uuid.New(),
		NewsfeedID:   newsfeedID,
		ToNewsfeedID: toNewsfeedID,
		SubscribedAt: time.Now().UTC(),
	}
}

type serializedSubscription struct {
	ID           string `json:"id"`
	NewsfeedID   string `json:"newsfeed_id"`
	ToNewsfeedID string `json:"to_newsfeed_id"`
	SubscribedAt int64  `json:"subscribed_at"`
}

// MarshalJSON encodes the subscription with its timestamp as integer seconds
// since epoch.
func (s Subscription) MarshalJSON() ([]byte, error) {
	return json.Marshal(serializedSubscription{
		ID:           s.ID.String(),
		NewsfeedID:   s.NewsfeedID,
		ToNewsfeedID: s.ToNewsfeedID,
		SubscribedAt: s.SubscribedAt.Unix(),
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (s *Subscription) UnmarshalJSON(data []byte) error {
	var w serializedSubscription
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	id, err := uuid.Parse(w.ID)
	if err != nil {
		return fmt.Errorf("subscription contains a malformed id: %w", err)
	}
	s.ID = id
	s.NewsfeedID = w.NewsfeedID
	s.ToNewsfeedID = w.ToNewsfeedID
	s.SubscribedAt = time.Unix(w.SubscribedAt, 0).UTC()
	return nil
}

// SubscriptionSpecification validates subscriptions before they are stored.
type SubscriptionSpecification struct {
	newsfeedID *NewsfeedIDSpecification
}

func NewSubscriptionSpecification(newsfeedID *NewsfeedIDSpecification) *SubscriptionSpecification {
	return &SubscriptionSpecification{newsfeedID: newsfeedID}
}

// Check fails when either newsfeed id is invalid or when the subscription
// points at its own feed.
func (s *SubscriptionSpecification) Check(subscription Subscription) error {
	if err := s.newsfeedID.Check(subscription.NewsfeedID); err != nil {
		return err
	}
	if err := s.newsfeedID.Check(subscription.ToNewsfeedID); err != nil {
		return err
	}
	if subscription.NewsfeedID == subscription.ToNewsfeedID {
		return typederrors.NewSelfSubscriptionError(
			nil, `Subscription of newsfeed "%s" to itself is restricted`, subscription.NewsfeedID,
		)
	}
	return nil
}

// SubscriptionService enforces the subscription invariants and exposes the
// list, create and delete operations used by the HTTP layer.
type SubscriptionService struct {
	specification *SubscriptionSpecification
	storage       SubscriptionStorage
}

func NewSubscriptionService(specification *SubscriptionSpecification, storage SubscriptionStorage) *SubscriptionService {
	return &SubscriptionService{
		specification: specification,
		storage:       storage,
	}
}

// ListOutgoing returns the subscriptions newsfeedID has made, most recent
// first.
func (s *SubscriptionService) ListOutgoing(ctx context.Context, newsfeedID string) ([]Subscription, error) {
	return s.storage.GetByNewsfeedID(ctx, newsfeedID)
}

// ListIncoming returns the subscriptions made to newsfeedID, most recent
// first.
func (s *SubscriptionService) ListIncoming(ctx context.Context, newsfeedID string) ([]Subscription, error) {
	return s.storage.GetByToNewsfeedID(ctx, newsfeedID)
}

// Create subscribes newsfeedID to toNewsfeedID. At most one subscription may
// exist per ordered pair, and a feed may not subscribe to itself.
func (s *SubscriptionService) Create(ctx context.Context, newsfeedID, toNewsfeedID string) (Subscription, error) {
	exists, err := s.existsBetween(ctx, newsfeedID, toNewsfeedID)
	if err != nil {
		return Subscription{}, err
	}
	if exists {
		return Subscription{}, typederrors.NewSubscriptionExistsError(
			nil, `Subscription from newsfeed "%s" to "%s" already exists`, newsfeedID, toNewsfeedID,
		)
	}

	subscription := NewSubscription(newsfeedID, toNewsfeedID)
	if err := s.specification.Check(subscription); err != nil {
		return Subscription{}, err
	}
	if err := s.storage.Add(ctx, subscription); err != nil {
		return Subscription{}, err
	}
	return subscription, nil
}

// Delete removes subscription subscriptionID from newsfeedID. A subscription
// id that does not parse cannot exist, so it reports the same not-found
// failure as a missing record.
func (s *SubscriptionService) Delete(ctx context.Context, newsfeedID, subscriptionID string) error {
	id, err := uuid.Parse(subscriptionID)
	if err != nil {
		return typederrors.NewSubscriptionNotFoundError(
			nil, `Subscription "%s" could not be found in newsfeed "%s"`, subscriptionID, newsfeedID,
		)
	}
	subscription, err := s.storage.GetByFQID(ctx, newsfeedID, id)
	if err != nil {
		return err
	}
	return s.storage.DeleteByFQID(ctx, subscription.NewsfeedID, subscription.ID)
}

func (s *SubscriptionService) existsBetween(ctx context.Context, newsfeedID, toNewsfeedID string) (bool, error) {
	_, err := s.storage.GetBetween(ctx, newsfeedID, toNewsfeedID)
	if err != nil {
		if typederrors.IsSubscriptionBetweenNotFoundError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
