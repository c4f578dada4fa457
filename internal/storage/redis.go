/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/feedlane/newsfeed/internal/domain"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// Key layout of the Redis-backed stores. Feed and index keys hold lists of
// entity ids, most recent first; entity keys hold JSON blobs. The two set
// keys track which newsfeeds hold entries, which is what the newsfeed limit
// is measured against.
const (
	eventFeedKeyPrefix           = "newsfeed_id:"
	eventKeyPrefix               = "event:"
	eventNewsfeedsKey            = "newsfeeds"
	subscriptionsKeyPrefix       = "subscriptions:"
	subscribersKeyPrefix         = "subscribers:"
	subscriptionKeyPrefix        = "subscription:"
	subscriptionBetweenKeyPrefix = "subscription_between:"
	subscriptionNewsfeedsKey     = "subscription_newsfeeds"
)

// NewRedisClient builds a Redis client from a redis:// DSN.
func NewRedisClient(dsn string) (*redis.Client, error) {
	options, err := redis.ParseURL(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis DSN: %w", err)
	}
	return redis.NewClient(options), nil
}

// RedisEventStorage keeps per-newsfeed event lists in Redis with the same
// capacity semantics as the in-memory store. Each feed is a list of event
// ids under "newsfeed_id:<nf>" and each event a JSON blob under
// "event:<id>".
type RedisEventStorage struct {
	client           *redis.Client
	maxNewsfeeds     int
	maxEventsPerFeed int
}

func NewRedisEventStorage(client *redis.Client, maxNewsfeeds, maxEventsPerNewsfeed int) *RedisEventStorage {
	return &RedisEventStorage{
		client:           client,
		maxNewsfeeds:     maxNewsfeeds,
		maxEventsPerFeed: maxEventsPerNewsfeed,
	}
}

// GetByNewsfeedID returns the events of newsfeedID, most recent first.
// Entries whose blob has expired out from under the feed list are skipped.
func (s *RedisEventStorage) GetByNewsfeedID(ctx context.Context, newsfeedID string) ([]domain.Event, error) {
	ids, err := s.client.LRange(ctx, eventFeedKeyPrefix+newsfeedID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read feed of newsfeed %q: %w", newsfeedID, err)
	}
	events := make([]domain.Event, 0, len(ids))
	for _, id := range ids {
		blob, err := s.client.Get(ctx, eventKeyPrefix+id).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event %q: %w", id, err)
		}
		var event domain.Event
		if err := json.Unmarshal([]byte(blob), &event); err != nil {
			return nil, fmt.Errorf("failed to deserialize event %q: %w", id, err)
		}
		events = append(events, event)
	}
	return events, nil
}

// GetByFQID returns the event identified by (newsfeedID, eventID).
func (s *RedisEventStorage) GetByFQID(ctx context.Context, newsfeedID string, eventID uuid.UUID) (domain.Event, error) {
	blob, err := s.client.Get(ctx, eventKeyPrefix+eventID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Event{}, typederrors.NewEventNotFoundError(
			nil, `Event "%s" could not be found in newsfeed "%s"`, eventID, newsfeedID,
		)
	}
	if err != nil {
		return domain.Event{}, fmt.Errorf("failed to read event %q: %w", eventID, err)
	}
	var event domain.Event
	if err := json.Unmarshal([]byte(blob), &event); err != nil {
		return domain.Event{}, fmt.Errorf("failed to deserialize event %q: %w", eventID, err)
	}
	return event, nil
}

// Add inserts the event at the head of its feed, evicting the oldest entry
// of a full feed. The newsfeed limit is enforced against the set of feeds
// that currently hold entries.
func (s *RedisEventStorage) Add(ctx context.Context, event domain.Event) error {
	known, err := s.client.SIsMember(ctx, eventNewsfeedsKey, event.NewsfeedID).Result()
	if err != nil {
		return fmt.Errorf("failed to probe newsfeed set: %w", err)
	}
	if !known {
		count, err := s.client.SCard(ctx, eventNewsfeedsKey).Result()
		if err != nil {
			return fmt.Errorf("failed to count newsfeeds: %w", err)
		}
		if count >= int64(s.maxNewsfeeds) {
			return typederrors.NewNewsfeedLimitError(
				nil,
				`Newsfeed "%s" could not be added to the storage because limit of newsfeeds number exceeds maximum %d`,
				event.NewsfeedID, s.maxNewsfeeds,
			)
		}
	}

	blob, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to serialize event %q: %w", event.ID, err)
	}

	feedKey := eventFeedKeyPrefix + event.NewsfeedID
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, eventNewsfeedsKey, event.NewsfeedID)
	pipe.LPush(ctx, feedKey, event.ID.String())
	pipe.Set(ctx, eventKeyPrefix+event.ID.String(), blob, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store event %q: %w", event.ID, err)
	}

	length, err := s.client.LLen(ctx, feedKey).Result()
	if err != nil {
		return fmt.Errorf("failed to measure feed of newsfeed %q: %w", event.NewsfeedID, err)
	}
	for length > int64(s.maxEventsPerFeed) {
		evicted, err := s.client.RPop(ctx, feedKey).Result()
		if err != nil {
			return fmt.Errorf("failed to evict from feed of newsfeed %q: %w", event.NewsfeedID, err)
		}
		if err := s.client.Del(ctx, eventKeyPrefix+evicted).Err(); err != nil {
			slog.Error("Failed to drop evicted event blob", "event_id", evicted, "err", err)
		}
		length--
	}
	return nil
}

// DeleteByFQID removes the matching event if present.
func (s *RedisEventStorage) DeleteByFQID(ctx context.Context, newsfeedID string, eventID uuid.UUID) error {
	eventKey := eventKeyPrefix + eventID.String()
	_, err := s.client.Get(ctx, eventKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read event %q: %w", eventID, err)
	}
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, eventFeedKeyPrefix+newsfeedID, 1, eventID.String())
	pipe.Del(ctx, eventKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete event %q: %w", eventID, err)
	}
	return nil
}

// RedisSubscriptionStorage keeps subscriptions in Redis under the same dual
// index as the in-memory store: "subscriptions:<nf>" and "subscribers:<to>"
// lists of subscription ids, a JSON blob per record and a
// "subscription_between:<nf><to>" blob for the pair lookup.
type RedisSubscriptionStorage struct {
	client         *redis.Client
	maxNewsfeeds   int
	maxSubsPerFeed int
}

func NewRedisSubscriptionStorage(client *redis.Client, maxNewsfeeds, maxSubscriptionsPerNewsfeed int) *RedisSubscriptionStorage {
	return &RedisSubscriptionStorage{
		client:         client,
		maxNewsfeeds:   maxNewsfeeds,
		maxSubsPerFeed: maxSubscriptionsPerNewsfeed,
	}
}

// GetByNewsfeedID returns the outgoing subscriptions of newsfeedID.
func (s *RedisSubscriptionStorage) GetByNewsfeedID(ctx context.Context, newsfeedID string) ([]domain.Subscription, error) {
	return s.listSubscriptions(ctx, subscriptionsKeyPrefix+newsfeedID)
}

// GetByToNewsfeedID returns the incoming subscriptions of newsfeedID.
func (s *RedisSubscriptionStorage) GetByToNewsfeedID(ctx context.Context, newsfeedID string) ([]domain.Subscription, error) {
	return s.listSubscriptions(ctx, subscribersKeyPrefix+newsfeedID)
}

func (s *RedisSubscriptionStorage) listSubscriptions(ctx context.Context, key string) ([]domain.Subscription, error) {
	ids, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read subscription index %q: %w", key, err)
	}
	subscriptions := make([]domain.Subscription, 0, len(ids))
	for _, id := range ids {
		blob, err := s.client.Get(ctx, subscriptionKeyPrefix+id).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read subscription %q: %w", id, err)
		}
		var subscription domain.Subscription
		if err := json.Unmarshal([]byte(blob), &subscription); err != nil {
			return nil, fmt.Errorf("failed to deserialize subscription %q: %w", id, err)
		}
		subscriptions = append(subscriptions, subscription)
	}
	return subscriptions, nil
}

// GetByFQID returns the subscription identified by (newsfeedID,
// subscriptionID).
func (s *RedisSubscriptionStorage) GetByFQID(ctx context.Context, newsfeedID string, subscriptionID uuid.UUID) (domain.Subscription, error) {
	blob, err := s.client.Get(ctx, subscriptionKeyPrefix+subscriptionID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Subscription{}, typederrors.NewSubscriptionNotFoundError(
			nil, `Subscription "%s" could not be found in newsfeed "%s"`, subscriptionID, newsfeedID,
		)
	}
	if err != nil {
		return domain.Subscription{}, fmt.Errorf("failed to read subscription %q: %w", subscriptionID, err)
	}
	var subscription domain.Subscription
	if err := json.Unmarshal([]byte(blob), &subscription); err != nil {
		return domain.Subscription{}, fmt.Errorf("failed to deserialize subscription %q: %w", subscriptionID, err)
	}
	return subscription, nil
}

// GetBetween returns the subscription of newsfeedID to toNewsfeedID.
func (s *RedisSubscriptionStorage) GetBetween(ctx context.Context, newsfeedID, toNewsfeedID string) (domain.Subscription, error) {
	blob, err := s.client.Get(ctx, subscriptionBetweenKeyPrefix+newsfeedID+toNewsfeedID).Result()
	if errors.Is(err, redis.Nil) {
		return domain.Subscription{}, typederrors.NewSubscriptionBetweenNotFoundError(
			nil, `Subscription from newsfeed "%s" to "%s" could not be found`, newsfeedID, toNewsfeedID,
		)
	}
	if err != nil {
		return domain.Subscription{}, fmt.Errorf(
			"failed to read subscription between %q and %q: %w", newsfeedID, toNewsfeedID, err)
	}
	var subscription domain.Subscription
	if err := json.Unmarshal([]byte(blob), &subscription); err != nil {
		return domain.Subscription{}, fmt.Errorf(
			"failed to deserialize subscription between %q and %q: %w", newsfeedID, toNewsfeedID, err)
	}
	return subscription, nil
}

// Add inserts the subscription into both indexes. Capacity failures mirror
// the in-memory store: no eviction, ever.
func (s *RedisSubscriptionStorage) Add(ctx context.Context, subscription domain.Subscription) error {
	known, err := s.client.SIsMember(ctx, subscriptionNewsfeedsKey, subscription.NewsfeedID).Result()
	if err != nil {
		return fmt.Errorf("failed to probe subscription newsfeed set: %w", err)
	}
	if !known {
		count, err := s.client.SCard(ctx, subscriptionNewsfeedsKey).Result()
		if err != nil {
			return fmt.Errorf("failed to count subscription newsfeeds: %w", err)
		}
		if count >= int64(s.maxNewsfeeds) {
			return typederrors.NewNewsfeedLimitError(
				nil,
				`Newsfeed "%s" could not be added to the storage because limit of newsfeeds number exceeds maximum %d`,
				subscription.NewsfeedID, s.maxNewsfeeds,
			)
		}
	}

	length, err := s.client.LLen(ctx, subscriptionsKeyPrefix+subscription.NewsfeedID).Result()
	if err != nil {
		return fmt.Errorf("failed to measure subscriptions of newsfeed %q: %w", subscription.NewsfeedID, err)
	}
	if length >= int64(s.maxSubsPerFeed) {
		return typederrors.NewSubscriptionLimitError(
			nil,
			`Subscriptions "%s" from newsfeed %s to %s could not be added to the storage because limit of subscriptions per newsfeed exceeds maximum %d`,
			subscription.ID, subscription.NewsfeedID, subscription.ToNewsfeedID, s.maxSubsPerFeed,
		)
	}

	blob, err := json.Marshal(subscription)
	if err != nil {
		return fmt.Errorf("failed to serialize subscription %q: %w", subscription.ID, err)
	}

	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, subscriptionNewsfeedsKey, subscription.NewsfeedID)
	pipe.LPush(ctx, subscriptionsKeyPrefix+subscription.NewsfeedID, subscription.ID.String())
	pipe.LPush(ctx, subscribersKeyPrefix+subscription.ToNewsfeedID, subscription.ID.String())
	pipe.Set(ctx, subscriptionKeyPrefix+subscription.ID.String(), blob, 0)
	pipe.Set(ctx, subscriptionBetweenKeyPrefix+subscription.NewsfeedID+subscription.ToNewsfeedID, blob, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store subscription %q: %w", subscription.ID, err)
	}
	return nil
}

// DeleteByFQID removes the subscription from both indexes.
func (s *RedisSubscriptionStorage) DeleteByFQID(ctx context.Context, newsfeedID string, subscriptionID uuid.UUID) error {
	subscription, err := s.GetByFQID(ctx, newsfeedID, subscriptionID)
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, subscriptionsKeyPrefix+newsfeedID, 1, subscriptionID.String())
	pipe.LRem(ctx, subscribersKeyPrefix+subscription.ToNewsfeedID, 1, subscriptionID.String())
	pipe.Del(ctx, subscriptionBetweenKeyPrefix+newsfeedID+subscription.ToNewsfeedID)
	pipe.Del(ctx, subscriptionKeyPrefix+subscriptionID.String())
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete subscription %q: %w", subscriptionID, err)
	}
	return nil
}
