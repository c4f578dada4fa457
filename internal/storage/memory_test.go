/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package storage

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/feedlane/newsfeed/internal/domain"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

var _ = Describe("InMemoryEventStorage", func() {
	var (
		ctx   context.Context
		store *InMemoryEventStorage
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewInMemoryEventStorage(2, 3)
	})

	It("returns an empty list for an unknown feed", func() {
		events, err := store.GetByNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())
	})

	It("keeps each feed in reverse insertion order", func() {
		var ids []uuid.UUID
		for i := 0; i < 3; i++ {
			event := domain.NewEvent("123", map[string]any{"seq": i})
			ids = append(ids, event.ID)
			Expect(store.Add(ctx, event)).To(Succeed())
		}

		events, err := store.GetByNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(3))
		Expect(events[0].ID).To(Equal(ids[2]))
		Expect(events[1].ID).To(Equal(ids[1]))
		Expect(events[2].ID).To(Equal(ids[0]))
	})

	It("returns a snapshot that later mutations do not change", func() {
		Expect(store.Add(ctx, domain.NewEvent("123", nil))).To(Succeed())

		snapshot, err := store.GetByNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(store.Add(ctx, domain.NewEvent("123", nil))).To(Succeed())

		Expect(snapshot).To(HaveLen(1))
	})

	It("finds an event by its fully-qualified id", func() {
		event := domain.NewEvent("123", map[string]any{"payload": "e1"})
		Expect(store.Add(ctx, event)).To(Succeed())

		found, err := store.GetByFQID(ctx, "123", event.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(event.ID))
	})

	It("fails lookups of absent events", func() {
		id := uuid.New()
		_, err := store.GetByFQID(ctx, "123", id)
		Expect(typederrors.IsEventNotFoundError(err)).To(BeTrue())
		Expect(err.Error()).To(Equal(fmt.Sprintf(`Event "%s" could not be found in newsfeed "123"`, id)))
	})

	It("silently evicts the oldest entry of a full feed", func() {
		var ids []uuid.UUID
		for i := 0; i < 4; i++ {
			event := domain.NewEvent("123", nil)
			ids = append(ids, event.ID)
			Expect(store.Add(ctx, event)).To(Succeed())
		}

		events, err := store.GetByNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(HaveLen(3))
		Expect(events[0].ID).To(Equal(ids[3]))
		Expect(events[2].ID).To(Equal(ids[1]))

		_, err = store.GetByFQID(ctx, "123", ids[0])
		Expect(typederrors.IsEventNotFoundError(err)).To(BeTrue())
	})

	It("rejects a new feed beyond the newsfeed limit", func() {
		Expect(store.Add(ctx, domain.NewEvent("123", nil))).To(Succeed())
		Expect(store.Add(ctx, domain.NewEvent("124", nil))).To(Succeed())

		err := store.Add(ctx, domain.NewEvent("125", nil))
		Expect(typederrors.IsNewsfeedLimitError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("maximum 2"))
	})

	It("keeps accepting events for feeds that already exist at the limit", func() {
		Expect(store.Add(ctx, domain.NewEvent("123", nil))).To(Succeed())
		Expect(store.Add(ctx, domain.NewEvent("124", nil))).To(Succeed())
		Expect(store.Add(ctx, domain.NewEvent("123", nil))).To(Succeed())
	})

	It("deletes by fully-qualified id and ignores absent targets", func() {
		event := domain.NewEvent("123", nil)
		Expect(store.Add(ctx, event)).To(Succeed())

		Expect(store.DeleteByFQID(ctx, "123", event.ID)).To(Succeed())
		events, err := store.GetByNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(events).To(BeEmpty())

		// Repeated deletion is a no-op.
		Expect(store.DeleteByFQID(ctx, "123", event.ID)).To(Succeed())
	})
})

var _ = Describe("InMemorySubscriptionStorage", func() {
	var (
		ctx   context.Context
		store *InMemorySubscriptionStorage
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = NewInMemorySubscriptionStorage(2, 2)
	})

	It("holds every record in both indexes, most recent first", func() {
		first := domain.NewSubscription("124", "123")
		second := domain.NewSubscription("125", "123")
		Expect(store.Add(ctx, first)).To(Succeed())
		Expect(store.Add(ctx, second)).To(Succeed())

		outgoing, err := store.GetByNewsfeedID(ctx, "124")
		Expect(err).NotTo(HaveOccurred())
		Expect(outgoing).To(HaveLen(1))
		Expect(outgoing[0].ID).To(Equal(first.ID))

		incoming, err := store.GetByToNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(incoming).To(HaveLen(2))
		Expect(incoming[0].ID).To(Equal(second.ID))
		Expect(incoming[1].ID).To(Equal(first.ID))
	})

	It("looks up between two newsfeeds exactly when such a record exists", func() {
		subscription := domain.NewSubscription("124", "123")
		Expect(store.Add(ctx, subscription)).To(Succeed())

		found, err := store.GetBetween(ctx, "124", "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(found.ID).To(Equal(subscription.ID))

		_, err = store.GetBetween(ctx, "123", "124")
		Expect(typederrors.IsSubscriptionBetweenNotFoundError(err)).To(BeTrue())
		Expect(err.Error()).To(Equal(`Subscription from newsfeed "123" to "124" could not be found`))
	})

	It("fails instead of evicting when a feed is full", func() {
		Expect(store.Add(ctx, domain.NewSubscription("124", "123"))).To(Succeed())
		Expect(store.Add(ctx, domain.NewSubscription("124", "125"))).To(Succeed())

		err := store.Add(ctx, domain.NewSubscription("124", "126"))
		Expect(typederrors.IsSubscriptionLimitError(err)).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("maximum 2"))

		outgoing, err := store.GetByNewsfeedID(ctx, "124")
		Expect(err).NotTo(HaveOccurred())
		Expect(outgoing).To(HaveLen(2))
	})

	It("rejects a new feed beyond the newsfeed limit", func() {
		Expect(store.Add(ctx, domain.NewSubscription("124", "123"))).To(Succeed())
		Expect(store.Add(ctx, domain.NewSubscription("125", "123"))).To(Succeed())

		err := store.Add(ctx, domain.NewSubscription("126", "123"))
		Expect(typederrors.IsNewsfeedLimitError(err)).To(BeTrue())
	})

	It("removes the same record from both indexes on deletion", func() {
		subscription := domain.NewSubscription("124", "123")
		Expect(store.Add(ctx, subscription)).To(Succeed())

		Expect(store.DeleteByFQID(ctx, "124", subscription.ID)).To(Succeed())

		outgoing, err := store.GetByNewsfeedID(ctx, "124")
		Expect(err).NotTo(HaveOccurred())
		Expect(outgoing).To(BeEmpty())
		incoming, err := store.GetByToNewsfeedID(ctx, "123")
		Expect(err).NotTo(HaveOccurred())
		Expect(incoming).To(BeEmpty())
	})

	It("fails deletion of an unknown subscription", func() {
		err := store.DeleteByFQID(ctx, "124", uuid.New())
		Expect(typederrors.IsSubscriptionNotFoundError(err)).To(BeTrue())
	})
})
