/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/feedlane/newsfeed/internal/domain"
	"github.com/feedlane/newsfeed/internal/storage"
)

var _ = Describe("EventProcessor", func() {
	var (
		ctx                 context.Context
		queue               *storage.InMemoryEventQueue
		eventStorage        *storage.InMemoryEventStorage
		subscriptionStorage *storage.InMemorySubscriptionStorage
		dispatcher          *domain.EventDispatcher
		subscriptionService *domain.SubscriptionService
		processor           *domain.EventProcessor
	)

	feedEvents := func(newsfeedID string) func() []domain.Event {
		return func() []domain.Event {
			events, err := eventStorage.GetByNewsfeedID(ctx, newsfeedID)
			Expect(err).NotTo(HaveOccurred())
			return events
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		queue = storage.NewInMemoryEventQueue(10)
		eventStorage = storage.NewInMemoryEventStorage(10, 10)
		subscriptionStorage = storage.NewInMemorySubscriptionStorage(10, 10)

		newsfeedIDSpec := domain.NewNewsfeedIDSpecification(16)
		dispatcher = domain.NewEventDispatcher(domain.NewEventSpecification(newsfeedIDSpec), queue)
		subscriptionService = domain.NewSubscriptionService(
			domain.NewSubscriptionSpecification(newsfeedIDSpec), subscriptionStorage,
		)

		processor = domain.NewEventProcessor(queue, eventStorage, subscriptionStorage, 2)
		processor.Start(ctx)
		DeferCleanup(processor.Stop)
	})

	It("stores a posted event with its publishing time", func() {
		event, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e1"})
		Expect(err).NotTo(HaveOccurred())

		Eventually(feedEvents("123")).Should(HaveLen(1))
		stored := feedEvents("123")()[0]
		Expect(stored.ID).To(Equal(event.ID))
		Expect(stored.PublishedAt).NotTo(BeNil())
		Expect(stored.ChildFQIDs).To(BeEmpty())
	})

	It("fans a posted event out to every subscriber, most recent subscription first", func() {
		_, err := subscriptionService.Create(ctx, "124", "123")
		Expect(err).NotTo(HaveOccurred())
		_, err = subscriptionService.Create(ctx, "125", "123")
		Expect(err).NotTo(HaveOccurred())

		event, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e"})
		Expect(err).NotTo(HaveOccurred())

		Eventually(feedEvents("123")).Should(HaveLen(1))
		Eventually(feedEvents("124")).Should(HaveLen(1))
		Eventually(feedEvents("125")).Should(HaveLen(1))

		originator := feedEvents("123")()[0]
		Expect(originator.ID).To(Equal(event.ID))
		Expect(originator.ChildFQIDs).To(HaveLen(2))
		Expect(originator.ChildFQIDs[0].NewsfeedID).To(Equal("125"))
		Expect(originator.ChildFQIDs[1].NewsfeedID).To(Equal("124"))

		replica := feedEvents("125")()[0]
		Expect(replica.ID).To(Equal(originator.ChildFQIDs[0].EventID))
		Expect(replica.ParentFQID).NotTo(BeNil())
		Expect(*replica.ParentFQID).To(Equal(originator.FQID()))
		Expect(replica.Data).To(Equal(originator.Data))
		Expect(replica.ChildFQIDs).To(BeEmpty())
	})

	It("deletes an event and every replica listed on it", func() {
		_, err := subscriptionService.Create(ctx, "124", "123")
		Expect(err).NotTo(HaveOccurred())
		_, err = subscriptionService.Create(ctx, "125", "123")
		Expect(err).NotTo(HaveOccurred())

		event, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e"})
		Expect(err).NotTo(HaveOccurred())
		Eventually(feedEvents("124")).Should(HaveLen(1))
		Eventually(feedEvents("125")).Should(HaveLen(1))

		Expect(dispatcher.DispatchDelete(ctx, "123", event.ID.String())).To(Succeed())

		Eventually(feedEvents("123")).Should(BeEmpty())
		Eventually(feedEvents("124")).Should(BeEmpty())
		Eventually(feedEvents("125")).Should(BeEmpty())
	})

	It("drops a deletion aimed at an absent event", func() {
		Expect(dispatcher.DispatchDelete(ctx, "123", "9d75e08f-f73f-4d80-a581-d3f9290520e6")).To(Succeed())

		Eventually(queue.IsEmpty).Should(BeTrue())
		Consistently(feedEvents("123")).Should(BeEmpty())
	})

	It("treats repeated deletion of the same event as a no-op after the first", func() {
		event, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e1"})
		Expect(err).NotTo(HaveOccurred())
		Eventually(feedEvents("123")).Should(HaveLen(1))

		Expect(dispatcher.DispatchDelete(ctx, "123", event.ID.String())).To(Succeed())
		Eventually(feedEvents("123")).Should(BeEmpty())

		Expect(dispatcher.DispatchDelete(ctx, "123", event.ID.String())).To(Succeed())
		Eventually(queue.IsEmpty).Should(BeTrue())
		Consistently(feedEvents("123")).Should(BeEmpty())
	})

	It("keeps fanning out when one subscriber feed hits the newsfeed limit", func() {
		// Fill the event store up to its newsfeed limit with unrelated feeds
		// so the replica for the subscriber cannot be stored.
		boundedStorage := storage.NewInMemoryEventStorage(1, 10)
		boundedProcessor := domain.NewEventProcessor(queue, boundedStorage, subscriptionStorage, 1)
		processor.Stop()
		boundedProcessor.Start(ctx)
		DeferCleanup(boundedProcessor.Stop)

		_, err := subscriptionService.Create(ctx, "124", "123")
		Expect(err).NotTo(HaveOccurred())

		event, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e"})
		Expect(err).NotTo(HaveOccurred())

		Eventually(func() []domain.Event {
			events, err := boundedStorage.GetByNewsfeedID(ctx, "123")
			Expect(err).NotTo(HaveOccurred())
			return events
		}).Should(HaveLen(1))

		// The originator landed and still lists the replica it could not
		// store; the subscriber feed stays empty.
		stored, err := boundedStorage.GetByFQID(ctx, "123", event.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(stored.ChildFQIDs).To(HaveLen(1))
		replicas, err := boundedStorage.GetByNewsfeedID(ctx, "124")
		Expect(err).NotTo(HaveOccurred())
		Expect(replicas).To(BeEmpty())
	})

	It("loses only the canceled item on shutdown", func() {
		processor.Stop()

		_, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e1"})
		Expect(err).NotTo(HaveOccurred())

		Consistently(feedEvents("123"), 100*time.Millisecond).Should(BeEmpty())
		Expect(queue.IsEmpty()).To(BeFalse())
	})
})
