/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain_test

import (
	"context"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/feedlane/newsfeed/internal/domain"
	"github.com/feedlane/newsfeed/internal/storage"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

var _ = Describe("EventDispatcher", func() {
	var (
		ctx        context.Context
		queue      *storage.InMemoryEventQueue
		dispatcher *domain.EventDispatcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		queue = storage.NewInMemoryEventQueue(2)
		dispatcher = domain.NewEventDispatcher(
			domain.NewEventSpecification(domain.NewNewsfeedIDSpecification(16)),
			queue,
		)
	})

	Describe("DispatchPost", func() {
		It("returns the fresh event and enqueues its serialized form", func() {
			event, err := dispatcher.DispatchPost(ctx, "123", map[string]any{"payload": "e1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(event.NewsfeedID).To(Equal("123"))
			Expect(event.PublishedAt).To(BeNil())

			item, err := queue.Get(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Action).To(Equal(domain.ActionPost))

			var enqueued domain.Event
			Expect(json.Unmarshal(item.Payload, &enqueued)).To(Succeed())
			Expect(enqueued.ID).To(Equal(event.ID))
			Expect(enqueued.Data).To(Equal(event.Data))
		})

		It("rejects an oversized newsfeed id without touching the queue", func() {
			_, err := dispatcher.DispatchPost(ctx, strings.Repeat("x", 17), nil)
			Expect(typederrors.IsNewsfeedIDTooLongError(err)).To(BeTrue())
			Expect(queue.IsEmpty()).To(BeTrue())
		})

		It("fails fast when the queue is full", func() {
			for i := 0; i < 2; i++ {
				_, err := dispatcher.DispatchPost(ctx, "123", nil)
				Expect(err).NotTo(HaveOccurred())
			}

			_, err := dispatcher.DispatchPost(ctx, "123", nil)
			Expect(typederrors.IsQueueFullError(err)).To(BeTrue())
			Expect(err.Error()).To(ContainSubstring("maximum 2"))
		})
	})

	Describe("DispatchDelete", func() {
		It("enqueues the target without consulting any store", func() {
			Expect(dispatcher.DispatchDelete(ctx, "123", "9d75e08f-f73f-4d80-a581-d3f9290520e6")).To(Succeed())

			item, err := queue.Get(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(item.Action).To(Equal(domain.ActionDelete))

			var payload domain.DeletePayload
			Expect(json.Unmarshal(item.Payload, &payload)).To(Succeed())
			Expect(payload.NewsfeedID).To(Equal("123"))
			Expect(payload.EventID).To(Equal("9d75e08f-f73f-4d80-a581-d3f9290520e6"))
		})
	})

	It("delivers work items in FIFO order across dispatch kinds", func() {
		_, err := dispatcher.DispatchPost(ctx, "123", nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(dispatcher.DispatchDelete(ctx, "123", "9d75e08f-f73f-4d80-a581-d3f9290520e6")).To(Succeed())

		first, err := queue.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(first.Action).To(Equal(domain.ActionPost))

		second, err := queue.Get(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(second.Action).To(Equal(domain.ActionDelete))
	})
})
