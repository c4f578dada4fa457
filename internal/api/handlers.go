/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/feedlane/newsfeed/internal/api/middleware"
	"github.com/feedlane/newsfeed/internal/constants"
	"github.com/feedlane/newsfeed/internal/domain"
	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// NewsfeedServer carries the collaborators the HTTP handlers need. The
// handlers translate between the JSON surface and the core: reads go to the
// stores, posts and deletions to the dispatcher, subscription changes to the
// subscription service.
type NewsfeedServer struct {
	Config              *ServerConfig
	Dispatcher          *domain.EventDispatcher
	EventStorage        domain.EventStorage
	SubscriptionService *domain.SubscriptionService
	OpenAPIDocument     map[string]any
}

// RegisterRoutes installs every route on the router under the configured
// base path. Paths are canonical with trailing slashes.
func (s *NewsfeedServer) RegisterRoutes(router *middleware.ErrorJsonifier) {
	base := strings.TrimSuffix(s.Config.BasePath, "/")

	router.HandleFunc("GET "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.EventsPath+"/{$}", s.GetEvents)
	router.HandleFunc("POST "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.EventsPath+"/{$}", s.PostEvent)
	router.HandleFunc("DELETE "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.EventsPath+"/{event_id}/{$}", s.DeleteEvent)
	router.HandleFunc("GET "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.SubscriptionsPath+"/{$}", s.GetSubscriptions)
	router.HandleFunc("POST "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.SubscriptionsPath+"/{$}", s.PostSubscription)
	router.HandleFunc("DELETE "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.SubscriptionsPath+"/{subscription_id}/{$}", s.DeleteSubscription)
	router.HandleFunc("GET "+base+constants.NewsfeedPath+"/{newsfeed_id}"+constants.SubscribersPath+constants.SubscriptionsPath+"/{$}", s.GetSubscriberSubscriptions)
	router.HandleFunc("GET "+base+constants.StatusPath+"/{$}", s.GetStatus)
	router.HandleFunc("GET "+base+constants.DocsPath+"/{$}", s.GetOpenAPISchema)
}

// GetEvents returns the events of a newsfeed, most recent first.
func (s *NewsfeedServer) GetEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.EventStorage.GetByNewsfeedID(r.Context(), r.PathValue("newsfeed_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	writeJSON(w, http.StatusOK, eventsList{Results: events})
}

// PostEvent dispatches a new event for fan-out and returns it with 202: the
// event is accepted, not yet stored.
func (s *NewsfeedServer) PostEvent(w http.ResponseWriter, r *http.Request) {
	var body postEventRequest
	if err := decodeBody(r.Body, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	event, err := s.Dispatcher.DispatchPost(r.Context(), r.PathValue("newsfeed_id"), body.Data)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, event)
}

// DeleteEvent enqueues cascading deletion of an event. Deletion of an absent
// event is accepted and dropped by the processor.
func (s *NewsfeedServer) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	err := s.Dispatcher.DispatchDelete(r.Context(), r.PathValue("newsfeed_id"), r.PathValue("event_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSubscriptions returns the outgoing subscriptions of a newsfeed.
func (s *NewsfeedServer) GetSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := s.SubscriptionService.ListOutgoing(r.Context(), r.PathValue("newsfeed_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if subscriptions == nil {
		subscriptions = []domain.Subscription{}
	}
	writeJSON(w, http.StatusOK, subscriptionsList{Results: subscriptions})
}

// PostSubscription subscribes the newsfeed in the path to the one in the
// body.
func (s *NewsfeedServer) PostSubscription(w http.ResponseWriter, r *http.Request) {
	var body postSubscriptionRequest
	if err := decodeBody(r.Body, &body); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	subscription, err := s.SubscriptionService.Create(r.Context(), r.PathValue("newsfeed_id"), body.ToNewsfeedID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subscription)
}

// DeleteSubscription removes a subscription by its fully-qualified id.
func (s *NewsfeedServer) DeleteSubscription(w http.ResponseWriter, r *http.Request) {
	err := s.SubscriptionService.Delete(r.Context(), r.PathValue("newsfeed_id"), r.PathValue("subscription_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetSubscriberSubscriptions returns the incoming subscriptions of a
// newsfeed.
func (s *NewsfeedServer) GetSubscriberSubscriptions(w http.ResponseWriter, r *http.Request) {
	subscriptions, err := s.SubscriptionService.ListIncoming(r.Context(), r.PathValue("newsfeed_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	if subscriptions == nil {
		subscriptions = []domain.Subscription{}
	}
	writeJSON(w, http.StatusOK, subscriptionsList{Results: subscriptions})
}

// GetStatus reports service liveness.
func (s *NewsfeedServer) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

// GetOpenAPISchema returns the service's OpenAPI document as JSON with the
// servers list pointing at the configured base path.
func (s *NewsfeedServer) GetOpenAPISchema(w http.ResponseWriter, r *http.Request) {
	document := make(map[string]any, len(s.OpenAPIDocument)+1)
	for key, value := range s.OpenAPIDocument {
		document[key] = value
	}
	document["servers"] = []map[string]any{{"url": s.Config.BasePath}}
	writeJSON(w, http.StatusOK, document)
}

func decodeBody(body io.Reader, target any) error {
	if err := json.NewDecoder(body).Decode(target); err != nil {
		return fmt.Errorf("failed to decode request body: %w", err)
	}
	return nil
}

// writeError maps a core failure to the HTTP surface: domain errors are
// caller faults and come back as 400 with the error's message, anything else
// is a 500.
func writeError(w http.ResponseWriter, err error) {
	if typederrors.IsDomainError(err) {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	slog.Error("Request failed", "err", err)
	writeMessage(w, http.StatusInternalServerError, "internal server error")
}
