/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/feedlane/newsfeed/internal/domain"
)

// Request bodies.
type postEventRequest struct {
	Data map[string]any `json:"data"`
}

type postSubscriptionRequest struct {
	ToNewsfeedID string `json:"to_newsfeed_id"`
}

// Response envelopes.
type eventsList struct {
	Results []domain.Event `json:"results"`
}

type subscriptionsList struct {
	Results []domain.Subscription `json:"results"`
}

type statusResponse struct {
	Status string `json:"status"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write response body", "err", err)
	}
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
