/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventFQID is the fully-qualified event identifier: the (newsfeed id,
// event id) pair that locates an event across all feeds.
type EventFQID struct {
	NewsfeedID string
	EventID    uuid.UUID
}

// MarshalJSON encodes the FQID as a [newsfeed_id, event_id] pair.
func (f EventFQID) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{f.NewsfeedID, f.EventID.String()})
}

// UnmarshalJSON decodes a [newsfeed_id, event_id] pair.
func (f *EventFQID) UnmarshalJSON(data []byte) error {
	var pair [2]string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("event fqid must be a [newsfeed_id, event_id] pair: %w", err)
	}
	eventID, err := uuid.Parse(pair[1])
	if err != nil {
		return fmt.Errorf("event fqid contains a malformed event id: %w", err)
	}
	f.NewsfeedID = pair[0]
	f.EventID = eventID
	return nil
}

// Event is a single timestamped payload on a newsfeed. An originator event
// carries the FQIDs of the replicas created for its subscribers during
// fan-out; a replica carries the FQID of its originator. PublishedAt stays
// nil until a processor writes the event to its store.
type Event struct {
	ID          uuid.UUID
	NewsfeedID  string
	Data        map[string]any
	ParentFQID  *EventFQID
	ChildFQIDs  []EventFQID
	FirstSeenAt time.Time
	PublishedAt *time.Time
}

// NewEvent builds a fresh originator event at the moment of dispatch.
func NewEvent(newsfeedID string, data map[string]any) Event {
	return Event{
		ID:          uuid.New(),
		NewsfeedID:  newsfeedID,
		Data:        data,
		ChildFQIDs:  []EventFQID{},
		FirstSeenAt: time.Now().UTC(),
	}
}

// FQID returns the fully-qualified identifier of this event.
func (e *Event) FQID() EventFQID {
	return EventFQID{NewsfeedID: e.NewsfeedID, EventID: e.ID}
}

// TrackChildFQIDs records the replicas created for this event during fan-out.
func (e *Event) TrackChildFQIDs(fqids ...EventFQID) {
	e.ChildFQIDs = append(e.ChildFQIDs, fqids...)
}

// MarkPublished records the instant a processor wrote the event to its store.
func (e *Event) MarkPublished(at time.Time) {
	at = at.UTC()
	e.PublishedAt = &at
}

// serializedEvent is the wire form shared by the work queue and the HTTP
// layer. Timestamps travel as integer seconds since epoch.
type serializedEvent struct {
	ID          string         `json:"id"`
	NewsfeedID  string         `json:"newsfeed_id"`
	Data        map[string]any `json:"data"`
	ParentFQID  *EventFQID     `json:"parent_fqid"`
	ChildFQIDs  []EventFQID    `json:"child_fqids"`
	FirstSeenAt int64          `json:"first_seen_at"`
	PublishedAt *int64         `json:"published_at"`
}

// MarshalJSON encodes the event in its wire form. A missing data mapping
// becomes an empty object and a missing child list an empty array, so readers
// never see null for either.
func (e Event) MarshalJSON() ([]byte, error) {
	data := e.Data
	if data == nil {
		data = map[string]any{}
	}
	children := e.ChildFQIDs
	if children == nil {
		children = []EventFQID{}
	}
	var publishedAt *int64
	if e.PublishedAt != nil {
		seconds := e.PublishedAt.Unix()
		publishedAt = &seconds
	}
	return json.Marshal(serializedEvent{
		ID:          e.ID.String(),
		NewsfeedID:  e.NewsfeedID,
		Data:        data,
		ParentFQID:  e.ParentFQID,
		ChildFQIDs:  children,
		FirstSeenAt: e.FirstSeenAt.Unix(),
		PublishedAt: publishedAt,
	})
}

// UnmarshalJSON decodes the wire form produced by MarshalJSON.
func (e *Event) UnmarshalJSON(data []byte) error {
	var s serializedEvent
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	id, err := uuid.Parse(s.ID)
	if err != nil {
		return fmt.Errorf("event contains a malformed id: %w", err)
	}
	e.ID = id
	e.NewsfeedID = s.NewsfeedID
	e.Data = s.Data
	e.ParentFQID = s.ParentFQID
	e.ChildFQIDs = s.ChildFQIDs
	if e.ChildFQIDs == nil {
		e.ChildFQIDs = []EventFQID{}
	}
	e.FirstSeenAt = time.Unix(s.FirstSeenAt, 0).UTC()
	if s.PublishedAt != nil {
		at := time.Unix(*s.PublishedAt, 0).UTC()
		e.PublishedAt = &at
	} else {
		e.PublishedAt = nil
	}
	return nil
}

// EventSpecification validates events before they enter the pipeline.
type EventSpecification struct {
	newsfeedID *NewsfeedIDSpecification
}

func NewEventSpecification(newsfeedID *NewsfeedIDSpecification) *EventSpecification {
	return &EventSpecification{newsfeedID: newsfeedID}
}

// Check fails when the event's newsfeed id does not satisfy the newsfeed id
// specification.
func (s *EventSpecification) Check(event Event) error {
	return s.newsfeedID.Check(event.NewsfeedID)
}
