/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package domain

import (
	"unicode/utf8"

	typederrors "github.com/feedlane/newsfeed/internal/typed-errors"
)

// NewsfeedIDSpecification validates newsfeed ids before any store write.
// An id is acceptable when it is text (valid UTF-8) and no longer than the
// configured maximum.
type NewsfeedIDSpecification struct {
	maxLength int
}

func NewNewsfeedIDSpecification(maxLength int) *NewsfeedIDSpecification {
	return &NewsfeedIDSpecification{maxLength: maxLength}
}

// Check validates id against the specification.
func (s *NewsfeedIDSpecification) Check(id string) error {
	if !utf8.ValidString(id) {
		return typederrors.NewInvalidNewsfeedIDError(
			nil, `Newsfeed id "%s" type is invalid`, id,
		)
	}
	if utf8.RuneCountInString(id) > s.maxLength {
		runes := []rune(id)
		return typederrors.NewNewsfeedIDTooLongError(
			nil, `Newsfeed id "%s..." is too long`, string(runes[:s.maxLength]),
		)
	}
	return nil
}
