/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package typederrors

import (
	"errors"
	"fmt"
)

// GenericError is an error structure containing common fields to be
// embedded by specific error types defined below
type GenericError struct {
	Message string
	Err     error
}

func (ge GenericError) Error() string {
	return ge.Message
}

func (ge GenericError) Unwrap() error {
	return ge.Err
}

func (ge GenericError) domainError() {}

// DomainError is implemented by every typed error in this package. The HTTP
// boundary uses it to separate caller faults from internal failures.
type DomainError interface {
	error
	domainError()
}

// IsDomainError reports whether any error in the chain belongs to the
// domain taxonomy.
func IsDomainError(target error) bool {
	var e DomainError
	return errors.As(target, &e)
}

// InvalidNewsfeedIDError type
type InvalidNewsfeedIDError struct {
	GenericError
}

func NewInvalidNewsfeedIDError(err error, format string, args ...interface{}) error {
	return InvalidNewsfeedIDError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsInvalidNewsfeedIDError(target error) bool {
	var e InvalidNewsfeedIDError
	return errors.As(target, &e)
}

// NewsfeedIDTooLongError type
type NewsfeedIDTooLongError struct {
	GenericError
}

func NewNewsfeedIDTooLongError(err error, format string, args ...interface{}) error {
	return NewsfeedIDTooLongError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsNewsfeedIDTooLongError(target error) bool {
	var e NewsfeedIDTooLongError
	return errors.As(target, &e)
}

// SelfSubscriptionError type
type SelfSubscriptionError struct {
	GenericError
}

func NewSelfSubscriptionError(err error, format string, args ...interface{}) error {
	return SelfSubscriptionError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsSelfSubscriptionError(target error) bool {
	var e SelfSubscriptionError
	return errors.As(target, &e)
}

// SubscriptionExistsError type
type SubscriptionExistsError struct {
	GenericError
}

func NewSubscriptionExistsError(err error, format string, args ...interface{}) error {
	return SubscriptionExistsError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsSubscriptionExistsError(target error) bool {
	var e SubscriptionExistsError
	return errors.As(target, &e)
}

// SubscriptionNotFoundError type
type SubscriptionNotFoundError struct {
	GenericError
}

func NewSubscriptionNotFoundError(err error, format string, args ...interface{}) error {
	return SubscriptionNotFoundError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsSubscriptionNotFoundError(target error) bool {
	var e SubscriptionNotFoundError
	return errors.As(target, &e)
}

// SubscriptionBetweenNotFoundError type
type SubscriptionBetweenNotFoundError struct {
	GenericError
}

func NewSubscriptionBetweenNotFoundError(err error, format string, args ...interface{}) error {
	return SubscriptionBetweenNotFoundError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsSubscriptionBetweenNotFoundError(target error) bool {
	var e SubscriptionBetweenNotFoundError
	return errors.As(target, &e)
}

// NewsfeedLimitError type
type NewsfeedLimitError struct {
	GenericError
}

func NewNewsfeedLimitError(err error, format string, args ...interface{}) error {
	return NewsfeedLimitError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsNewsfeedLimitError(target error) bool {
	var e NewsfeedLimitError
	return errors.As(target, &e)
}

// SubscriptionLimitError type
type SubscriptionLimitError struct {
	GenericError
}

func NewSubscriptionLimitError(err error, format string, args ...interface{}) error {
	return SubscriptionLimitError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsSubscriptionLimitError(target error) bool {
	var e SubscriptionLimitError
	return errors.As(target, &e)
}

// QueueFullError type
type QueueFullError struct {
	GenericError
}

func NewQueueFullError(err error, format string, args ...interface{}) error {
	return QueueFullError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsQueueFullError(target error) bool {
	var e QueueFullError
	return errors.As(target, &e)
}

// EventNotFoundError type
type EventNotFoundError struct {
	GenericError
}

func NewEventNotFoundError(err error, format string, args ...interface{}) error {
	return EventNotFoundError{
		GenericError: GenericError{fmt.Sprintf(format, args...), err},
	}
}

func IsEventNotFoundError(target error) bool {
	var e EventNotFoundError
	return errors.As(target, &e)
}
