/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package constants

// Service identity
const (
	ServiceName = "newsfeed"
	RootCmd     = "newsfeed-server"
)

// API path segments
const (
	NewsfeedPath      = "/newsfeed"
	EventsPath        = "/events"
	SubscriptionsPath = "/subscriptions"
	SubscribersPath   = "/subscribers"
	StatusPath        = "/status"
	DocsPath          = "/docs"
)

// Command line flag names
const (
	ListenerFlagName             = "api-listener-address"
	BasePathFlagName             = "api-base-path"
	QueueSizeFlagName            = "events-queue-size"
	MaxNewsfeedsFlagName         = "max-newsfeeds"
	EventsPerNewsfeedFlagName    = "events-per-newsfeed"
	SubsPerNewsfeedFlagName      = "subscriptions-per-newsfeed"
	NewsfeedIDLengthFlagName     = "newsfeed-id-length"
	ProcessorConcurrencyFlagName = "processor-concurrency"
	EventStorageDSNFlagName      = "event-storage-dsn"
)

// Listener defaults
const (
	DefaultServicePort    = 8080
	DefaultListenerFlagIP = "127.0.0.1"
)

// Capacity and pipeline defaults, overridable from the environment
const (
	DefaultQueueSize            = 100
	DefaultMaxNewsfeeds         = 100
	DefaultEventsPerNewsfeed    = 100
	DefaultSubsPerNewsfeed      = 50
	DefaultNewsfeedIDLength     = 16
	DefaultProcessorConcurrency = 4
	DefaultBasePath             = "/"
	DefaultEventStorageDSN      = "memory://"
)
