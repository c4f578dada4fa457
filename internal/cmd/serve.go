/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedlane/newsfeed/internal/api"
	"github.com/feedlane/newsfeed/internal/newsfeed"
)

var config api.ServerConfig

// serve represents the start newsfeed server command
var serve = &cobra.Command{
	Use:   "serve",
	Short: "Start newsfeed server",
	Run: func(cmd *cobra.Command, args []string) {
		if err := config.LoadFromEnv(); err != nil {
			slog.Error("failed to load environment variables", "err", err)
			os.Exit(1)
		}
		if err := config.Validate(); err != nil {
			slog.Error("failed to validate server configuration", "err", err)
			os.Exit(1)
		}
		if err := newsfeed.Serve(&config); err != nil {
			slog.Error("failed to start newsfeed server", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	if err := api.SetServerFlags(serve.Flags(), &config); err != nil {
		panic(err)
	}
	RootCmd.AddCommand(serve)
}
