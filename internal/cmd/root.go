/*
SPDX-FileCopyrightText: Red Hat

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/feedlane/newsfeed/internal/constants"
)

// RootCmd represents the root command of the newsfeed server
var RootCmd = &cobra.Command{
	Use:   constants.RootCmd,
	Short: "All things needed for the newsfeed server",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("Nothing to do. Use sub-commands instead.")
	},
}

func GetRootCmd() *cobra.Command {
	return RootCmd
}

func init() {
	configureLogger()
}

func configureLogger() {
	l := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:     slog.LevelDebug,
		AddSource: true,
	}))
	slog.SetDefault(l)
	slog.Info("Newsfeed server global logger configured")
}
