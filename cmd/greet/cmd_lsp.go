package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/sfinnie/helloLSP/parser"
	"github.com/sfinnie/helloLSP/workspace"
)

func newLSPCmd() *cobra.Command {
	var watch bool
	var pollInterval time.Duration

	cmd := &cobra.Command{
		Use:   "lsp",
		Short: "Start the Language Server Protocol server on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lang, err := settings.Language()
			if err != nil {
				return err
			}
			server := workspace.NewLSPServer(version,
				workspace.WithParser(parser.New(lang, settings.ParserOptions()...)),
				workspace.WithCacheSize(settings.Server.CacheSize),
				workspace.WithWatch(watch, pollInterval),
			)
			return server.RunStdio()
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", true, "rescan .greet files changed outside the editor")
	cmd.Flags().DurationVar(&pollInterval, "poll-interval", time.Second, "how often to rescan when watching")

	return cmd
}
