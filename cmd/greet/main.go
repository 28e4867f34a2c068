package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"

	"github.com/sfinnie/helloLSP/config"
)

const version = "0.1.0"

// settings holds the loaded configuration after flags have been applied.
var settings = config.Default()

func main() {
	var configPath string
	var verbose int
	var logFile string

	rootCmd := &cobra.Command{
		Use:           "greet",
		Short:         "Parser and language server for greetings",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("verbose") {
				c.Log.Verbosity = verbose
			}
			if cmd.Flags().Changed("log-file") {
				c.Log.File = logFile
			}
			if err := c.Validate(); err != nil {
				return err
			}
			settings = c

			var path *string
			if c.Log.File != "" {
				path = &c.Log.File
			}
			commonlog.Configure(c.Log.Verbosity, path)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "configuration file (default ./"+config.FileName+")")
	rootCmd.PersistentFlags().CountVarP(&verbose, "verbose", "v", "increase log verbosity")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "write logs to a file instead of stderr")

	rootCmd.AddCommand(newParseCmd())
	rootCmd.AddCommand(newLexCmd())
	rootCmd.AddCommand(newTablesCmd())
	rootCmd.AddCommand(newGrammarCmd())
	rootCmd.AddCommand(newLSPCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "greet:", err)
		os.Exit(1)
	}
}
