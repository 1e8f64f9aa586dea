// Copyright (c) 2025 SQL Agent
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for sqlagent, a terminal
// front end for the SQL agent API. Questions are asked in natural language;
// the agent answers with a reply, the SQL it generated and the rows it read.
// The package implements the subcommands with the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sqlagent/cli/internal/backend"
	"sqlagent/cli/internal/config"
	"sqlagent/cli/internal/keychain"
	"sqlagent/cli/internal/logging"
)

// EnvAPIToken overrides the token stored by 'sqlagent login'.
const EnvAPIToken = "SQLAGENT_API_TOKEN"

var (
	showVersion bool
	flagAPIURL  string
	flagTimeout time.Duration
	flagVerbose bool
)

// app is the runtime shared by all subcommands, prepared before any of them run.
var app struct {
	cfg     config.Config
	log     *zap.Logger
	logPath string
}

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "sqlagent",
	Short: "Ask questions about your database in plain language",
	Long: `sqlagent is a terminal client for the SQL agent service. Each question is sent to
the agent, which generates SQL, runs it and answers. The generated SQL and the
returned rows are shown under the reply.

Run 'sqlagent chat' for an interactive conversation or 'sqlagent ask' for a
single question.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupRuntime,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd.Context())
			return nil
		}
		// If no flag is set, show help
		return cmd.Help()
	},
}

// Execute runs the CLI application.
// It executes the root command and handles any errors that occur during execution.
func Execute() {
	defer func() {
		if app.log != nil {
			_ = app.log.Sync()
		}
	}()
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, logging.Mask(err.Error()))
		if app.log != nil {
			_ = app.log.Sync()
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version and API health")
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Base URL of the SQL agent API (default from config or "+config.EnvAPIURL+")")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout, e.g. 90s (0 keeps the configured value)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Write debug logs to the sqlagent log file")
}

// setupRuntime loads configuration, applies flag overrides and opens the
// diagnostic log.
func setupRuntime(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagAPIURL != "" {
		cfg.APIURL = strings.TrimRight(strings.TrimSpace(flagAPIURL), "/")
	}
	if flagTimeout > 0 {
		cfg.Timeout = config.Duration(flagTimeout)
	}
	if flagVerbose {
		cfg.LogLevel = "debug"
		pterm.EnableDebugMessages()
	}
	app.cfg = cfg

	enabled := flagVerbose || strings.EqualFold(cfg.LogLevel, "debug")
	log, path, err := logging.Setup(enabled, cfg.LogLevel)
	if err != nil {
		pterm.Warning.Printf("Diagnostic log disabled: %v\n", err)
	}
	app.log = log.With(zap.String("cmd", cmd.Name()))
	app.logPath = path
	if path != "" {
		pterm.Debug.Printf("Writing debug log to %s\n", path)
	}
	app.log.Debug("runtime ready",
		zap.String("api_url", cfg.APIURL),
		zap.Bool("show_sql", cfg.ShowSQL),
		zap.Duration("timeout", time.Duration(cfg.Timeout)))
	return nil
}

// newAPI builds the agent API client from the loaded configuration. The bearer
// token comes from SQLAGENT_API_TOKEN or, failing that, the OS keychain.
func newAPI() backend.API {
	return backend.New(app.cfg.APIURL, backend.Options{
		Timeout:   time.Duration(app.cfg.Timeout),
		Token:     apiToken(),
		UserAgent: "sqlagent-cli/" + Version,
	})
}

func apiToken() string {
	if t := strings.TrimSpace(os.Getenv(EnvAPIToken)); t != "" {
		app.log.Debug("using API token", zap.String("source", EnvAPIToken))
		return t
	}
	km, err := keychain.GetManager()
	if err != nil {
		app.log.Debug("keychain unavailable", zap.Error(err))
		return ""
	}
	t, err := km.LoadAPIToken()
	if err != nil {
		return ""
	}
	return t
}
