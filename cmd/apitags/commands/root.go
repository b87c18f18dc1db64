// SPDX-License-Identifier: AGPL-3.0-or-later

/*
apitags - derives path-based tags for OpenAPI descriptions before they are
rendered into API reference pages.

Copyright (C) 2025  Bartek Kus

This program is free software licensed under the terms of the GNU AGPL v3 or later.

See https://www.gnu.org/licenses/ for license details.

*/

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/bartekus/apitags/cmd/apitags/internal/clierr"
	"github.com/bartekus/apitags/internal/apispec"
	"github.com/bartekus/apitags/internal/config"
)

// NewRootCmd constructs the apitags root Cobra command. Without a
// subcommand it behaves like `apitags enrich`.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("APITAGS_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "apitags",
		Short:         "Tag OpenAPI operations by path for API reference docs",
		Long:          "apitags rewrites every operation's tags to a single tag derived from its path and rebuilds the top-level tag catalog.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runEnrich,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringP("workdir", "C", "", "resolve relative paths against this directory (default: current directory)")
	addRunFlags(cmd)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of apitags",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "apitags version %s\n", version)
		},
	})
	cmd.AddCommand(NewEnrichCommand())
	cmd.AddCommand(NewTagsCommand())

	return cmd
}

// addRunFlags registers the flags that override environment settings.
func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("source", "", "source API description (env API_SPEC_SOURCE, default "+config.DefaultSource+")")
	f.String("output", "", "output path (env API_OUTPUT_PATH, default "+config.DefaultOutput+")")
	f.String("format", "", "input format: auto, json or yaml (env API_SPEC_FORMAT)")
	f.String("fallback-tag", "", "tag for paths without a derivable segment (env API_FALLBACK_TAG, default "+apispec.DefaultFallbackTag+")")
	f.Bool("validate", false, "validate the enriched description as OpenAPI 3 before writing (env API_VALIDATE)")
	f.Bool("dry-run", false, "print the enriched description to stdout instead of writing it (env API_DRY_RUN)")
}

// loadConfig merges environment settings with any flags set on cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitFailure, "loading config", err)
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"source":       &cfg.Source,
		"output":       &cfg.Output,
		"format":       &cfg.Format,
		"fallback-tag": &cfg.FallbackTag,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			if *dst, err = flags.GetString(name); err != nil {
				return nil, fmt.Errorf("reading --%s: %w", name, err)
			}
		}
	}
	for name, dst := range map[string]*bool{
		"validate": &cfg.Validate,
		"dry-run":  &cfg.DryRun,
	} {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			if *dst, err = flags.GetBool(name); err != nil {
				return nil, fmt.Errorf("reading --%s: %w", name, err)
			}
		}
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Check(); err != nil {
		return nil, clierr.Wrap(clierr.ExitFailure, "invalid config", err)
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *slog.Logger {
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: cfg.ParsedLogLevel()}))
}

func workDir(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("workdir")
	if err != nil {
		return "", fmt.Errorf("reading --workdir: %w", err)
	}
	if dir != "" {
		return dir, nil
	}
	return os.Getwd()
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
