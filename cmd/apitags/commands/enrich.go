// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/apitags/cmd/apitags/internal/clierr"
	"github.com/bartekus/apitags/internal/apispec"
	"github.com/bartekus/apitags/internal/pipeline"
)

// NewEnrichCommand returns the `apitags enrich` command.
func NewEnrichCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Rewrite operation tags and the tag catalog",
		Long: "Reads the source API description, assigns every path a tag derived from its URL, " +
			"and writes the result to the output path. A missing source is skipped with a warning.",
		Args: cobra.NoArgs,
		RunE: runEnrich,
	}
	addRunFlags(cmd)
	return cmd
}

func runEnrich(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	dir, err := workDir(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg)

	rep, err := pipeline.Run(commandContext(cmd), cfg, dir, logger)
	if errors.Is(err, apispec.ErrMissingInput) {
		source, _ := cfg.Resolve(dir)
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "API spec not found at %s. Skipping tag enrichment.\n", source)
		return nil
	}
	if err != nil {
		return clierr.Wrap(clierr.ExitFailure, "", err)
	}

	if !rep.Written {
		_, err := cmd.OutOrStdout().Write(rep.Document)
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "API spec enriched at %s\n", rep.Output)
	return nil
}
