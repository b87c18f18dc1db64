// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bartekus/apitags/cmd/apitags/internal/clierr"
	"github.com/bartekus/apitags/internal/pipeline"
	"github.com/bartekus/apitags/internal/report"
)

// NewTagsCommand returns the `apitags tags` command.
func NewTagsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Show the tag derived for every path",
		Long:  "Enriches the source API description in memory and prints the tag catalog and per-path assignments. Nothing is written.",
		Args:  cobra.NoArgs,
		RunE:  runTags,
	}
	addRunFlags(cmd)
	cmd.Flags().Bool("json", false, "print the tag plan as JSON")
	return cmd
}

func runTags(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.DryRun = true

	dir, err := workDir(cmd)
	if err != nil {
		return err
	}

	rep, err := pipeline.Run(commandContext(cmd), cfg, dir, newLogger(cmd, cfg))
	if err != nil {
		return clierr.Wrap(clierr.ExitFailure, "", err)
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("reading --json: %w", err)
	}
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(rep.Result)
	}

	_, err = fmt.Fprint(cmd.OutOrStdout(), report.RenderMarkdown(rep.Source, rep.Result))
	return err
}
