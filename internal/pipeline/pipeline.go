// SPDX-License-Identifier: AGPL-3.0-or-later

// Package pipeline runs one enrichment: read the source description, tag
// it, optionally validate it, and write it to the output path.
package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/bartekus/apitags/internal/apispec"
	"github.com/bartekus/apitags/internal/config"
	"github.com/bartekus/apitags/internal/report"
)

// Report describes a finished run.
type Report struct {
	Source  string         `json:"source"`
	Output  string         `json:"output"`
	Format  apispec.Format `json:"format"`
	Written bool           `json:"written"`
	Result  apispec.Result `json:"result"`
	// Document is the encoded output, also set on dry runs.
	Document []byte `json:"-"`
}

// Run executes cfg with relative paths resolved against workDir.
//
// A missing source returns an error matching apispec.ErrMissingInput and
// writes nothing; callers decide whether that is fatal. Nothing is written
// unless every step succeeds.
func Run(ctx context.Context, cfg *config.Config, workDir string, logger *slog.Logger) (*Report, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	source, output := cfg.Resolve(workDir)
	format := cfg.SpecFormat().Resolve(source)
	log := logger.With(slog.String("source", source), slog.String("format", string(format)))

	if _, err := os.Stat(source); err != nil {
		kind := apispec.ErrRead
		if errors.Is(err, fs.ErrNotExist) {
			kind = apispec.ErrMissingInput
		}
		return nil, &apispec.Error{Op: "stat", Path: source, Kind: kind, Err: err}
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, &apispec.Error{Op: "read", Path: source, Kind: apispec.ErrRead, Err: err}
	}
	log.Debug("read api description", slog.Int("bytes", len(data)))

	out, res, err := apispec.EnrichBytes(data, format, cfg.EnrichOptions())
	if err != nil {
		return nil, err
	}
	log.Debug("derived tags",
		slog.Int("paths", len(res.Assignments)),
		slog.Int("operations", res.Operations()),
		slog.Any("tags", res.Tags()),
	)

	if cfg.Validate {
		if err := apispec.Validate(ctx, out); err != nil {
			return nil, err
		}
		log.Debug("enriched description is valid")
	}

	rep := &Report{Source: source, Output: output, Format: format, Result: res, Document: out}
	if cfg.DryRun {
		log.Debug("dry run, output not written", slog.String("output", output))
		return rep, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, &apispec.Error{Op: "write", Path: output, Kind: apispec.ErrWrite, Err: err}
	}
	if err := report.AtomicWrite(output, out); err != nil {
		return nil, &apispec.Error{Op: "write", Path: output, Kind: apispec.ErrWrite, Err: err}
	}
	rep.Written = true
	log.Debug("wrote enriched description", slog.String("output", output))
	return rep, nil
}
