// SPDX-License-Identifier: AGPL-3.0-or-later

// Package report writes enrichment artifacts and renders tag plans.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bartekus/apitags/internal/apispec"
)

// AtomicWrite writes content to path by renaming a temp file into place,
// creating parent directories as needed. A failed write leaves any
// existing file untouched.
func AtomicWrite(path string, content []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return fmt.Errorf("writing content: %w", err)
	}
	if err := tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("moving temp file to %s: %w", path, err)
	}
	return nil
}

// RenderTable renders a Markdown table. Pipes inside cells are escaped.
func RenderTable(headers []string, rows [][]string) string {
	var b strings.Builder

	b.WriteString("| " + strings.Join(headers, " | ") + " |\n")
	b.WriteString("|")
	for range headers {
		b.WriteString(" --- |")
	}
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(row))
		for i, c := range row {
			cells[i] = strings.ReplaceAll(c, "|", `\|`)
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return b.String()
}

// RenderHeader renders a Markdown header.
func RenderHeader(level int, text string) string {
	return fmt.Sprintf("%s %s\n\n", strings.Repeat("#", level), text)
}

// RenderMarkdown renders the tag plan: the catalog, then one row per path.
func RenderMarkdown(source string, res apispec.Result) string {
	var b strings.Builder

	b.WriteString(RenderHeader(1, "API Tags"))
	b.WriteString(fmt.Sprintf("- **Source**: `%s`\n", source))
	b.WriteString(fmt.Sprintf("- **Paths**: %d\n", len(res.Assignments)))
	b.WriteString(fmt.Sprintf("- **Tagged operations**: %d\n", res.Operations()))
	b.WriteString(fmt.Sprintf("- **Tags**: %d\n\n", len(res.Catalog)))

	b.WriteString(RenderHeader(2, "Catalog"))
	catalog := make([][]string, 0, len(res.Catalog))
	for _, d := range res.Catalog {
		catalog = append(catalog, []string{d.Name, d.DisplayName})
	}
	b.WriteString(RenderTable([]string{"Tag", "Display Name"}, catalog))
	b.WriteString("\n")

	b.WriteString(RenderHeader(2, "Paths"))
	paths := make([][]string, 0, len(res.Assignments))
	for _, a := range res.Assignments {
		ops := strings.Join(a.Operations, ", ")
		if a.PathTags {
			ops = strings.TrimPrefix(ops+", (path)", ", ")
		}
		if ops == "" {
			ops = "-"
		}
		paths = append(paths, []string{"`" + a.Path + "`", a.Tag, ops})
	}
	b.WriteString(RenderTable([]string{"Path", "Tag", "Rewritten"}, paths))

	return b.String()
}
