// SPDX-License-Identifier: AGPL-3.0-or-later

// Package apispec derives path-based tags for OpenAPI descriptions and
// rewrites operation tags and the top-level tag catalog to match.
//
// The package performs no I/O: callers hand it bytes and get bytes back.
package apispec

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultFallbackTag is assigned to paths with no derivable segment.
const DefaultFallbackTag = "untagged"

// Format is the serialization of an API description.
type Format string

const (
	FormatAuto Format = "auto"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "auto", "json" and "yaml" (case-insensitive).
// The empty string means auto.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatAuto:
		return FormatAuto, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want auto, json or yaml)", s)
	}
}

// FormatFromPath picks the format from a file extension; anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Resolve returns f, or the format implied by path when f is auto.
func (f Format) Resolve(path string) Format {
	if f == "" || f == FormatAuto {
		return FormatFromPath(path)
	}
	return f
}

// PathItem summarizes one entry of the paths mapping.
type PathItem struct {
	Path string
	// HasTags reports whether the path item itself declares tags.
	HasTags bool
	// Operations lists, in document order, the keys of nested objects
	// that declare tags.
	Operations []string
}

// TagDescriptor is one entry of the top-level tags catalog.
type TagDescriptor struct {
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"x-displayName" yaml:"x-displayName"`
}

// Assignment records the tag chosen for one path.
type Assignment struct {
	Path       string   `json:"path"`
	Tag        string   `json:"tag"`
	Operations []string `json:"operations,omitempty"`
	// PathTags is set when the path item's own tags were rewritten.
	PathTags bool `json:"pathTags,omitempty"`
}

// Result is a complete tag plan for a document.
type Result struct {
	Assignments []Assignment    `json:"assignments"`
	Catalog     []TagDescriptor `json:"tags"`
}

// Tags returns the distinct tag names in first-appearance order.
func (r Result) Tags() []string {
	names := make([]string, 0, len(r.Catalog))
	for _, d := range r.Catalog {
		names = append(names, d.Name)
	}
	return names
}

// Operations counts rewritten tag fields, path-level ones included.
func (r Result) Operations() int {
	n := 0
	for _, a := range r.Assignments {
		n += len(a.Operations)
		if a.PathTags {
			n++
		}
	}
	return n
}

// Options tune tag derivation.
type Options struct {
	// FallbackTag replaces an empty derived tag. When it is empty too,
	// such paths are a schema violation.
	FallbackTag string
}

// DefaultOptions returns the options used by the CLI when nothing is set.
func DefaultOptions() Options {
	return Options{FallbackTag: DefaultFallbackTag}
}

// Document is a decoded API description that can be rewritten in place
// without losing key order.
type Document interface {
	Format() Format
	Paths() ([]PathItem, error)
	Apply(Result) error
	Encode() ([]byte, error)
}

// Decode parses data in the given format. FormatAuto is treated as JSON.
func Decode(data []byte, format Format) (Document, error) {
	switch format {
	case FormatYAML:
		return decodeYAML(data)
	case FormatJSON, FormatAuto, "":
		return decodeJSON(data)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Classify builds the tag plan for items.
func Classify(items []PathItem, opts Options) (Result, error) {
	res := Result{Assignments: make([]Assignment, 0, len(items))}
	seen := make(map[string]bool, len(items))

	for _, item := range items {
		tag := DeriveTag(item.Path)
		if tag == "" {
			tag = opts.FallbackTag
		}
		if tag == "" {
			return Result{}, &Error{
				Op:   "classify",
				Path: item.Path,
				Kind: ErrSchemaViolation,
				Err:  fmt.Errorf("no tag can be derived from path %q", item.Path),
			}
		}

		if !seen[tag] {
			seen[tag] = true
			res.Catalog = append(res.Catalog, TagDescriptor{Name: tag, DisplayName: StartCase(tag)})
		}
		res.Assignments = append(res.Assignments, Assignment{
			Path:       item.Path,
			Tag:        tag,
			Operations: item.Operations,
			PathTags:   item.HasTags,
		})
	}

	if res.Catalog == nil {
		res.Catalog = []TagDescriptor{}
	}
	return res, nil
}

// Enrich rewrites doc so every declared tags field under a path holds only
// that path's derived tag, and replaces the top-level catalog.
func Enrich(doc Document, opts Options) (Result, error) {
	items, err := doc.Paths()
	if err != nil {
		return Result{}, err
	}
	res, err := Classify(items, opts)
	if err != nil {
		return Result{}, err
	}
	if err := doc.Apply(res); err != nil {
		return Result{}, fmt.Errorf("applying tags: %w", err)
	}
	return res, nil
}

// EnrichBytes decodes, enriches and re-encodes data.
func EnrichBytes(data []byte, format Format, opts Options) ([]byte, Result, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, Result{}, err
	}
	res, err := Enrich(doc, opts)
	if err != nil {
		return nil, Result{}, err
	}
	out, err := doc.Encode()
	if err != nil {
		return nil, Result{}, fmt.Errorf("encoding %s: %w", doc.Format(), err)
	}
	return out, res, nil
}
