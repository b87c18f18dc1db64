// SPDX-License-Identifier: AGPL-3.0-or-later
package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/apitags/cmd/apitags/internal/clierr"
	"github.com/bartekus/apitags/internal/apispec"
)

const fleetSpec = `{
  "openapi": "3.0.3",
  "info": {"title": "Fleet", "version": "1.0.22"},
  "paths": {
    "/api/v1/fleet-status/list": {
      "get": {"tags": ["placeholder"], "responses": {"200": {"description": "ok"}}}
    },
    "/health": {
      "get": {"responses": {"200": {"description": "ok"}}}
    }
  }
}`

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	for _, k := range []string{"API_SPEC_SOURCE", "API_OUTPUT_PATH", "API_SPEC_FORMAT", "API_FALLBACK_TAG", "API_VALIDATE", "API_DRY_RUN", "API_LOG_LEVEL"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func workspace(t *testing.T, spec string) string {
	t.Helper()
	dir := t.TempDir()
	if spec != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "api.json"), []byte(spec), 0o600))
	}
	return dir
}

func TestCLICommandEnrich(t *testing.T) {
	dir := workspace(t, fleetSpec)
	output := filepath.Join(dir, "build", "v1", "api.json")

	stdout, _, err := execute(t, "enrich", "-C", dir, "--source", "api.json", "--output", "build/v1/api.json")
	require.NoError(t, err)
	assert.Equal(t, "API spec enriched at "+output+"\n", stdout)

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var doc struct {
		Tags []apispec.TagDescriptor `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []apispec.TagDescriptor{
		{Name: "fleet-status", DisplayName: "Fleet Status"},
		{Name: "health", DisplayName: "Health"},
	}, doc.Tags)
}

func TestCLIRootDefaultsToEnrich(t *testing.T) {
	dir := workspace(t, fleetSpec)

	stdout, _, err := execute(t, "-C", dir, "--source", "api.json", "--output", "out.json", "--validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "API spec enriched at")
	assert.FileExists(t, filepath.Join(dir, "out.json"))
}

func TestCLIEnrichFromEnvironment(t *testing.T) {
	dir := workspace(t, fleetSpec)

	cmd := NewRootCmd()
	t.Setenv("API_SPEC_SOURCE", "api.json")
	t.Setenv("API_OUTPUT_PATH", "env/api.json")
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"enrich", "-C", dir})

	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, "env", "api.json"))
}

func TestCLIEnrichMissingSourceIsNoop(t *testing.T) {
	dir := workspace(t, "")

	stdout, stderr, err := execute(t, "enrich", "-C", dir, "--source", "absent.json", "--output", "out/api.json")
	require.NoError(t, err)
	assert.Equal(t, 0, clierr.ExitCodeOf(err))
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Skipping tag enrichment")
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestCLIEnrichMalformedSourceFails(t *testing.T) {
	dir := workspace(t, `{"paths": `)

	_, _, err := execute(t, "enrich", "-C", dir, "--source", "api.json", "--output", "out/api.json")
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))
	assert.ErrorIs(t, err, apispec.ErrMalformedInput)
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestCLIEnrichMissingPathsFails(t *testing.T) {
	dir := workspace(t, `{"openapi": "3.0.3"}`)

	_, _, err := execute(t, "enrich", "-C", dir, "--source", "api.json", "--output", "out.json")
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))
	assert.ErrorIs(t, err, apispec.ErrSchemaViolation)
}

func TestCLIEnrichInvalidConfig(t *testing.T) {
	dir := workspace(t, fleetSpec)

	_, _, err := execute(t, "enrich", "-C", dir, "--source", "api.json", "--output", "api.json")
	require.Error(t, err)
	assert.Equal(t, 1, clierr.ExitCodeOf(err))
	assert.Contains(t, err.Error(), "invalid config")
}

func TestCLIEnrichDryRun(t *testing.T) {
	dir := workspace(t, fleetSpec)

	stdout, _, err := execute(t, "enrich", "-C", dir, "--source", "api.json", "--output", "out.json", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"x-displayName": "Fleet Status"`)
	assert.NoFileExists(t, filepath.Join(dir, "out.json"))
}

func TestCLICommandTags(t *testing.T) {
	dir := workspace(t, fleetSpec)

	stdout, _, err := execute(t, "tags", "-C", dir, "--source", "api.json")
	require.NoError(t, err)
	assert.Contains(t, stdout, "| fleet-status | Fleet Status |")
	assert.Contains(t, stdout, "| `/health` | health | - |")
}

func TestCLICommandTagsJSON(t *testing.T) {
	dir := workspace(t, fleetSpec)

	stdout, _, err := execute(t, "tags", "-C", dir, "--source", "api.json", "--json")
	require.NoError(t, err)

	var res apispec.Result
	require.NoError(t, json.Unmarshal([]byte(stdout), &res))
	assert.Equal(t, []string{"fleet-status", "health"}, res.Tags())
	assert.Equal(t, "/api/v1/fleet-status/list", res.Assignments[0].Path)
}

func TestCLICommandVersion(t *testing.T) {
	t.Setenv("APITAGS_VERSION", "1.2.3")

	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "apitags version 1.2.3\n", stdout)
}

func TestCLICommandEnrichHelp(t *testing.T) {
	stdout, _, err := execute(t, "enrich", "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Usage:")
	for _, flag := range []string{"--source", "--output", "--format", "--fallback-tag", "--validate", "--dry-run"} {
		assert.Contains(t, stdout, flag)
	}
}
