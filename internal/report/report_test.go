// SPDX-License-Identifier: AGPL-3.0-or-later
package report

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartekus/apitags/internal/apispec"
	"github.com/bartekus/apitags/internal/testutil/golden"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	target := filepath.Join(tmpDir, "api", "v1", "api.json")

	require.NoError(t, AtomicWrite(target, []byte("first")))
	require.NoError(t, AtomicWrite(target, []byte("second")))

	got, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "second", string(got))

	entries, err := os.ReadDir(filepath.Dir(target))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestAtomicWrite_ParentIsFile(t *testing.T) {
	tmpDir := t.TempDir()
	blocker := filepath.Join(tmpDir, "api")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o600))

	err := AtomicWrite(filepath.Join(blocker, "v1", "api.json"), []byte("{}"))
	assert.Error(t, err)
}

func TestRenderTable_EscapesPipes(t *testing.T) {
	got := RenderTable([]string{"A"}, [][]string{{"a|b"}})
	assert.Equal(t, "| A |\n| --- |\n| a\\|b |\n", got)
}

func TestRenderMarkdown_Golden(t *testing.T) {
	res := apispec.Result{
		Assignments: []apispec.Assignment{
			{Path: "/api/v1/robots", Tag: "robots", Operations: []string{"get", "post"}},
			{Path: "/maps", Tag: "maps", PathTags: true},
			{Path: "/", Tag: "untagged"},
		},
		Catalog: []apispec.TagDescriptor{
			{Name: "robots", DisplayName: "Robots"},
			{Name: "maps", DisplayName: "Maps"},
			{Name: "untagged", DisplayName: "Untagged"},
		},
	}

	golden.Assert(t, golden.TestdataDir(t), "tags.md", RenderMarkdown("api.json", res))
}
