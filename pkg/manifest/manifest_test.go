// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package manifest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

// writeManifest writes a manifest and the files it references into a temp dir
func writeManifest(t *testing.T, name, content string, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		path := filepath.Join(dir, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("content of "+f), 0644))
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	dir, err := filepath.Abs(filepath.Join("testdata", "workflows"))
	require.NoError(t, err)

	for _, name := range []string{"workflows.toml", "workflows.yaml", "workflows.hcl"} {
		t.Run(name, func(t *testing.T) {
			m, err := Load(testContext(t), filepath.Join(dir, name))
			require.NoError(t, err)

			require.Len(t, m.Workflows, 2)

			assert.Equal(t, "python_flake8", m.Workflows[0].Name)
			assert.Equal(t, dir, m.Workflows[0].SourceDir)
			assert.Equal(t, []string{"flake8.yml", "flake8-problem-matcher.json"}, m.Workflows[0].Files)
			assert.Equal(t, []string{"python"}, m.Workflows[0].Languages)

			assert.Equal(t, "git_fixup", m.Workflows[1].Name)
			assert.Equal(t, dir, m.Workflows[1].SourceDir)
			assert.Equal(t, []string{"git.yml"}, m.Workflows[1].Files)
			assert.Equal(t, []string{Wildcard}, m.Workflows[1].Languages)

			// doesnotexist references a missing file
			require.Len(t, m.Rejected, 1)
			assert.Equal(t, "doesnotexist", m.Rejected[0].Name)
			assert.True(t, errors.Is(m.Rejected[0].Err, ErrMissingFile))

			assert.Equal(t, []string{"python", Wildcard}, m.Index.Tags())
			require.Len(t, m.Index.Workflows("python"), 1)
			assert.Equal(t, "python_flake8", m.Index.Workflows("python")[0].Name)
			require.Len(t, m.Index.Workflows(Wildcard), 1)
			assert.Equal(t, "git_fixup", m.Index.Workflows(Wildcard)[0].Name)
			assert.Empty(t, m.Index.Workflows("c++"), "rejected workflow must not populate its buckets")
		})
	}
}

func TestLoadIsDeterministic(t *testing.T) {
	path := filepath.Join("testdata", "workflows", "workflows.toml")

	first, err := Load(testContext(t), path)
	require.NoError(t, err)
	second, err := Load(testContext(t), path)
	require.NoError(t, err)

	assert.Equal(t, first.Workflows, second.Workflows)
	assert.Equal(t, first.Index.Tags(), second.Index.Tags())
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name        string
		path        func(t *testing.T) string
		errContains string
		errIs       error
	}{
		{
			name: "missing_manifest",
			path: func(t *testing.T) string {
				return filepath.Join(t.TempDir(), "nope.toml")
			},
			errContains: "reading manifest",
		},
		{
			name: "unsupported_extension",
			path: func(t *testing.T) string {
				return writeManifest(t, "workflows.ini", "[a]\nfile=x\n")
			},
			errIs: ErrUnsupportedFormat,
		},
		{
			name: "malformed_toml",
			path: func(t *testing.T) string {
				return writeManifest(t, "workflows.toml", "[broken\nfile = \n")
			},
			errContains: "parsing TOML",
		},
		{
			name: "malformed_yaml",
			path: func(t *testing.T) string {
				return writeManifest(t, "workflows.yaml", "a: [b\n")
			},
			errContains: "parsing YAML",
		},
		{
			name: "yaml_not_a_mapping",
			path: func(t *testing.T) string {
				return writeManifest(t, "workflows.yaml", "- a\n- b\n")
			},
			errContains: "expected a mapping",
		},
		{
			name: "malformed_hcl",
			path: func(t *testing.T) string {
				return writeManifest(t, "workflows.hcl", "workflow \"a\" {\n")
			},
			errContains: "parsing HCL",
		},
		{
			name: "hcl_unknown_attribute",
			path: func(t *testing.T) string {
				return writeManifest(t, "workflows.hcl", "workflow \"a\" {\n  files = \"x\"\n}\n")
			},
			errContains: "decoding HCL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(testContext(t), tt.path(t))
			require.Error(t, err)
			if tt.errContains != "" {
				assert.Contains(t, err.Error(), tt.errContains)
			}
			if tt.errIs != nil {
				assert.True(t, errors.Is(err, tt.errIs), "got %v", err)
			}
		})
	}
}

func TestLoadNormalization(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		content string
		files   []string
		check   func(t *testing.T, m *Manifest)
	}{
		{
			name: "toml_scalar_and_list",
			file: "workflows.toml",
			content: `
[scalar]
file = "a.yml"
language = "lua"

[list]
file = ["a.yml", "sub/b.yml"]
language = ["lua", "rst"]
`,
			files: []string{"a.yml", "sub/b.yml"},
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 2)
				assert.Equal(t, []string{"a.yml"}, m.Workflows[0].Files)
				assert.Equal(t, []string{"lua"}, m.Workflows[0].Languages)
				assert.Equal(t, []string{"a.yml", "sub/b.yml"}, m.Workflows[1].Files)
				assert.Equal(t, []string{"lua", "rst"}, m.Workflows[1].Languages)
				assert.Equal(t, []string{"lua", "rst"}, m.Index.Tags())
				assert.Len(t, m.Index.Workflows("lua"), 2)
			},
		},
		{
			name:    "toml_no_files",
			file:    "workflows.toml",
			content: "[nothing]\n",
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 1)
				assert.Empty(t, m.Workflows[0].Files)
				assert.Equal(t, []string{Wildcard}, m.Workflows[0].Languages)
			},
		},
		{
			name:    "toml_explicit_empty_language",
			file:    "workflows.toml",
			content: "[nowhere]\nfile = \"a.yml\"\nlanguage = []\n",
			files:   []string{"a.yml"},
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 1)
				assert.Empty(t, m.Workflows[0].Languages)
				assert.Empty(t, m.Index.Tags())
			},
		},
		{
			name:    "toml_dotted_keys",
			file:    "workflows.toml",
			content: "git_fixup.file = \"git.yml\"\nlint.file = \"a.yml\"\nlint.language = \"lua\"\n",
			files:   []string{"git.yml", "a.yml"},
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 2)
				assert.Equal(t, "git_fixup", m.Workflows[0].Name)
				assert.Equal(t, []string{"git.yml"}, m.Workflows[0].Files)
				assert.Equal(t, []string{Wildcard}, m.Workflows[0].Languages)
				assert.Equal(t, "lint", m.Workflows[1].Name)
				assert.Equal(t, []string{"lua"}, m.Workflows[1].Languages)
				assert.Empty(t, m.Rejected)
			},
		},
		{
			name: "toml_sub_tables",
			file: "workflows.toml",
			content: `
[git_fixup]
file = "git.yml"

[git_fixup.extra]
foo = 1

[only_sub.extra]
foo = 2
`,
			files: []string{"git.yml"},
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 2)
				assert.Equal(t, "git_fixup", m.Workflows[0].Name)
				assert.Equal(t, []string{"git.yml"}, m.Workflows[0].Files)
				assert.Equal(t, "only_sub", m.Workflows[1].Name)
				assert.Empty(t, m.Workflows[1].Files)
				assert.Equal(t, []string{Wildcard}, m.Workflows[1].Languages)
				assert.Empty(t, m.Rejected)
			},
		},
		{
			name:    "toml_wrong_type_is_rejected",
			file:    "workflows.toml",
			content: "[bad]\nfile = 3\n\n[good]\nfile = \"a.yml\"\n",
			files:   []string{"a.yml"},
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 1)
				assert.Equal(t, "good", m.Workflows[0].Name)
				require.Len(t, m.Rejected, 1)
				assert.Equal(t, "bad", m.Rejected[0].Name)
			},
		},
		{
			name:    "toml_directory_is_not_a_file",
			file:    "workflows.toml",
			content: "[dir]\nfile = \"sub\"\n",
			files:   []string{"sub/a.yml"},
			check: func(t *testing.T, m *Manifest) {
				assert.Empty(t, m.Workflows)
				require.Len(t, m.Rejected, 1)
				assert.True(t, errors.Is(m.Rejected[0].Err, ErrMissingFile))
			},
		},
		{
			name: "yaml_duplicate_key_last_wins",
			file: "workflows.yaml",
			content: `
first:
  file: a.yml
second:
  file: a.yml
first:
  file: b.yml
  language: rst
`,
			files: []string{"a.yml", "b.yml"},
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 2)
				assert.Equal(t, "first", m.Workflows[0].Name)
				assert.Equal(t, []string{"b.yml"}, m.Workflows[0].Files)
				assert.Equal(t, []string{"rst"}, m.Workflows[0].Languages)
				assert.Equal(t, "second", m.Workflows[1].Name)
			},
		},
		{
			name:    "yaml_null_body",
			file:    "workflows.yml",
			content: "empty:\n",
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 1)
				assert.Empty(t, m.Workflows[0].Files)
			},
		},
		{
			name:    "yaml_empty_document",
			file:    "workflows.yaml",
			content: "",
			check: func(t *testing.T, m *Manifest) {
				assert.Empty(t, m.Workflows)
				assert.Empty(t, m.Index.Tags())
			},
		},
		{
			name:    "hcl_empty_list",
			file:    "workflows.hcl",
			content: "workflow \"x\" {\n  file = []\n  language = [\"lua\"]\n}\n",
			check: func(t *testing.T, m *Manifest) {
				require.Len(t, m.Workflows, 1)
				assert.Empty(t, m.Workflows[0].Files)
				assert.Equal(t, []string{"lua"}, m.Workflows[0].Languages)
			},
		},
		{
			name:    "hcl_wrong_type_is_rejected",
			file:    "workflows.hcl",
			content: "workflow \"x\" {\n  file = { a = 1 }\n}\n",
			check: func(t *testing.T, m *Manifest) {
				assert.Empty(t, m.Workflows)
				require.Len(t, m.Rejected, 1)
				assert.Equal(t, "x", m.Rejected[0].Name)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, tt.file, tt.content, tt.files...)
			m, err := Load(testContext(t), path)
			require.NoError(t, err)
			tt.check(t, m)
		})
	}
}
