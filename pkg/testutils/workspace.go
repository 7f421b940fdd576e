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

// Package testutils builds on-disk workspaces and manifests for tests.
package testutils

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// Repository names created by NewWorkspace.
const (
	EmptyPkg  = "empty_pkg"
	PyPkg     = "py_pkg"
	CppPkg    = "cpp_pkg"
	PyCppPkg  = "py_cpp_pkg"
	Workflows = ".github/workflows"
)

// ManifestTOML is the manifest written by NewManifest. The doesnotexist workflow
// references a file that is never created.
const ManifestTOML = `[python_flake8]
file = ["flake8.yml", "flake8-problem-matcher.json"]
language = "python"

[doesnotexist]
file = "doesnotexist.yml"

[git_fixup]
file = "git.yml"
`

// ManifestFiles maps the files referenced by ManifestTOML to their content.
var ManifestFiles = map[string]string{
	"flake8.yml":                  "name: flake8\n",
	"flake8-problem-matcher.json": "{\"problemMatcher\": []}\n",
	"git.yml":                     "name: git\n",
}

// Context returns a context carrying a zerolog logger that writes to the test log.
func Context(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return logger.WithContext(context.Background())
}

// Touch creates empty files (and their parents) below root.
func Touch(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		WriteFile(t, filepath.Join(root, f), "")
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// NewWorkspace creates a workspace with four repositories:
//
//   - empty_pkg: no source files
//   - py_pkg: one .py file and the existing workflows exists1.yml and exists2.yml
//   - cpp_pkg: one .cpp file
//   - py_cpp_pkg: one .py and one .cpp file
func NewWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(root, EmptyPkg), 0755))
	Touch(t, filepath.Join(root, PyPkg), "file.py")
	Touch(t, filepath.Join(root, CppPkg), "main.cpp")
	Touch(t, filepath.Join(root, PyCppPkg), "file.py", "main.cpp")

	Touch(t, filepath.Join(root, PyPkg, Workflows),
		"exists1.yml",
		"exists2.yml",
		"some_problem_matcher.json",
	)

	return root
}

// NewManifest writes ManifestTOML and its files into a fresh directory and returns the
// manifest path.
func NewManifest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range ManifestFiles {
		WriteFile(t, filepath.Join(dir, name), content)
	}
	path := filepath.Join(dir, "workflows.toml")
	WriteFile(t, path, ManifestTOML)
	return path
}
