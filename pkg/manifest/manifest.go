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

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Wildcard is the language tag of workflows that apply to every repository.
const Wildcard = "*"

var (
	// ErrUnsupportedFormat is returned when no parser handles the manifest file.
	ErrUnsupportedFormat = errors.New("unsupported manifest format")
	// ErrMissingFile marks a workflow that references a file which does not exist.
	ErrMissingFile = errors.New("workflow file not found")
)

// 📦 Workflow is a named bundle of CI files and the languages it applies to
type Workflow struct {
	Name      string   // Manifest key
	SourceDir string   // Directory containing the manifest, files are relative to it
	Files     []string // Relative file paths
	Languages []string // Language tags, or Wildcard
}

// 🔍 Validate checks that every file of the workflow exists as a regular file
func (wf *Workflow) Validate() error {
	for _, file := range wf.Files {
		info, err := os.Stat(filepath.Join(wf.SourceDir, file))
		if err != nil {
			return errors.Errorf("%w: %s", ErrMissingFile, file)
		}
		if !info.Mode().IsRegular() {
			return errors.Errorf("%w: %s is not a regular file", ErrMissingFile, file)
		}
	}
	return nil
}

// SourcePath returns the path of file inside the workflow source directory.
func (wf *Workflow) SourcePath(file string) string {
	return filepath.Join(wf.SourceDir, file)
}

// Rejection records a manifest entry that was left out of the load.
type Rejection struct {
	Name string
	Err  error
}

// 📚 Manifest is the result of loading a manifest file
type Manifest struct {
	Path      string
	Workflows []*Workflow // Valid workflows in declaration order
	Index     *Index      // Valid workflows grouped by language tag
	Rejected  []Rejection // Entries dropped during validation
}

// 🎯 Load reads, parses and validates the manifest at path.
//
// Reading or parsing failures are returned as errors. Entries that fail validation are
// logged, recorded in Rejected and skipped.
func Load(ctx context.Context, path string) (*Manifest, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading manifest")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading manifest: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}

	entries, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing manifest %s: %w", path, err)
	}

	m := &Manifest{
		Path:  path,
		Index: NewIndex(),
	}
	sourceDir := filepath.Dir(path)

	for _, entry := range mergeDuplicates(entries) {
		wf, err := entry.workflow(sourceDir)
		if err == nil {
			err = wf.Validate()
		}
		if err != nil {
			logger.Warn().Str("workflow", entry.Name).Err(err).Msg("ignoring invalid workflow")
			m.Rejected = append(m.Rejected, Rejection{Name: entry.Name, Err: err})
			continue
		}

		m.Workflows = append(m.Workflows, wf)
		m.Index.Add(wf)
	}

	logger.Debug().
		Int("workflows", len(m.Workflows)).
		Int("rejected", len(m.Rejected)).
		Msg("manifest loaded")

	return m, nil
}

// 🗂️ Index maps language tags to workflows.
//
// Tags are kept in order of first appearance and workflows in manifest order, so walking
// an Index is deterministic.
type Index struct {
	tags  []string
	byTag map[string][]*Workflow
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{byTag: map[string][]*Workflow{}}
}

// Add files wf under each of its language tags.
func (idx *Index) Add(wf *Workflow) {
	for _, lang := range wf.Languages {
		if _, ok := idx.byTag[lang]; !ok {
			idx.tags = append(idx.tags, lang)
		}
		idx.byTag[lang] = append(idx.byTag[lang], wf)
	}
}

// Tags returns every tag with at least one workflow, in order of first appearance.
func (idx *Index) Tags() []string {
	return append([]string(nil), idx.tags...)
}

// Workflows returns the workflows declared for tag.
func (idx *Index) Workflows(tag string) []*Workflow {
	return idx.byTag[tag]
}
