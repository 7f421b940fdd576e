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

package repository

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/gwm/pkg/language"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// WorkflowDir is where every repository keeps its workflow files.
	WorkflowDir = ".github/workflows"
	// WorkflowExt marks a file in WorkflowDir as a workflow definition.
	WorkflowExt = ".yml"
)

// 📦 Repository is one immediate subdirectory of the workspace
type Repository struct {
	Path              string   // Directory of the repository
	Languages         []string // Detected language tags
	ExistingWorkflows []string // Workflow files already present in WorkflowDir
}

// Name returns the directory name of the repository.
func (r *Repository) Name() string {
	return filepath.Base(r.Path)
}

// HasLanguage reports whether tag was detected in the repository.
func (r *Repository) HasLanguage(tag string) bool {
	for _, l := range r.Languages {
		if l == tag {
			return true
		}
	}
	return false
}

type detectFunc func(ctx context.Context, dir string, registry language.Registry) ([]string, error)

// 🔎 Scanner finds the repositories of a workspace
type Scanner struct {
	Registry    language.Registry
	Ignore      []string // Repository names or doublestar patterns to skip
	Parallelism int      // Repositories scanned at once, defaults to GOMAXPROCS

	detect detectFunc
}

// NewScanner creates a scanner using registry for language detection.
func NewScanner(registry language.Registry, ignore []string) *Scanner {
	return &Scanner{
		Registry: registry,
		Ignore:   ignore,
	}
}

// Ignored reports whether the repository called name is on the ignore list.
func (s *Scanner) Ignored(name string) bool {
	for _, pattern := range s.Ignore {
		if pattern == name {
			return true
		}
		if matched, err := doublestar.Match(pattern, name); err == nil && matched {
			return true
		}
	}
	return false
}

// 🎯 Scan returns one Repository per non-ignored subdirectory of baseDir, ordered by name.
//
// Subdirectories are scanned concurrently. A repository that cannot be scanned is logged
// and left out; only an unreadable baseDir or a cancelled context fails the scan.
func (s *Scanner) Scan(ctx context.Context, baseDir string) ([]*Repository, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("base_dir", baseDir).Strs("ignore", s.Ignore).Msg("scanning repositories")

	entries, err := os.ReadDir(baseDir)
	if err != nil {
		return nil, errors.Errorf("reading workspace %s: %w", baseDir, err)
	}

	var candidates []string
	for _, entry := range entries {
		if s.Ignored(entry.Name()) {
			logger.Debug().Str("repository", entry.Name()).Msg("ignoring repository")
			continue
		}
		path := filepath.Join(baseDir, entry.Name())
		if !isDir(path, entry) {
			continue
		}
		candidates = append(candidates, path)
	}

	detect := s.detect
	if detect == nil {
		detect = language.Detect
	}

	limit := s.Parallelism
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]*Repository, len(candidates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, path := range candidates {
		g.Go(func() error {
			repo, err := scanRepository(gctx, path, s.Registry, detect)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				logger.Warn().Str("repository", path).Err(err).Msg("skipping unreadable repository")
				return nil
			}
			results[i] = repo
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Errorf("scanning %s: %w", baseDir, err)
	}

	repos := make([]*Repository, 0, len(results))
	for _, repo := range results {
		if repo != nil {
			repos = append(repos, repo)
		}
	}

	logger.Debug().Int("repositories", len(repos)).Msg("scan complete")
	return repos, nil
}

func scanRepository(ctx context.Context, path string, registry language.Registry, detect detectFunc) (*Repository, error) {
	languages, err := detect(ctx, path, registry)
	if err != nil {
		return nil, err
	}

	existing, err := FindExistingWorkflows(path)
	if err != nil {
		return nil, err
	}

	return &Repository{
		Path:              path,
		Languages:         languages,
		ExistingWorkflows: existing,
	}, nil
}

// 🔍 FindExistingWorkflows lists the workflow files directly inside the WorkflowDir of
// repoDir. A repository without that directory has none.
func FindExistingWorkflows(repoDir string) ([]string, error) {
	dir := filepath.Join(repoDir, WorkflowDir)

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, nil
		}
		return nil, errors.Errorf("checking workflow directory: %w", err)
	}
	if !info.IsDir() {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Errorf("reading workflow directory: %w", err)
	}

	workflows := []string{}
	for _, entry := range entries {
		if language.Extension(entry.Name()) != WorkflowExt {
			continue
		}
		if !isRegular(filepath.Join(dir, entry.Name()), entry) {
			continue
		}
		workflows = append(workflows, entry.Name())
	}
	return workflows, nil
}

// isDir reports whether entry is a directory, following symlinks.
func isDir(path string, entry fs.DirEntry) bool {
	if entry.IsDir() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isRegular reports whether entry is a regular file, following symlinks.
func isRegular(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
