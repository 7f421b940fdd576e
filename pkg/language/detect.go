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

package language

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔍 Detect walks dir recursively and returns the tags of registry whose extensions
// appear in it.
//
// A tag is settled by the first file that matches it and is not checked again. The walk
// stops as soon as every tag is settled. The order of the result follows the walk and
// carries no meaning. Symlinked directories below dir are not followed, so link cycles cannot
// loop. Unreadable subdirectories are skipped; an unreadable dir is an error.
func Detect(ctx context.Context, dir string, registry Registry) ([]string, error) {
	logger := zerolog.Ctx(ctx)

	pending := registry.Tags()
	detected := []string{}
	if len(pending) == 0 {
		return detected, nil
	}

	// the repository itself may be a symlink, its contents are still walked
	root, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return nil, errors.Errorf("detecting languages in %s: %w", dir, err)
	}

	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			logger.Debug().Str("path", path).Err(err).Msg("skipping unreadable path")
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if !isFile(path, d) {
			return nil
		}

		ext := Extension(d.Name())
		if ext == "" {
			return nil
		}

		for _, tag := range registry.Match(ext) {
			i := slices.Index(pending, tag)
			if i < 0 {
				continue
			}
			pending = slices.Delete(pending, i, i+1)
			detected = append(detected, tag)
			logger.Trace().Str("language", tag).Str("file", path).Msg("language detected")
		}

		if len(pending) == 0 {
			return filepath.SkipAll
		}
		return nil
	})
	if err != nil {
		return nil, errors.Errorf("detecting languages in %s: %w", dir, err)
	}

	return detected, nil
}

// isFile reports whether the entry is a regular file, following a symlink to its target.
func isFile(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
