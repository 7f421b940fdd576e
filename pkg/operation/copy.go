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

package operation

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/walteh/gwm/pkg/log"
	"gitlab.com/tozd/go/errors"
)

// 🔧 Options controls how operations are applied
type Options struct {
	DryRun  bool        // Only report the plan, touch nothing
	Verbose bool        // Report every performed copy
	Console *log.Logger // User-facing output, may be nil
}

// 📊 Summary counts what Apply did
type Summary struct {
	Planned  int // Operations handed to Apply
	Copied   int // Copies performed
	Created  int // Copies that created a new destination file
	Replaced int // Copies that overwrote an existing destination file
}

// 🎯 Apply executes ops in order.
//
// In dry-run mode every operation is reported and the filesystem is left untouched.
// Otherwise each destination directory is created if missing and the file is written
// through a temporary file and a rename, so a failed copy never leaves a partial
// destination. The first failure stops the run.
func Apply(ctx context.Context, ops []CopyOperation, opts Options) (Summary, error) {
	logger := zerolog.Ctx(ctx)
	summary := Summary{Planned: len(ops)}

	if opts.DryRun {
		for _, op := range ops {
			if opts.Console != nil {
				opts.Console.LogCopy(log.CopyEntry{Source: op.Source, Destination: op.Destination, DryRun: true})
			}
		}
		logger.Debug().Int("operations", len(ops)).Msg("dry run complete")
		return summary, nil
	}

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return summary, errors.Errorf("applying operations: %w", err)
		}

		replaced, err := copyFile(op.Source, op.Destination)
		if err != nil {
			return summary, errors.Errorf("copying %s: %w", op, err)
		}

		summary.Copied++
		if replaced {
			summary.Replaced++
		} else {
			summary.Created++
		}

		logger.Debug().Str("source", op.Source).Str("destination", op.Destination).Bool("replaced", replaced).Msg("copied")
		if opts.Verbose && opts.Console != nil {
			opts.Console.LogCopy(log.CopyEntry{Source: op.Source, Destination: op.Destination, Replaced: replaced})
		}
	}

	return summary, nil
}

// copyFile copies src to dst atomically and reports whether dst existed before.
func copyFile(src, dst string) (bool, error) {
	in, err := os.Open(src)
	if err != nil {
		return false, errors.Errorf("opening source: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return false, errors.Errorf("reading source info: %w", err)
	}
	if !info.Mode().IsRegular() {
		return false, errors.Errorf("source %s is not a regular file", src)
	}

	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return false, errors.Errorf("creating parent directories: %w", err)
	}

	_, statErr := os.Stat(dst)
	replaced := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return false, errors.Errorf("checking destination: %w", statErr)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(dst)+".*.tmp")
	if err != nil {
		return false, errors.Errorf("creating temp file: %w", err)
	}
	tempPath := tmp.Name()

	if _, err := io.Copy(tmp, in); err != nil {
		tmp.Close()
		os.Remove(tempPath) // Clean up temp file
		return false, errors.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		tmp.Close()
		os.Remove(tempPath)
		return false, errors.Errorf("setting file mode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tempPath)
		return false, errors.Errorf("closing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, dst); err != nil {
		os.Remove(tempPath)
		return false, errors.Errorf("renaming temp file: %w", err)
	}

	return replaced, nil
}
