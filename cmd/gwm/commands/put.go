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

package commands

import (
	"github.com/spf13/cobra"
	"github.com/walteh/gwm/cmd/gwm/opts"
	"github.com/walteh/gwm/pkg/log"
	"github.com/walteh/gwm/pkg/manifest"
	"github.com/walteh/gwm/pkg/operation"
	"github.com/walteh/gwm/pkg/repository"
	"gitlab.com/tozd/go/errors"
)

// NewPutCmd creates the put command
func NewPutCmd(rootOpts *opts.RootOpts) *cobra.Command {
	manifestOpts := &opts.ManifestOpts{}
	repoOpts := &opts.RepoOpts{}
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "put [--ignore-repos NAME...]",
		Short: "Copy workflows to the repositories",
		Long: `Put copies the workflow files to every matching repository.
It will:
1. Load the workflow manifest
2. Scan the workspace for repositories and their languages
3. Work out which files go where
4. Copy them, or only print the plan with --dry-run`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoOpts.IgnoreRepos = append(repoOpts.IgnoreRepos, args...)
			console := log.FromContext(ctx)
			console.Header("putting workflows")

			registry, err := repoOpts.Registry()
			if err != nil {
				return err
			}

			m, err := manifest.Load(ctx, manifestOpts.Workflows)
			if err != nil {
				return errors.Errorf("loading workflows: %w", err)
			}
			reportRejected(console, m)

			repos, err := repository.NewScanner(registry, repoOpts.IgnoreRepos).Scan(ctx, repoOpts.TargetRoot)
			if err != nil {
				return errors.Errorf("finding repositories: %w", err)
			}

			ops := operation.Determine(repos, m.Index)
			if len(ops) == 0 {
				console.Infof("no workflows apply to the %d repositories in %s", len(repos), repoOpts.TargetRoot)
				return nil
			}

			if dryRun {
				console.Warning("Dry run, not actually copying files.")
			}

			summary, err := operation.Apply(ctx, ops, operation.Options{
				DryRun:  dryRun,
				Verbose: rootOpts.Verbose,
				Console: console,
			})
			if err != nil {
				console.Errorf("copy failed after %d of %d files: %v", summary.Copied, summary.Planned, err)
				return errors.Errorf("putting workflows: %w", err)
			}

			if dryRun {
				console.Infof("%d files would be copied", summary.Planned)
			} else if rootOpts.Verbose {
				console.Successf("copied %d files (%d new, %d replaced)", summary.Copied, summary.Created, summary.Replaced)
			}

			return nil
		},
	}

	addManifestFlags(cmd, manifestOpts)
	addRepoFlags(cmd, repoOpts)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "do not actually copy files, only print what would be done")

	return cmd
}
