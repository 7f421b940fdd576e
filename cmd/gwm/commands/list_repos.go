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
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/gwm/cmd/gwm/opts"
	"github.com/walteh/gwm/pkg/log"
	"github.com/walteh/gwm/pkg/repository"
	"gitlab.com/tozd/go/errors"
)

// NewListReposCmd creates the list_repos command
func NewListReposCmd(rootOpts *opts.RootOpts) *cobra.Command {
	repoOpts := &opts.RepoOpts{}

	cmd := &cobra.Command{
		Use:     "list_repos [--ignore-repos NAME...]",
		Aliases: []string{"list-repos"},
		Short:   "List repositories",
		Long:    "List repositories of the specified workspace.",
		Args:    cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			repoOpts.IgnoreRepos = append(repoOpts.IgnoreRepos, args...)
			console := log.FromContext(ctx)

			registry, err := repoOpts.Registry()
			if err != nil {
				return err
			}

			console.Println(fmt.Sprintf("Repositories in %s:", repoOpts.TargetRoot))
			console.LogNewline()

			repos, err := repository.NewScanner(registry, repoOpts.IgnoreRepos).Scan(ctx, repoOpts.TargetRoot)
			if err != nil {
				return errors.Errorf("finding repositories: %w", err)
			}

			rows := make([][]string, 0, len(repos))
			for _, repo := range repos {
				languages := append([]string(nil), repo.Languages...)
				sort.Strings(languages)
				rows = append(rows, []string{
					repo.Name(),
					strings.Join(languages, ", "),
					strings.Join(repo.ExistingWorkflows, ", "),
				})
			}

			return console.Table([]string{"NAME", "LANGUAGES", "EXISTING WORKFLOWS"}, rows)
		},
	}

	addRepoFlags(cmd, repoOpts)

	return cmd
}
