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
	"strings"

	"github.com/spf13/cobra"
	"github.com/walteh/gwm/cmd/gwm/opts"
	"github.com/walteh/gwm/pkg/log"
	"github.com/walteh/gwm/pkg/manifest"
	"gitlab.com/tozd/go/errors"
)

// NewListWorkflowsCmd creates the list_workflows command
func NewListWorkflowsCmd(rootOpts *opts.RootOpts) *cobra.Command {
	manifestOpts := &opts.ManifestOpts{}

	cmd := &cobra.Command{
		Use:     "list_workflows",
		Aliases: []string{"list-workflows"},
		Short:   "List workflows",
		Long:    "List workflows from the specified manifest",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := log.FromContext(ctx)

			m, err := manifest.Load(ctx, manifestOpts.Workflows)
			if err != nil {
				return errors.Errorf("loading workflows: %w", err)
			}
			reportRejected(console, m)

			rows := make([][]string, 0, len(m.Workflows))
			for _, wf := range m.Workflows {
				rows = append(rows, []string{
					wf.Name,
					strings.Join(wf.Languages, ","),
					strings.Join(wf.Files, ", "),
				})
			}

			console.Println("Workflows:")
			return console.Table([]string{"NAME", "LANGUAGES", "FILES"}, rows)
		},
	}

	addManifestFlags(cmd, manifestOpts)

	return cmd
}

// reportRejected warns about every manifest entry that was left out of the load
func reportRejected(console *log.Logger, m *manifest.Manifest) {
	for _, r := range m.Rejected {
		console.Warningf("Ignore invalid workflow %s. Reason: %v", r.Name, r.Err)
	}
}
