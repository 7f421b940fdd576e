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
	"context"
	"io"

	"github.com/fatih/color"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/gwm/cmd/gwm/opts"
	"github.com/walteh/gwm/pkg/log"
)

// NewRootCmd creates the gwm command tree
func NewRootCmd() *cobra.Command {
	rootOpts := &opts.RootOpts{}

	cmd := &cobra.Command{
		Use:   "gwm",
		Short: "Distribute GitHub workflows to a whole workspace of repositories",
		Long: `gwm copies shared workflow files from a manifest into every repository of a
workspace. Which workflows a repository gets depends on the languages found in it.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), cmd.ErrOrStderr(), rootOpts.Debug)
			console := log.New(ctx, cmd.OutOrStdout())
			cmd.SetContext(log.NewContext(ctx, console))
			return nil
		},
	}

	addRootFlags(cmd, rootOpts)

	cmd.AddCommand(
		NewListWorkflowsCmd(rootOpts),
		NewListReposCmd(rootOpts),
		NewPutCmd(rootOpts),
	)

	return cmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
	cmd.PersistentFlags().BoolVarP(&o.Verbose, "verbose", "v", false, "verbose output (only relevant for some commands)")
}

// addManifestFlags adds the flags of commands that load the workflow manifest
func addManifestFlags(cmd *cobra.Command, o *opts.ManifestOpts) {
	cmd.Flags().StringVarP(&o.Workflows, "workflows", "w", "", "path to the workflow manifest file")
	_ = cmd.MarkFlagRequired("workflows")
}

// addRepoFlags adds the flags of commands that scan the workspace
func addRepoFlags(cmd *cobra.Command, o *opts.RepoOpts) {
	cmd.Flags().StringVarP(&o.TargetRoot, "target-root", "t", ".", "base directory that contains all the repositories")
	cmd.Flags().StringSliceVar(&o.IgnoreRepos, "ignore-repos", nil, "ignore the specified repositories (names or glob patterns), more names may follow as arguments")
	cmd.Flags().StringVar(&o.Languages, "languages", "", "YAML file replacing the built-in language table")
}

// setupLogging returns ctx carrying a zerolog logger that writes to w
func setupLogging(ctx context.Context, w io.Writer, debug bool) context.Context {
	level := zerolog.WarnLevel
	if debug {
		level = zerolog.DebugLevel
	}

	if color.NoColor {
		pterm.DisableColor()
	}

	out := zerolog.NewConsoleWriter(func(cw *zerolog.ConsoleWriter) {
		cw.Out = w
		cw.NoColor = color.NoColor
	})
	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
