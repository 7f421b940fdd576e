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

package opts

import (
	"github.com/walteh/gwm/pkg/language"
	"gitlab.com/tozd/go/errors"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	Debug   bool
	Verbose bool
}

// ManifestOpts are the options of commands that load the workflow manifest
type ManifestOpts struct {
	Workflows string
}

// RepoOpts are the options of commands that scan the workspace
type RepoOpts struct {
	TargetRoot  string
	IgnoreRepos []string
	Languages   string
}

// Registry returns the language registry selected by the options: the file given with
// --languages, or the built-in table.
func (o *RepoOpts) Registry() (language.Registry, error) {
	if o.Languages == "" {
		return language.DefaultRegistry(), nil
	}
	registry, err := language.LoadRegistry(o.Languages)
	if err != nil {
		return nil, errors.Errorf("loading languages: %w", err)
	}
	return registry, nil
}
