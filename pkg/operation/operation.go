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
	"fmt"
	"path/filepath"

	"github.com/walteh/gwm/pkg/manifest"
	"github.com/walteh/gwm/pkg/repository"
)

// 📦 CopyOperation copies one manifest file into one repository
type CopyOperation struct {
	Source      string
	Destination string
}

// 📝 String returns a string representation of the operation
func (op CopyOperation) String() string {
	return fmt.Sprintf("%s -> %s", op.Source, op.Destination)
}

// 🎯 Determine computes the copy operations that bring every workflow to the
// repositories it applies to.
//
// A repository receives the workflows of each detected language plus the wildcard
// workflows. Each file keeps its relative path below the repository's workflow
// directory. Operations are emitted per repository, then per index tag, then per
// workflow and file, all in input order. Two workflows may target the same destination;
// both operations are kept and the later one wins when applied.
func Determine(repos []*repository.Repository, index *manifest.Index) []CopyOperation {
	ops := []CopyOperation{}
	if index == nil {
		return ops
	}

	for _, repo := range repos {
		for _, tag := range index.Tags() {
			if tag != manifest.Wildcard && !repo.HasLanguage(tag) {
				continue
			}
			for _, wf := range index.Workflows(tag) {
				for _, file := range wf.Files {
					ops = append(ops, CopyOperation{
						Source:      wf.SourcePath(file),
						Destination: filepath.Join(repo.Path, repository.WorkflowDir, file),
					})
				}
			}
		}
	}

	return ops
}
