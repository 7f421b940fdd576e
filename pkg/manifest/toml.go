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
	"strings"

	"github.com/BurntSushi/toml"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&TOMLParser{})
}

// 🔧 TOMLParser implements the Parser interface for TOML manifests
type TOMLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *TOMLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".toml")
}

// 📝 Parse parses a TOML manifest. Every top-level table is one workflow.
func (p *TOMLParser) Parse(ctx context.Context, data []byte) ([]Entry, error) {
	var raw map[string]any
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, errors.Errorf("parsing TOML: %w", err)
	}

	// map iteration order is random, the metadata keeps document order. Dotted keys and
	// sub-tables only record their full path, so the workflow is the first path element.
	var entries []Entry
	seen := map[string]bool{}
	for _, key := range md.Keys() {
		if len(key) == 0 || seen[key[0]] {
			continue
		}
		name := key[0]
		seen[name] = true
		entries = append(entries, newEntry(name, raw[name]))
	}

	return entries, nil
}
