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
	"fmt"

	"gitlab.com/tozd/go/errors"
)

const (
	keyFile     = "file"
	keyLanguage = "language"
)

// 🔌 Parser is the interface for manifest parsers
type Parser interface {
	// 📝 Parse turns raw manifest bytes into entries in declaration order
	Parse(ctx context.Context, data []byte) ([]Entry, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📄 Entry is one normalized manifest entry, before validation
type Entry struct {
	Name      string
	Files     []string
	Languages []string // nil when the entry does not declare a language
	Err       error    // set when the entry body could not be normalized
}

func (e Entry) workflow(sourceDir string) (*Workflow, error) {
	if e.Err != nil {
		return nil, e.Err
	}

	languages := e.Languages
	if languages == nil {
		languages = []string{Wildcard}
	}

	files := e.Files
	if files == nil {
		files = []string{}
	}

	return &Workflow{
		Name:      e.Name,
		SourceDir: sourceDir,
		Files:     files,
		Languages: languages,
	}, nil
}

// newEntry normalizes a decoded key/value body shared by the TOML and YAML parsers.
func newEntry(name string, body any) Entry {
	entry := Entry{Name: name}

	if body == nil {
		return entry
	}

	fields, ok := body.(map[string]any)
	if !ok {
		entry.Err = errors.Errorf("expected a table, got %T", body)
		return entry
	}

	if raw, ok := fields[keyFile]; ok {
		files, err := asList(raw)
		if err != nil {
			entry.Err = errors.Errorf("%s: %w", keyFile, err)
			return entry
		}
		entry.Files = files
	}

	if raw, ok := fields[keyLanguage]; ok {
		languages, err := asList(raw)
		if err != nil {
			entry.Err = errors.Errorf("%s: %w", keyLanguage, err)
			return entry
		}
		entry.Languages = languages
	}

	return entry
}

// asList accepts a string or a list of strings and always returns a list.
func asList(raw any) ([]string, error) {
	switch v := raw.(type) {
	case string:
		return []string{v}, nil
	case []string:
		return append([]string{}, v...), nil
	case []any:
		out := make([]string, 0, len(v))
		for i, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, errors.Errorf("item %d: expected a string, got %s", i, describe(item))
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, errors.Errorf("expected a string or a list of strings, got %s", describe(raw))
	}
}

func describe(v any) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T", v)
}

// mergeDuplicates applies last-write-wins to entries sharing a name. The surviving entry
// keeps the position of the first occurrence.
func mergeDuplicates(entries []Entry) []Entry {
	seen := make(map[string]int, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if i, ok := seen[e.Name]; ok {
			out[i] = e
			continue
		}
		seen[e.Name] = len(out)
		out = append(out, e)
	}
	return out
}
