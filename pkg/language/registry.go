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
	"bytes"
	"io"
	"os"
	"sort"
	"strings"

	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// 🗺️ Registry maps a language tag to the file extensions that identify it.
//
// A Registry is configuration data. Detection only reads it, so new languages are added
// by extending the table, never the scan logic.
type Registry map[string][]string

// DefaultRegistry returns a fresh copy of the built-in language table.
func DefaultRegistry() Registry {
	return Registry{
		"python":   {".py"},
		"c++":      {".cpp", ".hpp", ".hxx"},
		"markdown": {".md", ".markdown"},
		"rst":      {".rst"},
		"lua":      {".lua"},
	}
}

// Tags returns the registered tags in sorted order.
func (r Registry) Tags() []string {
	tags := make([]string, 0, len(r))
	for tag := range r {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Match returns the sorted tags whose extension list contains ext.
func (r Registry) Match(ext string) []string {
	var tags []string
	for _, tag := range r.Tags() {
		if r.has(tag, ext) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func (r Registry) has(tag, ext string) bool {
	for _, e := range r[tag] {
		if e == ext {
			return true
		}
	}
	return false
}

// Extension returns the final dot-suffix of name. A leading dot does not start an
// extension, so ".bashrc" has none and "archive.tar.gz" has ".gz".
func Extension(name string) string {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return ""
	}
	return name[i:]
}

// extensions decodes either a single extension or a list of them.
type extensions []string

func (e *extensions) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*e = extensions{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*e = list
		return nil
	default:
		return errors.Errorf("line %d: expected an extension or a list of extensions", node.Line)
	}
}

// 🎯 LoadRegistry reads a registry from a YAML file of the form
//
//	python: [.py, .pyi]
//	go: .go
//
// Extensions without a leading dot get one.
func LoadRegistry(path string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading language registry: %w", err)
	}

	var raw map[string]extensions
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Errorf("parsing language registry %s: %w", path, err)
	}

	registry := make(Registry, len(raw))
	for tag, exts := range raw {
		normalized := make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.TrimSpace(ext)
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			normalized = append(normalized, ext)
		}
		registry[tag] = normalized
	}

	return registry, nil
}
