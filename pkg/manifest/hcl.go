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

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL manifests
//
//	workflow "python_flake8" {
//	  file     = ["flake8.yml", "flake8-problem-matcher.json"]
//	  language = "python"
//	}
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(strings.ToLower(filename), ".hcl")
}

type hclManifest struct {
	Workflows []hclWorkflow `hcl:"workflow,block"`
}

type hclWorkflow struct {
	Name     string    `hcl:"name,label"`
	File     cty.Value `hcl:"file,optional"`
	Language cty.Value `hcl:"language,optional"`
}

// 📝 Parse parses an HCL manifest. Every workflow block is one workflow.
func (p *HCLParser) Parse(ctx context.Context, data []byte) ([]Entry, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "manifest.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	var doc hclManifest
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &doc)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	entries := make([]Entry, 0, len(doc.Workflows))
	for _, wf := range doc.Workflows {
		entry := Entry{Name: wf.Name}

		files, err := ctyList(wf.File)
		if err != nil {
			entry.Err = errors.Errorf("%s: %w", keyFile, err)
		}
		entry.Files = files

		languages, err := ctyList(wf.Language)
		if err != nil && entry.Err == nil {
			entry.Err = errors.Errorf("%s: %w", keyLanguage, err)
		}
		entry.Languages = languages

		entries = append(entries, entry)
	}

	return entries, nil
}

// ctyList converts a string or a list/tuple/set of strings into a Go slice. A null value
// means the attribute was not set and yields nil.
func ctyList(v cty.Value) ([]string, error) {
	if v.IsNull() {
		return nil, nil
	}
	if !v.IsWhollyKnown() {
		return nil, errors.New("value is not known")
	}

	if v.Type() == cty.String {
		return []string{v.AsString()}, nil
	}

	list, err := convert.Convert(v, cty.List(cty.String))
	if err != nil {
		return nil, errors.Errorf("expected a string or a list of strings, got %s", v.Type().FriendlyName())
	}

	out := make([]string, 0, list.LengthInt())
	for it := list.ElementIterator(); it.Next(); {
		_, item := it.Element()
		if item.IsNull() {
			return nil, errors.New("list contains null")
		}
		out = append(out, item.AsString())
	}
	return out, nil
}
