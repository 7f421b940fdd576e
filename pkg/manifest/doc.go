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

/*
Package manifest loads the workflow manifest: the declarative file that names every
shared workflow, the files that belong to it, and the languages it applies to.

📦 Architecture:

	+-------------+     +---------+     +-----------+     +----------+
	| manifest    | --> | Parser  | --> | []Entry   | --> | Manifest |
	| .toml/.yaml |     | (by ext)|     | (raw)     |     | + Index  |
	| /.hcl       |     +---------+     +-----------+     +----------+
	+-------------+

🎯 Purpose:
- Parses the manifest in any registered format
- Normalizes scalar-or-list fields into lists
- Drops entries whose files are missing, without failing the load
- Groups workflows by language tag, keeping manifest order

🔄 Flow:
1. Reads the manifest file
2. Picks a parser by file extension
3. Normalizes every entry (language defaults to the wildcard tag)
4. Validates every entry against the manifest directory
5. Builds the per-language index

📝 Example (TOML):

	[python_flake8]
	file = ["flake8.yml", "flake8-problem-matcher.json"]
	language = "python"

	[git_fixup]
	file = "git.yml"

A malformed manifest is fatal. A workflow that references a missing file is not: it is
reported in Manifest.Rejected and left out of both Manifest.Workflows and the index.
*/
package manifest
