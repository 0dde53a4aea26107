// Package schemas holds the JSON Schemas for every input document the matcher reads.
package schemas

import "embed"

// BaseURI prefixes every schema $id; relative $refs resolve against it
const BaseURI = "https://talent-matcher.dev/schemas/"

// FS contains the *.schema.json files
//
//go:embed *.schema.json
var FS embed.FS
