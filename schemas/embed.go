// Package schemas holds the JSON Schema files for the CLI's input and output documents.
package schemas

import "embed"

// Schema file names
const (
	JobCorpus     = "job_corpus.schema.json"
	MatchResponse = "match_response.schema.json"
	MatchQuery    = "match_query.schema.json"
)

// FS contains every *.schema.json file in this directory.
//
//go:embed *.schema.json
var FS embed.FS
