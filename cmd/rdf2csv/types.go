package main

import "github.com/jward/rdf2csv"

// CLIResult is the top-level JSON envelope for all commands.
type CLIResult struct {
	Command string `json:"command"`
	Results any    `json:"results"`
	Error   string `json:"error,omitempty"`
}

// CLIConversion is a JSON-friendly conversion summary.
type CLIConversion struct {
	Message       string        `json:"message"`
	Output        string        `json:"output"`
	Columns       []string      `json:"columns"`
	Rows          int           `json:"rows"`
	Stats         rdf2csv.Stats `json:"stats"`
	KnownSubjects int           `json:"known_subjects"`
	DurationMS    int64         `json:"duration_ms"`
}

func toCLIConversion(r *rdf2csv.Result) CLIConversion {
	return CLIConversion{
		Message:       r.Message(),
		Output:        r.OutputPath,
		Columns:       r.Columns,
		Rows:          r.Rows,
		Stats:         r.Stats,
		KnownSubjects: r.Known,
		DurationMS:    r.Duration.Milliseconds(),
	}
}
