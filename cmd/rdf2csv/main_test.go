package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	personGraph   = filepath.Join("..", "..", "testdata", "person", "data.nq")
	personMapping = filepath.Join("..", "..", "testdata", "person", "mapping.ttl")
)

// run executes the command tree with args and returns stdout, stderr and
// the command error.
func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	a := &app{stdout: &stdout, stderr: &stderr}
	cmd := a.rootCmd()
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// =============================================================================
// convert
// =============================================================================

func TestConvert_Text(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "people.csv")

	stdout, _, err := run(t, "convert", personGraph, personMapping, "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "CSV file "+out+" has been successfully created.")
	assert.Contains(t, stdout, "2 rows, 8 columns from 8 quads")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	want, err := os.ReadFile(filepath.Join("..", "..", "testdata", "person", "expected.csv"))
	require.NoError(t, err)
	assert.Equal(t, string(want), string(data))
}

func TestConvert_JSON(t *testing.T) {
	t.Parallel()
	out := filepath.Join(t.TempDir(), "people.csv")

	stdout, _, err := run(t, "--format", "json", "convert", personGraph, personMapping,
		"-o", out, "--store", "memory", "--script", "builtin:drop_datatype_columns")
	require.NoError(t, err)

	var result struct {
		Command string        `json:"command"`
		Results CLIConversion `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, "convert", result.Command)
	assert.Equal(t, out, result.Results.Output)
	assert.Equal(t, 2, result.Results.Rows)
	assert.NotContains(t, result.Results.Columns, "age_datatype")
	assert.Equal(t, 2, result.Results.KnownSubjects)
}

func TestConvert_SQLiteFileAndDelimiter(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "people.csv")
	db := filepath.Join(dir, "graph.db")

	_, _, err := run(t, "convert", personGraph, personMapping, "-o", out, "--db", db, "--delimiter", ";")
	require.NoError(t, err)

	_, err = os.Stat(db)
	assert.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id;type;name;")
}

func TestConvert_ExtensionCheck(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	graph := filepath.Join(dir, "data.txt")
	data, err := os.ReadFile(personGraph)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(graph, data, 0o644))
	out := filepath.Join(dir, "out.csv")

	_, stderr, err := run(t, "convert", graph, personMapping, "-o", out)
	require.Error(t, err)
	assert.Contains(t, stderr, ".nq extension")

	_, _, err = run(t, "convert", graph, personMapping, "-o", out, "--skip-ext-check")
	require.NoError(t, err)
}

func TestConvert_MissingFileJSONError(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "--format", "json", "convert", "missing.nq", personMapping,
		"-o", filepath.Join(t.TempDir(), "out.csv"))
	require.Error(t, err)

	var result CLIResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Contains(t, result.Error, "error during conversion")
	assert.Contains(t, result.Error, "missing.nq")
}

func TestConvert_ConfigFile(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	out := filepath.Join(dir, "configured.csv")
	cfg := filepath.Join(dir, "rdf2csv.toml")
	require.NoError(t, os.WriteFile(cfg, []byte(`
[output]
path = "`+filepath.ToSlash(out)+`"
delimiter = "|"

[store]
backend = "memory"
`), 0o644))

	_, _, err := run(t, "--config", cfg, "convert", personGraph, personMapping)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "id|type|name|")
}

func TestConvert_WrongArgCount(t *testing.T) {
	t.Parallel()
	_, _, err := run(t, "convert", personGraph)
	assert.Error(t, err)
}

// =============================================================================
// Other commands
// =============================================================================

func TestInspect_Text(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "inspect", personMapping)
	require.NoError(t, err)
	assert.Contains(t, stdout, "http://ex.com/person/{id}")
	assert.Contains(t, stdout, "age")
	assert.Contains(t, stdout, "{street} {city}")
}

func TestInspect_JSON(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "--format", "json", "inspect", personMapping)
	require.NoError(t, err)

	var result struct {
		Results struct {
			SubjectColumns []string          `json:"subject_columns"`
			DatatypeMap    map[string]string `json:"datatype_map"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	assert.Equal(t, []string{"id"}, result.Results.SubjectColumns)
	assert.Equal(t, map[string]string{"age": "integer"}, result.Results.DatatypeMap)
}

func TestScripts_List(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "scripts")
	require.NoError(t, err)
	assert.Contains(t, stdout, "builtin:drop_empty_columns")
	assert.Contains(t, stdout, "builtin:drop_datatype_columns")
}

func TestVersion(t *testing.T) {
	t.Parallel()
	stdout, _, err := run(t, "version")
	require.NoError(t, err)
	assert.Equal(t, version+"\n", stdout)
}

func TestInvalidFormat(t *testing.T) {
	t.Parallel()
	_, _, err := run(t, "--format", "yaml", "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestCheckExtensions(t *testing.T) {
	t.Parallel()
	assert.NoError(t, checkExtensions("a.nq", "b.ttl"))
	assert.NoError(t, checkExtensions("A.NQ", "B.TTL"))
	assert.Error(t, checkExtensions("a.ttl", "b.ttl"))
	assert.Error(t, checkExtensions("a.nq", "b.nq"))
}
