package rdf2csv

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/extract"
	"github.com/jward/rdf2csv/internal/logger"
	"github.com/jward/rdf2csv/internal/mapping"
	"github.com/jward/rdf2csv/internal/rdf"
	"github.com/jward/rdf2csv/internal/script"
	"github.com/jward/rdf2csv/internal/store"
	"github.com/jward/rdf2csv/internal/table"
)

// DefaultOutput is the output path used when none is given.
const DefaultOutput = "output.csv"

// Metadata keys recorded in a SQLite store after each successful run.
const (
	MetaGraphPath   = "last_graph_path"
	MetaMappingPath = "last_mapping_path"
	MetaOutputPath  = "last_output_path"
	MetaQuads       = "last_quads"
	MetaFinishedAt  = "last_finished_at"
)

// Converter runs conversions. With the SQLite backend the graph and the
// mapping are loaded into two datasets of one database, which is reset at
// the start of each run; runs on one Converter are serialized.
type Converter struct {
	mu sync.Mutex

	store      *store.Store // nil for the memory backend
	dbPath     string
	memory     bool
	storeOpts  []store.Option
	namespaces []string
	delimiter  string
	scriptRef  string
	scriptsFS  fs.FS
	log        *zap.SugaredLogger
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStorePath selects the SQLite database file. The default is an
// in-process ":memory:" database.
func WithStorePath(path string) Option {
	return func(c *Converter) {
		c.dbPath = path
	}
}

// WithMemoryStore replaces SQLite with slice-backed in-memory stores.
func WithMemoryStore() Option {
	return func(c *Converter) {
		c.memory = true
	}
}

// WithBatchSize sets how many quads are buffered per SQLite transaction.
func WithBatchSize(n int) Option {
	return func(c *Converter) {
		c.storeOpts = append(c.storeOpts, store.WithBatchSize(n))
	}
}

// WithPageSize sets how many quads a SQLite query reads per page.
func WithPageSize(n int) Option {
	return func(c *Converter) {
		c.storeOpts = append(c.storeOpts, store.WithPageSize(n))
	}
}

// WithNamespaces sets the mapping vocabulary namespaces, tried in order.
func WithNamespaces(ns ...string) Option {
	return func(c *Converter) {
		c.namespaces = ns
	}
}

// WithDelimiter sets the output field delimiter. It must be a single
// character.
func WithDelimiter(d string) Option {
	return func(c *Converter) {
		c.delimiter = d
	}
}

// WithScript runs the script named by ref over the table before it is
// written. ref is a file path or "builtin:<name>".
func WithScript(ref string) Option {
	return func(c *Converter) {
		c.scriptRef = ref
	}
}

// WithScriptsFS sets the filesystem built-in script references resolve
// against.
func WithScriptsFS(fsys fs.FS) Option {
	return func(c *Converter) {
		c.scriptsFS = fsys
	}
}

// New creates a Converter. Unless WithMemoryStore is given it opens and
// migrates the SQLite store.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		dbPath:    ":memory:",
		delimiter: ",",
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if _, err := table.ParseDelimiter(c.delimiter); err != nil {
		return nil, err
	}
	if c.memory {
		return c, nil
	}

	s, err := store.NewStore(c.dbPath, c.storeOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "create store")
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, errors.Wrap(err, "migrate")
	}
	c.store = s
	return c, nil
}

// Close releases the Converter's database resources.
func (c *Converter) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// Store returns the SQLite store, or nil for the memory backend.
func (c *Converter) Store() *store.Store {
	return c.store
}

// Result describes a finished conversion.
type Result struct {
	OutputPath string        `json:"output_path"`
	Columns    []string      `json:"columns"`
	Rows       int           `json:"rows"`
	Stats      Stats         `json:"stats"`
	Known      int           `json:"known_subjects"`
	Duration   time.Duration `json:"duration"`
}

// Message returns the success message for the run.
func (r *Result) Message() string {
	return fmt.Sprintf("CSV file %s has been successfully created.", r.OutputPath)
}

// Convert runs the conversion and returns its success message.
func (c *Converter) Convert(ctx context.Context, graphPath, mappingPath, outputPath string) (string, error) {
	res, err := c.Run(ctx, graphPath, mappingPath, outputPath)
	if err != nil {
		return "", err
	}
	return res.Message(), nil
}

// Run converts the graph at graphPath into a table at outputPath, using the
// mapping at mappingPath. Both inputs are checked before anything is
// parsed. Any failure is returned wrapped as "error during conversion"; the
// output file is only replaced when the run succeeds.
func (c *Converter) Run(ctx context.Context, graphPath, mappingPath, outputPath string) (*Result, error) {
	res, err := c.run(ctx, graphPath, mappingPath, outputPath)
	if err != nil {
		return nil, errors.Wrap(err, "error during conversion")
	}
	return res, nil
}

func (c *Converter) run(ctx context.Context, graphPath, mappingPath, outputPath string) (*Result, error) {
	start := time.Now()
	if outputPath == "" {
		outputPath = DefaultOutput
	}
	if err := checkInputs(graphPath, mappingPath); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	data, mappingGraph, err := c.datasets()
	if err != nil {
		return nil, err
	}
	nQuads, err := c.load(ctx, graphPath, rdf.NQuads, data)
	if err != nil {
		return nil, err
	}
	nMapping, err := c.load(ctx, mappingPath, rdf.Turtle, mappingGraph)
	if err != nil {
		return nil, err
	}
	c.log.Infow("loaded inputs", "graph", graphPath, "quads", nQuads, "mapping", mappingPath, "triples", nMapping)

	interp := mapping.New(mappingGraph, mapping.WithNamespaces(c.namespaces...), mapping.WithLogger(c.log))
	sm, err := interp.SubjectTemplate()
	if err != nil {
		return nil, err
	}

	known := 0
	if sm.IsIRI() {
		subjects, err := interp.KnownSubjects(data, sm)
		if err != nil {
			return nil, err
		}
		known = len(subjects)
		c.log.Debugw("known subjects", "count", known, "classes", sm.Classes)
	}

	extracted, err := extract.New(data, interp, sm, extract.WithLogger(c.log)).Extract(ctx)
	if err != nil {
		return nil, err
	}
	tbl := table.Assemble(extracted)

	if c.scriptRef != "" {
		if err := c.runScript(ctx, tbl); err != nil {
			return nil, err
		}
	}

	if err := table.WriteFile(outputPath, tbl, c.delimiter); err != nil {
		return nil, err
	}
	c.recordRun(graphPath, mappingPath, outputPath, nQuads)

	res := &Result{
		OutputPath: outputPath,
		Columns:    tbl.Columns,
		Rows:       tbl.Len(),
		Stats:      extracted.Stats,
		Known:      known,
		Duration:   time.Since(start),
	}
	c.log.Infow("wrote table",
		"output", outputPath,
		"rows", res.Rows,
		"columns", len(res.Columns),
		"warnings", res.Stats.Warnings,
		"duration", res.Duration)
	return res, nil
}

// Inspect interprets the mapping at mappingPath without reading any graph.
func (c *Converter) Inspect(ctx context.Context, mappingPath string) (*Description, error) {
	if err := checkFile("mapping", mappingPath); err != nil {
		return nil, err
	}
	mappingGraph := store.NewMemStore()
	if _, err := c.load(ctx, mappingPath, rdf.Turtle, mappingGraph); err != nil {
		return nil, err
	}
	return mapping.New(mappingGraph, mapping.WithNamespaces(c.namespaces...), mapping.WithLogger(c.log)).Describe()
}

// checkInputs fails with ErrMissingFile when either input does not exist.
func checkInputs(graphPath, mappingPath string) error {
	if err := checkFile("graph", graphPath); err != nil {
		return err
	}
	return checkFile("mapping", mappingPath)
}

func checkFile(kind, path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.MissingFilef(kind, path)
	}
	return nil
}

// datasets returns empty data and mapping stores for a run.
func (c *Converter) datasets() (data, mappingGraph store.LoadableStore, err error) {
	if c.store == nil {
		return store.NewMemStore(), store.NewMemStore(), nil
	}
	for _, name := range []string{store.DatasetData, store.DatasetMapping} {
		if err := c.store.DeleteDataset(name); err != nil {
			return nil, nil, err
		}
	}
	return c.store.Dataset(store.DatasetData), c.store.Dataset(store.DatasetMapping), nil
}

func (c *Converter) load(ctx context.Context, path string, f rdf.Format, dst store.LoadableStore) (int, error) {
	n, err := rdf.DecodeFile(ctx, path, f, dst)
	if err != nil {
		return n, err
	}
	if err := dst.Flush(); err != nil {
		return n, errors.Wrapf(err, "store %s", path)
	}
	return n, nil
}

func (c *Converter) runScript(ctx context.Context, tbl *table.Table) error {
	opts := []script.RuntimeOption{script.WithLogger(c.log)}
	if c.scriptsFS != nil {
		opts = append(opts, script.WithRuntimeFS(c.scriptsFS))
	}
	ref := c.scriptRef
	if !strings.HasPrefix(ref, script.BuiltinPrefix) {
		abs, err := filepath.Abs(ref)
		if err != nil {
			return errors.Wrapf(err, "resolve script path %s", ref)
		}
		opts = append(opts, script.WithScriptsDir(filepath.Dir(abs)))
		ref = abs
	}
	return script.NewRuntime(opts...).Run(ctx, ref, tbl)
}

// recordRun stores provenance for the last successful run. Failures only
// log; the output has already been written.
func (c *Converter) recordRun(graphPath, mappingPath, outputPath string, quads int) {
	if c.store == nil {
		return
	}
	meta := map[string]string{
		MetaGraphPath:   graphPath,
		MetaMappingPath: mappingPath,
		MetaOutputPath:  outputPath,
		MetaQuads:       strconv.Itoa(quads),
		MetaFinishedAt:  time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if err := c.store.SetMetadata(k, v); err != nil {
			c.log.Warnw("failed to record run metadata", "key", k, "error", err)
		}
	}
}
