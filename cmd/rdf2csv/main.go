package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jward/rdf2csv"
	"github.com/jward/rdf2csv/internal/config"
	"github.com/jward/rdf2csv/internal/logger"
	"github.com/jward/rdf2csv/internal/script"
	"github.com/jward/rdf2csv/scripts"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	if err := a.rootCmd().Execute(); err != nil {
		if !a.errorHandled {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		}
		os.Exit(1)
	}
}

// app holds flag values and output streams for one command tree.
type app struct {
	stdout, stderr io.Writer

	flagConfig  string
	flagFormat  string
	flagLogJSON bool
	flagVerbose bool

	flagOutput       string
	flagDelimiter    string
	flagStore        string
	flagDB           string
	flagScript       string
	flagNamespaces   []string
	flagSkipExtCheck bool

	// errorHandled is set by outputError so main() doesn't double-print.
	errorHandled bool
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "rdf2csv",
		Short:         "Rebuild a CSV table from an RML-materialized RDF graph",
		Long:          "rdf2csv reads an N-Quads graph and the Turtle RML mapping that produced it, and reverses the mapping to recover the source table as CSV.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return validateFormat(a.flagFormat)
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&a.flagConfig, "config", "", "config file (default: ./"+config.FileName+" when present)")
	pf.StringVar(&a.flagFormat, "format", "text", "output format: json|text")
	pf.BoolVar(&a.flagLogJSON, "log-json", false, "write logs as JSON")
	pf.BoolVarP(&a.flagVerbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(a.convertCmd(), a.inspectCmd(), a.scriptsCmd(), a.versionCmd())
	return root
}

func (a *app) convertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert <graph.nq> <mapping.ttl>",
		Short: "Convert a materialized graph back into a CSV table",
		Args:  cobra.ExactArgs(2),
		RunE:  a.runConvert,
	}
	f := cmd.Flags()
	f.StringVarP(&a.flagOutput, "output", "o", "", "output CSV path (default: "+rdf2csv.DefaultOutput+")")
	f.StringVar(&a.flagDelimiter, "delimiter", "", "output field delimiter (default: ,)")
	f.StringVar(&a.flagStore, "store", "", "graph store backend: sqlite|memory")
	f.StringVar(&a.flagDB, "db", "", "SQLite database path (default: in-memory)")
	f.StringVar(&a.flagScript, "script", "", "Risor post-processing script path or builtin:<name>")
	f.StringSliceVar(&a.flagNamespaces, "namespaces", nil, "mapping vocabulary namespaces: rml, r2rml or IRIs")
	f.BoolVar(&a.flagSkipExtCheck, "skip-ext-check", false, "accept inputs without .nq/.ttl extensions")
	return cmd
}

func (a *app) inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <mapping.ttl>",
		Short: "Show what the converter reads from a mapping",
		Args:  cobra.ExactArgs(1),
		RunE:  a.runInspect,
	}
}

func (a *app) scriptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scripts",
		Short: "List the built-in post-processing scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := script.NewRuntime(script.WithRuntimeFS(scripts.FS)).Builtins()
			if err != nil {
				return a.outputError("scripts", err)
			}
			refs := make([]string, len(names))
			for i, n := range names {
				refs[i] = script.BuiltinPrefix + n
			}
			return a.outputResult(CLIResult{Command: "scripts", Results: refs})
		},
	}
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.outputResult(CLIResult{Command: "version", Results: version})
		},
	}
}

func (a *app) runConvert(cmd *cobra.Command, args []string) error {
	graphPath, mappingPath := args[0], args[1]
	if !a.flagSkipExtCheck {
		if err := checkExtensions(graphPath, mappingPath); err != nil {
			return a.outputError("convert", err)
		}
	}

	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return a.outputError("convert", err)
	}
	log, err := a.newLogger(cfg)
	if err != nil {
		return a.outputError("convert", err)
	}
	defer log.Sync()

	c, err := rdf2csv.New(converterOptions(cfg, log)...)
	if err != nil {
		return a.outputError("convert", err)
	}
	defer c.Close()

	res, err := c.Run(context.Background(), graphPath, mappingPath, cfg.Output.Path)
	if err != nil {
		return a.outputError("convert", err)
	}
	return a.outputResult(CLIResult{Command: "convert", Results: toCLIConversion(res)})
}

func (a *app) runInspect(cmd *cobra.Command, args []string) error {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return a.outputError("inspect", err)
	}
	log, err := a.newLogger(cfg)
	if err != nil {
		return a.outputError("inspect", err)
	}
	defer log.Sync()

	c, err := rdf2csv.New(rdf2csv.WithMemoryStore(), rdf2csv.WithLogger(log), rdf2csv.WithNamespaces(cfg.NamespaceIRIs()...))
	if err != nil {
		return a.outputError("inspect", err)
	}
	defer c.Close()

	d, err := c.Inspect(context.Background(), args[0])
	if err != nil {
		return a.outputError("inspect", err)
	}
	return a.outputResult(CLIResult{Command: "inspect", Results: *d})
}

// loadConfig reads the config file and environment, then applies the flags
// the user set explicitly.
func (a *app) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(a.flagConfig)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("output") {
		cfg.Output.Path = a.flagOutput
	}
	if flags.Changed("delimiter") {
		cfg.Output.Delimiter = a.flagDelimiter
	}
	if flags.Changed("store") {
		cfg.Store.Backend = a.flagStore
	}
	if flags.Changed("db") {
		cfg.Store.Backend = config.BackendSQLite
		cfg.Store.Path = a.flagDB
	}
	if flags.Changed("script") {
		cfg.Script.Path = a.flagScript
	}
	if flags.Changed("namespaces") {
		cfg.Mapping.Namespaces = a.flagNamespaces
	}
	if flags.Changed("log-json") {
		cfg.Log.JSON = a.flagLogJSON
	}
	if a.flagVerbose {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config) (*zap.SugaredLogger, error) {
	return logger.New(logger.Options{JSON: cfg.Log.JSON, Level: cfg.Log.Level, Output: a.stderr})
}

// converterOptions maps configuration onto Converter options.
func converterOptions(cfg *config.Config, log *zap.SugaredLogger) []rdf2csv.Option {
	opts := []rdf2csv.Option{
		rdf2csv.WithLogger(log),
		rdf2csv.WithDelimiter(cfg.Output.Delimiter),
		rdf2csv.WithNamespaces(cfg.NamespaceIRIs()...),
		rdf2csv.WithScriptsFS(scripts.FS),
		rdf2csv.WithBatchSize(cfg.Store.BatchSize),
		rdf2csv.WithPageSize(cfg.Store.PageSize),
	}
	if cfg.Store.Backend == config.BackendMemory {
		opts = append(opts, rdf2csv.WithMemoryStore())
	} else {
		opts = append(opts, rdf2csv.WithStorePath(cfg.Store.Path))
	}
	if cfg.Script.Path != "" {
		opts = append(opts, rdf2csv.WithScript(cfg.Script.Path))
	}
	return opts
}

// checkExtensions enforces the conventional input extensions.
func checkExtensions(graphPath, mappingPath string) error {
	if ext := strings.ToLower(filepath.Ext(graphPath)); ext != ".nq" {
		return fmt.Errorf("graph file %q must have a .nq extension (use --skip-ext-check to override)", graphPath)
	}
	if ext := strings.ToLower(filepath.Ext(mappingPath)); ext != ".ttl" {
		return fmt.Errorf("mapping file %q must have a .ttl extension (use --skip-ext-check to override)", mappingPath)
	}
	return nil
}
