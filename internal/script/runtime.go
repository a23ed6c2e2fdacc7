// Package script runs Risor post-processing scripts over an assembled
// table. Scripts see the table through host functions and may edit cells,
// rename or drop columns and delete rows before the table is written.
package script

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
	"go.uber.org/zap"

	"github.com/jward/rdf2csv/internal/errors"
	"github.com/jward/rdf2csv/internal/logger"
	"github.com/jward/rdf2csv/internal/table"
)

// BuiltinPrefix marks a script reference resolved against the built-in
// script filesystem, e.g. "builtin:drop_empty_columns".
const BuiltinPrefix = "builtin:"

const extension = ".risor"

// Runtime embeds a Risor VM and exposes table host functions to scripts.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	log        *zap.SugaredLogger
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS sets the filesystem that built-in script references and
// their imports are loaded from.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithScriptsDir sets the base directory for relative script paths and
// their imports.
func WithScriptsDir(dir string) RuntimeOption {
	return func(r *Runtime) {
		r.scriptsDir = dir
	}
}

// WithLogger sets the logger behind the scripts' log global.
func WithLogger(l *zap.SugaredLogger) RuntimeOption {
	return func(r *Runtime) {
		if l != nil {
			r.log = l
		}
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{log: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run loads the script named by ref and runs it against t. ref is either a
// file path or BuiltinPrefix followed by the name of a built-in script.
func (r *Runtime) Run(ctx context.Context, ref string, t *table.Table) error {
	src, err := r.LoadScript(ref)
	if err != nil {
		return err
	}
	return r.eval(ctx, src, ref, t, nil)
}

// RunSource runs Risor source against t with any extra globals.
func (r *Runtime) RunSource(ctx context.Context, source string, t *table.Table, extraGlobals map[string]any) error {
	return r.eval(ctx, source, "<inline>", t, extraGlobals)
}

func (r *Runtime) eval(ctx context.Context, source, label string, t *table.Table, extraGlobals map[string]any) error {
	globals := r.buildGlobals(t, extraGlobals)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	r.log.Debugw("running script", "script", label)
	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return errors.Wrapf(err, "script %s", label)
	}
	return nil
}

// buildImporter resolves import statements against the built-in filesystem
// or the scripts directory. It returns nil when neither is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{extension},
		})
	}
	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{extension},
		})
	}
	return nil
}

// LoadScript returns the source of the script named by ref.
func (r *Runtime) LoadScript(ref string) (string, error) {
	if name, ok := strings.CutPrefix(ref, BuiltinPrefix); ok {
		if r.fsys == nil {
			return "", errors.Newf("no built-in scripts available for %s", ref)
		}
		fsPath := strings.TrimPrefix(filepath.ToSlash(name), "/")
		if !strings.HasSuffix(fsPath, extension) {
			fsPath += extension
		}
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", errors.Wrapf(err, "loading built-in script %s", name)
		}
		return string(data), nil
	}

	fullPath := ref
	if !filepath.IsAbs(ref) && r.scriptsDir != "" {
		fullPath = filepath.Join(r.scriptsDir, ref)
	}
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.MissingFilef("script", fullPath)
		}
		return "", errors.Wrapf(err, "loading script %s", fullPath)
	}
	return string(data), nil
}

// Builtins lists the names of the built-in scripts.
func (r *Runtime) Builtins() ([]string, error) {
	if r.fsys == nil {
		return nil, nil
	}
	matches, err := fs.Glob(r.fsys, "*"+extension)
	if err != nil {
		return nil, errors.Wrap(err, "listing built-in scripts")
	}
	for i, m := range matches {
		matches[i] = strings.TrimSuffix(m, extension)
	}
	return matches, nil
}

// buildGlobals constructs the globals exposed to a script run over t.
func (r *Runtime) buildGlobals(t *table.Table, extra map[string]any) map[string]any {
	globals := map[string]any{
		"log": mustProxy(&logObject{log: r.log}),
	}
	if t != nil {
		globals["columns"] = makeColumnsFn(t)
		globals["row_count"] = makeRowCountFn(t)
		globals["row_key"] = makeRowKeyFn(t)
		globals["get"] = makeGetFn(t)
		globals["set"] = makeSetFn(t)
		globals["rename_column"] = makeRenameColumnFn(t)
		globals["drop_column"] = makeDropColumnFn(t)
		globals["delete_row"] = makeDeleteRowFn(t)
	}
	for k, v := range extra {
		globals[k] = v
	}
	return globals
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic("script: proxy error: " + err.Error())
	}
	return p
}

// logObject provides log.Info/Warn/Error methods for Risor scripts.
type logObject struct {
	log *zap.SugaredLogger
}

func (l *logObject) Info(msg string)  { l.log.Infow(msg, "source", "script") }
func (l *logObject) Warn(msg string)  { l.log.Warnw(msg, "source", "script") }
func (l *logObject) Error(msg string) { l.log.Errorw(msg, "source", "script") }
