// Package vaporfile loads tasks and recipes from vaporfiles, the HCL files
// read by package config and evaluated by package eval.
package vaporfile

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/hashicorp/hcl2/hcl"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
	"github.com/ohtomi/aws-cloudformation-generator/config"
	"github.com/ohtomi/aws-cloudformation-generator/eval"
	"github.com/ohtomi/aws-cloudformation-generator/plugin"
)

// DiagnosticsError is returned when a vaporfile has errors. The
// diagnostics refer to files known to the loader's parser, so they can be
// printed with source snippets.
type DiagnosticsError struct {
	Diags hcl.Diagnostics
}

func (e *DiagnosticsError) Error() string {
	return e.Diags.Error()
}

// Loader is a plugin.Loader for vaporfiles.
type Loader struct {
	Parser *config.Parser

	// SearchDirs are tried, in order, for names that are not found relative
	// to the working directory.
	SearchDirs []string

	// Constants are exposed to every loaded file as the Const object.
	Constants hcl.Attributes

	Logger *slog.Logger

	warnings hcl.Diagnostics
}

var _ plugin.Loader = (*Loader)(nil)

// New returns a loader with its own parser.
func New(constants hcl.Attributes, searchDirs ...string) *Loader {
	return &Loader{
		Parser:     config.NewParser(),
		SearchDirs: searchDirs,
		Constants:  constants,
	}
}

// Warnings returns the warnings produced by everything loaded, built and
// applied so far.
func (l *Loader) Warnings() hcl.Diagnostics {
	return l.warnings
}

func (l *Loader) logger() *slog.Logger {
	if l.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.Logger
}

func (l *Loader) LoadTask(path, task string) (plugin.TaskFunc, error) {
	filename := config.ResolvePath(path, l.SearchDirs...)
	if filename == "" {
		return nil, fmt.Errorf("vaporfile %q: %w", path, plugin.ErrNotFound)
	}

	file, ctx, err := l.load(filename)
	if err != nil {
		return nil, err
	}
	t := file.Task(task)
	if t == nil {
		return nil, fmt.Errorf("vaporfile %s has no task %q: %w", filename, task, plugin.ErrMissingEntryPoint)
	}

	return func() (*cfn.Template, error) {
		l.logger().Debug("building task", "file", filename, "task", task)
		tmpl, diags := ctx.BuildTask(file, t)
		if err := l.check(diags); err != nil {
			return nil, err
		}
		return tmpl, nil
	}, nil
}

func (l *Loader) LoadRecipe(path string) (plugin.RecipeFunc, error) {
	filename := config.ResolvePath(path, l.SearchDirs...)
	if filename == "" {
		return nil, fmt.Errorf("recipe %q: %w", path, plugin.ErrNotFound)
	}

	file, ctx, err := l.load(filename)
	if err != nil {
		return nil, err
	}
	if file.Recipe == nil {
		return nil, fmt.Errorf("%s has no Recipe block, which provides the %q entry point: %w", filename, plugin.RecipeEntryPoint, plugin.ErrMissingEntryPoint)
	}

	return func(tmpl *cfn.Template) error {
		l.logger().Debug("applying recipe", "file", filename)
		return l.check(ctx.ApplyRecipe(tmpl, file.Recipe))
	}, nil
}

func (l *Loader) load(filename string) (*config.File, *eval.Context, error) {
	file, diags := l.Parser.ParseFile(filename)
	ctx, ctxDiags := eval.NewContext(filepath.Dir(filename), l.Constants)
	diags = append(diags, ctxDiags...)
	if err := l.check(diags); err != nil {
		return nil, nil, err
	}

	l.logger().Debug("loaded vaporfile", "file", filename, "tasks", file.TaskNames(), "recipe", file.Recipe != nil)
	return file, ctx, nil
}

// check returns an error if diags has errors, and otherwise keeps any
// warnings for later.
func (l *Loader) check(diags hcl.Diagnostics) error {
	if diags.HasErrors() {
		return &DiagnosticsError{Diags: diags}
	}
	l.warnings = append(l.warnings, diags...)
	return nil
}
