// Package plugin defines how templates and recipes are found and invoked.
//
// A vaporfile provides one or more tasks, each of which builds a template,
// and a recipe file provides a single recipe that adds to a template built
// elsewhere. Where they come from is up to a Loader: the Registry holds Go
// functions compiled into the binary, and package vaporfile reads them from
// HCL files. A Chain tries several loaders in turn.
package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
)

const (
	// DefaultTask is the task run when none is named.
	DefaultTask = "generate"

	// RecipeEntryPoint is the name of the single entry point of a recipe.
	RecipeEntryPoint = "recipe"
)

var (
	// ErrNotFound is returned by a Loader that doesn't know the requested
	// vaporfile or recipe at all. A Chain moves on to its next loader.
	ErrNotFound = errors.New("not found")

	// ErrMissingEntryPoint is returned when the vaporfile or recipe exists
	// but doesn't provide the requested task. A Chain stops there.
	ErrMissingEntryPoint = errors.New("missing entry point")
)

// TaskFunc builds a template.
type TaskFunc func() (*cfn.Template, error)

// RecipeFunc modifies a template in place.
type RecipeFunc func(*cfn.Template) error

// Loader finds tasks and recipes by name.
type Loader interface {
	LoadTask(path, task string) (TaskFunc, error)
	LoadRecipe(path string) (RecipeFunc, error)
}

// Registry is a Loader for tasks and recipes registered from Go code. It is
// safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	tasks   map[string]map[string]TaskFunc
	recipes map[string]RecipeFunc
}

func NewRegistry() *Registry {
	return &Registry{
		tasks:   make(map[string]map[string]TaskFunc),
		recipes: make(map[string]RecipeFunc),
	}
}

// RegisterTask makes fn available as the named task of the named vaporfile,
// replacing any earlier registration.
func (r *Registry) RegisterTask(vaporfile, task string, fn TaskFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.tasks[vaporfile] == nil {
		r.tasks[vaporfile] = make(map[string]TaskFunc)
	}
	r.tasks[vaporfile][task] = fn
}

// RegisterRecipe makes fn available as the recipe of the given name,
// replacing any earlier registration.
func (r *Registry) RegisterRecipe(name string, fn RecipeFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recipes[name] = fn
}

func (r *Registry) LoadTask(path, task string) (TaskFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks, ok := r.tasks[path]
	if !ok {
		return nil, fmt.Errorf("vaporfile %q: %w", path, ErrNotFound)
	}
	fn, ok := tasks[task]
	if !ok {
		return nil, fmt.Errorf("vaporfile %q has no task %q: %w", path, task, ErrMissingEntryPoint)
	}
	return fn, nil
}

func (r *Registry) LoadRecipe(path string) (RecipeFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.recipes[path]
	if !ok {
		return nil, fmt.Errorf("recipe %q: %w", path, ErrNotFound)
	}
	return fn, nil
}

// Vaporfiles returns the names of the vaporfiles with registered tasks.
func (r *Registry) Vaporfiles() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Default is the registry that RegisterTask and RegisterRecipe add to.
var Default = NewRegistry()

// RegisterTask registers a task with the Default registry. It is typically
// called from an init function.
func RegisterTask(vaporfile, task string, fn TaskFunc) {
	Default.RegisterTask(vaporfile, task, fn)
}

// RegisterRecipe registers a recipe with the Default registry.
func RegisterRecipe(name string, fn RecipeFunc) {
	Default.RegisterRecipe(name, fn)
}

// Chain is a Loader that asks each of its loaders in order, moving on only
// when a loader reports ErrNotFound.
type Chain []Loader

func (c Chain) LoadTask(path, task string) (TaskFunc, error) {
	for _, l := range c {
		fn, err := l.LoadTask(path, task)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return fn, err
	}
	return nil, fmt.Errorf("vaporfile %q: %w", path, ErrNotFound)
}

func (c Chain) LoadRecipe(path string) (RecipeFunc, error) {
	for _, l := range c {
		fn, err := l.LoadRecipe(path)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return fn, err
	}
	return nil, fmt.Errorf("recipe %q: %w", path, ErrNotFound)
}
