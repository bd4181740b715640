// Package generator runs a task, applies recipes to the template it builds
// and encodes the result.
package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
	"github.com/ohtomi/aws-cloudformation-generator/cfnjson"
	"github.com/ohtomi/aws-cloudformation-generator/cfnyaml"
	"github.com/ohtomi/aws-cloudformation-generator/logging"
	"github.com/ohtomi/aws-cloudformation-generator/plugin"
)

// Format selects the encoding of the generated document.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts "json", "yaml" and "yml" in any case. An empty string
// selects JSON.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q; must be json or yaml", s)
	}
}

// Encode renders the template and encodes it in the given format.
func Encode(t *cfn.Template, format Format) ([]byte, error) {
	switch format {
	case JSON, "":
		return cfnjson.MarshalTemplate(t)
	case YAML:
		return cfnyaml.MarshalTemplate(t)
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// Request describes one generation.
type Request struct {
	Vaporfile string

	// Task defaults to plugin.DefaultTask.
	Task string

	// Recipes are applied in order after the task has built the template.
	Recipes []string

	Format Format
}

// Generator looks up tasks and recipes through its loaders. Recipes are
// looked up separately so that they can be searched for in a contrib
// directory.
type Generator struct {
	Tasks   plugin.Loader
	Recipes plugin.Loader
}

// Generate builds the requested template and returns the encoded document.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	logger := logging.FromContext(ctx)

	taskName := req.Task
	if taskName == "" {
		taskName = plugin.DefaultTask
	}

	task, err := g.Tasks.LoadTask(req.Vaporfile, taskName)
	if err != nil {
		return nil, err
	}
	logger.Debug("running task", "vaporfile", req.Vaporfile, "task", taskName)
	tmpl, err := task()
	if err != nil {
		return nil, fmt.Errorf("task %q of %s failed: %w", taskName, req.Vaporfile, err)
	}

	for _, name := range req.Recipes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		recipe, err := g.Recipes.LoadRecipe(name)
		if err != nil {
			return nil, err
		}
		logger.Debug("applying recipe", "recipe", name)
		if err := recipe(tmpl); err != nil {
			return nil, fmt.Errorf("recipe %s failed: %w", name, err)
		}
	}

	out, err := Encode(tmpl, req.Format)
	if err != nil {
		return nil, err
	}
	logger.Debug("generated template", "format", req.Format, "bytes", len(out))
	return out, nil
}
