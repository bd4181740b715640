package eval

import (
	"fmt"

	"github.com/hashicorp/hcl2/hcl"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
	"github.com/ohtomi/aws-cloudformation-generator/config"
)

// BuildTask builds a new template from the given task of the file.
//
// If the returned diagnostics contain errors then the template is
// incomplete and should not be used other than for analysis.
func (ctx *Context) BuildTask(file *config.File, task *config.Task) (*cfn.Template, hcl.Diagnostics) {
	desc, diags := ctx.evalString(file.Description, "")
	t := cfn.NewTemplate(desc)
	diags = append(diags, ctx.apply(t, task, false)...)
	return t, diags
}

// ApplyRecipe adds the declarations of a Recipe block to the given template.
// A declaration naming an element that the template already has extends that
// element: its properties are appended to the element's existing property
// bag and its other arguments are added after the existing ones, so they win
// when the template is rendered.
func (ctx *Context) ApplyRecipe(t *cfn.Template, recipe *config.Task) hcl.Diagnostics {
	return ctx.apply(t, recipe, true)
}

func (ctx *Context) apply(t *cfn.Template, task *config.Task, extend bool) hcl.Diagnostics {
	var diags hcl.Diagnostics

	desc, descDiags := ctx.evalString(task.Description, t.Description)
	diags = append(diags, descDiags...)
	t.Description = desc

	version, versionDiags := ctx.evalString(task.Version, t.Version)
	diags = append(diags, versionDiags...)
	t.Version = version

	scope := ctx.NewScope(
		declaredNames(t, task, config.ParameterDecl),
		declaredNames(t, task, config.ResourceDecl),
	)

	for _, decl := range task.Decls {
		section := decl.Kind.Section()
		var existing cfn.Element
		if extend && t.HasSection(section) {
			existing = t.Section(section).Lookup(decl.Name)
		}

		switch decl.Kind {
		case config.ParameterDecl:
			p, ok := existing.(*cfn.Parameter)
			if !ok {
				p = cfn.NewParameter(decl.Name)
				t.AddParameter(p)
			}
			diags = append(diags, scope.buildParameter(p, decl)...)

		case config.MappingDecl:
			m, ok := existing.(*cfn.Mapping)
			if !ok {
				m = cfn.NewMapping(decl.Name)
				t.AddMapping(m)
			}
			diags = append(diags, scope.buildMapping(m, decl)...)

		case config.ResourceDecl:
			r, ok := existing.(*cfn.Resource)
			if !ok {
				r = cfn.NewResource(decl.Name)
				t.AddResource(r)
			}
			diags = append(diags, scope.buildResource(r, decl, ok)...)

		case config.OutputDecl:
			o, ok := existing.(*cfn.Output)
			if !ok {
				o = cfn.NewOutput(decl.Name)
				t.AddOutput(o)
			}
			diags = append(diags, scope.buildOutput(o, decl)...)
		}
	}

	return diags
}

// declaredNames returns the names of the elements of the given kind that
// are either already in the template or declared in the task.
func declaredNames(t *cfn.Template, task *config.Task, kind config.DeclKind) []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}

	if t.HasSection(kind.Section()) {
		for _, e := range t.Section(kind.Section()).Elements {
			add(e.Name())
		}
	}
	for _, decl := range task.Decls {
		if decl.Kind == kind {
			add(decl.Name)
		}
	}
	return names
}

// attributeSetter is implemented by all of the element types.
type attributeSetter interface {
	SetAttribute(name string, value interface{}) error
}

// valueOf wraps an evaluated value for use in a ScalarAttribute.
func valueOf(v interface{}) cfn.Value {
	switch tv := v.(type) {
	case string:
		return cfn.Str(tv)
	case []interface{}:
		return cfn.Seq(tv...)
	default:
		return cfn.Lit(v)
	}
}

func (s *Scope) setScalar(e attributeSetter, m *config.Member) hcl.Diagnostics {
	v, diags := s.EvalValue(m.Expr)
	if diags.HasErrors() {
		return diags
	}
	if err := e.SetAttribute(m.Name, valueOf(v)); err != nil {
		// Should never happen, since a Value is always accepted.
		panic(err)
	}
	return diags
}

func (s *Scope) attributes(attrs []*hcl.Attribute) ([]cfn.Attribute, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	ret := make([]cfn.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		v, valDiags := s.EvalValue(attr.Expr)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}
		ret = append(ret, cfn.NewScalar(attr.Name, valueOf(v)))
	}
	return ret, diags
}

func (s *Scope) buildParameter(p *cfn.Parameter, decl *config.Decl) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, m := range decl.Members {
		diags = append(diags, s.setScalar(p, m)...)
	}
	return diags
}

func (s *Scope) buildMapping(mapping *cfn.Mapping, decl *config.Decl) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, m := range decl.Members {
		v, valDiags := s.EvalValue(m.Expr)
		diags = append(diags, valDiags...)
		if valDiags.HasErrors() {
			continue
		}

		obj, ok := v.(*cfn.Object)
		if !ok {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Incorrect value type",
				Detail:   fmt.Sprintf("Mapping category %q must be an object, not %s.", m.Name, describe(v)),
				Subject:  m.Expr.Range().Ptr(),
			})
			continue
		}
		entries := make([]cfn.Pair, 0, obj.Len())
		for _, key := range obj.Keys() {
			val, _ := obj.Get(key)
			entries = append(entries, cfn.P(key, val))
		}
		mapping.Define(m.Name, entries...)
	}
	return diags
}

func (s *Scope) buildResource(r *cfn.Resource, decl *config.Decl, extending bool) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, m := range decl.Members {
		switch m.Name {

		case "Type":
			v, valDiags := s.EvalValue(m.Expr)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			typeName, ok := v.(string)
			if !ok {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Incorrect value type",
					Detail:   fmt.Sprintf("A resource type must be a string, not %s.", describe(v)),
					Subject:  m.Expr.Range().Ptr(),
				})
				continue
			}
			r.Type(typeName)

		case "DependsOn":
			v, valDiags := s.EvalValue(m.Expr)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			targets, err := referents(v)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid DependsOn value",
					Detail:   err.Error(),
					Subject:  m.Expr.Range().Ptr(),
				})
				continue
			}
			r.DependsOn(targets...)

		case "Properties":
			props, propDiags := s.attributes(m.Attrs)
			diags = append(diags, propDiags...)
			if !extending {
				r.Properties(props...)
				continue
			}
			for _, prop := range props {
				r.Property(prop)
			}

		case "Metadata":
			entries, entryDiags := s.attributes(m.Attrs)
			diags = append(diags, entryDiags...)
			r.Metadata(entries...)

		default:
			diags = append(diags, s.setScalar(r, m)...)
		}
	}
	return diags
}

// referents converts a DependsOn value, which is a name, a reference or a
// list of those, into the targets it names.
func referents(v interface{}) ([]cfn.Referent, error) {
	list, ok := v.([]interface{})
	if !ok {
		list = []interface{}{v}
	}

	targets := make([]cfn.Referent, len(list))
	for i, item := range list {
		name, ok := refName(item)
		if !ok {
			return nil, fmt.Errorf("DependsOn must be a resource name, a resource reference or a list of those, but element %d is %s", i, describe(item))
		}
		targets[i] = cfn.LogicalID(name)
	}
	return targets, nil
}

func (s *Scope) buildOutput(o *cfn.Output, decl *config.Decl) hcl.Diagnostics {
	var diags hcl.Diagnostics
	for _, m := range decl.Members {
		switch m.Name {

		case "Value":
			v, valDiags := s.EvalValue(m.Expr)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			o.Value(valueOf(v))

		case "Export":
			// The parser guarantees that Name is the only argument.
			var nameAttr *hcl.Attribute
			for _, attr := range m.Attrs {
				if attr.Name == "Name" {
					nameAttr = attr
				}
			}
			if nameAttr == nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Missing required argument",
					Detail:   "The argument \"Name\" is required in an Export block.",
					Subject:  &m.NameRange,
				})
				continue
			}
			v, valDiags := s.EvalValue(nameAttr.Expr)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			o.Export(v)

		default:
			diags = append(diags, s.setScalar(o, m)...)
		}
	}
	return diags
}
