// Package eval turns parsed vaporfiles into templates.
//
// Expressions are evaluated in two ways. Arguments of template elements go
// through EvalValue, which walks object and tuple constructors, template
// strings, index expressions and intrinsic function calls itself so that
// key order is kept and references can be lowered to CloudFormation
// intrinsics. Everything else, and everything inside other expressions, is
// evaluated by HCL using cty functions that produce the same intrinsic
// objects.
package eval

import (
	"github.com/hashicorp/hcl2/hcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/ohtomi/aws-cloudformation-generator/config"
)

// Context holds what is shared by all evaluation within one vaporfile.
type Context struct {
	// BaseDir is the directory that relative paths given to File and
	// CombineUserData are resolved against, normally the directory of the
	// vaporfile.
	BaseDir string

	// Constants are the attributes of the Const object.
	Constants map[string]cty.Value

	functions map[string]function.Function
}

// NewContext evaluates the given constants and returns a context exposing
// them. Constants may use literals and functions, but not other constants.
//
// If the returned diagnostics contain errors then the constants with errors
// are null, so the context can still be used for analysis.
func NewContext(baseDir string, constants hcl.Attributes) (*Context, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	ctx := &Context{
		BaseDir:   baseDir,
		Constants: make(map[string]cty.Value),
	}
	ctx.functions = ctx.Functions()

	// Constants are evaluated against an empty Const object, so all of them
	// can be evaluated in one pass.
	values := make(map[string]cty.Value, len(constants))
	for _, attr := range config.SortedAttributes(constants) {
		val, valDiags := ctx.EvalConstant(attr.Expr, cty.DynamicPseudoType)
		diags = append(diags, valDiags...)
		values[attr.Name] = val
	}
	ctx.Constants = values

	return ctx, diags
}

func (ctx *Context) constObject() cty.Value {
	if len(ctx.Constants) == 0 {
		return cty.EmptyObjectVal
	}
	return cty.ObjectVal(ctx.Constants)
}

// refObject returns an object whose attributes are the given names, each
// holding a Ref to itself.
func refObject(names []string) cty.Value {
	if len(names) == 0 {
		return cty.EmptyObjectVal
	}
	attrs := make(map[string]cty.Value, len(names))
	for _, name := range names {
		attrs[name] = cty.ObjectVal(map[string]cty.Value{
			"Ref": cty.StringVal(name),
		})
	}
	return cty.ObjectVal(attrs)
}
