package eval

import (
	"fmt"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// EvalConstant evaluates the given expression to produce a constant value,
// which is then converted to the requested type.
//
// When evaluating in this mode, only literals, functions and named constants
// can be used. If any other scope traversals are detected then error
// diagnostics are returned and the result is a null value.
func (ctx *Context) EvalConstant(expr hcl.Expression, ty cty.Type) (cty.Value, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	scope := make(map[string]cty.Value)

	for _, traversal := range expr.Variables() {
		if rootName := traversal.RootName(); rootName != "Const" {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Illegal use of non-constant value",
				Detail:   "Only literals, functions and named constants can be used here.",
				Subject:  traversal.SourceRange().Ptr(),
			})
			// Put a placeholder value in the scope anyway, so that
			// we can still complete evaluation but probably end up with
			// an unknown value as the result.
			scope[rootName] = cty.DynamicVal
		}
	}
	scope["Const"] = ctx.constObject()

	ectx := &hcl.EvalContext{
		Variables: scope,
		Functions: ctx.functions,
	}

	val, valDiags := expr.Value(ectx)
	diags = append(diags, valDiags...)

	// Constants must never be unknown. This can happen only if there's an
	// error, so the caller will generally detect this case with
	// diags.HasErrors and not look at the result.
	if !val.IsKnown() {
		val = cty.NullVal(val.Type())
	}

	val, err := convert.Convert(val, ty)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Incorrect value type",
			Detail:   fmt.Sprintf("This expression is not of the expected type: %s", err),
			Subject:  expr.Range().Ptr(),
		})
		val = cty.NullVal(ty)
	}

	return val, diags
}

// evalString evaluates an optional constant string. A nil expression or a
// null result leaves the default in place.
func (ctx *Context) evalString(expr hcl.Expression, def string) (string, hcl.Diagnostics) {
	if expr == nil {
		return def, nil
	}
	val, diags := ctx.EvalConstant(expr, cty.String)
	if diags.HasErrors() || val.IsNull() {
		return def, diags
	}
	return val.AsString(), diags
}
