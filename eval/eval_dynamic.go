package eval

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hcl/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
)

// Scope evaluates the arguments of template elements. In addition to the
// constants it exposes the Parameter and Resource objects, whose attributes
// are Refs to the named elements.
type Scope struct {
	ectx *hcl.EvalContext
}

// NewScope returns a scope in which the given parameter and resource names
// can be referenced.
func (ctx *Context) NewScope(parameters, resources []string) *Scope {
	return &Scope{
		ectx: &hcl.EvalContext{
			Variables: map[string]cty.Value{
				"Const":     ctx.constObject(),
				"Parameter": refObject(parameters),
				"Resource":  refObject(resources),
			},
			Functions: ctx.functions,
		},
	}
}

// EvalValue evaluates the given expression to produce a value for the
// rendered document.
//
// Object constructors keep the order their attributes are written in. A
// template string that interpolates a reference or an intrinsic function
// becomes an Fn::Join, and indexing the result of an intrinsic function
// becomes an Fn::Select, so that CloudFormation does the work when the
// stack is created.
func (s *Scope) EvalValue(expr hcl.Expression) (interface{}, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	switch te := expr.(type) {

	case *hclsyntax.ObjectConsExpr:
		obj := cfn.NewObject()
		for _, item := range te.Items {
			key, keyDiags := s.evalKey(item.KeyExpr)
			diags = append(diags, keyDiags...)
			val, valDiags := s.EvalValue(item.ValueExpr)
			diags = append(diags, valDiags...)
			if keyDiags.HasErrors() {
				continue
			}
			obj.Set(key, val)
		}
		return obj, diags

	case *hclsyntax.TupleConsExpr:
		list := make([]interface{}, 0, len(te.Exprs))
		for _, elemExpr := range te.Exprs {
			val, valDiags := s.EvalValue(elemExpr)
			diags = append(diags, valDiags...)
			list = append(list, val)
		}
		return list, diags

	case *hclsyntax.TemplateWrapExpr:
		return s.EvalValue(te.Wrapped)

	case *hclsyntax.TemplateExpr:
		parts := make([]interface{}, len(te.Parts))
		for i, partExpr := range te.Parts {
			var partDiags hcl.Diagnostics
			parts[i], partDiags = s.EvalValue(partExpr)
			diags = append(diags, partDiags...)
		}
		val, err := joinTemplate(parts)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid template interpolation value",
				Detail:   err.Error(),
				Subject:  te.SrcRange.Ptr(),
			})
		}
		return val, diags

	case *hclsyntax.IndexExpr:
		coll, collDiags := s.EvalValue(te.Collection)
		diags = append(diags, collDiags...)
		key, keyDiags := s.EvalValue(te.Key)
		diags = append(diags, keyDiags...)
		if diags.HasErrors() {
			return nil, diags
		}
		val, err := index(coll, key)
		if err != nil {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid index",
				Detail:   err.Error(),
				Subject:  te.SrcRange.Ptr(),
			})
		}
		return val, diags

	case *hclsyntax.RelativeTraversalExpr:
		val, srcDiags := s.EvalValue(te.Source)
		diags = append(diags, srcDiags...)
		if srcDiags.HasErrors() {
			return nil, diags
		}
		for _, rawStep := range te.Traversal {
			var key interface{}
			switch step := rawStep.(type) {
			case hcl.TraverseIndex:
				key, _ = goValue(step.Key)
			case hcl.TraverseAttr:
				key = step.Name
			default:
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Unsupported operation",
					Detail:   "This value does not support this operation.",
					Subject:  rawStep.SourceRange().Ptr(),
				})
				return nil, diags
			}
			var err error
			val, err = index(val, key)
			if err != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid index",
					Detail:   err.Error(),
					Subject:  rawStep.SourceRange().Ptr(),
				})
				return nil, diags
			}
		}
		return val, diags

	case *hclsyntax.FunctionCallExpr:
		if in, ok := intrinsics[te.Name]; ok && !te.ExpandFinal {
			return s.evalIntrinsic(te, in)
		}
	}

	// Anything else is evaluated by HCL, with the results converted
	// afterwards.
	val, valDiags := expr.Value(s.ectx)
	diags = append(diags, valDiags...)
	if valDiags.HasErrors() {
		return nil, diags
	}
	ret, err := goValue(val)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsuitable value",
			Detail:   fmt.Sprintf("This value cannot be used in a template: %s.", err),
			Subject:  expr.Range().Ptr(),
		})
	}
	return ret, diags
}

func (s *Scope) evalKey(expr hcl.Expression) (string, hcl.Diagnostics) {
	val, diags := expr.Value(s.ectx)
	if diags.HasErrors() {
		return "", diags
	}
	val, err := convert.Convert(val, cty.String)
	if err != nil || val.IsNull() || !val.IsKnown() {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid object key",
			Detail:   "Object keys must be strings.",
			Subject:  expr.Range().Ptr(),
		})
		return "", diags
	}
	return val.AsString(), diags
}

func (s *Scope) evalIntrinsic(call *hclsyntax.FunctionCallExpr, in intrinsic) (interface{}, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	if len(call.Args) != len(in.params) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Wrong number of function arguments",
			Detail:   fmt.Sprintf("%s requires %d argument(s): %s.", call.Name, len(in.params), strings.Join(in.params, ", ")),
			Subject:  call.Range().Ptr(),
		})
		return nil, diags
	}

	args := make([]interface{}, len(call.Args))
	for i, argExpr := range call.Args {
		var argDiags hcl.Diagnostics
		args[i], argDiags = s.EvalValue(argExpr)
		diags = append(diags, argDiags...)
	}
	if diags.HasErrors() {
		return nil, diags
	}

	ret, err := in.build(args)
	if err != nil {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid function argument",
			Detail:   fmt.Sprintf("Invalid argument for %s: %s.", call.Name, err),
			Subject:  call.Range().Ptr(),
		})
	}
	return ret, diags
}

// joinTemplate concatenates the parts of a template string. If any part is
// not a primitive value then the result is an Fn::Join of the parts, with
// adjacent primitive parts merged.
func joinTemplate(parts []interface{}) (interface{}, error) {
	var tokens []interface{}
	var buf strings.Builder
	dynamic := false

	for _, part := range parts {
		switch tp := part.(type) {
		case string:
			buf.WriteString(tp)
		case int64:
			buf.WriteString(strconv.FormatInt(tp, 10))
		case float64:
			buf.WriteString(strconv.FormatFloat(tp, 'f', -1, 64))
		case bool:
			buf.WriteString(strconv.FormatBool(tp))
		case *cfn.Object:
			if buf.Len() > 0 {
				tokens = append(tokens, buf.String())
				buf.Reset()
			}
			tokens = append(tokens, tp)
			dynamic = true
		default:
			return nil, fmt.Errorf("cannot include %s in a string", describe(part))
		}
	}

	if !dynamic {
		return buf.String(), nil
	}
	if buf.Len() > 0 {
		tokens = append(tokens, buf.String())
	}
	return cfn.Join("", tokens...), nil
}

// index looks up an element of a list or an attribute of an object. Indexing
// the result of an intrinsic function, which CloudFormation evaluates to a
// list, produces an Fn::Select.
func index(coll, key interface{}) (interface{}, error) {
	switch tc := coll.(type) {
	case []interface{}:
		i, ok := key.(int64)
		if !ok {
			return nil, fmt.Errorf("a list index must be a whole number, not %s", describe(key))
		}
		if i < 0 || i >= int64(len(tc)) {
			return nil, fmt.Errorf("index %d is out of range for a list of %d elements", i, len(tc))
		}
		return tc[i], nil

	case *cfn.Object:
		if isIntrinsic(tc) {
			if _, ok := key.(int64); !ok {
				return nil, fmt.Errorf("the result of %s can only be indexed by a whole number", tc.Keys()[0])
			}
			return cfn.Select(key, tc), nil
		}
		name, ok := key.(string)
		if !ok {
			return nil, fmt.Errorf("an object can only be indexed by a string, not %s", describe(key))
		}
		val, ok := tc.Get(name)
		if !ok {
			return nil, fmt.Errorf("the object has no attribute %q", name)
		}
		return val, nil

	default:
		return nil, fmt.Errorf("%s cannot be indexed", describe(coll))
	}
}

func isIntrinsic(obj *cfn.Object) bool {
	if obj.Len() != 1 {
		return false
	}
	key := obj.Keys()[0]
	return key == "Ref" || strings.HasPrefix(key, "Fn::")
}
