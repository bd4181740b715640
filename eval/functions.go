package eval

import (
	"fmt"
	"io/ioutil"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
	"github.com/ohtomi/aws-cloudformation-generator/userdata"
)

// intrinsic describes a function that builds a CloudFormation intrinsic
// function object from already-evaluated arguments.
type intrinsic struct {
	params []string
	build  func(args []interface{}) (interface{}, error)
}

var intrinsics = map[string]intrinsic{
	"Ref": {
		params: []string{"target"},
		build: func(args []interface{}) (interface{}, error) {
			if name, ok := refName(args[0]); ok {
				return cfn.Ref(cfn.LogicalID(name)), nil
			}
			return cfn.RefOf(args[0])
		},
	},
	"GetAtt": {
		params: []string{"resource", "attribute"},
		build: func(args []interface{}) (interface{}, error) {
			resource, ok := refName(args[0])
			if !ok {
				return nil, fmt.Errorf("resource must be a logical name or a reference, not %s", describe(args[0]))
			}
			attr, ok := args[1].(string)
			if !ok {
				return nil, fmt.Errorf("attribute must be a string, not %s", describe(args[1]))
			}
			return cfn.GetAtt(resource, attr), nil
		},
	},
	"FindInMap": {
		params: []string{"map", "top_key", "second_key"},
		build: func(args []interface{}) (interface{}, error) {
			return cfn.FindInMap(args[0], args[1], args[2]), nil
		},
	},
	"GetAZs": {
		params: []string{"region"},
		build: func(args []interface{}) (interface{}, error) {
			return cfn.GetAZs(args[0]), nil
		},
	},
	"Join": {
		params: []string{"delimiter", "values"},
		build: func(args []interface{}) (interface{}, error) {
			delim, ok := args[0].(string)
			if !ok {
				return nil, fmt.Errorf("delimiter must be a string, not %s", describe(args[0]))
			}
			values, ok := args[1].([]interface{})
			if !ok {
				return nil, fmt.Errorf("values must be a list, not %s", describe(args[1]))
			}
			return cfn.Join(delim, values...), nil
		},
	},
	"Select": {
		params: []string{"index", "values"},
		build: func(args []interface{}) (interface{}, error) {
			return cfn.Select(args[0], args[1]), nil
		},
	},
	"Base64": {
		params: []string{"value"},
		build: func(args []interface{}) (interface{}, error) {
			return cfn.Base64(args[0]), nil
		},
	},
}

// refName returns the logical name that v refers to, when v is either a
// name or a Ref object such as those in the Parameter and Resource objects.
func refName(v interface{}) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case *cfn.Object:
		if tv.Len() != 1 {
			return "", false
		}
		name, ok := tv.Get("Ref")
		if !ok {
			return "", false
		}
		s, ok := name.(string)
		return s, ok
	default:
		return "", false
	}
}

func describe(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "a string"
	case int64, float64:
		return "a number"
	case bool:
		return "a bool"
	case []interface{}:
		return "a list"
	case *cfn.Object:
		return "an object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// Functions returns the functions available to expressions in vaporfiles.
func (ctx *Context) Functions() map[string]function.Function {
	funcs := map[string]function.Function{
		"File":            ctx.fileFunc(),
		"CombineUserData": ctx.combineUserDataFunc(),
		"InjectParams":    injectParamsFunc,
	}
	for name, in := range intrinsics {
		funcs[name] = in.function()
	}
	return funcs
}

func (in intrinsic) function() function.Function {
	params := make([]function.Parameter, len(in.params))
	for i, name := range in.params {
		params[i] = function.Parameter{
			Name: name,
			Type: cty.DynamicPseudoType,
		}
	}

	return function.New(&function.Spec{
		Params: params,
		Type:   function.StaticReturnType(cty.DynamicPseudoType),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			goArgs := make([]interface{}, len(args))
			for i, arg := range args {
				gv, err := goValue(arg)
				if err != nil {
					return cty.NilVal, function.NewArgError(i, err)
				}
				goArgs[i] = gv
			}
			result, err := in.build(goArgs)
			if err != nil {
				return cty.NilVal, err
			}
			return ctyValue(result)
		},
	})
}

func (ctx *Context) resolvePath(path string) string {
	if filepath.IsAbs(path) || ctx.BaseDir == "" {
		return path
	}
	return filepath.Join(ctx.BaseDir, path)
}

func (ctx *Context) fileFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name: "path",
				Type: cty.String,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			src, err := ioutil.ReadFile(ctx.resolvePath(args[0].AsString()))
			if err != nil {
				return cty.NilVal, function.NewArgError(0, err)
			}
			return cty.StringVal(string(src)), nil
		},
	})
}

// combineUserDataFunc takes a list of [path, subtype] pairs.
func (ctx *Context) combineUserDataFunc() function.Function {
	return function.New(&function.Spec{
		Params: []function.Parameter{
			{
				Name: "parts",
				Type: cty.DynamicPseudoType,
			},
		},
		Type: function.StaticReturnType(cty.String),
		Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
			raw, err := goValue(args[0])
			if err != nil {
				return cty.NilVal, function.NewArgError(0, err)
			}
			list, ok := raw.([]interface{})
			if !ok {
				return cty.NilVal, function.NewArgErrorf(0, "must be a list of [path, subtype] pairs")
			}

			parts := make([]userdata.Part, 0, len(list))
			for i, item := range list {
				pair, ok := item.([]interface{})
				if !ok || len(pair) != 2 {
					return cty.NilVal, function.NewArgErrorf(0, "element %d must be a [path, subtype] pair", i)
				}
				path, pathOK := pair[0].(string)
				subtype, subtypeOK := pair[1].(string)
				if !pathOK || !subtypeOK {
					return cty.NilVal, function.NewArgErrorf(0, "element %d must be a pair of strings", i)
				}
				part, err := userdata.ReadPart(ctx.resolvePath(path), subtype)
				if err != nil {
					return cty.NilVal, function.NewArgError(0, err)
				}
				parts = append(parts, part)
			}

			combined, err := userdata.Combine(parts)
			if err != nil {
				return cty.NilVal, err
			}
			return cty.StringVal(combined), nil
		},
	})
}

var injectParamsFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{
			Name: "text",
			Type: cty.String,
		},
		{
			Name: "params",
			Type: cty.DynamicPseudoType,
		},
	},
	Type: function.StaticReturnType(cty.DynamicPseudoType),
	Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
		raw, err := goValue(args[1])
		if err != nil {
			return cty.NilVal, function.NewArgError(1, err)
		}
		obj, ok := raw.(*cfn.Object)
		if !ok {
			return cty.NilVal, function.NewArgErrorf(1, "must be an object")
		}
		params := make(map[string]interface{}, obj.Len())
		for _, key := range obj.Keys() {
			params[key], _ = obj.Get(key)
		}
		return ctyValue(userdata.InjectParams(args[0].AsString(), params))
	},
})
