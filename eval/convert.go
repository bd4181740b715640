package eval

import (
	"fmt"
	"math/big"

	"github.com/zclconf/go-cty/cty"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
)

// goValue converts a cty value into the values used in rendered documents:
// string, int64, float64, bool, nil, []interface{} and *cfn.Object. Whole
// numbers become int64 so that they encode without a fraction. Object
// attributes are ordered by name, since cty doesn't record any other order.
func goValue(val cty.Value) (interface{}, error) {
	if val.IsNull() {
		return nil, nil
	}
	if !val.IsKnown() {
		return nil, fmt.Errorf("value is not known")
	}

	ty := val.Type()
	switch {
	case ty == cty.String:
		return val.AsString(), nil

	case ty == cty.Number:
		bf := val.AsBigFloat()
		if bf.IsInt() {
			if i, acc := bf.Int64(); acc == big.Exact {
				return i, nil
			}
		}
		f, _ := bf.Float64()
		return f, nil

	case ty == cty.Bool:
		return val.True(), nil

	case ty.IsListType() || ty.IsTupleType() || ty.IsSetType():
		ret := make([]interface{}, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			gv, err := goValue(ev)
			if err != nil {
				return nil, err
			}
			ret = append(ret, gv)
		}
		return ret, nil

	case ty.IsMapType() || ty.IsObjectType():
		obj := cfn.NewObject()
		for it := val.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			gv, err := goValue(ev)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", k.AsString(), err)
			}
			obj.Set(k.AsString(), gv)
		}
		return obj, nil

	default:
		return nil, fmt.Errorf("%s values cannot be used in a template", ty.FriendlyName())
	}
}

// ctyValue is the inverse of goValue.
func ctyValue(v interface{}) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case string:
		return cty.StringVal(tv), nil
	case bool:
		return cty.BoolVal(tv), nil
	case int:
		return cty.NumberIntVal(int64(tv)), nil
	case int64:
		return cty.NumberIntVal(tv), nil
	case float64:
		return cty.NumberFloatVal(tv), nil

	case []interface{}:
		if len(tv) == 0 {
			return cty.EmptyTupleVal, nil
		}
		vals := make([]cty.Value, len(tv))
		for i, ev := range tv {
			cv, err := ctyValue(ev)
			if err != nil {
				return cty.NilVal, err
			}
			vals[i] = cv
		}
		return cty.TupleVal(vals), nil

	case *cfn.Object:
		if tv.Len() == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, tv.Len())
		for _, key := range tv.Keys() {
			ev, _ := tv.Get(key)
			cv, err := ctyValue(ev)
			if err != nil {
				return cty.NilVal, fmt.Errorf("%s: %w", key, err)
			}
			attrs[key] = cv
		}
		return cty.ObjectVal(attrs), nil

	default:
		return cty.NilVal, fmt.Errorf("unsupported value of type %T", v)
	}
}
