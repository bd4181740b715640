package cfn

import (
	"fmt"
	"reflect"
)

// Referent is anything that can be the target of a "Ref": a literal
// logical name or an Element of the template.
type Referent interface {
	RefName() string
}

// LogicalID is a literal logical name, used to refer to parameters,
// resources and pseudo parameters such as "AWS::Region" that are not
// represented by an Element.
type LogicalID string

// RefName implements Referent.
func (id LogicalID) RefName() string {
	return string(id)
}

// isNil reports whether r holds a nil pointer, such as a (*Resource)(nil).
func isNil(r Referent) bool {
	v := reflect.ValueOf(r)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

func intrinsic(fn string, arg interface{}) *Object {
	ret := NewObject()
	ret.Set(fn, arg)
	return ret
}

// Base64 returns the "Fn::Base64" representation of the given value.
func Base64(value interface{}) *Object {
	return intrinsic("Fn::Base64", value)
}

// FindInMap returns the "Fn::FindInMap" lookup of a two-level key in the
// named mapping.
func FindInMap(mapName, topLevelKey, secondLevelKey interface{}) *Object {
	return intrinsic("Fn::FindInMap", []interface{}{mapName, topLevelKey, secondLevelKey})
}

// GetAtt returns the "Fn::GetAtt" lookup of an attribute exported by the
// named resource.
func GetAtt(resourceName, attributeName string) *Object {
	return intrinsic("Fn::GetAtt", []interface{}{resourceName, attributeName})
}

// GetAZs returns the "Fn::GetAZs" list of availability zones for a region.
// An empty region string means the region the stack is created in.
func GetAZs(region interface{}) *Object {
	return intrinsic("Fn::GetAZs", region)
}

// Join returns the "Fn::Join" concatenation of values with a delimiter.
func Join(delimiter string, values ...interface{}) *Object {
	if values == nil {
		values = []interface{}{}
	}
	return intrinsic("Fn::Join", []interface{}{delimiter, values})
}

// Select returns the "Fn::Select" of the item at index in a list.
func Select(index, list interface{}) *Object {
	return intrinsic("Fn::Select", []interface{}{index, list})
}

// Ref returns a "Ref" to the given target. Only the target's name is
// retained.
func Ref(target Referent) *Object {
	return intrinsic("Ref", target.RefName())
}

// RefOf is the dynamic form of Ref, for callers whose target is not known
// statically. A string is taken as a logical name, and an Element is
// referred to by its name.
func RefOf(target interface{}) (*Object, error) {
	switch t := target.(type) {
	case string:
		return Ref(LogicalID(t)), nil
	case Referent:
		if isNil(t) {
			return nil, fmt.Errorf("Ref to nil %T: %w", target, ErrUnsupportedRefTarget)
		}
		return Ref(t), nil
	default:
		return nil, fmt.Errorf("Ref to %T: %w", target, ErrUnsupportedRefTarget)
	}
}
