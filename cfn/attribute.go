package cfn

import (
	"fmt"
	"sort"
)

// Attribute is a named value belonging to an Element. Rendering an
// attribute inserts it into the given parent object under its own name.
type Attribute interface {
	Name() string
	Render(parent *Object)
}

// ScalarAttribute is an attribute holding a single Value.
type ScalarAttribute struct {
	name  string
	Value Value
}

// NewScalar returns a ScalarAttribute with the given name and value.
func NewScalar(name string, value Value) *ScalarAttribute {
	return &ScalarAttribute{
		name:  name,
		Value: value,
	}
}

// Name implements Attribute.
func (a *ScalarAttribute) Name() string {
	return a.name
}

// Render implements Attribute.
func (a *ScalarAttribute) Render(parent *Object) {
	switch v := a.Value.(type) {
	case nil:
		parent.Set(a.name, nil)
	case Literal:
		parent.Set(a.name, v.V)
	case Sequence:
		parent.Set(a.name, []interface{}(v))
	case Nested:
		nested := NewObject()
		parent.Set(a.name, nested)
		if v.Attr != nil {
			v.Attr.Render(nested)
		}
	case ElementRef:
		parent.Set(a.name, Ref(LogicalID(v.Name)))
	default:
		// Should never happen, since Value has no implementations outside
		// of this package.
		panic(fmt.Errorf("unhandled %T value in attribute %q", a.Value, a.name))
	}
}

// Item is one entry of a MultiValueMapAttribute: either a set of key/value
// Pairs or an Attribute. Use ItemOf to convert values whose type is only
// known at runtime.
type Item interface {
	mapItem()
}

// Pair is a single key/value entry.
type Pair struct {
	Key   string
	Value interface{}
}

// Pairs is an ordered set of key/value entries that is merged into the
// enclosing map as-is.
type Pairs []Pair

// P is shorthand for constructing a Pair.
func P(key string, value interface{}) Pair {
	return Pair{Key: key, Value: value}
}

// Object returns the pairs as an Object. Later duplicate keys overwrite
// earlier ones.
func (p Pairs) Object() *Object {
	ret := NewObject()
	for _, pair := range p {
		ret.Set(pair.Key, pair.Value)
	}
	return ret
}

// attrItem adapts an Attribute implemented outside of this package so that
// it can be used as an Item.
type attrItem struct {
	Attribute
}

func (Pairs) mapItem()                   {}
func (*ScalarAttribute) mapItem()        {}
func (*MultiValueMapAttribute) mapItem() {}
func (attrItem) mapItem()                {}

// ItemOf converts a dynamically-typed value into an Item.
//
// Pairs, a single Pair, an *Object (in key order) and a map (in sorted key
// order) all become Pairs. Any Attribute becomes an attribute item.
func ItemOf(v interface{}) (Item, error) {
	switch tv := v.(type) {
	case Item:
		return tv, nil
	case Pair:
		return Pairs{tv}, nil
	case []Pair:
		return Pairs(tv), nil
	case *Object:
		pairs := make(Pairs, 0, tv.Len())
		for _, k := range tv.Keys() {
			val, _ := tv.Get(k)
			pairs = append(pairs, Pair{Key: k, Value: val})
		}
		return pairs, nil
	case map[string]interface{}:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make(Pairs, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, Pair{Key: k, Value: tv[k]})
		}
		return pairs, nil
	case Attribute:
		return attrItem{tv}, nil
	default:
		return nil, fmt.Errorf("item of type %T: %w", v, ErrUnsupportedItemKind)
	}
}

// MultiValueMapAttribute is an attribute whose items are merged, in order,
// into a single nested object.
type MultiValueMapAttribute struct {
	name   string
	Values []Item
}

// NewMultiValueMap returns a MultiValueMapAttribute with the given items.
func NewMultiValueMap(name string, items ...Item) *MultiValueMapAttribute {
	return &MultiValueMapAttribute{
		name:   name,
		Values: items,
	}
}

// Name implements Attribute.
func (a *MultiValueMapAttribute) Name() string {
	return a.name
}

// Render implements Attribute. Keys set by later items overwrite the values
// set by earlier ones.
func (a *MultiValueMapAttribute) Render(parent *Object) {
	attr := NewObject()
	parent.Set(a.name, attr)
	for _, rawItem := range a.Values {
		switch item := rawItem.(type) {
		case Pairs:
			for _, pair := range item {
				attr.Set(pair.Key, pair.Value)
			}
		case Attribute:
			item.Render(attr)
		default:
			// Should never happen, since Item has no implementations
			// outside of this package.
			panic(fmt.Errorf("unhandled %T item in attribute %q", rawItem, a.name))
		}
	}
}
