package cfn

import "fmt"

// Element is a named entry of one of the template's sections, such as a
// single parameter or resource. It owns an ordered list of attributes.
type Element interface {
	Referent

	Name() string
	Attributes() []Attribute
	Render(parent *Object)
}

// element implements the behavior shared by all of the Element types. It
// is embedded into each of them.
type element struct {
	name  string
	attrs []Attribute
}

// Name returns the logical name of the element.
func (e *element) Name() string {
	return e.name
}

// RefName implements Referent, so that an element can be passed directly
// to Ref and RefTo.
func (e *element) RefName() string {
	return e.name
}

// Attributes returns the element's attributes in declaration order.
func (e *element) Attributes() []Attribute {
	return e.attrs
}

// Add appends an attribute. Attributes are never deduplicated by name: when
// two attributes share a name the later one's value wins at render time.
func (e *element) Add(attr Attribute) {
	e.attrs = append(e.attrs, attr)
}

// SetAttribute appends an attribute built from a value whose type is known
// only at runtime:
//
//   - a string or a Value becomes a ScalarAttribute
//   - an Element becomes a ScalarAttribute referring to it by name
//   - Pairs, []Item, []Attribute and []interface{} become a
//     MultiValueMapAttribute, each entry converted with ItemOf
//
// Any other value is rejected with ErrUnsupportedValueKind, and a sequence
// entry that cannot be an item is rejected with ErrUnsupportedItemKind. On
// error the element is left unchanged.
func (e *element) SetAttribute(name string, value interface{}) error {
	attr, err := attributeOf(name, value)
	if err != nil {
		return fmt.Errorf("attribute %q of %q: %w", name, e.name, err)
	}
	e.Add(attr)
	return nil
}

func attributeOf(name string, value interface{}) (Attribute, error) {
	switch v := value.(type) {
	case string:
		return NewScalar(name, Str(v)), nil
	case Nested:
		if v.Attr == nil {
			return nil, fmt.Errorf("nested value without an attribute: %w", ErrUnsupportedValueKind)
		}
		return NewScalar(name, v), nil
	case Value:
		return NewScalar(name, v), nil
	case Element:
		if isNil(v) {
			return nil, fmt.Errorf("nil %T: %w", value, ErrUnsupportedValueKind)
		}
		return NewScalar(name, RefTo(v)), nil
	case Pairs:
		return NewMultiValueMap(name, v), nil
	case []Item:
		return NewMultiValueMap(name, v...), nil
	case []Attribute:
		items := make([]Item, len(v))
		for i, attr := range v {
			item, err := ItemOf(attr)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return NewMultiValueMap(name, items...), nil
	case []interface{}:
		items := make([]Item, len(v))
		for i, raw := range v {
			item, err := ItemOf(raw)
			if err != nil {
				return nil, err
			}
			items[i] = item
		}
		return NewMultiValueMap(name, items...), nil
	default:
		return nil, fmt.Errorf("value of type %T: %w", value, ErrUnsupportedValueKind)
	}
}

// Render inserts a new object named after the element into parent and
// renders each of the element's attributes into it.
func (e *element) Render(parent *Object) {
	obj := NewObject()
	parent.Set(e.name, obj)
	for _, attr := range e.attrs {
		attr.Render(obj)
	}
}

// Parameter is an element of the Parameters section.
type Parameter struct {
	element
}

// NewParameter returns an empty parameter with the given logical name.
func NewParameter(name string) *Parameter {
	return &Parameter{element{name: name}}
}

// With appends an arbitrary attribute.
func (p *Parameter) With(attr Attribute) *Parameter {
	p.Add(attr)
	return p
}

// Type sets the parameter type, such as "String" or
// "AWS::EC2::KeyPair::KeyName".
func (p *Parameter) Type(name string) *Parameter {
	return p.With(NewScalar("Type", Str(name)))
}

// Description sets the parameter description.
func (p *Parameter) Description(desc string) *Parameter {
	return p.With(NewScalar("Description", Str(desc)))
}

// Default sets the value used when none is given at stack creation.
func (p *Parameter) Default(v interface{}) *Parameter {
	return p.With(NewScalar("Default", Lit(v)))
}

// AllowedPattern constrains string parameters to a regular expression.
func (p *Parameter) AllowedPattern(pattern string) *Parameter {
	return p.With(NewScalar("AllowedPattern", Str(pattern)))
}

// AllowedValues constrains the parameter to a fixed list of values.
func (p *Parameter) AllowedValues(values ...interface{}) *Parameter {
	return p.With(NewScalar("AllowedValues", Seq(values...)))
}

// ConstraintDescription is shown when a constraint is violated.
func (p *Parameter) ConstraintDescription(desc string) *Parameter {
	return p.With(NewScalar("ConstraintDescription", Str(desc)))
}

// MinLength is the smallest number of characters a String parameter
// accepts.
func (p *Parameter) MinLength(n int) *Parameter {
	return p.With(NewScalar("MinLength", Lit(n)))
}

// MaxLength is the largest number of characters a String parameter accepts.
func (p *Parameter) MaxLength(n int) *Parameter {
	return p.With(NewScalar("MaxLength", Lit(n)))
}

// MinValue is the smallest value a Number parameter accepts.
func (p *Parameter) MinValue(n interface{}) *Parameter {
	return p.With(NewScalar("MinValue", Lit(n)))
}

// MaxValue is the largest value a Number parameter accepts.
func (p *Parameter) MaxValue(n interface{}) *Parameter {
	return p.With(NewScalar("MaxValue", Lit(n)))
}

// NoEcho masks the parameter value in console and API output.
func (p *Parameter) NoEcho(masked bool) *Parameter {
	return p.With(NewScalar("NoEcho", Lit(masked)))
}

// Mapping is an element of the Mappings section.
type Mapping struct {
	element
}

// NewMapping returns an empty mapping with the given logical name.
func NewMapping(name string) *Mapping {
	return &Mapping{element{name: name}}
}

// With appends an arbitrary attribute.
func (m *Mapping) With(attr Attribute) *Mapping {
	m.Add(attr)
	return m
}

// Define adds a top-level key whose value is the map of the given entries.
func (m *Mapping) Define(category string, entries ...Pair) *Mapping {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i] = NewScalar(entry.Key, Lit(entry.Value))
	}
	return m.With(NewMultiValueMap(category, items...))
}

// Resource is an element of the Resources section.
type Resource struct {
	element
}

// NewResource returns an empty resource with the given logical name.
func NewResource(name string) *Resource {
	return &Resource{element{name: name}}
}

// With appends an arbitrary attribute.
func (r *Resource) With(attr Attribute) *Resource {
	r.Add(attr)
	return r
}

// Type sets the resource type, such as "AWS::EC2::VPC".
func (r *Resource) Type(name string) *Resource {
	return r.With(NewScalar("Type", Str(name)))
}

// DependsOn declares that the resource must be created after the given
// targets. A single target renders as its name, several as a list of
// names.
func (r *Resource) DependsOn(targets ...Referent) *Resource {
	if len(targets) == 1 {
		return r.With(NewScalar("DependsOn", Str(targets[0].RefName())))
	}
	names := make([]interface{}, len(targets))
	for i, target := range targets {
		names[i] = target.RefName()
	}
	return r.With(NewScalar("DependsOn", Seq(names...)))
}

// Properties adds a property bag holding the given attributes.
func (r *Resource) Properties(props ...Attribute) *Resource {
	items := make([]Item, len(props))
	for i, prop := range props {
		// ItemOf never fails for an Attribute.
		items[i], _ = ItemOf(prop)
	}
	return r.With(NewMultiValueMap("Properties", items...))
}

// Property appends a single attribute to the first property bag of the
// resource, creating the bag if the resource has none yet.
func (r *Resource) Property(prop Attribute) *Resource {
	item, _ := ItemOf(prop)
	for _, attr := range r.attrs {
		if bag, ok := attr.(*MultiValueMapAttribute); ok && bag.Name() == "Properties" {
			bag.Values = append(bag.Values, item)
			return r
		}
	}
	return r.Properties(prop)
}

// Metadata adds structured data associated with the resource.
func (r *Resource) Metadata(entries ...Attribute) *Resource {
	items := make([]Item, len(entries))
	for i, entry := range entries {
		items[i], _ = ItemOf(entry)
	}
	return r.With(NewMultiValueMap("Metadata", items...))
}

// Condition names the template condition that controls creation of the
// resource.
func (r *Resource) Condition(name string) *Resource {
	return r.With(NewScalar("Condition", Str(name)))
}

// DeletionPolicy sets what happens to the resource when the stack is
// deleted: "Delete", "Retain" or "Snapshot".
func (r *Resource) DeletionPolicy(policy string) *Resource {
	return r.With(NewScalar("DeletionPolicy", Str(policy)))
}

// Output is an element of the Outputs section.
type Output struct {
	element
}

// NewOutput returns an empty output with the given logical name.
func NewOutput(name string) *Output {
	return &Output{element{name: name}}
}

// With appends an arbitrary attribute.
func (o *Output) With(attr Attribute) *Output {
	o.Add(attr)
	return o
}

// Description sets the output description.
func (o *Output) Description(desc string) *Output {
	return o.With(NewScalar("Description", Str(desc)))
}

// Value sets the value of the output.
func (o *Output) Value(v Value) *Output {
	return o.With(NewScalar("Value", v))
}

// Export makes the output importable by other stacks under the given name.
func (o *Output) Export(name interface{}) *Output {
	return o.With(NewMultiValueMap("Export", Pairs{P("Name", name)}))
}
