package cfn

// Value is the payload of a ScalarAttribute. The concrete types are
// Literal, Sequence, Nested and ElementRef; no other implementations are
// possible.
type Value interface {
	scalarValue()
}

// Literal is inserted into the rendered document verbatim. It is used for
// plain strings and numbers as well as for intrinsic function objects.
type Literal struct {
	V interface{}
}

// Sequence is inserted into the rendered document as a list.
type Sequence []interface{}

// Nested renders its Attribute inside a new object named after the
// enclosing attribute.
type Nested struct {
	Attr Attribute
}

// ElementRef refers to another element of the template by its name and
// renders as a "Ref" to it.
type ElementRef struct {
	Name string
}

func (Literal) scalarValue()    {}
func (Sequence) scalarValue()   {}
func (Nested) scalarValue()     {}
func (ElementRef) scalarValue() {}

// Str returns a Literal string value.
func Str(s string) Value {
	return Literal{V: s}
}

// Lit returns a Literal wrapping any JSON-able value, such as a number or
// the result of an intrinsic function.
func Lit(v interface{}) Value {
	return Literal{V: v}
}

// Seq returns a Sequence of the given values.
func Seq(values ...interface{}) Value {
	if values == nil {
		values = []interface{}{}
	}
	return Sequence(values)
}

// Nest returns a Nested value wrapping the given attribute. A nil attribute
// renders as an empty object, and SetAttribute rejects it.
func Nest(attr Attribute) Value {
	return Nested{Attr: attr}
}

// RefTo returns a reference to the given target. Only the name is
// retained, so the target may be declared anywhere in the template.
func RefTo(target Referent) Value {
	return ElementRef{Name: target.RefName()}
}
