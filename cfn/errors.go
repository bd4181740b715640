package cfn

import "errors"

var (
	// ErrUnsupportedValueKind is returned when an attribute value is neither
	// a string, a sequence, an Element nor an already-typed Value.
	ErrUnsupportedValueKind = errors.New("unsupported attribute value kind")

	// ErrUnsupportedItemKind is returned when an item of a multi-value map
	// attribute is neither a set of key/value pairs nor an Attribute.
	ErrUnsupportedItemKind = errors.New("unsupported multi-value map item kind")

	// ErrUnsupportedRefTarget is returned when a reference target is neither
	// a logical name nor an Element.
	ErrUnsupportedRefTarget = errors.New("unsupported reference target")
)
