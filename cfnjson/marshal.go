// Package cfnjson encodes rendered templates as CloudFormation JSON.
package cfnjson

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
)

// Indent is the indentation used for each nesting level.
const Indent = "  "

// Marshal encodes the given document as indented JSON, terminated by a
// newline. Keys appear in the document's order.
func Marshal(doc *cfn.Object) ([]byte, error) {
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("encoding template: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", Indent); err != nil {
		// Should never happen, since MarshalJSON should always produce
		// valid JSON.
		panic(fmt.Errorf("MarshalJSON produced invalid JSON: %s", err))
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// MarshalTemplate renders the given template and encodes the result.
func MarshalTemplate(t *cfn.Template) ([]byte, error) {
	return Marshal(t.Render())
}
