// Package cfn is an object model for AWS CloudFormation templates.
//
// A Template holds named sections (Parameters, Mappings, Resources and
// Outputs), each of which is an ordered list of Elements. Elements in turn
// hold ordered Attributes. Calling Render on the template walks this tree
// and produces an ordered document that encodes as CloudFormation JSON.
//
// Elements never point at one another. A reference from one element to
// another, whether written with Ref, RefTo or DependsOn, is recorded only as
// the target's logical name. The model is therefore a tree, and references
// work the same regardless of which element is declared first.
//
// None of the types in this package are safe for concurrent mutation.
package cfn

// DefaultVersion is the AWSTemplateFormatVersion used by NewTemplate.
const DefaultVersion = "2010-09-09"

// SectionName is the name of a top-level template section.
type SectionName string

const (
	Parameters SectionName = "Parameters"
	Mappings   SectionName = "Mappings"
	Resources  SectionName = "Resources"
	Outputs    SectionName = "Outputs"
)

// Section is an ordered list of elements under a top-level key of the
// template.
type Section struct {
	Name     SectionName
	Elements []Element
}

// Append adds an element to the end of the section.
func (s *Section) Append(e Element) {
	s.Elements = append(s.Elements, e)
}

// Lookup returns the first element in the section with the given name, or
// nil if there is none.
func (s *Section) Lookup(name string) Element {
	for _, e := range s.Elements {
		if e.Name() == name {
			return e
		}
	}
	return nil
}

// Template is the root of the object model.
type Template struct {
	Version     string
	Description string

	sections []*Section
}

// NewTemplate returns an empty template with the default format version.
func NewTemplate(description string) *Template {
	return &Template{
		Version:     DefaultVersion,
		Description: description,
	}
}

// Section returns the named section, creating it if the template doesn't
// have it yet. Sections render in the order they were first created here,
// and a created section is always rendered, even when it stays empty.
func (t *Template) Section(name SectionName) *Section {
	for _, s := range t.sections {
		if s.Name == name {
			return s
		}
	}
	s := &Section{Name: name}
	t.sections = append(t.sections, s)
	return s
}

// Sections returns the template's sections in creation order.
func (t *Template) Sections() []*Section {
	return t.sections
}

// HasSection returns true if the named section has been created.
func (t *Template) HasSection(name SectionName) bool {
	for _, s := range t.sections {
		if s.Name == name {
			return true
		}
	}
	return false
}

// AddParameter appends an element to the Parameters section.
func (t *Template) AddParameter(e Element) *Template {
	t.Section(Parameters).Append(e)
	return t
}

// AddMapping appends an element to the Mappings section.
func (t *Template) AddMapping(e Element) *Template {
	t.Section(Mappings).Append(e)
	return t
}

// AddResource appends an element to the Resources section.
func (t *Template) AddResource(e Element) *Template {
	t.Section(Resources).Append(e)
	return t
}

// AddOutput appends an element to the Outputs section.
func (t *Template) AddOutput(e Element) *Template {
	t.Section(Outputs).Append(e)
	return t
}

// Render produces the template document. It does not modify the template,
// so rendering an unchanged template again produces an identical document.
func (t *Template) Render() *Object {
	doc := NewObject()
	doc.Set("AWSTemplateFormatVersion", t.Version)
	doc.Set("Description", t.Description)
	for _, s := range t.sections {
		section := NewObject()
		doc.Set(string(s.Name), section)
		for _, e := range s.Elements {
			e.Render(section)
		}
	}
	return doc
}

// MarshalJSON implements json.Marshaler by encoding the rendered document.
func (t *Template) MarshalJSON() ([]byte, error) {
	return t.Render().MarshalJSON()
}
