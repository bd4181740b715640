package config

import (
	"github.com/hashicorp/hcl2/hcl"

	"github.com/ohtomi/aws-cloudformation-generator/cfn"
)

// File is a single parsed vaporfile.
type File struct {
	SourcePath string

	// Description is nil if the file has no top-level Description.
	Description hcl.Expression

	Tasks  []*Task
	Recipe *Task
}

// Task returns the task with the given name, or nil if the file doesn't
// declare one.
func (f *File) Task(name string) *Task {
	for _, task := range f.Tasks {
		if task.Name == name {
			return task
		}
	}
	return nil
}

// TaskNames returns the names of the file's tasks in declaration order.
func (f *File) TaskNames() []string {
	names := make([]string, len(f.Tasks))
	for i, task := range f.Tasks {
		names[i] = task.Name
	}
	return names
}

// Task is the body of either a Task block or the Recipe block. The
// declarations are kept in source order so that the generated template
// lists its sections and elements the same way the file does.
type Task struct {
	// Name is empty for a Recipe block.
	Name      string
	DeclRange hcl.Range

	Description hcl.Expression
	Version     hcl.Expression

	Decls []*Decl
}

// DeclKind is the block type of a template element declaration.
type DeclKind string

const (
	ParameterDecl DeclKind = "Parameter"
	MappingDecl   DeclKind = "Mapping"
	ResourceDecl  DeclKind = "Resource"
	OutputDecl    DeclKind = "Output"
)

// Section returns the template section that elements of this kind belong to.
func (k DeclKind) Section() cfn.SectionName {
	switch k {
	case ParameterDecl:
		return cfn.Parameters
	case MappingDecl:
		return cfn.Mappings
	case ResourceDecl:
		return cfn.Resources
	case OutputDecl:
		return cfn.Outputs
	default:
		// Should never happen, since the parser accepts only the kinds above.
		panic("unknown declaration kind " + string(k))
	}
}

// Decl declares one Parameter, Mapping, Resource or Output.
type Decl struct {
	Kind      DeclKind
	Name      string
	DeclRange hcl.Range
	NameRange hcl.Range

	// Members are the arguments and nested blocks of the declaration, in
	// source order.
	Members []*Member
}

// Member is either an argument (Expr is set) or a nested block such as
// Properties (Block is true and Attrs holds its arguments in source order).
type Member struct {
	Name      string
	NameRange hcl.Range

	Expr hcl.Expression

	Block bool
	Attrs []*hcl.Attribute
}

// Member returns the first member with the given name, or nil.
func (d *Decl) Member(name string) *Member {
	for _, m := range d.Members {
		if m.Name == name {
			return m
		}
	}
	return nil
}
