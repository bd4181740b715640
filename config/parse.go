package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl2/gohcl"
	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclparse"

	"github.com/ohtomi/aws-cloudformation-generator/addr"
)

// Extension is the file name suffix of vaporfiles.
const Extension = ".vapor"

// Parser parses vaporfiles and constants files, remembering the source of
// each so that diagnostics can later be printed with source snippets.
type Parser struct {
	HCLParser *hclparse.Parser
}

func NewParser() *Parser {
	return &Parser{
		HCLParser: hclparse.NewParser(),
	}
}

// Files returns the ASTs of all files parsed so far, keyed by file name.
func (p *Parser) Files() map[string]*hcl.File {
	return p.HCLParser.Files()
}

func (p *Parser) ParseFile(filename string) (*File, hcl.Diagnostics) {
	src, err := ioutil.ReadFile(filename)
	if err != nil {
		return nil, hcl.Diagnostics{
			{
				Severity: hcl.DiagError,
				Summary:  "Failed to read vaporfile",
				Detail:   fmt.Sprintf("There was an error reading %s: %s", filename, err),
			},
		}
	}
	return p.ParseFileSource(src, filename)
}

func (p *Parser) ParseFileSource(src []byte, filename string) (*File, hcl.Diagnostics) {
	astFile, diags := p.HCLParser.ParseHCL(src, filename)

	file := &File{
		SourcePath: filename,
	}
	if astFile == nil {
		return file, diags
	}

	content, contentDiags := astFile.Body.Content(fileRootSchema)
	diags = append(diags, contentDiags...)

	if attr, exists := content.Attributes["Description"]; exists {
		file.Description = attr.Expr
	}

	var recipeRange hcl.Range
	for _, block := range content.Blocks {
		switch block.Type {

		case "Task":
			task, taskDiags := decodeTask(block)
			diags = append(diags, taskDiags...)
			if prev := file.Task(task.Name); prev != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate task",
					Detail: fmt.Sprintf(
						"Duplicate definition of task %q, which was already defined at %s.",
						task.Name, prev.DeclRange,
					),
					Subject: &block.DefRange,
				})
				continue
			}
			file.Tasks = append(file.Tasks, task)

		case "Recipe":
			if file.Recipe != nil {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Duplicate Recipe block",
					Detail:   fmt.Sprintf("A vaporfile may have only one Recipe block, and one was already defined at %s.", recipeRange),
					Subject:  &block.DefRange,
				})
				continue
			}
			recipe, recipeDiags := decodeTask(block)
			diags = append(diags, recipeDiags...)
			file.Recipe = recipe
			recipeRange = block.DefRange

		default:
			// Should never happen since the above cases should always cover
			// all of the block types in our schema.
			panic(fmt.Errorf("unhandled block type %q", block.Type))
		}
	}

	return file, diags
}

func decodeTask(block *hcl.Block) (*Task, hcl.Diagnostics) {
	task := &Task{
		DeclRange: block.DefRange,
	}
	if len(block.Labels) > 0 {
		task.Name = block.Labels[0]
	}

	content, diags := block.Body.Content(taskSchema)
	if attr, exists := content.Attributes["Description"]; exists {
		task.Description = attr.Expr
	}
	if attr, exists := content.Attributes["Version"]; exists {
		task.Version = attr.Expr
	}

	seen := make(map[DeclKind]map[string]hcl.Range)
	for _, block := range content.Blocks {
		decl, declDiags := decodeDecl(block)
		diags = append(diags, declDiags...)

		if seen[decl.Kind] == nil {
			seen[decl.Kind] = make(map[string]hcl.Range)
		}
		if prev, conflict := seen[decl.Kind][decl.Name]; conflict {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagWarning,
				Summary:  fmt.Sprintf("Duplicate %s", strings.ToLower(string(decl.Kind))),
				Detail: fmt.Sprintf(
					"%s %q was already declared at %s. Both are kept, and the later one's attributes win in the generated template.",
					decl.Kind, decl.Name, prev,
				),
				Subject: &decl.NameRange,
			})
		} else {
			seen[decl.Kind][decl.Name] = decl.DeclRange
		}

		task.Decls = append(task.Decls, decl)
	}

	return task, diags
}

func decodeDecl(block *hcl.Block) (*Decl, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	decl := &Decl{
		Kind:      DeclKind(block.Type),
		Name:      block.Labels[0],
		DeclRange: block.DefRange,
		NameRange: block.LabelRanges[0],
	}

	if !addr.ValidName(decl.Name) {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagWarning,
			Summary:  "Invalid logical name",
			Detail:   fmt.Sprintf("CloudFormation logical IDs may contain only alphanumeric characters, so %q will probably be rejected.", decl.Name),
			Subject:  &decl.NameRange,
		})
	}

	schema := declSchemas[decl.Kind]
	if schema == nil {
		// Mappings have free-form category names.
		attrs, attrsDiags := block.Body.JustAttributes()
		diags = append(diags, attrsDiags...)
		for _, attr := range SortedAttributes(attrs) {
			decl.Members = append(decl.Members, &Member{
				Name:      attr.Name,
				NameRange: attr.NameRange,
				Expr:      attr.Expr,
			})
		}
		return decl, diags
	}

	content, contentDiags := block.Body.Content(schema)
	diags = append(diags, contentDiags...)

	type positioned struct {
		offset int
		member *Member
	}
	var members []positioned

	for _, attr := range content.Attributes {
		members = append(members, positioned{
			offset: attr.Range.Start.Byte,
			member: &Member{
				Name:      attr.Name,
				NameRange: attr.NameRange,
				Expr:      attr.Expr,
			},
		})
	}
	for _, nested := range content.Blocks {
		var attrs []*hcl.Attribute
		var attrsDiags hcl.Diagnostics
		if nested.Type == "Export" {
			attrs, attrsDiags = decodeExport(nested)
		} else {
			var all hcl.Attributes
			all, attrsDiags = nested.Body.JustAttributes()
			attrs = SortedAttributes(all)
		}
		diags = append(diags, attrsDiags...)
		members = append(members, positioned{
			offset: nested.DefRange.Start.Byte,
			member: &Member{
				Name:      nested.Type,
				NameRange: nested.TypeRange,
				Block:     true,
				Attrs:     attrs,
			},
		})
	}

	sort.SliceStable(members, func(i, j int) bool {
		return members[i].offset < members[j].offset
	})
	for _, m := range members {
		decl.Members = append(decl.Members, m.member)
	}

	return decl, diags
}

func decodeExport(block *hcl.Block) ([]*hcl.Attribute, hcl.Diagnostics) {
	var b struct {
		Name hcl.Expression `hcl:"Name"`
	}
	diags := gohcl.DecodeBody(block.Body, nil, &b)
	if diags.HasErrors() {
		return nil, diags
	}

	return []*hcl.Attribute{
		{
			Name:      "Name",
			Expr:      b.Name,
			Range:     b.Name.Range(),
			NameRange: b.Name.Range(),
		},
	}, diags
}

// SortedAttributes returns the given attributes ordered by their position in
// the source.
func SortedAttributes(attrs hcl.Attributes) []*hcl.Attribute {
	ret := make([]*hcl.Attribute, 0, len(attrs))
	for _, attr := range attrs {
		ret = append(ret, attr)
	}
	sort.Slice(ret, func(i, j int) bool {
		a, b := ret[i].Range, ret[j].Range
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Start.Byte != b.Start.Byte {
			return a.Start.Byte < b.Start.Byte
		}
		return ret[i].Name < ret[j].Name
	})
	return ret
}

// FindFiles returns the vaporfiles in the given directory, skipping things
// that look like editor temporary files.
func FindFiles(dir string) ([]string, error) {
	infos, err := ioutil.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ret []string
	for _, info := range infos {
		name := info.Name()
		switch {
		case info.IsDir():
			continue
		case !strings.HasSuffix(name, Extension):
			continue
		case strings.HasPrefix(name, "#") && strings.HasSuffix(name, "#"):
			continue
		case strings.HasPrefix(name, "."):
			continue
		}
		ret = append(ret, filepath.Join(dir, name))
	}
	return ret, nil
}

// ResolvePath finds the vaporfile that the given name refers to. A name is
// tried as given and then with the vaporfile extension, first relative to
// the working directory and then in each of the search directories. The
// result is empty if no such file exists.
func ResolvePath(name string, searchDirs ...string) string {
	candidates := []string{name}
	if filepath.Ext(name) == "" {
		candidates = append(candidates, name+Extension)
	}

	dirs := append([]string{""}, searchDirs...)
	for _, dir := range dirs {
		if dir != "" && filepath.IsAbs(name) {
			break
		}
		for _, candidate := range candidates {
			path := candidate
			if dir != "" {
				path = filepath.Join(dir, candidate)
			}
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

var fileRootSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{
			Name: "Description",
		},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{
			Type:       "Task",
			LabelNames: []string{"name"},
		},
		{
			Type: "Recipe",
		},
	},
}

var taskSchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{
			Name: "Description",
		},
		{
			Name: "Version",
		},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{
			Type:       string(ParameterDecl),
			LabelNames: []string{"name"},
		},
		{
			Type:       string(MappingDecl),
			LabelNames: []string{"name"},
		},
		{
			Type:       string(ResourceDecl),
			LabelNames: []string{"logical id"},
		},
		{
			Type:       string(OutputDecl),
			LabelNames: []string{"name"},
		},
	},
}

var declSchemas = map[DeclKind]*hcl.BodySchema{
	ParameterDecl: {
		Attributes: []hcl.AttributeSchema{
			{Name: "Type"},
			{Name: "Description"},
			{Name: "Default"},
			{Name: "AllowedPattern"},
			{Name: "AllowedValues"},
			{Name: "ConstraintDescription"},
			{Name: "MinLength"},
			{Name: "MaxLength"},
			{Name: "MinValue"},
			{Name: "MaxValue"},
			{Name: "NoEcho"},
		},
	},
	ResourceDecl: {
		Attributes: []hcl.AttributeSchema{
			{Name: "Type"},
			{Name: "DependsOn"},
			{Name: "Condition"},
			{Name: "DeletionPolicy"},
			{Name: "CreationPolicy"},
			{Name: "UpdatePolicy"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "Properties"},
			{Type: "Metadata"},
		},
	},
	OutputDecl: {
		Attributes: []hcl.AttributeSchema{
			{Name: "Description"},
			{Name: "Value"},
			{Name: "Condition"},
		},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "Export"},
		},
	},
}
