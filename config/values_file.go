package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"github.com/zclconf/go-cty/cty"
)

// ParseValuesFiles reads constants from the given files, with later files
// overriding values set by earlier ones. The format of each file is chosen by
// its extension: ".json" and ".jsonc" files are JSON objects (comments and
// trailing commas are allowed), ".env" files are dotenv files whose values
// are all strings, and anything else is parsed as HCL attributes.
func (p *Parser) ParseValuesFiles(filenames ...string) (hcl.Attributes, hcl.Diagnostics) {
	attrs := make(hcl.Attributes)
	var diags hcl.Diagnostics

	for _, filename := range filenames {
		src, err := ioutil.ReadFile(filename)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, hcl.Diagnostics{
					{
						Severity: hcl.DiagError,
						Summary:  "Failed to read values from file",
						Detail:   fmt.Sprintf("The requested file %s does not exist.", filename),
					},
				}
			}
			return nil, hcl.Diagnostics{
				{
					Severity: hcl.DiagError,
					Summary:  "Failed to read values from file",
					Detail:   fmt.Sprintf("There was an error reading %s: %s", filename, err),
				},
			}
		}
		thisAttrs, thisDiags := p.ParseValuesSource(src, filename)
		diags = append(diags, thisDiags...)
		for k, v := range thisAttrs {
			attrs[k] = v
		}
	}

	return attrs, diags
}

func (p *Parser) ParseValuesSource(src []byte, filename string) (hcl.Attributes, hcl.Diagnostics) {
	var astFile *hcl.File
	var diags hcl.Diagnostics

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".env":
		return parseDotenvValues(src, filename)
	case ".json", ".jsonc":
		// ToJSON blanks out comments rather than removing them, so source
		// ranges in diagnostics still point at the right place.
		astFile, diags = p.HCLParser.ParseJSON(jsonc.ToJSON(src), filename)
	default:
		astFile, diags = p.HCLParser.ParseHCL(src, filename)
	}
	if astFile == nil {
		return make(hcl.Attributes), diags
	}

	attrs, decDiags := astFile.Body.JustAttributes()
	diags = append(diags, decDiags...)
	return attrs, diags
}

func parseDotenvValues(src []byte, filename string) (hcl.Attributes, hcl.Diagnostics) {
	vars, err := godotenv.Unmarshal(string(src))
	if err != nil {
		return make(hcl.Attributes), hcl.Diagnostics{
			{
				Severity: hcl.DiagError,
				Summary:  "Invalid dotenv file",
				Detail:   fmt.Sprintf("There was an error parsing %s: %s", filename, err),
			},
		}
	}

	rng := hcl.Range{
		Filename: filename,
		Start:    hcl.Pos{Line: 1, Column: 1},
		End:      hcl.Pos{Line: 1, Column: 1},
	}
	attrs := make(hcl.Attributes, len(vars))
	for name, value := range vars {
		attrs[name] = &hcl.Attribute{
			Name:      name,
			Expr:      hcl.StaticExpr(cty.StringVal(value), rng),
			Range:     rng,
			NameRange: rng,
		}
	}
	return attrs, nil
}
