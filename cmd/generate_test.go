package cmd

import (
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ohtomi/aws-cloudformation-generator/generator"
	"github.com/ohtomi/aws-cloudformation-generator/plugin"
)

const testStack = `Description = "VPC"

Task "generate" {
  Resource "VPC" {
    Type = "AWS::EC2::VPC"
  }
}

Task "subnet" {
  Resource "Subnet" {
    Type = "AWS::EC2::Subnet"
  }
}
`

const testRecipe = `Recipe {
  Output "VpcId" {
    Value = Resource.VPC
  }
}
`

const vpcJSON = `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Description": "VPC",
  "Resources": {
    "VPC": {
      "Type": "AWS::EC2::VPC"
    }
  }
}
`

const vpcOutputsYAML = `AWSTemplateFormatVersion: "2010-09-09"
Description: VPC
Resources:
  VPC:
    Type: AWS::EC2::VPC
Outputs:
  VpcId:
    Value:
      Ref: VPC
`

func writeFile(t *testing.T, path, src string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(path, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}
}

func resetGenerateFlags() {
	generateCmdConstantsFiles = nil
	generateCmdContrib = ""
	generateCmdRecipes = nil
	generateCmdFormat = string(generator.JSON)
	generateCmdOutput = ""
}

func TestGenerateCommand(t *testing.T) {
	tests := map[string]struct {
		// args are given after the vaporfile path; "-o out" is always added.
		args []string
		// contrib is where the recipe is placed: "flag", "env" or "settings".
		contrib string
		want    string
		wantErr error
	}{
		"default task": {
			want: vpcJSON,
		},
		"named task": {
			args: []string{"subnet"},
			want: `{
  "AWSTemplateFormatVersion": "2010-09-09",
  "Description": "VPC",
  "Resources": {
    "Subnet": {
      "Type": "AWS::EC2::Subnet"
    }
  }
}
`,
		},
		"yaml with recipe in contrib flag": {
			args:    []string{"--recipe", "outputs", "--format", "yaml"},
			contrib: "flag",
			want:    vpcOutputsYAML,
		},
		"contrib from environment": {
			args:    []string{"--recipe", "outputs", "-f", "yml"},
			contrib: "env",
			want:    vpcOutputsYAML,
		},
		"contrib from legacy settings file": {
			args:    []string{"--recipe", "outputs", "--format", "yaml"},
			contrib: "settings",
			want:    vpcOutputsYAML,
		},
		"missing task": {
			args:    []string{"nonexistent"},
			wantErr: plugin.ErrMissingEntryPoint,
		},
		"recipe not found": {
			args:    []string{"--recipe", "outputs"},
			wantErr: plugin.ErrNotFound,
		},
	}

	for name, test := range tests {
		t.Run(name, func(t *testing.T) {
			root := t.TempDir()
			home := filepath.Join(root, "home")
			work := filepath.Join(root, "work")
			contrib := filepath.Join(root, "contrib")

			writeFile(t, filepath.Join(work, "stack.vapor"), testStack)
			writeFile(t, filepath.Join(contrib, "outputs.vapor"), testRecipe)
			// A directory named like the local settings file must not
			// get in the way.
			if err := os.MkdirAll(filepath.Join(work, "config"), 0755); err != nil {
				t.Fatal(err)
			}
			if err := os.MkdirAll(home, 0755); err != nil {
				t.Fatal(err)
			}

			t.Setenv("HOME", home)
			t.Setenv("AWS_VAPOR_CONTRIB", "")
			wd, wdErr := os.Getwd()
			if wdErr != nil {
				t.Fatal(wdErr)
			}
			if err := os.Chdir(work); err != nil {
				t.Fatal(err)
			}
			t.Cleanup(func() { os.Chdir(wd) })
			resetGenerateFlags()
			t.Cleanup(resetGenerateFlags)

			args := []string{"generate", filepath.Join(work, "stack.vapor")}
			args = append(args, test.args...)
			switch test.contrib {
			case "flag":
				args = append(args, "--contrib", contrib)
			case "env":
				t.Setenv("AWS_VAPOR_CONTRIB", contrib)
			case "settings":
				writeFile(t, filepath.Join(home, ".aws-vapor", "config"), "[defaults]\ncontrib = "+contrib+"\n")
			}
			out := filepath.Join(root, "out")
			args = append(args, "-o", out)

			rootCmd.SetArgs(args)
			err := rootCmd.Execute()

			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("wrong error %v; want %v", err, test.wantErr)
				}
				if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
					t.Error("template was written despite the error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %s", err)
			}
			got, err := ioutil.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, string(got)); diff != "" {
				t.Errorf("wrong template (-want +got):\n%s", diff)
			}
		})
	}
}
