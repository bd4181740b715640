package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/hashicorp/hcl2/hcl"
	"github.com/hashicorp/hcl2/hclwrite"
	"github.com/spf13/cobra"

	"github.com/ohtomi/aws-cloudformation-generator/config"
	"github.com/ohtomi/aws-cloudformation-generator/logging"
)

var fmtCheckOnly bool

var errNotCanonical = errors.New("some files are not canonically formatted")

// fmtCmd represents the fmt command
var fmtCmd = &cobra.Command{
	Use:   "fmt [source-dirs-or-files...]",
	Short: "Rewrite vaporfiles to canonical formatting",
	Long: `Rewrite vaporfiles so that they use the canonical layout for block
nesting and attribute alignment.

- If a specific vaporfile is given, that file is rewritten in-place.
- If a directory is given, .vapor files in that directory are rewritten
  in-place.
- If no arguments are given, all .vapor files in the current directory are
  rewritten in-place.
- If the arguments are literally "-" then the vaporfile will be read from stdin
  and the result will be written to stdout. This cannot be mixed with any other
  arguments.

With --check-only no files are modified. Instead the names of the files that
are not canonically formatted are printed and the exit status is 1.

If any of the inputs contain syntax errors then diagnostic information will be
printed to stderr and exit status is 1. If multiple inputs are provided, some
may already have been updated by the time errors are returned.
`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.FromContext(cmd.Context())

		if len(args) == 1 && args[0] == "-" {
			src, err := ioutil.ReadAll(os.Stdin)
			if err != nil {
				return err
			}
			out, diags := formatSource(src, "<stdin>")
			if diags.HasErrors() {
				printDiagnostics(diags)
				return errDiagnostics
			}
			if fmtCheckOnly {
				if !bytes.Equal(src, out) {
					return errNotCanonical
				}
				return nil
			}
			_, err = os.Stdout.Write(out)
			return err
		}

		if len(args) == 0 {
			args = []string{"."}
		}
		var filenames []string
		for _, arg := range args {
			if arg == "-" {
				return fmt.Errorf(`"-" cannot be mixed with other arguments`)
			}
			info, err := os.Stat(arg)
			if err != nil {
				return err
			}
			if !info.IsDir() {
				filenames = append(filenames, arg)
				continue
			}
			found, err := config.FindFiles(arg)
			if err != nil {
				return err
			}
			filenames = append(filenames, found...)
		}

		changed, diags, err := formatFiles(filenames, fmtCheckOnly, os.Stdout)
		if diags.HasErrors() {
			printDiagnostics(diags)
			return errDiagnostics
		}
		if err != nil {
			return err
		}
		logger.Debug("formatted vaporfiles", "files", len(filenames), "changed", len(changed))
		if fmtCheckOnly && len(changed) > 0 {
			return errNotCanonical
		}
		return nil
	},
}

// formatSource returns the canonical formatting of src, or error diagnostics
// if it is not valid HCL.
func formatSource(src []byte, filename string) ([]byte, hcl.Diagnostics) {
	_, diags := parser.HCLParser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, diags
	}
	return hclwrite.Format(src), diags
}

// formatFiles formats each file in place, or only reports it when checkOnly
// is set, and returns the names of the files that were not canonical. Each
// of those names is written to w.
func formatFiles(filenames []string, checkOnly bool, w io.Writer) ([]string, hcl.Diagnostics, error) {
	var diags hcl.Diagnostics
	var changed []string

	for _, filename := range filenames {
		src, err := ioutil.ReadFile(filename)
		if err != nil {
			return changed, diags, err
		}
		out, fileDiags := formatSource(src, filename)
		diags = append(diags, fileDiags...)
		if fileDiags.HasErrors() || bytes.Equal(src, out) {
			continue
		}

		changed = append(changed, filename)
		fmt.Fprintln(w, filename)
		if checkOnly {
			continue
		}
		if err := ioutil.WriteFile(filename, out, 0644); err != nil {
			return changed, diags, err
		}
	}
	return changed, diags, nil
}

func init() {
	fmtCmd.Flags().BoolVarP(
		&fmtCheckOnly,
		"check-only", "c",
		false,
		"don't modify any files; instead, exit status 1 if non-canonical",
	)
	rootCmd.AddCommand(fmtCmd)
}
