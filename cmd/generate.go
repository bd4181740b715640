package cmd

import (
	"io/ioutil"
	"os"

	"github.com/spf13/cobra"

	"github.com/ohtomi/aws-cloudformation-generator/generator"
	"github.com/ohtomi/aws-cloudformation-generator/logging"
	"github.com/ohtomi/aws-cloudformation-generator/plugin"
	"github.com/ohtomi/aws-cloudformation-generator/settings"
	"github.com/ohtomi/aws-cloudformation-generator/vaporfile"
)

var (
	generateCmdConstantsFiles []string
	generateCmdContrib        string
	generateCmdRecipes        []string
	generateCmdFormat         string
	generateCmdOutput         string
)

// generateCmd represents the generate command
var generateCmd = &cobra.Command{
	Use:   "generate <vaporfile> [task]",
	Short: "Generate a CloudFormation template",
	Long: `Generate a CloudFormation template by running a task of a vaporfile.

The vaporfile is either the name of a template built into aws-vapor, such as
"sample", or the path of a vaporfile with or without its .vapor extension.
The task defaults to "generate".

Each --recipe is then applied to the template in order. Recipes that are not
found relative to the working directory are looked up in the contrib
directory, which is given by --contrib, by the AWS_VAPOR_CONTRIB environment
variable or by the defaults.contrib setting.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := logging.FromContext(cmd.Context())

		format, err := generator.ParseFormat(generateCmdFormat)
		if err != nil {
			return err
		}

		constants, diags := parser.ParseValuesFiles(generateCmdConstantsFiles...)
		if diags.HasErrors() {
			printDiagnostics(diags)
			return errDiagnostics
		}

		tasks := &vaporfile.Loader{Parser: parser, Constants: constants, Logger: logger}
		recipes := &vaporfile.Loader{Parser: parser, Constants: constants, Logger: logger}

		// Settings are only consulted when there are recipes to look up.
		if len(generateCmdRecipes) > 0 {
			contrib, err := resolveContrib(generateCmdContrib)
			if err != nil {
				return err
			}
			logger.Debug("resolved contrib directory", "contrib", contrib)
			if contrib != "" {
				recipes.SearchDirs = []string{contrib}
			}
		}

		g := &generator.Generator{
			Tasks:   plugin.Chain{plugin.Default, tasks},
			Recipes: plugin.Chain{plugin.Default, recipes},
		}
		req := generator.Request{
			Vaporfile: args[0],
			Recipes:   generateCmdRecipes,
			Format:    format,
		}
		if len(args) > 1 {
			req.Task = args[1]
		}

		out, err := g.Generate(cmd.Context(), req)
		if err != nil {
			return diagnosticsOf(err)
		}

		// If we didn't error out above then we might still have some warnings
		// to print here.
		diags = append(diags, tasks.Warnings()...)
		diags = append(diags, recipes.Warnings()...)
		printDiagnostics(diags)

		if generateCmdOutput == "" || generateCmdOutput == "-" {
			_, err = os.Stdout.Write(out)
			return err
		}
		logger.Info("writing template", "path", generateCmdOutput)
		return ioutil.WriteFile(generateCmdOutput, out, 0644)
	},
}

// resolveContrib returns the contrib directory from the flag, falling back
// to the settings store, which already applies the environment override.
func resolveContrib(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	store, err := settings.NewStore()
	if err != nil {
		return "", err
	}
	return store.Get("defaults", "contrib", "")
}

func init() {
	generateCmd.Flags().StringSliceVarP(&generateCmdConstantsFiles, "constants", "c", nil, "read the Const object from values files (.vapor, .hcl, .json, .jsonc or .env)")
	generateCmd.Flags().StringVar(&generateCmdContrib, "contrib", "", "directory to look up recipes in")
	generateCmd.Flags().StringSliceVar(&generateCmdRecipes, "recipe", nil, "recipe to apply to the generated template; may be repeated")
	generateCmd.Flags().StringVarP(&generateCmdFormat, "format", "f", string(generator.JSON), "output format, json or yaml")
	generateCmd.Flags().StringVarP(&generateCmdOutput, "output", "o", "", "write the template to this file instead of stdout")
	rootCmd.AddCommand(generateCmd)
}
