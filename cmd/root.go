package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ohtomi/aws-cloudformation-generator/logging"
	"github.com/ohtomi/aws-cloudformation-generator/settings"
)

var rootLogLevel string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "aws-vapor",
	Short:         "aws-vapor generates AWS CloudFormation templates",
	Long:          longAppDescription,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.ParseLevel(rootLogLevel)
		logger := logging.NewLogger(os.Stderr, level)
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		logger.Debug("logger initialized", "level", level)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	defaultLevel := logging.LevelInfo.String()
	if e, err := settings.LoadEnv(); err == nil && e.LogLevel != "" {
		defaultLevel = e.LogLevel
	}
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", defaultLevel, "log level (debug, info, warn, error)")
}

var longAppDescription = strings.TrimSpace(`
aws-vapor generates AWS CloudFormation templates from vaporfiles, which
declare parameters, mappings, resources and outputs in a readable HCL-based
language, and from templates built into the tool.
`)
