package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ohtomi/aws-cloudformation-generator/logging"
	"github.com/ohtomi/aws-cloudformation-generator/settings"
)

var configGlobal bool

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write aws-vapor settings",
	Long: `Read and write the settings kept in ~/.aws-vapor/config (with --global)
and in ./config. Keys are written as section.key, for example
defaults.contrib.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <section.key>",
	Short: "Print the value of a setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, key, err := splitKey(args[0])
		if err != nil {
			return err
		}
		store, err := settings.NewStore()
		if err != nil {
			return err
		}
		props, err := loadProps(store)
		if err != nil {
			return err
		}
		value, ok := props.Get(section, key)
		if !ok {
			return fmt.Errorf("%s is not set", args[0])
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <section.key> [value]",
	Short: "Set a setting, or remove it if no value is given",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		section, key, err := splitKey(args[0])
		if err != nil {
			return err
		}
		store, err := settings.NewStore()
		if err != nil {
			return err
		}
		props, err := store.LoadScope(configGlobal)
		if err != nil {
			return err
		}
		if len(args) > 1 {
			props.Set(section, key, args[1])
		} else {
			props.Delete(section, key)
		}
		logging.FromContext(cmd.Context()).Debug("saving settings", "path", store.Path(configGlobal))
		return store.Save(props, configGlobal)
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print all settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := settings.NewStore()
		if err != nil {
			return err
		}
		props, err := loadProps(store)
		if err != nil {
			return err
		}
		listProps(cmd.OutOrStdout(), props)
		return nil
	},
}

// loadProps reads only the global file when --global is set, and the merged
// settings otherwise.
func loadProps(store *settings.Store) (settings.Props, error) {
	if configGlobal {
		return store.LoadScope(true)
	}
	return store.Load()
}

func listProps(w io.Writer, props settings.Props) {
	for _, name := range props.Keys() {
		section, key, _ := splitKey(name)
		value, _ := props.Get(section, key)
		fmt.Fprintf(w, "%s = %s\n", name, value)
	}
}

func splitKey(name string) (section, key string, err error) {
	i := strings.Index(name, ".")
	if i <= 0 || i == len(name)-1 {
		return "", "", fmt.Errorf("invalid setting name %q; must be section.key", name)
	}
	return name[:i], name[i+1:], nil
}

func init() {
	configCmd.PersistentFlags().BoolVar(&configGlobal, "global", false, "use the global settings file in ~/"+settings.GlobalDirName)
	configCmd.AddCommand(configGetCmd, configSetCmd, configListCmd)
	rootCmd.AddCommand(configCmd)
}
