package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kalambet/newsetl/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		fmt.Fprintf(stdout, "# %s\n", config.ConfigFilePath())
		keys := config.ShowAll(cfg)
		for _, k := range keys {
			mark := ""
			if !k.Default {
				mark = " *"
			}
			fmt.Fprintf(stdout, "  %s = %s  (%s)%s\n", colorize(styleBold, k.Key), k.Value, k.EnvVar, mark)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
