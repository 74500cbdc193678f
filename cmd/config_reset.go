package cmd

import (
	"fmt"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset [label]",
	Short: "Overwrite a profile (the active one by default) with built-in defaults",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()

		var (
			path string
			err  error
		)
		if len(args) == 1 {
			path, err = store.PathByLabel(args[0])
		} else {
			path, err = store.ActiveConfigPath()
		}
		if err != nil {
			return err
		}

		if err := config.SaveYAML(config.DefaultConfig(), path); err != nil {
			return fmt.Errorf("failed to write defaults: %w", err)
		}

		fmt.Printf("Restored defaults in %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configResetCmd)
}
