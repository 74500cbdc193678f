package cmd

import (
	"fmt"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <label> <new_label>",
	Short: "Give a profile a new label, keeping it active if it was",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		if from == config.DefaultLabel {
			return fmt.Errorf("the %s profile keeps its label, copy it with `parkdl config add` instead", config.DefaultLabel)
		}

		if err := config.DefaultStore().Rename(from, to); err != nil {
			return err
		}

		fmt.Printf("Profile %q is now %q\n", from, to)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
