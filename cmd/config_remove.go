package cmd

import (
	"fmt"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var forceRemove bool

var configRemoveCmd = &cobra.Command{
	Use:   "remove <label>",
	Short: "Delete a profile; removing the active one falls back to Default",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		label := args[0]
		store := config.DefaultStore()

		if active, _ := store.CurrentLabel(); label == active && !forceRemove {
			confirm := promptui.Prompt{
				Label:     fmt.Sprintf("%q is the active profile, remove it", label),
				IsConfirm: true,
			}
			if _, err := confirm.Run(); err != nil {
				fmt.Println("Kept", label)
				return nil
			}
		}

		if err := store.Remove(label); err != nil {
			return err
		}

		fmt.Printf("Removed profile %q\n", label)
		return nil
	},
}

func init() {
	configRemoveCmd.Flags().BoolVarP(&forceRemove, "force", "f", false, "remove the active profile without asking")
	configCmd.AddCommand(configRemoveCmd)
}
