package cmd

import (
	"errors"
	"fmt"

	"github.com/brogergvhs/parkdl/internal/config"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

var configSwitchCmd = &cobra.Command{
	Use:   "switch [label]",
	Short: "Make another profile active; without a label, pick one interactively",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()

		label := ""
		if len(args) == 1 {
			label = args[0]
		} else {
			picked, err := pickProfile(store)
			if err != nil {
				return err
			}
			label = picked
		}

		if err := store.Switch(label); err != nil {
			return err
		}

		fmt.Printf("Active profile: %s\n", label)
		return nil
	},
}

func pickProfile(store config.Store) (string, error) {
	profiles, err := store.List()
	if err != nil {
		return "", err
	}
	if len(profiles) == 0 {
		return "", errors.New("no profiles yet, run `parkdl config init`")
	}

	cursor := 0
	for i, p := range profiles {
		if p.Active {
			cursor = i
		}
	}

	sel := promptui.Select{
		Label: "Profile",
		Items: profiles,
		Templates: &promptui.SelectTemplates{
			Active:   `▸ {{ .Label | cyan }}{{ if .Active }} (active){{ end }}`,
			Inactive: `  {{ .Label }}{{ if .Active }} (active){{ end }}`,
			Selected: `{{ .Label }}`,
		},
		CursorPos: cursor,
	}

	idx, _, err := sel.Run()
	if err != nil {
		return "", fmt.Errorf("no profile selected: %w", err)
	}

	return profiles[idx].Label, nil
}

func init() {
	configCmd.AddCommand(configSwitchCmd)
}
