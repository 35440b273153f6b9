package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var selectCmd = &cobra.Command{
	Use:   "select <project-id>",
	Short: "Set the active project for subsequent commands",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return selectRun(cmd, args[0])
	},
}

var selectShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the active project",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := getStore()
		if err != nil {
			return err
		}
		id, err := s.ActiveProject(cmd.Context())
		if err != nil {
			return err
		}
		if id == "" {
			ui.Info("Aucun projet sélectionné")
			return nil
		}
		fmt.Fprintln(ui.Out, id)
		return nil
	},
}

func init() {
	selectCmd.AddCommand(selectShowCmd)
	rootCmd.AddCommand(selectCmd)
}

func selectRun(cmd *cobra.Command, projectID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	if err := s.SetActiveProject(cmd.Context(), projectID); err != nil {
		return err
	}
	ui.Success("Projet actif : %s", projectID)
	return nil
}
