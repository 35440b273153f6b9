package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stgm/chantier/internal/output"
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search construction projects by name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return searchRun(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
}

func searchRun(cmd *cobra.Command, query string) error {
	client := getClient()
	results, err := client.SearchProjects(cmd.Context(), query)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		ui.Info("Aucun projet trouvé pour %q", query)
		return nil
	}

	s, err := getStore()
	if err != nil {
		return err
	}

	table := ui.Table([]string{"ID", "Projet", ""})
	for _, r := range results {
		id := r.ID.String()
		marker := ""
		if saved, _ := s.HasReport(cmd.Context(), id); saved {
			marker = output.Green("Enregistré")
		}
		table.Append([]string{id, r.Text, marker})
	}
	return table.Render()
}
