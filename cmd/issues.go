package cmd

import (
	"github.com/spf13/cobra"

	"github.com/stgm/chantier/internal/controller"
	"github.com/stgm/chantier/internal/history"
	"github.com/stgm/chantier/internal/output"
)

var issuesNoHistory bool

var issuesCmd = &cobra.Command{
	Use:   "issues [project-id]",
	Short: "List open issues of a project with statuses and histories",
	Long: `List the observations, instructions, and deficiencies of a project.

Issues are shown with their workflow status, assignee, sheet, and
creation date. Closed issues are excluded. Each issue's comment
history and best image follow unless --no-history is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProject(args)
		if err != nil {
			return err
		}
		return issuesRun(cmd, projectID)
	},
}

func init() {
	issuesCmd.Flags().BoolVar(&issuesNoHistory, "no-history", false, "Skip per-issue history output")
	rootCmd.AddCommand(issuesCmd)
}

func issuesRun(cmd *cobra.Command, projectID string) error {
	client := getClient()

	cards := output.NewCardRenderer(ui, nil)
	var renderer controller.Renderer = cards
	if issuesNoHistory {
		renderer = cardsOnly{cards}
	}

	ctrl := controller.New(client, renderer)
	cards.Resolve = ctrl.Resolve

	ui.Info("Chargement du projet %s...", projectID)
	if err := ctrl.SelectProject(cmd.Context(), projectID); err != nil {
		ui.Warning("Statuts du projet indisponibles, utilisation des statuts standards (%v)", err)
	}
	return nil
}

// cardsOnly silences history callbacks, keeping issue cards only.
type cardsOnly struct {
	*output.CardRenderer
}

func (cardsOnly) HistoryReady(string, []history.Event, string) {}
func (cardsOnly) HistoryError(string, error)                   {}
