package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportFile string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Manage inspection report form data",
	Long: `Manage the report form data of a project.

Data is saved both to the backend session store and to the local
database, so a report survives backend session expiry.`,
}

var reportSaveCmd = &cobra.Command{
	Use:   "save [project-id]",
	Short: "Save report form data from a YAML file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProject(args)
		if err != nil {
			return err
		}
		return reportSaveRun(cmd, projectID)
	},
}

var reportLoadCmd = &cobra.Command{
	Use:   "load [project-id]",
	Short: "Show saved report form data",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProject(args)
		if err != nil {
			return err
		}
		return reportLoadRun(cmd, projectID)
	},
}

var reportListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects with a locally saved report",
	RunE: func(cmd *cobra.Command, args []string) error {
		return reportListRun(cmd)
	},
}

var reportDeleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete the locally saved report of a project",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProject(args)
		if err != nil {
			return err
		}
		return reportDeleteRun(cmd, projectID)
	},
}

var reportPDFCmd = &cobra.Command{
	Use:   "pdf [project-id]",
	Short: "Print the PDF generation URL for a project",
	Long: `Print the URL that generates the project's report PDF.

Any locally saved report data is pushed to the backend first so the
generated document reflects it. The URL triggers a download, so it is
opened in a browser rather than fetched here.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		projectID, err := resolveProject(args)
		if err != nil {
			return err
		}
		return reportPDFRun(cmd, projectID)
	},
}

func init() {
	reportSaveCmd.Flags().StringVarP(&reportFile, "file", "f", "", "YAML file with report form data (required)")
	_ = reportSaveCmd.MarkFlagRequired("file")

	reportCmd.AddCommand(reportSaveCmd)
	reportCmd.AddCommand(reportLoadCmd)
	reportCmd.AddCommand(reportListCmd)
	reportCmd.AddCommand(reportDeleteCmd)
	reportCmd.AddCommand(reportPDFCmd)
	rootCmd.AddCommand(reportCmd)
}

func reportSaveRun(cmd *cobra.Command, projectID string) error {
	data, err := os.ReadFile(reportFile)
	if err != nil {
		return fmt.Errorf("read report file: %w", err)
	}

	var payload map[string]any
	if err := yaml.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parse report file: %w", err)
	}

	s, err := getStore()
	if err != nil {
		return err
	}
	if _, err := s.SaveReport(cmd.Context(), projectID, payload); err != nil {
		return err
	}
	ui.Success("Rapport enregistré localement pour %s", projectID)

	client := getClient()
	if err := client.SaveReportData(cmd.Context(), projectID, payload); err != nil {
		ui.Warning("Enregistrement côté serveur échoué : %v", err)
		return nil
	}
	ui.Success("Rapport enregistré sur le serveur")
	return nil
}

func reportLoadRun(cmd *cobra.Command, projectID string) error {
	client := getClient()

	payload, err := client.LoadReportData(cmd.Context(), projectID)
	if err != nil || len(payload) == 0 {
		if err != nil {
			ui.VerboseLog("chargement serveur échoué : %v", err)
		}
		s, serr := getStore()
		if serr != nil {
			return serr
		}
		r, rerr := s.GetReport(cmd.Context(), projectID)
		if rerr != nil {
			if err != nil {
				return fmt.Errorf("load report: %w", err)
			}
			return fmt.Errorf("no report data for %s", projectID)
		}
		ui.Info("Rapport chargé depuis la copie locale (%s)", r.UpdatedAt.Format("2006-01-02 15:04"))
		payload = r.Payload
	}

	out, err := yaml.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode report data: %w", err)
	}
	fmt.Fprint(ui.Out, string(out))
	return nil
}

func reportListRun(cmd *cobra.Command) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	ids, err := s.ListReportProjects(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		ui.Info("Aucun rapport enregistré")
		return nil
	}

	table := ui.Table([]string{"Projet", "Modifié"})
	for _, id := range ids {
		r, err := s.GetReport(cmd.Context(), id)
		if err != nil {
			continue
		}
		table.Append([]string{id, r.UpdatedAt.Format("2006-01-02 15:04")})
	}
	return table.Render()
}

func reportDeleteRun(cmd *cobra.Command, projectID string) error {
	s, err := getStore()
	if err != nil {
		return err
	}
	if err := s.DeleteReport(cmd.Context(), projectID); err != nil {
		return err
	}
	ui.Success("Rapport supprimé : %s", projectID)
	return nil
}

func reportPDFRun(cmd *cobra.Command, projectID string) error {
	client := getClient()

	// Push any local copy so the document reflects it. Best-effort.
	if s, err := getStore(); err == nil {
		if r, err := s.GetReport(cmd.Context(), projectID); err == nil {
			if err := client.SaveReportData(cmd.Context(), projectID, r.Payload); err != nil {
				ui.Warning("Synchronisation du rapport échouée : %v", err)
			}
		}
	}

	fmt.Fprintln(ui.Out, client.PDFURL(projectID))
	return nil
}
