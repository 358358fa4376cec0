package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/project"
)

var companyCmd = &cobra.Command{
	Use:   "company",
	Short: "Show the company dashboard",
	Long: `Show active, completed and failed projects with progress, health
and team utilization.`,
	Args: cobra.NoArgs,
	RunE: withCore(runCompany),
}

func runCompany(cmd *cobra.Command, args []string, c *core.Core) error {
	d, err := c.Dashboard(cmd.Context())
	if err != nil {
		return err
	}
	return emit(d, func() { printDashboard(d) })
}

func printDashboard(d project.Dashboard) {
	fmt.Fprintln(stdout, titleStyle.Render("Company Dashboard"))
	fmt.Fprintf(stdout, "Projects:    %d active, %d completed, %d failed\n", d.Active, d.Completed, d.Failed)
	fmt.Fprintf(stdout, "Agents:      %d\n", d.TotalAgents)
	fmt.Fprintf(stdout, "Utilization: %s\n", percent(d.Utilization*100))
	if len(d.Projects) == 0 {
		fmt.Fprintln(stdout, mutedStyle.Render("No projects yet. Start one with: nova project create <brief>"))
		return
	}
	printSummaries(d.Projects)
}

func printSummaries(rows []project.Summary) {
	out := make([][]string, 0, len(rows))
	for _, s := range rows {
		out = append(out, []string{
			s.ID,
			s.Name,
			string(s.State),
			percent(s.Progress),
			s.Health,
			fmt.Sprintf("%d", s.TeamSize),
		})
	}
	printTable([]string{"ID", "NAME", "STATE", "PROGRESS", "HEALTH", "TEAM"}, out)
}
