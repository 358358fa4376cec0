package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
)

var modelsRefresh bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List backing models and their availability",
	Args:  cobra.NoArgs,
	RunE:  withCore(runModels),
}

func init() {
	modelsCmd.Flags().BoolVar(&modelsRefresh, "refresh", false, "Query the model runtimes before listing")
}

func runModels(cmd *cobra.Command, args []string, c *core.Core) error {
	report := c.Models(cmd.Context(), modelsRefresh)
	return emit(report, func() {
		if report.Warning != "" {
			printStatus("⚠", report.Warning, color.FgYellow)
		}
		rows := make([][]string, 0, len(report.Models))
		for _, m := range report.Models {
			roles := make([]string, len(m.Roles))
			for i, r := range m.Roles {
				roles[i] = string(r)
			}
			tier := "-"
			if m.Tier != 0 {
				tier = fmt.Sprintf("%d", int(m.Tier))
			}
			size := ""
			if m.SizeGB > 0 {
				size = fmt.Sprintf("%.1f GB", m.SizeGB)
			}
			rows = append(rows, []string{m.ID, m.Provider, tier, strings.Join(roles, ","), size, string(m.Status)})
		}
		printTable([]string{"MODEL", "PROVIDER", "TIER", "ROLES", "SIZE", "STATUS"}, rows)
		if report.Credentials != "" {
			fmt.Fprintln(stdout, mutedStyle.Render("Anthropic credentials: "+string(report.Credentials)))
		}
	})
}
