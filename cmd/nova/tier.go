package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

var tierCmd = &cobra.Command{
	Use:   "tier",
	Short: "Show, switch or plan capability tiers",
	Long: `Tiers select which models back each role. Switching is immediate for
new requests; requests already running keep the tier they started with.
Nothing is ever downloaded: 'tier plan' reports what a switch would need.`,
	RunE: withCore(runTierGet),
}

var tierGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show the active tier",
	Args:  cobra.NoArgs,
	RunE:  withCore(runTierGet),
}

var tierSetCmd = &cobra.Command{
	Use:   "set <tier>",
	Short: "Switch the active tier (1-3 or efficient, powerhouse, ultra)",
	Args:  cobra.ExactArgs(1),
	RunE:  withCore(runTierSet),
}

var tierPlanCmd = &cobra.Command{
	Use:   "plan <tier>",
	Short: "Show what switching to a tier would need",
	Args:  cobra.ExactArgs(1),
	RunE:  withCore(runTierPlan),
}

var tierRecommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Suggest the tier this machine's memory can run",
	Long: `Compare installed RAM with the largest model of each tier. A tier fits
when its largest model needs at most 70% of memory.`,
	Args: cobra.NoArgs,
	RunE: withCore(runTierRecommend),
}

func init() {
	tierCmd.AddCommand(tierGetCmd)
	tierCmd.AddCommand(tierSetCmd)
	tierCmd.AddCommand(tierPlanCmd)
	tierCmd.AddCommand(tierRecommendCmd)
}

func runTierGet(cmd *cobra.Command, args []string, c *core.Core) error {
	info := c.TierGet()
	return emit(info, func() { printTierInfo(info) })
}

func runTierSet(cmd *cobra.Command, args []string, c *core.Core) error {
	info, err := c.TierSet(args[0])
	if err != nil {
		return err
	}
	return emit(info, func() {
		printStatus("✓", fmt.Sprintf("Active tier is now %d (%s)", int(info.Active), info.Name), color.FgGreen)
		printTierInfo(info)
	})
}

func runTierPlan(cmd *cobra.Command, args []string, c *core.Core) error {
	plan, err := c.TierPlan(args[0])
	if err != nil {
		return err
	}
	return emit(plan, func() { printPlan(plan) })
}

func runTierRecommend(cmd *cobra.Command, args []string, c *core.Core) error {
	rec, err := c.TierRecommend(cmd.Context())
	if err != nil {
		return err
	}
	active := c.TierGet().Active
	return emit(rec, func() {
		if rec.Fits {
			printStatus("✓", fmt.Sprintf("Tier %d (%s) suits %.1f GB of memory", int(rec.Tier), rec.Name, rec.MemoryGB), color.FgGreen)
		} else {
			printStatus("⚠", fmt.Sprintf("No tier fits %.1f GB of memory; the smallest is tier %d (%s)",
				rec.MemoryGB, int(rec.Tier), rec.Name), color.FgYellow)
		}
		fmt.Fprintf(stdout, "Largest model %.1f GB, budget %.1f GB\n", rec.LargestGB, rec.BudgetGB)
		if rec.Tier != active {
			fmt.Fprintln(stdout, mutedStyle.Render(fmt.Sprintf("Switch with: nova tier set %d", int(rec.Tier))))
		}
	})
}

func printTierInfo(info core.TierInfo) {
	levels := make([]string, len(info.Levels))
	for i, l := range info.Levels {
		levels[i] = fmt.Sprintf("%d", int(l))
	}
	fmt.Fprintf(stdout, "Tier %d (%s), defined tiers: %s\n", int(info.Active), info.Name, strings.Join(levels, ", "))

	rows := make([][]string, 0, len(info.Models))
	for _, role := range models.AllRoles() {
		rows = append(rows, []string{string(role), info.Models[role]})
	}
	printTable([]string{"ROLE", "MODEL"}, rows)
}

func printPlan(plan tiers.MigrationPlan) {
	fmt.Fprintf(stdout, "Switching tier %d → %d\n", int(plan.From), int(plan.To))
	list := func(label string, ids []string) {
		if len(ids) == 0 {
			fmt.Fprintf(stdout, "%-12s %s\n", label, mutedStyle.Render("none"))
			return
		}
		fmt.Fprintf(stdout, "%-12s %s\n", label, strings.Join(ids, ", "))
	}
	list("Shared:", plan.Shared)
	list("Download:", plan.ToDownload)
	list("Removable:", plan.Removable)
	if plan.DownloadGB > 0 {
		fmt.Fprintf(stdout, "Approximate download: %.1f GB\n", plan.DownloadGB)
	}
	if len(plan.ToDownload) > 0 {
		printStatus("⚠", "Install missing models yourself (e.g. ollama pull <model>); nova never downloads.", color.FgYellow)
	}
}
