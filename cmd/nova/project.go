package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

var (
	projectWait      bool
	projectTimeout   time.Duration
	projectFull      bool
	projectOlderThan time.Duration
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Create and manage company-mode projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <brief>",
	Short: "Create a project from a brief",
	Long: `Create a project from a free-text brief. The team decomposes it into
sub-tasks and works through them in dependency order.

Requires company mode. Without --wait the command returns once the project
is created; unfinished work is picked up by 'nova project resume' or the
interactive shell.`,
	Args: cobra.MinimumNArgs(1),
	RunE: withCore(runProjectCreate),
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE:  withCore(runProjectList),
}

var projectShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a project (default: the active project)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withCore(runProjectShow),
}

var projectCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a project (default: the active project)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withCore(runProjectCancel),
}

var projectResumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume interrupted projects and wait for them",
	Args:  cobra.NoArgs,
	RunE:  withCore(runProjectResume),
}

var projectPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete completed and failed projects",
	Long: `Delete completed and failed projects that have not been updated within
--older-than. Active and interrupted projects are never purged.`,
	Args: cobra.NoArgs,
	RunE: withCore(runProjectPurge),
}

func init() {
	projectCreateCmd.Flags().BoolVar(&projectWait, "wait", false, "Wait for the project to finish")
	projectCreateCmd.Flags().DurationVar(&projectTimeout, "timeout", 0, "Give up waiting after this long (0 waits forever)")
	projectResumeCmd.Flags().DurationVar(&projectTimeout, "timeout", 0, "Give up waiting after this long (0 waits forever)")
	projectShowCmd.Flags().BoolVar(&projectFull, "full", false, "Print every sub-task output")
	projectPurgeCmd.Flags().DurationVar(&projectOlderThan, "older-than", 30*24*time.Hour, "Only purge projects idle for longer than this")

	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectCancelCmd)
	projectCmd.AddCommand(projectResumeCmd)
	projectCmd.AddCommand(projectPurgeCmd)
}

func waitContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if projectTimeout > 0 {
		return context.WithTimeout(ctx, projectTimeout)
	}
	return context.WithCancel(ctx)
}

func runProjectCreate(cmd *cobra.Command, args []string, c *core.Core) error {
	p, err := c.ProjectCreate(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}
	if !projectWait {
		return emit(p, func() {
			printStatus("✓", fmt.Sprintf("Created project %s (%s)", p.Name, p.ID), color.FgGreen)
			fmt.Fprintln(stdout, mutedStyle.Render("Follow it with: nova project show "+p.ID))
		})
	}

	if !jsonOutput {
		printStatus("…", fmt.Sprintf("Project %s (%s) is running", p.Name, p.ID), color.FgCyan)
	}
	ctx, cancel := waitContext(cmd.Context())
	defer cancel()
	done, err := c.ProjectWait(ctx, p.ID)
	if err != nil {
		return err
	}
	return emit(done, func() { printProject(done) })
}

func runProjectList(cmd *cobra.Command, args []string, c *core.Core) error {
	rows, err := c.ProjectList(cmd.Context())
	if err != nil {
		return err
	}
	return emit(rows, func() {
		if len(rows) == 0 {
			fmt.Fprintln(stdout, "No projects.")
			return
		}
		printSummaries(rows)
	})
}

func runProjectShow(cmd *cobra.Command, args []string, c *core.Core) error {
	p, err := c.ProjectShow(cmd.Context(), optionalArg(args))
	if err != nil {
		return err
	}
	return emit(p, func() { printProject(p) })
}

func runProjectCancel(cmd *cobra.Command, args []string, c *core.Core) error {
	p, err := c.ProjectCancel(cmd.Context(), optionalArg(args))
	if err != nil {
		return err
	}
	return emit(p, func() {
		printStatus("✓", fmt.Sprintf("Cancelled project %s (%s)", p.Name, p.ID), color.FgYellow)
	})
}

func runProjectResume(cmd *cobra.Command, args []string, c *core.Core) error {
	interrupted, err := c.ProjectInterrupted(cmd.Context())
	if err != nil {
		return err
	}
	ids, err := c.ProjectResume(cmd.Context())
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		return emit([]*models.Project{}, func() { fmt.Fprintln(stdout, "No interrupted projects.") })
	}

	left := make(map[string]state.InterruptedProject, len(interrupted))
	for _, ip := range interrupted {
		left[ip.ID] = ip
	}
	ctx, cancel := waitContext(cmd.Context())
	defer cancel()
	var done []*models.Project
	for _, id := range ids {
		if !jsonOutput {
			msg := "Resuming " + id
			if ip, ok := left[id]; ok {
				msg = fmt.Sprintf("Resuming %s (%s): %d pending, %d restarted mid-call",
					ip.Name, id, ip.Pending, ip.Running)
			}
			printStatus("…", msg, color.FgCyan)
		}
		p, err := c.ProjectWait(ctx, id)
		if err != nil {
			return err
		}
		done = append(done, p)
	}
	return emit(done, func() {
		for _, p := range done {
			printProject(p)
		}
	})
}

func runProjectPurge(cmd *cobra.Command, args []string, c *core.Core) error {
	n, err := c.ProjectPurge(cmd.Context(), projectOlderThan)
	if err != nil {
		return err
	}
	result := struct {
		Purged int64 `json:"purged"`
	}{n}
	return emit(result, func() {
		printStatus("✓", fmt.Sprintf("Purged %d finished projects older than %s", n, projectOlderThan), color.FgGreen)
	})
}

func optionalArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func statusColor(s models.SubTaskStatus) color.Attribute {
	switch s {
	case models.SubTaskCompleted:
		return color.FgGreen
	case models.SubTaskFailed:
		return color.FgRed
	case models.SubTaskRunning:
		return color.FgCyan
	case models.SubTaskSkipped:
		return color.FgYellow
	default:
		return color.FgWhite
	}
}

func printProject(p *models.Project) {
	fmt.Fprintf(stdout, "%s %s\n", titleStyle.Render(p.Name), mutedStyle.Render("("+p.ID+")"))
	fmt.Fprintf(stdout, "State:    %s\n", p.State)
	fmt.Fprintf(stdout, "Progress: %s  %s\n", percent(p.Progress()), p.Health())
	fmt.Fprintf(stdout, "Brief:    %s\n", p.Brief)
	if p.FailureReason != "" {
		printStatus("✗", "Failed: "+p.FailureReason, color.FgRed)
	}
	if len(p.SubTasks) == 0 {
		return
	}

	rows := make([][]string, 0, len(p.SubTasks))
	for _, st := range p.SubTasks {
		deps := make([]string, len(st.DependsOn))
		for i, d := range st.DependsOn {
			deps[i] = fmt.Sprintf("%d", d)
		}
		title := st.Title
		if st.Optional {
			title += " (optional)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", st.Index),
			title,
			st.Persona,
			string(st.Role),
			st.Model,
			color.New(statusColor(st.Status)).Sprint(string(st.Status)),
			strings.Join(deps, ","),
		})
	}
	printTable([]string{"#", "SUB-TASK", "PERSONA", "ROLE", "MODEL", "STATUS", "AFTER"}, rows)

	if !projectFull {
		return
	}
	for _, st := range p.SubTasks {
		if st.Output == "" && st.Error == "" {
			continue
		}
		fmt.Fprintf(stdout, "\n%s\n", titleStyle.Render(fmt.Sprintf("## %s (%s)", st.Title, st.Persona)))
		if st.Error != "" {
			fmt.Fprintln(stdout, color.RedString(st.Error))
			continue
		}
		fmt.Fprintln(stdout, st.Output)
	}
}
