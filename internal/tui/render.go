package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func percent(f float64) string {
	return fmt.Sprintf("%.0f%%", f)
}

func renderAnswer(res *core.AskResult) string {
	served := res.Model
	if res.ServedBy != res.Role {
		served = fmt.Sprintf("%s, fallback from %s", res.Model, res.Role)
	}
	return titleStyle.Render(res.Name) + "\n" + res.Output + "\n" +
		mutedStyle.Render(fmt.Sprintf("%s · tier %d · %s", res.Role, int(res.Tier), served))
}

// renderError formats a failed request, including the fallback chain when
// routing gave up.
func renderError(err error) string {
	if errors.Is(err, errUsage) {
		return warnStyle.Render(strings.TrimPrefix(err.Error(), errUsage.Error()+": "))
	}
	var ce *core.CommandError
	if !errors.As(err, &ce) {
		return errStyle.Render("✗ " + err.Error())
	}
	out := errStyle.Render("✗ " + ce.Message)
	if len(ce.Attempted) > 0 {
		steps := make([]string, len(ce.Attempted))
		for i, a := range ce.Attempted {
			steps[i] = a.String()
		}
		out += "\n" + mutedStyle.Render("  attempted: "+strings.Join(steps, " → "))
	}
	if ce.Code == core.CodeModeRequired {
		out += "\n" + mutedStyle.Render("  switch with: /mode <personal|company>")
	}
	return out
}

func renderDashboard(d project.Dashboard) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Company Dashboard") + "\n")
	fmt.Fprintf(&b, "Projects:    %d active, %d completed, %d failed\n", d.Active, d.Completed, d.Failed)
	fmt.Fprintf(&b, "Agents:      %d\n", d.TotalAgents)
	fmt.Fprintf(&b, "Utilization: %s", percent(d.Utilization*100))
	if len(d.Projects) == 0 {
		b.WriteString("\n" + mutedStyle.Render("No projects yet. Type a brief to start one."))
		return b.String()
	}
	b.WriteString("\n" + renderSummaries(d.Projects))
	return b.String()
}

func renderSummaries(rows []project.Summary) string {
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
	return renderTable([]string{"ID", "NAME", "STATE", "PROGRESS", "HEALTH", "TEAM"}, out)
}

func statusStyle(s models.SubTaskStatus) lipgloss.Style {
	switch s {
	case models.SubTaskCompleted:
		return okStyle
	case models.SubTaskFailed:
		return errStyle
	case models.SubTaskRunning:
		return warnStyle
	default:
		return mutedStyle
	}
}

func renderProject(p *models.Project) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", titleStyle.Render(p.Name), mutedStyle.Render("("+p.ID+")"))
	fmt.Fprintf(&b, "State:    %s\n", p.State)
	fmt.Fprintf(&b, "Progress: %s  %s", percent(p.Progress()), p.Health())
	if p.FailureReason != "" {
		b.WriteString("\n" + errStyle.Render("✗ Failed: "+p.FailureReason))
	}
	if len(p.SubTasks) == 0 {
		return b.String()
	}

	rows := make([][]string, 0, len(p.SubTasks))
	for _, st := range p.SubTasks {
		title := st.Title
		if st.Optional {
			title += " (optional)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", st.Index),
			title,
			st.Persona,
			st.Model,
			statusStyle(st.Status).Render(string(st.Status)),
		})
	}
	b.WriteString("\n" + renderTable([]string{"#", "SUB-TASK", "PERSONA", "MODEL", "STATUS"}, rows))

	if n := len(p.Deliverables); n > 0 {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("%d deliverables. Use nova project show --full for their content.", n)))
	}
	return b.String()
}

func renderTeam(members []core.TeamMember) string {
	if len(members) == 0 {
		return "No personas for that role."
	}
	rows := make([][]string, 0, len(members))
	for _, m := range members {
		status := okStyle.Render(string(m.Status))
		if m.Status != models.ModelAvailable {
			status = errStyle.Render(string(m.Status))
		}
		rows = append(rows, []string{m.Key, m.Name, m.Title, string(m.Role), m.Model, status})
	}
	return renderTable([]string{"KEY", "NAME", "TITLE", "ROLE", "MODEL", "STATUS"}, rows)
}

func renderTier(info core.TierInfo) string {
	levels := make([]string, len(info.Levels))
	for i, l := range info.Levels {
		levels[i] = fmt.Sprintf("%d", int(l))
	}
	head := fmt.Sprintf("Tier %d (%s), defined tiers: %s", int(info.Active), info.Name, strings.Join(levels, ", "))

	rows := make([][]string, 0, len(info.Models))
	for _, role := range models.AllRoles() {
		rows = append(rows, []string{string(role), info.Models[role]})
	}
	return head + "\n" + renderTable([]string{"ROLE", "MODEL"}, rows)
}

func renderPlan(plan tiers.MigrationPlan) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Switching tier %d → %d\n", int(plan.From), int(plan.To))
	list := func(label string, ids []string) {
		if len(ids) == 0 {
			fmt.Fprintf(&b, "%-12s %s\n", label, mutedStyle.Render("none"))
			return
		}
		fmt.Fprintf(&b, "%-12s %s\n", label, strings.Join(ids, ", "))
	}
	list("Shared:", plan.Shared)
	list("Download:", plan.ToDownload)
	list("Removable:", plan.Removable)
	if plan.DownloadGB > 0 {
		fmt.Fprintf(&b, "Approximate download: %.1f GB\n", plan.DownloadGB)
	}
	if len(plan.ToDownload) > 0 {
		b.WriteString(warnStyle.Render("⚠ Install missing models yourself; nova never downloads."))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderRecommendation(rec tiers.Recommendation, active models.Tier) string {
	var b strings.Builder
	if rec.Fits {
		fmt.Fprintf(&b, "Tier %d (%s) suits %.1f GB of memory.\n", int(rec.Tier), rec.Name, rec.MemoryGB)
	} else {
		b.WriteString(warnStyle.Render(fmt.Sprintf("⚠ No tier fits %.1f GB of memory; the smallest is tier %d (%s).",
			rec.MemoryGB, int(rec.Tier), rec.Name)) + "\n")
	}
	fmt.Fprintf(&b, "Largest model %.1f GB, budget %.1f GB", rec.LargestGB, rec.BudgetGB)
	if rec.Tier != active {
		b.WriteString("\n" + mutedStyle.Render(fmt.Sprintf("Switch with /tier %d.", int(rec.Tier))))
	}
	return b.String()
}

// renderResumed lists resumed projects with what the previous process left behind.
func renderResumed(ids []string, interrupted []state.InterruptedProject) string {
	byID := make(map[string]state.InterruptedProject, len(interrupted))
	for _, ip := range interrupted {
		byID[ip.ID] = ip
	}
	lines := []string{"Resumed interrupted projects:"}
	for _, id := range ids {
		ip, ok := byID[id]
		if !ok {
			lines = append(lines, "  "+id)
			continue
		}
		line := fmt.Sprintf("  %s %s: %d pending", id, ip.Name, ip.Pending)
		if ip.Running > 0 {
			line += fmt.Sprintf(", %d restarted mid-call", ip.Running)
		}
		if !ip.LastActivity.IsZero() {
			line += mutedStyle.Render(" (last active " + ip.LastActivity.Local().Format("Jan 2 15:04") + ")")
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// renderEvent formats live project progress. It returns "" for events not
// worth a transcript line.
func renderEvent(ev project.Event) string {
	label := fmt.Sprintf("#%d %s", ev.SubTask, ev.Title)
	switch ev.Type {
	case project.EventProjectDecomposed:
		return titleStyle.Render("◆ "+ev.Title) + mutedStyle.Render(" planned by "+ev.Model)
	case project.EventSubTaskStarted:
		return mutedStyle.Render("▸ " + label + " started by " + ev.Persona)
	case project.EventSubTaskCompleted:
		return okStyle.Render("✓ "+label) + mutedStyle.Render(" by "+ev.Persona+" on "+ev.Model)
	case project.EventSubTaskFailed:
		msg := "✗ " + label + " failed"
		if ev.Err != nil {
			msg += ": " + ev.Err.Error()
		}
		return errStyle.Render(msg)
	case project.EventProjectCompleted:
		return okStyle.Render(fmt.Sprintf("✓ Project %s (%s) completed.", ev.Title, ev.ProjectID))
	case project.EventProjectFailed:
		return errStyle.Render(fmt.Sprintf("✗ Project %s (%s) failed: %s", ev.Title, ev.ProjectID, ev.Message))
	default:
		return ""
	}
}

func renderModels(list []models.Model) string {
	if len(list) == 0 {
		return "No models known."
	}
	rows := make([][]string, 0, len(list))
	for _, m := range list {
		roles := make([]string, len(m.Roles))
		for i, r := range m.Roles {
			roles[i] = string(r)
		}
		tier := "-"
		if m.Tier > 0 {
			tier = fmt.Sprintf("%d", int(m.Tier))
		}
		status := okStyle.Render(string(m.Status))
		if m.Status != models.ModelAvailable {
			status = errStyle.Render(string(m.Status))
		}
		rows = append(rows, []string{m.ID, m.Provider, tier, strings.Join(roles, ","), status})
	}
	return renderTable([]string{"MODEL", "PROVIDER", "TIER", "ROLES", "STATUS"}, rows)
}
