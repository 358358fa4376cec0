package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/SharminSirajudeen/nova/internal/core"
	"github.com/SharminSirajudeen/nova/internal/project"
	"github.com/SharminSirajudeen/nova/internal/state"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Backend is the part of *core.Core the shell drives.
type Backend interface {
	ModeGet() core.ModeInfo
	ModeSet(name string) (core.ModeInfo, error)
	ProjectCreate(ctx context.Context, brief string) (*models.Project, error)
	ProjectList(ctx context.Context) ([]project.Summary, error)
	ProjectShow(ctx context.Context, id string) (*models.Project, error)
	ProjectCancel(ctx context.Context, id string) (*models.Project, error)
	ProjectResume(ctx context.Context) ([]string, error)
	ProjectInterrupted(ctx context.Context) ([]state.InterruptedProject, error)
	Team(role string) ([]core.TeamMember, error)
	TierGet() core.TierInfo
	TierSet(value string) (core.TierInfo, error)
	TierPlan(value string) (tiers.MigrationPlan, error)
	TierRecommend(ctx context.Context) (tiers.Recommendation, error)
	Models(ctx context.Context, refresh bool) core.ModelsReport
	Dashboard(ctx context.Context) (project.Dashboard, error)
	Ask(ctx context.Context, goal, personaKey string) (*core.AskResult, error)
	Events() <-chan project.Event
}

// reply is the outcome of one input line.
type reply struct {
	Text  string
	Err   error
	Quit  bool
	Clear bool
}

const helpText = `Commands
  /mode [personal|company]       show or switch the mode
  /company                       company dashboard
  /project create <brief>        start a project (company mode)
  /project list                  list projects
  /project show [id]             show a project, default the active one
  /project cancel [id]           cancel a project
  /project resume                resume interrupted projects
  /team [role]                   list personas and their models
  /tier [n]                      show or switch the active tier
  /tier plan <n>                 what switching tiers would need
  /tier recommend                the tier this machine's memory suits
  /models [refresh]              list models, optionally re-checking the runtime
  /clear                         clear the transcript
  /help                          this help
  /quit                          leave the shell

In personal mode, plain text asks the best persona for the request.
Start with @persona_key to pick one. In company mode, plain text starts
a project with that brief.`

var errUsage = errors.New("usage")

func usage(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{errUsage}, args...)...)
}

// execute runs one input line against b.
func execute(ctx context.Context, b Backend, line string) reply {
	line = strings.TrimSpace(line)
	if line == "" {
		return reply{}
	}
	if !strings.HasPrefix(line, "/") {
		return request(ctx, b, line)
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return reply{Text: helpText}
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var (
		text string
		err  error
	)
	switch name {
	case "help", "?":
		text = helpText
	case "quit", "exit", "q":
		return reply{Quit: true}
	case "clear":
		return reply{Clear: true}
	case "mode":
		text, err = modeCommand(b, args)
	case "company":
		text, err = companyCommand(ctx, b)
	case "project", "p":
		text, err = projectCommand(ctx, b, args)
	case "team":
		text, err = teamCommand(b, args)
	case "tier":
		text, err = tierCommand(ctx, b, args)
	case "models":
		text, err = modelsCommand(ctx, b, args)
	default:
		err = usage("unknown command /%s, try /help", name)
	}
	return reply{Text: text, Err: err}
}

// request handles a line that is not a command.
func request(ctx context.Context, b Backend, line string) reply {
	if b.ModeGet().Mode == models.ModeCompany {
		p, err := b.ProjectCreate(ctx, line)
		if err != nil {
			return reply{Err: err}
		}
		return reply{Text: fmt.Sprintf("Started project %s (%s) with %d sub-tasks. Follow it with /project show.",
			p.Name, p.ID, len(p.SubTasks))}
	}

	persona, goal := addressee(line)
	res, err := b.Ask(ctx, goal, persona)
	if err != nil {
		return reply{Err: err}
	}
	return reply{Text: renderAnswer(res)}
}

// addressee splits a leading @persona_key off the request.
func addressee(line string) (persona, goal string) {
	if !strings.HasPrefix(line, "@") {
		return "", line
	}
	key, rest, _ := strings.Cut(line[1:], " ")
	return key, strings.TrimSpace(rest)
}

func modeCommand(b Backend, args []string) (string, error) {
	switch len(args) {
	case 0:
		info := b.ModeGet()
		if info.Mode == "" {
			return "No mode selected. Use /mode personal or /mode company.", nil
		}
		return fmt.Sprintf("Mode: %s", info.Mode), nil
	case 1:
		info, err := b.ModeSet(args[0])
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Switched to %s mode.", info.Mode), nil
	default:
		return "", usage("/mode [personal|company]")
	}
}

func companyCommand(ctx context.Context, b Backend) (string, error) {
	d, err := b.Dashboard(ctx)
	if err != nil {
		return "", err
	}
	return renderDashboard(d), nil
}

func projectCommand(ctx context.Context, b Backend, args []string) (string, error) {
	if len(args) == 0 {
		return "", usage("/project create|list|show|cancel|resume")
	}
	sub, rest := strings.ToLower(args[0]), args[1:]
	switch sub {
	case "create", "new":
		brief := strings.Join(rest, " ")
		if brief == "" {
			return "", usage("/project create <brief>")
		}
		p, err := b.ProjectCreate(ctx, brief)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Started project %s (%s) with %d sub-tasks.", p.Name, p.ID, len(p.SubTasks)), nil
	case "list", "ls":
		rows, err := b.ProjectList(ctx)
		if err != nil {
			return "", err
		}
		if len(rows) == 0 {
			return "No projects yet.", nil
		}
		return renderSummaries(rows), nil
	case "show":
		p, err := b.ProjectShow(ctx, optional(rest))
		if err != nil {
			return "", err
		}
		return renderProject(p), nil
	case "cancel":
		p, err := b.ProjectCancel(ctx, optional(rest))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Project %s is %s.", p.ID, p.State), nil
	case "resume":
		ids, err := b.ProjectResume(ctx)
		if err != nil {
			return "", err
		}
		if len(ids) == 0 {
			return "Nothing to resume.", nil
		}
		return fmt.Sprintf("Resumed %s.", strings.Join(ids, ", ")), nil
	default:
		return "", usage("unknown /project subcommand %q", sub)
	}
}

// resumeProjects lists interrupted projects before resuming them, since
// resuming makes them active again.
func resumeProjects(ctx context.Context, b Backend) ([]string, []state.InterruptedProject, error) {
	interrupted, err := b.ProjectInterrupted(ctx)
	if err != nil {
		return nil, nil, err
	}
	ids, err := b.ProjectResume(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ids, interrupted, nil
}

func optional(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

func teamCommand(b Backend, args []string) (string, error) {
	members, err := b.Team(optional(args))
	if err != nil {
		return "", err
	}
	return renderTeam(members), nil
}

func tierCommand(ctx context.Context, b Backend, args []string) (string, error) {
	switch {
	case len(args) == 0:
		return renderTier(b.TierGet()), nil
	case strings.EqualFold(args[0], "plan"):
		if len(args) != 2 {
			return "", usage("/tier plan <n>")
		}
		plan, err := b.TierPlan(args[1])
		if err != nil {
			return "", err
		}
		return renderPlan(plan), nil
	case strings.EqualFold(args[0], "recommend"):
		rec, err := b.TierRecommend(ctx)
		if err != nil {
			return "", err
		}
		return renderRecommendation(rec, b.TierGet().Active), nil
	case len(args) == 1:
		info, err := b.TierSet(args[0])
		if err != nil {
			return "", err
		}
		return "Switched tier.\n" + renderTier(info), nil
	default:
		return "", usage("/tier [n], /tier plan <n> or /tier recommend")
	}
}

func modelsCommand(ctx context.Context, b Backend, args []string) (string, error) {
	refresh := len(args) > 0 && strings.EqualFold(args[0], "refresh")
	report := b.Models(ctx, refresh)
	out := renderModels(report.Models)
	if report.Credentials != "" {
		out += "\n" + mutedStyle.Render("Anthropic credentials: "+string(report.Credentials))
	}
	if report.Warning != "" {
		out = warnStyle.Render("! "+report.Warning) + "\n" + out
	}
	return out, nil
}
