package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/SharminSirajudeen/nova/internal/persona"
	"github.com/SharminSirajudeen/nova/internal/registry"
	"github.com/SharminSirajudeen/nova/internal/runtime"
	"github.com/SharminSirajudeen/nova/internal/runtime/runtimetest"
	"github.com/SharminSirajudeen/nova/internal/tiers"
	"github.com/SharminSirajudeen/nova/pkg/models"
)

// Tier 3 models from the default table.
const (
	ultraReasoning = "deepseek-r1:14b"
	ultraUniversal = "dolphin-mixtral:8x22b"
	ultraCoding    = "deepseek-coder-v2:16b"
	ultraCreative  = "dolphin3:8b"
)

type fixture struct {
	router   *Router
	fake     *runtimetest.Fake
	registry *registry.Registry
	tiers    *tiers.Manager
}

func newFixture(t *testing.T, table tiers.Table, tier models.Tier, missing ...string) *fixture {
	t.Helper()
	tm, err := tiers.NewManager(table, tier)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	fake := runtimetest.New()
	reg := registry.New(fake, table.Declared())
	for _, id := range missing {
		reg.MarkMissing(id)
	}
	r := New(RequiredConfig{
		Tiers:    tm,
		Registry: reg,
		Catalog:  persona.DefaultCatalog(),
		Invoker:  fake,
	})
	return &fixture{router: r, fake: fake, registry: reg, tiers: tm}
}

func TestRoute_CodingFallbackSelectsUniversal(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra, ultraCoding, ultraReasoning)

	d, err := f.router.Route(models.Task{Goal: "x", Hint: models.RoleCoding})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if d.Model != ultraUniversal {
		t.Errorf("Route() model = %s, want universal's %s", d.Model, ultraUniversal)
	}
	if d.ServedBy != models.RoleUniversal {
		t.Errorf("ServedBy = %s, want universal", d.ServedBy)
	}
	if d.Role != models.RoleCoding || d.Persona.Key != "kai_nakamura" {
		t.Errorf("persona = %s (%s), want coding lead kept", d.Persona.Key, d.Role)
	}
	if len(d.Attempted) != 2 {
		t.Errorf("Attempted = %v, want coding and reasoning skipped", d.Attempted)
	}
}

func TestExecute_CodingFallbackSelectsUniversal(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra, ultraCoding, ultraReasoning)

	res, err := f.router.Execute(context.Background(), models.Task{Goal: "Implement the parser", Hint: models.RoleCoding})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Model != ultraUniversal {
		t.Errorf("Execute() model = %s, want %s", res.Model, ultraUniversal)
	}
	if f.fake.CallsFor(ultraCreative) != 0 {
		t.Error("creative model invoked before universal")
	}
	calls := f.fake.Calls()
	if len(calls) != 1 || !strings.Contains(calls[0].Prompt, "Kai Nakamura") {
		t.Errorf("fallback prompt should keep the coding persona's voice, calls = %d", len(calls))
	}
}

func TestExecute_AllMissing(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra,
		ultraCoding, ultraReasoning, ultraUniversal, ultraCreative)

	_, err := f.router.Execute(context.Background(), models.Task{Goal: "x", Hint: models.RoleCoding})

	var noModel *NoModelAvailableError
	if !errors.As(err, &noModel) {
		t.Fatalf("Execute() error = %v, want NoModelAvailableError", err)
	}
	if noModel.Role != models.RoleCoding || noModel.Tier != models.TierUltra {
		t.Errorf("error names role %s tier %d", noModel.Role, noModel.Tier)
	}
	wantOrder := []models.Role{models.RoleCoding, models.RoleReasoning, models.RoleUniversal, models.RoleCreative}
	if len(noModel.Attempted) != len(wantOrder) {
		t.Fatalf("Attempted = %v", noModel.Attempted)
	}
	for i, role := range wantOrder {
		if noModel.Attempted[i].Role != role {
			t.Errorf("Attempted[%d] = %s, want %s", i, noModel.Attempted[i].Role, role)
		}
	}
	msg := err.Error()
	for _, want := range []string{"coding", ultraCoding, ultraCreative} {
		if !strings.Contains(msg, want) {
			t.Errorf("error %q does not mention %q", msg, want)
		}
	}
	if len(f.fake.Calls()) != 0 {
		t.Error("missing models should not be invoked")
	}
}

func TestExecute_UnavailableMarksMissing(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra)
	f.fake.FailNext(ultraCoding, runtime.KindUnavailable)

	res, err := f.router.Execute(context.Background(), models.Task{Goal: "x", Hint: models.RoleCoding})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Model != ultraReasoning {
		t.Errorf("model = %s, want reasoning fallback %s", res.Model, ultraReasoning)
	}
	if f.registry.Available(ultraCoding) {
		t.Error("unavailable model should be marked missing")
	}
	if f.fake.CallsFor(ultraCoding) != 1 {
		t.Errorf("unavailable model retried %d times, want 1 call", f.fake.CallsFor(ultraCoding))
	}
	if res.Attempted[0].Outcome != OutcomeUnavailable {
		t.Errorf("first attempt outcome = %s", res.Attempted[0].Outcome)
	}
}

func TestExecute_TimeoutRetriedOnce(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra)
	f.fake.FailNext(ultraCoding, runtime.KindTimeout)

	res, err := f.router.Execute(context.Background(), models.Task{Goal: "x", Hint: models.RoleCoding})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Model != ultraCoding {
		t.Errorf("model = %s, want retry on %s", res.Model, ultraCoding)
	}
	if got := res.Attempted[0].Tries; got != 2 {
		t.Errorf("tries = %d, want 2", got)
	}
	if !f.registry.Available(ultraCoding) {
		t.Error("timeout should not mark the model missing")
	}
}

func TestExecute_RepeatedFailureFallsBack(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra)
	f.fake.FailNext(ultraCoding, runtime.KindOther, runtime.KindOther)

	res, err := f.router.Execute(context.Background(), models.Task{Goal: "x", Hint: models.RoleCoding})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Model != ultraReasoning {
		t.Errorf("model = %s, want %s", res.Model, ultraReasoning)
	}
	if f.fake.CallsFor(ultraCoding) != 2 {
		t.Errorf("coding model called %d times, want 2", f.fake.CallsFor(ultraCoding))
	}
}

func TestExecute_SharedModelNotRetried(t *testing.T) {
	table := tiers.Table{Tiers: []tiers.TierSpec{{
		Level: models.TierEfficient,
		Models: map[models.Role]string{
			models.RoleReasoning: "shared:7b",
			models.RoleUniversal: "shared:7b",
			models.RoleCoding:    "coder:7b",
			models.RoleCreative:  "writer:7b",
		},
	}}}
	f := newFixture(t, table, models.TierEfficient)
	f.fake.FailNext("shared:7b", runtime.KindOther, runtime.KindOther)

	res, err := f.router.Execute(context.Background(), models.Task{Goal: "x", Hint: models.RoleReasoning})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Model != "coder:7b" {
		t.Errorf("model = %s, want coder:7b", res.Model)
	}
	if res.Attempted[1].Outcome != OutcomeDuplicate {
		t.Errorf("second attempt outcome = %s, want %s", res.Attempted[1].Outcome, OutcomeDuplicate)
	}
}

func TestExecute_UsesSnapshotAtStart(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierEfficient)
	f.fake.Handler = func(ctx context.Context, req runtime.Request) (string, error) {
		f.tiers.SetActiveTier(models.TierUltra)
		return "ok", nil
	}

	res, err := f.router.Execute(context.Background(), models.Task{Goal: "x", Hint: models.RoleCoding})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.Model != "deepseek-coder:7b" || res.Tier != models.TierEfficient {
		t.Errorf("in-flight task switched tiers: model %s tier %d", res.Model, res.Tier)
	}

	d, _ := f.router.Route(models.Task{Goal: "x", Hint: models.RoleCoding})
	if d.Model != ultraCoding {
		t.Errorf("task after swap used %s, want %s", d.Model, ultraCoding)
	}
}

func TestExecute_ContextCancelled(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierUltra)
	ctx, cancel := context.WithCancel(context.Background())
	f.fake.Handler = func(ctx context.Context, req runtime.Request) (string, error) {
		cancel()
		return "", &runtime.Error{Kind: runtime.KindOther, Model: req.Model, Err: ctx.Err()}
	}

	_, err := f.router.Execute(ctx, models.Task{Goal: "x", Hint: models.RoleCoding})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Execute() error = %v, want context.Canceled", err)
	}
	if len(f.fake.Calls()) != 1 {
		t.Errorf("calls = %d, want no retries after cancellation", len(f.fake.Calls()))
	}
}

func TestSelectPersona(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierPowerhouse)

	tests := []struct {
		name        string
		task        models.Task
		wantPersona string
		wantRole    models.Role
	}{
		{"explicit persona wins", models.Task{Goal: "implement it", Persona: "CTO"}, "alexandra_sterling", models.RoleReasoning},
		{"hint beats classifier", models.Task{Goal: "implement it", Hint: models.RoleCreative}, "luna_chen", models.RoleCreative},
		{"classifier picks coding", models.Task{Goal: "Fix the crash in the API endpoint"}, "kai_nakamura", models.RoleCoding},
		{"ambiguous goes universal", models.Task{Goal: "Hello there"}, "david_park", models.RoleUniversal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := f.router.Route(tt.task)
			if err != nil {
				t.Fatalf("Route() error = %v", err)
			}
			if d.Persona.Key != tt.wantPersona || d.Role != tt.wantRole {
				t.Errorf("Route() = %s (%s), want %s (%s)", d.Persona.Key, d.Role, tt.wantPersona, tt.wantRole)
			}
		})
	}

	if _, err := f.router.Route(models.Task{Goal: "x", Persona: "nobody"}); !errors.Is(err, persona.ErrNotFound) {
		t.Errorf("Route() with unknown persona error = %v", err)
	}
}

func TestPromptIncludesContext(t *testing.T) {
	f := newFixture(t, tiers.DefaultTable(), models.TierEfficient)
	d, err := f.router.Route(models.Task{Goal: "Write tests", Hint: models.RoleUniversal, Context: "API spec: /todos"})
	if err != nil {
		t.Fatalf("Route() error = %v", err)
	}
	if !strings.Contains(d.Prompt, "API spec: /todos") {
		t.Errorf("prompt missing context: %q", d.Prompt)
	}
}
