package tiers

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

func TestDefaultTable_Coverage(t *testing.T) {
	table := DefaultTable()
	if err := table.Validate(); err != nil {
		t.Fatalf("DefaultTable().Validate() = %v", err)
	}

	m, err := NewManager(table, models.TierPowerhouse)
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	snap := m.Snapshot()

	for _, tier := range table.Levels() {
		for _, role := range models.AllRoles() {
			id, err := snap.Resolve(role, tier)
			if err != nil {
				t.Errorf("Resolve(%s, %d) error = %v", role, tier, err)
			}
			if id == "" {
				t.Errorf("Resolve(%s, %d) returned empty model", role, tier)
			}
		}
	}
}

func TestValidate_MissingRole(t *testing.T) {
	table := DefaultTable()
	delete(table.Tiers[2].Models, models.RoleCoding)

	err := table.Validate()
	var unresolved *UnresolvedRoleError
	if !errors.As(err, &unresolved) {
		t.Fatalf("Validate() error = %v, want UnresolvedRoleError", err)
	}
	if unresolved.Role != models.RoleCoding || unresolved.Tier != models.TierUltra {
		t.Errorf("UnresolvedRoleError = %+v, want coding at tier 3", unresolved)
	}

	if _, err := NewManager(table, models.TierEfficient); err == nil {
		t.Error("NewManager() accepted a table without coverage")
	}
}

func TestValidate_DuplicateTier(t *testing.T) {
	table := DefaultTable()
	table.Tiers[1].Level = models.TierEfficient
	if err := table.Validate(); err == nil {
		t.Error("Validate() accepted duplicate tier levels")
	}
}

func TestResolve_UnknownTier(t *testing.T) {
	m, _ := NewManager(DefaultTable(), models.TierEfficient)
	_, err := m.Snapshot().Resolve(models.RoleCoding, models.Tier(9))

	var unresolved *UnresolvedRoleError
	if !errors.As(err, &unresolved) {
		t.Errorf("Resolve() at unknown tier error = %v, want UnresolvedRoleError", err)
	}
}

func TestSetActiveTier_SnapshotIsolation(t *testing.T) {
	m, _ := NewManager(DefaultTable(), models.TierEfficient)

	held := m.Snapshot()
	before, _ := held.ResolveActive(models.RoleCoding)

	next, err := m.SetActiveTier(models.TierUltra)
	if err != nil {
		t.Fatalf("SetActiveTier() error = %v", err)
	}

	after, _ := held.ResolveActive(models.RoleCoding)
	if after != before {
		t.Errorf("held snapshot changed after swap: %s -> %s", before, after)
	}
	if before != "deepseek-coder:7b" {
		t.Errorf("tier 1 coding model = %s, want deepseek-coder:7b", before)
	}

	fresh, _ := m.Snapshot().ResolveActive(models.RoleCoding)
	if fresh != "deepseek-coder-v2:16b" {
		t.Errorf("new snapshot coding model = %s, want deepseek-coder-v2:16b", fresh)
	}
	if next.Version != held.Version+1 {
		t.Errorf("version = %d, want %d", next.Version, held.Version+1)
	}
}

func TestSetActiveTier_Unknown(t *testing.T) {
	m, _ := NewManager(DefaultTable(), models.TierEfficient)
	if _, err := m.SetActiveTier(models.Tier(7)); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("SetActiveTier(7) error = %v, want ErrUnknownTier", err)
	}
	if m.Active() != models.TierEfficient {
		t.Errorf("active tier changed after failed swap: %d", m.Active())
	}
}

func TestSetActiveTier_ConcurrentReaders(t *testing.T) {
	m, _ := NewManager(DefaultTable(), models.TierEfficient)
	valid := map[string]bool{}
	for _, tier := range DefaultTable().Levels() {
		spec, _ := DefaultTable().Get(tier)
		valid[spec.Models[models.RoleCoding]+"|"+spec.Models[models.RoleReasoning]] = true
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := m.Snapshot()
				c, _ := snap.ResolveActive(models.RoleCoding)
				r, _ := snap.ResolveActive(models.RoleReasoning)
				if !valid[c+"|"+r] {
					t.Errorf("observed mixed mapping %s|%s", c, r)
					return
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		m.SetActiveTier(models.Tier(i%3 + 1))
	}
	close(stop)
	wg.Wait()
}

func TestReplaceTable(t *testing.T) {
	m, _ := NewManager(DefaultTable(), models.TierUltra)

	var notified *Snapshot
	m.Subscribe(func(s *Snapshot) { notified = s })

	small := Table{Tiers: []TierSpec{{
		Level: models.TierEfficient,
		Models: map[models.Role]string{
			models.RoleReasoning: "a", models.RoleCoding: "b",
			models.RoleCreative: "c", models.RoleUniversal: "d",
		},
	}}}
	snap, err := m.ReplaceTable(small)
	if err != nil {
		t.Fatalf("ReplaceTable() error = %v", err)
	}
	if snap.Active != models.TierEfficient {
		t.Errorf("active = %d, want fallback to tier 1", snap.Active)
	}
	if notified != snap {
		t.Error("subscriber not notified with new snapshot")
	}

	bad := small
	bad.Tiers = []TierSpec{{Level: 1, Models: map[models.Role]string{models.RoleCoding: "b"}}}
	if _, err := m.ReplaceTable(bad); err == nil {
		t.Error("ReplaceTable() accepted a table without coverage")
	}
	if m.Snapshot() != snap {
		t.Error("failed ReplaceTable changed the snapshot")
	}
}

func TestPlan(t *testing.T) {
	m, _ := NewManager(DefaultTable(), models.TierEfficient)

	installed := func(id string) bool { return id == "deepseek-r1:14b" }
	plan, err := m.Snapshot().Plan(models.TierEfficient, models.TierUltra, installed)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(plan.Shared) != 1 || plan.Shared[0] != "dolphin3:8b" {
		t.Errorf("Shared = %v, want [dolphin3:8b]", plan.Shared)
	}
	wantDownload := []string{"deepseek-coder-v2:16b", "dolphin-mixtral:8x22b"}
	if len(plan.ToDownload) != len(wantDownload) {
		t.Fatalf("ToDownload = %v, want %v", plan.ToDownload, wantDownload)
	}
	for i, id := range wantDownload {
		if plan.ToDownload[i] != id {
			t.Errorf("ToDownload[%d] = %s, want %s", i, plan.ToDownload[i], id)
		}
	}
	if math.Abs(plan.DownloadGB-96.1) > 1e-9 {
		t.Errorf("DownloadGB = %v, want 96.1", plan.DownloadGB)
	}
	if len(plan.Removable) != 3 {
		t.Errorf("Removable = %v, want 3 models", plan.Removable)
	}

	if _, err := m.Snapshot().Plan(models.TierEfficient, models.Tier(8), nil); !errors.Is(err, ErrUnknownTier) {
		t.Errorf("Plan() to unknown tier error = %v", err)
	}
}

func TestDeclared(t *testing.T) {
	declared := DefaultTable().Declared()
	byID := map[string]models.Model{}
	for _, m := range declared {
		byID[m.ID] = m
	}

	shared := byID["dolphin-mistral:7b"]
	if shared.Tier != models.TierEfficient {
		t.Errorf("dolphin-mistral:7b tier = %d, want 1", shared.Tier)
	}
	if !shared.Serves(models.RoleReasoning) || !shared.Serves(models.RoleCreative) {
		t.Errorf("dolphin-mistral:7b roles = %v, want reasoning and creative", shared.Roles)
	}
	if byID["dolphin-mixtral:8x22b"].SizeGB != 87 {
		t.Errorf("size not carried through")
	}
}

func TestRecommend(t *testing.T) {
	table := DefaultTable()
	tests := []struct {
		name     string
		memoryGB float64
		want     models.Tier
		wantFits bool
		largest  float64
	}{
		{name: "too small for any tier", memoryGB: 4, want: models.TierEfficient, largest: 4.7},
		{name: "laptop", memoryGB: 16, want: models.TierEfficient, wantFits: true, largest: 4.7},
		{name: "workstation", memoryGB: 64, want: models.TierPowerhouse, wantFits: true, largest: 26},
		{name: "server", memoryGB: 128, want: models.TierUltra, wantFits: true, largest: 87},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := table.Recommend(tt.memoryGB)
			if rec.Tier != tt.want || rec.Fits != tt.wantFits {
				t.Errorf("Recommend(%v) = tier %d fits %v, want tier %d fits %v",
					tt.memoryGB, rec.Tier, rec.Fits, tt.want, tt.wantFits)
			}
			if rec.LargestGB != tt.largest {
				t.Errorf("LargestGB = %v, want %v", rec.LargestGB, tt.largest)
			}
			if math.Abs(rec.BudgetGB-tt.memoryGB*MemoryHeadroom) > 1e-9 {
				t.Errorf("BudgetGB = %v", rec.BudgetGB)
			}
		})
	}
}

func TestRecommend_UnsizedTierFits(t *testing.T) {
	table := DefaultTable()
	table.Tiers[2].SizesGB = nil

	rec := table.Recommend(8)
	if rec.Tier != models.TierUltra || !rec.Fits {
		t.Errorf("Recommend(8) = %+v, want ultra since its sizes are unknown", rec)
	}
}
