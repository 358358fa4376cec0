package tiers

import (
	"fmt"
	"slices"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// MigrationPlan reports what moving between tiers would require.
// It is informational only; nothing is downloaded or removed.
type MigrationPlan struct {
	From       models.Tier `json:"from"`
	To         models.Tier `json:"to"`
	Shared     []string    `json:"shared"`
	ToDownload []string    `json:"to_download"`
	Removable  []string    `json:"removable"`
	DownloadGB float64     `json:"download_gb"`
}

// Plan compares the model sets of two tiers. Models already installed
// (per the installed func) are not listed for download.
func (s *Snapshot) Plan(from, to models.Tier, installed func(string) bool) (MigrationPlan, error) {
	fromSpec, ok := s.table.Get(from)
	if !ok {
		return MigrationPlan{}, fmt.Errorf("%w: %d", ErrUnknownTier, int(from))
	}
	toSpec, ok := s.table.Get(to)
	if !ok {
		return MigrationPlan{}, fmt.Errorf("%w: %d", ErrUnknownTier, int(to))
	}

	fromSet := modelSet(fromSpec)
	toSet := modelSet(toSpec)
	plan := MigrationPlan{From: from, To: to}

	for _, id := range toSet {
		switch {
		case slices.Contains(fromSet, id):
			plan.Shared = append(plan.Shared, id)
		case installed != nil && installed(id):
		default:
			plan.ToDownload = append(plan.ToDownload, id)
			plan.DownloadGB += toSpec.SizesGB[id]
		}
	}
	for _, id := range fromSet {
		if !slices.Contains(toSet, id) {
			plan.Removable = append(plan.Removable, id)
		}
	}
	return plan, nil
}

func modelSet(spec TierSpec) []string {
	var ids []string
	for _, role := range models.AllRoles() {
		if id := spec.Models[role]; id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids
}
