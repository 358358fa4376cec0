package tiers

import "github.com/SharminSirajudeen/nova/pkg/models"

// MemoryHeadroom is the share of RAM a loaded model may use. The rest is
// left to the OS and the runtime.
const MemoryHeadroom = 0.70

// Recommendation is the largest tier whose biggest model fits in memory.
type Recommendation struct {
	Tier      models.Tier `json:"tier"`
	Name      string      `json:"name"`
	MemoryGB  float64     `json:"memory_gb"`
	BudgetGB  float64     `json:"budget_gb"`
	LargestGB float64     `json:"largest_model_gb"`
	// Fits is false when even the lowest tier exceeds the budget; Tier
	// is then the lowest tier.
	Fits bool `json:"fits"`
}

// Recommend picks the highest tier whose largest model fits in memoryGB
// times MemoryHeadroom. Models with no recorded size count as zero.
func (t Table) Recommend(memoryGB float64) Recommendation {
	budget := memoryGB * MemoryHeadroom
	var rec Recommendation
	for i, level := range t.Levels() {
		spec, _ := t.Get(level)
		largest := largestModelGB(spec)
		if fits := largest <= budget; i == 0 || fits {
			rec = Recommendation{Tier: level, Name: spec.Name, LargestGB: largest, Fits: fits}
		}
	}
	rec.MemoryGB = memoryGB
	rec.BudgetGB = budget
	return rec
}

func largestModelGB(spec TierSpec) float64 {
	var largest float64
	for _, id := range modelSet(spec) {
		if gb := spec.SizesGB[id]; gb > largest {
			largest = gb
		}
	}
	return largest
}
