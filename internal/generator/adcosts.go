package generator

import (
	"math"
	"math/rand"

	"github.com/purin2/sql-practice-tutor/internal/vocab"
)

// adCostFactory emits one row per (month, paid source, campaign). Only the
// cost is random; which rows exist is fixed by the vocabulary.
type adCostFactory struct {
	cfg   Config
	vocab *vocab.Vocabulary
}

// expectedRows is the size of the full cross product.
func (f *adCostFactory) expectedRows() int {
	campaigns := 0
	for _, s := range f.vocab.PaidSources() {
		campaigns += len(s.Campaigns)
	}
	return len(f.cfg.Months()) * campaigns
}

func (f *adCostFactory) generate(r *rand.Rand) ([]AdCost, TableStats) {
	costs := make([]AdCost, 0, f.expectedRows())
	id := 1
	for _, month := range f.cfg.Months() {
		multiplier := f.vocab.Multiplier(month.Month())
		label := month.Format("2006-01")
		for _, source := range f.vocab.PaidSources() {
			for _, campaign := range source.Campaigns {
				base := f.cfg.AdCostBaseMin
				if f.cfg.AdCostBaseSpread > 0 {
					base += r.Int63n(f.cfg.AdCostBaseSpread)
				}
				costs = append(costs, AdCost{
					ID:       id,
					Month:    label,
					AdSource: source.Name,
					Campaign: campaign.Value,
					Cost:     int64(math.Floor(float64(base) * multiplier)),
				})
				id++
			}
		}
	}

	return costs, TableStats{
		Table:    TableAdCosts,
		Target:   f.expectedRows(),
		Rows:     len(costs),
		Attempts: len(costs),
	}
}
