// Package generator manufactures the four-table practice dataset.
//
// The pipeline runs once, synchronously, on a caller-supplied random stream:
//
//	users    → renumber ─┬→ payments → renumber
//	                     └→ events   → renumber
//	ad_costs (independent)
//	                      → Assemble → core.Document
//
// Factories produce unnumbered rows; identifiers are only handed out by the
// renumbering stage after each table is sorted by its time key.
package generator

import (
	"log/slog"
	"math/rand"

	"github.com/purin2/sql-practice-tutor/internal/vocab"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// NewRand returns a random stream for seed.
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Generator builds datasets for one configuration and vocabulary.
type Generator struct {
	cfg    Config
	vocab  *vocab.Vocabulary
	logger *slog.Logger
}

// New validates cfg and returns a generator. A nil vocabulary selects the
// embedded default; a nil logger discards output.
func New(cfg Config, v *vocab.Vocabulary, logger *slog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if v == nil {
		v = vocab.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{cfg: cfg, vocab: v, logger: logger}, nil
}

// Vocabulary returns the vocabulary the generator draws from.
func (g *Generator) Vocabulary() *vocab.Vocabulary {
	return g.vocab
}

// Result is the outcome of one generation run.
type Result struct {
	Dataset  *Dataset
	Document *core.Document
	Stats    []TableStats
}

// Generate runs the full pipeline on r. Tables are produced in the fixed
// order users, payments, events, ad_costs so that a seeded stream always
// yields the same dataset.
func (g *Generator) Generate(r *rand.Rand) (*Result, error) {
	if r == nil {
		return nil, ErrNoRandom
	}

	users, userStats := newUserFactory(g.cfg, g.vocab).generate(r)
	renumberUsers(users)
	g.logTable(userStats)

	pf := &paymentFactory{cfg: g.cfg, amounts: g.vocab.Amounts}
	payments, paymentStats := pf.generate(r, users)
	renumberPayments(payments)
	g.logTable(paymentStats)

	ef := &eventFactory{cfg: g.cfg, eventTypes: g.vocab.EventTypes}
	events, eventStats := ef.generate(r, users)
	renumberEvents(events)
	g.logTable(eventStats)

	af := &adCostFactory{cfg: g.cfg, vocab: g.vocab}
	adCosts, adCostStats := af.generate(r)
	g.logTable(adCostStats)

	ds := &Dataset{
		Users:    users,
		Payments: payments,
		Events:   events,
		AdCosts:  adCosts,
	}

	return &Result{
		Dataset:  ds,
		Document: Assemble(ds, g.vocab),
		Stats:    []TableStats{userStats, paymentStats, eventStats, adCostStats},
	}, nil
}

func (g *Generator) logTable(s TableStats) {
	attrs := []any{
		slog.String("table", s.Table),
		slog.Int("rows", s.Rows),
		slog.Int("target", s.Target),
		slog.Int("attempts", s.Attempts),
		slog.Int("rejected", s.Rejected),
	}
	if s.Exhausted {
		g.logger.Warn("table generation stopped early", append(attrs, slog.String("reason", s.Reason))...)
		return
	}
	g.logger.Debug("generated table", attrs...)
}
