package generator

import (
	"math/rand"
	"time"

	"github.com/purin2/sql-practice-tutor/internal/sampler"
)

// payer is a payment-eligible user.
type payer struct {
	userID       string
	registeredAt time.Time
}

// paymentFactory draws payments for an already renumbered users table.
type paymentFactory struct {
	cfg     Config
	amounts []int64
}

// selectPayers runs the conversion funnel: each user independently becomes
// payment-eligible with probability PayerRate.
func (f *paymentFactory) selectPayers(r *rand.Rand, users []User) []payer {
	var payers []payer
	for _, u := range users {
		if sampler.Chance(r, f.cfg.PayerRate) {
			payers = append(payers, payer{userID: u.ID, registeredAt: u.RegisteredAt})
		}
	}
	return payers
}

func (f *paymentFactory) generate(r *rand.Rand, users []User) ([]Payment, TableStats) {
	stats := TableStats{Table: TablePayments, Target: f.cfg.Payments}

	payers := f.selectPayers(r, users)
	if len(payers) == 0 {
		if f.cfg.Payments > 0 {
			stats.Exhausted = true
			stats.Reason = ReasonNoPayers
		}
		return []Payment{}, stats
	}

	payments := make([]Payment, 0, f.cfg.Payments)
	for len(payments) < f.cfg.Payments {
		if stats.Attempts >= f.cfg.MaxPaymentAttempts {
			stats.Exhausted = true
			stats.Reason = ReasonAttemptCeiling
			break
		}
		stats.Attempts++

		// payers repeat: the same user may be drawn many times
		p := sampler.Pick(r, payers)
		paidAt := sampler.TimeBetween(r, p.registeredAt, f.cfg.ClosingDate)
		if violatesCausality(p.registeredAt, paidAt) {
			stats.Rejected++
			continue
		}

		payments = append(payments, Payment{
			UserID: p.userID,
			Amount: sampler.Pick(r, f.amounts),
			PaidAt: paidAt,
		})
	}

	stats.Rows = len(payments)
	return payments, stats
}
