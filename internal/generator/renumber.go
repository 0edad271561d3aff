package generator

import (
	"slices"
	"time"
)

// Renumber sorts rows ascending by their time key and hands each row its
// 1-based position. The sort is stable, so rows sharing a timestamp keep
// their generation order. Afterwards identifier order, time order and
// slice order coincide.
func Renumber[T any](rows []T, at func(T) time.Time, assign func(row *T, seq int)) {
	slices.SortStableFunc(rows, func(a, b T) int {
		return at(a).Compare(at(b))
	})
	for i := range rows {
		assign(&rows[i], i+1)
	}
}

func renumberUsers(users []User) {
	Renumber(users,
		func(u User) time.Time { return u.RegisteredAt },
		func(u *User, seq int) { u.ID = FormatID(UserIDPrefix, UserIDDigits, seq) },
	)
}

func renumberPayments(payments []Payment) {
	Renumber(payments,
		func(p Payment) time.Time { return p.PaidAt },
		func(p *Payment, seq int) { p.ID = FormatID(PaymentIDPrefix, PaymentIDDigits, seq) },
	)
}

func renumberEvents(events []Event) {
	Renumber(events,
		func(e Event) time.Time { return e.OccurredAt },
		func(e *Event, seq int) { e.ID = FormatID(EventIDPrefix, EventIDDigits, seq) },
	)
}
