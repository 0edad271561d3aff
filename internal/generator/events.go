package generator

import (
	"math/rand"

	"github.com/purin2/sql-practice-tutor/internal/sampler"
)

// eventFactory draws a small burst of events for every user, in users
// table order, until the global cap is hit.
type eventFactory struct {
	cfg        Config
	eventTypes []string
}

func (f *eventFactory) generate(r *rand.Rand, users []User) ([]Event, TableStats) {
	stats := TableStats{Table: TableEvents, Target: f.cfg.Events}
	events := make([]Event, 0, f.cfg.Events)

	for _, u := range users {
		if len(events) >= f.cfg.Events {
			break
		}
		n := sampler.IntBetween(r, f.cfg.EventsPerUserMin, f.cfg.EventsPerUserMax)
		for j := 0; j < n && len(events) < f.cfg.Events; j++ {
			eventType := sampler.Pick(r, f.eventTypes)

			// a candidate that never passes is dropped and the user has one event fewer
			for retry := 0; retry < f.cfg.MaxEventRetries; retry++ {
				stats.Attempts++
				at := sampler.TimeBetween(r, u.RegisteredAt, f.cfg.ClosingDate)
				if violatesCausality(u.RegisteredAt, at) {
					stats.Rejected++
					continue
				}
				events = append(events, Event{UserID: u.ID, EventType: eventType, OccurredAt: at})
				break
			}
		}
	}

	stats.Rows = len(events)
	if f.cfg.Events > 0 && len(events) >= f.cfg.Events {
		stats.Reason = ReasonRowCap
	}
	return events, stats
}
