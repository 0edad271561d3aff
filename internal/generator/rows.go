package generator

import (
	"fmt"
	"time"

	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// Table names of the generated dataset.
const (
	TableUsers    = "users"
	TablePayments = "payments"
	TableEvents   = "events"
	TableAdCosts  = "ad_costs"
)

// Identifier prefixes and widths.
const (
	UserIDPrefix    = "U"
	UserIDDigits    = 5
	PaymentIDPrefix = "P"
	PaymentIDDigits = 6
	EventIDPrefix   = "E"
	EventIDDigits   = 7
)

// FormatID renders a dense sequence number as a zero-padded identifier.
func FormatID(prefix string, digits, n int) string {
	return fmt.Sprintf("%s%0*d", prefix, digits, n)
}

// User is a registered user. ID is empty until the users table is renumbered.
type User struct {
	ID           string
	AdSource     string
	Campaign     string
	Device       string
	AgeGroup     string
	Region       string
	RegisteredAt time.Time
}

// Row converts the user to a document row.
func (u User) Row() core.Row {
	return core.Row{
		{Name: "user_id", Value: u.ID},
		{Name: "ad_source", Value: u.AdSource},
		{Name: "campaign", Value: u.Campaign},
		{Name: "device", Value: u.Device},
		{Name: "age_group", Value: u.AgeGroup},
		{Name: "region", Value: u.Region},
		{Name: "registered_at", Value: core.FormatTimestamp(u.RegisteredAt)},
	}
}

// Payment is one purchase by a user.
type Payment struct {
	ID     string
	UserID string
	Amount int64
	PaidAt time.Time
}

// Row converts the payment to a document row.
func (p Payment) Row() core.Row {
	return core.Row{
		{Name: "payment_id", Value: p.ID},
		{Name: "user_id", Value: p.UserID},
		{Name: "amount", Value: p.Amount},
		{Name: "payment_date", Value: core.FormatTimestamp(p.PaidAt)},
	}
}

// Event is one in-app action by a user.
type Event struct {
	ID         string
	UserID     string
	EventType  string
	OccurredAt time.Time
}

// Row converts the event to a document row.
func (e Event) Row() core.Row {
	return core.Row{
		{Name: "event_id", Value: e.ID},
		{Name: "user_id", Value: e.UserID},
		{Name: "event_type", Value: e.EventType},
		{Name: "event_date", Value: core.FormatTimestamp(e.OccurredAt)},
	}
}

// AdCost is the monthly spend of one campaign.
type AdCost struct {
	ID       int
	Month    string
	AdSource string
	Campaign string
	Cost     int64
}

// Row converts the ad cost to a document row.
func (a AdCost) Row() core.Row {
	return core.Row{
		{Name: "id", Value: int64(a.ID)},
		{Name: "month", Value: a.Month},
		{Name: "ad_source", Value: a.AdSource},
		{Name: "campaign", Value: a.Campaign},
		{Name: "cost", Value: a.Cost},
	}
}

// Dataset holds the four generated tables.
type Dataset struct {
	Users    []User
	Payments []Payment
	Events   []Event
	AdCosts  []AdCost
}
