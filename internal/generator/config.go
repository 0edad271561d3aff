package generator

import (
	"fmt"
	"time"
)

// Default generation parameters.
const (
	DefaultUsers              = 500
	DefaultPayments           = 500
	DefaultEvents             = 2000
	DefaultEventsPerUserMin   = 2
	DefaultEventsPerUserMax   = 8
	DefaultPayerRate          = 0.3
	DefaultMaxPaymentAttempts = 10000
	DefaultMaxEventRetries    = 100
	DefaultAdCostBaseMin      = 50000
	DefaultAdCostBaseSpread   = 200000
)

// Default calendar window: users register during the data year and
// activity closes a few days after the last registration.
var (
	DefaultRegistrationStart = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	DefaultRegistrationEnd   = time.Date(2024, time.December, 15, 0, 0, 0, 0, time.UTC)
	DefaultClosingDate       = time.Date(2024, time.December, 20, 0, 0, 0, 0, time.UTC)
)

// Config controls the size and shape of a generated dataset.
type Config struct {
	// Users is the exact number of users generated.
	Users int `koanf:"users"`
	// Payments is the target payment row count.
	Payments int `koanf:"payments"`
	// Events is the global event row cap.
	Events int `koanf:"events"`

	EventsPerUserMin int `koanf:"events_per_user_min"`
	EventsPerUserMax int `koanf:"events_per_user_max"`

	// PayerRate is the probability that a user is payment-eligible.
	PayerRate float64 `koanf:"payer_rate"`

	// MaxPaymentAttempts bounds the payment generate-and-test loop. Every
	// iteration counts, whether its candidate is kept or discarded.
	MaxPaymentAttempts int `koanf:"max_payment_attempts"`

	// MaxEventRetries bounds how often one event candidate is resampled
	// before it is dropped.
	MaxEventRetries int `koanf:"max_event_retries"`

	// Registrations fall in [RegistrationStart, RegistrationEnd).
	RegistrationStart time.Time `koanf:"registration_start"`
	RegistrationEnd   time.Time `koanf:"registration_end"`

	// ClosingDate is the exclusive upper bound for payments and events.
	ClosingDate time.Time `koanf:"closing_date"`

	// Ad cost base values fall in [AdCostBaseMin, AdCostBaseMin+AdCostBaseSpread).
	AdCostBaseMin    int64 `koanf:"ad_cost_base_min"`
	AdCostBaseSpread int64 `koanf:"ad_cost_base_spread"`
}

// DefaultConfig returns the standard dataset shape.
func DefaultConfig() Config {
	return Config{
		Users:              DefaultUsers,
		Payments:           DefaultPayments,
		Events:             DefaultEvents,
		EventsPerUserMin:   DefaultEventsPerUserMin,
		EventsPerUserMax:   DefaultEventsPerUserMax,
		PayerRate:          DefaultPayerRate,
		MaxPaymentAttempts: DefaultMaxPaymentAttempts,
		MaxEventRetries:    DefaultMaxEventRetries,
		RegistrationStart:  DefaultRegistrationStart,
		RegistrationEnd:    DefaultRegistrationEnd,
		ClosingDate:        DefaultClosingDate,
		AdCostBaseMin:      DefaultAdCostBaseMin,
		AdCostBaseSpread:   DefaultAdCostBaseSpread,
	}
}

// Validate rejects configurations the factories cannot honour.
func (c Config) Validate() error {
	switch {
	case c.Users < 0:
		return fmt.Errorf("%w: users must not be negative", ErrInvalidConfig)
	case c.Payments < 0:
		return fmt.Errorf("%w: payments must not be negative", ErrInvalidConfig)
	case c.Events < 0:
		return fmt.Errorf("%w: events must not be negative", ErrInvalidConfig)
	case c.EventsPerUserMin < 0 || c.EventsPerUserMax < c.EventsPerUserMin:
		return fmt.Errorf("%w: events per user range [%d, %d] is invalid",
			ErrInvalidConfig, c.EventsPerUserMin, c.EventsPerUserMax)
	case c.PayerRate < 0 || c.PayerRate > 1:
		return fmt.Errorf("%w: payer_rate %.2f is outside [0, 1]", ErrInvalidConfig, c.PayerRate)
	case c.MaxPaymentAttempts < 0:
		return fmt.Errorf("%w: max_payment_attempts must not be negative", ErrInvalidConfig)
	case c.MaxEventRetries < 1:
		return fmt.Errorf("%w: max_event_retries must be at least 1", ErrInvalidConfig)
	case c.RegistrationStart.IsZero() || c.RegistrationEnd.IsZero() || c.ClosingDate.IsZero():
		return fmt.Errorf("%w: registration window and closing date are required", ErrInvalidConfig)
	case !c.RegistrationEnd.After(c.RegistrationStart):
		return fmt.Errorf("%w: registration_end must be after registration_start", ErrInvalidConfig)
	case c.ClosingDate.Before(c.RegistrationEnd):
		return fmt.Errorf("%w: closing_date must not precede registration_end", ErrInvalidConfig)
	case c.AdCostBaseMin < 0 || c.AdCostBaseSpread < 0:
		return fmt.Errorf("%w: ad cost range must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Months returns the first instant of each of the twelve ad cost periods,
// the calendar months of the registration year.
func (c Config) Months() []time.Time {
	year := c.RegistrationStart.UTC().Year()
	months := make([]time.Time, 12)
	for i := range months {
		months[i] = time.Date(year, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC)
	}
	return months
}
