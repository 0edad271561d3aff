// Package sampler draws categorical values, integers and instants from an
// explicit random stream.
//
// Every function takes the *rand.Rand to draw from. Nothing in this package
// touches a process-global source, so a seeded stream always reproduces the
// same sequence of draws.
package sampler

import (
	"math/rand"
	"time"
)

// Choice is one labeled entry of a weighted distribution.
type Choice[T any] struct {
	Value  T
	Weight float64
}

// Distribution is an ordered list of weighted labels.
type Distribution[T any] struct {
	choices []Choice[T]
	total   float64
}

// NewDistribution builds a distribution from choices, keeping their order.
// Choices with a non-positive weight are kept as labels but never drawn,
// except as the fallback when no positive weight exists.
func NewDistribution[T any](choices ...Choice[T]) *Distribution[T] {
	d := &Distribution[T]{choices: choices}
	for _, c := range choices {
		if c.Weight > 0 {
			d.total += c.Weight
		}
	}
	return d
}

// Uniform builds a distribution giving every value the same weight.
func Uniform[T any](values ...T) *Distribution[T] {
	choices := make([]Choice[T], len(values))
	for i, v := range values {
		choices[i] = Choice[T]{Value: v, Weight: 1}
	}
	return NewDistribution(choices...)
}

// Len returns the number of labels.
func (d *Distribution[T]) Len() int {
	return len(d.choices)
}

// Values returns the labels in declaration order.
func (d *Distribution[T]) Values() []T {
	values := make([]T, len(d.choices))
	for i, c := range d.choices {
		values[i] = c.Value
	}
	return values
}

// Choices returns a copy of the weighted labels.
func (d *Distribution[T]) Choices() []Choice[T] {
	return append([]Choice[T](nil), d.choices...)
}

// Sample draws one label with probability proportional to its weight.
//
// An empty distribution yields the zero value and a degenerate one (no
// positive weight) yields the first label. Sample never fails.
func (d *Distribution[T]) Sample(r *rand.Rand) T {
	var zero T
	if len(d.choices) == 0 {
		return zero
	}
	if d.total <= 0 {
		return d.choices[0].Value
	}

	x := r.Float64() * d.total
	for _, c := range d.choices {
		if c.Weight <= 0 {
			continue
		}
		x -= c.Weight
		if x <= 0 {
			return c.Value
		}
	}
	// rounding left a sliver past the last bucket
	return d.choices[0].Value
}

// Pick selects one element of values with equal probability.
// An empty slice yields the zero value.
func Pick[T any](r *rand.Rand, values []T) T {
	var zero T
	if len(values) == 0 {
		return zero
	}
	return values[r.Intn(len(values))]
}

// Chance reports true with probability p.
func Chance(r *rand.Rand, p float64) bool {
	return r.Float64() < p
}

// IntBetween draws an integer uniformly from [lo, hi].
// If hi < lo it returns lo.
func IntBetween(r *rand.Rand, lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// TimeBetween draws an instant uniformly from [lo, hi), truncated to whole
// seconds. If the window is empty it returns lo truncated.
func TimeBetween(r *rand.Rand, lo, hi time.Time) time.Time {
	span := hi.Sub(lo)
	if span <= 0 {
		return lo.Truncate(time.Second)
	}
	offset := time.Duration(r.Float64() * float64(span))
	return lo.Add(offset).Truncate(time.Second)
}
