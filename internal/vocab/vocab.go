// Package vocab holds the closed master data the generator draws from:
// acquisition sources and their campaigns, device, age and region mixes,
// event types, payment denominations and seasonal cost multipliers.
//
// The default vocabulary is embedded; a project may replace it with its own
// YAML file of the same shape.
package vocab

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/purin2/sql-practice-tutor/internal/sampler"
	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultYAML []byte

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid vocabulary")

// Weighted is a label with a relative weight.
type Weighted struct {
	Value  string  `yaml:"value"`
	Weight float64 `yaml:"weight"`
}

// UnmarshalYAML accepts either a bare scalar (weight 1) or a mapping with
// value and weight keys.
func (w *Weighted) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		w.Value = node.Value
		w.Weight = 1
		return nil
	}

	type plain Weighted
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*w = Weighted(p)
	return nil
}

// Source is an acquisition source and the campaigns that belong to it.
type Source struct {
	Name      string     `yaml:"name"`
	Weight    float64    `yaml:"weight"`
	Paid      *bool      `yaml:"paid"`
	Campaigns []Weighted `yaml:"campaigns"`
}

// IsPaid reports whether the source incurs ad cost. Sources are paid unless
// marked otherwise.
func (s Source) IsPaid() bool {
	return s.Paid == nil || *s.Paid
}

// CampaignNames returns the campaign labels in declaration order.
func (s Source) CampaignNames() []string {
	names := make([]string, len(s.Campaigns))
	for i, c := range s.Campaigns {
		names[i] = c.Value
	}
	return names
}

// Vocabulary is the full set of master data.
type Vocabulary struct {
	Sources    []Source        `yaml:"ad_sources"`
	Devices    []Weighted      `yaml:"devices"`
	AgeGroups  []Weighted      `yaml:"age_groups"`
	Regions    []Weighted      `yaml:"regions"`
	EventTypes []string        `yaml:"event_types"`
	Amounts    []int64         `yaml:"amounts"`
	Seasonal   map[int]float64 `yaml:"seasonal_multipliers"`
}

// Default returns the embedded vocabulary.
func Default() *Vocabulary {
	v, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is broken: %v", err))
	}
	return v
}

// DefaultYAML returns the source of the embedded vocabulary, a starting
// point for project overrides.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Load reads and validates a vocabulary file. An empty path yields the
// embedded default.
func Load(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", path, err)
	}
	v, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("vocabulary %s: %w", path, err)
	}
	return v, nil
}

// Parse decodes and validates a vocabulary document.
func Parse(data []byte) (*Vocabulary, error) {
	var v Vocabulary
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary: %w", err)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	return &v, nil
}

// Validate checks the vocabulary is usable by the generator.
func (v *Vocabulary) Validate() error {
	if len(v.Sources) == 0 {
		return fmt.Errorf("%w: at least one ad source is required", ErrInvalid)
	}

	seenSource := make(map[string]bool)
	seenCampaign := make(map[string]string)
	for _, s := range v.Sources {
		if s.Name == "" {
			return fmt.Errorf("%w: ad source without a name", ErrInvalid)
		}
		if seenSource[s.Name] {
			return fmt.Errorf("%w: duplicate ad source %q", ErrInvalid, s.Name)
		}
		seenSource[s.Name] = true
		if s.Weight <= 0 {
			return fmt.Errorf("%w: ad source %q needs a positive weight", ErrInvalid, s.Name)
		}
		if len(s.Campaigns) == 0 {
			return fmt.Errorf("%w: ad source %q has no campaigns", ErrInvalid, s.Name)
		}
		for _, c := range s.Campaigns {
			if owner, dup := seenCampaign[c.Value]; dup {
				return fmt.Errorf("%w: campaign %q belongs to both %q and %q", ErrInvalid, c.Value, owner, s.Name)
			}
			seenCampaign[c.Value] = s.Name
		}
		if err := checkWeights("campaigns of "+s.Name, s.Campaigns); err != nil {
			return err
		}
	}

	for name, list := range map[string][]Weighted{
		"devices":    v.Devices,
		"age_groups": v.AgeGroups,
		"regions":    v.Regions,
	} {
		if err := checkWeights(name, list); err != nil {
			return err
		}
	}

	if len(v.EventTypes) == 0 {
		return fmt.Errorf("%w: event_types is empty", ErrInvalid)
	}
	if len(v.Amounts) == 0 {
		return fmt.Errorf("%w: amounts is empty", ErrInvalid)
	}
	for month, m := range v.Seasonal {
		if month < 1 || month > 12 {
			return fmt.Errorf("%w: seasonal multiplier for month %d", ErrInvalid, month)
		}
		if m <= 0 {
			return fmt.Errorf("%w: seasonal multiplier for month %d must be positive", ErrInvalid, month)
		}
	}
	return nil
}

func checkWeights(name string, list []Weighted) error {
	if len(list) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalid, name)
	}
	for _, w := range list {
		if w.Value == "" {
			return fmt.Errorf("%w: %s contains an empty label", ErrInvalid, name)
		}
		if w.Weight <= 0 {
			return fmt.Errorf("%w: %s label %q needs a positive weight", ErrInvalid, name, w.Value)
		}
	}
	return nil
}

// Source looks up an ad source by name.
func (v *Vocabulary) Source(name string) (Source, bool) {
	for _, s := range v.Sources {
		if s.Name == name {
			return s, true
		}
	}
	return Source{}, false
}

// PaidSources returns the sources that incur ad cost, in declaration order.
func (v *Vocabulary) PaidSources() []Source {
	var paid []Source
	for _, s := range v.Sources {
		if s.IsPaid() {
			paid = append(paid, s)
		}
	}
	return paid
}

// HasCampaign reports whether campaign belongs to source.
func (v *Vocabulary) HasCampaign(source, campaign string) bool {
	s, ok := v.Source(source)
	if !ok {
		return false
	}
	for _, c := range s.Campaigns {
		if c.Value == campaign {
			return true
		}
	}
	return false
}

// Multiplier returns the seasonal cost multiplier for month.
func (v *Vocabulary) Multiplier(month time.Month) float64 {
	if m, ok := v.Seasonal[int(month)]; ok {
		return m
	}
	return 1.0
}

// SourceDistribution returns the weighted acquisition-source mix.
func (v *Vocabulary) SourceDistribution() *sampler.Distribution[string] {
	choices := make([]sampler.Choice[string], len(v.Sources))
	for i, s := range v.Sources {
		choices[i] = sampler.Choice[string]{Value: s.Name, Weight: s.Weight}
	}
	return sampler.NewDistribution(choices...)
}

// CampaignTable returns the source → campaign conditional distribution.
func (v *Vocabulary) CampaignTable() *sampler.Keyed[string, string] {
	table := sampler.NewKeyed[string, string]()
	for _, s := range v.Sources {
		table.Set(s.Name, distribution(s.Campaigns))
	}
	return table
}

// DeviceDistribution returns the device mix.
func (v *Vocabulary) DeviceDistribution() *sampler.Distribution[string] {
	return distribution(v.Devices)
}

// AgeGroupDistribution returns the age group mix.
func (v *Vocabulary) AgeGroupDistribution() *sampler.Distribution[string] {
	return distribution(v.AgeGroups)
}

// RegionDistribution returns the region mix.
func (v *Vocabulary) RegionDistribution() *sampler.Distribution[string] {
	return distribution(v.Regions)
}

func distribution(list []Weighted) *sampler.Distribution[string] {
	choices := make([]sampler.Choice[string], len(list))
	for i, w := range list {
		choices[i] = sampler.Choice[string]{Value: w.Value, Weight: w.Weight}
	}
	return sampler.NewDistribution(choices...)
}

// Labels returns the values of a weighted list.
func Labels(list []Weighted) []string {
	labels := make([]string, len(list))
	for i, w := range list {
		labels[i] = w.Value
	}
	return labels
}
