package vocab

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	v := Default()

	require.Len(t, v.Sources, 5)
	assert.Equal(t, "meta", v.Sources[0].Name)
	assert.Equal(t, 35.0, v.Sources[0].Weight)

	paid := v.PaidSources()
	names := make([]string, len(paid))
	campaigns := 0
	for i, s := range paid {
		names[i] = s.Name
		campaigns += len(s.Campaigns)
	}
	assert.Equal(t, []string{"meta", "google", "twitter", "tiktok"}, names)
	assert.Equal(t, 10, campaigns)

	organic, ok := v.Source("organic")
	require.True(t, ok)
	assert.False(t, organic.IsPaid())
	assert.Equal(t, []string{"organic_direct", "organic_referral", "organic_seo"}, organic.CampaignNames())

	assert.Equal(t, []string{"ios", "android"}, Labels(v.Devices))
	assert.Equal(t, []string{"18-24", "25-34", "35-44", "45+"}, Labels(v.AgeGroups))
	assert.Equal(t, []string{"関東", "関西", "中部", "九州", "その他"}, Labels(v.Regions))
	assert.Len(t, v.EventTypes, 5)
	assert.Len(t, v.Amounts, 13)
	assert.Contains(t, v.Amounts, int64(9800))
}

func TestMultiplier(t *testing.T) {
	v := Default()
	assert.Equal(t, 1.5, v.Multiplier(time.December))
	assert.Equal(t, 1.3, v.Multiplier(time.March))
	assert.Equal(t, 1.0, v.Multiplier(time.July))
}

func TestHasCampaign(t *testing.T) {
	v := Default()
	assert.True(t, v.HasCampaign("google", "google_search"))
	assert.False(t, v.HasCampaign("google", "meta_conversion"))
	assert.False(t, v.HasCampaign("myspace", "google_search"))
}

func TestCampaignTable(t *testing.T) {
	v := Default()
	table := v.CampaignTable()
	assert.Equal(t, []string{"meta", "google", "twitter", "tiktok", "organic"}, table.Keys())

	d, ok := table.Get("tiktok")
	require.True(t, ok)
	assert.Equal(t, []string{"tiktok_viral", "tiktok_creator"}, d.Values())
}

func TestParse_Invalid(t *testing.T) {
	base := `
ad_sources:
  - name: meta
    weight: 1
    campaigns: [a]
age_groups: [adult]
regions: [north]
event_types: [app_open]
amounts: [100]
`
	tests := []struct {
		name      string
		input     string
		errSubstr string
	}{
		{
			name:      "no sources",
			input:     "devices: [ios]",
			errSubstr: "at least one ad source",
		},
		{
			name: "source without campaigns",
			input: `
ad_sources:
  - name: meta
    weight: 1
`,
			errSubstr: "has no campaigns",
		},
		{
			name: "campaign shared by two sources",
			input: `
ad_sources:
  - {name: meta, weight: 1, campaigns: [shared]}
  - {name: google, weight: 1, campaigns: [shared]}
`,
			errSubstr: "belongs to both",
		},
		{
			name:      "bad seasonal month",
			input:     base + "devices: [ios]\nseasonal_multipliers: {13: 2}\n",
			errSubstr: "month 13",
		},
		{
			name:      "zero weight device",
			input:     base + "devices: [{value: ios, weight: 0}]\n",
			errSubstr: "positive weight",
		},
		{
			name:      "malformed yaml",
			input:     "ad_sources: [",
			errSubstr: "failed to parse vocabulary",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errSubstr)
		})
	}

	v, err := Parse([]byte(base + "devices: [ios]\n"))
	require.NoError(t, err)
	assert.Equal(t, []Weighted{{Value: "ios", Weight: 1}}, v.Devices)
}

func TestLoad(t *testing.T) {
	v, err := Load("")
	require.NoError(t, err)
	assert.Len(t, v.Sources, 5)

	path := filepath.Join(t.TempDir(), "vocab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
ad_sources:
  - name: line
    weight: 1
    campaigns: [{value: line_ads, weight: 3}, line_official]
devices: [ios]
age_groups: [all]
regions: [tokyo]
event_types: [app_open]
amounts: [500]
`), 0o600))

	v, err = Load(path)
	require.NoError(t, err)
	require.Len(t, v.Sources, 1)
	assert.Equal(t, []Weighted{{Value: "line_ads", Weight: 3}, {Value: "line_official", Weight: 1}}, v.Sources[0].Campaigns)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefaultYAML(t *testing.T) {
	data := DefaultYAML()
	v, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default(), v)

	// callers get their own copy
	data[0] = '!'
	_, err = Parse(DefaultYAML())
	assert.NoError(t, err)
}
