package generator

import (
	"math/rand"

	"github.com/purin2/sql-practice-tutor/internal/sampler"
	"github.com/purin2/sql-practice-tutor/internal/vocab"
)

// userFactory draws user candidates. Rows come out unnumbered and unsorted.
type userFactory struct {
	cfg       Config
	sources   *sampler.Distribution[string]
	campaigns *sampler.Keyed[string, string]
	devices   *sampler.Distribution[string]
	ageGroups *sampler.Distribution[string]
	regions   *sampler.Distribution[string]
}

func newUserFactory(cfg Config, v *vocab.Vocabulary) *userFactory {
	return &userFactory{
		cfg:       cfg,
		sources:   v.SourceDistribution(),
		campaigns: v.CampaignTable(),
		devices:   v.DeviceDistribution(),
		ageGroups: v.AgeGroupDistribution(),
		regions:   v.RegionDistribution(),
	}
}

func (f *userFactory) generate(r *rand.Rand) ([]User, TableStats) {
	users := make([]User, 0, f.cfg.Users)
	for i := 0; i < f.cfg.Users; i++ {
		source := f.sources.Sample(r)
		// every vocabulary source owns a campaign distribution
		campaign, _ := f.campaigns.SampleFor(r, source)
		users = append(users, User{
			AdSource:     source,
			Campaign:     campaign,
			Device:       f.devices.Sample(r),
			AgeGroup:     f.ageGroups.Sample(r),
			Region:       f.regions.Sample(r),
			RegisteredAt: sampler.TimeBetween(r, f.cfg.RegistrationStart, f.cfg.RegistrationEnd),
		})
	}

	return users, TableStats{
		Table:    TableUsers,
		Target:   f.cfg.Users,
		Rows:     len(users),
		Attempts: len(users),
	}
}
