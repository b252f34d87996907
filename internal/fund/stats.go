package fund

import (
	"context"
	"fmt"
	"math"
	"strings"
)

// Lives-impacted formulas.
const (
	LivesDistinctDonors = "donors"
	LivesMultiplier     = "multiplier"
)

// LivesFormula derives the lives-impacted estimate. With LivesDistinctDonors every
// distinct donor counts once and every anonymous donation counts once. With
// LivesMultiplier each funded campaign counts PerCampaign lives.
type LivesFormula struct {
	Kind        string
	PerCampaign int64
}

// ParseLivesFormula validates a configured formula.
func ParseLivesFormula(kind string, perCampaign int64) (LivesFormula, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", LivesDistinctDonors:
		return LivesFormula{Kind: LivesDistinctDonors}, nil
	case LivesMultiplier:
		if perCampaign <= 0 {
			return LivesFormula{}, fmt.Errorf("lives per campaign must be > 0, got %d", perCampaign)
		}
		return LivesFormula{Kind: LivesMultiplier, PerCampaign: perCampaign}, nil
	}
	return LivesFormula{}, fmt.Errorf("unknown lives formula %q", kind)
}

// Stats reduces over every campaign and donation on each call; nothing is cached.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	campaigns, err := s.store.ListCampaigns(ctx, Filter{Sort: SortNewest})
	if err != nil {
		return Stats{}, err
	}
	donations, err := s.store.ListDonations(ctx, DonationFilter{})
	if err != nil {
		return Stats{}, err
	}
	return Aggregate(campaigns, donations, s.lives), nil
}

// Aggregate computes the rollup from a snapshot.
func Aggregate(campaigns []Campaign, donations []Donation, lives LivesFormula) Stats {
	var st Stats
	for _, c := range campaigns {
		st.TotalRaised = addSaturating(st.TotalRaised, c.CollectedAmount)
		if c.Funded() {
			st.CampaignsFunded++
		} else {
			st.ActiveCampaigns++
		}
	}

	donors := make(map[string]struct{})
	var anonymous int64
	for _, d := range donations {
		st.TotalTips = addSaturating(st.TotalTips, d.TipAmount)
		st.DonationCount++
		if d.DonorID == "" {
			anonymous++
			continue
		}
		donors[d.DonorID] = struct{}{}
	}

	switch lives.Kind {
	case LivesMultiplier:
		st.LivesImpacted = int64(st.CampaignsFunded) * lives.PerCampaign
	default:
		st.LivesImpacted = int64(len(donors)) + anonymous
	}
	return st
}

// addSaturating adds non-negative amounts, pinning at math.MaxInt64.
func addSaturating(a, b int64) int64 {
	if b > math.MaxInt64-a {
		return math.MaxInt64
	}
	return a + b
}
