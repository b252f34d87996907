package fund

import (
	"sort"
	"strings"
)

// Match reports whether c passes every non-zero criterion of f.
func (f Filter) Match(c Campaign) bool {
	if f.Cause != "" && c.Cause != f.Cause {
		return false
	}
	if f.Location != "" && !strings.EqualFold(strings.TrimSpace(c.Location), f.Location) {
		return false
	}
	if f.VerifiedOnly && !c.Verified {
		return false
	}
	if f.CreatedBy != "" && c.CreatedBy != f.CreatedBy {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Title), q) && !strings.EqualFold(c.UniqueCode, f.Search) {
			return false
		}
	}
	return true
}

// SortCampaigns orders list in place. Every key starts from newest-first, so ties
// and the verified grouping stay stable over creation order.
func SortCampaigns(list []Campaign, key SortKey) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].ID > list[j].ID
	})
	switch key {
	case SortMostFunded:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].CollectedAmount > list[j].CollectedAmount
		})
	case SortVerified:
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Verified && !list[j].Verified
		})
	}
}
