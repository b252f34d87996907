package fund

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// InMemory implements Store with in-process concurrency safety. The API uses it when
// no database is configured.
type InMemory struct {
	mu        sync.RWMutex
	campaigns map[string]*Campaign
	codes     map[string]string // uniqueCode -> campaign id
	donations []Donation
	reviews   []Review
}

var _ Store = (*InMemory)(nil)

// NewInMemory creates an empty store seeded with reviews.
func NewInMemory(reviews ...Review) *InMemory {
	return &InMemory{
		campaigns: make(map[string]*Campaign),
		codes:     make(map[string]string),
		reviews:   append([]Review(nil), reviews...),
	}
}

func (s *InMemory) InsertCampaign(ctx context.Context, c Campaign) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[c.ID]; ok {
		return ErrConflict
	}
	if _, ok := s.codes[c.UniqueCode]; ok {
		return ErrConflict
	}
	c.CollectedAmount = 0
	c.Verified = false
	s.campaigns[c.ID] = &c
	s.codes[c.UniqueCode] = c.ID
	return nil
}

func (s *InMemory) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.codes[code]
	return ok, nil
}

func (s *InMemory) GetCampaign(ctx context.Context, id string) (Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.campaigns[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return *c, nil
}

func (s *InMemory) GetCampaignByCode(ctx context.Context, code string) (Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.codes[code]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	return *s.campaigns[id], nil
}

func (s *InMemory) ListCampaigns(ctx context.Context, f Filter) ([]Campaign, error) {
	s.mu.RLock()
	res := make([]Campaign, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		if f.Match(*c) {
			res = append(res, *c)
		}
	}
	s.mu.RUnlock()
	SortCampaigns(res, f.Sort)
	return res, nil
}

func (s *InMemory) SetVerified(ctx context.Context, id string, verified bool) (Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return Campaign{}, ErrNotFound
	}
	c.Verified = verified
	return *c, nil
}

// RecordDonation appends and credits under one lock hold, so neither half is
// observable without the other.
func (s *InMemory) RecordDonation(ctx context.Context, d Donation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	collected, err := s.applyDonation(d.CampaignID, d.Amount)
	if err != nil {
		return 0, err
	}
	s.donations = append(s.donations, d)
	return collected, nil
}

// applyDonation credits principal to a campaign. Caller holds s.mu.
func (s *InMemory) applyDonation(campaignID string, principal int64) (int64, error) {
	c, ok := s.campaigns[campaignID]
	if !ok {
		return 0, ErrNotFound
	}
	if principal <= 0 || principal > math.MaxInt64-c.CollectedAmount {
		return 0, fmt.Errorf("%w: collected amount would overflow", ErrInvalidAmount)
	}
	c.CollectedAmount += principal
	return c.CollectedAmount, nil
}

func (s *InMemory) ListDonations(ctx context.Context, f DonationFilter) ([]Donation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]Donation, 0)
	for i := len(s.donations) - 1; i >= 0; i-- {
		d := s.donations[i]
		if f.CampaignID != "" && d.CampaignID != f.CampaignID {
			continue
		}
		if f.DonorID != "" && d.DonorID != f.DonorID {
			continue
		}
		res = append(res, d)
	}
	return res, nil
}

func (s *InMemory) ReleaseDonations(ctx context.Context, campaignID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.campaigns[campaignID]; !ok {
		return 0, ErrNotFound
	}
	n := 0
	for i := range s.donations {
		if s.donations[i].CampaignID == campaignID && !s.donations[i].Released {
			s.donations[i].Released = true
			n++
		}
	}
	return n, nil
}

func (s *InMemory) ListReviews(ctx context.Context) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := append([]Review(nil), s.reviews...)
	sort.SliceStable(res, func(i, j int) bool { return res[i].CreatedAt.After(res[j].CreatedAt) })
	return res, nil
}
