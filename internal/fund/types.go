package fund

import (
	"strings"
	"time"
)

// Cause classifies a campaign. The set is closed.
type Cause string

const (
	CauseMedical        Cause = "Medical"
	CauseEducation      Cause = "Education"
	CauseDisasterRelief Cause = "Disaster Relief"
	CauseCommunity      Cause = "Community"
)

// Causes lists every accepted cause in display order.
var Causes = []Cause{CauseMedical, CauseEducation, CauseDisasterRelief, CauseCommunity}

// ParseCause matches raw case-insensitively against the known causes.
func ParseCause(raw string) (Cause, bool) {
	raw = strings.TrimSpace(raw)
	for _, c := range Causes {
		if strings.EqualFold(raw, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Actor is the resolved identity behind a request. Flags come from the stored user
// record, never from the token.
type Actor struct {
	ID          string `json:"id"`
	KYCVerified bool   `json:"kycVerified"`
	IsNgo       bool   `json:"isNgo"`
	IsAdmin     bool   `json:"isAdmin"`
}

// Campaign amounts are whole rupees. No floats.
type Campaign struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	Location        string    `json:"location"`
	Cause           Cause     `json:"cause"`
	GoalAmount      int64     `json:"goalAmount"`
	CollectedAmount int64     `json:"collectedAmount"`
	UniqueCode      string    `json:"uniqueCode"`
	Verified        bool      `json:"verified"`
	IsTemporary     bool      `json:"isTemporary"`
	HospitalEmail   string    `json:"hospitalEmail,omitempty"`
	CreatedBy       string    `json:"createdBy"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Funded reports whether the campaign reached its goal.
func (c Campaign) Funded() bool { return c.GoalAmount > 0 && c.CollectedAmount >= c.GoalAmount }

// CampaignInput carries the creator-supplied fields of a new campaign.
type CampaignInput struct {
	Title         string
	Description   string
	Cause         Cause
	GoalAmount    int64
	Location      string
	ImageURL      string
	HospitalEmail string
	IsTemporary   bool
}

// Donation is an immutable ledger entry. Amount is the principal credited to the
// campaign; TipAmount supports the platform and never counts toward the goal.
type Donation struct {
	ID         string    `json:"id"`
	CampaignID string    `json:"campaignId"`
	DonorID    string    `json:"donorId,omitempty"`
	DonorName  string    `json:"donorName,omitempty"`
	Amount     int64     `json:"amount"`
	TipAmount  int64     `json:"tipAmount"`
	Released   bool      `json:"released"`
	CreatedAt  time.Time `json:"createdAt"`
}

// DonationInput is a donation request before validation.
type DonationInput struct {
	CampaignID string
	Amount     int64
	TipAmount  int64
	DonorName  string
}

// SortKey orders campaign listings.
type SortKey string

const (
	SortNewest     SortKey = "newest"
	SortMostFunded SortKey = "most_funded"
	SortVerified   SortKey = "verified"
)

// ParseSortKey defaults to newest-first for an empty key.
func ParseSortKey(raw string) (SortKey, bool) {
	switch SortKey(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SortNewest:
		return SortNewest, true
	case SortMostFunded:
		return SortMostFunded, true
	case SortVerified:
		return SortVerified, true
	}
	return "", false
}

// Filter narrows a campaign listing. Zero values mean "any".
type Filter struct {
	Cause        Cause
	Location     string
	VerifiedOnly bool
	Search       string
	CreatedBy    string
	Sort         SortKey
}

// DonationFilter narrows a donation listing. An empty filter selects every donation.
type DonationFilter struct {
	CampaignID string
	DonorID    string
}

// Review is static testimonial content.
type Review struct {
	ID         string    `json:"id"`
	UserName   string    `json:"userName"`
	UserImage  string    `json:"userImage,omitempty"`
	ReviewText string    `json:"reviewText"`
	Rating     int       `json:"rating"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Stats is the platform-wide rollup.
type Stats struct {
	TotalRaised     int64 `json:"totalRaised"`
	CampaignsFunded int   `json:"campaignsFunded"`
	LivesImpacted   int64 `json:"livesImpacted"`
	TotalTips       int64 `json:"totalTips"`
	DonationCount   int   `json:"donationCount"`
	ActiveCampaigns int   `json:"activeCampaigns"`
}
