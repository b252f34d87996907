package fund

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"truefund.org/internal/ids"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 5000
	maxLocationLen    = 200
	maxDonorNameLen   = 100
	maxURLLen         = 2048
)

// MaxAmount caps a single goal, donation principal or tip, in whole rupees. A
// campaign total stays below math.MaxInt64 for any realistic donation count.
const MaxAmount int64 = 1_000_000_000_000

// Store persists campaigns, donations and reviews.
//
// RecordDonation must append the donation and credit its principal to the owning
// campaign inside one transactional boundary. The credit is an atomic increment at
// the storage layer, never a read-modify-write in the caller.
type Store interface {
	InsertCampaign(ctx context.Context, c Campaign) error
	CodeExists(ctx context.Context, code string) (bool, error)
	GetCampaign(ctx context.Context, id string) (Campaign, error)
	GetCampaignByCode(ctx context.Context, code string) (Campaign, error)
	ListCampaigns(ctx context.Context, f Filter) ([]Campaign, error)
	SetVerified(ctx context.Context, id string, verified bool) (Campaign, error)
	RecordDonation(ctx context.Context, d Donation) (int64, error)
	ListDonations(ctx context.Context, f DonationFilter) ([]Donation, error)
	ReleaseDonations(ctx context.Context, campaignID string) (int, error)
	ListReviews(ctx context.Context) ([]Review, error)
}

// Service is the campaign registry and donation ledger.
type Service struct {
	store Store
	codes *CodeGenerator
	lives LivesFormula
	now   func() time.Time
}

// Option configures Service.
type Option func(*Service)

// WithLivesFormula selects how Stats derives lives impacted.
func WithLivesFormula(f LivesFormula) Option {
	return func(s *Service) { s.lives = f }
}

// WithCodeEntropy overrides the randomness behind share codes (tests).
func WithCodeEntropy(r io.Reader) Option {
	return func(s *Service) {
		if r != nil {
			s.codes.rand = r
		}
	}
}

// WithCodeCollisionHook is invoked for every rejected share-code candidate.
func WithCodeCollisionHook(fn func(code string)) Option {
	return func(s *Service) { s.codes.notify = fn }
}

// WithClock overrides the time source.
func WithClock(fn func() time.Time) Option {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService wires a Service over store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		lives: LivesFormula{Kind: LivesDistinctDonors},
		now:   time.Now,
	}
	s.codes = NewCodeGenerator(store.CodeExists, nil)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateCampaign is the single creation path: validate, gate, mint a code, persist.
func (s *Service) CreateCampaign(ctx context.Context, in CampaignInput, actor Actor) (Campaign, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return Campaign{}, ErrUnauthenticated
	}
	in, err := normalizeCampaign(in)
	if err != nil {
		return Campaign{}, err
	}
	if err := CanCreate(actor, in.Cause).Err(); err != nil {
		return Campaign{}, err
	}

	code, err := s.codes.Generate(ctx)
	if err != nil {
		return Campaign{}, err
	}

	c := Campaign{
		ID:            ids.New(),
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		Location:      in.Location,
		Cause:         in.Cause,
		GoalAmount:    in.GoalAmount,
		UniqueCode:    code,
		IsTemporary:   in.IsTemporary,
		HospitalEmail: in.HospitalEmail,
		CreatedBy:     actor.ID,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.InsertCampaign(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

func normalizeCampaign(in CampaignInput) (CampaignInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.ImageURL = strings.TrimSpace(in.ImageURL)
	in.HospitalEmail = strings.TrimSpace(in.HospitalEmail)

	switch {
	case in.Title == "":
		return in, invalid("title", "is required")
	case utf8.RuneCountInString(in.Title) > maxTitleLen:
		return in, invalid("title", fmt.Sprintf("must be at most %d characters", maxTitleLen))
	case in.Description == "":
		return in, invalid("description", "is required")
	case utf8.RuneCountInString(in.Description) > maxDescriptionLen:
		return in, invalid("description", fmt.Sprintf("must be at most %d characters", maxDescriptionLen))
	case in.GoalAmount <= 0:
		return in, invalid("goalAmount", "must be > 0")
	case in.GoalAmount > MaxAmount:
		return in, invalid("goalAmount", fmt.Sprintf("must be at most %d", MaxAmount))
	case utf8.RuneCountInString(in.Location) > maxLocationLen:
		return in, invalid("location", fmt.Sprintf("must be at most %d characters", maxLocationLen))
	}

	cause, ok := ParseCause(string(in.Cause))
	if !ok {
		return in, invalid("cause", "must be one of Medical, Education, Disaster Relief, Community")
	}
	in.Cause = cause

	if in.ImageURL != "" && !isHTTPURL(in.ImageURL) {
		return in, invalid("imageUrl", "must be an http(s) URL")
	}
	if cause != CauseMedical {
		if in.HospitalEmail != "" {
			return in, invalid("hospitalEmail", "is only accepted for Medical campaigns")
		}
		if in.IsTemporary {
			return in, invalid("isTemporary", "is only accepted for Medical campaigns")
		}
	}
	if in.HospitalEmail != "" {
		addr, err := mail.ParseAddress(in.HospitalEmail)
		if err != nil || addr.Address != in.HospitalEmail {
			return in, invalid("hospitalEmail", "must be an email address")
		}
	}
	return in, nil
}

func isHTTPURL(raw string) bool {
	if len(raw) > maxURLLen {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// GetCampaign fetches one campaign.
func (s *Service) GetCampaign(ctx context.Context, id string) (Campaign, error) {
	return s.store.GetCampaign(ctx, strings.TrimSpace(id))
}

// GetCampaignByCode resolves a share code, case-insensitively.
func (s *Service) GetCampaignByCode(ctx context.Context, code string) (Campaign, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if !ValidCode(code) {
		return Campaign{}, ErrNotFound
	}
	return s.store.GetCampaignByCode(ctx, code)
}

// ListCampaigns is a read-only projection.
func (s *Service) ListCampaigns(ctx context.Context, f Filter) ([]Campaign, error) {
	if f.Sort == "" {
		f.Sort = SortNewest
	}
	f.Location = strings.TrimSpace(f.Location)
	f.Search = strings.TrimSpace(f.Search)
	return s.store.ListCampaigns(ctx, f)
}

// SetVerified flips the campaign's verified flag. Release gating is evaluated lazily,
// so no donation is touched here.
func (s *Service) SetVerified(ctx context.Context, id string, verified bool, actor Actor) (Campaign, error) {
	if !actor.IsAdmin {
		return Campaign{}, &DeniedError{Reason: "admin access required"}
	}
	return s.store.SetVerified(ctx, strings.TrimSpace(id), verified)
}

// Donate validates and records a donation, crediting only the principal to the
// campaign. donor may be empty for anonymous gifts.
func (s *Service) Donate(ctx context.Context, in DonationInput, donor string) (Donation, Campaign, error) {
	if in.Amount <= 0 {
		return Donation{}, Campaign{}, ErrInvalidAmount
	}
	if in.Amount > MaxAmount {
		return Donation{}, Campaign{}, fmt.Errorf("%w: amount must be at most %d", ErrInvalidAmount, MaxAmount)
	}
	if in.TipAmount < 0 {
		return Donation{}, Campaign{}, fmt.Errorf("%w: tipAmount must be >= 0", ErrInvalidAmount)
	}
	if in.TipAmount > MaxAmount {
		return Donation{}, Campaign{}, fmt.Errorf("%w: tipAmount must be at most %d", ErrInvalidAmount, MaxAmount)
	}
	in.DonorName = strings.TrimSpace(in.DonorName)
	if utf8.RuneCountInString(in.DonorName) > maxDonorNameLen {
		return Donation{}, Campaign{}, invalid("donorName", fmt.Sprintf("must be at most %d characters", maxDonorNameLen))
	}
	campaignID := strings.TrimSpace(in.CampaignID)
	if campaignID == "" {
		return Donation{}, Campaign{}, invalid("campaignId", "is required")
	}

	c, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return Donation{}, Campaign{}, err
	}

	d := Donation{
		ID:         ids.New(),
		CampaignID: c.ID,
		DonorID:    strings.TrimSpace(donor),
		DonorName:  in.DonorName,
		Amount:     in.Amount,
		TipAmount:  in.TipAmount,
		Released:   CanReleaseFunds(c).Allowed,
		CreatedAt:  s.now().UTC(),
	}
	collected, err := s.store.RecordDonation(ctx, d)
	if err != nil {
		return Donation{}, Campaign{}, err
	}
	c.CollectedAmount = collected
	return d, c, nil
}

// CampaignDonations lists a campaign's donations, newest first.
func (s *Service) CampaignDonations(ctx context.Context, campaignID string) ([]Donation, error) {
	campaignID = strings.TrimSpace(campaignID)
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	return s.store.ListDonations(ctx, DonationFilter{CampaignID: campaignID})
}

// DonorDonations lists donations made by donor, newest first.
func (s *Service) DonorDonations(ctx context.Context, donor string) ([]Donation, error) {
	donor = strings.TrimSpace(donor)
	if donor == "" {
		return nil, ErrUnauthenticated
	}
	return s.store.ListDonations(ctx, DonationFilter{DonorID: donor})
}

// ReleaseHeld is the explicit follow-up after verification: it marks the campaign's
// held donations released once the gate allows it. Calling it again releases nothing.
func (s *Service) ReleaseHeld(ctx context.Context, campaignID string, actor Actor) (int, error) {
	if !actor.IsAdmin {
		return 0, &DeniedError{Reason: "admin access required"}
	}
	c, err := s.store.GetCampaign(ctx, strings.TrimSpace(campaignID))
	if err != nil {
		return 0, err
	}
	if err := CanReleaseFunds(c).Err(); err != nil {
		return 0, err
	}
	return s.store.ReleaseDonations(ctx, c.ID)
}

// Reviews returns testimonial reference data.
func (s *Service) Reviews(ctx context.Context) ([]Review, error) {
	return s.store.ListReviews(ctx)
}
