package moderation

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"truefund.org/internal/fund"
	"truefund.org/internal/ids"
)

const (
	maxNameLen    = 100
	maxMessageLen = 5000
	maxURLLen     = 2048
)

// Store persists NGO requests and tickets.
//
// InsertNgo fails with fund.ErrConflict while the user already has a pending request.
// ResolveNgo and ResolveTicket only transition records that are still pending/open
// and always return the stored record as it stands afterwards.
type Store interface {
	InsertNgo(ctx context.Context, v NgoVerification) error
	ListNgo(ctx context.Context, f NgoFilter) ([]NgoVerification, error)
	ResolveNgo(ctx context.Context, id string, status NgoStatus, at time.Time) (NgoVerification, error)
	InsertTicket(ctx context.Context, t Ticket) error
	ListTickets(ctx context.Context, openOnly bool) ([]Ticket, error)
	ResolveTicket(ctx context.Context, id string, at time.Time) (Ticket, error)
}

// UserFlagger applies an approved NGO request to the user record.
type UserFlagger interface {
	SetNgo(ctx context.Context, userID string, isNgo bool) error
}

// Service runs the NGO verification and support ticket queues.
type Service struct {
	store Store
	users UserFlagger
	now   func() time.Time
}

func NewService(store Store, users UserFlagger) *Service {
	return &Service{store: store, users: users, now: time.Now}
}

// SubmitNgo opens a pending request. A user may hold one pending request at a time;
// rejected users may apply again.
func (s *Service) SubmitNgo(ctx context.Context, userID, documentsURL string) (NgoVerification, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return NgoVerification{}, fund.ErrUnauthenticated
	}
	documentsURL = strings.TrimSpace(documentsURL)
	if documentsURL == "" {
		return NgoVerification{}, invalid("documentsUrl", "is required")
	}
	if !isHTTPURL(documentsURL) {
		return NgoVerification{}, invalid("documentsUrl", "must be an http(s) URL")
	}
	v := NgoVerification{
		ID:           ids.New(),
		UserID:       userID,
		DocumentsURL: documentsURL,
		Status:       NgoPending,
		RequestedAt:  s.now().UTC(),
	}
	if err := s.store.InsertNgo(ctx, v); err != nil {
		if errors.Is(err, fund.ErrConflict) {
			return NgoVerification{}, fmt.Errorf("%w: a verification request is already pending", fund.ErrConflict)
		}
		return NgoVerification{}, err
	}
	return v, nil
}

// MineNgo lists the user's own requests, newest first.
func (s *Service) MineNgo(ctx context.Context, userID string) ([]NgoVerification, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fund.ErrUnauthenticated
	}
	return s.store.ListNgo(ctx, NgoFilter{UserID: userID})
}

// ListNgo lists every request, or only pending ones.
func (s *Service) ListNgo(ctx context.Context, pendingOnly bool) ([]NgoVerification, error) {
	return s.store.ListNgo(ctx, NgoFilter{PendingOnly: pendingOnly})
}

// ResolveNgo approves or rejects a request. Repeating the same outcome is a no-op that
// re-applies the user flag; flipping a resolved request fails with fund.ErrConflict.
func (s *Service) ResolveNgo(ctx context.Context, id string, verified bool) (NgoVerification, error) {
	want := NgoRejected
	if verified {
		want = NgoVerified
	}
	v, err := s.store.ResolveNgo(ctx, strings.TrimSpace(id), want, s.now().UTC())
	if err != nil {
		return NgoVerification{}, err
	}
	if v.Status != want {
		return v, fmt.Errorf("%w: request already %s", fund.ErrConflict, v.Status)
	}
	if verified && s.users != nil {
		if err := s.users.SetNgo(ctx, v.UserID, true); err != nil {
			return v, fmt.Errorf("flag user %s as ngo: %w", v.UserID, err)
		}
	}
	return v, nil
}

// SubmitTicket opens a support ticket. No account is needed.
func (s *Service) SubmitTicket(ctx context.Context, in TicketInput) (Ticket, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Message = strings.TrimSpace(in.Message)
	switch {
	case in.Name == "":
		return Ticket{}, invalid("name", "is required")
	case utf8.RuneCountInString(in.Name) > maxNameLen:
		return Ticket{}, invalid("name", fmt.Sprintf("must be at most %d characters", maxNameLen))
	case in.Email == "":
		return Ticket{}, invalid("email", "is required")
	case in.Message == "":
		return Ticket{}, invalid("message", "is required")
	case utf8.RuneCountInString(in.Message) > maxMessageLen:
		return Ticket{}, invalid("message", fmt.Sprintf("must be at most %d characters", maxMessageLen))
	}
	if addr, err := mail.ParseAddress(in.Email); err != nil || addr.Address != in.Email {
		return Ticket{}, invalid("email", "must be an email address")
	}

	t := Ticket{
		ID:        ids.New(),
		Name:      in.Name,
		Email:     in.Email,
		Message:   in.Message,
		Status:    TicketOpen,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.InsertTicket(ctx, t); err != nil {
		return Ticket{}, err
	}
	return t, nil
}

// ListTickets lists every ticket, or only open ones.
func (s *Service) ListTickets(ctx context.Context, openOnly bool) ([]Ticket, error) {
	return s.store.ListTickets(ctx, openOnly)
}

// ResolveTicket closes a ticket. Resolving twice returns the ticket unchanged.
func (s *Service) ResolveTicket(ctx context.Context, id string, status TicketStatus) (Ticket, error) {
	if status != TicketResolved {
		return Ticket{}, invalid("status", `must be "resolved"`)
	}
	return s.store.ResolveTicket(ctx, strings.TrimSpace(id), s.now().UTC())
}

func invalid(field, msg string) error {
	return &fund.ValidationError{Field: field, Message: msg}
}

func isHTTPURL(raw string) bool {
	if len(raw) > maxURLLen {
		return false
	}
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
