package moderation

import (
	"context"
	"errors"
	"sync"
	"testing"

	"truefund.org/internal/fund"
)

type flagRecorder struct {
	mu  sync.Mutex
	ngo map[string]bool
	err error
}

func (f *flagRecorder) SetNgo(ctx context.Context, userID string, isNgo bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.ngo == nil {
		f.ngo = make(map[string]bool)
	}
	f.ngo[userID] = isNgo
	return nil
}

func newTestService() (*Service, *flagRecorder) {
	users := &flagRecorder{}
	return NewService(NewInMemory(), users), users
}

func TestNgoApprovalFlagsUser(t *testing.T) {
	s, users := newTestService()
	ctx := context.Background()

	req, err := s.SubmitNgo(ctx, "u1", "https://docs.example.org/reg.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if req.Status != NgoPending || req.Verified || req.ResolvedAt != nil {
		t.Fatalf("unexpected new request: %+v", req)
	}

	pending, _ := s.ListNgo(ctx, true)
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending, got %d", len(pending))
	}

	got, err := s.ResolveNgo(ctx, req.ID, true)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != NgoVerified || !got.Verified || got.ResolvedAt == nil {
		t.Fatalf("unexpected resolution: %+v", got)
	}
	if !users.ngo["u1"] {
		t.Fatal("approval should flag the user as NGO")
	}

	if _, err := s.ResolveNgo(ctx, req.ID, true); err != nil {
		t.Fatalf("repeating an identical resolution should succeed: %v", err)
	}
	if _, err := s.ResolveNgo(ctx, req.ID, false); !errors.Is(err, fund.ErrConflict) {
		t.Fatalf("flipping a resolved request should conflict, got %v", err)
	}

	pending, _ = s.ListNgo(ctx, true)
	if len(pending) != 0 {
		t.Fatalf("expected no pending, got %d", len(pending))
	}
}

func TestNgoOnePendingPerUser(t *testing.T) {
	s, users := newTestService()
	ctx := context.Background()

	first, err := s.SubmitNgo(ctx, "u1", "https://docs.example.org/a.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SubmitNgo(ctx, "u1", "https://docs.example.org/b.pdf"); !errors.Is(err, fund.ErrConflict) {
		t.Fatalf("second pending request should conflict, got %v", err)
	}
	if _, err := s.SubmitNgo(ctx, "u2", "https://docs.example.org/c.pdf"); err != nil {
		t.Fatalf("other users are unaffected: %v", err)
	}

	if _, err := s.ResolveNgo(ctx, first.ID, false); err != nil {
		t.Fatal(err)
	}
	if users.ngo["u1"] {
		t.Fatal("rejection must not flag the user")
	}
	if _, err := s.SubmitNgo(ctx, "u1", "https://docs.example.org/b.pdf"); err != nil {
		t.Fatalf("rejected users may re-apply: %v", err)
	}

	mine, err := s.MineNgo(ctx, "u1")
	if err != nil || len(mine) != 2 {
		t.Fatalf("expected 2 requests for u1, got %d (%v)", len(mine), err)
	}
}

func TestNgoSubmitValidation(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	if _, err := s.SubmitNgo(ctx, "", "https://x.example"); !errors.Is(err, fund.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
	for _, raw := range []string{"", "   ", "not a url", "ftp://x.example/a"} {
		var verr *fund.ValidationError
		if _, err := s.SubmitNgo(ctx, "u1", raw); !errors.As(err, &verr) || verr.Field != "documentsUrl" {
			t.Fatalf("%q: expected documentsUrl validation error, got %v", raw, err)
		}
	}
}

func TestNgoResolveUnknown(t *testing.T) {
	s, _ := newTestService()
	if _, err := s.ResolveNgo(context.Background(), "missing", true); !errors.Is(err, fund.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestNgoResolveFlagFailureIsRetryable(t *testing.T) {
	s, users := newTestService()
	ctx := context.Background()
	req, _ := s.SubmitNgo(ctx, "u1", "https://docs.example.org/a.pdf")

	users.err = errors.New("directory unavailable")
	if _, err := s.ResolveNgo(ctx, req.ID, true); err == nil {
		t.Fatal("expected flag failure to surface")
	}
	users.err = nil
	if _, err := s.ResolveNgo(ctx, req.ID, true); err != nil {
		t.Fatal(err)
	}
	if !users.ngo["u1"] {
		t.Fatal("repeated approval should apply the flag")
	}
}

func TestTicketLifecycle(t *testing.T) {
	s, _ := newTestService()
	ctx := context.Background()

	tk, err := s.SubmitTicket(ctx, TicketInput{Name: " Asha ", Email: "asha@example.com", Message: "Refund please"})
	if err != nil {
		t.Fatal(err)
	}
	if tk.Status != TicketOpen || tk.Name != "Asha" {
		t.Fatalf("unexpected ticket: %+v", tk)
	}

	open, _ := s.ListTickets(ctx, true)
	if len(open) != 1 {
		t.Fatalf("expected 1 open ticket, got %d", len(open))
	}

	if _, err := s.ResolveTicket(ctx, tk.ID, "closed"); err == nil {
		t.Fatal("unknown status should be rejected")
	}

	first, err := s.ResolveTicket(ctx, tk.ID, TicketResolved)
	if err != nil || first.Status != TicketResolved || first.ResolvedAt == nil {
		t.Fatalf("resolve: %+v %v", first, err)
	}
	second, err := s.ResolveTicket(ctx, tk.ID, TicketResolved)
	if err != nil {
		t.Fatal(err)
	}
	if !second.ResolvedAt.Equal(*first.ResolvedAt) {
		t.Fatal("re-resolving must not change the ticket")
	}

	open, _ = s.ListTickets(ctx, true)
	all, _ := s.ListTickets(ctx, false)
	if len(open) != 0 || len(all) != 1 {
		t.Fatalf("unexpected listings: open=%d all=%d", len(open), len(all))
	}

	if _, err := s.ResolveTicket(ctx, "missing", TicketResolved); !errors.Is(err, fund.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestTicketValidation(t *testing.T) {
	s, _ := newTestService()
	cases := map[string]TicketInput{
		"name":    {Email: "a@example.com", Message: "hi"},
		"email":   {Name: "A", Email: "not-an-email", Message: "hi"},
		"message": {Name: "A", Email: "a@example.com", Message: "  "},
	}
	for field, in := range cases {
		var verr *fund.ValidationError
		if _, err := s.SubmitTicket(context.Background(), in); !errors.As(err, &verr) || verr.Field != field {
			t.Fatalf("expected %s validation error, got %v", field, err)
		}
	}
}
