package moderation

import (
	"context"
	"sort"
	"sync"
	"time"

	"truefund.org/internal/fund"
)

// InMemory is the process-local moderation store.
type InMemory struct {
	mu      sync.RWMutex
	ngo     map[string]*NgoVerification
	tickets map[string]*Ticket
}

var _ Store = (*InMemory)(nil)

func NewInMemory() *InMemory {
	return &InMemory{
		ngo:     make(map[string]*NgoVerification),
		tickets: make(map[string]*Ticket),
	}
}

func (s *InMemory) InsertNgo(ctx context.Context, v NgoVerification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.ngo {
		if cur.UserID == v.UserID && cur.Status == NgoPending {
			return fund.ErrConflict
		}
	}
	s.ngo[v.ID] = &v
	return nil
}

func (s *InMemory) ListNgo(ctx context.Context, f NgoFilter) ([]NgoVerification, error) {
	s.mu.RLock()
	res := make([]NgoVerification, 0, len(s.ngo))
	for _, v := range s.ngo {
		if f.UserID != "" && v.UserID != f.UserID {
			continue
		}
		if f.PendingOnly && v.Status != NgoPending {
			continue
		}
		res = append(res, *v)
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if !res[i].RequestedAt.Equal(res[j].RequestedAt) {
			return res[i].RequestedAt.After(res[j].RequestedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (s *InMemory) ResolveNgo(ctx context.Context, id string, status NgoStatus, at time.Time) (NgoVerification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.ngo[id]
	if !ok {
		return NgoVerification{}, fund.ErrNotFound
	}
	if v.Status == NgoPending {
		v.Status = status
		v.Verified = status == NgoVerified
		v.ResolvedAt = &at
	}
	return *v, nil
}

func (s *InMemory) InsertTicket(ctx context.Context, t Ticket) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tickets[t.ID]; ok {
		return fund.ErrConflict
	}
	s.tickets[t.ID] = &t
	return nil
}

func (s *InMemory) ListTickets(ctx context.Context, openOnly bool) ([]Ticket, error) {
	s.mu.RLock()
	res := make([]Ticket, 0, len(s.tickets))
	for _, t := range s.tickets {
		if openOnly && t.Status != TicketOpen {
			continue
		}
		res = append(res, *t)
	}
	s.mu.RUnlock()
	sort.Slice(res, func(i, j int) bool {
		if !res[i].CreatedAt.Equal(res[j].CreatedAt) {
			return res[i].CreatedAt.After(res[j].CreatedAt)
		}
		return res[i].ID > res[j].ID
	})
	return res, nil
}

func (s *InMemory) ResolveTicket(ctx context.Context, id string, at time.Time) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tickets[id]
	if !ok {
		return Ticket{}, fund.ErrNotFound
	}
	if t.Status == TicketOpen {
		t.Status = TicketResolved
		t.ResolvedAt = &at
	}
	return *t, nil
}
