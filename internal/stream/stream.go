package stream

import (
	"context"
	"sync"
	"time"
)

// DonationEvent is the public view of a recorded donation. Donor identity is
// limited to the display name the donor chose.
type DonationEvent struct {
	DonationID   string    `json:"donationId"`
	CampaignID   string    `json:"campaignId"`
	CampaignCode string    `json:"campaignCode"`
	Title        string    `json:"title"`
	Cause        string    `json:"cause"`
	Amount       int64     `json:"amount"`
	Collected    int64     `json:"collectedAmount"`
	Goal         int64     `json:"goalAmount"`
	DonorName    string    `json:"donorName,omitempty"`
	Released     bool      `json:"released"`
	Timestamp    time.Time `json:"timestamp"`
}

// Stream fans donation events out to all active subscribers (SSE clients).
type Stream struct {
	mu     sync.RWMutex
	subs   map[int]chan DonationEvent
	next   int
	buffer int
}

// New initialises an empty stream. Each subscriber gets buffer pending events before
// new ones are dropped for it.
func New(buffer int) *Stream {
	if buffer <= 0 {
		buffer = 16
	}
	return &Stream{subs: make(map[int]chan DonationEvent), buffer: buffer}
}

// Subscribe registers a subscriber and returns a channel which will receive events.
// The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan DonationEvent {
	ch := make(chan DonationEvent, s.buffer)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fans the event out to all subscribers without blocking.
func (s *Stream) Publish(evt DonationEvent) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// slow subscriber
		}
	}
}

// Subscribers reports the number of live subscriptions.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
