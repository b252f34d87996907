package moderation

import "time"

// NgoStatus is the lifecycle state of an NGO verification request.
type NgoStatus string

const (
	NgoPending  NgoStatus = "pending"
	NgoVerified NgoStatus = "verified"
	NgoRejected NgoStatus = "rejected"
)

// NgoVerification is a user's request to be recognised as an NGO.
type NgoVerification struct {
	ID           string     `json:"id"`
	UserID       string     `json:"userId"`
	DocumentsURL string     `json:"documentsUrl"`
	Status       NgoStatus  `json:"status"`
	Verified     bool       `json:"verified"`
	RequestedAt  time.Time  `json:"requestedAt"`
	ResolvedAt   *time.Time `json:"resolvedAt,omitempty"`
}

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const (
	TicketOpen     TicketStatus = "open"
	TicketResolved TicketStatus = "resolved"
)

// Ticket is a support request. Resolved is terminal.
type Ticket struct {
	ID         string       `json:"id"`
	Name       string       `json:"name"`
	Email      string       `json:"email"`
	Message    string       `json:"message"`
	Status     TicketStatus `json:"status"`
	CreatedAt  time.Time    `json:"createdAt"`
	ResolvedAt *time.Time   `json:"resolvedAt,omitempty"`
}

// TicketInput is a ticket submission before validation.
type TicketInput struct {
	Name    string
	Email   string
	Message string
}

// NgoFilter narrows NGO request listings.
type NgoFilter struct {
	UserID      string
	PendingOnly bool
}
