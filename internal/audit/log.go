package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"truefund.org/internal/auth"
	"truefund.org/internal/obs"
)

// Audited mutations.
const (
	CampaignCreate  = "campaign.create"
	CampaignVerify  = "campaign.verify"
	DonationRecord  = "donation.record"
	DonationRelease = "donation.release"
	NgoSubmit       = "ngo.submit"
	NgoResolve      = "ngo.resolve"
	TicketSubmit    = "ticket.submit"
	TicketResolve   = "ticket.resolve"
	UserFlags       = "user.flags"
)

type requestIDKey struct{}

// WithRequestID attaches the request identifier to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	requestID = strings.TrimSpace(requestID)
	if requestID == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request identifier, or "".
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// LogEvent writes an audit log entry enriched with request and user context.
func LogEvent(ctx context.Context, event string, fields map[string]any) error {
	event = strings.TrimSpace(event)
	if event == "" {
		return errors.New("event name is required")
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"type":  "audit",
		"event": event,
	}
	if rid := RequestIDFromContext(ctx); rid != "" {
		entry["request_id"] = rid
	}
	if u, ok := auth.UserFromContext(ctx); ok {
		entry["user_id"] = u.ID
		if u.IsAdmin {
			entry["admin"] = true
		}
	}
	copyFields := make(map[string]any, len(fields))
	for k, v := range fields {
		copyFields[k] = v
	}
	entry["fields"] = copyFields

	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	obs.Logger().Println(string(data))
	return nil
}
