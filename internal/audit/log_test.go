package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"truefund.org/internal/auth"
	"truefund.org/internal/obs"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	logger := obs.Logger()
	original := logger.Writer()
	var buf bytes.Buffer
	logger.SetOutput(&buf)
	t.Cleanup(func() { logger.SetOutput(original) })
	return &buf
}

func TestLogEvent(t *testing.T) {
	buf := captureLog(t)

	ctx := context.Background()
	ctx = WithRequestID(ctx, "req-123")
	ctx = auth.ContextWithUser(ctx, auth.User{ID: "user-42", IsAdmin: true})

	if err := LogEvent(ctx, CampaignVerify, map[string]any{"campaign_id": "c1", "verified": true}); err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log not valid JSON: %v", err)
	}
	if entry["type"] != "audit" || entry["event"] != CampaignVerify {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["request_id"] != "req-123" {
		t.Fatalf("unexpected request id: %v", entry["request_id"])
	}
	if entry["user_id"] != "user-42" || entry["admin"] != true {
		t.Fatalf("unexpected actor fields: %v", entry)
	}
	fields, ok := entry["fields"].(map[string]any)
	if !ok || fields["campaign_id"] != "c1" {
		t.Fatalf("fields missing or incorrect: %v", entry["fields"])
	}
}

func TestLogEventAnonymous(t *testing.T) {
	buf := captureLog(t)

	if err := LogEvent(context.Background(), TicketSubmit, nil); err != nil {
		t.Fatal(err)
	}
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatal(err)
	}
	if _, ok := entry["user_id"]; ok {
		t.Fatalf("anonymous event should carry no user: %v", entry)
	}
	if _, ok := entry["fields"].(map[string]any); !ok {
		t.Fatalf("fields should always be an object: %v", entry)
	}
}

func TestLogEventRequiresName(t *testing.T) {
	if err := LogEvent(context.Background(), "  ", nil); err == nil {
		t.Fatal("expected error for empty event")
	}
}
