package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"truefund.org/internal/obs"
)

const heartbeatInterval = 15 * time.Second

// streamDonations serves the live donation feed as Server-Sent Events.
func (a *API) streamDonations(w http.ResponseWriter, r *http.Request) {
	if a.stream == nil {
		writeError(w, r, http.StatusServiceUnavailable, "streaming disabled")
		return
	}

	rc := http.NewResponseController(w)
	// the feed outlives the server write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// Send an initial comment to establish the stream
	_, _ = w.Write([]byte(": stream started\n\n"))
	if err := rc.Flush(); err != nil {
		obs.Warn("stream_flush_unsupported", map[string]any{
			"request_id": requestID(r),
			"error":      err.Error(),
		})
		return
	}

	ch := a.stream.Subscribe(r.Context())
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-ch:
			if !ok {
				return
			}
			payload, err := json.Marshal(event)
			if err != nil {
				continue
			}
			_, _ = w.Write([]byte("event: donation\ndata: "))
			_, _ = w.Write(payload)
			_, _ = w.Write([]byte("\n\n"))
		case <-ticker.C:
			_, _ = w.Write([]byte(": ping\n\n"))
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}
