package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"truefund.org/api/spec"
	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/moderation"
	"truefund.org/internal/obs"
	"truefund.org/internal/stream"
)

const serviceName = "truefund-api"

// ReadyProbe: простая проверка готовности (ping БД).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

type readinessChecker interface {
	Check(ctx context.Context) error
}

// Deps is everything the HTTP layer needs. It is built once at startup.
type Deps struct {
	Campaigns  *fund.Service
	Moderation *moderation.Service
	Users      *auth.Directory
	Tokens     *auth.Tokens
	Stream     *stream.Stream
	Ready      readinessChecker
	Version    string

	RateBurst      int
	RatePerSec     int
	MaxBodyBytes   int64
	AllowedOrigins []string
}

// API: HTTP слой.
type API struct {
	mux        *http.ServeMux
	campaigns  *fund.Service
	moderation *moderation.Service
	users      *auth.Directory
	tokens     *auth.Tokens
	stream     *stream.Stream
	readyProbe readinessChecker
	version    string

	rateBurst  int
	ratePerSec int
	maxBody    int64
	origins    []string

	// ctx bounds background work started by Handler; Close cancels it.
	ctx    context.Context
	cancel context.CancelFunc
}

func New(d Deps) *API {
	a := &API{
		mux:        http.NewServeMux(),
		campaigns:  d.Campaigns,
		moderation: d.Moderation,
		users:      d.Users,
		tokens:     d.Tokens,
		stream:     d.Stream,
		readyProbe: d.Ready,
		version:    d.Version,
		rateBurst:  d.RateBurst,
		ratePerSec: d.RatePerSec,
		maxBody:    d.MaxBodyBytes,
		origins:    d.AllowedOrigins,
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	if a.readyProbe == nil {
		a.readyProbe = ReadyProbe{}
	}
	if a.rateBurst <= 0 {
		a.rateBurst = 20
	}
	if a.ratePerSec <= 0 {
		a.ratePerSec = 10
	}
	if a.maxBody <= 0 {
		a.maxBody = 1 << 20
	}
	a.routes()
	return a
}

func (a *API) routes() {
	// health/ready/info
	a.mux.HandleFunc("GET /healthz", a.Healthz)
	a.mux.HandleFunc("GET /readyz", a.Ready)
	a.mux.HandleFunc("GET /v1/info", a.Info)
	a.mux.HandleFunc("GET /openapi.yaml", a.OpenAPISpec)
	a.mux.Handle("GET /metrics", obs.Handler())

	// campaigns
	a.mux.HandleFunc("GET /campaigns", a.listCampaigns)
	a.mux.Handle("POST /campaigns", a.requireUser(a.createCampaign))
	a.mux.Handle("GET /campaigns/my", a.requireUser(a.myCampaigns))
	a.mux.HandleFunc("GET /campaigns/{id}", a.getCampaign)
	a.mux.HandleFunc("GET /campaigns/{id}/donations", a.campaignDonations)
	a.mux.HandleFunc("GET /codes/{code}", a.getCampaignByCode)

	// donations
	a.mux.HandleFunc("POST /donations", a.donate)
	a.mux.Handle("GET /donations/my", a.requireUser(a.myDonations))
	a.mux.HandleFunc("GET /donations/stream", a.streamDonations)

	a.mux.HandleFunc("GET /stats", a.stats)
	a.mux.HandleFunc("GET /reviews", a.reviews)
	a.mux.Handle("GET /auth/user", a.requireUser(a.currentUser))

	// moderation
	a.mux.Handle("POST /ngo-verifications", a.requireUser(a.submitNgo))
	a.mux.Handle("GET /ngo-verifications/my", a.requireUser(a.myNgo))
	a.mux.HandleFunc("POST /tickets", a.submitTicket)

	// admin
	a.mux.Handle("GET /admin/ngo-verifications", a.requireAdmin(a.listNgo))
	a.mux.Handle("PATCH /admin/ngo-verifications/{id}", a.requireAdmin(a.resolveNgo))
	a.mux.Handle("GET /admin/tickets", a.requireAdmin(a.listTickets))
	a.mux.Handle("PATCH /admin/tickets/{id}", a.requireAdmin(a.resolveTicket))
	a.mux.Handle("PATCH /admin/campaigns/{id}", a.requireAdmin(a.verifyCampaign))
	a.mux.Handle("POST /admin/campaigns/{id}/release", a.requireAdmin(a.releaseCampaign))
	a.mux.Handle("GET /admin/users/{id}", a.requireAdmin(a.getUser))
	a.mux.Handle("PATCH /admin/users/{id}", a.requireAdmin(a.updateUserFlags))

	a.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, "not found")
	})
}

// Handler возвращает http.Handler со всей цепочкой middleware.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.authenticate(h)
	h = MaxBodyBytes(h, a.maxBody)
	h = RateLimit(a.ctx, h, a.rateBurst, a.ratePerSec)
	h = CORS(h, a.origins)
	h = SecurityHeaders(h)
	h = obs.Instrument(h)
	h = Recover(h)
	h = LoggingJSON(h)
	return RequestID(h)
}

// Close stops background work started by Handler.
func (a *API) Close() {
	a.cancel()
}

// --- ops handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": serviceName,
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		obs.SetReady(false)
		obs.Warn("readiness_failed", map[string]any{"error": err.Error()})
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
		})
		return
	}
	obs.SetReady(true)
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	info := map[string]any{
		"name":    serviceName,
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	}
	if a.stream != nil {
		info["streamSubscribers"] = a.stream.Subscribers()
	}
	writeJSON(w, http.StatusOK, info)
}

func (a *API) OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	_, _ = w.Write(spec.OpenAPI)
}
