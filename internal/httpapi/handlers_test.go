package httpapi

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/moderation"
	"truefund.org/internal/stream"
)

const adminEmail = "admin@truefund.org"

var codePattern = regexp.MustCompile(`^TF-[A-Z0-9]{6}$`)

type apiClient struct {
	baseURL string
	client  *http.Client
	tokens  *auth.Tokens
	stream  *stream.Stream
	t       *testing.T
}

func newTestAPI(t *testing.T) *apiClient {
	t.Helper()

	tokens, err := auth.NewTokens("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	users := auth.NewDirectory(auth.NewMemoryStore(), []string{adminEmail})
	feed := stream.New(16)
	api := New(Deps{
		Campaigns:  fund.NewService(fund.NewInMemory(fund.DefaultReviews()...)),
		Moderation: moderation.NewService(moderation.NewInMemory(), users),
		Users:      users,
		Tokens:     tokens,
		Stream:     feed,
		Version:    "test",
		RateBurst:  1000,
		RatePerSec: 1000,
	})

	t.Cleanup(api.Close)
	srv := httptest.NewServer(api.Handler())
	t.Cleanup(srv.Close)

	return &apiClient{
		baseURL: srv.URL,
		client:  srv.Client(),
		tokens:  tokens,
		stream:  feed,
		t:       t,
	}
}

func (c *apiClient) token(id, email string) string {
	c.t.Helper()
	tok, err := c.tokens.Generate(auth.Identity{ID: id, Email: email}, time.Hour)
	if err != nil {
		c.t.Fatalf("mint token: %v", err)
	}
	return tok
}

func (c *apiClient) do(method, path, token string, body any) *http.Response {
	c.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		if raw, ok := body.(string); ok {
			payload = []byte(raw)
		} else if payload, err = json.Marshal(body); err != nil {
			c.t.Fatalf("marshal body: %v", err)
		}
	}
	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		c.t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func (c *apiClient) get(path string, params url.Values, token string) *http.Response {
	c.t.Helper()
	if params != nil {
		path += "?" + params.Encode()
	}
	return c.do(http.MethodGet, path, token, nil)
}

// kycUser signs a user in and has the admin record a passed KYC check.
func (c *apiClient) kycUser(id string) string {
	c.t.Helper()
	tok := c.token(id, id+"@example.com")
	expectStatus(c.t, c.get("/auth/user", nil, tok), http.StatusOK)
	resp := c.do(http.MethodPatch, "/admin/users/"+id, c.admin(), map[string]any{"kycVerified": true})
	user := decodeStatus[auth.User](c.t, resp, http.StatusOK)
	if !user.KYCVerified {
		c.t.Fatalf("kyc flag not set: %+v", user)
	}
	return tok
}

func (c *apiClient) admin() string {
	return c.token("admin-1", adminEmail)
}

func decode[T any](t *testing.T, r *http.Response) T {
	t.Helper()
	defer r.Body.Close()
	var v T
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func decodeStatus[T any](t *testing.T, r *http.Response, want int) T {
	t.Helper()
	if r.StatusCode != want {
		body := decode[errorResponse](t, r)
		t.Fatalf("expected status %d, got %d: %+v", want, r.StatusCode, body)
	}
	return decode[T](t, r)
}

func expectStatus(t *testing.T, r *http.Response, want int) errorResponse {
	t.Helper()
	defer r.Body.Close()
	var body errorResponse
	_ = json.NewDecoder(r.Body).Decode(&body)
	if r.StatusCode != want {
		t.Fatalf("expected status %d, got %d: %+v", want, r.StatusCode, body)
	}
	return body
}

func TestCleanWaterFlow(t *testing.T) {
	c := newTestAPI(t)
	tok := c.kycUser("u-1")

	resp := c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title":       "Clean Water",
		"description": "Wells for three villages",
		"cause":       "Community",
		"goalAmount":  10000,
		"location":    "Pune",
	})
	if loc := resp.Header.Get("Location"); loc == "" {
		t.Fatal("expected Location header")
	}
	created := decodeStatus[fund.Campaign](t, resp, http.StatusCreated)
	if created.CollectedAmount != 0 || created.CreatedBy != "u-1" || created.Verified {
		t.Fatalf("unexpected campaign: %+v", created)
	}
	if !codePattern.MatchString(created.UniqueCode) {
		t.Fatalf("unexpected code %q", created.UniqueCode)
	}

	resp = c.do(http.MethodPost, "/donations", "", map[string]any{
		"campaignId": created.ID,
		"amount":     2500,
		"tipAmount":  250,
		"donorName":  "Ravi",
	})
	donated := decodeStatus[donationResponse](t, resp, http.StatusCreated)
	if donated.Campaign.CollectedAmount != 2500 || !donated.Donation.Released || donated.Donation.DonorID != "" {
		t.Fatalf("unexpected donation result: %+v", donated)
	}

	got := decodeStatus[fund.Campaign](t, c.get("/campaigns/"+created.ID, nil, ""), http.StatusOK)
	if got.CollectedAmount != 2500 {
		t.Fatalf("collected=%d, want 2500", got.CollectedAmount)
	}
	byCode := decodeStatus[fund.Campaign](t, c.get("/codes/"+created.UniqueCode, nil, ""), http.StatusOK)
	if byCode.ID != created.ID {
		t.Fatalf("code lookup returned %s", byCode.ID)
	}

	list := decodeStatus[donationListResponse](t, c.get("/campaigns/"+created.ID+"/donations", nil, ""), http.StatusOK)
	if list.Count != 1 || list.Donations[0].TipAmount != 250 {
		t.Fatalf("unexpected donations: %+v", list)
	}

	st := decodeStatus[fund.Stats](t, c.get("/stats", nil, ""), http.StatusOK)
	if st.TotalRaised != 2500 || st.TotalTips != 250 || st.DonationCount != 1 || st.ActiveCampaigns != 1 {
		t.Fatalf("unexpected stats: %+v", st)
	}

	mine := decodeStatus[campaignListResponse](t, c.get("/campaigns/my", nil, tok), http.StatusOK)
	if mine.Count != 1 {
		t.Fatalf("expected one own campaign, got %d", mine.Count)
	}
}

func TestSignedInDonationIsAttributed(t *testing.T) {
	c := newTestAPI(t)
	owner := c.kycUser("owner")
	created := decodeStatus[fund.Campaign](t, c.do(http.MethodPost, "/campaigns", owner, map[string]any{
		"title": "Books", "description": "Library", "cause": "Education", "goalAmount": 500,
	}), http.StatusCreated)

	donor := c.token("donor-1", "donor@example.com")
	expectStatus(t, c.do(http.MethodPost, "/donations", donor, map[string]any{
		"campaignId": created.ID, "amount": 100,
	}), http.StatusCreated)

	mine := decodeStatus[donationListResponse](t, c.get("/donations/my", nil, donor), http.StatusOK)
	if mine.Count != 1 || mine.Donations[0].DonorID != "donor-1" {
		t.Fatalf("unexpected donor history: %+v", mine)
	}
}

func TestAuthenticationErrors(t *testing.T) {
	c := newTestAPI(t)
	body := map[string]any{"title": "x", "description": "y", "cause": "Community", "goalAmount": 1}

	resp := c.do(http.MethodPost, "/campaigns", "", body)
	if resp.Header.Get("WWW-Authenticate") == "" {
		t.Fatal("expected WWW-Authenticate on 401")
	}
	errBody := expectStatus(t, resp, http.StatusUnauthorized)
	if errBody.RequestID == "" {
		t.Fatal("expected requestId in error body")
	}

	expectStatus(t, c.do(http.MethodPost, "/campaigns", "not-a-jwt", body), http.StatusUnauthorized)

	other, err := auth.NewTokens("other-secret")
	if err != nil {
		t.Fatal(err)
	}
	forged, err := other.Generate(auth.Identity{ID: "u-1"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	expectStatus(t, c.do(http.MethodPost, "/campaigns", forged, body), http.StatusUnauthorized)

	user := c.token("u-2", "u2@example.com")
	expectStatus(t, c.get("/admin/tickets", nil, user), http.StatusForbidden)
	expectStatus(t, c.do(http.MethodPatch, "/admin/users/u-2", user, map[string]any{"kycVerified": true}), http.StatusForbidden)
}

func TestCreateCampaignGate(t *testing.T) {
	c := newTestAPI(t)
	body := map[string]any{"title": "Flood", "description": "Relief kits", "cause": "Disaster Relief", "goalAmount": 5000}

	unverified := c.token("u-1", "u1@example.com")
	errBody := expectStatus(t, c.do(http.MethodPost, "/campaigns", unverified, body), http.StatusForbidden)
	if errBody.Message != fund.ReasonKYCRequired {
		t.Fatalf("unexpected denial: %q", errBody.Message)
	}

	kyc := c.kycUser("u-2")
	errBody = expectStatus(t, c.do(http.MethodPost, "/campaigns", kyc, body), http.StatusForbidden)
	if errBody.Message != fund.ReasonNgoOnly {
		t.Fatalf("unexpected denial: %q", errBody.Message)
	}
}

func TestValidationErrors(t *testing.T) {
	c := newTestAPI(t)
	tok := c.kycUser("u-1")

	errBody := expectStatus(t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "No goal", "description": "d", "cause": "Community",
	}), http.StatusBadRequest)
	if errBody.Field != "goalAmount" {
		t.Fatalf("expected goalAmount field, got %+v", errBody)
	}

	errBody = expectStatus(t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "Bad cause", "description": "d", "cause": "Sports", "goalAmount": 10,
	}), http.StatusBadRequest)
	if errBody.Field != "cause" {
		t.Fatalf("expected cause field, got %+v", errBody)
	}

	expectStatus(t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "t", "description": "d", "cause": "Community", "goalAmount": 10, "collectedAmount": 99,
	}), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodPost, "/campaigns", tok, `{"title":`), http.StatusBadRequest)

	created := decodeStatus[fund.Campaign](t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "t", "description": "d", "cause": "Community", "goalAmount": 10,
	}), http.StatusCreated)

	for _, amount := range []int{0, -5} {
		expectStatus(t, c.do(http.MethodPost, "/donations", "", map[string]any{
			"campaignId": created.ID, "amount": amount,
		}), http.StatusBadRequest)
	}
	errBody = expectStatus(t, c.do(http.MethodPost, "/donations", "", map[string]any{
		"campaignId": created.ID,
	}), http.StatusBadRequest)
	if errBody.Field != "amount" {
		t.Fatalf("expected amount field, got %+v", errBody)
	}
	expectStatus(t, c.do(http.MethodPost, "/donations", "", map[string]any{
		"campaignId": "01ARZ3NDEKTSV4RRFFQ69G5FAV", "amount": 10,
	}), http.StatusNotFound)

	got := decodeStatus[fund.Campaign](t, c.get("/campaigns/"+created.ID, nil, ""), http.StatusOK)
	if got.CollectedAmount != 0 {
		t.Fatalf("rejected donations must not mutate, collected=%d", got.CollectedAmount)
	}

	expectStatus(t, c.get("/campaigns/not-an-id", nil, ""), http.StatusNotFound)
	expectStatus(t, c.get("/codes/TF-ZZZZZZ", nil, ""), http.StatusNotFound)
	expectStatus(t, c.get("/campaigns", url.Values{"sort": {"oldest"}}, ""), http.StatusBadRequest)
	expectStatus(t, c.get("/campaigns", url.Values{"verified": {"maybe"}}, ""), http.StatusBadRequest)
}

func TestOversizedAmountsRejected(t *testing.T) {
	c := newTestAPI(t)
	tok := c.kycUser("u-1")

	errBody := expectStatus(t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "Huge", "description": "d", "cause": "Community", "goalAmount": int64(math.MaxInt64),
	}), http.StatusBadRequest)
	if errBody.Field != "goalAmount" {
		t.Fatalf("expected goalAmount field, got %+v", errBody)
	}

	created := decodeStatus[fund.Campaign](t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "t", "description": "d", "cause": "Community", "goalAmount": 10,
	}), http.StatusCreated)

	for _, body := range []map[string]any{
		{"campaignId": created.ID, "amount": int64(math.MaxInt64)},
		{"campaignId": created.ID, "amount": fund.MaxAmount + 1},
		{"campaignId": created.ID, "amount": 1, "tipAmount": int64(math.MaxInt64)},
	} {
		expectStatus(t, c.do(http.MethodPost, "/donations", "", body), http.StatusBadRequest)
	}

	donated := decodeStatus[donationResponse](t, c.do(http.MethodPost, "/donations", "", map[string]any{
		"campaignId": created.ID, "amount": 2,
	}), http.StatusCreated)
	if donated.Campaign.CollectedAmount != 2 {
		t.Fatalf("collected=%d, want 2", donated.Campaign.CollectedAmount)
	}
	st := decodeStatus[fund.Stats](t, c.get("/stats", nil, ""), http.StatusOK)
	if st.TotalRaised != 2 {
		t.Fatalf("totalRaised=%d, want 2", st.TotalRaised)
	}
}

func TestListCampaignsFilters(t *testing.T) {
	c := newTestAPI(t)
	tok := c.kycUser("u-1")
	for _, in := range []map[string]any{
		{"title": "Water for Pune", "description": "d", "cause": "Community", "goalAmount": 100, "location": "Pune"},
		{"title": "School books", "description": "d", "cause": "Education", "goalAmount": 100, "location": "Delhi"},
		{"title": "Surgery", "description": "d", "cause": "Medical", "goalAmount": 100, "location": "Pune"},
	} {
		expectStatus(t, c.do(http.MethodPost, "/campaigns", tok, in), http.StatusCreated)
	}

	all := decodeStatus[campaignListResponse](t, c.get("/campaigns", nil, ""), http.StatusOK)
	if all.Count != 3 || all.Campaigns[0].Title != "Surgery" {
		t.Fatalf("expected newest first, got %+v", all.Campaigns)
	}
	pune := decodeStatus[campaignListResponse](t, c.get("/campaigns", url.Values{"location": {"pune"}}, ""), http.StatusOK)
	if pune.Count != 2 {
		t.Fatalf("expected 2 Pune campaigns, got %d", pune.Count)
	}
	edu := decodeStatus[campaignListResponse](t, c.get("/campaigns", url.Values{"cause": {"education"}}, ""), http.StatusOK)
	if edu.Count != 1 || edu.Campaigns[0].Cause != fund.CauseEducation {
		t.Fatalf("unexpected cause filter result: %+v", edu.Campaigns)
	}
	verified := decodeStatus[campaignListResponse](t, c.get("/campaigns", url.Values{"verified": {"true"}}, ""), http.StatusOK)
	if verified.Count != 0 || verified.Campaigns == nil {
		t.Fatalf("expected empty non-null list, got %+v", verified)
	}
}

func TestTemporaryCampaignHoldsFunds(t *testing.T) {
	c := newTestAPI(t)
	tok := c.kycUser("u-1")
	admin := c.admin()

	created := decodeStatus[fund.Campaign](t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title":         "Bypass surgery",
		"description":   "Hospital bill",
		"cause":         "Medical",
		"goalAmount":    200000,
		"hospitalEmail": "billing@hospital.example",
		"isTemporary":   true,
	}), http.StatusCreated)

	held := decodeStatus[donationResponse](t, c.do(http.MethodPost, "/donations", "", map[string]any{
		"campaignId": created.ID, "amount": 1000,
	}), http.StatusCreated)
	if held.Donation.Released {
		t.Fatal("donation to an unverified temporary campaign must be held")
	}

	expectStatus(t, c.do(http.MethodPost, "/admin/campaigns/"+created.ID+"/release", admin, nil), http.StatusForbidden)

	verified := decodeStatus[fund.Campaign](t, c.do(http.MethodPatch, "/admin/campaigns/"+created.ID, admin, map[string]any{"verified": true}), http.StatusOK)
	if !verified.Verified {
		t.Fatal("expected campaign to be verified")
	}
	list := decodeStatus[donationListResponse](t, c.get("/campaigns/"+created.ID+"/donations", nil, ""), http.StatusOK)
	if list.Donations[0].Released {
		t.Fatal("verifying must not rewrite existing donations")
	}

	rel := decodeStatus[releaseResponse](t, c.do(http.MethodPost, "/admin/campaigns/"+created.ID+"/release", admin, nil), http.StatusOK)
	if rel.Released != 1 {
		t.Fatalf("expected one released donation, got %d", rel.Released)
	}
	rel = decodeStatus[releaseResponse](t, c.do(http.MethodPost, "/admin/campaigns/"+created.ID+"/release", admin, nil), http.StatusOK)
	if rel.Released != 0 {
		t.Fatalf("second release should be a no-op, got %d", rel.Released)
	}
}

func TestNgoModerationFlow(t *testing.T) {
	c := newTestAPI(t)
	tok := c.kycUser("ngo-1")
	admin := c.admin()

	expectStatus(t, c.do(http.MethodPost, "/ngo-verifications", "", map[string]any{"documentsUrl": "https://docs.example/ngo.pdf"}), http.StatusUnauthorized)
	expectStatus(t, c.do(http.MethodPost, "/ngo-verifications", tok, map[string]any{"documentsUrl": "ftp://docs"}), http.StatusBadRequest)

	req := decodeStatus[moderation.NgoVerification](t, c.do(http.MethodPost, "/ngo-verifications", tok, map[string]any{
		"documentsUrl": "https://docs.example/ngo.pdf",
	}), http.StatusCreated)
	if req.Status != moderation.NgoPending || req.UserID != "ngo-1" {
		t.Fatalf("unexpected request: %+v", req)
	}
	expectStatus(t, c.do(http.MethodPost, "/ngo-verifications", tok, map[string]any{
		"documentsUrl": "https://docs.example/again.pdf",
	}), http.StatusConflict)

	pending := decodeStatus[struct {
		Requests []moderation.NgoVerification `json:"requests"`
		Count    int                          `json:"count"`
	}](t, c.get("/admin/ngo-verifications", url.Values{"pending": {"true"}}, admin), http.StatusOK)
	if pending.Count != 1 || pending.Requests[0].ID != req.ID {
		t.Fatalf("unexpected pending queue: %+v", pending)
	}

	resolved := decodeStatus[moderation.NgoVerification](t, c.do(http.MethodPatch, "/admin/ngo-verifications/"+req.ID, admin, map[string]any{"verified": true}), http.StatusOK)
	if resolved.Status != moderation.NgoVerified || !resolved.Verified || resolved.ResolvedAt == nil {
		t.Fatalf("unexpected resolution: %+v", resolved)
	}
	expectStatus(t, c.do(http.MethodPatch, "/admin/ngo-verifications/"+req.ID, admin, map[string]any{"verified": false}), http.StatusConflict)

	me := decodeStatus[auth.User](t, c.get("/auth/user", nil, tok), http.StatusOK)
	if !me.IsNgo {
		t.Fatalf("approval must flag the user as NGO: %+v", me)
	}

	relief := decodeStatus[fund.Campaign](t, c.do(http.MethodPost, "/campaigns", tok, map[string]any{
		"title": "Flood relief", "description": "Kits", "cause": "Disaster Relief", "goalAmount": 5000,
	}), http.StatusCreated)
	if relief.Verified || !codePattern.MatchString(relief.UniqueCode) {
		t.Fatalf("unexpected relief campaign: %+v", relief)
	}
}

func TestTicketFlow(t *testing.T) {
	c := newTestAPI(t)
	admin := c.admin()

	expectStatus(t, c.do(http.MethodPost, "/tickets", "", map[string]any{
		"name": "Meera", "email": "not-an-email", "message": "Help",
	}), http.StatusBadRequest)

	ticket := decodeStatus[moderation.Ticket](t, c.do(http.MethodPost, "/tickets", "", map[string]any{
		"name": "Meera", "email": "meera@example.com", "message": "My donation receipt is missing",
	}), http.StatusCreated)
	if ticket.Status != moderation.TicketOpen {
		t.Fatalf("unexpected ticket: %+v", ticket)
	}

	expectStatus(t, c.do(http.MethodPatch, "/admin/tickets/"+ticket.ID, admin, map[string]any{"status": "open"}), http.StatusBadRequest)
	first := decodeStatus[moderation.Ticket](t, c.do(http.MethodPatch, "/admin/tickets/"+ticket.ID, admin, map[string]any{"status": "resolved"}), http.StatusOK)
	second := decodeStatus[moderation.Ticket](t, c.do(http.MethodPatch, "/admin/tickets/"+ticket.ID, admin, map[string]any{"status": "resolved"}), http.StatusOK)
	if first.Status != moderation.TicketResolved || first.ResolvedAt == nil || !second.ResolvedAt.Equal(*first.ResolvedAt) {
		t.Fatalf("re-resolving must be a no-op: %+v vs %+v", first, second)
	}

	open := decodeStatus[struct {
		Count int `json:"count"`
	}](t, c.get("/admin/tickets", url.Values{"open": {"true"}}, admin), http.StatusOK)
	if open.Count != 0 {
		t.Fatalf("expected no open tickets, got %d", open.Count)
	}
}

func TestAdminUserFlags(t *testing.T) {
	c := newTestAPI(t)
	admin := c.admin()
	expectStatus(t, c.get("/auth/user", nil, c.token("u-1", "u1@example.com")), http.StatusOK)

	expectStatus(t, c.do(http.MethodPatch, "/admin/users/u-1", admin, map[string]any{"isAdmin": true}), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodPatch, "/admin/users/u-1", admin, map[string]any{}), http.StatusBadRequest)
	expectStatus(t, c.do(http.MethodPatch, "/admin/users/ghost", admin, map[string]any{"isNgo": true}), http.StatusNotFound)

	u := decodeStatus[auth.User](t, c.do(http.MethodPatch, "/admin/users/u-1", admin, map[string]any{"isNgo": true}), http.StatusOK)
	if !u.IsNgo || u.KYCVerified || u.IsAdmin {
		t.Fatalf("unexpected flags: %+v", u)
	}
	fetched := decodeStatus[auth.User](t, c.get("/admin/users/u-1", nil, admin), http.StatusOK)
	if !fetched.IsNgo {
		t.Fatalf("unexpected stored user: %+v", fetched)
	}
}

func TestOpsEndpoints(t *testing.T) {
	c := newTestAPI(t)

	health := decodeStatus[map[string]any](t, c.get("/healthz", nil, ""), http.StatusOK)
	if health["status"] != "ok" || health["version"] != "test" {
		t.Fatalf("unexpected healthz: %v", health)
	}
	expectStatus(t, c.get("/readyz", nil, ""), http.StatusOK)

	resp := c.get("/openapi.yaml", nil, "")
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "application/yaml; charset=utf-8" {
		t.Fatalf("unexpected openapi response: %d %s", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	reviews := decodeStatus[struct {
		Reviews []fund.Review `json:"reviews"`
	}](t, c.get("/reviews", nil, ""), http.StatusOK)
	if len(reviews.Reviews) == 0 {
		t.Fatal("expected seeded reviews")
	}

	missing := c.get("/nowhere", nil, "")
	if missing.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected X-Request-ID on every response")
	}
	expectStatus(t, missing, http.StatusNotFound)
}
