package httpapi

import (
	"fmt"
	"net/http"
	"strconv"

	"truefund.org/internal/audit"
	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/ids"
	"truefund.org/internal/obs"
)

type createCampaignRequest struct {
	Title         *string `json:"title"`
	Description   *string `json:"description"`
	Cause         *string `json:"cause"`
	GoalAmount    *int64  `json:"goalAmount"`
	Location      string  `json:"location"`
	ImageURL      string  `json:"imageUrl"`
	HospitalEmail string  `json:"hospitalEmail"`
	IsTemporary   bool    `json:"isTemporary"`
}

func (req createCampaignRequest) validate() error {
	switch {
	case req.Title == nil:
		return required("title")
	case req.Description == nil:
		return required("description")
	case req.Cause == nil:
		return required("cause")
	case req.GoalAmount == nil:
		return required("goalAmount")
	}
	return nil
}

func (req createCampaignRequest) input() fund.CampaignInput {
	return fund.CampaignInput{
		Title:         *req.Title,
		Description:   *req.Description,
		Cause:         fund.Cause(*req.Cause),
		GoalAmount:    *req.GoalAmount,
		Location:      req.Location,
		ImageURL:      req.ImageURL,
		HospitalEmail: req.HospitalEmail,
		IsTemporary:   req.IsTemporary,
	}
}

type campaignListResponse struct {
	Campaigns []fund.Campaign `json:"campaigns"`
	Count     int             `json:"count"`
}

func required(field string) error {
	return &fund.ValidationError{Field: field, Message: "is required"}
}

func (a *API) createCampaign(w http.ResponseWriter, r *http.Request) {
	var req createCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}
	c, err := a.campaigns.CreateCampaign(r.Context(), req.input(), auth.ActorFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	obs.CampaignCreated(string(c.Cause))
	a.audit(r, audit.CampaignCreate, map[string]any{
		"campaign_id": c.ID,
		"code":        c.UniqueCode,
		"cause":       c.Cause,
		"goal":        c.GoalAmount,
	})
	w.Header().Set("Location", fmt.Sprintf("/campaigns/%s", c.ID))
	writeJSON(w, http.StatusCreated, c)
}

func (a *API) listCampaigns(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.writeCampaigns(w, r, f)
}

func (a *API) myCampaigns(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	f.CreatedBy, _ = auth.UserIDFromContext(r.Context())
	a.writeCampaigns(w, r, f)
}

func (a *API) writeCampaigns(w http.ResponseWriter, r *http.Request, f fund.Filter) {
	list, err := a.campaigns.ListCampaigns(r.Context(), f)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if list == nil {
		list = []fund.Campaign{}
	}
	writeJSON(w, http.StatusOK, campaignListResponse{Campaigns: list, Count: len(list)})
}

func parseFilter(r *http.Request) (fund.Filter, error) {
	q := r.URL.Query()
	f := fund.Filter{
		Location: q.Get("location"),
		Search:   q.Get("search"),
	}
	if raw := q.Get("cause"); raw != "" {
		cause, ok := fund.ParseCause(raw)
		if !ok {
			return f, &fund.ValidationError{Field: "cause", Message: "unknown cause"}
		}
		f.Cause = cause
	}
	if raw := q.Get("verified"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, &fund.ValidationError{Field: "verified", Message: "must be true or false"}
		}
		f.VerifiedOnly = v
	}
	sort, ok := fund.ParseSortKey(q.Get("sort"))
	if !ok {
		return f, &fund.ValidationError{Field: "sort", Message: "must be one of newest, most_funded, verified"}
	}
	f.Sort = sort
	return f, nil
}

func (a *API) getCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.Valid(id) {
		handleError(w, r, fund.ErrNotFound)
		return
	}
	c, err := a.campaigns.GetCampaign(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) getCampaignByCode(w http.ResponseWriter, r *http.Request) {
	c, err := a.campaigns.GetCampaignByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (a *API) stats(w http.ResponseWriter, r *http.Request) {
	st, err := a.campaigns.Stats(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *API) reviews(w http.ResponseWriter, r *http.Request) {
	list, err := a.campaigns.Reviews(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	if list == nil {
		list = []fund.Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"reviews": list})
}

func (a *API) currentUser(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	writeJSON(w, http.StatusOK, u)
}

// audit records a mutation. A failed audit write is logged and never fails the request.
func (a *API) audit(r *http.Request, event string, fields map[string]any) {
	if err := audit.LogEvent(r.Context(), event, fields); err != nil {
		obs.Warn("audit_failed", map[string]any{
			"event":      event,
			"request_id": requestID(r),
			"error":      err.Error(),
		})
	}
}
