package httpapi

import (
	"net/http"

	"truefund.org/internal/audit"
	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/ids"
)

type verifyCampaignRequest struct {
	Verified *bool `json:"verified"`
}

type releaseResponse struct {
	CampaignID string `json:"campaignId"`
	Released   int    `json:"released"`
}

func (a *API) verifyCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.Valid(id) {
		handleError(w, r, fund.ErrNotFound)
		return
	}
	var req verifyCampaignRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Verified == nil {
		handleError(w, r, required("verified"))
		return
	}
	c, err := a.campaigns.SetVerified(r.Context(), id, *req.Verified, auth.ActorFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.audit(r, audit.CampaignVerify, map[string]any{
		"campaign_id": c.ID,
		"verified":    c.Verified,
	})
	writeJSON(w, http.StatusOK, c)
}

// releaseCampaign marks a verified campaign's held donations released.
func (a *API) releaseCampaign(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.Valid(id) {
		handleError(w, r, fund.ErrNotFound)
		return
	}
	n, err := a.campaigns.ReleaseHeld(r.Context(), id, auth.ActorFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.audit(r, audit.DonationRelease, map[string]any{
		"campaign_id": id,
		"released":    n,
	})
	writeJSON(w, http.StatusOK, releaseResponse{CampaignID: id, Released: n})
}

func (a *API) getUser(w http.ResponseWriter, r *http.Request) {
	u, err := a.users.Find(r.Context(), r.PathValue("id"))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (a *API) updateUserFlags(w http.ResponseWriter, r *http.Request) {
	var req auth.FlagUpdate
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	u, err := a.users.UpdateFlags(r.Context(), r.PathValue("id"), req)
	if err != nil {
		handleError(w, r, err)
		return
	}
	fields := map[string]any{"subject": u.ID}
	if req.IsNgo != nil {
		fields["is_ngo"] = *req.IsNgo
	}
	if req.KYCVerified != nil {
		fields["kyc_verified"] = *req.KYCVerified
	}
	a.audit(r, audit.UserFlags, fields)
	writeJSON(w, http.StatusOK, u)
}
