package httpapi

import (
	"net/http"

	"truefund.org/internal/audit"
	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/ids"
	"truefund.org/internal/obs"
	"truefund.org/internal/stream"
)

type donateRequest struct {
	CampaignID *string `json:"campaignId"`
	Amount     *int64  `json:"amount"`
	TipAmount  int64   `json:"tipAmount"`
	DonorName  string  `json:"donorName"`
}

func (req donateRequest) validate() error {
	switch {
	case req.CampaignID == nil:
		return required("campaignId")
	case req.Amount == nil:
		return required("amount")
	}
	return nil
}

type donationResponse struct {
	Donation fund.Donation `json:"donation"`
	Campaign fund.Campaign `json:"campaign"`
}

type donationListResponse struct {
	Donations []fund.Donation `json:"donations"`
	Count     int             `json:"count"`
}

func (a *API) donate(w http.ResponseWriter, r *http.Request) {
	var req donateRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}
	donor, _ := auth.UserIDFromContext(r.Context())
	d, c, err := a.campaigns.Donate(r.Context(), fund.DonationInput{
		CampaignID: *req.CampaignID,
		Amount:     *req.Amount,
		TipAmount:  req.TipAmount,
		DonorName:  req.DonorName,
	}, donor)
	if err != nil {
		handleError(w, r, err)
		return
	}

	obs.DonationRecorded(string(c.Cause), d.Released, d.Amount, d.TipAmount)
	a.audit(r, audit.DonationRecord, map[string]any{
		"donation_id": d.ID,
		"campaign_id": c.ID,
		"amount":      d.Amount,
		"tip":         d.TipAmount,
		"released":    d.Released,
		"collected":   c.CollectedAmount,
	})
	if a.stream != nil {
		a.stream.Publish(stream.DonationEvent{
			DonationID:   d.ID,
			CampaignID:   c.ID,
			CampaignCode: c.UniqueCode,
			Title:        c.Title,
			Cause:        string(c.Cause),
			Amount:       d.Amount,
			Collected:    c.CollectedAmount,
			Goal:         c.GoalAmount,
			DonorName:    d.DonorName,
			Released:     d.Released,
			Timestamp:    d.CreatedAt,
		})
	}
	writeJSON(w, http.StatusCreated, donationResponse{Donation: d, Campaign: c})
}

func (a *API) campaignDonations(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.Valid(id) {
		handleError(w, r, fund.ErrNotFound)
		return
	}
	list, err := a.campaigns.CampaignDonations(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeDonations(w, list)
}

func (a *API) myDonations(w http.ResponseWriter, r *http.Request) {
	donor, _ := auth.UserIDFromContext(r.Context())
	list, err := a.campaigns.DonorDonations(r.Context(), donor)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeDonations(w, list)
}

func writeDonations(w http.ResponseWriter, list []fund.Donation) {
	if list == nil {
		list = []fund.Donation{}
	}
	writeJSON(w, http.StatusOK, donationListResponse{Donations: list, Count: len(list)})
}
