package httpapi

import (
	"net/http"
	"strconv"

	"truefund.org/internal/audit"
	"truefund.org/internal/auth"
	"truefund.org/internal/fund"
	"truefund.org/internal/ids"
	"truefund.org/internal/moderation"
)

type submitNgoRequest struct {
	DocumentsURL *string `json:"documentsUrl"`
}

type resolveNgoRequest struct {
	Verified *bool `json:"verified"`
}

type submitTicketRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Message *string `json:"message"`
}

func (req submitTicketRequest) validate() error {
	switch {
	case req.Name == nil:
		return required("name")
	case req.Email == nil:
		return required("email")
	case req.Message == nil:
		return required("message")
	}
	return nil
}

type resolveTicketRequest struct {
	Status *string `json:"status"`
}

func (a *API) submitNgo(w http.ResponseWriter, r *http.Request) {
	var req submitNgoRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.DocumentsURL == nil {
		handleError(w, r, required("documentsUrl"))
		return
	}
	userID, _ := auth.UserIDFromContext(r.Context())
	v, err := a.moderation.SubmitNgo(r.Context(), userID, *req.DocumentsURL)
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.audit(r, audit.NgoSubmit, map[string]any{"ngo_request_id": v.ID})
	writeJSON(w, http.StatusCreated, v)
}

func (a *API) myNgo(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())
	list, err := a.moderation.MineNgo(r.Context(), userID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeNgo(w, list)
}

func (a *API) listNgo(w http.ResponseWriter, r *http.Request) {
	pending, err := boolQuery(r, "pending")
	if err != nil {
		handleError(w, r, err)
		return
	}
	list, err := a.moderation.ListNgo(r.Context(), pending)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeNgo(w, list)
}

func writeNgo(w http.ResponseWriter, list []moderation.NgoVerification) {
	if list == nil {
		list = []moderation.NgoVerification{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"requests": list, "count": len(list)})
}

func (a *API) resolveNgo(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.Valid(id) {
		handleError(w, r, fund.ErrNotFound)
		return
	}
	var req resolveNgoRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Verified == nil {
		handleError(w, r, required("verified"))
		return
	}
	v, err := a.moderation.ResolveNgo(r.Context(), id, *req.Verified)
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.audit(r, audit.NgoResolve, map[string]any{
		"ngo_request_id": v.ID,
		"subject":        v.UserID,
		"status":         v.Status,
	})
	writeJSON(w, http.StatusOK, v)
}

func (a *API) submitTicket(w http.ResponseWriter, r *http.Request) {
	var req submitTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if err := req.validate(); err != nil {
		handleError(w, r, err)
		return
	}
	t, err := a.moderation.SubmitTicket(r.Context(), moderation.TicketInput{
		Name:    *req.Name,
		Email:   *req.Email,
		Message: *req.Message,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.audit(r, audit.TicketSubmit, map[string]any{"ticket_id": t.ID})
	writeJSON(w, http.StatusCreated, t)
}

func (a *API) listTickets(w http.ResponseWriter, r *http.Request) {
	open, err := boolQuery(r, "open")
	if err != nil {
		handleError(w, r, err)
		return
	}
	list, err := a.moderation.ListTickets(r.Context(), open)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if list == nil {
		list = []moderation.Ticket{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tickets": list, "count": len(list)})
}

func (a *API) resolveTicket(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !ids.Valid(id) {
		handleError(w, r, fund.ErrNotFound)
		return
	}
	var req resolveTicketRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.Status == nil {
		handleError(w, r, required("status"))
		return
	}
	t, err := a.moderation.ResolveTicket(r.Context(), id, moderation.TicketStatus(*req.Status))
	if err != nil {
		handleError(w, r, err)
		return
	}
	a.audit(r, audit.TicketResolve, map[string]any{"ticket_id": t.ID})
	writeJSON(w, http.StatusOK, t)
}

func boolQuery(r *http.Request, key string) (bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, &fund.ValidationError{Field: key, Message: "must be true or false"}
	}
	return v, nil
}
