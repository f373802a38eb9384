package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyd/internal/model"
	"surveyd/internal/service"
)

// QuotaHandler handles quota check endpoints
type QuotaHandler struct {
	quotaSvc *service.QuotaService
}

// NewQuotaHandler creates a new quota handler
func NewQuotaHandler(quotaSvc *service.QuotaService) *QuotaHandler {
	return &QuotaHandler{
		quotaSvc: quotaSvc,
	}
}

// CheckRequest is the request body for a quota check
type CheckRequest struct {
	Answers model.AnswerSnapshot `json:"answers"`
}

// CheckResponse mirrors the evaluator's verdict on the wire
type CheckResponse struct {
	Passed      bool   `json:"passed"`
	Rule        string `json:"rule,omitempty"`
	Action      string `json:"action,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Check handles POST /v1/surveys/{surveyId}/quotas/check
func (h *QuotaHandler) Check(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	var req CheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	verdict, err := h.quotaSvc.Check(r.Context(), surveyID, req.Answers)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, CheckResponse{
		Passed:      verdict.Passed,
		Rule:        verdict.Rule,
		Action:      string(verdict.Action),
		RedirectURL: verdict.RedirectURL,
	})
}
