package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"surveyd/internal/model"
	"surveyd/internal/repository"
	"surveyd/internal/service"
)

// ResponseHandler handles response lifecycle endpoints
type ResponseHandler struct {
	responseSvc *service.ResponseService
}

// NewResponseHandler creates a new response handler
func NewResponseHandler(responseSvc *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{
		responseSvc: responseSvc,
	}
}

// StartRequest is the request body for starting a response
type StartRequest struct {
	SurveyID string `json:"surveyId"`
}

// SaveAnswerRequest is the request body for a per-answer save
type SaveAnswerRequest struct {
	ResponseID      string `json:"responseId"`
	QuestionCode    string `json:"questionCode"`
	SubquestionCode string `json:"subquestionCode,omitempty"`
	Value           string `json:"value"`
}

// AutosaveRequest is the request body for a full-state autosave
type AutosaveRequest struct {
	ResponseID        string               `json:"responseId"`
	Answers           model.AnswerSnapshot `json:"answers"`
	CurrentGroupIndex int                  `json:"currentGroupIndex"`
}

// CompleteRequest is the request body for the completion write
type CompleteRequest struct {
	Answers model.AnswerSnapshot `json:"answers"`
}

// Start handles POST /v1/responses
func (h *ResponseHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SurveyID == "" {
		writeError(w, http.StatusBadRequest, "surveyId is required")
		return
	}

	resp, err := h.responseSvc.Start(r.Context(), req.SurveyID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}

// SaveAnswer handles POST /v1/responses/answer
func (h *ResponseHandler) SaveAnswer(w http.ResponseWriter, r *http.Request) {
	var req SaveAnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ResponseID == "" || req.QuestionCode == "" {
		writeError(w, http.StatusBadRequest, "responseId and questionCode are required")
		return
	}

	key := model.AnswerKey(req.QuestionCode, req.SubquestionCode)
	if err := h.responseSvc.SaveAnswer(r.Context(), req.ResponseID, key, req.Value); err != nil {
		if errors.Is(err, repository.ErrCompleted) {
			writeError(w, http.StatusConflict, "response already complete")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Autosave handles POST /v1/responses/{responseId}/autosave
func (h *ResponseHandler) Autosave(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["responseId"]

	var req AutosaveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.responseSvc.Autosave(r.Context(), responseID, req.Answers, req.CurrentGroupIndex); err != nil {
		if errors.Is(err, repository.ErrCompleted) {
			writeError(w, http.StatusConflict, "response already complete")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// Complete handles POST /v1/responses/{responseId}/complete
func (h *ResponseHandler) Complete(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["responseId"]

	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.responseSvc.Complete(r.Context(), responseID, req.Answers); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "complete"})
}

// ScreenOut handles POST /v1/responses/{responseId}/screenout
func (h *ResponseHandler) ScreenOut(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["responseId"]

	if err := h.responseSvc.ScreenOut(r.Context(), responseID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "screened_out"})
}

// Resume handles GET /v1/responses/{responseId}/resume
func (h *ResponseHandler) Resume(w http.ResponseWriter, r *http.Request) {
	responseID := mux.Vars(r)["responseId"]

	state, err := h.responseSvc.Resume(r.Context(), responseID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, state)
}
