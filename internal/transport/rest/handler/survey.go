package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"surveyd/internal/model"
	"surveyd/internal/service"
)

// SurveyHandler handles survey structure endpoints
type SurveyHandler struct {
	surveySvc *service.SurveyService
}

// NewSurveyHandler creates a new survey handler
func NewSurveyHandler(surveySvc *service.SurveyService) *SurveyHandler {
	return &SurveyHandler{
		surveySvc: surveySvc,
	}
}

// Create handles POST /v1/surveys
func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var survey model.Survey
	if err := json.NewDecoder(r.Body).Decode(&survey); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := h.surveySvc.Create(r.Context(), &survey)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"surveyId": id})
}

// GetStructure handles GET /v1/surveys/{surveyId}/structure
func (h *SurveyHandler) GetStructure(w http.ResponseWriter, r *http.Request) {
	surveyID := mux.Vars(r)["surveyId"]

	survey, err := h.surveySvc.Get(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	open, reason, err := h.surveySvc.Open(r.Context(), surveyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !open {
		writeError(w, http.StatusForbidden, reason)
		return
	}

	writeJSON(w, http.StatusOK, survey)
}

// Helper functions
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
