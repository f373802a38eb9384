package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"surveyd/internal/service"
	"surveyd/internal/transport/rest/handler"
)

// Container holds all dependencies for the router
type Container struct {
	SurveyService   *service.SurveyService
	ResponseService *service.ResponseService
	QuotaService    *service.QuotaService
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	surveyHandler := handler.NewSurveyHandler(c.SurveyService)
	responseHandler := handler.NewResponseHandler(c.ResponseService)
	quotaHandler := handler.NewQuotaHandler(c.QuotaService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/surveys", surveyHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/structure", surveyHandler.GetStructure).Methods("GET", "OPTIONS")
	v1.HandleFunc("/surveys/{surveyId}/quotas/check", quotaHandler.Check).Methods("POST", "OPTIONS")

	v1.HandleFunc("/responses", responseHandler.Start).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses/answer", responseHandler.SaveAnswer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses/{responseId}/autosave", responseHandler.Autosave).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses/{responseId}/complete", responseHandler.Complete).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses/{responseId}/screenout", responseHandler.ScreenOut).Methods("POST", "OPTIONS")
	v1.HandleFunc("/responses/{responseId}/resume", responseHandler.Resume).Methods("GET", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
