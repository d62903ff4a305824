package rest

import (
	"ftareview/internal/service"
	"ftareview/internal/transport/rest/handler"
	"ftareview/internal/transport/rest/middleware"
	"ftareview/internal/transport/ws"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Container holds all dependencies for the router
type Container struct {
	CatalogService    *service.CatalogService
	AssessmentService *service.AssessmentService
	ProjectService    *service.ProjectService
	WSHub             *ws.Hub
	Gatherer          prometheus.Gatherer
	AllowedOrigins    string
	AllowedMethods    string
	AllowedHeaders    string
	Logger            *zap.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	catalogHandler := handler.NewCatalogHandler(c.CatalogService, c.Logger)
	assessHandler := handler.NewAssessHandler(c.AssessmentService, c.Logger)
	projectHandler := handler.NewProjectHandler(c.ProjectService, c.Logger)
	adminHandler := handler.NewAdminHandler(c.CatalogService, c.Logger)
	wsHandler := ws.NewHandler(c.WSHub, c.ProjectService, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins, c.AllowedMethods, c.AllowedHeaders))
	r.Use(middleware.NewRequestLogger(c.Logger).Handler)

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(c.Gatherer, promhttp.HandlerOpts{})).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Reference data
	api.HandleFunc("/questions", catalogHandler.Questions).Methods("GET", "OPTIONS")
	api.HandleFunc("/questions/{key}", catalogHandler.Question).Methods("GET", "OPTIONS")
	api.HandleFunc("/sections", catalogHandler.Sections).Methods("GET", "OPTIONS")
	api.HandleFunc("/sections/summary", catalogHandler.SectionSummary).Methods("GET", "OPTIONS")
	api.HandleFunc("/sections/{id}", catalogHandler.Section).Methods("GET", "OPTIONS")
	api.HandleFunc("/sub-areas", catalogHandler.SubAreas).Methods("GET", "OPTIONS")
	api.HandleFunc("/sub-areas/{id}", catalogHandler.SubArea).Methods("GET", "OPTIONS")

	// Stateless assessment
	api.HandleFunc("/assess", assessHandler.Assess).Methods("POST", "OPTIONS")

	// Projects
	api.HandleFunc("/projects", projectHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/projects/{id}", projectHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/projects/{id}", projectHandler.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc("/projects/{id}", projectHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/projects/{id}/answers", projectHandler.SubmitAnswers).Methods("POST", "OPTIONS")
	api.HandleFunc("/projects/{id}/answers", projectHandler.GetAnswers).Methods("GET", "OPTIONS")
	api.HandleFunc("/projects/{id}/applicable-sub-areas", projectHandler.ApplicableSubAreas).Methods("GET", "OPTIONS")
	api.HandleFunc("/projects/{id}/loe-summary", projectHandler.LOESummary).Methods("GET", "OPTIONS")

	// Catalog administration
	api.HandleFunc("/admin/catalog", adminHandler.CatalogInfo).Methods("GET", "OPTIONS")
	api.HandleFunc("/admin/catalog/reload", adminHandler.ReloadCatalog).Methods("POST", "OPTIONS")

	// WebSocket routes
	api.HandleFunc("/ws/projects/{id}", wsHandler.ProjectWS).Methods("GET")

	return r
}

func corsMiddleware(allowedOrigins, allowedMethods, allowedHeaders string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	if allowedMethods == "" {
		allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
	}
	if allowedHeaders == "" {
		allowedHeaders = "Content-Type, Authorization, X-Request-ID"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
			w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
