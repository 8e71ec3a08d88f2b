package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"tierfs-backend/internal/handlers"
	"tierfs-backend/internal/middleware"
)

// NewRouter wires all API routes. Health and metrics are open; the file
// catalog requires a valid token; destructive operations require admin.
func NewRouter(
	healthHandler *handlers.HealthHandler,
	consistencyHandler *handlers.ConsistencyHandler,
	fileHandler *handlers.FileHandler,
	trashHandler *handlers.TrashHandler,
	monitoringHandler *handlers.MonitoringHandler,
	authHandler *handlers.AuthHandler,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogging)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.GzipCompression)

	// Open endpoints
	r.HandleFunc("/api/health", healthHandler.GetHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/health/nas", healthHandler.GetNASHealth).Methods(http.MethodGet)
	r.Handle("/api/auth/login",
		middleware.LoginRateLimiter.Middleware(http.HandlerFunc(authHandler.Login))).Methods(http.MethodPost)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Authenticated endpoints
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.APIRateLimiter.Middleware)
	api.Use(authMiddleware.RequireAuth)

	api.HandleFunc("/files", fileHandler.ListFiles).Methods(http.MethodGet)
	api.HandleFunc("/files", fileHandler.UploadFile).Methods(http.MethodPost)
	api.HandleFunc("/files/{id}/download", fileHandler.DownloadFile).Methods(http.MethodGet)
	api.HandleFunc("/files/{id}", fileHandler.DeleteFile).Methods(http.MethodDelete)

	api.HandleFunc("/trash", trashHandler.ListTrash).Methods(http.MethodGet)
	api.HandleFunc("/trash/{id}/restore", trashHandler.RestoreFromTrash).Methods(http.MethodPost)

	api.HandleFunc("/monitoring/system", monitoringHandler.GetSystemStats).Methods(http.MethodGet)
	api.HandleFunc("/monitoring/nas-history", monitoringHandler.GetNASHistory).Methods(http.MethodGet)
	api.HandleFunc("/monitoring/live", monitoringHandler.LiveStats).Methods(http.MethodGet)

	// Admin endpoints
	admin := r.PathPrefix("/api").Subrouter()
	admin.Use(middleware.APIRateLimiter.Middleware)
	admin.Use(authMiddleware.RequireAdmin)

	admin.HandleFunc("/consistency/check", consistencyHandler.CheckConsistency).Methods(http.MethodPost)
	admin.HandleFunc("/trash/{id}", trashHandler.PurgeTrash).Methods(http.MethodDelete)
	admin.HandleFunc("/trash/purge-expired", trashHandler.PurgeExpired).Methods(http.MethodPost)

	return r
}
