// Package api exposes the HTTP surface: the mux router, the middleware
// chain and one handler per operation. Handlers decode and validate input,
// then delegate every business decision to the lifecycle engine.
package api

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/predial/vistoria/internal/config"
	"github.com/predial/vistoria/internal/lifecycle"
	"github.com/predial/vistoria/internal/metrics"
	"github.com/predial/vistoria/internal/validate"
	"github.com/predial/vistoria/pkg/models"
	"github.com/predial/vistoria/pkg/repository"
)

type Server struct {
	cfg       *config.Config
	engine    *lifecycle.Engine
	users     repository.UserRepo
	validator *validate.Validator
}

func NewServer(cfg *config.Config, engine *lifecycle.Engine, users repository.UserRepo, validator *validate.Validator) *Server {
	return &Server{cfg: cfg, engine: engine, users: users, validator: validator}
}

// SetupRoutes wires middleware and every route. The protected subrouter
// requires a valid bearer token; per-route role gates come on top of that.
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.Use(RecoveryMiddleware)
	r.Use(CORSMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(metrics.HTTPMetricsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/version", s.handleVersion).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/auth/register", s.handleRegister).Methods("POST", "OPTIONS")
	v1.HandleFunc("/auth/login", s.handleLogin).Methods("POST", "OPTIONS")

	protected := v1.PathPrefix("/").Subrouter()
	protected.Use(JWTAuthMiddlewareWithSecret(s.cfg.JWTSecret))

	staff := []string{models.RoleEngineer, models.RoleAdmin}

	protected.HandleFunc("/auth/me", s.handleMe).Methods("GET", "OPTIONS")
	protected.HandleFunc("/auth/users", requireRoles(s.handleListUsers, models.RoleAdmin)).Methods("GET", "OPTIONS")

	protected.HandleFunc("/buildings", requireRoles(s.handleCreateBuilding, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/buildings", requireRoles(s.handleListBuildings, staff...)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/buildings/client", requireRoles(s.handleListBuildingsClientView, models.RoleClient)).Methods("GET", "OPTIONS")

	protected.HandleFunc("/clients", requireRoles(s.handleCreateClient, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/clients", requireRoles(s.handleListClients, staff...)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/clients/profile", requireRoles(s.handleClientProfile, models.RoleClient)).Methods("GET", "OPTIONS")

	protected.HandleFunc("/linking/link-client", requireRoles(s.handleLinkClient, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/linking/my-buildings", requireRoles(s.handleMyBuildings, models.RoleClient)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/linking/building/{id:[0-9]+}/clients", requireRoles(s.handleBuildingClients, staff...)).Methods("GET", "OPTIONS")

	protected.HandleFunc("/surveys", requireRoles(s.handleCreateSurvey, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/surveys", requireRoles(s.handleListSurveys, staff...)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/surveys/client", requireRoles(s.handleListClientSurveys, models.RoleClient)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/surveys/all", requireRoles(s.handleListAllSurveys, models.RoleAdmin)).Methods("GET", "OPTIONS")
	protected.HandleFunc("/surveys/{id:[0-9]+}", s.handleGetSurvey).Methods("GET", "OPTIONS")
	protected.HandleFunc("/surveys/{id:[0-9]+}", requireRoles(s.handleUpdateSurvey, staff...)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/surveys/{id:[0-9]+}", requireRoles(s.handleDeleteSurvey, staff...)).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/surveys/{id:[0-9]+}/start-live", requireRoles(s.handleStartLiveSurvey, staff...)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/surveys/{id:[0-9]+}/complete", requireRoles(s.handleCompleteSurvey, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/surveys/{id:[0-9]+}/rooms", requireRoles(s.handleAddSurveyRooms, staff...)).Methods("POST", "OPTIONS")

	protected.HandleFunc("/rooms", requireRoles(s.handleCreateRoom, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/rooms/{id:[0-9]+}", requireRoles(s.handleUpdateRoom, staff...)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/rooms/{id:[0-9]+}", requireRoles(s.handleDeleteRoom, staff...)).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/rooms/{id:[0-9]+}/status", requireRoles(s.handleUpdateRoomStatus, staff...)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/rooms/{id:[0-9]+}/fix-all", requireRoles(s.handleFixAllIssues, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/rooms/survey/{id:[0-9]+}", s.handleListSurveyRooms).Methods("GET", "OPTIONS")

	protected.HandleFunc("/issues", requireRoles(s.handleCreateIssue, staff...)).Methods("POST", "OPTIONS")
	protected.HandleFunc("/issues/{id:[0-9]+}", requireRoles(s.handleUpdateIssue, staff...)).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/issues/{id:[0-9]+}", requireRoles(s.handleDeleteIssue, staff...)).Methods("DELETE", "OPTIONS")
	protected.HandleFunc("/issues/survey/{id:[0-9]+}", s.handleListSurveyIssues).Methods("GET", "OPTIONS")

	protected.HandleFunc("/reports/survey/{id:[0-9]+}", s.handleSurveyReport).Methods("GET", "OPTIONS")
	protected.HandleFunc("/reports/survey/{id:[0-9]+}/pdf", s.handleSurveyReportPDF).Methods("GET", "OPTIONS")

	return r
}
