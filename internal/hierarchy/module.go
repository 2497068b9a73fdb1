// Package hierarchy provides the organizational hierarchy bounded context:
// organizations, their departments and teams, and the membership sets that
// attach users and surveys to them.
package hierarchy

import (
	"orgmanagement_backend/internal/events"
	"orgmanagement_backend/internal/hierarchy/handler"
	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/hierarchy/service"
	apphttp "orgmanagement_backend/internal/http"
	"orgmanagement_backend/internal/remote"
	"orgmanagement_backend/platform/config"
	"orgmanagement_backend/platform/logger"
	"orgmanagement_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the hierarchy bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the hierarchy module with all its
// dependencies, including the user-service and survey-service clients.
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.RemoteServicesConfig, log *logger.Logger) *Module {
	repo := repository.New(pool)
	users := remote.NewUserServiceClient(cfg, log)
	surveys := remote.NewSurveyServiceClient(cfg, log)

	svc := service.New(repo, users, surveys, eventBus, log)
	h := handler.New(svc, val)

	return &Module{handler: h, service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "hierarchy"
}

// Service returns the hierarchy service for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts the hierarchy routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterPublicRoutes(ctx.Public)
	m.handler.RegisterProtectedRoutes(ctx.Protected)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
