// Package service implements the tenant-scoped hierarchy orchestrator.
// Every public operation takes the Call Context explicitly and runs the
// uniform preamble: resolve the tenant scope, require access, then touch
// the store.
package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"orgmanagement_backend/internal/events"
	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/remote"
	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/apperr"
	"orgmanagement_backend/platform/logger"

	"github.com/google/uuid"
)

// UserGateway is the user-service contract the orchestrator consumes:
// an existence probe plus the placement dispatch endpoints.
type UserGateway interface {
	UserExists(ctx context.Context, userID uuid.UUID) remote.ProbeResult
	AssignUser(ctx context.Context, userID uuid.UUID, rec remote.Assignment) error
	RemoveUser(ctx context.Context, userID uuid.UUID, rec remote.Assignment) error
}

// SurveyGateway is the survey-service contract: an existence probe only.
type SurveyGateway interface {
	SurveyExists(ctx context.Context, surveyID uuid.UUID) remote.ProbeResult
}

// Service provides the full hierarchy operation set.
type Service struct {
	repo    repository.Repository
	users   UserGateway
	surveys SurveyGateway
	bus     events.Bus
	log     *logger.Logger
}

// New creates a new hierarchy service.
func New(repo repository.Repository, users UserGateway, surveys SurveyGateway, bus events.Bus, log *logger.Logger) *Service {
	return &Service{repo: repo, users: users, surveys: surveys, bus: bus, log: log}
}

// validateName applies the shared name rules: non-empty after trimming,
// length between 2 and 100. Returns the trimmed name.
func validateName(kind, name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", apperr.BadRequest(kind + " name must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 100 {
		return "", apperr.BadRequest(kind + " name must be between 2 and 100 characters")
	}
	return trimmed, nil
}

// =============================================================================
// Organization operations
// =============================================================================

// ListOrganizations returns every organization. Root only.
func (s *Service) ListOrganizations(ctx context.Context, caller tenancy.Caller) ([]transport.OrganizationResponse, error) {
	if !caller.IsRootAdmin() {
		return nil, apperr.Forbidden("only root admins may list organizations")
	}

	orgs, err := s.repo.Organizations().GetAll(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]transport.OrganizationResponse, 0, len(orgs))
	for _, o := range orgs {
		out = append(out, toOrganizationResponse(o))
	}
	return out, nil
}

// CreateOrganization is the self-service tenant bootstrap; it is the one
// operation that takes no Call Context because it runs unauthenticated.
func (s *Service) CreateOrganization(ctx context.Context, req transport.CreateOrganizationRequest) (transport.OrganizationResponse, error) {
	name, err := validateName("organization", req.Name)
	if err != nil {
		return transport.OrganizationResponse{}, err
	}

	org, err := s.repo.Organizations().Create(ctx, name)
	if err != nil {
		return transport.OrganizationResponse{}, err
	}

	s.log.Info("organization created", "id", org.ID, "name", org.Name)
	s.bus.Publish(ctx, events.OrganizationCreated{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: org.ID,
		Name:           org.Name,
	})

	return toOrganizationResponse(org), nil
}

// GetOrganization returns one organization; root or the tenant itself.
func (s *Service) GetOrganization(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (transport.OrganizationResponse, error) {
	if err := caller.RequireTenantAccess(id); err != nil {
		return transport.OrganizationResponse{}, err
	}

	org, err := s.repo.Organizations().GetByID(ctx, id)
	if err != nil {
		return transport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

// OrganizationExists is the unauthenticated existence probe used by peer
// services.
func (s *Service) OrganizationExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.repo.Organizations().Exists(ctx, id)
}

// UpdateOrganization renames an organization; root or the tenant itself.
func (s *Service) UpdateOrganization(ctx context.Context, caller tenancy.Caller, id uuid.UUID, req transport.UpdateOrganizationRequest) (transport.OrganizationResponse, error) {
	if err := caller.RequireTenantAccess(id); err != nil {
		return transport.OrganizationResponse{}, err
	}

	name, err := validateName("organization", req.Name)
	if err != nil {
		return transport.OrganizationResponse{}, err
	}

	org, err := s.repo.Organizations().Update(ctx, id, name)
	if err != nil {
		return transport.OrganizationResponse{}, err
	}
	return toOrganizationResponse(org), nil
}

// DeleteOrganization removes an organization and, through the ownership
// cascade, its whole subtree.
func (s *Service) DeleteOrganization(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	if err := caller.RequireTenantAccess(id); err != nil {
		return err
	}

	if err := s.repo.Organizations().Delete(ctx, id); err != nil {
		return err
	}

	s.log.Info("organization deleted", "id", id)
	s.bus.Publish(ctx, events.OrganizationDeleted{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: id,
	})
	return nil
}

// =============================================================================
// Mapping helpers
// =============================================================================

func toOrganizationResponse(o repository.Organization) transport.OrganizationResponse {
	return transport.OrganizationResponse{ID: o.ID, Name: o.Name}
}

func toDepartmentResponse(d repository.Department) transport.DepartmentResponse {
	return transport.DepartmentResponse{
		ID:   d.ID,
		Name: d.Name,
		Organization: transport.OrganizationResponse{
			ID:   d.OrganizationID,
			Name: d.OrganizationName,
		},
	}
}

func toTeamResponse(t repository.Team) transport.TeamResponse {
	return transport.TeamResponse{
		ID:   t.ID,
		Name: t.Name,
		Department: transport.DepartmentSummary{
			ID:   t.DepartmentID,
			Name: t.DepartmentName,
		},
	}
}
