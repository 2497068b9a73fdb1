package service

import (
	"context"
	"fmt"

	"orgmanagement_backend/internal/events"
	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/apperr"

	"github.com/google/uuid"
)

// ListDepartments returns all departments visible to the caller: the full
// set for root, the caller's own organization otherwise.
func (s *Service) ListDepartments(ctx context.Context, caller tenancy.Caller) ([]transport.DepartmentResponse, error) {
	var (
		depts []repository.Department
		err   error
	)
	if caller.IsRootAdmin() {
		depts, err = s.repo.Departments().ListAll(ctx)
	} else {
		var orgID uuid.UUID
		orgID, err = caller.CurrentTenantID()
		if err != nil {
			return nil, err
		}
		depts, err = s.repo.Departments().ListByOrg(ctx, orgID)
	}
	if err != nil {
		return nil, err
	}

	out := make([]transport.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		out = append(out, toDepartmentResponse(d))
	}
	return out, nil
}

// CreateDepartment creates a department in the target organization. Root
// callers must name the organization explicitly; tenant callers always
// create in their own.
func (s *Service) CreateDepartment(ctx context.Context, caller tenancy.Caller, req transport.CreateDepartmentRequest) (transport.DepartmentResponse, error) {
	name, err := validateName("department", req.Name)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}

	orgID, err := caller.ResolveTenantScope(req.OrganizationID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}

	exists, err := s.repo.Organizations().Exists(ctx, orgID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}
	if !exists {
		return transport.DepartmentResponse{}, apperr.NotFound("organization not found")
	}

	taken, err := s.repo.Departments().ExistsByNameInOrg(ctx, name, orgID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}
	if taken {
		return transport.DepartmentResponse{}, apperr.BadRequest(
			fmt.Sprintf("a department with the name '%s' already exists in this organization", name))
	}

	dept, err := s.repo.Departments().Create(ctx, name, orgID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}

	s.log.Info("department created", "id", dept.ID, "name", dept.Name, "organization_id", orgID)
	return toDepartmentResponse(dept), nil
}

// GetDepartment returns one department. Tenant callers only see
// departments of their own organization; anything else reads as absent.
func (s *Service) GetDepartment(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (transport.DepartmentResponse, error) {
	dept, err := s.getDepartmentScoped(ctx, caller, id)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}
	return toDepartmentResponse(dept), nil
}

// UpdateDepartment renames a department and, for root callers, may re-home
// it to another organization.
func (s *Service) UpdateDepartment(ctx context.Context, caller tenancy.Caller, id uuid.UUID, req transport.UpdateDepartmentRequest) (transport.DepartmentResponse, error) {
	name, err := validateName("department", req.Name)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}

	if _, err := s.getDepartmentScoped(ctx, caller, id); err != nil {
		return transport.DepartmentResponse{}, err
	}

	orgID, err := caller.ResolveTenantScope(req.OrganizationID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}

	exists, err := s.repo.Organizations().Exists(ctx, orgID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}
	if !exists {
		return transport.DepartmentResponse{}, apperr.NotFound("organization not found")
	}

	taken, err := s.repo.Departments().ExistsByNameInOrgExcluding(ctx, name, orgID, id)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}
	if taken {
		return transport.DepartmentResponse{}, apperr.BadRequest(
			fmt.Sprintf("a department with the name '%s' already exists in this organization", name))
	}

	dept, err := s.repo.Departments().Update(ctx, id, name, orgID)
	if err != nil {
		return transport.DepartmentResponse{}, err
	}
	return toDepartmentResponse(dept), nil
}

// DeleteDepartment removes a department together with its teams and
// membership records.
func (s *Service) DeleteDepartment(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	dept, err := s.getDepartmentScoped(ctx, caller, id)
	if err != nil {
		return err
	}

	if caller.IsRootAdmin() {
		err = s.repo.Departments().Delete(ctx, id)
	} else {
		err = s.repo.Departments().DeleteInOrg(ctx, id, dept.OrganizationID)
	}
	if err != nil {
		return err
	}

	s.log.Info("department deleted", "id", id, "organization_id", dept.OrganizationID)
	s.bus.Publish(ctx, events.DepartmentDeleted{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: dept.OrganizationID,
		DepartmentID:   id,
	})
	return nil
}

func (s *Service) getDepartmentScoped(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (repository.Department, error) {
	if caller.IsRootAdmin() {
		return s.repo.Departments().GetByID(ctx, id)
	}
	orgID, err := caller.CurrentTenantID()
	if err != nil {
		return repository.Department{}, err
	}
	return s.repo.Departments().GetByIDInOrg(ctx, id, orgID)
}
