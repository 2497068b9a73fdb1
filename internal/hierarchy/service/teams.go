package service

import (
	"context"
	"fmt"

	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/apperr"

	"github.com/google/uuid"
)

// ListTeams returns all teams visible to the caller.
func (s *Service) ListTeams(ctx context.Context, caller tenancy.Caller) ([]transport.TeamResponse, error) {
	var (
		teams []repository.Team
		err   error
	)
	if caller.IsRootAdmin() {
		teams, err = s.repo.Teams().ListAll(ctx)
	} else {
		var orgID uuid.UUID
		orgID, err = caller.CurrentTenantID()
		if err != nil {
			return nil, err
		}
		teams, err = s.repo.Teams().ListByOrg(ctx, orgID)
	}
	if err != nil {
		return nil, err
	}

	return toTeamResponses(teams), nil
}

// ListTeamsByDepartment returns the teams of one department. The department
// itself is resolved inside the caller's scope first, so a foreign
// department reads as absent rather than leaking an empty list.
func (s *Service) ListTeamsByDepartment(ctx context.Context, caller tenancy.Caller, departmentID uuid.UUID) ([]transport.TeamResponse, error) {
	if _, err := s.getDepartmentScoped(ctx, caller, departmentID); err != nil {
		return nil, err
	}

	teams, err := s.repo.Teams().ListByDept(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return toTeamResponses(teams), nil
}

// CreateTeam creates a team under an existing department of the caller's
// scope.
func (s *Service) CreateTeam(ctx context.Context, caller tenancy.Caller, req transport.CreateTeamRequest) (transport.TeamResponse, error) {
	name, err := validateName("team", req.Name)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	if req.DepartmentID == nil {
		return transport.TeamResponse{}, apperr.BadRequest("department ID is required")
	}

	dept, err := s.getDepartmentScoped(ctx, caller, *req.DepartmentID)
	if err != nil {
		return transport.TeamResponse{}, err
	}

	taken, err := s.repo.Teams().ExistsByNameInDept(ctx, name, dept.ID)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	if taken {
		return transport.TeamResponse{}, apperr.BadRequest(
			fmt.Sprintf("a team with the name '%s' already exists in this department", name))
	}

	team, err := s.repo.Teams().Create(ctx, name, dept.ID)
	if err != nil {
		return transport.TeamResponse{}, err
	}

	s.log.Info("team created", "id", team.ID, "name", team.Name, "department_id", dept.ID)
	return toTeamResponse(team), nil
}

// GetTeam returns one team, resolved inside the caller's scope.
func (s *Service) GetTeam(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (transport.TeamResponse, error) {
	team, err := s.getTeamScoped(ctx, caller, id)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	return toTeamResponse(team), nil
}

// UpdateTeam renames a team and may re-parent it to another department of
// the caller's scope.
func (s *Service) UpdateTeam(ctx context.Context, caller tenancy.Caller, id uuid.UUID, req transport.UpdateTeamRequest) (transport.TeamResponse, error) {
	name, err := validateName("team", req.Name)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	if req.DepartmentID == nil {
		return transport.TeamResponse{}, apperr.BadRequest("department ID is required")
	}

	if _, err := s.getTeamScoped(ctx, caller, id); err != nil {
		return transport.TeamResponse{}, err
	}

	dept, err := s.getDepartmentScoped(ctx, caller, *req.DepartmentID)
	if err != nil {
		return transport.TeamResponse{}, err
	}

	taken, err := s.repo.Teams().ExistsByNameInDeptExcluding(ctx, name, dept.ID, id)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	if taken {
		return transport.TeamResponse{}, apperr.BadRequest(
			fmt.Sprintf("a team with the name '%s' already exists in this department", name))
	}

	team, err := s.repo.Teams().Update(ctx, id, name, dept.ID)
	if err != nil {
		return transport.TeamResponse{}, err
	}
	return toTeamResponse(team), nil
}

// DeleteTeam removes a team together with its membership records.
func (s *Service) DeleteTeam(ctx context.Context, caller tenancy.Caller, id uuid.UUID) error {
	if caller.IsRootAdmin() {
		return s.repo.Teams().Delete(ctx, id)
	}

	orgID, err := caller.CurrentTenantID()
	if err != nil {
		return err
	}
	return s.repo.Teams().DeleteInOrg(ctx, id, orgID)
}

func (s *Service) getTeamScoped(ctx context.Context, caller tenancy.Caller, id uuid.UUID) (repository.Team, error) {
	if caller.IsRootAdmin() {
		return s.repo.Teams().GetByID(ctx, id)
	}
	orgID, err := caller.CurrentTenantID()
	if err != nil {
		return repository.Team{}, err
	}
	return s.repo.Teams().GetByIDInOrg(ctx, id, orgID)
}

func toTeamResponses(teams []repository.Team) []transport.TeamResponse {
	out := make([]transport.TeamResponse, 0, len(teams))
	for _, t := range teams {
		out = append(out, toTeamResponse(t))
	}
	return out
}
