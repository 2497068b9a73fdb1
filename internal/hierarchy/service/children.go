package service

import (
	"context"

	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/hierarchy/transport"
	"orgmanagement_backend/internal/tenancy"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// GetChildren returns the full subtree of one organization: its
// departments and every team under them. The two branch queries run
// concurrently.
func (s *Service) GetChildren(ctx context.Context, caller tenancy.Caller, orgID uuid.UUID) (transport.ChildrenResponse, error) {
	if err := caller.RequireTenantAccess(orgID); err != nil {
		return transport.ChildrenResponse{}, err
	}

	if _, err := s.repo.Organizations().GetByID(ctx, orgID); err != nil {
		return transport.ChildrenResponse{}, err
	}

	var (
		depts []repository.Department
		teams []repository.Team
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		depts, err = s.repo.Departments().ListByOrg(gctx, orgID)
		return err
	})
	g.Go(func() error {
		var err error
		teams, err = s.repo.Teams().ListByOrg(gctx, orgID)
		return err
	})
	if err := g.Wait(); err != nil {
		return transport.ChildrenResponse{}, err
	}

	out := transport.ChildrenResponse{
		Departments: make([]transport.DepartmentResponse, 0, len(depts)),
		Teams:       make([]transport.TeamResponse, 0, len(teams)),
	}
	for _, d := range depts {
		out.Departments = append(out.Departments, toDepartmentResponse(d))
	}
	for _, t := range teams {
		out.Teams = append(out.Teams, toTeamResponse(t))
	}
	return out, nil
}
