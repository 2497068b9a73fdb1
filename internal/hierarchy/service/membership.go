package service

import (
	"context"
	"fmt"

	"orgmanagement_backend/internal/events"
	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/remote"
	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/apperr"

	"github.com/google/uuid"
)

// AssignMember attaches a member (user or survey) to a host (department or
// team) inside the caller's organization. Users are additionally registered
// with the user service; if that dispatch fails the local record is rolled
// back so the two sides never drift apart.
func (s *Service) AssignMember(ctx context.Context, caller tenancy.Caller, host repository.HostKind, member repository.MemberKind, orgID, hostID, memberID uuid.UUID) error {
	ref, rec, err := s.prepareMembership(ctx, caller, host, member, orgID, hostID, memberID)
	if err != nil {
		return err
	}

	if err := s.probeMember(ctx, member, memberID); err != nil {
		return err
	}

	if err := s.repo.Memberships().AddMember(ctx, ref); err != nil {
		return err
	}

	if member == repository.MemberUser {
		if err := s.users.AssignUser(ctx, memberID, rec); err != nil {
			s.log.RemoteCall("user-service", "assign user", err)
			if rbErr := s.repo.Memberships().RemoveMember(ctx, ref); rbErr != nil {
				s.log.Error("membership rollback failed", "error", rbErr, "host_id", hostID, "member_id", memberID)
			}
			return apperr.Unavailable("user service could not be reached")
		}
	}

	s.bus.Publish(ctx, events.MemberAssigned{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: orgID,
		HostKind:       string(host),
		HostID:         hostID,
		MemberKind:     string(member),
		MemberID:       memberID,
	})
	return nil
}

// RemoveMember detaches a member from a host inside the caller's
// organization. User removals are mirrored to the user service with the
// same rollback guarantee as AssignMember.
func (s *Service) RemoveMember(ctx context.Context, caller tenancy.Caller, host repository.HostKind, member repository.MemberKind, orgID, hostID, memberID uuid.UUID) error {
	ref, rec, err := s.prepareMembership(ctx, caller, host, member, orgID, hostID, memberID)
	if err != nil {
		return err
	}

	if err := s.repo.Memberships().RemoveMember(ctx, ref); err != nil {
		return err
	}

	if member == repository.MemberUser {
		if err := s.users.RemoveUser(ctx, memberID, rec); err != nil {
			s.log.RemoteCall("user-service", "remove user", err)
			if rbErr := s.repo.Memberships().AddMember(ctx, ref); rbErr != nil {
				s.log.Error("membership rollback failed", "error", rbErr, "host_id", hostID, "member_id", memberID)
			}
			return apperr.Unavailable("user service could not be reached")
		}
	}

	s.bus.Publish(ctx, events.MemberRemoved{
		BaseEvent:      events.NewBaseEvent(),
		OrganizationID: orgID,
		HostKind:       string(host),
		HostID:         hostID,
		MemberKind:     string(member),
		MemberID:       memberID,
	})
	return nil
}

// prepareMembership runs the shared preamble of every membership mutation:
// tenant access, organization existence, host resolution inside the
// organization, and the placement record for user dispatches.
func (s *Service) prepareMembership(ctx context.Context, caller tenancy.Caller, host repository.HostKind, member repository.MemberKind, orgID, hostID, memberID uuid.UUID) (repository.MembershipRef, remote.Assignment, error) {
	ref := repository.MembershipRef{
		Host:           host,
		Member:         member,
		HostID:         hostID,
		MemberID:       memberID,
		OrganizationID: orgID,
	}

	if err := caller.RequireTenantAccess(orgID); err != nil {
		return ref, remote.Assignment{}, err
	}

	exists, err := s.repo.Organizations().Exists(ctx, orgID)
	if err != nil {
		return ref, remote.Assignment{}, err
	}
	if !exists {
		return ref, remote.Assignment{}, apperr.NotFound("organization not found")
	}

	var rec remote.Assignment
	switch host {
	case repository.HostDepartment:
		if _, err := s.repo.Departments().GetByIDInOrg(ctx, hostID, orgID); err != nil {
			return ref, remote.Assignment{}, err
		}
		rec = remote.DepartmentAssignment(hostID)
	case repository.HostTeam:
		team, err := s.repo.Teams().GetByIDInOrg(ctx, hostID, orgID)
		if err != nil {
			return ref, remote.Assignment{}, err
		}
		rec = remote.TeamAssignment(team.DepartmentID, hostID)
	default:
		return ref, remote.Assignment{}, apperr.Internal(fmt.Sprintf("unknown membership host kind %q", host))
	}

	return ref, rec, nil
}

// probeMember verifies the member exists in its owning service before any
// local write. An unreachable service aborts the operation: a membership
// for an unverifiable member is worse than a retry.
func (s *Service) probeMember(ctx context.Context, member repository.MemberKind, memberID uuid.UUID) error {
	switch member {
	case repository.MemberUser:
		switch s.users.UserExists(ctx, memberID) {
		case remote.ProbeAbsent:
			return apperr.NotFound("user not found")
		case remote.ProbeUnknown:
			return apperr.Unavailable("user service could not be reached")
		}
	case repository.MemberSurvey:
		switch s.surveys.SurveyExists(ctx, memberID) {
		case remote.ProbeAbsent:
			return apperr.NotFound("survey not found")
		case remote.ProbeUnknown:
			return apperr.Unavailable("survey service could not be reached")
		}
	default:
		return apperr.Internal(fmt.Sprintf("unknown membership member kind %q", member))
	}
	return nil
}
