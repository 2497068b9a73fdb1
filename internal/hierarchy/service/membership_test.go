package service

import (
	"context"
	"testing"

	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/remote"
	"orgmanagement_backend/platform/apperr"

	"github.com/google/uuid"
)

func TestAssignMember_UserToDepartment(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	userID := uuid.New()

	err := f.svc.AssignMember(context.Background(), tenantCaller(org.ID), repository.HostDepartment, repository.MemberUser, org.ID, dept.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref := repository.MembershipRef{Host: repository.HostDepartment, Member: repository.MemberUser, HostID: dept.ID, MemberID: userID, OrganizationID: org.ID}
	if has, _ := f.repo.Memberships().HasMember(context.Background(), ref); !has {
		t.Fatal("expected membership to be recorded")
	}
	if len(f.users.assignedCalls) != 1 {
		t.Fatalf("expected 1 user-service dispatch, got %d", len(f.users.assignedCalls))
	}
	if rec := f.users.assignedCalls[0]; rec.Kind != remote.AssignmentDepartment || rec.DepartmentID != dept.ID {
		t.Fatalf("expected department assignment record for %s, got %+v", dept.ID, rec)
	}
	if got := f.bus.names(); len(got) != 1 || got[0] != "hierarchy.member.assigned" {
		t.Fatalf("expected member assigned event, got %v", got)
	}
}

func TestAssignMember_UserToTeamCarriesParentDepartment(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	team := f.repo.addTeam("Platform", dept)
	userID := uuid.New()

	err := f.svc.AssignMember(context.Background(), tenantCaller(org.ID), repository.HostTeam, repository.MemberUser, org.ID, team.ID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.users.assignedCalls) != 1 {
		t.Fatalf("expected 1 user-service dispatch, got %d", len(f.users.assignedCalls))
	}
	rec := f.users.assignedCalls[0]
	if rec.Kind != remote.AssignmentTeam {
		t.Fatalf("expected team assignment kind, got %s", rec.Kind)
	}
	if rec.DepartmentID != dept.ID {
		t.Fatalf("expected parent department %s on the record, got %s", dept.ID, rec.DepartmentID)
	}
	if rec.TeamID == nil || *rec.TeamID != team.ID {
		t.Fatalf("expected team %s on the record, got %v", team.ID, rec.TeamID)
	}
}

func TestAssignMember_AlreadyAssigned(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	surveyID := uuid.New()
	caller := tenantCaller(org.ID)

	if err := f.svc.AssignMember(context.Background(), caller, repository.HostDepartment, repository.MemberSurvey, org.ID, dept.ID, surveyID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err := f.svc.AssignMember(context.Background(), caller, repository.HostDepartment, repository.MemberSurvey, org.ID, dept.ID, surveyID)
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for repeated assignment, got %v", err)
	}
}

func TestAssignMember_MemberAbsent(t *testing.T) {
	f := newFixture()
	f.users.existsResult = remote.ProbeAbsent
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)

	err := f.svc.AssignMember(context.Background(), tenantCaller(org.ID), repository.HostDepartment, repository.MemberUser, org.ID, dept.ID, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for absent user, got %v", err)
	}
}

func TestAssignMember_ProbeUnknownAborts(t *testing.T) {
	f := newFixture()
	f.surveys.existsResult = remote.ProbeUnknown
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	surveyID := uuid.New()

	err := f.svc.AssignMember(context.Background(), tenantCaller(org.ID), repository.HostDepartment, repository.MemberSurvey, org.ID, dept.ID, surveyID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable for unanswerable probe, got %v", err)
	}

	ref := repository.MembershipRef{Host: repository.HostDepartment, Member: repository.MemberSurvey, HostID: dept.ID, MemberID: surveyID, OrganizationID: org.ID}
	if has, _ := f.repo.Memberships().HasMember(context.Background(), ref); has {
		t.Fatal("expected no membership written when the probe cannot answer")
	}
}

func TestAssignMember_DispatchFailureRollsBack(t *testing.T) {
	f := newFixture()
	f.users.assignErr = errDownstream
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	userID := uuid.New()

	err := f.svc.AssignMember(context.Background(), tenantCaller(org.ID), repository.HostDepartment, repository.MemberUser, org.ID, dept.ID, userID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable on dispatch failure, got %v", err)
	}

	ref := repository.MembershipRef{Host: repository.HostDepartment, Member: repository.MemberUser, HostID: dept.ID, MemberID: userID, OrganizationID: org.ID}
	if has, _ := f.repo.Memberships().HasMember(context.Background(), ref); has {
		t.Fatal("expected membership rolled back after dispatch failure")
	}
	if got := f.bus.names(); len(got) != 0 {
		t.Fatalf("expected no event after rollback, got %v", got)
	}
}

func TestAssignMember_ForeignOrganizationForbidden(t *testing.T) {
	f := newFixture()
	own := f.repo.addOrg("Own")
	other := f.repo.addOrg("Other")
	foreignDept := f.repo.addDept("Engineering", other)

	err := f.svc.AssignMember(context.Background(), tenantCaller(own.ID), repository.HostDepartment, repository.MemberUser, other.ID, foreignDept.ID, uuid.New())
	if !apperr.Is(err, apperr.KindForbidden) {
		t.Fatalf("expected forbidden for foreign organization, got %v", err)
	}
}

func TestAssignMember_HostOutsideOrganizationIsNotFound(t *testing.T) {
	f := newFixture()
	own := f.repo.addOrg("Own")
	other := f.repo.addOrg("Other")
	foreignDept := f.repo.addDept("Engineering", other)

	// Root may address any organization, but the host must live in it.
	err := f.svc.AssignMember(context.Background(), rootCaller(), repository.HostDepartment, repository.MemberUser, own.ID, foreignDept.ID, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for host outside organization, got %v", err)
	}
}

func TestRemoveMember_User(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	team := f.repo.addTeam("Platform", dept)
	userID := uuid.New()
	caller := tenantCaller(org.ID)

	if err := f.svc.AssignMember(context.Background(), caller, repository.HostTeam, repository.MemberUser, org.ID, team.ID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := f.svc.RemoveMember(context.Background(), caller, repository.HostTeam, repository.MemberUser, org.ID, team.ID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ref := repository.MembershipRef{Host: repository.HostTeam, Member: repository.MemberUser, HostID: team.ID, MemberID: userID, OrganizationID: org.ID}
	if has, _ := f.repo.Memberships().HasMember(context.Background(), ref); has {
		t.Fatal("expected membership removed")
	}
	if len(f.users.removedCalls) != 1 {
		t.Fatalf("expected 1 user-service removal dispatch, got %d", len(f.users.removedCalls))
	}
}

func TestRemoveMember_NotAssigned(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)

	err := f.svc.RemoveMember(context.Background(), tenantCaller(org.ID), repository.HostDepartment, repository.MemberSurvey, org.ID, dept.ID, uuid.New())
	if !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for unassigned member, got %v", err)
	}
}

func TestRemoveMember_DispatchFailureRestoresMembership(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	userID := uuid.New()
	caller := tenantCaller(org.ID)

	if err := f.svc.AssignMember(context.Background(), caller, repository.HostDepartment, repository.MemberUser, org.ID, dept.ID, userID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f.users.removeErr = errDownstream
	err := f.svc.RemoveMember(context.Background(), caller, repository.HostDepartment, repository.MemberUser, org.ID, dept.ID, userID)
	if !apperr.Is(err, apperr.KindUnavailable) {
		t.Fatalf("expected unavailable on dispatch failure, got %v", err)
	}

	ref := repository.MembershipRef{Host: repository.HostDepartment, Member: repository.MemberUser, HostID: dept.ID, MemberID: userID, OrganizationID: org.ID}
	if has, _ := f.repo.Memberships().HasMember(context.Background(), ref); !has {
		t.Fatal("expected membership restored after removal dispatch failure")
	}
}

func TestMembership_SurveysSkipUserServiceDispatch(t *testing.T) {
	f := newFixture()
	org := f.repo.addOrg("Acme")
	dept := f.repo.addDept("Engineering", org)
	team := f.repo.addTeam("Platform", dept)
	surveyID := uuid.New()
	caller := tenantCaller(org.ID)

	if err := f.svc.AssignMember(context.Background(), caller, repository.HostTeam, repository.MemberSurvey, org.ID, team.ID, surveyID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := f.svc.RemoveMember(context.Background(), caller, repository.HostTeam, repository.MemberSurvey, org.ID, team.ID, surveyID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.users.assignedCalls) != 0 || len(f.users.removedCalls) != 0 {
		t.Fatal("expected no user-service dispatch for survey memberships")
	}
}
