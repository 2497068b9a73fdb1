package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"orgmanagement_backend/internal/events"
	"orgmanagement_backend/internal/hierarchy/repository"
	"orgmanagement_backend/internal/remote"
	"orgmanagement_backend/internal/tenancy"
	"orgmanagement_backend/platform/apperr"
	"orgmanagement_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeRepo is an in-memory Repository used by the service tests.
type fakeRepo struct {
	mu    sync.Mutex
	orgs  map[uuid.UUID]repository.Organization
	depts map[uuid.UUID]repository.Department
	teams map[uuid.UUID]repository.Team
	// membership key: host kind + host ID + member kind + member ID
	members map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		orgs:    make(map[uuid.UUID]repository.Organization),
		depts:   make(map[uuid.UUID]repository.Department),
		teams:   make(map[uuid.UUID]repository.Team),
		members: make(map[string]bool),
	}
}

func (f *fakeRepo) Organizations() repository.OrganizationStore { return (*fakeOrgStore)(f) }
func (f *fakeRepo) Departments() repository.DepartmentStore     { return (*fakeDeptStore)(f) }
func (f *fakeRepo) Teams() repository.TeamStore                 { return (*fakeTeamStore)(f) }
func (f *fakeRepo) Memberships() repository.MembershipStore     { return (*fakeMembershipStore)(f) }

func (f *fakeRepo) addOrg(name string) repository.Organization {
	f.mu.Lock()
	defer f.mu.Unlock()
	org := repository.Organization{ID: uuid.New(), Name: name}
	f.orgs[org.ID] = org
	return org
}

func (f *fakeRepo) addDept(name string, org repository.Organization) repository.Department {
	f.mu.Lock()
	defer f.mu.Unlock()
	dept := repository.Department{ID: uuid.New(), Name: name, OrganizationID: org.ID, OrganizationName: org.Name}
	f.depts[dept.ID] = dept
	return dept
}

func (f *fakeRepo) addTeam(name string, dept repository.Department) repository.Team {
	f.mu.Lock()
	defer f.mu.Unlock()
	team := repository.Team{ID: uuid.New(), Name: name, DepartmentID: dept.ID, DepartmentName: dept.Name}
	f.teams[team.ID] = team
	return team
}

func membershipKey(ref repository.MembershipRef) string {
	return fmt.Sprintf("%s/%s/%s/%s", ref.Host, ref.HostID, ref.Member, ref.MemberID)
}

// cascadeDept mirrors the schema's ON DELETE CASCADE chain: deleting a
// department drops its teams and every membership row hanging off the
// department or those teams. Callers must hold the mutex.
func (f *fakeRepo) cascadeDept(id uuid.UUID) {
	f.dropMemberships(repository.HostDepartment, id)
	for teamID, t := range f.teams {
		if t.DepartmentID == id {
			f.dropMemberships(repository.HostTeam, teamID)
			delete(f.teams, teamID)
		}
	}
}

func (f *fakeRepo) dropMemberships(host repository.HostKind, hostID uuid.UUID) {
	prefix := fmt.Sprintf("%s/%s/", host, hostID)
	for key := range f.members {
		if strings.HasPrefix(key, prefix) {
			delete(f.members, key)
		}
	}
}

// ---------------------------------------------------------------------------

type fakeOrgStore fakeRepo

func (f *fakeOrgStore) GetAll(_ context.Context) ([]repository.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Organization, 0, len(f.orgs))
	for _, o := range f.orgs {
		out = append(out, o)
	}
	return out, nil
}

func (f *fakeOrgStore) GetByID(_ context.Context, id uuid.UUID) (repository.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return repository.Organization{}, apperr.NotFound("organization not found")
	}
	return o, nil
}

func (f *fakeOrgStore) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.orgs[id]
	return ok, nil
}

func (f *fakeOrgStore) Create(_ context.Context, name string) (repository.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org := repository.Organization{ID: uuid.New(), Name: name}
	f.orgs[org.ID] = org
	return org, nil
}

func (f *fakeOrgStore) Update(_ context.Context, id uuid.UUID, name string) (repository.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.orgs[id]
	if !ok {
		return repository.Organization{}, apperr.NotFound("organization not found")
	}
	o.Name = name
	f.orgs[id] = o
	return o, nil
}

func (f *fakeOrgStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.orgs[id]; !ok {
		return apperr.NotFound("organization not found")
	}
	for deptID, d := range f.depts {
		if d.OrganizationID == id {
			(*fakeRepo)(f).cascadeDept(deptID)
			delete(f.depts, deptID)
		}
	}
	delete(f.orgs, id)
	return nil
}

// ---------------------------------------------------------------------------

type fakeDeptStore fakeRepo

func (f *fakeDeptStore) ListAll(_ context.Context) ([]repository.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Department, 0, len(f.depts))
	for _, d := range f.depts {
		out = append(out, d)
	}
	return out, nil
}

func (f *fakeDeptStore) ListByOrg(_ context.Context, orgID uuid.UUID) ([]repository.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Department, 0)
	for _, d := range f.depts {
		if d.OrganizationID == orgID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDeptStore) GetByID(_ context.Context, id uuid.UUID) (repository.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.depts[id]
	if !ok {
		return repository.Department{}, apperr.NotFound("department not found")
	}
	return d, nil
}

func (f *fakeDeptStore) GetByIDInOrg(_ context.Context, id, orgID uuid.UUID) (repository.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.depts[id]
	if !ok || d.OrganizationID != orgID {
		return repository.Department{}, apperr.NotFound("department not found")
	}
	return d, nil
}

func (f *fakeDeptStore) ExistsByNameInOrg(_ context.Context, name string, orgID uuid.UUID) (bool, error) {
	return f.existsByName(name, orgID, uuid.Nil)
}

func (f *fakeDeptStore) ExistsByNameInOrgExcluding(_ context.Context, name string, orgID, excludedID uuid.UUID) (bool, error) {
	return f.existsByName(name, orgID, excludedID)
}

func (f *fakeDeptStore) existsByName(name string, orgID, excludedID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, d := range f.depts {
		if d.OrganizationID == orgID && d.Name == name && d.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeDeptStore) Create(_ context.Context, name string, orgID uuid.UUID) (repository.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[orgID]
	if !ok {
		return repository.Department{}, apperr.NotFound("organization not found")
	}
	dept := repository.Department{ID: uuid.New(), Name: name, OrganizationID: orgID, OrganizationName: org.Name}
	f.depts[dept.ID] = dept
	return dept, nil
}

func (f *fakeDeptStore) Update(_ context.Context, id uuid.UUID, name string, orgID uuid.UUID) (repository.Department, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.depts[id]
	if !ok {
		return repository.Department{}, apperr.NotFound("department not found")
	}
	org, ok := f.orgs[orgID]
	if !ok {
		return repository.Department{}, apperr.NotFound("organization not found")
	}
	d.Name = name
	d.OrganizationID = orgID
	d.OrganizationName = org.Name
	f.depts[id] = d
	return d, nil
}

func (f *fakeDeptStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.depts[id]; !ok {
		return apperr.NotFound("department not found")
	}
	(*fakeRepo)(f).cascadeDept(id)
	delete(f.depts, id)
	return nil
}

func (f *fakeDeptStore) DeleteInOrg(_ context.Context, id, orgID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.depts[id]
	if !ok || d.OrganizationID != orgID {
		return apperr.NotFound("department not found")
	}
	(*fakeRepo)(f).cascadeDept(id)
	delete(f.depts, id)
	return nil
}

// ---------------------------------------------------------------------------

type fakeTeamStore fakeRepo

func (f *fakeTeamStore) ListAll(_ context.Context) ([]repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Team, 0, len(f.teams))
	for _, t := range f.teams {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTeamStore) ListByOrg(_ context.Context, orgID uuid.UUID) ([]repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Team, 0)
	for _, t := range f.teams {
		if d, ok := f.depts[t.DepartmentID]; ok && d.OrganizationID == orgID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTeamStore) ListByDept(_ context.Context, deptID uuid.UUID) ([]repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]repository.Team, 0)
	for _, t := range f.teams {
		if t.DepartmentID == deptID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeTeamStore) GetByID(_ context.Context, id uuid.UUID) (repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return repository.Team{}, apperr.NotFound("team not found")
	}
	return t, nil
}

func (f *fakeTeamStore) GetByIDInOrg(_ context.Context, id, orgID uuid.UUID) (repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return repository.Team{}, apperr.NotFound("team not found")
	}
	if d, ok := f.depts[t.DepartmentID]; !ok || d.OrganizationID != orgID {
		return repository.Team{}, apperr.NotFound("team not found")
	}
	return t, nil
}

func (f *fakeTeamStore) ExistsByNameInDept(_ context.Context, name string, deptID uuid.UUID) (bool, error) {
	return f.existsByName(name, deptID, uuid.Nil)
}

func (f *fakeTeamStore) ExistsByNameInDeptExcluding(_ context.Context, name string, deptID, excludedID uuid.UUID) (bool, error) {
	return f.existsByName(name, deptID, excludedID)
}

func (f *fakeTeamStore) existsByName(name string, deptID, excludedID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, t := range f.teams {
		if t.DepartmentID == deptID && t.Name == name && t.ID != excludedID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTeamStore) Create(_ context.Context, name string, deptID uuid.UUID) (repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.depts[deptID]
	if !ok {
		return repository.Team{}, apperr.NotFound("department not found")
	}
	team := repository.Team{ID: uuid.New(), Name: name, DepartmentID: deptID, DepartmentName: d.Name}
	f.teams[team.ID] = team
	return team, nil
}

func (f *fakeTeamStore) Update(_ context.Context, id uuid.UUID, name string, deptID uuid.UUID) (repository.Team, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return repository.Team{}, apperr.NotFound("team not found")
	}
	d, ok := f.depts[deptID]
	if !ok {
		return repository.Team{}, apperr.NotFound("department not found")
	}
	t.Name = name
	t.DepartmentID = deptID
	t.DepartmentName = d.Name
	f.teams[id] = t
	return t, nil
}

func (f *fakeTeamStore) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.teams[id]; !ok {
		return apperr.NotFound("team not found")
	}
	(*fakeRepo)(f).dropMemberships(repository.HostTeam, id)
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamStore) DeleteInOrg(_ context.Context, id, orgID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.teams[id]
	if !ok {
		return apperr.NotFound("team not found")
	}
	if d, ok := f.depts[t.DepartmentID]; !ok || d.OrganizationID != orgID {
		return apperr.NotFound("team not found")
	}
	(*fakeRepo)(f).dropMemberships(repository.HostTeam, id)
	delete(f.teams, id)
	return nil
}

// ---------------------------------------------------------------------------

type fakeMembershipStore fakeRepo

func (f *fakeMembershipStore) AddMember(_ context.Context, ref repository.MembershipRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := membershipKey(ref)
	if f.members[key] {
		return apperr.BadRequest(fmt.Sprintf("%s is already assigned to this %s", ref.Member, ref.Host))
	}
	f.members[key] = true
	return nil
}

func (f *fakeMembershipStore) RemoveMember(_ context.Context, ref repository.MembershipRef) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := membershipKey(ref)
	if !f.members[key] {
		return apperr.BadRequest(fmt.Sprintf("%s is not assigned to this %s", ref.Member, ref.Host))
	}
	delete(f.members, key)
	return nil
}

func (f *fakeMembershipStore) HasMember(_ context.Context, ref repository.MembershipRef) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[membershipKey(ref)], nil
}

// ---------------------------------------------------------------------------

// fakeUserGateway simulates the user-service collaborator.
type fakeUserGateway struct {
	existsResult  remote.ProbeResult
	assignErr     error
	removeErr     error
	assignedCalls []remote.Assignment
	removedCalls  []remote.Assignment
}

func (f *fakeUserGateway) UserExists(_ context.Context, _ uuid.UUID) remote.ProbeResult {
	return f.existsResult
}

func (f *fakeUserGateway) AssignUser(_ context.Context, _ uuid.UUID, rec remote.Assignment) error {
	if f.assignErr != nil {
		return f.assignErr
	}
	f.assignedCalls = append(f.assignedCalls, rec)
	return nil
}

func (f *fakeUserGateway) RemoveUser(_ context.Context, _ uuid.UUID, rec remote.Assignment) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedCalls = append(f.removedCalls, rec)
	return nil
}

// fakeSurveyGateway simulates the survey-service collaborator.
type fakeSurveyGateway struct {
	existsResult remote.ProbeResult
}

func (f *fakeSurveyGateway) SurveyExists(_ context.Context, _ uuid.UUID) remote.ProbeResult {
	return f.existsResult
}

// fakeBus captures published events synchronously.
type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (f *fakeBus) Publish(_ context.Context, event events.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, event)
}

func (f *fakeBus) PublishSync(_ context.Context, event events.Event) error {
	f.Publish(context.Background(), event)
	return nil
}

func (f *fakeBus) Subscribe(_ string, _ events.Handler) {}

func (f *fakeBus) names() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.published))
	for _, e := range f.published {
		out = append(out, e.EventName())
	}
	return out
}

// ---------------------------------------------------------------------------

var errDownstream = errors.New("connection refused")

type fixture struct {
	svc     *Service
	repo    *fakeRepo
	users   *fakeUserGateway
	surveys *fakeSurveyGateway
	bus     *fakeBus
}

func newFixture() *fixture {
	repo := newFakeRepo()
	users := &fakeUserGateway{existsResult: remote.ProbePresent}
	surveys := &fakeSurveyGateway{existsResult: remote.ProbePresent}
	bus := &fakeBus{}
	svc := New(repo, users, surveys, bus, logger.New("test"))
	return &fixture{svc: svc, repo: repo, users: users, surveys: surveys, bus: bus}
}

func rootCaller() tenancy.Caller {
	return tenancy.Caller{Subject: "root@example.com", Authorities: []string{tenancy.RootAuthority}}
}

func tenantCaller(orgID uuid.UUID) tenancy.Caller {
	return tenancy.Caller{
		Subject:  "admin@example.com",
		TenantID: &orgID,
		Authorities: []string{
			tenancy.AuthorityRead, tenancy.AuthorityCreate,
			tenancy.AuthorityUpdate, tenancy.AuthorityDelete,
		},
	}
}
