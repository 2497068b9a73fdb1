package repository

import (
	"context"

	"github.com/google/uuid"
)

// Organization is the root of a tenant subtree.
type Organization struct {
	ID   uuid.UUID `db:"id"`
	Name string    `db:"name"`
}

// Department belongs to exactly one organization. OrganizationName is
// denormalized for the embedded summaries in responses.
type Department struct {
	ID               uuid.UUID `db:"id"`
	Name             string    `db:"name"`
	OrganizationID   uuid.UUID `db:"organization_id"`
	OrganizationName string    `db:"organization_name"`
}

// Team belongs to exactly one department, and transitively to one
// organization.
type Team struct {
	ID             uuid.UUID `db:"id"`
	Name           string    `db:"name"`
	DepartmentID   uuid.UUID `db:"department_id"`
	DepartmentName string    `db:"department_name"`
}

// HostKind identifies the owner of a membership set.
type HostKind string

// MemberKind identifies what resides in a membership set.
type MemberKind string

const (
	HostDepartment HostKind = "department"
	HostTeam       HostKind = "team"

	MemberUser   MemberKind = "user"
	MemberSurvey MemberKind = "survey"
)

// MembershipRef names a single (host, member) pair inside a tenant.
// The organization ID scopes every lookup so non-tenant rows never leak
// through the error path.
type MembershipRef struct {
	Host           HostKind
	Member         MemberKind
	HostID         uuid.UUID
	MemberID       uuid.UUID
	OrganizationID uuid.UUID
}

// OrganizationStore persists organizations.
type OrganizationStore interface {
	GetAll(ctx context.Context) ([]Organization, error)
	GetByID(ctx context.Context, id uuid.UUID) (Organization, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Create(ctx context.Context, name string) (Organization, error)
	Update(ctx context.Context, id uuid.UUID, name string) (Organization, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// DepartmentStore persists departments with tenant-scoped lookups.
// The unscoped variants are used only on root-admin paths.
type DepartmentStore interface {
	ListAll(ctx context.Context) ([]Department, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Department, error)
	GetByID(ctx context.Context, id uuid.UUID) (Department, error)
	GetByIDInOrg(ctx context.Context, id, orgID uuid.UUID) (Department, error)
	ExistsByNameInOrg(ctx context.Context, name string, orgID uuid.UUID) (bool, error)
	ExistsByNameInOrgExcluding(ctx context.Context, name string, orgID, excludedID uuid.UUID) (bool, error)
	Create(ctx context.Context, name string, orgID uuid.UUID) (Department, error)
	Update(ctx context.Context, id uuid.UUID, name string, orgID uuid.UUID) (Department, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteInOrg(ctx context.Context, id, orgID uuid.UUID) error
}

// TeamStore persists teams with tenant-scoped lookups through the
// department join.
type TeamStore interface {
	ListAll(ctx context.Context) ([]Team, error)
	ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Team, error)
	ListByDept(ctx context.Context, deptID uuid.UUID) ([]Team, error)
	GetByID(ctx context.Context, id uuid.UUID) (Team, error)
	GetByIDInOrg(ctx context.Context, id, orgID uuid.UUID) (Team, error)
	ExistsByNameInDept(ctx context.Context, name string, deptID uuid.UUID) (bool, error)
	ExistsByNameInDeptExcluding(ctx context.Context, name string, deptID, excludedID uuid.UUID) (bool, error)
	Create(ctx context.Context, name string, deptID uuid.UUID) (Team, error)
	Update(ctx context.Context, id uuid.UUID, name string, deptID uuid.UUID) (Team, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteInOrg(ctx context.Context, id, orgID uuid.UUID) error
}

// MembershipStore mutates membership sets. Each mutation is a single
// transaction: the host row is re-read under lock, the set invariant is
// checked, and the membership row is written.
type MembershipStore interface {
	AddMember(ctx context.Context, ref MembershipRef) error
	RemoveMember(ctx context.Context, ref MembershipRef) error
	HasMember(ctx context.Context, ref MembershipRef) (bool, error)
}

// Repository combines all hierarchy store operations.
type Repository interface {
	Organizations() OrganizationStore
	Departments() DepartmentStore
	Teams() TeamStore
	Memberships() MembershipStore
}
