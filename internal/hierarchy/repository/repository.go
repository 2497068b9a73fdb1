package repository

import (
	"context"
	"errors"
	"fmt"

	"orgmanagement_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	organizationNotFoundMessage = "organization not found"
	departmentNotFoundMessage   = "department not found"
	teamNotFoundMessage         = "team not found"
)

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	orgs        *orgRepo
	departments *deptRepo
	teams       *teamRepo
	memberships *membershipRepo
}

// New creates a new hierarchy repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{
		orgs:        &orgRepo{pool: pool},
		departments: &deptRepo{pool: pool},
		teams:       &teamRepo{pool: pool},
		memberships: &membershipRepo{pool: pool},
	}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

func (r *Repo) Organizations() OrganizationStore { return r.orgs }
func (r *Repo) Departments() DepartmentStore     { return r.departments }
func (r *Repo) Teams() TeamStore                 { return r.teams }
func (r *Repo) Memberships() MembershipStore     { return r.memberships }

// isUniqueViolation reports whether err is a PostgreSQL unique-constraint
// violation. Concurrent writers that both pass the application-level
// uniqueness check land here, and the loser surfaces as a conflict.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}

// =============================================================================
// Organizations
// =============================================================================

type orgRepo struct {
	pool *pgxpool.Pool
}

func (r *orgRepo) GetAll(ctx context.Context) ([]Organization, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM organizations ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	orgs := make([]Organization, 0)
	for rows.Next() {
		var o Organization
		if err := rows.Scan(&o.ID, &o.Name); err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, o)
	}
	return orgs, rows.Err()
}

func (r *orgRepo) GetByID(ctx context.Context, id uuid.UUID) (Organization, error) {
	var o Organization
	err := r.pool.QueryRow(ctx,
		`SELECT id, name FROM organizations WHERE id = $1`, id,
	).Scan(&o.ID, &o.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, apperr.NotFound(organizationNotFoundMessage)
		}
		return Organization{}, fmt.Errorf("get organization by id: %w", err)
	}
	return o, nil
}

func (r *orgRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM organizations WHERE id = $1)`, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("organization exists: %w", err)
	}
	return exists, nil
}

func (r *orgRepo) Create(ctx context.Context, name string) (Organization, error) {
	var o Organization
	err := r.pool.QueryRow(ctx,
		`INSERT INTO organizations (name) VALUES ($1) RETURNING id, name`, name,
	).Scan(&o.ID, &o.Name)
	if err != nil {
		return Organization{}, fmt.Errorf("create organization: %w", err)
	}
	return o, nil
}

func (r *orgRepo) Update(ctx context.Context, id uuid.UUID, name string) (Organization, error) {
	var o Organization
	err := r.pool.QueryRow(ctx,
		`UPDATE organizations SET name = $2, updated_at = now() WHERE id = $1 RETURNING id, name`,
		id, name,
	).Scan(&o.ID, &o.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Organization{}, apperr.NotFound(organizationNotFoundMessage)
		}
		return Organization{}, fmt.Errorf("update organization: %w", err)
	}
	return o, nil
}

func (r *orgRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete organization: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(organizationNotFoundMessage)
	}
	return nil
}

// =============================================================================
// Departments
// =============================================================================

type deptRepo struct {
	pool *pgxpool.Pool
}

const departmentCols = `d.id, d.name, d.organization_id, o.name AS organization_name`
const departmentFrom = `FROM departments d JOIN organizations o ON o.id = d.organization_id`

func scanDepartments(rows pgx.Rows) ([]Department, error) {
	depts := make([]Department, 0)
	for rows.Next() {
		var d Department
		if err := rows.Scan(&d.ID, &d.Name, &d.OrganizationID, &d.OrganizationName); err != nil {
			return nil, fmt.Errorf("scan department: %w", err)
		}
		depts = append(depts, d)
	}
	return depts, rows.Err()
}

func (r *deptRepo) ListAll(ctx context.Context) ([]Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+departmentCols+` `+departmentFrom+` ORDER BY d.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list departments: %w", err)
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *deptRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Department, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+departmentCols+` `+departmentFrom+` WHERE d.organization_id = $1 ORDER BY d.name ASC`,
		orgID)
	if err != nil {
		return nil, fmt.Errorf("list departments by org: %w", err)
	}
	defer rows.Close()
	return scanDepartments(rows)
}

func (r *deptRepo) GetByID(ctx context.Context, id uuid.UUID) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`SELECT `+departmentCols+` `+departmentFrom+` WHERE d.id = $1`, id,
	).Scan(&d.ID, &d.Name, &d.OrganizationID, &d.OrganizationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, apperr.NotFound(departmentNotFoundMessage)
		}
		return Department{}, fmt.Errorf("get department by id: %w", err)
	}
	return d, nil
}

func (r *deptRepo) GetByIDInOrg(ctx context.Context, id, orgID uuid.UUID) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`SELECT `+departmentCols+` `+departmentFrom+` WHERE d.id = $1 AND d.organization_id = $2`,
		id, orgID,
	).Scan(&d.ID, &d.Name, &d.OrganizationID, &d.OrganizationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, apperr.NotFound(departmentNotFoundMessage)
		}
		return Department{}, fmt.Errorf("get department in org: %w", err)
	}
	return d, nil
}

func (r *deptRepo) ExistsByNameInOrg(ctx context.Context, name string, orgID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE name = $1 AND organization_id = $2)`,
		name, orgID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("department name exists: %w", err)
	}
	return exists, nil
}

func (r *deptRepo) ExistsByNameInOrgExcluding(ctx context.Context, name string, orgID, excludedID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM departments WHERE name = $1 AND organization_id = $2 AND id <> $3)`,
		name, orgID, excludedID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("department name exists excluding: %w", err)
	}
	return exists, nil
}

func (r *deptRepo) Create(ctx context.Context, name string, orgID uuid.UUID) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`INSERT INTO departments (name, organization_id) VALUES ($1, $2)
		 RETURNING id, name, organization_id,
		   (SELECT name FROM organizations WHERE id = organization_id)`,
		name, orgID,
	).Scan(&d.ID, &d.Name, &d.OrganizationID, &d.OrganizationName)
	if err != nil {
		if isUniqueViolation(err) {
			return Department{}, apperr.BadRequest(
				fmt.Sprintf("a department with the name '%s' already exists in this organization", name))
		}
		return Department{}, fmt.Errorf("create department: %w", err)
	}
	return d, nil
}

func (r *deptRepo) Update(ctx context.Context, id uuid.UUID, name string, orgID uuid.UUID) (Department, error) {
	var d Department
	err := r.pool.QueryRow(ctx,
		`UPDATE departments SET name = $2, organization_id = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, organization_id,
		   (SELECT name FROM organizations WHERE id = organization_id)`,
		id, name, orgID,
	).Scan(&d.ID, &d.Name, &d.OrganizationID, &d.OrganizationName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Department{}, apperr.NotFound(departmentNotFoundMessage)
		}
		if isUniqueViolation(err) {
			return Department{}, apperr.BadRequest(
				fmt.Sprintf("a department with the name '%s' already exists in this organization", name))
		}
		return Department{}, fmt.Errorf("update department: %w", err)
	}
	return d, nil
}

func (r *deptRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM departments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete department: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(departmentNotFoundMessage)
	}
	return nil
}

func (r *deptRepo) DeleteInOrg(ctx context.Context, id, orgID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM departments WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return fmt.Errorf("delete department in org: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(departmentNotFoundMessage)
	}
	return nil
}

// =============================================================================
// Teams
// =============================================================================

type teamRepo struct {
	pool *pgxpool.Pool
}

const teamCols = `t.id, t.name, t.department_id, d.name AS department_name`
const teamFrom = `FROM teams t JOIN departments d ON d.id = t.department_id`

func scanTeams(rows pgx.Rows) ([]Team, error) {
	teams := make([]Team, 0)
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.Name, &t.DepartmentID, &t.DepartmentName); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

func (r *teamRepo) ListAll(ctx context.Context) ([]Team, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+teamCols+` `+teamFrom+` ORDER BY t.name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepo) ListByOrg(ctx context.Context, orgID uuid.UUID) ([]Team, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+teamCols+` `+teamFrom+` WHERE d.organization_id = $1 ORDER BY t.name ASC`,
		orgID)
	if err != nil {
		return nil, fmt.Errorf("list teams by org: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepo) ListByDept(ctx context.Context, deptID uuid.UUID) ([]Team, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+teamCols+` `+teamFrom+` WHERE t.department_id = $1 ORDER BY t.name ASC`,
		deptID)
	if err != nil {
		return nil, fmt.Errorf("list teams by department: %w", err)
	}
	defer rows.Close()
	return scanTeams(rows)
}

func (r *teamRepo) GetByID(ctx context.Context, id uuid.UUID) (Team, error) {
	var t Team
	err := r.pool.QueryRow(ctx,
		`SELECT `+teamCols+` `+teamFrom+` WHERE t.id = $1`, id,
	).Scan(&t.ID, &t.Name, &t.DepartmentID, &t.DepartmentName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, apperr.NotFound(teamNotFoundMessage)
		}
		return Team{}, fmt.Errorf("get team by id: %w", err)
	}
	return t, nil
}

func (r *teamRepo) GetByIDInOrg(ctx context.Context, id, orgID uuid.UUID) (Team, error) {
	var t Team
	err := r.pool.QueryRow(ctx,
		`SELECT `+teamCols+` `+teamFrom+` WHERE t.id = $1 AND d.organization_id = $2`,
		id, orgID,
	).Scan(&t.ID, &t.Name, &t.DepartmentID, &t.DepartmentName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, apperr.NotFound(teamNotFoundMessage)
		}
		return Team{}, fmt.Errorf("get team in org: %w", err)
	}
	return t, nil
}

func (r *teamRepo) ExistsByNameInDept(ctx context.Context, name string, deptID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM teams WHERE name = $1 AND department_id = $2)`,
		name, deptID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("team name exists: %w", err)
	}
	return exists, nil
}

func (r *teamRepo) ExistsByNameInDeptExcluding(ctx context.Context, name string, deptID, excludedID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM teams WHERE name = $1 AND department_id = $2 AND id <> $3)`,
		name, deptID, excludedID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("team name exists excluding: %w", err)
	}
	return exists, nil
}

func (r *teamRepo) Create(ctx context.Context, name string, deptID uuid.UUID) (Team, error) {
	var t Team
	err := r.pool.QueryRow(ctx,
		`INSERT INTO teams (name, department_id) VALUES ($1, $2)
		 RETURNING id, name, department_id,
		   (SELECT name FROM departments WHERE id = department_id)`,
		name, deptID,
	).Scan(&t.ID, &t.Name, &t.DepartmentID, &t.DepartmentName)
	if err != nil {
		if isUniqueViolation(err) {
			return Team{}, apperr.BadRequest(
				fmt.Sprintf("a team with the name '%s' already exists in this department", name))
		}
		return Team{}, fmt.Errorf("create team: %w", err)
	}
	return t, nil
}

func (r *teamRepo) Update(ctx context.Context, id uuid.UUID, name string, deptID uuid.UUID) (Team, error) {
	var t Team
	err := r.pool.QueryRow(ctx,
		`UPDATE teams SET name = $2, department_id = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING id, name, department_id,
		   (SELECT name FROM departments WHERE id = department_id)`,
		id, name, deptID,
	).Scan(&t.ID, &t.Name, &t.DepartmentID, &t.DepartmentName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Team{}, apperr.NotFound(teamNotFoundMessage)
		}
		if isUniqueViolation(err) {
			return Team{}, apperr.BadRequest(
				fmt.Sprintf("a team with the name '%s' already exists in this department", name))
		}
		return Team{}, fmt.Errorf("update team: %w", err)
	}
	return t, nil
}

func (r *teamRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM teams WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(teamNotFoundMessage)
	}
	return nil
}

func (r *teamRepo) DeleteInOrg(ctx context.Context, id, orgID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM teams t USING departments d
		 WHERE t.id = $1 AND t.department_id = d.id AND d.organization_id = $2`,
		id, orgID)
	if err != nil {
		return fmt.Errorf("delete team in org: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(teamNotFoundMessage)
	}
	return nil
}
