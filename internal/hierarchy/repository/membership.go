package repository

import (
	"context"
	"errors"
	"fmt"

	"orgmanagement_backend/platform/apperr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// membershipRepo persists the four membership families through one code
// path, keyed by (host kind, member kind).
type membershipRepo struct {
	pool *pgxpool.Pool
}

type membershipTable struct {
	table     string
	hostCol   string
	memberCol string
}

func tableFor(host HostKind, member MemberKind) (membershipTable, error) {
	switch {
	case host == HostDepartment && member == MemberUser:
		return membershipTable{"department_users", "department_id", "user_id"}, nil
	case host == HostDepartment && member == MemberSurvey:
		return membershipTable{"department_surveys", "department_id", "survey_id"}, nil
	case host == HostTeam && member == MemberUser:
		return membershipTable{"team_users", "team_id", "user_id"}, nil
	case host == HostTeam && member == MemberSurvey:
		return membershipTable{"team_surveys", "team_id", "survey_id"}, nil
	default:
		return membershipTable{}, fmt.Errorf("unknown membership family %s/%s", host, member)
	}
}

// lockHost re-reads the host row under FOR UPDATE, scoped to the
// organization, so the set check and the write observe a consistent view.
func lockHost(ctx context.Context, tx pgx.Tx, ref MembershipRef) error {
	var query string
	switch ref.Host {
	case HostDepartment:
		query = `SELECT id FROM departments WHERE id = $1 AND organization_id = $2 FOR UPDATE`
	case HostTeam:
		query = `SELECT t.id FROM teams t JOIN departments d ON d.id = t.department_id
		         WHERE t.id = $1 AND d.organization_id = $2 FOR UPDATE OF t`
	default:
		return fmt.Errorf("unknown host kind %s", ref.Host)
	}

	var id string
	if err := tx.QueryRow(ctx, query, ref.HostID, ref.OrganizationID).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound(fmt.Sprintf("%s not found", ref.Host))
		}
		return fmt.Errorf("lock %s: %w", ref.Host, err)
	}
	return nil
}

// AddMember inserts the membership row inside a single transaction.
// Fails with BadRequest when the member is already present: the pair is a
// set, and the service reports idempotence violations rather than silently
// succeeding. A concurrent winner surfaces the same way via the primary key.
func (r *membershipRepo) AddMember(ctx context.Context, ref MembershipRef) error {
	mt, err := tableFor(ref.Host, ref.Member)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin add member: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockHost(ctx, tx, ref); err != nil {
		return err
	}

	var present bool
	err = tx.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
			mt.table, mt.hostCol, mt.memberCol),
		ref.HostID, ref.MemberID,
	).Scan(&present)
	if err != nil {
		return fmt.Errorf("check membership: %w", err)
	}
	if present {
		return apperr.BadRequest(fmt.Sprintf("%s is already assigned to this %s", ref.Member, ref.Host))
	}

	_, err = tx.Exec(ctx,
		fmt.Sprintf(`INSERT INTO %s (%s, %s) VALUES ($1, $2)`, mt.table, mt.hostCol, mt.memberCol),
		ref.HostID, ref.MemberID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperr.BadRequest(fmt.Sprintf("%s is already assigned to this %s", ref.Member, ref.Host))
		}
		return fmt.Errorf("insert membership: %w", err)
	}

	return tx.Commit(ctx)
}

// RemoveMember deletes the membership row inside a single transaction.
// Fails with BadRequest when the member is not present.
func (r *membershipRepo) RemoveMember(ctx context.Context, ref MembershipRef) error {
	mt, err := tableFor(ref.Host, ref.Member)
	if err != nil {
		return err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin remove member: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := lockHost(ctx, tx, ref); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, mt.table, mt.hostCol, mt.memberCol),
		ref.HostID, ref.MemberID,
	)
	if err != nil {
		return fmt.Errorf("delete membership: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.BadRequest(fmt.Sprintf("%s is not assigned to this %s", ref.Member, ref.Host))
	}

	return tx.Commit(ctx)
}

// HasMember reports membership without mutating; used by the compensation
// path and by tests.
func (r *membershipRepo) HasMember(ctx context.Context, ref MembershipRef) (bool, error) {
	mt, err := tableFor(ref.Host, ref.Member)
	if err != nil {
		return false, err
	}

	var present bool
	err = r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE %s = $1 AND %s = $2)`,
			mt.table, mt.hostCol, mt.memberCol),
		ref.HostID, ref.MemberID,
	).Scan(&present)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return present, nil
}
