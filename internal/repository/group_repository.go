package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// GroupRepository manages tenant groups keyed by (tenant id, tenant
// generation, group id). It does not check that the tenant exists; callers
// resolve the parent and pass its current generation as the owner.
type GroupRepository interface {
	Create(ctx context.Context, group *domain.TenantGroup) error
	Get(ctx context.Context, owner domain.GroupOwner, groupID string) (*domain.TenantGroup, error)
	List(ctx context.Context, owner domain.GroupOwner, marker string, limit int) ([]domain.TenantGroup, error)
	Update(ctx context.Context, owner domain.GroupOwner, groupID string, upd domain.GroupUpdate) (*domain.TenantGroup, error)
	Delete(ctx context.Context, owner domain.GroupOwner, groupID string) error
	// Owners lists every tenant incarnation referenced by at least one group.
	Owners(ctx context.Context) ([]domain.GroupOwner, error)
	DeleteByOwner(ctx context.Context, owner domain.GroupOwner) (int, error)
}

type groupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a Postgres-backed group repository.
func NewGroupRepository(pool *pgxpool.Pool) GroupRepository {
	return &groupRepository{pool: pool}
}

const groupColumns = `id, tenant_id, tenant_generation, description, created_at, updated_at`

func scanGroup(row pgx.Row) (*domain.TenantGroup, error) {
	var group domain.TenantGroup
	if err := row.Scan(
		&group.ID,
		&group.TenantID,
		&group.TenantGeneration,
		&group.Description,
		&group.CreatedAt,
		&group.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *groupRepository) Create(ctx context.Context, group *domain.TenantGroup) error {
	const query = `
        INSERT INTO tenant_groups (tenant_id, tenant_generation, id, description)
        VALUES ($1,$2,$3,$4)
        ON CONFLICT (tenant_id, tenant_generation, id) DO NOTHING
        RETURNING created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		group.TenantID,
		group.TenantGeneration,
		group.ID,
		group.Description,
	).Scan(&group.CreatedAt, &group.UpdatedAt)
	if err = pgError("create group", err); err == ErrNotFound {
		return ErrDuplicate
	}
	return err
}

func (r *groupRepository) Get(ctx context.Context, owner domain.GroupOwner, groupID string) (*domain.TenantGroup, error) {
	query := `SELECT ` + groupColumns + `
        FROM tenant_groups WHERE tenant_id=$1 AND tenant_generation=$2 AND id=$3`
	group, err := scanGroup(r.pool.QueryRow(ctx, query, owner.TenantID, owner.Generation, groupID))
	if err != nil {
		return nil, pgError("get group", err)
	}
	return group, nil
}

func (r *groupRepository) List(ctx context.Context, owner domain.GroupOwner, marker string, limit int) ([]domain.TenantGroup, error) {
	query := `SELECT ` + groupColumns + `
        FROM tenant_groups WHERE tenant_id=$1 AND tenant_generation=$2 AND id > $3
        ORDER BY id
        LIMIT $4`
	rows, err := r.pool.Query(ctx, query, owner.TenantID, owner.Generation, marker, limit)
	if err != nil {
		return nil, pgError("list groups", err)
	}
	defer rows.Close()

	result := make([]domain.TenantGroup, 0, limit)
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, pgError("scan group", err)
		}
		result = append(result, *group)
	}
	return result, pgError("list groups", rows.Err())
}

func (r *groupRepository) Update(ctx context.Context, owner domain.GroupOwner, groupID string, upd domain.GroupUpdate) (*domain.TenantGroup, error) {
	query := `
        UPDATE tenant_groups
        SET description=COALESCE($4, description), updated_at=NOW()
        WHERE tenant_id=$1 AND tenant_generation=$2 AND id=$3
        RETURNING ` + groupColumns
	group, err := scanGroup(r.pool.QueryRow(ctx, query, owner.TenantID, owner.Generation, groupID, upd.Description))
	if err != nil {
		return nil, pgError("update group", err)
	}
	return group, nil
}

func (r *groupRepository) Delete(ctx context.Context, owner domain.GroupOwner, groupID string) error {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM tenant_groups WHERE tenant_id=$1 AND tenant_generation=$2 AND id=$3`,
		owner.TenantID, owner.Generation, groupID)
	if err != nil {
		return pgError("delete group", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *groupRepository) Owners(ctx context.Context) ([]domain.GroupOwner, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT DISTINCT tenant_id, tenant_generation FROM tenant_groups
        ORDER BY tenant_id, tenant_generation`)
	if err != nil {
		return nil, pgError("list group owners", err)
	}
	defer rows.Close()

	var owners []domain.GroupOwner
	for rows.Next() {
		var owner domain.GroupOwner
		if err := rows.Scan(&owner.TenantID, &owner.Generation); err != nil {
			return nil, pgError("scan group owner", err)
		}
		owners = append(owners, owner)
	}
	return owners, pgError("list group owners", rows.Err())
}

func (r *groupRepository) DeleteByOwner(ctx context.Context, owner domain.GroupOwner) (int, error) {
	cmd, err := r.pool.Exec(ctx,
		`DELETE FROM tenant_groups WHERE tenant_id=$1 AND tenant_generation=$2`,
		owner.TenantID, owner.Generation)
	if err != nil {
		return 0, pgError("delete tenant groups", err)
	}
	return int(cmd.RowsAffected()), nil
}
