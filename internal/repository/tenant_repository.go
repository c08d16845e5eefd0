package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/identity-service/internal/domain"
)

// TenantRepository manages tenant persistence. Create, Update and Delete on
// one id are linearizable. Create assigns a fresh Generation.
type TenantRepository interface {
	Create(ctx context.Context, tenant *domain.Tenant) error
	GetByID(ctx context.Context, id string) (*domain.Tenant, error)
	// List returns up to limit tenants with id > marker, ordered by id.
	List(ctx context.Context, marker string, limit int) ([]domain.Tenant, error)
	Update(ctx context.Context, id string, upd domain.TenantUpdate) (*domain.Tenant, error)
	Delete(ctx context.Context, id string) error
}

type tenantRepository struct {
	pool *pgxpool.Pool
}

// NewTenantRepository builds the repository.
func NewTenantRepository(pool *pgxpool.Pool) TenantRepository {
	return &tenantRepository{pool: pool}
}

func (r *tenantRepository) Create(ctx context.Context, tenant *domain.Tenant) error {
	const query = `
        INSERT INTO tenants (id, description, enabled)
        VALUES ($1,$2,$3)
        ON CONFLICT (id) DO NOTHING
        RETURNING generation, created_at, updated_at`
	err := r.pool.QueryRow(ctx, query,
		tenant.ID,
		tenant.Description,
		tenant.Enabled,
	).Scan(&tenant.Generation, &tenant.CreatedAt, &tenant.UpdatedAt)
	if err = pgError("create tenant", err); err == ErrNotFound {
		// ON CONFLICT DO NOTHING returns no row.
		return ErrDuplicate
	}
	return err
}

const tenantColumns = `id, generation, description, enabled, created_at, updated_at`

func scanTenant(row pgx.Row) (*domain.Tenant, error) {
	var tenant domain.Tenant
	if err := row.Scan(
		&tenant.ID,
		&tenant.Generation,
		&tenant.Description,
		&tenant.Enabled,
		&tenant.CreatedAt,
		&tenant.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (r *tenantRepository) GetByID(ctx context.Context, id string) (*domain.Tenant, error) {
	tenant, err := scanTenant(r.pool.QueryRow(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id=$1`, id))
	if err != nil {
		return nil, pgError("get tenant", err)
	}
	return tenant, nil
}

func (r *tenantRepository) List(ctx context.Context, marker string, limit int) ([]domain.Tenant, error) {
	query := `SELECT ` + tenantColumns + `
        FROM tenants WHERE id > $1
        ORDER BY id
        LIMIT $2`
	rows, err := r.pool.Query(ctx, query, marker, limit)
	if err != nil {
		return nil, pgError("list tenants", err)
	}
	defer rows.Close()

	result := make([]domain.Tenant, 0, limit)
	for rows.Next() {
		tenant, err := scanTenant(rows)
		if err != nil {
			return nil, pgError("scan tenant", err)
		}
		result = append(result, *tenant)
	}
	return result, pgError("list tenants", rows.Err())
}

func (r *tenantRepository) Update(ctx context.Context, id string, upd domain.TenantUpdate) (*domain.Tenant, error) {
	query := `
        UPDATE tenants
        SET description=COALESCE($2, description), enabled=COALESCE($3, enabled), updated_at=NOW()
        WHERE id=$1
        RETURNING ` + tenantColumns
	tenant, err := scanTenant(r.pool.QueryRow(ctx, query, id, upd.Description, upd.Enabled))
	if err != nil {
		return nil, pgError("update tenant", err)
	}
	return tenant, nil
}

func (r *tenantRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tenants WHERE id=$1`, id)
	if err != nil {
		return pgError("delete tenant", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
