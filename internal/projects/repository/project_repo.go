package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/appforge-io/appforge-backend/internal/projects/domain"
)

// ProjectRepo persists projects and their sandbox references.
type ProjectRepo struct {
	db *pgxpool.Pool
}

func NewProjectRepo(db *pgxpool.Pool) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) Create(ctx context.Context, name string) (*domain.Project, error) {
	if name == "" {
		return nil, fmt.Errorf("name required")
	}

	id, err := domain.NewID("proj")
	if err != nil {
		return nil, err
	}

	const q = `
insert into projects (id, name)
values ($1, $2)
returning id, name, created_at, updated_at;
`
	var p domain.Project
	if err := r.db.QueryRow(ctx, q, id, name).
		Scan(&p.ID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (*domain.Project, error) {
	const q = `
select id, name, sandbox_id, sandbox_expires_at, created_at, updated_at
from projects
where id = $1;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, id).
		Scan(&p.ID, &p.Name, &p.SandboxID, &p.SandboxExpiresAt, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// SandboxRef reads the stored sandbox identifier and expiry. Both are nil
// when the project has no recorded sandbox.
func (r *ProjectRepo) SandboxRef(ctx context.Context, projectID string) (*string, *time.Time, error) {
	const q = `
select sandbox_id, sandbox_expires_at
from projects
where id = $1;
`
	var (
		id     *string
		expiry *time.Time
	)
	err := r.db.QueryRow(ctx, q, projectID).Scan(&id, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	return id, expiry, nil
}

// SaveSandboxRef records a freshly created sandbox, overwriting any prior
// reference.
func (r *ProjectRepo) SaveSandboxRef(ctx context.Context, projectID, sandboxID string, expiresAt time.Time) error {
	const q = `
update projects
set sandbox_id = $2, sandbox_expires_at = $3, updated_at = now()
where id = $1;
`
	tag, err := r.db.Exec(ctx, q, projectID, sandboxID, expiresAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ClearSandboxRef forgets a presumed-dead sandbox. Clearing an already-null
// reference is a no-op, so repeated cleanup passes are safe.
func (r *ProjectRepo) ClearSandboxRef(ctx context.Context, projectID string) error {
	const q = `
update projects
set sandbox_id = null, sandbox_expires_at = null, updated_at = now()
where id = $1;
`
	_, err := r.db.Exec(ctx, q, projectID)
	return err
}

// ExpiredSandboxRefs lists projects still holding a sandbox reference whose
// expiry is in the past.
func (r *ProjectRepo) ExpiredSandboxRefs(ctx context.Context, now time.Time) ([]string, error) {
	const q = `
select id
from projects
where sandbox_id is not null
  and sandbox_expires_at < $1;
`
	rows, err := r.db.Query(ctx, q, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
