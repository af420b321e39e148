package resourcetype

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, rt *ResourceType) error
	GetByID(ctx context.Context, id string) (*ResourceType, error)
	List(ctx context.Context, filter Filter) ([]*ResourceType, int, error)
	Update(ctx context.Context, rt *ResourceType) error
	Delete(ctx context.Context, id string) error
	CountResources(ctx context.Context, id string) (int, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return ErrSlugTaken
		case pgerrcode.ForeignKeyViolation:
			return ErrTypeInUse
		}
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, rt *ResourceType) error {
	query, args, err := psql.Insert("public.resource_types").
		Columns("name", "slug", "icon", "description", "is_active", "ordering").
		Values(rt.Name, rt.Slug, rt.Icon, rt.Description, rt.IsActive, rt.Ordering).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource type query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&rt.ID, &rt.CreatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create resource type failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*ResourceType, error) {
	const query = `
		SELECT id, name, slug, icon, description, is_active, ordering, created_at
		FROM public.resource_types
		WHERE id = $1
	`
	var rt ResourceType
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&rt.ID, &rt.Name, &rt.Slug, &rt.Icon, &rt.Description, &rt.IsActive, &rt.Ordering, &rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource type failed: %w", err)
	}
	return &rt, nil
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*ResourceType, int, error) {
	q := psql.Select(
		"id", "name", "slug", "icon", "description", "is_active", "ordering", "created_at",
		"count(*) OVER() AS total_count",
	).From("public.resource_types")

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"is_active": true})
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	q = q.OrderBy("ordering ASC", "name ASC").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resource types query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resource types failed: %w", err)
	}
	defer rows.Close()

	var (
		result []*ResourceType
		total  int
	)
	for rows.Next() {
		var rt ResourceType
		if err := rows.Scan(
			&rt.ID, &rt.Name, &rt.Slug, &rt.Icon, &rt.Description, &rt.IsActive, &rt.Ordering, &rt.CreatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan resource type failed: %w", err)
		}
		result = append(result, &rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate resource types failed: %w", err)
	}
	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, rt *ResourceType) error {
	query, args, err := psql.Update("public.resource_types").
		SetMap(map[string]any{
			"name":        rt.Name,
			"slug":        rt.Slug,
			"icon":        rt.Icon,
			"description": rt.Description,
			"is_active":   rt.IsActive,
			"ordering":    rt.Ordering,
		}).
		Where(squirrel.Eq{"id": rt.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update resource type query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update resource type failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM public.resource_types WHERE id = $1`, id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("delete resource type failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) CountResources(ctx context.Context, id string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM public.resources WHERE resource_type_id = $1`, id).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count resources of type failed: %w", err)
	}
	return n, nil
}
