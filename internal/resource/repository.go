package resource

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository interface {
	Create(ctx context.Context, res *Resource) error
	GetByID(ctx context.Context, id string) (*Resource, error)
	List(ctx context.Context, filter Filter) ([]*Resource, int, error)
	Update(ctx context.Context, res *Resource) error
	Delete(ctx context.Context, id string) error
	SetImage(ctx context.Context, id, fileID string) error
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var resourceColumns = []string{
	"r.id", "r.resource_type_id", "rt.name", "rt.slug", "r.name", "r.description", "r.location",
	"r.capacity", "r.amenities", "r.image_file_id", "r.is_active",
	"r.work_hours_start", "r.work_hours_end", "r.min_booking_minutes", "r.max_booking_minutes", "r.created_at",
}

func selectResources(extra ...string) squirrel.SelectBuilder {
	return psql.Select(append(append([]string{}, resourceColumns...), extra...)...).
		From("public.resources r").
		Join("public.resource_types rt ON rt.id = r.resource_type_id")
}

func scanResource(row pgx.Row, extra ...any) (*Resource, error) {
	var (
		res        Resource
		start, end pgtype.Time
	)
	dest := append([]any{
		&res.ID, &res.TypeID, &res.TypeName, &res.TypeSlug, &res.Name, &res.Description, &res.Location,
		&res.Capacity, &res.Amenities, &res.ImageFileID, &res.IsActive,
		&start, &end, &res.MinBookingMinutes, &res.MaxBookingMinutes, &res.CreatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	res.WorkStart = timeOfDayFromPg(start)
	res.WorkEnd = timeOfDayFromPg(end)
	if res.Amenities == nil {
		res.Amenities = []string{}
	}
	return &res, nil
}

func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ForeignKeyViolation {
		if pgErr.ConstraintName == "resources_resource_type_id_fkey" {
			return ErrInvalidResourceType
		}
		return ErrResourceInUse
	}
	return err
}

func (r *pgxRepository) Create(ctx context.Context, res *Resource) error {
	query, args, err := psql.Insert("public.resources").
		Columns(
			"resource_type_id", "name", "description", "location", "capacity", "amenities", "is_active",
			"work_hours_start", "work_hours_end", "min_booking_minutes", "max_booking_minutes",
		).
		Values(
			res.TypeID, res.Name, res.Description, res.Location, res.Capacity, res.Amenities, res.IsActive,
			res.WorkStart.pgTime(), res.WorkEnd.pgTime(), res.MinBookingMinutes, res.MaxBookingMinutes,
		).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create resource query failed: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&res.ID, &res.CreatedAt); err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("create resource failed: %w", err)
	}
	return nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Resource, error) {
	query, args, err := selectResources().Where(squirrel.Eq{"r.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get resource query failed: %w", err)
	}

	res, err := scanResource(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource failed: %w", err)
	}
	return res, nil
}

var resourceSortColumns = map[string]string{
	"name":       "r.name",
	"created_at": "r.created_at",
	"capacity":   "r.capacity",
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Resource, int, error) {
	q := selectResources("count(*) OVER() AS total_count")

	if !filter.IncludeInactive {
		q = q.Where(squirrel.Eq{"r.is_active": true, "rt.is_active": true})
	}
	if filter.TypeID != "" {
		q = q.Where(squirrel.Eq{"r.resource_type_id": filter.TypeID})
	}
	if filter.TypeSlug != "" {
		q = q.Where(squirrel.Eq{"rt.slug": filter.TypeSlug})
	}
	if filter.MinCapacity != nil {
		q = q.Where(squirrel.GtOrEq{"r.capacity": *filter.MinCapacity})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		q = q.Where(squirrel.Or{
			squirrel.ILike{"r.name": pattern},
			squirrel.ILike{"r.description": pattern},
			squirrel.ILike{"r.location": pattern},
		})
	}

	orderBy, ok := resourceSortColumns[filter.SortBy]
	if !ok {
		orderBy = "r.name"
	}
	orderDir := "ASC"
	if filter.SortOrder == "DESC" {
		orderDir = "DESC"
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	q = q.OrderBy(orderBy+" "+orderDir, "r.id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list resources query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list resources failed: %w", err)
	}
	defer rows.Close()

	var (
		result []*Resource
		total  int
	)
	for rows.Next() {
		res, err := scanResource(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan resource failed: %w", err)
		}
		result = append(result, res)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate resources failed: %w", err)
	}

	return result, total, nil
}

func (r *pgxRepository) Update(ctx context.Context, res *Resource) error {
	query, args, err := psql.Update("public.resources").
		SetMap(map[string]any{
			"resource_type_id":    res.TypeID,
			"name":                res.Name,
			"description":         res.Description,
			"location":            res.Location,
			"capacity":            res.Capacity,
			"amenities":           res.Amenities,
			"is_active":           res.IsActive,
			"work_hours_start":    res.WorkStart.pgTime(),
			"work_hours_end":      res.WorkEnd.pgTime(),
			"min_booking_minutes": res.MinBookingMinutes,
			"max_booking_minutes": res.MaxBookingMinutes,
		}).
		Where(squirrel.Eq{"id": res.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update resource query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM public.resources WHERE id = $1`, id)
	if err != nil {
		if mapped := mapWriteError(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("delete resource failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgxRepository) SetImage(ctx context.Context, id, fileID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE public.resources SET image_file_id = $1 WHERE id = $2`, fileID, id)
	if err != nil {
		return fmt.Errorf("set resource image failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
