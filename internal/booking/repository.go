package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ConflictChecker answers whether a confirmed booking other than excludeID
// overlaps iv on the resource.
type ConflictChecker interface {
	HasConflict(ctx context.Context, resourceID string, iv Interval, excludeID string) (bool, error)
}

// TxRepository is the write side, only reachable while the resource lock is held.
type TxRepository interface {
	ConflictChecker
	// GetByID locks the booking row until the transaction ends.
	GetByID(ctx context.Context, id string) (*Booking, error)
	Create(ctx context.Context, b *Booking) error
	UpdateEndsAt(ctx context.Context, id string, endsAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status Status) error
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter Filter) ([]*Booking, int, error)
	// ListAll ignores pagination and orders by starts_at.
	ListAll(ctx context.Context, filter Filter) ([]*Booking, error)
	Count(ctx context.Context, filter Filter) (int, error)
	CountByResourceType(ctx context.Context, from, to time.Time) ([]TypeCount, error)
	// CompletePast marks confirmed bookings that ended before now as completed.
	CompletePast(ctx context.Context, now time.Time) (int64, error)

	// WithResourceLock runs fn in a transaction holding the resource's advisory lock.
	// The transaction commits only if fn returns nil.
	WithResourceLock(ctx context.Context, resourceID string, fn func(tx TxRepository) error) error
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type pgxRepository struct {
	pool *pgxpool.Pool
}

func NewPgxRepository(pool *pgxpool.Pool) Repository {
	return &pgxRepository{pool: pool}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

var bookingColumns = []string{
	"b.id", "b.resource_id", "r.name", "r.resource_type_id", "b.user_id", "COALESCE(u.display_name, u.email)",
	"b.title", "b.description", "b.starts_at", "b.ends_at", "b.status",
	"b.recurrence_rule", "b.parent_booking_id", "b.created_at", "b.updated_at",
}

var bookingSortColumns = map[string]string{
	"starts_at":  "b.starts_at",
	"ends_at":    "b.ends_at",
	"created_at": "b.created_at",
	"title":      "b.title",
}

func selectBookings(extra ...string) squirrel.SelectBuilder {
	return psql.Select(append(append([]string{}, bookingColumns...), extra...)...).
		From("public.bookings b").
		Join("public.resources r ON r.id = b.resource_id").
		Join("public.users u ON u.id = b.user_id")
}

func scanBooking(row pgx.Row, extra ...any) (*Booking, error) {
	var b Booking
	dest := append([]any{
		&b.ID, &b.ResourceID, &b.ResourceName, &b.ResourceTypeID, &b.UserID, &b.UserName,
		&b.Title, &b.Description, &b.StartsAt, &b.EndsAt, &b.Status,
		&b.RecurrenceRule, &b.ParentBookingID, &b.CreatedAt, &b.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &b, nil
}

func applyFilter(q squirrel.SelectBuilder, filter Filter) squirrel.SelectBuilder {
	if filter.UserID != "" {
		q = q.Where(squirrel.Eq{"b.user_id": filter.UserID})
	}
	if filter.ResourceID != "" {
		q = q.Where(squirrel.Eq{"b.resource_id": filter.ResourceID})
	}
	if filter.ResourceTypeID != "" {
		q = q.Where(squirrel.Eq{"r.resource_type_id": filter.ResourceTypeID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		q = q.Where(squirrel.Eq{"b.status": statuses})
	}
	if filter.StartsFrom != nil {
		q = q.Where(squirrel.GtOrEq{"b.starts_at": *filter.StartsFrom})
	}
	if filter.StartsBefore != nil {
		q = q.Where(squirrel.Lt{"b.starts_at": *filter.StartsBefore})
	}
	if filter.EndsAfter != nil {
		q = q.Where(squirrel.Gt{"b.ends_at": *filter.EndsAfter})
	}
	return q
}

func getByID(ctx context.Context, db querier, id string, forUpdate bool) (*Booking, error) {
	q := selectBookings().Where(squirrel.Eq{"b.id": id})
	if forUpdate {
		q = q.Suffix("FOR UPDATE OF b")
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build get booking query failed: %w", err)
	}

	b, err := scanBooking(db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get booking failed: %w", err)
	}
	return b, nil
}

func (r *pgxRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getByID(ctx, r.pool, id, false)
}

func (r *pgxRepository) List(ctx context.Context, filter Filter) ([]*Booking, int, error) {
	q := applyFilter(selectBookings("count(*) OVER() AS total_count"), filter)

	orderBy, ok := bookingSortColumns[filter.SortBy]
	if !ok {
		orderBy = "b.starts_at"
	}
	orderDir := "DESC"
	if filter.SortOrder == "ASC" {
		orderDir = "ASC"
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}
	q = q.OrderBy(orderBy+" "+orderDir, "b.id").
		Limit(uint64(filter.PageSize)).
		Offset(uint64((filter.Page - 1) * filter.PageSize))

	query, args, err := q.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build list bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list bookings failed: %w", err)
	}
	defer rows.Close()

	var (
		bookings []*Booking
		total    int
	)
	for rows.Next() {
		b, err := scanBooking(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate bookings failed: %w", err)
	}

	return bookings, total, nil
}

func (r *pgxRepository) ListAll(ctx context.Context, filter Filter) ([]*Booking, error) {
	query, args, err := applyFilter(selectBookings(), filter).
		OrderBy("b.starts_at ASC", "b.id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list all bookings query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list all bookings failed: %w", err)
	}
	defer rows.Close()

	var bookings []*Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking failed: %w", err)
		}
		bookings = append(bookings, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookings failed: %w", err)
	}
	return bookings, nil
}

func (r *pgxRepository) Count(ctx context.Context, filter Filter) (int, error) {
	q := psql.Select("count(*)").
		From("public.bookings b").
		Join("public.resources r ON r.id = b.resource_id")
	query, args, err := applyFilter(q, filter).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count bookings query failed: %w", err)
	}

	var n int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count bookings failed: %w", err)
	}
	return n, nil
}

func (r *pgxRepository) CountByResourceType(ctx context.Context, from, to time.Time) ([]TypeCount, error) {
	// Every active type is listed, with zero when nothing was booked.
	query, args, err := psql.Select("rt.id", "rt.name", "count(b.id)").
		From("public.resource_types rt").
		LeftJoin("public.resources r ON r.resource_type_id = rt.id").
		LeftJoin("public.bookings b ON b.resource_id = r.id AND b.status = ? AND b.starts_at >= ? AND b.starts_at < ?",
			string(StatusConfirmed), from, to).
		Where(squirrel.Eq{"rt.is_active": true}).
		GroupBy("rt.id", "rt.name", "rt.ordering").
		OrderBy("rt.ordering", "rt.name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count by type query failed: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("count bookings by type failed: %w", err)
	}
	defer rows.Close()

	counts := []TypeCount{}
	for rows.Next() {
		var tc TypeCount
		if err := rows.Scan(&tc.ResourceTypeID, &tc.ResourceTypeName, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan type count failed: %w", err)
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

func (r *pgxRepository) CompletePast(ctx context.Context, now time.Time) (int64, error) {
	query, args, err := psql.Update("public.bookings").
		Set("status", string(StatusCompleted)).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"status": string(StatusConfirmed)}).
		Where(squirrel.Lt{"ends_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build complete past bookings query failed: %w", err)
	}

	ct, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("complete past bookings failed: %w", err)
	}
	return ct.RowsAffected(), nil
}

func (r *pgxRepository) WithResourceLock(ctx context.Context, resourceID string, fn func(tx TxRepository) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin booking transaction failed: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// Released automatically on commit or rollback.
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1::text, 0))`, resourceID); err != nil {
		return fmt.Errorf("acquire resource lock failed: %w", err)
	}

	if err := fn(&txRepository{tx: tx}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return mapWriteError(fmt.Errorf("commit booking transaction failed: %w", err))
	}
	return nil
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetByID(ctx context.Context, id string) (*Booking, error) {
	return getByID(ctx, r.tx, id, true)
}

func (r *txRepository) HasConflict(ctx context.Context, resourceID string, iv Interval, excludeID string) (bool, error) {
	sub := psql.Select("1").
		From("public.bookings").
		Where(squirrel.Eq{"resource_id": resourceID}).
		Where(squirrel.Eq{"status": string(StatusConfirmed)}).
		Where(squirrel.Lt{"starts_at": iv.End}).
		Where(squirrel.Gt{"ends_at": iv.Start})
	if excludeID != "" {
		sub = sub.Where(squirrel.NotEq{"id": excludeID})
	}

	query, args, err := sub.Prefix("SELECT EXISTS (").Suffix(")").ToSql()
	if err != nil {
		return false, fmt.Errorf("build conflict query failed: %w", err)
	}

	var exists bool
	if err := r.tx.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("check booking conflict failed: %w", err)
	}
	return exists, nil
}

func (r *txRepository) Create(ctx context.Context, b *Booking) error {
	query, args, err := psql.Insert("public.bookings").
		Columns("resource_id", "user_id", "title", "description", "starts_at", "ends_at", "status",
			"recurrence_rule", "parent_booking_id").
		Values(b.ResourceID, b.UserID, b.Title, b.Description, b.StartsAt, b.EndsAt, string(b.Status),
			b.RecurrenceRule, b.ParentBookingID).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create booking query failed: %w", err)
	}

	if err := r.tx.QueryRow(ctx, query, args...).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return mapWriteError(fmt.Errorf("create booking failed: %w", err))
	}
	return nil
}

func (r *txRepository) UpdateEndsAt(ctx context.Context, id string, endsAt time.Time) error {
	return r.update(ctx, id, "ends_at", endsAt)
}

func (r *txRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	return r.update(ctx, id, "status", string(status))
}

func (r *txRepository) update(ctx context.Context, id, column string, value any) error {
	query, args, err := psql.Update("public.bookings").
		Set(column, value).
		Set("updated_at", squirrel.Expr("now()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update booking query failed: %w", err)
	}

	ct, err := r.tx.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteError(fmt.Errorf("update booking %s failed: %w", column, err))
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// mapWriteError turns the storage-level overlap backstop into ErrSlotTaken.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.ExclusionViolation:
			return ErrSlotTaken
		case pgerrcode.ForeignKeyViolation:
			if pgErr.ConstraintName == "bookings_resource_id_fkey" {
				return ErrResourceNotFound
			}
		}
	}
	return err
}
