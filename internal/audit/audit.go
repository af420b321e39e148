package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Entry is one state change worth keeping a trail of.
type Entry struct {
	Action     string
	EntityType string
	EntityID   string
	ActorID    string
	Details    map[string]any
	RecordedAt time.Time
}

// Recorder is fire-and-forget: failures are logged and never reach the caller.
type Recorder interface {
	Record(ctx context.Context, e Entry)
}

type pgxRecorder struct {
	pool    *pgxpool.Pool
	timeout time.Duration
}

// NewPgxRecorder writes entries to audit_log in the background.
func NewPgxRecorder(pool *pgxpool.Pool) Recorder {
	return &pgxRecorder{pool: pool, timeout: 5 * time.Second}
}

func (r *pgxRecorder) Record(ctx context.Context, e Entry) {
	if e.RecordedAt.IsZero() {
		e.RecordedAt = time.Now().UTC()
	}
	// The request context is usually gone by the time the insert runs.
	ctx = context.WithoutCancel(ctx)

	go func() {
		ctx, cancel := context.WithTimeout(ctx, r.timeout)
		defer cancel()

		if err := r.insert(ctx, e); err != nil {
			log.Error().Err(err).
				Str("action", e.Action).
				Str("entity_id", e.EntityID).
				Msg("failed to record audit entry")
		}
	}()
}

func (r *pgxRecorder) insert(ctx context.Context, e Entry) error {
	query, args, err := insertQuery(e)
	if err != nil {
		return err
	}
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert audit entry failed: %w", err)
	}
	return nil
}

func insertQuery(e Entry) (string, []any, error) {
	var details []byte
	if len(e.Details) > 0 {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return "", nil, fmt.Errorf("marshal audit details failed: %w", err)
		}
		details = raw
	}

	var actor *string
	if e.ActorID != "" {
		actor = &e.ActorID
	}

	query, args, err := psql.Insert("public.audit_log").
		Columns("action", "entity_type", "entity_id", "actor_id", "details", "recorded_at").
		Values(e.Action, e.EntityType, e.EntityID, actor, details, e.RecordedAt).
		ToSql()
	if err != nil {
		return "", nil, fmt.Errorf("build insert audit entry query failed: %w", err)
	}
	return query, args, nil
}

// Nop discards every entry.
type Nop struct{}

func (Nop) Record(context.Context, Entry) {}
