// Package pgstore provides a PostgreSQL implementation of relay.Store.
package pgstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linnemanlabs/pagerelay/internal/relay"
)

var tracer = otel.Tracer("github.com/linnemanlabs/pagerelay/internal/relay/pgstore")

//go:embed schema.sql
var schema string

// Store persists delivery records in PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

// New applies the schema on the given pool and returns a ready Store.
func New(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{pool: pool}, nil
}

const deliveryColumns = `id, action, dedup_key, summary, severity, source, outcome,
	created_at, completed_at, duration_s`

// Get retrieves a delivery by ID.
func (s *Store) Get(ctx context.Context, id string) (*relay.Delivery, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.Get", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE id = $1`
	d, err := scanDeliveryRow(s.pool.QueryRow(ctx, query, id))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if d == nil {
		return nil, false, nil
	}
	return d, true, nil
}

// GetByDedupKey retrieves the most recent delivery for a dedup key.
func (s *Store) GetByDedupKey(ctx context.Context, dedupKey string) (*relay.Delivery, bool, error) {
	ctx, span := tracer.Start(ctx, "pgstore.GetByDedupKey", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "SELECT"),
	))
	defer span.End()

	if dedupKey == "" {
		return nil, false, nil
	}

	query := `SELECT ` + deliveryColumns + ` FROM deliveries WHERE dedup_key = $1 ORDER BY created_at DESC LIMIT 1`
	d, err := scanDeliveryRow(s.pool.QueryRow(ctx, query, dedupKey))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, false, err
	}
	if d == nil {
		return nil, false, nil
	}
	return d, true, nil
}

// Put inserts or updates a delivery record.
func (s *Store) Put(ctx context.Context, d *relay.Delivery) error {
	ctx, span := tracer.Start(ctx, "pgstore.Put", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation.name", "UPSERT"),
	))
	defer span.End()

	var completedAt *time.Time
	if !d.CompletedAt.IsZero() {
		completedAt = &d.CompletedAt
	}

	query := `INSERT INTO deliveries (
		id, action, dedup_key, summary, severity, source, outcome,
		created_at, completed_at, duration_s
	) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	ON CONFLICT (id) DO UPDATE SET
		action       = EXCLUDED.action,
		dedup_key    = EXCLUDED.dedup_key,
		summary      = EXCLUDED.summary,
		severity     = EXCLUDED.severity,
		source       = EXCLUDED.source,
		outcome      = EXCLUDED.outcome,
		completed_at = EXCLUDED.completed_at,
		duration_s   = EXCLUDED.duration_s`

	_, err := s.pool.Exec(ctx, query,
		d.ID, d.Action, d.DedupKey, d.Summary, d.Severity, d.Source, string(d.Outcome),
		d.CreatedAt, completedAt, d.Duration,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("upsert delivery: %w", err)
	}
	return nil
}

// scanDeliveryRow scans one delivery row; returns (nil, nil) when no row matched.
func scanDeliveryRow(row pgx.Row) (*relay.Delivery, error) {
	var d relay.Delivery
	var outcome string
	var completedAt *time.Time

	err := row.Scan(
		&d.ID, &d.Action, &d.DedupKey, &d.Summary, &d.Severity, &d.Source, &outcome,
		&d.CreatedAt, &completedAt, &d.Duration,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan delivery: %w", err)
	}

	d.Outcome = relay.Outcome(outcome)
	if completedAt != nil {
		d.CompletedAt = *completedAt
	}
	return &d, nil
}
