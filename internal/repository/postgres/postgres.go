package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"
	"github.com/tuncerburak97/apistats/internal/model"
	"github.com/tuncerburak97/apistats/internal/repository/migrations"
)

type PostgresRepository struct {
	Pool *pgxpool.Pool
}

func NewPostgresRepository(connStr string) (*PostgresRepository, error) {
	pool, err := pgxpool.Connect(context.Background(), connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	return &PostgresRepository{Pool: pool}, nil
}

// SaveCall inserts a single call record inside its own transaction. The
// deferred rollback is a no-op after a successful commit, so no partial
// write survives any exit path.
func (r *PostgresRepository) SaveCall(ctx context.Context, rec *model.CallRecord) error {
	tx, err := r.Pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var body interface{}
	if len(rec.RequestBody) > 0 {
		body = []byte(rec.RequestBody)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO api_calls (
			external_user_id, endpoint, method, ip_address,
			request_body, status_code, called_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ExternalUserID, rec.Endpoint, rec.Method, rec.IPAddress,
		body, rec.StatusCode, rec.CalledAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *PostgresRepository) LastCalled(ctx context.Context) (*model.CallRecord, error) {
	var rec model.CallRecord
	var body []byte

	err := r.Pool.QueryRow(ctx,
		`SELECT id, external_user_id, endpoint, method, ip_address,
			request_body, status_code, called_at
		FROM api_calls
		ORDER BY called_at DESC
		LIMIT 1`,
	).Scan(
		&rec.ID, &rec.ExternalUserID, &rec.Endpoint, &rec.Method,
		&rec.IPAddress, &body, &rec.StatusCode, &rec.CalledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rec.RequestBody = body
	return &rec, nil
}

func (r *PostgresRepository) MostFrequent(ctx context.Context) (*model.EndpointCount, error) {
	var ec model.EndpointCount

	err := r.Pool.QueryRow(ctx,
		`SELECT endpoint, COUNT(*) AS count
		FROM api_calls
		GROUP BY endpoint
		ORDER BY count DESC
		LIMIT 1`,
	).Scan(&ec.Endpoint, &ec.Count)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ec, nil
}

func (r *PostgresRepository) Counts(ctx context.Context) ([]model.EndpointCount, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT endpoint, COUNT(*) AS count
		FROM api_calls
		GROUP BY endpoint
		ORDER BY count DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]model.EndpointCount, 0)
	for rows.Next() {
		var ec model.EndpointCount
		if err := rows.Scan(&ec.Endpoint, &ec.Count); err != nil {
			return nil, err
		}
		counts = append(counts, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	var one int
	return r.Pool.QueryRow(ctx, "SELECT 1").Scan(&one)
}

func (r *PostgresRepository) Close() error {
	r.Pool.Close()
	return nil
}

func (r *PostgresRepository) Migrate(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Starting PostgreSQL migrations")

	_, err := r.Pool.Exec(ctx, migrations.PostgresSchema)
	if err != nil {
		log.Error().Err(err).Msg("PostgreSQL migrations failed")
		return fmt.Errorf("migration error: %v", err)
	}

	log.Info().Msg("PostgreSQL migrations completed successfully")
	return nil
}
