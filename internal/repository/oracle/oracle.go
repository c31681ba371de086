package oracle

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	_ "github.com/sijms/go-ora/v2"
	"github.com/tuncerburak97/apistats/internal/model"
	"github.com/tuncerburak97/apistats/internal/repository/migrations"
)

type OracleRepository struct {
	DB *sql.DB
}

func NewOracleRepository(connStr string) (*OracleRepository, error) {
	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to Oracle: %v", err)
	}

	return &OracleRepository{DB: db}, nil
}

func (r *OracleRepository) SaveCall(ctx context.Context, rec *model.CallRecord) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var body interface{}
	if len(rec.RequestBody) > 0 {
		body = string(rec.RequestBody)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO api_calls (
			external_user_id, endpoint, method, ip_address,
			request_body, status_code, called_at
		) VALUES (:1, :2, :3, :4, :5, :6, :7)`,
		rec.ExternalUserID, rec.Endpoint, rec.Method, rec.IPAddress,
		body, rec.StatusCode, rec.CalledAt,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *OracleRepository) LastCalled(ctx context.Context) (*model.CallRecord, error) {
	var rec model.CallRecord
	var userID sql.NullInt64
	var body sql.NullString

	err := r.DB.QueryRowContext(ctx,
		`SELECT id, external_user_id, endpoint, method, ip_address,
			request_body, status_code, called_at
		FROM api_calls
		ORDER BY called_at DESC
		FETCH FIRST 1 ROWS ONLY`,
	).Scan(
		&rec.ID, &userID, &rec.Endpoint, &rec.Method,
		&rec.IPAddress, &body, &rec.StatusCode, &rec.CalledAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		rec.ExternalUserID = &userID.Int64
	}
	if body.Valid {
		rec.RequestBody = []byte(body.String)
	}
	return &rec, nil
}

func (r *OracleRepository) MostFrequent(ctx context.Context) (*model.EndpointCount, error) {
	var ec model.EndpointCount

	err := r.DB.QueryRowContext(ctx,
		`SELECT endpoint, COUNT(*) AS count
		FROM api_calls
		GROUP BY endpoint
		ORDER BY count DESC
		FETCH FIRST 1 ROWS ONLY`,
	).Scan(&ec.Endpoint, &ec.Count)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &ec, nil
}

func (r *OracleRepository) Counts(ctx context.Context) ([]model.EndpointCount, error) {
	rows, err := r.DB.QueryContext(ctx,
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

func (r *OracleRepository) Ping(ctx context.Context) error {
	var one int
	return r.DB.QueryRowContext(ctx, "SELECT 1 FROM DUAL").Scan(&one)
}

func (r *OracleRepository) Close() error {
	return r.DB.Close()
}

func (r *OracleRepository) Migrate(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Starting Oracle migrations")

	_, err := r.DB.ExecContext(ctx, migrations.OracleSchema)
	if err != nil {
		log.Error().Err(err).Msg("Oracle migrations failed")
		return fmt.Errorf("migration error: %v", err)
	}

	log.Info().Msg("Oracle migrations completed successfully")
	return nil
}
