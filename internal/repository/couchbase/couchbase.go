package couchbase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/couchbase/gocb/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/tuncerburak97/apistats/internal/model"
	"github.com/tuncerburak97/apistats/internal/repository/migrations"
)

type CouchbaseRepository struct {
	Cluster *gocb.Cluster
	Bucket  *gocb.Bucket
}

func NewCouchbaseRepository(connStr, bucketName, username, password string) (*CouchbaseRepository, error) {
	cluster, err := gocb.Connect(
		connStr,
		gocb.ClusterOptions{
			Username: username,
			Password: password,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to Couchbase: %v", err)
	}

	bucket := cluster.Bucket(bucketName)
	err = bucket.WaitUntilReady(5*time.Second, nil)
	if err != nil {
		return nil, fmt.Errorf("bucket not ready: %v", err)
	}

	return &CouchbaseRepository{
		Cluster: cluster,
		Bucket:  bucket,
	}, nil
}

// SaveCall stores each record as its own document. The UUID document key is
// the store-generated surrogate for this backend.
func (r *CouchbaseRepository) SaveCall(ctx context.Context, rec *model.CallRecord) error {
	collection := r.Bucket.DefaultCollection()
	_, err := collection.Insert(
		fmt.Sprintf("call_%s", uuid.New().String()),
		rec,
		&gocb.InsertOptions{Context: ctx},
	)
	return err
}

func (r *CouchbaseRepository) LastCalled(ctx context.Context) (*model.CallRecord, error) {
	query := fmt.Sprintf(
		"SELECT c.* FROM `%s` AS c ORDER BY c.called_at DESC LIMIT 1",
		r.Bucket.Name(),
	)

	rows, err := r.Cluster.Query(query, &gocb.QueryOptions{Context: ctx})
	if err != nil {
		return nil, err
	}

	var rec model.CallRecord
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, rows.Close()
	}
	if err := rows.Row(&rec); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	return &rec, nil
}

func (r *CouchbaseRepository) MostFrequent(ctx context.Context) (*model.EndpointCount, error) {
	counts, err := r.queryCounts(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return nil, nil
	}
	return &counts[0], nil
}

func (r *CouchbaseRepository) Counts(ctx context.Context) ([]model.EndpointCount, error) {
	return r.queryCounts(ctx, 0)
}

func (r *CouchbaseRepository) queryCounts(ctx context.Context, limit int) ([]model.EndpointCount, error) {
	query := fmt.Sprintf(
		"SELECT c.endpoint, COUNT(*) AS count FROM `%s` AS c GROUP BY c.endpoint ORDER BY count DESC",
		r.Bucket.Name(),
	)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := r.Cluster.Query(query, &gocb.QueryOptions{Context: ctx})
	if err != nil {
		return nil, err
	}

	counts := make([]model.EndpointCount, 0)
	for rows.Next() {
		var ec model.EndpointCount
		if err := rows.Row(&ec); err != nil {
			return nil, err
		}
		counts = append(counts, ec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	return counts, nil
}

func (r *CouchbaseRepository) Ping(ctx context.Context) error {
	rows, err := r.Cluster.Query("SELECT 1", &gocb.QueryOptions{Context: ctx})
	if err != nil {
		return err
	}
	for rows.Next() {
	}
	if err := rows.Err(); err != nil {
		return err
	}
	return rows.Close()
}

func (r *CouchbaseRepository) Close() error {
	return r.Cluster.Close(nil)
}

func (r *CouchbaseRepository) Migrate(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	log.Info().Msg("Starting Couchbase migrations")

	indexes := migrations.GetCouchbaseIndexes(r.Bucket.Name())
	for _, indexQuery := range indexes {
		_, err := r.Cluster.Query(indexQuery, &gocb.QueryOptions{Context: ctx})
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			log.Error().Err(err).Str("query", indexQuery).Msg("Failed to create Couchbase index")
			return fmt.Errorf("index creation error: %v", err)
		}
	}

	log.Info().Msg("Couchbase migrations completed successfully")
	return nil
}
