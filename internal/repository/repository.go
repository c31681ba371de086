package repository

import (
	"context"

	"github.com/tuncerburak97/apistats/internal/model"
)

// CallRepository is the storage contract for call records. Implementations
// use one pooled connection per operation and must distinguish "no rows"
// from a store failure: LastCalled and MostFrequent return (nil, nil) on an
// empty table, Counts returns an empty slice, and only a connection or
// query fault produces a non-nil error.
type CallRepository interface {
	SaveCall(ctx context.Context, rec *model.CallRecord) error
	LastCalled(ctx context.Context) (*model.CallRecord, error)
	MostFrequent(ctx context.Context) (*model.EndpointCount, error)
	Counts(ctx context.Context) ([]model.EndpointCount, error)

	// Ping performs a trivial round trip (SELECT 1 or equivalent).
	Ping(ctx context.Context) error

	Migrate(ctx context.Context) error
	Close() error
}
