package model

import (
	"encoding/json"
	"time"
)

const (
	// DefaultMethod is stored when the caller does not report a verb.
	DefaultMethod = "POST"
	// DefaultStatusCode is stored when the caller does not report an outcome.
	DefaultStatusCode = 200
)

// CallRecord is one immutable row describing a single observed or reported
// invocation of a tracked endpoint. Records are insert-only: nothing in the
// service updates or deletes them.
type CallRecord struct {
	ID             int64           `json:"id,omitempty" bson:"-" db:"id"`
	ExternalUserID *int64          `json:"user_id,omitempty" bson:"external_user_id,omitempty" db:"external_user_id"`
	Endpoint       string          `json:"endpoint" bson:"endpoint" db:"endpoint"`
	Method         string          `json:"method" bson:"method" db:"method"`
	IPAddress      string          `json:"ip_address" bson:"ip_address" db:"ip_address"`
	RequestBody    json.RawMessage `json:"request_body,omitempty" bson:"request_body,omitempty" db:"request_body"`
	StatusCode     int             `json:"status_code" bson:"status_code" db:"status_code"`
	CalledAt       time.Time       `json:"called_at" bson:"called_at" db:"called_at"`
}

// EndpointCount is one aggregation bucket: how many call records exist for
// an endpoint. Counting is by exact string equality, so "/api/users" and
// "/api/users/" are distinct buckets.
type EndpointCount struct {
	Endpoint string `json:"endpoint" bson:"_id" db:"endpoint"`
	Count    int64  `json:"count" bson:"count" db:"count"`
}
