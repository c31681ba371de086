package api

import (
	"time"

	"github.com/tuncerburak97/apistats/internal/model"
)

// TrackRequest is the body of POST /track. The id field is a caller-supplied
// originator identifier; it is stored as-is and never authenticated.
type TrackRequest struct {
	CalledService string `json:"calledService"`
	ID            *int64 `json:"id,omitempty"`
}

type TrackResponse struct {
	Message string `json:"message"`
	IP      string `json:"ip"`
}

type CallInfo struct {
	Endpoint  string    `json:"endpoint"`
	Method    string    `json:"method"`
	IPAddress string    `json:"ip_address"`
	UserID    *int64    `json:"user_id,omitempty"`
	CalledAt  time.Time `json:"called_at"`
}

type LastCalledResponse struct {
	LastCalled CallInfo `json:"last_called"`
}

type MostFrequentResponse struct {
	MostFrequent model.EndpointCount `json:"most_frequent"`
}

type CountsResponse struct {
	Counts []model.EndpointCount `json:"counts"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func newCallInfo(rec *model.CallRecord) CallInfo {
	return CallInfo{
		Endpoint:  rec.Endpoint,
		Method:    rec.Method,
		IPAddress: rec.IPAddress,
		UserID:    rec.ExternalUserID,
		CalledAt:  rec.CalledAt,
	}
}
