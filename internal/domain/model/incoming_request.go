package model

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusProcessing RequestStatus = "processing"
	RequestStatusCompleted  RequestStatus = "completed"
	RequestStatusFailed     RequestStatus = "failed"
)

// IncomingRequest is the audit record of one inbound message run through
// the classification pipeline. It is created at pipeline start and
// patched twice (after classification, after the handler); it mirrors the
// job status machine but is independent of the jobs table.
type IncomingRequest struct {
	ID             string
	Platform       Platform
	PlatformUserID string
	ChatID         string
	MessageID      string
	RawContent     string
	Status         RequestStatus
	ContentType    ContentType
	ExtractedData  map[string]any
	SessionID      string
	Error          string
	ProcessedAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RequestPatch carries a partial update of an incoming request record.
type RequestPatch struct {
	Status        RequestStatus
	ContentType   ContentType
	ExtractedData map[string]any
	Error         string
	ProcessedAt   *time.Time
}
