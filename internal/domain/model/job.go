package model

import (
	"time"
)

type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

type JobType string

const (
	JobTypeGreeting   JobType = "greeting"
	JobTypeNotifyUser JobType = "notify_user"
	JobTypeEcho       JobType = "echo"
)

// Job is a unit of asynchronous work persisted in the jobs table and
// consumed exactly once by a worker via conditional claim. Status moves
// queued -> processing -> completed|failed and never backwards; terminal
// rows are kept for audit, never deleted.
type Job struct {
	ID          string
	Type        JobType
	Status      JobStatus
	ChatID      string
	SessionID   string
	ParentJobID string
	Payload     map[string]any
	Result      map[string]any
	Error       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// JobPatch carries the fields of an unconditional job update. Nil fields
// are left untouched.
type JobPatch struct {
	Status JobStatus
	Result map[string]any
	Error  string
}

// PlatformHint returns the platform recorded in the payload, or "" when
// the job is platform-agnostic and the caller must fall back to the
// linked session or the configured default.
func (j *Job) PlatformHint() string {
	if j.Payload == nil {
		return ""
	}
	if p, ok := j.Payload["platform"].(string); ok {
		return p
	}
	return ""
}

func (j *Job) Terminal() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
