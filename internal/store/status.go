package store

import (
    "context"
    "time"
)

// Generation states.
const (
    StatePending   = "pending"
    StateCompleted = "completed"
    StateFailed    = "failed"
)

// Status records the lifecycle of one generation request.
type Status struct {
    State       string     `json:"state"`
    ModelID     int        `json:"model_id"`
    Provider    string     `json:"provider,omitempty"`
    Prompt      string     `json:"prompt"`
    ContentType string     `json:"content_type,omitempty"`
    StorageKey  string     `json:"storage_key,omitempty"`
    FailureKind string     `json:"failure_kind,omitempty"`
    Message     string     `json:"message,omitempty"`
    Start       *time.Time `json:"start_time,omitempty"`
    End         *time.Time `json:"end_time,omitempty"`
}

// StatusStore persists generation statuses keyed by request ID. The redis
// implementation is used when REDIS_URL is set; otherwise the in-memory
// store keeps the zero-config deployment working.
type StatusStore interface {
    Set(ctx context.Context, requestID string, st Status) error
    Get(ctx context.Context, requestID string) (Status, bool, error)
    Close() error
}
