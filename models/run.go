package models

import "time"

// Run statuses as exposed by the runs API.
const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run represents one end-to-end apply-pipeline invocation.
type Run struct {
	ID        string     `json:"id"`
	Profile   string     `json:"profile"`
	Company   string     `json:"company"`
	JobTitle  string     `json:"jobTitle"`
	JobURL    string     `json:"jobUrl,omitempty"`
	Status    string     `json:"status"`
	ApplyURL  string     `json:"applyUrl,omitempty"`
	Error     string     `json:"error,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Events    []RunEvent `json:"events,omitempty"`
}

// RunEvent is one semantic event emitted while a run progresses
// (stage started, stage result, error).
type RunEvent struct {
	Seq       int         `json:"seq"`
	Stage     string      `json:"stage"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
