package models

import "time"

// Pledge is a single sponsor's in-kind contribution against one project.
// Pledges are append-only.
type Pledge struct {
	ID        int                 `json:"id"`
	ProjectID int                 `json:"projectId"`
	Sponsor   string              `json:"sponsor"`
	Resource  *ResourceCommitment `json:"resource"`
	Timestamp time.Time           `json:"timestamp"`
}
