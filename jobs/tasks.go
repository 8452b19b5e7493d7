package jobs

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskBOMIntegrityScan is the task type for the BOM integrity scan.
	TaskBOMIntegrityScan = "bom:integrity_scan"
)

// BOMIntegrityScanPayload scopes an integrity scan. A nil root scans every edge.
type BOMIntegrityScanPayload struct {
	RootItemID *uuid.UUID `json:"root_item_id,omitempty"`
	MaxDepth   int        `json:"max_depth,omitempty"`
}

// Scope names the lock scope of the payload.
func (p BOMIntegrityScanPayload) Scope() string {
	if p.RootItemID == nil {
		return "all"
	}
	return p.RootItemID.String()
}

// NewBOMIntegrityScanTask constructs an Asynq task.
func NewBOMIntegrityScanTask(payload BOMIntegrityScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskBOMIntegrityScan, data, asynq.Queue(QueueDefault)), nil
}
