package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ImportSourceAll marks the summary row written after a run over every source
const ImportSourceAll = "all"

// ImportRun records the outcome of one importer execution for one source.
// Rows are append-only.
type ImportRun struct {
	ID         string                      `gorm:"primaryKey;type:uuid" json:"id"`
	RunID      string                      `gorm:"index" json:"run_id"`
	Source     string                      `gorm:"not null;index" json:"source"`
	Fetched    int                         `json:"fetched"`
	Imported   int                         `json:"imported"`
	Skipped    int                         `json:"skipped"`
	Errors     datatypes.JSONSlice[string] `json:"errors"`
	Cancelled  bool                        `gorm:"default:false" json:"cancelled"`
	DurationMs int64                       `json:"duration_ms"`
	CreatedAt  time.Time                   `gorm:"index" json:"created_at"`
}

func (ImportRun) TableName() string {
	return "import_runs"
}

func (r *ImportRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	if r.Errors == nil {
		r.Errors = datatypes.JSONSlice[string]{}
	}
	return nil
}
