package diagnostics

import (
	"time"

	"gorm.io/datatypes"
)

// EvalRun records one compiled-expression evaluation: a started/ended
// timestamp pair and the run's outcome.
type EvalRun struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	Language string `gorm:"type:varchar(20);not null"` // xpath, xquery, xslt
	Source   string `gorm:"type:text"`

	StartedAt time.Time `gorm:"autoCreateTime"`
	EndedAt   *time.Time

	Succeeded    bool
	ErrorCode    string `gorm:"type:varchar(20)"`
	ErrorMessage string `gorm:"type:text"`

	// Relationship
	Events []TraceEvent `gorm:"foreignKey:RunID"`
}

// TraceEvent records one notification delivered to an errors.TraceListener
// or errors.ErrorListener during a run.
type TraceEvent struct {
	ID       uint   `gorm:"primaryKey;autoIncrement"`
	RunID    string `gorm:"type:varchar(36);index;not null"`
	Sequence int    `gorm:"index"`

	Label   string `gorm:"type:varchar(100);not null"` // expression kind, or "warning"/"error"
	Enter   bool
	Locator string         `gorm:"type:varchar(255)"`
	Detail  datatypes.JSON `gorm:"type:jsonb"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (EvalRun) TableName() string    { return "eval_runs" }
func (TraceEvent) TableName() string { return "trace_events" }
