package domain

import "time"

// Report is a saved bulk inspection. Batch is stored rendered so a report
// reads back exactly as it was produced.
type Report struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Input     string    `json:"input" db:"input"`
	Entries   int       `json:"entries" db:"entries"`
	Batch     *Batch    `json:"batch,omitempty" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// GetID returns the report ID.
func (r *Report) GetID() string { return r.ID }

// GetUpdatedAt returns the last modification time.
func (r *Report) GetUpdatedAt() time.Time { return r.UpdatedAt }

// CreateReportRequest is the request body for saving a report.
type CreateReportRequest struct {
	Name      string `json:"name"`
	Input     string `json:"input"`
	SoftLimit int    `json:"softLimit,omitempty"`
	HardLimit int    `json:"hardLimit,omitempty"`
}

// UpdateReportRequest renames a report.
type UpdateReportRequest struct {
	Name string `json:"name"`
}
