package model

import "time"

// RunStatus tracks a refresh run through its lifecycle.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// StageStatus tracks one pipeline stage within a run.
type StageStatus string

const (
	StageStatusRunning  StageStatus = "running"
	StageStatusComplete StageStatus = "complete"
	StageStatusFailed   StageStatus = "failed"
)

// Run is one recorded invocation of a pipeline stage or a full refresh.
type Run struct {
	ID        string     `json:"id"`
	Command   string     `json:"command"`
	Status    RunStatus  `json:"status"`
	Summary   *RunSummary `json:"summary,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// RunSummary is the JSON blob persisted with a finished run.
type RunSummary struct {
	CatalogSize    int      `json:"catalogSize,omitempty"`
	Matched        int      `json:"matched,omitempty"`
	Unmatched      int      `json:"unmatched,omitempty"`
	PricesResolved int      `json:"pricesResolved,omitempty"`
	MissingPrices  int      `json:"missingPrices,omitempty"`
	MissingSample  []string `json:"missingSample,omitempty"`
	Error          string   `json:"error,omitempty"`
}

// RunStage is one stage record inside a run.
type RunStage struct {
	ID        string      `json:"id"`
	RunID     string      `json:"runId"`
	Name      string      `json:"name"`
	Status    StageStatus `json:"status"`
	Detail    string      `json:"detail,omitempty"`
	StartedAt time.Time   `json:"startedAt"`
	EndedAt   *time.Time  `json:"endedAt,omitempty"`
}
