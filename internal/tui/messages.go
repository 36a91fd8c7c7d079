package tui

import "github.com/stock-tracker/tracker/internal/pipeline"

// ProgressMsg carries a pipeline progress callback.
type ProgressMsg struct {
	Current float64
	Total   float64
	Step    string
}

// StatusMsg carries the progress and message labels.
type StatusMsg struct {
	Progress string
	Message  string
}

// InfoMsg carries a chunk of the ticker info report.
type InfoMsg struct {
	Text string
}

// RunFinishedMsg signals that the background run returned.
type RunFinishedMsg struct {
	Report pipeline.RunReport
	Err    error
}
