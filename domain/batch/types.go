// Package batch models the batch engine's inputs and outputs:
// items to process, the pipeline and analysis steps to apply, and the
// resulting aggregate row table.
package batch

import (
	"ephyscore/domain/pipeline"
	"ephyscore/domain/registry"
)

// Scope selects which trace(s) of a Recording's channel an Item extracts.
type Scope string

const (
	ScopeRecording     Scope = "Recording"
	ScopeAllTrials     Scope = "AllTrials"
	ScopeFirstTrial    Scope = "FirstTrial"
	ScopeAverageTrace  Scope = "AverageTrace"
	ScopeSpecificTrial Scope = "SpecificTrial"
)

// Item is one (path, scope, channel, trial?) unit of work.
type Item struct {
	Path       string
	Scope      Scope
	ChannelID  string
	TrialIndex *int // only meaningful for ScopeSpecificTrial
}

// AnalysisStep is one (name, params) dispatch to run against each
// extracted trace.
type AnalysisStep struct {
	Name   string
	Params registry.Params
}

// Plan is the full specification of a batch run.
type Plan struct {
	Items     []Item
	Pipeline  *pipeline.Plan // nil or empty means no preprocessing
	Analyses  []AnalysisStep
}

// Row is one line of the aggregate output table.
// Values holds the flattened analysis result; Err is non-empty when the
// item failed before or during dispatch (loader error, channel or scope
// resolution, pipeline failure, or analysis error); one failing item never
// aborts the batch. A cancelled run adds no rows for items it did not run.
type Row struct {
	FileName   string
	FilePath   string
	Channel    string
	Analysis   string
	Scope      Scope
	TrialIndex *int
	Values     registry.Result
	Err        string
}

// ProgressUpdate reports batch progress as (item index, total, stage label).
type ProgressUpdate struct {
	ItemIndex  int
	Total      int
	StageLabel string
}

// ProgressFunc receives ProgressUpdates; safe to call from multiple
// goroutines when the engine runs items in parallel.
type ProgressFunc func(ProgressUpdate)

// Status is the terminal status of a batch run.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Result is the outcome of a batch run.
type Result struct {
	Rows           []Row
	Status         Status
	CompletedItems int
}
