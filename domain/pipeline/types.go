// Package pipeline models the signal-processing pipeline: an
// ordered, composable chain of preprocessing steps applied to a 1-D
// sample array, validated, hashed for provenance, then executed in order.
package pipeline

import (
	"strconv"

	"ephyscore/domain/core"
)

// StepTag names a preprocessing step.
type StepTag string

const (
	StepLowpass        StepTag = "filter:lowpass"
	StepHighpass       StepTag = "filter:highpass"
	StepBandpass       StepTag = "filter:bandpass"
	StepNotch          StepTag = "notch"
	StepComb           StepTag = "comb"
	StepBaselineMean   StepTag = "baseline:mean"
	StepBaselineMedian StepTag = "baseline:median"
	StepBaselineMode   StepTag = "baseline:mode"
	StepBaselineLinear StepTag = "baseline:linear"
	StepBaselineWindow StepTag = "baseline:window"
	StepArtifact       StepTag = "artifact"
)

// Step is one entry in a Plan: a tagged record of parameters.
type Step struct {
	Tag    StepTag
	Params map[string]interface{}
}

// Plan is an ordered sequence of Steps, applied left to right.
type Plan struct {
	Steps []Step
}

// NewPlan builds a Plan from an ordered step list.
func NewPlan(steps []Step) *Plan {
	return &Plan{Steps: steps}
}

// Validate checks that every step carries a tag. Per-step parameter range
// validation happens at execution time, since valid ranges depend on the
// sampling rate.
func (p *Plan) Validate() error {
	for i, step := range p.Steps {
		if step.Tag == "" {
			return core.NewValidationError("step", "missing tag at index "+strconv.Itoa(i))
		}
	}
	return nil
}

// Hash fingerprints the plan so a batch run's manifest can record exactly
// which preprocessing chain produced its rows.
func (p *Plan) Hash() core.PipelineHash {
	tags := make([]string, len(p.Steps))
	params := make([]map[string]interface{}, len(p.Steps))
	for i, s := range p.Steps {
		tags[i] = string(s.Tag)
		params[i] = s.Params
	}
	return core.ComputePipelineHash(tags, params)
}

// StepError identifies the offending step in a pipeline failure.
type StepError struct {
	Index   int
	Tag     StepTag
	Message string
}

func (e *StepError) Error() string {
	return "pipeline step " + strconv.Itoa(e.Index) + " (" + string(e.Tag) + "): " + e.Message
}
