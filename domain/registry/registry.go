package registry

import (
	"fmt"
	"sort"
	"sync"
)

// ParamType tags the UI parameter variant: float, int, bool, or a choice
// among fixed string options.
type ParamType string

const (
	ParamTypeFloat  ParamType = "float"
	ParamTypeInt    ParamType = "int"
	ParamTypeBool   ParamType = "bool"
	ParamTypeChoice ParamType = "choice"
)

// VisibleWhen makes a UI parameter's visibility conditional on another
// parameter's current value.
type VisibleWhen struct {
	Param  string
	Equals Value
}

// ParamDescriptor documents one analysis parameter for UI generation and
// default-filling.
type ParamDescriptor struct {
	Name        string
	Type        ParamType
	Label       string
	Default     Value
	Min         *float64
	Max         *float64
	Decimals    *int
	Choices     []string
	VisibleWhen *VisibleWhen
	// Hidden parameters are dispatchable but never rendered by a UI.
	Hidden bool
}

// PlotKind names a visualization overlay an analysis result can drive.
type PlotKind string

const (
	PlotTrace  PlotKind = "trace"
	PlotVLines PlotKind = "vlines"
	PlotHLine  PlotKind = "hline"
	PlotPoints PlotKind = "points"
)

// PlotDescriptor is metadata describing one overlay a GUI may render from
// a result map; the core never interprets it.
type PlotDescriptor struct {
	Kind      PlotKind
	Label     string
	SourceKey string
}

// ClampMode tags which patch-clamp configuration an analysis applies to.
type ClampMode string

const (
	ClampCurrent ClampMode = "current_clamp"
	ClampVoltage ClampMode = "voltage_clamp"
	ClampAny     ClampMode = "any"
)

// SecondaryChannel names an additional channel-valued parameter an
// analysis requires beyond the primary (data, time) pair, e.g. a TTL
// channel for optogenetic synchronization.
type SecondaryChannel struct {
	ParamName string
	Label     string
}

// Fn is the uniform analysis entry point. trials holds every trial of the
// resolved channel when the batch engine's scope covers more than one
// sweep (AllTrials); it is nil, or a single-element slice equal to data,
// for single-trace scopes. Multi-trial analyses (I-V, excitability) read
// it directly; everything else ignores it.
type Fn func(data, time []float64, samplingRate float64, trials [][]float64, params Params) Result

// Descriptor bundles an analysis's metadata and its dispatchable function.
type Descriptor struct {
	Name                     string
	Label                    string
	RequiresSecondaryChannel *SecondaryChannel
	// RequiresAllTrials marks analyses (I-V, excitability) that consume
	// every trial of a channel as one unit rather than one trace at a
	// time; a batch run dispatches these once per item, not once per trial.
	RequiresAllTrials bool
	UIParams          []ParamDescriptor
	Plots             []PlotDescriptor
	ClampMode         ClampMode
	Fn                Fn
}

var (
	mu    sync.RWMutex
	table = map[string]Descriptor{}
)

// Register inserts a descriptor into the process-wide table. Intended to
// be called from an adapters/analyses package init() function, before any
// dispatch: writes must happen before any dispatch.
func Register(d Descriptor) {
	mu.Lock()
	defer mu.Unlock()
	if d.Name == "" {
		panic("registry: descriptor registered with empty name")
	}
	if _, exists := table[d.Name]; exists {
		panic(fmt.Sprintf("registry: duplicate analysis name %q", d.Name))
	}
	table[d.Name] = d
}

// Describe returns the descriptor for name, for UI generation.
func Describe(name string) (Descriptor, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := table[name]
	return d, ok
}

// List returns every registered analysis name in stable sorted order.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run dispatches to a registered analysis by name against a single
// trace. A missing name is a programmer error and is returned as a plain
// Go error; a panic inside the analysis function is recovered and
// converted into an error field on the result so it never reaches the
// batch engine.
func Run(name string, data, time []float64, samplingRate float64, params Params) (Result, error) {
	return RunTrials(name, data, time, samplingRate, [][]float64{data}, params)
}

// RunTrials is Run for analyses that need every trial of the resolved
// channel at once (I-V curves, excitability).
func RunTrials(name string, data, time []float64, samplingRate float64, trials [][]float64, params Params) (Result, error) {
	mu.RLock()
	d, ok := table[name]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown analysis: %s", name)
	}
	if params == nil {
		params = Params{}
	}
	return safeRun(d, data, time, samplingRate, trials, params), nil
}

func safeRun(d Descriptor, data, time []float64, samplingRate float64, trials [][]float64, params Params) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = Result{d.Name + "_error": Str(fmt.Sprintf("internal error: %v", r))}
		}
	}()
	return d.Fn(data, time, samplingRate, trials, params)
}
