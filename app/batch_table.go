package app

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"ephyscore/domain/batch"
	"ephyscore/domain/registry"
)

// BatchTable renders a batch.Result's rows to an external format.
// Serialization is the caller's responsibility; the batch engine itself
// only produces the in-memory Row slice.
type BatchTable struct {
	Result *batch.Result
}

func NewBatchTable(result *batch.Result) *BatchTable {
	return &BatchTable{Result: result}
}

// jsonRow is the flattened, JSON-friendly projection of a batch.Row:
// Values loses its registry.Value tagging in favor of plain Go types, and
// TrialIndex loses its pointer in favor of a -1 sentinel for "not applicable".
type jsonRow struct {
	FileName   string                 `json:"file_name"`
	FilePath   string                 `json:"file_path"`
	Channel    string                 `json:"channel"`
	Analysis   string                 `json:"analysis"`
	Scope      string                 `json:"scope"`
	TrialIndex int                    `json:"trial_index"`
	Values     map[string]interface{} `json:"values,omitempty"`
	Err        string                 `json:"error,omitempty"`
}

// WriteJSON marshals every row as a JSON array, one object per row.
func (t *BatchTable) WriteJSON(w io.Writer) error {
	rows := make([]jsonRow, len(t.Result.Rows))
	for i, r := range t.Result.Rows {
		rows[i] = toJSONRow(r)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func toJSONRow(r batch.Row) jsonRow {
	trialIndex := -1
	if r.TrialIndex != nil {
		trialIndex = *r.TrialIndex
	}
	var values map[string]interface{}
	if len(r.Values) > 0 {
		values = make(map[string]interface{}, len(r.Values))
		for k, v := range r.Values {
			values[k] = toInterface(v)
		}
	}
	return jsonRow{
		FileName: r.FileName, FilePath: r.FilePath, Channel: r.Channel,
		Analysis: r.Analysis, Scope: string(r.Scope), TrialIndex: trialIndex,
		Values: values, Err: r.Err,
	}
}

// WriteCSV writes the batch result as a wide CSV: the identifying columns
// first, then one column per result key seen across any row, sorted for a
// stable header. Rows missing a key leave that cell empty. Array-valued
// results render via registry.Value.String, e.g. "[1 2 3]".
func (t *BatchTable) WriteCSV(w io.Writer) error {
	keys := collectResultKeys(t.Result.Rows)

	header := []string{"file_name", "file_path", "channel", "analysis", "scope", "trial_index", "error"}
	header = append(header, keys...)

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}

	for _, r := range t.Result.Rows {
		trialIndex := ""
		if r.TrialIndex != nil {
			trialIndex = fmt.Sprintf("%d", *r.TrialIndex)
		}
		record := []string{r.FileName, r.FilePath, r.Channel, r.Analysis, string(r.Scope), trialIndex, r.Err}
		for _, k := range keys {
			v, ok := r.Values[k]
			if !ok {
				record = append(record, "")
				continue
			}
			record = append(record, v.String())
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func collectResultKeys(rows []batch.Row) []string {
	seen := map[string]struct{}{}
	for _, r := range rows {
		for k := range r.Values {
			seen[k] = struct{}{}
		}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// toInterface unwraps a registry.Value to its native Go type for JSON
// marshaling, instead of carrying the tagged-union wrapper through.
func toInterface(v registry.Value) interface{} {
	switch v.Kind {
	case registry.KindFloat:
		return v.Float()
	case registry.KindInt:
		return v.Int()
	case registry.KindBool:
		return v.Bool()
	case registry.KindStr:
		return v.Str()
	case registry.KindFloatArray:
		return v.FloatArray()
	case registry.KindIntArray:
		return v.IntArray()
	default:
		return nil
	}
}
