// Package registry implements the analysis plugin system: a
// process-wide, write-once table of analysis descriptors, populated by
// init() functions in adapters/analyses, and a uniform dispatch function.
package registry

import "fmt"

// ValueKind tags the variant carried by a Value.
type ValueKind string

const (
	KindFloat      ValueKind = "float"
	KindInt        ValueKind = "int"
	KindBool       ValueKind = "bool"
	KindStr        ValueKind = "str"
	KindFloatArray ValueKind = "float_array"
	KindIntArray   ValueKind = "int_array"
)

// Value is the tagged-union result/parameter value: a float, an int, a
// bool, a string, or an array of floats or ints.
type Value struct {
	Kind ValueKind
	f    float64
	i    int
	b    bool
	s    string
	fa   []float64
	ia   []int
}

func Float(f float64) Value      { return Value{Kind: KindFloat, f: f} }
func Int(i int) Value            { return Value{Kind: KindInt, i: i} }
func Bool(b bool) Value          { return Value{Kind: KindBool, b: b} }
func Str(s string) Value         { return Value{Kind: KindStr, s: s} }
func FloatArray(a []float64) Value { return Value{Kind: KindFloatArray, fa: a} }
func IntArray(a []int) Value     { return Value{Kind: KindIntArray, ia: a} }

func (v Value) Float() float64 {
	switch v.Kind {
	case KindFloat:
		return v.f
	case KindInt:
		return float64(v.i)
	default:
		return 0
	}
}

func (v Value) Int() int {
	switch v.Kind {
	case KindInt:
		return v.i
	case KindFloat:
		return int(v.f)
	default:
		return 0
	}
}

func (v Value) Bool() bool { return v.b }

func (v Value) Str() string {
	if v.Kind == KindStr {
		return v.s
	}
	return ""
}

func (v Value) FloatArray() []float64 { return v.fa }
func (v Value) IntArray() []int       { return v.ia }

func (v Value) String() string {
	switch v.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.f)
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindStr:
		return v.s
	case KindFloatArray:
		return fmt.Sprintf("%v", v.fa)
	case KindIntArray:
		return fmt.Sprintf("%v", v.ia)
	default:
		return ""
	}
}

// Result is the flat key/value map an analysis returns. An error field
// follows the "<analysis>_error" naming convention; its presence, not a
// Go error, signals an input or numeric failure.
type Result map[string]Value

// Params is the parameter map an analysis receives.
type Params map[string]Value

func (p Params) has(name string) bool {
	_, ok := p[name]
	return ok
}

// FloatOr returns the named float parameter or a default when absent.
func (p Params) FloatOr(name string, def float64) float64 {
	if v, ok := p[name]; ok {
		return v.Float()
	}
	return def
}

// IntOr returns the named int parameter or a default when absent.
func (p Params) IntOr(name string, def int) int {
	if v, ok := p[name]; ok {
		return v.Int()
	}
	return def
}

// BoolOr returns the named bool parameter or a default when absent.
func (p Params) BoolOr(name string, def bool) bool {
	if v, ok := p[name]; ok {
		return v.Bool()
	}
	return def
}

// StrOr returns the named string parameter or a default when absent.
func (p Params) StrOr(name string, def string) string {
	if v, ok := p[name]; ok {
		return v.Str()
	}
	return def
}

// RequireFloat returns the named float parameter, or ok=false when the
// caller omitted a required parameter that has no sensible default.
func (p Params) RequireFloat(name string) (float64, bool) {
	v, ok := p[name]
	if !ok {
		return 0, false
	}
	return v.Float(), true
}
