package dynamo

import (
	"fmt"
	"sort"
	"strings"
)

// Args is the static parameter tree handed to the vector field and the event
// condition on every evaluation. Leaves are numbers; nested maps group
// related parameters.
type Args map[string]any

// DefaultArgs returns a new {"mu": 1.0} tree. Each call builds a fresh map.
func DefaultArgs() Args {
	return Args{"mu": 1.0}
}

// Clone deep-copies nested Args and map[string]any values.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	out := make(Args, len(a))
	for k, v := range a {
		switch inner := v.(type) {
		case Args:
			out[k] = inner.Clone()
		case map[string]any:
			out[k] = map[string]any(Args(inner).Clone())
		case []float64:
			out[k] = append([]float64(nil), inner...)
		default:
			out[k] = v
		}
	}
	return out
}

// Float looks up a numeric leaf. Dotted keys walk nested maps ("earth.mu").
func (a Args) Float(key string) (float64, bool) {
	var cur any = map[string]any(a)
	for _, part := range strings.Split(key, ".") {
		m, ok := asMap(cur)
		if !ok {
			return 0, false
		}
		cur, ok = m[part]
		if !ok {
			return 0, false
		}
	}
	return toFloat(cur)
}

// FloatOr is Float with a fallback.
func (a Args) FloatOr(key string, def float64) float64 {
	if v, ok := a.Float(key); ok {
		return v
	}
	return def
}

// Keys returns the top-level keys in sorted order.
func (a Args) Keys() []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (a Args) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, k := range a.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %v", k, a[k])
	}
	b.WriteByte('}')
	return b.String()
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case Args:
		return m, true
	case map[string]any:
		return m, true
	}
	return nil, false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}
