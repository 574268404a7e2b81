package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// FirstPresent returns the value of the first key in keys that is present
// in m and is neither nil nor the empty string. def is returned when no
// candidate qualifies.
func FirstPresent(m map[string]any, keys []string, def any) any {
	for _, k := range keys {
		v, ok := m[k]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		return v
	}
	return def
}

// Stringify renders a decoded JSON value as text. json.Number keeps its
// source literal; objects and arrays render as compact JSON.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(x)
	default:
		data, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(data)
	}
}

// Truthy reports whether a decoded value would count as set: non-nil,
// not false, not zero, and not an empty string, array or object.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case json.Number:
		f, err := x.Float64()
		return err != nil || f != 0
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	default:
		if f, ok := ToFloat(v); ok {
			return f != 0
		}
		return true
	}
}

// ToFloat converts any numeric representation to float64. Every numeric
// kind is accepted uniformly; NaN, booleans, strings and non-numeric
// values are rejected. Literals beyond float64 range become ±Inf.
func ToFloat(v any) (float64, bool) {
	var f float64
	switch x := v.(type) {
	case json.Number:
		parsed, err := strconv.ParseFloat(x.String(), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return 0, false
		}
		f = parsed
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int8:
		f = float64(x)
	case int16:
		f = float64(x)
	case int32:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint:
		f = float64(x)
	case uint8:
		f = float64(x)
	case uint16:
		f = float64(x)
	case uint32:
		f = float64(x)
	case uint64:
		f = float64(x)
	default:
		return 0, false
	}
	if math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Clamp pins v into the closed interval [0,1].
func Clamp(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}

// lower lower-cases s with language-neutral Unicode rules. Unlike full case
// folding it leaves lower-case look-alikes such as U+017F untouched. A Caser
// is not safe for concurrent use, so one is created per call.
func lower(s string) string {
	return cases.Lower(language.Und).String(s)
}

// lowerTrim lower-cases s after trimming surrounding whitespace.
func lowerTrim(s string) string {
	return lower(strings.TrimSpace(s))
}
