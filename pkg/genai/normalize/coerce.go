package normalize

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field-level coercion helpers. The collaborator routinely returns numbers as
// strings, strings as numbers, and scalars where arrays belong; these bend
// what is bendable and report the rest.

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprintf("%v", t))
	}
}

func asInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		cleaned := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "%"))
		if n, err := strconv.Atoi(cleaned); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return int(f)
		}
	case int:
		return t
	}
	return 0
}

func asStringSlice(v interface{}) []string {
	out := []string{}
	switch t := v.(type) {
	case []interface{}:
		for _, item := range t {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		if s := strings.TrimSpace(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func asObjectSlice(v interface{}) []map[string]interface{} {
	out := []map[string]interface{}{}
	items, ok := v.([]interface{})
	if !ok {
		return out
	}
	for _, item := range items {
		if obj, ok := item.(map[string]interface{}); ok {
			out = append(out, obj)
		}
	}
	return out
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
