package domain

import (
	"errors"
	"strings"
)

var (
	errNotString = errors.New("must be a string")
	errBlank     = errors.New("is required")
)

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func intField(data map[string]any, key string) *int {
	var n int
	switch v := data[key].(type) {
	case int:
		n = v
	case int32:
		n = int(v)
	case int64:
		n = int(v)
	case float64:
		n = int(v)
	default:
		return nil
	}
	return &n
}

func stringSliceField(data map[string]any, key string) []string {
	out, ok := toStrings(data[key])
	if !ok || out == nil {
		return []string{}
	}
	return out
}

func toStrings(v any) ([]string, bool) {
	switch x := v.(type) {
	case []string:
		return append([]string{}, x...), true
	case []any:
		out := make([]string, 0, len(x))
		for _, item := range x {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	case nil:
		return []string{}, true
	}
	return nil, false
}

func requiredString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errNotString
	}
	if strings.TrimSpace(s) == "" {
		return nil, errBlank
	}
	return strings.TrimSpace(s), nil
}

func optionalString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, errNotString
	}
	return strings.TrimSpace(s), nil
}

// DecodeAttendance reads a stored attendance map. Unrecognized values are
// kept as StatusUnknown so they still show up in the merged view.
func DecodeAttendance(v any) map[string]Status {
	out := make(map[string]Status)
	switch m := v.(type) {
	case map[string]any:
		for uid, raw := range m {
			s, _ := raw.(string)
			st := Status(s)
			if !st.Valid() {
				st = StatusUnknown
			}
			out[uid] = st
		}
	case map[string]Status:
		for uid, st := range m {
			out[uid] = st
		}
	case map[string]string:
		for uid, s := range m {
			out[uid] = Status(s)
		}
	}
	return out
}
