package models

import "fmt"

// Record is one raw JSON document fetched from an owning service. Snapshots
// are read-only for the duration of an assembly; this layer never mutates a
// fetched record in place.
type Record map[string]interface{}

// ID extracts the record's own identity attribute.
func (r Record) ID() string {
	for _, key := range identityKeys {
		if v, ok := r[key]; ok {
			return NormalizeReference(v).ID
		}
	}
	return ""
}

// Ref normalises the named field into a Reference.
func (r Record) Ref(key string) Reference {
	return NormalizeReference(r[key])
}

// String returns the named field rendered as a string, or "" when absent.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// Float returns the named field as a float64 when it is numeric.
func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

// Bool returns the named field as a bool, defaulting to false.
func (r Record) Bool(key string) bool {
	v, ok := r[key].(bool)
	return ok && v
}

// Clone returns a shallow copy so callers can annotate without mutating the
// shared snapshot.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
