package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// identityKeys are the attribute names tried, in order, when extracting the
// canonical ID from an embedded record.
var identityKeys = []string{"id", "_id"}

// Reference denotes another entity by identity. Upstream services return the
// same relationship either as a bare identifier string or as an embedded
// object carrying the identifier, depending on whether the originating
// endpoint chose to expand it. Normalisation is total: two references to the
// same logical entity always yield the same canonical ID regardless of shape.
type Reference struct {
	ID     string
	Inline Record
}

// Resolved reports whether the reference carries inline detail.
func (r Reference) Resolved() bool {
	return r.Inline != nil
}

// IsZero reports whether the reference is empty.
func (r Reference) IsZero() bool {
	return r.ID == "" && r.Inline == nil
}

// UnmarshalJSON accepts either a bare identifier or an embedded object.
func (r *Reference) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*r = Reference{}
		return nil
	}

	switch trimmed[0] {
	case '"':
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("unmarshal reference id: %w", err)
		}
		*r = Reference{ID: id}
		return nil
	case '{':
		var inline Record
		if err := json.Unmarshal(data, &inline); err != nil {
			return fmt.Errorf("unmarshal embedded reference: %w", err)
		}
		*r = Reference{ID: inline.ID(), Inline: inline}
		return nil
	default:
		// Numeric identifiers appear on a few legacy endpoints.
		var numeric json.Number
		if err := json.Unmarshal(data, &numeric); err != nil {
			return fmt.Errorf("unsupported reference shape: %s", trimmed)
		}
		*r = Reference{ID: numeric.String()}
		return nil
	}
}

// MarshalJSON writes the compact representation the upstream services expect:
// the embedded object when present, otherwise the bare identifier.
func (r Reference) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	return json.Marshal(r.ID)
}

// NormalizeReference converts an in-memory field value into a Reference.
// Each field is normalised independently; records mix representations freely.
func NormalizeReference(field interface{}) Reference {
	switch v := field.(type) {
	case nil:
		return Reference{}
	case Reference:
		return v
	case *Reference:
		if v == nil {
			return Reference{}
		}
		return *v
	case string:
		return Reference{ID: v}
	case Record:
		return Reference{ID: v.ID(), Inline: v}
	case map[string]interface{}:
		rec := Record(v)
		return Reference{ID: rec.ID(), Inline: rec}
	case json.Number:
		return Reference{ID: v.String()}
	case float64:
		// JSON numbers decoded without UseNumber arrive as float64.
		if v == float64(int64(v)) {
			return Reference{ID: fmt.Sprintf("%d", int64(v))}
		}
		return Reference{ID: fmt.Sprintf("%v", v)}
	case int:
		return Reference{ID: fmt.Sprintf("%d", v)}
	case int64:
		return Reference{ID: fmt.Sprintf("%d", v)}
	default:
		return Reference{ID: fmt.Sprintf("%v", v)}
	}
}
