// Package view implements the join engine: equi-joins over normalised
// references, one-to-many grouping, and the Unknown placeholder policy for
// dangling or unfetchable counterparts.
package view

import (
	"fmt"

	"github.com/alifdwt/lms-bff-api/internal/models"
	appErrors "github.com/alifdwt/lms-bff-api/pkg/errors"
)

// UnknownLabel is the display value composites carry for a missing side.
const UnknownLabel = "Unknown"

// JoinSpec names a secondary source collection and the primary-side reference
// field to join on. Joins are identity equi-joins only; all current specs are
// many-to-one from the primary's perspective.
type JoinSpec struct {
	// Field is the reference field on the primary record.
	Field string
	// Source is the secondary collection name.
	Source string
	// As is the key the joined detail is attached under. Defaults to Field.
	As string
}

func (s JoinSpec) attachKey() string {
	if s.As != "" {
		return s.As
	}
	return s.Field
}

// Composite is one assembled row: the primary record plus joined detail.
type Composite struct {
	Primary models.Record            `json:"primary"`
	Joined  map[string]models.Record `json:"joined"`
}

// Unknown builds the placeholder substituted when a reference has no
// counterpart: either the id is dangling or the secondary source failed. The
// dangling id is retained for diagnostics.
func Unknown(id string) models.Record {
	return models.Record{
		"id":      id,
		"name":    UnknownLabel,
		"unknown": true,
	}
}

// IsUnknown reports whether a joined record is the placeholder.
func IsUnknown(r models.Record) bool {
	return r.Bool("unknown")
}

// CountUnknown tallies placeholder sides across the composites. Unresolved
// references never fail a view; callers surface the count as a diagnostic.
func CountUnknown(composites []Composite) int {
	count := 0
	for _, composite := range composites {
		for _, joined := range composite.Joined {
			if IsUnknown(joined) {
				count++
			}
		}
	}
	return count
}

// Index builds a canonical-id lookup over a collection.
func Index(records []models.Record) map[string]models.Record {
	idx := make(map[string]models.Record, len(records))
	for _, rec := range records {
		if id := rec.ID(); id != "" {
			idx[id] = rec
		}
	}
	return idx
}

// Assemble joins each primary record against the secondary collections named
// by specs. Collections holds the successfully fetched snapshots; a spec
// whose source is absent from collections but was never requested at all is
// the caller's programmer error and is reported via requested. A composite
// always renders: a missing counterpart becomes the Unknown placeholder,
// never an error and never a dropped row.
func Assemble(primary []models.Record, specs []JoinSpec, collections map[string][]models.Record, requested map[string]bool) ([]Composite, error) {
	indexes := make(map[string]map[string]models.Record, len(specs))
	for _, spec := range specs {
		if spec.Field == "" || spec.Source == "" {
			return nil, appErrors.Clone(appErrors.ErrAggregationInput, "join spec requires field and source")
		}
		if requested != nil && !requested[spec.Source] {
			return nil, appErrors.Clone(appErrors.ErrAggregationInput,
				fmt.Sprintf("join against source %q which was never fetched", spec.Source))
		}
		if _, ok := indexes[spec.Source]; !ok {
			indexes[spec.Source] = Index(collections[spec.Source])
		}
	}

	composites := make([]Composite, 0, len(primary))
	for _, rec := range primary {
		composite := Composite{Primary: rec, Joined: make(map[string]models.Record, len(specs))}
		for _, spec := range specs {
			ref := rec.Ref(spec.Field)
			switch {
			case ref.Resolved():
				// Inline detail needs no lookup; the secondary
				// collection may not have been fetched at all.
				composite.Joined[spec.attachKey()] = ref.Inline
			case ref.ID == "":
				composite.Joined[spec.attachKey()] = Unknown("")
			default:
				if match, ok := indexes[spec.Source][ref.ID]; ok {
					composite.Joined[spec.attachKey()] = match
				} else {
					composite.Joined[spec.attachKey()] = Unknown(ref.ID)
				}
			}
		}
		composites = append(composites, composite)
	}
	return composites, nil
}

// Group expresses a one-to-many relation: secondary records are grouped by
// their normalised reference to the primary's identity. Grouping is stable
// and idempotent; re-grouping an already attached group is a no-op because
// membership depends only on canonical ids.
func Group(secondary []models.Record, byField string) map[string][]models.Record {
	groups := make(map[string][]models.Record)
	for _, rec := range secondary {
		ref := rec.Ref(byField)
		if ref.ID == "" {
			continue
		}
		groups[ref.ID] = append(groups[ref.ID], rec)
	}
	return groups
}

// AttachGroups widens each primary record with the matching group under key.
// Primaries are cloned; the fetched snapshot is never mutated.
func AttachGroups(primary []models.Record, groups map[string][]models.Record, key string) []models.Record {
	out := make([]models.Record, 0, len(primary))
	for _, rec := range primary {
		widened := rec.Clone()
		group := groups[rec.ID()]
		if group == nil {
			group = []models.Record{}
		}
		widened[key] = group
		out = append(out, widened)
	}
	return out
}
