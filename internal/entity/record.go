package entity

import (
	"strings"
	"time"
)

// Record is the stored envelope shared by all entities: a generated id,
// creation metadata, and the schema-validated payload.
type Record struct {
	ID        string
	CreatedAt time.Time
	CreatedBy string
	Data      map[string]any
}

// Field resolves a rule path against the record. Paths address either the
// envelope (id, created_at, created_by) or the payload, with or without the
// explicit "data." prefix.
func (r *Record) Field(path string) (any, bool) {
	if r == nil {
		return nil, false
	}
	switch path {
	case "id":
		return r.ID, true
	case "created_at":
		return r.CreatedAt, true
	case "created_by":
		return r.CreatedBy, true
	}
	name := strings.TrimPrefix(path, "data.")
	v, ok := r.Data[name]
	return v, ok
}

// Filter restricts a list query. A scalar value matches by equality; a slice
// value matches by set membership. Keys address fields the same way rule paths
// do.
type Filter map[string]any

// ListOptions bound and order a list query. OrderBy names a single field;
// zero Limit means no limit.
type ListOptions struct {
	OrderBy    string
	Descending bool
	Limit      int
}
