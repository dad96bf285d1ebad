package entity

import (
	"errors"
	"fmt"
)

// Entity names recognized by the registry.
const (
	EntityAlbum  = "Album"
	EntityReview = "Review"
	EntityFollow = "Follow"
)

// ErrUnknownEntity is returned when a schema lookup names an entity outside
// the registry.
var ErrUnknownEntity = errors.New("unknown entity")

// PropType is the semantic type of a schema property.
type PropType int

const (
	TypeString PropType = iota
	TypeNumber
	TypeBool
	TypeStringList
	TypeEnum
)

// Property describes one schema property. Enum and EnumDefault apply to
// TypeEnum; Min and Max bound TypeNumber when set.
type Property struct {
	Type        PropType
	Enum        []string
	EnumDefault string
	Min         *float64
	Max         *float64
}

// Schema describes an entity: its properties, required subset, defaults for
// optional fields, and the access rule per operation.
type Schema struct {
	Name       string
	Properties map[string]Property
	Required   []string
	Defaults   map[string]any
	Rules      map[Op]Rule
}

// Genres is the fixed album genre enumeration. Unrecognized or absent genres
// bucket to "Other".
var Genres = []string{
	"Rock", "Pop", "Hip-Hop", "R&B", "Electronic", "Jazz", "Classical",
	"Country", "Metal", "Indie", "Alternative", "Folk", "Soul", "Punk",
	"Blues", "Reggae", "Latin", "World", "Other",
}

func numRange(min, max float64) (*float64, *float64) {
	return &min, &max
}

var ratingMin, ratingMax = numRange(0, 100)

var creatorOrAdmin = Or{Rules: []Rule{
	FieldEquals{Path: "created_by", Value: CurrentUserEmail},
	RoleCheck{Roles: []string{"admin"}},
}}

var ownFollowOrAdmin = Or{Rules: []Rule{
	FieldEquals{Path: "data.follower_email", Value: CurrentUserEmail},
	RoleCheck{Roles: []string{"admin"}},
}}

var schemas = map[string]*Schema{
	EntityAlbum: {
		Name: EntityAlbum,
		Properties: map[string]Property{
			"title":        {Type: TypeString},
			"artist":       {Type: TypeString},
			"cover_url":    {Type: TypeString},
			"release_year": {Type: TypeNumber},
			"genre":        {Type: TypeEnum, Enum: Genres, EnumDefault: "Other"},
			"tracklist":    {Type: TypeStringList},
			"description":  {Type: TypeString},
			"spotify_url":  {Type: TypeString},
		},
		Required: []string{"title", "artist"},
		Rules: map[Op]Rule{
			OpCreate: RoleCheck{Roles: []string{"user", "admin"}},
			OpRead:   Empty{},
			OpUpdate: creatorOrAdmin,
			OpDelete: creatorOrAdmin,
		},
	},
	EntityReview: {
		Name: EntityReview,
		Properties: map[string]Property{
			"album_id":      {Type: TypeString},
			"rating":        {Type: TypeNumber, Min: ratingMin, Max: ratingMax},
			"title":         {Type: TypeString},
			"content":       {Type: TypeString},
			"reviewer_name": {Type: TypeString},
			"is_critic":     {Type: TypeBool},
			"helpful_count": {Type: TypeNumber},
		},
		Required: []string{"album_id", "rating", "content"},
		Defaults: map[string]any{
			"is_critic":     false,
			"helpful_count": float64(0),
		},
		Rules: map[Op]Rule{
			OpCreate: FieldEquals{Path: "created_by", Value: CurrentUserEmail},
			OpRead:   Empty{},
			OpUpdate: creatorOrAdmin,
			OpDelete: creatorOrAdmin,
		},
	},
	EntityFollow: {
		Name: EntityFollow,
		Properties: map[string]Property{
			"follower_email":  {Type: TypeString},
			"following_email": {Type: TypeString},
			"following_name":  {Type: TypeString},
		},
		Required: []string{"follower_email", "following_email"},
		Rules: map[Op]Rule{
			OpCreate: All{Rules: []Rule{
				FieldEquals{Path: "data.follower_email", Value: CurrentUserEmail},
				FieldEquals{Path: "created_by", Value: CurrentUserEmail},
				FieldNotEquals{Path: "data.following_email", Value: CurrentUserEmail},
			}},
			OpRead:   ownFollowOrAdmin,
			OpUpdate: ownFollowOrAdmin,
			OpDelete: ownFollowOrAdmin,
		},
	},
}

// GetSchema returns the schema for an entity name.
func GetSchema(name string) (*Schema, error) {
	s, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntity, name)
	}
	return s, nil
}

// Normalize applies defaults and enum bucketing to a payload, returning a new
// map. The input is not modified.
func (s *Schema) Normalize(payload map[string]any) map[string]any {
	out := make(map[string]any, len(payload)+len(s.Defaults))
	for k, v := range payload {
		out[k] = v
	}
	for k, v := range s.Defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	for name, prop := range s.Properties {
		if prop.Type != TypeEnum || prop.EnumDefault == "" {
			continue
		}
		v, ok := out[name]
		if !ok || v == nil || v == "" {
			out[name] = prop.EnumDefault
			continue
		}
		if str, isStr := v.(string); !isStr || !contains(prop.Enum, str) {
			out[name] = prop.EnumDefault
		}
	}
	return out
}

// Validate checks a payload against the schema: required fields present and
// non-empty, no unknown fields, types and bounds respected. The payload is
// expected to be normalized first.
func (s *Schema) Validate(payload map[string]any) error {
	for name := range payload {
		if _, ok := s.Properties[name]; !ok {
			return fmt.Errorf("unknown field %q", name)
		}
	}
	for _, name := range s.Required {
		v, ok := payload[name]
		if !ok || v == nil {
			return fmt.Errorf("missing required field %q", name)
		}
		if str, isStr := v.(string); isStr && str == "" {
			return fmt.Errorf("required field %q must not be empty", name)
		}
	}
	for name, v := range payload {
		if v == nil {
			continue
		}
		if err := s.Properties[name].check(v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
	}
	return nil
}

func (p Property) check(v any) error {
	switch p.Type {
	case TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
	case TypeEnum:
		str, ok := v.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", v)
		}
		if !contains(p.Enum, str) {
			return fmt.Errorf("value %q not in enumeration", str)
		}
	case TypeNumber:
		n, ok := toFloat(v)
		if !ok {
			return fmt.Errorf("expected number, got %T", v)
		}
		if p.Min != nil && n < *p.Min {
			return fmt.Errorf("value %v below minimum %v", n, *p.Min)
		}
		if p.Max != nil && n > *p.Max {
			return fmt.Errorf("value %v above maximum %v", n, *p.Max)
		}
	case TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected boolean, got %T", v)
		}
	case TypeStringList:
		switch list := v.(type) {
		case []string:
		case []any:
			for _, item := range list {
				if _, ok := item.(string); !ok {
					return fmt.Errorf("expected list of strings, got %T element", item)
				}
			}
		default:
			return fmt.Errorf("expected list of strings, got %T", v)
		}
	}
	return nil
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
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
	}
	return 0, false
}
