package entity

import "time"

// Actor is the identity attempting an operation. A nil *Actor means the
// request is unauthenticated.
type Actor struct {
	Email string
	Role  string
}

// Authorize reports whether the actor may perform op on the candidate record
// under the schema's access rule for that operation.
//
// For create, rec carries the proposed payload and an empty CreatedBy; the
// evaluator treats created_by as implicitly equal to the actor's email. For
// update and delete, rec is the stored record. For read, rec is the stored
// row; list queries re-apply the predicate per row.
//
// Evaluation fails closed: an unresolvable template (no actor) makes the
// enclosing condition false rather than erroring.
func Authorize(s *Schema, op Op, actor *Actor, rec *Record) bool {
	rule, ok := s.Rules[op]
	if !ok {
		return false
	}
	return eval(rule, op, actor, rec)
}

func eval(rule Rule, op Op, actor *Actor, rec *Record) bool {
	switch r := rule.(type) {
	case Empty:
		return true
	case FieldEquals:
		want, ok := resolve(r.Value, actor)
		if !ok {
			return false
		}
		got, ok := fieldValue(r.Path, op, actor, rec)
		if !ok {
			return false
		}
		return valuesEqual(got, want)
	case FieldNotEquals:
		want, ok := resolve(r.Value, actor)
		if !ok {
			return false
		}
		got, ok := fieldValue(r.Path, op, actor, rec)
		if !ok {
			return false
		}
		return !valuesEqual(got, want)
	case FieldIn:
		got, ok := fieldValue(r.Path, op, actor, rec)
		if !ok {
			return false
		}
		for _, candidate := range r.Values {
			want, ok := resolve(candidate, actor)
			if ok && valuesEqual(got, want) {
				return true
			}
		}
		return false
	case RoleCheck:
		if actor == nil {
			return false
		}
		return contains(r.Roles, actor.Role)
	case Or:
		for _, sub := range r.Rules {
			if eval(sub, op, actor, rec) {
				return true
			}
		}
		return false
	case All:
		for _, sub := range r.Rules {
			if !eval(sub, op, actor, rec) {
				return false
			}
		}
		return true
	}
	return false
}

// resolve turns a rule value into a concrete comparand, expanding templates
// against the actor. ok is false when a template cannot be resolved.
func resolve(v any, actor *Actor) (any, bool) {
	t, isTemplate := v.(Template)
	if !isTemplate {
		return v, true
	}
	if t != CurrentUserEmail || actor == nil || actor.Email == "" {
		return nil, false
	}
	return actor.Email, true
}

// fieldValue reads the rule path from the record. On create, created_by is
// not yet stamped and stands in for the actor's identity.
func fieldValue(path string, op Op, actor *Actor, rec *Record) (any, bool) {
	if path == "created_by" && op == OpCreate && (rec == nil || rec.CreatedBy == "") {
		if actor == nil || actor.Email == "" {
			return nil, false
		}
		return actor.Email, true
	}
	return rec.Field(path)
}

func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}
