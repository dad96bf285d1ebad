package entity

// Op identifies the operation an access rule guards.
type Op string

const (
	OpCreate Op = "create"
	OpRead   Op = "read"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Template is a placeholder in a rule resolved at evaluation time against the
// acting user. CurrentUserEmail is the only supported template.
type Template string

const CurrentUserEmail Template = "user.email"

// Rule is one node of a per-operation access predicate. Rules form a small
// closed grammar evaluated by Authorize.
type Rule interface {
	isRule()
}

// Empty always permits. It is the public-access rule.
type Empty struct{}

// FieldEquals permits when the record field at Path equals Value. Value may be
// a literal or a Template.
type FieldEquals struct {
	Path  string
	Value any
}

// FieldNotEquals permits when the record field at Path differs from Value.
type FieldNotEquals struct {
	Path  string
	Value any
}

// FieldIn permits when the record field at Path is a member of Values.
type FieldIn struct {
	Path   string
	Values []any
}

// RoleCheck permits when the actor's role is one of Roles.
type RoleCheck struct {
	Roles []string
}

// Or permits when any sub-rule permits.
type Or struct {
	Rules []Rule
}

// All permits when every sub-rule permits. Multi-condition rule objects are
// conjunctions of their conditions.
type All struct {
	Rules []Rule
}

func (Empty) isRule()          {}
func (FieldEquals) isRule()    {}
func (FieldNotEquals) isRule() {}
func (FieldIn) isRule()        {}
func (RoleCheck) isRule()      {}
func (Or) isRule()             {}
func (All) isRule()            {}
