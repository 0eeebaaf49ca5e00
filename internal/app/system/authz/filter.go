// internal/app/system/authz/filter.go
package authz

// Filter is a persistence-agnostic conjunction of field predicates derived
// from a permission's conditions. Each backend translates it independently
// (Mongo translation lives in store/queries/permfilter); the engine never
// builds backend queries itself.

// Op is a predicate operator.
type Op string

const (
	// OpEq requires the field to equal the value.
	OpEq Op = "eq"
	// OpIn requires the field to be a member of the value slice.
	OpIn Op = "in"
)

// Well-known predicate fields. Values are the logical field names the
// engine constrains; backends map them onto their own column/key names.
const (
	FieldOwner    = "user_id"
	FieldAssignee = "assigned_id"
	FieldStatus   = "status"
)

// Cond is a single field predicate.
type Cond struct {
	Field string
	Op    Op
	Value any
}

// Filter is a conjunction of predicates. The zero value matches everything;
// a filter with None set matches nothing regardless of its predicates.
type Filter struct {
	None  bool
	Conds []Cond
}

// MatchAll returns the unrestricted filter.
func MatchAll() Filter { return Filter{} }

// MatchNone returns the filter matching nothing. Backends must not issue a
// query for it.
func MatchNone() Filter { return Filter{None: true} }

// And returns a copy of f with an additional predicate.
func (f Filter) And(field string, op Op, value any) Filter {
	conds := make([]Cond, len(f.Conds), len(f.Conds)+1)
	copy(conds, f.Conds)
	return Filter{None: f.None, Conds: append(conds, Cond{Field: field, Op: op, Value: value})}
}

// Unrestricted reports whether f imposes no constraint.
func (f Filter) Unrestricted() bool {
	return !f.None && len(f.Conds) == 0
}
