// internal/app/store/queries/permfilter/permfilter.go

// Package permfilter translates the authorization engine's
// persistence-agnostic filter into Mongo query documents. The engine knows
// nothing about bson; every backend owns its own translation.
package permfilter

import (
	"github.com/taskhubhq/taskhub/internal/app/system/authz"
	"go.mongodb.org/mongo-driver/bson"
)

// Apply merges the predicates of f into base and reports whether a query
// should run at all. A MatchNone filter returns (nil, false): the caller
// must produce an empty result set without touching the database.
//
// When a permission predicate lands on a field base already constrains
// (a member limited to status Done requesting ?status=Todo, say), both
// clauses move into an $and so they intersect. Overwriting either one
// would widen a restriction.
func Apply(base bson.M, f authz.Filter) (bson.M, bool) {
	if f.None {
		return nil, false
	}
	out := bson.M{}
	for k, v := range base {
		out[k] = v
	}
	var and []bson.M
	for _, c := range f.Conds {
		var pred any
		switch c.Op {
		case authz.OpEq:
			pred = c.Value
		case authz.OpIn:
			pred = bson.M{"$in": c.Value}
		default:
			continue
		}
		if prev, ok := out[c.Field]; ok {
			and = append(and, bson.M{c.Field: prev}, bson.M{c.Field: pred})
			delete(out, c.Field)
			continue
		}
		out[c.Field] = pred
	}
	if len(and) > 0 {
		if prev, ok := out["$and"].([]bson.M); ok {
			and = append(prev, and...)
		}
		out["$and"] = and
	}
	return out, true
}
