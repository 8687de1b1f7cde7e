package gate

import "fmt"

// Predicate decides access from a resource instance. It is called with a nil
// instance when no concrete resource is available (e.g. before creation).
// Predicates must be pure functions of the instance and captured parameters.
type Predicate func(instance any) bool

// Rule is either a static decision or a Predicate over the instance.
// The zero Rule is a static deny.
type Rule struct {
	allow bool
	pred  Predicate
}

// Static returns a rule whose decision ignores the instance.
func Static(allow bool) Rule {
	return Rule{allow: allow}
}

// Dynamic returns a rule that defers to p. A nil p is a static deny.
func Dynamic(p Predicate) Rule {
	return Rule{pred: p}
}

// Allow and Deny are the two static rules.
var (
	Allow = Static(true)
	Deny  = Static(false)
)

// IsDynamic reports whether the rule depends on the instance.
func (r Rule) IsDynamic() bool { return r.pred != nil }

func (r Rule) String() string {
	if r.pred != nil {
		return "dynamic"
	}
	return fmt.Sprintf("static(%t)", r.allow)
}

// eval runs the rule. Panics from the predicate are left to the caller.
func (r Rule) eval(instance any) bool {
	if r.pred == nil {
		return r.allow
	}
	return r.pred(instance)
}

// Rules maps resource type and action to a Rule. Templates return Rules;
// the Registry validates and freezes them into a PolicySet.
type Rules map[ResourceType]map[Action]Rule

// Owned adapts a typed check into a Predicate. The instance may be passed as
// T or *T; a nil instance reaches fn as a nil pointer, so fn must treat nil as
// "cannot prove access". Any other type panics with ErrInstanceType, which the
// Checker converts into a deny.
func Owned[T any](fn func(*T) bool) Predicate {
	return func(instance any) bool {
		switch v := instance.(type) {
		case nil:
			return fn(nil)
		case *T:
			return fn(v)
		case T:
			return fn(&v)
		default:
			panic(fmt.Errorf("%w: got %T, want %T", ErrInstanceType, instance, (*T)(nil)))
		}
	}
}
