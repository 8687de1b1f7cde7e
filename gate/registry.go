package gate

import (
	"errors"
	"fmt"
)

// ResourceDef declares a resource type and the closed set of actions it exposes.
// An action a type does not support is simply left out.
type ResourceDef struct {
	Type    ResourceType
	Actions []Action
}

// Registry is the immutable declaration of every (resource type, action) pair
// the application exposes. Build one at startup and pass it to a Resolver.
type Registry struct {
	types   []ResourceType
	actions map[ResourceType][]Action
	perms   []Permission
	known   map[Permission]bool
}

// NewRegistry validates defs and returns a Registry.
// Empty names, duplicate types, duplicate actions and types without actions are rejected.
func NewRegistry(defs ...ResourceDef) (*Registry, error) {
	if len(defs) == 0 {
		return nil, errors.New("gate: registry needs at least one resource type")
	}
	reg := &Registry{
		actions: make(map[ResourceType][]Action, len(defs)),
		known:   make(map[Permission]bool),
	}
	for _, def := range defs {
		if def.Type == "" {
			return nil, errors.New("gate: resource type name is empty")
		}
		if _, dup := reg.actions[def.Type]; dup {
			return nil, fmt.Errorf("gate: duplicate resource type %q", def.Type)
		}
		if len(def.Actions) == 0 {
			return nil, fmt.Errorf("gate: resource type %q declares no actions", def.Type)
		}
		acts := make([]Action, 0, len(def.Actions))
		for _, a := range def.Actions {
			if a == "" {
				return nil, fmt.Errorf("gate: resource type %q has an empty action", def.Type)
			}
			perm := NewPermission(def.Type, a)
			if reg.known[perm] {
				return nil, fmt.Errorf("gate: duplicate action %q on %q", a, def.Type)
			}
			reg.known[perm] = true
			reg.perms = append(reg.perms, perm)
			acts = append(acts, a)
		}
		reg.types = append(reg.types, def.Type)
		reg.actions[def.Type] = acts
	}
	return reg, nil
}

// MustRegistry is NewRegistry that panics on an invalid declaration.
func MustRegistry(defs ...ResourceDef) *Registry {
	reg, err := NewRegistry(defs...)
	if err != nil {
		panic(err)
	}
	return reg
}

// Types returns the declared resource types in declaration order.
func (r *Registry) Types() []ResourceType {
	return append([]ResourceType(nil), r.types...)
}

// Actions returns the actions declared for rt, or nil if rt is unknown.
func (r *Registry) Actions(rt ResourceType) []Action {
	acts, ok := r.actions[rt]
	if !ok {
		return nil
	}
	return append([]Action(nil), acts...)
}

// Has reports whether the pair is declared.
func (r *Registry) Has(rt ResourceType, action Action) bool {
	return r.known[NewPermission(rt, action)]
}

// Permissions returns every declared pair in declaration order.
func (r *Registry) Permissions() []Permission {
	return append([]Permission(nil), r.perms...)
}

// Validate checks that rules define exactly the declared pairs.
// Every gap and every undeclared pair is reported; the result joins
// one *ConfigError per problem.
func (r *Registry) Validate(role string, rules Rules) error {
	var errs []error
	for _, perm := range r.perms {
		rt, a := perm.Parse()
		if _, ok := rules[rt][a]; !ok {
			errs = append(errs, &ConfigError{Role: role, Permission: perm, Err: ErrMissingRule})
		}
	}
	for rt, acts := range rules {
		for a := range acts {
			if !r.Has(rt, a) {
				errs = append(errs, &ConfigError{Role: role, Permission: NewPermission(rt, a), Err: ErrUndeclared})
			}
		}
	}
	return errors.Join(errs...)
}

// Build validates rules and freezes them into a PolicySet for role.
func (r *Registry) Build(role string, rules Rules) (*PolicySet, error) {
	if err := r.Validate(role, rules); err != nil {
		return nil, err
	}
	set := &PolicySet{
		role:  role,
		rules: make(map[Permission]Rule, len(r.perms)),
		perms: r.Permissions(),
	}
	for _, perm := range r.perms {
		rt, a := perm.Parse()
		set.rules[perm] = rules[rt][a]
	}
	return set, nil
}
