package gate

// PolicySet is the resolved rule table for one subject. It holds exactly one
// Rule per declared pair and is never modified after Registry.Build returns it,
// so it is safe for concurrent use.
type PolicySet struct {
	role  string
	rules map[Permission]Rule
	perms []Permission
}

// Role returns the name of the template that produced the set.
func (s *PolicySet) Role() string {
	if s == nil {
		return ""
	}
	return s.role
}

// Rule returns the rule for the pair and whether one is defined.
func (s *PolicySet) Rule(rt ResourceType, action Action) (Rule, bool) {
	if s == nil {
		return Rule{}, false
	}
	r, ok := s.rules[NewPermission(rt, action)]
	return r, ok
}

// Permissions returns the pairs covered by the set in registry order.
func (s *PolicySet) Permissions() []Permission {
	if s == nil {
		return nil
	}
	return append([]Permission(nil), s.perms...)
}

// Len returns the number of rules.
func (s *PolicySet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}
