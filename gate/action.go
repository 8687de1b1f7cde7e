package gate

// Action describes the kind of operation a subject wants to perform.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// CRUD returns the four standard actions in declaration order.
func CRUD() []Action {
	return []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete}
}

// ResourceType identifies a protected kind of resource (e.g. "animals").
type ResourceType string
