package gate

import "strings"

// Permission identifies one (resource type, action) pair.
// Format: "resource:action" (e.g., "animals:update", "shelters:read")
type Permission string

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType ResourceType, action Action) Permission {
	return Permission(string(resourceType) + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType ResourceType, action Action) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return ResourceType(parts[0]), Action(parts[1])
}

func (p Permission) String() string { return string(p) }
