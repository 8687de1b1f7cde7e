// Package permissions defines the access rules of the adoption platform:
// the resource types, the per-role rule templates and the instance shapes
// that dynamic rules inspect.
package permissions

import "github.com/diewo77/go-adopt/gate"

// Resource types guarded by the engine.
const (
	Animals          gate.ResourceType = "animals"
	AdoptionRequests gate.ResourceType = "adoptionRequests"
	Shelters         gate.ResourceType = "shelters"
)

// AnimalRef is the part of an animal record the rules look at.
type AnimalRef struct {
	ID        string
	UserID    string
	ShelterID string
}

// AdoptionRequestRef is the part of an adoption request the rules look at.
type AdoptionRequestRef struct {
	ID       string
	UserID   string
	AnimalID string
}

// ShelterRef is the part of a shelter record the rules look at.
type ShelterRef struct {
	ID string
}

// NewRegistry declares every resource type with full CRUD.
func NewRegistry() (*gate.Registry, error) {
	return gate.NewRegistry(
		gate.ResourceDef{Type: Animals, Actions: gate.CRUD()},
		gate.ResourceDef{Type: AdoptionRequests, Actions: gate.CRUD()},
		gate.ResourceDef{Type: Shelters, Actions: gate.CRUD()},
	)
}
