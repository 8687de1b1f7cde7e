package permissions

import (
	mapset "github.com/deckarep/golang-set/v2"
	"github.com/diewo77/go-adopt/gate"
)

func crud(c, r, u, d gate.Rule) map[gate.Action]gate.Rule {
	return map[gate.Action]gate.Rule{
		gate.ActionCreate: c,
		gate.ActionRead:   r,
		gate.ActionUpdate: u,
		gate.ActionDelete: d,
	}
}

func readOnly() map[gate.Action]gate.Rule {
	return crud(gate.Deny, gate.Allow, gate.Deny, gate.Deny)
}

func adminRules(SubjectParams) gate.Rules {
	all := func() map[gate.Action]gate.Rule {
		return crud(gate.Allow, gate.Allow, gate.Allow, gate.Allow)
	}
	return gate.Rules{
		Animals:          all(),
		AdoptionRequests: all(),
		Shelters:         all(),
	}
}

func adopterRules(p SubjectParams) gate.Rules {
	owns := ownsRequest(p.UserID)
	return gate.Rules{
		Animals:          readOnly(),
		AdoptionRequests: crud(gate.Allow, owns, owns, owns),
		Shelters:         readOnly(),
	}
}

func donorRules(p SubjectParams) gate.Rules {
	ownsAnimal := ownsAnimal(p.UserID)
	ownsReq := ownsRequest(p.UserID)
	return gate.Rules{
		Animals:          crud(gate.Allow, gate.Allow, ownsAnimal, ownsAnimal),
		AdoptionRequests: crud(gate.Deny, gate.Allow, ownsReq, ownsReq),
		Shelters:         readOnly(),
	}
}

func bothRules(p SubjectParams) gate.Rules {
	ownsAnimal := ownsAnimal(p.UserID)
	ownsReq := ownsRequest(p.UserID)
	return gate.Rules{
		Animals:          crud(gate.Allow, gate.Allow, ownsAnimal, ownsAnimal),
		AdoptionRequests: crud(gate.Allow, ownsReq, ownsReq, ownsReq),
		Shelters:         readOnly(),
	}
}

func shelterManagerRules(p SubjectParams) gate.Rules {
	managed := newIDSet(p.ShelterIDs)
	inShelter := gate.Dynamic(gate.Owned(func(a *AnimalRef) bool {
		return a != nil && a.ShelterID != "" && managed.Contains(a.ShelterID)
	}))
	ownsReq := ownsRequest(p.UserID)
	managesShelter := gate.Dynamic(gate.Owned(func(s *ShelterRef) bool {
		return s != nil && s.ID != "" && managed.Contains(s.ID)
	}))
	return gate.Rules{
		Animals:          crud(gate.Allow, gate.Allow, inShelter, inShelter),
		AdoptionRequests: crud(gate.Deny, ownsReq, ownsReq, ownsReq),
		Shelters:         crud(gate.Deny, gate.Allow, managesShelter, gate.Deny),
	}
}

// ownsAnimal and ownsRequest deny when either side of the comparison is
// empty, so an unowned record never matches an anonymous subject.
func ownsAnimal(userID string) gate.Rule {
	return gate.Dynamic(gate.Owned(func(a *AnimalRef) bool {
		return a != nil && userID != "" && a.UserID == userID
	}))
}

func ownsRequest(userID string) gate.Rule {
	return gate.Dynamic(gate.Owned(func(r *AdoptionRequestRef) bool {
		return r != nil && userID != "" && r.UserID == userID
	}))
}

// newIDSet copies the managed shelter ids. Later changes to the caller's
// slice do not reach the set.
func newIDSet(ids []string) mapset.Set[string] {
	s := mapset.NewSetWithSize[string](len(ids))
	for _, id := range ids {
		if id != "" {
			s.Add(id)
		}
	}
	return s
}
