package permissions

import (
	"github.com/diewo77/go-adopt/gate"
	"github.com/sirupsen/logrus"
)

// Role names as stored on users.
const (
	RoleAdmin          = "admin"
	RoleAdopter        = "adopter"
	RoleDonor          = "donor"
	RoleBoth           = "both"
	RoleShelterManager = "shelterManager"
)

// Roles lists every role name in a stable order.
func Roles() []string {
	return []string{RoleAdmin, RoleAdopter, RoleDonor, RoleBoth, RoleShelterManager}
}

// IsRole reports whether name is a known role.
func IsRole(name string) bool {
	for _, r := range Roles() {
		if r == name {
			return true
		}
	}
	return false
}

// SubjectParams carries what the templates capture about the subject.
// ShelterIDs only matters for shelter managers.
type SubjectParams struct {
	UserID     string
	ShelterIDs []string
}

// Templates returns the template for every role.
func Templates() map[string]gate.Template[SubjectParams] {
	return map[string]gate.Template[SubjectParams]{
		RoleAdmin:          adminRules,
		RoleAdopter:        adopterRules,
		RoleDonor:          donorRules,
		RoleBoth:           bothRules,
		RoleShelterManager: shelterManagerRules,
	}
}

// NewResolver builds the resolver used by the HTTP layer. Unknown role
// names fall back to the adopter template.
func NewResolver(logger logrus.FieldLogger) (*gate.Resolver[SubjectParams], error) {
	reg, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	opts := []gate.ResolverOption{gate.WithFallback(RoleAdopter)}
	if logger != nil {
		opts = append(opts, gate.WithResolverLogger(logger))
	}
	res, err := gate.NewResolver(reg, Templates(), opts...)
	if err != nil {
		return nil, err
	}
	if err := res.Validate(SubjectParams{}); err != nil {
		return nil, err
	}
	return res, nil
}
