package policy

import (
	"context"
	"errors"
	"sync"

	"github.com/diewo77/go-adopt/internal/models"
	"github.com/diewo77/go-adopt/internal/permissions"
	"gorm.io/gorm"
)

// Subject is the role metadata the permission engine needs for a user.
type Subject struct {
	UserID string
	Role   string
	Params permissions.SubjectParams
}

// SubjectResolver loads the subject for an authenticated user id.
// A nil subject with a nil error means the user has no role metadata.
type SubjectResolver interface {
	Resolve(ctx context.Context, userID string) (*Subject, error)
}

// DBSubjectResolver reads the user's role and managed shelters from the database.
type DBSubjectResolver struct {
	DB *gorm.DB
}

// NewDBSubjectResolver creates a new database-backed subject resolver.
func NewDBSubjectResolver(db *gorm.DB) *DBSubjectResolver {
	return &DBSubjectResolver{DB: db}
}

// Resolve returns nil when the user does not exist or has no role.
// Managed shelter ids are only loaded for shelter managers.
func (r *DBSubjectResolver) Resolve(ctx context.Context, userID string) (*Subject, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Select("id", "role").Where("id = ?", userID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if user.Role == "" {
		return nil, nil
	}

	s := &Subject{
		UserID: user.ID,
		Role:   user.Role,
		Params: permissions.SubjectParams{UserID: user.ID},
	}
	if user.Role == permissions.RoleShelterManager {
		var ids []string
		err := r.DB.WithContext(ctx).Model(&models.ShelterManager{}).
			Where("user_id = ?", user.ID).
			Order("shelter_id").
			Pluck("shelter_id", &ids).Error
		if err != nil {
			return nil, err
		}
		s.Params.ShelterIDs = ids
	}
	return s, nil
}

// StaticResolver serves subjects from memory. Useful for tests and tools.
type StaticResolver struct {
	mu       sync.RWMutex
	subjects map[string]*Subject
}

// NewStaticResolver creates an empty in-memory resolver.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{subjects: make(map[string]*Subject)}
}

// Set registers the subject for its user id.
func (r *StaticResolver) Set(s *Subject) {
	r.mu.Lock()
	r.subjects[s.UserID] = s
	r.mu.Unlock()
}

func (r *StaticResolver) Resolve(_ context.Context, userID string) (*Subject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.subjects[userID], nil
}
