package services

import (
	"context"
	"errors"
	"strings"

	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrInvalidCredentials is returned by Authenticate for any login failure.
var ErrInvalidCredentials = errors.New("invalid_credentials")

type UserService struct {
	db    *gorm.DB
	store store[models.User]
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db, store: store[models.User]{db: db, name: "user"}}
}

// Register hashes the password and creates the user.
func (s *UserService) Register(ctx context.Context, email, name, password, role string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		Email:    normalizeEmail(email),
		Name:     name,
		Password: string(hash),
		Role:     role,
	}
	if err := s.store.create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Authenticate returns the user matching email and password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, wrap("find user", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.get(ctx, id)
}

// Exists reports whether a user with id exists. A failed lookup reports
// true so a database blip does not end the caller's session.
func (s *UserService) Exists(ctx context.Context, id string) bool {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		logging.FromContext(ctx).WithError(err).WithField("user_id", id).Warn("user lookup failed, keeping session")
		return true
	}
	return count > 0
}

// SetRole changes the role of the user.
func (s *UserService) SetRole(ctx context.Context, id, role string) (*models.User, error) {
	return s.store.update(ctx, id, map[string]any{"role": role})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
