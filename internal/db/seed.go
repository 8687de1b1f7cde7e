package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diewo77/go-adopt/internal/models"
	"github.com/diewo77/go-adopt/internal/permissions"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedAdmin makes sure a user with the admin role exists for email.
// An existing user keeps its password and is promoted. It is a no-op when
// email is empty.
func SeedAdmin(conn *gorm.DB, email, password string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}

	var existing models.User
	err := conn.Where("email = ?", email).First(&existing).Error
	switch {
	case err == nil:
		if existing.Role == permissions.RoleAdmin {
			return nil
		}
		return conn.Model(&existing).Update("role", permissions.RoleAdmin).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if password == "" {
		return fmt.Errorf("seed admin %s: ADMIN_PASSWORD is required", email)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return conn.Create(&models.User{
		Email:    email,
		Name:     "Administrator",
		Password: string(hash),
		Role:     permissions.RoleAdmin,
	}).Error
}
