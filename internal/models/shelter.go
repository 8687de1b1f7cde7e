package models

import (
	"time"

	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Shelter is an organisation housing animals.
type Shelter struct {
	ID          string    `gorm:"size:36;primaryKey" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone       string    `gorm:"size:50;not null" json:"phone"`
	CNPJ        *string   `gorm:"column:cnpj;uniqueIndex;size:20" json:"cnpj"`
	Description *string   `json:"description"`
	Address     string    `gorm:"size:255;not null" json:"address"`
	City        string    `gorm:"size:100;not null;index" json:"city"`
	State       string    `gorm:"size:50;not null;index" json:"state"`
	ZipCode     string    `gorm:"size:20;not null" json:"zipCode"`
	Website     *string   `gorm:"size:255" json:"website"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	Managers []ShelterManager `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (s *Shelter) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// AccessRef projects the shelter for permission checks.
func (s *Shelter) AccessRef() *permissions.ShelterRef {
	if s == nil {
		return nil
	}
	return &permissions.ShelterRef{ID: s.ID}
}

// ShelterManager links a user to a shelter they manage.
type ShelterManager struct {
	ID        string    `gorm:"size:36;primaryKey" json:"id"`
	ShelterID string    `gorm:"size:36;not null;uniqueIndex:idx_shelter_manager" json:"shelterId"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_shelter_manager;index" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

func (m *ShelterManager) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
