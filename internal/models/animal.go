package models

import (
	"time"

	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Animal kinds, sizes and genders accepted by the API.
const (
	AnimalTypeDog   = "dog"
	AnimalTypeCat   = "cat"
	AnimalTypeOther = "other"

	SizeSmall  = "small"
	SizeMedium = "medium"
	SizeBig    = "big"

	GenderMale   = "male"
	GenderFemale = "female"
)

var (
	AnimalTypes = []string{AnimalTypeDog, AnimalTypeCat, AnimalTypeOther}
	Sizes       = []string{SizeSmall, SizeMedium, SizeBig}
	Genders     = []string{GenderMale, GenderFemale}
)

// Animal is a pet listed for adoption, owned either by a shelter or by a
// donor user.
type Animal struct {
	ID             string    `gorm:"size:36;primaryKey" json:"id"`
	ShelterID      *string   `gorm:"size:36;index" json:"shelterId"`
	UserID         *string   `gorm:"size:36;index" json:"userId"`
	Name           string    `gorm:"size:255;not null" json:"name"`
	Type           string    `gorm:"size:20;not null;index" json:"type"`
	Breed          *string   `gorm:"size:255" json:"breed"`
	Age            *int      `json:"age"`
	Size           string    `gorm:"size:20;not null" json:"size"`
	Gender         string    `gorm:"size:20;not null" json:"gender"`
	Color          *string   `gorm:"size:100" json:"color"`
	Description    *string   `json:"description"`
	HealthInfo     *string   `json:"healthInfo"`
	AdoptionReason *string   `json:"adoptionReason"`
	IsAdopted      bool      `gorm:"not null;default:false;index" json:"isAdopted"`
	ImageURL       *string   `gorm:"column:image_url" json:"imageUrl"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`

	Shelter *Shelter `gorm:"constraint:OnDelete:SET NULL" json:"-"`
}

func (a *Animal) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// AccessRef projects the animal for permission checks. Null owners become
// empty strings, which ownership rules never match.
func (a *Animal) AccessRef() *permissions.AnimalRef {
	if a == nil {
		return nil
	}
	return &permissions.AnimalRef{
		ID:        a.ID,
		UserID:    deref(a.UserID),
		ShelterID: deref(a.ShelterID),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
