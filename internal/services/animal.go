package services

import (
	"context"

	"github.com/diewo77/go-adopt/internal/models"
	"gorm.io/gorm"
)

// AnimalFilter narrows an animal listing. Empty fields do not filter.
type AnimalFilter struct {
	QueryParams
	Type      string
	Size      string
	Gender    string
	IsAdopted *bool
	ShelterID string
	UserID    string
}

var animalList = listColumns{
	orderColumns: map[string]string{
		"id":        "id",
		"name":      "name",
		"type":      "type",
		"breed":     "breed",
		"age":       "age",
		"size":      "size",
		"gender":    "gender",
		"isAdopted": "is_adopted",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	defaultOrder:  "createdAt",
	searchColumns: []string{"name", "breed", "description", "color", "health_info"},
}

// AnimalOrderFields lists the accepted orderBy values for animals.
func AnimalOrderFields() []string { return animalList.fields() }

type AnimalService struct {
	db    *gorm.DB
	store store[models.Animal]
}

func NewAnimalService(db *gorm.DB) *AnimalService {
	return &AnimalService{db: db, store: store[models.Animal]{db: db, name: "animal"}}
}

// List returns one page of animals. Filters are combined with AND; the
// search term matches any searchable text column.
func (s *AnimalService) List(ctx context.Context, f AnimalFilter) (*Page[models.Animal], error) {
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Animal{})
		if f.Type != "" {
			tx = tx.Where("type = ?", f.Type)
		}
		if f.Size != "" {
			tx = tx.Where("size = ?", f.Size)
		}
		if f.Gender != "" {
			tx = tx.Where("gender = ?", f.Gender)
		}
		if f.IsAdopted != nil {
			tx = tx.Where("is_adopted = ?", *f.IsAdopted)
		}
		if f.ShelterID != "" {
			tx = tx.Where("shelter_id = ?", f.ShelterID)
		}
		if f.UserID != "" {
			tx = tx.Where("user_id = ?", f.UserID)
		}
		return animalList.applySearch(tx, f.Search)
	}
	page, err := paginate[models.Animal](query, animalList, f.QueryParams)
	return page, wrap("list animals", err)
}

// ListPublic lists animals still available for adoption.
func (s *AnimalService) ListPublic(ctx context.Context, f AnimalFilter) (*Page[models.Animal], error) {
	notAdopted := false
	return s.List(ctx, AnimalFilter{
		QueryParams: f.QueryParams,
		Type:        f.Type,
		Size:        f.Size,
		Gender:      f.Gender,
		IsAdopted:   &notAdopted,
	})
}

func (s *AnimalService) Get(ctx context.Context, id string) (*models.Animal, error) {
	return s.store.get(ctx, id)
}

func (s *AnimalService) Create(ctx context.Context, a *models.Animal) error {
	return s.store.create(ctx, a)
}

// Update applies column changes keyed by database column name.
func (s *AnimalService) Update(ctx context.Context, id string, changes map[string]any) (*models.Animal, error) {
	return s.store.update(ctx, id, changes)
}

func (s *AnimalService) Delete(ctx context.Context, id string) error {
	return s.store.delete(ctx, id)
}
