package services

import (
	"context"
	"errors"

	"github.com/diewo77/go-adopt/internal/models"
	"gorm.io/gorm"
)

// ShelterFilter narrows a shelter listing.
type ShelterFilter struct {
	QueryParams
	City  string
	State string
}

var shelterList = listColumns{
	orderColumns: map[string]string{
		"id":        "id",
		"name":      "name",
		"email":     "email",
		"phone":     "phone",
		"city":      "city",
		"state":     "state",
		"zipCode":   "zip_code",
		"createdAt": "created_at",
		"updatedAt": "updated_at",
	},
	defaultOrder:  "createdAt",
	searchColumns: []string{"name", "email", "city", "state", "description"},
}

// ShelterOrderFields lists the accepted orderBy values for shelters.
func ShelterOrderFields() []string { return shelterList.fields() }

type ShelterService struct {
	db    *gorm.DB
	store store[models.Shelter]
}

func NewShelterService(db *gorm.DB) *ShelterService {
	return &ShelterService{db: db, store: store[models.Shelter]{db: db, name: "shelter"}}
}

func (s *ShelterService) List(ctx context.Context, f ShelterFilter) (*Page[models.Shelter], error) {
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.Shelter{})
		if f.City != "" {
			tx = tx.Where("city = ?", f.City)
		}
		if f.State != "" {
			tx = tx.Where("state = ?", f.State)
		}
		return shelterList.applySearch(tx, f.Search)
	}
	page, err := paginate[models.Shelter](query, shelterList, f.QueryParams)
	return page, wrap("list shelters", err)
}

func (s *ShelterService) Get(ctx context.Context, id string) (*models.Shelter, error) {
	return s.store.get(ctx, id)
}

func (s *ShelterService) Create(ctx context.Context, sh *models.Shelter) error {
	return s.store.create(ctx, sh)
}

func (s *ShelterService) Update(ctx context.Context, id string, changes map[string]any) (*models.Shelter, error) {
	return s.store.update(ctx, id, changes)
}

// Delete removes the shelter together with its manager links. Its animals
// stay listed with no shelter.
func (s *ShelterService) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("shelter_id = ?", id).Delete(&models.ShelterManager{}).Error; err != nil {
			return wrap("delete shelter managers", err)
		}
		if err := tx.Model(&models.Animal{}).Where("shelter_id = ?", id).Update("shelter_id", nil).Error; err != nil {
			return wrap("detach shelter animals", err)
		}
		return store[models.Shelter]{db: tx, name: "shelter"}.delete(ctx, id)
	})
}

// ShelterManagerService maintains which users manage which shelters.
type ShelterManagerService struct {
	db *gorm.DB
}

func NewShelterManagerService(db *gorm.DB) *ShelterManagerService {
	return &ShelterManagerService{db: db}
}

// Add links userID to shelterID. Linking twice is a conflict.
func (s *ShelterManagerService) Add(ctx context.Context, shelterID, userID string) (*models.ShelterManager, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.ShelterManager{}).
		Where("shelter_id = ? AND user_id = ?", shelterID, userID).
		Count(&count).Error
	if err != nil {
		return nil, wrap("check shelter manager", err)
	}
	if count > 0 {
		return nil, ErrConflict
	}
	m := &models.ShelterManager{ShelterID: shelterID, UserID: userID}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, wrap("add shelter manager", err)
	}
	return m, nil
}

// Remove unlinks userID from shelterID.
func (s *ShelterManagerService) Remove(ctx context.Context, shelterID, userID string) error {
	res := s.db.WithContext(ctx).
		Where("shelter_id = ? AND user_id = ?", shelterID, userID).
		Delete(&models.ShelterManager{})
	if res.Error != nil {
		return wrap("remove shelter manager", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListForShelter returns the manager links of a shelter, oldest first.
func (s *ShelterManagerService) ListForShelter(ctx context.Context, shelterID string) ([]models.ShelterManager, error) {
	var out []models.ShelterManager
	err := s.db.WithContext(ctx).Where("shelter_id = ?", shelterID).Order("created_at asc").Find(&out).Error
	return out, wrap("list shelter managers", err)
}

// ShelterIDs returns the ids of the shelters userID manages.
func (s *ShelterManagerService) ShelterIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.ShelterManager{}).
		Where("user_id = ?", userID).
		Order("shelter_id").
		Pluck("shelter_id", &ids).Error
	if err != nil {
		return nil, wrap("list managed shelters", err)
	}
	return ids, nil
}

// IsNotFound reports whether err means a missing row.
func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
