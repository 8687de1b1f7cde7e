package services

import (
	"context"

	"github.com/diewo77/go-adopt/internal/models"
	"gorm.io/gorm"
)

// AdoptionRequestFilter narrows an adoption request listing.
type AdoptionRequestFilter struct {
	QueryParams
	Status   string
	UserID   string
	AnimalID string
}

var requestList = listColumns{
	orderColumns: map[string]string{
		"id":          "id",
		"userId":      "user_id",
		"animalId":    "animal_id",
		"status":      "status",
		"requestedAt": "requested_at",
		"respondedAt": "responded_at",
		"completedAt": "completed_at",
	},
	defaultOrder:  "requestedAt",
	searchColumns: []string{"message", "house_type", "feedback"},
}

// AdoptionRequestOrderFields lists the accepted orderBy values for requests.
func AdoptionRequestOrderFields() []string { return requestList.fields() }

type AdoptionRequestService struct {
	db    *gorm.DB
	store store[models.AdoptionRequest]
}

func NewAdoptionRequestService(db *gorm.DB) *AdoptionRequestService {
	return &AdoptionRequestService{db: db, store: store[models.AdoptionRequest]{db: db, name: "adoption request"}}
}

func (s *AdoptionRequestService) List(ctx context.Context, f AdoptionRequestFilter) (*Page[models.AdoptionRequest], error) {
	query := func() *gorm.DB {
		tx := s.db.WithContext(ctx).Model(&models.AdoptionRequest{})
		if f.Status != "" {
			tx = tx.Where("status = ?", f.Status)
		}
		if f.UserID != "" {
			tx = tx.Where("user_id = ?", f.UserID)
		}
		if f.AnimalID != "" {
			tx = tx.Where("animal_id = ?", f.AnimalID)
		}
		return requestList.applySearch(tx, f.Search)
	}
	page, err := paginate[models.AdoptionRequest](query, requestList, f.QueryParams)
	return page, wrap("list adoption requests", err)
}

func (s *AdoptionRequestService) Get(ctx context.Context, id string) (*models.AdoptionRequest, error) {
	return s.store.get(ctx, id)
}

func (s *AdoptionRequestService) Create(ctx context.Context, r *models.AdoptionRequest) error {
	return s.store.create(ctx, r)
}

func (s *AdoptionRequestService) Update(ctx context.Context, id string, changes map[string]any) (*models.AdoptionRequest, error) {
	return s.store.update(ctx, id, changes)
}

func (s *AdoptionRequestService) Delete(ctx context.Context, id string) error {
	return s.store.delete(ctx, id)
}
