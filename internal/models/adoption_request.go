package models

import (
	"time"

	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus is the lifecycle state of an adoption request.
type RequestStatus string

const (
	StatusPending   RequestStatus = "pending"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
	StatusCompleted RequestStatus = "completed"
)

// RequestStatuses lists the accepted statuses.
var RequestStatuses = []string{
	string(StatusPending), string(StatusApproved), string(StatusRejected), string(StatusCompleted),
}

// AdoptionRequest is a user's application to adopt an animal.
type AdoptionRequest struct {
	ID            string        `gorm:"size:36;primaryKey" json:"id"`
	UserID        string        `gorm:"size:36;not null;index" json:"userId"`
	AnimalID      string        `gorm:"size:36;not null;index" json:"animalId"`
	Status        RequestStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Message       *string       `json:"message"`
	HasExperience *bool         `json:"hasExperience"`
	HasOtherPets  *bool         `json:"hasOtherPets"`
	HasChildren   *bool         `json:"hasChildren"`
	HouseType     *string       `gorm:"size:100" json:"houseType"`
	Feedback      *string       `json:"feedback"`
	RequestedAt   time.Time     `gorm:"not null" json:"requestedAt"`
	RespondedAt   *time.Time    `json:"respondedAt"`
	CompletedAt   *time.Time    `json:"completedAt"`

	Animal *Animal `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// BeforeCreate fills the id, default status and request time.
func (r *AdoptionRequest) BeforeCreate(*gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.RequestedAt.IsZero() {
		r.RequestedAt = time.Now()
	}
	return nil
}

// IsOpen reports whether the request still awaits a decision.
func (r *AdoptionRequest) IsOpen() bool {
	return r.Status == StatusPending
}

// AccessRef projects the request for permission checks.
func (r *AdoptionRequest) AccessRef() *permissions.AdoptionRequestRef {
	if r == nil {
		return nil
	}
	return &permissions.AdoptionRequestRef{ID: r.ID, UserID: r.UserID, AnimalID: r.AnimalID}
}
