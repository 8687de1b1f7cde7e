package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/gate"
	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/models"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

type AdoptionRequestHandler struct {
	requests *services.AdoptionRequestService
	animals  *services.AnimalService
	gate     *policy.AuthGate
}

func NewAdoptionRequestHandler(requests *services.AdoptionRequestService, animals *services.AnimalService, g *policy.AuthGate) *AdoptionRequestHandler {
	return &AdoptionRequestHandler{requests: requests, animals: animals, gate: g}
}

type adoptionRequestInput struct {
	UserID        string  `json:"userId"`
	AnimalID      string  `json:"animalId"`
	Status        string  `json:"status"`
	Message       *string `json:"message"`
	HasExperience *bool   `json:"hasExperience"`
	HasOtherPets  *bool   `json:"hasOtherPets"`
	HasChildren   *bool   `json:"hasChildren"`
	HouseType     *string `json:"houseType"`
}

type adoptionRequestPatch struct {
	Status        Optional[string]    `json:"status"`
	Message       Optional[string]    `json:"message"`
	HasExperience Optional[bool]      `json:"hasExperience"`
	HasOtherPets  Optional[bool]      `json:"hasOtherPets"`
	HasChildren   Optional[bool]      `json:"hasChildren"`
	HouseType     Optional[string]    `json:"houseType"`
	Feedback      Optional[string]    `json:"feedback"`
	RespondedAt   Optional[time.Time] `json:"respondedAt"`
	CompletedAt   Optional[time.Time] `json:"completedAt"`
}

// List returns the requests the caller may read. Subjects whose read rule
// depends on ownership only see their own requests.
func (h *AdoptionRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := validation.Violations{}
	f := services.AdoptionRequestFilter{
		QueryParams: parseQuery(q, services.AdoptionRequestOrderFields(), v),
		Status:      q.Get("status"),
		UserID:      q.Get("userId"),
		AnimalID:    q.Get("animalId"),
	}
	validation.OptionalOneOf("status", f.Status, models.RequestStatuses, v)
	validation.OptionalUUID("userId", f.UserID, v)
	validation.OptionalUUID("animalId", f.AnimalID, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	if !h.gate.Can(r.Context(), permissions.AdoptionRequests, gate.ActionRead, nil) {
		uid, _ := auth.UserIDFromContext(r.Context())
		f.UserID = uid
	}

	page, err := h.requests.List(r.Context(), f)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// Get returns the request loaded by the route guard.
func (h *AdoptionRequestHandler) Get(w http.ResponseWriter, r *http.Request) {
	req, ok := policy.Instance[models.AdoptionRequest](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

// Create files a request for an animal. The applicant defaults to the
// caller; filing for someone else needs update rights on their requests.
func (h *AdoptionRequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in adoptionRequestInput
	if !decode(w, r, &in) {
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if in.UserID == "" {
		in.UserID = uid
	}

	v := validation.Violations{}
	validation.UUID("userId", in.UserID, v)
	validation.Required("animalId", in.AnimalID, v)
	validation.OptionalUUID("animalId", in.AnimalID, v)
	validation.OptionalOneOf("status", in.Status, models.RequestStatuses, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}

	if in.UserID != uid {
		ref := &permissions.AdoptionRequestRef{UserID: in.UserID, AnimalID: in.AnimalID}
		if err := h.gate.Authorize(r.Context(), permissions.AdoptionRequests, gate.ActionUpdate, ref); err != nil {
			policy.WriteAuthzError(w, err, permissions.AdoptionRequests, gate.ActionCreate)
			return
		}
	}

	animal, err := h.animals.Get(r.Context(), in.AnimalID)
	if errors.Is(err, services.ErrNotFound) {
		invalid(w, validation.Violations{"animalId": "not_found"})
		return
	}
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if animal.IsAdopted {
		invalid(w, validation.Violations{"animalId": "already_adopted"})
		return
	}

	req := &models.AdoptionRequest{
		UserID:        in.UserID,
		AnimalID:      in.AnimalID,
		Status:        models.RequestStatus(in.Status),
		Message:       in.Message,
		HasExperience: in.HasExperience,
		HasOtherPets:  in.HasOtherPets,
		HasChildren:   in.HasChildren,
		HouseType:     in.HouseType,
	}
	if err := h.requests.Create(r.Context(), req); err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, req)
}

// Update patches the request. A status change stamps respondedAt or
// completedAt unless the body sets them.
func (h *AdoptionRequestHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := policy.Instance[models.AdoptionRequest](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	var in adoptionRequestPatch
	if !decode(w, r, &in) {
		return
	}

	v := validation.Violations{}
	changes := map[string]any{}
	setRequired(changes, "status", "status", in.Status, v)
	if in.Status.Set && !in.Status.Null {
		validation.OneOf("status", in.Status.Value, models.RequestStatuses, v)
	}
	setNullable(changes, "message", in.Message)
	setNullable(changes, "has_experience", in.HasExperience)
	setNullable(changes, "has_other_pets", in.HasOtherPets)
	setNullable(changes, "has_children", in.HasChildren)
	setNullable(changes, "house_type", in.HouseType)
	setNullable(changes, "feedback", in.Feedback)
	setNullable(changes, "responded_at", in.RespondedAt)
	setNullable(changes, "completed_at", in.CompletedAt)
	if !v.Empty() {
		invalid(w, v)
		return
	}

	if status := models.RequestStatus(in.Status.Value); in.Status.Set && status != current.Status {
		now := time.Now()
		switch status {
		case models.StatusApproved, models.StatusRejected:
			if !in.RespondedAt.Set {
				changes["responded_at"] = now
			}
		case models.StatusCompleted:
			if !in.CompletedAt.Set {
				changes["completed_at"] = now
			}
			if !in.RespondedAt.Set && current.RespondedAt == nil {
				changes["responded_at"] = now
			}
		}
	}

	req, err := h.requests.Update(r.Context(), current.ID, changes)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, req)
}

func (h *AdoptionRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := policy.Instance[models.AdoptionRequest](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	if err := h.requests.Delete(r.Context(), current.ID); err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// LoadAdoptionRequest is the route guard loader for /adoption-requests/{id}.
func LoadAdoptionRequest(requests *services.AdoptionRequestService) policy.Loader {
	return policy.LoadByID(requests.Get, func(r *models.AdoptionRequest) any { return r.AccessRef() })
}
