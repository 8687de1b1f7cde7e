package handlers

import (
	"net/http"

	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/logging"
	"github.com/diewo77/go-adopt/internal/models"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

// ShelterManagerHandler links users to the shelters they manage. Routes are
// guarded by shelters:update on the shelter in the path.
type ShelterManagerHandler struct {
	managers *services.ShelterManagerService
	users    *services.UserService
	subjects policy.Invalidator
}

func NewShelterManagerHandler(managers *services.ShelterManagerService, users *services.UserService, subjects policy.Invalidator) *ShelterManagerHandler {
	return &ShelterManagerHandler{managers: managers, users: users, subjects: subjects}
}

type managerInput struct {
	UserID string `json:"userId"`
}

func (h *ShelterManagerHandler) List(w http.ResponseWriter, r *http.Request) {
	links, err := h.managers.ListForShelter(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if links == nil {
		links = []models.ShelterManager{}
	}
	httpx.JSON(w, http.StatusOK, links)
}

func (h *ShelterManagerHandler) Add(w http.ResponseWriter, r *http.Request) {
	var in managerInput
	if !decode(w, r, &in) {
		return
	}
	v := validation.Violations{}
	validation.UUID("userId", in.UserID, v)
	if v.Empty() && !h.users.Exists(r.Context(), in.UserID) {
		v["userId"] = "not_found"
	}
	if !v.Empty() {
		invalid(w, v)
		return
	}

	shelterID := r.PathValue("id")
	link, err := h.managers.Add(r.Context(), shelterID, in.UserID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	h.subjects.Invalidate(in.UserID)
	logging.FromContext(r.Context()).
		WithField("shelter_id", shelterID).
		WithField("manager_id", in.UserID).
		Info("shelter manager added")
	httpx.JSON(w, http.StatusCreated, link)
}

func (h *ShelterManagerHandler) Remove(w http.ResponseWriter, r *http.Request) {
	shelterID, userID := r.PathValue("id"), r.PathValue("userId")
	if err := h.managers.Remove(r.Context(), shelterID, userID); err != nil {
		serviceError(w, r, err)
		return
	}
	h.subjects.Invalidate(userID)
	logging.FromContext(r.Context()).
		WithField("shelter_id", shelterID).
		WithField("manager_id", userID).
		Info("shelter manager removed")
	httpx.NoContent(w)
}
