package handlers

import (
	"net/http"

	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/models"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

type ShelterHandler struct {
	shelters *services.ShelterService
	managers *services.ShelterManagerService
	subjects policy.Invalidator
}

func NewShelterHandler(shelters *services.ShelterService, managers *services.ShelterManagerService, subjects policy.Invalidator) *ShelterHandler {
	return &ShelterHandler{shelters: shelters, managers: managers, subjects: subjects}
}

type shelterInput struct {
	Name        string  `json:"name"`
	Email       string  `json:"email"`
	Phone       string  `json:"phone"`
	CNPJ        *string `json:"cnpj"`
	Description *string `json:"description"`
	Address     string  `json:"address"`
	City        string  `json:"city"`
	State       string  `json:"state"`
	ZipCode     string  `json:"zipCode"`
	Website     *string `json:"website"`
}

type shelterPatch struct {
	Name        Optional[string] `json:"name"`
	Email       Optional[string] `json:"email"`
	Phone       Optional[string] `json:"phone"`
	CNPJ        Optional[string] `json:"cnpj"`
	Description Optional[string] `json:"description"`
	Address     Optional[string] `json:"address"`
	City        Optional[string] `json:"city"`
	State       Optional[string] `json:"state"`
	ZipCode     Optional[string] `json:"zipCode"`
	Website     Optional[string] `json:"website"`
}

func (in shelterInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.Required("email", in.Email, v)
	if _, ok := v["email"]; !ok {
		validation.Email("email", in.Email, v)
	}
	validation.Required("phone", in.Phone, v)
	validation.Required("address", in.Address, v)
	validation.Required("city", in.City, v)
	validation.Required("state", in.State, v)
	validation.Required("zipCode", in.ZipCode, v)
	return v
}

func (h *ShelterHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := validation.Violations{}
	f := services.ShelterFilter{
		QueryParams: parseQuery(q, services.ShelterOrderFields(), v),
		City:        q.Get("city"),
		State:       q.Get("state"),
	}
	if !v.Empty() {
		invalid(w, v)
		return
	}
	page, err := h.shelters.List(r.Context(), f)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *ShelterHandler) Get(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	validation.UUID("id", r.PathValue("id"), v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	shelter, err := h.shelters.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shelter)
}

func (h *ShelterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in shelterInput
	if !decode(w, r, &in) {
		return
	}
	if v := in.validate(); !v.Empty() {
		invalid(w, v)
		return
	}
	shelter := &models.Shelter{
		Name:        in.Name,
		Email:       in.Email,
		Phone:       in.Phone,
		CNPJ:        in.CNPJ,
		Description: in.Description,
		Address:     in.Address,
		City:        in.City,
		State:       in.State,
		ZipCode:     in.ZipCode,
		Website:     in.Website,
	}
	if err := h.shelters.Create(r.Context(), shelter); err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, shelter)
}

func (h *ShelterHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := policy.Instance[models.Shelter](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	var in shelterPatch
	if !decode(w, r, &in) {
		return
	}

	v := validation.Violations{}
	changes := map[string]any{}
	for _, f := range []struct {
		field, column string
		value         Optional[string]
	}{
		{"name", "name", in.Name},
		{"email", "email", in.Email},
		{"phone", "phone", in.Phone},
		{"address", "address", in.Address},
		{"city", "city", in.City},
		{"state", "state", in.State},
		{"zipCode", "zip_code", in.ZipCode},
	} {
		setRequired(changes, f.field, f.column, f.value, v)
		if f.value.Set && !f.value.Null {
			validation.Required(f.field, f.value.Value, v)
		}
	}
	if p := in.Email.Ptr(); p != nil && v["email"] == "" {
		validation.Email("email", *p, v)
	}
	setNullable(changes, "cnpj", in.CNPJ)
	setNullable(changes, "description", in.Description)
	setNullable(changes, "website", in.Website)
	if !v.Empty() {
		invalid(w, v)
		return
	}

	shelter, err := h.shelters.Update(r.Context(), current.ID, changes)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shelter)
}

// Delete removes the shelter and drops the cached subjects of its managers.
func (h *ShelterHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := policy.Instance[models.Shelter](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	links, err := h.managers.ListForShelter(r.Context(), current.ID)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	if err := h.shelters.Delete(r.Context(), current.ID); err != nil {
		serviceError(w, r, err)
		return
	}
	for _, l := range links {
		h.subjects.Invalidate(l.UserID)
	}
	httpx.NoContent(w)
}

// LoadShelter is the route guard loader for /shelters/{id}.
func LoadShelter(shelters *services.ShelterService) policy.Loader {
	return policy.LoadByID(shelters.Get, func(s *models.Shelter) any { return s.AccessRef() })
}
