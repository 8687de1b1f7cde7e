package handlers

import (
	"net/http"

	"github.com/diewo77/go-adopt/auth"
	"github.com/diewo77/go-adopt/gate"
	"github.com/diewo77/go-adopt/httpx"
	"github.com/diewo77/go-adopt/internal/models"
	"github.com/diewo77/go-adopt/internal/permissions"
	"github.com/diewo77/go-adopt/internal/policy"
	"github.com/diewo77/go-adopt/internal/services"
	"github.com/diewo77/go-adopt/validation"
)

type AnimalHandler struct {
	animals *services.AnimalService
	gate    *policy.AuthGate
}

func NewAnimalHandler(animals *services.AnimalService, g *policy.AuthGate) *AnimalHandler {
	return &AnimalHandler{animals: animals, gate: g}
}

type animalInput struct {
	ShelterID      *string `json:"shelterId"`
	UserID         *string `json:"userId"`
	Name           string  `json:"name"`
	Type           string  `json:"type"`
	Breed          *string `json:"breed"`
	Age            *int    `json:"age"`
	Size           string  `json:"size"`
	Gender         string  `json:"gender"`
	Color          *string `json:"color"`
	Description    *string `json:"description"`
	HealthInfo     *string `json:"healthInfo"`
	AdoptionReason *string `json:"adoptionReason"`
	IsAdopted      bool    `json:"isAdopted"`
	ImageURL       *string `json:"imageUrl"`
}

type animalPatch struct {
	ShelterID      Optional[string] `json:"shelterId"`
	UserID         Optional[string] `json:"userId"`
	Name           Optional[string] `json:"name"`
	Type           Optional[string] `json:"type"`
	Breed          Optional[string] `json:"breed"`
	Age            Optional[int]    `json:"age"`
	Size           Optional[string] `json:"size"`
	Gender         Optional[string] `json:"gender"`
	Color          Optional[string] `json:"color"`
	Description    Optional[string] `json:"description"`
	HealthInfo     Optional[string] `json:"healthInfo"`
	AdoptionReason Optional[string] `json:"adoptionReason"`
	IsAdopted      Optional[bool]   `json:"isAdopted"`
	ImageURL       Optional[string] `json:"imageUrl"`
}

func (in animalInput) validate() validation.Violations {
	v := validation.Violations{}
	validation.Required("name", in.Name, v)
	validation.MaxLen("name", in.Name, 255, v)
	validation.OneOf("type", in.Type, models.AnimalTypes, v)
	validation.OneOf("size", in.Size, models.Sizes, v)
	validation.OneOf("gender", in.Gender, models.Genders, v)
	if in.ShelterID != nil {
		validation.UUID("shelterId", *in.ShelterID, v)
	}
	if in.UserID != nil {
		validation.UUID("userId", *in.UserID, v)
	}
	if in.Age != nil {
		validation.NonNegativeInt("age", *in.Age, v)
	}
	return v
}

func (h *AnimalHandler) filter(r *http.Request, v validation.Violations) services.AnimalFilter {
	q := r.URL.Query()
	f := services.AnimalFilter{
		QueryParams: parseQuery(q, services.AnimalOrderFields(), v),
		Type:        q.Get("type"),
		Size:        q.Get("size"),
		Gender:      q.Get("gender"),
		IsAdopted:   boolParam(q, "isAdopted", v),
		ShelterID:   q.Get("shelterId"),
		UserID:      q.Get("userId"),
	}
	validation.OptionalOneOf("type", f.Type, models.AnimalTypes, v)
	validation.OptionalOneOf("size", f.Size, models.Sizes, v)
	validation.OptionalOneOf("gender", f.Gender, models.Genders, v)
	validation.OptionalUUID("shelterId", f.ShelterID, v)
	validation.OptionalUUID("userId", f.UserID, v)
	return f
}

func (h *AnimalHandler) List(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	f := h.filter(r, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	page, err := h.animals.List(r.Context(), f)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

// ListPublic lists the animals still waiting for a home.
func (h *AnimalHandler) ListPublic(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	f := h.filter(r, v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	page, err := h.animals.ListPublic(r.Context(), f)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *AnimalHandler) Get(w http.ResponseWriter, r *http.Request) {
	v := validation.Violations{}
	validation.UUID("id", r.PathValue("id"), v)
	if !v.Empty() {
		invalid(w, v)
		return
	}
	animal, err := h.animals.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, animal)
}

// Create stores a new animal. Without an owner it is listed under the caller.
func (h *AnimalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in animalInput
	if !decode(w, r, &in) {
		return
	}
	if v := in.validate(); !v.Empty() {
		invalid(w, v)
		return
	}
	if in.ShelterID == nil && in.UserID == nil {
		uid, _ := auth.UserIDFromContext(r.Context())
		in.UserID = &uid
	}

	animal := &models.Animal{
		ShelterID:      in.ShelterID,
		UserID:         in.UserID,
		Name:           in.Name,
		Type:           in.Type,
		Breed:          in.Breed,
		Age:            in.Age,
		Size:           in.Size,
		Gender:         in.Gender,
		Color:          in.Color,
		Description:    in.Description,
		HealthInfo:     in.HealthInfo,
		AdoptionReason: in.AdoptionReason,
		IsAdopted:      in.IsAdopted,
		ImageURL:       in.ImageURL,
	}
	if err := h.animals.Create(r.Context(), animal); err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, animal)
}

// Update patches the animal loaded by the route guard. Moving the animal to
// another owner must still leave it updatable by the caller.
func (h *AnimalHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, ok := policy.Instance[models.Animal](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	var in animalPatch
	if !decode(w, r, &in) {
		return
	}

	v := validation.Violations{}
	changes := map[string]any{}
	setRequired(changes, "name", "name", in.Name, v)
	setRequired(changes, "type", "type", in.Type, v)
	setRequired(changes, "size", "size", in.Size, v)
	setRequired(changes, "gender", "gender", in.Gender, v)
	setRequired(changes, "isAdopted", "is_adopted", in.IsAdopted, v)
	setNullable(changes, "shelter_id", in.ShelterID)
	setNullable(changes, "user_id", in.UserID)
	setNullable(changes, "breed", in.Breed)
	setNullable(changes, "age", in.Age)
	setNullable(changes, "color", in.Color)
	setNullable(changes, "description", in.Description)
	setNullable(changes, "health_info", in.HealthInfo)
	setNullable(changes, "adoption_reason", in.AdoptionReason)
	setNullable(changes, "image_url", in.ImageURL)

	if in.Name.Set && !in.Name.Null {
		validation.Required("name", in.Name.Value, v)
	}
	if in.Type.Set && !in.Type.Null {
		validation.OneOf("type", in.Type.Value, models.AnimalTypes, v)
	}
	if in.Size.Set && !in.Size.Null {
		validation.OneOf("size", in.Size.Value, models.Sizes, v)
	}
	if in.Gender.Set && !in.Gender.Null {
		validation.OneOf("gender", in.Gender.Value, models.Genders, v)
	}
	if p := in.ShelterID.Ptr(); p != nil {
		validation.UUID("shelterId", *p, v)
	}
	if p := in.UserID.Ptr(); p != nil {
		validation.UUID("userId", *p, v)
	}
	if p := in.Age.Ptr(); p != nil {
		validation.NonNegativeInt("age", *p, v)
	}
	if !v.Empty() {
		invalid(w, v)
		return
	}

	if in.ShelterID.Set || in.UserID.Set {
		moved := *current
		if in.ShelterID.Set {
			moved.ShelterID = in.ShelterID.Ptr()
		}
		if in.UserID.Set {
			moved.UserID = in.UserID.Ptr()
		}
		if err := h.gate.Authorize(r.Context(), permissions.Animals, gate.ActionUpdate, moved.AccessRef()); err != nil {
			policy.WriteAuthzError(w, err, permissions.Animals, gate.ActionUpdate)
			return
		}
	}

	animal, err := h.animals.Update(r.Context(), current.ID, changes)
	if err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, animal)
}

func (h *AnimalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	current, ok := policy.Instance[models.Animal](r.Context())
	if !ok {
		httpx.JSONError(w, http.StatusNotFound, httpx.CodeNotFound, nil)
		return
	}
	if err := h.animals.Delete(r.Context(), current.ID); err != nil {
		serviceError(w, r, err)
		return
	}
	httpx.NoContent(w)
}

// LoadAnimal is the route guard loader for /animals/{id}.
func LoadAnimal(animals *services.AnimalService) policy.Loader {
	return policy.LoadByID(animals.Get, func(a *models.Animal) any { return a.AccessRef() })
}
