package services

import (
	"context"
	"errors"
	"testing"

	"github.com/diewo77/go-adopt/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	// every pooled connection would open its own empty :memory: database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Shelter{}, &models.ShelterManager{}, &models.Animal{}, &models.AdoptionRequest{}))
	return db
}

func strPtr(s string) *string { return &s }

func seedAnimals(t *testing.T, svc *AnimalService) {
	t.Helper()
	ctx := context.Background()
	animals := []models.Animal{
		{Name: "Rex", Type: models.AnimalTypeDog, Size: models.SizeBig, Gender: models.GenderMale, Breed: strPtr("Labrador")},
		{Name: "Mia", Type: models.AnimalTypeCat, Size: models.SizeSmall, Gender: models.GenderFemale, Color: strPtr("black")},
		{Name: "Bolt", Type: models.AnimalTypeDog, Size: models.SizeMedium, Gender: models.GenderMale, IsAdopted: true},
		{Name: "Luna", Type: models.AnimalTypeCat, Size: models.SizeSmall, Gender: models.GenderFemale, Description: strPtr("Loves dogs")},
	}
	for i := range animals {
		require.NoError(t, svc.Create(ctx, &animals[i]))
	}
}

func TestAnimalService_ListFilters(t *testing.T) {
	svc := NewAnimalService(setupTestDB(t))
	seedAnimals(t, svc)
	ctx := context.Background()

	page, err := svc.List(ctx, AnimalFilter{Type: models.AnimalTypeDog})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	adopted := true
	page, err = svc.List(ctx, AnimalFilter{Type: models.AnimalTypeDog, IsAdopted: &adopted})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Bolt", page.Data[0].Name)
}

func TestAnimalService_Search(t *testing.T) {
	svc := NewAnimalService(setupTestDB(t))
	seedAnimals(t, svc)

	// matches Rex by breed and Luna by description
	page, err := svc.List(context.Background(), AnimalFilter{QueryParams: QueryParams{Search: "LAB"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Rex", page.Data[0].Name)

	page, err = svc.List(context.Background(), AnimalFilter{QueryParams: QueryParams{Search: "dog"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Luna", page.Data[0].Name)
}

func TestAnimalService_Pagination(t *testing.T) {
	svc := NewAnimalService(setupTestDB(t))
	seedAnimals(t, svc)

	page, err := svc.List(context.Background(), AnimalFilter{QueryParams: QueryParams{
		Page: 2, PageSize: 3, OrderBy: "name", OrderDirection: "asc",
	}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Rex", page.Data[0].Name)

	page, err = svc.List(context.Background(), AnimalFilter{QueryParams: QueryParams{PageSize: 500, OrderBy: "bogus"}})
	require.NoError(t, err)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Equal(t, 1, page.Page)
}

func TestAnimalService_ListPublic(t *testing.T) {
	svc := NewAnimalService(setupTestDB(t))
	seedAnimals(t, svc)

	page, err := svc.ListPublic(context.Background(), AnimalFilter{Type: models.AnimalTypeDog})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "Rex", page.Data[0].Name)
}

func TestAnimalService_UpdateDelete(t *testing.T) {
	svc := NewAnimalService(setupTestDB(t))
	ctx := context.Background()
	a := &models.Animal{Name: "Rex", Type: models.AnimalTypeDog, Size: models.SizeBig, Gender: models.GenderMale}
	require.NoError(t, svc.Create(ctx, a))

	updated, err := svc.Update(ctx, a.ID, map[string]any{"name": "Max", "breed": nil})
	require.NoError(t, err)
	assert.Equal(t, "Max", updated.Name)
	assert.Nil(t, updated.Breed)

	_, err = svc.Update(ctx, "missing", map[string]any{"name": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, svc.Delete(ctx, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, a.ID), ErrNotFound)
}

func TestAdoptionRequestService(t *testing.T) {
	db := setupTestDB(t)
	svc := NewAdoptionRequestService(db)
	ctx := context.Background()

	for _, r := range []*models.AdoptionRequest{
		{UserID: "u1", AnimalID: "a1", Message: strPtr("I have a garden")},
		{UserID: "u1", AnimalID: "a2", Status: models.StatusApproved},
		{UserID: "u2", AnimalID: "a1"},
	} {
		require.NoError(t, svc.Create(ctx, r))
	}

	page, err := svc.List(ctx, AdoptionRequestFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(ctx, AdoptionRequestFilter{Status: string(models.StatusPending)})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Total)

	page, err = svc.List(ctx, AdoptionRequestFilter{QueryParams: QueryParams{Search: "garden"}})
	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, "a1", page.Data[0].AnimalID)
}

func TestShelterService_UniqueEmail(t *testing.T) {
	svc := NewShelterService(setupTestDB(t))
	ctx := context.Background()
	s := func() *models.Shelter {
		return &models.Shelter{Name: "Casa", Email: "casa@example.com", Phone: "1", Address: "Rua 1", City: "Recife", State: "PE", ZipCode: "50000"}
	}
	require.NoError(t, svc.Create(ctx, s()))
	err := svc.Create(ctx, s())
	assert.True(t, errors.Is(err, ErrConflict), "expected conflict, got %v", err)
}

func TestShelterService_DeleteRemovesManagers(t *testing.T) {
	db := setupTestDB(t)
	shelters := NewShelterService(db)
	managers := NewShelterManagerService(db)
	ctx := context.Background()

	sh := &models.Shelter{Name: "Casa", Email: "casa@example.com", Phone: "1", Address: "Rua 1", City: "Recife", State: "PE", ZipCode: "50000"}
	require.NoError(t, shelters.Create(ctx, sh))
	_, err := managers.Add(ctx, sh.ID, "u1")
	require.NoError(t, err)

	require.NoError(t, shelters.Delete(ctx, sh.ID))
	ids, err := managers.ShelterIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestShelterService_DeleteDetachesAnimals(t *testing.T) {
	db := setupTestDB(t)
	shelters := NewShelterService(db)
	animals := NewAnimalService(db)
	ctx := context.Background()

	sh := &models.Shelter{Name: "Lar", Email: "lar@example.com", Phone: "1", Address: "Rua 2", City: "Recife", State: "PE", ZipCode: "50000"}
	require.NoError(t, shelters.Create(ctx, sh))
	a := &models.Animal{ShelterID: &sh.ID, Name: "Rex", Type: models.AnimalTypeDog, Size: models.SizeBig, Gender: models.GenderMale}
	require.NoError(t, animals.Create(ctx, a))

	require.NoError(t, shelters.Delete(ctx, sh.ID))
	got, err := animals.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ShelterID, "animals of a deleted shelter lose the link")
}

func TestShelterManagerService(t *testing.T) {
	svc := NewShelterManagerService(setupTestDB(t))
	ctx := context.Background()

	_, err := svc.Add(ctx, "s2", "u1")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "u1")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "s1", "u1")
	assert.ErrorIs(t, err, ErrConflict)

	ids, err := svc.ShelterIDs(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ids)

	links, err := svc.ListForShelter(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, links, 1)

	require.NoError(t, svc.Remove(ctx, "s1", "u1"))
	assert.ErrorIs(t, svc.Remove(ctx, "s1", "u1"), ErrNotFound)
}

func TestUserService(t *testing.T) {
	svc := NewUserService(setupTestDB(t))
	ctx := context.Background()

	u, err := svc.Register(ctx, " Ana@Example.com ", "Ana", "secret123", "donor")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "secret123", u.Password)

	_, err = svc.Register(ctx, "ana@example.com", "Ana", "other", "adopter")
	assert.ErrorIs(t, err, ErrConflict)

	got, err := svc.Authenticate(ctx, "ANA@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ana@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Authenticate(ctx, "nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	assert.True(t, svc.Exists(ctx, u.ID))
	assert.False(t, svc.Exists(ctx, "missing"))

	updated, err := svc.SetRole(ctx, u.ID, "shelterManager")
	require.NoError(t, err)
	assert.Equal(t, "shelterManager", updated.Role)
}

func TestUserService_ExistsKeepsSessionOnDBError(t *testing.T) {
	db := setupTestDB(t)
	svc := NewUserService(db)
	ctx := context.Background()

	assert.False(t, svc.Exists(ctx, "missing"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
	assert.True(t, svc.Exists(ctx, "missing"), "a failed lookup must not log the caller out")
}

func TestOrderFields(t *testing.T) {
	assert.Contains(t, AnimalOrderFields(), "isAdopted")
	assert.Contains(t, AdoptionRequestOrderFields(), "requestedAt")
	assert.Contains(t, ShelterOrderFields(), "zipCode")
}
