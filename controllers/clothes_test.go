package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"closetlyapi/dbhelper"
	"closetlyapi/models"
	"closetlyapi/test"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateClothingOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	reqBody := CreateClothingIn{
		Name:        "Test Clothing",
		Description: stringPtr("This is a test clothing item"),
		Category:    "top",
		FileName:    stringPtr("test-image.jpg"),
		AddToCloset: BoolPointer(false),
	}

	req := test.NewJSONAuthRequest("POST", "/app/clothes/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, "Expected status code 201 Created, got %d: %s", rec.Code, rec.Body.String())

	var response ClothingCreatedResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Equal(t, reqBody.Name, response.ClothingResponse.Name)
	require.Equal(t, reqBody.Description, response.ClothingResponse.Description)
	require.Equal(t, reqBody.Category, response.ClothingResponse.Category)
	require.NotEmpty(t, response.FileUploadUrl)

	var clothing models.Clothing
	db.First(&clothing, "name = ?", "Test Clothing")
	assert.Equal(t, "temporary", clothing.Status)
	assert.Equal(t, user.Memberships[0].CompanyID, clothing.CompanyID)
}

func TestCreateClothingInvalidInput(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	// category missing
	reqBody := CreateClothingIn{
		Name:        "Test Clothing",
		FileName:    stringPtr("test.jpg"),
		AddToCloset: BoolPointer(false),
	}

	req := test.NewJSONAuthRequest("POST", "/app/clothes/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Category")
}

func TestCreateClothingUnauthorized(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)

	reqBody := CreateClothingIn{
		Name:        "Test Clothing",
		Category:    "top",
		FileName:    stringPtr("test.jpg"),
		AddToCloset: BoolPointer(false),
	}
	req := test.NewJSONRequest("POST", "/app/clothes/create", reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateClothingFreePlanLimit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	test.FakeClothing(db, user, "top", "First")
	test.FakeClothing(db, user, "top", "Second")

	reqBody := CreateClothingIn{
		Name:        "One Too Many",
		Category:    "top",
		FileName:    stringPtr("test.jpg"),
		AddToCloset: BoolPointer(false),
	}
	req := test.NewJSONAuthRequest("POST", "/app/clothes/create", strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
}

func TestListClothesOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	top := test.FakeClothing(db, user, "top", "Test Top")
	bottom := test.FakeClothing(db, user, "bottom", "Test Bottom")

	req := test.NewJSONAuthRequest("GET", "/app/clothes/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, "Expected status code 200 OK, got %d: %s", rec.Code, rec.Body.String())

	var response ClothesListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 1)
	require.Len(t, response.Bottoms, 1)
	require.Equal(t, top.Name, response.Tops[0].Name)
	require.Equal(t, bottom.Name, response.Bottoms[0].Name)
	require.NotNil(t, response.Tops[0].Uri)
}

func TestListClothesEmpty(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	req := test.NewJSONAuthRequest("GET", "/app/clothes/list", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var response ClothesListResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Tops, 0)
	require.Len(t, response.Bottoms, 0)
	require.Len(t, response.Shoes, 0)
	require.Len(t, response.Outerwear, 0)
	require.Len(t, response.Accessories, 0)
}

func TestUpdateClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	clothing := test.FakeClothing(db, user, "top", "Old Name")

	reqBody := UpdateClothingIn{
		Name:       stringPtr("New Name"),
		IsFavorite: BoolPointer(true),
	}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/app/clothes/%v", clothing.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Clothing
	db.First(&updated, clothing.ID)
	assert.Equal(t, "New Name", updated.Name)
	assert.Equal(t, true, updated.IsFavorite)
	assert.Equal(t, "top", updated.Category)
}

func TestUpdateClothingOtherUsersItem(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	stranger := test.FakeUserV2(db, nil, "Stranger", "stranger@closetly.app")
	clothing := test.FakeClothing(db, stranger, "top", "Not Yours")

	reqBody := UpdateClothingIn{Name: stringPtr("Hijacked")}
	req := test.NewJSONAuthRequest("PUT", fmt.Sprintf("/app/clothes/%v", clothing.ID), strconv.FormatUint(uint64(user.ID), 10), reqBody)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestDeleteClothing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	clothing := test.FakeClothing(db, user, "shoes", "Worn Out Sneakers")

	req := test.NewJSONAuthRequest("DELETE", fmt.Sprintf("/app/clothes/%v", clothing.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var count int64
	db.Model(&models.Clothing{}).Where("id = ?", clothing.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestMarkClothingWorn(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	clothing := test.FakeClothing(db, user, "top", "Favorite Tee")

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/app/clothes/%v/worn", clothing.ID), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.Clothing
	db.First(&updated, clothing.ID)
	assert.Equal(t, 1, updated.WearCount)
	assert.NotNil(t, updated.LastWornAt)
}

func stringPtr(s string) *string {
	return &s
}
