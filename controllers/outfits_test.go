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

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadinessEmptyCloset(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	req := test.NewJSONAuthRequest("GET", "/app/outfits/readiness", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response ReadinessResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, false, response.Ready)
	assert.Equal(t, int64(0), response.Total)
}

func TestReadinessFullCloset(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	test.FakeReadyWardrobe(db, user)

	req := test.NewJSONAuthRequest("GET", "/app/outfits/readiness", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response ReadinessResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	assert.Equal(t, true, response.Ready)
	assert.Equal(t, int64(5), response.Tops)
	assert.Equal(t, int64(3), response.Bottoms)
	assert.Equal(t, int64(2), response.Shoes)
	assert.Equal(t, int64(10), response.Total)
}

func TestGenerateOutfitsNotReady(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	test.FakeClothing(db, user, "top", "Lonely Top")

	req := test.NewJSONAuthRequest("POST", "/app/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), GenerateOutfitsIn{})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
}

func TestGenerateOutfitsOk(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	test.FakeReadyWardrobe(db, user)

	count := 3
	req := test.NewJSONAuthRequest("POST", "/app/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), GenerateOutfitsIn{Count: &count})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response struct {
		Outfits []OutfitResponse `json:"outfits"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.NotEmpty(t, response.Outfits)
	require.LessOrEqual(t, len(response.Outfits), 3)
	first := response.Outfits[0]
	assert.NotEmpty(t, first.Uid)
	assert.Greater(t, first.Score, 0.0)
	require.NotNil(t, first.Top)
	require.NotNil(t, first.Bottom)
	require.NotNil(t, first.Shoes)

	// best first
	for i := 1; i < len(response.Outfits); i++ {
		assert.GreaterOrEqual(t, response.Outfits[i-1].Score, response.Outfits[i].Score)
	}

	var persisted int64
	db.Model(&models.OutfitRecommendation{}).
		Where("user_account_id = ? AND source = ?", user.ID, "on_demand").Count(&persisted)
	assert.Equal(t, int64(len(response.Outfits)), persisted)
}

func TestGenerateOutfitsRequiredItemMissing(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	test.FakeReadyWardrobe(db, user)

	missing := uint(999999)
	req := test.NewJSONAuthRequest("POST", "/app/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), GenerateOutfitsIn{RequiredClothingID: &missing})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestGenerateOutfitsRequiredItemPinned(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	wardrobe := test.FakeReadyWardrobe(db, user)
	pinned := wardrobe[0] // a top

	count := 5
	param := GenerateOutfitsIn{Count: &count, RequiredClothingID: &pinned.ID}
	req := test.NewJSONAuthRequest("POST", "/app/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), param)
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response struct {
		Outfits []OutfitResponse `json:"outfits"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.NotEmpty(t, response.Outfits)
	for _, outfit := range response.Outfits {
		require.NotNil(t, outfit.Top)
		assert.Equal(t, pinned.ID, outfit.Top.ID)
	}
}

func TestGenerateOutfitsInvalidOccasion(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	test.FakeReadyWardrobe(db, user)

	req := test.NewJSONAuthRequest("POST", "/app/outfits/generate", strconv.FormatUint(uint64(user.ID), 10), GenerateOutfitsIn{Occasion: stringPtr("prom")})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestSuggestOutfitAI(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	dbUser := test.FakeUser(db, nil)
	wardrobe := test.FakeReadyWardrobe(db, dbUser)
	var topID, bottomID, shoesID uint
	for _, item := range wardrobe {
		switch item.Category {
		case "top":
			topID = item.ID
		case "bottom":
			bottomID = item.ID
		case "shoes":
			shoesID = item.ID
		}
	}
	suggestion := fmt.Sprintf(`{"top_id": %v, "bottom_id": %v, "shoes_id": %v, "rationale": "Simple and clean"}`, topID, bottomID, shoesID)
	e := SetupServer(db, test.GoogleServiceMock{}, &test.AWSProviderMock{},
		test.URLCacheMock{}, test.WeatherServiceMock{},
		test.MockLLMProcessor{SuggestResponse: suggestion}, nil, nil, nil)

	req := test.NewJSONAuthRequest("POST", "/app/outfits/suggest-ai", strconv.FormatUint(uint64(dbUser.ID), 10), SuggestOutfitAIIn{})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response OutfitResponse
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.NotNil(t, response.Top)
	assert.Equal(t, topID, response.Top.ID)
	assert.Equal(t, "ai", response.Source)
	require.NotNil(t, response.AIRationale)
	assert.Equal(t, "Simple and clean", *response.AIRationale)
	assert.Greater(t, response.Score, 0.0)

	var rec2 models.OutfitRecommendation
	db.First(&rec2, "user_account_id = ? AND source = ?", dbUser.ID, "ai")
	assert.NotNil(t, rec2.AIRationale)
}

func TestRateOutfit(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	recDb := models.OutfitRecommendation{
		Uid:           uuid.NewString(),
		UserAccountID: user.ID,
		CompanyID:     user.Memberships[0].CompanyID,
		Score:         0.7,
		Source:        "on_demand",
	}
	db.Create(&recDb)

	rating := 4
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/app/outfits/%s/rate", recDb.Uid), strconv.FormatUint(uint64(user.ID), 10), RateOutfitIn{Rating: &rating})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated models.OutfitRecommendation
	db.First(&updated, "uid = ?", recDb.Uid)
	require.NotNil(t, updated.UserRating)
	assert.Equal(t, 4, *updated.UserRating)
}

func TestRateOutfitInvalidRating(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	recDb := models.OutfitRecommendation{
		Uid:           uuid.NewString(),
		UserAccountID: user.ID,
		CompanyID:     user.Memberships[0].CompanyID,
		Source:        "on_demand",
	}
	db.Create(&recDb)

	rating := 9
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/app/outfits/%s/rate", recDb.Uid), strconv.FormatUint(uint64(user.ID), 10), RateOutfitIn{Rating: &rating})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}

func TestRateOutfitOtherUsers(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	stranger := test.FakeUserV2(db, nil, "Stranger", "stranger@closetly.app")

	recDb := models.OutfitRecommendation{
		Uid:           uuid.NewString(),
		UserAccountID: stranger.ID,
		CompanyID:     stranger.Memberships[0].CompanyID,
		Source:        "on_demand",
	}
	db.Create(&recDb)

	rating := 5
	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/app/outfits/%s/rate", recDb.Uid), strconv.FormatUint(uint64(user.ID), 10), RateOutfitIn{Rating: &rating})
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
}

func TestMarkOutfitWornBumpsWearCounts(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)
	top := test.FakeClothing(db, user, "top", "Worn Top")
	bottom := test.FakeClothing(db, user, "bottom", "Worn Bottom")
	shoes := test.FakeClothing(db, user, "shoes", "Worn Shoes")

	recDb := models.OutfitRecommendation{
		Uid:              uuid.NewString(),
		UserAccountID:    user.ID,
		CompanyID:        user.Memberships[0].CompanyID,
		TopClothingID:    &top.ID,
		BottomClothingID: &bottom.ID,
		ShoesClothingID:  &shoes.ID,
		Source:           "daily",
	}
	db.Create(&recDb)

	req := test.NewJSONAuthRequest("POST", fmt.Sprintf("/app/outfits/%s/worn", recDb.Uid), strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updatedRec models.OutfitRecommendation
	db.First(&updatedRec, "uid = ?", recDb.Uid)
	assert.NotNil(t, updatedRec.WornAt)

	var updatedTop models.Clothing
	db.First(&updatedTop, top.ID)
	assert.Equal(t, 1, updatedTop.WearCount)
	assert.NotNil(t, updatedTop.LastWornAt)
}

func TestOutfitHistoryFilters(t *testing.T) {
	db := dbhelper.SetupTestDB()
	cleaner := dbhelper.SetupCleaner(db)
	defer cleaner()
	e := testServer(db)
	user := test.FakeUser(db, nil)

	work := "work"
	rows := []models.OutfitRecommendation{
		{Uid: uuid.NewString(), UserAccountID: user.ID, CompanyID: user.Memberships[0].CompanyID, Source: "on_demand", Occasion: &work, GeneratedAt: 100},
		{Uid: uuid.NewString(), UserAccountID: user.ID, CompanyID: user.Memberships[0].CompanyID, Source: "daily", GeneratedAt: 200},
		{Uid: uuid.NewString(), UserAccountID: user.ID, CompanyID: user.Memberships[0].CompanyID, Source: "ai", GeneratedAt: 300},
	}
	for i := range rows {
		db.Create(&rows[i])
	}

	req := test.NewJSONAuthRequest("GET", "/app/outfits/history?source=daily", strconv.FormatUint(uint64(user.ID), 10), "")
	rec := httptest.NewRecorder()

	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var response struct {
		Outfits []OutfitResponse `json:"outfits"`
	}
	err := json.Unmarshal(rec.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Outfits, 1)
	assert.Equal(t, "daily", response.Outfits[0].Source)

	req2 := test.NewJSONAuthRequest("GET", "/app/outfits/history?occasion=work", strconv.FormatUint(uint64(user.ID), 10), "")
	rec2 := httptest.NewRecorder()

	e.ServeHTTP(rec2, req2)

	require.Equal(t, http.StatusOK, rec2.Code, rec2.Body.String())
	err = json.Unmarshal(rec2.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Outfits, 1)
	assert.Equal(t, "on_demand", response.Outfits[0].Source)

	// newest first with no filters
	req3 := test.NewJSONAuthRequest("GET", "/app/outfits/history", strconv.FormatUint(uint64(user.ID), 10), "")
	rec3 := httptest.NewRecorder()

	e.ServeHTTP(rec3, req3)

	require.Equal(t, http.StatusOK, rec3.Code, rec3.Body.String())
	err = json.Unmarshal(rec3.Body.Bytes(), &response)
	require.NoError(t, err)
	require.Len(t, response.Outfits, 3)
	assert.Equal(t, "ai", response.Outfits[0].Source)

	req4 := test.NewJSONAuthRequest("GET", "/app/outfits/history?occasion=prom", strconv.FormatUint(uint64(user.ID), 10), "")
	rec4 := httptest.NewRecorder()

	e.ServeHTTP(rec4, req4)

	assert.Equal(t, http.StatusBadRequest, rec4.Code, rec4.Body.String())
}
