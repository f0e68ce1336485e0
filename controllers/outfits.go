package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"closetlyapi/models"
	"closetlyapi/outfits"
	"closetlyapi/services"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const historyDefaultLimit = 30

type GenerateOutfitsIn struct {
	Occasion           *string  `json:"occasion" validate:"omitempty,occasion"`
	Count              *int     `json:"count" validate:"omitempty,min=1,max=50"`
	RequiredClothingID *uint    `json:"required_clothing_id"`
	Latitude           *float64 `json:"latitude"`
	Longitude          *float64 `json:"longitude"`
}

type SuggestOutfitAIIn struct {
	Occasion  *string  `json:"occasion" validate:"omitempty,occasion"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type RateOutfitIn struct {
	Rating *int `json:"rating" validate:"required,min=1,max=5"`
}

type OutfitResponse struct {
	Uid            string            `json:"uid"`
	Score          float64           `json:"score"`
	ColorScore     float64           `json:"color_score"`
	StyleScore     float64           `json:"style_score"`
	OccasionScore  *float64          `json:"occasion_score"`
	Occasion       *string           `json:"occasion"`
	WeatherSummary *string           `json:"weather_summary"`
	Source         string            `json:"source"`
	GeneratedAt    int64             `json:"generated_at"`
	WornAt         *int64            `json:"worn_at"`
	UserRating     *int              `json:"user_rating"`
	AIRationale    *string           `json:"ai_rationale"`
	Top            *ClothingResponse `json:"top"`
	Bottom         *ClothingResponse `json:"bottom"`
	Shoes          *ClothingResponse `json:"shoes"`
	Outerwear      *ClothingResponse `json:"outerwear"`
	Accessory      *ClothingResponse `json:"accessory"`
}

type ReadinessResponse struct {
	Ready       bool  `json:"ready"`
	Tops        int64 `json:"tops"`
	Bottoms     int64 `json:"bottoms"`
	Shoes       int64 `json:"shoes"`
	Outerwear   int64 `json:"outerwear"`
	Accessories int64 `json:"accessories"`
	Total       int64 `json:"total"`
}

type OutfitsController struct {
	AWSService  services.AWSServiceProvider
	URLCache    services.URLCacheServiceProvider
	Weather     services.WeatherServiceProvider
	LLM         services.LLMProcessor
	FirebaseApp *firebase.App
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.GET("/readiness", controller.Readiness)
	g.POST("/generate", controller.GenerateOutfits)
	g.POST("/suggest-ai", controller.SuggestOutfitAI)
	g.GET("/history", controller.History)
	g.POST("/:uid/rate", controller.RateOutfit)
	g.POST("/:uid/worn", controller.MarkOutfitWorn)
}

// closetForEngine loads the garments the engine is allowed to combine:
// everything in the closet, including items whose analysis hasn't landed yet.
func closetForEngine(db *gorm.DB, user models.UserAccount) ([]models.Clothing, error) {
	var clothes []models.Clothing
	err := db.Where("company_id = ? AND status = ?", user.Memberships[0].CompanyID, "in_closet").Find(&clothes).Error
	return clothes, err
}

func profileOf(user models.UserAccount) outfits.Profile {
	prefs := map[models.Style]int{}
	for _, pref := range user.StylePreferences {
		prefs[pref.Style] = pref.Score
	}
	return outfits.Profile{
		StylePreferences: prefs,
		FavoriteColors:   user.FavoriteColors,
	}
}

// resolveWeather fetches current conditions when coordinates were provided.
// A weather provider outage degrades to weather-free scoring, never an error.
func (controller *OutfitsController) resolveWeather(ctx context.Context, lat, lon *float64) (*outfits.Weather, *string) {
	if lat == nil || lon == nil || controller.Weather == nil {
		return nil, nil
	}
	report, err := controller.Weather.GetCurrentWeather(ctx, *lat, *lon)
	if err != nil {
		log.Printf("Weather fetch failed for %.3f,%.3f: %v", *lat, *lon, err)
		sentry.CaptureException(err)
		return nil, nil
	}
	summary := report.Summary()
	return &outfits.Weather{
		TemperatureF:     report.TemperatureF,
		PrecipitationPct: report.PrecipitationPct,
		HumidityPct:      report.HumidityPct,
		WindMph:          report.WindMph,
		FeelsLikeF:       report.FeelsLikeF,
	}, &summary
}

func (controller *OutfitsController) presignedURI(ctx context.Context, item *models.Clothing) *string {
	if item == nil || item.ImageURL == nil || *item.ImageURL == "" {
		return nil
	}
	url, err := controller.URLCache.GetReadURL(ctx, *item.ImageURL)
	if err != nil {
		bucketName := services.GetEnv("R2_BUCKET_NAME", "")
		url, err = controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, *item.ImageURL)
		if err != nil {
			log.Printf("CRITICAL: could not presign outfit image '%s': %v", *item.ImageURL, err)
			sentry.CaptureException(err)
			return nil
		}
	}
	return &url
}

func (controller *OutfitsController) itemResponse(ctx context.Context, item *models.Clothing) *ClothingResponse {
	if item == nil {
		return nil
	}
	resp := clothingToResponse(*item, controller.presignedURI(ctx, item))
	return &resp
}

func (controller *OutfitsController) recommendationResponse(ctx context.Context, rec models.OutfitRecommendation) OutfitResponse {
	return OutfitResponse{
		Uid:            rec.Uid,
		Score:          rec.Score,
		ColorScore:     rec.ColorScore,
		StyleScore:     rec.StyleScore,
		OccasionScore:  rec.OccasionScore,
		Occasion:       rec.Occasion,
		WeatherSummary: rec.WeatherSummary,
		Source:         rec.Source,
		GeneratedAt:    rec.GeneratedAt,
		WornAt:         rec.WornAt,
		UserRating:     rec.UserRating,
		AIRationale:    rec.AIRationale,
		Top:            controller.itemResponse(ctx, rec.TopClothing),
		Bottom:         controller.itemResponse(ctx, rec.BottomClothing),
		Shoes:          controller.itemResponse(ctx, rec.ShoesClothing),
		Outerwear:      controller.itemResponse(ctx, rec.Outerwear),
		Accessory:      controller.itemResponse(ctx, rec.Accessory),
	}
}

// toRecommendation snapshots one engine outfit as a persisted row.
func toRecommendation(outfit outfits.Outfit, user models.UserAccount, occasion *models.Occasion, weatherSummary *string, source string) models.OutfitRecommendation {
	rec := models.OutfitRecommendation{
		Uid:            outfit.Uid,
		UserAccountID:  user.ID,
		CompanyID:      user.Memberships[0].CompanyID,
		Score:          outfit.Score,
		ColorScore:     outfit.ColorScore,
		StyleScore:     outfit.StyleScore,
		OccasionScore:  outfit.OccasionScore,
		WeatherSummary: weatherSummary,
		Source:         source,
		GeneratedAt:    outfit.GeneratedAt.Unix(),
	}
	if occasion != nil {
		rec.Occasion = StrPointer(string(*occasion))
	}
	if outfit.Top != nil {
		rec.TopClothingID = UIntPointer(outfit.Top.ID)
		rec.TopClothing = outfit.Top
	}
	if outfit.Bottom != nil {
		rec.BottomClothingID = UIntPointer(outfit.Bottom.ID)
		rec.BottomClothing = outfit.Bottom
	}
	if outfit.Shoes != nil {
		rec.ShoesClothingID = UIntPointer(outfit.Shoes.ID)
		rec.ShoesClothing = outfit.Shoes
	}
	if outfit.Outerwear != nil {
		rec.OuterwearID = UIntPointer(outfit.Outerwear.ID)
		rec.Outerwear = outfit.Outerwear
	}
	if outfit.Accessory != nil {
		rec.AccessoryID = UIntPointer(outfit.Accessory.ID)
		rec.Accessory = outfit.Accessory
	}
	return rec
}

func (controller *OutfitsController) Readiness(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	var counts []struct {
		Category string
		Count    int64
	}
	err := db.Model(&models.Clothing{}).
		Select("category, count(*) as count").
		Where("company_id = ? AND status = ?", user.Memberships[0].CompanyID, "in_closet").
		Group("category").
		Scan(&counts).Error
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch closet data"})
	}
	response := ReadinessResponse{}
	for _, row := range counts {
		response.Total += row.Count
		switch row.Category {
		case outfits.CategoryTop:
			response.Tops = row.Count
		case outfits.CategoryBottom:
			response.Bottoms = row.Count
		case outfits.CategoryShoes:
			response.Shoes = row.Count
		case outfits.CategoryOuterwear:
			response.Outerwear = row.Count
		case outfits.CategoryAccessory:
			response.Accessories = row.Count
		}
	}
	response.Ready = response.Tops >= outfits.ReadyMinTops && response.Bottoms >= outfits.ReadyMinBottoms &&
		response.Shoes >= outfits.ReadyMinShoes && response.Total >= outfits.ReadyMinTotal
	return c.JSON(http.StatusOK, response)
}

func (controller *OutfitsController) GenerateOutfits(c echo.Context) error {
	var req GenerateOutfitsIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	clothes, err := closetForEngine(db, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch closet data"})
	}
	if !outfits.IsWardrobeReady(clothes) {
		return c.JSON(http.StatusConflict, echo.Map{
			"message": "Your closet needs a few more pieces before we can style you. Aim for 5 tops, 3 bottoms and 2 pairs of shoes.",
		})
	}

	opts := outfits.Options{}
	if req.Count != nil {
		opts.Count = *req.Count
	}
	var occasion *models.Occasion
	if req.Occasion != nil {
		o := models.Occasion(*req.Occasion)
		occasion = &o
		opts.Occasion = occasion
	}
	if req.RequiredClothingID != nil {
		for i := range clothes {
			if clothes[i].ID == *req.RequiredClothingID {
				opts.RequiredItem = &clothes[i]
				break
			}
		}
		if opts.RequiredItem == nil {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Required clothing item is not in your closet"})
		}
	}
	weather, weatherSummary := controller.resolveWeather(c.Request().Context(), req.Latitude, req.Longitude)
	opts.Weather = weather

	generated := outfits.Generate(clothes, profileOf(user), opts)
	fmt.Printf("[User %v] generated %v outfits, occasion: %v\n", user.ID, len(generated), req.Occasion)

	var responses []OutfitResponse
	for _, outfit := range generated {
		rec := toRecommendation(outfit, user, occasion, weatherSummary, "on_demand")
		if err := db.Omit("TopClothing", "BottomClothing", "ShoesClothing", "Outerwear", "Accessory").Create(&rec).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save recommendations"})
		}
		responses = append(responses, controller.recommendationResponse(c.Request().Context(), rec))
	}
	if responses == nil {
		responses = []OutfitResponse{}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"outfits":         responses,
		"weather_summary": weatherSummary,
	})
}

func (controller *OutfitsController) SuggestOutfitAI(c echo.Context) error {
	var req SuggestOutfitAIIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	company := user.Memberships[0].Company

	clothes, err := closetForEngine(db, user)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch closet data"})
	}
	if !outfits.IsWardrobeReady(clothes) {
		return c.JSON(http.StatusConflict, echo.Map{
			"message": "Your closet needs a few more pieces before we can style you. Aim for 5 tops, 3 bottoms and 2 pairs of shoes.",
		})
	}

	byID := map[uint]*models.Clothing{}
	var summaryLines []string
	for i := range clothes {
		item := &clothes[i]
		byID[item.ID] = item
		summaryLines = append(summaryLines, fmt.Sprintf("%v | %s | %s | %s | %s",
			item.ID, item.Category, item.Name, strings.Join(item.Colors, ","), strings.Join(item.Styles, ",")))
	}

	var occasionText string
	var occasion *models.Occasion
	if req.Occasion != nil {
		occasionText = *req.Occasion
		o := models.Occasion(*req.Occasion)
		occasion = &o
	}
	weather, weatherSummary := controller.resolveWeather(c.Request().Context(), req.Latitude, req.Longitude)
	var weatherText string
	if weatherSummary != nil {
		weatherText = *weatherSummary
	}

	modelName := services.Flash25
	if company.EnforcedLLMModel != nil {
		modelName = services.LLMModelName(*company.EnforcedLLMModel)
	}
	start := time.Now()
	llmResponse, err := controller.LLM.SuggestOutfit(strings.Join(summaryLines, "\n"), occasionText, weatherText, modelName)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not get a suggestion right now, please try again"})
	}
	fmt.Printf("[User %v] AI outfit suggestion took %v, tokens: %v\n", user.ID, time.Since(start), llmResponse.TotalTokenCount)

	var suggestion services.OutfitSuggestionResponse
	cleaned := strings.TrimSuffix(strings.TrimSpace(strings.ReplaceAll(llmResponse.Response, "```json", "")), "```")
	if err := json.Unmarshal([]byte(cleaned), &suggestion); err != nil {
		sentry.CaptureException(fmt.Errorf("AI suggestion parse failed for user %v: %w", user.ID, err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not get a suggestion right now, please try again"})
	}

	outfit := outfits.Outfit{
		Top:    byID[suggestion.TopID],
		Bottom: byID[suggestion.BottomID],
		Shoes:  byID[suggestion.ShoesID],
	}
	if outfit.Top == nil || outfit.Bottom == nil || outfit.Shoes == nil {
		sentry.CaptureMessage(fmt.Sprintf("AI suggestion referenced unknown clothes for user %v: %s", user.ID, llmResponse.Response))
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not get a suggestion right now, please try again"})
	}
	if suggestion.OuterwearID != nil {
		outfit.Outerwear = byID[*suggestion.OuterwearID]
	}
	if suggestion.AccessoryID != nil {
		outfit.Accessory = byID[*suggestion.AccessoryID]
	}
	// score the picked combination so AI rows rank alongside engine rows
	outfits.ScoreOutfit(&outfit, profileOf(user), outfits.Options{Weather: weather, Occasion: occasion})

	rec := toRecommendation(outfit, user, occasion, weatherSummary, "ai")
	rec.GeneratedAt = time.Now().UTC().Unix()
	rec.AIRationale = StrPointer(suggestion.Rationale)
	if err := db.Omit("TopClothing", "BottomClothing", "ShoesClothing", "Outerwear", "Accessory").Create(&rec).Error; err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to save recommendation"})
	}
	return c.JSON(http.StatusOK, controller.recommendationResponse(c.Request().Context(), rec))
}

func (controller *OutfitsController) History(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	limit := historyDefaultLimit
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 100 {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "limit must be between 1 and 100"})
		}
		limit = parsed
	}
	query := db.Preload("TopClothing").Preload("BottomClothing").Preload("ShoesClothing").
		Preload("Outerwear").Preload("Accessory").
		Where("user_account_id = ?", user.ID)
	if occasion := c.QueryParam("occasion"); occasion != "" {
		if !models.ValidateOccasionRaw(occasion) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "Unknown occasion"})
		}
		query = query.Where("occasion = ?", occasion)
	}
	if source := c.QueryParam("source"); source != "" {
		query = query.Where("source = ?", source)
	}
	var recommendations []models.OutfitRecommendation
	if err := query.Order("generated_at desc").Limit(limit).Find(&recommendations).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch outfit history"})
	}
	responses := []OutfitResponse{}
	for _, rec := range recommendations {
		responses = append(responses, controller.recommendationResponse(c.Request().Context(), rec))
	}
	return c.JSON(http.StatusOK, echo.Map{
		"outfits": responses,
	})
}

func ownedRecommendation(c echo.Context, db *gorm.DB, user models.UserAccount) (*models.OutfitRecommendation, error) {
	uid := c.Param("uid")
	if uid == "" {
		return nil, echo.ErrBadRequest
	}
	var rec models.OutfitRecommendation
	r := db.Limit(1).Find(&rec, "uid = ? and user_account_id = ?", uid, user.ID)
	if r.Error != nil {
		return nil, echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return nil, echo.ErrNotFound
	}
	return &rec, nil
}

func (controller *OutfitsController) RateOutfit(c echo.Context) error {
	var req RateOutfitIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	rec, err := ownedRecommendation(c, db, user)
	if err != nil {
		return err
	}
	rec.UserRating = req.Rating
	if err := db.Save(rec).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, echo.Map{
		"uid":    rec.Uid,
		"rating": rec.UserRating,
	})
}

// MarkOutfitWorn stamps the recommendation and bumps wear stats of each garment.
func (controller *OutfitsController) MarkOutfitWorn(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	rec, err := ownedRecommendation(c, db, user)
	if err != nil {
		return err
	}
	now := time.Now().UTC().Unix()
	rec.WornAt = &now
	if err := db.Save(rec).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	var itemIds []uint
	for _, id := range []*uint{rec.TopClothingID, rec.BottomClothingID, rec.ShoesClothingID, rec.OuterwearID, rec.AccessoryID} {
		if id != nil {
			itemIds = append(itemIds, *id)
		}
	}
	if len(itemIds) > 0 {
		err := db.Model(&models.Clothing{}).Where("id in (?)", itemIds).
			Updates(map[string]interface{}{
				"wear_count":   gorm.Expr("wear_count + 1"),
				"last_worn_at": now,
			}).Error
		if err != nil {
			sentry.CaptureException(err)
			return echo.ErrInternalServerError
		}
	}
	return c.JSON(http.StatusOK, echo.Map{
		"uid":     rec.Uid,
		"worn_at": rec.WornAt,
	})
}
