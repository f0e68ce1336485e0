package controllers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"closetlyapi/models"
	"closetlyapi/services"
	"closetlyapi/tasks"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

const freePlanClothingLimit = 2

type CreateClothingIn struct {
	Name        string  `json:"name" validate:"omitempty,max=100"`
	FileName    *string `json:"file_name" validate:"required,max=200"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    string  `json:"category" validate:"required,oneof=top bottom shoes outerwear accessory"`
	AddToCloset *bool   `json:"add_to_closet" validate:"required"`
}

type UpdateClothingIn struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=500"`
	Category    *string `json:"category" validate:"omitempty,oneof=top bottom shoes outerwear accessory"`
	IsFavorite  *bool   `json:"is_favorite"`
}

type GenerateTryOnIn struct {
	TopClothingID    *uint `json:"top_clothing_id"`
	BottomClothingID *uint `json:"bottom_clothing_id"`
	ShoesClothingID  *uint `json:"shoes_clothing_id"`
	AccessoryID      *uint `json:"accessory_id"`

	Status string `json:"status" validate:"required,oneof=temporary in_closet"`
}

type ClothingResponse struct {
	ID               uint     `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Category         string   `json:"category"`
	Status           string   `json:"status"`
	ProcessingStatus string   `json:"processing_status"`
	Colors           []string `json:"colors"`
	Styles           []string `json:"styles"`
	Formality        int      `json:"formality"`
	WarmthLevel      int      `json:"warmth_level"`
	IsWaterproof     bool     `json:"is_waterproof"`
	IsFavorite       bool     `json:"is_favorite"`
	WearCount        int      `json:"wear_count"`
	LastWornAt       *int64   `json:"last_worn_at"`
	Uri              *string  `json:"uri,omitempty"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
}

type ClothingCreatedResponse struct {
	ClothingResponse ClothingResponse `json:"clothes"`
	FileUploadUrl    string           `json:"file_upload_url"`
}

type TryOnGenerationCreatedResponse struct {
	TryOnID              uint    `json:"try_on_id"`
	Status               string  `json:"status"`
	TryOnPreviewImageURL *string `json:"try_on_preview_image_url,omitempty"`
}

type ClothesListResponse struct {
	Tops        []ClothingResponse `json:"tops"`
	Bottoms     []ClothingResponse `json:"bottoms"`
	Shoes       []ClothingResponse `json:"shoes"`
	Outerwear   []ClothingResponse `json:"outerwear"`
	Accessories []ClothingResponse `json:"accessories"`
}

type ClothesController struct {
	Google      services.GoogleServiceProvider
	AWSService  services.AWSServiceProvider
	FirebaseApp *firebase.App
	URLCache    services.URLCacheServiceProvider
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.POST("/create", controller.CreateClothing)
	g.POST("/tryon", controller.GenerateTryOn)
	g.GET("/list", controller.ListClothes)
	g.PUT("/:id", controller.UpdateClothing)
	g.DELETE("/:id", controller.DeleteClothing)
	g.POST("/:id/worn", controller.MarkWorn)
}

func clothingToResponse(item models.Clothing, uri *string) ClothingResponse {
	return ClothingResponse{
		ID:               item.ID,
		Name:             item.Name,
		Description:      item.Description,
		Category:         item.Category,
		Status:           item.Status,
		ProcessingStatus: item.ProcessingStatus,
		Colors:           item.Colors,
		Styles:           item.Styles,
		Formality:        item.Formality,
		WarmthLevel:      item.WarmthLevel,
		IsWaterproof:     item.IsWaterproof,
		IsFavorite:       item.IsFavorite,
		WearCount:        item.WearCount,
		LastWornAt:       item.LastWornAt,
		Uri:              uri,
		CreatedAt:        item.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:        item.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// ownedClothing fetches a clothing item by path id scoped to the user's closet.
func ownedClothing(c echo.Context, db *gorm.DB, user models.UserAccount) (*models.Clothing, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id < 1 {
		return nil, echo.ErrBadRequest
	}
	var clothing models.Clothing
	r := db.Limit(1).Find(&clothing, "id = ? and company_id = ?", id, user.Memberships[0].CompanyID)
	if r.Error != nil {
		return nil, echo.ErrInternalServerError
	}
	if r.RowsAffected == 0 {
		return nil, echo.ErrNotFound
	}
	return &clothing, nil
}

func (controller *ClothesController) CreateClothing(c echo.Context) error {
	var req CreateClothingIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}

	if req.FileName == nil || *req.FileName == "" {
		sentry.CaptureException(fmt.Errorf("Image was not provided when creating clothing %s, user %v", req.Name, user.ID))
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Sorry, it seems image was not provided, please try again"})
	}
	company := user.Memberships[0].Company
	if string(company.Subscription) == "free" {
		var totalClothingCount int64
		if err := db.Model(&models.Clothing{}).Where("company_id = ?", company.ID).Count(&totalClothingCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothe data"})
		}
		fmt.Printf("[User %v] Free plan, clothe count: %v", user.ID, totalClothingCount)
		if totalClothingCount >= freePlanClothingLimit {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the free limit of total %v clothes, please subscribe", freePlanClothingLimit)})
		}
	}

	if company.EnforcedDailyClothingLimit != nil {
		var dailyClothingCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.Clothing{}).Where("company_id = ? AND DATE(created_at) = ?", company.ID, today).Count(&dailyClothingCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothe data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, clothe count: %v", user.ID, dailyClothingCount)
		if dailyClothingCount >= int64(*company.EnforcedDailyClothingLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily clothes. Please wait for the next day.", dailyClothingCount)})
		}
	}
	clothing := models.Clothing{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		OwnerID:     user.ID,
		CompanyID:   user.Memberships[0].CompanyID,
		Status:      "temporary",
		ImageStatus: "draft",
	}
	var bucketName = services.GetEnv("R2_BUCKET_NAME", "")
	var uploadUrl string
	var presignErr error
	// todo clean and map the same file name as in FE UI otherwise **FAIL**
	safeFileName := fmt.Sprintf("clothes/%s", *req.FileName)

	uploadUrl, presignErr = controller.AWSService.PresignLink(context.Background(), bucketName, safeFileName)
	clothing.ImageURL = &safeFileName
	if presignErr != nil {
		log.Printf("Unable to presign generate for %s!, %s", clothing.Name, presignErr)
		return c.JSON(http.StatusInternalServerError, echo.Map{
			"message": "Error while creating clothe with attachment",
		})
	}
	if err := db.Create(&clothing).Error; err != nil {
		sentry.CaptureException(err)
		return err
	}
	if req.AddToCloset != nil && *req.AddToCloset {
		clothing.Status = "in_closet"
		clothing.ProcessingStatus = "pending"
		if err := db.Save(&clothing).Error; err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Failed to update clothe status, please try again"})
		}
		task, err := tasks.NewClothingProcessingTask(clothing.ID)
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process clothing, please try again"})
		}
		info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
		if err != nil {
			sentry.CaptureException(err)
			return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not process clothing, please try again"})
		}
		fmt.Println("[Queue] Process clothing task submitted, Clothing ID: ", clothing.ID, " Task ID: ", info.ID)
	}

	response := ClothingCreatedResponse{
		ClothingResponse: clothingToResponse(clothing, nil),
		FileUploadUrl:    uploadUrl,
	}
	return c.JSON(http.StatusCreated, response)
}

func (controller *ClothesController) GenerateTryOn(c echo.Context) error {
	var req GenerateTryOnIn
	if err := c.Bind(&req); err != nil {
		fmt.Println(err)
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}
	if user.UserFullBodyImageURL == nil || *user.UserFullBodyImageURL == "" {
		return c.JSON(http.StatusForbidden, map[string]string{"error": "You have to set your avatar first before generating try-on"})
	}
	asynqClient, ok := c.Get("__asynqclient").(*asynq.Client)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Service is not available, please try again a bit later"})
	}
	company := user.Memberships[0].Company
	if string(company.Subscription) == "free" {
		var totalGenerationCount int64
		if err := db.Model(&models.ClothingTryonGeneration{}).Where("company_id = ?", company.ID).Count(&totalGenerationCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothe data"})
		}
		fmt.Printf("[User %v] Free plan, generation count: %v", user.ID, totalGenerationCount)
		if totalGenerationCount >= 2 {
			return c.JSON(http.StatusForbidden, map[string]string{"error": "You have reached the free limit of total 2 generations, please subscribe"})
		}
	}

	if company.EnforcedDailyTryOnLimit != nil {
		var dailyGenerationCount int64
		today := time.Now().UTC().Format("2006-01-02")
		if err := db.Model(&models.ClothingTryonGeneration{}).Where("company_id = ? AND DATE(created_at) = ?", company.ID, today).Count(&dailyGenerationCount).Error; err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to get clothe data"})
		}
		fmt.Printf("[User %v] Enforced daily limit, generation count: %v", user.ID, dailyGenerationCount)
		if dailyGenerationCount >= int64(*company.EnforcedDailyTryOnLimit) {
			return c.JSON(http.StatusForbidden, map[string]string{"error": fmt.Sprintf("You have reached the limit of %v daily generations. Please wait for the next day.", dailyGenerationCount)})
		}
	}
	try_on_generation := models.ClothingTryonGeneration{
		TopClothingID:          req.TopClothingID,
		BottomClothingID:       req.BottomClothingID,
		ShoesClothingID:        req.ShoesClothingID,
		AccessoryID:            req.AccessoryID,
		UserAccountID:          user.ID,
		CompanyID:              company.ID,
		GeneratedWithAvatarURL: *user.UserFullBodyImageURL,
		Status:                 "pending",
	}

	if err := db.Create(&try_on_generation).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to generate try-on, please try again"})
	}

	response := TryOnGenerationCreatedResponse{
		TryOnID:              try_on_generation.ID,
		Status:               try_on_generation.Status,
		TryOnPreviewImageURL: try_on_generation.TryOnPreviewImageURL,
	}

	task, err := tasks.NewTryOnGenerationTask(user.ID, try_on_generation.ID)
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start generation, please try again"})
	}
	info, err := asynqClient.Enqueue(task, asynq.MaxRetry(3), asynq.Queue("generate"))
	if err != nil {
		sentry.CaptureException(err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"message": "Sorry, could not start generation, please try again"})
	}
	fmt.Println("[Queue] Try on generation task submitted, Try ID: ", try_on_generation.ID, " Task ID: ", info.ID)

	return c.JSON(http.StatusCreated, response)
}

// populatePresignedClothingImages enriches raw clothing rows with presigned read
// URLs concurrently, with a manual R2 fallback for when the cache layer fails.
func (controller *ClothesController) populatePresignedClothingImages(ctx context.Context, clothes []models.Clothing) []ClothingResponse {
	if len(clothes) == 0 {
		return []ClothingResponse{}
	}

	var wg sync.WaitGroup
	processedResponses := make([]ClothingResponse, len(clothes))
	bucketName := services.GetEnv("R2_BUCKET_NAME", "")

	for i, clothingItem := range clothes {
		wg.Add(1)
		go func(index int, item models.Clothing) {
			defer wg.Done()

			var imageUrl string
			if item.ImageURL != nil && *item.ImageURL != "" {
				objectKey := *item.ImageURL

				url, err := controller.URLCache.GetReadURL(ctx, objectKey)
				if err == nil {
					imageUrl = url
				} else {
					log.Printf("CACHE WARNING: Cache system failed for key '%s': %v. Triggering manual R2 fallback.", objectKey, err)
					sentry.WithScope(func(scope *sentry.Scope) {
						scope.SetTag("failure_type", "cache_system")
						scope.SetExtra("objectKey", objectKey)
						sentry.CaptureException(err)
					})

					fallbackUrl, fallbackErr := controller.AWSService.GetPresignedR2FileReadURL(ctx, bucketName, objectKey)
					if fallbackErr != nil {
						log.Printf("CRITICAL: Manual R2 fallback also failed for key '%s': %v", objectKey, fallbackErr)
						sentry.CaptureException(fallbackErr)
						// imageUrl stays empty, the list request still succeeds
					} else {
						imageUrl = fallbackUrl
					}
				}
			}
			processedResponses[index] = clothingToResponse(item, &imageUrl)
		}(i, clothingItem)
	}

	wg.Wait()
	return processedResponses
}

func (controller *ClothesController) ListClothes(c echo.Context) error {
	user, ok := c.Get("currentUser").(models.UserAccount)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	db, ok := c.Get("__db").(*gorm.DB)
	if !ok {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Database connection error"})
	}

	var clothes []models.Clothing
	if err := db.Where("owner_id = ? AND company_id = ?", user.ID, user.Memberships[0].CompanyID).Find(&clothes).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to fetch clothes"})
	}
	processedResponses := controller.populatePresignedClothingImages(c.Request().Context(), clothes)

	response := ClothesListResponse{
		Tops:        []ClothingResponse{},
		Bottoms:     []ClothingResponse{},
		Shoes:       []ClothingResponse{},
		Outerwear:   []ClothingResponse{},
		Accessories: []ClothingResponse{},
	}

	for _, resp := range processedResponses {
		switch resp.Category {
		case "top":
			response.Tops = append(response.Tops, resp)
		case "bottom":
			response.Bottoms = append(response.Bottoms, resp)
		case "shoes":
			response.Shoes = append(response.Shoes, resp)
		case "outerwear":
			response.Outerwear = append(response.Outerwear, resp)
		case "accessory":
			response.Accessories = append(response.Accessories, resp)
		}
	}

	return c.JSON(http.StatusOK, response)
}

func (controller *ClothesController) UpdateClothing(c echo.Context) error {
	var req UpdateClothingIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	clothing, err := ownedClothing(c, db, user)
	if err != nil {
		return err
	}
	if req.Name != nil {
		clothing.Name = *req.Name
	}
	if req.Description != nil {
		clothing.Description = req.Description
	}
	if req.Category != nil {
		clothing.Category = *req.Category
	}
	if req.IsFavorite != nil {
		clothing.IsFavorite = *req.IsFavorite
	}
	if err := db.Save(clothing).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, clothingToResponse(*clothing, nil))
}

func (controller *ClothesController) DeleteClothing(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	clothing, err := ownedClothing(c, db, user)
	if err != nil {
		return err
	}
	if err := db.Delete(clothing).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	fmt.Printf("[User %v] deleted clothing %v\n", user.ID, clothing.ID)
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
	})
}

func (controller *ClothesController) MarkWorn(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)

	clothing, err := ownedClothing(c, db, user)
	if err != nil {
		return err
	}
	clothing.WearCount++
	clothing.LastWornAt = Int64Pointer(time.Now().UTC().Unix())
	if err := db.Save(clothing).Error; err != nil {
		sentry.CaptureException(err)
		return echo.ErrInternalServerError
	}
	return c.JSON(http.StatusOK, clothingToResponse(*clothing, nil))
}
