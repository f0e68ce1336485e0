package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"closetlyapi/languageutil"
	"closetlyapi/models"
	"closetlyapi/outfits"
	"closetlyapi/services"

	firebase "firebase.google.com/go/v4"
	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

type TryOnGenerationPayload struct {
	UserID  uint `json:"user_id"`
	TryOnID uint `json:"try_on_id"`
}
type ClothingGenerationPayload struct {
	ClothingId uint `json:"clothing_id"`
}
type AvatarGenerationPayload struct {
	UserID uint `json:"user_id"`
}

func NewTryOnGenerationTask(userID uint, tryOnID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(TryOnGenerationPayload{UserID: userID, TryOnID: tryOnID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:tryon", payload), nil

}

func NewClothingProcessingTask(clothingId uint) (*asynq.Task, error) {
	payload, err := json.Marshal(ClothingGenerationPayload{ClothingId: clothingId})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:process_clothing", payload), nil

}

func NewFullBodyAvatarGenerateTask(userID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(AvatarGenerationPayload{UserID: userID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask("generate:avatar", payload), nil

}

// NewDailyOutfitAlertTask carries no payload, the handler walks every opted-in
// user itself.
func NewDailyOutfitAlertTask() (*asynq.Task, error) {
	return asynq.NewTask("outfits:daily_alert", nil), nil
}

// getFileFromR2 downloads one object from the wardrobe bucket. label is the
// log prefix of the owning entity.
func getFileFromR2(awsService services.AWSServiceProvider, label string, fileKey string) ([]byte, string, error) {
	bucketName := os.Getenv("R2_BUCKET_NAME")
	fmt.Printf("%s Request presigned download url for %s.. ", label, fileKey)
	fileUrl, err := awsService.GetPresignedR2FileReadURL(context.TODO(), bucketName, fileKey)
	fileName := filepath.Base(fileKey)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("%s Error on getting presigned URL for file %s", label, fileKey))
		return nil, fileName, err
	}
	fmt.Printf("Downloading... %s\n", fileUrl)
	fileBytes, err := services.ReadFileFromUrl(fileUrl)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("%s Error on downloading file %s: %v", label, fileKey, err))
		return nil, fileName, err
	}

	return fileBytes, fileName, nil
}

func cleanAIResponseText(text string) string {
	cleanContent := strings.ReplaceAll(text, "```json", "")
	cleanContent = strings.TrimSuffix(strings.TrimSpace(cleanContent), "```")
	return cleanContent
}

var clothingCategories = map[string]bool{
	"top":       true,
	"bottom":    true,
	"shoes":     true,
	"outerwear": true,
	"accessory": true,
}

// HandleClothingProcessingTask runs the vision analysis over one garment photo
// and fills the annotation columns the recommendation engine reads.
func HandleClothingProcessingTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, llmProcessor services.LLMProcessor,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload ClothingGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Clothing: %v] Start Processing\n", payload.ClothingId)
	var clothing models.Clothing
	res := db.Joins("Company").First(&clothing, payload.ClothingId)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving clothing for processing %v", payload.ClothingId))
		return res.Error
	}
	if clothing.ImageURL == nil || *clothing.ImageURL == "" {
		saveClothingProcessingFail(db, clothing, "The garment photo is missing, please upload it again", false)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Image URL is nil", payload.ClothingId))
		return fmt.Errorf("[Clothing: %v] Image URL is nil", payload.ClothingId)
	}
	clothing.ProcessingStatus = "generating"
	if err := db.Save(&clothing).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on marking clothing as generating: %v", payload.ClothingId, err))
		return err
	}

	label := fmt.Sprintf("[Clothing: %v]", clothing.ID)
	fileBytes, fileName, err := getFileFromR2(awsService, label, *clothing.ImageURL)
	if err != nil {
		saveClothingProcessingFail(db, clothing, "Failed to read the garment photo, please upload it again", false)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on getting file %s: %v", payload.ClothingId, *clothing.ImageURL, err))
		return err
	}
	fmt.Printf("[Clothing: %v] Downloaded file size: %d bytes\n", payload.ClothingId, len(fileBytes))

	normalized, err := services.NormalizeGarmentImage(fileBytes)
	if err != nil {
		// analysis still works on the raw upload, just slower and pricier
		fmt.Printf("[Clothing: %v] Image normalization failed, using original: %v\n", payload.ClothingId, err)
		normalized = fileBytes
	}
	filePath, err := services.CreateTempFile(normalized, fileName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on creating temp file %s: %v", payload.ClothingId, fileName, err))
		return err
	}
	defer os.Remove(filePath)

	model := services.Flash25
	if clothing.Company.EnforcedLLMModel != nil {
		model = services.LLMModelName(*clothing.Company.EnforcedLLMModel)
		fmt.Printf("[Clothing: %v] [ENFORCE MODEL] Using enforced model: %s\n", payload.ClothingId, model.String())
	}
	fmt.Printf("[Clothing: %v] Analyzing with model %s..\n", payload.ClothingId, model.String())

	analysisResponse, err := llmProcessor.ProcessClothing(filePath, model)
	if err != nil {
		saveClothingProcessingFail(db, clothing, "We could not analyze this garment, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on analyzing garment %s: %v", payload.ClothingId, *clothing.ImageURL, err))
		return err
	}
	if analysisResponse == nil {
		saveClothingProcessingFail(db, clothing, "We could not analyze this garment, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Response is nil but no error provided on analyzing %s", payload.ClothingId, *clothing.ImageURL))
		return fmt.Errorf("[Clothing: %v] Response is nil but no error provided on analyzing %s", payload.ClothingId, *clothing.ImageURL)
	}
	fmt.Printf("[Clothing: %v] Token usage: input %v output %v total %v\n", payload.ClothingId,
		analysisResponse.InputTokenCount, analysisResponse.OutputTokenCount, analysisResponse.TotalTokenCount)

	var analysis services.ClothingAnalysisResponse
	cleaned := cleanAIResponseText(analysisResponse.Response)
	if err := json.Unmarshal([]byte(cleaned), &analysis); err != nil {
		saveClothingProcessingFail(db, clothing, "We could not analyze this garment, please try again", true)
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on parsing analysis response: %v, text: %s", payload.ClothingId, err, cleaned))
		return err
	}
	if strings.Contains(analysis.Name, "UNKNOWN_ITEM") || (analysis.Category != "" && !clothingCategories[analysis.Category]) {
		saveClothingProcessingFail(db, clothing, "We could not recognize a clothing item in this photo, please try a clearer one", false)
		fmt.Printf("[Clothing: %v] Not recognized as a garment: name %q category %q\n", payload.ClothingId, analysis.Name, analysis.Category)
		return nil
	}

	applyClothingAnalysis(&clothing, analysis)
	clothing.ProcessingStatus = "completed"
	clothing.ProcessErrorMessage = nil
	if err := db.Save(&clothing).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Clothing: %v] Error on saving analyzed clothing: %v", payload.ClothingId, err))
		return err
	}
	fmt.Printf("[Clothing: %v] Processing completed\n", payload.ClothingId)

	services.SendNotification(fbApp, db, clothing.OwnerID, "Your garment is ready 👕",
		fmt.Sprintf("%s is analyzed and ready for outfits", clothing.Name),
		map[string]string{"clothing_id": fmt.Sprintf("%d", clothing.ID), "type": "clothing_processed"})
	return nil
}

// applyClothingAnalysis copies model output into the garment, dropping values
// outside the documented ranges. The user supplied name and category win over
// the model's guess.
func applyClothingAnalysis(clothing *models.Clothing, analysis services.ClothingAnalysisResponse) {
	if clothing.Name == "" && analysis.Name != "" {
		clothing.Name = analysis.Name
	}
	if clothing.Description == nil && analysis.Description != "" {
		clothing.Description = services.StrPointer(analysis.Description)
	}
	colors := []string{}
	for _, color := range analysis.Colors {
		color = strings.ToLower(strings.TrimSpace(color))
		if color != "" {
			colors = append(colors, color)
		}
	}
	clothing.Colors = pq.StringArray(colors)
	styles := []string{}
	for _, style := range analysis.Styles {
		style = strings.ToLower(strings.TrimSpace(style))
		if models.ValidateStyleRaw(style) {
			styles = append(styles, style)
		}
	}
	clothing.Styles = pq.StringArray(styles)
	if analysis.Formality >= 1 && analysis.Formality <= 3 {
		clothing.Formality = analysis.Formality
	}
	if analysis.WarmthLevel >= 1 && analysis.WarmthLevel <= 5 {
		clothing.WarmthLevel = analysis.WarmthLevel
	}
	clothing.IsWaterproof = analysis.IsWaterproof

	occasionScores := map[models.Occasion]int{}
	for occasion, score := range analysis.OccasionScores {
		occasion = strings.ToLower(strings.TrimSpace(occasion))
		if !models.ValidateOccasionRaw(occasion) || score < 0 || score > 10 {
			continue
		}
		occasionScores[models.Occasion(occasion)] = score
	}
	if len(occasionScores) > 0 {
		clothing.SetOccasionScores(occasionScores)
	}
}

// HandleTryOnGenerationTask renders the selected garments onto the user's full
// body avatar and uploads the preview back to the wardrobe bucket.
func HandleTryOnGenerationTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, llmProcessor services.LLMProcessor,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload TryOnGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[TryOn: %v] Start Generation\n", payload.TryOnID)
	startedAt := time.Now()

	var generation models.ClothingTryonGeneration
	res := db.Preload("TopClothing").Preload("BottomClothing").Preload("ShoesClothing").
		Preload("Accessory").First(&generation, payload.TryOnID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving try-on generation %v", payload.TryOnID))
		return res.Error
	}

	label := fmt.Sprintf("[TryOn: %v]", generation.ID)
	avatarBytes, avatarName, err := getFileFromR2(awsService, label, generation.GeneratedWithAvatarURL)
	if err != nil {
		saveTryOnGenerationFail(db, generation, "Failed to read your avatar photo, please set it again", false)
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on getting avatar file %s: %v", payload.TryOnID, generation.GeneratedWithAvatarURL, err))
		return err
	}
	avatarPath, err := services.CreateTempFile(avatarBytes, avatarName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on creating avatar temp file: %v", payload.TryOnID, err))
		return err
	}
	defer os.Remove(avatarPath)

	garments := []*models.Clothing{generation.TopClothing, generation.BottomClothing,
		generation.ShoesClothing, generation.Accessory}
	garmentPaths := []string{}
	defer func() {
		for _, path := range garmentPaths {
			os.Remove(path)
		}
	}()
	for _, garment := range garments {
		if garment == nil || garment.ImageURL == nil || *garment.ImageURL == "" {
			continue
		}
		garmentBytes, garmentName, err := getFileFromR2(awsService, label, *garment.ImageURL)
		if err != nil {
			saveTryOnGenerationFail(db, generation, "Failed to read a garment photo, please try again", true)
			sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on getting garment file %s: %v", payload.TryOnID, *garment.ImageURL, err))
			return err
		}
		garmentPath, err := services.CreateTempFile(garmentBytes, fmt.Sprintf("%d_%s", garment.ID, garmentName))
		if err != nil {
			sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on creating garment temp file: %v", payload.TryOnID, err))
			return err
		}
		garmentPaths = append(garmentPaths, garmentPath)
	}
	if len(garmentPaths) == 0 {
		saveTryOnGenerationFail(db, generation, "No garment photos available for this try-on", false)
		return fmt.Errorf("[TryOn: %v] No garment photos available", payload.TryOnID)
	}

	model := services.Flash25Image
	fmt.Printf("[TryOn: %v] Generating with model %s, %d garments..\n", payload.TryOnID, model.String(), len(garmentPaths))
	generationResponse, err := llmProcessor.GenerateTryOn(avatarPath, garmentPaths, model)
	if err != nil {
		saveTryOnGenerationFail(db, generation, "We could not generate the try-on, please try again", true)
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on generating try-on: %v", payload.TryOnID, err))
		return err
	}
	if generationResponse == nil || len(generationResponse.Images) == 0 {
		saveTryOnGenerationFail(db, generation, "We could not generate the try-on, please try again", true)
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] No image in generation response", payload.TryOnID))
		return fmt.Errorf("[TryOn: %v] No image in generation response", payload.TryOnID)
	}

	bucketName := os.Getenv("R2_BUCKET_NAME")
	previewKey := fmt.Sprintf("tryons/%v/%s.png", generation.UserAccountID, uuid.NewString())
	uploadUrl, err := awsService.PresignLink(context.TODO(), bucketName, previewKey)
	if err != nil {
		saveTryOnGenerationFail(db, generation, "We could not save the try-on preview, please try again", true)
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on presigning preview upload: %v", payload.TryOnID, err))
		return err
	}
	if _, status, err := awsService.UploadToPresignedURL(ctx, bucketName, uploadUrl, generationResponse.Images[0]); err != nil {
		saveTryOnGenerationFail(db, generation, "We could not save the try-on preview, please try again", true)
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on uploading preview, status %d: %v", payload.TryOnID, status, err))
		return err
	}

	duration := time.Since(startedAt).Seconds()
	modelString := model.String()
	generation.TryOnPreviewImageURL = &previewKey
	generation.Status = "completed"
	generation.Duration = &duration
	generation.GenerationErrorMessage = nil
	generation.LLMModel = &modelString
	generation.LLMInputTokenCount = services.Int32Pointer(generationResponse.InputTokenCount)
	generation.LLMOutputTokenCount = services.Int32Pointer(generationResponse.OutputTokenCount)
	generation.LLMTotalTokenCount = services.Int32Pointer(generationResponse.TotalTokenCount)
	generation.LLMThoughtsTokenCount = services.Int32Pointer(generationResponse.ThoughtsTokenCount)
	if generationResponse.Thoughts != "" {
		generation.LLMThoughts = services.StrPointer(generationResponse.Thoughts)
	}
	if err := db.Save(&generation).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[TryOn: %v] Error on saving completed generation: %v", payload.TryOnID, err))
		return err
	}
	fmt.Printf("[TryOn: %v] Generation completed in %.1fs\n", payload.TryOnID, duration)

	services.SendNotification(fbApp, db, generation.UserAccountID, "Your try-on is ready ✨",
		"Open the app to see how it looks on you",
		map[string]string{"try_on_id": fmt.Sprintf("%d", generation.ID), "type": "try_on_completed"})
	return nil
}

// HandleFullBodyAvatarTask validates and cleans up the user's uploaded full
// body photo so try-ons have a consistent base image.
func HandleFullBodyAvatarTask(
	ctx context.Context, t *asynq.Task, db *gorm.DB, llmProcessor services.LLMProcessor,
	awsService services.AWSServiceProvider, fbApp *firebase.App) error {
	google_key := os.Getenv("GOOGLE_API_KEY")
	if google_key == "" {
		sentry.CaptureException(fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload())))
		return fmt.Errorf("[QUEUE] %s Google API key is not set", string(t.Payload()))
	}
	var payload AvatarGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return err
	}
	fmt.Printf("[Avatar: user %v] Start Processing\n", payload.UserID)

	var user models.UserAccount
	res := db.First(&user, payload.UserID)
	if res.Error != nil {
		sentry.CaptureException(fmt.Errorf("[QUEUE] Error on retrieving user for avatar processing %v", payload.UserID))
		return res.Error
	}
	if user.UserFullBodyImageURL == nil || *user.UserFullBodyImageURL == "" {
		saveAvatarProcessingFail(db, user, "The avatar photo is missing, please upload it again")
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Full body image URL is nil", payload.UserID))
		return fmt.Errorf("[Avatar: user %v] Full body image URL is nil", payload.UserID)
	}

	label := fmt.Sprintf("[Avatar: user %v]", user.ID)
	avatarBytes, avatarName, err := getFileFromR2(awsService, label, *user.UserFullBodyImageURL)
	if err != nil {
		saveAvatarProcessingFail(db, user, "Failed to read your photo, please upload it again")
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Error on getting file %s: %v", payload.UserID, *user.UserFullBodyImageURL, err))
		return err
	}
	avatarPath, err := services.CreateTempFile(avatarBytes, avatarName)
	if err != nil {
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Error on creating temp file: %v", payload.UserID, err))
		return err
	}
	defer os.Remove(avatarPath)

	model := services.Flash25Image
	fmt.Printf("[Avatar: user %v] Processing with model %s..\n", payload.UserID, model.String())
	avatarResponse, err := llmProcessor.ProcessAvatarTask(avatarPath, model)
	if err != nil {
		saveAvatarProcessingFail(db, user, "We could not process your photo, please try a different one")
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Error on processing avatar: %v", payload.UserID, err))
		return err
	}
	if avatarResponse == nil || len(avatarResponse.Images) == 0 {
		if avatarResponse != nil && strings.Contains(avatarResponse.Response, "NO_PERSON") {
			saveAvatarProcessingFail(db, user, "We could not find a person in this photo, please upload a full body photo")
			fmt.Printf("[Avatar: user %v] No person detected in photo\n", payload.UserID)
			return nil
		}
		saveAvatarProcessingFail(db, user, "We could not process your photo, please try a different one")
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] No image in avatar response", payload.UserID))
		return fmt.Errorf("[Avatar: user %v] No image in avatar response", payload.UserID)
	}

	// overwrite the upload in place, the read path keeps presigning the same key
	bucketName := os.Getenv("R2_BUCKET_NAME")
	uploadUrl, err := awsService.PresignLink(context.TODO(), bucketName, *user.UserFullBodyImageURL)
	if err != nil {
		saveAvatarProcessingFail(db, user, "We could not save your avatar, please try again")
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Error on presigning avatar upload: %v", payload.UserID, err))
		return err
	}
	if _, status, err := awsService.UploadToPresignedURL(ctx, bucketName, uploadUrl, avatarResponse.Images[0]); err != nil {
		saveAvatarProcessingFail(db, user, "We could not save your avatar, please try again")
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Error on uploading avatar, status %d: %v", payload.UserID, status, err))
		return err
	}

	user.FullBodyAvatarSet = true
	user.FullBodyAvatarStatus = "completed"
	user.FullBodyAvatarProcessingErrorMessage = nil
	if err := db.Save(&user).Error; err != nil {
		sentry.CaptureException(fmt.Errorf("[Avatar: user %v] Error on saving completed avatar: %v", payload.UserID, err))
		return err
	}
	fmt.Printf("[Avatar: user %v] Processing completed\n", payload.UserID)

	services.SendNotification(fbApp, db, user.ID, "Your avatar is ready 🧍",
		"You can now try outfits on your avatar",
		map[string]string{"type": "avatar_completed"})
	return nil
}

func saveClothingProcessingFail(db *gorm.DB, clothing models.Clothing, msg string, shouldRetry bool) error {
	clothing.ProcessRetryTimes = clothing.ProcessRetryTimes + 1
	clothing.ProcessErrorMessage = &msg
	if !shouldRetry || clothing.ProcessRetryTimes >= 3 {

		clothing.ProcessingStatus = "failed"
	}
	tx := db.Save(&clothing)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Clothing %v] Error on saving clothing for failed status", clothing.ID))
		return tx.Error
	}
	return nil
}

func saveTryOnGenerationFail(db *gorm.DB, generation models.ClothingTryonGeneration, msg string, shouldRetry bool) error {
	generation.GenerationRetryTimes = generation.GenerationRetryTimes + 1
	generation.GenerationErrorMessage = &msg
	if !shouldRetry || generation.GenerationRetryTimes >= 3 {

		generation.Status = "failed"
	}
	tx := db.Save(&generation)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail TryOn %v] Error on saving generation for failed status", generation.ID))
		return tx.Error
	}
	return nil
}

func saveAvatarProcessingFail(db *gorm.DB, user models.UserAccount, msg string) error {
	user.FullBodyAvatarStatus = "failed"
	user.FullBodyAvatarProcessingErrorMessage = &msg
	tx := db.Save(&user)
	if tx.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Fail Avatar user %v] Error on saving user for failed avatar status", user.ID))
		return tx.Error
	}
	return nil
}

// HandleDailyOutfitAlertTask pushes one fresh outfit to every opted-in user.
// Scheduled every morning via the worker cron.
func HandleDailyOutfitAlertTask(ctx context.Context, t *asynq.Task, db *gorm.DB, fbApp *firebase.App) error {

	fmt.Printf("[Daily Outfit] Processing for all users\n")

	var users []models.UserAccount
	result := db.Preload("Memberships").Preload("StylePreferences").
		Where("banned = ? AND receive_notifications = ? AND daily_outfit_alerts_enabled = ?", false, true, true).
		Find(&users)
	if result.Error != nil {
		sentry.CaptureException(fmt.Errorf("[Daily Outfit] Error fetching users: %v", result.Error))
		return result.Error
	}

	fmt.Printf("[Daily Outfit] Found %d users to send outfits\n", len(users))

	for _, user := range users {
		err := sendDailyOutfitToUser(ctx, db, fbApp, user)
		if err != nil {
			fmt.Printf("[Daily Outfit] Failed to send to user %d: %v\n", user.ID, err)
			sentry.CaptureException(fmt.Errorf("[Daily Outfit] Failed to send to user %d: %v", user.ID, err))
			continue
		}
		time.Sleep(1 * time.Second) // To avoid hitting rate limits
	}

	return nil
}

func sendDailyOutfitToUser(ctx context.Context, db *gorm.DB, fbApp *firebase.App, user models.UserAccount) error {
	if len(user.Memberships) == 0 {
		fmt.Printf("[Daily Outfit] User %d has no closet, skipping\n", user.ID)
		return nil
	}
	companyID := user.Memberships[0].CompanyID

	var wardrobe []models.Clothing
	result := db.Where("company_id = ? AND status = ?", companyID, "in_closet").Find(&wardrobe)
	if result.Error != nil {
		return fmt.Errorf("error fetching wardrobe: %v", result.Error)
	}
	if !outfits.IsWardrobeReady(wardrobe) {
		fmt.Printf("[Daily Outfit] Wardrobe of user %d not ready yet, skipping\n", user.ID)
		return nil
	}

	prefs := map[models.Style]int{}
	for _, pref := range user.StylePreferences {
		prefs[pref.Style] = pref.Score
	}
	profile := outfits.Profile{StylePreferences: prefs, FavoriteColors: user.FavoriteColors}

	generated := outfits.Generate(wardrobe, profile, outfits.Options{Count: 1})
	if len(generated) == 0 {
		fmt.Printf("[Daily Outfit] No admissible outfit for user %d, skipping\n", user.ID)
		return nil
	}
	outfit := generated[0]

	rec := models.OutfitRecommendation{
		Uid:           outfit.Uid,
		UserAccountID: user.ID,
		CompanyID:     companyID,
		Score:         outfit.Score,
		ColorScore:    outfit.ColorScore,
		StyleScore:    outfit.StyleScore,
		OccasionScore: outfit.OccasionScore,
		Source:        "daily",
		GeneratedAt:   outfit.GeneratedAt.Unix(),
	}
	if outfit.Top != nil {
		rec.TopClothingID = &outfit.Top.ID
	}
	if outfit.Bottom != nil {
		rec.BottomClothingID = &outfit.Bottom.ID
	}
	if outfit.Shoes != nil {
		rec.ShoesClothingID = &outfit.Shoes.ID
	}
	if outfit.Outerwear != nil {
		rec.OuterwearID = &outfit.Outerwear.ID
	}
	if outfit.Accessory != nil {
		rec.AccessoryID = &outfit.Accessory.ID
	}
	if err := db.Create(&rec).Error; err != nil {
		return fmt.Errorf("error saving daily recommendation: %v", err)
	}

	title := "Your outfit for today ☀️"
	message := fmt.Sprintf("How about %s with %s and %s?",
		languageutil.DisplayName(outfit.Top.Name), languageutil.DisplayName(outfit.Bottom.Name),
		languageutil.DisplayName(outfit.Shoes.Name))
	if len(message) > 100 {
		message = message[:97] + "..."
	}

	fmt.Println("[Daily Outfit] Sending outfit", outfit.Uid, "to user", user.ID)
	services.SendNotification(fbApp, db, user.ID, title, message,
		map[string]string{"outfit_uid": outfit.Uid, "type": "daily_outfit"})

	return nil
}
