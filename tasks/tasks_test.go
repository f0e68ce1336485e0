package tasks

import (
	"encoding/json"
	"testing"

	"closetlyapi/models"
	"closetlyapi/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanAIResponseText(t *testing.T) {
	fenced := "```json\n{\"name\": \"Shirt\"}\n```"
	assert.Equal(t, "{\"name\": \"Shirt\"}", cleanAIResponseText(fenced))
	assert.Equal(t, "{\"name\": \"Shirt\"}", cleanAIResponseText("{\"name\": \"Shirt\"}"))
}

func TestApplyClothingAnalysisKeepsUserFields(t *testing.T) {
	clothing := models.Clothing{
		Name:     "My Favorite Shirt",
		Category: "top",
	}
	applyClothingAnalysis(&clothing, services.ClothingAnalysisResponse{
		Name:        "Blue Oxford Shirt",
		Description: "A crisp blue oxford",
		Category:    "top",
		Colors:      []string{" Navy ", "White"},
		Styles:      []string{"casual", "bohemian"},
		Formality:   2,
		WarmthLevel: 2,
		OccasionScores: map[string]int{
			"work":   8,
			"casual": 6,
			"prom":   9,
			"date":   42,
		},
	})

	// user supplied name wins over the model's guess
	assert.Equal(t, "My Favorite Shirt", clothing.Name)
	require.NotNil(t, clothing.Description)
	assert.Equal(t, "A crisp blue oxford", *clothing.Description)
	assert.Equal(t, []string{"navy", "white"}, []string(clothing.Colors))
	// unknown styles are dropped
	assert.Equal(t, []string{"casual"}, []string(clothing.Styles))
	assert.Equal(t, 2, clothing.Formality)
	assert.Equal(t, 2, clothing.WarmthLevel)

	annotation := clothing.Annotation()
	require.NotNil(t, annotation)
	assert.Equal(t, 8, annotation.OccasionScores[models.OccasionWork])
	assert.Equal(t, 6, annotation.OccasionScores[models.OccasionCasual])
	// unknown occasion and out of range score are dropped
	assert.NotContains(t, annotation.OccasionScores, models.Occasion("prom"))
	assert.NotContains(t, annotation.OccasionScores, models.OccasionDate)
}

func TestApplyClothingAnalysisIgnoresOutOfRangeRatings(t *testing.T) {
	clothing := models.Clothing{Category: "bottom"}
	applyClothingAnalysis(&clothing, services.ClothingAnalysisResponse{
		Name:        "Jeans",
		Formality:   7,
		WarmthLevel: 9,
	})
	assert.Equal(t, "Jeans", clothing.Name)
	assert.Equal(t, 0, clothing.Formality)
	assert.Equal(t, 0, clothing.WarmthLevel)
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewTryOnGenerationTask(3, 17)
	require.NoError(t, err)
	assert.Equal(t, "generate:tryon", task.Type())
	var tryOnPayload TryOnGenerationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &tryOnPayload))
	assert.Equal(t, uint(3), tryOnPayload.UserID)
	assert.Equal(t, uint(17), tryOnPayload.TryOnID)

	task, err = NewClothingProcessingTask(5)
	require.NoError(t, err)
	assert.Equal(t, "generate:process_clothing", task.Type())
	var clothingPayload ClothingGenerationPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &clothingPayload))
	assert.Equal(t, uint(5), clothingPayload.ClothingId)

	task, err = NewFullBodyAvatarGenerateTask(8)
	require.NoError(t, err)
	assert.Equal(t, "generate:avatar", task.Type())

	task, err = NewDailyOutfitAlertTask()
	require.NoError(t, err)
	assert.Equal(t, "outfits:daily_alert", task.Type())
}
