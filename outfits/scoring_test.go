package outfits

import (
	"testing"

	"closetlyapi/models"

	"github.com/stretchr/testify/assert"
)

func TestStylePreferenceScore(t *testing.T) {
	profile := Profile{StylePreferences: map[models.Style]int{
		models.StyleCasual: 10,
		models.StyleFormal: 0,
	}}

	liked := itemsOf(
		garment(1, CategoryTop, nil, "casual"),
		garment(2, CategoryBottom, nil, "casual"),
	)
	assert.InDelta(t, 1.0, stylePreferenceScore(liked, profile), 1e-9)

	disliked := itemsOf(garment(1, CategoryTop, nil, "formal"))
	assert.InDelta(t, 0.0, stylePreferenceScore(disliked, profile), 1e-9)

	// unrated styles default to 5
	unrated := itemsOf(garment(1, CategoryTop, nil, "preppy"))
	assert.InDelta(t, 0.5, stylePreferenceScore(unrated, profile), 1e-9)

	// no tags anywhere: neutral
	untagged := itemsOf(garment(1, CategoryTop, nil))
	assert.InDelta(t, 0.5, stylePreferenceScore(untagged, profile), 1e-9)
}

func TestStyleConsistencyScore(t *testing.T) {
	coherent := itemsOf(
		garment(1, CategoryTop, nil, "casual"),
		garment(2, CategoryBottom, nil, "casual"),
	)
	assert.Equal(t, 1.0, styleConsistencyScore(coherent))

	mixed := itemsOf(
		garment(1, CategoryTop, nil, "formal"),
		garment(2, CategoryBottom, nil, "athletic"),
	)
	assert.Equal(t, 0.5, styleConsistencyScore(mixed))
}

func TestFavoriteColorBonus(t *testing.T) {
	profile := Profile{FavoriteColors: []string{"Red", "green"}}
	items := itemsOf(
		garment(1, CategoryTop, []string{"red"}),
		garment(2, CategoryBottom, []string{"black"}),
	)
	// half the favorites present
	assert.InDelta(t, 0.1, favoriteColorBonus(items, profile), 1e-9)

	assert.Equal(t, 0.0, favoriteColorBonus(items, Profile{}))
}

func describedGarment(id uint, category, description string, colors ...string) models.Clothing {
	item := garment(id, category, colors)
	item.Description = &description
	return item
}

func TestWeatherScoreExtremeCold(t *testing.T) {
	cold := Weather{TemperatureF: 10}

	withOuterwear := itemsOf(
		garment(1, CategoryTop, []string{"black"}),
		garment(2, CategoryBottom, []string{"black"}),
		garment(3, CategoryShoes, []string{"black"}),
		garment(4, CategoryOuterwear, []string{"black"}),
	)
	assert.InDelta(t, 0.3, weatherScore(withOuterwear, cold), 1e-9)

	unprotected := itemsOf(
		describedGarment(1, CategoryTop, "linen shirt", "white"),
		garment(2, CategoryBottom, []string{"black"}),
		garment(3, CategoryShoes, []string{"black"}),
	)
	assert.InDelta(t, -0.4, weatherScore(unprotected, cold), 1e-9)

	shortsInCold := itemsOf(
		garment(1, CategoryTop, []string{"black"}),
		describedGarment(2, CategoryBottom, "chino shorts", "black"),
		garment(3, CategoryShoes, []string{"black"}),
		garment(4, CategoryOuterwear, []string{"black"}),
	)
	// +0.3 outerwear, -0.5 shorts, clamped range holds
	assert.InDelta(t, -0.2, weatherScore(shortsInCold, cold), 1e-9)
}

func TestWeatherScoreHeat(t *testing.T) {
	hot := Weather{TemperatureF: 95}
	summery := itemsOf(
		describedGarment(1, CategoryTop, "cotton t-shirt", "white"),
		describedGarment(2, CategoryBottom, "chino shorts", "beige"),
		garment(3, CategoryShoes, []string{"white"}),
	)
	// +0.2 shorts, +0.15 short sleeves, clamped to the band ceiling
	assert.InDelta(t, 0.3, weatherScore(summery, hot), 1e-9)

	dark := itemsOf(
		describedGarment(1, CategoryTop, "wool sweater", "black"),
		garment(2, CategoryBottom, []string{"black"}),
		garment(3, CategoryShoes, []string{"black"}),
		garment(4, CategoryOuterwear, []string{"black"}),
	)
	// -0.3 outerwear, -0.15 dark colors
	assert.InDelta(t, -0.45, weatherScore(dark, hot), 1e-9)
}

func TestWeatherScoreWarmthFallback(t *testing.T) {
	cold := Weather{TemperatureF: 40}

	// no sleeve words anywhere, warmth 4 counts as a warm top
	warmTop := garment(1, CategoryTop, []string{"black"})
	warmTop.Name = "Office Knit"
	warmTop.WarmthLevel = 4
	warm := itemsOf(
		warmTop,
		garment(2, CategoryBottom, []string{"black"}),
		garment(3, CategoryShoes, []string{"black"}),
	)
	assert.InDelta(t, 0.15, weatherScore(warm, cold), 1e-9)

	hot := Weather{TemperatureF: 95}
	lightTop := garment(1, CategoryTop, []string{"white"})
	lightTop.Name = "Linen Top"
	lightTop.WarmthLevel = 1
	light := itemsOf(
		lightTop,
		garment(2, CategoryBottom, []string{"beige"}),
		garment(3, CategoryShoes, []string{"white"}),
	)
	assert.InDelta(t, 0.15, weatherScore(light, hot), 1e-9)

	// a sleeve word in the text wins over the warmth rating
	described := describedGarment(4, CategoryTop, "short sleeve shirt", "white")
	described.WarmthLevel = 5
	overridden := itemsOf(
		described,
		garment(5, CategoryBottom, []string{"beige"}),
		garment(6, CategoryShoes, []string{"white"}),
	)
	assert.InDelta(t, 0.15, weatherScore(overridden, hot), 1e-9)
}

func TestWeatherScoreRainWhiteBottoms(t *testing.T) {
	rainy := Weather{TemperatureF: 60, PrecipitationPct: 60}
	items := itemsOf(
		garment(1, CategoryTop, []string{"black"}),
		garment(2, CategoryBottom, []string{"white"}),
		garment(3, CategoryShoes, []string{"black"}),
	)
	// +0.05 mild band, -0.2 white bottoms in rain
	assert.InDelta(t, -0.15, weatherScore(items, rainy), 1e-9)
}

func TestNeutralOutfitBeatsClashingOutfit(t *testing.T) {
	profile := Profile{}
	opts := Options{}

	neutral := Outfit{
		Top:    ptrGarment(garment(1, CategoryTop, []string{"black"})),
		Bottom: ptrGarment(garment(2, CategoryBottom, []string{"black"})),
		Shoes:  ptrGarment(garment(3, CategoryShoes, []string{"black"})),
	}
	scoreOutfit(&neutral, profile, opts)

	clashing := Outfit{
		Top:    ptrGarment(garment(1, CategoryTop, []string{"red"})),
		Bottom: ptrGarment(garment(2, CategoryBottom, []string{"orange"})),
		Shoes:  ptrGarment(garment(3, CategoryShoes, []string{"yellow"})),
	}
	scoreOutfit(&clashing, profile, opts)

	assert.GreaterOrEqual(t, neutral.Score, clashing.Score)
	assert.GreaterOrEqual(t, 1.0, neutral.Score)
	assert.GreaterOrEqual(t, clashing.Score, 0.0)
}

func TestScoreUsesOccasionWeightingWhenAnnotated(t *testing.T) {
	work := models.OccasionWork

	top := garment(1, CategoryTop, []string{"white"})
	top.Formality = FormalityBusinessCasual
	top.SetOccasionScores(map[models.Occasion]int{models.OccasionWork: 9})
	bottom := garment(2, CategoryBottom, []string{"navy"})
	bottom.Formality = FormalityBusinessCasual
	bottom.SetOccasionScores(map[models.Occasion]int{models.OccasionWork: 8})
	shoes := garment(3, CategoryShoes, []string{"black"})
	shoes.Formality = FormalityBusinessCasual
	shoes.SetOccasionScores(map[models.Occasion]int{models.OccasionWork: 7})

	annotated := Outfit{Top: &top, Bottom: &bottom, Shoes: &shoes}
	scoreOutfit(&annotated, Profile{}, Options{Occasion: &work})
	if assert.NotNil(t, annotated.OccasionScore) {
		assert.InDelta(t, 0.8, *annotated.OccasionScore, 1e-9)
	}

	// any unannotated garment drops the occasion component entirely
	bare := garment(4, CategoryShoes, []string{"black"})
	partial := Outfit{Top: &top, Bottom: &bottom, Shoes: &bare}
	scoreOutfit(&partial, Profile{}, Options{Occasion: &work})
	assert.Nil(t, partial.OccasionScore)
}

func ptrGarment(item models.Clothing) *models.Clothing {
	return &item
}
