package outfits

import (
	"testing"

	"closetlyapi/models"

	"github.com/stretchr/testify/assert"
)

func garment(id uint, category string, colors []string, styles ...string) models.Clothing {
	item := models.Clothing{
		Category: category,
		Colors:   colors,
		Styles:   styles,
	}
	item.ID = id
	return item
}

func itemsOf(garments ...models.Clothing) []*models.Clothing {
	items := make([]*models.Clothing, len(garments))
	for i := range garments {
		items[i] = &garments[i]
	}
	return items
}

func TestColorPairScore(t *testing.T) {
	assert.Equal(t, 1.0, colorPairScore("black", "black"))
	assert.Equal(t, 1.0, colorPairScore("Black", " black "))
	assert.Equal(t, 0.8, colorPairScore("black", "red"))
	assert.Equal(t, 0.8, colorPairScore("red", "black"))
	// unknown color against a neutral
	assert.Equal(t, 0.6, colorPairScore("chartreuse", "gray"))
	// light vs dark outside the table
	assert.Equal(t, 0.5, colorPairScore("lavender", "charcoal"))
	// two unknown saturated colors
	assert.Equal(t, 0.3, colorPairScore("chartreuse", "magenta"))
}

func TestGarmentPairScoreNoColors(t *testing.T) {
	a := garment(1, CategoryTop, nil)
	b := garment(2, CategoryBottom, []string{"black"})
	assert.Equal(t, 0.5, garmentPairScore(&a, &b))
}

func TestClashPenaltyListedClash(t *testing.T) {
	items := itemsOf(
		garment(1, CategoryTop, []string{"red"}),
		garment(2, CategoryBottom, []string{"orange"}),
		garment(3, CategoryShoes, []string{"yellow"}),
	)
	assert.Equal(t, -0.5, clashPenalty(items, nil, nil))
}

func TestClashPenaltyMonochrome(t *testing.T) {
	allBlack := itemsOf(
		garment(1, CategoryTop, []string{"black"}),
		garment(2, CategoryBottom, []string{"black"}),
		garment(3, CategoryShoes, []string{"black"}),
	)
	assert.Equal(t, 0.0, clashPenalty(allBlack, nil, nil))

	allRed := itemsOf(
		garment(1, CategoryTop, []string{"red"}),
		garment(2, CategoryBottom, []string{"red"}),
		garment(3, CategoryShoes, []string{"red"}),
	)
	// team color exception
	assert.Equal(t, 0.0, clashPenalty(allRed, nil, nil))

	allNavy := itemsOf(
		garment(1, CategoryTop, []string{"navy"}),
		garment(2, CategoryBottom, []string{"navy"}),
		garment(3, CategoryShoes, []string{"navy"}),
	)
	assert.Equal(t, -0.1, clashPenalty(allNavy, nil, nil))

	allPurple := itemsOf(
		garment(1, CategoryTop, []string{"purple"}),
		garment(2, CategoryBottom, []string{"purple"}),
		garment(3, CategoryShoes, []string{"purple"}),
	)
	assert.Equal(t, -0.3, clashPenalty(allPurple, nil, nil))
}

func TestClashPenaltyAllWhiteContextual(t *testing.T) {
	allWhite := itemsOf(
		garment(1, CategoryTop, []string{"white"}),
		garment(2, CategoryBottom, []string{"white"}),
		garment(3, CategoryShoes, []string{"white"}),
	)

	// no context at all: small nudge away from monochrome
	assert.Equal(t, -0.05, clashPenalty(allWhite, nil, nil))

	rainy := &Weather{TemperatureF: 75, PrecipitationPct: 60}
	assert.InDelta(t, -0.3, clashPenalty(allWhite, rainy, nil), 1e-9)

	casual := models.OccasionCasual
	assert.InDelta(t, -0.2, clashPenalty(allWhite, nil, &casual), 1e-9)

	// rain, practical occasion and cold all apply, still capped at the
	// clash-list penalty
	coldRain := &Weather{TemperatureF: 40, PrecipitationPct: 60}
	work := models.OccasionWork
	assert.InDelta(t, -0.5, clashPenalty(allWhite, coldRain, &work), 1e-9)
}

func TestNeutralAnchorBonus(t *testing.T) {
	blackShoes := itemsOf(
		garment(1, CategoryTop, []string{"red"}),
		garment(2, CategoryBottom, []string{"blue"}),
		garment(3, CategoryShoes, []string{"black"}),
	)
	assert.InDelta(t, 0.15, neutralAnchorBonus(blackShoes), 1e-9)

	brownShoes := itemsOf(
		garment(1, CategoryTop, []string{"red"}),
		garment(2, CategoryBottom, []string{"blue"}),
		garment(3, CategoryShoes, []string{"brown"}),
	)
	assert.InDelta(t, 0.10, neutralAnchorBonus(brownShoes), 1e-9)

	// mostly neutral mentions push the extra 0.05, capped at 0.2
	mostlyNeutral := itemsOf(
		garment(1, CategoryTop, []string{"gray"}),
		garment(2, CategoryBottom, []string{"beige"}),
		garment(3, CategoryShoes, []string{"white"}),
	)
	assert.InDelta(t, 0.2, neutralAnchorBonus(mostlyNeutral), 1e-9)
}
