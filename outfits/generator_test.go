package outfits

import (
	"math/rand"
	"testing"

	"closetlyapi/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallWardrobe() []models.Clothing {
	return []models.Clothing{
		garment(1, CategoryTop, []string{"black"}, "casual"),
		garment(2, CategoryTop, []string{"white"}, "casual"),
		garment(3, CategoryBottom, []string{"navy"}, "casual"),
		garment(4, CategoryBottom, []string{"black"}, "casual"),
		garment(5, CategoryShoes, []string{"white"}, "casual"),
		garment(6, CategoryShoes, []string{"black"}, "casual"),
		garment(7, CategoryOuterwear, []string{"black"}, "casual"),
		garment(8, CategoryAccessory, []string{"brown"}, "casual"),
	}
}

func TestGenerateDeterministicWithSeed(t *testing.T) {
	wardrobe := smallWardrobe()
	profile := Profile{}

	run := func() []Outfit {
		return Generate(wardrobe, profile, Options{
			Count: 5,
			Rand:  rand.New(rand.NewSource(42)),
		})
	}
	first := run()
	second := run()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Top.ID, second[i].Top.ID)
		assert.Equal(t, first[i].Bottom.ID, second[i].Bottom.ID)
		assert.Equal(t, first[i].Shoes.ID, second[i].Shoes.ID)
		assert.Equal(t, first[i].Score, second[i].Score)
	}
}

func TestGenerateScoreBounds(t *testing.T) {
	outfitsList := Generate(smallWardrobe(), Profile{}, Options{
		Count: 10,
		Rand:  rand.New(rand.NewSource(1)),
	})
	require.NotEmpty(t, outfitsList)
	for _, outfit := range outfitsList {
		assert.GreaterOrEqual(t, outfit.Score, admissionThreshold)
		assert.LessOrEqual(t, outfit.Score, 1.0)
		assert.NotEmpty(t, outfit.Uid)
		assert.False(t, outfit.GeneratedAt.IsZero())
	}
	// best first
	for i := 1; i < len(outfitsList); i++ {
		assert.GreaterOrEqual(t, outfitsList[i-1].Score, outfitsList[i].Score)
	}
}

func TestGenerateEmptyMandatoryCategory(t *testing.T) {
	wardrobe := []models.Clothing{
		garment(1, CategoryTop, []string{"black"}),
		garment(2, CategoryBottom, []string{"black"}),
		// no shoes at all
	}
	result := Generate(wardrobe, Profile{}, Options{Rand: rand.New(rand.NewSource(1))})
	assert.Empty(t, result)
}

func TestGenerateRequiredItemPinning(t *testing.T) {
	wardrobe := smallWardrobe()
	required := &wardrobe[1] // the white top

	result := Generate(wardrobe, Profile{}, Options{
		Count:        5,
		RequiredItem: required,
		Rand:         rand.New(rand.NewSource(7)),
	})
	require.NotEmpty(t, result)
	for _, outfit := range result {
		assert.Equal(t, required.ID, outfit.Top.ID)
	}
}

func TestGenerateRequiredAccessoryInEveryOutfit(t *testing.T) {
	wardrobe := smallWardrobe()
	required := &wardrobe[7] // the brown accessory

	result := Generate(wardrobe, Profile{}, Options{
		Count:        5,
		RequiredItem: required,
		Rand:         rand.New(rand.NewSource(9)),
	})
	require.NotEmpty(t, result)
	for _, outfit := range result {
		require.NotNil(t, outfit.Accessory)
		assert.Equal(t, required.ID, outfit.Accessory.ID)
	}
}

func TestGenerateRequiredOuterwearInEveryOutfit(t *testing.T) {
	wardrobe := smallWardrobe()
	required := &wardrobe[6] // the black jacket

	// warm weather would normally make outerwear a rare roll
	result := Generate(wardrobe, Profile{}, Options{
		Count:        5,
		RequiredItem: required,
		Weather:      &Weather{TemperatureF: 75},
		Rand:         rand.New(rand.NewSource(9)),
	})
	require.NotEmpty(t, result)
	for _, outfit := range result {
		require.NotNil(t, outfit.Outerwear)
		assert.Equal(t, required.ID, outfit.Outerwear.ID)
	}
}

func TestGenerateOccasionFallbackNeverStarves(t *testing.T) {
	// nothing here passes the interview strict rules, yet a full outfit
	// must still come back through the fallback phases
	wardrobe := []models.Clothing{
		garment(1, CategoryTop, []string{"gray"}, "casual"),
		garment(2, CategoryBottom, []string{"black"}, "casual"),
		garment(3, CategoryShoes, []string{"white"}, "casual"),
	}
	interview := models.OccasionInterview
	result := Generate(wardrobe, Profile{}, Options{
		Count:    3,
		Occasion: &interview,
		Rand:     rand.New(rand.NewSource(3)),
	})
	assert.NotEmpty(t, result)
}

func TestGenerateCopiesAreIndependent(t *testing.T) {
	wardrobe := smallWardrobe()
	result := Generate(wardrobe, Profile{}, Options{
		Count: 1,
		Rand:  rand.New(rand.NewSource(5)),
	})
	require.NotEmpty(t, result)

	originalName := result[0].Top.Name
	for i := range wardrobe {
		wardrobe[i].Name = "mutated"
	}
	assert.Equal(t, originalName, result[0].Top.Name)
}

func TestGenerateSamplingPath(t *testing.T) {
	// 25x25x25 combinations forces sampling for count=5
	var wardrobe []models.Clothing
	var id uint = 1
	colors := []string{"black", "white", "navy", "gray", "beige"}
	for i := 0; i < 25; i++ {
		color := colors[i%len(colors)]
		wardrobe = append(wardrobe, garment(id, CategoryTop, []string{color}, "casual"))
		id++
		wardrobe = append(wardrobe, garment(id, CategoryBottom, []string{color}, "casual"))
		id++
		wardrobe = append(wardrobe, garment(id, CategoryShoes, []string{color}, "casual"))
		id++
	}
	result := Generate(wardrobe, Profile{}, Options{
		Count: 5,
		Rand:  rand.New(rand.NewSource(11)),
	})
	require.NotEmpty(t, result)
	assert.LessOrEqual(t, len(result), 5)

	seen := map[[3]uint]bool{}
	for _, outfit := range result {
		key := [3]uint{outfit.Top.ID, outfit.Bottom.ID, outfit.Shoes.ID}
		assert.False(t, seen[key], "duplicate combination returned")
		seen[key] = true
	}
}

func TestIsWardrobeReady(t *testing.T) {
	build := func(tops, bottoms, shoes, accessories int) []models.Clothing {
		var wardrobe []models.Clothing
		var id uint = 1
		add := func(category string, n int) {
			for i := 0; i < n; i++ {
				wardrobe = append(wardrobe, garment(id, category, []string{"black"}))
				id++
			}
		}
		add(CategoryTop, tops)
		add(CategoryBottom, bottoms)
		add(CategoryShoes, shoes)
		add(CategoryAccessory, accessories)
		return wardrobe
	}

	assert.True(t, IsWardrobeReady(build(5, 3, 2, 0)))
	assert.False(t, IsWardrobeReady(build(4, 3, 2, 1)))
	assert.False(t, IsWardrobeReady(build(5, 2, 2, 1)))
	assert.False(t, IsWardrobeReady(build(5, 3, 1, 1)))
	assert.False(t, IsWardrobeReady(build(0, 0, 0, 20)))
	assert.True(t, IsWardrobeReady(build(6, 3, 2, 4)))
}
