package outfits

import (
	"testing"

	"closetlyapi/models"

	"github.com/stretchr/testify/assert"
)

func TestStrictOccasionMatch(t *testing.T) {
	blazer := garment(1, CategoryTop, []string{"navy"}, "formal")
	blazer.Formality = FormalityFormal
	assert.True(t, strictOccasionMatch(&blazer, models.OccasionInterview))

	hoodie := garment(2, CategoryTop, []string{"gray"}, "streetwear")
	hoodie.Formality = FormalityCasual
	assert.False(t, strictOccasionMatch(&hoodie, models.OccasionWork))

	// a good annotated score overrides the explicit rules
	sneakers := garment(3, CategoryShoes, []string{"white"}, "athletic")
	sneakers.Formality = FormalityCasual
	sneakers.SetOccasionScores(map[models.Occasion]int{models.OccasionWork: 8})
	assert.True(t, strictOccasionMatch(&sneakers, models.OccasionWork))
}

func TestPassesOccasionRuleUnscored(t *testing.T) {
	// garments that never went through analysis carry formality 0 and
	// must not pass a formality floor
	unscored := garment(1, CategoryTop, []string{"white"})
	assert.False(t, passesOccasionRule(&unscored, occasionRules[models.OccasionWork]))
	assert.True(t, passesOccasionRule(&unscored, occasionRules[models.OccasionSocial]))
}

func TestIsVersatile(t *testing.T) {
	plain := garment(1, CategoryTop, []string{"gray"}, "casual")
	assert.True(t, isVersatile(&plain))

	loud := garment(2, CategoryTop, []string{"orange"}, "casual")
	assert.False(t, isVersatile(&loud))

	sporty := garment(3, CategoryTop, []string{"black"}, "athletic")
	assert.False(t, isVersatile(&sporty))
}

func TestFilterForOccasionLadder(t *testing.T) {
	// nothing satisfies interview phase 1, but bottoms and shoes are
	// versatile; the ladder must settle on a phase that keeps every
	// mandatory category populated
	top := garment(1, CategoryTop, []string{"orange"}, "streetwear")
	bottom := garment(2, CategoryBottom, []string{"black"}, "casual")
	shoe := garment(3, CategoryShoes, []string{"white"}, "casual")

	pools := map[string][]*models.Clothing{
		CategoryTop:    {&top},
		CategoryBottom: {&bottom},
		CategoryShoes:  {&shoe},
	}
	filtered := filterForOccasion(pools, models.OccasionInterview)
	assert.Len(t, filtered[CategoryTop], 1)
	assert.Len(t, filtered[CategoryBottom], 1)
	assert.Len(t, filtered[CategoryShoes], 1)
}

func TestFilterForOccasionStrictWins(t *testing.T) {
	suit := garment(1, CategoryTop, []string{"navy"}, "formal")
	suit.Formality = FormalityFormal
	tee := garment(2, CategoryTop, []string{"white"}, "casual")
	slacks := garment(3, CategoryBottom, []string{"black"}, "formal")
	slacks.Formality = FormalityFormal
	oxfords := garment(4, CategoryShoes, []string{"black"}, "formal")
	oxfords.Formality = FormalityFormal

	pools := map[string][]*models.Clothing{
		CategoryTop:    {&suit, &tee},
		CategoryBottom: {&slacks},
		CategoryShoes:  {&oxfords},
	}
	filtered := filterForOccasion(pools, models.OccasionFormal)
	// the plain tee is dropped by the strict phase
	if assert.Len(t, filtered[CategoryTop], 1) {
		assert.Equal(t, suit.ID, filtered[CategoryTop][0].ID)
	}
}
