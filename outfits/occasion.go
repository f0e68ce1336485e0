package outfits

import (
	"closetlyapi/models"
)

// Garment formality levels as stored on models.Clothing.Formality.
const (
	FormalityCasual         = 1
	FormalityBusinessCasual = 2
	FormalityFormal         = 3
)

// an annotated occasion score at or above this counts as a strict match
const goodOccasionScore = 7

type occasionRule struct {
	MinFormality   int
	MaxFormality   int
	RequiredStyles []models.Style
	BannedStyles   []models.Style
}

var occasionRules = map[models.Occasion]occasionRule{
	models.OccasionWork: {
		MinFormality: FormalityBusinessCasual,
		BannedStyles: []models.Style{models.StyleAthletic, models.StyleStreetwear},
	},
	models.OccasionInterview: {
		MinFormality:   FormalityFormal,
		RequiredStyles: []models.Style{models.StyleFormal},
	},
	models.OccasionFormal: {
		MinFormality:   FormalityFormal,
		RequiredStyles: []models.Style{models.StyleFormal},
	},
	models.OccasionGym: {
		MaxFormality:   FormalityCasual,
		RequiredStyles: []models.Style{models.StyleAthletic},
	},
	models.OccasionCasual: {
		BannedStyles: []models.Style{models.StyleFormal},
	},
	models.OccasionClass: {
		BannedStyles: []models.Style{models.StyleFormal},
	},
	models.OccasionDate: {
		BannedStyles: []models.Style{models.StyleAthletic},
	},
	models.OccasionSocial: {},
}

func hasStyle(item *models.Clothing, style models.Style) bool {
	for _, tag := range item.Styles {
		if models.Style(tag) == style {
			return true
		}
	}
	return false
}

// passesOccasionRule checks the explicit style/formality rules for an
// occasion. Unscored garments (formality 0) never pass a formality floor.
func passesOccasionRule(item *models.Clothing, rule occasionRule) bool {
	if rule.MinFormality > 0 && item.Formality < rule.MinFormality {
		return false
	}
	if rule.MaxFormality > 0 && item.Formality > rule.MaxFormality {
		return false
	}
	for _, banned := range rule.BannedStyles {
		if hasStyle(item, banned) {
			return false
		}
	}
	for _, required := range rule.RequiredStyles {
		if !hasStyle(item, required) {
			return false
		}
	}
	return true
}

// strictOccasionMatch is the phase-1 predicate: a good annotated score for
// the occasion, or passing the occasion's explicit rules.
func strictOccasionMatch(item *models.Clothing, occasion models.Occasion) bool {
	if annotation := item.Annotation(); annotation != nil {
		if score, ok := annotation.OccasionScores[occasion]; ok && score >= goodOccasionScore {
			return true
		}
	}
	rule, ok := occasionRules[occasion]
	if !ok {
		return false
	}
	return passesOccasionRule(item, rule)
}

// isVersatile is the phase-2 predicate: at least one neutral color and no
// extreme style tag.
func isVersatile(item *models.Clothing) bool {
	hasNeutral := false
	for _, color := range item.Colors {
		if isNeutral(color) {
			hasNeutral = true
			break
		}
	}
	if !hasNeutral {
		return false
	}
	return !hasStyle(item, models.StyleAthletic) && !hasStyle(item, models.StyleStreetwear)
}

func filterPool(pool []*models.Clothing, keep func(*models.Clothing) bool) []*models.Clothing {
	var filtered []*models.Clothing
	for _, item := range pool {
		if keep(item) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// filterForOccasion narrows the per-category pools through an ordered ladder
// of predicates: strict rules first, then versatile garments, then everything.
// The first phase that leaves every mandatory category non-empty wins, so
// over-strict filtering can never starve generation on its own.
func filterForOccasion(pools map[string][]*models.Clothing, occasion models.Occasion) map[string][]*models.Clothing {
	phases := []func(*models.Clothing) bool{
		func(item *models.Clothing) bool { return strictOccasionMatch(item, occasion) },
		isVersatile,
		func(*models.Clothing) bool { return true },
	}

	for _, phase := range phases {
		filtered := map[string][]*models.Clothing{}
		for category, pool := range pools {
			filtered[category] = filterPool(pool, phase)
		}
		viable := true
		for _, category := range []string{CategoryTop, CategoryBottom, CategoryShoes} {
			if len(pools[category]) > 0 && len(filtered[category]) == 0 {
				viable = false
				break
			}
		}
		if viable {
			return filtered
		}
	}
	return pools
}

// outfitOccasionScore averages the annotated 0-10 suitability scores,
// normalized to [0,1]. Returns nil when any garment lacks the annotation so
// the aggregator can fall back to the occasion-free weighting.
func outfitOccasionScore(items []*models.Clothing, occasion models.Occasion) *float64 {
	var sum float64
	for _, item := range items {
		annotation := item.Annotation()
		if annotation == nil {
			return nil
		}
		score, ok := annotation.OccasionScores[occasion]
		if !ok {
			return nil
		}
		sum += float64(score)
	}
	normalized := sum / float64(10*len(items))
	return &normalized
}
