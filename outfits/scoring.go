package outfits

import (
	"strings"

	"closetlyapi/models"
)

// stylePreferenceScore normalizes the user's liking of the outfit's style
// tags to [0,1]. Unrated styles count as a middling 5; tag-less outfits get
// a neutral 0.5.
func stylePreferenceScore(items []*models.Clothing, profile Profile) float64 {
	var sum, count int
	for _, item := range items {
		for _, tag := range item.Styles {
			preference, ok := profile.StylePreferences[models.Style(tag)]
			if !ok {
				preference = 5
			}
			sum += preference
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	return float64(sum) / float64(10*count)
}

// opposedStyles are combinations that read as incoherent when mixed in a
// single outfit.
var opposedStyles = [][2]models.Style{
	{models.StyleFormal, models.StyleAthletic},
	{models.StyleFormal, models.StyleStreetwear},
	{models.StylePreppy, models.StyleStreetwear},
}

func styleConsistencyScore(items []*models.Clothing) float64 {
	present := map[models.Style]bool{}
	for _, item := range items {
		for _, tag := range item.Styles {
			present[models.Style(tag)] = true
		}
	}
	score := 1.0
	for _, pair := range opposedStyles {
		if present[pair[0]] && present[pair[1]] {
			score -= 0.5
		}
	}
	if score < 0 {
		score = 0
	}
	return score
}

// favoriteColorBonus is (fraction of favorite colors present) x 0.2.
func favoriteColorBonus(items []*models.Clothing, profile Profile) float64 {
	if len(profile.FavoriteColors) == 0 {
		return 0
	}
	present := outfitColorSet(items)
	var matched int
	for _, favorite := range profile.FavoriteColors {
		if present[normalizeColor(favorite)] {
			matched++
		}
	}
	return float64(matched) / float64(len(profile.FavoriteColors)) * 0.2
}

func garmentText(item *models.Clothing) string {
	text := item.Name
	if item.Description != nil {
		text += " " + *item.Description
	}
	return strings.ToLower(text)
}

// Substring heuristics over the garment name and AI description. Fragile but
// deliberate: sleeve and leg length are not structured attributes yet.
func isShorts(item *models.Clothing) bool {
	return item.Category == CategoryBottom && strings.Contains(garmentText(item), "shorts")
}

func hasLongSleeves(item *models.Clothing) bool {
	text := garmentText(item)
	return strings.Contains(text, "long sleeve") || strings.Contains(text, "long-sleeve") ||
		strings.Contains(text, "sweater") || strings.Contains(text, "hoodie")
}

func hasShortSleeves(item *models.Clothing) bool {
	text := garmentText(item)
	return strings.Contains(text, "short sleeve") || strings.Contains(text, "short-sleeve") ||
		strings.Contains(text, "t-shirt") || strings.Contains(text, "tee")
}

func hasDarkColors(items []*models.Clothing) bool {
	for _, item := range items {
		for _, color := range item.Colors {
			if darkColors[normalizeColor(color)] {
				return true
			}
		}
	}
	return false
}

// weatherScore returns a signed adjustment in [-0.5, 0.3] from temperature
// banding plus a rain heuristic against white bottoms.
func weatherScore(items []*models.Clothing, weather Weather) float64 {
	var hasOuterwear, longSleeveTop, shortSleeveTop, shortsBottom, whiteBottom bool
	for _, item := range items {
		switch item.Category {
		case CategoryOuterwear:
			hasOuterwear = true
		case CategoryTop:
			long := hasLongSleeves(item)
			short := hasShortSleeves(item)
			if !long && !short {
				// analysis warmth stands in when the text has no sleeve signal
				if item.WarmthLevel >= 4 {
					long = true
				} else if item.WarmthLevel == 1 {
					short = true
				}
			}
			if long {
				longSleeveTop = true
			}
			if short {
				shortSleeveTop = true
			}
		case CategoryBottom:
			if isShorts(item) {
				shortsBottom = true
			}
			for _, color := range item.Colors {
				if normalizeColor(color) == "white" {
					whiteBottom = true
				}
			}
		}
	}

	score := 0.0
	temp := weather.TemperatureF
	switch {
	case temp < 20:
		if hasOuterwear {
			score += 0.3
		} else if longSleeveTop {
			score += 0.1
		} else {
			// no protection at all
			score -= 0.4
		}
		if shortsBottom {
			score -= 0.5
		}
	case temp < 50:
		if hasOuterwear {
			score += 0.2
		}
		if longSleeveTop {
			score += 0.15
		}
		if shortsBottom {
			score -= 0.3
		}
	case temp < 70:
		// versatile band
		score += 0.05
	case temp <= 85:
		if shortsBottom {
			score += 0.15
		}
		if shortSleeveTop {
			score += 0.1
		}
		if hasOuterwear {
			score -= 0.15
		}
	default:
		if shortsBottom {
			score += 0.2
		}
		if shortSleeveTop {
			score += 0.15
		}
		if hasOuterwear {
			score -= 0.3
		}
		if hasDarkColors(items) {
			score -= 0.15
		}
	}

	if weather.PrecipitationPct > 30 && whiteBottom {
		score -= 0.2
	}

	if score < -0.5 {
		score = -0.5
	}
	if score > 0.3 {
		score = 0.3
	}
	return score
}

// ScoreOutfit scores a fixed combination with the same rules Generate applies
// to the ones it assembles. Used for combinations picked outside the engine.
func ScoreOutfit(outfit *Outfit, profile Profile, opts Options) {
	scoreOutfit(outfit, profile, opts)
}

// scoreOutfit computes the final score and its persisted components.
// Weighted base plus weather, clash and neutral adjustments, clamped to [0,1].
func scoreOutfit(outfit *Outfit, profile Profile, opts Options) {
	items := outfit.Items()

	colorScore := outfitColorScore(items)
	styleScore := stylePreferenceScore(items, profile)
	consistency := styleConsistencyScore(items)
	favorites := favoriteColorBonus(items, profile)

	var occasionScore *float64
	if opts.Occasion != nil {
		occasionScore = outfitOccasionScore(items, *opts.Occasion)
	}

	var base float64
	if occasionScore != nil {
		base = 0.5*colorScore + 0.2*styleScore + 0.1*consistency + 0.1**occasionScore + 0.1*favorites
	} else {
		base = 0.5*colorScore + 0.3*styleScore + 0.1*consistency + 0.1*favorites
	}

	if opts.Weather != nil {
		base += weatherScore(items, *opts.Weather)
	}
	base += clashPenalty(items, opts.Weather, opts.Occasion)
	base += neutralAnchorBonus(items)

	outfit.Score = clamp01(base)
	outfit.ColorScore = colorScore
	outfit.StyleScore = styleScore
	outfit.OccasionScore = occasionScore
}
