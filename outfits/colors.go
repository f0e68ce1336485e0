package outfits

import (
	"strings"

	"closetlyapi/models"
)

// Static color knowledge. Assembled once, never mutated.

var neutralColors = map[string]bool{
	"black": true,
	"white": true,
	"gray":  true,
	"grey":  true,
	"navy":  true,
	"beige": true,
	"cream": true,
	"tan":   true,
	"khaki": true,
	"brown": true,
	"denim": true,
}

var lightColors = map[string]bool{
	"white":  true,
	"cream":  true,
	"beige":  true,
	"tan":    true,
	"yellow": true,
	"pink":   true,
	"mint":   true,
	"lavender": true,
	"sky blue": true,
	"light blue": true,
}

var darkColors = map[string]bool{
	"black":    true,
	"navy":     true,
	"brown":    true,
	"maroon":   true,
	"burgundy": true,
	"charcoal": true,
	"dark green": true,
	"dark blue":  true,
	"olive":      true,
}

// colorPairs maps a color to the colors it is known to pair well with.
// Neutrals pair with nearly everything; saturated colors get a curated subset.
// Lookups go through colorsAdjacent which checks both directions.
var colorPairs = map[string][]string{
	"black":  {"white", "gray", "grey", "red", "blue", "navy", "pink", "yellow", "green", "beige", "denim", "purple", "orange", "brown"},
	"white":  {"black", "gray", "grey", "navy", "blue", "red", "pink", "green", "brown", "beige", "denim", "purple", "yellow", "khaki"},
	"gray":   {"black", "white", "navy", "blue", "pink", "red", "purple", "yellow", "denim"},
	"grey":   {"black", "white", "navy", "blue", "pink", "red", "purple", "yellow", "denim"},
	"navy":   {"white", "gray", "grey", "beige", "red", "pink", "yellow", "khaki", "tan", "denim", "brown"},
	"beige":  {"navy", "brown", "white", "black", "green", "denim", "olive", "maroon"},
	"brown":  {"beige", "cream", "tan", "white", "navy", "green", "olive", "denim"},
	"denim":  {"white", "black", "gray", "grey", "beige", "brown", "red", "pink", "navy"},
	"khaki":  {"navy", "white", "olive", "brown", "denim"},
	"red":    {"black", "white", "navy", "gray", "grey", "denim"},
	"blue":   {"white", "gray", "grey", "black", "beige", "tan", "yellow"},
	"green":  {"white", "black", "beige", "brown", "tan", "cream"},
	"olive":  {"black", "white", "beige", "tan", "khaki", "brown"},
	"pink":   {"white", "gray", "grey", "navy", "black", "denim"},
	"yellow": {"navy", "white", "gray", "grey", "black", "denim"},
	"purple": {"white", "gray", "grey", "black"},
	"orange": {"navy", "white", "black", "denim"},
	"maroon": {"white", "beige", "gray", "grey", "tan"},
	"cream":  {"brown", "navy", "green", "olive", "maroon", "black"},
	"tan":    {"navy", "brown", "white", "green", "maroon", "black"},
}

// clashSets are combinations that never work together regardless of context.
var clashSets = [][]string{
	{"red", "orange", "yellow"},
	{"red", "green"},
	{"orange", "purple"},
	{"pink", "orange"},
	{"green", "purple"},
}

// single-color outfits in these colors read as intentional (team colors)
var monochromeTeamColors = map[string]bool{
	"red":   true,
	"blue":  true,
	"green": true,
}

func normalizeColor(color string) string {
	return strings.ToLower(strings.TrimSpace(color))
}

func isNeutral(color string) bool {
	return neutralColors[normalizeColor(color)]
}

func colorsAdjacent(a, b string) bool {
	for _, candidate := range colorPairs[a] {
		if candidate == b {
			return true
		}
	}
	for _, candidate := range colorPairs[b] {
		if candidate == a {
			return true
		}
	}
	return false
}

func colorPairScore(a, b string) float64 {
	a, b = normalizeColor(a), normalizeColor(b)
	if a == b {
		return 1.0
	}
	if colorsAdjacent(a, b) {
		return 0.8
	}
	if neutralColors[a] || neutralColors[b] {
		return 0.6
	}
	if (lightColors[a] && darkColors[b]) || (darkColors[a] && lightColors[b]) {
		return 0.5
	}
	return 0.3
}

// garmentPairScore is the mean over all color combinations between two
// garments. Garments without color data score a neutral 0.5.
func garmentPairScore(a, b *models.Clothing) float64 {
	if len(a.Colors) == 0 || len(b.Colors) == 0 {
		return 0.5
	}
	var sum float64
	var count int
	for _, colorA := range a.Colors {
		for _, colorB := range b.Colors {
			sum += colorPairScore(colorA, colorB)
			count++
		}
	}
	return sum / float64(count)
}

// outfitColorScore averages garmentPairScore over every unordered garment pair.
func outfitColorScore(items []*models.Clothing) float64 {
	if len(items) < 2 {
		return 0.5
	}
	var sum float64
	var pairs int
	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			sum += garmentPairScore(items[i], items[j])
			pairs++
		}
	}
	return sum / float64(pairs)
}

func outfitColorSet(items []*models.Clothing) map[string]bool {
	set := map[string]bool{}
	for _, item := range items {
		for _, color := range item.Colors {
			set[normalizeColor(color)] = true
		}
	}
	return set
}

// clashPenalty returns a penalty in [-0.5, 0]. The clash-list check wins over
// the monochrome check when both would apply.
func clashPenalty(items []*models.Clothing, weather *Weather, occasion *models.Occasion) float64 {
	colors := outfitColorSet(items)
	if len(colors) == 0 {
		return 0
	}

	for _, clash := range clashSets {
		all := true
		for _, color := range clash {
			if !colors[color] {
				all = false
				break
			}
		}
		if all {
			return -0.5
		}
	}

	if len(colors) != 1 {
		return 0
	}
	var only string
	for color := range colors {
		only = color
	}
	switch {
	case only == "black":
		return 0
	case monochromeTeamColors[only]:
		return 0
	case only == "navy" || only == "gray" || only == "grey":
		// boring but safe
		return -0.1
	case only == "white":
		penalty := 0.0
		if weather != nil && weather.PrecipitationPct > 30 {
			penalty -= 0.3
		}
		if occasion != nil && (*occasion == models.OccasionCasual || *occasion == models.OccasionClass || *occasion == models.OccasionWork) {
			penalty -= 0.2
		}
		if weather != nil && weather.TemperatureF < 50 {
			penalty -= 0.2
		}
		if penalty == 0 {
			penalty = -0.05
		}
		// contexts stack but the penalty never exceeds the clash-list one
		if penalty < -0.5 {
			penalty = -0.5
		}
		return penalty
	default:
		return -0.3
	}
}

// neutralAnchorBonus rewards outfits grounded by neutral shoes, capped at 0.2.
func neutralAnchorBonus(items []*models.Clothing) float64 {
	bonus := 0.0
	var shoes *models.Clothing
	for _, item := range items {
		if item.Category == CategoryShoes {
			shoes = item
			break
		}
	}
	if shoes != nil {
		blackOrWhite := false
		otherNeutral := false
		for _, color := range shoes.Colors {
			normalized := normalizeColor(color)
			if normalized == "black" || normalized == "white" {
				blackOrWhite = true
			} else if neutralColors[normalized] {
				otherNeutral = true
			}
		}
		if blackOrWhite {
			bonus += 0.15
		} else if otherNeutral {
			bonus += 0.10
		}
	}

	var mentions, neutralMentions int
	for _, item := range items {
		for _, color := range item.Colors {
			mentions++
			if isNeutral(color) {
				neutralMentions++
			}
		}
	}
	if mentions > 0 && float64(neutralMentions)/float64(mentions) >= 0.7 {
		bonus += 0.05
	}
	if bonus > 0.2 {
		bonus = 0.2
	}
	return bonus
}
