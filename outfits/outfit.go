// Package outfits is the rule-based outfit recommendation engine. It is a
// pure function of its inputs: it reads wardrobe and profile data, never
// mutates them, performs no I/O and spawns no goroutines. Callers own
// persistence, concurrency and any AI-assisted recommendation path.
package outfits

import (
	"math/rand"
	"time"

	"closetlyapi/models"

	"github.com/google/uuid"
)

const (
	CategoryTop       = "top"
	CategoryBottom    = "bottom"
	CategoryShoes     = "shoes"
	CategoryOuterwear = "outerwear"
	CategoryAccessory = "accessory"
)

// No outfit below this score is ever returned.
const admissionThreshold = 0.3

const defaultCount = 10

// Profile is the slice of the user account the engine reads: declared style
// preferences on a 0-10 scale and favorite color names.
type Profile struct {
	StylePreferences map[models.Style]int
	FavoriteColors   []string
}

// Weather is the context for weather-aware scoring. Humidity, wind and
// feels-like are carried for display but do not influence scores.
type Weather struct {
	TemperatureF     float64
	PrecipitationPct float64
	HumidityPct      float64
	WindMph          float64
	FeelsLikeF       float64
}

// Options controls a single generation run.
type Options struct {
	// Count is the number of outfits to return, default 10.
	Count    int
	Weather  *Weather
	Occasion *models.Occasion
	// RequiredItem pins its category pool to this single garment. For the
	// optional categories the inclusion roll is skipped, the item is always
	// worn.
	RequiredItem *models.Clothing
	// Rand drives sampling and layering decisions. Tests inject a seeded
	// source for reproducible runs; nil falls back to a time-seeded one.
	Rand *rand.Rand
}

// Outfit is one scored recommendation. Garment pointers are shallow copies
// taken at generation time, independent of later wardrobe mutations.
type Outfit struct {
	Uid         string
	GeneratedAt time.Time

	Top       *models.Clothing
	Bottom    *models.Clothing
	Shoes     *models.Clothing
	Outerwear *models.Clothing
	Accessory *models.Clothing

	Score      float64
	ColorScore float64
	StyleScore float64
	// nil when any garment lacks an occasion annotation
	OccasionScore *float64
}

// Items returns the constituent garments, mandatory categories first.
func (o *Outfit) Items() []*models.Clothing {
	items := []*models.Clothing{o.Top, o.Bottom, o.Shoes}
	if o.Outerwear != nil {
		items = append(items, o.Outerwear)
	}
	if o.Accessory != nil {
		items = append(items, o.Accessory)
	}
	return items
}

func newOutfitUid() string {
	return uuid.NewString()
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
