package outfits

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"closetlyapi/models"
)

// exhaustive enumeration caps at 20 items per mandatory category
const exhaustiveCategoryCap = 20

// Readiness thresholds: the minimum closet below which generated outfits get
// too repetitive to be worth showing.
const (
	ReadyMinTops    = 5
	ReadyMinBottoms = 3
	ReadyMinShoes   = 2
	ReadyMinTotal   = 10
)

// IsWardrobeReady reports whether the closet is large enough for the
// generate action to be offered. Generation itself does not enforce this.
func IsWardrobeReady(wardrobe []models.Clothing) bool {
	var tops, bottoms, shoes int
	for i := range wardrobe {
		switch wardrobe[i].Category {
		case CategoryTop:
			tops++
		case CategoryBottom:
			bottoms++
		case CategoryShoes:
			shoes++
		}
	}
	return tops >= ReadyMinTops && bottoms >= ReadyMinBottoms &&
		shoes >= ReadyMinShoes && len(wardrobe) >= ReadyMinTotal
}

func buildPools(wardrobe []models.Clothing) map[string][]*models.Clothing {
	pools := map[string][]*models.Clothing{}
	for i := range wardrobe {
		item := &wardrobe[i]
		pools[item.Category] = append(pools[item.Category], item)
	}
	return pools
}

// outerwearProbability follows temperature: always under extreme cold,
// usually under regular cold, occasional fashion layering otherwise.
func outerwearProbability(weather *Weather) float64 {
	if weather == nil {
		return 0.2
	}
	switch {
	case weather.TemperatureF < 20:
		return 1.0
	case weather.TemperatureF < 50:
		return 0.7
	default:
		return 0.2
	}
}

const accessoryProbability = 0.3

func copyGarment(item *models.Clothing) *models.Clothing {
	clone := *item
	return &clone
}

type candidateKey string

func mandatoryKey(top, bottom, shoes *models.Clothing) candidateKey {
	return candidateKey(fmt.Sprintf("%d/%d/%d", top.ID, bottom.ID, shoes.ID))
}

// Generate produces up to opts.Count admissible outfits, best first. An empty
// result is the documented "cannot compose an outfit" signal, not an error:
// any empty mandatory category short-circuits immediately.
func Generate(wardrobe []models.Clothing, profile Profile, opts Options) []Outfit {
	count := opts.Count
	if count <= 0 {
		count = defaultCount
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	pools := buildPools(wardrobe)
	if opts.RequiredItem != nil {
		pools[opts.RequiredItem.Category] = []*models.Clothing{opts.RequiredItem}
	}
	if opts.Occasion != nil {
		pools = filterForOccasion(pools, *opts.Occasion)
	}

	tops := pools[CategoryTop]
	bottoms := pools[CategoryBottom]
	shoes := pools[CategoryShoes]
	if len(tops) == 0 || len(bottoms) == 0 || len(shoes) == 0 {
		return []Outfit{}
	}
	outerwear := pools[CategoryOuterwear]
	accessories := pools[CategoryAccessory]

	outerwearChance := outerwearProbability(opts.Weather)
	// a required optional-category item overrides the inclusion roll, the pool
	// pinning alone would leave it out of most outfits
	requireOuterwear := opts.RequiredItem != nil && opts.RequiredItem.Category == CategoryOuterwear
	requireAccessory := opts.RequiredItem != nil && opts.RequiredItem.Category == CategoryAccessory
	if (requireOuterwear && len(outerwear) == 0) || (requireAccessory && len(accessories) == 0) {
		return []Outfit{}
	}

	assemble := func(top, bottom, shoe *models.Clothing) Outfit {
		outfit := Outfit{
			Top:    copyGarment(top),
			Bottom: copyGarment(bottom),
			Shoes:  copyGarment(shoe),
		}
		if len(outerwear) > 0 && (requireOuterwear || rng.Float64() < outerwearChance) {
			outfit.Outerwear = copyGarment(outerwear[rng.Intn(len(outerwear))])
		}
		if len(accessories) > 0 && (requireAccessory || rng.Float64() < accessoryProbability) {
			outfit.Accessory = copyGarment(accessories[rng.Intn(len(accessories))])
		}
		scoreOutfit(&outfit, profile, opts)
		return outfit
	}

	var admissible []Outfit
	combinations := len(tops) * len(bottoms) * len(shoes)
	if combinations > count*20 {
		// sampling path: random picks with duplicate rejection, bounded
		// attempts, early exit once 2N admissible candidates are in hand
		seen := map[candidateKey]bool{}
		attempts := count * 10
		for i := 0; i < attempts && len(admissible) < 2*count; i++ {
			top := tops[rng.Intn(len(tops))]
			bottom := bottoms[rng.Intn(len(bottoms))]
			shoe := shoes[rng.Intn(len(shoes))]
			key := mandatoryKey(top, bottom, shoe)
			if seen[key] {
				continue
			}
			seen[key] = true
			outfit := assemble(top, bottom, shoe)
			if outfit.Score >= admissionThreshold {
				admissible = append(admissible, outfit)
			}
		}
	} else {
		boundedTops := tops
		if len(boundedTops) > exhaustiveCategoryCap {
			boundedTops = boundedTops[:exhaustiveCategoryCap]
		}
		boundedBottoms := bottoms
		if len(boundedBottoms) > exhaustiveCategoryCap {
			boundedBottoms = boundedBottoms[:exhaustiveCategoryCap]
		}
		boundedShoes := shoes
		if len(boundedShoes) > exhaustiveCategoryCap {
			boundedShoes = boundedShoes[:exhaustiveCategoryCap]
		}
		for _, top := range boundedTops {
			for _, bottom := range boundedBottoms {
				for _, shoe := range boundedShoes {
					outfit := assemble(top, bottom, shoe)
					if outfit.Score >= admissionThreshold {
						admissible = append(admissible, outfit)
					}
				}
			}
		}
	}

	sort.SliceStable(admissible, func(i, j int) bool {
		return admissible[i].Score > admissible[j].Score
	})
	if len(admissible) > count {
		admissible = admissible[:count]
	}
	now := time.Now().UTC()
	for i := range admissible {
		admissible[i].Uid = newOutfitUid()
		admissible[i].GeneratedAt = now
	}
	return admissible
}
