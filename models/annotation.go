package models

import (
	"strconv"
	"strings"
)

// ClothingAnnotation is the typed view over the vision-analysis columns.
// A nil annotation means the garment was never analyzed (or analysis failed),
// so callers branch on presence instead of probing individual zero values.
type ClothingAnnotation struct {
	Description    string
	Formality      int // 1 casual, 2 business-casual, 3 formal
	OccasionScores map[Occasion]int
}

// Annotation returns the parsed analysis bundle, or nil when the garment has
// not been scored yet. Occasion scores are stored as "occasion:score" pairs;
// malformed entries are skipped.
func (c *Clothing) Annotation() *ClothingAnnotation {
	if c.Formality == 0 && len(c.OccasionScores) == 0 {
		return nil
	}
	annotation := ClothingAnnotation{
		Formality:      c.Formality,
		OccasionScores: map[Occasion]int{},
	}
	if c.Description != nil {
		annotation.Description = *c.Description
	}
	for _, pair := range c.OccasionScores {
		parts := strings.SplitN(pair, ":", 2)
		if len(parts) != 2 {
			continue
		}
		score, err := strconv.Atoi(parts[1])
		if err != nil || score < 0 || score > 10 {
			continue
		}
		annotation.OccasionScores[Occasion(parts[0])] = score
	}
	return &annotation
}

// SetOccasionScores overwrites the stored pairs from a typed map.
func (c *Clothing) SetOccasionScores(scores map[Occasion]int) {
	pairs := make([]string, 0, len(scores))
	for occasion, score := range scores {
		pairs = append(pairs, string(occasion)+":"+strconv.Itoa(score))
	}
	c.OccasionScores = pairs
}
