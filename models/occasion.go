package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Occasion string

const (
	OccasionWork      Occasion = "work"
	OccasionClass     Occasion = "class"
	OccasionGym       Occasion = "gym"
	OccasionCasual    Occasion = "casual"
	OccasionSocial    Occasion = "social"
	OccasionFormal    Occasion = "formal"
	OccasionDate      Occasion = "date"
	OccasionInterview Occasion = "interview"
)

func (l *Occasion) Scan(value interface{}) error {
	*l = Occasion(value.(string))
	return nil
}

func (l Occasion) Value() string {
	return string(l)
}

func ValidateOccasion(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	matched, _ := regexp.MatchString("^work|class|gym|casual|social|formal|date|interview$", string(value))
	return matched
}

func ValidateOccasionRaw(value string) bool {
	matched, _ := regexp.MatchString("^work|class|gym|casual|social|formal|date|interview$", value)
	return matched
}
