package models

import (
	"regexp"

	"github.com/go-playground/validator"
)

type Style string

const (
	StyleCasual     Style = "casual"
	StyleFormal     Style = "formal"
	StyleStreetwear Style = "streetwear"
	StyleAthletic   Style = "athletic"
	StylePreppy     Style = "preppy"
)

func (l *Style) Scan(value interface{}) error {
	*l = Style(value.(string))
	return nil
}

func (l Style) Value() string {
	return string(l)
}

func ScanStyle(value string) Style {
	return Style(value)
}

func ValidateStyle(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	matched, _ := regexp.MatchString("^casual|formal|streetwear|athletic|preppy$", string(value))
	return matched
}

func ValidateStyleRaw(value string) bool {
	matched, _ := regexp.MatchString("^casual|formal|streetwear|athletic|preppy$", value)
	return matched
}
