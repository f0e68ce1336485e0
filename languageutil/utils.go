package languageutil

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var TitleCaser = cases.Title(language.English)
var LowerCaser = cases.Lower(language.English)

// DisplayName makes a garment name presentable in messages. Analysis output
// and user input arrive in mixed casing.
func DisplayName(name string) string {
	return TitleCaser.String(strings.TrimSpace(name))
}

// DisplayColor lowercases a color word for mid-sentence use.
func DisplayColor(color string) string {
	return LowerCaser.String(strings.TrimSpace(color))
}
