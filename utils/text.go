package utils

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TitleCase normalizes a free-form name for display, e.g. "acme robotics"
// becomes "Acme Robotics". A fresh caser per call: casers are stateful and
// not safe to share between goroutines.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}
