package preference

import (
	"strings"

	"github.com/aretw0/walkthrough/pkg/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var displayNames = map[string]string{
	domain.PlatformMac:   "macOS",
	domain.PlatformOther: "Other",
}

// DisplayName returns a human label for a platform value. Unknown values
// are title-cased, so custom platforms like "freebsd" read "Freebsd".
// A Caser is stateful, so each call gets its own.
func DisplayName(platform string) string {
	if name, ok := displayNames[platform]; ok {
		return name
	}
	if platform == "" {
		return "Not set"
	}
	return cases.Title(language.English).String(strings.ReplaceAll(platform, "-", " "))
}

// Normalize lowercases and trims a user-supplied platform value.
func Normalize(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}
