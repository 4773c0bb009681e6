package preference

import (
	"fmt"
	"regexp"

	"github.com/aretw0/walkthrough/pkg/domain"
)

var (
	macPlatform   = regexp.MustCompile(`(?i)Mac`)
	macAgent      = regexp.MustCompile(`(?i)Macintosh|Mac OS X`)
	winPlatform   = regexp.MustCompile(`(?i)Win`)
	winAgent      = regexp.MustCompile(`(?i)Windows`)
	linuxPlatform = regexp.MustCompile(`(?i)Linux`)
)

// Detect guesses the platform from a user agent and a navigator.platform
// style hint (either may be empty). The guess is a suggestion only and is
// never persisted automatically.
func Detect(userAgent, platform string) string {
	switch {
	case macPlatform.MatchString(platform) || macAgent.MatchString(userAgent):
		return domain.PlatformMac
	case winPlatform.MatchString(platform) || winAgent.MatchString(userAgent):
		return domain.PlatformWindows
	case linuxPlatform.MatchString(platform) || linuxPlatform.MatchString(userAgent):
		return domain.PlatformLinux
	}
	return domain.PlatformOther
}

// Describe formats the detection inputs for bug reports.
func Describe(userAgent, platform string) string {
	if userAgent == "" {
		userAgent = "no userAgent"
	}
	if platform == "" {
		platform = "no platform"
	}
	return fmt.Sprintf("userAgent: %s\nplatform: %s", userAgent, platform)
}

// DetectOS maps a runtime.GOOS value to a platform.
func DetectOS(goos string) string {
	if goos == "darwin" || goos == "ios" {
		return domain.PlatformMac
	}
	return Detect("", goos)
}
