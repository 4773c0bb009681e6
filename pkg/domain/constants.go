package domain

// Page vocabulary shared by the render pipeline and the page adapters.
const (
	// QueryParamStep carries the deep-link target in the URL.
	QueryParamStep = "step"

	// ClassThisPlatform marks content for the user's platform.
	ClassThisPlatform = "this-platform"
	// ClassOtherPlatform marks content for any other platform.
	ClassOtherPlatform = "other-platform"

	ClassActionButton   = "action-btn"
	ClassActionEnabled  = "action-btn-enabled"
	ClassActionDisabled = "action-btn-disabled"
	ClassBackButton     = "back-btn"

	// BackButtonID is prefixed so no action label collides with it.
	BackButtonID    = "__back"
	BackButtonLabel = "← Back"

	// ErrorTitle is shown in the title region for in-place and fatal errors.
	ErrorTitle = "Error"
)

// Well-known platform values. Hosts may use any opaque string.
const (
	PlatformMac     = "mac"
	PlatformWindows = "windows"
	PlatformLinux   = "linux"
	PlatformOther   = "other"
)

// Platforms lists the well-known platform values in display order.
var Platforms = []string{PlatformMac, PlatformWindows, PlatformLinux, PlatformOther}
