package preference_test

import (
	"testing"

	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	cases := map[string]string{
		"mac":       "macOS",
		"windows":   "Windows",
		"linux":     "Linux",
		"other":     "Other",
		"":          "Not set",
		"chrome-os": "Chrome Os",
	}
	for in, want := range cases {
		assert.Equal(t, want, preference.DisplayName(in), in)
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "linux", preference.Normalize("  Linux \n"))
}
