package process

import (
	"context"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCommand(t *testing.T) {
	cmd, _ := defaultCommand("darwin")
	assert.Equal(t, "open", cmd)

	cmd, args := defaultCommand("windows")
	assert.Equal(t, "rundll32", cmd)
	assert.Equal(t, []string{"url.dll,FileProtocolHandler"}, args)

	cmd, _ = defaultCommand("linux")
	assert.Equal(t, "xdg-open", cmd)
}

func TestOpener_RejectsSchemes(t *testing.T) {
	o := NewOpener(WithCommand("true"))
	ctx := context.Background()

	for _, u := range []string{"file:///etc/passwd", "javascript:alert(1)", "/usr/bin/env", "%zz"} {
		assert.Error(t, o.Open(ctx, u), u)
	}
}

func TestOpener_RunsCommand(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	o := NewOpener(WithCommand("true"))
	require.NoError(t, o.Open(context.Background(), "https://example.com/docs"))
}

func TestOpener_CommandFailure(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}
	o := NewOpener(WithCommand("false"))
	assert.Error(t, o.Open(context.Background(), "https://example.com"))
}

func TestOpener_CustomSchemes(t *testing.T) {
	if _, err := exec.LookPath("true"); err != nil {
		t.Skip("true not available")
	}
	o := NewOpener(WithCommand("true"), WithSchemes("vscode"))
	assert.NoError(t, o.Open(context.Background(), "vscode://settings"))
	assert.Error(t, o.Open(context.Background(), "https://example.com"))
}
