package runner

import (
	"testing"

	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	buttons := []domain.Button{
		domain.BackButton(),
		domain.ActionButton(domain.Action{Label: "Next", NextStep: "b"}),
		domain.ActionButton(domain.Action{Label: "Open Docs", Type: domain.ActionTypeExternalLink, URL: "https://example.com"}),
	}

	tests := []struct {
		input string
		want  Command
	}{
		{"", Command{}},
		{"1", Command{Kind: CommandActivate, Arg: domain.BackButtonID}},
		{"2", Command{Kind: CommandActivate, Arg: "Next"}},
		{"next", Command{Kind: CommandActivate, Arg: "Next"}},
		{"Open Docs", Command{Kind: CommandActivate, Arg: "Open Docs"}},
		{"b", Command{Kind: CommandBack}},
		{"BACK", Command{Kind: CommandBack}},
		{"r", Command{Kind: CommandRestart}},
		{"reset", Command{Kind: CommandReset}},
		{"p Linux", Command{Kind: CommandPlatform, Arg: "linux"}},
		{"platform", Command{Kind: CommandPlatform}},
		{"go install", Command{Kind: CommandGoTo, Arg: "install"}},
		{"enable next", Command{Kind: CommandEnable, Arg: "Next"}},
		{"enable Ghost", Command{Kind: CommandEnable, Arg: "Ghost"}},
		{"?", Command{Kind: CommandHelp}},
		{"exit", Command{Kind: CommandQuit}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseCommand(tt.input, buttons)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	buttons := []domain.Button{domain.ActionButton(domain.Action{Label: "Next"})}

	for _, input := range []string{"0", "2", "-1", "go", "enable", "frobnicate"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseCommand(input, buttons)
			assert.ErrorIs(t, err, ErrUnknownCommand)
		})
	}
}

func TestCommandLineRoundTrip(t *testing.T) {
	buttons := []domain.Button{domain.ActionButton(domain.Action{Label: "Next"})}
	cmds := []Command{
		{Kind: CommandActivate, Arg: "Next"},
		{Kind: CommandBack},
		{Kind: CommandRestart},
		{Kind: CommandPlatform, Arg: "mac"},
		{Kind: CommandReset},
		{Kind: CommandGoTo, Arg: "install"},
		{Kind: CommandEnable, Arg: "Next"},
		{Kind: CommandHelp},
		{Kind: CommandQuit},
	}
	for _, cmd := range cmds {
		got, err := ParseCommand(commandLine(cmd), buttons)
		require.NoError(t, err)
		assert.Equal(t, cmd, got)
	}
}
