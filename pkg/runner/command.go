package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/walkthrough/pkg/domain"
)

// CommandKind identifies what a line of user input asks for.
type CommandKind string

const (
	CommandNone     CommandKind = ""
	CommandActivate CommandKind = "activate"
	CommandBack     CommandKind = "back"
	CommandRestart  CommandKind = "restart"
	CommandPlatform CommandKind = "platform"
	CommandReset    CommandKind = "reset"
	CommandGoTo     CommandKind = "goto"
	CommandEnable   CommandKind = "enable"
	CommandHelp     CommandKind = "help"
	CommandQuit     CommandKind = "quit"
)

// Command is a parsed line of user input.
type Command struct {
	Kind CommandKind `json:"command"`
	// Arg is the button id, step id or platform, depending on Kind.
	Arg string `json:"arg,omitempty"`
}

// ErrUnknownCommand is returned for input that matches no command or button.
var ErrUnknownCommand = errors.New("unknown command")

// HelpText lists the commands understood by ParseCommand.
const HelpText = `Commands:
  <n>            activate the n-th button
  <label>        activate the button with that label
  b, back        go back
  r, restart     start over
  p <platform>   set your platform (mac, windows, linux, other)
  reset          forget your platform
  go <step>      jump to a step
  enable <label> enable a disabled button
  h, help        show this help
  q, quit        exit`

// ParseCommand interprets input against the buttons currently on screen.
// Numbers are 1-based positions in buttons. A bare word that is not a
// keyword is matched case-insensitively against button labels.
func ParseCommand(input string, buttons []domain.Button) (Command, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Command{}, nil
	}

	verb, arg, _ := strings.Cut(input, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(verb) {
	case "q", "quit", "exit":
		return Command{Kind: CommandQuit}, nil
	case "h", "help", "?":
		return Command{Kind: CommandHelp}, nil
	case "b", "back":
		if arg == "" {
			return Command{Kind: CommandBack}, nil
		}
	case "r", "restart":
		if arg == "" {
			return Command{Kind: CommandRestart}, nil
		}
	case "reset":
		if arg == "" {
			return Command{Kind: CommandReset}, nil
		}
	case "p", "platform":
		return Command{Kind: CommandPlatform, Arg: strings.ToLower(arg)}, nil
	case "go", "goto":
		if arg == "" {
			return Command{}, fmt.Errorf("%w: %s needs a step id", ErrUnknownCommand, verb)
		}
		return Command{Kind: CommandGoTo, Arg: arg}, nil
	case "enable":
		if arg == "" {
			return Command{}, fmt.Errorf("%w: enable needs a button label", ErrUnknownCommand)
		}
		if b, ok := matchButton(arg, buttons); ok {
			return Command{Kind: CommandEnable, Arg: b.ID}, nil
		}
		return Command{Kind: CommandEnable, Arg: arg}, nil
	}

	if n, err := strconv.Atoi(input); err == nil {
		if n < 1 || n > len(buttons) {
			return Command{}, fmt.Errorf("%w: no button %d", ErrUnknownCommand, n)
		}
		return Command{Kind: CommandActivate, Arg: buttons[n-1].ID}, nil
	}

	if b, ok := matchButton(input, buttons); ok {
		return Command{Kind: CommandActivate, Arg: b.ID}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, input)
}

func matchButton(label string, buttons []domain.Button) (domain.Button, bool) {
	for _, b := range buttons {
		if b.ID == label {
			return b, true
		}
	}
	for _, b := range buttons {
		if strings.EqualFold(b.ID, label) || strings.EqualFold(b.Label, label) {
			return b, true
		}
	}
	return domain.Button{}, false
}
