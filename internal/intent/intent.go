// Package intent classifies chat input. Lines starting with "/" are
// commands; anything else is a free-text generation request.
package intent

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

// Kind is the class of a chat input.
type Kind int

const (
	KindChat Kind = iota
	KindTemplate
	KindStyle
	KindScale
	KindRegen
	KindSave
	KindHelp
)

// String returns the command name of the kind.
func (k Kind) String() string {
	switch k {
	case KindChat:
		return "chat"
	case KindTemplate:
		return "template"
	case KindStyle:
		return "style"
	case KindScale:
		return "scale"
	case KindRegen:
		return "regen"
	case KindSave:
		return "save"
	case KindHelp:
		return "help"
	default:
		return "unknown"
	}
}

// Scale bounds accepted by /scale.
const (
	MinScale = 0.1
	MaxScale = 4.0
)

var (
	// ErrEmpty is returned for blank input.
	ErrEmpty = errors.New("intent: empty input")
	// ErrUnknownCommand is returned for an unrecognized "/" command.
	ErrUnknownCommand = errors.New("intent: unknown command")
	// ErrUsage is returned when a command's arguments are malformed.
	ErrUsage = errors.New("intent: bad arguments")
)

// Intent is a classified chat input.
type Intent struct {
	Kind     Kind
	Text     string        // free text: the request, style or save title
	Template spec.Template // KindTemplate
	Slot     assets.Slot   // KindScale, KindRegen
	Scale    float64       // KindScale
}

// command describes one "/" command.
type command struct {
	name  string
	usage string
	help  string
	parse func(args []string, rest string) (Intent, error)
}

var commands = []command{
	{"template", "/template <genre> [request]", "regenerate with a forced genre", parseTemplate},
	{"style", "/style <text>", "set the art style for image prompts", parseStyle},
	{"scale", "/scale <player|obstacle> <factor>", "resize a sprite", parseScale},
	{"regen", "/regen <player|obstacle|background>", "regenerate one asset", parseRegen},
	{"save", "/save [title]", "save the current game", parseSave},
	{"help", "/help", "list commands", parseHelp},
}

// Parse classifies one line of chat input.
func Parse(input string) (Intent, error) {
	line := strings.TrimSpace(input)
	if line == "" {
		return Intent{}, ErrEmpty
	}
	if !strings.HasPrefix(line, "/") {
		return Intent{Kind: KindChat, Text: line}, nil
	}

	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return Intent{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
	}
	name := strings.ToLower(fields[0])
	rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[1:]), fields[0]))

	for _, c := range commands {
		if c.name == name {
			it, err := c.parse(fields[1:], rest)
			if err != nil {
				return Intent{}, fmt.Errorf("%w: %v (usage: %s)", ErrUsage, err, c.usage)
			}
			return it, nil
		}
	}
	return Intent{}, fmt.Errorf("%w: /%s", ErrUnknownCommand, name)
}

func parseTemplate(args []string, rest string) (Intent, error) {
	if len(args) == 0 {
		return Intent{}, errors.New("missing genre")
	}
	t := spec.Template(strings.ToLower(args[0]))
	if !t.Known() {
		return Intent{}, fmt.Errorf("unknown genre %q", args[0])
	}
	text := strings.TrimSpace(strings.TrimPrefix(rest, args[0]))
	return Intent{Kind: KindTemplate, Template: t, Text: text}, nil
}

func parseStyle(_ []string, rest string) (Intent, error) {
	if rest == "" {
		return Intent{}, errors.New("missing style")
	}
	return Intent{Kind: KindStyle, Text: rest}, nil
}

func parseScale(args []string, _ string) (Intent, error) {
	if len(args) != 2 {
		return Intent{}, errors.New("need a sprite and a factor")
	}
	slot, ok := assets.ParseSlot(args[0])
	if !ok || slot == assets.SlotBackground {
		return Intent{}, fmt.Errorf("cannot scale %q", args[0])
	}
	f, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return Intent{}, fmt.Errorf("bad factor %q", args[1])
	}
	if f < MinScale || f > MaxScale {
		return Intent{}, fmt.Errorf("factor %g outside [%g, %g]", f, MinScale, MaxScale)
	}
	return Intent{Kind: KindScale, Slot: slot, Scale: f}, nil
}

func parseRegen(args []string, _ string) (Intent, error) {
	if len(args) != 1 {
		return Intent{}, errors.New("need one slot")
	}
	slot, ok := assets.ParseSlot(args[0])
	if !ok {
		return Intent{}, fmt.Errorf("unknown slot %q", args[0])
	}
	return Intent{Kind: KindRegen, Slot: slot}, nil
}

func parseSave(_ []string, rest string) (Intent, error) {
	return Intent{Kind: KindSave, Text: rest}, nil
}

func parseHelp([]string, string) (Intent, error) {
	return Intent{Kind: KindHelp}, nil
}

// Help lists the commands, one per line.
func Help() string {
	var sb strings.Builder
	for _, c := range commands {
		fmt.Fprintf(&sb, "%-38s %s\n", c.usage, c.help)
	}
	sb.WriteString("anything else                          describe the game you want\n")
	return sb.String()
}
