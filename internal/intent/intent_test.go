package intent

import (
	"errors"
	"strings"
	"testing"

	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Intent
	}{
		{"free text", "  make a cat runner ", Intent{Kind: KindChat, Text: "make a cat runner"}},
		{"slash inside text", "jump/duck game", Intent{Kind: KindChat, Text: "jump/duck game"}},
		{"template", "/template racing", Intent{Kind: KindTemplate, Template: spec.Racing}},
		{"template with request", "/Template Tetris neon blocks", Intent{Kind: KindTemplate, Template: spec.Tetris, Text: "neon blocks"}},
		{"style", "/style pixel art, 16 colors", Intent{Kind: KindStyle, Text: "pixel art, 16 colors"}},
		{"scale", "/scale player 1.5", Intent{Kind: KindScale, Slot: assets.SlotPlayer, Scale: 1.5}},
		{"regen bg", "/regen bg", Intent{Kind: KindRegen, Slot: assets.SlotBackground}},
		{"save titled", "/save Space Cat", Intent{Kind: KindSave, Text: "Space Cat"}},
		{"save untitled", "/save", Intent{Kind: KindSave}},
		{"help", "/help", Intent{Kind: KindHelp}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q): %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("Parse(%q) = %+v, expected %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input string
		want  error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"/", ErrUnknownCommand},
		{"/dance", ErrUnknownCommand},
		{"/template", ErrUsage},
		{"/template pinball", ErrUsage},
		{"/style", ErrUsage},
		{"/scale player", ErrUsage},
		{"/scale background 2", ErrUsage},
		{"/scale player big", ErrUsage},
		{"/scale obstacle 9", ErrUsage},
		{"/scale obstacle 0", ErrUsage},
		{"/regen", ErrUsage},
		{"/regen enemy", ErrUsage},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := Parse(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("Parse(%q) error = %v, expected %v", tt.input, err, tt.want)
			}
		})
	}
}

func TestUsageInError(t *testing.T) {
	_, err := Parse("/scale player")
	if err == nil || !strings.Contains(err.Error(), "/scale <player|obstacle> <factor>") {
		t.Errorf("error should carry the usage line: %v", err)
	}
}

func TestHelpListsEveryCommand(t *testing.T) {
	h := Help()
	for _, c := range commands {
		if !strings.Contains(h, "/"+c.name) {
			t.Errorf("help is missing /%s", c.name)
		}
	}
}
