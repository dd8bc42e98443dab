package spec

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/vovakirdan/arcade-studio/internal/assets"
)

func TestParseJSON(t *testing.T) {
	data := []byte(`{
		"template": "Runner",
		"playerSprite": {"name": "Cat", "url": null, "scale": 0.5},
		"obstacleSprite": {"name": "Mouse", "url": null},
		"control": "keyboard",
		"theme": "space",
		"imagePrompts": {"player": "a cat", "obstacle": "a mouse"}
	}`)

	g, err := ParseJSON(data)
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if g.Template != Runner {
		t.Errorf("Template = %q, expected runner", g.Template)
	}
	if g.PlayerSprite.ScaleOrDefault() != 0.5 {
		t.Errorf("player scale = %v, expected 0.5", g.PlayerSprite.ScaleOrDefault())
	}
	if g.ObstacleSprite.ScaleOrDefault() != 1.0 {
		t.Errorf("obstacle scale should default to 1.0, got %v", g.ObstacleSprite.ScaleOrDefault())
	}
	if !g.Expects(assets.SlotPlayer) || g.Expects(assets.SlotBackground) {
		t.Error("player should be expected, background should not")
	}
}

func TestParseYAML(t *testing.T) {
	data := []byte(`
template: tetris
theme: classic
player_sprite: {name: block}
`)
	g, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if g.Template != Tetris || g.PlayerSprite.NameOr("x") != "block" {
		t.Errorf("unexpected spec: %+v", g)
	}
}

func TestUnknownTemplateKept(t *testing.T) {
	g, err := ParseJSON([]byte(`{"template": "platformer"}`))
	if err != nil {
		t.Fatalf("ParseJSON error: %v", err)
	}
	if g.Template.Known() {
		t.Error("platformer should not be a known template")
	}
}

func TestCloneIsDeep(t *testing.T) {
	url := "data:x"
	g := GameSpec{PlayerSprite: &AssetRef{Name: "p", URL: &url, Scale: 1}}
	c := g.Clone()
	*c.PlayerSprite.URL = "changed"
	c.PlayerSprite.Scale = 3

	if *g.PlayerSprite.URL != "data:x" || g.PlayerSprite.Scale != 1 {
		t.Error("Clone shares state with the original")
	}
}

func TestWithScale(t *testing.T) {
	g := ForGenre(Runner)
	s := g.WithScale(assets.SlotObstacle, 2)

	if s.ObstacleSprite.Scale != 2 {
		t.Errorf("scale = %v, expected 2", s.ObstacleSprite.Scale)
	}
	if g.ObstacleSprite.Scale != 0.5 {
		t.Error("WithScale mutated the receiver")
	}

	s = g.WithScale(assets.SlotBackground, 1.5)
	if s.BackgroundImage == nil || s.BackgroundImage.Scale != 1.5 {
		t.Error("WithScale should create a missing ref")
	}
}

func TestTranscriptAppendOnly(t *testing.T) {
	tr := NewTranscript()
	tr.Append(NewMessage(RoleUser, "make a runner"))
	tr.Append(NewMessage(RoleAI, "ok"))

	msgs := tr.Messages()
	msgs[0].Content = "tampered"

	first := tr.Messages()[0]
	if first.Content != "make a runner" {
		t.Error("Messages() exposed internal storage")
	}
	if first.ID == "" || first.ID == tr.Messages()[1].ID {
		t.Error("messages should carry distinct ids")
	}
	if last, ok := tr.Last(); !ok || last.Role != RoleAI {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestLoadByExtension(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		file string
		data string
	}{
		{"yaml", "kart.yaml", "template: racing\nplayer_sprite:\n  name: Kart\n"},
		{"json", "kart.json", `{"template": "Racing", "playerSprite": {"name": "Kart"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			if err := os.WriteFile(path, []byte(tt.data), 0o644); err != nil {
				t.Fatal(err)
			}
			g, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if g.Template != Racing {
				t.Errorf("Template = %q, expected racing", g.Template)
			}
			if g.PlayerSprite == nil || g.PlayerSprite.Name != "Kart" {
				t.Errorf("PlayerSprite = %+v", g.PlayerSprite)
			}
		})
	}
}
