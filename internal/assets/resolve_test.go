package assets

import (
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

const rawScene = `assets:
  - {key: background_sprite, url: "[[BACKGROUND_IMG_URL]]"}
  - {key: player_sprite, url: "[[PLAYER_IMG_URL]]"}
  - {key: obstacle_sprite, url: "[[OBSTACLE_IMG_URL]]"}
`

func TestSubstituteIdempotent(t *testing.T) {
	sets := []struct {
		name string
		set  Set
	}{
		{"empty", Set{}},
		{"player only", Set{SlotPlayer: {Status: Resolved, URL: "data:image/png;base64,AAAA"}}},
		{"all resolved", Set{
			SlotPlayer:     {Status: Resolved, URL: "data:image/png;base64,AAAA"},
			SlotObstacle:   {Status: Resolved, URL: "blob:obstacle"},
			SlotBackground: {Status: Resolved, URL: "https://example.com/bg.png"},
		}},
		{"failed obstacle", Set{SlotObstacle: {Status: Failed, Err: "boom"}}},
	}

	for _, tc := range sets {
		t.Run(tc.name, func(t *testing.T) {
			once := Substitute(rawScene, tc.set, DefaultLocal())
			twice := Substitute(once, tc.set, DefaultLocal())
			if once != twice {
				t.Errorf("substitution not idempotent:\n%s\nvs\n%s", once, twice)
			}
			if ContainsToken(once) {
				t.Errorf("resolved text still has a token:\n%s", once)
			}
		})
	}
}

func TestSubstitutePartial(t *testing.T) {
	set := Set{
		SlotPlayer:     {Status: Resolved, URL: "data:player"},
		SlotBackground: {Status: Pending},
	}
	got := Substitute(rawScene, set, DefaultLocal())

	if !strings.Contains(got, `url: "data:player"`) {
		t.Errorf("player url missing:\n%s", got)
	}
	if !strings.Contains(got, `{key: background_sprite, url: ""}`) {
		t.Errorf("pending background should become empty:\n%s", got)
	}
	if !strings.Contains(got, `{key: obstacle_sprite, url: ""}`) {
		t.Errorf("missing obstacle should become empty:\n%s", got)
	}
}

func TestSubstituteFailedUsesDefault(t *testing.T) {
	set := Set{SlotObstacle: {Status: Failed, Err: "image generation failed"}}
	got := Substitute(rawScene, set, DefaultLocal())

	if !strings.Contains(got, `url: "/images/obstacle.png"`) {
		t.Errorf("failed slot should fall back to the local default:\n%s", got)
	}
}

func TestSubstituteOrderIndependent(t *testing.T) {
	d := DefaultLocal()
	a := Set{}
	a[SlotPlayer] = Resolution{Status: Resolved, URL: "p"}
	a[SlotObstacle] = Resolution{Status: Resolved, URL: "o"}

	b := Set{}
	b[SlotObstacle] = Resolution{Status: Resolved, URL: "o"}
	b[SlotPlayer] = Resolution{Status: Resolved, URL: "p"}

	if Substitute(rawScene, a, d) != Substitute(rawScene, b, d) {
		t.Error("arrival order changed the resolved text")
	}
}

func TestSubstituteStripsTokensFromURLs(t *testing.T) {
	set := Set{SlotPlayer: {Status: Resolved, URL: "x[[OBSTACLE_IMG_URL]]y"}}
	got := Substitute(rawScene, set, DefaultLocal())
	if ContainsToken(got) {
		t.Errorf("token smuggled through a URL:\n%s", got)
	}
}

func TestSubstituteEscapesURLs(t *testing.T) {
	// The scene encoder writes token-only URL fields single-quoted.
	raw := "assets:\n" +
		"    - key: player_sprite\n      url: '[[PLAYER_IMG_URL]]'\n" +
		"    - key: obstacle_sprite\n      url: \"[[OBSTACLE_IMG_URL]]\"\n" +
		"title: after\n"

	urls := []string{
		"https://cdn.example.com/o'brien.png",
		`https://cdn.example.com/say "hi".png`,
		"https://cdn.example.com/a.png #not-a-comment",
		"https://cdn.example.com/two\nlines.png",
		`C:\art\cat.png`,
		"data:image/png;base64,AAAA",
	}

	for _, url := range urls {
		t.Run(url, func(t *testing.T) {
			set := Set{
				SlotPlayer:   {Status: Resolved, URL: url},
				SlotObstacle: {Status: Resolved, URL: url},
			}
			got := Substitute(raw, set, DefaultLocal())

			var doc struct {
				Assets []struct {
					Key string `yaml:"key"`
					URL string `yaml:"url"`
				} `yaml:"assets"`
				Title string `yaml:"title"`
			}
			if err := yaml.Unmarshal([]byte(got), &doc); err != nil {
				t.Fatalf("resolved text does not parse: %v\n%s", err, got)
			}
			if len(doc.Assets) != 2 || doc.Title != "after" {
				t.Fatalf("structure changed: %+v", doc)
			}
			for _, a := range doc.Assets {
				if a.URL != url {
					t.Errorf("%s url = %q, expected %q", a.Key, a.URL, url)
				}
			}
			if again := Substitute(got, set, DefaultLocal()); again != got {
				t.Errorf("second pass changed the text:\n%s\nvs\n%s", got, again)
			}
		})
	}
}

func TestParseSlot(t *testing.T) {
	tests := []struct {
		in   string
		want Slot
		ok   bool
	}{
		{"player", SlotPlayer, true},
		{" Obstacle ", SlotObstacle, true},
		{"bg", SlotBackground, true},
		{"enemy", "", false},
	}

	for _, tc := range tests {
		got, ok := ParseSlot(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Errorf("ParseSlot(%q) = %q, %v; expected %q, %v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestTokensDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, s := range Slots() {
		tok := s.Token()
		if tok == "" || seen[tok] {
			t.Errorf("slot %s has an empty or duplicate token %q", s, tok)
		}
		seen[tok] = true
	}
}
