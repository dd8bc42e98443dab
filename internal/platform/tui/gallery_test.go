package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	_ "github.com/vovakirdan/arcade-studio/internal/games/all"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

func openStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "studio.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestGalleryWithoutStore(t *testing.T) {
	m := NewGalleryModel(nil, core.DefaultConfig())
	if len(m.items) == 0 || m.items[0].Kind != ItemNew {
		t.Fatalf("first item should open a new game, got %+v", m.items)
	}

	var genres []string
	for _, item := range m.items[1:] {
		if item.Kind != ItemGenre {
			t.Errorf("item %q: kind = %d, want genre", item.Title, item.Kind)
		}
		genres = append(genres, item.ID)
	}
	if len(genres) != len(spec.Templates()) {
		t.Errorf("genres = %v, want one per template", genres)
	}
	for _, id := range genres {
		if id == "unsupported" {
			t.Error("unsupported genre must not be offered")
		}
	}
}

func TestGalleryListsSavedGames(t *testing.T) {
	store := openStore(t)
	if _, err := store.SaveGame(storage.Game{
		Title:   "Kart Dash",
		Creator: "alice",
		Spec:    spec.ForGenre(spec.Racing),
		Code:    assembler.Code(spec.ForGenre(spec.Racing), assembler.DefaultOptions()),
	}); err != nil {
		t.Fatalf("save: %v", err)
	}

	m := NewGalleryModel(store, core.DefaultConfig())
	if m.items[1].Kind != ItemSaved || m.items[1].Title != "Kart Dash" {
		t.Fatalf("second item = %+v, want the saved game", m.items[1])
	}
	if !strings.Contains(m.View(), "by alice") {
		t.Error("view should name the creator")
	}
}

func TestGallerySelect(t *testing.T) {
	m := NewGalleryModel(nil, core.DefaultConfig())

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.(GalleryModel).Update(tea.KeyMsg{Type: tea.KeyEnter})
	got := next.(GalleryModel)
	if cmd == nil {
		t.Fatal("selecting should end the gallery")
	}

	res := galleryResult(got)
	if res.Item == nil || res.Item.Kind != ItemGenre || res.Item.ID != m.items[1].ID {
		t.Fatalf("result = %+v, want the first genre", res)
	}
}

func TestGalleryNewAndScores(t *testing.T) {
	m := NewGalleryModel(nil, core.DefaultConfig())

	next, _ := m.Update(runeKey('n'))
	if res := galleryResult(next.(GalleryModel)); res.Item == nil || res.Item.Kind != ItemNew {
		t.Errorf("n should open a new game, got %+v", res)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if res := galleryResult(next.(GalleryModel)); !res.WantsScoreboard {
		t.Errorf("tab should open the scoreboard, got %+v", res)
	}

	next, _ = m.Update(runeKey('q'))
	if res := galleryResult(next.(GalleryModel)); !res.Quit {
		t.Errorf("q should quit, got %+v", res)
	}
}

func TestLoadItem(t *testing.T) {
	store := openStore(t)
	ex := executor.New(executor.Options{})
	defer ex.Close()

	c := ex.Container("play")
	key, err := LoadItem(c, store, GalleryItem{Kind: ItemGenre, ID: "tetris"}, assembler.DefaultOptions())
	if err != nil {
		t.Fatalf("load genre: %v", err)
	}
	if key != "tetris" || !c.Live() || c.Genre() != "tetris" {
		t.Errorf("key = %q live = %v genre = %q", key, c.Live(), c.Genre())
	}

	g := spec.ForGenre(spec.Runner)
	saved, err := store.SaveGame(storage.Game{
		Title: "Runner",
		Spec:  g,
		Code:  assembler.Code(g, assembler.DefaultOptions()),
	})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	key, err = LoadItem(c, store, GalleryItem{Kind: ItemSaved, ID: saved.ID}, assembler.DefaultOptions())
	if err != nil {
		t.Fatalf("load saved: %v", err)
	}
	if key != saved.ID || c.Genre() != "runner" {
		t.Errorf("key = %q genre = %q", key, c.Genre())
	}
	got, err := store.GetGame(saved.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Plays != 1 {
		t.Errorf("plays = %d, want 1", got.Plays)
	}

	if _, err := LoadItem(c, nil, GalleryItem{Kind: ItemSaved, ID: saved.ID}, assembler.DefaultOptions()); err == nil {
		t.Error("saved game without a store should fail")
	}
	if _, err := LoadItem(c, store, GalleryItem{Kind: ItemNew}, assembler.DefaultOptions()); err == nil {
		t.Error("new game has nothing to play")
	}
}

func TestModelEmptyContainer(t *testing.T) {
	ex := executor.New(executor.Options{})
	defer ex.Close()

	m := NewModel(ex.Container("empty"), nil, "runner", core.DefaultConfig())
	next, _ := m.Update(TickMsg{})
	if view := next.(Model).View(); !strings.Contains(view, "NO GAME YET") {
		t.Errorf("empty container view:\n%s", view)
	}

	// Nothing is live, so esc leaves at once.
	next, _ = next.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if !next.(Model).BackToMenu() {
		t.Error("esc on an empty container should go back")
	}
}

func TestModelStepsLiveGame(t *testing.T) {
	ex := executor.New(executor.Options{})
	defer ex.Close()

	c := ex.Container("live")
	if err := c.Load("r1", assembler.Code(spec.ForGenre(spec.Runner), assembler.DefaultOptions())); err != nil {
		t.Fatalf("load: %v", err)
	}
	m := NewModel(c, nil, "", core.DefaultConfig())
	if m.scoreKey != "runner" {
		t.Errorf("score key = %q, want the genre", m.scoreKey)
	}

	var tm tea.Model = m
	for range 5 {
		tm, _ = tm.Update(TickMsg{})
	}
	if view := tm.View(); view == "" || strings.Contains(view, "NO GAME YET") {
		t.Errorf("live game should render, got:\n%s", view)
	}
	if st := c.Stats(); st.Creates != 1 {
		t.Errorf("creates = %d, want 1", st.Creates)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"a longer line", 8, "a lon..."},
		{"abcdef", 2, "ab"},
		{"héllo wörld", 6, "hél..."},
		{"anything", 0, "anything"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
