package main

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/core"
	"github.com/vovakirdan/arcade-studio/internal/executor"
	"github.com/vovakirdan/arcade-studio/internal/platform/tui"
	"github.com/vovakirdan/arcade-studio/internal/storage"
	"github.com/vovakirdan/arcade-studio/internal/studio"
)

var flagSessionID string

var chatCmd = &cobra.Command{
	Use:     "chat",
	Aliases: []string{"studio"},
	Short:   "Open the chat studio",
	Long: `Describe a game and the studio builds it while you watch.

The left pane is the conversation, the right pane a live preview that
updates as images arrive. Tab switches between Chat, Play and Assets.

Commands:
  /template <genre>           - rebuild as another genre
  /style <text>               - art style for new images
  /scale <player|obstacle> <f> - resize a sprite
  /regen <slot>               - regenerate one image
  /save [title]               - save the current game
  /help                       - list commands

With --session the transcript of an earlier session is resumed.

Examples:
  studio chat
  studio chat --session my-runner`,
	Args: cobra.NoArgs,
	Run:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&flagSessionID, "session", "", "Session id to resume (default: new session)")
}

// local holds what the interactive commands share.
type local struct {
	logger *log.Logger
	store  *storage.Store
	ex     *executor.Executor
	cfg    core.RuntimeConfig
}

func openLocal() (*local, func()) {
	logger, closeLog := fileLogger()
	cfg := terminalConfig()
	l := &local{
		logger: logger,
		store:  openStore(),
		ex:     newExecutor(logger, cfg),
		cfg:    cfg,
	}
	return l, func() {
		l.ex.Close()
		if l.store != nil {
			l.store.Close()
		}
		closeLog()
	}
}

// openSession creates a studio session with its own preview container.
func (l *local) openSession(id string) (*studio.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	return studio.New(studio.Options{
		ID:           id,
		Creator:      os.Getenv("USER"),
		Orchestrator: newOrchestrator(l.logger),
		Store:        l.store,
		Container:    l.ex.Container("preview-" + id),
		Assembler:    assemblerOptions(),
		Logger:       l.logger,
	})
}

func runChat(_ *cobra.Command, _ []string) {
	l, closeAll := openLocal()
	defer closeAll()

	s, err := l.openSession(flagSessionID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	if err := tui.RunStudio(s, l.cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runGallery is the interactive loop: gallery, then a studio session, a
// game or the scoreboard, then back to the gallery.
func runGallery(_ *cobra.Command, _ []string) {
	l, closeAll := openLocal()
	defer closeAll()

	cfg := l.cfg
	for {
		result, err := tui.RunGallery(l.store, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			break
		}

		// Update config with any size changes
		cfg = result.Config

		if result.Quit {
			break
		}

		var item tui.GalleryItem
		if result.WantsScoreboard {
			sb, err := tui.RunScoreboard(l.store, cfg.ScreenW, cfg.ScreenH)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				return
			}
			switch {
			case sb.Play != nil:
				item = *sb.Play
			case sb.Back:
				continue
			default:
				return
			}
		} else {
			item = *result.Item
		}

		if item.Kind == tui.ItemNew {
			s, err := l.openSession("")
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				continue
			}
			if err := tui.RunStudio(s, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
			s.Close()
			l.ex.Remove("preview-" + s.ID())
			continue
		}

		c := l.ex.Container("play")
		scoreKey, err := tui.LoadItem(c, l.store, item, assemblerOptions())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error starting %s: %v\n", item.Title, err)
			continue
		}

		// Fresh seed for each game
		cfg.Seed = time.Now().UnixNano()

		if err := tui.Run(c, l.store, scoreKey, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
		c.Close()
	}
}
