package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/platform/tui"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

var flagGameID string

var playCmd = &cobra.Command{
	Use:   "play [genre]",
	Short: "Play a genre, a spec file or a saved game",
	Long: `Run a game in the terminal.

Pick one source:
  <genre>        - the genre's default game (see 'studio genres')
  --spec <file>  - a game spec, images replaced by defaults
  --game <id>    - a saved game (counts a play)

Controls:
  Arrows/WASD    - Move / steer
  Space          - Jump / bomb / drop
  1-9, Enter     - Sudoku digits and check
  P              - Pause
  R              - Restart
  Esc/B          - Back (when paused or over)
  Ctrl+S         - Screenshot
  Q/Ctrl+C       - Quit

Examples:
  studio play runner
  studio play --spec ./kart.yaml
  studio play --game 3f2a9c1e-...`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().StringVar(&flagSpecPath, "spec", "", "Path to a game spec (YAML or JSON)")
	playCmd.Flags().StringVar(&flagGameID, "game", "", "Saved game id")
}

func runPlay(_ *cobra.Command, args []string) {
	sources := 0
	if len(args) == 1 {
		sources++
	}
	if flagSpecPath != "" {
		sources++
	}
	if flagGameID != "" {
		sources++
	}
	if sources != 1 {
		fmt.Fprintln(os.Stderr, "Error: give exactly one of <genre>, --spec or --game")
		os.Exit(1)
	}

	logger, closeLog := fileLogger()
	defer closeLog()

	cfg := terminalConfig()
	ex := newExecutor(logger, cfg)
	defer ex.Close()
	c := ex.Container("play")

	store := openStore()
	if store != nil {
		defer store.Close()
	}

	var scoreKey string
	var err error
	switch {
	case flagGameID != "":
		scoreKey, err = tui.LoadItem(c, store, tui.GalleryItem{Kind: tui.ItemSaved, ID: flagGameID}, assemblerOptions())

	case flagSpecPath != "":
		var g spec.GameSpec
		g, err = spec.Load(flagSpecPath)
		if err == nil {
			opt := assemblerOptions()
			code := resolveWithDefaults(g, assembler.Code(g, opt), opt.Defaults)
			err = c.Load("spec", code)
			scoreKey = string(g.Normalize().Template)
		}

	default:
		t := spec.Template(args[0])
		if !t.Known() {
			fmt.Fprintf(os.Stderr, "Error: unknown genre %q\n", args[0])
			fmt.Fprintln(os.Stderr, "Run 'studio genres' to see available genres.")
			os.Exit(1)
		}
		scoreKey, err = tui.LoadItem(c, store, tui.GalleryItem{Kind: tui.ItemGenre, ID: args[0]}, assemblerOptions())
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting game: %v\n", err)
		os.Exit(1)
	}

	if err := tui.Run(c, store, scoreKey, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		os.Exit(1)
	}
}
