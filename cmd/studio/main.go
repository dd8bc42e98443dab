// studio is an AI game studio for the terminal: describe a game in a chat,
// watch it come together in a live preview, play it, save it and share it.
//
// Usage:
//
//	studio                     - Gallery: new game, saved games, quick play
//	studio chat                - Open the chat studio directly
//	studio genres              - List available genres
//	studio assemble --spec f   - Print the scene a spec file assembles to
//	studio play <genre>        - Play a genre, a spec file or a saved game
//	studio games               - List saved games
//	studio scores <id>         - Show high scores for a genre or saved game
//	studio share <id>          - Print a QR code for a saved game
//	studio serve               - Start the SSH and HTTP servers
//	studio auth set-key <p>    - Store an AI provider key in the OS keyring
//
// Global flags:
//
//	--config <path> - Studio config YAML
//	--db <path>     - Database path (default: ~/.arcade-studio/studio.db)
//	--fps <rate>    - Tick rate (default: 60)
//	--seed <value>  - RNG seed for reproducible gameplay
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Import genres to register them
	_ "github.com/vovakirdan/arcade-studio/internal/games/all"
)

var (
	// Global flags
	flagConfig string
	flagDBPath string
	flagFPS    int
	flagSeed   int64
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "studio",
	Short: "Arcade Studio - make games by chatting, play them in your terminal",
	Long: `Arcade Studio turns a chat with an AI assistant into a playable
arcade game. Describe what you want, watch the preview update as images
arrive, then play, save and share the result.

Available commands:
  chat     - Open the chat studio
  genres   - Show all available genres
  assemble - Print the scene for a spec file
  play     - Play a genre, a spec file or a saved game
  games    - List saved games
  scores   - View high scores
  share    - Print a QR code for a saved game
  serve    - Start the SSH and HTTP servers
  auth     - Manage AI provider keys

Examples:
  studio
  studio chat
  studio play runner
  studio play --game 3f2a...
  studio serve --ssh :23234 --http :8080`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		loadApp()
	},
	Run: runGallery,
}

func init() {
	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to studio config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default from config, then ~/.arcade-studio/studio.db)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 60, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(genresCmd)
	rootCmd.AddCommand(assembleCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(shareCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(authCmd)
}
