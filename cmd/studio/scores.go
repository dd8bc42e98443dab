package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/spec"
	"github.com/vovakirdan/arcade-studio/internal/storage"
)

var flagClearScores bool

var scoresCmd = &cobra.Command{
	Use:   "scores <genre|game-id>",
	Short: "Show high scores for a genre or saved game",
	Long: `Display the top 10 high scores for a genre's default game or a saved game.

Examples:
  studio scores runner
  studio scores 3f2a9c1e-...
  studio scores tetris --clear`,
	Args: cobra.ExactArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagClearScores, "clear", false, "Delete every score for the game")
}

func runScores(_ *cobra.Command, args []string) {
	key := args[0]

	store := mustOpenStore()
	defer store.Close()

	title, err := scoreTitle(store, key)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run 'studio genres' or 'studio games' to see what has scores.")
		os.Exit(1)
	}

	if flagClearScores {
		if err := store.ClearScores(key); err != nil {
			fmt.Fprintf(os.Stderr, "Error clearing scores: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Cleared scores for %s\n", title)
		return
	}

	scores, err := store.TopScores(key, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("High Scores - %s\n", title)
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'studio play %s' to set the first high score!\n", playArg(store, key))
		return
	}

	fmt.Printf("  %-4s  %-10s  %s\n", "Rank", "Score", "Date")
	fmt.Printf("  %-4s  %-10s  %s\n", "----", "-----", "----")
	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %s\n", i+1, entry.Score, dateStr)
	}

	fmt.Println()
	if best, err := store.HighScore(key); err == nil {
		fmt.Printf("Best: %d\n", best)
	}
}

// scoreTitle names the board for a genre id or a saved game id.
func scoreTitle(store *storage.Store, key string) (string, error) {
	if spec.Template(key).Known() {
		for _, g := range registry.List() {
			if g.ID == key {
				return g.Title, nil
			}
		}
		return key, nil
	}
	g, err := store.GetGame(key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("unknown genre or game %q", key)
	}
	if err != nil {
		return "", err
	}
	return g.Title, nil
}

func playArg(store *storage.Store, key string) string {
	if spec.Template(key).Known() {
		return key
	}
	return "--game " + key
}
