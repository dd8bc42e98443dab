package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var flagGamesLimit int

var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List saved games",
	Long: `Shows the most recently saved games with their play counts.

Examples:
  studio games
  studio games --limit 50
  studio games rm 3f2a9c1e-...`,
	Args: cobra.NoArgs,
	Run:  runGames,
}

var gamesRmCmd = &cobra.Command{
	Use:   "rm <game-id>",
	Short: "Delete a saved game and its scores",
	Args:  cobra.ExactArgs(1),
	Run:   runGamesRm,
}

func init() {
	gamesCmd.Flags().IntVar(&flagGamesLimit, "limit", 20, "Maximum number of games to list")
	gamesCmd.AddCommand(gamesRmCmd)
}

func runGames(_ *cobra.Command, _ []string) {
	store := mustOpenStore()
	defer store.Close()

	games, err := store.ListGames(flagGamesLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing games: %v\n", err)
		os.Exit(1)
	}

	if len(games) == 0 {
		fmt.Println("No saved games yet.")
		fmt.Println()
		fmt.Println("Run 'studio chat', make a game and type /save.")
		return
	}

	maxTitle := 5 // "Title" header
	for _, g := range games {
		if n := len([]rune(g.Title)); n > maxTitle {
			maxTitle = n
		}
	}
	if maxTitle > 32 {
		maxTitle = 32
	}

	fmt.Printf("  %-36s  %-*s  %-10s  %5s  %s\n", "ID", maxTitle, "Title", "Genre", "Plays", "Saved")
	fmt.Printf("  %-36s  %-*s  %-10s  %5s  %s\n", "--", maxTitle, "-----", "-----", "-----", "-----")
	for _, g := range games {
		title := []rune(g.Title)
		if len(title) > maxTitle {
			title = append(title[:maxTitle-3], []rune("...")...)
		}
		fmt.Printf("  %-36s  %-*s  %-10s  %5d  %s\n",
			g.ID, maxTitle, string(title), g.Template, g.Plays, g.CreatedAt.Format("2006-01-02 15:04"))
	}

	fmt.Println()
	fmt.Println("Run 'studio play --game <id>' to play, 'studio share <id>' to share.")
}

func runGamesRm(_ *cobra.Command, args []string) {
	store := mustOpenStore()
	defer store.Close()

	if err := store.DeleteGame(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted %s\n", args[0])
}
