package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/registry"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List all available genres",
	Long:  `Shows every genre the studio can build and play.`,
	Run:   runGenres,
}

func runGenres(_ *cobra.Command, _ []string) {
	var genres []registry.GenreInfo
	for _, g := range registry.List() {
		if spec.Template(g.ID).Known() {
			genres = append(genres, g)
		}
	}

	if len(genres) == 0 {
		fmt.Println("No genres available.")
		return
	}

	fmt.Println("Available genres:")
	fmt.Println()

	// Calculate column widths
	maxIDLen := 2 // "ID" header
	for _, g := range genres {
		if len(g.ID) > maxIDLen {
			maxIDLen = len(g.ID)
		}
	}

	fmt.Printf("  %-*s  %s\n", maxIDLen, "ID", "Title")
	fmt.Printf("  %-*s  %s\n", maxIDLen, "--", "-----")
	for _, g := range genres {
		fmt.Printf("  %-*s  %s\n", maxIDLen, g.ID, g.Title)
	}

	fmt.Println()
	fmt.Println("Run 'studio play <id>' to play a genre, or 'studio chat' to make your own.")
}
