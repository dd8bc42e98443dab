package main

import (
	"fmt"
	"os"

	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/platform/web"
)

var flagSharePNG string

var shareCmd = &cobra.Command{
	Use:   "share <game-id>",
	Short: "Print a QR code for a saved game",
	Long: `Print the share link of a saved game and a QR code pointing at it.

The link uses the server's public URL (config server.public_url or
STUDIO_PUBLIC_URL), so it only works while 'studio serve' is reachable
there.

Examples:
  studio share 3f2a9c1e-...
  studio share 3f2a9c1e-... --png kart.png`,
	Args: cobra.ExactArgs(1),
	Run:  runShare,
}

func init() {
	shareCmd.Flags().StringVar(&flagSharePNG, "png", "", "Also write the QR code to a PNG file")
}

func runShare(_ *cobra.Command, args []string) {
	store := mustOpenStore()
	g, err := store.GetGame(args[0])
	store.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	url := web.ShareURL(appConfig.Server.PublicURL, g.ID)
	qr, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding QR code: %v\n", err)
		os.Exit(1)
	}

	fmt.Println(qr.ToSmallString(false))
	fmt.Printf("%s\n%s\n", g.Title, url)

	if flagSharePNG != "" {
		if err := qr.WriteFile(256, flagSharePNG); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", flagSharePNG, err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", flagSharePNG)
	}
}
