package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/arcade-studio/internal/assembler"
	"github.com/vovakirdan/arcade-studio/internal/assets"
	"github.com/vovakirdan/arcade-studio/internal/spec"
)

var (
	flagSpecPath string
	flagResolved bool
)

var assembleCmd = &cobra.Command{
	Use:   "assemble --spec <file>",
	Short: "Print the scene a spec assembles to",
	Long: `Assemble a game spec (YAML or JSON) and print the scene descriptor.

Without --resolved, images that are still to be generated show up as
placeholder tokens such as [[PLAYER_IMG_URL]]. With --resolved, every
placeholder is replaced: by the spec's URL when it has one, otherwise by
the configured default image.

Examples:
  studio assemble --spec ./kart.yaml
  studio assemble --spec ./kart.json --resolved > kart.scene.yaml`,
	Args: cobra.NoArgs,
	Run:  runAssemble,
}

func init() {
	assembleCmd.Flags().StringVar(&flagSpecPath, "spec", "", "Path to a game spec (YAML or JSON)")
	assembleCmd.Flags().BoolVar(&flagResolved, "resolved", false, "Replace placeholders with URLs or defaults")
	//nolint:errcheck // Flag is defined above
	assembleCmd.MarkFlagRequired("spec")
}

func runAssemble(_ *cobra.Command, _ []string) {
	g, err := spec.Load(flagSpecPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opt := assemblerOptions()
	code := assembler.Code(g, opt)
	if flagResolved {
		code = resolveWithDefaults(g, code, opt.Defaults)
	}
	fmt.Print(code)
}

// resolveWithDefaults substitutes every placeholder without generating
// anything: slots with a URL resolve to it, the rest fall back to defaults.
func resolveWithDefaults(g spec.GameSpec, code string, d assets.Defaults) string {
	set := make(assets.Set)
	for _, slot := range assets.Slots() {
		if ref := g.Asset(slot); ref.HasURL() {
			set[slot] = assets.Resolution{Status: assets.Resolved, URL: *ref.URL}
			continue
		}
		set[slot] = assets.Resolution{Status: assets.Failed, Err: "not generated"}
	}
	return assets.Substitute(code, set, d)
}
