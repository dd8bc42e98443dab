package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/arcade-studio/internal/secrets"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage AI provider keys",
	Long: `Store, remove and inspect the API keys the studio uses.

Keys live in the OS keyring under the "arcade-studio" service. A key in
the config file or the environment takes precedence over the keyring.

Providers: chat, image, bg-removal`,
}

var authSetCmd = &cobra.Command{
	Use:   "set-key <provider>",
	Short: "Store a provider key in the keyring",
	Long: `Store a provider key in the keyring. The key is read from the
terminal without echo, or from stdin when it is piped.

Examples:
  studio auth set-key chat
  echo "$KEY" | studio auth set-key image`,
	Args: cobra.ExactArgs(1),
	Run:  runAuthSet,
}

var authDeleteCmd = &cobra.Command{
	Use:   "delete-key <provider>",
	Short: "Remove a provider key from the keyring",
	Args:  cobra.ExactArgs(1),
	Run:   runAuthDelete,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which providers have a key",
	Args:  cobra.NoArgs,
	Run:   runAuthStatus,
}

func init() {
	authCmd.AddCommand(authSetCmd)
	authCmd.AddCommand(authDeleteCmd)
	authCmd.AddCommand(authStatusCmd)
}

func runAuthSet(_ *cobra.Command, args []string) {
	p, err := secrets.ParseProvider(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	key, err := readKey(p)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading key: %v\n", err)
		os.Exit(1)
	}

	if err := secrets.NewStore(secrets.Service).Set(p, key); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Stored %s key.\n", p)
}

func readKey(p secrets.Provider) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		fmt.Fprintf(os.Stderr, "%s key: ", p)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		return strings.TrimSpace(string(b)), err
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func runAuthDelete(_ *cobra.Command, args []string) {
	p, err := secrets.ParseProvider(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := secrets.NewStore(secrets.Service).Delete(p); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Removed %s key.\n", p)
}

func runAuthStatus(_ *cobra.Command, _ []string) {
	ai := appConfig.AI
	endpoints := map[secrets.Provider]string{
		secrets.ProviderChat:      ai.Endpoint,
		secrets.ProviderImage:     ai.ImageEndpoint,
		secrets.ProviderBgRemoval: ai.BgRemovalEndpoint,
	}
	keys := map[secrets.Provider]string{
		secrets.ProviderChat:      ai.APIKey,
		secrets.ProviderImage:     ai.ImageAPIKey,
		secrets.ProviderBgRemoval: ai.BgRemovalAPIKey,
	}

	fmt.Printf("  %-10s  %-4s  %s\n", "Provider", "Key", "Endpoint")
	fmt.Printf("  %-10s  %-4s  %s\n", "--------", "---", "--------")
	for _, p := range secrets.Providers() {
		hasKey := "no"
		if keys[p] != "" {
			hasKey = "yes"
		}
		endpoint := endpoints[p]
		if endpoint == "" {
			endpoint = "(not set)"
		}
		fmt.Printf("  %-10s  %-4s  %s\n", p, hasKey, endpoint)
	}
}
