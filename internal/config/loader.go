package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load loads the studio configuration.
// Search order: customPath -> ~/.arcade-studio/config.yaml -> ./configs/studio.yaml -> embedded default.
// Values missing from a file keep their defaults. Environment overrides are
// applied last (see ApplyEnv).
func Load(customPath string) (StudioConfig, error) {
	cfg := DefaultStudioConfig()

	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		ApplyEnv(&cfg)
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := UserPath("config.yaml"); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			if err := yaml.Unmarshal(data, &cfg); err == nil {
				ApplyEnv(&cfg)
				return cfg, nil
			}
			cfg = DefaultStudioConfig()
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile("configs/studio.yaml"); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err == nil {
			ApplyEnv(&cfg)
			return cfg, nil
		}
		cfg = DefaultStudioConfig()
	}

	// Use embedded default YAML
	if err := yaml.Unmarshal(defaultStudioYAML, &cfg); err != nil {
		cfg = DefaultStudioConfig() // Fallback to hardcoded if embed fails
	}
	ApplyEnv(&cfg)
	return cfg, nil
}

// UserPath returns a path inside ~/.arcade-studio, or empty if home is unavailable.
func UserPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".arcade-studio", name)
}

// LoadDotEnv reads .env files into the process environment without
// overriding variables that are already set. Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}

// Environment variable names understood by ApplyEnv.
const (
	EnvEndpoint        = "AZURE_OAI_ENDPOINT"
	EnvAPIKey          = "AZURE_OAI_API_KEY"
	EnvChatDeployment  = "AZURE_OAI_CHAT_DEPLOYMENT_NAME"
	EnvImageEndpoint   = "AZURE_OAI_DALLE_ENDPOINT"
	EnvImageAPIKey     = "AZURE_OAI_DALLE_API_KEY"
	EnvImageDeployment = "AZURE_OAI_DALLE_DEPLOYMENT_NAME"
	EnvBgEndpoint      = "BG_REMOVAL_ENDPOINT"
	EnvBgAPIKey        = "BG_REMOVAL_API_KEY"
	EnvMaxAttempts     = "STUDIO_AI_MAX_ATTEMPTS"
	EnvDBPath          = "STUDIO_DB"
	EnvPublicURL       = "STUDIO_PUBLIC_URL"
)

// ApplyEnv overrides AI, storage and share link settings from the environment.
func ApplyEnv(cfg *StudioConfig) {
	set := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	set(&cfg.AI.Endpoint, EnvEndpoint)
	set(&cfg.AI.APIKey, EnvAPIKey)
	set(&cfg.AI.ChatDeployment, EnvChatDeployment)
	set(&cfg.AI.ImageEndpoint, EnvImageEndpoint)
	set(&cfg.AI.ImageAPIKey, EnvImageAPIKey)
	set(&cfg.AI.ImageDeployment, EnvImageDeployment)
	set(&cfg.AI.BgRemovalEndpoint, EnvBgEndpoint)
	set(&cfg.AI.BgRemovalAPIKey, EnvBgAPIKey)
	set(&cfg.Storage.Path, EnvDBPath)
	set(&cfg.Server.PublicURL, EnvPublicURL)

	if v := os.Getenv(EnvMaxAttempts); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.AI.MaxAttempts = n
		}
	}
	if cfg.AI.MaxAttempts <= 0 {
		cfg.AI.MaxAttempts = 1
	}
}
