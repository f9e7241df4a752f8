// Package config reads process configuration once at startup. Values are
// threaded into constructors and treated as immutable afterwards.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const defaultRatesURL = "https://brsapi.ir/Api/Market/Gold_Currency.php"

// Config is everything the bot needs from the environment.
type Config struct {
	// BotToken authenticates against the Telegram Bot API.
	BotToken string
	// AdminChatID is the fixed destination for order notifications.
	// Zero disables them.
	AdminChatID int64
	// DestAccount is the account number users are asked to pay into.
	DestAccount string
	// ResourcesDir holds the per-service description text files.
	ResourcesDir string
	// RatesURL is the market feed polled for the USD rate.
	RatesURL string
}

// Load reads an optional .env file, then the environment. A missing env
// file is not an error; a missing bot token is.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	} else {
		_ = godotenv.Load()
	}

	cfg := Config{
		BotToken:     os.Getenv("BOT_TOKEN"),
		DestAccount:  os.Getenv("DEST_ACCOUNT"),
		ResourcesDir: getenvDefault("RESOURCES_DIR", "resources"),
		RatesURL:     getenvDefault("RATES_URL", defaultRatesURL),
	}
	if cfg.BotToken == "" {
		return Config{}, fmt.Errorf("BOT_TOKEN is required")
	}

	if raw := os.Getenv("ADMIN_CHAT_ID"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ADMIN_CHAT_ID %q: %w", raw, err)
		}
		cfg.AdminChatID = id
	}
	return cfg, nil
}

func getenvDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
