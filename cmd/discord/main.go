package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/osse101/DuelBot_Go/internal/config"
	"github.com/osse101/DuelBot_Go/internal/discord"
	"github.com/osse101/DuelBot_Go/internal/handler"
	"github.com/osse101/DuelBot_Go/internal/logger"
)

// Default values for optional configuration
const (
	DefaultHealthPort = "8082"
	ServiceName       = "duel-bot-discord"
)

func main() {
	// Load .env file
	_ = godotenv.Load()

	setupLogger()

	if err := config.ValidateEnvFor(config.DiscordEnvVars); err != nil {
		slog.Error("Configuration failed", "error", err)
		os.Exit(1)
	}
	cfg := loadConfig()

	bot, err := discord.New(cfg)
	if err != nil {
		slog.Error("Failed to create bot", "error", err)
		os.Exit(1)
	}

	// Register with Discord API
	forceUpdate := os.Getenv("DISCORD_FORCE_COMMAND_UPDATE") == "true"
	if forceUpdate {
		slog.Info("Force command update enabled via environment variable")
	}

	if err := bot.RegisterCommands(bot.Registry, forceUpdate); err != nil {
		slog.Error("Failed to register commands", "error", err)
		// Don't exit - bot can still run if commands are already registered
	}

	// Notifications arrive over SSE and go to each community's master channel
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events := discord.NewSSEClient(cfg.APIURL, cfg.APIKey, discord.NotificationEventTypes)
	discord.NewSSENotifier(bot.Session).RegisterHandlers(events)
	events.Start(ctx)
	defer events.Stop()

	healthPort := os.Getenv("DISCORD_HEALTH_PORT")
	if healthPort == "" {
		healthPort = DefaultHealthPort
	}

	httpServer := discord.NewHTTPServer(healthPort, bot, events)
	httpServer.Start()
	defer httpServer.Stop()

	if err := bot.Run(); err != nil {
		slog.Error("Bot failed", "error", err)
		os.Exit(1)
	}
}

// setupLogger configures structured logging to stdout
func setupLogger() {
	env := os.Getenv("ENVIRONMENT")
	logger.InitLogger(logger.NewConfig(
		strings.ToLower(os.Getenv("LOG_LEVEL")),
		strings.ToLower(os.Getenv("LOG_FORMAT")),
		ServiceName,
		handler.CurrentVersion().Version,
		env,
		env == logger.EnvironmentDev,
	))
}

// loadConfig reads the bot settings. Required variables were checked by
// config.ValidateEnvFor.
func loadConfig() discord.Config {
	apiURL := strings.TrimRight(os.Getenv("API_URL"), "/")
	slog.Info("Configured API URL", "url", apiURL)

	return discord.Config{
		Token:  os.Getenv("DISCORD_TOKEN"),
		AppID:  os.Getenv("DISCORD_APP_ID"),
		APIURL: apiURL,
		APIKey: os.Getenv("API_KEY"),
	}
}
