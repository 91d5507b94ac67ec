package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/jusunglee/singlish/internal/bot"
	"github.com/jusunglee/singlish/internal/db/open"
	"github.com/jusunglee/singlish/internal/envsetup"
	"github.com/jusunglee/singlish/internal/health"
	"github.com/jusunglee/singlish/internal/logger"
	"github.com/jusunglee/singlish/internal/tables"
	"github.com/jusunglee/singlish/internal/translation"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
)

func main() {
	if err := mainE(); err != nil {
		slog.Error("fatal", "error", err)
		os.Exit(1)
	}
	slog.Info("exiting without error")
}

func mainE() error {
	if envsetup.NeedsSetup() {
		completed, err := envsetup.Run()
		if err != nil {
			return fmt.Errorf("running setup: %w", err)
		}
		if !completed {
			return errors.New("setup cancelled")
		}
	}
	_ = godotenv.Load()

	fs := ff.NewFlagSet("singlish-bot")
	var (
		discordToken   = fs.StringLong("discord-token", "", "Discord bot token")
		guildID        = fs.StringLong("discord-guild-id", "", "Register commands to this server only")
		databaseURL    = fs.StringLong("database-url", "./singlish.db", "SQLite path or PostgreSQL connection URL")
		healthPort     = fs.IntLong("health-port", 8080, "Port for the health check server")
		reloadInterval = fs.DurationLong("reload-interval", time.Minute, "How often custom words are re-read")
		retentionDays  = fs.IntLong("feedback-retention-days", 90, "Days to keep feedback, 0 keeps it forever")
		rateLimitMax   = fs.IntLong("rate-limit", 5, "Conversions per user per rate limit window")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVars()); err != nil {
		fmt.Printf("%s\n", ffhelp.Flags(fs))
		return fmt.Errorf("parsing flags: %w", err)
	}

	if *discordToken == "" {
		return errors.New("discord-token is required")
	}

	log := logger.New()

	ctx, cancel := context.WithCancelCause(context.Background())
	defer cancel(nil)

	repo, err := open.Repository(ctx, *databaseURL)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.InfoContext(ctx, "connected to database")

	base, err := tables.Load()
	if err != nil {
		return fmt.Errorf("loading tables: %w", err)
	}
	translator, err := translation.NewTranslator(ctx, base, repo)
	if err != nil {
		return err
	}

	dg, err := discordgo.New("Bot " + *discordToken)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}

	b := bot.New(bot.NewLogger(log), bot.NewDiscordSession(dg), repo, translator, bot.Config{
		GuildID:           *guildID,
		ReloadInterval:    *reloadInterval,
		FeedbackRetention: time.Duration(*retentionDays) * 24 * time.Hour,
		RateLimitMax:      *rateLimitMax,
		RateLimitWindow:   time.Minute,
	})

	healthServer := health.New(*healthPort, translator)
	go func() {
		if err := healthServer.Start(); err != nil {
			log.Error("health server failed", "error", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Info("received signal, shutting down", "signal", sig)
		cancel(errors.New("signal received"))

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			log.Error("health server shutdown error", "error", err)
		}
	}()

	log.InfoContext(ctx, "starting bot", "health_port", *healthPort)
	return b.Run(ctx)
}
