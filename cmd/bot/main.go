package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"tournamentbot/internal/adapters/discord"
	"tournamentbot/internal/adapters/status"
	"tournamentbot/internal/application"
	"tournamentbot/internal/config"
	"tournamentbot/internal/infrastructure/database"
	"tournamentbot/internal/infrastructure/i18n"
	"tournamentbot/internal/infrastructure/logging"
	"tournamentbot/pkg/tz"
)

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("❌ Arrêt sur erreur")
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		logging.Setup("info", nil)
		return err
	}
	logging.Setup(cfg.LogLevel, nil)

	loc, err := tz.Load(cfg.Timezone)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath); err != nil {
		return err
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	session, err := discord.NewSession(cfg.Token)
	if err != nil {
		return err
	}
	translator := i18n.NewTranslator(cfg.Locale)
	platform := discord.NewPlatform(session)
	notifier := discord.NewNotifier(session)

	svc := application.NewTournamentService(
		database.NewGuildRepository(pool),
		database.NewRunRepository(pool),
		platform,
		notifier,
		translator,
		application.Options{Locale: cfg.Locale, OpenDelay: cfg.OpenDelay},
	)
	handler := discord.NewHandler(session, svc, platform, notifier, translator, discord.Options{
		Prefix:           cfg.CommandPrefix,
		Locale:           cfg.Locale,
		Location:         loc,
		PromptTimeout:    cfg.PromptTimeout,
		ProgressInterval: cfg.ProgressInterval,
	})
	bot := discord.NewBot(session, handler)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return bot.Run(ctx)
	})
	if cfg.HTTPAddr != "" {
		srv := status.NewServer(cfg.HTTPAddr, svc, pool)
		g.Go(func() error {
			return srv.Run(ctx)
		})
	}
	err = g.Wait()

	// windows close with reason "cancelled" once ctx is done
	svc.Wait()
	log.Info().Msg("👋 Bot arrêté")
	return err
}
