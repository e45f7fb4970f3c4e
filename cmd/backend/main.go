package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/plumdale/spinwrap/external/config"
	"github.com/plumdale/spinwrap/external/discord"
	factsimpl "github.com/plumdale/spinwrap/external/facts"
	repositoryimpl "github.com/plumdale/spinwrap/external/repository"
	"github.com/plumdale/spinwrap/internal/clock"
	"github.com/plumdale/spinwrap/internal/command"
	"github.com/plumdale/spinwrap/internal/config"
	discordpkg "github.com/plumdale/spinwrap/internal/discord"
	"github.com/plumdale/spinwrap/internal/session"
	"github.com/plumdale/spinwrap/internal/wrap"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching discord bot")
	runBot(injector)
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	clock.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	factsimpl.RegisterDI(injector)
	wrap.RegisterDI(injector)
	session.RegisterDI(injector)
	command.RegisterDI(injector)

	return injector
}

func runBot(injector do.Injector) {
	dc := mustInvoke[discordpkg.Client](injector, "discord client")
	sessions := mustInvoke[*session.Manager](injector, "session manager")
	membership := mustInvoke[*wrap.Membership](injector, "wrap membership")
	aggregator := mustInvoke[*wrap.Aggregator](injector, "wrap aggregator")
	scheduler := mustInvoke[*wrap.Scheduler](injector, "wrap scheduler")
	router := mustInvoke[*command.Router](injector, "command router")
	changeFeed := mustInvoke[*repositoryimpl.MembershipListener](injector, "membership listener")

	ctx, cancel := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancel()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(ctx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	membership.Load(context.Background())

	if err := dc.UpsertGlobalSlashCommands(command.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err)
		os.Exit(1)
	}

	dc.RegisterPresenceUpdateHandler(func(event discordpkg.PresenceEvent) {
		aggregator.HandlePresenceUpdate(event)
		sessions.HandlePresenceUpdate(event)
	})
	dc.RegisterMessageCreateHandler(sessions.HandleMessageCreate)
	dc.RegisterSlashCommandHandler(router.HandleSlashCommand)
	dc.RegisterComponentHandler(router.HandleComponent)
	slog.Info("discord handlers registered")

	if err := scheduler.Start(); err != nil {
		slog.Error("failed to start wrap scheduler", "error", err)
		os.Exit(1)
	}
	defer scheduler.Stop()

	feedCtx, stopFeed := context.WithCancel(context.Background())
	defer stopFeed()
	go changeFeed.Run(feedCtx)

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		slog.Info("shutting down")
	case <-done:
	}
}

func mustInvoke[T any](injector do.Injector, name string) T {
	v, err := do.Invoke[T](injector)
	if err != nil {
		slog.Error("failed to resolve dependency", "dependency", name, "error", err)
		os.Exit(1)
	}
	return v
}
