package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	aladhanimpl "github.com/foxseedlab/adhan/external/aladhan"
	audioimpl "github.com/foxseedlab/adhan/external/audio"
	configloader "github.com/foxseedlab/adhan/external/config"
	"github.com/foxseedlab/adhan/external/discord"
	"github.com/foxseedlab/adhan/external/httpserver"
	renderimpl "github.com/foxseedlab/adhan/external/render"
	repositoryimpl "github.com/foxseedlab/adhan/external/repository"
	webhookimpl "github.com/foxseedlab/adhan/external/webhook"
	"github.com/foxseedlab/adhan/internal/audio"
	"github.com/foxseedlab/adhan/internal/broadcast"
	"github.com/foxseedlab/adhan/internal/command"
	"github.com/foxseedlab/adhan/internal/config"
	discordpkg "github.com/foxseedlab/adhan/internal/discord"
	"github.com/foxseedlab/adhan/internal/observability"
	"github.com/foxseedlab/adhan/internal/prayer"
	"github.com/foxseedlab/adhan/internal/scheduler"
	"github.com/samber/do/v2"
)

const discordConnectTimeout = 20 * time.Second

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "timezone", cfg.Timezone, "lead_minutes", cfg.AnnouncementLeadMinutes)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: loading announcement audio", "path", cfg.AdhanAudioPath)
	mustLoadAsset(cfg, injector)

	slog.Info("startup: launching discord bot")
	runBot(cfg, injector)
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
	observability.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	webhookimpl.RegisterDI(injector)
	audioimpl.RegisterDI(injector)
	discord.RegisterDI(injector)
	aladhanimpl.RegisterDI(injector)
	renderimpl.RegisterDI(injector)
	prayer.RegisterDI(injector)
	broadcast.RegisterDI(injector)
	scheduler.RegisterDI(injector)
	command.RegisterDI(injector)
	httpserver.RegisterDI(injector)

	return injector
}

// mustLoadAsset decodes the announcement once and makes it available to the orchestrator.
func mustLoadAsset(cfg *config.Config, injector do.Injector) {
	loader, err := do.Invoke[audio.Loader](injector)
	if err != nil {
		slog.Error("failed to resolve audio loader", "error", err)
		os.Exit(1)
	}
	asset, err := loader.Load(cfg.AdhanAudioPath)
	if err != nil {
		slog.Error("failed to load announcement audio", "error", err, "path", cfg.AdhanAudioPath)
		os.Exit(1)
	}
	do.ProvideValue(injector, asset)
}

func runBot(cfg *config.Config, injector do.Injector) {
	dc, err := do.Invoke[discordpkg.Client](injector)
	if err != nil {
		slog.Error("failed to resolve discord client", "error", err)
		os.Exit(1)
	}
	handler, err := do.Invoke[*command.Handler](injector)
	if err != nil {
		slog.Error("failed to resolve command handler", "error", err)
		os.Exit(1)
	}
	sched, err := do.Invoke[*scheduler.Scheduler](injector)
	if err != nil {
		slog.Error("failed to resolve scheduler", "error", err)
		os.Exit(1)
	}
	orchestrator, err := do.Invoke[*broadcast.Orchestrator](injector)
	if err != nil {
		slog.Error("failed to resolve broadcast orchestrator", "error", err)
		os.Exit(1)
	}
	server, err := do.Invoke[*httpserver.Server](injector)
	if err != nil {
		slog.Error("failed to resolve http server", "error", err)
		os.Exit(1)
	}

	connectCtx, cancelConnect := context.WithTimeout(context.Background(), discordConnectTimeout)
	defer cancelConnect()

	slog.Info("startup: connecting to discord gateway")
	if err := dc.Connect(connectCtx); err != nil {
		slog.Error("discord connect failed", "error", err)
		os.Exit(1)
	}
	slog.Info("startup: discord connected")
	defer func() {
		if err := dc.Close(); err != nil {
			slog.Error("discord close failed", "error", err)
		}
	}()

	if err := dc.UpsertSlashCommands(cfg.DiscordGuildID, command.SlashCommandDefinitions()); err != nil {
		slog.Error("failed to upsert slash commands", "error", err, "guild_id", cfg.DiscordGuildID)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dc.RegisterSlashCommandHandler(handler.Bind(ctx))
	slog.Info("discord handlers registered", "guild_id", cfg.DiscordGuildID, "commands", len(command.SlashCommandDefinitions()))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := sched.Run(ctx); err != nil {
			slog.Error("scheduler failed", "error", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			slog.Error("http server failed", "error", err)
		}
	}()

	done := make(chan struct{})
	go func() {
		slog.Info("startup: entering discord run loop")
		if err := dc.Run(); err != nil {
			slog.Error("discord run failed", "error", err)
		}
		close(done)
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case <-done:
	}
	stop()
	wg.Wait()
	slog.Info("waiting for in-flight broadcasts")
	orchestrator.Wait()
	_ = injector.Shutdown()
	slog.Info("shutdown complete")
}
