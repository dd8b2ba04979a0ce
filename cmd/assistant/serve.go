package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/CrushDope/Telegram-Assistant/internal/album"
	"github.com/CrushDope/Telegram-Assistant/internal/config"
	"github.com/CrushDope/Telegram-Assistant/internal/fetcher"
	"github.com/CrushDope/Telegram-Assistant/internal/handlers"
	"github.com/CrushDope/Telegram-Assistant/internal/history"
	"github.com/CrushDope/Telegram-Assistant/internal/ingest"
	"github.com/CrushDope/Telegram-Assistant/internal/logger"
	"github.com/CrushDope/Telegram-Assistant/internal/placement"
	"github.com/CrushDope/Telegram-Assistant/internal/schedule"
	"github.com/CrushDope/Telegram-Assistant/internal/server"
	"github.com/CrushDope/Telegram-Assistant/internal/telegram"
	"github.com/CrushDope/Telegram-Assistant/internal/version"
)

func runServe(cfgPath string) {
	fx.New(
		fx.Provide(
			func() (config.Config, error) {
				cfg, err := config.Load(cfgPath)
				if err != nil {
					return config.Config{}, fmt.Errorf("load config: %w", err)
				}
				return cfg, nil
			},
			provideLogger,
			providePlacement,
			provideHistory,
			provideBot,
			provideProcessor,
			provideAggregator,
			provideFetcher,
			provideSchedule,
			handlers.NewPingHandler,
			handlers.NewPlacementsHandler,
			handlers.NewAlbumsHandler,
			provideServer,
		),
		fx.Invoke(
			wirePipeline,
			startBot,
			startSchedule,
			startServer,
		),
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log.With(slog.String("component", "fx"))}
		}),
	).Run()
}

func provideLogger(cfg config.Config) *slog.Logger {
	logger.Init(cfg.Log.Level, cfg.Log.Format)
	return logger.L
}

func providePlacement(log *slog.Logger) *placement.Service {
	return placement.NewService(log)
}

func provideHistory(lc fx.Lifecycle, cfg config.Config, log *slog.Logger) (*history.Store, error) {
	store, err := history.NewStore(cfg.History.Path, log)
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	lc.Append(fx.Hook{OnStop: func(ctx context.Context) error { return store.Close() }})
	return store, nil
}

func provideBot(log *slog.Logger, cfg config.Config, placer *placement.Service) (*telegram.Bot, error) {
	return telegram.NewBot(log, cfg.Telegram, cfg.Storage, placer)
}

func provideProcessor(log *slog.Logger, cfg config.Config, bot *telegram.Bot, placer *placement.Service, store *history.Store) *ingest.Processor {
	processor := ingest.NewProcessor(log, cfg.Storage, bot, placer)
	processor.SetRecorder(store)
	return processor
}

func provideAggregator(log *slog.Logger, cfg config.Config, processor *ingest.Processor) *album.Aggregator {
	return album.NewAggregator(log, processor, cfg.Storage.Debounce())
}

func provideFetcher(log *slog.Logger, cfg config.Config) fetcher.Fetcher {
	return fetcher.NewYTDLP(log, cfg.Fetch, cfg.Storage.TempDir)
}

func provideSchedule(log *slog.Logger, cfg config.Config, bot *telegram.Bot) *schedule.Service {
	return schedule.NewService(log, cfg.ScheduledMessages, bot)
}

func provideServer(log *slog.Logger, cfg config.Config, pingHandler *handlers.PingHandler, placementsHandler *handlers.PlacementsHandler, albumsHandler *handlers.AlbumsHandler) *server.Server {
	return server.NewServer(log, cfg.Server.Addr, pingHandler, placementsHandler, albumsHandler)
}

func wirePipeline(bot *telegram.Bot, processor *ingest.Processor, albums *album.Aggregator, fetch fetcher.Fetcher, placer *placement.Service) {
	bot.SetPipeline(processor, albums)
	bot.SetPlacer(placer)
	bot.SetFetcher(fetch)
	albums.SetFlushObserver(bot.NotifyBatch)
}

func startBot(lc fx.Lifecycle, bot *telegram.Bot) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go bot.Run(ctx)
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}

func startSchedule(lc fx.Lifecycle, svc *schedule.Service) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			svc.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			svc.Stop()
			return nil
		},
	})
}

func startServer(lc fx.Lifecycle, log *slog.Logger, srv *server.Server, shutdowner fx.Shutdowner) {
	fmt.Printf("Starting Telegram Assistant %s\n", version.GetInfo())
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("server failed", slog.Any("error", err))
					_ = shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := srv.Stop(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server stop: %w", err)
			}
			return nil
		},
	})
}
