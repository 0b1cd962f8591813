package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"github.com/sandevgo/kagglebot/internal/config"
	"github.com/sandevgo/kagglebot/internal/providers/kaggle"
	"github.com/sandevgo/kagglebot/internal/providers/llm"
	"github.com/sandevgo/kagglebot/internal/providers/search"
	"github.com/sandevgo/kagglebot/internal/providers/tools"
	"github.com/sandevgo/kagglebot/internal/service/agent"
	"github.com/sandevgo/kagglebot/internal/storage/sqlite"
	"github.com/sandevgo/kagglebot/pkg/log"
)

// toolset is everything the MCP server needs: storage and the registry.
type toolset struct {
	db       *sql.DB
	archive  *sqlite.ArchiveRepo
	registry *tools.Registry
}

// app adds the reasoning backend on top of the toolset.
type app struct {
	*toolset
	cfg  *config.AppConfig
	loop *agent.Loop
}

func newToolset(ctx context.Context, runtimePath string) *toolset {
	logger := log.FromCtx(ctx)

	if err := initEnv(ctx, runtimePath); err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	kaggleCfg := config.NewKaggleConfig(ctx)
	searchCfg := config.NewSearchConfig(ctx)

	dbPath := config.AppConfig{RuntimePath: runtimePath}.GetDatabasePath()
	db, err := sqlite.NewDB(ctx, dbPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}

	cache := sqlite.NewCacheRepo(db)
	if n, err := cache.Prune(ctx); err != nil {
		logger.Warn().Err(err).Msg("failed to prune cache")
	} else if n > 0 {
		logger.Debug().Int64("entries", n).Msg("pruned expired cache entries")
	}

	api := kaggle.New(kaggleCfg.APIURL, kaggleCfg.Username, kaggleCfg.Key,
		kaggle.WithCache(cache, kaggleCfg.CacheTTL),
		kaggle.WithScanLimit(kaggleCfg.ScanKernels),
	)

	searcher := search.NewManager(searchCfg.Provider)
	searcher.Register(search.NewDuckDuckGo(searchCfg.FetchTimeout))
	if searchCfg.SearXNGURL != "" {
		searcher.Register(search.NewSearXNG(searchCfg.SearXNGURL, searchCfg.FetchTimeout))
	}

	logger.Debug().Str("search", searcher.Primary()).Msg("web search ready")

	fetch := tools.NewFetchWithTimeout(searchCfg.FetchTimeout, nil)

	all := tools.NewKaggle(api, searcher, fetch).Tools()
	all = append(all, tools.WebTools(searcher, fetch)...)
	registry, err := tools.FromTools(all...)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build tool registry")
	}

	return &toolset{
		db:       db,
		archive:  sqlite.NewArchiveRepo(db),
		registry: registry,
	}
}

func newApp(ctx context.Context) *app {
	logger := log.FromCtx(ctx)

	ts := newToolset(ctx, config.GetRuntimePath())
	appCfg := config.NewAppConfig(ctx)

	ai, err := llm.NewProvider(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}

	loop := agent.NewLoop(ai, ts.registry,
		agent.WithMaxIterations(appCfg.MaxIterations),
		agent.WithResultLimit(appCfg.ToolResultMaxBytes),
		agent.WithSystemPrompt(agent.LoadSystemPrompt(appCfg.GetSystemPath())),
	)

	logger.Debug().
		Str("provider", appCfg.Provider).
		Str("model", appCfg.Model).
		Int("tools", len(ts.registry.Declare())).
		Msg("agent ready")

	return &app{toolset: ts, cfg: appCfg, loop: loop}
}

func (a *app) newSession(ctx context.Context, channel string) *agent.Session {
	return agent.NewSession(ctx, a.loop,
		agent.WithChannel(channel),
		agent.WithArchive(a.archive),
		agent.WithMemoryCapacity(a.cfg.MemoryCapacity),
		agent.WithWindowSize(a.cfg.ContextWindowSize),
	)
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
