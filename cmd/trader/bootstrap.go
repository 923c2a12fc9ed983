package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"daytrader-client/internal/cache"
	"daytrader-client/internal/daytrader"
	"daytrader-client/internal/daytrader/daytraderobs"
	"daytrader-client/internal/interfaces"
	"daytrader-client/internal/logger"
	"daytrader-client/internal/store"
	"daytrader-client/internal/trace"
	"daytrader-client/internal/trade"
)

// app holds what every command shares: config, backend and cached views.
type app struct {
	cfg   *store.Config
	api   interfaces.TradingAPI
	cache *cache.QueryCache
}

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(*configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// initializeAPI returns the backend client with observability
func initializeAPI(ctx context.Context, cfg *store.Config) interfaces.TradingAPI {
	token := cfg.Token()
	if token == "" {
		logger.Warn(ctx, "No session token set; requests are sent unauthenticated", "env", cfg.API.TokenEnv)
	}

	client := daytrader.New(daytrader.Params{
		BaseURL: cfg.API.BaseURL,
		Token:   token,
		Timeout: cfg.Timeout(),
		Logging: logger.IsDebugEnabled(),
	})
	logger.Info(ctx, "DayTrader backend configured", "base_url", cfg.API.BaseURL)

	// Wrap with observability middleware
	return daytraderobs.Wrap(client)
}

func newApp(ctx context.Context) (*app, error) {
	if err := initializeSystem(); err != nil {
		return nil, err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	a := &app{
		cfg:   cfg,
		api:   initializeAPI(ctx, cfg),
		cache: cache.New(cfg.StaleTime()),
	}
	cache.RegisterTradingQueries(a.cache, a.api)
	return a, nil
}

func (a *app) newController(nav interfaces.Navigator) *trade.Controller {
	return trade.NewController(trade.Params{
		Quotes:    a.api,
		Holdings:  a.api,
		Orders:    a.api,
		Cache:     a.cache,
		Navigator: nav,
		Debounce:  a.cfg.Debounce(),
		Fee:       a.cfg.Fee(),
	})
}
