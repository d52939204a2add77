package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/mandes/MandesCDA/internal/agent"
	"github.com/mandes/MandesCDA/internal/config"
	"github.com/mandes/MandesCDA/internal/domain"
	"github.com/mandes/MandesCDA/internal/handler"
	"github.com/mandes/MandesCDA/internal/market"
	"github.com/mandes/MandesCDA/internal/stats"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running result server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	store := stats.NewStore()

	end := domain.TimeStamp{Day: cfg.EndDay, Tick: cfg.EndTick}
	burnIn := domain.TimeStamp{Day: 0, Tick: cfg.BurnInTick}

	// Seed sweep: each run gets its own seed and a fresh market.
	for i := 0; i < cfg.Runs; i++ {
		seed := cfg.Seed + int64(i)
		logger.Info("run starting", slog.Int("run", i+1), slog.Int64("seed", seed))

		rec, err := runOnce(cfg, seed, burnIn, end, logger)
		if err != nil {
			logger.Error("run failed", slog.Int("run", i+1), slog.String("error", err.Error()))
			os.Exit(1)
		}

		res := store.Add(seed, rec)
		s := rec.Summary()
		logger.Info("run finished",
			slog.String("run_id", res.ID.String()),
			slog.Int64("trades", s.Trades),
			slog.Int64("volume", s.Volume),
			slog.Float64("avg_trade_size", s.AvgTradeSize),
			slog.Float64("avg_return", s.AvgReturn),
			slog.Float64("return_variance", s.ReturnVariance),
			slog.Float64("avg_spread", s.AvgSpread),
			slog.Float64("avg_perc_spread", s.AvgPercSpread),
		)

		if cfg.OutputDir != "" {
			if err := exportRun(cfg.OutputDir, res, burnIn); err != nil {
				logger.Error("export failed", slog.String("run_id", res.ID.String()), slog.String("error", err.Error()))
				os.Exit(1)
			}
		}
	}

	if !cfg.ServeResults {
		return
	}

	// Serve the collected results over HTTP until interrupted.
	router := handler.NewRouter(store, logger)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("result server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	logger.Info("server stopped")
}

// runOnce assembles a market from the configuration, runs it to the end
// time and returns the recorder holding its history.
func runOnce(cfg *config.Config, seed int64, burnIn, end domain.TimeStamp, logger *slog.Logger) (*stats.Recorder, error) {
	m := market.New(market.Params{
		TicksPerDay: cfg.TicksPerDay,
		PriceDigits: cfg.PriceDigits,
		CashDigits:  cfg.CashDigits,
		NullPrice:   cfg.NullPrice,
		IOC:         cfg.IOC,
		Seed:        seed,
	}, logger)

	m.AddTrader(agent.NewLiquidity(true), cfg.TraderLatency, cfg.IdleProb, cfg.TraderCash, cfg.TraderInv)
	m.AddTrader(agent.NewLiquidity(false), cfg.TraderLatency, cfg.IdleProb, cfg.TraderCash, cfg.TraderInv)
	m.AddTrader(agent.NewMarketMaker(m.Clock(), cfg.MakerSpread, cfg.MakerOrders, cfg.MakerExpiry), 0, 0, cfg.TraderCash, cfg.TraderInv)

	rec := stats.NewRecorder(m.Clock(), burnIn, cfg.NullPrice)
	m.Subscribe(rec)

	if err := m.Start(); err != nil {
		return nil, err
	}
	if err := m.Run(end); err != nil {
		return nil, err
	}
	return rec, nil
}

// exportRun writes one run's trade and quote histories as CSV files
// named after the run id, cutting off the burn-in period.
func exportRun(dir string, res *stats.RunResult, burnIn domain.TimeStamp) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tf, err := os.Create(filepath.Join(dir, fmt.Sprintf("trades_%s.csv", res.ID)))
	if err != nil {
		return err
	}
	defer tf.Close()
	if err := res.Recorder.WriteTrades(tf, burnIn); err != nil {
		return err
	}

	qf, err := os.Create(filepath.Join(dir, fmt.Sprintf("quotes_%s.csv", res.ID)))
	if err != nil {
		return err
	}
	defer qf.Close()
	return res.Recorder.WriteQuotes(qf, burnIn)
}
