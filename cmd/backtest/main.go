package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine"
	engine_v1 "github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-catalyst/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-catalyst/internal/logger"
	"github.com/rxtech-lab/argo-catalyst/internal/regime"
	"github.com/rxtech-lab/argo-catalyst/internal/strategy"
	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
)

// runOptions are the resolved command line flags of one replay.
type runOptions struct {
	DataPath    string
	Symbol      string
	ConfigPath  string
	ResultsDir  string
	Latency     string
	LogLevel    string
	MetricsAddr string
	Progress    bool
}

func main() {
	cmd := &cli.Command{
		Name:  "backtest",
		Usage: "Replay a tick file through the news momentum strategy",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "data",
				Aliases:  []string{"d"},
				Usage:    "Tick file to replay (.csv or .parquet)",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "symbol",
				Aliases: []string{"s"},
				Usage:   "Symbol the ticks belong to",
				Value:   "TICKER",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "YAML run config (engine keys plus strategy and regime sections)",
			},
			&cli.StringFlag{
				Name:    "results",
				Aliases: []string{"o"},
				Usage:   "Directory to write trades, marks and stats to",
			},
			&cli.StringFlag{
				Name:  "latency",
				Usage: "Order to fill latency, overrides the config file (e.g. 200ms)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
				Value: "warn",
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "Serve prometheus metrics on this address while the replay runs (e.g. :9090)",
			},
		},
		Action: backtestAction,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func backtestAction(ctx context.Context, cmd *cli.Command) error {
	opts := runOptions{
		DataPath:    cmd.String("data"),
		Symbol:      cmd.String("symbol"),
		ConfigPath:  cmd.String("config"),
		ResultsDir:  cmd.String("results"),
		Latency:     cmd.String("latency"),
		LogLevel:    cmd.String("log-level"),
		MetricsAddr: cmd.String("metrics-addr"),
		Progress:    true,
	}

	return runBacktest(ctx, opts, os.Stdout)
}

// runBacktest wires the data source, classifier, strategy and engine for
// one symbol, runs the replay and prints the report to out.
func runBacktest(ctx context.Context, opts runOptions, out io.Writer) error {
	log, err := logger.NewLoggerWithLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
	}
	defer func() { _ = log.Sync() }()

	engineConfig, config, err := loadRunConfig(opts.ConfigPath, opts.Latency)
	if err != nil {
		return err
	}

	backtest := engine_v1.NewBacktestEngineV1(engine_v1.WithLogger(log))
	defer func() { _ = backtest.Close() }()

	if err := backtest.Initialize(engineConfig); err != nil {
		return err
	}

	ds, err := datasource.NewDataSource(opts.DataPath, log)
	if err != nil {
		return err
	}
	defer func() { _ = ds.Close() }()

	if err := backtest.LoadDataSource(opts.Symbol, ds); err != nil {
		return err
	}

	classifier, err := regime.NewClassifier(config.Regime, regime.WithLogger(log))
	if err != nil {
		return err
	}

	strat, err := strategy.NewStrategy(config.Strategy, opts.Symbol, classifier, log)
	if err != nil {
		return err
	}

	if err := backtest.RegisterStrategy(opts.Symbol, strat); err != nil {
		return err
	}

	if err := backtest.SetResultsFolder(opts.ResultsDir); err != nil {
		return err
	}

	if opts.MetricsAddr != "" {
		server := serveMetrics(opts.MetricsAddr, backtest.Metrics(), log)

		defer func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			_ = server.Shutdown(shutdownCtx)
		}()
	}

	if err := backtest.Run(progressCallbacks(opts.Progress)); err != nil {
		return err
	}

	s := summarize(backtest.Trades(), backtest.TotalPnL(), backtest.EventsProcessed())

	fmt.Fprintln(out, renderTrades(backtest.Trades()))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderSummary(s))

	if opts.ResultsDir != "" {
		fmt.Fprintf(out, "\nResults written to %s\n", opts.ResultsDir)
	}

	return nil
}

func serveMetrics(addr string, metrics *engine_v1.Metrics, log *logger.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Metrics server stopped", zap.String("addr", addr), zap.Error(err))
		}
	}()

	log.Info("Serving metrics", zap.String("addr", addr))

	return server
}

// progressCallbacks drives a progress bar from the run lifecycle. The
// bar's max tracks processed plus pending because dispatch queues new
// events while the replay runs.
func progressCallbacks(enabled bool) engine.LifecycleCallbacks {
	if !enabled {
		return engine.LifecycleCallbacks{}
	}

	var bar *progressbar.ProgressBar

	onRunStart := engine.OnRunStartCallback(func(runID string, totalQueued int) error {
		bar = progressbar.Default(int64(totalQueued))
		bar.Describe(fmt.Sprintf("Replaying run %s", runID))

		return nil
	})

	onProcessData := engine.OnProcessDataCallback(func(processed int, pending int) error {
		if bar == nil {
			return nil
		}

		bar.ChangeMax(processed + pending)

		return bar.Set(processed)
	})

	onRunEnd := engine.OnRunEndCallback(func(err error) {
		if bar != nil {
			_ = bar.Finish()
		}
	})

	return engine.LifecycleCallbacks{
		OnRunStart:    &onRunStart,
		OnProcessData: &onProcessData,
		OnRunEnd:      &onRunEnd,
	}
}
