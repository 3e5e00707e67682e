package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/apache/arrow-go/v18/arrow/ipc"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/23skdu/abx/internal/abx"
	"github.com/23skdu/abx/internal/config"
	abxerrors "github.com/23skdu/abx/internal/errors"
	"github.com/23skdu/abx/internal/groups"
	"github.com/23skdu/abx/internal/logging"
	"github.com/23skdu/abx/internal/pool"
	"github.com/23skdu/abx/internal/sparse"
)

const (
	formatText  = "text"
	formatArrow = "arrow"
)

type runFlags struct {
	envFile     string
	metric      string
	symmetric   bool
	workers     int
	logLevel    string
	logFormat   string
	metricsAddr string
	format      string
	progress    bool

	synthetic groups.SyntheticConfig
}

func newRunCmd() *cobra.Command {
	var rf runFlags
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Score a synthetic board of sequence groups",
		Long: "run generates one unit per ordered category pair, scores every unit\n" +
			"in parallel and writes the sparse score board to stdout.\n" +
			"Settings come from ABX_* variables and an optional .env file; flags win.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScores(cmd, &rf)
		},
	}

	def := config.DefaultConfig()
	syn := groups.DefaultSyntheticConfig()
	f := cmd.Flags()
	f.StringVar(&rf.envFile, "env-file", ".env", "Optional dotenv file read before the environment")
	f.StringVar(&rf.metric, "metric", def.Metric, "Frame distance: cosine or euclidian")
	f.BoolVar(&rf.symmetric, "symmetric", def.Symmetric, "Use group A as X and exclude self-pairs")
	f.IntVar(&rf.workers, "workers", def.Workers, "Number of parallel workers")
	f.StringVar(&rf.logLevel, "log-level", def.LogLevel, "Log level: debug, info, warn, error")
	f.StringVar(&rf.logFormat, "log-format", def.LogFormat, "Log format: json or console")
	f.StringVar(&rf.metricsAddr, "metrics-addr", def.MetricsAddr, "Serve Prometheus metrics on this address while running")
	f.StringVar(&rf.format, "format", formatText, "Output format: text or arrow (IPC stream)")
	f.BoolVar(&rf.progress, "progress", true, "Log scoring progress")

	f.IntVar(&rf.synthetic.Categories, "categories", syn.Categories, "Number of categories (board is K×K)")
	f.IntVar(&rf.synthetic.PerGroup, "per-group", syn.PerGroup, "Sequences per group")
	f.IntVar(&rf.synthetic.MinSteps, "min-steps", syn.MinSteps, "Minimum sequence length")
	f.IntVar(&rf.synthetic.MaxSteps, "max-steps", syn.MaxSteps, "Maximum sequence length")
	f.IntVar(&rf.synthetic.Dim, "dim", syn.Dim, "Feature dimension")
	f.Float64Var(&rf.synthetic.Noise, "noise", syn.Noise, "Feature noise standard deviation")
	f.Uint64Var(&rf.synthetic.Seed, "seed", syn.Seed, "Generator seed")
	f.BoolVar(&rf.synthetic.Normalize, "normalize", syn.Normalize, "Unit-normalize every frame")
	return cmd
}

// resolveConfig loads the environment and lets explicitly set flags override it.
func resolveConfig(cmd *cobra.Command, rf *runFlags) (config.Config, error) {
	cfg, err := config.Load(rf.envFile)
	if err != nil {
		return config.Config{}, abxerrors.WrapConfigurationError(err, "load_config", "read environment")
	}
	f := cmd.Flags()
	if f.Changed("metric") {
		cfg.Metric = rf.metric
	}
	if f.Changed("symmetric") {
		cfg.Symmetric = rf.symmetric
	}
	if f.Changed("workers") {
		cfg.Workers = rf.workers
	}
	if f.Changed("log-level") {
		cfg.LogLevel = rf.logLevel
	}
	if f.Changed("log-format") {
		cfg.LogFormat = rf.logFormat
	}
	if f.Changed("metrics-addr") {
		cfg.MetricsAddr = rf.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, abxerrors.WrapValidationError(err, "resolve_config", "invalid configuration")
	}
	return cfg, nil
}

func runScores(cmd *cobra.Command, rf *runFlags) error {
	if rf.format != formatText && rf.format != formatArrow {
		return fmt.Errorf("unknown output format %q", rf.format)
	}
	cfg, err := resolveConfig(cmd, rf)
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(logging.Config{
		Format: cfg.LogFormat,
		Level:  cfg.LogLevel,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}

	synCfg := rf.synthetic
	synCfg.Symmetric = cfg.Symmetric
	board, err := groups.NewSynthetic(synCfg)
	if err != nil {
		return fmt.Errorf("synthetic board: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if cfg.MetricsAddr != "" {
		srv := startMetricsServer(cfg.MetricsAddr, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	opts := abx.Options{
		Metric:    cfg.Metric,
		Symmetric: cfg.Symmetric,
		Workers:   cfg.Workers,
		Logger:    logger,
	}
	if rf.progress {
		opts.Progress = pool.NewLogProgress(logger)
	}

	start := time.Now()
	scores, err := abx.ScoresOnGroups(ctx, board, opts)
	if err != nil {
		return err
	}
	logger.Info().
		Int("entries", scores.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Scoring complete")

	out := cmd.OutOrStdout()
	if rf.format == formatArrow {
		return writeArrow(out, scores)
	}
	return writeText(out, scores)
}

//nolint:gocritic // Logger passed by value for constructor simplicity
func startMetricsServer(addr string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info().Str("address", addr).Msg("Starting metrics server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("Metrics server failed")
		}
	}()
	return srv
}

func writeText(w io.Writer, scores *sparse.Scores) error {
	if _, err := fmt.Fprintf(w, "board: %v\nentries: %d\n", scores.Shape(), scores.Len()); err != nil {
		return err
	}
	for coords, v := range scores.Entries() {
		if _, err := fmt.Fprintf(w, "%v\t%.6f\n", coords, v); err != nil {
			return err
		}
	}
	return nil
}

func writeArrow(w io.Writer, scores *sparse.Scores) error {
	mem := memory.NewGoAllocator()
	rec := scores.Record(mem)
	defer rec.Release()

	iw := ipc.NewWriter(w, ipc.WithSchema(rec.Schema()), ipc.WithAllocator(mem))
	if err := iw.Write(rec); err != nil {
		_ = iw.Close()
		return fmt.Errorf("write arrow record: %w", err)
	}
	return iw.Close()
}
