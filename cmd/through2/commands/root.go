package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kbukum/through2/config"
	"github.com/kbukum/through2/logger"
	"github.com/kbukum/through2/observability"
	"github.com/kbukum/through2/pipeline"
	"github.com/kbukum/through2/stream"
	"github.com/kbukum/through2/version"
)

const appName = "through2"

// app holds state shared by every command of one invocation.
type app struct {
	configFile   string
	envFile      string
	logLevel     string
	otelEndpoint string
	chunkSize    int

	cfg       config.Config
	log       *logger.Logger
	streamLog *logger.Logger
	observer  stream.Observer
	shutdown  []func(context.Context) error
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   appName,
		Short: "Pipe stdin to stdout through a chunk transform",
		Long: `Pipe stdin to stdout through a chunk transform.

Input is read in chunks of --chunk-size bytes and each chunk is passed
through the selected transform. Stream options come from config.yml,
.env and STREAM_* environment variables:

  stream:
    high_water_mark: 1024
    encoding: utf8
    name: stdin`,
		SilenceUsage:       true,
		SilenceErrors:      true,
		PersistentPreRunE:  func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error { return a.teardown(cmd.Context()) },
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configFile, "config", "", "config file (default: search cmd/through2, config, .)")
	flags.StringVar(&a.envFile, "env-file", "", ".env file (default: search standard locations)")
	flags.StringVar(&a.logLevel, "log-level", "", "log level override (debug, info, warn, error, disabled)")
	flags.StringVar(&a.otelEndpoint, "otel-endpoint", "", "OTLP HTTP endpoint for stream metrics and traces")
	flags.IntVar(&a.chunkSize, "chunk-size", 32*1024, "read size for stdin chunks")

	root.AddCommand(
		newAppendCmd(a),
		newReplaceCmd(a),
		newCountCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	var opts []config.LoaderOption
	if a.configFile != "" {
		opts = append(opts, config.WithConfigFile(a.configFile))
	}
	if a.envFile != "" {
		opts = append(opts, config.WithEnvFile(a.envFile))
	}
	if err := config.LoadConfig(appName, &a.cfg, opts...); err != nil {
		return err
	}
	if a.logLevel != "" {
		a.cfg.Logging.Level = a.logLevel
	}
	a.cfg.ApplyDefaults()
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	base := logger.NewWithWriter(&a.cfg.Logging, cmd.ErrOrStderr(), "")
	a.log = base.WithComponent(appName)
	a.streamLog = base.WithComponent("stream")
	logger.SetGlobalLogger(a.log)
	logger.Register("stream", a.streamLog)
	a.log.Debug("starting", version.Get().Fields())

	if a.otelEndpoint != "" {
		return a.setupTelemetry(cmd.Context())
	}
	return nil
}

func (a *app) setupTelemetry(ctx context.Context) error {
	mc := observability.DefaultMeterConfig(appName)
	mc.Endpoint = a.otelEndpoint
	mc.ServiceVersion = version.Version
	mp, err := observability.InitMeter(ctx, mc)
	if err != nil {
		return err
	}
	a.shutdown = append(a.shutdown, mp.Shutdown)

	tc := observability.DefaultTracerConfig(appName)
	tc.Endpoint = a.otelEndpoint
	tc.ServiceVersion = version.Version
	tp, err := observability.InitTracer(ctx, tc)
	if err != nil {
		return err
	}
	a.shutdown = append(a.shutdown, tp.Shutdown)

	metrics, err := observability.NewStreamMetrics(observability.Meter(appName))
	if err != nil {
		return err
	}
	a.observer = stream.Observers(metrics, observability.NewStreamTracer(observability.Tracer(appName)))
	return nil
}

func (a *app) teardown(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var firstErr error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		if err := a.shutdown[i](ctx); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("telemetry shutdown: %w", err)
		}
	}
	return firstErr
}

// streamOptions returns the configured options followed by the logger and
// observer of this invocation.
func (a *app) streamOptions() []stream.Option {
	opts := a.cfg.Stream.Options()
	opts = append(opts, stream.WithLogger(a.streamLog))
	if a.observer != nil {
		opts = append(opts, stream.WithObserver(a.observer))
	}
	return opts
}

// run copies stdin to stdout through stages built by newStage.
func (a *app) run(cmd *cobra.Command, name string, newStage func() pipeline.Stage) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	start := time.Now()
	var bytesIn int
	src := pipeline.Tap(pipeline.FromReader(cmd.InOrStdin(), a.chunkSize), func(_ context.Context, b []byte) error {
		bytesIn += len(b)
		return nil
	})
	err := pipeline.Copy(ctx, pipeline.Through(pipeline.Any(src), newStage), cmd.OutOrStdout())

	fields := logger.DurationFields(name, time.Since(start))
	fields["bytes_in"] = bytesIn
	if err != nil {
		a.log.WithError(err).Error("transform failed", fields)
		return err
	}
	a.log.Debug("transform complete", fields)
	return nil
}
