package main

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pingcap/errors"
	"github.com/pingcap/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lwproc/lwproc"
	"github.com/lwproc/lwproc/gen"
	"github.com/lwproc/lwproc/node"
)

// options defines flags shared by the commands
type options struct {
	config         *Config
	configFilePath string
}

func newOptions() *options {
	return &options{
		config: GetDefaultConfig(),
	}
}

func (o *options) addFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringVar(&o.configFilePath, "config", "", "Path of the configuration file")
	flags.StringVar(&o.config.LogLevel, "log-level", o.config.LogLevel, "log level (etc: debug|info|warn|error)")
	flags.StringVar(&o.config.LogFile, "log-file", o.config.LogFile, "log file path")
	flags.StringVar(&o.config.MetricsAddr, "metrics-addr", o.config.MetricsAddr, "serve the prometheus metrics on this address")
	flags.StringVar(&o.config.Kind, "kind", o.config.Kind, "process kind to measure (stateless|stateful|both)")
	flags.IntVar(&o.config.Processes, "processes", o.config.Processes, "number of processes to spawn")
	flags.IntVar(&o.config.Messages, "messages", o.config.Messages, "number of messages to send")
	flags.IntVar(&o.config.Workers, "workers", o.config.Workers, "number of concurrent callers")
	flags.IntVar(&o.config.Runtime.PoolSize, "pool-size", o.config.Runtime.PoolSize, "workers of the stateless execution pool, 0 runs every invocation on its own goroutine")
}

// complete loads the config file. Flags given explicitly take precedence over
// the file values.
func (o *options) complete(cmd *cobra.Command) error {
	if o.configFilePath == "" {
		return o.config.ValidateAndAdjust()
	}

	cfg := GetDefaultConfig()
	if err := cfg.configFromFile(o.configFilePath); err != nil {
		return err
	}
	cmd.Flags().Visit(func(flag *pflag.Flag) {
		switch flag.Name {
		case "log-level":
			cfg.LogLevel = o.config.LogLevel
		case "log-file":
			cfg.LogFile = o.config.LogFile
		case "metrics-addr":
			cfg.MetricsAddr = o.config.MetricsAddr
		case "kind":
			cfg.Kind = o.config.Kind
		case "processes":
			cfg.Processes = o.config.Processes
		case "messages":
			cfg.Messages = o.config.Messages
		case "workers":
			cfg.Workers = o.config.Workers
		case "pool-size":
			cfg.Runtime.PoolSize = o.config.Runtime.PoolSize
		}
	})
	o.config = cfg
	return o.config.ValidateAndAdjust()
}

func newCmd() *cobra.Command {
	o := newOptions()
	cmd := &cobra.Command{
		Use:           "lwpbench",
		Short:         "Measures spawn and send of the lightweight-process runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	o.addFlags(cmd)

	cmd.AddCommand(
		newBenchCmd(o, "spawn", "Measures spawning of processes", func(ctx context.Context, b *bench, kind gen.ProcessKind) (report, error) {
			return b.spawn(ctx, kind)
		}),
		newBenchCmd(o, "send", "Measures message delivery to a single process", func(ctx context.Context, b *bench, kind gen.ProcessKind) (report, error) {
			return b.send(ctx, kind)
		}),
		newConfigCmd(o),
		newVersionCmd(),
	)
	return cmd
}

type benchFunc func(ctx context.Context, b *bench, kind gen.ProcessKind) (report, error)

func newBenchCmd(o *options, use string, short string, f benchFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(cmd); err != nil {
				return err
			}
			return o.run(cmd.Context(), cmd.OutOrStdout(), f)
		},
	}
}

func newConfigCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Prints the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.complete(cmd); err != nil {
				return err
			}
			out, err := o.config.Toml()
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return errors.Trace(err)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Prints the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), lwproc.FrameworkVersion)
		},
	}
}

func (o *options) initLogger() (*zap.Logger, error) {
	conf := &log.Config{Level: o.config.LogLevel}
	conf.File.Filename = o.config.LogFile
	logger, props, err := log.InitLogger(conf)
	if err != nil {
		return nil, errors.Trace(err)
	}
	log.ReplaceGlobals(logger, props)
	return logger, nil
}

// run starts a runtime, serves the metrics if requested and runs the
// measurement for every configured process kind.
func (o *options) run(ctx context.Context, out io.Writer, f benchFunc) (err error) {
	logger, err := o.initLogger()
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runtimeOptions := o.config.Runtime
	runtimeOptions.Logger = logger
	rt, err := node.Start(runtimeOptions)
	if err != nil {
		return errors.Trace(err)
	}
	defer func() {
		err = multierr.Append(err, rt.Stop())
	}()

	var g errgroup.Group
	if o.config.MetricsAddr != "" {
		server, lis, err := newMetricsServer(o.config.MetricsAddr)
		if err != nil {
			return err
		}
		log.Info("serving metrics", zap.Stringer("addr", lis.Addr()))
		g.Go(func() error {
			if err := server.Serve(lis); err != nil && err != http.ErrServerClosed {
				return errors.Trace(err)
			}
			return nil
		})
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			err = multierr.Combine(err, server.Shutdown(shutdownCtx), g.Wait())
		}()
	}

	b := newBench(rt, clock.New(), o.config)
	for _, kind := range o.config.kinds() {
		r, err := f(ctx, b, kind)
		if err != nil {
			return err
		}
		log.Info("measured",
			zap.String("operation", r.Operation),
			zap.Stringer("kind", r.Kind),
			zap.Int("count", r.Count),
			zap.Duration("elapsed", r.Elapsed))
		fmt.Fprintln(out, r)
	}
	return nil
}

func newMetricsServer(addr string) (*http.Server, net.Listener, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	node.InitMetrics(registry)

	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, errors.Trace(err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	return &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}, lis, nil
}
