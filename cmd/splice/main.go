package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/phanxgames/splice"
	"github.com/phanxgames/splice/ffmpeg"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "splice",
		Usage:  "Two-track timeline compositor: preview, export and still rendering",
		Before: setupLogging,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("SPLICE_LOG_LEVEL"),
			},
			&cli.BoolFlag{
				Name:    "log-json",
				Usage:   "Emit logs as JSON",
				Sources: cli.EnvVars("SPLICE_LOG_JSON"),
			},
			&cli.BoolFlag{
				Name:    "debug-stats",
				Usage:   "Log per-frame timing stats at debug level",
				Sources: cli.EnvVars("SPLICE_DEBUG_STATS"),
			},
			&cli.IntFlag{
				Name:    "threads",
				Usage:   "ffmpeg thread count (0 lets ffmpeg decide)",
				Sources: cli.EnvVars("SPLICE_FFMPEG_THREADS"),
			},
		},
		Commands: []*cli.Command{
			exportCommand(),
			previewCommand(),
			stillsCommand(),
			probeCommand(),
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := cmd.Run(ctx, os.Args); err != nil {
		logrus.WithError(err).Error("application error")
		os.Exit(1)
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	level, err := logrus.ParseLevel(cmd.String("log-level"))
	if err != nil {
		return ctx, fmt.Errorf("invalid --log-level: %w", err)
	}
	logrus.SetLevel(level)
	if cmd.Bool("log-json") {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return ctx, nil
}

func logger() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}

func newEngine(cmd *cli.Command, opts ...splice.Option) *splice.Engine {
	opts = append([]splice.Option{
		splice.WithLogger(logger()),
		splice.WithDebug(cmd.Bool("debug-stats")),
	}, opts...)
	return splice.NewEngine(opts...)
}

// newExecutor returns nil when ffmpeg is not installed; projects without
// video clips still load.
func newExecutor(cmd *cli.Command) *ffmpeg.Executor {
	e, err := ffmpeg.New(logger(), int(cmd.Int("threads")))
	if err != nil {
		logger().WithError(err).Debug("ffmpeg unavailable")
		return nil
	}
	return e
}

// loadTimeline reads a project file and opens its sources.
func loadTimeline(ctx context.Context, cmd *cli.Command, path string) (*splice.Project, *splice.Timeline, error) {
	project, err := splice.LoadProject(path)
	if err != nil {
		return nil, nil, err
	}
	var open splice.SourceOpener
	if e := newExecutor(cmd); e != nil {
		open = e.Opener(ctx)
	}
	tl, err := project.Build(open)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return project, tl, nil
}

func requireArgs(cmd *cli.Command, n int) error {
	if cmd.Args().Len() < n {
		return fmt.Errorf("usage: %s %s %s", cmd.Root().Name, cmd.Name, cmd.ArgsUsage)
	}
	return nil
}
