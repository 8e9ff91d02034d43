package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phanxgames/splice"
	"github.com/phanxgames/splice/preview"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"
)

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Render a project to a PNG sequence or video file",
		ArgsUsage: "PROJECT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "png, mp4, webm, mov or gif"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output file, or directory for png"},
			&cli.FloatFlag{Name: "fps", Usage: "Output frame rate"},
			&cli.IntFlag{Name: "width", Usage: "Override output width"},
			&cli.IntFlag{Name: "height", Usage: "Override output height"},
			&cli.BoolFlag{Name: "hard-edges", Usage: "Render masks without feather or antialiasing"},
		},
		Action: runExport,
	}
}

func runExport(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	project, tl, err := loadTimeline(ctx, cmd, cmd.Args().First())
	if err != nil {
		return err
	}
	defer tl.Close()

	cfg := exportConfig(cmd, project.Export)
	var sink splice.Sink
	if cfg.Format == "png" {
		sink = splice.NewPNGSink()
	} else {
		e := newExecutor(cmd)
		if e == nil {
			return fmt.Errorf("%w: %q needs ffmpeg in PATH", splice.ErrUnsupportedOutputFormat, cfg.Format)
		}
		sink = e.NewSink()
	}

	engine := newEngine(cmd)
	defer engine.Close()
	x := splice.NewExporter(engine, sink, splice.WithLogger(logger()))

	log := logger().WithField("function", "export")
	next := 0.0
	final, err := x.Run(ctx, tl.Snapshot(), cfg, func(ev splice.Event) {
		if ev.Progress >= next {
			log.WithFields(logrus.Fields{
				"frame": ev.Frame,
				"time":  fmt.Sprintf("%.2fs", ev.Time),
			}).Infof("%3.0f%%", ev.Progress*100)
			next = ev.Progress + 0.1
		}
	})
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"outcome": final.Outcome.String(),
		"frames":  final.Frames,
		"output":  cfg.Output,
	}).Info("done")
	return nil
}

// exportConfig layers command-line flags over the project's export block.
func exportConfig(cmd *cli.Command, base splice.ExportConfig) splice.ExportConfig {
	cfg := splice.DefaultExportConfig()
	if base.Format != "" {
		cfg.Format = base.Format
	}
	if base.Output != "" {
		cfg.Output = base.Output
	}
	if base.FrameRate > 0 {
		cfg.FrameRate = base.FrameRate
	}
	cfg.Width, cfg.Height = base.Width, base.Height
	cfg.HardEdgeMasks = base.HardEdgeMasks

	if cmd.IsSet("format") {
		cfg.Format = strings.ToLower(cmd.String("format"))
	}
	if cmd.IsSet("output") {
		cfg.Output = cmd.String("output")
	}
	if cmd.IsSet("fps") {
		cfg.FrameRate = cmd.Float("fps")
	}
	if cmd.IsSet("width") {
		cfg.Width = int(cmd.Int("width"))
	}
	if cmd.IsSet("height") {
		cfg.Height = int(cmd.Int("height"))
	}
	if cmd.IsSet("hard-edges") {
		cfg.HardEdgeMasks = cmd.Bool("hard-edges")
	}
	if cfg.Format != "png" && filepath.Ext(cfg.Output) == "" {
		cfg.Output += "." + cfg.Format
	}
	return cfg
}

func previewCommand() *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Play a project in a window",
		ArgsUsage: "PROJECT",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "watch", Aliases: []string{"w"}, Usage: "Reload when the project file changes"},
			&cli.BoolFlag{Name: "loop", Usage: "Loop playback"},
			&cli.BoolFlag{Name: "show-fps", Usage: "Show an FPS readout"},
		},
		Action: runPreview,
	}
}

func runPreview(ctx context.Context, cmd *cli.Command) error {
	if err := requireArgs(cmd, 1); err != nil {
		return err
	}
	path := cmd.Args().First()
	_, tl, err := loadTimeline(ctx, cmd, path)
	if err != nil {
		return err
	}

	engine := newEngine(cmd)
	defer engine.Close()
	player := preview.NewPlayer(engine, tl,
		preview.WithLogger(logger()),
		preview.WithLoop(cmd.Bool("loop")),
		preview.WithFPS(cmd.Bool("show-fps")),
	)

	if cmd.Bool("watch") {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go func() {
			err := preview.Watch(ctx, path, logger(), func() {
				_, next, err := loadTimeline(ctx, cmd, path)
				if err != nil {
					logger().WithError(err).Warn("reload failed, keeping previous project")
					return
				}
				player.SetTimeline(next)
			})
			if err != nil {
				logger().WithError(err).Warn("watcher stopped")
			}
		}()
	}
	return preview.Run(player, "splice: "+filepath.Base(path))
}

func stillsCommand() *cli.Command {
	return &cli.Command{
		Name:      "stills",
		Usage:     "Render the frames listed in a still script to PNG files",
		ArgsUsage: "PROJECT SCRIPT",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "stills", Usage: "Output directory"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 2); err != nil {
				return err
			}
			_, tl, err := loadTimeline(ctx, cmd, cmd.Args().Get(0))
			if err != nil {
				return err
			}
			defer tl.Close()

			data, err := os.ReadFile(cmd.Args().Get(1))
			if err != nil {
				return err
			}
			script, err := splice.LoadStillScript(data)
			if err != nil {
				return err
			}
			engine := newEngine(cmd)
			defer engine.Close()
			paths, err := splice.RenderStills(ctx, engine, tl.Snapshot(), script, cmd.String("output"))
			for _, p := range paths {
				fmt.Println(p)
			}
			return err
		},
	}
}

func probeCommand() *cli.Command {
	return &cli.Command{
		Name:      "probe",
		Usage:     "Print video metadata as JSON",
		ArgsUsage: "FILE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if err := requireArgs(cmd, 1); err != nil {
				return err
			}
			e := newExecutor(cmd)
			if e == nil {
				return errors.New("ffprobe not found in PATH")
			}
			info, err := e.Probe(ctx, cmd.Args().First())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		},
	}
}
