package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/camsim/internal/adapters/memqueue"
	"github.com/bft-labs/camsim/internal/adapters/softgpu"
	"github.com/bft-labs/camsim/internal/cliconfig"
	"github.com/bft-labs/camsim/pkg/camsim"
	"github.com/bft-labs/camsim/pkg/log"
	"github.com/bft-labs/camsim/plugins/configwatcher"
)

const helpDescription = `
Simulate a stereo passthrough camera headset.

The device publishes a synthetic side by side test pattern on the raw frames
channel of an in-process host and presents the frames of a software
compositor on a virtual display.

Highlights:
  - Frame cadence, capture latency and channel layout are configurable.
  - An attached snooper (--snoop) logs the metadata of every frame it reads.
  - The display window follows edits to the config file (--watch-config).
`

var exampleUsage = strings.TrimSpace(`
  camsim --duration 10s --snoop
  camsim --config $HOME/.camsim/config.toml --watch-config --log-level debug
`)

// statsInterval is how often the running counters are logged.
const statsInterval = 5 * time.Second

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "camsim",
		Short:   "Simulate a stereo passthrough camera headset",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Environment overrides the file, flags override both
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			level, err := log.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logger := log.NewZerologAdapter(os.Stderr, level)
			zl := logger.Logger()
			zl.Info().Interface("config", cfg).Msg("configuration")

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			if cfg.Duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
				defer cancel()
			}

			return run(ctx, cfg, cfgFile, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.camsim/config.toml)")
	root.Flags().StringVar(&cfg.ChannelName, "channel", cfg.ChannelName, "name of the raw frames channel")
	root.Flags().IntVar(&cfg.SlotCount, "slots", cfg.SlotCount, "number of channel slots")
	root.Flags().IntVar(&cfg.HeaderSize, "header-size", cfg.HeaderSize, "channel block header size in bytes")
	if err := root.Flags().MarkHidden("header-size"); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	root.Flags().IntVar(&cfg.FrameWidth, "width", cfg.FrameWidth, "width of one eye's camera image")
	root.Flags().IntVar(&cfg.FrameHeight, "height", cfg.FrameHeight, "height of the camera image")
	root.Flags().DurationVar(&cfg.FramePeriod, "frame-period", cfg.FramePeriod, "interval between published frames")
	root.Flags().DurationVar(&cfg.CaptureLatency, "capture-latency", cfg.CaptureLatency, "simulated capture latency")
	root.Flags().DurationVar(&cfg.ReadTimeout, "read-timeout", cfg.ReadTimeout, "snooper wait per block")
	root.Flags().DurationVar(&cfg.LockTimeout, "lock-timeout", cfg.LockTimeout, "texture lock budget per presented frame")
	root.Flags().IntVar(&cfg.FrameRate, "frame-rate", cfg.FrameRate, "display refresh rate in Hz")

	root.Flags().IntVar(&cfg.WindowX, "window-x", cfg.WindowX, "display window x position")
	root.Flags().IntVar(&cfg.WindowY, "window-y", cfg.WindowY, "display window y position")
	root.Flags().IntVar(&cfg.WindowWidth, "window-width", cfg.WindowWidth, "display window width")
	root.Flags().IntVar(&cfg.WindowHeight, "window-height", cfg.WindowHeight, "display window height")
	root.Flags().IntVar(&cfg.RenderWidth, "render-width", cfg.RenderWidth, "recommended render width per eye")
	root.Flags().IntVar(&cfg.RenderHeight, "render-height", cfg.RenderHeight, "recommended render height per eye")

	root.Flags().BoolVar(&cfg.Snoop, "snoop", cfg.Snoop, "attach a reader that logs frame metadata")
	root.Flags().DurationVar(&cfg.Duration, "duration", cfg.Duration, "stop after this long (0 runs until interrupted)")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "apply window size changes from the config file")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "camsim: %v\n", err)
		os.Exit(1)
	}
}

// run activates the device and supervises the compositor, the optional
// snooper and the stats reporter until ctx ends or one of them fails.
func run(ctx context.Context, cfg cliconfig.Config, cfgFile string, logger *log.ZerologAdapter) error {
	host := memqueue.New()
	registry := softgpu.NewRegistry()
	window := softgpu.NewWindow(cfg.WindowX, cfg.WindowY, cfg.WindowWidth, cfg.WindowHeight)

	opts := []camsim.Option{
		camsim.WithLogger(logger),
		camsim.WithHost(host, host),
		camsim.WithGraphics(registry, softgpu.NewSurface(), window),
	}
	if cfg.WatchConfig && cfgFile != "" {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{Path: cfgFile}))
	}

	d, err := camsim.New(camsim.Config{
		ChannelName:    cfg.ChannelName,
		SlotCount:      cfg.SlotCount,
		HeaderSize:     cfg.HeaderSize,
		FrameWidth:     cfg.FrameWidth,
		FrameHeight:    cfg.FrameHeight,
		FramePeriod:    cfg.FramePeriod,
		CaptureLatency: cfg.CaptureLatency,
		RefreshRate:    cfg.FrameRate,
		LockTimeout:    cfg.LockTimeout,
		RenderWidth:    cfg.RenderWidth,
		RenderHeight:   cfg.RenderHeight,
	}, opts...)
	if err != nil {
		return fmt.Errorf("create device: %w", err)
	}

	if err := d.Start(ctx); err != nil {
		return fmt.Errorf("start device: %w", err)
	}
	if err := d.StartVideoStream(); err != nil {
		_ = d.Stop()
		return fmt.Errorf("start video stream: %w", err)
	}

	group, gctx := errgroup.WithContext(ctx)

	compositor := softgpu.NewCompositor(d, registry, softgpu.CompositorConfig{
		Width:       cfg.RenderWidth,
		Height:      cfg.RenderHeight,
		RefreshRate: cfg.FrameRate,
		LockTimeout: cfg.LockTimeout,
	}, logger.With(log.String("component", "compositor")))
	group.Go(func() error { return compositor.Run(gctx) })

	if cfg.Snoop {
		snooper := logger.With(log.String("component", "snoop"))
		group.Go(func() error { return snoop(gctx, host, cfg, snooper) })
	}

	group.Go(func() error {
		ticker := time.NewTicker(statsInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				s := d.Stats()
				logger.Info("device stats",
					log.Uint64("frames_published", s.Producer.Published),
					log.Uint64("acquire_failures", s.Producer.AcquireFailures),
					log.Uint64("composited", s.Pacer.Composited),
					log.Uint64("dropped", s.Pacer.Dropped),
					log.Uint64("presented", compositor.Frames()),
					log.Uint64("poses", s.Poses),
				)
			}
		}
	})

	err = group.Wait()
	if stopErr := d.Stop(); stopErr != nil {
		logger.Error("device stop failed", log.Err(stopErr))
		if err == nil || isShutdown(err) {
			err = stopErr
		}
	}
	if isShutdown(err) {
		logger.Info("camsim stopped")
		return nil
	}
	return err
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
