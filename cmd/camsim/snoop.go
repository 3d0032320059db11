package main

import (
	"context"
	"fmt"

	"github.com/bft-labs/camsim/internal/adapters/memqueue"
	"github.com/bft-labs/camsim/internal/app"
	"github.com/bft-labs/camsim/internal/channel"
	"github.com/bft-labs/camsim/internal/cliconfig"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/pkg/log"
)

// snoop attaches a reader to the frame channel and logs every frame it
// receives until ctx ends.
func snoop(ctx context.Context, host *memqueue.Host, cfg cliconfig.Config, logger log.Logger) error {
	client := channel.NewClient(host, host, logger)
	ch, err := app.ConnectWithRetry(ctx, client, cfg.ChannelName, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := ch.Destroy(); err != nil {
			logger.Warn("snoop disconnect failed", log.Err(err))
		}
	}()

	format, err := channel.ReadStreamFormat(ch)
	if err != nil {
		return fmt.Errorf("read stream format: %w", err)
	}
	logger.Info("snoop attached",
		log.String("channel", cfg.ChannelName),
		log.Int("format", int(format.Format)),
		log.Int("width", int(format.Width)),
		log.Int("height", int(format.Height)),
	)

	consumer := app.NewConsumer(ch, app.ConsumerConfig{
		Mode:    domain.ReadNext,
		Timeout: cfg.ReadTimeout,
	}, logger)
	consumer.OnFrame(func(o app.Observation) {
		logger.Info("frame",
			log.Uint64("sequence", o.Metadata.FrameSequence),
			log.Float64("monotonic", o.Metadata.CaptureTimeMonotonic),
			log.Uint64("ticks", o.Metadata.ServerTimeTicks),
			log.Float64("delivery_rate", o.Metadata.DeliveryRate),
			log.Float64("elapsed", o.Metadata.ElapsedTime),
			log.Int("size", o.Size),
			log.Uint64("skipped", o.Skipped),
		)
	})

	err = consumer.Run(ctx)
	s := consumer.Stats()
	logger.Info("snoop detached",
		log.Uint64("frames", s.Frames),
		log.Uint64("not_available", s.NotAvailable),
		log.Uint64("gaps", s.Gaps),
	)
	return err
}
