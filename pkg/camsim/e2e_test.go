package camsim_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/bft-labs/camsim/internal/adapters/memqueue"
	"github.com/bft-labs/camsim/internal/adapters/softgpu"
	"github.com/bft-labs/camsim/internal/app"
	"github.com/bft-labs/camsim/internal/channel"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/pkg/camsim"
)

// TestEndToEnd runs the device with a compositor presenting to its display
// and a reader draining its frame channel.
func TestEndToEnd(t *testing.T) {
	host := memqueue.New()
	g := newGraphics()
	cfg := smallConfig()

	d, err := camsim.New(cfg, camsim.WithHost(host, host), g.option())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The reader starts first and waits for the channel to appear.
	var mu sync.Mutex
	var seen []app.Observation
	client := channel.NewClient(host, host, nil)

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		ch, err := app.ConnectWithRetry(gctx, client, domain.RawFramesChannel, nil)
		if err != nil {
			return err
		}
		defer ch.Destroy()

		consumer := app.NewConsumer(ch, app.DefaultConsumerConfig(), nil)
		consumer.OnFrame(func(o app.Observation) {
			mu.Lock()
			seen = append(seen, o)
			mu.Unlock()
		})
		return consumer.Run(gctx)
	})

	require.NoError(t, d.Start(ctx))
	require.NoError(t, d.StartVideoStream())

	compositor := softgpu.NewCompositor(d, g.registry, softgpu.CompositorConfig{
		Width:       cfg.RenderWidth,
		Height:      cfg.RenderHeight,
		RefreshRate: 200,
	}, nil)
	group.Go(func() error { return compositor.Run(gctx) })

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 5 && compositor.Frames() >= 5
	}, 5*time.Second, 5*time.Millisecond)

	cancel()
	err = group.Wait()
	assert.True(t, errors.Is(err, context.Canceled), "unexpected error: %v", err)
	require.NoError(t, d.Stop())

	mu.Lock()
	defer mu.Unlock()
	for _, o := range seen {
		assert.NoError(t, o.FieldErr)
		assert.Equal(t, 64*16*4, o.Size)
		assert.Less(t, o.Metadata.FrameSequence, uint64(domain.SequenceModulus))
	}

	stats := d.Stats()
	assert.Zero(t, stats.Pacer.Composited, "counters reset after stop")
	assert.GreaterOrEqual(t, g.surface.Stats().Presents, 5)
	assert.Zero(t, host.Leases())
}
