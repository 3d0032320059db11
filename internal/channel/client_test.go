package channel

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camsim/internal/adapters/memqueue"
	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

var testLayout = Layout{BlockDataSize: 16, BlockHeaderSize: 512, SlotCount: 4}

func newPair(t *testing.T, opts ...memqueue.Option) (*memqueue.Host, *Channel, *Channel) {
	t.Helper()
	host := memqueue.New(opts...)
	client := NewClient(host, host, nil)

	writer, err := client.Create(domain.RawFramesChannel, testLayout)
	require.NoError(t, err)
	reader, err := client.Connect(domain.RawFramesChannel)
	require.NoError(t, err)
	return host, writer, reader
}

func TestClient_CreateErrors(t *testing.T) {
	host := memqueue.New()
	client := NewClient(host, host, nil)

	_, err := client.Create(domain.RawFramesChannel, testLayout)
	require.NoError(t, err)

	_, err = client.Create(domain.RawFramesChannel, testLayout)
	assert.ErrorIs(t, err, domain.ErrQueueAlreadyExists)

	_, err = client.Create("/other", Layout{})
	assert.ErrorIs(t, err, domain.ErrInvalidParam)

	_, err = client.Connect("/missing")
	assert.ErrorIs(t, err, domain.ErrQueueNotFound)
	assert.True(t, domain.IsFatalQueueError(err))
}

func TestFrameLayout(t *testing.T) {
	l := FrameLayout(domain.StereoGeometry(1024, 1024))
	assert.Equal(t, uint32(2048*1024*4), l.BlockDataSize)
	assert.Equal(t, uint32(512), l.BlockHeaderSize)
	assert.Equal(t, uint32(4), l.SlotCount)
	assert.Equal(t, domain.CreationFlag(0), l.Flags)
}

func TestChannel_WriteBlockGuard(t *testing.T) {
	host, writer, _ := newPair(t)

	b, err := writer.AcquireWrite()
	require.NoError(t, err)
	assert.Len(t, b.Buffer(), int(testLayout.BlockDataSize))
	assert.Equal(t, 1, writer.Outstanding())

	require.NoError(t, b.Release())
	assert.Nil(t, b.Buffer(), "buffer dropped after release")
	assert.True(t, b.Released())
	assert.ErrorIs(t, b.Release(), domain.ErrBlockReleased)
	assert.ErrorIs(t, b.WriteFields(Int32Field(domain.PathFrameSize, 1)), domain.ErrBlockReleased)

	assert.Equal(t, 0, writer.Outstanding())
	assert.Equal(t, 0, host.Leases())
	assert.Equal(t, uint64(1), host.Published(domain.RawFramesChannel))
}

func TestChannel_WithWriteBlockReleasesOnError(t *testing.T) {
	host, writer, _ := newPair(t)
	boom := errors.New("boom")

	err := writer.WithWriteBlock(func(b *WriteBlock) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, writer.Outstanding())
	assert.Equal(t, 0, host.Leases())
}

func TestChannel_WithWriteBlockReleasesOnPanic(t *testing.T) {
	host, writer, _ := newPair(t)

	func() {
		defer func() {
			assert.NotNil(t, recover())
		}()
		_ = writer.WithWriteBlock(func(b *WriteBlock) error {
			panic("fill failed")
		})
	}()

	assert.Equal(t, 0, writer.Outstanding())
	assert.Equal(t, 0, host.Leases())
}

func TestChannel_WithWriteBlockAllowsEarlyRelease(t *testing.T) {
	host, writer, _ := newPair(t)

	err := writer.WithWriteBlock(func(b *WriteBlock) error {
		return b.Release()
	})
	require.NoError(t, err)
	assert.Equal(t, 0, host.Leases())
}

func TestChannel_WithReadBlockNotAvailable(t *testing.T) {
	_, _, reader := newPair(t)

	called := false
	err := reader.WithReadBlock(domain.ReadNext, 5*time.Millisecond, func(b *ReadBlock) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable)
	assert.False(t, domain.IsFatalQueueError(err))
	assert.False(t, called)
}

func TestChannel_WithReadBlockReleases(t *testing.T) {
	host, writer, reader := newPair(t)

	require.NoError(t, writer.WithWriteBlock(func(b *WriteBlock) error {
		copy(b.Buffer(), "frame")
		return nil
	}))

	var got string
	err := reader.WithReadBlock(domain.ReadNext, 0, func(b *ReadBlock) error {
		got = string(b.Data()[:5])
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "frame", got)
	assert.Equal(t, 0, reader.Outstanding())
	assert.Equal(t, 0, host.Leases())
}

func TestChannel_Destroy(t *testing.T) {
	_, writer, reader := newPair(t)

	b, err := writer.AcquireWrite()
	require.NoError(t, err)

	assert.ErrorIs(t, writer.Destroy(), ErrBlocksOutstanding)

	require.NoError(t, b.Release())
	require.NoError(t, reader.Destroy())
	require.NoError(t, writer.Destroy())
	require.NoError(t, writer.Destroy(), "second destroy is a no-op")

	_, err = writer.AcquireWrite()
	assert.ErrorIs(t, err, domain.ErrChannelDestroyed)
}

func TestChannel_HasReader(t *testing.T) {
	host := memqueue.New()
	client := NewClient(host, host, nil)
	writer, err := client.Create(domain.RawFramesChannel, testLayout)
	require.NoError(t, err)

	ok, err := writer.HasReader()
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = client.Connect(domain.RawFramesChannel)
	require.NoError(t, err)

	ok, err = writer.HasReader()
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMetadata_ThroughHost(t *testing.T) {
	// A batch limit of one proves every field travels in its own request.
	_, writer, reader := newPair(t, memqueue.WithBatchLimit(1))

	want := domain.FrameMetadata{
		FrameSize:            16,
		FrameSequence:        5,
		CaptureTimeMonotonic: 12.5,
		ServerTimeTicks:      12_460_000_000,
		DeliveryRate:         0.016,
		ElapsedTime:          3.25,
	}
	require.NoError(t, writer.WithWriteBlock(func(b *WriteBlock) error {
		return WriteMetadata(b, want)
	}))

	var got domain.FrameMetadata
	require.NoError(t, reader.WithReadBlock(domain.ReadNext, 0, func(b *ReadBlock) error {
		var err error
		got, err = ReadMetadata(b)
		return err
	}))

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("metadata mismatch (-want +got):\n%s", diff)
	}
}

func TestMetadata_PartialRead(t *testing.T) {
	_, writer, reader := newPair(t)

	require.NoError(t, writer.WithWriteBlock(func(b *WriteBlock) error {
		return b.WriteFields(
			Int32Field(domain.PathFrameSize, 16),
			Uint64Field(domain.PathFrameSequence, 9),
		)
	}))

	var (
		got     domain.FrameMetadata
		readErr error
	)
	require.NoError(t, reader.WithReadBlock(domain.ReadNext, 0, func(b *ReadBlock) error {
		got, readErr = ReadMetadata(b)
		return nil
	}))

	assert.ErrorIs(t, readErr, domain.PropErrUnknownProperty)
	assert.Equal(t, int32(16), got.FrameSize)
	assert.Equal(t, uint64(9), got.FrameSequence)
	assert.Zero(t, got.DeliveryRate)
}

func TestStreamFormat_ThroughHost(t *testing.T) {
	_, writer, reader := newPair(t, memqueue.WithBatchLimit(1))

	want := domain.StreamFormat{Format: domain.FormatRGBX32, Width: 2048, Height: 1024}
	require.NoError(t, WriteStreamFormat(writer, want))

	got, err := ReadStreamFormat(reader)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

// failingPaths rejects writes to one path and counts requests.
type failingPaths struct {
	ports.Paths
	failPath string
	requests int
}

func (f *failingPaths) WritePathBatch(target domain.ContainerHandle, batch []ports.PathWrite) error {
	f.requests++
	if len(batch) == 1 && batch[0].Path == f.failPath {
		return domain.PropErrPermissionDenied
	}
	return f.Paths.WritePathBatch(target, batch)
}

func TestWriteFields_ContinuesAfterFailure(t *testing.T) {
	host := memqueue.New()
	paths := &failingPaths{Paths: host, failPath: domain.PathServerTimeTicks}
	client := NewClient(host, paths, nil)
	writer, err := client.Create(domain.RawFramesChannel, testLayout)
	require.NoError(t, err)

	err = writer.WithWriteBlock(func(b *WriteBlock) error {
		return WriteMetadata(b, domain.FrameMetadata{FrameSequence: 1})
	})
	assert.ErrorIs(t, err, domain.PropErrPermissionDenied)
	assert.Equal(t, 6, paths.requests, "every field attempted individually")
	assert.Equal(t, 0, host.Leases(), "block released despite field failure")
}
