package memqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bft-labs/camsim/internal/domain"
	"github.com/bft-labs/camsim/internal/ports"
)

const testChannel = "/test/frames"

// publish writes marker into the first byte of a fresh block and releases it.
func publish(t *testing.T, h *Host, q domain.ContainerHandle, marker byte) {
	t.Helper()
	b, buf, err := h.AcquireWriteOnlyBlock(q)
	require.NoError(t, err)
	buf[0] = marker
	require.NoError(t, h.ReleaseWriteOnlyBlock(q, b))
}

func read(t *testing.T, h *Host, q domain.ContainerHandle, mode domain.ReadMode) byte {
	t.Helper()
	b, buf, err := h.AcquireReadOnlyBlock(q, mode)
	require.NoError(t, err)
	marker := buf[0]
	require.NoError(t, h.ReleaseReadOnlyBlock(q, b))
	return marker
}

func TestHost_CreateAndConnect(t *testing.T) {
	h := New()

	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	assert.NotEqual(t, domain.InvalidHandle, owner)

	_, err = h.Create(testChannel, 8, 0, 4, 0)
	assert.ErrorIs(t, err, domain.ErrQueueAlreadyExists)

	_, err = h.Connect("/missing")
	assert.ErrorIs(t, err, domain.ErrQueueNotFound)

	reader, err := h.Connect(testChannel)
	require.NoError(t, err)
	assert.NotEqual(t, owner, reader)
}

func TestHost_CreateRejectsEmptyLayout(t *testing.T) {
	h := New()

	_, err := h.Create(testChannel, 0, 0, 4, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)

	_, err = h.Create(testChannel, 8, 0, 0, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidParam)
}

func TestHost_ReadNextIsPublishOrder(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	for i := byte(1); i <= 3; i++ {
		publish(t, h, owner, i)
	}

	for want := byte(1); want <= 3; want++ {
		assert.Equal(t, want, read(t, h, reader, domain.ReadNext))
	}

	_, _, err = h.AcquireReadOnlyBlock(reader, domain.ReadNext)
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable)
}

func TestHost_ReadNewAndLatest(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	_, _, err = h.AcquireReadOnlyBlock(reader, domain.ReadLatest)
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable, "nothing published yet")

	publish(t, h, owner, 1)
	publish(t, h, owner, 2)
	publish(t, h, owner, 3)

	assert.Equal(t, byte(3), read(t, h, reader, domain.ReadNew))

	_, _, err = h.AcquireReadOnlyBlock(reader, domain.ReadNew)
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable, "New must not redeliver")

	assert.Equal(t, byte(3), read(t, h, reader, domain.ReadLatest), "Latest redelivers")
}

func TestHost_ReadersHaveIndependentCursors(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	a, err := h.Connect(testChannel)
	require.NoError(t, err)
	b, err := h.Connect(testChannel)
	require.NoError(t, err)

	publish(t, h, owner, 7)

	assert.Equal(t, byte(7), read(t, h, a, domain.ReadNext))
	assert.Equal(t, byte(7), read(t, h, b, domain.ReadNext))
}

func TestHost_NextSkipsOverwrittenBlocks(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 2, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	for i := byte(1); i <= 5; i++ {
		publish(t, h, owner, i)
	}

	// Only the last two survive in a two-slot channel.
	assert.Equal(t, byte(4), read(t, h, reader, domain.ReadNext))
	assert.Equal(t, byte(5), read(t, h, reader, domain.ReadNext))
}

func TestHost_WriteFailsWhenAllSlotsHeld(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 2, 0)
	require.NoError(t, err)

	_, _, err = h.AcquireWriteOnlyBlock(owner)
	require.NoError(t, err)
	_, _, err = h.AcquireWriteOnlyBlock(owner)
	require.NoError(t, err)

	_, _, err = h.AcquireWriteOnlyBlock(owner)
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable)
	assert.Equal(t, 2, h.Leases())
}

func TestHost_ReaderPinsSlot(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 1, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	publish(t, h, owner, 1)
	rb, buf, err := h.AcquireReadOnlyBlock(reader, domain.ReadLatest)
	require.NoError(t, err)

	_, _, err = h.AcquireWriteOnlyBlock(owner)
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable)
	assert.Equal(t, byte(1), buf[0])

	require.NoError(t, h.ReleaseReadOnlyBlock(reader, rb))
	publish(t, h, owner, 2)
}

func TestHost_WaitAndAcquire(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		publish(t, h, owner, 9)
	}()

	b, buf, err := h.WaitAndAcquireReadOnlyBlock(reader, domain.ReadNext, time.Second)
	require.NoError(t, err)
	assert.Equal(t, byte(9), buf[0])
	require.NoError(t, h.ReleaseReadOnlyBlock(reader, b))
}

func TestHost_WaitTimesOut(t *testing.T) {
	h := New()
	_, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	start := time.Now()
	_, _, err = h.WaitAndAcquireReadOnlyBlock(reader, domain.ReadNext, 30*time.Millisecond)
	assert.ErrorIs(t, err, domain.ErrBlockNotAvailable)
	assert.GreaterOrEqual(t, time.Since(start), 25*time.Millisecond)
}

func TestHost_WaitEndsWhenChannelDestroyed(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	go func() {
		time.Sleep(20 * time.Millisecond)
		_ = h.Destroy(owner)
	}()

	_, _, err = h.WaitAndAcquireReadOnlyBlock(reader, domain.ReadNext, time.Second)
	assert.ErrorIs(t, err, domain.ErrQueueNotFound)
}

func TestHost_TooManyConnections(t *testing.T) {
	h := New(WithMaxConnections(2))
	_, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)

	_, err = h.Connect(testChannel)
	require.NoError(t, err)

	_, err = h.Connect(testChannel)
	assert.ErrorIs(t, err, domain.ErrTooManyConnections)
}

func TestHost_Destroy(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)

	b, _, err := h.AcquireWriteOnlyBlock(owner)
	require.NoError(t, err)
	assert.ErrorIs(t, h.Destroy(owner), domain.ErrInvalidParam, "destroy with a held block")

	require.NoError(t, h.ReleaseWriteOnlyBlock(owner, b))
	require.NoError(t, h.Destroy(owner))
	assert.ErrorIs(t, h.Destroy(owner), domain.ErrInvalidHandle)

	_, err = h.Create(testChannel, 8, 0, 4, 0)
	assert.NoError(t, err, "name is free after owner destroy")
}

func TestHost_ReleaseValidatesHandles(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	b, _, err := h.AcquireWriteOnlyBlock(owner)
	require.NoError(t, err)

	assert.ErrorIs(t, h.ReleaseReadOnlyBlock(owner, b), domain.ErrInvalidHandle, "wrong kind")
	assert.ErrorIs(t, h.ReleaseWriteOnlyBlock(reader, b), domain.ErrInvalidHandle, "wrong connection")
	require.NoError(t, h.ReleaseWriteOnlyBlock(owner, b))
	assert.ErrorIs(t, h.ReleaseWriteOnlyBlock(owner, b), domain.ErrInvalidHandle, "double release")
}

func TestHost_QueueHasReader(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)

	ok, err := h.QueueHasReader(owner)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = h.Connect(testChannel)
	require.NoError(t, err)

	ok, err = h.QueueHasReader(owner)
	require.NoError(t, err)
	assert.True(t, ok)

	self, err := h.Create("/test/self", 8, 0, 1, domain.FlagOwnerIsReader)
	require.NoError(t, err)
	ok, err = h.QueueHasReader(self)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestHost_ConcurrentProducerConsumer(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	const frames = 200
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < frames; i++ {
			b, buf, err := h.AcquireWriteOnlyBlock(owner)
			if err != nil {
				continue
			}
			buf[0] = byte(i)
			_ = h.ReleaseWriteOnlyBlock(owner, b)
		}
	}()

	received := 0
	for {
		b, _, err := h.WaitAndAcquireReadOnlyBlock(reader, domain.ReadNext, 10*time.Millisecond)
		if err == nil {
			received++
			require.NoError(t, h.ReleaseReadOnlyBlock(reader, b))
			continue
		}
		require.ErrorIs(t, err, domain.ErrBlockNotAvailable)
		select {
		case <-done:
		default:
			continue
		}
		break
	}
	wg.Wait()

	assert.Positive(t, received)
	assert.LessOrEqual(t, uint64(received), h.Published(testChannel))
	assert.Equal(t, 0, h.Leases())
}

func TestHost_Paths(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	val := []byte{1, 0, 0, 0}
	require.NoError(t, h.WritePathBatch(owner, []ports.PathWrite{{Path: domain.PathWidth, Tag: domain.TagInt32, Value: val}}))

	reads := []ports.PathRead{{Path: domain.PathWidth, Tag: domain.TagInt32}}
	require.NoError(t, h.ReadPathBatch(reader, reads))
	assert.Equal(t, val, reads[0].Value)

	err = h.WritePathBatch(reader, []ports.PathWrite{{Path: domain.PathWidth, Tag: domain.TagInt32, Value: val}})
	assert.ErrorIs(t, err, domain.PropErrPermissionDenied, "readers cannot write channel fields")

	reads = []ports.PathRead{{Path: domain.PathHeight, Tag: domain.TagInt32}}
	assert.ErrorIs(t, h.ReadPathBatch(reader, reads), domain.PropErrUnknownProperty)

	reads = []ports.PathRead{{Path: domain.PathWidth, Tag: domain.TagDouble}}
	assert.ErrorIs(t, h.ReadPathBatch(reader, reads), domain.PropErrWrongDataType)

	err = h.WritePathBatch(owner, []ports.PathWrite{{Path: domain.PathWidth, Tag: domain.TagInt32, Value: []byte{1}}})
	assert.ErrorIs(t, err, domain.PropErrWrongDataType, "short value")

	assert.ErrorIs(t, h.ReadPathBatch(domain.ContainerHandle(9999), reads), domain.PropErrInvalidContainer)
}

func TestHost_BlockFields(t *testing.T) {
	h := New()
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)
	reader, err := h.Connect(testChannel)
	require.NoError(t, err)

	wb, _, err := h.AcquireWriteOnlyBlock(owner)
	require.NoError(t, err)
	seq := []byte{3, 0, 0, 0, 0, 0, 0, 0}
	require.NoError(t, h.WritePathBatch(wb, []ports.PathWrite{{Path: domain.PathFrameSequence, Tag: domain.TagUint64, Value: seq}}))
	require.NoError(t, h.ReleaseWriteOnlyBlock(owner, wb))

	rb, _, err := h.AcquireReadOnlyBlock(reader, domain.ReadNext)
	require.NoError(t, err)
	reads := []ports.PathRead{{Path: domain.PathFrameSequence, Tag: domain.TagUint64}}
	require.NoError(t, h.ReadPathBatch(rb, reads))
	assert.Equal(t, seq, reads[0].Value)

	err = h.WritePathBatch(rb, []ports.PathWrite{{Path: domain.PathFrameSequence, Tag: domain.TagUint64, Value: seq}})
	assert.ErrorIs(t, err, domain.PropErrPermissionDenied)
	require.NoError(t, h.ReleaseReadOnlyBlock(reader, rb))
}

func TestHost_BatchLimit(t *testing.T) {
	h := New(WithBatchLimit(1))
	owner, err := h.Create(testChannel, 8, 0, 4, 0)
	require.NoError(t, err)

	batch := []ports.PathWrite{
		{Path: domain.PathWidth, Tag: domain.TagInt32, Value: []byte{1, 0, 0, 0}},
		{Path: domain.PathHeight, Tag: domain.TagInt32, Value: []byte{1, 0, 0, 0}},
	}
	err = h.WritePathBatch(owner, batch)
	assert.ErrorIs(t, err, domain.PropErrInvalidOperation)
	for _, w := range batch {
		assert.ErrorIs(t, w.Err, domain.PropErrInvalidOperation)
	}

	require.NoError(t, h.WritePathBatch(owner, batch[:1]))
}
