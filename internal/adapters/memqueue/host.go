// Package memqueue is an in-process implementation of the host block queue
// and path store. It backs the standalone CLI and the tests, and follows the
// host's observable contract: named channels, one publish counter per
// channel, per-connection read cursors, and typed fields on channels and
// blocks.
package memqueue

import (
	"sync"
	"time"

	"github.com/bft-labs/camsim/internal/domain"
)

// DefaultMaxConnections bounds connections per channel, owner included.
const DefaultMaxConnections = 16

// Option configures a Host.
type Option func(*Host)

// WithMaxConnections overrides the per-channel connection limit.
func WithMaxConnections(n int) Option {
	return func(h *Host) {
		if n > 0 {
			h.maxConns = n
		}
	}
}

// WithBatchLimit makes path batches larger than n fail with
// PropErrInvalidOperation. Zero accepts any batch size.
func WithBatchLimit(n int) Option {
	return func(h *Host) {
		h.batchLimit = n
	}
}

// Host holds every channel of one simulated host process.
type Host struct {
	mu         sync.Mutex
	queues     map[string]*queue
	conns      map[domain.ContainerHandle]*conn
	leases     map[domain.ContainerHandle]*lease
	next       domain.ContainerHandle
	maxConns   int
	batchLimit int
}

// New creates an empty host.
func New(opts ...Option) *Host {
	h := &Host{
		queues:   make(map[string]*queue),
		conns:    make(map[domain.ContainerHandle]*conn),
		leases:   make(map[domain.ContainerHandle]*lease),
		maxConns: DefaultMaxConnections,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type value struct {
	tag  domain.PropertyTag
	data []byte
}

type queue struct {
	name       string
	dataSize   uint32
	headerSize uint32
	flags      domain.CreationFlag
	slots      []*slot
	published  uint64
	notify     chan struct{}
	conns      int
	closed     bool
	fields     map[string]value
}

type slot struct {
	data    []byte
	seq     uint64
	writing bool
	readers int
	fields  map[string]value
}

type conn struct {
	q       *queue
	owner   bool
	lastSeq uint64
	leases  int
}

type lease struct {
	conn  *conn
	slot  *slot
	write bool
}

func (h *Host) allocHandle() domain.ContainerHandle {
	h.next++
	return h.next
}

// Create implements ports.BlockQueue.
func (h *Host) Create(name string, blockDataSize, blockHeaderSize, blockCount uint32, flags domain.CreationFlag) (domain.ContainerHandle, error) {
	if name == "" || blockDataSize == 0 || blockCount == 0 {
		return domain.InvalidHandle, domain.ErrInvalidParam
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.queues[name]; ok {
		return domain.InvalidHandle, domain.ErrQueueAlreadyExists
	}

	q := &queue{
		name:       name,
		dataSize:   blockDataSize,
		headerSize: blockHeaderSize,
		flags:      flags,
		slots:      make([]*slot, blockCount),
		notify:     make(chan struct{}),
		fields:     make(map[string]value),
	}
	for i := range q.slots {
		q.slots[i] = &slot{data: make([]byte, blockDataSize), fields: make(map[string]value)}
	}
	h.queues[name] = q

	handle := h.allocHandle()
	h.conns[handle] = &conn{q: q, owner: true}
	q.conns++
	return handle, nil
}

// Connect implements ports.BlockQueue.
func (h *Host) Connect(name string) (domain.ContainerHandle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	q, ok := h.queues[name]
	if !ok {
		return domain.InvalidHandle, domain.ErrQueueNotFound
	}
	if q.conns >= h.maxConns {
		return domain.InvalidHandle, domain.ErrTooManyConnections
	}

	handle := h.allocHandle()
	h.conns[handle] = &conn{q: q}
	q.conns++
	return handle, nil
}

// Destroy implements ports.BlockQueue.
func (h *Host) Destroy(handle domain.ContainerHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, ok := h.conns[handle]
	if !ok {
		return domain.ErrInvalidHandle
	}
	if c.leases > 0 {
		return domain.ErrInvalidParam
	}

	delete(h.conns, handle)
	c.q.conns--
	if c.owner && !c.q.closed {
		c.q.closed = true
		delete(h.queues, c.q.name)
		close(c.q.notify)
	}
	return nil
}

// AcquireWriteOnlyBlock implements ports.BlockQueue. It never waits: when
// every slot is being written or read it fails with ErrBlockNotAvailable.
func (h *Host) AcquireWriteOnlyBlock(handle domain.ContainerHandle) (domain.ContainerHandle, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.lookupConn(handle)
	if err != nil {
		return domain.InvalidHandle, nil, err
	}

	var victim *slot
	for _, s := range c.q.slots {
		if s.writing || s.readers > 0 {
			continue
		}
		if victim == nil || s.seq < victim.seq {
			victim = s
		}
	}
	if victim == nil {
		return domain.InvalidHandle, nil, domain.ErrBlockNotAvailable
	}

	victim.writing = true
	victim.fields = make(map[string]value)

	b := h.allocHandle()
	h.leases[b] = &lease{conn: c, slot: victim, write: true}
	c.leases++
	return b, victim.data, nil
}

// ReleaseWriteOnlyBlock implements ports.BlockQueue.
func (h *Host) ReleaseWriteOnlyBlock(handle, block domain.ContainerHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, err := h.lookupLease(handle, block, true)
	if err != nil {
		return err
	}
	delete(h.leases, block)
	l.conn.leases--

	q := l.conn.q
	q.published++
	l.slot.seq = q.published
	l.slot.writing = false
	if !q.closed {
		close(q.notify)
		q.notify = make(chan struct{})
	}
	return nil
}

// AcquireReadOnlyBlock implements ports.BlockQueue.
func (h *Host) AcquireReadOnlyBlock(handle domain.ContainerHandle, mode domain.ReadMode) (domain.ContainerHandle, []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	b, data, _, err := h.tryRead(handle, mode)
	return b, data, err
}

// WaitAndAcquireReadOnlyBlock implements ports.BlockQueue.
func (h *Host) WaitAndAcquireReadOnlyBlock(handle domain.ContainerHandle, mode domain.ReadMode, timeout time.Duration) (domain.ContainerHandle, []byte, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		h.mu.Lock()
		b, data, wait, err := h.tryRead(handle, mode)
		h.mu.Unlock()

		if err != domain.ErrBlockNotAvailable || wait == nil {
			return b, data, err
		}

		select {
		case <-wait:
		case <-timer.C:
			return domain.InvalidHandle, nil, domain.ErrBlockNotAvailable
		}
	}
}

// tryRead selects a block for mode. On ErrBlockNotAvailable it returns the
// channel that is closed by the next publish. Must hold h.mu.
func (h *Host) tryRead(handle domain.ContainerHandle, mode domain.ReadMode) (domain.ContainerHandle, []byte, <-chan struct{}, error) {
	c, err := h.lookupConn(handle)
	if err != nil {
		return domain.InvalidHandle, nil, nil, err
	}

	var pick *slot
	for _, s := range c.q.slots {
		if s.seq == 0 || s.writing {
			continue
		}
		switch mode {
		case domain.ReadLatest:
			if pick == nil || s.seq > pick.seq {
				pick = s
			}
		case domain.ReadNew:
			if s.seq > c.lastSeq && (pick == nil || s.seq > pick.seq) {
				pick = s
			}
		case domain.ReadNext:
			if s.seq > c.lastSeq && (pick == nil || s.seq < pick.seq) {
				pick = s
			}
		default:
			return domain.InvalidHandle, nil, nil, domain.ErrInvalidParam
		}
	}
	if pick == nil {
		return domain.InvalidHandle, nil, c.q.notify, domain.ErrBlockNotAvailable
	}

	pick.readers++
	if pick.seq > c.lastSeq {
		c.lastSeq = pick.seq
	}

	b := h.allocHandle()
	h.leases[b] = &lease{conn: c, slot: pick}
	c.leases++
	return b, pick.data, nil, nil
}

// ReleaseReadOnlyBlock implements ports.BlockQueue.
func (h *Host) ReleaseReadOnlyBlock(handle, block domain.ContainerHandle) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	l, err := h.lookupLease(handle, block, false)
	if err != nil {
		return err
	}
	delete(h.leases, block)
	l.conn.leases--
	l.slot.readers--
	return nil
}

// QueueHasReader implements ports.BlockQueue.
func (h *Host) QueueHasReader(handle domain.ContainerHandle) (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c, err := h.lookupConn(handle)
	if err != nil {
		return false, err
	}
	if c.q.flags&domain.FlagOwnerIsReader != 0 {
		return true, nil
	}
	return c.q.conns > 1, nil
}

// Published returns the number of blocks published on the named channel.
func (h *Host) Published(name string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if q, ok := h.queues[name]; ok {
		return q.published
	}
	return 0
}

// Leases returns the number of blocks currently acquired across all channels.
func (h *Host) Leases() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.leases)
}

func (h *Host) lookupConn(handle domain.ContainerHandle) (*conn, error) {
	c, ok := h.conns[handle]
	if !ok {
		return nil, domain.ErrInvalidHandle
	}
	if c.q.closed {
		return nil, domain.ErrQueueNotFound
	}
	return c, nil
}

func (h *Host) lookupLease(handle, block domain.ContainerHandle, write bool) (*lease, error) {
	c, ok := h.conns[handle]
	if !ok {
		return nil, domain.ErrInvalidHandle
	}
	l, ok := h.leases[block]
	if !ok || l.conn != c || l.write != write {
		return nil, domain.ErrInvalidHandle
	}
	return l, nil
}
