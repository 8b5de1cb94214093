package printer

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"jk80-print/internal/escpos"
)

// Dialer opens a serial-port-profile link to a printer. Dial blocks for
// the whole handshake.
type Dialer interface {
	Dial(ctx context.Context, dev BluetoothDevice) (io.ReadWriteCloser, error)
}

// Status of the manager's connection slot
type Status int

const (
	Disconnected Status = iota
	Connecting
	Connected
)

func (s Status) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Result is the outcome of a connect or disconnect request
type Result struct {
	Device BluetoothDevice
	Err    error
}

// Connected reports whether the request left the device connected
func (r Result) Connected() bool {
	return r.Err == nil
}

// StatusText renders a connect result for the status line
func StatusText(r Result) string {
	name := r.Device.Name
	if name == "" {
		name = r.Device.MAC
	}
	if r.Connected() {
		return fmt.Sprintf("Connected to %s", name)
	}
	return fmt.Sprintf("Failed to connect to %s", name)
}

type requestKind int

const (
	reqConnect requestKind = iota
	reqDisconnect
)

type request struct {
	kind   requestKind
	device BluetoothDevice
	reply  chan Result
}

// Manager owns the single printer connection. Connect and disconnect
// requests are handled one at a time by a dedicated goroutine; prints
// run in the caller's goroutine while holding the slot.
type Manager struct {
	dialer    Dialer
	access    Access
	log       *slog.Logger
	queueSize int
	model     string

	ctx    context.Context
	cancel context.CancelFunc
	reqs   chan request
	quit   chan struct{}
	done   chan struct{}

	qmu       sync.Mutex // guards closed and sends on reqs
	closed    bool
	closeOnce sync.Once

	mu     sync.Mutex // guards the slot
	conn   io.ReadWriteCloser
	device BluetoothDevice
	status Status
}

// Option configures a Manager
type Option func(*Manager)

func WithLogger(l *slog.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithQueueSize bounds the number of pending connect requests
func WithQueueSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.queueSize = n
		}
	}
}

// WithModel sets the model name printed on the test receipt
func WithModel(name string) Option {
	return func(m *Manager) {
		if name != "" {
			m.model = name
		}
	}
}

// NewManager starts a connection manager. Close must be called to stop it.
func NewManager(dialer Dialer, access Access, opts ...Option) *Manager {
	m := &Manager{
		dialer:    dialer,
		access:    access,
		log:       slog.Default(),
		queueSize: 1,
		model:     escpos.DefaultModel,
		quit:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.reqs = make(chan request, m.queueSize)

	go m.run()
	return m
}

// Connect queues a connection attempt to dev. The returned channel
// receives exactly one Result. ErrBusy is returned when the queue is full.
func (m *Manager) Connect(dev BluetoothDevice) (<-chan Result, error) {
	return m.enqueue(request{kind: reqConnect, device: dev})
}

// Disconnect queues closing the active connection
func (m *Manager) Disconnect() (<-chan Result, error) {
	return m.enqueue(request{kind: reqDisconnect})
}

// ConnectWait connects to dev and waits for the outcome. ctx only bounds
// the wait; the attempt itself still completes in the background.
func (m *Manager) ConnectWait(ctx context.Context, dev BluetoothDevice) error {
	reply, err := m.Connect(dev)
	if err != nil {
		return err
	}
	select {
	case r := <-reply:
		return r.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Manager) enqueue(req request) (<-chan Result, error) {
	req.reply = make(chan Result, 1)

	m.qmu.Lock()
	defer m.qmu.Unlock()
	if m.closed {
		return nil, ErrClosed
	}
	select {
	case m.reqs <- req:
		return req.reply, nil
	default:
		m.log.Warn("rejecting request, queue full", "device", req.device.Name)
		return nil, ErrBusy
	}
}

func (m *Manager) run() {
	defer close(m.done)
	for {
		select {
		case <-m.quit:
			m.drain()
			return
		case req := <-m.reqs:
			switch req.kind {
			case reqConnect:
				req.reply <- m.connect(req.device)
			case reqDisconnect:
				req.reply <- m.disconnect()
			}
		}
	}
}

func (m *Manager) drain() {
	for {
		select {
		case req := <-m.reqs:
			req.reply <- Result{Device: req.device, Err: ErrClosed}
		default:
			return
		}
	}
}

func (m *Manager) connect(dev BluetoothDevice) Result {
	log := m.log.With("device", dev.Name, "mac", dev.MAC)

	if err := m.access.Check(m.ctx); err != nil {
		log.Warn("not connecting", "error", err)
		return Result{Device: dev, Err: err}
	}

	m.mu.Lock()
	if err := m.closeLocked(); err != nil {
		log.Debug("closing previous connection", "error", err)
	}
	m.device = dev
	m.status = Connecting
	m.mu.Unlock()

	log.Info("connecting")
	conn, err := m.dialer.Dial(m.ctx, dev)
	if err != nil {
		if conn != nil {
			conn.Close()
		}
		m.mu.Lock()
		m.device = BluetoothDevice{}
		m.status = Disconnected
		m.mu.Unlock()

		log.Error("connection failed", "error", err)
		return Result{Device: dev, Err: fmt.Errorf("%w %s: %w", ErrConnectionFailed, dev, err)}
	}

	m.mu.Lock()
	m.conn = conn
	m.status = Connected
	m.mu.Unlock()

	log.Info("connected")
	return Result{Device: dev}
}

func (m *Manager) disconnect() Result {
	m.mu.Lock()
	defer m.mu.Unlock()

	dev := m.device
	err := m.closeLocked()
	if err != nil {
		m.log.Debug("closing connection", "device", dev.Name, "error", err)
	}
	return Result{Device: dev}
}

// closeLocked empties the slot. m.mu must be held.
func (m *Manager) closeLocked() error {
	var err error
	if m.conn != nil {
		err = m.conn.Close()
	}
	m.conn = nil
	m.device = BluetoothDevice{}
	m.status = Disconnected
	return err
}

// Status returns the state of the connection slot
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// Active returns the connected device, if any
func (m *Manager) Active() (BluetoothDevice, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.status != Connected {
		return BluetoothDevice{}, false
	}
	return m.device, true
}

// PrintTest prints the fixed test receipt stamped with now
func (m *Manager) PrintTest(now time.Time) error {
	return m.Print(escpos.TestReceipt(now, m.model))
}

// Print sends job to the connected printer. Nothing is written unless the
// grants are held and the slot is connected.
func (m *Manager) Print(job *escpos.Command) error {
	if err := m.access.Check(m.ctx); err != nil {
		m.log.Warn("not printing", "error", err)
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.status != Connected || m.conn == nil {
		return ErrNotConnected
	}

	if err := writeJob(m.conn, job); err != nil {
		m.log.Error("print failed", "device", m.device.Name, "mac", m.device.MAC, "error", err)
		return err
	}
	m.log.Info("job sent", "device", m.device.Name, "bytes", len(job.Bytes()))
	return nil
}

// Close stops the manager and closes the active connection
func (m *Manager) Close() error {
	m.closeOnce.Do(func() {
		m.qmu.Lock()
		m.closed = true
		m.qmu.Unlock()

		m.cancel()
		close(m.quit)
	})
	<-m.done

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeLocked()
}
