package sensor

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"
	"go.uber.org/zap"
)

const (
	// DefaultBaudRate is the line rate of the ADC bridge firmware.
	DefaultBaudRate = 115200
	// DefaultStaleAfter is how long a sample stays valid.
	DefaultStaleAfter = 2 * time.Second
	// MaxLineLength bounds one sample line. Longer lines are line noise and
	// are skipped whole.
	MaxLineLength = 4096
	// ReopenDelay is the first wait before reopening a failed port. It
	// doubles on every failed attempt up to MaxReopenDelay.
	ReopenDelay    = 500 * time.Millisecond
	MaxReopenDelay = 10 * time.Second
)

// Bridge reads raw samples streamed by the ADC bridge MCU over a serial line.
// The MCU prints one line per sample: three normalized floats for
// temperature, light and pressure, separated by spaces or commas.
// Lines starting with '#' are ignored. When the port fails it is reopened
// until Close.
type Bridge struct {
	port       string
	baudRate   int
	staleAfter time.Duration
	now        func() time.Time
	log        *zap.Logger
	open       func() (io.ReadCloser, error)
	retryMin   time.Duration
	retryMax   time.Duration

	started bool
	quit    chan struct{}
	done    chan struct{}
	ready   chan struct{}

	connMu sync.Mutex
	conn   io.ReadCloser

	mu       sync.RWMutex
	latest   Raw
	latestAt time.Time
	have     bool
	bad      int
}

// NewBridge creates a bridge for the given serial device. Zero values pick
// the defaults.
func NewBridge(port string, baudRate int, staleAfter time.Duration, logger *zap.Logger) *Bridge {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if staleAfter == 0 {
		staleAfter = DefaultStaleAfter
	}
	b := &Bridge{
		port:       port,
		baudRate:   baudRate,
		staleAfter: staleAfter,
		now:        time.Now,
		log:        logger,
		retryMin:   ReopenDelay,
		retryMax:   MaxReopenDelay,
		ready:      make(chan struct{}),
	}
	b.open = b.openSerial
	return b
}

func (b *Bridge) openSerial() (io.ReadCloser, error) {
	port, err := serial.Open(b.port, &serial.Mode{BaudRate: b.baudRate})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", b.port, err)
	}
	return port, nil
}

// Connect opens the serial port and starts reading samples. Only the first
// open must succeed; later failures are retried in the background.
func (b *Bridge) Connect() error {
	if b.started {
		return fmt.Errorf("already connected")
	}
	conn, err := b.open()
	if err != nil {
		return err
	}
	b.start(conn)
	b.log.Info("sensor bridge connected", zap.String("port", b.port), zap.Int("baud", b.baudRate))
	return nil
}

func (b *Bridge) start(conn io.ReadCloser) {
	b.started = true
	b.conn = conn
	b.quit = make(chan struct{})
	b.done = make(chan struct{})
	go b.run(conn)
}

// run reads from conn until it fails, then reopens the port with backoff.
// It returns once Close has been called.
func (b *Bridge) run(conn io.ReadCloser) {
	defer close(b.done)

	for {
		err := b.readLoop(conn)
		if b.closing() {
			return
		}
		b.log.Warn("sensor bridge: read stopped, reopening", zap.String("port", b.port), zap.Error(err))

		// Close may already own the port.
		b.connMu.Lock()
		owned := b.conn == conn
		b.conn = nil
		b.connMu.Unlock()
		if owned {
			if cerr := conn.Close(); cerr != nil {
				b.log.Debug("sensor bridge: close failed port", zap.Error(cerr))
			}
		}

		if conn = b.reopen(); conn == nil {
			return
		}
	}
}

// reopen retries the port until it opens or Close is called, in which case
// it returns nil.
func (b *Bridge) reopen() io.ReadCloser {
	delay := b.retryMin
	for {
		select {
		case <-b.quit:
			return nil
		case <-time.After(delay):
		}

		conn, err := b.open()
		if err != nil {
			b.log.Debug("sensor bridge: reopen failed", zap.Duration("retry_in", delay), zap.Error(err))
			if delay *= 2; delay > b.retryMax {
				delay = b.retryMax
			}
			continue
		}

		b.connMu.Lock()
		if b.closing() {
			b.connMu.Unlock()
			conn.Close()
			return nil
		}
		b.conn = conn
		b.connMu.Unlock()

		b.log.Info("sensor bridge reconnected", zap.String("port", b.port))
		return conn
	}
}

func (b *Bridge) closing() bool {
	select {
	case <-b.quit:
		return true
	default:
		return false
	}
}

// readLoop handles lines until the reader fails. Lines longer than
// MaxLineLength are counted as bad and skipped up to their newline.
func (b *Bridge) readLoop(conn io.Reader) error {
	r := bufio.NewReaderSize(conn, MaxLineLength)
	overlong := false
	for {
		chunk, err := r.ReadSlice('\n')
		if errors.Is(err, bufio.ErrBufferFull) {
			if !overlong {
				b.log.Debug("sensor bridge: skipping overlong line", zap.Int("max", MaxLineLength))
			}
			overlong = true
			continue
		}
		if err != nil {
			return err
		}
		if overlong {
			overlong = false
			b.countBad()
			continue
		}
		b.handleLine(string(chunk))
	}
}

func (b *Bridge) handleLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	raw, err := parseLine(line)
	if err != nil {
		b.countBad()
		b.log.Debug("sensor bridge: bad line", zap.String("line", line), zap.Error(err))
		return
	}
	b.store(raw)
}

func (b *Bridge) countBad() {
	b.mu.Lock()
	b.bad++
	b.mu.Unlock()
}

func (b *Bridge) store(raw Raw) {
	b.mu.Lock()
	first := !b.have
	b.latest = raw
	b.latestAt = b.now()
	b.have = true
	b.mu.Unlock()

	if first {
		close(b.ready)
	}
}

// Raw returns the latest sample.
func (b *Bridge) Raw() (Raw, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.have {
		return Raw{}, ErrNoSample
	}
	if age := b.now().Sub(b.latestAt); age > b.staleAfter {
		return Raw{}, fmt.Errorf("%w: %v old", ErrStale, age.Truncate(time.Millisecond))
	}
	return b.latest, nil
}

// Ready is closed once the first sample has arrived.
func (b *Bridge) Ready() <-chan struct{} {
	return b.ready
}

// BadLines returns how many unparseable lines have been skipped.
func (b *Bridge) BadLines() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.bad
}

// Close closes the port and waits for the reader to stop.
func (b *Bridge) Close() error {
	if !b.started {
		return nil
	}
	b.started = false
	close(b.quit)

	b.connMu.Lock()
	conn := b.conn
	b.conn = nil
	b.connMu.Unlock()

	var err error
	if conn != nil {
		err = conn.Close()
	}
	<-b.done
	if err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	return nil
}

func parseLine(line string) (Raw, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 3 {
		return Raw{}, fmt.Errorf("expected 3 fields, got %d", len(fields))
	}

	var vals [3]float32
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return Raw{}, fmt.Errorf("field %d: %w", i, err)
		}
		vals[i] = float32(v)
	}
	return Raw{Temperature: vals[0], Light: vals[1], Pressure: vals[2]}, nil
}
