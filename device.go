package sx126x

import (
	"io"
	"sync"
	"time"

	"github.com/ecc1/radio"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"
)

const (
	// SPISpeed is the bus clock used for every transaction (mode 0, MSB first).
	SPISpeed = 2000000 // Hz

	defaultBusyTimeout = 1 * time.Second
)

// OutputPin is a digital output line driven at the given electrical level.
type OutputPin interface {
	Write(bool) error
}

// InputPin is a digital input line; Read returns its electrical level.
type InputPin interface {
	Read() (bool, error)
}

// Radio represents an open SX126x device.
type Radio struct {
	mu          sync.Mutex
	bus         drivers.SPI
	chipSelect  OutputPin // nil when the SPI controller drives NSS
	resetPin    OutputPin
	busyPin     InputPin
	dio1Pin     InputPin
	device      string
	closers     []io.Closer
	busyTimeout time.Duration
	log         logrus.FieldLogger
	stats       radio.Statistics
	err         error
}

// New returns a radio using the given bus and control lines.
// It performs no I/O; pin modes are assumed to be configured already.
// chipSelect may be nil if the bus asserts chip select itself.
func New(bus drivers.SPI, chipSelect, reset OutputPin, busy InputPin) *Radio {
	return &Radio{
		bus:         bus,
		chipSelect:  chipSelect,
		resetPin:    reset,
		busyPin:     busy,
		busyTimeout: defaultBusyTimeout,
		log:         logrus.StandardLogger(),
	}
}

// Close closes the radio device and its control lines.
func (r *Radio) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i].Close(); err != nil && r.err == nil {
			r.err = err
		}
	}
	r.closers = nil
}

// abort closes whatever Open has acquired so far and keeps the open error.
func (r *Radio) abort(what string) *Radio {
	err := errors.Wrap(r.err, what)
	r.Close()
	r.err = err
	return r
}

// Name returns the radio's name.
func (r *Radio) Name() string {
	return "SX126x"
}

// Device returns the pathname of the radio's device.
func (r *Radio) Device() string {
	return r.device
}

// Error returns the error state of the radio device.
func (r *Radio) Error() error {
	return r.err
}

// SetError sets the error state of the radio device.
func (r *Radio) SetError(err error) {
	r.err = err
}

// Statistics returns the frame and byte counts for the radio device.
// Each transaction counts as one sent packet.
func (r *Radio) Statistics() radio.Statistics {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// SetLogger sets the logger used for bus tracing.
func (r *Radio) SetLogger(log logrus.FieldLogger) {
	r.log = log
}

// SetBusyTimeout sets the bound on the busy wait around each transaction.
func (r *Radio) SetBusyTimeout(timeout time.Duration) {
	r.busyTimeout = timeout
}

// IRQ returns the level of the DIO1 interrupt line.
func (r *Radio) IRQ() (bool, error) {
	if r.dio1Pin == nil {
		return false, errors.New("DIO1 not connected")
	}
	return r.dio1Pin.Read()
}

// transact performs one framed exchange: the opcode, its parameters,
// then n filler bytes whose responses are returned.
// The busy line is checked before and after the exchange.
func (r *Radio) transact(cmd Command, params []byte, n int) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.waitNotBusy(r.busyTimeout); err != nil {
		return nil, errors.Wrapf(err, "%v", cmd)
	}
	tx := make([]byte, 1+len(params)+n)
	tx[0] = byte(cmd)
	copy(tx[1:], params)
	rx := make([]byte, len(tx))
	if err := r.exchange(tx, rx); err != nil {
		return nil, errors.Wrapf(err, "%v", cmd)
	}
	r.log.Debugf("xfer % X -> % X", tx, rx)
	r.stats.Packets.Sent++
	r.stats.Bytes.Sent += len(tx)
	r.stats.Bytes.Received += n
	if err := r.waitNotBusy(r.busyTimeout); err != nil {
		return nil, errors.Wrapf(err, "%v", cmd)
	}
	return rx[len(rx)-n:], nil
}

// exchange clocks tx out and rx in with chip select held low.
func (r *Radio) exchange(tx, rx []byte) error {
	if r.chipSelect != nil {
		if err := r.chipSelect.Write(false); err != nil {
			return errors.Wrap(err, "chip select")
		}
	}
	err := r.bus.Tx(tx, rx)
	if r.chipSelect != nil {
		if csErr := r.chipSelect.Write(true); err == nil && csErr != nil {
			err = errors.Wrap(csErr, "chip select")
		}
	}
	return err
}
