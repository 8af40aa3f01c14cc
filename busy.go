package sx126x

import (
	"time"

	"github.com/pkg/errors"
)

// BusyPollInterval is the delay between successive reads of the busy line.
const BusyPollInterval = 10 * time.Microsecond

var (
	// ErrBusyTimeout is returned when the busy line stays asserted
	// for longer than the allowed wait.
	ErrBusyTimeout = errors.New("timeout waiting for BUSY to go low")

	// ErrNoBusyLine is returned when no busy input has been configured.
	ErrNoBusyLine = errors.New("BUSY line not connected")
)

// WaitNotBusy blocks until the busy line is released or the timeout elapses.
func (r *Radio) WaitNotBusy(timeout time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waitNotBusy(timeout)
}

func (r *Radio) waitNotBusy(timeout time.Duration) error {
	if r.busyPin == nil {
		return ErrNoBusyLine
	}
	start := time.Now()
	for {
		busy, err := r.busyPin.Read()
		if err != nil {
			return errors.Wrap(err, "BUSY line")
		}
		if !busy {
			return nil
		}
		if time.Since(start) > timeout {
			r.log.Warnf("BUSY still high after %v", timeout)
			return ErrBusyTimeout
		}
		time.Sleep(BusyPollInterval)
	}
}
