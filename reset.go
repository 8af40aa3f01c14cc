package sx126x

import (
	"time"

	"github.com/pkg/errors"
)

const (
	resetPulse       = 100 * time.Microsecond
	resetSettle      = 10 * time.Millisecond
	resetBusyTimeout = 100 * time.Millisecond
)

// Reset pulses the NRESET line low and waits for the device to become ready.
func (r *Radio) Reset() error {
	if r.resetPin == nil {
		return errors.New("RESET line not connected")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.resetPin.Write(false); err != nil {
		return errors.Wrap(err, "reset")
	}
	time.Sleep(resetPulse)
	if err := r.resetPin.Write(true); err != nil {
		return errors.Wrap(err, "reset")
	}
	time.Sleep(resetSettle)
	return errors.Wrap(r.waitNotBusy(resetBusyTimeout), "reset")
}
