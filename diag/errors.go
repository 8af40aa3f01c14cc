package diag

import "github.com/pkg/errors"

// Failure kinds recorded in Outcome.Err. Busy timeouts are reported
// as wrapped sx126x.ErrBusyTimeout.
var (
	// ErrCommunication means the device returned an implausible value,
	// such as a version register reading 0x00 or 0xFF.
	ErrCommunication = errors.New("communication failure")

	// ErrVerification means a value read back differs from what was written
	// or the device did not reach the requested state.
	ErrVerification = errors.New("verification failure")

	// ErrDeviceWarning means the device reported error flags.
	// The check is recorded as failed but reported as a warning.
	ErrDeviceWarning = errors.New("device reported errors")
)
