package sx126x

import (
	"time"

	"github.com/pkg/errors"
)

// SetStandby puts the radio into standby using the given oscillator.
func (r *Radio) SetStandby(mode StandbyMode) error {
	_, err := r.transact(CmdSetStandby, []byte{byte(mode)}, 0)
	return err
}

// SetDIO3AsTCXOCtrl makes DIO3 supply the TCXO at the given voltage
// and waits the given start-up delay before using it.
func (r *Radio) SetDIO3AsTCXOCtrl(voltage TCXOVoltage, delay time.Duration) error {
	steps := delay / tcxoDelayStep
	if steps < 0 || steps > 0xFFFFFF {
		return errors.Errorf("TCXO delay %v out of range", delay)
	}
	params := append([]byte{byte(voltage)}, marshalUint24(uint32(steps))...)
	_, err := r.transact(CmdSetDIO3AsTCXOCtrl, params, 0)
	return err
}

// Calibrate starts calibration of the selected blocks.
// The device holds BUSY high until calibration completes.
func (r *Radio) Calibrate(p CalibrationParam) error {
	_, err := r.transact(CmdCalibrate, []byte{byte(p)}, 0)
	return err
}
