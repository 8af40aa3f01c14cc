package diag

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/ecc1/sx126x"
)

const (
	scratchRegister = sx126x.RegXTATrim
	scratchValue    = 0x55

	// 3.3 V on DIO3, 1600 steps of 15.625 µs.
	tcxoVoltage = sx126x.TCXO3_3V
	tcxoDelay   = 25 * time.Millisecond

	calibrationSettle  = 100 * time.Millisecond
	calibrationTimeout = 1 * time.Second

	trimValue = 0x12
)

func (s *Sequencer) checkReset(rec *Recorder) error {
	rec.Notef("Pulsing NRESET and waiting for BUSY to clear")
	return s.dev.Reset()
}

func (s *Sequencer) checkCommunication(rec *Recorder) error {
	v, err := s.dev.ReadRegister(sx126x.RegVersion)
	if err != nil {
		return errors.Wrap(err, "reading version register")
	}
	rec.Notef("Firmware version: 0x%02X", v)
	if v == 0x00 || v == 0xFF {
		rec.Notef("Possible causes: incorrect wiring, module not powered, SPI clock/mode mismatch")
		return errors.Wrapf(ErrCommunication, "version register reads 0x%02X", v)
	}
	return nil
}

func (s *Sequencer) checkRegisterAccess(rec *Recorder) error {
	orig, err := s.dev.ReadRegister(scratchRegister)
	if err != nil {
		return errors.Wrap(err, "reading original value")
	}
	rec.Notef("Original value at 0x%04X: 0x%02X", uint16(scratchRegister), orig)
	if err := s.dev.WriteRegister(scratchRegister, scratchValue); err != nil {
		return errors.Wrap(err, "writing test value")
	}
	s.sleep(time.Millisecond)
	back, err := s.dev.ReadRegister(scratchRegister)
	restoreErr := s.dev.WriteRegister(scratchRegister, orig)
	if restoreErr != nil {
		rec.Notef("Restoring 0x%02X failed: %v", orig, restoreErr)
	}
	if err != nil {
		return errors.Wrap(err, "reading back test value")
	}
	rec.Notef("Wrote 0x%02X, read back 0x%02X", scratchValue, back)
	if back != scratchValue {
		return errors.Wrapf(ErrVerification, "%v read back 0x%02X, want 0x%02X", scratchRegister, back, scratchValue)
	}
	return errors.Wrap(restoreErr, "restoring original value")
}

func (s *Sequencer) checkStandby(rec *Recorder) error {
	if err := s.dev.SetStandby(sx126x.StandbyRC); err != nil {
		return err
	}
	s.sleep(10 * time.Millisecond)
	st, err := s.dev.GetStatus()
	if err != nil {
		return err
	}
	rec.Notef("Status byte: 0x%02X", byte(st))
	rec.Notef("Chip mode: %v", st.ChipMode())
	rec.Notef("Command status: %v", st.CommandStatus())
	if st.ChipMode() != sx126x.ModeStandbyRC {
		return errors.Wrapf(ErrVerification, "chip mode %v, want %v", st.ChipMode(), sx126x.ModeStandbyRC)
	}
	return nil
}

// checkTCXO cannot verify the TCXO supply; it passes once the command is accepted.
func (s *Sequencer) checkTCXO(rec *Recorder) error {
	if err := s.dev.SetDIO3AsTCXOCtrl(tcxoVoltage, tcxoDelay); err != nil {
		return err
	}
	rec.Notef("Voltage: %v (via DIO3)", tcxoVoltage)
	rec.Notef("Start-up delay: %v", tcxoDelay)
	s.sleep(5 * time.Millisecond)
	return nil
}

func (s *Sequencer) checkCalibration(rec *Recorder) error {
	if err := s.dev.Calibrate(sx126x.CalibrateAll); err != nil {
		return err
	}
	for _, block := range sx126x.CalibrateAll.Blocks() {
		rec.Notef("Calibrating %s", block)
	}
	s.sleep(calibrationSettle)
	return errors.Wrap(s.dev.WaitNotBusy(calibrationTimeout), "calibration")
}

// checkKeyRegisters is observational and always passes.
func (s *Sequencer) checkKeyRegisters(rec *Recorder) error {
	for _, reg := range sx126x.KeyRegisters {
		v, err := s.dev.ReadRegister(reg)
		if err != nil {
			rec.Notef("%-18s [0x%04X] unreadable: %v", reg, uint16(reg), err)
			continue
		}
		rec.Notef("%-18s [0x%04X] = 0x%02X (0b%08b)", reg, uint16(reg), v, v)
	}
	return nil
}

func (s *Sequencer) checkDeviceErrors(rec *Recorder) error {
	e, err := s.dev.GetDeviceErrors()
	if err != nil {
		return err
	}
	rec.Notef("Error register: 0x%04X", uint16(e))
	if e == 0 {
		return nil
	}
	for _, f := range e.Flags() {
		rec.Notef("- %s", f)
	}
	return errors.Wrapf(ErrDeviceWarning, "error register 0x%04X", uint16(e))
}

func (s *Sequencer) checkClock(rec *Recorder) error {
	trims := []sx126x.Register{sx126x.RegXTATrim, sx126x.RegXTBTrim}
	for _, reg := range trims {
		if err := s.dev.WriteRegister(reg, trimValue); err != nil {
			return errors.Wrapf(err, "writing %v", reg)
		}
		rec.Notef("%v: 0x%02X", reg, trimValue)
	}
	var mismatch []string
	for _, reg := range trims {
		v, err := s.dev.ReadRegister(reg)
		if err != nil {
			return errors.Wrapf(err, "reading %v", reg)
		}
		if v != trimValue {
			mismatch = append(mismatch, fmt.Sprintf("%v reads 0x%02X", reg, v))
		}
	}
	if len(mismatch) != 0 {
		return errors.Wrapf(ErrVerification, "%s, want 0x%02X", strings.Join(mismatch, ", "), trimValue)
	}
	return nil
}
