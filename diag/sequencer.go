// Package diag runs the bring-up diagnostics for an SX126x radio:
// a hardware reset followed by a fixed sequence of independent checks
// whose outcomes are collected into a Report.
package diag

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ecc1/sx126x"
)

// DefaultPause is the delay between successive checks.
const DefaultPause = 50 * time.Millisecond

// Device is the radio interface exercised by the checks.
// *sx126x.Radio implements it.
type Device interface {
	Reset() error
	WaitNotBusy(timeout time.Duration) error
	ReadRegister(addr sx126x.Register) (byte, error)
	WriteRegister(addr sx126x.Register, value byte) error
	GetStatus() (sx126x.Status, error)
	SetStandby(mode sx126x.StandbyMode) error
	SetDIO3AsTCXOCtrl(voltage sx126x.TCXOVoltage, delay time.Duration) error
	Calibrate(p sx126x.CalibrationParam) error
	GetDeviceErrors() (sx126x.DeviceErrors, error)
}

// Check is one named diagnostic step. Run returns nil if the check passed.
type Check struct {
	Name string
	Run  func(rec *Recorder) error
}

// Recorder collects the detail lines of a running check.
type Recorder struct {
	log     logrus.FieldLogger
	details []string
}

// Notef records and logs a detail line.
func (rec *Recorder) Notef(format string, args ...interface{}) {
	line := fmt.Sprintf(format, args...)
	rec.details = append(rec.details, line)
	rec.log.Info("  " + line)
}

// Sequencer runs the diagnostic checks against a device.
type Sequencer struct {
	dev Device
	log logrus.FieldLogger

	// Pause is slept after each check.
	Pause time.Duration

	sleep func(time.Duration)
}

// New returns a sequencer for dev that logs to log.
func New(dev Device, log logrus.FieldLogger) *Sequencer {
	return &Sequencer{
		dev:   dev,
		log:   log,
		Pause: DefaultPause,
		sleep: time.Sleep,
	}
}

// Checks returns the bring-up checks in the order they are run.
func (s *Sequencer) Checks() []Check {
	return []Check{
		{"SPI Communication", s.checkCommunication},
		{"Register Access", s.checkRegisterAccess},
		{"Standby Mode", s.checkStandby},
		{"TCXO Configuration", s.checkTCXO},
		{"Module Calibration", s.checkCalibration},
		{"Key Registers", s.checkKeyRegisters},
		{"Device Errors", s.checkDeviceErrors},
		{"Clock Configuration", s.checkClock},
	}
}

// Run resets the device, then runs every check regardless of earlier failures.
func (s *Sequencer) Run() *Report {
	start := time.Now()
	s.log.Info("HARDWARE RESET")
	reset := s.run(Check{Name: "Hardware Reset", Run: s.checkReset})
	s.sleep(s.Pause)
	outcomes := s.runAll(s.Checks())
	s.log.Info("Test sequence completed")
	return newReport(&reset, outcomes, time.Since(start))
}

// RunChecks runs the given checks in order, without a reset.
func (s *Sequencer) RunChecks(checks []Check) *Report {
	start := time.Now()
	outcomes := s.runAll(checks)
	return newReport(nil, outcomes, time.Since(start))
}

func (s *Sequencer) runAll(checks []Check) []Outcome {
	outcomes := make([]Outcome, 0, len(checks))
	for i, c := range checks {
		s.log.Infof("TEST %d: %s", i+1, strings.ToUpper(c.Name))
		outcomes = append(outcomes, s.run(c))
		s.sleep(s.Pause)
	}
	return outcomes
}

// run executes a single check. A panic inside the check is recorded as its failure.
func (s *Sequencer) run(c Check) (o Outcome) {
	rec := &Recorder{log: s.log}
	o.Name = c.Name
	defer func() {
		if p := recover(); p != nil {
			o.Passed = false
			o.Err = errors.Errorf("panic: %v", p)
			o.Details = rec.details
			s.log.Errorf("%s failed: %v", c.Name, o.Err)
		}
	}()
	err := c.Run(rec)
	o.Passed = err == nil
	o.Err = err
	o.Details = rec.details
	switch {
	case err == nil:
		s.log.WithField(ResultField, "PASS").Infof("%s passed", c.Name)
	case errors.Is(err, ErrDeviceWarning):
		s.log.Warnf("%s: %v - module may not function properly", c.Name, err)
	default:
		s.log.Errorf("%s failed: %v", c.Name, err)
	}
	return o
}
