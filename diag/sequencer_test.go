package diag

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ecc1/sx126x"
	"github.com/ecc1/sx126x/sx126xtest"
)

type fakeDevice struct {
	regs      map[sx126x.Register]byte
	overrides map[sx126x.Register]byte
	status    sx126x.Status
	errs      sx126x.DeviceErrors
	waitErr   error
	resetErr  error
	writeErr  func(sx126x.Register, byte) error
	standby   []sx126x.StandbyMode
	cals      []sx126x.CalibrationParam
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{
		regs: map[sx126x.Register]byte{
			sx126x.RegVersion: 0x53,
			sx126x.RegXTATrim: 0x05,
			sx126x.RegXTBTrim: 0x05,
		},
		overrides: map[sx126x.Register]byte{},
		status:    0x24,
	}
}

func (d *fakeDevice) Reset() error                                  { return d.resetErr }
func (d *fakeDevice) WaitNotBusy(time.Duration) error               { return d.waitErr }
func (d *fakeDevice) GetStatus() (sx126x.Status, error)             { return d.status, nil }
func (d *fakeDevice) GetDeviceErrors() (sx126x.DeviceErrors, error) { return d.errs, nil }

func (d *fakeDevice) ReadRegister(addr sx126x.Register) (byte, error) {
	if v, ok := d.overrides[addr]; ok {
		return v, nil
	}
	return d.regs[addr], nil
}

func (d *fakeDevice) WriteRegister(addr sx126x.Register, v byte) error {
	if d.writeErr != nil {
		if err := d.writeErr(addr, v); err != nil {
			return err
		}
	}
	d.regs[addr] = v
	return nil
}

func (d *fakeDevice) SetStandby(mode sx126x.StandbyMode) error {
	d.standby = append(d.standby, mode)
	return nil
}

func (d *fakeDevice) SetDIO3AsTCXOCtrl(sx126x.TCXOVoltage, time.Duration) error { return nil }

func (d *fakeDevice) Calibrate(p sx126x.CalibrationParam) error {
	d.cals = append(d.cals, p)
	return nil
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.Out = io.Discard
	return log
}

func newTestSequencer(dev Device) *Sequencer {
	s := New(dev, quietLogger())
	s.Pause = 0
	s.sleep = func(time.Duration) {}
	return s
}

func verdicts(r *Report) []string {
	var v []string
	for _, o := range r.Outcomes() {
		v = append(v, o.Verdict())
	}
	return v
}

func TestAllChecksPass(t *testing.T) {
	dev := newFakeDevice()
	r := newTestSequencer(dev).Run()
	if !r.Passed() {
		t.Fatalf("report failed: %v", verdicts(r))
	}
	if n := len(r.Outcomes()); n != 8 {
		t.Fatalf("%d outcomes, want 8", n)
	}
	reset, ok := r.Reset()
	if !ok || !reset.Passed {
		t.Errorf("reset outcome == %+v, %v", reset, ok)
	}
	if dev.regs[sx126x.RegXTATrim] != trimValue || dev.regs[sx126x.RegXTBTrim] != trimValue {
		t.Errorf("trims == %02X %02X, want %02X", dev.regs[sx126x.RegXTATrim], dev.regs[sx126x.RegXTBTrim], trimValue)
	}
	if len(dev.standby) != 1 || dev.standby[0] != sx126x.StandbyRC {
		t.Errorf("standby commands == %v", dev.standby)
	}
	if len(dev.cals) != 1 || dev.cals[0] != sx126x.CalibrateAll {
		t.Errorf("calibrate commands == %v", dev.cals)
	}
}

func TestAggregate(t *testing.T) {
	results := []bool{true, true, false, true, true, true, true, true}
	var checks []Check
	for i, ok := range results {
		ok := ok
		checks = append(checks, Check{
			Name: fmt.Sprintf("check %d", i+1),
			Run: func(*Recorder) error {
				if ok {
					return nil
				}
				return ErrVerification
			},
		})
	}
	r := newTestSequencer(newFakeDevice()).RunChecks(checks)
	if r.Passed() {
		t.Error("report passed with a failed check")
	}
	failed := r.Failed()
	if len(failed) != 1 || failed[0].Name != "check 3" {
		t.Errorf("failed outcomes == %+v, want check 3 only", failed)
	}
	if _, ok := r.Reset(); ok {
		t.Error("RunChecks recorded a reset")
	}
}

func TestReportImmutable(t *testing.T) {
	r := newTestSequencer(newFakeDevice()).Run()
	outcomes := r.Outcomes()
	outcomes[0].Passed = false
	outcomes[0].Name = "changed"
	if o := r.Outcomes()[0]; !o.Passed || o.Name != "SPI Communication" {
		t.Errorf("report changed through Outcomes(): %+v", o)
	}
	want := r.Outcomes()[0].Details[0]
	r.Outcomes()[0].Details[0] = "changed"
	for _, o := range r.Failed() {
		o.Details = append(o.Details[:0], "changed")
	}
	if got := r.Outcomes()[0].Details[0]; got != want {
		t.Errorf("report detail changed through Outcomes(): %q, want %q", got, want)
	}
}

func TestReportOwnsDetails(t *testing.T) {
	reset := Outcome{Name: "Hardware Reset", Passed: true, Details: []string{"reset"}}
	outcomes := []Outcome{{Name: "a", Err: ErrVerification, Details: []string{"first"}}}
	r := newReport(&reset, outcomes, 0)
	reset.Details[0] = "changed"
	outcomes[0].Details[0] = "changed"
	r.Failed()[0].Details[0] = "changed"
	o, _ := r.Reset()
	o.Details[0] = "changed"
	if got := r.Outcomes()[0].Details[0]; got != "first" {
		t.Errorf("outcome detail == %q, want %q", got, "first")
	}
	if o, _ := r.Reset(); o.Details[0] != "reset" {
		t.Errorf("reset detail == %q, want %q", o.Details[0], "reset")
	}
}

func TestCommunicationFailureContinues(t *testing.T) {
	for _, v := range []byte{0x00, 0xFF} {
		t.Run(fmt.Sprintf("version_%02X", v), func(t *testing.T) {
			dev := newFakeDevice()
			dev.regs[sx126x.RegVersion] = v
			r := newTestSequencer(dev).Run()
			outcomes := r.Outcomes()
			if len(outcomes) != 8 {
				t.Fatalf("%d outcomes, want 8", len(outcomes))
			}
			if !errors.Is(outcomes[0].Err, ErrCommunication) {
				t.Errorf("check 1 error == %v, want %v", outcomes[0].Err, ErrCommunication)
			}
			if !outcomes[1].Passed {
				t.Errorf("check 2 == %v after communication failure", outcomes[1].Err)
			}
			if r.Passed() {
				t.Error("report passed")
			}
		})
	}
}

func TestStandbyStatus(t *testing.T) {
	cases := []struct {
		status sx126x.Status
		pass   bool
	}{
		{0x24, true},
		{0x22, true},
		{0x34, false},
		{0x54, false},
	}
	for _, c := range cases {
		t.Run(fmt.Sprintf("status_%02X", byte(c.status)), func(t *testing.T) {
			dev := newFakeDevice()
			dev.status = c.status
			o := newTestSequencer(dev).Run().Outcomes()[2]
			if o.Passed != c.pass {
				t.Errorf("standby check passed == %v, want %v (%v)", o.Passed, c.pass, o.Err)
			}
			if !c.pass && !errors.Is(o.Err, ErrVerification) {
				t.Errorf("standby error == %v, want %v", o.Err, ErrVerification)
			}
		})
	}
}

func TestRegisterAccessMismatch(t *testing.T) {
	dev := newFakeDevice()
	dev.overrides[scratchRegister] = 0x54
	o := newTestSequencer(dev).Run().Outcomes()[1]
	if !errors.Is(o.Err, ErrVerification) {
		t.Errorf("register access error == %v, want %v", o.Err, ErrVerification)
	}
}

func TestRegisterAccessRestores(t *testing.T) {
	dev := newFakeDevice()
	dev.regs[scratchRegister] = 0x0B
	s := newTestSequencer(dev)
	rec := &Recorder{log: quietLogger()}
	if err := s.checkRegisterAccess(rec); err != nil {
		t.Fatal(err)
	}
	if v := dev.regs[scratchRegister]; v != 0x0B {
		t.Errorf("scratch register == %02X after check, want 0B", v)
	}
	if len(rec.details) != 2 {
		t.Errorf("details == %q", rec.details)
	}
}

func TestRegisterAccessRestoreFailure(t *testing.T) {
	dev := newFakeDevice()
	dev.overrides[scratchRegister] = 0x54
	dev.regs[scratchRegister] = 0x0B
	dev.writeErr = func(_ sx126x.Register, v byte) error {
		if v == 0x0B {
			return sx126x.ErrBusyTimeout
		}
		return nil
	}
	rec := &Recorder{log: quietLogger()}
	err := newTestSequencer(dev).checkRegisterAccess(rec)
	if !errors.Is(err, ErrVerification) {
		t.Errorf("register access error == %v, want %v", err, ErrVerification)
	}
	found := false
	for _, d := range rec.details {
		found = found || strings.Contains(d, "Restoring 0x0B failed")
	}
	if !found {
		t.Errorf("details == %q, want restore failure", rec.details)
	}
}

func TestClockTrimMismatch(t *testing.T) {
	dev := newFakeDevice()
	dev.overrides[sx126x.RegXTBTrim] = 0x13
	r := newTestSequencer(dev).Run()
	o := r.Outcomes()[7]
	if o.Passed || !errors.Is(o.Err, ErrVerification) {
		t.Errorf("clock check == %v, %v, want failure with %v", o.Passed, o.Err, ErrVerification)
	}
	if r.Passed() {
		t.Error("report passed")
	}
}

func TestDeviceErrorsWarning(t *testing.T) {
	dev := newFakeDevice()
	dev.errs = sx126x.RC64KCalibErr | sx126x.PLLCalibErr
	r := newTestSequencer(dev).Run()
	o := r.Outcomes()[6]
	if o.Passed || !o.Warning() || o.Verdict() != "WARN" {
		t.Errorf("device error check == %+v, want a warning", o)
	}
	want := []string{"Error register: 0x0005", "- RC64K calibration failed", "- PLL calibration failed"}
	if strings.Join(o.Details, "|") != strings.Join(want, "|") {
		t.Errorf("details == %q, want %q", o.Details, want)
	}
	if r.Passed() {
		t.Error("report passed with device errors")
	}
	if len(r.Failed()) != 1 {
		t.Errorf("%d failed checks, want 1", len(r.Failed()))
	}
}

func TestCalibrationTimeout(t *testing.T) {
	dev := newFakeDevice()
	dev.waitErr = sx126x.ErrBusyTimeout
	o := newTestSequencer(dev).Run().Outcomes()[4]
	if o.Passed || !errors.Is(o.Err, sx126x.ErrBusyTimeout) {
		t.Errorf("calibration check == %v, %v", o.Passed, o.Err)
	}
}

func TestResetFailureDoesNotAbort(t *testing.T) {
	dev := newFakeDevice()
	dev.resetErr = sx126x.ErrBusyTimeout
	r := newTestSequencer(dev).Run()
	reset, _ := r.Reset()
	if reset.Passed {
		t.Error("reset passed")
	}
	if len(r.Outcomes()) != 8 || !r.Passed() {
		t.Errorf("checks after failed reset: %v", verdicts(r))
	}
}

func TestPanicIsolated(t *testing.T) {
	checks := []Check{
		{"boom", func(*Recorder) error { panic("bad register table") }},
		{"after", func(*Recorder) error { return nil }},
	}
	r := newTestSequencer(newFakeDevice()).RunChecks(checks)
	o := r.Outcomes()
	if len(o) != 2 || o[0].Passed || !o[1].Passed {
		t.Errorf("outcomes == %+v", o)
	}
}

func newSimulated(t *testing.T) (*sx126x.Radio, *sx126xtest.Chip) {
	t.Helper()
	chip := sx126xtest.NewChip()
	r := sx126x.New(chip, chip.ChipSelect(), chip.ResetLine(), chip.BusyLine())
	r.SetLogger(quietLogger())
	return r, chip
}

func TestSimulatedRun(t *testing.T) {
	radio, chip := newSimulated(t)
	r := newTestSequencer(radio).Run()
	if !r.Passed() {
		t.Fatalf("simulated run failed: %v", verdicts(r))
	}
	if chip.Resets() != 1 {
		t.Errorf("%d resets, want 1", chip.Resets())
	}
	if !bytes.Equal(chip.TCXO(), []byte{0x07, 0x00, 0x06, 0x40}) {
		t.Errorf("TCXO params == % X", chip.TCXO())
	}
	if chip.CSViolations() != 0 || chip.BusyViolations() != 0 {
		t.Errorf("violations: cs %d busy %d", chip.CSViolations(), chip.BusyViolations())
	}
}

func TestSimulatedStuckBusy(t *testing.T) {
	radio, chip := newSimulated(t)
	radio.SetBusyTimeout(2 * time.Millisecond)
	chip.SetStuckBusy(true)
	r := newTestSequencer(radio).Run()
	got := verdicts(r)
	want := []string{"FAIL", "FAIL", "FAIL", "FAIL", "FAIL", "PASS", "FAIL", "FAIL"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("verdicts == %v, want %v", got, want)
	}
	for _, o := range r.Failed() {
		if !errors.Is(o.Err, sx126x.ErrBusyTimeout) {
			t.Errorf("%s error == %v, want %v", o.Name, o.Err, sx126x.ErrBusyTimeout)
		}
	}
	if len(chip.Frames()) != 0 {
		t.Errorf("%d frames clocked while busy", len(chip.Frames()))
	}
}

func TestSimulatedCalibrationErrors(t *testing.T) {
	radio, chip := newSimulated(t)
	chip.SetCalibrationErrors(uint16(sx126x.PLLLockErr))
	r := newTestSequencer(radio).Run()
	if got := verdicts(r); got[6] != "WARN" {
		t.Errorf("verdicts == %v, want WARN for device errors", got)
	}
}

func TestSimulatedTrimStuck(t *testing.T) {
	radio, chip := newSimulated(t)
	chip.OverrideRead(uint16(sx126x.RegXTBTrim), 0x13)
	r := newTestSequencer(radio).Run()
	if o := r.Outcomes()[7]; o.Passed || !errors.Is(o.Err, ErrVerification) {
		t.Errorf("clock check == %v, %v", o.Passed, o.Err)
	}
}
