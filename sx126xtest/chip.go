// Package sx126xtest provides a simulated SX126x for exercising the driver
// without hardware. A Chip implements the SPI bus and exposes the chip select,
// reset, busy and DIO1 lines as pins.
package sx126xtest

import (
	"fmt"
	"sync"
)

// Opcodes understood by the simulator.
const (
	opGetStatus       = 0xC0
	opWriteRegister   = 0x0D
	opReadRegister    = 0x1D
	opSetStandby      = 0x80
	opSetTCXO         = 0x97
	opCalibrate       = 0x89
	opGetDeviceErrors = 0x17
)

// Chip modes and command status codes as they appear in the status byte.
const (
	ModeStandbyRC   = 2
	ModeStandbyXOSC = 3

	statusDataAvailable = 2
	statusExecFailure   = 5
)

// DefaultRegisters holds the register values the chip comes out of reset with.
var DefaultRegisters = map[uint16]byte{
	0x0320: 0x53, // 'S' of the version string
	0x08E2: 0x00,
	0x08AC: 0x94,
	0x0911: 0x05,
	0x0912: 0x05,
	0x08E7: 0x38,
}

// Chip is a simulated SX126x. The zero value is not usable; call NewChip.
type Chip struct {
	mu        sync.Mutex
	regs      map[uint16]byte
	overrides map[uint16]byte
	ignored   map[byte]bool
	mode      byte
	cmdStatus byte
	errors    uint16
	calErrors uint16

	busy      int // busy reads still to report
	stuck     bool
	csWired   bool
	csLow     bool
	resetLow  bool
	tcxo      []byte
	calParams []byte
	frames    [][]byte

	resets         int
	csViolations   int
	busyViolations int

	// BusyAfterCommand is the number of busy reads reported after each frame.
	BusyAfterCommand int
	// BusyAfterCalibrate is the number of busy reads reported after Calibrate.
	BusyAfterCalibrate int
	// BusyAfterReset is the number of busy reads reported after a reset pulse.
	BusyAfterReset int
}

// NewChip returns a chip in STDBY_RC with default register contents.
func NewChip() *Chip {
	c := &Chip{
		overrides:          map[uint16]byte{},
		ignored:            map[byte]bool{},
		BusyAfterCommand:   1,
		BusyAfterCalibrate: 5,
		BusyAfterReset:     2,
	}
	c.powerOn()
	return c
}

func (c *Chip) powerOn() {
	c.regs = make(map[uint16]byte, len(DefaultRegisters))
	for a, v := range DefaultRegisters {
		c.regs[a] = v
	}
	c.mode = ModeStandbyRC
	c.cmdStatus = 0
	c.errors = 0
}

func (c *Chip) status() byte {
	return c.mode<<4 | c.cmdStatus<<1
}

func (c *Chip) isBusy() bool {
	return c.stuck || c.busy > 0 || c.resetLow
}

// Tx performs one full-duplex frame.
func (c *Chip) Tx(w, r []byte) error {
	if r != nil && len(r) != len(w) {
		return fmt.Errorf("sx126xtest: tx %d bytes, rx %d bytes", len(w), len(r))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, append([]byte(nil), w...))
	if c.csWired && !c.csLow {
		c.csViolations++
	}
	if c.isBusy() {
		c.busyViolations++
	}
	if r == nil {
		r = make([]byte, len(w))
	}
	if len(w) == 0 || c.resetLow {
		return nil
	}
	c.execute(w, r)
	return nil
}

// Transfer clocks a single byte as its own frame.
func (c *Chip) Transfer(b byte) (byte, error) {
	r := make([]byte, 1)
	err := c.Tx([]byte{b}, r)
	return r[0], err
}

func (c *Chip) execute(w, r []byte) {
	op := w[0]
	for i := range r {
		r[i] = c.status()
	}
	if c.ignored[op] {
		return
	}
	c.busy = c.BusyAfterCommand
	switch op {
	case opGetStatus:
		if len(r) > 1 {
			r[1] = c.status()
		}
	case opWriteRegister:
		if len(w) < 4 {
			c.cmdStatus = statusExecFailure
			return
		}
		addr := uint16(w[1])<<8 | uint16(w[2])
		for i, v := range w[3:] {
			c.regs[addr+uint16(i)] = v
		}
	case opReadRegister:
		if len(w) < 5 {
			c.cmdStatus = statusExecFailure
			return
		}
		addr := uint16(w[1])<<8 | uint16(w[2])
		for i := 4; i < len(w); i++ {
			r[i] = c.readRegister(addr + uint16(i-4))
		}
		c.cmdStatus = statusDataAvailable
	case opSetStandby:
		if len(w) < 2 {
			c.cmdStatus = statusExecFailure
			return
		}
		if w[1] == 0 {
			c.mode = ModeStandbyRC
		} else {
			c.mode = ModeStandbyXOSC
		}
	case opSetTCXO:
		c.tcxo = append([]byte(nil), w[1:]...)
	case opCalibrate:
		if len(w) > 1 {
			c.calParams = append(c.calParams, w[1])
		}
		c.errors |= c.calErrors
		c.busy = c.BusyAfterCalibrate
	case opGetDeviceErrors:
		if len(r) >= 4 {
			r[2] = byte(c.errors >> 8)
			r[3] = byte(c.errors)
		}
	default:
		c.cmdStatus = statusExecFailure
	}
}

func (c *Chip) readRegister(addr uint16) byte {
	if v, ok := c.overrides[addr]; ok {
		return v
	}
	return c.regs[addr]
}

// Pin is a simulated output line.
type Pin func(level bool) error

// Write drives the line.
func (p Pin) Write(level bool) error { return p(level) }

// Line is a simulated input line.
type Line func() (bool, error)

// Read samples the line.
func (l Line) Read() (bool, error) { return l() }

// ChipSelect returns the NSS line. Once requested, frames clocked
// while it is high are counted as violations.
func (c *Chip) ChipSelect() Pin {
	c.mu.Lock()
	c.csWired = true
	c.mu.Unlock()
	return func(level bool) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.csLow = !level
		return nil
	}
}

// ResetLine returns the NRESET line. A low-to-high transition resets the chip.
func (c *Chip) ResetLine() Pin {
	return func(level bool) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if !level {
			c.resetLow = true
			return nil
		}
		if c.resetLow {
			c.resetLow = false
			c.resets++
			c.powerOn()
			c.busy = c.BusyAfterReset
		}
		return nil
	}
}

// BusyLine returns the BUSY line. Each read while busy consumes one busy count.
func (c *Chip) BusyLine() Line {
	return func() (bool, error) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.stuck || c.resetLow {
			return true, nil
		}
		if c.busy > 0 {
			c.busy--
			return true, nil
		}
		return false, nil
	}
}

// DIO1Line returns the DIO1 interrupt line, which the simulator never raises.
func (c *Chip) DIO1Line() Line {
	return func() (bool, error) { return false, nil }
}

// SetStuckBusy holds BUSY high until cleared.
func (c *Chip) SetStuckBusy(stuck bool) {
	c.mu.Lock()
	c.stuck = stuck
	c.mu.Unlock()
}

// SetRegister sets a register value directly.
func (c *Chip) SetRegister(addr uint16, v byte) {
	c.mu.Lock()
	c.regs[addr] = v
	c.mu.Unlock()
}

// Register returns the stored value of a register, ignoring overrides.
func (c *Chip) Register(addr uint16) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[addr]
}

// OverrideRead makes reads of addr return v regardless of what was written.
func (c *Chip) OverrideRead(addr uint16, v byte) {
	c.mu.Lock()
	c.overrides[addr] = v
	c.mu.Unlock()
}

// Ignore makes the chip accept but not act on frames with the given opcode.
func (c *Chip) Ignore(op byte) {
	c.mu.Lock()
	c.ignored[op] = true
	c.mu.Unlock()
}

// SetDeviceErrors sets the OpError register.
func (c *Chip) SetDeviceErrors(v uint16) {
	c.mu.Lock()
	c.errors = v
	c.mu.Unlock()
}

// SetCalibrationErrors sets the OpError bits raised by each Calibrate command.
func (c *Chip) SetCalibrationErrors(v uint16) {
	c.mu.Lock()
	c.calErrors = v
	c.mu.Unlock()
}

// SetMode forces the chip mode reported in the status byte.
func (c *Chip) SetMode(mode byte) {
	c.mu.Lock()
	c.mode = mode & 0x7
	c.mu.Unlock()
}

// Frames returns a copy of every frame clocked so far.
func (c *Chip) Frames() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	frames := make([][]byte, len(c.frames))
	copy(frames, c.frames)
	return frames
}

// TCXO returns the parameters of the last SetDIO3AsTCXOCtrl command.
func (c *Chip) TCXO() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.tcxo...)
}

// Calibrations returns the parameters of every Calibrate command.
func (c *Chip) Calibrations() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]byte(nil), c.calParams...)
}

// Resets returns the number of completed reset pulses.
func (c *Chip) Resets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.resets
}

// CSViolations returns the number of frames clocked with chip select high.
func (c *Chip) CSViolations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.csViolations
}

// BusyViolations returns the number of frames clocked while BUSY was high.
func (c *Chip) BusyViolations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busyViolations
}
