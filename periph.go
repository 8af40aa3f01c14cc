//go:build periph

package sx126x

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"
)

type periphBus struct {
	conn spi.Conn
}

func (b periphBus) Tx(w, r []byte) error {
	return b.conn.Tx(w, r)
}

func (b periphBus) Transfer(c byte) (byte, error) {
	var r [1]byte
	err := b.conn.Tx([]byte{c}, r[:])
	return r[0], err
}

type periphOutput struct {
	pin gpio.PinIO
}

func (p periphOutput) Write(level bool) error {
	return p.pin.Out(gpio.Level(level))
}

type periphInput struct {
	pin gpio.PinIO
}

func (p periphInput) Read() (bool, error) {
	return bool(p.pin.Read()), nil
}

// Open opens the radio device described by cfg using periph.io drivers.
// The bus is configured for mode 0, MSB first, 8 bits per word.
// Open does not reset the device; errors are reported by r.Error().
func Open(cfg Config) *Radio {
	r := &Radio{
		device:      cfg.SPIDevice,
		busyTimeout: cfg.BusyTimeout(),
		log:         logrus.StandardLogger(),
	}
	r.err = cfg.Validate()
	if r.err != nil {
		return r
	}
	if _, r.err = host.Init(); r.err != nil {
		return r
	}
	var port spi.PortCloser
	port, r.err = spireg.Open(cfg.SPIDevice)
	if r.err != nil {
		return r
	}
	r.closers = append(r.closers, port)
	var conn spi.Conn
	conn, r.err = port.Connect(physic.Frequency(cfg.SPISpeed)*physic.Hertz, spi.Mode0, 8)
	if r.err != nil {
		return r.abort("spi")
	}
	r.bus = periphBus{conn: conn}
	if cfg.ChipSelect >= 0 {
		var cs gpio.PinIO
		if cs, r.err = periphPin(cfg.ChipSelect); r.err != nil {
			return r.abort("chip select")
		}
		if r.err = cs.Out(gpio.High); r.err != nil {
			return r.abort("chip select")
		}
		r.chipSelect = periphOutput{pin: cs}
	}
	var rst gpio.PinIO
	if rst, r.err = periphPin(cfg.Reset); r.err != nil {
		return r.abort("reset")
	}
	if r.err = rst.Out(gpio.High); r.err != nil {
		return r.abort("reset")
	}
	r.resetPin = periphOutput{pin: rst}
	var busy gpio.PinIO
	if busy, r.err = periphPin(cfg.Busy); r.err != nil {
		return r.abort("busy")
	}
	if r.err = busy.In(gpio.PullNoChange, gpio.NoEdge); r.err != nil {
		return r.abort("busy")
	}
	r.busyPin = periphInput{pin: busy}
	if cfg.DIO1 >= 0 {
		var dio1 gpio.PinIO
		if dio1, r.err = periphPin(cfg.DIO1); r.err != nil {
			return r.abort("DIO1")
		}
		if r.err = dio1.In(gpio.PullNoChange, gpio.NoEdge); r.err != nil {
			return r.abort("DIO1")
		}
		r.dio1Pin = periphInput{pin: dio1}
	}
	return r
}

func periphPin(n int) (gpio.PinIO, error) {
	p := gpioreg.ByName(strconv.Itoa(n))
	if p == nil {
		return nil, errors.Errorf("GPIO %d not found", n)
	}
	return p, nil
}
