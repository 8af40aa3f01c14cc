//go:build !periph

package sx126x

import (
	"io"

	"github.com/ecc1/gpio"
	"github.com/ecc1/spi"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// spidevConn is the part of *spi.Device used by the adapter.
type spidevConn interface {
	Transfer(snd, rcv []byte) error
	SetMode(mode uint8) error
	SetLSBFirst(lsb bool) error
}

// spidev adapts a spidev device to drivers.SPI.
// Transfers are full duplex and in place.
type spidev struct {
	dev spidevConn
}

// setMode0 selects SPI mode 0 with MSB first.
func setMode0(dev spidevConn) error {
	if err := dev.SetMode(0); err != nil {
		return errors.Wrap(err, "SPI mode")
	}
	return errors.Wrap(dev.SetLSBFirst(false), "SPI bit order")
}

func (d spidev) Tx(w, r []byte) error {
	n := len(w)
	if len(r) > n {
		n = len(r)
	}
	buf := make([]byte, n)
	copy(buf, w)
	if err := d.dev.Transfer(buf, buf); err != nil {
		return err
	}
	copy(r, buf)
	return nil
}

func (d spidev) Transfer(b byte) (byte, error) {
	buf := []byte{b}
	err := d.dev.Transfer(buf, buf)
	return buf[0], err
}

// Open opens the radio device described by cfg using spidev and sysfs GPIOs.
// The device is put in SPI mode 0, MSB first.
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
	var dev *spi.Device
	dev, r.err = spi.Open(cfg.SPIDevice, cfg.SPISpeed, 0)
	if r.err != nil {
		return r
	}
	r.closers = append(r.closers, dev)
	r.err = setMode0(dev)
	if r.err != nil {
		return r.abort("SPI")
	}
	r.bus = spidev{dev: dev}
	if cfg.ChipSelect >= 0 {
		r.chipSelect, r.err = outputPin(r, cfg.ChipSelect)
		if r.err != nil {
			return r.abort("chip select")
		}
	}
	r.resetPin, r.err = outputPin(r, cfg.Reset)
	if r.err != nil {
		return r.abort("reset")
	}
	r.busyPin, r.err = inputPin(r, cfg.Busy)
	if r.err != nil {
		return r.abort("busy")
	}
	if cfg.DIO1 >= 0 {
		r.dio1Pin, r.err = inputPin(r, cfg.DIO1)
		if r.err != nil {
			return r.abort("DIO1")
		}
	}
	return r
}

// outputPin opens an output idling high.
func outputPin(r *Radio, pin int) (OutputPin, error) {
	p, err := gpio.Output(pin, false, true)
	if err != nil {
		return nil, err
	}
	if c, ok := p.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}
	return p, nil
}

func inputPin(r *Radio, pin int) (InputPin, error) {
	p, err := gpio.Input(pin, false)
	if err != nil {
		return nil, err
	}
	if c, ok := p.(io.Closer); ok {
		r.closers = append(r.closers, c)
	}
	return p, nil
}
