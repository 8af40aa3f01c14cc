//go:build !periph

package sx126x

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
)

type fakeSpidev struct {
	mode     uint8
	lsb      bool
	modeErr  error
	sent     [][]byte
	response []byte
}

func (d *fakeSpidev) Transfer(snd, rcv []byte) error {
	d.sent = append(d.sent, append([]byte(nil), snd...))
	copy(rcv, d.response)
	return nil
}

func (d *fakeSpidev) SetMode(mode uint8) error {
	if d.modeErr != nil {
		return d.modeErr
	}
	d.mode = mode
	return nil
}

func (d *fakeSpidev) SetLSBFirst(lsb bool) error {
	d.lsb = lsb
	return nil
}

func TestSpidevTx(t *testing.T) {
	dev := &fakeSpidev{response: []byte{0xA2, 0xA2, 0xA2, 0xA2, 0x53}}
	rx := make([]byte, 5)
	if err := (spidev{dev: dev}).Tx([]byte{0x1D, 0x03, 0x20, 0x00, 0x00}, rx); err != nil {
		t.Fatal(err)
	}
	if len(dev.sent) != 1 || !bytes.Equal(dev.sent[0], []byte{0x1D, 0x03, 0x20, 0x00, 0x00}) {
		t.Errorf("sent % X, want one transfer of 1D 03 20 00 00", dev.sent)
	}
	if rx[4] != 0x53 {
		t.Errorf("received % X, want 53 in last byte", rx)
	}
}

func TestSpidevTransfer(t *testing.T) {
	dev := &fakeSpidev{response: []byte{0x24}}
	b, err := (spidev{dev: dev}).Transfer(0xC0)
	if err != nil {
		t.Fatal(err)
	}
	if b != 0x24 || !bytes.Equal(dev.sent[0], []byte{0xC0}) {
		t.Errorf("Transfer(C0) == %02X, sent % X", b, dev.sent[0])
	}
}

func TestSetMode0(t *testing.T) {
	dev := &fakeSpidev{mode: 3, lsb: true}
	if err := setMode0(dev); err != nil {
		t.Fatal(err)
	}
	if dev.mode != 0 || dev.lsb {
		t.Errorf("mode %d, LSB first %v, want mode 0 MSB first", dev.mode, dev.lsb)
	}
	modeErr := errors.New("inappropriate ioctl")
	dev = &fakeSpidev{modeErr: modeErr}
	if err := setMode0(dev); errors.Cause(err) != modeErr {
		t.Errorf("setMode0 == %v, want %v", err, modeErr)
	}
}
