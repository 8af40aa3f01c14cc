package sx126x

import "fmt"

// Register is a 16-bit SX126x register address.
type Register uint16

const (
	RegVersion   Register = 0x0320 // first byte of the firmware version string
	RegLNARegime Register = 0x08E2
	RegRxGain    Register = 0x08AC
	RegXTATrim   Register = 0x0911
	RegXTBTrim   Register = 0x0912
	RegOCPConfig Register = 0x08E7
)

// KeyRegisters lists the registers reported by a configuration dump, in order.
var KeyRegisters = []Register{
	RegVersion,
	RegLNARegime,
	RegRxGain,
	RegXTATrim,
	RegXTBTrim,
	RegOCPConfig,
}

func (reg Register) String() string {
	switch reg {
	case RegVersion:
		return "Firmware Version"
	case RegLNARegime:
		return "LNA Regime"
	case RegRxGain:
		return "RX Gain"
	case RegXTATrim:
		return "XTA Trim"
	case RegXTBTrim:
		return "XTB Trim"
	case RegOCPConfig:
		return "OCP Config"
	default:
		return fmt.Sprintf("Register(0x%04X)", uint16(reg))
	}
}

// ReadRegister returns the value of an SX126x register.
// On a busy timeout it returns 0xFF along with the error,
// which is indistinguishable from a register that really holds 0xFF.
func (r *Radio) ReadRegister(addr Register) (byte, error) {
	params := append(marshalUint16(uint16(addr)), 0)
	b, err := r.transact(CmdReadRegister, params, 1)
	if err != nil {
		return 0xFF, err
	}
	return b[0], nil
}

// WriteRegister writes a value to an SX126x register.
func (r *Radio) WriteRegister(addr Register, value byte) error {
	params := append(marshalUint16(uint16(addr)), value)
	_, err := r.transact(CmdWriteRegister, params, 0)
	return err
}
