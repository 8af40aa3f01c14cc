package sx126x

import (
	"fmt"
	"time"
)

// Command represents an SX126x SPI command opcode.
type Command byte

//go:generate stringer -type Command

const (
	CmdGetStatus         Command = 0xC0
	CmdWriteRegister     Command = 0x0D
	CmdReadRegister      Command = 0x1D
	CmdSetStandby        Command = 0x80
	CmdSetDIO3AsTCXOCtrl Command = 0x97
	CmdCalibrate         Command = 0x89
	CmdGetDeviceErrors   Command = 0x17
)

// StandbyMode selects the oscillator used in standby.
type StandbyMode byte

const (
	StandbyRC   StandbyMode = 0 // 13 MHz RC oscillator
	StandbyXOSC StandbyMode = 1 // crystal oscillator
)

// TCXOVoltage is the supply voltage code driven on DIO3.
type TCXOVoltage byte

const (
	TCXO1_6V TCXOVoltage = iota
	TCXO1_7V
	TCXO1_8V
	TCXO2_2V
	TCXO2_4V
	TCXO2_7V
	TCXO3_0V
	TCXO3_3V
)

func (v TCXOVoltage) String() string {
	switch v {
	case TCXO1_6V:
		return "1.6V"
	case TCXO1_7V:
		return "1.7V"
	case TCXO1_8V:
		return "1.8V"
	case TCXO2_2V:
		return "2.2V"
	case TCXO2_4V:
		return "2.4V"
	case TCXO2_7V:
		return "2.7V"
	case TCXO3_0V:
		return "3.0V"
	case TCXO3_3V:
		return "3.3V"
	default:
		return fmt.Sprintf("TCXOVoltage(%d)", byte(v))
	}
}

// TCXO start-up delays are expressed in units of 15.625 µs.
const tcxoDelayStep = 15625 * time.Nanosecond

// CalibrationParam is the block mask of the Calibrate command.
type CalibrationParam byte

const (
	CalibRC64K CalibrationParam = 1 << iota
	CalibRC13M
	CalibPLL
	CalibADCPulse
	CalibADCBulkN
	CalibADCBulkP
	CalibImage

	CalibrateAll CalibrationParam = 0x7F
)

var calibrationBlocks = []struct {
	bit  CalibrationParam
	name string
}{
	{CalibRC64K, "64kHz RC oscillator"},
	{CalibRC13M, "13MHz RC oscillator"},
	{CalibPLL, "PLL"},
	{CalibADCPulse, "ADC pulse"},
	{CalibADCBulkN, "ADC bulk N"},
	{CalibADCBulkP, "ADC bulk P"},
	{CalibImage, "Image rejection"},
}

// Blocks returns the names of the blocks selected by p, in bit order.
func (p CalibrationParam) Blocks() []string {
	var names []string
	for _, b := range calibrationBlocks {
		if p&b.bit != 0 {
			names = append(names, b.name)
		}
	}
	return names
}
