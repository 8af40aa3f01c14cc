package sx126x

import "fmt"

// Status is the status byte returned by GetStatus.
//
//	bit 7    reserved
//	bits 6:4 chip mode
//	bits 3:1 command status
//	bit 0    reserved
type Status byte

// ChipMode is the operating mode reported in the status byte.
type ChipMode byte

const (
	ModeUnused      ChipMode = 0
	ModeStandbyRC   ChipMode = 2
	ModeStandbyXOSC ChipMode = 3
	ModeFS          ChipMode = 4
	ModeRX          ChipMode = 5
	ModeTX          ChipMode = 6
)

func (m ChipMode) String() string {
	switch m {
	case ModeUnused:
		return "UNUSED"
	case ModeStandbyRC:
		return "STDBY_RC"
	case ModeStandbyXOSC:
		return "STDBY_XOSC"
	case ModeFS:
		return "FS"
	case ModeRX:
		return "RX"
	case ModeTX:
		return "TX"
	default:
		return "RFU"
	}
}

// CommandStatus is the outcome of the previous command, as reported in the status byte.
type CommandStatus byte

const (
	StatusUnused          CommandStatus = 0
	StatusDataAvailable   CommandStatus = 2
	StatusTimeout         CommandStatus = 3
	StatusProcessingError CommandStatus = 4
	StatusExecFailure     CommandStatus = 5
	StatusTxDone          CommandStatus = 6
)

func (s CommandStatus) String() string {
	switch s {
	case StatusUnused:
		return "UNUSED"
	case StatusDataAvailable:
		return "Data Available"
	case StatusTimeout:
		return "Timeout"
	case StatusProcessingError:
		return "Processing Error"
	case StatusExecFailure:
		return "Failure to Execute"
	case StatusTxDone:
		return "TX Done"
	default:
		return "RFU"
	}
}

// ChipMode extracts the chip mode field.
func (s Status) ChipMode() ChipMode {
	return ChipMode((s >> 4) & 0x7)
}

// CommandStatus extracts the command status field.
func (s Status) CommandStatus() CommandStatus {
	return CommandStatus((s >> 1) & 0x7)
}

func (s Status) String() string {
	return fmt.Sprintf("0x%02X (mode %v, command status %v)", byte(s), s.ChipMode(), s.CommandStatus())
}

// DecodeStatus returns the chip mode and command status labels of a status byte.
func DecodeStatus(b byte) (mode string, status string) {
	s := Status(b)
	return s.ChipMode().String(), s.CommandStatus().String()
}

// GetStatus reads the device status byte.
func (r *Radio) GetStatus() (Status, error) {
	b, err := r.transact(CmdGetStatus, nil, 1)
	if err != nil {
		return 0xFF, err
	}
	return Status(b[0]), nil
}
