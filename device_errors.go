package sx126x

import "strings"

// DeviceErrors is the 16-bit OpError register returned by GetDeviceErrors.
// Bits 7 and 9-15 are reserved.
type DeviceErrors uint16

const (
	RC64KCalibErr DeviceErrors = 1 << 0
	RC13MCalibErr DeviceErrors = 1 << 1
	PLLCalibErr   DeviceErrors = 1 << 2
	ADCCalibErr   DeviceErrors = 1 << 3
	ImgCalibErr   DeviceErrors = 1 << 4
	XOSCStartErr  DeviceErrors = 1 << 5
	PLLLockErr    DeviceErrors = 1 << 6
	PARampErr     DeviceErrors = 1 << 8
)

var deviceErrorLabels = []struct {
	flag  DeviceErrors
	label string
}{
	{RC64KCalibErr, "RC64K calibration failed"},
	{RC13MCalibErr, "RC13M calibration failed"},
	{PLLCalibErr, "PLL calibration failed"},
	{ADCCalibErr, "ADC calibration failed"},
	{ImgCalibErr, "Image calibration failed"},
	{XOSCStartErr, "XOSC failed to start"},
	{PLLLockErr, "PLL lock failed"},
	{PARampErr, "PA ramping error"},
}

// Flags returns the labels of the named flags that are set, in bit order.
func (e DeviceErrors) Flags() []string {
	var labels []string
	for _, f := range deviceErrorLabels {
		if e&f.flag != 0 {
			labels = append(labels, f.label)
		}
	}
	return labels
}

func (e DeviceErrors) String() string {
	flags := e.Flags()
	if len(flags) == 0 {
		return "none"
	}
	return strings.Join(flags, ", ")
}

// DecodeErrors returns the labels of the named flags set in v.
func DecodeErrors(v uint16) []string {
	return DeviceErrors(v).Flags()
}

// GetDeviceErrors reads the OpError register.
func (r *Radio) GetDeviceErrors() (DeviceErrors, error) {
	b, err := r.transact(CmdGetDeviceErrors, []byte{0}, 2)
	if err != nil {
		return 0, err
	}
	return DeviceErrors(unmarshalUint16(b)), nil
}
