//go:build !arm64

package sx126x

// Configuration for a USB SPI bridge exposing spidev and sysfs GPIOs.
// Chip select is left to the SPI controller.

const (
	spiDevice  = "/dev/spidev1.0"
	chipSelect = -1
	resetPin   = 14
	busyPin    = 15
	dio1Pin    = 16
)
