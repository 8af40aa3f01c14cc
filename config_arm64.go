package sx126x

// Configuration for Raspberry Pi with an SX1262 LoRa HAT.

const (
	spiDevice  = "/dev/spidev0.0"
	chipSelect = 21
	resetPin   = 18
	busyPin    = 20
	dio1Pin    = 16
)
