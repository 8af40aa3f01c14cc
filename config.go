package sx126x

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ErrBadConfig is returned for configurations that cannot drive a device.
var ErrBadConfig = errors.New("invalid configuration")

// Config describes how the radio is wired to the host.
// Pin numbers are GPIO numbers; a negative ChipSelect leaves chip select
// to the SPI controller, and a negative DIO1 leaves the interrupt line unused.
type Config struct {
	SPIDevice     string `yaml:"spi_device"`
	SPISpeed      int    `yaml:"spi_speed_hz"`
	ChipSelect    int    `yaml:"chip_select"`
	Reset         int    `yaml:"reset"`
	Busy          int    `yaml:"busy"`
	DIO1          int    `yaml:"dio1"`
	BusyTimeoutMs int    `yaml:"busy_timeout_ms"`
}

// DefaultConfig returns the wiring of the board this package was built for.
func DefaultConfig() Config {
	return Config{
		SPIDevice:     spiDevice,
		SPISpeed:      SPISpeed,
		ChipSelect:    chipSelect,
		Reset:         resetPin,
		Busy:          busyPin,
		DIO1:          dio1Pin,
		BusyTimeoutMs: int(defaultBusyTimeout / time.Millisecond),
	}
}

// LoadConfig reads a YAML file whose fields override DefaultConfig.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "%s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	switch {
	case c.SPIDevice == "":
		return errors.Wrap(ErrBadConfig, "spi_device is empty")
	case c.SPISpeed <= 0:
		return errors.Wrapf(ErrBadConfig, "spi_speed_hz %d must be positive", c.SPISpeed)
	case c.Reset < 0:
		return errors.Wrapf(ErrBadConfig, "reset pin %d", c.Reset)
	case c.Busy < 0:
		return errors.Wrapf(ErrBadConfig, "busy pin %d", c.Busy)
	case c.BusyTimeoutMs <= 0:
		return errors.Wrapf(ErrBadConfig, "busy_timeout_ms %d must be positive", c.BusyTimeoutMs)
	}
	used := map[int]string{}
	pins := []struct {
		name string
		pin  int
	}{
		{"chip_select", c.ChipSelect},
		{"reset", c.Reset},
		{"busy", c.Busy},
		{"dio1", c.DIO1},
	}
	for _, p := range pins {
		if p.pin < 0 {
			continue
		}
		if other, ok := used[p.pin]; ok {
			return errors.Wrapf(ErrBadConfig, "GPIO %d assigned to both %s and %s", p.pin, other, p.name)
		}
		used[p.pin] = p.name
	}
	return nil
}

// BusyTimeout returns the configured busy wait bound.
func (c Config) BusyTimeout() time.Duration {
	return time.Duration(c.BusyTimeoutMs) * time.Millisecond
}
