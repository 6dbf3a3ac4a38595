package serial

import (
	"io"
)

// Port is the byte stream to the rig console. NativePort opens a real
// device; tests hand the MCU an in-memory pipe instead.
type Port interface {
	io.ReadWriteCloser

	// Flush discards input left over from an earlier session
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyACM0", "COM3"), or "auto" to pick the
	// first USB serial port found
	Device string

	// Baud rate (USB CDC ignores this)
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the configuration of the rig console port
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
