//go:build !wasm

package serial

import (
	"errors"
	"fmt"
	"time"

	"github.com/tarm/serial"
)

// NativePort is the rig console over a tarm/serial device. Reads give up
// after the configured timeout so a silent rig never wedges the host.
type NativePort struct {
	port *serial.Port
}

// Open resolves the console device ("auto" picks the first USB port)
// and opens it.
func Open(cfg *Config) (Port, error) {
	if cfg == nil {
		return nil, errors.New("serial: nil config")
	}

	device := cfg.Device
	if device == AutoDevice {
		found, err := FindDevice()
		if err != nil {
			return nil, err
		}
		device = found
	}

	port, err := serial.OpenPort(&serial.Config{
		Name:        device,
		Baud:        cfg.Baud,
		ReadTimeout: time.Duration(cfg.ReadTimeout) * time.Millisecond,
	})
	if err != nil {
		return nil, fmt.Errorf("serial: open rig console %s: %w", device, err)
	}
	return &NativePort{port: port}, nil
}

// Read returns console output; n is 0 when the read timeout expires
func (p *NativePort) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write sends command bytes to the rig
func (p *NativePort) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

func (p *NativePort) Close() error {
	if p.port == nil {
		return nil
	}
	return p.port.Close()
}

// Flush drops replies still buffered from an earlier session
func (p *NativePort) Flush() error {
	return p.port.Flush()
}
