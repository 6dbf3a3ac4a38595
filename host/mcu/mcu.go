// Package mcu is the host side of the rig firmware console: it sends
// command lines over a serial port and hands reply lines to a callback.
package mcu

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"exerig/host/serial"
)

var ErrNotConnected = errors.New("not connected")

// MCU represents a connection to the rig controller
type MCU struct {
	mu sync.Mutex

	// Serial port
	port serial.Port

	// Connection state
	connected bool
}

// NewMCU creates a new MCU instance (not yet connected)
func NewMCU() *MCU {
	return &MCU{
		connected: false,
	}
}

// Connect connects to the rig via serial port
func (m *MCU) Connect(device string) error {
	return m.ConnectWithConfig(serial.DefaultConfig(device))
}

// ConnectWithConfig connects with a custom serial config
func (m *MCU) ConnectWithConfig(cfg *serial.Config) error {
	port, err := serial.Open(cfg)
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	if err := port.Flush(); err != nil {
		port.Close()
		return fmt.Errorf("failed to flush serial port: %w", err)
	}

	m.Attach(port)

	// Give the firmware time to initialize (if it just powered on)
	time.Sleep(100 * time.Millisecond)

	return nil
}

// Attach uses an already open port
func (m *MCU) Attach(port serial.Port) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.port = port
	m.connected = true
}

// Close closes the connection
func (m *MCU) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connected = false
	if m.port != nil {
		return m.port.Close()
	}
	return nil
}

// SendCommand writes one console line, e.g. "move 1 45"
func (m *MCU) SendCommand(line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.connected {
		return ErrNotConnected
	}
	line = strings.TrimSpace(line)
	if _, err := io.WriteString(m.port, line+"\n"); err != nil {
		return fmt.Errorf("failed to send %q: %w", line, err)
	}
	return nil
}

// ReadReplies passes every non-empty reply line to fn until the port
// closes or ctx is done. Read timeouts on the port are retried.
func (m *MCU) ReadReplies(ctx context.Context, fn func(line string)) error {
	m.mu.Lock()
	port, connected := m.port, m.connected
	m.mu.Unlock()
	if !connected {
		return ErrNotConnected
	}

	r := bufio.NewReader(port)
	var partial strings.Builder
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunk, err := r.ReadString('\n')
		partial.WriteString(chunk)
		switch {
		case err == nil:
			if line := strings.TrimRight(partial.String(), "\r\n"); line != "" {
				fn(line)
			}
			partial.Reset()
		case errors.Is(err, io.EOF):
			// tarm reports a read timeout as EOF
			if !m.IsConnected() {
				return nil
			}
		default:
			if !m.IsConnected() {
				return nil
			}
			return err
		}
	}
}

// IsConnected reports whether a port is attached
func (m *MCU) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}
