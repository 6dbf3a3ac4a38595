//go:build rp2040

package main

import (
	"machine"
	"time"
)

// InitUSB initializes USB serial communication
// TinyGo automatically sets up USB CDC-ACM on RP2040
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// USBAvailable returns the number of bytes available to read from USB
func USBAvailable() int {
	return machine.Serial.Buffered()
}

// USBWriteBytes writes multiple bytes to USB
func USBWriteBytes(data []byte) (int, error) {
	return machine.Serial.Write(data)
}

// usbReader blocks until USB data arrives, yielding to other goroutines
// while the buffer is empty.
type usbReader struct{}

func (usbReader) Read(p []byte) (int, error) {
	for USBAvailable() == 0 {
		time.Sleep(time.Millisecond)
	}
	n := 0
	for n < len(p) && USBAvailable() > 0 {
		b, err := machine.Serial.ReadByte()
		if err != nil {
			break
		}
		p[n] = b
		n++
	}
	return n, nil
}

// usbWriter writes console lines with CRLF line ends
type usbWriter struct{}

func (usbWriter) Write(p []byte) (int, error) {
	written := 0
	start := 0
	for i, b := range p {
		if b != '\n' {
			continue
		}
		if _, err := USBWriteBytes(p[start:i]); err != nil {
			return written, err
		}
		if _, err := USBWriteBytes([]byte("\r\n")); err != nil {
			return written, err
		}
		written = i + 1
		start = i + 1
	}
	if start < len(p) {
		if _, err := USBWriteBytes(p[start:]); err != nil {
			return written, err
		}
	}
	return len(p), nil
}
