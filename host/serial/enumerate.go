//go:build !wasm

package serial

import (
	"errors"
	"sort"
	"strings"

	bugst "go.bug.st/serial"
)

// AutoDevice as Config.Device selects the first USB serial port
const AutoDevice = "auto"

// ErrNoDevice is returned when no candidate port is present
var ErrNoDevice = errors.New("no USB serial port found")

// usbPatterns match the names USB CDC devices get on Linux, macOS and
// Windows
var usbPatterns = []string{"ttyACM", "ttyUSB", "usbmodem", "usbserial", "COM"}

// ListPorts returns the serial ports present on the system, sorted
func ListPorts() ([]string, error) {
	ports, err := bugst.GetPortsList()
	if err != nil {
		return nil, err
	}
	sort.Strings(ports)
	return ports, nil
}

// FindDevice returns the first port that looks like a USB serial device
func FindDevice() (string, error) {
	ports, err := ListPorts()
	if err != nil {
		return "", err
	}
	return pickUSB(ports)
}

func pickUSB(ports []string) (string, error) {
	for _, p := range ports {
		for _, pat := range usbPatterns {
			if strings.Contains(p, pat) {
				return p, nil
			}
		}
	}
	return "", ErrNoDevice
}
