//go:build rp2040

package main

import (
	"errors"
	"machine"
	"sync"

	"exerig/config"
	"exerig/core"
	"exerig/motor"
)

var (
	errBadPin     = errors.New("no such GPIO")
	errBadChannel = errors.New("I2C channel not wired")
	errNoChannel  = errors.New("I2C channel not selected")
)

// RPI2CMux implements core.I2CMux on I2C1, whose SDA/SCL function is
// moved between the encoder pin pairs of the two axes.
type RPI2CMux struct {
	mu        sync.Mutex
	bus       *machine.I2C
	frequency uint32
	pins      [motor.NumAxes]config.AxisPins
	selected  int
}

// NewRPI2CMux constructs the mux; no pins are routed until Select
func NewRPI2CMux(cfg *config.RigConfig) *RPI2CMux {
	m := &RPI2CMux{
		bus:       machine.I2C1,
		frequency: cfg.I2CFrequency,
		pins:      cfg.Pins,
		selected:  -1,
	}
	for i := range m.pins {
		m.release(i)
	}
	return m
}

// Select routes I2C1 to the pins of ch
func (m *RPI2CMux) Select(ch core.I2CChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if int(ch) >= len(m.pins) {
		return errBadChannel
	}
	if m.selected == int(ch) {
		return nil
	}
	if m.selected >= 0 {
		m.release(m.selected)
	}
	p := m.pins[ch]
	// Configure sets the pin functions and the baud rate
	err := m.bus.Configure(machine.I2CConfig{
		Frequency: m.frequency,
		SDA:       machine.Pin(p.SDA),
		SCL:       machine.Pin(p.SCL),
	})
	if err != nil {
		return err
	}
	m.selected = int(ch)
	return nil
}

// Release returns the pins of ch to plain inputs
func (m *RPI2CMux) Release(ch core.I2CChannel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected != int(ch) {
		return errNoChannel
	}
	m.release(int(ch))
	m.selected = -1
	return nil
}

func (m *RPI2CMux) release(ch int) {
	p := m.pins[ch]
	machine.Pin(p.SDA).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	machine.Pin(p.SCL).Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

// Tx runs one transaction on the selected pins
func (m *RPI2CMux) Tx(addr uint16, w, r []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.selected < 0 {
		return errNoChannel
	}
	return m.bus.Tx(addr, w, r)
}
