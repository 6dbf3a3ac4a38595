package core

// I2CChannel selects one of the pin pairs a shared I2C controller can be
// routed to.
type I2CChannel uint8

// I2CAddress is a 7-bit I2C device address.
type I2CAddress uint8

// I2CMux is one I2C controller whose SDA/SCL lines are switched between
// pin pairs. Tx has the shape of tinygo's drivers.I2C so device drivers
// can sit directly on top of it.
type I2CMux interface {
	// Select routes the controller onto the pins of ch
	Select(ch I2CChannel) error

	// Release returns the pins of ch to plain inputs
	Release(ch I2CChannel) error

	// Tx writes w and then reads len(r) bytes from addr
	Tx(addr uint16, w, r []byte) error
}

var i2cMux I2CMux

// SetI2CMux is called by target-specific code to register its mux.
func SetI2CMux(m I2CMux) {
	i2cMux = m
}

// MustI2C returns the configured mux or panics if missing.
func MustI2C() I2CMux {
	if i2cMux == nil {
		panic("I2C mux not configured")
	}
	return i2cMux
}
