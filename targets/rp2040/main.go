//go:build rp2040

package main

import (
	"context"
	"machine"
	"time"

	"exerig/active"
	"exerig/config"
	"exerig/console"
	"exerig/core"
	"exerig/encoder"
	"exerig/motor"
	"exerig/targets/pio"
)

func main() {
	// Disable watchdog on boot to clear any previous state
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	InitDebugUART()
	core.SetDebugWriter(DebugPrintln)
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	InitClock()

	cfg := config.DefaultRigConfig()
	active.SetFatalHandler(func(err error) {
		DebugPrintln("FATAL: " + err.Error())
		core.DumpTimingRing()
		resetChip()
	})

	gpioDriver := NewRPGPIODriver()
	core.SetGPIODriver(gpioDriver)
	mux := NewRPI2CMux(cfg)
	core.SetI2CMux(mux)

	hw, err := buildHardware(cfg, gpioDriver, mux)
	if err != nil {
		fatalBlink(err)
	}

	// The console and the controller post to each other
	var motors active.Ref
	con := console.New(&motors, usbWriter{})
	ui := active.New("ui", cfg.UIQueueLen, con)

	ctl, err := motor.NewController(cfg.Motor, hw, ui)
	if err != nil {
		fatalBlink(err)
	}
	motorAO := motor.NewActive(ctl, cfg.MotorQueueLen)
	motors.Bind(motorAO)

	ctx := context.Background()
	motorAO.Start(ctx)
	ui.Start(ctx)
	go con.Serve(ctx, usbReader{})

	for {
		UpdateSystemTime()
		// Yield to the active objects
		time.Sleep(100 * time.Microsecond)
	}
}

// buildHardware creates the PIO step generators, the end switches and
// the encoder of both axes
func buildHardware(cfg *config.RigConfig, gpio core.GPIODriver, mux core.I2CMux) (motor.Hardware, error) {
	var hw motor.Hardware
	for i, p := range cfg.Pins {
		sg, err := pio.NewStepGen(pio.StepGenConfig{
			PIONum:       uint8(i),
			StepPin:      uint8(p.Step),
			DirPin:       uint8(p.Dir),
			EnablePin:    uint8(p.Enable),
			InvertEnable: cfg.InvertEnable,
		})
		if err != nil {
			return hw, err
		}
		hw.Steppers[i] = sg

		es, err := core.NewEndstop(gpio, p.EndStop, cfg.EndStopActiveHigh, cfg.EndStopSamples)
		if err != nil {
			return hw, err
		}
		hw.EndStops[i] = es
	}
	hw.Sensor = encoder.New(mux)
	return hw, nil
}

// resetChip uses a watchdog reset, which is more reliable on RP2040 than
// SYSRESETREQ
func resetChip() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
		time.Sleep(time.Millisecond)
	}
}

// fatalBlink reports a bring-up error and flashes the LED rapidly forever
func fatalBlink(err error) {
	DebugPrintln("init failed: " + err.Error())
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
