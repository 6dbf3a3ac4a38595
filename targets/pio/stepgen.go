//go:build rp2040

package pio

// PIO step generator using tinygo-org/pio package
//
// The state machine pulls a pulse count and emits that many step pulses
// at the rate set by its clock divider, then waits for the next count.
// Nothing is reported back: the caller times the move itself.

import (
	"machine"
	"time"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"exerig/core"
)

// cyclesPerPulse is the length of one step_loop iteration. The long
// delays keep the clock divider within 16 bits down to 30 Hz at 125 MHz.
const cyclesPerPulse = 64

// buildStepProgram creates the pulse-count PIO program using AssemblerV0
func buildStepProgram() []uint16 {
	asm := rp2pio.AssemblerV0{SidesetBits: 0}
	return []uint16{
		// .wrap_target
		asm.Pull(false, true).Encode(),        // 0: pull block
		asm.Out(rp2pio.OutDestX, 32).Encode(), // 1: out x, 32 (pulse count - 1)
		// step_loop:
		asm.Set(rp2pio.SetDestPins, 1).Delay(31).Encode(), // 2: set pins, 1 [31]
		asm.Set(rp2pio.SetDestPins, 0).Delay(30).Encode(), // 3: set pins, 0 [30]
		asm.Jmp(2, rp2pio.JmpXNZeroDec).Encode(),          // 4: jmp x--, 2
		// .wrap
	}
}

const stepProgramOrigin = 0 // Load at offset 0 for correct jump addresses

// StepGen implements core.StepGenerator with one PIO state machine for
// the step pin and plain GPIO for direction and enable.
type StepGen struct {
	pio          *rp2pio.PIO
	sm           rp2pio.StateMachine
	stepPin      machine.Pin
	dirPin       machine.Pin
	enablePin    machine.Pin
	invertEnable bool
	freqHz       uint32
	offset       uint8
	pioNum       uint8
}

// StepGenConfig wires one axis
type StepGenConfig struct {
	PIONum       uint8 // 0 for PIO0, 1 for PIO1; each axis gets its own block
	StepPin      uint8
	DirPin       uint8
	EnablePin    uint8
	InvertEnable bool // Driver enable input is active low
}

// NewStepGen loads the program on state machine 0 of the chosen PIO
// block and leaves the driver disabled.
func NewStepGen(cfg StepGenConfig) (*StepGen, error) {
	pioHW := rp2pio.PIO0
	if cfg.PIONum != 0 {
		pioHW = rp2pio.PIO1
	}
	g := &StepGen{
		pio:          pioHW,
		sm:           pioHW.StateMachine(0),
		stepPin:      machine.Pin(cfg.StepPin),
		dirPin:       machine.Pin(cfg.DirPin),
		enablePin:    machine.Pin(cfg.EnablePin),
		invertEnable: cfg.InvertEnable,
		pioNum:       cfg.PIONum,
	}

	g.enablePin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	g.dirPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	g.Disable()

	// Claim the state machine before touching it
	g.sm.TryClaim()

	program := buildStepProgram()
	offset, err := g.pio.AddProgram(program, stepProgramOrigin)
	if err != nil {
		return nil, err
	}
	g.offset = offset

	g.stepPin.Configure(machine.PinConfig{Mode: g.pio.PinMode()})

	smCfg := rp2pio.DefaultStateMachineConfig()
	smCfg.SetSetPins(g.stepPin, 1)
	// Shift right, explicit PULL, 32-bit threshold
	smCfg.SetOutShift(true, false, 32)
	smCfg.SetWrap(offset+uint8(len(program))-1, offset)

	g.sm.Init(offset, smCfg)

	// Pin directions must be set after Init
	g.sm.SetPindirsConsecutive(g.stepPin, 1, true)
	g.sm.SetPinsConsecutive(g.stepPin, 1, false)
	g.sm.SetEnabled(true)

	return g, nil
}

// Enable applies holding torque
func (g *StepGen) Enable() {
	g.enablePin.Set(!g.invertEnable)
}

// Disable releases the shaft
func (g *StepGen) Disable() {
	g.enablePin.Set(g.invertEnable)
}

// Move enables the driver and queues steps pulses at freqHz
func (g *StepGen) Move(dir bool, freqHz uint32, steps uint32) {
	if steps == 0 || freqHz == 0 {
		return
	}
	g.Enable()
	g.dirPin.Set(dir)

	if freqHz != g.freqHz {
		period := time.Second / time.Duration(freqHz) / cyclesPerPulse
		whole, frac, err := rp2pio.ClkDivFromPeriod(uint32(period), machine.CPUFrequency())
		if err != nil {
			core.DebugPrintln("[PIO] " + g.Name() + " cannot pulse at " + core.Utoa(freqHz) + " Hz: " + err.Error())
			return
		}
		g.sm.SetClkDiv(whole, frac)
		g.freqHz = freqHz
	}

	for g.sm.IsTxFIFOFull() {
	}
	g.sm.TxPut(steps - 1)
}

// Stop drops queued counts and restarts the program at pull
func (g *StepGen) Stop() {
	g.sm.SetEnabled(false)
	g.sm.ClearFIFOs()
	g.sm.Restart()
	g.sm.ClkDivRestart()
	g.sm.Exec(rp2pio.AssemblerV0{}.Jmp(g.offset, rp2pio.JmpAlways).Encode())
	g.sm.SetPinsConsecutive(g.stepPin, 1, false)
	g.sm.SetEnabled(true)
}

// Name returns the backend name
func (g *StepGen) Name() string {
	if g.pioNum == 0 {
		return "PIO0-SM0"
	}
	return "PIO1-SM0"
}
