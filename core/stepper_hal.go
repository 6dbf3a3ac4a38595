package core

// StepGenerator drives one stepper axis with a pulse generator that
// reports nothing back. Move returns immediately; the pulses take
// steps/freqHz seconds and the caller must wait that long before the
// next Move.
type StepGenerator interface {
	// Enable applies holding torque
	Enable()

	// Disable releases the shaft so it can turn freely
	Disable()

	// Move enables the driver and emits steps pulses at freqHz with the
	// direction pin at dir
	Move(dir bool, freqHz uint32, steps uint32)

	// Name returns the backend implementation name
	Name() string
}
