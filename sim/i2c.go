package sim

import (
	"exerig/core"
	"exerig/motor"
)

// Select implements core.I2CMux
func (r *Rig) Select(ch core.I2CChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !motor.AxisID(ch).Valid() {
		return ErrUnknownPin
	}
	if r.selected >= 0 && r.selected != int(ch) {
		return ErrBusBusy
	}
	r.selected = int(ch)
	return nil
}

// Release implements core.I2CMux
func (r *Rig) Release(ch core.I2CChannel) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected != int(ch) {
		return ErrNotSelected
	}
	r.selected = -1
	return nil
}

// Tx implements core.I2CMux against the register file of the encoder on
// the selected channel. The first written byte sets the register pointer,
// further bytes are written from there, and reads continue from it.
func (r *Rig) Tx(addr uint16, w, rd []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.selected < 0 {
		return ErrNotSelected
	}
	if addr != uint16(r.cfg.EncoderAddress) {
		return ErrNack
	}
	ax := motor.AxisID(r.selected)
	if r.fail[ax] > 0 {
		r.fail[ax]--
		return ErrInjected
	}

	regs := &r.regs[ax]
	raw := r.raw(ax)
	regs[regStatus] = statusMD
	regs[regRawAngle], regs[regRawAngle+1] = byte(raw>>8), byte(raw)
	regs[regAngle], regs[regAngle+1] = byte(raw>>8), byte(raw)

	ptr := r.regPtr[ax]
	if len(w) > 0 {
		ptr = w[0]
		for _, b := range w[1:] {
			regs[ptr] = b
			ptr++
		}
	}
	for i := range rd {
		rd[i] = regs[ptr]
		ptr++
	}
	r.regPtr[ax] = ptr
	return nil
}
