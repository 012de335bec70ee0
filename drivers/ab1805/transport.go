package ab1805

import (
	"rtcnode-go/errcode"
	"rtcnode-go/x/conv"
)

// Regs is an unlocked view of the register file. It is only valid inside
// the function passed to Locked; the bus lock is not reentrant, so code
// holding a Regs must not call the locking Device methods.
type Regs struct{ d *Device }

// Locked runs fn with the bus lock held for its whole duration.
func (d *Device) Locked(fn func(Regs) error) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return fn(Regs{d})
}

// ---- raw transfers ----

// ReadRegisters reads len(buf) consecutive registers starting at reg.
func (r Regs) ReadRegisters(reg byte, buf []byte) error {
	d := r.d
	d.w[0] = reg
	if err := d.i2c.Tx(d.addr, d.w[:1], buf); err != nil {
		d.log.Errorf("read %s (%d bytes) failed: %v", conv.HexByte(reg), len(buf), err)
		return busError("read", reg, err)
	}
	return nil
}

// WriteRegisters writes data to consecutive registers starting at reg.
func (r Regs) WriteRegisters(reg byte, data []byte) error {
	d := r.d
	if len(data) > maxBurst {
		return &errcode.E{C: errcode.InvalidParams, Op: "write " + conv.HexByte(reg), Msg: "burst too long"}
	}
	d.w[0] = reg
	n := copy(d.w[1:], data)
	if err := d.i2c.Tx(d.addr, d.w[:1+n], nil); err != nil {
		d.log.Errorf("write %s (%d bytes) failed: %v", conv.HexByte(reg), len(data), err)
		return busError("write", reg, err)
	}
	return nil
}

func (r Regs) ReadRegister(reg byte) (byte, error) {
	if err := r.ReadRegisters(reg, r.d.rb[:]); err != nil {
		return 0, err
	}
	return r.d.rb[0], nil
}

func (r Regs) WriteRegister(reg, v byte) error {
	r.d.rb[0] = v
	return r.WriteRegisters(reg, r.d.rb[:])
}

// ---- bit/mask primitives ----

// Mask applies (v & and) | or. The register is always read once; the write
// is skipped when the value would not change.
func (r Regs) Mask(reg, and, or byte) error {
	v, err := r.ReadRegister(reg)
	if err != nil {
		return err
	}
	nv := (v & and) | or
	if nv == v {
		return nil
	}
	return r.WriteRegister(reg, nv)
}

func (r Regs) SetBits(reg, mask byte) error   { return r.Mask(reg, 0xFF, mask) }
func (r Regs) ClearBits(reg, mask byte) error { return r.Mask(reg, ^mask, 0) }

// BitsSet reports whether every bit in mask is 1. A failed read yields
// false together with the error.
func (r Regs) BitsSet(reg, mask byte) (bool, error) {
	v, err := r.ReadRegister(reg)
	if err != nil {
		return false, err
	}
	return v&mask == mask, nil
}

// BitsClear reports whether every bit in mask is 0.
func (r Regs) BitsClear(reg, mask byte) (bool, error) {
	v, err := r.ReadRegister(reg)
	if err != nil {
		return false, err
	}
	return v&mask == 0, nil
}

// setField replaces the bits under mask with val (already shifted).
func (r Regs) setField(reg, mask, val byte) error {
	return r.Mask(reg, ^mask, val&mask)
}

// ---- locking wrappers ----

func (d *Device) ReadRegisters(reg byte, buf []byte) error {
	return d.Locked(func(r Regs) error { return r.ReadRegisters(reg, buf) })
}

func (d *Device) WriteRegisters(reg byte, data []byte) error {
	return d.Locked(func(r Regs) error { return r.WriteRegisters(reg, data) })
}

func (d *Device) ReadRegister(reg byte) (v byte, err error) {
	err = d.Locked(func(r Regs) error {
		v, err = r.ReadRegister(reg)
		return err
	})
	return v, err
}

func (d *Device) WriteRegister(reg, v byte) error {
	return d.Locked(func(r Regs) error { return r.WriteRegister(reg, v) })
}

func (d *Device) Mask(reg, and, or byte) error {
	return d.Locked(func(r Regs) error { return r.Mask(reg, and, or) })
}

func (d *Device) SetBits(reg, mask byte) error {
	return d.Locked(func(r Regs) error { return r.SetBits(reg, mask) })
}

func (d *Device) ClearBits(reg, mask byte) error {
	return d.Locked(func(r Regs) error { return r.ClearBits(reg, mask) })
}

func (d *Device) BitsSet(reg, mask byte) (ok bool, err error) {
	err = d.Locked(func(r Regs) error {
		ok, err = r.BitsSet(reg, mask)
		return err
	})
	return ok, err
}

func (d *Device) BitsClear(reg, mask byte) (ok bool, err error) {
	err = d.Locked(func(r Regs) error {
		ok, err = r.BitsClear(reg, mask)
		return err
	})
	return ok, err
}

func busError(op string, reg byte, err error) error {
	c := errcode.BusFailure
	if errcode.Of(err) == errcode.ShortTransfer {
		c = errcode.ShortTransfer
	}
	return &errcode.E{C: c, Op: op + " " + conv.HexByte(reg), Err: err}
}
