package ab1805

import (
	"time"

	"rtcnode-go/errcode"
	"rtcnode-go/x/conv"
	"rtcnode-go/x/mathx"
)

// DeepPowerDown cuts host power through the chip's PSW/nIRQ2 output and
// powers it back up after seconds (1..255). The watchdog is disabled first.
//
// On success power is removed and the call never returns. If the host is
// still running after the requested duration, Restart is invoked; should
// that return too, the result is errcode.NoPowerDown.
func (d *Device) DeepPowerDown(seconds int) error {
	seconds = mathx.Clamp(seconds, 1, 255)
	d.log.Infof("deepPowerDown %d", seconds)

	err := d.Locked(func(r Regs) error {
		if err := r.SetWDT(0); err != nil {
			return err
		}
		if d.foutLowInSleep {
			if err := r.driveFOUTLowInSleep(); err != nil {
				return err
			}
		}
		if err := r.SetCountdownTimer(seconds, false, true); err != nil {
			return err
		}
		// STOP must be clear or sleep cannot be entered; PWR2 selects the
		// low resistance power switch.
		if err := r.Mask(regCtrl1, ^byte(ctrl1Stop|ctrl1RSP), ctrl1PWR2); err != nil {
			return err
		}
		// I/O interface off while asleep.
		if err := r.SetBits(regOscCtrl, oscCtrlPWGT); err != nil {
			return err
		}
		if err := r.setField(regCtrl2, ctrl2OUT2SMask, ctrl2OUT2SSleep); err != nil {
			return err
		}
		// Sleep with nRST held low.
		return r.WriteRegister(regSleepCtrl, sleepSLP|sleepSLRES)
	})
	if err != nil {
		d.log.Errorf("deepPowerDown: %v", err)
		return err
	}

	start := d.millis()
	for d.millis()-start < int64(seconds)*1000 {
		if v, err := d.ReadRegister(regSleepCtrl); err == nil {
			d.log.Infof("sleep ctrl=%s", conv.HexByte(v))
		}
		d.sleep(time.Second)
	}

	d.log.Errorf("didn't power down")
	d.sleep(10 * time.Millisecond)
	if d.restart != nil {
		d.restart()
	}
	return errcode.NoPowerDown
}

// Boards with the FOUT pull-up on the switched rail leak through the pin
// unless it is driven low during sleep. OUT1S=SQW with SQW disabled makes
// the pin follow OUT, unaffected by the countdown nIRQ.
func (r Regs) driveFOUTLowInSleep() error {
	if err := r.SetBits(regOutputCtrl, octrlO1EN); err != nil {
		return err
	}
	if err := r.ClearBits(regCtrl1, ctrl1Out); err != nil {
		return err
	}
	if err := r.WriteRegister(regSQW, sqwDefault); err != nil {
		return err
	}
	return r.setField(regCtrl2, ctrl2OUT1SMask, ctrl2OUT1SSQW)
}

// ---- trickle charger ----

// SetTrickle programs the trickle charger with a diode|rout combination
// (TrickleDiode* | TrickleRout*). 0 disables it.
func (d *Device) SetTrickle(diodeAndRout byte) error {
	return d.Locked(func(r Regs) error { return r.SetTrickle(diodeAndRout) })
}

func (r Regs) SetTrickle(diodeAndRout byte) error {
	// The key resets itself after the next write.
	if err := r.WriteRegister(regConfigKey, keyOther); err != nil {
		return err
	}
	var v byte
	if diodeAndRout != 0 {
		v = trickleTCSEnable | diodeAndRout&(trickleDiodeMask|trickleRoutMask)
	}
	return r.WriteRegister(regTrickle, v)
}

func (d *Device) EnableTrickle(diode, rout byte) error { return d.SetTrickle(diode | rout) }
func (d *Device) DisableTrickle() error               { return d.SetTrickle(0) }

// VBATAboveMin reports VBAT > 1.2 V.
func (d *Device) VBATAboveMin() (bool, error) { return d.checkVBAT(astatBMIN) }

// VBATAboveRef reports VBAT above the BREF threshold.
func (d *Device) VBATAboveRef() (bool, error) { return d.checkVBAT(astatBBOD) }

// The comparators read the charger output while trickle is on, so it is
// paused for the measurement.
func (d *Device) checkVBAT(mask byte) (above bool, err error) {
	err = d.Locked(func(r Regs) error {
		trickle, err := r.ReadRegister(regTrickle)
		if err != nil {
			return err
		}
		if trickle != 0 {
			if err := r.SetTrickle(0); err != nil {
				return err
			}
		}
		astat, rerr := r.ReadRegister(regAnalogStatus)
		if trickle != 0 {
			if err := r.SetTrickle(trickle & (trickleDiodeMask | trickleRoutMask)); err != nil && rerr == nil {
				rerr = err
			}
		}
		if rerr != nil {
			return rerr
		}
		above = astat&mask != 0
		return nil
	})
	return above, err
}
