package ab1805

import (
	"time"

	"rtcnode-go/errcode"
)

// ResetFlags tune ResetConfig.
type ResetFlags uint8

const (
	// ResetPreserveRepeatingTimer keeps the alarm repeat (RPT) bits.
	ResetPreserveRepeatingTimer ResetFlags = 1 << iota
	// ResetDisableCrystal switches to the RC oscillator.
	ResetDisableCrystal
)

const foutReadyTimeout = time.Second

// Setup detects the chip, latches the wake reason, seeds the system clock
// from a set RTC when the system has no valid time, and registers the
// pre-restart handler. A missing chip leaves the device Unavailable; there
// is no retry.
func (d *Device) Setup() error {
	ok, err := d.Detect()
	if err != nil || !ok {
		d.state = StateUnavailable
		d.log.Errorf("failed to detect AB1805")
		return &errcode.E{C: errcode.NotDetected, Op: "setup", Err: err}
	}
	d.state = StateReady

	if err := d.UpdateWakeReason(); err != nil {
		d.log.Warnf("wake reason: %v", err)
	}

	if d.clock != nil && !d.clock.Valid() {
		if t, err := d.RTCTime(); err == nil {
			if err := d.clock.Set(t); err != nil {
				d.log.Warnf("set system clock: %v", err)
			} else {
				// The system time came from the RTC; nothing to push back.
				d.timeSet = true
				d.log.Infof("set system clock from RTC %s", t.Format(time.RFC3339))
			}
		}
	}

	if d.notifier != nil {
		d.notifier.OnReset(d.PrepareForReset)
	}
	return nil
}

// Detect waits up to a second for FOUT to go high (when wired) and then
// checks the part ID.
func (d *Device) Detect() (bool, error) {
	if d.fout != nil {
		start := d.millis()
		ready := false
		for d.millis()-start < foutReadyTimeout.Milliseconds() {
			if d.fout() {
				ready = true
				break
			}
			d.sleep(10 * time.Millisecond)
		}
		if !ready {
			d.log.Infof("FOUT did not go HIGH")
		}
	}

	var id [2]byte
	if err := d.ReadRegisters(regID0, id[:]); err != nil {
		return false, err
	}
	if id[0] != id0AB18xx || id[1] != id1ABxx05 {
		d.log.Warnf("not detected (id %02x %02x)", id[0], id[1])
		return false, nil
	}
	return true, nil
}

// PartNumber is ID0<<8 | ID1, e.g. 0x1805.
func (d *Device) PartNumber() (uint16, error) {
	var id [2]byte
	if err := d.ReadRegisters(regID0, id[:]); err != nil {
		return 0, err
	}
	return uint16(id[0])<<8 | uint16(id[1]), nil
}

// UsingRCOscillator reports OMODE, i.e. whether the RC oscillator is
// running instead of the crystal.
func (d *Device) UsingRCOscillator() (bool, error) {
	return d.BitsSet(regOscStatus, oscStatusOMODE)
}

// ResetConfig returns the configuration registers to their power-on
// defaults in one locked sequence. The RTC-set sentinel survives.
func (d *Device) ResetConfig(flags ResetFlags) error {
	d.log.Debugf("resetConfig(0x%02x)", byte(flags))
	return d.Locked(func(r Regs) error {
		if err := r.WriteRegister(regStatus, statusDefault); err != nil {
			return err
		}
		rtcSet, err := r.BitsClear(regCtrl1, ctrl1WRTC)
		if err != nil {
			return err
		}
		if err := r.WriteRegister(regCtrl1, ctrl1Default); err != nil {
			return err
		}
		if rtcSet {
			if err := r.ClearBits(regCtrl1, ctrl1WRTC); err != nil {
				return err
			}
		}

		steps := []struct{ reg, val byte }{
			{regCtrl2, ctrl2Default},
			{regIntMask, intMaskDefault},
			{regSQW, sqwDefault},
			{regSleepCtrl, sleepDefault},
		}
		if err := r.writeAll(steps); err != nil {
			return err
		}

		if flags&ResetPreserveRepeatingTimer != 0 {
			// Keep only RPT; everything else back to default.
			err = r.Mask(regTimerCtrl, timerCtrlRPTMask, timerCtrlDefault&^timerCtrlRPTMask)
		} else {
			err = r.WriteRegister(regTimerCtrl, timerCtrlDefault)
		}
		if err != nil {
			return err
		}

		osc := byte(oscCtrlDefault | oscCtrlFOS)
		if flags&ResetDisableCrystal != 0 {
			// RC oscillator; FOS stays set as the fallback.
			osc |= oscCtrlOSEL
		}
		return r.writeAll([]struct{ reg, val byte }{
			{regTimer, timerDefault},
			{regTimerInitial, timerInitDefault},
			{regWDT, wdtDefault},
			{regConfigKey, keyOscCtrl},
			{regOscCtrl, osc},
			{regTrickle, trickleDefault},
			{regBrefCtrl, brefDefault},
			{regAFCtrl, afctrlDefault},
			{regBatmodeIO, batmodeDefault},
			{regOutputCtrl, octrlDefault},
		})
	})
}

func (r Regs) writeAll(steps []struct{ reg, val byte }) error {
	for _, s := range steps {
		if err := r.WriteRegister(s.reg, s.val); err != nil {
			return err
		}
	}
	return nil
}

// UpdateWakeReason classifies the last restart from the status bits, in
// priority order watchdog, deep power down, countdown timer, alarm, and
// clears the bit it consumed. The result stays latched until the next call.
func (d *Device) UpdateWakeReason() error {
	return d.Locked(func(r Regs) error {
		status, err := r.ReadRegister(regStatus)
		if err != nil {
			return err
		}
		reason, clear := WakeUnknown, byte(0)
		switch {
		case status&statusWDT != 0:
			reason, clear = WakeWatchdog, statusWDT
		default:
			slept, err := r.BitsSet(regSleepCtrl, sleepSLST)
			if err != nil {
				return err
			}
			switch {
			case slept:
				reason = WakeDeepPowerDown
			case status&statusTimer != 0:
				reason, clear = WakeCountdownTimer, statusTimer
			case status&statusAlarm != 0:
				reason, clear = WakeAlarm, statusAlarm
			}
		}
		d.wake = reason
		if reason != WakeUnknown {
			d.log.Infof("wake reason = %s", reason)
		}
		if clear != 0 {
			return r.ClearBits(regStatus, clear)
		}
		return nil
	})
}

// Maintenance is the periodic keepalive. It pushes a newly valid system
// time into the RTC once per power cycle and refreshes the watchdog when
// half its period has elapsed.
func (d *Device) Maintenance() error {
	var firstErr error
	if !d.timeSet && d.clock != nil && d.clock.Valid() {
		d.timeSet = true
		if err := d.SetRTCTime(d.clock.Now()); err != nil {
			firstErr = err
		} else if t, err := d.RTCTime(); err == nil {
			d.log.Infof("set RTC from system clock %s", t.Format(time.RFC3339))
		}
	}
	if err := d.tickleIfDue(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
