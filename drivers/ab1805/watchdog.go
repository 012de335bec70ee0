package ab1805

import (
	"time"

	"rtcnode-go/x/mathx"
	"rtcnode-go/x/timex"
)

// WatchdogMaxSeconds is the longest timeout the 5-bit divisor allows at
// the 1/4 Hz watchdog clock.
const WatchdogMaxSeconds = 124

// SetWDT programs the hardware watchdog. seconds < 0 reprograms the current
// timeout (a tickle), 0 disables it. Other values are rounded down to a
// multiple of 4 s within 4..124 s. The keeper refreshes it from Maintenance
// every half period.
func (d *Device) SetWDT(seconds int) error {
	return d.Locked(func(r Regs) error { return r.SetWDT(seconds) })
}

func (r Regs) SetWDT(seconds int) error {
	d := r.d
	d.log.Debugf("setWDT %d", seconds)
	if seconds < 0 {
		seconds = d.wdtSecs
	}

	if seconds == 0 {
		err := r.WriteRegister(regWDT, wdtDefault)
		d.wdtSecs = 0
		d.tickleEvery = 0
		return err
	}

	fourSecs := mathx.Clamp(seconds/4, 1, 31)
	err := r.WriteRegister(regWDT, wdtReset|byte(fourSecs)<<2|wdtWRBQuarterHz)
	d.wdtSecs = seconds
	d.wdtArmed = seconds
	// Refresh half way through the period.
	d.tickleEvery = int64(fourSecs) * 2000
	d.lastTickle = d.millis()
	return err
}

func (d *Device) StopWDT() error { return d.SetWDT(0) }

// ResumeWDT re-arms the last non-zero timeout after StopWDT (or after an
// operation that disabled the watchdog). It does nothing if the watchdog
// was never armed.
func (d *Device) ResumeWDT() error {
	return d.Locked(func(r Regs) error {
		if d.wdtArmed == 0 {
			return nil
		}
		return r.SetWDT(d.wdtArmed)
	})
}

// WatchdogSeconds is the active timeout, 0 when disabled.
func (d *Device) WatchdogSeconds() int { return d.wdtSecs }

// TickleInterval is how often Maintenance must run to keep the watchdog
// fed, 0 when disabled.
func (d *Device) TickleInterval() time.Duration {
	return time.Duration(d.tickleEvery) * time.Millisecond
}

func (d *Device) tickleIfDue() error {
	if d.tickleEvery == 0 {
		return nil
	}
	if timex.Since(d.millis(), d.lastTickle) < d.tickleEvery {
		return nil
	}
	return d.SetWDT(-1)
}

// PrepareForReset disables an active watchdog so a deliberate restart is
// not reported as a watchdog reset on the next boot.
func (d *Device) PrepareForReset() {
	if d.wdtSecs == 0 {
		return
	}
	d.log.Infof("reset pending, disabling watchdog")
	if err := d.SetWDT(0); err != nil {
		d.log.Errorf("disable watchdog before reset: %v", err)
	}
}
