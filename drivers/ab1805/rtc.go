package ab1805

import (
	"time"

	"rtcnode-go/errcode"
	"rtcnode-go/x/mathx"
)

// Repeat selects which alarm fields must match (RPT bits of the countdown
// timer control register). Fields beyond the granularity are written as 0.
type Repeat byte

const (
	RepeatDisabled  Repeat = 0x00
	RepeatMonth     Repeat = 0x04 // sec, min, hour, date, month: once a year
	RepeatDate      Repeat = 0x08 // sec, min, hour, date: once a month
	RepeatWeekday   Repeat = 0x0C // sec, min, hour, weekday: once a week
	RepeatHour      Repeat = 0x10 // sec, min, hour: once a day
	RepeatMinute    Repeat = 0x14 // sec, min: once an hour
	RepeatSecond    Repeat = 0x18 // sec: once a minute
	RepeatHundredth Repeat = 0x1C // hundredths: once a second
)

func (r Repeat) String() string {
	switch r {
	case RepeatMonth:
		return "month"
	case RepeatDate:
		return "date"
	case RepeatWeekday:
		return "weekday"
	case RepeatHour:
		return "hour"
	case RepeatMinute:
		return "minute"
	case RepeatSecond:
		return "second"
	case RepeatHundredth:
		return "hundredth"
	default:
		return "disabled"
	}
}

// ParseRepeat maps the String form back to a Repeat.
func ParseRepeat(s string) (Repeat, bool) {
	for _, r := range []Repeat{RepeatDisabled, RepeatMonth, RepeatDate, RepeatWeekday,
		RepeatHour, RepeatMinute, RepeatSecond, RepeatHundredth} {
		if r.String() == s {
			return r, true
		}
	}
	return RepeatDisabled, false
}

// ---- RTC ----

// SetRTC writes c to the time registers. WRTC is raised for the write and
// cleared afterwards; a clear WRTC is what marks the RTC as set.
func (d *Device) SetRTC(c CalendarTime) error {
	return d.Locked(func(r Regs) error { return r.SetRTC(c) })
}

func (d *Device) SetRTCTime(t time.Time) error { return d.SetRTC(CalendarOf(t)) }

func (r Regs) SetRTC(c CalendarTime) error {
	r.d.log.Infof("setRTC %04d-%02d-%02d %02d:%02d:%02d",
		2000+c.Year, c.Month+1, c.Day, c.Hour, c.Minute, c.Second)

	var buf [8]byte // hundredths + 7 time registers
	b := appendTime(buf[:1], c, true)

	if err := r.SetBits(regCtrl1, ctrl1WRTC); err != nil {
		return err
	}
	if err := r.WriteRegisters(regHundredth, b); err != nil {
		return err
	}
	return r.ClearBits(regCtrl1, ctrl1WRTC)
}

// RTC reads the time registers. It fails with errcode.RTCNotSet (and a
// zero CalendarTime) while WRTC is still set from a cold start.
func (d *Device) RTC() (c CalendarTime, err error) {
	err = d.Locked(func(r Regs) error {
		c, err = r.RTC()
		return err
	})
	return c, err
}

func (r Regs) RTC() (CalendarTime, error) {
	set, err := r.BitsClear(regCtrl1, ctrl1WRTC)
	if err != nil {
		return CalendarTime{}, err
	}
	if !set {
		return CalendarTime{}, errcode.RTCNotSet
	}
	var buf [8]byte
	if err := r.ReadRegisters(regHundredth, buf[:]); err != nil {
		return CalendarTime{}, err
	}
	return DecodeTime(buf[1:], true), nil
}

func (d *Device) RTCTime() (time.Time, error) {
	c, err := d.RTC()
	if err != nil {
		return time.Time{}, err
	}
	return c.Time(), nil
}

// IsRTCSet reports whether the RTC has been written since power-up.
func (d *Device) IsRTCSet() (bool, error) { return d.BitsClear(regCtrl1, ctrl1WRTC) }

// ---- alarm ----

// alarmRegisters lays out hundredths, sec, min, hour, date, month, weekday
// with only the fields the granularity compares.
func alarmRegisters(c CalendarTime, rpt Repeat) [7]byte {
	var a [7]byte
	if rpt == RepeatHundredth {
		return a
	}
	a[1] = ValueToBCD(c.Second)
	if rpt == RepeatSecond {
		return a
	}
	a[2] = ValueToBCD(c.Minute)
	if rpt == RepeatMinute {
		return a
	}
	a[3] = ValueToBCD(c.Hour)
	switch rpt {
	case RepeatHour:
	case RepeatWeekday:
		a[6] = ValueToBCD(c.Weekday)
	case RepeatDate:
		a[4] = ValueToBCD(c.Day)
	default:
		a[4] = ValueToBCD(c.Day)
		a[5] = ValueToBCD(c.Month + 1)
		a[6] = ValueToBCD(c.Weekday)
	}
	return a
}

// RepeatingInterrupt arms the alarm on FOUT/nIRQ. The watchdog is disabled
// first and is not restored.
func (d *Device) RepeatingInterrupt(c CalendarTime, rpt Repeat) error {
	return d.Locked(func(r Regs) error {
		if err := r.SetWDT(0); err != nil {
			return err
		}
		if err := r.ClearBits(regStatus, statusAlarm); err != nil {
			return err
		}
		a := alarmRegisters(c, rpt)
		if err := r.WriteRegisters(regHundredthAlarm, a[:]); err != nil {
			return err
		}
		if err := r.setField(regCtrl2, ctrl2OUT1SMask, ctrl2OUT1SnAIRQ); err != nil {
			return err
		}
		if err := r.SetBits(regIntMask, intMaskAIE); err != nil {
			return err
		}
		return r.setField(regTimerCtrl, timerCtrlRPTMask, byte(rpt))
	})
}

// InterruptAt arms a single alarm at t. It matches seconds through month,
// so the alarm repeats a year later unless cleared.
func (d *Device) InterruptAt(t time.Time) error {
	return d.InterruptAtCalendar(CalendarOf(t))
}

func (d *Device) InterruptAtCalendar(c CalendarTime) error {
	return d.RepeatingInterrupt(c, RepeatMonth)
}

// ClearRepeatingInterrupt returns FOUT/nIRQ to its plain role and disables
// the alarm. A previously running watchdog stays off.
func (d *Device) ClearRepeatingInterrupt() error {
	return d.Locked(func(r Regs) error {
		if err := r.setField(regCtrl2, ctrl2OUT1SMask, ctrl2OUT1SnIRQ); err != nil {
			return err
		}
		if err := r.ClearBits(regIntMask, intMaskAIE); err != nil {
			return err
		}
		return r.setField(regTimerCtrl, timerCtrlRPTMask, byte(RepeatDisabled))
	})
}

// ---- countdown timer ----

// SetCountdownTimer (re)starts the countdown timer with value ticks of 1 s
// (or 1 min). With level set, the timer output is a level rather than a
// pulse.
func (d *Device) SetCountdownTimer(value int, minutes, level bool) error {
	return d.Locked(func(r Regs) error { return r.SetCountdownTimer(value, minutes, level) })
}

func (r Regs) SetCountdownTimer(value int, minutes, level bool) error {
	if err := r.WriteRegister(regStatus, statusDefault); err != nil {
		return err
	}
	// Cannot be reloaded while running.
	if err := r.WriteRegister(regTimerCtrl, timerCtrlDefault); err != nil {
		return err
	}
	if err := r.WriteRegister(regTimer, byte(mathx.Clamp(value, 1, 255))); err != nil {
		return err
	}
	if err := r.SetBits(regIntMask, intMaskTIE); err != nil {
		return err
	}
	ctrl := byte(timerCtrlTE | timerCtrlTFS1)
	if minutes {
		ctrl = timerCtrlTE | timerCtrlTFS1_60
	}
	if level {
		ctrl |= timerCtrlTM
	}
	return r.WriteRegister(regTimerCtrl, ctrl)
}

func (d *Device) StopCountdownTimer() error {
	return d.WriteRegister(regTimerCtrl, timerCtrlDefault)
}

// InterruptCountdownTimer disables the watchdog, routes nIRQ to FOUT and
// starts a pulse-mode countdown.
func (d *Device) InterruptCountdownTimer(value int, minutes bool) error {
	return d.Locked(func(r Regs) error {
		if err := r.SetWDT(0); err != nil {
			return err
		}
		if err := r.setField(regCtrl2, ctrl2OUT1SMask, ctrl2OUT1SnIRQ); err != nil {
			return err
		}
		return r.SetCountdownTimer(value, minutes, false)
	})
}
