// Package ab1805 drives the Abracon AB1805/AM1805 real-time clock and
// hardware watchdog over I2C.
//
// The Device holds no goroutines. Every call is blocking, and every
// multi-register sequence runs under the bus lock so that other users of a
// shared bus never observe a half-programmed chip. Callers are expected to
// invoke Maintenance periodically (the watchdog is refreshed from there).
package ab1805

import (
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"rtcnode-go/x/timex"
)

// PinInput returns logical level of an input pin.
type PinInput func() bool

// SystemClock is the host's idea of wall time.
type SystemClock interface {
	Now() time.Time
	// Valid reports whether Now is trustworthy (NTP, GPS, operator set).
	Valid() bool
	Set(t time.Time) error
}

// ResetNotifier delivers a callback synchronously before a deliberate
// system restart.
type ResetNotifier interface {
	OnReset(fn func())
}

// Config wires the device to its collaborators. Zero values pick defaults.
type Config struct {
	FOUT     PinInput    // FOUT/nIRQ level; nil when not connected
	Lock     sync.Locker // shared bus lock; a private mutex when nil
	Millis   func() int64
	Sleep    func(time.Duration)
	Restart  func() // last resort after a failed deep power down
	Clock    SystemClock
	Notifier ResetNotifier
	Logger   Logger

	// Board revisions with the FOUT pull-up on a switched rail need FOUT
	// driven low while the host is powered down.
	FOUTLowInSleep bool

	MaxRead  int // bytes per RAM read transaction (default 32)
	MaxWrite int // bytes per RAM write transaction (default 31)
}

const (
	defaultMaxRead  = 32
	defaultMaxWrite = 31
	maxBurst        = 32
)

// State of the lifecycle manager.
type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateUnavailable
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateUnavailable:
		return "unavailable"
	default:
		return "uninitialized"
	}
}

// WakeReason is latched by UpdateWakeReason.
type WakeReason uint8

const (
	WakeUnknown WakeReason = iota
	WakeWatchdog
	WakeDeepPowerDown
	WakeCountdownTimer
	WakeAlarm
)

func (w WakeReason) String() string {
	switch w {
	case WakeWatchdog:
		return "watchdog"
	case WakeDeepPowerDown:
		return "deep_power_down"
	case WakeCountdownTimer:
		return "countdown_timer"
	case WakeAlarm:
		return "alarm"
	default:
		return "unknown"
	}
}

// Device is one AB1805 on an I2C bus.
type Device struct {
	i2c  drivers.I2C
	addr uint16
	mu   sync.Locker
	log  Logger

	fout     PinInput
	millis   func() int64
	sleep    func(time.Duration)
	restart  func()
	clock    SystemClock
	notifier ResetNotifier

	foutLowInSleep bool
	maxRead        int
	maxWrite       int

	state State
	wake  WakeReason

	// watchdog keeper
	wdtSecs     int
	wdtArmed    int // last non-zero timeout, for ResumeWDT
	lastTickle  int64
	tickleEvery int64

	timeSet bool // system time pushed to the RTC this power cycle

	// Fixed buffer to avoid per-call heap allocations. Only touched under mu.
	w  [1 + maxBurst]byte
	rb [1]byte
}

// New constructs a Device. It does not touch the bus; call Setup.
func New(i2c drivers.I2C, cfg Config) *Device {
	d := &Device{
		i2c:            i2c,
		addr:           Address,
		mu:             cfg.Lock,
		log:            cfg.Logger,
		fout:           cfg.FOUT,
		millis:         cfg.Millis,
		sleep:          cfg.Sleep,
		restart:        cfg.Restart,
		clock:          cfg.Clock,
		notifier:       cfg.Notifier,
		foutLowInSleep: cfg.FOUTLowInSleep,
		maxRead:        cfg.MaxRead,
		maxWrite:       cfg.MaxWrite,
	}
	if d.mu == nil {
		d.mu = &sync.Mutex{}
	}
	if d.log == nil {
		d.log = defaultLogger()
	}
	if d.millis == nil {
		d.millis = timex.Millis
	}
	if d.sleep == nil {
		d.sleep = time.Sleep
	}
	if d.maxRead <= 0 || d.maxRead > maxBurst {
		d.maxRead = defaultMaxRead
	}
	if d.maxWrite <= 0 || d.maxWrite > maxBurst-1 {
		d.maxWrite = defaultMaxWrite
	}
	return d
}

func (d *Device) State() State           { return d.state }
func (d *Device) WakeReason() WakeReason { return d.wake }
