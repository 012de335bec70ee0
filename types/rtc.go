package types

// ------------------------
// RTC / watchdog (ab1805)
// ------------------------

// Retained on "rtc/state".
type RTCState struct {
	Level           Level  `json:"level" yaml:"level"`
	Status          string `json:"status,omitempty" yaml:"status,omitempty"` // errcode on failure
	Error           string `json:"error,omitempty" yaml:"error,omitempty"`
	PartNumber      uint16 `json:"part_number,omitempty" yaml:"part_number,omitempty"`
	RTCSet          bool   `json:"rtc_set" yaml:"rtc_set"`
	RCOscillator    bool   `json:"rc_oscillator" yaml:"rc_oscillator"`
	WatchdogSeconds int    `json:"watchdog_seconds" yaml:"watchdog_seconds"`
	TS              int64  `json:"ts_ms" yaml:"ts_ms"`
}

// Retained on "rtc/wake".
type WakeReport struct {
	Reason string `json:"reason" yaml:"reason"` // unknown | watchdog | deep_power_down | countdown_timer | alarm
	TS     int64  `json:"ts_ms" yaml:"ts_ms"`
}

// Reply to "wake_reason".
type WakeReply struct {
	OKReply
	Reason string `json:"reason"`
}

// ---- Controls: rtc/control/<verb> ----

type SetWDT struct{ Seconds int } // verb: "set_wdt"

// verb: "set_time". Zero Unix means "now from the system clock".
type SetTime struct{ Unix int64 }

type TimeReply struct {
	OKReply
	Unix    int64  `json:"unix"`
	RFC3339 string `json:"rfc3339"`
}

type InterruptAt struct{ Unix int64 } // verb: "interrupt_at"

// verb: "repeat". Fields are the wall-clock values to match (UTC).
type RepeatAlarm struct {
	Every   string // second | minute | hour | weekday | date | month | hundredth
	Second  int
	Minute  int
	Hour    int
	Day     int
	Month   int // 1..12
	Weekday int // 0 = Sunday
}

// verb: "countdown"
type Countdown struct {
	Value   int
	Minutes bool
}

type DeepPowerDown struct{ Seconds int } // verb: "deep_power_down"

type Trickle struct{ Diode, Rout string } // verb: "trickle"

type VBATReply struct {
	OKReply
	AboveMin bool `json:"above_min"`
	AboveRef bool `json:"above_ref"`
}

type ReadRAM struct{ Addr, Len int } // verb: "read_ram"

type WriteRAM struct { // verb: "write_ram"
	Addr int
	Data []byte
}

type RAMReply struct {
	OKReply
	Addr int    `json:"addr"`
	Data []byte `json:"data"`
}

type ResetConfig struct{ PreserveRepeatingTimer, DisableCrystal bool } // verb: "reset_config"

type ReadReg struct{ Reg, Len int } // verb: "read_reg"

type WriteReg struct { // verb: "write_reg"
	Reg  int
	Data []byte
}

type RegReply struct {
	OKReply
	Reg  int    `json:"reg"`
	Data []byte `json:"data"`
}
