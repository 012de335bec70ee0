package types

// RTC configuration supplied on topic "config/rtc". Zero values select
// the driver defaults.
type RTCConfig struct {
	FOUTPin                string        `json:"fout_pin" yaml:"fout_pin"` // host GPIO name, or "GPn" on MCU; "" = not wired
	WatchdogSeconds        int           `json:"watchdog_seconds" yaml:"watchdog_seconds"`
	MaintenanceMs          int           `json:"maintenance_ms" yaml:"maintenance_ms"`
	PreserveRepeatingTimer bool          `json:"preserve_repeating_timer" yaml:"preserve_repeating_timer"`
	DisableCrystal         bool          `json:"disable_crystal" yaml:"disable_crystal"`
	ResetOnStart           bool          `json:"reset_on_start" yaml:"reset_on_start"`
	FOUTLowInSleep         bool          `json:"fout_low_in_sleep" yaml:"fout_low_in_sleep"`
	Trickle                TrickleConfig `json:"trickle" yaml:"trickle"`
	MaxRead                int           `json:"max_read" yaml:"max_read"`
	MaxWrite               int           `json:"max_write" yaml:"max_write"`
}

// TrickleConfig names the charger settings: diode "none" | "schottky" |
// "standard", rout "3k" | "6k" | "11k" | "" (disabled).
type TrickleConfig struct {
	Diode string `json:"diode" yaml:"diode"`
	Rout  string `json:"rout" yaml:"rout"`
}

// PlatformConfig selects the host bindings, supplied on "config/platform".
type PlatformConfig struct {
	Bus       string `json:"bus" yaml:"bus"`             // periph bus name, e.g. "/dev/i2c-1" or "1"
	Transport string `json:"transport" yaml:"transport"` // "periph" | "i2cdev"
	Console   bool   `json:"console" yaml:"console"`
}

const DefaultMaintenanceMs = 1000
