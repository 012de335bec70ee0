package config

// -----------------------------------------------------------------------------
// Embedded configuration
//
// Key: device ID passed to Load
// Val: YAML document for that device
// -----------------------------------------------------------------------------

const cfgPico = `
platform:
  bus: i2c0
  console: true
rtc:
  fout_pin: GP22
  watchdog_seconds: 124
  maintenance_ms: 1000
  trickle:
    diode: schottky
    rout: 3k
`

const cfgLinux = `
platform:
  bus: "1"
  transport: periph
  console: true
rtc:
  watchdog_seconds: 124
  maintenance_ms: 1000
`

var embeddedConfigs = map[string][]byte{
	"pico":  []byte(cfgPico),
	"linux": []byte(cfgLinux),
}
