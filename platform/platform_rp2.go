//go:build rp2040 || rp2350

package platform

import (
	"context"
	"machine"
	"strconv"
	"time"

	"github.com/jangala-dev/tinygo-uartx/uartx"

	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
	"rtcnode-go/x/fmtx"
	"rtcnode-go/x/strx"
)

// Open configures the named I2C block at 400 kHz on its default pins and,
// when asked, UART0 as console and log output.
func Open(cfg types.PlatformConfig) (*Host, error) {
	var b *machine.I2C
	switch cfg.Bus {
	case "", "i2c0":
		b = machine.I2C0
		_ = b.Configure(machine.I2CConfig{
			Frequency: 400 * machine.KHz,
			SDA:       machine.I2C0_SDA_PIN,
			SCL:       machine.I2C0_SCL_PIN,
		})
	case "i2c1":
		b = machine.I2C1
		_ = b.Configure(machine.I2CConfig{
			Frequency: 400 * machine.KHz,
			SDA:       machine.I2C1_SDA_PIN,
			SCL:       machine.I2C1_SCL_PIN,
		})
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "open", Msg: "unknown bus " + cfg.Bus}
	}

	h := &Host{
		I2C:     b,
		Pin:     pinByName,
		Clock:   &mcuClock{},
		Restart: restart,
	}
	if cfg.Console {
		u := uartx.UART0
		_ = u.Configure(uartx.UARTConfig{BaudRate: 115200})
		fmtx.DefaultOutput = u
		h.In, h.Out = uartReader{u}, u
	}
	return h, nil
}

// pinByName accepts "GPn" or a bare GPIO number.
func pinByName(name string) (ab1805.PinInput, error) {
	n, err := strconv.Atoi(strx.TrimAnyPrefix(name, "GPIO", "GP"))
	if err != nil || n < 0 || n > 28 {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "pin", Msg: "no such gpio " + name}
	}
	p := machine.Pin(n)
	p.Configure(machine.PinConfig{Mode: machine.PinInput})
	return p.Get, nil
}

// restart lets the RP2 watchdog reset the chip.
func restart() {
	machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 1})
	machine.Watchdog.Start()
	for {
		time.Sleep(time.Millisecond)
	}
}

type uartReader struct{ u *uartx.UART }

func (r uartReader) Read(p []byte) (int, error) {
	return r.u.RecvSomeContext(context.Background(), p)
}

// mcuClock has no source of wall time until something sets it.
type mcuClock struct {
	offset time.Duration
	valid  bool
}

func (c *mcuClock) Now() time.Time { return time.Now().Add(c.offset) }
func (c *mcuClock) Valid() bool    { return c.valid }

func (c *mcuClock) Set(t time.Time) error {
	c.offset = time.Until(t)
	c.valid = true
	return nil
}
