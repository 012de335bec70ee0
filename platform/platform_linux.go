//go:build linux && !baremetal

package platform

import (
	"os"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
	"rtcnode-go/x/strx"
)

// Open initialises periph and opens the configured I2C transport.
func Open(cfg types.PlatformConfig) (*Host, error) {
	if _, err := host.Init(); err != nil {
		return nil, errcode.Wrap(errcode.NotReady, "periph init", err)
	}

	h := &Host{
		Pin:     pinByName,
		Clock:   newSysClock(),
		Restart: reboot,
	}
	if cfg.Console {
		h.In, h.Out = os.Stdin, os.Stdout
	}

	switch cfg.Transport {
	case "", "periph":
		b, err := openPeriph(cfg.Bus)
		if err != nil {
			return nil, err
		}
		h.I2C = b
		h.closers = append(h.closers, b.Close)
	case "i2cdev":
		b, err := openDev(cfg.Bus)
		if err != nil {
			return nil, err
		}
		h.I2C = b
		h.closers = append(h.closers, b.Close)
	default:
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "open", Msg: "unknown transport " + cfg.Transport}
	}
	log.Infof("i2c %q via %s", cfg.Bus, strx.Coalesce(cfg.Transport, "periph"))
	return h, nil
}

// pinByName resolves a periph GPIO name such as "GPIO17" as an input.
func pinByName(name string) (ab1805.PinInput, error) {
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "pin", Msg: "no such gpio " + name}
	}
	if err := p.In(gpio.PullNoChange, gpio.NoEdge); err != nil {
		return nil, err
	}
	return func() bool { return p.Read() == gpio.High }, nil
}
