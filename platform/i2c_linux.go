//go:build linux && !baremetal

package platform

import (
	"strconv"
	"strings"
	"sync"

	i2cdev "github.com/d2r2/go-i2c"
	logger "github.com/d2r2/go-logger"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"tinygo.org/x/drivers"

	"rtcnode-go/errcode"
	"rtcnode-go/x/strx"
)

var (
	_ drivers.I2C = (*periphBus)(nil)
	_ drivers.I2C = (*devBus)(nil)
)

// periphBus adapts a periph I2C bus. periph already speaks Tx.
type periphBus struct {
	b i2c.BusCloser
}

func openPeriph(name string) (*periphBus, error) {
	if name != "" && !strings.HasPrefix(name, "/") {
		if _, err := strconv.Atoi(name); err == nil {
			name = "/dev/i2c-" + name
		}
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, errcode.Wrap(errcode.BusFailure, "open "+name, err)
	}
	return &periphBus{b: b}, nil
}

func (p *periphBus) Tx(addr uint16, w, r []byte) error { return p.b.Tx(addr, w, r) }
func (p *periphBus) Close() error                     { return p.b.Close() }

// rawDev is the part of go-i2c the adapter uses.
type rawDev interface {
	WriteBytes(buf []byte) (int, error)
	ReadBytes(buf []byte) (int, error)
	Close() error
}

// devBus speaks to /dev/i2c-N through go-i2c, one handle per address. A
// combined transaction is a write followed by a separate read.
type devBus struct {
	mu   sync.Mutex
	bus  int
	devs map[uint16]rawDev
	open func(addr uint8, bus int) (rawDev, error)
}

func openDev(name string) (*devBus, error) {
	n, err := strconv.Atoi(strx.TrimAnyPrefix(name, "/dev/i2c-", "i2c-"))
	if err != nil {
		return nil, &errcode.E{C: errcode.InvalidParams, Op: "open", Msg: "i2c-dev bus must be a number: " + name}
	}
	// go-i2c logs every transfer at debug level.
	_ = logger.ChangePackageLogLevel("i2c", logger.InfoLevel)
	return &devBus{
		bus:  n,
		devs: map[uint16]rawDev{},
		open: func(addr uint8, bus int) (rawDev, error) { return i2cdev.NewI2C(addr, bus) },
	}, nil
}

func (d *devBus) dev(addr uint16) (rawDev, error) {
	if dv, ok := d.devs[addr]; ok {
		return dv, nil
	}
	dv, err := d.open(uint8(addr), d.bus)
	if err != nil {
		return nil, err
	}
	d.devs[addr] = dv
	return dv, nil
}

func (d *devBus) Tx(addr uint16, w, r []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	dv, err := d.dev(addr)
	if err != nil {
		return err
	}
	if len(w) > 0 {
		n, err := dv.WriteBytes(w)
		if err != nil {
			return err
		}
		if n != len(w) {
			return errcode.ShortTransfer
		}
	}
	if len(r) > 0 {
		n, err := dv.ReadBytes(r)
		if err != nil {
			return err
		}
		if n != len(r) {
			return errcode.ShortTransfer
		}
	}
	return nil
}

func (d *devBus) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	var first error
	for a, dv := range d.devs {
		if err := dv.Close(); err != nil && first == nil {
			first = err
		}
		delete(d.devs, a)
	}
	return first
}
