package ab1805

import (
	"errors"
	"sync"
	"time"

	"tinygo.org/x/drivers"
)

// Compile-time check.
var _ drivers.I2C = (*fakeChip)(nil)

var errNACK = errors.New("nack")

// txn records one bus transaction.
type txn struct {
	write bool
	reg   byte
	data  []byte
}

// fakeChip is a register-image AB1805. Registers 0x80..0xFF map onto one
// half of the 256-byte RAM, picked by XADA like the real part.
type fakeChip struct {
	mu     sync.Mutex
	regs   [256]byte
	ram    [RAMSize]byte
	reads  [256]int
	writes [256]int
	log    []txn

	// fail returns an error for a transaction when set.
	fail func(write bool, reg byte) error
}

func newFakeChip() *fakeChip {
	f := &fakeChip{}
	f.regs[regID0] = id0AB18xx
	f.regs[regID1] = id1ABxx05
	f.regs[regCtrl1] = ctrl1Default // cold start: WRTC set
	f.regs[regCtrl2] = ctrl2Default
	f.regs[regIntMask] = intMaskDefault
	f.regs[regSQW] = sqwDefault
	f.regs[regTimerCtrl] = timerCtrlDefault
	f.regs[regBrefCtrl] = brefDefault
	f.regs[regBatmodeIO] = batmodeDefault
	return f
}

func (f *fakeChip) Tx(addr uint16, w, r []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if addr != Address || len(w) == 0 {
		return errNACK
	}
	reg := w[0]
	write := len(r) == 0
	if f.fail != nil {
		if err := f.fail(write, reg); err != nil {
			return err
		}
	}
	if write {
		data := append([]byte(nil), w[1:]...)
		for i, b := range data {
			a := int(reg) + i
			f.set(a, b)
			f.writes[a&0xFF]++
		}
		f.log = append(f.log, txn{write: true, reg: reg, data: data})
		return nil
	}
	for i := range r {
		a := int(reg) + i
		r[i] = f.get(a)
		f.reads[a&0xFF]++
	}
	f.log = append(f.log, txn{reg: reg, data: append([]byte(nil), r...)})
	return nil
}

func (f *fakeChip) ramBase() int {
	if f.regs[regExtAddr]&extAddrXADA != 0 {
		return 128
	}
	return 0
}

func (f *fakeChip) get(a int) byte {
	a &= 0xFF
	if a >= regAltRAM {
		return f.ram[f.ramBase()+a-regAltRAM]
	}
	return f.regs[a]
}

func (f *fakeChip) set(a int, b byte) {
	a &= 0xFF
	if a >= regAltRAM {
		f.ram[f.ramBase()+a-regAltRAM] = b
		return
	}
	f.regs[a] = b
}

func (f *fakeChip) reg(a byte) byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.regs[a]
}

func (f *fakeChip) setReg(a, v byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.regs[a] = v
}

func (f *fakeChip) writesTo(a byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.writes[a]
}

// writeLog returns the register/value pairs of single-byte writes in order.
func (f *fakeChip) writeLog() []txn {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []txn
	for _, t := range f.log {
		if t.write {
			out = append(out, t)
		}
	}
	return out
}

func (f *fakeChip) resetLog() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.log = nil
	f.reads = [256]int{}
	f.writes = [256]int{}
}

// fakeClock drives Millis and Sleep; sleeping advances time.
type fakeClock struct {
	mu sync.Mutex
	ms int64
}

func (c *fakeClock) Millis() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ms
}

func (c *fakeClock) Sleep(d time.Duration) { c.Advance(d) }

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.ms += d.Milliseconds()
	c.mu.Unlock()
}

// fakeSystem is a SystemClock.
type fakeSystem struct {
	now   time.Time
	valid bool
	sets  []time.Time
}

func (s *fakeSystem) Now() time.Time { return s.now }
func (s *fakeSystem) Valid() bool    { return s.valid }
func (s *fakeSystem) Set(t time.Time) error {
	s.sets = append(s.sets, t)
	s.now, s.valid = t, true
	return nil
}

// fakeNotifier captures the reset handler.
type fakeNotifier struct{ fns []func() }

func (n *fakeNotifier) OnReset(fn func()) { n.fns = append(n.fns, fn) }

// countingLocker counts lock acquisitions.
type countingLocker struct {
	mu    sync.Mutex
	locks int
	held  bool
}

func (l *countingLocker) Lock() {
	l.mu.Lock()
	l.locks++
	l.held = true
}

func (l *countingLocker) Unlock() {
	l.held = false
	l.mu.Unlock()
}

type testRig struct {
	dev   *Device
	chip  *fakeChip
	clock *fakeClock
	lock  *countingLocker
}

func newRig(mod func(*Config)) *testRig {
	chip := newFakeChip()
	clk := &fakeClock{ms: 1000}
	lk := &countingLocker{}
	cfg := Config{
		Lock:   lk,
		Millis: clk.Millis,
		Sleep:  clk.Sleep,
		Logger: NopLogger{},
	}
	if mod != nil {
		mod(&cfg)
	}
	return &testRig{dev: New(chip, cfg), chip: chip, clock: clk, lock: lk}
}
