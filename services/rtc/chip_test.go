package rtc

import (
	"sync"

	"tinygo.org/x/drivers"
)

var _ drivers.I2C = (*regChip)(nil)

// regChip is a minimal AB1805 register image. 0x80..0xFF is a window onto
// half of the 256-byte RAM selected by the XADA bit of 0x3F.
type regChip struct {
	mu   sync.Mutex
	regs   [256]byte
	ram    [256]byte
	writes [256]int
}

func newRegChip() *regChip {
	c := &regChip{}
	c.regs[0x28], c.regs[0x29] = 0x18, 0x05 // part 1805
	c.regs[0x10] = 0x13                     // WRTC set on cold start
	c.regs[0x2F] = 0xC0                     // VBAT above BMIN and BREF
	return c
}

func (c *regChip) Tx(addr uint16, w, r []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if addr != 0x69 || len(w) == 0 {
		return errNoAck
	}
	reg := int(w[0])
	if len(r) == 0 {
		for i, b := range w[1:] {
			c.set((reg+i)&0xFF, b)
		}
		return nil
	}
	for i := range r {
		r[i] = c.get((reg + i) & 0xFF)
	}
	return nil
}

func (c *regChip) base() int {
	if c.regs[0x3F]&0x04 != 0 {
		return 128
	}
	return 0
}

func (c *regChip) get(a int) byte {
	if a >= 0x80 {
		return c.ram[c.base()+a-0x80]
	}
	return c.regs[a]
}

func (c *regChip) set(a int, b byte) {
	c.writes[a]++
	if a >= 0x80 {
		c.ram[c.base()+a-0x80] = b
		return
	}
	c.regs[a] = b
}

func (c *regChip) reg(a byte) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[a]
}

func (c *regChip) writesTo(a byte) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes[a]
}

func (c *regChip) setReg(a, v byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs[a] = v
}

type errString string

func (e errString) Error() string { return string(e) }

const errNoAck = errString("nack")
