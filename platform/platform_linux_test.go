//go:build linux && !baremetal

package platform

import (
	"errors"
	"testing"

	qt "github.com/frankban/quicktest"

	"rtcnode-go/errcode"
)

type fakeDev struct {
	short  bool
	writes [][]byte
	fill   byte
	closed bool
}

func (f *fakeDev) WriteBytes(b []byte) (int, error) {
	f.writes = append(f.writes, append([]byte(nil), b...))
	if f.short {
		return len(b) - 1, nil
	}
	return len(b), nil
}

func (f *fakeDev) ReadBytes(b []byte) (int, error) {
	for i := range b {
		b[i] = f.fill
	}
	return len(b), nil
}

func (f *fakeDev) Close() error { f.closed = true; return nil }

func newTestDevBus(dev *fakeDev) (*devBus, *[]uint8) {
	var opened []uint8
	return &devBus{
		bus:  1,
		devs: map[uint16]rawDev{},
		open: func(addr uint8, bus int) (rawDev, error) {
			opened = append(opened, addr)
			return dev, nil
		},
	}, &opened
}

func TestDevBusTx(t *testing.T) {
	c := qt.New(t)
	dev := &fakeDev{fill: 0x18}
	b, opened := newTestDevBus(dev)

	r := make([]byte, 2)
	c.Assert(b.Tx(0x69, []byte{0x28}, r), qt.IsNil)
	c.Assert(r, qt.DeepEquals, []byte{0x18, 0x18})
	c.Assert(b.Tx(0x69, []byte{0x10, 0x01}, nil), qt.IsNil)
	c.Assert(dev.writes, qt.DeepEquals, [][]byte{{0x28}, {0x10, 0x01}})
	c.Assert(*opened, qt.DeepEquals, []uint8{0x69})

	c.Assert(b.Close(), qt.IsNil)
	c.Assert(dev.closed, qt.IsTrue)
}

func TestDevBusShortTransfer(t *testing.T) {
	b, _ := newTestDevBus(&fakeDev{short: true})
	err := b.Tx(0x69, []byte{0x10, 0x01}, nil)
	if !errors.Is(err, errcode.ShortTransfer) {
		t.Fatalf("err = %v, want short_transfer", err)
	}
}

func TestOpenDevRejectsNames(t *testing.T) {
	_, err := openDev("i2c-one")
	qt.Assert(t, errcode.Of(err), qt.Equals, errcode.InvalidParams)

	b, err := openDev("/dev/i2c-3")
	qt.Assert(t, err, qt.IsNil)
	qt.Assert(t, b.bus, qt.Equals, 3)
}

func TestParseSynced(t *testing.T) {
	cases := []struct {
		out  string
		want bool
	}{
		{"      Local time: Mon\nNTP synchronized: yes\n", true},
		{"System clock synchronized: yes\n              NTP service: active\n", true},
		{"System clock synchronized: no\n", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := parseSynced([]byte(tc.out)); got != tc.want {
			t.Fatalf("parseSynced(%q) = %v", tc.out, got)
		}
	}
}

func TestSysClockValidOnceSet(t *testing.T) {
	c := &sysClock{synced: func() bool { return false }}
	if c.Valid() {
		t.Fatal("valid before sync")
	}
	c.set = true
	if !c.Valid() {
		t.Fatal("not valid after set")
	}
}
