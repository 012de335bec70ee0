package rtc

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"rtcnode-go/bus"
	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
)

type harness struct {
	c     *qt.C
	ctx   context.Context
	b     *bus.Bus
	conn  *bus.Connection
	chip  *regChip
	state *bus.Subscription
}

func start(t *testing.T, chip *regChip, mods ...func(*Bindings)) *harness {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	bind := Bindings{I2C: chip, Logger: ab1805.NopLogger{}}
	for _, m := range mods {
		m(&bind)
	}
	b := bus.NewBus(16)
	go Run(ctx, b.NewConnection("rtc"), bind)

	conn := b.NewConnection("test")
	h := &harness{c: qt.New(t), ctx: ctx, b: b, conn: conn, chip: chip}
	h.state = conn.Subscribe(topicState)
	t.Cleanup(func() { conn.Unsubscribe(h.state) })
	return h
}

// waitState returns the first retained state at the given level.
func (h *harness) waitState(level types.Level) types.RTCState {
	h.c.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case m := <-h.state.Channel():
			st := m.Payload.(types.RTCState)
			if st.Level == level {
				return st
			}
		case <-deadline:
			h.c.Fatalf("no %s state", level)
		}
	}
}

func (h *harness) configure(cfg types.RTCConfig) types.RTCState {
	h.c.Helper()
	h.conn.Publish(h.conn.NewMessage(topicConfig, cfg, true))
	return h.waitState(types.LevelReady)
}

func (h *harness) request(verb string, payload any) any {
	h.c.Helper()
	ctx, cancel := context.WithTimeout(h.ctx, 2*time.Second)
	defer cancel()
	rep, err := h.conn.RequestWait(ctx, h.conn.NewMessage(bus.T("rtc", "control", verb), payload, false))
	h.c.Assert(err, qt.IsNil, qt.Commentf("verb %s", verb))
	return rep.Payload
}

func (h *harness) requestErr(verb string, payload any) string {
	h.c.Helper()
	er, ok := h.request(verb, payload).(types.ErrorReply)
	h.c.Assert(ok, qt.IsTrue, qt.Commentf("verb %s did not fail", verb))
	h.c.Assert(er.OK, qt.IsFalse)
	return er.Error
}

func TestControlBeforeConfigIsNotReady(t *testing.T) {
	h := start(t, newRegChip())
	h.waitState(types.LevelIdle)
	h.c.Assert(h.requestErr("read_time", nil), qt.Equals, string(errcode.NotReady))
}

func TestConfigureArmsWatchdogAndPublishesState(t *testing.T) {
	chip := newRegChip()
	chip.setReg(0x0F, 0x20) // last restart was the watchdog
	h := start(t, chip)

	st := h.configure(types.RTCConfig{WatchdogSeconds: 30, MaintenanceMs: 20})
	h.c.Assert(st.PartNumber, qt.Equals, uint16(0x1805))
	h.c.Assert(st.WatchdogSeconds, qt.Equals, 30)
	h.c.Assert(st.RTCSet, qt.IsFalse)
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0x80|7<<2|0x03))
	h.c.Assert(chip.reg(0x0F)&0x20, qt.Equals, byte(0))

	// Wake report is retained for late subscribers.
	sub := h.conn.Subscribe(topicWake)
	defer h.conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		h.c.Assert(m.Payload.(types.WakeReport).Reason, qt.Equals, "watchdog")
	case <-time.After(2 * time.Second):
		t.Fatal("no wake report")
	}

	rep := h.request("wake_reason", nil).(types.WakeReply)
	h.c.Assert(rep.Reason, qt.Equals, "watchdog")
}

func TestNotDetectedIsUnavailable(t *testing.T) {
	chip := newRegChip()
	chip.setReg(0x28, 0x00)
	h := start(t, chip)

	h.conn.Publish(h.conn.NewMessage(topicConfig, types.RTCConfig{}, true))
	st := h.waitState(types.LevelUnavailable)
	h.c.Assert(st.Status, qt.Equals, string(errcode.NotDetected))
	h.c.Assert(h.requestErr("stop_wdt", nil), qt.Equals, string(errcode.NotReady))
}

func TestSystemResetDisablesWatchdogBeforeReply(t *testing.T) {
	chip := newRegChip()
	h := start(t, chip)
	h.configure(types.RTCConfig{WatchdogSeconds: 60})
	h.c.Assert(chip.reg(0x1B), qt.Not(qt.Equals), byte(0))

	ctx, cancel := context.WithTimeout(h.ctx, 2*time.Second)
	defer cancel()
	rep, err := h.conn.RequestWait(ctx, h.conn.NewMessage(topicReset, nil, false))
	h.c.Assert(err, qt.IsNil)
	h.c.Assert(rep.Payload, qt.Equals, types.OKReply{OK: true})
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0))
}

func TestWatchdogVerbs(t *testing.T) {
	chip := newRegChip()
	h := start(t, chip)
	h.configure(types.RTCConfig{})

	h.c.Assert(h.request("set_wdt", types.SetWDT{Seconds: 8}), qt.Equals, types.OKReply{OK: true})
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0x80|2<<2|0x03))

	h.request("stop_wdt", nil)
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0))

	h.request("resume_wdt", nil)
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0x80|2<<2|0x03))

	h.c.Assert(h.requestErr("set_wdt", types.SetWDT{Seconds: -5}), qt.Equals, string(errcode.InvalidParams))
}

func TestMaintenanceKeepsUpWithWatchdog(t *testing.T) {
	chip := newRegChip()
	h := start(t, chip)
	// Maintenance configured slower than the 2 s tickle point of a 4 s watchdog.
	h.configure(types.RTCConfig{WatchdogSeconds: 4, MaintenanceMs: 6000})
	armed := chip.writesTo(0x1B)

	deadline := time.Now().Add(3500 * time.Millisecond)
	for chip.writesTo(0x1B) == armed {
		if time.Now().After(deadline) {
			h.c.Fatalf("watchdog not refreshed within its 4s timeout")
		}
		time.Sleep(50 * time.Millisecond)
	}
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0x80|1<<2|0x03))
}

func TestAlarmVerbsRepublishWatchdog(t *testing.T) {
	tests := []struct {
		verb    string
		payload any
	}{
		{"repeat", types.RepeatAlarm{Every: "minute", Second: 30}},
		{"interrupt_at", types.InterruptAt{Unix: time.Now().Add(time.Hour).Unix()}},
		{"countdown", types.Countdown{Value: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.verb, func(t *testing.T) {
			chip := newRegChip()
			h := start(t, chip)
			st := h.configure(types.RTCConfig{WatchdogSeconds: 30})
			h.c.Assert(st.WatchdogSeconds, qt.Equals, 30)

			h.c.Assert(h.request(tt.verb, tt.payload), qt.Equals, types.OKReply{OK: true})
			st = h.waitState(types.LevelReady)
			h.c.Assert(st.Status, qt.Equals, "watchdog_changed")
			h.c.Assert(st.WatchdogSeconds, qt.Equals, 0)
			h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0))
		})
	}
}

func TestTimeVerbs(t *testing.T) {
	h := start(t, newRegChip())
	h.configure(types.RTCConfig{})

	h.c.Assert(h.requestErr("read_time", nil), qt.Equals, string(errcode.RTCNotSet))

	want := time.Date(2024, 2, 29, 23, 59, 58, 0, time.UTC)
	h.request("set_time", map[string]any{"unix": want.Unix()})

	rep := h.request("read_time", nil).(types.TimeReply)
	h.c.Assert(rep.OK, qt.IsTrue)
	h.c.Assert(rep.Unix, qt.Equals, want.Unix())
	h.c.Assert(rep.RFC3339, qt.Equals, "2024-02-29T23:59:58Z")
}

func TestRAMVerbs(t *testing.T) {
	h := start(t, newRegChip())
	h.configure(types.RTCConfig{})

	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i + 1)
	}
	h.request("write_ram", types.WriteRAM{Addr: 110, Data: data})

	rep := h.request("read_ram", types.ReadRAM{Addr: 110, Len: 40}).(types.RAMReply)
	h.c.Assert(rep.Data, qt.DeepEquals, data)

	h.request("erase_ram", nil)
	rep = h.request("read_ram", types.ReadRAM{Addr: 110, Len: 40}).(types.RAMReply)
	h.c.Assert(rep.Data, qt.DeepEquals, make([]byte, 40))

	h.c.Assert(h.requestErr("read_ram", types.ReadRAM{Addr: 250, Len: 10}), qt.Equals, string(errcode.InvalidParams))
	h.c.Assert(h.requestErr("read_ram", types.ReadRAM{Addr: 0, Len: 0}), qt.Equals, string(errcode.InvalidParams))
}

func TestRegisterVerbs(t *testing.T) {
	chip := newRegChip()
	h := start(t, chip)
	h.configure(types.RTCConfig{})

	h.request("write_reg", types.WriteReg{Reg: 0x08, Data: []byte{0x11, 0x22}})
	h.c.Assert(chip.reg(0x09), qt.Equals, byte(0x22))

	rep := h.request("read_reg", map[string]any{"reg": 0x28, "len": 2}).(types.RegReply)
	h.c.Assert(rep.Data, qt.DeepEquals, []byte{0x18, 0x05})

	h.c.Assert(h.requestErr("read_reg", types.ReadReg{Reg: 0xFF, Len: 4}), qt.Equals, string(errcode.InvalidParams))
	h.c.Assert(h.requestErr("write_reg", types.WriteReg{Reg: 0x08}), qt.Equals, string(errcode.InvalidParams))
}

func TestPowerVerbs(t *testing.T) {
	chip := newRegChip()
	h := start(t, chip)
	h.configure(types.RTCConfig{})

	h.request("trickle", types.Trickle{Diode: "schottky", Rout: "3k"})
	h.c.Assert(chip.reg(0x20), qt.Equals, byte(0xA0|0x04|0x01))

	h.c.Assert(h.requestErr("trickle", types.Trickle{Diode: "zener", Rout: "3k"}), qt.Equals, string(errcode.InvalidParams))

	rep := h.request("vbat", nil).(types.VBATReply)
	h.c.Assert(rep.AboveMin, qt.IsTrue)
	h.c.Assert(rep.AboveRef, qt.IsTrue)
}

func TestAlarmVerbs(t *testing.T) {
	chip := newRegChip()
	h := start(t, chip)
	h.configure(types.RTCConfig{})

	h.c.Assert(h.requestErr("repeat", types.RepeatAlarm{Every: "fortnight"}), qt.Equals, string(errcode.InvalidParams))
	h.request("repeat", types.RepeatAlarm{Every: "minute", Second: 30})
	h.c.Assert(chip.reg(0x09), qt.Equals, byte(0x30)) // seconds alarm, BCD

	h.request("clear_repeat", nil)
	h.c.Assert(h.requestErr("interrupt_at", types.InterruptAt{}), qt.Equals, string(errcode.InvalidParams))

	h.request("countdown", types.Countdown{Value: 5})
	h.c.Assert(chip.reg(0x19), qt.Equals, byte(5))
	h.request("countdown", types.Countdown{})
	h.c.Assert(chip.reg(0x18)&0x80, qt.Equals, byte(0))
}

func TestDeepPowerDownFallsBackToRestart(t *testing.T) {
	chip := newRegChip()
	var ms atomic.Int64
	var restarts atomic.Int32
	h := start(t, chip, func(b *Bindings) {
		b.Millis = ms.Load
		b.Sleep = func(d time.Duration) { ms.Add(d.Milliseconds()) }
		b.Restart = func() { restarts.Add(1) }
	})
	h.configure(types.RTCConfig{WatchdogSeconds: 30})

	h.c.Assert(h.requestErr("deep_power_down", types.DeepPowerDown{Seconds: 3}), qt.Equals, string(errcode.NoPowerDown))
	h.c.Assert(restarts.Load(), qt.Equals, int32(1))
	h.c.Assert(chip.reg(0x1B), qt.Equals, byte(0))
	h.c.Assert(chip.reg(0x17)&0x80, qt.Not(qt.Equals), byte(0)) // SLP requested
	h.c.Assert(h.waitState(types.LevelReady).WatchdogSeconds, qt.Equals, 0)
}

func TestUnknownVerbAndBadPayload(t *testing.T) {
	h := start(t, newRegChip())
	h.configure(types.RTCConfig{})

	h.c.Assert(h.requestErr("self_destruct", nil), qt.Equals, string(errcode.UnknownVerb))
	h.c.Assert(h.requestErr("set_wdt", "{not json"), qt.Equals, string(errcode.InvalidPayload))
}

func TestParseTrickle(t *testing.T) {
	cases := []struct {
		diode, rout string
		want        byte
		bad         bool
	}{
		{"", "", 0, false},
		{"none", "3k", 0, false},
		{"standard", "11k", ab1805.TrickleDiodeStandard | ab1805.TrickleRout11K, false},
		{"Schottky", "6K", ab1805.TrickleDiodeSchottky | ab1805.TrickleRout6K, false},
		{"standard", "", 0, false},
		{"standard", "1k", 0, true},
	}
	for _, tc := range cases {
		got, err := parseTrickle(types.TrickleConfig{Diode: tc.diode, Rout: tc.rout})
		if tc.bad {
			if errcode.Of(err) != errcode.InvalidParams {
				t.Fatalf("%q/%q: err = %v", tc.diode, tc.rout, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("%q/%q: got %#02x, %v", tc.diode, tc.rout, got, err)
		}
	}
}
