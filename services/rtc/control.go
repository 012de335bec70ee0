package rtc

import (
	"time"

	"rtcnode-go/bus"
	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
	"rtcnode-go/x/mathx"
)

const maxRegBurst = 32

// handleControl answers rtc/control/<verb>.
func (s *service) handleControl(msg *bus.Message) {
	if len(msg.Topic) < 3 {
		return
	}
	verb, _ := msg.Topic[2].(string)
	if s.dev == nil {
		s.replyErr(msg, &errcode.E{C: errcode.NotReady, Op: verb, Msg: "rtc not configured"})
		return
	}
	reply, err := s.dispatch(verb, msg.Payload)
	if err != nil {
		s.log.Warnf("%s: %v", verb, err)
		s.replyErr(msg, err)
		return
	}
	s.replyOK(msg, reply)
}

// dispatch runs one verb; a nil reply means a bare OKReply.
func (s *service) dispatch(verb string, payload any) (any, error) {
	d := s.dev
	ok := types.OKReply{OK: true}

	switch verb {
	case "set_wdt":
		var p types.SetWDT
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		if p.Seconds < 0 {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: verb, Msg: "negative timeout"}
		}
		if err := d.SetWDT(p.Seconds); err != nil {
			return nil, err
		}
		s.watchdogChanged()
		return nil, nil

	case "stop_wdt":
		if err := d.StopWDT(); err != nil {
			return nil, err
		}
		s.watchdogChanged()
		return nil, nil

	case "resume_wdt":
		if err := d.ResumeWDT(); err != nil {
			return nil, err
		}
		s.watchdogChanged()
		return nil, nil

	case "read_time":
		t, err := d.RTCTime()
		if err != nil {
			return nil, err
		}
		return types.TimeReply{OKReply: ok, Unix: t.Unix(), RFC3339: t.Format(time.RFC3339)}, nil

	case "set_time":
		var p types.SetTime
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		t := time.Unix(p.Unix, 0)
		if p.Unix == 0 {
			t = s.now()
		}
		if err := d.SetRTCTime(t); err != nil {
			return nil, err
		}
		return types.TimeReply{OKReply: ok, Unix: t.Unix(), RFC3339: t.UTC().Format(time.RFC3339)}, nil

	case "interrupt_at":
		var p types.InterruptAt
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		if p.Unix <= 0 {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: verb, Msg: "unix time required"}
		}
		err := d.InterruptAt(time.Unix(p.Unix, 0))
		s.watchdogChanged()
		return nil, err

	case "repeat":
		var p types.RepeatAlarm
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		rpt, valid := ab1805.ParseRepeat(p.Every)
		if !valid {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: verb, Msg: "unknown repeat " + p.Every}
		}
		c := ab1805.CalendarTime{
			Second:  p.Second,
			Minute:  p.Minute,
			Hour:    p.Hour,
			Day:     p.Day,
			Weekday: p.Weekday,
		}
		if p.Month > 0 {
			c.Month = p.Month - 1
		}
		err := d.RepeatingInterrupt(c, rpt)
		s.watchdogChanged()
		return nil, err

	case "clear_repeat":
		return nil, d.ClearRepeatingInterrupt()

	case "countdown":
		var p types.Countdown
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		if p.Value <= 0 {
			return nil, d.StopCountdownTimer()
		}
		err := d.InterruptCountdownTimer(p.Value, p.Minutes)
		s.watchdogChanged()
		return nil, err

	case "deep_power_down":
		var p types.DeepPowerDown
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		// Only returns when the chip failed to cut power.
		err := d.DeepPowerDown(p.Seconds)
		s.watchdogChanged()
		return nil, err

	case "trickle":
		var p types.Trickle
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		v, err := parseTrickle(types.TrickleConfig{Diode: p.Diode, Rout: p.Rout})
		if err != nil {
			return nil, err
		}
		return nil, d.SetTrickle(v)

	case "vbat":
		aboveMin, err := d.VBATAboveMin()
		if err != nil {
			return nil, err
		}
		aboveRef, err := d.VBATAboveRef()
		if err != nil {
			return nil, err
		}
		return types.VBATReply{OKReply: ok, AboveMin: aboveMin, AboveRef: aboveRef}, nil

	case "read_ram":
		var p types.ReadRAM
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		if !mathx.Between(p.Len, 1, ab1805.RAMSize) {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: verb, Msg: "len out of range"}
		}
		buf := make([]byte, p.Len)
		if err := d.ReadRAM(p.Addr, buf); err != nil {
			return nil, err
		}
		return types.RAMReply{OKReply: ok, Addr: p.Addr, Data: buf}, nil

	case "write_ram":
		var p types.WriteRAM
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		return nil, d.WriteRAM(p.Addr, p.Data)

	case "erase_ram":
		return nil, d.EraseRAM()

	case "wake_reason":
		return types.WakeReply{OKReply: ok, Reason: d.WakeReason().String()}, nil

	case "reset_config":
		var p types.ResetConfig
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		var flags ab1805.ResetFlags
		if p.PreserveRepeatingTimer {
			flags |= ab1805.ResetPreserveRepeatingTimer
		}
		if p.DisableCrystal {
			flags |= ab1805.ResetDisableCrystal
		}
		if err := d.ResetConfig(flags); err != nil {
			return nil, err
		}
		s.publishState(types.LevelReady, "config_reset", nil)
		return nil, nil

	case "read_reg":
		var p types.ReadReg
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		if p.Len == 0 {
			p.Len = 1
		}
		if !mathx.Between(p.Reg, 0, 0xFF) || !mathx.Between(p.Len, 1, maxRegBurst) || p.Reg+p.Len > 0x100 {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: verb, Msg: "register range"}
		}
		buf := make([]byte, p.Len)
		if err := d.ReadRegisters(byte(p.Reg), buf); err != nil {
			return nil, err
		}
		return types.RegReply{OKReply: ok, Reg: p.Reg, Data: buf}, nil

	case "write_reg":
		var p types.WriteReg
		if err := decodePayload(verb, payload, &p); err != nil {
			return nil, err
		}
		if !mathx.Between(p.Reg, 0, 0xFF) || !mathx.Between(len(p.Data), 1, maxRegBurst) || p.Reg+len(p.Data) > 0x100 {
			return nil, &errcode.E{C: errcode.InvalidParams, Op: verb, Msg: "register range"}
		}
		return nil, d.WriteRegisters(byte(p.Reg), p.Data)
	}
	return nil, &errcode.E{C: errcode.UnknownVerb, Op: verb}
}

func (s *service) now() time.Time {
	if s.b.Clock != nil {
		return s.b.Clock.Now()
	}
	return time.Now()
}
