// Package rtc owns the AB1805 on behalf of the rest of the system. It
// builds the device from "config/rtc", keeps the watchdog fed, answers
// "rtc/control/<verb>" requests and disables the watchdog when a
// "system/reset" request announces a deliberate restart.
package rtc

import (
	"context"
	"sync"
	"time"

	"tinygo.org/x/drivers"

	"rtcnode-go/bus"
	"rtcnode-go/drivers/ab1805"
	"rtcnode-go/errcode"
	"rtcnode-go/types"
	"rtcnode-go/x/logx"
	"rtcnode-go/x/timex"
)

var (
	topicConfig  = bus.Topic{"config", "rtc"}
	topicReset   = bus.Topic{"system", "reset"}
	topicControl = bus.Topic{"rtc", "control", "+"}
	topicState   = bus.Topic{"rtc", "state"}
	topicWake    = bus.Topic{"rtc", "wake"}
)

// PinFactory resolves a configured pin name to an input reader.
type PinFactory func(name string) (ab1805.PinInput, error)

// Bindings are the platform pieces the device is built from.
type Bindings struct {
	I2C     drivers.I2C
	Pin     PinFactory
	Lock    sync.Locker
	Clock   ab1805.SystemClock
	Restart func()
	Logger  ab1805.Logger

	// Test hooks; zero values use the wall clock.
	Millis func() int64
	Sleep  func(time.Duration)
}

// Service runs the rtc loop on its own goroutine.
type Service struct {
	B Bindings
}

// Start launches Run and returns immediately.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go Run(ctx, conn, s.B)
	return nil
}

type service struct {
	conn *bus.Connection
	b    Bindings
	log  logx.Logger

	cfg   types.RTCConfig
	dev   *ab1805.Device
	hooks []func()

	timer *time.Timer
}

// Run blocks until ctx is cancelled.
func Run(ctx context.Context, conn *bus.Connection, b Bindings) {
	s := &service{conn: conn, b: b, log: logx.New("rtc")}
	s.loop(ctx)
}

// OnReset implements ab1805.ResetNotifier. Hooks run on the service
// goroutine when a system/reset request arrives.
func (s *service) OnReset(fn func()) { s.hooks = append(s.hooks, fn) }

func (s *service) loop(ctx context.Context) {
	cfgSub := s.conn.Subscribe(topicConfig)
	resetSub := s.conn.Subscribe(topicReset)
	ctrlSub := s.conn.Subscribe(topicControl)
	defer s.conn.Unsubscribe(cfgSub)
	defer s.conn.Unsubscribe(resetSub)
	defer s.conn.Unsubscribe(ctrlSub)

	s.publishState(types.LevelIdle, "awaiting_config", nil)

	s.timer = time.NewTimer(time.Hour)
	if !s.timer.Stop() {
		drainTimer(s.timer)
	}

	for {
		select {
		case <-ctx.Done():
			s.timer.Stop()
			s.publishState(types.LevelStopped, "context_cancelled", nil)
			return

		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			var cfg types.RTCConfig
			if err := decodeJSON(msg.Payload, &cfg); err != nil {
				s.log.Errorf("config decode: %v", err)
				s.publishState(types.LevelUnavailable, "config_decode_failed", err)
				continue
			}
			if err := s.applyConfig(cfg); err != nil {
				s.log.Errorf("apply config: %v", err)
				s.publishState(types.LevelUnavailable, string(errcode.Of(err)), err)
				continue
			}
			s.publishWake()
			s.publishState(types.LevelReady, "configured", nil)
			s.arm()

		case msg, ok := <-resetSub.Channel():
			if !ok {
				return
			}
			s.runResetHooks()
			s.conn.Reply(msg, types.OKReply{OK: true}, false)

		case msg, ok := <-ctrlSub.Channel():
			if !ok {
				return
			}
			s.handleControl(msg)

		case <-s.timer.C:
			if s.dev == nil {
				continue
			}
			if err := s.dev.Maintenance(); err != nil {
				s.log.Warnf("maintenance: %v", err)
			}
			s.arm()
		}
	}
}

// applyConfig replaces the device. Any failure leaves no device and
// control verbs answer not_ready.
func (s *service) applyConfig(cfg types.RTCConfig) error {
	if cfg.MaintenanceMs <= 0 {
		cfg.MaintenanceMs = types.DefaultMaintenanceMs
	}
	if !s.timer.Stop() {
		drainTimer(s.timer)
	}
	s.dev, s.hooks, s.cfg = nil, nil, cfg

	if s.b.I2C == nil {
		return &errcode.E{C: errcode.NotReady, Op: "config", Msg: "no i2c bus bound"}
	}

	var fout ab1805.PinInput
	if cfg.FOUTPin != "" {
		if s.b.Pin == nil {
			return &errcode.E{C: errcode.Unsupported, Op: "config", Msg: "no pin factory for " + cfg.FOUTPin}
		}
		p, err := s.b.Pin(cfg.FOUTPin)
		if err != nil {
			return errcode.Wrap(errcode.InvalidParams, "config", err)
		}
		fout = p
	}

	trickle, err := parseTrickle(cfg.Trickle)
	if err != nil {
		return err
	}

	dev := ab1805.New(s.b.I2C, ab1805.Config{
		FOUT:           fout,
		Lock:           s.b.Lock,
		Millis:         s.b.Millis,
		Sleep:          s.b.Sleep,
		Restart:        s.b.Restart,
		Clock:          s.b.Clock,
		Notifier:       s,
		Logger:         s.b.Logger,
		FOUTLowInSleep: cfg.FOUTLowInSleep,
		MaxRead:        cfg.MaxRead,
		MaxWrite:       cfg.MaxWrite,
	})
	if err := dev.Setup(); err != nil {
		return err
	}

	if cfg.ResetOnStart {
		var flags ab1805.ResetFlags
		if cfg.PreserveRepeatingTimer {
			flags |= ab1805.ResetPreserveRepeatingTimer
		}
		if cfg.DisableCrystal {
			flags |= ab1805.ResetDisableCrystal
		}
		if err := dev.ResetConfig(flags); err != nil {
			return err
		}
	}
	if err := dev.SetTrickle(trickle); err != nil {
		return err
	}
	if cfg.WatchdogSeconds > 0 {
		if err := dev.SetWDT(cfg.WatchdogSeconds); err != nil {
			return err
		}
	}
	s.dev = dev
	s.log.Infof("ready, watchdog %ds, maintenance every %dms", dev.WatchdogSeconds(), cfg.MaintenanceMs)
	return nil
}

func (s *service) arm() {
	if s.dev == nil {
		return
	}
	if !s.timer.Stop() {
		drainTimer(s.timer)
	}
	period := time.Duration(s.cfg.MaintenanceMs) * time.Millisecond
	// Maintenance feeds the watchdog, so never wait past its tickle point.
	if iv := s.dev.TickleInterval(); iv > 0 {
		period = min(period, iv)
	}
	s.timer.Reset(period)
}

// watchdogChanged republishes state after a verb that may have changed the
// watchdog timeout and re-arms maintenance for the new tickle interval.
func (s *service) watchdogChanged() {
	s.publishState(types.LevelReady, "watchdog_changed", nil)
	s.arm()
}

func (s *service) runResetHooks() {
	if len(s.hooks) == 0 {
		return
	}
	s.log.Infof("system reset announced, running %d hook(s)", len(s.hooks))
	for _, fn := range s.hooks {
		fn()
	}
}

// -----------------------------------------------------------------------------
// Publishing
// -----------------------------------------------------------------------------

func (s *service) publishState(level types.Level, status string, err error) {
	st := types.RTCState{Level: level, Status: status, TS: timex.NowMs()}
	if err != nil {
		st.Error = err.Error()
	}
	if s.dev != nil && level == types.LevelReady {
		if pn, err := s.dev.PartNumber(); err == nil {
			st.PartNumber = pn
		}
		if set, err := s.dev.IsRTCSet(); err == nil {
			st.RTCSet = set
		}
		if rc, err := s.dev.UsingRCOscillator(); err == nil {
			st.RCOscillator = rc
		}
		st.WatchdogSeconds = s.dev.WatchdogSeconds()
	}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

func (s *service) publishWake() {
	if s.dev == nil {
		return
	}
	rep := types.WakeReport{Reason: s.dev.WakeReason().String(), TS: timex.NowMs()}
	s.conn.Publish(s.conn.NewMessage(topicWake, rep, true))
}

func (s *service) replyOK(req *bus.Message, payload any) {
	if len(req.ReplyTo) == 0 {
		return
	}
	if payload == nil {
		payload = types.OKReply{OK: true}
	}
	s.conn.Reply(req, payload, false)
}

func (s *service) replyErr(req *bus.Message, err error) {
	if len(req.ReplyTo) == 0 {
		return
	}
	s.conn.Reply(req, types.ErrorReply{OK: false, Error: string(errcode.Of(err)), Detail: err.Error()}, false)
}
