//go:build linux

// Command ab1805ctl runs the AB1805 rtc service on a Linux host with an
// operator console on stdin.
//
//	ab1805ctl -config /etc/rtcnode.yaml -bus 1 -transport i2cdev
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"time"

	"golang.org/x/sys/unix"

	"rtcnode-go/bus"
	"rtcnode-go/platform"
	"rtcnode-go/services/config"
	"rtcnode-go/services/console"
	"rtcnode-go/services/rtc"
	"rtcnode-go/x/logx"
)

const shutdownTimeout = 2 * time.Second

var log = logx.New("main")

func main() {
	cfgPath := flag.String("config", "", "YAML config file (default: built-in linux config)")
	busName := flag.String("bus", "", "I2C bus, overrides platform.bus")
	transport := flag.String("transport", "", "periph | i2cdev, overrides platform.transport")
	verbose := flag.Bool("v", false, "debug logging")
	flag.Parse()

	if *verbose {
		logx.SetLevel(logx.DebugLevel)
	}
	if err := run(*cfgPath, *busName, *transport); err != nil {
		log.Errorf("%v", err)
		os.Exit(1)
	}
}

func run(cfgPath, busName, transport string) error {
	f, err := config.Load(cfgPath, "linux")
	if err != nil {
		return err
	}
	if busName != "" {
		f.Platform.Bus = busName
	}
	if transport != "" {
		f.Platform.Transport = transport
	}
	f.Raw["platform"] = f.Platform

	h, err := platform.Open(f.Platform)
	if err != nil {
		return err
	}
	defer h.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, unix.SIGTERM)
	defer stop()

	b := bus.NewBus(16)
	config.Publish(b.NewConnection("config"), f)

	done := make(chan struct{})
	go func() {
		rtc.Run(ctx, b.NewConnection("rtc"), h.Bindings())
		close(done)
	}()

	ctl := b.NewConnection("main")
	if h.In != nil {
		if err := console.New(b.NewConnection("console"), h.In, h.Out).Run(ctx); err != nil && ctx.Err() == nil {
			log.Warnf("console: %v", err)
		}
	} else {
		<-ctx.Done()
	}

	// Nothing keeps the watchdog fed once we leave.
	announceReset(ctl)
	stop()
	<-done
	return nil
}

func announceReset(conn *bus.Connection) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if _, err := conn.RequestWait(ctx, conn.NewMessage(bus.T("system", "reset"), nil, false)); err != nil {
		log.Warnf("reset announcement: %v", err)
	}
}
