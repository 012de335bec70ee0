//go:build rp2040 || rp2350

// Command pico-rtc is the RP2 firmware: the rtc service with a UART
// console.
package main

import (
	"context"
	"time"

	"rtcnode-go/bus"
	"rtcnode-go/platform"
	"rtcnode-go/services/config"
	"rtcnode-go/services/console"
	"rtcnode-go/services/rtc"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	println("[main] boot")

	f, err := config.Load("", "pico")
	if err != nil {
		println("[main] config:", err.Error())
		return
	}
	h, err := platform.Open(f.Platform)
	if err != nil {
		println("[main] platform:", err.Error())
		return
	}

	ctx := context.Background()
	b := bus.NewBus(8)
	config.Publish(b.NewConnection("config"), f)

	svc := &rtc.Service{B: h.Bindings()}
	_ = svc.Start(ctx, b.NewConnection("rtc"))

	if h.In != nil {
		console.New(b.NewConnection("console"), h.In, h.Out).Start(ctx)
	}

	// Periodic stats.
	tick := time.NewTicker(10 * time.Second)
	defer tick.Stop()
	for t := range tick.C {
		println("[main]", t.Format("15:04:05"), "alive")
	}
}
