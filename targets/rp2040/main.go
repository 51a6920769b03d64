//go:build rp2040

package main

import (
	"context"
	_ "embed"
	"machine"
	"time"

	"pidmotor/config"
	"pidmotor/core"
)

//go:embed motor.json
var motorConfig []byte

const (
	counterPIO = 0
	counterSM  = 0
)

func main() {
	// Disable a watchdog left running from a previous boot
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	cfg, err := config.LoadConfig(motorConfig)
	if err != nil {
		halt()
	}

	InitClock()

	// Fault reports and timing dumps go to the default serial console
	core.SetDebugWriter(func(s string) {
		machine.Serial.Write([]byte(s + "\r\n"))
	})
	core.SetDebugEnabled(true)
	core.InitAsyncDebug()

	core.SetGPIODriver(NewRPGPIODriver())
	core.SetPWMDriver(NewRP2040PWMDriver())

	// Running headless is fine if the LCD is missing
	if lcd, err := NewLCDDisplay(16, 2); err == nil {
		core.SetDisplayDriver(lcd)
	}

	loop := core.NewLoop(*cfg)
	loop.SetTimeSource(GetHardwareTime)

	if cfg.EncoderMode == core.EncoderExternal {
		counter := NewPIOEdgeCounter(counterPIO, counterSM)
		if err := counter.Init(machine.Pin(cfg.EncoderPin)); err != nil {
			halt()
		}
		loop.SetPulseSource(counter)
	}

	if err := loop.Init(); err != nil {
		core.DebugPrintln("init: " + err.Error())
		halt()
	}

	// Run only returns when the context ends
	loop.Run(context.Background())
}

// halt parks the CPU after a fatal setup error, blinking the LED
func halt() {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for {
		led.Set(!led.Get())
		time.Sleep(200 * time.Millisecond)
	}
}
