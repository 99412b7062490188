package main

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// statusLED drives the XIAO RP2040's onboard neopixel as a link-activity
// light: white while a host packet is in flight, green while an IR code is
// relayed upstream.
type statusLED struct {
	dev   ws2812.Device
	power machine.Pin
	ready bool
}

var activity statusLED

func (l *statusLED) init() {
	if l.ready {
		return
	}

	// Power gate and data pin of the onboard pixel, per the Seeed wiring.
	// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
	l.power = machine.GPIO11
	l.power.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.power.Low()

	machine.GPIO12.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.dev = ws2812.New(machine.GPIO12)

	l.ready = true
}

func (l *statusLED) set(r, g, b uint8) {
	l.init()
	l.power.High()
	l.dev.WriteByte(r)
	l.dev.WriteByte(g)
	l.dev.WriteByte(b)
}

func (l *statusLED) off() {
	l.init()
	l.power.Low()
}
