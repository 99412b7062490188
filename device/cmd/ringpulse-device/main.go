// Firmware for the strip controller (Seeed XIAO RP2040). It receives framed
// pixel packets from the daemon over USB serial, pushes them to the ws2812
// strip, and forwards decoded IR remote codes from the decoder UART back to
// the daemon.
package main

import (
	"machine"
	"time"
)

func main() {
	// Give the USB CDC a moment to enumerate before the first write.
	time.Sleep(500 * time.Millisecond)

	irUART := machine.UART0
	irUART.Configure(machine.UARTConfig{
		BaudRate: 9600,
		TX:       machine.UART0_TX_PIN,
		RX:       machine.UART0_RX_PIN,
	})

	d := NewDevice(machine.Serial, irUART, machine.GPIO26)
	d.Run()
}
