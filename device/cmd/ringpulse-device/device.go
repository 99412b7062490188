package main

import (
	"fmt"
	"machine"
	"time"

	"github.com/lightbath/ringpulse/ledserial"
	"tinygo.org/x/drivers/ws2812"
)

// Device stores the current state of the controller.
type Device struct {
	host SerialReadWriter
	ir   SerialReadWriter
	led  ws2812.Device

	numLEDs uint16
}

// NewDevice creates a new device. host carries the framed daemon link, ir
// delivers decoded 4-byte remote codes, and ledPin drives the strip.
func NewDevice(host machine.Serialer, ir machine.Serialer, ledPin machine.Pin) *Device {
	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	return &Device{
		host: WrapSerial(host),
		ir:   WrapSerial(ir),
		led:  ws2812.New(ledPin),
	}
}

// Run runs the controller loop forever. Packet reads and IR forwarding are
// polled from the same loop; nothing here blocks without buffered data
// except mid-packet reads.
func (d *Device) Run() {
	for {
		switch {
		case d.host.Buffered() > 0:
			p, err := d.readPacket()
			if err != nil {
				d.logError(err)
				continue
			}
			if err := d.handlePacket(p); err != nil {
				d.logError(err)
			}

		case d.ir.Buffered() >= 4:
			d.forwardRemoteCode()

		default:
			time.Sleep(time.Millisecond)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.DevicePacket) {
	ledserial.WriteDevicePacket(d.host, p)
}

func (d *Device) readPacket() (ledserial.HostPacket, error) {
	activity.set(255, 255, 255)

	p, err := ledserial.ReadHostPacket(d.host, ledserial.ReadContext{
		NumLEDs: d.numLEDs,
	})

	activity.off()
	return p, err
}

func (d *Device) handlePacket(p ledserial.HostPacket) error {
	switch p := p.(type) {
	case ledserial.InitializePacket:
		if p.NumLEDs < 1 {
			return fmt.Errorf("invalid number of LEDs: %d", p.NumLEDs)
		}
		d.numLEDs = p.NumLEDs
		d.clearLEDs(true)
		d.log("strip initialized")

	case ledserial.ClearPacket:
		d.clearLEDs(false)

	case ledserial.FramePacket:
		for _, b := range p.Pix {
			d.led.WriteByte(b)
		}

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	d.sendPacket(ledserial.AckPacket{For: p.Type()})
	return nil
}

// forwardRemoteCode relays one little-endian 32-bit code from the IR decoder
// to the daemon.
func (d *Device) forwardRemoteCode() {
	activity.set(0, 255, 0)
	defer activity.off()

	var code uint32
	for i := 0; i < 4; i++ {
		b, err := d.ir.ReadByte()
		if err != nil {
			d.logError(err)
			return
		}
		code |= uint32(b) << (8 * i)
	}
	d.sendPacket(ledserial.RemotePacket{Code: code})
}

func (d *Device) clearLEDs(signalReady bool) {
	var i uint16

	if signalReady {
		writeLEDRGB(d.led, 255, 0, 0) // red
		i++
	}

	for ; i+1 < d.numLEDs; i++ {
		writeLEDRGB(d.led, 0, 0, 0)
	}

	if signalReady {
		writeLEDRGB(d.led, 0, 0, 255) // blue
	} else {
		writeLEDRGB(d.led, 0, 0, 0)
	}
}

func writeLEDRGB(led ws2812.Device, r, g, b uint8) {
	led.WriteByte(r)
	led.WriteByte(g)
	led.WriteByte(b)
}
