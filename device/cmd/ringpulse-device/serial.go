package main

import (
	"io"
	"machine"
	"runtime"
	"time"
)

// SerialReadWriter is the byte-stream surface both controller links expose:
// the USB CDC link to the daemon and the UART from the IR decoder.
type SerialReadWriter interface {
	io.ReadWriter
	ReadByte() (byte, error)
	WriteByte(byte) error
	// Buffered returns how many received bytes are waiting.
	Buffered() int
}

// uartIO adapts a machine.Serialer so the packet codec can run over it.
// Reads drain only what is already buffered and never spin; an empty buffer
// costs a one-millisecond sleep so the poll loop stays cheap.
type uartIO struct {
	machine.Serialer
}

// WrapSerial wraps a machine.Serialer for use as a SerialReadWriter.
func WrapSerial(s machine.Serialer) SerialReadWriter {
	return uartIO{Serialer: s}
}

func (u uartIO) Read(b []byte) (int, error) {
	n := u.Buffered()
	if n == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	if n > len(b) {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := u.ReadByte()
		if err != nil {
			return i, err
		}
		b[i] = c
	}
	runtime.Gosched()
	return n, nil
}

func (u uartIO) Write(b []byte) (int, error) {
	for i, c := range b {
		if err := u.WriteByte(c); err != nil {
			return i, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}
