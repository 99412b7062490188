// Command audiofeed is the capture companion: it reads signed 16-bit
// little-endian stereo PCM from stdin (pipe it from parec or arecord),
// reduces each frame to a normalized amplitude per channel, and writes the
// shaped envelope bytes to the daemon's audio serial port.
//
//	parec --format=s16le --channels=2 | audiofeed -s /dev/ttyUSB1
package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/lightbath/ringpulse/internal/envelope"
	"github.com/spf13/pflag"
	"go.bug.st/serial"
)

var (
	device   = "/dev/ttyUSB1"
	baud     = 9600
	scale    = envelope.DefaultScale
	power    = envelope.DefaultPower
	frameLen = 1024
	verbose  = false
)

func init() {
	pflag.StringVarP(&device, "serial", "s", device, "audio serial port")
	pflag.IntVarP(&baud, "baud", "b", baud, "baud rate")
	pflag.Float64Var(&scale, "scale", scale, "linear amplitude scale")
	pflag.Float64Var(&power, "power", power, "exponential shaping power")
	pflag.IntVar(&frameLen, "frame", frameLen, "samples per channel per envelope byte")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})))

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	port, err := serial.Open(device, &serial.Mode{BaudRate: baud})
	if err != nil {
		return fmt.Errorf("failed to open serial port: %w", err)
	}
	defer port.Close()

	enc := &envelope.Encoder{
		W:       port,
		Scale:   scale,
		Power:   power,
		NumBins: 1,
	}

	slog.Debug("capturing", "serial", device, "baud", baud, "frame", frameLen)
	return pump(bufio.NewReaderSize(os.Stdin, 1<<16), enc)
}

// pump reads stereo PCM frames from r and drives the encoder with one
// amplitude bin per channel per frame.
func pump(r io.Reader, enc *envelope.Encoder) error {
	const channels = 2

	raw := make([]byte, frameLen*channels*2) // 2 bytes per s16le sample
	bins := [][]float64{{0}, {0}}

	for {
		if _, err := io.ReadFull(r, raw); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return fmt.Errorf("failed to read PCM frame: %w", err)
		}

		var left, right float64
		for i := 0; i < len(raw); i += 4 {
			l := int16(binary.LittleEndian.Uint16(raw[i:]))
			rr := int16(binary.LittleEndian.Uint16(raw[i+2:]))
			left += math.Abs(float64(l) / 32768)
			right += math.Abs(float64(rr) / 32768)
		}
		bins[0][0] = left / float64(frameLen)
		bins[1][0] = right / float64(frameLen)

		if err := enc.Write(bins, channels); err != nil {
			return err
		}
	}
}
