// Package ringpulse drives the LED ring installation: one control loop
// multiplexing the IR remote, the audio envelope stream, and the frame clock
// against a single shared pixel buffer.
package ringpulse

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/lightbath/ringpulse/internal/audio"
	"github.com/lightbath/ringpulse/internal/hue"
	"github.com/lightbath/ringpulse/internal/led"
	"github.com/lightbath/ringpulse/internal/modes"
	"github.com/lightbath/ringpulse/internal/remote"
	"github.com/lightbath/ringpulse/ledserial"
	"github.com/pkg/errors"
	"go.bug.st/serial"
	"golang.org/x/sync/errgroup"
)

// Daemon is the main ringpulse daemon.
type Daemon struct {
	cfg    *Config
	logger *slog.Logger
}

// NewDaemon creates a new ringpulse daemon.
func NewDaemon(cfg *Config, logger *slog.Logger) (*Daemon, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &Daemon{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// Run starts the daemon. It blocks until the given context is canceled.
func (d *Daemon) Run(ctx context.Context) error {
	return (&internalDaemon{Daemon: d}).Run(ctx)
}

type internalDaemon struct {
	*Daemon
	strip serial.Port // framed link to the strip controller
	audio serial.Port // raw envelope bytes from the capture companion

	frames io.Writer // frame commit sink; the strip port in production
	leds   led.Strip
	state  *modes.State
}

func (d *internalDaemon) Run(ctx context.Context) error {
	strip, err := serial.Open(d.cfg.Strip.Device, &serial.Mode{
		BaudRate: d.cfg.Strip.Baud,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open strip serial port")
	}
	defer strip.Close()

	audioPort, err := serial.Open(d.cfg.Audio.Device, &serial.Mode{
		BaudRate: d.cfg.Audio.Baud,
	})
	if err != nil {
		return errors.Wrap(err, "failed to open audio serial port")
	}
	defer audioPort.Close()

	d.strip = strip
	d.audio = audioPort
	d.frames = strip

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		<-ctx.Done()
		d.logger.Debug("closing serial ports")
		if err := strip.Close(); err != nil {
			return errors.Wrap(err, "failed to close strip serial port")
		}
		if err := audioPort.Close(); err != nil {
			return errors.Wrap(err, "failed to close audio serial port")
		}
		return ctx.Err()
	})

	remoteCodes := make(chan remote.Code, 8)
	envelope := make(chan uint8, 64)

	errg.Go(func() error {
		return d.readPackets(ctx, remoteCodes)
	})
	errg.Go(func() error {
		return d.readEnvelope(ctx, envelope)
	})
	errg.Go(func() error {
		return d.mainLoop(ctx, remoteCodes, envelope)
	})

	return errg.Wait()
}

func (d *internalDaemon) mainLoop(ctx context.Context, codes <-chan remote.Code, envelope <-chan uint8) error {
	d.logger.Debug("waiting 100ms for the read loop to start...")
	time.Sleep(100 * time.Millisecond)

	d.logger.Debug("sending initialize packet")
	if err := ledserial.WriteHostPacket(d.strip, ledserial.InitializePacket{
		NumLEDs: uint16(led.StripLen),
	}); err != nil {
		return errors.Wrap(err, "failed to initialize strip")
	}

	statics, err := d.cfg.StaticPixels()
	if err != nil {
		return err
	}

	d.leds = led.NewStrip()
	d.state = &modes.State{
		Status: modes.StatusOn,
		Mode:   modes.ModeBoot,
		Preset: d.cfg.Preset,
	}

	engine := &modes.Engine{
		Strip:    d.leds,
		State:    d.state,
		Sampler:  &audio.Sampler{},
		Wheel:    hue.NewWheel(),
		Statics:  statics,
		Commit:   d.commit,
		Sleep:    time.Sleep,
		BootStep: time.Duration(d.cfg.BootStepDelay),
	}

	dispatcher := &remote.Dispatcher{
		State:   d.state,
		Logger:  d.logger,
		Preview: d.previewCeiling,
		Sleep:   time.Sleep,
		Quiet:   time.Duration(d.cfg.QuietPeriod),
	}

	ticker := time.NewTicker(time.Second / time.Duration(d.cfg.Rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case code := <-codes:
			// The quiet period inside Handle intentionally stalls the loop;
			// remote presses are rare next to frame ticks.
			dispatcher.Handle(code)

		case <-ticker.C:
			sample, ok := drainLatest(envelope)
			if err := engine.Tick(sample, ok); err != nil {
				return err
			}
			if err := d.commit(); err != nil {
				return err
			}
		}
	}
}

// drainLatest empties the envelope channel and keeps only the newest byte,
// so a slow tick never replays stale audio.
func drainLatest(ch <-chan uint8) (uint8, bool) {
	var latest uint8
	ok := false
	for {
		select {
		case b := <-ch:
			latest, ok = b, true
		default:
			return latest, ok
		}
	}
}

// commit clamps the buffer to the active brightness preset and transmits it.
// All hardware writes funnel through here, so a frame can never reach the
// strip unclamped.
func (d *internalDaemon) commit() error {
	ceiling := led.PresetCeilings[d.state.Preset]
	d.leds.ClampBrightness(ceiling, led.AccentCeiling(ceiling))

	if err := ledserial.WriteHostPacket(d.frames, ledserial.FramePacket{
		Pix: d.leds.AsPixels(),
	}); err != nil {
		return errors.Wrap(err, "failed to write frame packet")
	}
	return nil
}

// previewCeiling lights the accent rail at the new preset's ceiling so a
// brightness change is visible before the dispatcher turns the strip off.
func (d *internalDaemon) previewCeiling(preset int) {
	d.leds.Clear()
	d.leds.Fill(led.AccentStart, led.AccentEnd, led.Pixel{255, 255, 255})

	ceiling := led.PresetCeilings[preset]
	d.leds.ClampBrightness(ceiling, led.AccentCeiling(ceiling))

	if err := ledserial.WriteHostPacket(d.frames, ledserial.FramePacket{
		Pix: d.leds.AsPixels(),
	}); err != nil {
		d.logger.Warn("failed to write preview frame", "error", err)
		return
	}

	time.Sleep(time.Duration(d.cfg.PreviewHold))
	d.leds.Clear()
}

func (d *internalDaemon) readPackets(ctx context.Context, codes chan<- remote.Code) error {
	if err := d.strip.SetReadTimeout(serial.NoTimeout); err != nil {
		return errors.Wrap(err, "failed to reset read timeout")
	}

	readCtx := ledserial.ReadContext{NumLEDs: uint16(led.StripLen)}

	for ctx.Err() == nil {
		p, err := ledserial.ReadDevicePacket(d.strip, readCtx)
		if err != nil {
			// A short read indicates a timeout. This is expected.
			// Ignore the error and try again.
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read packet")
		}

		switch p := p.(type) {
		case ledserial.AckPacket:
			d.logger.Debug("controller acked", "acked_for", p.For)

		case ledserial.RemotePacket:
			d.logger.Debug("remote code received", "code", p.Code)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case codes <- remote.Code(p.Code):
			}

		case ledserial.LogPacket:
			d.logger.Info("controller log", "message", p.Message)

		case ledserial.ErrorPacket:
			d.logger.Warn("controller reported error", "message", p.Message)

		case ledserial.PanicPacket:
			return errors.New("controller unrecoverably panicked")

		default:
			return errors.Errorf("received unknown packet from controller: %s", p.Type())
		}
	}

	return ctx.Err()
}

// readEnvelope pumps raw envelope bytes into the channel. The stream has no
// framing; a byte is a sample. When the loop falls behind, bytes are dropped
// here rather than blocking the read.
func (d *internalDaemon) readEnvelope(ctx context.Context, envelope chan<- uint8) error {
	buf := make([]byte, 64)
	for ctx.Err() == nil {
		n, err := d.audio.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) {
				continue
			}
			return errors.Wrap(err, "failed to read envelope stream")
		}
		for _, b := range buf[:n] {
			select {
			case envelope <- b:
			default:
				// Loop is behind; newest data wins at drain time anyway.
			}
		}
	}
	return ctx.Err()
}
