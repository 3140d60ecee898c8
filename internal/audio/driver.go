// Package audio drives the sound device: a silent keep-alive loop while
// timers run, and a short chime when one finishes.
package audio

import (
	"bytes"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Output format shared by the keep-alive loop and the chime.
const (
	SampleRate   = 24000
	ChannelCount = 1
)

// Compile-time interface checks.
var (
	_ domain.AudioKeepAlive = (*OtoDriver)(nil)
	_ domain.AudioKeepAlive = NoOp{}
)

// Option configures the driver.
type Option func(*OtoDriver)

// WithChimeWAV replaces the generated chime with a WAV file's PCM data.
func WithChimeWAV(wav []byte) Option {
	return func(d *OtoDriver) {
		pcm, err := extractPCM(wav)
		if err != nil {
			d.log.Warn("chime wav rejected, keeping the default tone: %v", err)
			return
		}
		d.chime = pcm
	}
}

// OtoDriver plays through the system audio device via oto.
type OtoDriver struct {
	ctx   *oto.Context
	log   *logger.Logger
	chime []byte

	mu        sync.Mutex
	keepAlive *oto.Player // looping silence, nil until first activation
	active    bool
}

// NewOtoDriver initializes the system audio context. Returns an error if
// the audio device is unavailable.
func NewOtoDriver(log *logger.Logger, opts ...Option) (*OtoDriver, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	d := &OtoDriver{ctx: ctx, log: log, chime: Tone(880, 150*time.Millisecond, 2)}
	for _, opt := range opts {
		opt(d)
	}
	log.Debug("audio initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return d, nil
}

// SetActive starts or pauses the silent keep-alive loop.
func (d *OtoDriver) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if active == d.active {
		return
	}
	d.active = active

	if active {
		if d.keepAlive == nil {
			d.keepAlive = d.ctx.NewPlayer(silence{})
			d.keepAlive.SetVolume(0)
		}
		d.keepAlive.Play()
		d.log.Debug("keep-alive on")
		return
	}
	if d.keepAlive != nil {
		d.keepAlive.Pause()
		d.log.Debug("keep-alive off")
	}
}

// Chime plays the finish sound. Blocks until it ends.
func (d *OtoDriver) Chime() error {
	player := d.ctx.NewPlayer(bytes.NewReader(d.chime))
	player.Play()

	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
	return player.Close()
}

// Close stops the keep-alive loop.
func (d *OtoDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.active = false
	if d.keepAlive == nil {
		return nil
	}
	err := d.keepAlive.Close()
	d.keepAlive = nil
	return err
}

// silence is an endless stream of zero samples.
type silence struct{}

func (silence) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// NoOp is used when audio is disabled or the device is missing.
type NoOp struct{}

// SetActive does nothing.
func (NoOp) SetActive(bool) {}

// Chime does nothing.
func (NoOp) Chime() error { return nil }
