// Package voice turns spoken commands into text using a local Whisper
// model, for when both hands are on the bar.
package voice

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottolift/internal/logger"
)

// earState represents the Ear's listening mode.
type earState int

const (
	// earDormant records short clips and only reacts to a wake word.
	earDormant earState = iota
	// earListening captures a command until silence or timeout.
	earListening
)

var defaultWakeWords = []string{
	"hey otto",
	"hey, otto",
	"okay otto",
	"coach",
	"otto",
}

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each active-listening chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithWakeWords overrides the default wake phrases.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) { e.wakeWords = words }
}

// WithListenTimeout caps a single listening window.
func WithListenTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.listenTimeout = d }
}

// WithOnWake sets a callback run when the ear starts listening.
func WithOnWake(fn func()) EarOption {
	return func(e *Ear) { e.onWake = fn }
}

// Ear records short clips and forwards commands that follow a wake word,
// or anything said after Listen is called (push-to-talk).
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger
	onWake     func()

	wakeWords       []string
	recordDuration  time.Duration
	dormantDuration time.Duration
	listenTimeout   time.Duration

	mu     sync.Mutex
	muted  bool
	state  earState
	textCh chan string
}

// NewEar creates a listener backed by whisper-cli and a GGML model.
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:      whisperBin,
		modelPath:       modelPath,
		tempDir:         ".ottolift-stt",
		log:             log,
		wakeWords:       defaultWakeWords,
		recordDuration:  2 * time.Second,
		dormantDuration: 3 * time.Second,
		listenTimeout:   10 * time.Second,
		state:           earDormant,
		textCh:          make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Error("whisper binary %q not found in PATH: %v", e.whisperBin, err)
	}
	return e
}

// C returns the channel that receives transcribed commands.
func (e *Ear) C() <-chan string {
	return e.textCh
}

// Listen switches to active listening without a wake word.
func (e *Ear) Listen() {
	e.setState(earListening)
}

// Mute pauses recording, e.g. while a chime plays.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
}

// Unmute resumes recording.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
}

func (e *Ear) isMuted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Ear) getState() earState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func (e *Ear) setState(s earState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

// Run is the listening loop. Blocks until ctx is cancelled.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("started (dormant=%s, active=%s, wake=%v)", e.dormantDuration, e.recordDuration, e.wakeWords)

	for {
		select {
		case <-ctx.Done():
			e.log.Info("stopped")
			return
		default:
		}

		if e.isMuted() {
			time.Sleep(200 * time.Millisecond)
			continue
		}

		switch e.getState() {
		case earDormant:
			e.doDormant(ctx)
		case earListening:
			e.doListening(ctx)
		}
	}
}

func (e *Ear) doDormant(ctx context.Context) {
	text := cleanTranscription(e.recordChunk(ctx, e.dormantDuration))
	if text == "" {
		return
	}
	e.log.Debug("dormant: heard %q", text)

	rest := stripWakeWord(text, e.wakeWords)
	if rest == "" {
		return
	}
	e.log.Info("wake word in %q", text)

	// "hey otto done 100 by 5" in one breath.
	if rest = strings.TrimSpace(cleanTranscription(rest)); rest != "" {
		e.emit(ctx, rest)
		return
	}
	e.setState(earListening)
}

func (e *Ear) doListening(ctx context.Context) {
	if e.onWake != nil {
		e.onWake()
	}
	e.log.Debug("listening")

	// Before the user starts talking, allow more silence. Once they have
	// started, a shorter gap means they are done.
	const graceEmpty = 3
	const postSpeechEmpty = 1

	deadline := time.After(e.listenTimeout)
	var parts []string
	emptyRuns := 0
	heard := false

listen:
	for {
		select {
		case <-ctx.Done():
			e.setState(earDormant)
			return
		case <-deadline:
			e.log.Debug("listen timeout")
			break listen
		default:
		}

		chunk := cleanTranscription(e.recordChunk(ctx, e.recordDuration))
		if chunk == "" {
			emptyRuns++
			limit := graceEmpty
			if heard {
				limit = postSpeechEmpty
			}
			if emptyRuns >= limit {
				break listen
			}
			continue
		}
		emptyRuns = 0
		heard = true
		if rest := stripWakeWord(chunk, e.wakeWords); rest != "" {
			chunk = strings.TrimSpace(rest)
		}
		if chunk != "" {
			parts = append(parts, chunk)
		}
	}

	e.setState(earDormant)
	if combined := strings.TrimSpace(strings.Join(parts, " ")); combined != "" {
		e.emit(ctx, combined)
	}
}

func (e *Ear) emit(ctx context.Context, text string) {
	e.log.Info("heard command %q", text)
	select {
	case e.textCh <- text:
	case <-ctx.Done():
	}
}

// recordChunk records for duration and returns the transcription.
func (e *Ear) recordChunk(ctx context.Context, duration time.Duration) string {
	var result string
	var wg sync.WaitGroup
	wg.Add(1)

	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(e.whisperBin, e.modelPath, e.tempDir, "wav", callback, verbose)
	if err != nil {
		e.log.Error("transcriber init failed: %v", err)
		time.Sleep(2 * time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		e.log.Error("recording start failed: %v", err)
		time.Sleep(2 * time.Second)
		return ""
	}

	select {
	case <-time.After(duration):
	case <-ctx.Done():
	}
	t.Stop()
	wg.Wait()
	return result
}
