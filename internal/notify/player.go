// Package notify implements the delivery sinks: the in-app notification
// center published over the bus, and the native OS path with its chime.
package notify

import (
	"bytes"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/thamdi/focusd/internal/logger"
)

// Audio output format for the chime.
const (
	sampleRate   = 44100
	channelCount = 1
)

// Player handles audio playback of PCM data via oto.
type Player struct {
	ctx    *oto.Context
	log    *logger.Logger
	mu     sync.Mutex
	active *oto.Player // currently playing, nil when idle
}

// NewPlayer creates an audio player. Initializes the system audio context.
// Returns an error if the audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", sampleRate, channelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Chime plays the notification chime synchronously. Blocks until playback
// finishes or Stop is called.
func (p *Player) Chime() error {
	return p.play(chimePCM())
}

// play plays raw signed-int16 PCM data.
func (p *Player) play(pcm []byte) error {
	player := p.ctx.NewPlayer(bytes.NewReader(pcm))

	p.mu.Lock()
	p.active = player
	p.mu.Unlock()

	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	// Wait for playback to complete or be interrupted.
	for player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}

	p.mu.Lock()
	p.active = nil
	p.mu.Unlock()

	return player.Close()
}

// Stop interrupts the currently playing audio, if any. Safe to call
// concurrently and when nothing is playing.
func (p *Player) Stop() {
	p.mu.Lock()
	active := p.active
	p.mu.Unlock()

	if active != nil {
		active.Pause()
		p.log.Debug("audio player: interrupted")
	}
}

// chimePCM synthesizes the two-note chime: a short A5 followed by E5, each
// with a linear decay so the notes don't click.
func chimePCM() []byte {
	notes := []struct {
		freq float64
		dur  time.Duration
	}{
		{880.0, 120 * time.Millisecond},
		{659.3, 160 * time.Millisecond},
	}

	var buf bytes.Buffer
	for _, n := range notes {
		samples := int(float64(sampleRate) * n.dur.Seconds())
		for i := 0; i < samples; i++ {
			envelope := 1.0 - float64(i)/float64(samples)
			v := math.Sin(2*math.Pi*n.freq*float64(i)/sampleRate) * envelope * 0.4
			s := int16(v * math.MaxInt16)
			buf.WriteByte(byte(s))
			buf.WriteByte(byte(s >> 8))
		}
	}
	return buf.Bytes()
}
