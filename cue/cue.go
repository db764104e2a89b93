// Package cue plays short audible cues for the run lifecycle so a player can
// hear that a combo started or stopped without looking at the window.
package cue

import (
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/vorbis"
)

// SampleRate is the output rate of the speaker.
const SampleRate beep.SampleRate = 44100

// Event names a cue. The values double as the keys of the [audio.cues]
// settings table.
type Event string

const (
	Started   Event = "started"
	Completed Event = "completed"
	Cancelled Event = "cancelled"
	Failed    Event = "failed"
)

// Events lists every cue.
func Events() []Event {
	return []Event{Started, Completed, Cancelled, Failed}
}

type note struct {
	freq float64
	dur  time.Duration
}

var tones = map[Event][]note{
	Started:   {{880, 40 * time.Millisecond}},
	Completed: {{660, 50 * time.Millisecond}, {990, 70 * time.Millisecond}},
	Cancelled: {{440, 120 * time.Millisecond}},
	Failed:    {{220, 90 * time.Millisecond}, {165, 160 * time.Millisecond}},
}

const noteGap = 15 * time.Millisecond

// Player turns lifecycle notifications into sounds. It satisfies
// engine.Observer.
type Player struct {
	sr   beep.SampleRate
	play func(beep.Streamer)

	mu      sync.Mutex
	enabled bool
	buffers map[Event]*beep.Buffer
}

// New returns a player writing to the system speaker, initializing it. If the
// speaker cannot be opened the player is returned disabled together with the
// error.
func New() (*Player, error) {
	p := newPlayer(SampleRate, func(s beep.Streamer) { speaker.Play(s) })
	if err := speaker.Init(SampleRate, SampleRate.N(time.Second/10)); err != nil {
		p.SetEnabled(false)
		return p, fmt.Errorf("cue: %w", err)
	}
	return p, nil
}

func newPlayer(sr beep.SampleRate, play func(beep.Streamer)) *Player {
	return &Player{sr: sr, play: play, enabled: true, buffers: make(map[Event]*beep.Buffer)}
}

// SetEnabled turns the cues on or off.
func (p *Player) SetEnabled(on bool) {
	p.mu.Lock()
	p.enabled = on
	p.mu.Unlock()
}

// Enabled reports whether cues are played.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Load decodes an Ogg Vorbis file to replace the tone of ev.
func (p *Player) Load(ev Event, rc io.ReadCloser) error {
	if _, ok := tones[ev]; !ok {
		rc.Close()
		return fmt.Errorf("cue: unknown event %q", ev)
	}
	streamer, format, err := vorbis.Decode(rc)
	if err != nil {
		rc.Close()
		return fmt.Errorf("cue: decode %s: %w", ev, err)
	}
	defer streamer.Close()

	var s beep.Streamer = streamer
	if format.SampleRate != p.sr {
		s = beep.Resample(4, format.SampleRate, p.sr, streamer)
	}
	buffer := beep.NewBuffer(beep.Format{SampleRate: p.sr, NumChannels: format.NumChannels, Precision: format.Precision})
	buffer.Append(s)

	p.mu.Lock()
	p.buffers[ev] = buffer
	p.mu.Unlock()
	return nil
}

// Play sounds the cue for ev.
func (p *Player) Play(ev Event) {
	p.mu.Lock()
	enabled := p.enabled
	buffer := p.buffers[ev]
	p.mu.Unlock()
	if !enabled {
		return
	}

	var s beep.Streamer
	if buffer != nil {
		s = buffer.Streamer(0, buffer.Len())
	} else {
		var err error
		if s, err = p.tone(ev); err != nil {
			log.Printf("Cue %s: %v", ev, err)
			return
		}
	}
	p.play(s)
}

func (p *Player) tone(ev Event) (beep.Streamer, error) {
	notes, ok := tones[ev]
	if !ok {
		return nil, fmt.Errorf("unknown event %q", ev)
	}
	var parts []beep.Streamer
	for i, n := range notes {
		if i > 0 {
			parts = append(parts, beep.Silence(p.sr.N(noteGap)))
		}
		sine, err := generators.SineTone(p.sr, n.freq)
		if err != nil {
			return nil, err
		}
		parts = append(parts, beep.Take(p.sr.N(n.dur), sine))
	}
	return &effects.Volume{Streamer: beep.Seq(parts...), Base: 2, Volume: -2}, nil
}

func (p *Player) OnStarted(profile, slot string) { p.Play(Started) }
func (p *Player) OnProgress(slot string)         {}
func (p *Player) OnCompleted()                   { p.Play(Completed) }
func (p *Player) OnCancelled()                   { p.Play(Cancelled) }
func (p *Player) OnFailed(reason string)         { p.Play(Failed) }
func (p *Player) OnIdle()                        {}
