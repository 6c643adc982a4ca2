// Package playback loops an animation's frames at the frame duration and
// pushes each one to a sink.
package playback

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/flipdot/flipdot-studio/internal/flipdot"
	"github.com/flipdot/flipdot-studio/internal/metrics"
)

var (
	ErrNoFrames      = errors.New("nothing to play")
	ErrFrameDuration = errors.New("frame duration must be positive")
)

// FrameMessage is one displayed frame.
type FrameMessage struct {
	Type  string   `json:"type"`
	Index int      `json:"index"`
	Total int      `json:"total"`
	Loop  int      `json:"loop"`
	Dots  [][]bool `json:"dots"`
}

// Sink receives frames in display order.
type Sink interface {
	Send(ctx context.Context, msg FrameMessage) error
	Name() string
}

type Player struct {
	Frames        []flipdot.Frame
	FrameDuration time.Duration
	// Loops is the number of full passes to play; 0 plays until the context ends.
	Loops   int
	Sink    Sink
	Logger  *slog.Logger
	Metrics *metrics.Metrics
}

// Run shows frame i, waits one frame duration and advances to (i+1) mod n.
// A single frame is sent once. Run returns nil after the requested loops and
// the context error when cancelled first.
func (p *Player) Run(ctx context.Context) error {
	n := len(p.Frames)
	if n == 0 {
		return ErrNoFrames
	}
	if p.FrameDuration <= 0 {
		return ErrFrameDuration
	}

	if p.Metrics != nil {
		p.Metrics.PlayersActive.Inc()
		defer p.Metrics.PlayersActive.Dec()
	}
	if p.Logger != nil {
		p.Logger.Debug("playback started", "sink", p.Sink.Name(), "frames", n, "loops", p.Loops)
	}

	ticker := time.NewTicker(p.FrameDuration)
	defer ticker.Stop()

	i, loop := 0, 0
	for {
		if err := p.send(ctx, i, loop); err != nil {
			return err
		}
		if n == 1 {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		i = (i + 1) % n
		if i == 0 {
			loop++
			if p.Loops > 0 && loop >= p.Loops {
				if p.Logger != nil {
					p.Logger.Debug("playback finished", "sink", p.Sink.Name(), "loops", loop)
				}
				return nil
			}
		}
	}
}

func (p *Player) send(ctx context.Context, i, loop int) error {
	msg := FrameMessage{
		Type:  "frame",
		Index: i,
		Total: len(p.Frames),
		Loop:  loop,
		Dots:  p.Frames[i].Dots,
	}
	if err := p.Sink.Send(ctx, msg); err != nil {
		return err
	}
	if p.Metrics != nil {
		p.Metrics.FramesSent.WithLabelValues(p.Sink.Name()).Inc()
	}
	return nil
}
