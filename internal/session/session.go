// Package session wires the weight map builder and the accumulator into a
// per-frame blending session.
package session

import (
	"fmt"
	"image"
	"time"

	"multiview-blend/internal/blend"
	"multiview-blend/internal/config"
	"multiview-blend/internal/errs"
	"multiview-blend/internal/logging"
	"multiview-blend/internal/weightmap"
)

// Session holds the weight maps built at setup and the accumulator reused
// for every frame.
type Session struct {
	cfg     config.Config
	weights *weightmap.Set
	acc     *blend.Accumulator
	frames  int
}

// New validates cfg and builds the weight maps from one coverage mask per
// view.
func New(cfg config.Config, masks []*image.Gray) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}

	opts := []weightmap.Option{weightmap.WithWorkers(cfg.Workers)}
	if cfg.Sharpness > 0 {
		opts = append(opts, weightmap.WithSharpness(cfg.Sharpness))
	}
	builder, err := weightmap.NewBuilder(cfg.Canvas, opts...)
	if err != nil {
		return nil, err
	}
	weights, err := builder.BuildAll(masks, cfg.ViewCount)
	if err != nil {
		return nil, fmt.Errorf("failed to build weight maps: %w", err)
	}
	return NewWithWeights(cfg, weights)
}

// NewWithWeights creates a Session from weight maps computed elsewhere.
func NewWithWeights(cfg config.Config, weights *weightmap.Set) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid session config: %w", err)
	}
	if weights == nil {
		return nil, errs.Precondition("missing weight maps")
	}
	if weights.ViewCount() != cfg.ViewCount || weights.Canvas() != cfg.Canvas {
		return nil, errs.Precondition("weight maps (%d views on %v) do not match config (%d views on %v)",
			weights.ViewCount(), weights.Canvas(), cfg.ViewCount, cfg.Canvas)
	}
	acc, err := blend.New(weights, blend.WithWorkers(cfg.Workers))
	if err != nil {
		return nil, err
	}
	return &Session{cfg: cfg, weights: weights, acc: acc}, nil
}

// Config returns the session configuration.
func (s *Session) Config() config.Config { return s.cfg }

// Weights returns the weight maps built at setup.
func (s *Session) Weights() *weightmap.Set { return s.weights }

// Frames returns the number of frames blended so far.
func (s *Session) Frames() int { return s.frames }

// BlendFrame blends one warped image per view over the configured ROI.
func (s *Session) BlendFrame(images []image.Image) (*image.RGBA, *image.Gray, error) {
	start := time.Now()
	if err := s.acc.PrepareAndFeed(s.cfg.DestinationROI(), images); err != nil {
		return nil, nil, fmt.Errorf("frame %d: %w", s.frames, err)
	}
	dst, mask, err := s.acc.Finish()
	if err != nil {
		return nil, nil, fmt.Errorf("frame %d: %w", s.frames, err)
	}
	logging.Logger().Debug("frame blended", "frame", s.frames, "elapsed", time.Since(start))
	s.frames++
	return dst, mask, nil
}
