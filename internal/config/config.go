// Package config provides the JSON session configuration of a blending session.
package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"multiview-blend/internal/blend"
	"multiview-blend/internal/errs"
	"multiview-blend/pkg/geometry"
)

// Environment variables that override values read from a file.
const (
	EnvWorkers   = "MVBLEND_WORKERS"
	EnvSharpness = "MVBLEND_SHARPNESS"
)

// Config is fixed for the lifetime of a session.
type Config struct {
	// ViewCount is the number of camera views.
	ViewCount int `json:"view_count"`
	// Canvas is the shared canvas every mask, weight map and image is
	// aligned to.
	Canvas geometry.Rect `json:"canvas"`
	// ROI is the destination region blended each frame. The zero Rect
	// means the whole canvas.
	ROI geometry.Rect `json:"roi"`
	// Sharpness overrides the weight falloff derived from the canvas
	// area when positive.
	Sharpness float32 `json:"sharpness,omitempty"`
	// Workers bounds blending parallelism; 0 means one per CPU.
	Workers int `json:"workers,omitempty"`
}

// Load reads a Config from a JSON file and applies environment overrides.
func Load(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("failed to read config: %w", err)
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := c.ApplyEnv(); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes the Config as indented JSON, creating parent directories.
func (c Config) Save(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides Workers and Sharpness from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	if v := os.Getenv(EnvSharpness); v != "" {
		s, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvSharpness, err)
		}
		c.Sharpness = float32(s)
	}
	return nil
}

// DestinationROI returns ROI, or the canvas when ROI is unset.
func (c Config) DestinationROI() geometry.Rect {
	if c.ROI == (geometry.Rect{}) {
		return c.Canvas
	}
	return c.ROI
}

// Validate checks the configuration before any buffer is allocated.
func (c Config) Validate() error {
	if err := blend.CheckViewCount(c.ViewCount); err != nil {
		return err
	}
	if c.Canvas.Empty() {
		return errs.Precondition("empty canvas %v", c.Canvas)
	}
	roi := c.DestinationROI()
	if roi.Area() <= 0 {
		return errs.Precondition("destination ROI %v has no area", roi)
	}
	if !roi.In(c.Canvas) {
		return errs.Precondition("destination ROI %v outside canvas %v", roi, c.Canvas)
	}
	s := float64(c.Sharpness)
	if s < 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		return errs.Precondition("sharpness must be zero or positive and finite, got %v", c.Sharpness)
	}
	if c.Workers < 0 {
		return errs.Precondition("negative worker count %d", c.Workers)
	}
	return nil
}
