package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"multiview-blend/internal/errs"
	"multiview-blend/pkg/geometry"
)

func valid() Config {
	return Config{
		ViewCount: 2,
		Canvas:    geometry.NewRect(0, 0, 640, 480),
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero views", func(c *Config) { c.ViewCount = 0 }, errs.ErrPrecondition},
		{"too many views", func(c *Config) { c.ViewCount = 129 }, errs.ErrOverflowRisk},
		{"empty canvas", func(c *Config) { c.Canvas = geometry.Rect{} }, errs.ErrPrecondition},
		{"roi outside", func(c *Config) { c.ROI = geometry.NewRect(600, 0, 100, 10) }, errs.ErrPrecondition},
		{"roi without area", func(c *Config) { c.ROI = geometry.NewRect(10, 10, 0, 5) }, errs.ErrPrecondition},
		{"negative sharpness", func(c *Config) { c.Sharpness = -1 }, errs.ErrPrecondition},
		{"negative workers", func(c *Config) { c.Workers = -2 }, errs.ErrPrecondition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(&c)
			assert.ErrorIs(t, c.Validate(), tt.want)
		})
	}
}

func TestDestinationROI(t *testing.T) {
	c := valid()
	assert.Equal(t, c.Canvas, c.DestinationROI())
	c.ROI = geometry.NewRect(10, 10, 20, 20)
	assert.Equal(t, c.ROI, c.DestinationROI())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	c := valid()
	c.ROI = geometry.NewRect(0, 0, 320, 240)
	c.Sharpness = 0.5
	c.Workers = 3
	require.NoError(t, c.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestLoadParsesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	body := `{"view_count":4,"canvas":{"x":0,"y":0,"width":100,"height":50}}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4, c.ViewCount)
	assert.Equal(t, geometry.NewRect(0, 0, 100, 50), c.Canvas)
	assert.NoError(t, c.Validate())
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvWorkers, "5")
	t.Setenv(EnvSharpness, "0.25")
	c := valid()
	require.NoError(t, c.ApplyEnv())
	assert.Equal(t, 5, c.Workers)
	assert.Equal(t, float32(0.25), c.Sharpness)

	t.Setenv(EnvWorkers, "many")
	assert.Error(t, c.ApplyEnv())
}
