// Package vision derives a coarse "is the scene changing" signal from camera frames.
//
// This is not optical flow: frames are shrunk to a small grid, sparsely sampled to
// luminance, and compared with the previous frame by mean absolute difference.
package vision

import (
	"image"

	"golang.org/x/image/draw"
	"gonum.org/v1/gonum/floats"
)

// Config holds the gate tunables.
type Config struct {
	Width           int     // downsampled frame width in pixels
	Height          int     // downsampled frame height in pixels
	Stride          int     // sample every Stride-th pixel on both axes
	MotionThreshold float64 // mean luminance difference (0-255) treated as motion
}

// DefaultConfig returns a 32x24 grid sampled every second pixel.
func DefaultConfig() Config {
	return Config{
		Width:           32,
		Height:          24,
		Stride:          2,
		MotionThreshold: 3.0,
	}
}

// FrameSource supplies decoded camera frames. ok is false while the camera is not ready.
type FrameSource interface {
	Frame() (img image.Image, ok bool)
}

// Gate is not safe for concurrent use.
type Gate struct {
	cfg   Config
	small *image.RGBA
	prev  []float64
	cur   []float64
	have  bool
	score float64
}

// NewGate allocates the downsampling buffers for cfg.
func NewGate(cfg Config) *Gate {
	if cfg.Stride < 1 {
		cfg.Stride = 1
	}
	n := ((cfg.Width + cfg.Stride - 1) / cfg.Stride) * ((cfg.Height + cfg.Stride - 1) / cfg.Stride)
	return &Gate{
		cfg:   cfg,
		small: image.NewRGBA(image.Rect(0, 0, cfg.Width, cfg.Height)),
		prev:  make([]float64, n),
		cur:   make([]float64, n),
	}
}

// Process compares frame with the previous one and returns the mean luminance
// difference. The first frame, and a nil or empty frame, report 0.
func (g *Gate) Process(frame image.Image) float64 {
	if frame == nil || frame.Bounds().Empty() || len(g.cur) == 0 {
		g.score = 0
		return 0
	}

	draw.NearestNeighbor.Scale(g.small, g.small.Bounds(), frame, frame.Bounds(), draw.Src, nil)
	g.luminance(g.cur)

	if !g.have {
		g.have = true
		g.prev, g.cur = g.cur, g.prev
		g.score = 0
		return 0
	}

	g.score = floats.Distance(g.prev, g.cur, 1) / float64(len(g.cur))
	g.prev, g.cur = g.cur, g.prev
	return g.score
}

// Sample pulls one frame from src and processes it. A source that is not ready
// yields 0 without disturbing the stored frame.
func (g *Gate) Sample(src FrameSource) float64 {
	frame, ok := src.Frame()
	if !ok {
		g.score = 0
		return 0
	}
	return g.Process(frame)
}

func (g *Gate) luminance(dst []float64) {
	pix := g.small.Pix
	i := 0
	for y := 0; y < g.cfg.Height; y += g.cfg.Stride {
		for x := 0; x < g.cfg.Width; x += g.cfg.Stride {
			o := y*g.small.Stride + x*4
			dst[i] = 0.299*float64(pix[o]) + 0.587*float64(pix[o+1]) + 0.114*float64(pix[o+2])
			i++
		}
	}
}

// Score returns the last reported confidence.
func (g *Gate) Score() float64 {
	return g.score
}

// Moving reports whether the last score reached the motion threshold.
func (g *Gate) Moving() bool {
	return g.score >= g.cfg.MotionThreshold
}

// Reset forgets the previous frame.
func (g *Gate) Reset() {
	g.have = false
	g.score = 0
}
