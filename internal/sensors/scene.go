package sensors

import (
	"image"
	"image/color"
)

// Mover reports whether the scene should slide. *Walker implements it.
type Mover interface {
	Moving() bool
}

// SceneCamera renders a ramped corridor wall that slides while the walker moves and
// freezes while it stands. Frames are not ready until Ready is set.
type SceneCamera struct {
	Walker Mover
	Width  int
	Height int
	Ready  bool

	offset int
}

// NewSceneCamera returns a ready 160x120 camera following w.
func NewSceneCamera(w Mover) *SceneCamera {
	return &SceneCamera{Walker: w, Width: 160, Height: 120, Ready: true}
}

// Frame implements vision.FrameSource.
func (c *SceneCamera) Frame() (image.Image, bool) {
	if !c.Ready {
		return nil, false
	}
	if c.Walker != nil && c.Walker.Moving() {
		c.offset += 7
	}
	img := image.NewGray(image.Rect(0, 0, c.Width, c.Height))
	// A 128 px ramp: any shift under the period changes every pixel, whatever
	// columns the gate happens to sample.
	for y := 0; y < c.Height; y++ {
		for x := 0; x < c.Width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(((x + c.offset) % 128) * 2)})
		}
	}
	return img, true
}
