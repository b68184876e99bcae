// Package camera reads frames from a local capture device through OpenCV.
package camera

import (
	"fmt"
	"image"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// Capture implements vision.FrameSource on top of a gocv VideoCapture.
type Capture struct {
	mu  sync.Mutex
	cap *gocv.VideoCapture
	mat gocv.Mat
}

// Open opens device, which is either a numeric index ("0") or a file/stream URL.
func Open(device string) (*Capture, error) {
	vc, err := gocv.OpenVideoCapture(device)
	if err != nil {
		return nil, fmt.Errorf("camera: open %q: %w", device, err)
	}
	return &Capture{cap: vc, mat: gocv.NewMat()}, nil
}

// Frame grabs the next frame. A failed read or an empty frame reports not ready.
func (c *Capture) Frame() (image.Image, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap == nil {
		return nil, false
	}
	if ok := c.cap.Read(&c.mat); !ok || c.mat.Empty() {
		return nil, false
	}
	img, err := c.mat.ToImage()
	if err != nil {
		log.Printf("camera: frame conversion error: %v", err)
		return nil, false
	}
	return img, true
}

// Close releases the device and the frame buffer.
func (c *Capture) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cap == nil {
		return nil
	}
	err := c.cap.Close()
	c.mat.Close()
	c.cap = nil
	return err
}
