package cartpole

import (
	"fmt"
	"image"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
	"github.com/pkg/errors"
)

const (
	ViewportW float64 = 600
	ViewportH float64 = 400

	// Pixels per world unit
	Scale float64 = ViewportW / (2 * PositionBounds)

	cartWidth  float64 = 50
	cartHeight float64 = 30
	poleWidth  float64 = 10
	trackY     float64 = 100
)

// SetFrameDir makes Render write every frame it draws as a PNG image
// into dir, creating the directory if needed. An empty dir disables
// writing frames.
func (c *Cartpole) SetFrameDir(dir string) error {
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "setFrameDir")
		}
	}
	c.frameDir = dir
	return nil
}

// Frame returns the most recently rendered frame, or nil if Render has
// not been called
func (c *Cartpole) Frame() image.Image {
	return c.frame
}

// Frames returns the number of frames rendered so far
func (c *Cartpole) Frames() int {
	return c.frames
}

// Render draws the track, cart and pole of the current state
func (c *Cartpole) Render() error {
	state := c.lastStep.Observation
	x, th := state.AtVec(0), state.AtVec(2)

	dc := gg.NewContext(int(ViewportW), int(ViewportH))
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	// Image coordinates grow downwards
	groundY := ViewportH - trackY
	cartX := x*Scale + ViewportW/2.0

	// Track
	dc.SetRGB(0, 0, 0)
	dc.SetLineWidth(1)
	dc.DrawLine(0, groundY, ViewportW, groundY)
	dc.Stroke()

	// Cart
	dc.DrawRectangle(cartX-cartWidth/2, groundY-cartHeight/2, cartWidth,
		cartHeight)
	dc.Fill()

	// Pole
	poleLen := Scale * 2 * HalfPoleLength
	dc.Push()
	dc.RotateAbout(th, cartX, groundY-cartHeight/4)
	dc.DrawRectangle(cartX-poleWidth/2, groundY-cartHeight/4-poleLen,
		poleWidth, poleLen)
	dc.SetRGB(0.8, 0.6, 0.4)
	dc.Fill()
	dc.Pop()

	// Axle
	dc.DrawCircle(cartX, groundY-cartHeight/4, poleWidth/2)
	dc.SetRGB(0.5, 0.5, 0.8)
	dc.Fill()

	c.frame = dc.Image()
	c.frames++

	if c.frameDir == "" {
		return nil
	}
	path := filepath.Join(c.frameDir, fmt.Sprintf("frame%06d.png", c.frames))
	return errors.Wrapf(dc.SavePNG(path), "render: could not save frame %v",
		c.frames)
}
