// Package capture writes rendered frames to PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Saver names and writes frame captures under Dir.
type Saver struct {
	Dir    string
	Prefix string

	now func() time.Time
}

// NewSaver returns a saver writing Dir/<prefix>_<label>_<timestamp>.png.
func NewSaver(dir, prefix string) *Saver {
	return &Saver{Dir: dir, Prefix: prefix, now: time.Now}
}

// Filename returns the path the next capture labelled label would use.
func (s *Saver) Filename(label string) string {
	name := s.Prefix
	if label != "" {
		name += "_" + label
	}
	name += "_" + s.now().Format("2006-01-02_15-04-05.000") + ".png"
	if s.Dir == "" {
		return name
	}
	return filepath.Join(s.Dir, name)
}

// SavePixels writes bottom-up RGBA rows, as glReadPixels returns them, as
// a top-down PNG and returns its path.
func (s *Saver) SavePixels(pixels []byte, width, height int, label string) (string, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return "", fmt.Errorf("capture: %d bytes for %dx%d RGBA", len(pixels), width, height)
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return s.SaveImage(img, label)
}

// SaveImage writes img as PNG and returns its path.
func (s *Saver) SaveImage(img image.Image, label string) (string, error) {
	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0o755); err != nil {
			return "", fmt.Errorf("creating capture dir: %w", err)
		}
	}

	name := s.Filename(label)
	f, err := os.Create(name)
	if err != nil {
		return "", fmt.Errorf("creating capture file: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encoding capture: %w", err)
	}
	return name, f.Close()
}
