// Package screenshot encodes captured frames to disk.
package screenshot

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
)

// Format is an output file format.
type Format string

const (
	PNG  Format = "png"
	WebP Format = "webp"
)

// ParseFormat maps a config value to a format. Unknown values are PNG.
func ParseFormat(s string) Format {
	if strings.EqualFold(s, string(WebP)) {
		return WebP
	}
	return PNG
}

// FormatForPath picks the format from the file extension.
func FormatForPath(path string) Format {
	return ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// Encode writes img to w in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case WebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	}
	return nil
}

// Save writes img to path, creating parent directories. The format follows
// the extension.
func Save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if err := Encode(file, img, FormatForPath(path)); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// Capture names and writes screenshots under a directory.
type Capture struct {
	outputDir string
	prefix    string
	format    Format

	now func() time.Time
}

// NewCapture creates a capture writing prefix_<timestamp>.<format> files.
func NewCapture(outputDir, prefix string, format Format) *Capture {
	return &Capture{
		outputDir: outputDir,
		prefix:    prefix,
		format:    format,
		now:       time.Now,
	}
}

// Filename returns the path the next capture would use.
func (c *Capture) Filename() string {
	timestamp := c.now().Format("2006-01-02_15-04-05")
	filename := fmt.Sprintf("%s_%s.%s", c.prefix, timestamp, c.format)
	if c.outputDir != "" {
		filename = filepath.Join(c.outputDir, filename)
	}
	return filename
}

// Save writes img under a timestamped name and returns the path.
func (c *Capture) Save(img image.Image) (string, error) {
	filename := c.Filename()
	if err := Save(filename, img); err != nil {
		return "", err
	}
	return filename, nil
}
