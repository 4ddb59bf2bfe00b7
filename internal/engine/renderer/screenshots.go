package renderer

import (
	"fmt"
	"image"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/Faultbox/enroth-render/internal/engine/screenshot"
	"github.com/Faultbox/enroth-render/internal/logger"
)

// Screenshot returns the front buffer scaled to width x height. A zero size
// keeps the render size. Render state is not modified.
func (r *Renderer) Screenshot(width, height int) (*image.RGBA, error) {
	if err := r.requireInit("Screenshot"); err != nil {
		return nil, err
	}
	src, err := r.dev.ReadFront()
	if err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		width, height = src.Rect.Dx(), src.Rect.Dy()
	}
	dst := src
	if width != src.Rect.Dx() || height != src.Rect.Dy() {
		dst = image.NewRGBA(image.Rect(0, 0, width, height))
		draw.BiLinear.Scale(dst, dst.Rect, src, src.Rect, draw.Src, nil)
	}
	// The framebuffer keeps straight alpha; captures are opaque.
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 255
	}
	return dst, nil
}

// PackScreenshot writes the front buffer scaled to width x height into out
// as packed RGB888 rows and returns the number of bytes written.
func (r *Renderer) PackScreenshot(width, height int, out []byte) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("%w: invalid screenshot size %dx%d", ErrResource, width, height)
	}
	need := width * height * 3
	if len(out) < need {
		return 0, fmt.Errorf("%w: buffer holds %d bytes, need %d", ErrResource, len(out), need)
	}
	img, err := r.Screenshot(width, height)
	if err != nil {
		return 0, err
	}
	o := 0
	for i := 0; i < len(img.Pix); i += 4 {
		out[o] = img.Pix[i]
		out[o+1] = img.Pix[i+1]
		out[o+2] = img.Pix[i+2]
		o += 3
	}
	return need, nil
}

// SaveScreenshot writes the front buffer scaled to width x height to path.
// The format follows the extension.
func (r *Renderer) SaveScreenshot(path string, width, height int) error {
	img, err := r.Screenshot(width, height)
	if err != nil {
		return err
	}
	if err := screenshot.Save(path, img); err != nil {
		return fmt.Errorf("saving screenshot: %w", err)
	}
	logger.Info("screenshot saved",
		zap.String("path", path),
		zap.Int("width", img.Rect.Dx()),
		zap.Int("height", img.Rect.Dy()),
	)
	return nil
}

// SaveWinnersCertificate writes the front buffer at render size to path.
func (r *Renderer) SaveWinnersCertificate(path string) error {
	return r.SaveScreenshot(path, 0, 0)
}
