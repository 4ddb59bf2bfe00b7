package present

import "image"

// Fit returns the largest rectangle with the aspect ratio of a src frame
// that fits centered in a dst drawable. Both sizes are in pixels.
func Fit(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}
	w, h := dstW, dstW*srcH/srcW
	if h > dstH {
		w, h = dstH*srcW/srcH, dstH
	}
	x, y := (dstW-w)/2, (dstH-h)/2
	return image.Rect(x, y, x+w, y+h)
}
