package imaging

import (
	"image"
	"image/color"
)

// Threshold is the gray level below which a dot is burned
const Threshold = 128

// Bitmap is a 1-bit raster, MSB first, one row after another with each row
// padded to whole bytes. A set bit is a black dot.
type Bitmap struct {
	Width  int
	Height int
	Data   []byte
}

// RowBytes is the stride of one raster row
func (b Bitmap) RowBytes() int {
	return (b.Width + 7) / 8
}

// Dot reports whether the dot at x, y is burned
func (b Bitmap) Dot(x, y int) bool {
	return b.Data[y*b.RowBytes()+x/8]&(0x80>>(x%8)) != 0
}

// Image renders the bitmap as black dots on white paper
func (b Bitmap) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Dot(x, y) {
				img.SetGray(x, y, color.Gray{Y: 0})
			} else {
				img.SetGray(x, y, color.Gray{Y: 255})
			}
		}
	}
	return img
}

// Rasterize thresholds img into dots at its own size
func Rasterize(img image.Image, threshold uint8) Bitmap {
	r := img.Bounds()
	b := Bitmap{Width: r.Dx(), Height: r.Dy()}
	b.Data = make([]byte, b.RowBytes()*b.Height)

	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if luminance(img.At(r.Min.X+x, r.Min.Y+y)) < threshold {
				b.Data[y*b.RowBytes()+x/8] |= 0x80 >> (x % 8)
			}
		}
	}
	return b
}

// luminance weights 16-bit RGB per ITU-R BT.601
func luminance(c color.Color) uint8 {
	r, g, b, _ := c.RGBA()
	return uint8((299*r + 587*g + 114*b) / 1000 >> 8)
}

// Preview renders receipt text the way the thermal head would print it
func Preview(text string) (image.Image, error) {
	img, err := RenderReceipt(text, TextOptions{})
	if err != nil {
		return nil, err
	}
	return Rasterize(img, Threshold).Image(), nil
}
