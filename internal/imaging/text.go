package imaging

import (
	"errors"
	"image"
	"image/draw"
	"strings"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/math/fixed"
)

const (
	// ReceiptWidth is the printable width of an 80 mm head in dots
	ReceiptWidth = 576
	// PrinterDPI of the JK-80 family
	PrinterDPI = 203
	// DefaultFontSize makes 48 monospaced columns span the head, like font A
	DefaultFontSize = 7.1

	margin = 8
)

// TextOptions configures receipt rendering
type TextOptions struct {
	FontSize float64
	Width    int
}

// RenderReceipt draws receipt text left-aligned in a monospaced face, one
// printed line per text line, wrapping lines wider than the paper.
func RenderReceipt(text string, opts TextOptions) (image.Image, error) {
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.Width <= 0 {
		opts.Width = ReceiptWidth
	}
	if opts.Width <= 2*margin {
		return nil, errors.New("receipt width too small")
	}

	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return nil, err
	}
	face := truetype.NewFace(f, &truetype.Options{Size: opts.FontSize, DPI: PrinterDPI})
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	lines := wrapText(text, face, opts.Width-2*margin)
	height := len(lines)*lineHeight + 2*margin

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	c := freetype.NewContext()
	c.SetDPI(PrinterDPI)
	c.SetFont(f)
	c.SetFontSize(opts.FontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.Black)
	c.SetHinting(font.HintingFull)

	y := margin + metrics.Ascent.Ceil()
	for _, line := range lines {
		if _, err := c.DrawString(line, freetype.Pt(margin, y)); err != nil {
			return nil, err
		}
		y += lineHeight
	}
	return img, nil
}

// wrapText splits text into lines that fit within maxWidth (breaks anywhere).
// Empty lines are kept so paper feed shows in the preview.
func wrapText(text string, face font.Face, maxWidth int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		currentLine := ""
		for _, char := range para {
			testLine := currentLine + string(char)
			if measureString(face, testLine) > maxWidth && currentLine != "" {
				lines = append(lines, currentLine)
				currentLine = string(char)
			} else {
				currentLine = testLine
			}
		}
		lines = append(lines, currentLine)
	}
	return lines
}

// measureString returns the width of a string in pixels
func measureString(face font.Face, s string) int {
	var width fixed.Int26_6
	for _, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if ok {
			width += adv
		}
	}
	return width.Ceil()
}
