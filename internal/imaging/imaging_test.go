package imaging

import (
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font/gofont/gomono"
)

func TestRenderReceiptSize(t *testing.T) {
	img, err := RenderReceipt("one\ntwo\n\nfour", TextOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != ReceiptWidth {
		t.Errorf("width = %d, want %d", b.Dx(), ReceiptWidth)
	}

	short, _ := RenderReceipt("one", TextOptions{})
	if short.Bounds().Dy() >= b.Dy() {
		t.Errorf("4-line receipt (%d) should be taller than 1-line (%d)", b.Dy(), short.Bounds().Dy())
	}
}

func TestRenderReceiptTooNarrow(t *testing.T) {
	if _, err := RenderReceipt("x", TextOptions{Width: 10}); err == nil {
		t.Error("expected error")
	}
}

func TestWrapTextKeepsBlankLinesAndFits(t *testing.T) {
	f, err := truetype.Parse(gomono.TTF)
	if err != nil {
		t.Fatal(err)
	}
	face := truetype.NewFace(f, &truetype.Options{Size: DefaultFontSize, DPI: PrinterDPI})

	long := strings.Repeat("-", 100)
	lines := wrapText("a\n\n"+long, face, ReceiptWidth-2*margin)
	if lines[0] != "a" || lines[1] != "" {
		t.Errorf("lines = %q", lines[:2])
	}
	if len(lines) < 4 {
		t.Fatalf("100 columns should wrap on 48-column paper, got %d lines", len(lines))
	}
	for _, l := range lines {
		if w := measureString(face, l); w > ReceiptWidth-2*margin {
			t.Errorf("line %q is %d dots wide", l, w)
		}
	}
}

func TestRasterize(t *testing.T) {
	tests := []struct {
		name  string
		width int
		dark  []int
		want  []byte
	}{
		{"byte aligned", 16, []int{3}, []byte{0x10, 0x00}},
		{"padded row", 10, []int{0, 9}, []byte{0x80, 0x40}},
		{"blank", 8, nil, []byte{0x00}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := image.NewGray(image.Rect(0, 0, tt.width, 1))
			for x := 0; x < tt.width; x++ {
				src.SetGray(x, 0, color.Gray{Y: 255})
			}
			for _, x := range tt.dark {
				src.SetGray(x, 0, color.Gray{Y: 0})
			}

			bm := Rasterize(src, Threshold)
			if string(bm.Data) != string(tt.want) {
				t.Fatalf("bitmap = % x, want % x", bm.Data, tt.want)
			}

			out := bm.Image()
			for x := 0; x < tt.width; x++ {
				if (out.GrayAt(x, 0).Y == 0) != bm.Dot(x, 0) {
					t.Errorf("dot %d does not match bitmap", x)
				}
			}
		})
	}
}

func TestRasterizeOffsetBounds(t *testing.T) {
	src := image.NewGray(image.Rect(5, 5, 13, 6))
	src.SetGray(5, 5, color.Gray{Y: 0})
	for x := 6; x < 13; x++ {
		src.SetGray(x, 5, color.Gray{Y: 200})
	}
	if bm := Rasterize(src, Threshold); bm.Data[0] != 0x80 {
		t.Errorf("bitmap = % x, want 80", bm.Data)
	}
}

func TestPreview(t *testing.T) {
	img, err := Preview("TEST PRINT")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.Gray); !ok {
		t.Errorf("preview is %T, want *image.Gray", img)
	}
	if img.Bounds().Dx() != ReceiptWidth {
		t.Errorf("width = %d", img.Bounds().Dx())
	}
}
