package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/fogleman/gg"

	"github.com/verdantlabs/ndvi-report/internal/ndvi"
)

// Diverging map anchors, RdYlGn style: low NDVI renders red, mid yellow,
// high green. The anchors are fixed at the NDVI domain bounds so the same
// value always yields the same color across reports.
var (
	lowColor  = color.NRGBA{R: 165, G: 0, B: 38, A: 255}
	midColor  = color.NRGBA{R: 255, G: 255, B: 191, A: 255}
	highColor = color.NRGBA{R: 0, G: 104, B: 55, A: 255}
)

// ColorFor maps one NDVI value to its preview color. Values are clamped to
// [-1, 1]; NaN renders fully transparent.
func ColorFor(v float64) color.NRGBA {
	if math.IsNaN(v) {
		return color.NRGBA{}
	}
	if v < ndvi.DomainMin {
		v = ndvi.DomainMin
	}
	if v > ndvi.DomainMax {
		v = ndvi.DomainMax
	}
	if v < 0 {
		return lerpColor(lowColor, midColor, v+1)
	}
	return lerpColor(midColor, highColor, v)
}

func lerpColor(a, b color.NRGBA, t float64) color.NRGBA {
	return color.NRGBA{
		R: uint8(float64(a.R) + t*(float64(b.R)-float64(a.R))),
		G: uint8(float64(a.G) + t*(float64(b.G)-float64(a.G))),
		B: uint8(float64(a.B) + t*(float64(b.B)-float64(a.B))),
		A: 255,
	}
}

// Preview renders the cleaned grid on its own pixel grid, one image pixel
// per raster cell, missing cells transparent.
func Preview(g *ndvi.Grid) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Cols, g.Rows))
	for row := 0; row < g.Rows; row++ {
		for col := 0; col < g.Cols; col++ {
			img.SetNRGBA(col, row, ColorFor(g.At(row, col)))
		}
	}
	return img
}

const (
	legendBarWidth = 24
	legendGutter   = 56
	legendPad      = 8
)

// PreviewWithLegend composes the preview with a vertical colorbar so the
// standalone PNG artifact is readable without the report around it.
func PreviewWithLegend(g *ndvi.Grid) (image.Image, error) {
	preview := Preview(g)
	w, h := g.Cols, g.Rows
	if h < 80 {
		// Tiny rasters still get a legible legend.
		scale := (80 + h - 1) / h
		w, h = w*scale, h*scale
	}

	dc := gg.NewContext(w+legendGutter+legendBarWidth+2*legendPad, h)
	dc.SetRGB(1, 1, 1)
	dc.Clear()
	dc.DrawImage(resizeNearest(preview, w, h), 0, 0)

	barX := w + legendPad
	for y := 0; y < h; y++ {
		// Top of the bar is +1, bottom -1.
		v := ndvi.DomainMax - (ndvi.DomainMax-ndvi.DomainMin)*float64(y)/float64(h-1)
		c := ColorFor(v)
		dc.SetRGBA255(int(c.R), int(c.G), int(c.B), 255)
		dc.DrawRectangle(float64(barX), float64(y), legendBarWidth, 1)
		dc.Fill()
	}

	dc.SetRGB(0, 0, 0)
	labelX := float64(barX + legendBarWidth + 4)
	dc.DrawString(fmt.Sprintf("%.0f", ndvi.DomainMax), labelX, 10)
	dc.DrawString("0", labelX, float64(h)/2)
	dc.DrawString(fmt.Sprintf("%.0f", ndvi.DomainMin), labelX, float64(h)-2)

	return dc.Image(), nil
}

// resizeNearest scales img to w x h without interpolation, keeping the
// value-to-color contract exact.
func resizeNearest(img *image.NRGBA, w, h int) image.Image {
	srcW, srcH := img.Rect.Dx(), img.Rect.Dy()
	if srcW == w && srcH == h {
		return img
	}
	out := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out.SetNRGBA(x, y, img.NRGBAAt(x*srcW/w, y*srcH/h))
		}
	}
	return out
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("render preview: failed to encode PNG: %v", err)
	}
	return nil
}
