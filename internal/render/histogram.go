package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/fogleman/gg"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/verdantlabs/ndvi-report/internal/ndvi"
)

// HistogramBins is the fixed bin count for the NDVI distribution panel.
// Bins span the NDVI domain, not the data range, so the same value falls
// in the same bin on every report.
const HistogramBins = 30

const histogramDPI = 96

// Histogram renders the distribution of valid NDVI values with dashed
// vertical markers for mean, min and max. When no valid values exist the
// panel carries an explicit placeholder message instead of an empty plot.
func Histogram(values []float64, s ndvi.Stats, wPx, hPx float64) (image.Image, error) {
	if len(values) == 0 {
		return placeholderPanel("No valid NDVI data to plot", wPx, hPx), nil
	}

	p := plot.New()
	p.Title.Text = "NDVI distribution"
	p.X.Label.Text = "NDVI"
	p.Y.Label.Text = "pixel count"
	p.X.Min = ndvi.DomainMin
	p.X.Max = ndvi.DomainMax
	p.Add(plotter.NewGrid())

	hist, err := plotter.NewHist(plotter.Values(values), HistogramBins)
	if err != nil {
		return nil, fmt.Errorf("render histogram: %v", err)
	}
	hist.Bins, hist.Width = domainBins(values)
	hist.FillColor = color.RGBA{R: 120, G: 180, B: 90, A: 255}
	p.Add(hist)

	top := peakWeight(hist.Bins) * 1.08
	addMarker(p, s.Mean, top, color.RGBA{B: 255, A: 255}, []vg.Length{vg.Points(6), vg.Points(4)})
	addMarker(p, s.Min, top, color.RGBA{R: 255, A: 255}, []vg.Length{vg.Points(2), vg.Points(3)})
	addMarker(p, s.Max, top, color.RGBA{R: 0, G: 104, B: 55, A: 255}, []vg.Length{vg.Points(2), vg.Points(3)})

	width := vg.Length(wPx) * vg.Inch / histogramDPI
	height := vg.Length(hPx) * vg.Inch / histogramDPI
	c := vgimg.New(width, height)
	dc := draw.New(c)
	p.Draw(dc)

	return c.Image(), nil
}

func addMarker(p *plot.Plot, x, top float64, c color.Color, dashes []vg.Length) {
	if math.IsNaN(x) {
		return
	}
	line, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: top}})
	if err != nil {
		return
	}
	line.Color = c
	line.Dashes = dashes
	p.Add(line)
}

// domainBins counts values into HistogramBins equal bins over [-1, 1].
// Values on the domain edges land in the first and last bin.
func domainBins(values []float64) ([]plotter.HistogramBin, float64) {
	width := (ndvi.DomainMax - ndvi.DomainMin) / float64(HistogramBins)
	bins := make([]plotter.HistogramBin, HistogramBins)
	for i := range bins {
		bins[i].Min = ndvi.DomainMin + float64(i)*width
		bins[i].Max = bins[i].Min + width
	}
	for _, v := range values {
		i := int((v - ndvi.DomainMin) / width)
		if i < 0 {
			i = 0
		}
		if i >= HistogramBins {
			i = HistogramBins - 1
		}
		bins[i].Weight++
	}
	return bins, width
}

func peakWeight(bins []plotter.HistogramBin) float64 {
	peak := 0.0
	for _, bin := range bins {
		if bin.Weight > peak {
			peak = bin.Weight
		}
	}
	return peak
}

func placeholderPanel(msg string, wPx, hPx float64) image.Image {
	dc := gg.NewContext(int(wPx), int(hPx))
	dc.SetRGB(0.96, 0.96, 0.96)
	dc.Clear()
	dc.SetRGB(0.3, 0.3, 0.3)
	dc.DrawStringAnchored(msg, wPx/2, hPx/2, 0.5, 0.5)
	return dc.Image()
}
