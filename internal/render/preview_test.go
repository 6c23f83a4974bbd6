package render

import (
	"bytes"
	"image/color"
	"math"
	"testing"

	"github.com/verdantlabs/ndvi-report/internal/ndvi"
)

func TestColorForAnchors(t *testing.T) {
	cases := []struct {
		name string
		v    float64
		want color.NRGBA
	}{
		{"low anchor", -1, color.NRGBA{R: 165, G: 0, B: 38, A: 255}},
		{"mid anchor", 0, color.NRGBA{R: 255, G: 255, B: 191, A: 255}},
		{"high anchor", 1, color.NRGBA{R: 0, G: 104, B: 55, A: 255}},
		{"below domain clamps", -5, color.NRGBA{R: 165, G: 0, B: 38, A: 255}},
		{"above domain clamps", 5, color.NRGBA{R: 0, G: 104, B: 55, A: 255}},
		{"missing is transparent", math.NaN(), color.NRGBA{}},
	}
	for _, c := range cases {
		if got := ColorFor(c.v); got != c.want {
			t.Errorf("%s: ColorFor(%v) = %v, want %v", c.name, c.v, got, c.want)
		}
	}
}

func TestColorForDeterministic(t *testing.T) {
	for _, v := range []float64{-0.73, -0.2, 0.0, 0.31, 0.99} {
		if ColorFor(v) != ColorFor(v) {
			t.Errorf("ColorFor(%v) is not deterministic", v)
		}
	}
}

func TestPreviewGridSizeAndTransparency(t *testing.T) {
	g := &ndvi.Grid{
		Values: []float64{0.5, math.NaN(), -0.5, 1.0, 0.0, -1.0},
		Rows:   2,
		Cols:   3,
	}
	img := Preview(g)

	if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 2 {
		t.Fatalf("preview size = %dx%d, want 3x2", img.Bounds().Dx(), img.Bounds().Dy())
	}
	if got := img.NRGBAAt(1, 0); got.A != 0 {
		t.Errorf("missing cell rendered opaque: %v", got)
	}
	if got := img.NRGBAAt(0, 0); got.A != 255 {
		t.Errorf("valid cell rendered transparent: %v", got)
	}
}

func TestPreviewDeterministic(t *testing.T) {
	g := &ndvi.Grid{
		Values: []float64{0.1, 0.2, 0.3, 0.4},
		Rows:   2,
		Cols:   2,
	}
	a, b := Preview(g), Preview(g)
	if !bytes.Equal(a.Pix, b.Pix) {
		t.Errorf("identical grid rendered differently")
	}
}

func TestPreviewWithLegend(t *testing.T) {
	g := &ndvi.Grid{
		Values: []float64{0.1, 0.2, 0.3, 0.4},
		Rows:   2,
		Cols:   2,
	}
	img, err := PreviewWithLegend(g)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() <= 2 {
		t.Errorf("legend composition did not widen the image")
	}
}

func TestEncodePNG(t *testing.T) {
	g := &ndvi.Grid{Values: []float64{0.5}, Rows: 1, Cols: 1}
	var buf bytes.Buffer
	if err := EncodePNG(&buf, Preview(g)); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Errorf("empty PNG output")
	}
}
