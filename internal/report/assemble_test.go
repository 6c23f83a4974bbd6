package report

import (
	"bytes"
	"image"
	"image/color"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/verdantlabs/ndvi-report/internal/ndvi"
)

func testStats() ndvi.Stats {
	return ndvi.Stats{
		Min:         0.1,
		Max:         1.0,
		Mean:        0.43571428571,
		ValidCount:  14,
		PixelArea:   100,
		TotalAreaM2: 1400,
		AreaHa:      0.14,
	}
}

func testMeta() Meta {
	return Meta{
		SourceFile:  "field.tif",
		CRS:         "EPSG:32633",
		Extent:      [4]float64{500000, 4649776.123456, 500040, 4649816},
		GeneratedAt: time.Date(2026, 5, 17, 10, 30, 0, 0, time.UTC),
	}
}

func testPanel() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	return img
}

func solidPanel() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	c := color.NRGBA{R: 120, G: 180, B: 90, A: 255}
	for y := 0; y < 12; y++ {
		for x := 0; x < 16; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestAssembleProducesPDF(t *testing.T) {
	var buf bytes.Buffer
	if err := Assemble(&buf, testPanel(), solidPanel(), testStats(), testMeta()); err != nil {
		t.Fatal(err)
	}
	if buf.Len() == 0 {
		t.Fatal("empty report artifact")
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("artifact does not start with a PDF header")
	}
}

func TestMetadataTextFormatting(t *testing.T) {
	text := MetadataText(testStats(), testMeta())

	wantLines := []string{
		"Projection: EPSG:32633",
		"Extent (xmin, ymin, xmax, ymax): 500000.00, 4649776.12, 500040.00, 4649816.00",
		"Area: 1,400.00 m2 (0.14 ha)",
		"Mean NDVI: 0.4357",
		"Min NDVI: 0.1000",
		"Max NDVI: 1.0000",
		"Valid pixels: 14",
		"Processed on: 2026-05-17 10:30:00",
	}
	lines := strings.Split(text, "\n")
	if len(lines) != len(wantLines) {
		t.Fatalf("metadata has %d lines, want %d:\n%s", len(lines), len(wantLines), text)
	}
	for i, want := range wantLines {
		if lines[i] != want {
			t.Errorf("line %d = %q, want %q", i, lines[i], want)
		}
	}
}

func TestMetadataTextNoValidData(t *testing.T) {
	s := ndvi.Stats{
		Min:  math.NaN(),
		Max:  math.NaN(),
		Mean: math.NaN(),
	}
	text := MetadataText(s, testMeta())

	if !strings.Contains(text, "Mean NDVI: "+NoValidData) {
		t.Errorf("no-data mean not surfaced:\n%s", text)
	}
	if strings.Contains(text, "NaN") {
		t.Errorf("NaN leaked into metadata text:\n%s", text)
	}
}

func TestMetadataTextPixelUnits(t *testing.T) {
	meta := testMeta()
	meta.AreaInPixelUnits = true
	s := testStats()
	s.PixelArea = 1
	s.TotalAreaM2 = 14

	text := MetadataText(s, meta)
	if !strings.Contains(text, "pixels (no geotransform)") {
		t.Errorf("pixel-unit areas not flagged:\n%s", text)
	}
}

func TestAssembleNoValidData(t *testing.T) {
	s := ndvi.Stats{Min: math.NaN(), Max: math.NaN(), Mean: math.NaN()}
	var buf bytes.Buffer
	if err := Assemble(&buf, testPanel(), solidPanel(), s, testMeta()); err != nil {
		t.Fatalf("no-data run must still produce a complete artifact: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF")) {
		t.Errorf("artifact does not start with a PDF header")
	}
}

func TestGroupThousands(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{999.995, "1,000.00"},
		{1400, "1,400.00"},
		{1234567.891, "1,234,567.89"},
		{-5000, "-5,000.00"},
	}
	for _, c := range cases {
		if got := groupThousands(c.in); got != c.want {
			t.Errorf("groupThousands(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}
