package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"math"
	"strings"
	"time"

	"codeberg.org/go-pdf/fpdf"

	"github.com/verdantlabs/ndvi-report/internal/ndvi"
)

// Meta carries the per-run context that is printed into the report but is
// not part of the statistics proper.
type Meta struct {
	SourceFile string
	CRS        string
	Extent     [4]float64 // xmin, ymin, xmax, ymax
	// AreaInPixelUnits is set when the raster carried no geotransform and
	// areas are pixel counts rather than ground units.
	AreaInPixelUnits bool
	GeneratedAt      time.Time
}

// NoValidData is printed wherever a statistic is undefined because zero
// pixels survived sanitization.
const NoValidData = "n/a (no valid data)"

// A4 landscape layout, millimeters.
const (
	pageW  = 297.0
	pageH  = 210.0
	margin = 10.0
	titleH = 14.0
	panelW = (pageW - 3*margin) / 2
	panelH = (pageH - titleH - 3*margin) / 2
	labelH = 6.0
)

// Assemble lays out the one-page report: preview top-left, metadata block
// top-right, histogram bottom-left, notes panel bottom-right. Either a
// complete document is written to w or an error is returned, never a
// truncated artifact.
func Assemble(w io.Writer, preview, histogram image.Image, s ndvi.Stats, meta Meta) error {
	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("NDVI Report", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(margin, margin)
	pdf.CellFormat(pageW-2*margin, 8, fmt.Sprintf("NDVI Report - %s", meta.SourceFile), "", 1, "L", false, 0, "")

	top := margin + titleH
	bottom := top + panelH + margin

	if err := placeImage(pdf, "preview", preview, margin, top, panelW, panelH, "NDVI Map Preview"); err != nil {
		return err
	}
	drawMetadataPanel(pdf, margin+panelW+margin, top, s, meta)
	if err := placeImage(pdf, "histogram", histogram, margin, bottom, panelW, panelH, "Distribution"); err != nil {
		return err
	}
	drawNotesPanel(pdf, margin+panelW+margin, bottom)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("report assembly: %v", err)
	}
	if _, err := buf.WriteTo(w); err != nil {
		return fmt.Errorf("report assembly: failed to write artifact: %v", err)
	}
	return nil
}

func placeImage(pdf *fpdf.Fpdf, name string, img image.Image, x, y, w, h float64, label string) error {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(w, labelH, label, "", 0, "L", false, 0, "")

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("report assembly: failed to encode %s panel: %v", name, err)
	}
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(name, opts, &buf)

	// Fit inside the panel box preserving aspect ratio.
	bounds := img.Bounds()
	boxH := h - labelH
	fw, fh := w, boxH
	ar := float64(bounds.Dx()) / float64(bounds.Dy())
	if fw/fh > ar {
		fw = fh * ar
	} else {
		fh = fw / ar
	}
	pdf.ImageOptions(name, x, y+labelH, fw, fh, false, opts, 0, "")
	if pdf.Err() {
		return fmt.Errorf("report assembly: failed to place %s panel: %v", name, pdf.Error())
	}
	return nil
}

func drawMetadataPanel(pdf *fpdf.Fpdf, x, y float64, s ndvi.Stats, meta Meta) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(panelW, labelH, "Metadata", "", 1, "L", false, 0, "")

	pdf.SetFont("Courier", "", 9)
	pdf.SetXY(x, y+labelH)
	pdf.MultiCell(panelW, 5, MetadataText(s, meta), "1", "L", false)
}

func drawNotesPanel(pdf *fpdf.Fpdf, x, y float64) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y)
	pdf.CellFormat(panelW, labelH, "Notes", "", 1, "L", false, 0, "")
	pdf.Rect(x, y+labelH, panelW, panelH-labelH, "D")
}

// MetadataText renders the metadata block. The same text goes into the PDF
// panel and the metadata.txt sidecar.
func MetadataText(s ndvi.Stats, meta Meta) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Projection: %s\n", meta.CRS)
	fmt.Fprintf(&b, "Extent (xmin, ymin, xmax, ymax): %.2f, %.2f, %.2f, %.2f\n",
		meta.Extent[0], meta.Extent[1], meta.Extent[2], meta.Extent[3])
	if meta.AreaInPixelUnits {
		fmt.Fprintf(&b, "Area: %s pixels (no geotransform)\n", groupThousands(s.TotalAreaM2))
	} else {
		fmt.Fprintf(&b, "Area: %s m2 (%.2f ha)\n", groupThousands(s.TotalAreaM2), s.AreaHa)
	}
	fmt.Fprintf(&b, "Mean NDVI: %s\n", formatStat(s.Mean))
	fmt.Fprintf(&b, "Min NDVI: %s\n", formatStat(s.Min))
	fmt.Fprintf(&b, "Max NDVI: %s\n", formatStat(s.Max))
	fmt.Fprintf(&b, "Valid pixels: %d\n", s.ValidCount)
	fmt.Fprintf(&b, "Processed on: %s", meta.GeneratedAt.Format("2006-01-02 15:04:05"))
	return b.String()
}

func formatStat(v float64) string {
	if math.IsNaN(v) {
		return NoValidData
	}
	return fmt.Sprintf("%.4f", v)
}

// groupThousands formats v to 2 decimals with comma-grouped thousands.
func groupThousands(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	dot := strings.IndexByte(s, '.')
	intPart, frac := s[:dot], s[dot:]
	neg := false
	if strings.HasPrefix(intPart, "-") {
		neg = true
		intPart = intPart[1:]
	}
	var out strings.Builder
	for i, d := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(d)
	}
	if neg {
		return "-" + out.String() + frac
	}
	return out.String() + frac
}
