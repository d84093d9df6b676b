package report

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/signintech/gopdf"
)

// ErrFontUnavailable means no TTF font could be loaded for the PDF.
var ErrFontUnavailable = errors.New("no usable font for PDF")

// Common DejaVu locations on Alpine and Debian images.
var defaultFontPaths = []string{
	"/usr/share/fonts/ttf-dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
}

const textWidth = 500

// RenderPDF lays the report out on A4 pages. fontPath, when set, is tried
// before the default locations.
func RenderPDF(r MedicalReport, fontPath string) ([]byte, error) {
	pdf := gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	paths := defaultFontPaths
	if fontPath != "" {
		paths = append([]string{fontPath}, defaultFontPaths...)
	}

	var fontErr error
	fontLoaded := false
	for _, path := range paths {
		if err := pdf.AddTTFFont("DejaVu", path); err != nil {
			fontErr = err
			continue
		}
		fontLoaded = true
		break
	}
	if !fontLoaded {
		return nil, fmt.Errorf("%w: install ttf-dejavu or set REPORT_FONT_PATH: %v", ErrFontUnavailable, fontErr)
	}

	w := &pdfWriter{pdf: &pdf}

	w.font(20)
	w.line("Medical Report: " + r.ReportType.Label())
	pdf.Br(30)

	w.font(12)
	w.line(fmt.Sprintf("Date: %s", r.CreatedAt.Format("02.01.2006 15:04")))
	w.line(fmt.Sprintf("Report ID: %s", r.ID))
	if r.PatientID != "" {
		w.line(fmt.Sprintf("Patient ID: %s", r.PatientID))
	}
	w.line(fmt.Sprintf("Urgency: %d/5 (%s)", r.UrgencyLevel, UrgencyLabel(r.UrgencyLevel)))
	pdf.Br(10)

	w.font(14)
	w.line("Clinical Report:")
	w.font(11)
	w.paragraph(r.MedicalJargonOutput)
	pdf.Br(15)

	w.font(14)
	w.line("Source Notes:")
	w.font(11)
	w.paragraph(r.NaturalLanguageInput)

	if w.err != nil {
		return nil, w.err
	}

	var buf bytes.Buffer
	if _, err := pdf.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// pdfWriter keeps the first error so the layout code stays linear.
type pdfWriter struct {
	pdf *gopdf.GoPdf
	err error
}

func (w *pdfWriter) font(size float64) {
	if w.err != nil {
		return
	}
	w.err = w.pdf.SetFont("DejaVu", "", size)
}

func (w *pdfWriter) line(s string) {
	if w.err != nil {
		return
	}
	w.err = w.pdf.Cell(nil, s)
	w.pdf.Br(15)
}

// paragraph wraps text to the page width and starts new pages as needed.
func (w *pdfWriter) paragraph(text string) {
	if w.err != nil {
		return
	}
	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		if raw == "" {
			w.pdf.Br(8)
			continue
		}
		lines, err := w.pdf.SplitText(raw, textWidth)
		if err != nil {
			w.err = err
			return
		}
		for _, l := range lines {
			if w.pdf.GetY() > gopdf.PageSizeA4.H-60 {
				w.pdf.AddPage()
			}
			if w.err = w.pdf.Cell(nil, l); w.err != nil {
				return
			}
			w.pdf.Br(13)
		}
	}
}
