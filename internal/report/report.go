// Package report renders an analysis as a one-page PDF.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

type Report struct {
	ID                     string
	ResumeFilename         string
	JobDescriptionFilename string
	MatchPercentage        float64
	MissingKeywords        []string
	Recommendation         string
	CreatedAt              time.Time
}

// Render writes r as an A4 PDF to w.
func Render(w io.Writer, r Report) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("JobLens match report", true)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	// Core fonts are cp1252; non-Latin runes degrade to '?'.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, "JobLens match report", "", 1, "L", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 10)
	if r.ID != "" {
		pdf.CellFormat(0, 6, "Analysis "+r.ID, "", 1, "L", false, 0, "")
	}
	if !r.CreatedAt.IsZero() {
		pdf.CellFormat(0, 6, r.CreatedAt.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(0, 6, tr("Resume: "+r.ResumeFilename), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr("Job description: "+r.JobDescriptionFilename), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 28)
	pdf.CellFormat(0, 14, fmt.Sprintf("%.2f%% match", r.MatchPercentage), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	heading(pdf, fmt.Sprintf("Missing keywords (%d)", len(r.MissingKeywords)))
	if len(r.MissingKeywords) == 0 {
		pdf.MultiCell(0, 5, "None. Every job description term appears in the resume.", "", "L", false)
	} else {
		pdf.MultiCell(0, 5, tr(strings.Join(r.MissingKeywords, ", ")), "", "L", false)
	}

	if r.Recommendation != "" {
		pdf.Ln(4)
		heading(pdf, "Recommendation")
		pdf.MultiCell(0, 5, tr(r.Recommendation), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func heading(pdf *gofpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 8, text, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
}
