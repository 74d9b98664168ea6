package services

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/insightpilot/insightpilot-api/internal/models"
)

// PDFService renders a completed report document as a downloadable PDF.
type PDFService struct{}

func NewPDFService() *PDFService {
	return &PDFService{}
}

func (s *PDFService) Render(content *models.ReportContent) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("InsightPilot Report: "+content.IdeaName, true)
	pdf.SetAutoPageBreak(true, 20)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.SetTextColor(33, 37, 41)
	pdf.MultiCell(0, 9, "InsightPilot Report: "+content.IdeaName, "", "L", false)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(108, 117, 125)
	pdf.CellFormat(0, 6, "Generated "+content.GeneratedAt.Format("January 2, 2006"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetTextColor(33, 37, 41)
	pdf.CellFormat(0, 8, fmt.Sprintf("Overall Score: %d / %d", content.OverallScore, content.MaxScore), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	if content.ReportOverview != "" {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(0, 7, "Overview", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, content.ReportOverview, "", "L", false)
		pdf.Ln(4)
	}

	s.renderScoreTable(pdf, content)
	s.renderSections(pdf, content)
	s.renderList(pdf, "Strategic Next Steps", content.StrategicNextSteps)
	s.renderList(pdf, "Key Strengths", content.KeyStrengths)
	s.renderList(pdf, "Key Challenges", content.KeyChallenges)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *PDFService) renderScoreTable(pdf *fpdf.Fpdf, content *models.ReportContent) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, "Scores by Category", "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(233, 236, 239)
	pdf.CellFormat(130, 7, "Category", "1", 0, "L", true, 0, "")
	pdf.CellFormat(40, 7, "Score", "1", 1, "C", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, sec := range content.Sections {
		pdf.CellFormat(130, 7, sec.Category, "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, fmt.Sprintf("%d / %d", sec.Score, sec.MaxScore), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
}

func (s *PDFService) renderSections(pdf *fpdf.Fpdf, content *models.ReportContent) {
	for _, sec := range content.Sections {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.SetTextColor(33, 37, 41)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s (%d/%d)", sec.Category, sec.Score, sec.MaxScore), "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 5, sec.Insight, "", "L", false)
		for _, rec := range sec.Recommendations {
			pdf.MultiCell(0, 5, "- "+rec, "", "L", false)
		}
		pdf.Ln(3)
	}
}

func (s *PDFService) renderList(pdf *fpdf.Fpdf, title string, items []string) {
	if len(items) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(0, 7, title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	for _, item := range items {
		pdf.MultiCell(0, 5, "- "+item, "", "L", false)
	}
	pdf.Ln(3)
}
