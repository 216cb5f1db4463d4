// Package pdf renders invoice snapshots into downloadable PDF documents.
// Rendering is read-only: it receives an already-fetched, already-authorized
// view of the invoice and never touches storage.
package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/tecnicanomade/riego/internal/i18n"
)

const (
	companyName    = "Tecnica Nomade"
	companyTagline = "Sistemas de Riego"
	dateLayout     = "02/01/2006" // es-AR calendar date
)

// InvoiceData is the immutable snapshot rendered into the document.
type InvoiceData struct {
	Number      string // display number, fallback already applied
	IssueDate   time.Time
	ClientName  string
	ClientEmail string
	ProjectName string // empty when the invoice has no project
	Description string
	Amount      float64
	StatusLabel string
	PaymentDate *time.Time
}

// Invoice renders the snapshot into PDF bytes. Field order and fallbacks are
// part of the external contract of the downloadable artifact.
func Invoice(data InvoiceData, lang string) ([]byte, error) {
	doc := gofpdf.New("P", "mm", "A4", "")
	tr := doc.UnicodeTranslatorFromDescriptor("")
	doc.SetFooterFunc(func() {
		doc.SetY(-15)
		doc.SetFont("Helvetica", "", 8)
		doc.SetTextColor(153, 153, 153)
		doc.CellFormat(0, 10, tr(companyName+" - "+companyTagline), "", 0, "C", false, 0, "")
	})
	doc.AddPage()

	// Company header
	doc.SetFont("Helvetica", "B", 24)
	doc.SetTextColor(45, 134, 89)
	doc.CellFormat(0, 10, tr(companyName), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(102, 102, 102)
	doc.CellFormat(0, 6, tr(companyTagline), "", 1, "L", false, 0, "")
	doc.Ln(8)

	// Title with number and issue date on the right
	doc.SetFont("Helvetica", "B", 20)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(110, 10, tr(i18n.T(lang, "invoice")), "", 0, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(102, 102, 102)
	doc.CellFormat(0, 5, tr(i18n.T(lang, "number")+": "+data.Number), "", 1, "R", false, 0, "")
	doc.CellFormat(110, 5, "", "", 0, "L", false, 0, "")
	doc.CellFormat(0, 5, tr(i18n.T(lang, "date")+": "+data.IssueDate.Format(dateLayout)), "", 1, "R", false, 0, "")
	doc.Ln(8)

	// Client block
	doc.SetFont("Helvetica", "B", 12)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 6, tr(i18n.T(lang, "client")+":"), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 11)
	doc.SetTextColor(51, 51, 51)
	doc.CellFormat(0, 6, tr(data.ClientName), "", 1, "L", false, 0, "")
	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(102, 102, 102)
	doc.CellFormat(0, 5, tr(data.ClientEmail), "", 1, "L", false, 0, "")

	if data.ProjectName != "" {
		doc.Ln(4)
		doc.SetFont("Helvetica", "B", 12)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(0, 6, tr(i18n.T(lang, "project")+":"), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.SetTextColor(51, 51, 51)
		doc.CellFormat(0, 6, tr(data.ProjectName), "", 1, "L", false, 0, "")
	}

	if data.Description != "" {
		doc.Ln(4)
		doc.SetFont("Helvetica", "B", 12)
		doc.SetTextColor(0, 0, 0)
		doc.CellFormat(0, 6, tr(i18n.T(lang, "description")+":"), "", 1, "L", false, 0, "")
		doc.SetFont("Helvetica", "", 11)
		doc.SetTextColor(51, 51, 51)
		doc.MultiCell(0, 6, tr(data.Description), "", "L", false)
	}

	// Amount
	doc.Ln(10)
	doc.SetFont("Helvetica", "B", 16)
	doc.SetTextColor(45, 134, 89)
	doc.CellFormat(0, 8, tr(i18n.T(lang, "total")+":"), "", 1, "R", false, 0, "")
	doc.SetFont("Helvetica", "B", 20)
	doc.CellFormat(0, 10, fmt.Sprintf("$%.2f", data.Amount), "", 1, "R", false, 0, "")

	// Status, and payment date when paid
	doc.Ln(4)
	doc.SetFont("Helvetica", "", 12)
	doc.SetTextColor(0, 0, 0)
	doc.CellFormat(0, 6, tr(i18n.T(lang, "status")+": "+data.StatusLabel), "", 1, "L", false, 0, "")
	if data.PaymentDate != nil {
		doc.SetFont("Helvetica", "", 10)
		doc.SetTextColor(102, 102, 102)
		doc.CellFormat(0, 5, tr(i18n.T(lang, "payment_date")+": "+data.PaymentDate.Format(dateLayout)), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render invoice pdf: %w", err)
	}
	return buf.Bytes(), nil
}
