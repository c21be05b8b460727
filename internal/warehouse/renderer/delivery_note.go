// Package renderer turns a delivery note into an opaque PDF byte stream. It
// is a pure function of its input — no DB I/O, no side effects — mirroring
// the ReportLab-generated layout of the original: title, a header table,
// a line-item table with a total row, notes, a signature block, and a
// footer.
package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
)

// DeliveryNoteLineItem is one printable row: the line item plus the item
// and batch details the PDF needs but the DeliveryNoteItem itself doesn't
// carry.
type DeliveryNoteLineItem struct {
	SKU            string
	ItemName       string
	Unit           string
	BatchNumber    string
	ExpirationDate time.Time
	Quantity       domain.Quantity
}

// DeliveryNoteDocument is everything DeliveryNotePDF needs to render one
// document, pre-joined by the caller so the renderer never touches the
// database.
type DeliveryNoteDocument struct {
	Number          string
	IssueDate       *time.Time
	CustomerName    string
	CustomerAddress string
	ContactPerson   string
	IsConsignment   bool
	Notes           string
	CreatedByName   string
	Items           []DeliveryNoteLineItem
}

// DeliveryNotePDF renders doc into a complete A4 PDF document.
func DeliveryNotePDF(doc DeliveryNoteDocument) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	title := "Delivery Note"
	if doc.IsConsignment {
		title = "Delivery Note - Consignment Transfer"
	}
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 12, title, "", 1, "C", false, 0, "")
	pdf.Ln(6)

	renderHeader(pdf, doc)
	pdf.Ln(6)

	renderItemsTable(pdf, doc.Items)
	pdf.Ln(10)

	if doc.Notes != "" {
		pdf.SetFont("Helvetica", "", 10)
		pdf.MultiCell(0, 6, fmt.Sprintf("Notes: %s", doc.Notes), "", "L", false)
		pdf.Ln(6)
	}

	renderSignatureBlock(pdf)
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated by: %s", doc.CreatedByName), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render delivery note pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func renderHeader(pdf *fpdf.Fpdf, doc DeliveryNoteDocument) {
	pdf.SetFont("Helvetica", "", 10)

	issueDate := ""
	if doc.IssueDate != nil {
		issueDate = doc.IssueDate.Format("02/01/2006")
	}

	rows := [][2]string{
		{"Delivery note number:", doc.Number},
		{"Date:", issueDate},
		{"Customer:", doc.CustomerName},
		{"Address:", doc.CustomerAddress},
		{"Contact:", doc.ContactPerson},
	}

	for _, row := range rows {
		pdf.CellFormat(40, 7, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(120, 7, row[1], "", 1, "L", false, 0, "")
	}
}

func renderItemsTable(pdf *fpdf.Fpdf, items []DeliveryNoteLineItem) {
	headers := []string{"#", "SKU", "Description", "Batch", "Expiration", "Qty", "Unit"}
	widths := []float64{10, 25, 50, 30, 25, 20, 15}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(220, 220, 220)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 8, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 9)
	total := domain.ZeroQuantity
	for i, item := range items {
		pdf.CellFormat(widths[0], 8, fmt.Sprintf("%d", i+1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 8, item.SKU, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[2], 8, item.ItemName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[3], 8, item.BatchNumber, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[4], 8, item.ExpirationDate.Format("02/01/2006"), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[5], 8, item.Quantity.String(), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[6], 8, item.Unit, "1", 1, "C", false, 0, "")
		total = total.Add(item.Quantity)
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(widths[0]+widths[1]+widths[2]+widths[3], 8, "", "", 0, "", false, 0, "")
	pdf.CellFormat(widths[4], 8, "Total:", "T", 0, "R", false, 0, "")
	pdf.CellFormat(widths[5], 8, total.String(), "T", 0, "C", false, 0, "")
	pdf.CellFormat(widths[6], 8, "", "T", 1, "", false, 0, "")
}

func renderSignatureBlock(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "", 10)

	pdf.CellFormat(30, 10, "Received by:", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 10, "_________________", "", 0, "L", false, 0, "")
	pdf.CellFormat(25, 10, "Date:", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 10, "_________________", "", 1, "L", false, 0, "")

	pdf.CellFormat(30, 10, "Name:", "", 0, "L", false, 0, "")
	pdf.CellFormat(50, 10, "_________________", "", 1, "L", false, 0, "")
}
