package renderer_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() renderer.DeliveryNoteDocument {
	issueDate := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return renderer.DeliveryNoteDocument{
		Number:          "DN-260310-0001",
		IssueDate:       &issueDate,
		CustomerName:    "Acme Clinics",
		CustomerAddress: "1 Harbor Way",
		ContactPerson:   "J. Rivera",
		IsConsignment:   false,
		Notes:           "handle with care",
		CreatedByName:   "system",
		Items: []renderer.DeliveryNoteLineItem{
			{
				SKU:            "INK-001",
				ItemName:       "Cyan Cartridge",
				Unit:           "EA",
				BatchNumber:    "B-0001",
				ExpirationDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
				Quantity:       domain.QuantityFromInt(10),
			},
		},
	}
}

func TestDeliveryNotePDF_ProducesNonEmptyPDFDocument(t *testing.T) {
	out, err := renderer.DeliveryNotePDF(sampleDocument())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.NotEmpty(t, out)
}

func TestDeliveryNotePDF_ConsignmentTitleDoesNotError(t *testing.T) {
	doc := sampleDocument()
	doc.IsConsignment = true
	out, err := renderer.DeliveryNotePDF(doc)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestDeliveryNotePDF_HandlesNoLineItems(t *testing.T) {
	doc := sampleDocument()
	doc.Items = nil
	out, err := renderer.DeliveryNotePDF(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, out)
}
