package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwms/warehouse/internal/warehouse/actorctx"
	"github.com/inkwms/warehouse/internal/warehouse/dispatch"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/renderer"
	"github.com/inkwms/warehouse/internal/warehouse/repository"
	"github.com/inkwms/warehouse/pkg/httputil"
	"github.com/inkwms/warehouse/pkg/logger"
)

// DispatchHandler exposes the delivery-note lifecycle operations and the
// PDF rendering of an issued document.
type DispatchHandler struct {
	service   *dispatch.Service
	customers *repository.CustomerRepository
	items     *repository.ItemRepository
	batches   *repository.BatchRepository
	logger    *logger.Logger
}

func NewDispatchHandler(svc *dispatch.Service, customers *repository.CustomerRepository, items *repository.ItemRepository, batches *repository.BatchRepository, log *logger.Logger) *DispatchHandler {
	return &DispatchHandler{service: svc, customers: customers, items: items, batches: batches, logger: log}
}

type lineItemRequest struct {
	BatchID  string `json:"batch_id"`
	Quantity string `json:"quantity"`
}

type createDeliveryNoteRequest struct {
	CustomerID    string            `json:"customer_id"`
	Items         []lineItemRequest `json:"items"`
	IsConsignment bool              `json:"is_consignment"`
	Notes         string            `json:"notes,omitempty"`
}

// Create builds a DRAFT delivery note and picks stock for each line item.
func (h *DispatchHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDeliveryNoteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}

	items := make([]dispatch.LineItem, 0, len(req.Items))
	for _, li := range req.Items {
		qty, err := domain.QuantityFromString(li.Quantity)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		items = append(items, dispatch.LineItem{BatchID: li.BatchID, Quantity: qty})
	}

	performedBy := actorctx.IDFromRequest(r)
	dn, err := h.service.Create(r.Context(), req.CustomerID, items, performedBy, req.IsConsignment, req.Notes)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.Created(w, dn)
}

// Issue transitions a DRAFT delivery note to ISSUED.
func (h *DispatchHandler) Issue(w http.ResponseWriter, r *http.Request) {
	dn, err := h.service.Issue(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, dn)
}

// Deliver transitions an ISSUED delivery note to DELIVERED.
func (h *DispatchHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	dn, err := h.service.Deliver(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, dn)
}

// Invoice transitions a DELIVERED delivery note to INVOICED.
func (h *DispatchHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	dn, err := h.service.Invoice(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, dn)
}

// Cancel cancels a delivery note, reversing any stock already picked.
func (h *DispatchHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	performedBy := actorctx.IDFromRequest(r)
	dn, err := h.service.Cancel(r.Context(), chi.URLParam(r, "id"), performedBy)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, dn)
}

// PDF renders a delivery note as a printable document, joining the
// customer and each line item's item/batch details the renderer needs.
func (h *DispatchHandler) PDF(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dn, err := h.service.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httputil.Error(w, err)
		return
	}

	customer, err := h.customers.GetByID(ctx, dn.CustomerID)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	doc := renderer.DeliveryNoteDocument{
		Number:          dn.Number,
		IssueDate:       dn.IssueDate,
		CustomerName:    customer.Name,
		CustomerAddress: customer.Address,
		ContactPerson:   customer.ContactPerson,
		IsConsignment:   dn.IsConsignment,
		Notes:           dn.Notes,
		CreatedByName:   dn.CreatedBy,
	}

	for _, li := range dn.Items {
		batch, err := h.batches.GetByID(ctx, li.BatchID)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		item, err := h.items.GetByID(ctx, li.ItemID)
		if err != nil {
			httputil.Error(w, err)
			return
		}
		doc.Items = append(doc.Items, renderer.DeliveryNoteLineItem{
			SKU:            item.SKU,
			ItemName:       item.Name,
			Unit:           item.Unit,
			BatchNumber:    batch.BatchNumber,
			ExpirationDate: batch.ExpirationDate,
			Quantity:       li.Quantity,
		})
	}

	pdf, err := renderer.DeliveryNotePDF(doc)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "inline; filename=\""+dn.Number+".pdf\"")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}
