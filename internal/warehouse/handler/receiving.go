package handler

import (
	"net/http"
	"time"

	"github.com/inkwms/warehouse/internal/warehouse/actorctx"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/receiving"
	"github.com/inkwms/warehouse/pkg/httputil"
	"github.com/inkwms/warehouse/pkg/logger"
)

// ReceivingHandler exposes the goods-receipt intake operations.
type ReceivingHandler struct {
	service *receiving.Service
	logger  *logger.Logger
}

func NewReceivingHandler(svc *receiving.Service, log *logger.Logger) *ReceivingHandler {
	return &ReceivingHandler{service: svc, logger: log}
}

// receiptRequest is the wire shape for one receipt line.
type receiptRequest struct {
	ItemID              string     `json:"item_id"`
	Quantity            string     `json:"quantity"`
	ExpirationDate      time.Time  `json:"expiration_date"`
	BatchNumber         string     `json:"batch_number,omitempty"`
	SupplierBatchNumber string     `json:"supplier_batch_number,omitempty"`
	LocationID          *string    `json:"location_id,omitempty"`
	ReceiptDate         *time.Time `json:"receipt_date,omitempty"`
	Notes               string     `json:"notes,omitempty"`
}

func (req receiptRequest) toReceipt() (receiving.Receipt, error) {
	qty, err := domain.QuantityFromString(req.Quantity)
	if err != nil {
		return receiving.Receipt{}, err
	}
	return receiving.Receipt{
		ItemID:              req.ItemID,
		Quantity:            qty,
		ExpirationDate:      req.ExpirationDate,
		BatchNumber:         req.BatchNumber,
		SupplierBatchNumber: req.SupplierBatchNumber,
		LocationID:          req.LocationID,
		ReceiptDate:         req.ReceiptDate,
		Notes:               req.Notes,
	}, nil
}

// ReceiveSingle handles a single-item goods receipt.
func (h *ReceivingHandler) ReceiveSingle(w http.ResponseWriter, r *http.Request) {
	var req receiptRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		httputil.Error(w, err)
		return
	}
	rec, err := req.toReceipt()
	if err != nil {
		httputil.Error(w, err)
		return
	}

	performedBy := actorctx.IDFromRequest(r)
	result, grn, err := h.service.ReceiveSingle(r.Context(), rec, performedBy)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{
		"batch":    result.Batch,
		"movement": result.Movement,
		"warning":  result.Warning,
		"grn":      grn,
	})
}

// ReceiveMultiple handles a multi-item goods receipt under one GRN.
func (h *ReceivingHandler) ReceiveMultiple(w http.ResponseWriter, r *http.Request) {
	var reqs []receiptRequest
	if err := httputil.DecodeJSON(r, &reqs); err != nil {
		httputil.Error(w, err)
		return
	}

	receipts := make([]receiving.Receipt, 0, len(reqs))
	for _, req := range reqs {
		rec, err := req.toReceipt()
		if err != nil {
			httputil.Error(w, err)
			return
		}
		receipts = append(receipts, rec)
	}

	performedBy := actorctx.IDFromRequest(r)
	results, grn, err := h.service.ReceiveMultiple(r.Context(), receipts, performedBy)
	if err != nil {
		httputil.Error(w, err)
		return
	}

	httputil.Created(w, map[string]interface{}{
		"batches": results,
		"grn":     grn,
	})
}
