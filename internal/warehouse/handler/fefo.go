package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inkwms/warehouse/internal/warehouse/domain"
	"github.com/inkwms/warehouse/internal/warehouse/fefo"
	"github.com/inkwms/warehouse/pkg/errors"
	"github.com/inkwms/warehouse/pkg/httputil"
	"github.com/inkwms/warehouse/pkg/logger"
)

// FEFOHandler exposes the FEFO engine's read-only planning operations.
type FEFOHandler struct {
	engine *fefo.Engine
	logger *logger.Logger
}

func NewFEFOHandler(engine *fefo.Engine, log *logger.Logger) *FEFOHandler {
	return &FEFOHandler{engine: engine, logger: log}
}

// Suggest returns a picking plan for ?quantity= units of the item.
func (h *FEFOHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	qty, err := quantityFromQuery(r, "quantity")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	excludeExpired := r.URL.Query().Get("include_expired") != "true"
	suggestions, err := h.engine.Suggest(r.Context(), itemID, qty, excludeExpired)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, suggestions)
}

// Validate checks whether a proposed pick against a specific batch is legal.
func (h *FEFOHandler) Validate(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	qty, err := quantityFromQuery(r, "quantity")
	if err != nil {
		httputil.Error(w, err)
		return
	}

	result, err := h.engine.Validate(r.Context(), batchID, qty)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, result)
}

// Summary returns the expiration-bucket breakdown for an item.
func (h *FEFOHandler) Summary(w http.ResponseWriter, r *http.Request) {
	itemID := chi.URLParam(r, "itemID")

	summary, err := h.engine.Summary(r.Context(), itemID)
	if err != nil {
		httputil.Error(w, err)
		return
	}
	httputil.JSON(w, http.StatusOK, summary)
}

func quantityFromQuery(r *http.Request, param string) (domain.Quantity, error) {
	raw := r.URL.Query().Get(param)
	if raw == "" {
		return domain.ZeroQuantity, errors.BadRequest(param + " is required")
	}
	qty, err := domain.QuantityFromString(raw)
	if err != nil {
		return domain.ZeroQuantity, errors.BadRequest("invalid " + param)
	}
	return qty, nil
}
