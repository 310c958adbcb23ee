package order

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-checkout/internal/catalog"
	"github.com/noah-isme/backend-checkout/internal/common"
	"github.com/noah-isme/backend-checkout/internal/token"
)

// Handler exposes order summaries over HTTP.
type Handler struct {
	Store   Store
	Summary *SummaryService
}

// GetSummary returns the checkout summary for an order. The currency query
// parameter drives totals recomputation when the order has no cached total.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || h.Summary == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order summary not configured", nil)
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	ord, err := h.Store.Order(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	summary, err := h.Summary.Build(r.Context(), ord, SummaryOptions{
		BearerToken: common.BearerToken(r),
		Currency:    r.URL.Query().Get("currency"),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": summary})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case catalog.IsNoPrice(err):
		common.JSONError(w, http.StatusFailedDependency, "NO_PRICE", err.Error(), nil)
	case errors.Is(err, token.ErrMissingEmail):
		common.JSONError(w, http.StatusInternalServerError, "MISSING_EMAIL", "order has no email to mint a token for", nil)
	default:
		var appErr *common.AppError
		if errors.As(err, &appErr) {
			status := appErr.HTTPStatus
			if status == 0 {
				status = http.StatusInternalServerError
			}
			common.JSONError(w, status, appErr.Code, appErr.Message, appErr.Details)
			return
		}
		common.JSONError(w, http.StatusBadGateway, "UPSTREAM", err.Error(), nil)
	}
}
