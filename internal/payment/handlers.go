package payment

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/noah-isme/backend-checkout/internal/catalog"
	"github.com/noah-isme/backend-checkout/internal/common"
	"github.com/noah-isme/backend-checkout/internal/order"
)

// Handler exposes payment assembly over HTTP.
type Handler struct {
	Store     order.Store
	Assembler Assembler
	Validate  *validator.Validate
}

// Create assembles the payment request for an order and returns it to the
// caller for submission.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Store == nil || h.Assembler == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "payment assembler not configured", nil)
		return
	}
	orderID, err := uuid.Parse(chi.URLParam(r, "orderId"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid order id", nil)
		return
	}
	var content Content
	if err := json.NewDecoder(r.Body).Decode(&content); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(content); err != nil {
			common.JSONError(w, http.StatusUnprocessableEntity, "VALIDATION", "invalid payment content", err.Error())
			return
		}
	}
	ord, err := h.Store.Order(r.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "order not found", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "failed to load order", nil)
		return
	}
	request, err := h.Assembler.Assemble(r.Context(), ord, content)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": request})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case catalog.IsNoPrice(err):
		common.JSONError(w, http.StatusFailedDependency, "NO_PRICE", err.Error(), nil)
	case errors.Is(err, ErrMissingOrderID):
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "order has no durable id", nil)
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
