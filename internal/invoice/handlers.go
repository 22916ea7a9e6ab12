package invoice

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/noah-isme/backend-kasir/internal/common"
	"github.com/noah-isme/backend-kasir/internal/pricing"
)

// Handler wires the invoice lifecycle to HTTP.
type Handler struct {
	Svc *Service
}

// Create handles POST /invoices.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.Create(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, inv)
}

// Get handles GET /invoices/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, inv)
}

// AddItem handles POST /invoices/{id}/items.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ProductID string `json:"productId"`
		Qty       int    `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	if payload.Qty == 0 {
		payload.Qty = 1
	}
	inv, err := h.Svc.AddItem(r.Context(), chi.URLParam(r, "id"), payload.ProductID, payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, inv)
}

// UpdateItem handles PATCH /invoices/{id}/items/{itemId}.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Qty *int `json:"qty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Qty == nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "qty is required", nil)
		return
	}
	inv, err := h.Svc.UpdateItemQty(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"), *payload.Qty)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, inv)
}

// RemoveItem handles DELETE /invoices/{id}/items/{itemId}.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.RemoveItem(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "itemId"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, inv)
}

// Complete handles POST /invoices/{id}/complete.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		PaymentMethod string `json:"paymentMethod"`
	}
	// Body is optional; an empty payment method defaults to cash.
	_ = json.NewDecoder(r.Body).Decode(&payload)
	inv, err := h.Svc.Complete(r.Context(), chi.URLParam(r, "id"), PaymentMethod(payload.PaymentMethod))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, inv)
}

// Receipt handles GET /invoices/{id}/receipt, returning the printable
// plain-text receipt.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(FormatReceipt(inv)))
}

// Preview handles POST /cart/preview: price a set of lines without persisting.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Lines []Line `json:"lines"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	items, sum, err := h.Svc.Preview(r.Context(), payload.Lines)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusOK, map[string]any{
		"items":         items,
		"subtotal":      sum.Subtotal,
		"serviceCharge": sum.ServiceCharge,
		"tax":           sum.Tax,
		"total":         sum.Total,
	})
}

// Checkout handles POST /checkout: one-shot create, add lines, complete.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Lines         []Line `json:"lines"`
		PaymentMethod string `json:"paymentMethod"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid json body", nil)
		return
	}
	inv, err := h.Svc.Checkout(r.Context(), payload.Lines, PaymentMethod(payload.PaymentMethod))
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.Data(w, http.StatusCreated, inv)
}

// writeError maps domain sentinel errors onto AppErrors before rendering, so
// every invoice endpoint shares the canonical error envelope.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		common.WriteError(w, common.NewAppError("NOT_FOUND", err.Error(), http.StatusNotFound, err))
	case errors.Is(err, ErrCompleted):
		common.WriteError(w, common.NewAppError("INVOICE_COMPLETED", "invoice is already completed", http.StatusConflict, err))
	case errors.Is(err, ErrEmpty):
		common.WriteError(w, common.NewAppError("INVOICE_EMPTY", "cannot complete an empty invoice", http.StatusConflict, err))
	case errors.Is(err, ErrConflict):
		common.WriteError(w, common.NewAppError("CONFLICT", "invoice was modified concurrently, retry", http.StatusConflict, err))
	case errors.Is(err, ErrInvalidInput), errors.Is(err, pricing.ErrInvalidInput):
		common.WriteError(w, common.NewAppError("BAD_REQUEST", err.Error(), http.StatusBadRequest, err))
	default:
		common.WriteError(w, err)
	}
}
