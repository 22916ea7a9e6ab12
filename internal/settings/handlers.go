package settings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/noah-isme/backend-kasir/internal/common"
)

// Handler wires the settings service to HTTP.
type Handler struct {
	Svc *Service
}

type rateResponse struct {
	ServiceRate float64 `json:"serviceRate"`
	TaxRate     float64 `json:"taxRate"`
	ServiceBps  int     `json:"serviceBps"`
	TaxBps      int     `json:"taxBps"`
}

func toResponse(r Rates) rateResponse {
	return rateResponse{
		ServiceRate: r.ServiceRate(),
		TaxRate:     r.TaxRate(),
		ServiceBps:  r.ServiceBps,
		TaxBps:      r.TaxBps,
	}
}

// Get returns the current rates.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Svc.Get(r.Context())
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, toResponse(rates))
}

// UpdateService sets the service charge rate.
func (h *Handler) UpdateService(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.Svc.UpdateServiceRate)
}

// UpdateTax sets the tax rate.
func (h *Handler) UpdateTax(w http.ResponseWriter, r *http.Request) {
	h.update(w, r, h.Svc.UpdateTaxRate)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request, apply func(context.Context, float64) (Rates, error)) {
	var payload struct {
		Rate *float64 `json:"rate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Rate == nil {
		common.WriteError(w, common.NewAppError("BAD_REQUEST", "rate is required", http.StatusBadRequest, nil))
		return
	}
	rates, err := apply(r.Context(), *payload.Rate)
	if err != nil {
		if errors.Is(err, ErrInvalidRate) {
			common.WriteError(w, common.NewAppError("BAD_REQUEST", "rate must be between 0 and 1", http.StatusBadRequest, err))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, toResponse(rates))
}
