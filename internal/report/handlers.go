package report

import (
	"errors"
	"net/http"

	"github.com/noah-isme/backend-kasir/internal/common"
)

type Handler struct {
	Svc *Service
}

// Daily handles GET /reports/daily?date=YYYY-MM-DD.
func (h *Handler) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		common.WriteError(w, common.NewAppError("BAD_REQUEST", "date query parameter is required", http.StatusBadRequest, nil))
		return
	}
	rep, err := h.Svc.Daily(r.Context(), date)
	if err != nil {
		if errors.Is(err, ErrInvalidDate) {
			common.WriteError(w, common.NewAppError("BAD_REQUEST", err.Error(), http.StatusBadRequest, err))
			return
		}
		common.WriteError(w, err)
		return
	}
	common.Data(w, http.StatusOK, rep)
}
