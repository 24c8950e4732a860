package rest

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
)

// SweepHandler exposes a manual trigger for the overdue sweep, alongside the
// scheduled run.
type SweepHandler struct {
	sweep  *usecase.OverdueSweepUseCase
	logger *slog.Logger
}

// NewSweepHandler creates the sweep HTTP handler.
func NewSweepHandler(sweep *usecase.OverdueSweepUseCase, logger *slog.Logger) *SweepHandler {
	return &SweepHandler{sweep: sweep, logger: logger}
}

// RegisterRoutes attaches the sweep route to the given mux.
func (h *SweepHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/sweeps/overdue", h.runSweep)
}

func (h *SweepHandler) runSweep(w http.ResponseWriter, r *http.Request) {
	result, err := h.sweep.Execute(r.Context(), time.Now().UTC())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
