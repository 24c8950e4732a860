package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/application/dto"
	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
	"github.com/suhailma1ik/KinCashBackend/pkg/auth"
)

// PaymentHandler serves repayment submission and the per-installment
// confirmation endpoints.
type PaymentHandler struct {
	record  *usecase.RecordPaymentUseCase
	pending *usecase.MarkInstallmentPendingUseCase
	confirm *usecase.ConfirmInstallmentPaymentUseCase
	paid    *usecase.MarkInstallmentPaidUseCase
	logger  *slog.Logger
}

// NewPaymentHandler creates the payment HTTP handler.
func NewPaymentHandler(
	record *usecase.RecordPaymentUseCase,
	pending *usecase.MarkInstallmentPendingUseCase,
	confirm *usecase.ConfirmInstallmentPaymentUseCase,
	paid *usecase.MarkInstallmentPaidUseCase,
	logger *slog.Logger,
) *PaymentHandler {
	return &PaymentHandler{record: record, pending: pending, confirm: confirm, paid: paid, logger: logger}
}

// RegisterRoutes attaches payment and installment routes to the given mux.
func (h *PaymentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/loans/{id}/payments", h.recordPayment)
	mux.HandleFunc("POST /api/v1/installments/{id}/pending", h.markPending)
	mux.HandleFunc("POST /api/v1/installments/{id}/confirm", h.confirmPayment)
	mux.HandleFunc("POST /api/v1/installments/{id}/paid", h.markPaid)
}

type recordPaymentBody struct {
	Amount         decimal.Decimal `json:"amount"`
	Remarks        string          `json:"remarks"`
	IdempotencyKey string          `json:"idempotency_key"`
}

func (h *PaymentHandler) recordPayment(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	var body recordPaymentBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.record.Execute(r.Context(), dto.RecordPaymentRequest{
		LoanID:         r.PathValue("id"),
		PayerID:        claims.UserID.String(),
		Amount:         body.Amount,
		Remarks:        body.Remarks,
		IdempotencyKey: body.IdempotencyKey,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if resp.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

type markPendingBody struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *PaymentHandler) markPending(w http.ResponseWriter, r *http.Request) {
	id, ok := installmentID(w, r)
	if !ok {
		return
	}

	var body markPendingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applied, err := h.pending.Execute(r.Context(), id, body.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"installment_id": id, "applied": applied})
}

func (h *PaymentHandler) confirmPayment(w http.ResponseWriter, r *http.Request) {
	id, ok := installmentID(w, r)
	if !ok {
		return
	}

	applied, err := h.confirm.Execute(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"installment_id": id, "applied": applied})
}

// markPaid is the one-phase protocol kept for callers that predate lender
// confirmation.
func (h *PaymentHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, ok := installmentID(w, r)
	if !ok {
		return
	}

	var body markPendingBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	applied, err := h.paid.Execute(r.Context(), id, body.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"installment_id": id, "applied": applied})
}

func installmentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid installment id")
		return 0, false
	}
	return id, true
}
