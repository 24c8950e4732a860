package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/suhailma1ik/KinCashBackend/internal/application/dto"
	"github.com/suhailma1ik/KinCashBackend/internal/application/usecase"
	"github.com/suhailma1ik/KinCashBackend/pkg/auth"
)

// LoanHandler serves the loan lifecycle endpoints. All routes require an
// authenticated caller; the JWT subject identifies the acting user.
type LoanHandler struct {
	create   *usecase.CreateLoanUseCase
	activate *usecase.ActivateLoanUseCase
	status   *usecase.LoanStatusUseCase
	get      *usecase.GetLoanUseCase
	logger   *slog.Logger
}

// NewLoanHandler creates the loan HTTP handler.
func NewLoanHandler(
	create *usecase.CreateLoanUseCase,
	activate *usecase.ActivateLoanUseCase,
	status *usecase.LoanStatusUseCase,
	get *usecase.GetLoanUseCase,
	logger *slog.Logger,
) *LoanHandler {
	return &LoanHandler{create: create, activate: activate, status: status, get: get, logger: logger}
}

// RegisterRoutes attaches loan routes to the given mux.
func (h *LoanHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/loans", h.createLoan)
	mux.HandleFunc("GET /api/v1/loans", h.listLoans)
	mux.HandleFunc("GET /api/v1/loans/{id}", h.getLoan)
	mux.HandleFunc("POST /api/v1/loans/{id}/activate", h.activateLoan)
	mux.HandleFunc("POST /api/v1/loans/{id}/cancel", h.cancelLoan)
	mux.HandleFunc("POST /api/v1/loans/{id}/default", h.markDefaulted)
	mux.HandleFunc("DELETE /api/v1/loans/{id}", h.deleteLoan)
}

type createLoanBody struct {
	LenderID        string          `json:"lender_id"`
	BorrowerID      string          `json:"borrower_id"`
	Principal       decimal.Decimal `json:"principal"`
	InterestRatePct decimal.Decimal `json:"interest_rate_pct"`
	TermMonths      int             `json:"term_months"`
	Cycle           string          `json:"cycle"`
	DueDay          int             `json:"due_day"`
	LateFeePct      decimal.Decimal `json:"late_fee_pct"`
}

func (h *LoanHandler) createLoan(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	var body createLoanBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.create.Execute(r.Context(), dto.CreateLoanRequest{
		LenderID:        body.LenderID,
		BorrowerID:      body.BorrowerID,
		CreatedByID:     claims.UserID.String(),
		Principal:       body.Principal,
		InterestRatePct: body.InterestRatePct,
		TermMonths:      body.TermMonths,
		Cycle:           body.Cycle,
		DueDay:          body.DueDay,
		LateFeePct:      body.LateFeePct,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (h *LoanHandler) listLoans(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing credentials")
		return
	}

	loans, err := h.get.List(r.Context(), claims.UserID.String())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *LoanHandler) getLoan(w http.ResponseWriter, r *http.Request) {
	resp, err := h.get.Execute(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *LoanHandler) activateLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.activate.Execute)
}

func (h *LoanHandler) cancelLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.status.Cancel)
}

func (h *LoanHandler) markDefaulted(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.status.MarkDefaulted)
}

func (h *LoanHandler) deleteLoan(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.status.SoftDelete)
}

// transition runs a loan state change and reports whether it applied. A
// transition from the wrong source state is not an error, only reported.
func (h *LoanHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, loanID string) (bool, error),
) {
	id := r.PathValue("id")
	applied, err := apply(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loan_id": id, "applied": applied})
}
