package usecase_test

import (
	"context"
	"fmt"
	"sort"

	"github.com/suhailma1ik/KinCashBackend/internal/domain/event"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/model"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/port"
	"github.com/suhailma1ik/KinCashBackend/internal/domain/valueobject"
)

// memStore is an in-memory port.UnitOfWork with transactional semantics: a
// callback error restores the pre-callback state, mirroring a rollback.
type memStore struct {
	loans        map[string]model.Loan
	installments map[int64]model.Installment
	payments     map[string]model.Payment // keyed by idempotency key
	transactions []model.Transaction
	nextInstID   int64

	// onLock, when set, runs the first time the loan lock is taken. It lets a
	// test commit a competing write between a use case's initial read and its
	// serialization point.
	onLock func()
}

func newMemStore() *memStore {
	return &memStore{
		loans:        make(map[string]model.Loan),
		installments: make(map[int64]model.Installment),
		payments:     make(map[string]model.Payment),
	}
}

func (s *memStore) Execute(_ context.Context, fn func(r port.Repositories) error) error {
	snapshot := s.clone()
	err := fn(port.Repositories{
		Loans:        &memLoans{s: s},
		Installments: &memInstallments{s: s},
		Payments:     &memPayments{s: s},
		Transactions: &memTransactions{s: s},
	})
	if err != nil {
		*s = *snapshot
		return err
	}
	return nil
}

func (s *memStore) clone() *memStore {
	c := newMemStore()
	for k, v := range s.loans {
		c.loans[k] = v
	}
	for k, v := range s.installments {
		c.installments[k] = v
	}
	for k, v := range s.payments {
		c.payments[k] = v
	}
	c.transactions = append(c.transactions, s.transactions...)
	c.nextInstID = s.nextInstID
	c.onLock = s.onLock
	return c
}

func (s *memStore) addLoan(loan model.Loan) {
	s.loans[loan.ID()] = loan
}

func (s *memStore) addInstallments(installments []model.Installment) []model.Installment {
	out := make([]model.Installment, len(installments))
	for i, inst := range installments {
		s.nextInstID++
		inst.ID = s.nextInstID
		s.installments[inst.ID] = inst
		out[i] = inst
	}
	return out
}

func (s *memStore) transactionsOfType(tt valueobject.TransactionType) []model.Transaction {
	var out []model.Transaction
	for _, tx := range s.transactions {
		if tx.Type.Equal(tt) {
			out = append(out, tx)
		}
	}
	return out
}

type memLoans struct{ s *memStore }

func (r *memLoans) Create(_ context.Context, loan model.Loan) error {
	r.s.loans[loan.ID()] = loan
	return nil
}

func (r *memLoans) Get(_ context.Context, id string) (model.Loan, error) {
	loan, ok := r.s.loans[id]
	if !ok {
		return model.Loan{}, fmt.Errorf("loan %s: %w", id, valueobject.ErrNotFound)
	}
	return loan, nil
}

func (r *memLoans) Update(_ context.Context, loan model.Loan) error {
	if _, ok := r.s.loans[loan.ID()]; !ok {
		return fmt.Errorf("loan %s: %w", loan.ID(), valueobject.ErrNotFound)
	}
	r.s.loans[loan.ID()] = loan
	return nil
}

func (r *memLoans) ListByParticipant(_ context.Context, userID string) ([]model.Loan, error) {
	var out []model.Loan
	for _, loan := range r.s.loans {
		if loan.IsDeleted() {
			continue
		}
		if loan.LenderID() == userID || loan.BorrowerID() == userID {
			out = append(out, loan)
		}
	}
	return out, nil
}

func (r *memLoans) ListActive(_ context.Context) ([]model.Loan, error) {
	var out []model.Loan
	for _, loan := range r.s.loans {
		if !loan.IsDeleted() && loan.Status().Equal(valueobject.LoanStatusActive) {
			out = append(out, loan)
		}
	}
	return out, nil
}

func (r *memLoans) Lock(context.Context, string) error {
	if r.s.onLock != nil {
		hook := r.s.onLock
		r.s.onLock = nil
		hook()
	}
	return nil
}

type memInstallments struct{ s *memStore }

func (r *memInstallments) ReplaceForLoan(_ context.Context, loanID string, installments []model.Installment) ([]model.Installment, error) {
	for id, inst := range r.s.installments {
		if inst.LoanID == loanID {
			delete(r.s.installments, id)
		}
	}
	return r.s.addInstallments(installments), nil
}

func (r *memInstallments) Get(_ context.Context, id int64) (model.Installment, error) {
	inst, ok := r.s.installments[id]
	if !ok {
		return model.Installment{}, fmt.Errorf("installment %d: %w", id, valueobject.ErrNotFound)
	}
	return inst, nil
}

func (r *memInstallments) ListByLoan(_ context.Context, loanID string) ([]model.Installment, error) {
	var out []model.Installment
	for _, inst := range r.s.installments {
		if inst.LoanID == loanID {
			out = append(out, inst)
		}
	}
	sortInstallments(out)
	return out, nil
}

func (r *memInstallments) ListUnpaidByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	all, _ := r.ListByLoan(ctx, loanID)
	var out []model.Installment
	for _, inst := range all {
		if !inst.Status.Equal(valueobject.InstallmentStatusPaid) {
			out = append(out, inst)
		}
	}
	return out, nil
}

func (r *memInstallments) Update(_ context.Context, inst model.Installment) error {
	if _, ok := r.s.installments[inst.ID]; !ok {
		return fmt.Errorf("installment %d: %w", inst.ID, valueobject.ErrNotFound)
	}
	r.s.installments[inst.ID] = inst
	return nil
}

func sortInstallments(installments []model.Installment) {
	sort.Slice(installments, func(i, j int) bool {
		if installments[i].DueDate.Equal(installments[j].DueDate) {
			return installments[i].Sequence < installments[j].Sequence
		}
		return installments[i].DueDate.Before(installments[j].DueDate)
	})
}

type memPayments struct{ s *memStore }

func (r *memPayments) Create(_ context.Context, p model.Payment) (bool, error) {
	if _, exists := r.s.payments[p.IdempotencyKey]; exists {
		return false, nil
	}
	r.s.payments[p.IdempotencyKey] = p
	return true, nil
}

func (r *memPayments) GetByIdempotencyKey(_ context.Context, key string) (model.Payment, error) {
	p, ok := r.s.payments[key]
	if !ok {
		return model.Payment{}, fmt.Errorf("payment with key %s: %w", key, valueobject.ErrNotFound)
	}
	return p, nil
}

func (r *memPayments) ListByLoan(_ context.Context, loanID string) ([]model.Payment, error) {
	var out []model.Payment
	for _, p := range r.s.payments {
		if p.LoanID == loanID {
			out = append(out, p)
		}
	}
	return out, nil
}

type memTransactions struct{ s *memStore }

func (r *memTransactions) Create(_ context.Context, t model.Transaction) error {
	r.s.transactions = append(r.s.transactions, t)
	return nil
}

func (r *memTransactions) ListByLoan(_ context.Context, loanID string) ([]model.Transaction, error) {
	var out []model.Transaction
	for _, t := range r.s.transactions {
		if t.RelatedID == loanID {
			out = append(out, t)
		}
	}
	return out, nil
}

// mockPublisher records published events.
type mockPublisher struct {
	events []event.DomainEvent
	err    error
}

func (p *mockPublisher) Publish(_ context.Context, events ...event.DomainEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *mockPublisher) eventTypes() []string {
	out := make([]string, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.EventType())
	}
	return out
}
