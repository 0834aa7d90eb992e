package uowmock

import (
	"context"
	"errors"
	"testing"

	"creditflow-backend/internal/domain/loan"
	"creditflow-backend/internal/domain/uow"
	"creditflow-backend/internal/testutil/documentmock"
	"creditflow-backend/internal/testutil/loanmock"
)

func TestUoW_Unimplemented(t *testing.T) {
	m := &UoW{}
	if err := m.WithinTx(context.Background(), func(uow.Repos) error { return nil }); !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinTx: %v", err)
	}
	err := m.WithinLoanTx(context.Background(), "L1", func(uow.Repos, *loan.Loan) error { return nil })
	if !errors.Is(err, errUnimplemented) {
		t.Fatalf("WithinLoanTx: %v", err)
	}
}

func TestPassthrough_ForwardsReposAndLocksLoan(t *testing.T) {
	ctx := context.Background()
	locked := &loan.Loan{LoanID: "L1"}
	loans := &loanmock.Repo{
		GetByLoanIDForUpdateFn: func(_ context.Context, loanID string) (*loan.Loan, error) {
			if loanID != "L1" {
				t.Fatalf("locked %s", loanID)
			}
			return locked, nil
		},
	}
	docs := &documentmock.Repo{}
	m := Passthrough(uow.Repos{Loans: loans, Documents: docs})

	called := false
	err := m.WithinLoanTx(ctx, "L1", func(r uow.Repos, l *loan.Loan) error {
		called = true
		if r.Loans != loans || r.Documents != docs {
			t.Fatalf("repos not forwarded")
		}
		if l != locked {
			t.Fatalf("loan not forwarded")
		}
		return nil
	})
	if err != nil || !called {
		t.Fatalf("WithinLoanTx: called=%v err=%v", called, err)
	}

	boom := errors.New("boom")
	if err := m.WithinTx(ctx, func(uow.Repos) error { return boom }); !errors.Is(err, boom) {
		t.Fatalf("WithinTx did not propagate: %v", err)
	}
}

func TestPassthrough_LockFailure(t *testing.T) {
	m := Passthrough(uow.Repos{Loans: &loanmock.Repo{}})
	err := m.WithinLoanTx(context.Background(), "L1", func(uow.Repos, *loan.Loan) error {
		t.Fatal("callback must not run")
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want lock error, got %v", err)
	}
}
