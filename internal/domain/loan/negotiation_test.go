package loan

import (
	"errors"
	"testing"

	"creditflow-backend/internal/domain/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCantityOffer_Validation(t *testing.T) {
	for _, amount := range []string{"", "0", "-5", "12.5", "01000", "abc"} {
		_, err := NewCantityOffer(amount, "income verified")
		assert.True(t, errors.Is(err, apperror.ErrInvalidInput), "amount %q", amount)
	}
	_, err := NewCantityOffer("1200000", " ")
	assert.True(t, errors.Is(err, apperror.ErrInvalidInput))

	offer, err := NewCantityOffer(" 1200000 ", "income verified")
	require.NoError(t, err)
	assert.Equal(t, "1200000", offer.Amount())
	assert.Equal(t, "income verified", offer.Reason())
}

func TestNegotiation_Accept(t *testing.T) {
	l := &Loan{LoanID: "L1", Status: StatusPending, Cantity: "1000000"}
	offer, err := NewCantityOffer("1200000", "income verified")
	require.NoError(t, err)

	require.NoError(t, ProposeCantity(l, offer, str("e1")))
	assert.True(t, l.NewCantityOpt)
	assert.Equal(t, StatusPending, l.Status)

	require.NoError(t, RespondCantity(l, true))
	assert.Equal(t, "1200000", l.Cantity)
	assert.False(t, l.NewCantityOpt)
	assert.Nil(t, l.NewCantity)
}

func TestNegotiation_Reject(t *testing.T) {
	l := &Loan{LoanID: "L1", Status: StatusPending, Cantity: "1000000"}
	offer, _ := NewCantityOffer("800000", "debt ratio")
	require.NoError(t, ProposeCantity(l, offer, nil))

	require.NoError(t, RespondCantity(l, false))
	assert.Equal(t, "1000000", l.Cantity)
	assert.False(t, l.NewCantityOpt)
	assert.Nil(t, l.NewCantity)
	assert.Equal(t, StatusPending, l.Status)
}

func TestNegotiation_Guards(t *testing.T) {
	offer, _ := NewCantityOffer("800000", "debt ratio")

	approved := &Loan{LoanID: "L2", Status: StatusApproved}
	assert.True(t, errors.Is(ProposeCantity(approved, offer, nil), apperror.ErrPreconditionFailed))

	open := &Loan{LoanID: "L3", Status: StatusPending, NewCantity: str("900000"), NewCantityOpt: true}
	assert.True(t, errors.Is(ProposeCantity(open, offer, nil), apperror.ErrAwaitingClientResponse))

	idle := &Loan{LoanID: "L4", Status: StatusPending}
	assert.True(t, errors.Is(RespondCantity(idle, true), apperror.ErrPreconditionFailed))

	assert.True(t, errors.Is(ProposeCantity(&Loan{Status: StatusPending}, CantityOffer{}, nil), apperror.ErrInvalidInput))
}
