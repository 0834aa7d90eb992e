package transition

type TransitionInput struct {
	LoanID     string `json:"-"`
	Status     string `json:"status" validate:"required"`
	Reason     string `json:"reason"`
	EmployeeID string `json:"-"`
}

type ProposeCantityInput struct {
	LoanID     string `json:"-"`
	NewCantity string `json:"new_cantity" validate:"required"`
	Reason     string `json:"reason_change_cantity" validate:"required"`
	EmployeeID string `json:"-"`
}

type RespondCantityInput struct {
	LoanID string `json:"-"`
	Accept *bool  `json:"accept" validate:"required"`
}
