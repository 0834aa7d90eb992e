package loan

// Slot names one of the income/employment proof uploads attached to a loan.
type Slot string

const (
	SlotFirstFlyer  Slot = "fisrt_flyer"
	SlotSecondFlyer Slot = "second_flyer"
	SlotThirdFlyer  Slot = "third_flyer"
	SlotLaborCard   Slot = "labor_card"
)

var Slots = []Slot{SlotFirstFlyer, SlotSecondFlyer, SlotThirdFlyer, SlotLaborCard}

func ParseSlot(s string) (Slot, bool) {
	for _, slot := range Slots {
		if string(slot) == s {
			return slot, true
		}
	}
	return "", false
}

func (l *Loan) slotFields(s Slot) (locator *string, upID *string) {
	switch s {
	case SlotFirstFlyer:
		return l.FirstFlyer, l.UpIDFirstFlyer
	case SlotSecondFlyer:
		return l.SecondFlyer, l.UpIDSecondFlyer
	case SlotThirdFlyer:
		return l.ThirdFlyer, l.UpIDThirdFlyer
	case SlotLaborCard:
		return l.LaborCard, l.UpIDLaborCard
	}
	return nil, nil
}

// SlotLocator returns the stored locator and correlation id for s.
func (l *Loan) SlotLocator(s Slot) (locator, upID string) {
	loc, up := l.slotFields(s)
	if loc != nil {
		locator = *loc
	}
	if up != nil {
		upID = *up
	}
	return locator, upID
}

// SetSlot records a new upload for s.
func (l *Loan) SetSlot(s Slot, locator, upID string) {
	switch s {
	case SlotFirstFlyer:
		l.FirstFlyer, l.UpIDFirstFlyer = &locator, &upID
	case SlotSecondFlyer:
		l.SecondFlyer, l.UpIDSecondFlyer = &locator, &upID
	case SlotThirdFlyer:
		l.ThirdFlyer, l.UpIDThirdFlyer = &locator, &upID
	case SlotLaborCard:
		l.LaborCard, l.UpIDLaborCard = &locator, &upID
	}
}
