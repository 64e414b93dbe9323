package ledger

import "BudgetReqSaas/api/budget/faults"

// EditBuffer is the scratch copy used while a selection is being edited.
// The product is fixed for the lifetime of the buffer; only quantities can
// change. Abandoning the buffer leaves the ledger untouched.
type EditBuffer struct {
	tempID  string
	product Product
	months  [12]int64
}

// BeginEdit loads the selection's vector into a fresh scratch buffer.
func (l Ledger) BeginEdit(tempID string) (*EditBuffer, error) {
	sel, ok := l.selections[tempID]
	if !ok {
		return nil, faults.NewValidationError("unknown selection " + tempID)
	}
	return &EditBuffer{tempID: sel.TempID, product: sel.Product, months: sel.Months}, nil
}

func (b *EditBuffer) Product() Product { return b.product }

func (b *EditBuffer) Months() [12]int64 { return b.months }

// SetMonth replaces the quantity for a 1-based month.
func (b *EditBuffer) SetMonth(month int, qty int64) error {
	if month < 1 || month > 12 {
		return faults.NewValidationError("month must be between 1 and 12")
	}
	if qty < 0 {
		return faults.NewValidationError("quantity must not be negative")
	}
	b.months[month-1] = qty
	return nil
}

// CommitEdit replaces the stored selection's vector with the buffer contents.
// The selection keeps its temp id and position.
func (l Ledger) CommitEdit(b *EditBuffer) (Ledger, error) {
	sel, ok := l.selections[b.tempID]
	if !ok {
		return l, faults.NewValidationError("selection " + b.tempID + " no longer exists")
	}
	if err := validateMonths(b.months); err != nil {
		return l, err
	}
	next := l.clone()
	sel.Months = b.months
	sel.TotalQuantity = sumMonths(b.months)
	next.selections[b.tempID] = sel
	return next, nil
}
