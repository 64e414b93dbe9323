package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/constants"
)

// Product is the purchasable item a selection points at. UnitPrice is the
// catalog price used for the reactive cost projection.
type Product struct {
	ID        int64           `json:"product_id"`
	PartidaID int64           `json:"partida_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// Selection is one ledger line: a product plus its twelve monthly
// quantities. TotalQuantity is always the sum of Months; it is stored for
// convenience but never set independently.
type Selection struct {
	TempID        string                         `json:"temp_id"`
	Product       Product                        `json:"product"`
	Months        [constants.MonthsPerYear]int64 `json:"months"`
	TotalQuantity int64                          `json:"total_quantity"`
}

// ProjectFigures are the last persisted annual-project numbers the ledger
// projects against. Available carries the server value verbatim for the
// static view.
type ProjectFigures struct {
	Assigned  decimal.Decimal
	Used      decimal.Decimal
	Available decimal.Decimal
}

// Ledger is an immutable value. Reducers return a new Ledger and never touch
// the receiver, so a caller holding an old value keeps a consistent snapshot.
type Ledger struct {
	selections map[string]Selection
	order      []string
	byProduct  map[int64]string
}

func New() Ledger {
	return Ledger{
		selections: map[string]Selection{},
		order:      nil,
		byProduct:  map[int64]string{},
	}
}

func (l Ledger) clone() Ledger {
	next := Ledger{
		selections: make(map[string]Selection, len(l.selections)),
		order:      make([]string, len(l.order)),
		byProduct:  make(map[int64]string, len(l.byProduct)),
	}
	for k, v := range l.selections {
		next.selections[k] = v
	}
	copy(next.order, l.order)
	for k, v := range l.byProduct {
		next.byProduct[k] = v
	}
	return next
}

func sumMonths(months [constants.MonthsPerYear]int64) int64 {
	var total int64
	for _, q := range months {
		total += q
	}
	return total
}

func validateMonths(months [constants.MonthsPerYear]int64) error {
	for i, q := range months {
		if q < 0 {
			return faults.NewValidationError(fmt.Sprintf("month %d has negative quantity %d", i+1, q))
		}
	}
	if sumMonths(months) == 0 {
		return faults.NewValidationError("total requested quantity must be greater than zero")
	}
	return nil
}

// Add appends a selection for product, or, when the product is already
// selected, merges by element-wise vector addition into the existing line.
// The returned bool reports whether a merge happened. Over-budget state is
// not checked here; the caller decides whether to warn.
func (l Ledger) Add(product Product, months [constants.MonthsPerYear]int64) (Ledger, bool, error) {
	if product.ID <= 0 {
		return l, false, faults.NewValidationError("a positive product id is required")
	}
	if err := validateMonths(months); err != nil {
		return l, false, err
	}

	next := l.clone()
	if tempID, ok := next.byProduct[product.ID]; ok {
		sel := next.selections[tempID]
		for i := range sel.Months {
			sel.Months[i] += months[i]
		}
		sel.TotalQuantity = sumMonths(sel.Months)
		next.selections[tempID] = sel
		return next, true, nil
	}

	sel := Selection{
		TempID:        uuid.NewString(),
		Product:       product,
		Months:        months,
		TotalQuantity: sumMonths(months),
	}
	next.selections[sel.TempID] = sel
	next.order = append(next.order, sel.TempID)
	next.byProduct[product.ID] = sel.TempID
	return next, false, nil
}

// Remove deletes the selection with the given temp id.
func (l Ledger) Remove(tempID string) (Ledger, error) {
	sel, ok := l.selections[tempID]
	if !ok {
		return l, faults.NewValidationError("unknown selection " + tempID)
	}
	next := l.clone()
	delete(next.selections, tempID)
	delete(next.byProduct, sel.Product.ID)
	for i, id := range next.order {
		if id == tempID {
			next.order = append(next.order[:i], next.order[i+1:]...)
			break
		}
	}
	return next, nil
}

// Get returns the selection with the given temp id.
func (l Ledger) Get(tempID string) (Selection, bool) {
	sel, ok := l.selections[tempID]
	return sel, ok
}

// Selections returns the lines in insertion order.
func (l Ledger) Selections() []Selection {
	out := make([]Selection, 0, len(l.order))
	for _, id := range l.order {
		out = append(out, l.selections[id])
	}
	return out
}

func (l Ledger) Len() int { return len(l.order) }

// DistinctPartidaIDs returns the partida ids referenced by the current
// selections, deduplicated, in first-seen order.
func (l Ledger) DistinctPartidaIDs() []int64 {
	seen := map[int64]bool{}
	out := make([]int64, 0, len(l.order))
	for _, id := range l.order {
		pid := l.selections[id].Product.PartidaID
		if pid > 0 && !seen[pid] {
			seen[pid] = true
			out = append(out, pid)
		}
	}
	return out
}

// RequisitionTotal is the monetary cost of everything currently selected.
func (l Ledger) RequisitionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, id := range l.order {
		sel := l.selections[id]
		total = total.Add(sel.Product.UnitPrice.Mul(decimal.NewFromInt(sel.TotalQuantity)))
	}
	return total
}

// ReactiveMode is derived, never stored: the projection is live exactly when
// something is selected and it costs money.
func (l Ledger) ReactiveMode() bool {
	return len(l.order) > 0 && l.RequisitionTotal().GreaterThan(decimal.Zero)
}

// DisplayAvailable returns the figure the caller should show: the live
// projection assigned-used-pending while in reactive mode, otherwise the
// persisted available amount verbatim. A negative result signals an
// over-budget pending commitment; the persisted figure itself never goes
// negative.
func (l Ledger) DisplayAvailable(p ProjectFigures) decimal.Decimal {
	if l.ReactiveMode() {
		return p.Assigned.Sub(p.Used).Sub(l.RequisitionTotal())
	}
	return p.Available
}

// ExceedsBudget reports whether the pending commitment overruns the ceiling.
func (l Ledger) ExceedsBudget(p ProjectFigures) bool {
	return l.DisplayAvailable(p).IsNegative()
}
