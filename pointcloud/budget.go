package pointcloud

import (
	"errors"
	"sync"
)

// DefaultPointBudget is the budget used if none is configured.
const DefaultPointBudget = 1_000_000

var ErrBudgetOverridden = errors.New("point budget is already overridden")

// Budget is the global number of points the streamer may select per update.
// Temporary changes go through Override, which hands out a guard restoring
// the previous value. Only one override can be active at a time.
type Budget struct {
	mu     sync.Mutex
	value  int
	active *BudgetOverride
}

func NewBudget(value int) *Budget {
	return &Budget{value: value}
}

func (b *Budget) Value() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.value
}

// Set changes the budget permanently. It fails while an override is active.
func (b *Budget) Set(value int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil {
		return ErrBudgetOverridden
	}

	b.value = value
	return nil
}

// Override replaces the budget until Restore is called on the returned guard.
func (b *Budget) Override(value int) (*BudgetOverride, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.active != nil {
		return nil, ErrBudgetOverridden
	}

	guard := &BudgetOverride{budget: b, previous: b.value}

	b.active = guard
	b.value = value

	return guard, nil
}

// Overridden reports whether an override is currently active.
func (b *Budget) Overridden() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.active != nil
}

// BudgetOverride restores the overridden budget. Restore is idempotent and
// safe to defer next to an explicit early call.
type BudgetOverride struct {
	budget   *Budget
	previous int
	once     sync.Once
}

// Previous returns the budget value that was active before the override.
func (o *BudgetOverride) Previous() int {
	return o.previous
}

func (o *BudgetOverride) Restore() {
	o.once.Do(func() {
		b := o.budget

		b.mu.Lock()
		defer b.mu.Unlock()

		b.value = o.previous
		b.active = nil
	})
}
