package ai

import (
	"fmt"
	"sync"
)

// BudgetChecker checks and records token usage against per-exam budgets.
type BudgetChecker interface {
	// Check returns true if the exam has budget remaining.
	Check(exam string) (bool, error)
	// Record records token usage for an exam.
	Record(exam string, tokens int) error
	// Usage returns current usage for an exam.
	Usage(exam string) (used int64, budget int64, err error)
}

// InMemoryBudget is a simple in-memory budget tracker.
type InMemoryBudget struct {
	mu            sync.RWMutex
	budgets       map[string]int64 // exam -> budget limit
	usage         map[string]int64 // exam -> tokens used
	defaultBudget int64            // applies when no per-exam budget is set; zero means unlimited
}

// NewInMemoryBudget creates a new in-memory budget tracker.
func NewInMemoryBudget() *InMemoryBudget {
	return &InMemoryBudget{
		budgets: make(map[string]int64),
		usage:   make(map[string]int64),
	}
}

// SetBudget sets the token budget for an exam.
func (b *InMemoryBudget) SetBudget(exam string, tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.budgets[exam] = tokens
}

// SetDefaultBudget caps every exam without an explicit budget.
func (b *InMemoryBudget) SetDefaultBudget(tokens int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.defaultBudget = tokens
}

// limit returns the effective budget for an exam. Callers must hold the lock.
func (b *InMemoryBudget) limit(exam string) (int64, bool) {
	if budget, ok := b.budgets[exam]; ok {
		return budget, true
	}
	if b.defaultBudget > 0 {
		return b.defaultBudget, true
	}
	return 0, false
}

func (b *InMemoryBudget) Check(exam string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget, capped := b.limit(exam)
	if !capped {
		// No budget set means unlimited.
		return true, nil
	}

	return b.usage[exam] < budget, nil
}

func (b *InMemoryBudget) Record(exam string, tokens int) error {
	if tokens < 0 {
		return fmt.Errorf("tokens must be non-negative, got %d", tokens)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.usage[exam] += int64(tokens)
	return nil
}

func (b *InMemoryBudget) Usage(exam string) (int64, int64, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	budget, _ := b.limit(exam)
	return b.usage[exam], budget, nil
}
