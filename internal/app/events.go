package app

// EventKind names a state change.
type EventKind string

// Event kinds.
const (
	EventExpenseAdded      EventKind = "expense_added"
	EventExpensesAdded     EventKind = "expenses_added"
	EventExpenseDeleted    EventKind = "expense_deleted"
	EventExpensesDeleted   EventKind = "expenses_deleted"
	EventCategoriesChanged EventKind = "categories_changed"
	EventBudgetChanged     EventKind = "budget_changed"
)

// Event is delivered to observers after an in-memory change.
type Event struct {
	Kind      EventKind
	ExpenseID string
	Count     int
}

// Subscribe registers fn for every subsequent event and returns a function
// that unregisters it. Observers run synchronously on the mutating goroutine,
// after the state lock is released.
func (s *State) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

func (s *State) emit(e Event) {
	s.mu.RLock()
	fns := make([]func(Event), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	s.logger.Debug("state changed", "kind", e.Kind, "count", e.Count)
	for _, fn := range fns {
		fn(e)
	}
}
